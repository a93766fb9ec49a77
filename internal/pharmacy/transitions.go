package pharmacy

import "time"

// statusOrder ranks the forward fulfillment flow.
var statusOrder = map[Status]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusReady:      2,
	StatusDispensed:  3,
}

var absorbing = map[Status]bool{
	StatusDispensed: true,
	StatusRejected:  true,
	StatusCancelled: true,
}

// customerNext is the customer-facing transition table. collected, rejected
// and expired are absorbing.
var customerNext = map[CustomerStatus][]CustomerStatus{
	CustomerWaiting:  {CustomerNotified, CustomerCollected, CustomerRejected, CustomerExpired},
	CustomerNotified: {CustomerCollected, CustomerRejected, CustomerExpired},
}

var statusTimestamps = map[Status][]func(*Order, time.Time){
	StatusReady:     {func(o *Order, now time.Time) { setOnce(&o.ReadyAt, now) }},
	StatusDispensed: {func(o *Order, now time.Time) { setOnce(&o.DispensedAt, now) }},
	StatusRejected:  {func(o *Order, now time.Time) { setOnce(&o.RejectedAt, now) }},
	StatusCancelled: {func(o *Order, now time.Time) { setOnce(&o.CancelledAt, now) }},
}

func setOnce(field **time.Time, now time.Time) {
	if *field == nil {
		*field = &now
	}
}

// ValidStatus reports whether s is in the order status enumeration.
func ValidStatus(s Status) bool {
	if _, ok := statusOrder[s]; ok {
		return true
	}
	return s == StatusRejected || s == StatusCancelled
}

// ValidCustomerStatus reports whether s is in the customer status enumeration.
func ValidCustomerStatus(s CustomerStatus) bool {
	switch s {
	case CustomerWaiting, CustomerNotified, CustomerCollected, CustomerRejected, CustomerExpired:
		return true
	}
	return false
}

// CanTransition reports whether from → to is an allowed fulfillment transition.
func CanTransition(from, to Status) bool {
	if !ValidStatus(from) || !ValidStatus(to) {
		return false
	}
	if absorbing[from] {
		return false
	}
	if to == StatusRejected || to == StatusCancelled {
		return true
	}
	return statusOrder[to] > statusOrder[from]
}

// CanTransitionCustomer reports whether from → to is an allowed customer transition.
func CanTransitionCustomer(from, to CustomerStatus) bool {
	for _, next := range customerNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ApplyStatus validates newStatus against the fulfillment transition table
// and, on success, mutates the order in place. Validation happens before any
// write; a rejected call leaves the order untouched.
func ApplyStatus(o *Order, newStatus Status, now time.Time) error {
	if !ValidStatus(newStatus) {
		return ErrInvalidStatus
	}
	if !CanTransition(o.Status, newStatus) {
		return ErrTransitionNotAllowed
	}

	o.Status = newStatus
	o.UpdatedAt = now
	for _, stamp := range statusTimestamps[newStatus] {
		stamp(o, now)
	}
	return nil
}

// ApplyCustomerStatus advances the customer-facing dimension. The two status
// dimensions are coupled: collected forces the fulfillment status to
// dispensed in the same write. rejected requires a reason.
func ApplyCustomerStatus(o *Order, newStatus CustomerStatus, reason string, now time.Time) error {
	if !ValidCustomerStatus(newStatus) {
		return ErrInvalidCustomerStatus
	}
	if !CanTransitionCustomer(o.CustomerStatus, newStatus) {
		return ErrTransitionNotAllowed
	}
	if newStatus == CustomerRejected && reason == "" {
		return ErrReasonRequired
	}

	o.CustomerStatus = newStatus
	o.UpdatedAt = now

	switch newStatus {
	case CustomerNotified:
		setOnce(&o.CustomerNotifiedAt, now)
	case CustomerCollected:
		setOnce(&o.CustomerCollectedAt, now)
		o.Status = StatusDispensed
		setOnce(&o.DispensedAt, now)
	case CustomerRejected:
		setOnce(&o.CustomerRejectedAt, now)
		o.CustomerRejectionReason = reason
	case CustomerExpired:
		setOnce(&o.CustomerExpiredAt, now)
	}
	return nil
}

// SupplyMedication marks one medication line as supplied. It mutates exactly
// that line and never touches the order's aggregate status.
func SupplyMedication(o *Order, lineIndex int, suppliedQuantity int, notes string, now time.Time) error {
	if lineIndex < 0 || lineIndex >= len(o.Items) {
		return ErrLineIndexOutOfRange
	}

	item := &o.Items[lineIndex]
	item.Supplied = true
	item.SuppliedQuantity = suppliedQuantity
	item.SuppliedAt = &now
	if notes != "" {
		item.Notes = notes
	}
	o.UpdatedAt = now
	return nil
}
