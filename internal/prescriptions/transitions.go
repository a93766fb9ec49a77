package prescriptions

import "time"

// statusOrder ranks the one-directional prescription flow.
var statusOrder = map[Status]int{
	StatusDraft:          0,
	StatusSubmitted:      1,
	StatusSentToPharmacy: 2,
	StatusFulfilled:      3,
}

var absorbing = map[Status]bool{
	StatusFulfilled: true,
	StatusCancelled: true,
}

// statusTimestamps maps each status to the timestamp fields it stamps when
// applied. Fields are only ever set, never cleared.
var statusTimestamps = map[Status][]func(*Prescription, time.Time){
	StatusSentToPharmacy: {func(p *Prescription, now time.Time) { setOnce(&p.SentToPharmacyAt, now) }},
	StatusFulfilled:      {func(p *Prescription, now time.Time) { setOnce(&p.FulfilledAt, now) }},
	StatusCancelled:      {func(p *Prescription, now time.Time) { setOnce(&p.CancelledAt, now) }},
}

func setOnce(field **time.Time, now time.Time) {
	if *field == nil {
		*field = &now
	}
}

// ValidStatus reports whether s is in the prescription status enumeration.
func ValidStatus(s Status) bool {
	if _, ok := statusOrder[s]; ok {
		return true
	}
	return s == StatusCancelled
}

// CanTransition reports whether from → to is an allowed prescription transition.
func CanTransition(from, to Status) bool {
	if !ValidStatus(from) || !ValidStatus(to) {
		return false
	}
	if absorbing[from] {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return statusOrder[to] > statusOrder[from]
}

// ApplyStatus validates newStatus against the transition table and, on
// success, mutates the prescription in place. Validation happens before any
// write; a rejected call leaves the prescription untouched.
func ApplyStatus(p *Prescription, newStatus Status, now time.Time) error {
	if !ValidStatus(newStatus) {
		return ErrInvalidStatus
	}
	if !CanTransition(p.Status, newStatus) {
		return ErrTransitionNotAllowed
	}

	p.Status = newStatus
	p.UpdatedAt = now
	for _, stamp := range statusTimestamps[newStatus] {
		stamp(p, now)
	}
	return nil
}
