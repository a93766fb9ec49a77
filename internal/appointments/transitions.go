package appointments

import "time"

// statusOrder ranks the forward progression of an appointment. A transition is
// allowed when it moves strictly forward in this ordering, or jumps to one of
// the absorbing statuses from a non-terminal state.
var statusOrder = map[Status]int{
	StatusScheduled:  0,
	StatusConfirmed:  1,
	StatusCheckedIn:  2,
	StatusInProgress: 3,
	StatusCompleted:  4,
}

// absorbing statuses have no outgoing transitions.
var absorbing = map[Status]bool{
	StatusCompleted: true,
	StatusCancelled: true,
	StatusNoShow:    true,
}

// statusTimestamps maps each status to the timestamp fields it stamps when
// applied. Fields are only ever set, never cleared.
var statusTimestamps = map[Status][]func(*Appointment, time.Time){
	StatusCheckedIn:  {func(a *Appointment, now time.Time) { setOnce(&a.CheckedInAt, now) }},
	StatusInProgress: {func(a *Appointment, now time.Time) { setOnce(&a.StartedAt, now) }},
	StatusCompleted:  {func(a *Appointment, now time.Time) { setOnce(&a.CompletedAt, now) }},
	StatusCancelled:  {func(a *Appointment, now time.Time) { setOnce(&a.CancelledAt, now) }},
	StatusNoShow:     {},
}

func setOnce(field **time.Time, now time.Time) {
	if *field == nil {
		*field = &now
	}
}

// ValidStatus reports whether s is in the appointment status enumeration.
func ValidStatus(s Status) bool {
	if _, ok := statusOrder[s]; ok {
		return true
	}
	return s == StatusCancelled || s == StatusNoShow
}

// CanTransition reports whether from → to is an allowed appointment transition.
func CanTransition(from, to Status) bool {
	if !ValidStatus(from) || !ValidStatus(to) {
		return false
	}
	if absorbing[from] {
		return false
	}
	if to == StatusCancelled || to == StatusNoShow {
		return true
	}
	return statusOrder[to] > statusOrder[from]
}

// ApplyStatus validates newStatus against the transition table and, on
// success, mutates the appointment in place: status, updated_at, and the
// timestamp fields mapped to newStatus. Validation happens before any write;
// a rejected call leaves the appointment untouched.
func ApplyStatus(a *Appointment, newStatus Status, now time.Time) error {
	if !ValidStatus(newStatus) {
		return ErrInvalidStatus
	}
	if !CanTransition(a.Status, newStatus) {
		return ErrTransitionNotAllowed
	}

	a.Status = newStatus
	a.UpdatedAt = now
	for _, stamp := range statusTimestamps[newStatus] {
		stamp(a, now)
	}
	return nil
}
