package booking

type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
	StatusNoShow    Status = "NoShow"
)

// transitions is the closed set of allowed status changes. Appointments are
// only ever created as Pending; nothing leads back to it.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusNoShow:    {},
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// OccupiesSlot reports whether an appointment in this status blocks its
// (doctor, date, time) slot for new bookings.
func (s Status) OccupiesSlot() bool {
	return s != StatusCancelled && s != StatusNoShow
}

// CanTransitionTo reports whether the state machine allows moving from s to
// next. Unknown statuses never transition anywhere.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
