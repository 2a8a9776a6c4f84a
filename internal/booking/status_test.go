package booking

import "testing"

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusNoShow, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusNoShow, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusPending, false},
		{StatusNoShow, StatusConfirmed, false},
		{Status("bogus"), StatusConfirmed, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.ok {
			t.Errorf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestOccupiesSlot(t *testing.T) {
	occupying := []Status{StatusPending, StatusConfirmed, StatusCompleted}
	for _, s := range occupying {
		if !s.OccupiesSlot() {
			t.Errorf("%s should occupy its slot", s)
		}
	}

	freed := []Status{StatusCancelled, StatusNoShow}
	for _, s := range freed {
		if s.OccupiesSlot() {
			t.Errorf("%s should not occupy its slot", s)
		}
	}
}

func TestStatusIsValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow} {
		if !s.IsValid() {
			t.Errorf("%s reported invalid", s)
		}
	}
	if Status("Rescheduled").IsValid() {
		t.Error("unknown status reported valid")
	}
}
