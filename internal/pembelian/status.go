package pembelian

import "fmt"

// Status enumerates availability states of a purchased unit.
type Status string

const (
	// StatusReady marks a unit available for sale.
	StatusReady Status = "ready"
	// StatusBooked marks a unit reserved by a pending sale.
	StatusBooked Status = "booked"
	// StatusSold marks a unit disposed by a completed sale.
	StatusSold Status = "sold"
)

var transitions = map[Status][]Status{
	StatusReady:  {StatusBooked, StatusSold},
	StatusBooked: {StatusReady, StatusSold},
	// sold reverts to ready only through sale deletion or DP cancellation
	StatusSold: {StatusReady},
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is a legal
// lifecycle transition.
func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// ParseStatus converts a store value into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("pembelian: unknown status %q", raw)
	}
	return s, nil
}
