package penjualan

import "fmt"

// Status enumerates sale lifecycle states. Store values stay in
// Indonesian; UI-facing labels go through Label and ParseStatusLabel so
// the mapping lives in exactly one place.
type Status string

const (
	StatusBooked    Status = "booked"
	StatusSelesai   Status = "selesai"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled_dp_hangus"
)

var transitions = map[Status][]Status{
	StatusBooked:  {StatusSelesai, StatusCancelled},
	StatusPending: {StatusBooked, StatusSelesai, StatusCancelled},
	// selesai and cancelled_dp_hangus are terminal
	StatusSelesai:   {},
	StatusCancelled: {},
}

var labels = map[Status]string{
	StatusBooked:    "Booked",
	StatusSelesai:   "Sold",
	StatusPending:   "Pending",
	StatusCancelled: "Cancelled",
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether s accepts no further lifecycle transitions.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0 && s.Valid()
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Label returns the display label for s.
func (s Status) Label() string {
	return labels[s]
}

// ParseStatus converts a store value into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("penjualan: unknown status %q", raw)
	}
	return s, nil
}

// ParseStatusLabel converts a display label back into a Status.
func ParseStatusLabel(label string) (Status, error) {
	for s, l := range labels {
		if l == label {
			return s, nil
		}
	}
	return "", fmt.Errorf("penjualan: unknown status label %q", label)
}
