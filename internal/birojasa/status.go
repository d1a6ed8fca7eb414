package birojasa

import "fmt"

// Status enumerates document-processing case states. The store values
// are the Indonesian display strings; they double as labels.
type Status string

const (
	StatusInProgress Status = "Dalam Proses"
	StatusCompleted  Status = "Selesai"
	StatusCancelled  Status = "Batal"
)

var transitions = map[Status][]Status{
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether s accepts no further transitions.
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

// ParseStatus converts a store value into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("birojasa: unknown status %q", raw)
	}
	return s, nil
}
