package model

import (
	"errors"
	"fmt"
)

// ErrMalformedFinding marks a record that violates the Finding contract
var ErrMalformedFinding = errors.New("malformed finding")

// MalformedFindingError describes why a record was rejected
type MalformedFindingError struct {
	ID     string // Empty when the id itself is missing
	Reason string
}

func (e *MalformedFindingError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %s", ErrMalformedFinding, e.Reason)
	}
	return fmt.Sprintf("%s %s: %s", ErrMalformedFinding, e.ID, e.Reason)
}

// Is lets errors.Is match ErrMalformedFinding
func (e *MalformedFindingError) Is(target error) bool {
	return target == ErrMalformedFinding
}

func malformed(id, format string, args ...interface{}) error {
	return &MalformedFindingError{ID: id, Reason: fmt.Sprintf(format, args...)}
}
