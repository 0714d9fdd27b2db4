package types

import "fmt"

// CollaboratorUnavailableError reports that a remote service could not be reached or
// answered with something unusable.
type CollaboratorUnavailableError struct {
	Service string
	Status  int // 0 when no response was received
	Cause   error
}

func (e *CollaboratorUnavailableError) Error() string {
	switch {
	case e.Status != 0 && e.Cause != nil:
		return fmt.Sprintf("%s unavailable (status %d): %v", e.Service, e.Status, e.Cause)
	case e.Status != 0:
		return fmt.Sprintf("%s unavailable (status %d)", e.Service, e.Status)
	case e.Cause != nil:
		return fmt.Sprintf("%s unavailable: %v", e.Service, e.Cause)
	}
	return e.Service + " unavailable"
}

func (e *CollaboratorUnavailableError) Unwrap() error {
	return e.Cause
}
