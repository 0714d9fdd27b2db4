package layout

import "fmt"

// InvalidLayoutConfigError is returned when a layout call gets geometry it cannot lay out into.
type InvalidLayoutConfigError struct {
	Message string
	Cause   error
}

func (e *InvalidLayoutConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid layout config: %s: %v", e.Message, e.Cause)
	}
	return "invalid layout config: " + e.Message
}

func (e *InvalidLayoutConfigError) Unwrap() error {
	return e.Cause
}

// NonPositive reports a dimension named field that must be greater than zero.
func NonPositive(field string, value float64) *InvalidLayoutConfigError {
	return &InvalidLayoutConfigError{Message: fmt.Sprintf("%s must be positive, got %g", field, value)}
}
