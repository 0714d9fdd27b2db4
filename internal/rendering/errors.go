// Package rendering lays CV data out into a paginated canvas document using
// one of the registered templates.
package rendering

import "fmt"

// UnknownTemplateError is returned when a template ID is not registered.
type UnknownTemplateError struct {
	ID string
}

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("template error: unknown template %q", e.ID)
}

// LayoutError reports a section that could not be laid out. The engine skips
// the section and keeps going.
type LayoutError struct {
	Section string
	Message string
	Cause   error
}

func (e *LayoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("layout error in %s: %s: %v", e.Section, e.Message, e.Cause)
	}
	return fmt.Sprintf("layout error in %s: %s", e.Section, e.Message)
}

func (e *LayoutError) Unwrap() error {
	return e.Cause
}

// RenderError represents a failure that aborts the whole document.
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("render error: %s", e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
