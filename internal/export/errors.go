package export

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/jonathan/cv-builder/internal/layout"
	"github.com/jonathan/cv-builder/internal/rendering"
)

// Kind classifies a failed export for the person downloading it.
type Kind string

// Export failure kinds.
const (
	KindLayout   Kind = "layout"
	KindResource Kind = "resource"
	KindUnknown  Kind = "unknown"
)

var userMessages = map[Kind]string{
	KindLayout:   "Error en la generación del PDF. Verifica que todos los campos estén completos.",
	KindResource: "Error de memoria. Intenta reducir el contenido o usar una plantilla más simple.",
	KindUnknown:  "Error desconocido al generar el PDF.",
}

// ExportError wraps any failure of one export attempt.
type ExportError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *ExportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("export %s error: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("export %s error: %s", e.Kind, e.Message)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}

// UserMessage is the localized text shown instead of the technical detail.
func (e *ExportError) UserMessage() string {
	if msg, ok := userMessages[e.Kind]; ok {
		return msg
	}
	return userMessages[KindUnknown]
}

// ContentTooLargeError is returned when the CV text exceeds the export limit.
type ContentTooLargeError struct {
	Size  int
	Limit int
}

func (e *ContentTooLargeError) Error() string {
	return fmt.Sprintf("content too large: %d bytes exceeds limit of %d", e.Size, e.Limit)
}

// Classify maps err onto an *ExportError. Errors that already are one pass
// through unchanged.
func Classify(err error) *ExportError {
	if err == nil {
		return nil
	}
	var ee *ExportError
	if errors.As(err, &ee) {
		return ee
	}

	var (
		tooLarge *ContentTooLargeError
		layErr   *rendering.LayoutError
		render   *rendering.RenderError
		config   *layout.InvalidLayoutConfigError
		rtErr    runtime.Error
	)
	switch {
	case errors.As(err, &tooLarge):
		return &ExportError{Kind: KindResource, Message: "content limit", Cause: err}
	case errors.As(err, &layErr), errors.As(err, &render), errors.As(err, &config), errors.As(err, &rtErr):
		return &ExportError{Kind: KindLayout, Message: "layout failed", Cause: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &ExportError{Kind: KindUnknown, Message: "export interrupted", Cause: err}
	}
	return &ExportError{Kind: KindUnknown, Message: "export failed", Cause: err}
}

// panicError turns a recovered value into an error, keeping runtime errors intact.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}
