package pdfdoc

import "fmt"

// WriteError reports a failure while replaying a document into the PDF backend.
type WriteError struct {
	Op  string // e.g. "RegisterImage", "Output"
	Err error
}

func (e *WriteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pdfdoc.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("pdfdoc.%s: unknown error", e.Op)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
