package replay

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes submission failures.
type ErrorKind string

const (
	// KindRejected indicates the sink received the record and refused it.
	KindRejected ErrorKind = "REJECTED"

	// KindTimeout indicates the submission exceeded its deadline.
	KindTimeout ErrorKind = "TIMEOUT"

	// KindNetwork indicates the sink was unreachable.
	KindNetwork ErrorKind = "NETWORK"
)

// SubmissionError reports a single failed submission.
//
// Submission errors are recovered locally by the replay loop: they are
// logged, counted, and recorded in the summary, and the loop advances.
// A single bad record must never abort the run - the simulation's value
// is its temporal completeness, not its per-record success rate.
type SubmissionError struct {
	// Kind identifies the failure category.
	Kind ErrorKind

	// Message is a human-readable description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// NewSubmissionError creates a SubmissionError with the given kind.
func NewSubmissionError(kind ErrorKind, message string, err error) *SubmissionError {
	return &SubmissionError{Kind: kind, Message: message, Err: err}
}

// classify extracts the error kind from an arbitrary sink error.
// Errors that are not SubmissionErrors are treated as rejections.
func classify(err error) (ErrorKind, string) {
	var se *SubmissionError
	if errors.As(err, &se) {
		return se.Kind, se.Message
	}
	return KindRejected, err.Error()
}
