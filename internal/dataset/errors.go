package dataset

import "fmt"

// MalformedRecordError reports a record whose boundary or label field is
// missing or cannot be used. Partitioning rejects the whole input on the
// first malformed record rather than silently dropping rows: a malformed
// dataset is a configuration error and the run must not start.
type MalformedRecordError struct {
	// Index is the 0-based row position of the offending record.
	Index int

	// Field is the column that was missing or unusable.
	Field string

	// Reason describes what was wrong with the field.
	Reason string
}

// Error implements the error interface.
func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("record %d: field %q %s", e.Index, e.Field, e.Reason)
}
