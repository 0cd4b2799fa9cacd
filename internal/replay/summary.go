package replay

// Failure records one failed submission.
type Failure struct {
	// Index is the original row position of the record that failed.
	Index int `json:"index"`

	// Kind is the failure category.
	Kind ErrorKind `json:"kind"`

	// Message describes the failure.
	Message string `json:"message"`
}

// Summary is the accumulated result of a replay run.
//
// Total is the size of the replayed input. On a cancelled run
// Succeeded + Failed falls short of Total by the number of records
// that were never submitted.
//
// The failure list is ordered by submission order, so an operator can
// tell "a few rows near the endpoint's cold start failed" apart from
// "the endpoint was unreachable throughout".
type Summary struct {
	Total     int       `json:"total_records"`
	Succeeded int       `json:"succeeded_count"`
	Failed    int       `json:"failed_count"`
	Failures  []Failure `json:"failures,omitempty"`
}
