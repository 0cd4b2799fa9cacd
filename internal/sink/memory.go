package sink

import (
	"context"

	"github.com/roach88/trickle/internal/dataset"
	"github.com/roach88/trickle/internal/replay"
)

// Memory is an in-process sink that records arrival order.
//
// It backs dry runs and tests: FailOn makes specific record indexes
// fail with a rejection, without touching the network. The replay loop
// is single-threaded, so Memory does no locking.
type Memory struct {
	// Arrived holds the original row indexes in submission order.
	Arrived []int

	// FailOn maps record indexes to the error they should fail with.
	FailOn map[int]error
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Submit implements replay.Sink.
func (m *Memory) Submit(_ context.Context, rec dataset.Record) error {
	m.Arrived = append(m.Arrived, rec.Index)
	if err, ok := m.FailOn[rec.Index]; ok {
		return err
	}
	return nil
}

// FailIndexes marks the given record indexes as failing with a
// rejection error.
func (m *Memory) FailIndexes(indexes ...int) *Memory {
	if m.FailOn == nil {
		m.FailOn = make(map[int]error, len(indexes))
	}
	for _, i := range indexes {
		m.FailOn[i] = replay.NewSubmissionError(replay.KindRejected, "injected failure", nil)
	}
	return m
}
