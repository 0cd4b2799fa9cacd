package replay

import (
	"context"
	"time"
)

// Pacer is the suspension point between consecutive submissions.
//
// Implemented by TimerPacer (production) and testutil.InstantPacer
// (tests). Wait blocks for the given interval or until the context is
// cancelled, whichever comes first.
type Pacer interface {
	Wait(ctx context.Context, interval time.Duration) error
}

// TimerPacer blocks on a wall-clock timer.
//
// The wait is a cancellable suspension: cancellation takes effect here,
// between records, never mid-submission.
type TimerPacer struct{}

// Wait blocks for interval or until ctx is cancelled.
// A zero or negative interval returns immediately.
func (TimerPacer) Wait(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		// Still observe cancellation so a zero-interval run can be stopped.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
