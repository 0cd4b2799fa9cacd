// Package testutil provides deterministic stand-ins for the replay
// loop's injectable collaborators.
package testutil

import (
	"context"
	"time"
)

// InstantPacer returns from every wait immediately while recording the
// requested intervals, so pacing behavior can be asserted without
// slowing tests down.
//
// Implements replay.Pacer.
type InstantPacer struct {
	// Waits counts how many times Wait was called.
	Waits int

	// Intervals holds the interval passed to each wait.
	Intervals []time.Duration
}

// Wait records the call and returns immediately, honoring a cancelled
// context like the wall-clock pacer would.
func (p *InstantPacer) Wait(ctx context.Context, interval time.Duration) error {
	p.Waits++
	p.Intervals = append(p.Intervals, interval)
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
