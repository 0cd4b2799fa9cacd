// Package replay drives simulated production traffic against a scoring
// sink.
//
// The loop is strictly sequential: one goroutine, no concurrent
// submissions, no retries, no reordering. The goal is to simulate a slow
// trickle of real traffic, not to maximize throughput - later records
// must arrive later, since the simulated drift lives in the temporal
// order of the target partition.
package replay

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/trickle/internal/dataset"
)

// Sink accepts one record and returns success or failure.
//
// The production sink is an HTTP scoring endpoint; tests use an
// in-memory fake. The response body is never interpreted here - a nil
// error is an ack, anything else is a per-record failure.
type Sink interface {
	Submit(ctx context.Context, rec dataset.Record) error
}

// DefaultProgressEvery is the default progress callback cadence.
const DefaultProgressEvery = 10

// Options configures a replay run.
type Options struct {
	// Interval is the fixed pause between consecutive submissions.
	// It applies after every submission, success or failure, so the
	// wall-clock schedule is preserved even through a bad patch.
	Interval time.Duration

	// ProgressEvery is the number of successful submissions between
	// progress callbacks. Zero means DefaultProgressEvery.
	ProgressEvery int

	// OnProgress, if set, is invoked with the running success count
	// every ProgressEvery successes.
	OnProgress func(succeeded int)

	// Pacer performs the inter-submission wait. Nil means TimerPacer.
	Pacer Pacer
}

// Run replays records against sink in strict input order.
//
// Per-record failures are logged, recorded in the summary, and never
// abort the run. Cancellation is honored at suspension boundaries only:
// before a submission or during the pacing wait, never mid-submission.
// On cancellation the partial summary accumulated so far is returned
// together with ctx.Err(); Total stays the input size, so
// Total - Succeeded - Failed is the count of records never submitted.
//
// An empty input returns a zero summary and no error.
func Run(ctx context.Context, records []dataset.Record, sink Sink, opts Options) (Summary, error) {
	pacer := opts.Pacer
	if pacer == nil {
		pacer = TimerPacer{}
	}
	progressEvery := opts.ProgressEvery
	if progressEvery <= 0 {
		progressEvery = DefaultProgressEvery
	}

	summary := Summary{Total: len(records)}

	slog.Info("replay starting",
		"records", len(records),
		"interval", opts.Interval,
	)

	for i, rec := range records {
		// Suspension boundary: never start a submission after cancel.
		select {
		case <-ctx.Done():
			slog.Info("replay cancelled",
				"submitted", i,
				"succeeded", summary.Succeeded,
				"failed", summary.Failed,
			)
			return summary, ctx.Err()
		default:
		}

		if err := sink.Submit(ctx, rec); err != nil {
			kind, message := classify(err)
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{
				Index:   rec.Index,
				Kind:    kind,
				Message: message,
			})
			slog.Warn("submission failed",
				"index", rec.Index,
				"kind", kind,
				"error", err,
			)
		} else {
			summary.Succeeded++
			if summary.Succeeded%progressEvery == 0 && opts.OnProgress != nil {
				opts.OnProgress(summary.Succeeded)
			}
		}

		// Pace before the next record. The wait applies after failures
		// too, so the overall schedule does not compress.
		if i < len(records)-1 {
			if err := pacer.Wait(ctx, opts.Interval); err != nil {
				slog.Info("replay cancelled",
					"submitted", i+1,
					"succeeded", summary.Succeeded,
					"failed", summary.Failed,
				)
				return summary, err
			}
		}
	}

	slog.Info("replay finished",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
	)
	return summary, nil
}
