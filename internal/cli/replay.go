package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/trickle/internal/config"
	"github.com/roach88/trickle/internal/dataset"
	"github.com/roach88/trickle/internal/replay"
	"github.com/roach88/trickle/internal/sink"
	"github.com/roach88/trickle/internal/store"
)

// SessionIDGenerator generates session identifiers.
// Implemented by UUIDv7Generator (production) and testutil.FixedIDs (tests).
type SessionIDGenerator interface {
	NewID() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session ids, so the
// session log lists runs in creation order even across databases.
type UUIDv7Generator struct{}

// NewID returns a new UUIDv7 as a hyphenated string.
func (UUIDv7Generator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	ConfigPath string
	DryRun     bool

	// IDs allows overriding the session id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs SessionIDGenerator

	// Pacer allows overriding the inter-submission wait (for testing).
	// If nil, defaults to the wall-clock pacer.
	Pacer replay.Pacer
}

// ReplayResult is the outcome of a replay run.
type ReplayResult struct {
	SessionID string         `json:"session_id"`
	Cancelled bool           `json:"cancelled"`
	Summary   replay.Summary `json:"summary"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay the target subset against the scoring sink",
		Long: `Partition the configured dataset and replay the target subset.

Target records are submitted strictly in original order, one at a time,
with a fixed pause between submissions. Per-record failures are logged
and counted but never abort the run. The run is recorded as a session in
the SQLite session log for later reporting.

Interrupting the run (Ctrl-C) stops it at the next pause between
records; the partial summary is still reported and persisted.

Exit codes:
  0 - Replay ran to completion
  1 - Replay was cancelled, or the configuration content is invalid
  2 - Command error (missing files, database errors, etc.)

Examples:
  trickle replay --config trickle.yaml
  trickle replay --config trickle.yaml --dry-run
  trickle replay --config trickle.yaml --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "trickle.yaml", "path to run configuration")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "use an in-memory sink instead of the configured one")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitFailure, "invalid configuration", err)
	}

	target, err := loadTarget(cfg)
	if err != nil {
		return err
	}

	scoringSink, closeSink, err := buildSink(cfg, opts.DryRun)
	if err != nil {
		return err
	}
	defer closeSink()

	st, err := store.Open(cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open session log", err)
	}
	defer st.Close()

	ids := opts.IDs
	if ids == nil {
		ids = UUIDv7Generator{}
	}

	sessionID := ids.NewID()
	sess := store.Session{
		ID:            sessionID,
		StartedAt:     time.Now().UTC(),
		Dataset:       cfg.Dataset,
		BoundaryField: cfg.BoundaryField,
		Boundary:      cfg.Boundary,
		Sink:          sinkName(cfg, opts.DryRun),
		Interval:      cfg.IntervalDuration(),
	}
	if err := st.CreateSession(cmd.Context(), sess); err != nil {
		return WrapExitError(ExitCommandError, "failed to record session", err)
	}

	// Cancellation takes effect between records, never mid-submission.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := cmd.ErrOrStderr()
	summary, runErr := replay.Run(ctx, target, scoringSink, replay.Options{
		Interval:      cfg.IntervalDuration(),
		ProgressEvery: cfg.ProgressEvery,
		OnProgress: func(n int) {
			fmt.Fprintf(progress, "submitted %d records\n", n)
		},
		Pacer: opts.Pacer,
	})

	cancelled := runErr != nil && (errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded))

	// Persist the outcome even for a cancelled run - the partial
	// summary is the operator's record of what was submitted.
	if err := st.FinishSession(context.Background(), sessionID, summary, cancelled, time.Now().UTC()); err != nil {
		return WrapExitError(ExitCommandError, "failed to record session outcome", err)
	}

	result := ReplayResult{SessionID: sessionID, Cancelled: cancelled, Summary: summary}
	if opts.Format == "json" {
		if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
	} else {
		writeSummaryText(cmd.OutOrStdout(), result)
	}

	if cancelled {
		return NewExitError(ExitFailure, "replay cancelled")
	}
	return nil
}

// loadTarget loads the configured dataset, partitions it and strips the
// label from the target subset.
func loadTarget(cfg *config.Config) ([]dataset.Record, error) {
	table, err := dataset.LoadFile(cfg.Dataset)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load dataset", err)
	}

	if cfg.Label != "" && !slices.Contains(table.Header, cfg.Label) {
		return nil, NewExitError(ExitFailure, fmt.Sprintf("label column %q not in dataset", cfg.Label))
	}

	_, target, err := dataset.Partition(table.Records, cfg.BoundaryField, cfg.Boundary)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "partitioning rejected the dataset", err)
	}

	// The sink must only see feature fields.
	if cfg.Label != "" {
		target = dataset.StripColumn(target, cfg.Label)
	}
	return target, nil
}

// buildSink constructs the configured sink. The returned func releases
// sink resources after the run.
func buildSink(cfg *config.Config, dryRun bool) (replay.Sink, func(), error) {
	noop := func() {}

	if dryRun || cfg.Sink.Kind == config.SinkMemory {
		return sink.NewMemory(), noop, nil
	}

	switch cfg.Sink.Kind {
	case config.SinkHTTP:
		creds, err := config.LoadCredentials()
		if err != nil {
			return nil, noop, WrapExitError(ExitCommandError, "failed to read credentials", err)
		}
		if err := creds.RequireAPIKey(); err != nil {
			return nil, noop, WrapExitError(ExitFailure, "missing credentials", err)
		}
		var httpOpts []sink.HTTPOption
		if cfg.Sink.Deployment != "" {
			httpOpts = append(httpOpts, sink.WithDeployment(cfg.Sink.Deployment))
		}
		return sink.NewHTTP(cfg.Sink.URL, creds.APIKey, httpOpts...), noop, nil

	case config.SinkKafka:
		k := sink.NewKafka(cfg.Sink.Brokers, cfg.Sink.Topic)
		return k, func() { _ = k.Close() }, nil

	default:
		return nil, noop, NewExitError(ExitFailure, fmt.Sprintf("unknown sink kind %q", cfg.Sink.Kind))
	}
}

// sinkName names the sink for the session record.
func sinkName(cfg *config.Config, dryRun bool) string {
	if dryRun {
		return config.SinkMemory
	}
	return cfg.Sink.Kind
}

// writeSummaryText renders a replay result for humans.
func writeSummaryText(w io.Writer, result ReplayResult) {
	fmt.Fprintf(w, "Replay session %s\n", result.SessionID)
	if result.Cancelled {
		fmt.Fprintln(w, "  cancelled before completion")
	}
	fmt.Fprintf(w, "  records:   %d\n", result.Summary.Total)
	fmt.Fprintf(w, "  succeeded: %d\n", result.Summary.Succeeded)
	fmt.Fprintf(w, "  failed:    %d\n", result.Summary.Failed)
	if len(result.Summary.Failures) > 0 {
		fmt.Fprintln(w, "Failures:")
		for _, f := range result.Summary.Failures {
			fmt.Fprintf(w, "  record %d: %s %s\n", f.Index, f.Kind, f.Message)
		}
	}
}
