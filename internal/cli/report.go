package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/trickle/internal/replay"
	"github.com/roach88/trickle/internal/store"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Database string
	Session  string // optional - one session with failure detail
}

// SessionReport is one session with its failures.
type SessionReport struct {
	Session  store.Session    `json:"session"`
	Failures []replay.Failure `json:"failures,omitempty"`
}

// ReportResult holds the overall report output.
type ReportResult struct {
	Sessions []SessionReport `json:"sessions"`
	Total    int             `json:"total_sessions"`
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report recorded replay sessions",
		Long: `Report replay sessions from the session log.

Without --session, lists all sessions most recent first. With
--session, shows one session including its full failure list, so an
operator can tell a cold-start blip apart from an endpoint that was
down throughout.

Examples:
  trickle report --db trickle.db
  trickle report --db trickle.db --session 0195a3e2-...
  trickle report --db trickle.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the session log (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "show one session with failure detail")

	return cmd
}

func runReport(opts *ReportOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open session log", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	var result ReportResult

	if opts.Session != "" {
		sess, failures, err := st.GetSession(ctx, opts.Session)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read session", err)
		}
		result.Sessions = []SessionReport{{Session: sess, Failures: failures}}
		result.Total = 1
	} else {
		sessions, err := st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		result.Sessions = make([]SessionReport, 0, len(sessions))
		for _, sess := range sessions {
			result.Sessions = append(result.Sessions, SessionReport{Session: sess})
		}
		result.Total = len(sessions)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), result)
	}

	w := cmd.OutOrStdout()
	if opts.Session != "" {
		writeSessionDetail(w, result.Sessions[0])
		return nil
	}
	writeSessionList(w, result)
	return nil
}

// reportPrinter formats counts with grouping so large runs stay readable.
var reportPrinter = message.NewPrinter(language.English)

// writeSessionList renders the session overview.
func writeSessionList(w io.Writer, result ReportResult) {
	if result.Total == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return
	}

	reportPrinter.Fprintf(w, "Sessions: %d\n", result.Total)
	for _, r := range result.Sessions {
		sess := r.Session
		status := "finished"
		switch {
		case sess.Cancelled:
			status = "cancelled"
		case sess.FinishedAt == nil:
			status = "running"
		}
		reportPrinter.Fprintf(w, "  %s  %s  %s  %d records, %d ok, %d failed  [%s]\n",
			sess.ID,
			sess.StartedAt.Format("2006-01-02 15:04:05"),
			sess.Sink,
			sess.Total,
			sess.Succeeded,
			sess.Failed,
			status,
		)
	}
}

// writeSessionDetail renders one session with its failure list.
func writeSessionDetail(w io.Writer, r SessionReport) {
	sess := r.Session

	fmt.Fprintf(w, "Session %s\n", sess.ID)
	fmt.Fprintf(w, "  dataset:   %s\n", sess.Dataset)
	fmt.Fprintf(w, "  boundary:  %s >= %s\n", sess.BoundaryField, sess.Boundary)
	fmt.Fprintf(w, "  sink:      %s\n", sess.Sink)
	fmt.Fprintf(w, "  interval:  %s\n", sess.Interval)
	fmt.Fprintf(w, "  started:   %s\n", sess.StartedAt.Format("2006-01-02 15:04:05"))
	if sess.FinishedAt != nil {
		fmt.Fprintf(w, "  finished:  %s\n", sess.FinishedAt.Format("2006-01-02 15:04:05"))
	}
	if sess.Cancelled {
		fmt.Fprintln(w, "  cancelled before completion")
	}
	reportPrinter.Fprintf(w, "  records:   %d\n", sess.Total)
	reportPrinter.Fprintf(w, "  succeeded: %d\n", sess.Succeeded)
	reportPrinter.Fprintf(w, "  failed:    %d\n", sess.Failed)

	if len(r.Failures) > 0 {
		fmt.Fprintln(w, "Failures:")
		for _, f := range r.Failures {
			fmt.Fprintf(w, "  record %d: %s %s\n", f.Index, f.Kind, f.Message)
		}
	}
}
