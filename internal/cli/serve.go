package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/trickle/internal/config"
	"github.com/roach88/trickle/internal/sink/stub"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr      string
	FailEvery int
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local mock scoring endpoint",
		Long: `Run a local mock scoring endpoint for end-to-end rehearsals.

The endpoint accepts POST /score with a {"data": [...]} body and
returns one fake prediction per row. When TRICKLE_API_KEY is set, the
same bearer token is required on every request, mirroring a real
deployment. --fail-every injects periodic 502 responses so failure
handling can be rehearsed.

Examples:
  trickle serve --addr :8080
  trickle serve --addr :8080 --fail-every 10`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&opts.FailEvery, "fail-every", 0, "fail every Nth request (0 disables)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	creds, err := config.LoadCredentials()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read credentials", err)
	}

	e := stub.BuildServer(stub.Config{
		APIKey:    creds.APIKey,
		FailEvery: opts.FailEvery,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(opts.Addr)
	}()

	fmt.Fprintf(cmd.ErrOrStderr(), "mock scoring endpoint listening on %s\n", opts.Addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitCommandError, "server failed", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return WrapExitError(ExitCommandError, "shutdown failed", err)
		}
		return nil
	}
}
