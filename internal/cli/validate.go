package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/trickle/internal/config"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	ConfigPath string
}

// ValidateResult reports the outcome of config validation.
type ValidateResult struct {
	Config      string `json:"config"`
	SinkKind    string `json:"sink_kind"`
	DatasetOK   bool   `json:"dataset_exists"`
	Credentials string `json:"credentials"` // "ok", "missing" or "unused"
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the run configuration without replaying",
		Long: `Validate the run configuration without submitting anything.

Checks the YAML against the configuration schema, verifies the dataset
file exists, and - for an http sink - that the endpoint credential is
present in the environment.

Exit codes:
  0 - Configuration is valid
  1 - Configuration is invalid or credentials are missing
  2 - Command error

Examples:
  trickle validate --config trickle.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "trickle.yaml", "path to run configuration")

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		if opts.Format == "json" {
			_ = writeJSONError(cmd.OutOrStdout(), "E_CONFIG", "invalid configuration", err.Error())
		}
		return WrapExitError(ExitFailure, "invalid configuration", err)
	}

	result := ValidateResult{
		Config:      opts.ConfigPath,
		SinkKind:    cfg.Sink.Kind,
		Credentials: "unused",
	}

	if _, err := os.Stat(cfg.Dataset); err == nil {
		result.DatasetOK = true
	}

	var problems []string
	if !result.DatasetOK {
		problems = append(problems, fmt.Sprintf("dataset %s does not exist", cfg.Dataset))
	}

	if cfg.Sink.Kind == config.SinkHTTP {
		creds, err := config.LoadCredentials()
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read credentials", err)
		}
		if err := creds.RequireAPIKey(); err != nil {
			result.Credentials = "missing"
			problems = append(problems, err.Error())
		} else {
			result.Credentials = "ok"
		}
	}

	if opts.Format == "json" {
		if len(problems) > 0 {
			_ = writeJSONError(cmd.OutOrStdout(), "E_CONFIG", "configuration problems", problems)
			return NewExitError(ExitFailure, "configuration problems")
		}
		return writeJSON(cmd.OutOrStdout(), result)
	}

	w := cmd.OutOrStdout()
	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintf(w, "problem: %s\n", p)
		}
		return NewExitError(ExitFailure, "configuration problems")
	}

	fmt.Fprintf(w, "%s is valid (sink: %s)\n", opts.ConfigPath, cfg.Sink.Kind)
	return nil
}
