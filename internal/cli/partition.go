package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/trickle/internal/dataset"
)

// PartitionOptions holds flags for the partition command.
type PartitionOptions struct {
	*RootOptions
	Input         string
	BoundaryField string
	Boundary      string
	Label         string
	ReferenceOut  string
	TargetOut     string
}

// PartitionResult summarizes a completed partition.
type PartitionResult struct {
	Total        int    `json:"total_records"`
	Reference    int    `json:"reference_count"`
	Target       int    `json:"target_count"`
	ReferenceOut string `json:"reference_out"`
	TargetOut    string `json:"target_out"`
}

// NewPartitionCommand creates the partition command.
func NewPartitionCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PartitionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "partition <dataset.csv>",
		Short: "Split a dataset into reference and target subsets",
		Long: `Split a time-series dataset on a boundary field.

Records whose boundary field is strictly below the boundary value form
the reference subset (the monitoring baseline); the rest form the target
subset (the traffic that will be replayed). Row order is preserved in
both outputs. With --label, the label column is stripped from the target
subset so replayed records carry only feature fields.

Examples:
  trickle partition rentals.csv --boundary-field month --boundary 7
  trickle partition rentals.csv --boundary-field date --boundary 2023-07-01 --label rentals`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Input = args[0]
			return runPartition(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.BoundaryField, "boundary-field", "", "column to split on (required)")
	_ = cmd.MarkFlagRequired("boundary-field")
	cmd.Flags().StringVar(&opts.Boundary, "boundary", "", "boundary value (required)")
	_ = cmd.MarkFlagRequired("boundary")
	cmd.Flags().StringVar(&opts.Label, "label", "", "label column to strip from the target subset")
	cmd.Flags().StringVar(&opts.ReferenceOut, "reference-out", "reference.csv", "reference subset output path")
	cmd.Flags().StringVar(&opts.TargetOut, "target-out", "target.csv", "target subset output path")

	return cmd
}

func runPartition(opts *PartitionOptions, cmd *cobra.Command) error {
	table, err := dataset.LoadFile(opts.Input)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load dataset", err)
	}

	if opts.Label != "" && !slices.Contains(table.Header, opts.Label) {
		return NewExitError(ExitFailure, fmt.Sprintf("label column %q not in dataset", opts.Label))
	}

	reference, target, err := dataset.Partition(table.Records, opts.BoundaryField, opts.Boundary)
	if err != nil {
		return WrapExitError(ExitFailure, "partitioning rejected the dataset", err)
	}

	targetHeader := table.Header
	if opts.Label != "" {
		target = dataset.StripColumn(target, opts.Label)
		targetHeader = dataset.WithoutColumn(table.Header, opts.Label)
	}

	if err := dataset.SaveFile(opts.ReferenceOut, table.Header, reference); err != nil {
		return WrapExitError(ExitCommandError, "failed to write reference subset", err)
	}
	if err := dataset.SaveFile(opts.TargetOut, targetHeader, target); err != nil {
		return WrapExitError(ExitCommandError, "failed to write target subset", err)
	}

	result := PartitionResult{
		Total:        len(table.Records),
		Reference:    len(reference),
		Target:       len(target),
		ReferenceOut: opts.ReferenceOut,
		TargetOut:    opts.TargetOut,
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Partitioned %d records on %s < %s\n", result.Total, opts.BoundaryField, opts.Boundary)
	fmt.Fprintf(w, "  reference: %d -> %s\n", result.Reference, result.ReferenceOut)
	fmt.Fprintf(w, "  target:    %d -> %s\n", result.Target, result.TargetOut)
	return nil
}
