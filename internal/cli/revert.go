package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/scribe/internal/history"
)

// PositionFlags selects a history position by index or by timestamp.
type PositionFlags struct {
	Index int
	Time  int64
}

// register adds --index and --time to cmd.
func (p *PositionFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.Index, "index", 0, "entry index; negative values count from the end")
	cmd.Flags().Int64Var(&p.Time, "time", 0, "unix milliseconds; entries stamped at or before it are kept")
}

// position returns the selected position. Exactly one of the flags must be set.
func (p *PositionFlags) position(cmd *cobra.Command) (history.Position, error) {
	byIndex := cmd.Flags().Changed("index")
	byTime := cmd.Flags().Changed("time")
	switch {
	case byIndex && byTime:
		return history.Position{}, fmt.Errorf("--index and --time are mutually exclusive")
	case byIndex:
		return history.Index(p.Index), nil
	case byTime:
		return history.At(p.Time), nil
	default:
		return history.Position{}, fmt.Errorf("one of --index or --time is required")
	}
}

// RevertOptions holds flags for the revert command.
type RevertOptions struct {
	*RootOptions
	PositionFlags
	Output string
	DryRun bool
}

// NewRevertCommand creates the revert command.
func NewRevertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RevertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "revert <file>",
		Short: "Drop the entries of a history file from a position onwards",
		Long: `Truncate a history at an index or a point in time and write the
recompiled document back in place.

--index N keeps the first N entries. --time MS keeps every entry stamped
at or before MS. Reverting to the current length is a no-op; reverting
everything fails because an empty history cannot be compiled.

Examples:
  scribe revert table.json --index 2
  scribe revert table.json --index -1 --dry-run
  scribe revert table.json --time 1700000000000 -o before.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRevert(opts, args[0], cmd)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write to this file instead of in place")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print the result without writing")

	return cmd
}

func runRevert(opts *RevertOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	pos, err := opts.position(cmd)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, err)
	}
	if opts.DryRun && opts.Output != "" {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag,
			fmt.Errorf("--output and --dry-run are mutually exclusive"))
	}

	doc, err := readDocument(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeReadFailed, err)
	}
	sc, err := doc.scribe(opts.historyOptions()...)
	if err != nil {
		return formatter.FailValidation(err)
	}

	reverted, err := sc.Revert(pos)
	if err != nil {
		return formatter.FailValidation(err)
	}
	formatter.VerboseLog("Reverted to %s: %d -> %d entries", pos, sc.Len(), reverted.Len())

	compiled, err := reverted.Compile()
	if err != nil {
		return formatter.FailValidation(err)
	}

	output := opts.Output
	if output == "" && !opts.DryRun {
		output = path
	}
	return emitHistorical(formatter, compiled, output, "Wrote")
}
