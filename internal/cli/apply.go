package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/scribe/internal/history"
	"github.com/roach88/scribe/internal/ir"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	Op        string // create | patch | remove
	Data      string // JSON object payload
	Signature string
	Time      int64 // entry timestamp in ms; unset reads the clock
	Output    string
	DryRun    bool
}

var validOps = []string{"create", "patch", "remove"}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <file>",
		Short: "Append a create, patch or remove entry to a history file",
		Long: `Append one entry to a history file and write the recompiled document
back in place.

A create may target a file that does not exist yet. Patches that change
nothing are dropped, and patches within the collapse window merge with
the previous patch by the same signer.

Examples:
  scribe apply table.json --op create --data '{"stage":"draft"}' --sig ana
  scribe apply table.json --op patch --data '{"stage":"painting"}' --sig ana
  scribe apply table.json --op remove --dry-run`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Op, "op", "", "operation (create|patch|remove)")
	cmd.Flags().StringVar(&opts.Data, "data", "", "JSON object payload for create and patch")
	cmd.Flags().StringVar(&opts.Signature, "sig", "", "signature of the author (empty for a system event)")
	cmd.Flags().Int64Var(&opts.Time, "time", 0, "entry timestamp in unix milliseconds (default now)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write to this file instead of in place")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print the result without writing")

	return cmd
}

func runApply(opts *ApplyOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if !slices.Contains(validOps, opts.Op) {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag,
			fmt.Errorf("invalid op %q: must be one of %v", opts.Op, validOps))
	}
	if opts.DryRun && opts.Output != "" {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag,
			fmt.Errorf("--output and --dry-run are mutually exclusive"))
	}
	data, err := parseData(opts.Op, opts.Data)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidFlag, err)
	}

	sc, err := openForApply(path, opts)
	if err != nil {
		var ve *history.ValidationError
		if errors.As(err, &ve) {
			return formatter.FailValidation(err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeReadFailed, err)
	}

	var meta history.Meta[string]
	if opts.Signature != "" {
		meta = history.Signed(opts.Signature)
	}
	if cmd.Flags().Changed("time") {
		meta = meta.At(opts.Time)
	}

	before := sc.Len()
	switch opts.Op {
	case "create":
		sc, err = sc.Create(data, meta)
	case "patch":
		sc, err = sc.Patch(data, meta)
	case "remove":
		sc, err = sc.Remove(meta)
	}
	if err != nil {
		return formatter.FailValidation(err)
	}
	formatter.VerboseLog("Applied %s: %d -> %d entries", opts.Op, before, sc.Len())

	compiled, err := sc.Compile()
	if err != nil {
		return formatter.FailValidation(err)
	}

	output := opts.Output
	if output == "" && !opts.DryRun {
		output = path
	}
	return emitHistorical(formatter, compiled, output, "Wrote")
}

// openForApply loads the history at path. A missing file yields an empty
// Scribe when the operation is a create.
func openForApply(path string, opts *ApplyOptions) (*history.Scribe[string], error) {
	doc, err := readDocument(path)
	if errors.Is(err, fs.ErrNotExist) && opts.Op == "create" {
		return history.New[string](opts.historyOptions()...), nil
	}
	if err != nil {
		return nil, err
	}
	return doc.scribe(opts.historyOptions()...)
}

// parseData decodes the --data flag. Remove takes no payload.
func parseData(op, raw string) (ir.IRObject, error) {
	if op == "remove" {
		if raw != "" {
			return nil, fmt.Errorf("--data is not allowed with --op remove")
		}
		return nil, nil
	}
	if raw == "" {
		return ir.IRObject{}, nil
	}
	var data ir.IRObject
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("--data: %w", err)
	}
	if data == nil {
		return nil, fmt.Errorf("--data must be a JSON object")
	}
	return data, nil
}
