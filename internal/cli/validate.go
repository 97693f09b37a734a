package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult holds the outcome of validating a history file.
type ValidationResult struct {
	Valid    bool   `json:"valid"`
	Entries  int    `json:"entries"`  // entries in the file
	Retained int    `json:"retained"` // entries left after compaction
	Removed  bool   `json:"removed"`
	Hash     string `json:"hash"`

	// StateMatches is false when the file carries a state that differs
	// from the one its history derives. Omitted for bare entry arrays.
	StateMatches *bool `json:"state_matches,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a history file",
		Long: `Validate a compiled historical document or a bare array of entries.

The entries are checked against the history grammar (one leading create,
ordered timestamps, at most one trailing remove) and compacted with the
configured collapse options. Nothing is written.

Exit codes:
  0 - History is valid
  1 - History violates the grammar
  2 - Command error (unreadable or malformed file)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	doc, err := readDocument(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeReadFailed, err)
	}
	formatter.VerboseLog("Read %d entries from %s", len(doc.Entries), path)

	sc, err := doc.scribe(opts.historyOptions()...)
	if err != nil {
		return formatter.FailValidation(err)
	}

	compiled, err := sc.Compile()
	if err != nil {
		return formatter.FailValidation(err)
	}
	hash, err := compiled.Hash()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}

	result := ValidationResult{
		Valid:    true,
		Entries:  len(doc.Entries),
		Retained: sc.Len(),
		Removed:  sc.IsRemoved(),
		Hash:     hash,
	}
	if doc.State != nil {
		matches := doc.State.Equal(compiled.State)
		result.StateMatches = &matches
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Valid history: %d entries, %d retained\n", result.Entries, result.Retained)
	if result.Removed {
		fmt.Fprintln(w, "  document is removed")
	}
	if result.StateMatches != nil && !*result.StateMatches {
		fmt.Fprintln(w, "  warning: stored state differs from the derived state")
	}
	fmt.Fprintf(w, "  hash: %s\n", result.Hash)
	return nil
}
