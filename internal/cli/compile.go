package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/scribe/internal/history"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output    string // output file path
	Canonical bool   // print RFC 8785 bytes instead of indented JSON
}

// HistoricalResult is the JSON payload of commands that produce a
// compiled historical.
type HistoricalResult struct {
	Hash       string          `json:"hash"`
	Entries    int             `json:"entries"`
	Removed    bool            `json:"removed"`
	Output     string          `json:"output,omitempty"`
	Historical json.RawMessage `json:"historical"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a history file into its historical form",
		Long: `Validate and compact a history file and print the compiled document:
the derived state with the cleaned history under "history".

With --output the document is written to a file instead; the extension
selects JSON or YAML.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().BoolVar(&opts.Canonical, "canonical", false, "print canonical JSON (RFC 8785)")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	doc, err := readDocument(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeReadFailed, err)
	}

	sc, err := doc.scribe(opts.historyOptions()...)
	if err != nil {
		return formatter.FailValidation(err)
	}
	compiled, err := sc.Compile()
	if err != nil {
		return formatter.FailValidation(err)
	}
	formatter.VerboseLog("Compiled %d entries into %d", len(doc.Entries), sc.Len())

	if opts.Canonical && opts.Output == "" && formatter.Format != "json" {
		data, err := compiled.Canonical()
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
		}
		fmt.Fprintln(formatter.Writer, string(data))
		return nil
	}

	return emitHistorical(formatter, compiled, opts.Output, "Compiled")
}

// emitHistorical writes h to output when set and reports it in the
// configured format. Without an output path, text mode prints the document.
func emitHistorical(f *OutputFormatter, h history.Historical[string], output, verb string) error {
	hash, err := h.Hash()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, err)
	}

	if output != "" {
		if err := writeHistorical(output, h); err != nil {
			return f.Fail(ExitCommandError, ErrCodeWriteFailed, err)
		}
	}

	if f.Format == "json" {
		raw, err := json.Marshal(h)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeGeneric, err)
		}
		return f.Success(HistoricalResult{
			Hash:       hash,
			Entries:    len(h.History),
			Removed:    h.Removed(),
			Output:     output,
			Historical: raw,
		})
	}

	if output != "" {
		fmt.Fprintf(f.Writer, "✓ %s %d entries to %s\n", verb, len(h.History), output)
		fmt.Fprintf(f.Writer, "  hash: %s\n", hash)
		return nil
	}

	data, err := encodeHistorical(".json", h)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, err)
	}
	_, err = f.Writer.Write(data)
	return err
}
