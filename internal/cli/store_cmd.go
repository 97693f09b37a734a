package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/scribe/internal/config"
	"github.com/roach88/scribe/internal/history"
	"github.com/roach88/scribe/internal/store"
)

// StoreOptions holds flags shared by the store subcommands.
type StoreOptions struct {
	*RootOptions
	DB string
}

// NewStoreCommand creates the store command group.
func NewStoreCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Keep histories in a SQLite database",
		Long: `Save, load, list, revert and delete histories in a SQLite store.

Every history is re-validated when it is written and again when it is
read back. The database path comes from --db, then the config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "database path (default from config)")

	cmd.AddCommand(newStorePutCommand(opts))
	cmd.AddCommand(newStoreGetCommand(opts))
	cmd.AddCommand(newStoreListCommand(opts))
	cmd.AddCommand(newStoreRevertCommand(opts))
	cmd.AddCommand(newStoreDeleteCommand(opts))

	return cmd
}

func (o *StoreOptions) dbPath() string {
	switch {
	case o.DB != "":
		return o.DB
	case o.Config.Database != "":
		return o.Config.Database
	default:
		return config.DefaultDatabase
	}
}

// withStore opens the store, runs fn, and closes the store.
func (o *StoreOptions) withStore(f *OutputFormatter, fn func(*store.Store) error) error {
	st, err := store.Open(o.dbPath())
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStoreFailed, err)
	}
	defer st.Close()
	f.VerboseLog("Opened store %s", o.dbPath())
	return fn(st)
}

// failStore maps store errors onto CLI errors.
func failStore(f *OutputFormatter, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return f.Fail(ExitCommandError, ErrCodeNotFound, err)
	case history.CodeOf(err) != "":
		return f.FailValidation(err)
	default:
		return f.Fail(ExitCommandError, ErrCodeStoreFailed, err)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func reportSaved(f *OutputFormatter, verb string, info store.DocumentInfo) error {
	if f.Format == "json" {
		return f.Success(info)
	}
	fmt.Fprintf(f.Writer, "✓ %s %s (%d entries)\n", verb, info.ID, info.EntryCount)
	if info.Removed {
		fmt.Fprintln(f.Writer, "  document is removed")
	}
	fmt.Fprintf(f.Writer, "  hash: %s\n", info.HistoryHash)
	return nil
}

func newStorePutCommand(opts *StoreOptions) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "put <file>",
		Short: "Save a history file under a document id",
		Long: `Validate a history file and save it, replacing any history already
stored under the same id. Without --id a new UUIDv7 id is generated.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)

			doc, err := readDocument(args[0])
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeReadFailed, err)
			}
			sc, err := doc.scribe(opts.historyOptions()...)
			if err != nil {
				return f.FailValidation(err)
			}
			if id == "" {
				id = store.NewDocumentID()
			}

			return opts.withStore(f, func(st *store.Store) error {
				info, err := store.SaveScribe(commandContext(cmd), st, id, sc)
				if err != nil {
					return failStore(f, err)
				}
				return reportSaved(f, "Stored", info)
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "document id (default: new UUIDv7)")
	return cmd
}

func newStoreGetCommand(opts *StoreOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:           "get <id>",
		Short:         "Print or export a stored history",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			return opts.withStore(f, func(st *store.Store) error {
				h, err := store.LoadHistorical[string](commandContext(cmd), st, args[0], opts.historyOptions()...)
				if err != nil {
					return failStore(f, err)
				}
				return emitHistorical(f, h, output, "Exported")
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of printing")
	return cmd
}

func newStoreListCommand(opts *StoreOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List stored documents",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			return opts.withStore(f, func(st *store.Store) error {
				docs, err := st.ListDocuments(commandContext(cmd))
				if err != nil {
					return failStore(f, err)
				}
				if f.Format == "json" {
					return f.Success(docs)
				}
				if len(docs) == 0 {
					fmt.Fprintln(f.Writer, "No documents.")
					return nil
				}
				tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tENTRIES\tREMOVED\tUPDATED\tHASH")
				for _, d := range docs {
					fmt.Fprintf(tw, "%s\t%d\t%t\t%d\t%s\n", d.ID, d.EntryCount, d.Removed, d.UpdatedAt, d.HistoryHash[:12])
				}
				return tw.Flush()
			})
		},
	}
}

func newStoreRevertCommand(opts *StoreOptions) *cobra.Command {
	var (
		pos    PositionFlags
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:           "revert <id>",
		Short:         "Drop the entries of a stored history from a position onwards",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			p, err := pos.position(cmd)
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeInvalidFlag, err)
			}

			return opts.withStore(f, func(st *store.Store) error {
				ctx := commandContext(cmd)
				sc, err := store.Load[string](ctx, st, args[0], opts.historyOptions()...)
				if err != nil {
					return failStore(f, err)
				}
				reverted, err := sc.Revert(p)
				if err != nil {
					return f.FailValidation(err)
				}
				if dryRun {
					compiled, err := reverted.Compile()
					if err != nil {
						return f.FailValidation(err)
					}
					return emitHistorical(f, compiled, "", "")
				}
				info, err := store.SaveScribe(ctx, st, args[0], reverted)
				if err != nil {
					return failStore(f, err)
				}
				return reportSaved(f, "Reverted", info)
			})
		},
	}

	pos.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the result without saving")
	return cmd
}

func newStoreDeleteCommand(opts *StoreOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a stored history",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			return opts.withStore(f, func(st *store.Store) error {
				if err := st.DeleteDocument(commandContext(cmd), args[0]); err != nil {
					return failStore(f, err)
				}
				if f.Format == "json" {
					return f.Success(map[string]string{"deleted": args[0]})
				}
				fmt.Fprintf(f.Writer, "✓ Deleted %s\n", args[0])
				return nil
			})
		},
	}
}
