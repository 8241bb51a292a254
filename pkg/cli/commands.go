package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/funvibe/speclink/internal/prettyprinter"
	"github.com/funvibe/speclink/internal/symbols"
	"github.com/funvibe/speclink/internal/tablecache"
)

func newCollectCommand(app *App) *cobra.Command {
	var builtins bool
	cmd := &cobra.Command{
		Use:   "collect FILE...",
		Short: "Print the definitions collected from each module",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			forest, err := app.load(args)
			if err != nil {
				return err
			}
			ctx, err := app.run(forest, StageCollect)
			if err != nil {
				return err
			}
			app.printTables(ctx.Tables, builtins)
			return nil
		},
	}
	cmd.Flags().BoolVar(&builtins, "builtins", false, "include builtin operators")
	return cmd
}

func newResolveCommand(app *App) *cobra.Command {
	var builtins bool
	cmd := &cobra.Command{
		Use:   "resolve FILE...",
		Short: "Resolve imports and instances and print the resulting tables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			forest, err := app.load(args)
			if err != nil {
				return err
			}
			ctx, err := app.run(forest, StageLink)
			if err != nil {
				return err
			}
			app.printTables(ctx.Tables, builtins)
			return nil
		},
	}
	cmd.Flags().BoolVar(&builtins, "builtins", false, "include builtin operators")
	return cmd
}

func newFlattenCommand(app *App) *cobra.Command {
	var noInline bool
	cmd := &cobra.Command{
		Use:   "flatten FILE...",
		Short: "Print the modules with every instance flattened",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			forest, err := app.load(args)
			if err != nil {
				return err
			}
			stage := StageInline
			if noInline {
				stage = StageLink
			}
			ctx, err := app.run(forest, stage)
			if err != nil {
				return err
			}
			fmt.Fprint(app.Stdout, prettyprinter.PrintModule(ctx.Modules...))
			return nil
		},
	}
	cmd.Flags().BoolVar(&noInline, "no-inline", false, "keep type aliases")
	return cmd
}

func newTablesCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tables FILE...",
		Short: "Summarize the linked tables, using the cache when configured",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := app.tableRows(cmd, args)
			if err != nil {
				return err
			}
			app.printRows(rows)
			return nil
		},
	}
}

// tableRows runs the full pipeline on paths, or answers from the cache when
// the same documents were summarized before.
func (a *App) tableRows(cmd *cobra.Command, paths []string) ([]tablecache.Row, error) {
	if a.settings.Cache == "" {
		forest, err := a.load(paths)
		if err != nil {
			return nil, err
		}
		ctx, err := a.run(forest, StageInline)
		if err != nil {
			return nil, err
		}
		return tablecache.Rows(ctx.Tables), nil
	}

	docs, err := readDocuments(paths)
	if err != nil {
		return nil, &ExitError{Code: ExitFailure, Err: err}
	}
	digest := tablecache.Digest(docs...)

	cache, err := tablecache.Open(a.settings.Cache)
	if err != nil {
		return nil, &ExitError{Code: ExitFailure, Err: err}
	}
	defer cache.Close()

	entry, ok, err := cache.Lookup(cmd.Context(), digest)
	if err != nil {
		return nil, &ExitError{Code: ExitFailure, Err: err}
	}
	if ok {
		a.logger.Info("cache hit", "digest", digest[:12], "run", entry.RunID)
		return entry.Rows, nil
	}

	forest, err := a.load(paths)
	if err != nil {
		return nil, err
	}
	ctx, err := a.run(forest, StageInline)
	if err != nil {
		return nil, err
	}
	rows := tablecache.Rows(ctx.Tables)
	if err := cache.Store(cmd.Context(), digest, ctx.RunID, rows); err != nil {
		return nil, &ExitError{Code: ExitFailure, Err: err}
	}
	a.logger.Info("cache store", "digest", digest[:12], "run", ctx.RunID, "rows", len(rows))
	return rows, nil
}

func newBuiltinsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "builtins",
		Short: "List the builtin operators available in every module",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			byCategory := make(map[symbols.BuiltinCategory][]string)
			for _, name := range symbols.BuiltinNames() {
				c, _ := symbols.BuiltinCategoryOf(name)
				byCategory[c] = append(byCategory[c], name)
			}
			for _, c := range symbols.BuiltinCategories() {
				names, ok := byCategory[c]
				if !ok {
					continue
				}
				fmt.Fprintln(app.Stdout, app.out.Title.Render(string(c)))
				fmt.Fprintln(app.Stdout, "  "+strings.Join(names, " "))
			}
			return nil
		},
	}
}

func newCacheCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Maintain the table cache",
	}

	var olderThan time.Duration
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Remove cached summaries older than a duration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.settings.Cache == "" {
				return &ExitError{Code: ExitFailure, Err: fmt.Errorf("no cache configured (use --cache)")}
			}
			cache, err := tablecache.Open(app.settings.Cache)
			if err != nil {
				return &ExitError{Code: ExitFailure, Err: err}
			}
			defer cache.Close()

			n, err := cache.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return &ExitError{Code: ExitFailure, Err: err}
			}
			fmt.Fprintf(app.Stdout, "removed %d cached run(s)\n", n)
			return nil
		},
	}
	prune.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "age of the entries to remove")
	cmd.AddCommand(prune)
	return cmd
}

func (a *App) printTables(tables symbols.LookupTableByModule, builtins bool) {
	opts := prettyprinter.TableOptions{IncludeBuiltins: builtins}
	for i, name := range tables.ModuleNames() {
		if i > 0 {
			fmt.Fprintln(a.Stdout)
		}
		fmt.Fprintln(a.Stdout, a.out.Title.Render("module "+name))
		fmt.Fprint(a.Stdout, prettyprinter.PrintTable(tables[name], opts))
	}
}

func (a *App) printRows(rows []tablecache.Row) {
	w := tabwriter.NewWriter(a.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MODULE\tNAME\tNAMESPACE\tKIND\tREF\tSCOPE\tTYPE")
	for _, r := range rows {
		typ := r.Type
		if typ == "" {
			typ = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n", r.Module, r.Identifier, r.Namespace, r.Kind, r.Reference, r.Scope, typ)
	}
	w.Flush()
}
