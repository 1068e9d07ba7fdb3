package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqljudge/internal/compare"
	"github.com/leapstack-labs/sqljudge/internal/store"
	"github.com/leapstack-labs/sqljudge/internal/table"
)

// CompareOptions holds options for the compare command.
type CompareOptions struct {
	Category string
	NoCache  bool
	Show     bool
	MaxRows  int
}

// NewCompareCommand creates the compare command.
func NewCompareCommand() *cobra.Command {
	opts := &CompareOptions{}

	cmd := &cobra.Command{
		Use:   "compare REFERENCE_SQL CANDIDATE_SQL",
		Short: "Compare two query results against the configured store",
		Long: `Execute a reference query and a candidate query against the
configured store and print the verdict of each equivalence judge.

Arguments starting with @ are read from files. With --no-cache the
queries run directly against the store; the bag verdict then surfaces
execution errors instead of folding them into an error result.`,
		Example: `  sqljudge compare "SELECT name FROM users" "SELECT name FROM accounts"

  # Read queries from files and show the fetched tables
  sqljudge compare @reference.sql @candidate.sql --show`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", "", "Question category (order_by categories keep row order significant)")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Execute directly, bypassing the result cache")
	cmd.Flags().BoolVar(&opts.Show, "show", false, "Render both result tables")
	cmd.Flags().IntVar(&opts.MaxRows, "max-rows", 20, "Row limit when rendering results")

	return cmd
}

func runCompare(cmd *cobra.Command, refArg, candArg string, opts *CompareOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cc.Cfg

	refSQL, err := resolveSQL(refArg)
	if err != nil {
		return err
	}
	candSQL, err := resolveSQL(candArg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var ref, cand *table.Table
	if opts.NoCache {
		executor := store.NewExecutor(store.ExecutorOptions{
			Logger:       cc.Logger,
			QueryTimeout: time.Duration(cfg.QueryTimeoutSeconds) * time.Second,
		})
		ref = executor.Run(ctx, cfg.Store, refSQL)
		cand = executor.Run(ctx, cfg.Store, candSQL)
	} else {
		ref = cc.Cache.Execute(ctx, cfg.Store, refSQL)
		cand = cc.Cache.Execute(ctx, cfg.Store, candSQL)
	}

	if ref.IsErrorTable() {
		return fmt.Errorf("reference query failed: %s", ref.ErrorMessage())
	}
	if cand.IsErrorTable() {
		return fmt.Errorf("candidate query failed: %s", cand.ErrorMessage())
	}

	comparator := compare.New(compare.Options{
		NumericTolerance: cfg.NumericTolerance,
		RoundDecimals:    cfg.RoundDecimals,
		NumericThreshold: cfg.NumericThreshold,
		Logger:           cc.Logger,
	})

	tolerant := comparator.Compare(ref, cand, opts.Category, "", refSQL, candSQL)
	var bag bool
	if opts.NoCache {
		bag, err = store.BagEqualQueries(ctx, cc.Logger, cfg.Store, refSQL, candSQL)
		if err != nil {
			return fmt.Errorf("failed bag comparison: %w", err)
		}
	} else {
		bag = compare.BagEqual(ref, cand)
	}
	multiset := compare.ColumnMultisetMatch(cand, ref)

	out := cmd.OutOrStdout()
	vt := prettytable.NewWriter()
	vt.SetOutputMirror(out)
	vt.SetStyle(prettytable.StyleLight)
	vt.AppendHeader(prettytable.Row{"Judge", "Verdict"})
	vt.AppendRow(prettytable.Row{"tolerant", verdict(tolerant)})
	vt.AppendRow(prettytable.Row{"bag", verdict(bag)})
	vt.AppendRow(prettytable.Row{"multiset", verdict(multiset)})
	vt.Render()

	fmt.Fprintf(out, "\nreference: %d rows x %d cols, candidate: %d rows x %d cols\n",
		ref.NumRows(), ref.NumCols(), cand.NumRows(), cand.NumCols())

	if opts.Show {
		fmt.Fprintln(out, "\nReference:")
		renderResult(cmd, ref, opts.MaxRows)
		fmt.Fprintln(out, "\nCandidate:")
		renderResult(cmd, cand, opts.MaxRows)
	}
	return nil
}

// resolveSQL returns the argument itself, or the contents of the file it
// names when prefixed with @.
func resolveSQL(arg string) (string, error) {
	if !strings.HasPrefix(arg, "@") {
		return arg, nil
	}
	data, err := os.ReadFile(strings.TrimPrefix(arg, "@"))
	if err != nil {
		return "", fmt.Errorf("failed to read query file: %w", err)
	}
	return string(data), nil
}

func verdict(ok bool) string {
	if ok {
		return "equivalent"
	}
	return "different"
}

// renderResult prints a fetched table, truncated to maxRows.
func renderResult(cmd *cobra.Command, t *table.Table, maxRows int) {
	w := prettytable.NewWriter()
	w.SetOutputMirror(cmd.OutOrStdout())
	w.SetStyle(prettytable.StyleLight)

	header := make(prettytable.Row, t.NumCols())
	for i, name := range t.Names() {
		header[i] = name
	}
	w.AppendHeader(header)

	rows := t.NumRows()
	truncated := false
	if maxRows > 0 && rows > maxRows {
		rows = maxRows
		truncated = true
	}
	for r := 0; r < rows; r++ {
		row := make(prettytable.Row, t.NumCols())
		for c, v := range t.Row(r) {
			row[c] = v.String()
		}
		w.AppendRow(row)
	}
	w.Render()
	if truncated {
		fmt.Fprintf(cmd.OutOrStdout(), "(%d of %d rows shown)\n", rows, t.NumRows())
	}
}
