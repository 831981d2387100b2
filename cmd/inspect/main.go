// Command inspect prints summary statistics about a learned value table:
// entry and state counts, visit totals, the value range and how entries are
// spread over actions. With --top it also lists the most visited entries
// with their boards.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/tilemerge/game/agent"
	"github.com/wricardo/mcp-training/tilemerge/game/engine"
	"github.com/wricardo/mcp-training/tilemerge/game/store"
)

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(w io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "summarise a value table (.parquet or .db)",
		ArgsUsage: "<table path>",
		Writer:    w,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print statistics as JSON"},
			&cli.IntFlag{Name: "top", Usage: "list the N most visited entries"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("expected exactly one table path, got %d", cmd.Args().Len())
			}
			return inspect(cmd.Writer, cmd.Args().First(), cmd.Bool("json"), cmd.Int("top"))
		},
	}
}

func inspect(w io.Writer, path string, asJSON bool, top int) error {
	rows, err := store.LoadTable(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	table, err := agent.TableFromRows(rows)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	stats := table.Stats()

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	printStats(w, path, stats)
	if top > 0 {
		printTop(w, topEntries(rows, top))
	}
	return nil
}

func printStats(w io.Writer, path string, s agent.Stats) {
	fmt.Fprintf(w, "\n=== %s ===\n", path)
	fmt.Fprintf(w, "Entries: %d\n", s.Entries)
	fmt.Fprintf(w, "States: %d\n", s.States)
	if s.Entries == 0 {
		fmt.Fprintf(w, "Table is empty\n")
		return
	}

	dims := make([]string, len(s.Dims))
	for i, d := range s.Dims {
		dims[i] = fmt.Sprintf("%dx%d", d, d)
	}
	fmt.Fprintf(w, "Boards: %s\n", strings.Join(dims, ", "))
	fmt.Fprintf(w, "Total visits: %d\n", s.TotalVisits)
	fmt.Fprintf(w, "Values: min %.3f, max %.3f, mean %.3f\n", s.MinValue, s.MaxValue, s.MeanValue)

	fmt.Fprintf(w, "Entries per action:\n")
	for _, dir := range engine.Directions {
		fmt.Fprintf(w, "   %-5s %d\n", dir, s.PerAction[dir.String()])
	}
}

// topEntries returns the n most visited rows, highest value first on ties
func topEntries(rows []store.TableRow, n int) []store.TableRow {
	sorted := make([]store.TableRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Visits != sorted[j].Visits {
			return sorted[i].Visits > sorted[j].Visits
		}
		return sorted[i].Value > sorted[j].Value
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

func printTop(w io.Writer, rows []store.TableRow) {
	fmt.Fprintf(w, "\nMost visited entries:\n")
	for i, r := range rows {
		fmt.Fprintf(w, "%d. %s  value %.3f  visits %d  score %d\n", i+1, engine.Direction(r.Action), r.Value, r.Visits, r.Score)
		fmt.Fprint(w, engine.Render(rowBoard(r)))
	}
}

func rowBoard(r store.TableRow) engine.Board {
	dim := int(r.Dim)
	board := engine.NewBoard(dim)
	for k, v := range r.Cells {
		board[k/dim][k%dim] = int(v)
	}
	return board
}
