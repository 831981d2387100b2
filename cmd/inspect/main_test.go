package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/tilemerge/game/agent"
	"github.com/wricardo/mcp-training/tilemerge/game/engine"
	"github.com/wricardo/mcp-training/tilemerge/game/store"
)

// writeTable saves a small table with two states to path
func writeTable(t *testing.T, path string) {
	t.Helper()
	table := agent.NewQTable()
	a := agent.KeyOf(engine.NewGameState(engine.Board{{2, 0}, {0, 2}}, 0, 2))
	b := agent.KeyOf(engine.NewGameState(engine.Board{{4, 2}, {0, 0}}, 4, 2))
	table.Set(a, engine.Left, agent.Entry{Value: 1.5, Visits: 3})
	table.Set(a, engine.Up, agent.Entry{Value: -0.5, Visits: 1})
	table.Set(b, engine.Down, agent.Entry{Value: 4, Visits: 7})

	if err := store.SaveTable(path, table.Rows()); err != nil {
		t.Fatalf("Failed to save table: %v", err)
	}
}

func TestInspectText(t *testing.T) {
	for _, name := range []string{"table.parquet", "table.db"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			writeTable(t, path)

			var out bytes.Buffer
			if err := inspect(&out, path, false, 1); err != nil {
				t.Fatalf("inspect failed: %v", err)
			}
			text := out.String()

			for _, want := range []string{
				"Entries: 3",
				"States: 2",
				"Boards: 2x2",
				"Total visits: 11",
				"min -0.500, max 4.000",
				"1. down  value 4.000  visits 7",
			} {
				if !strings.Contains(text, want) {
					t.Errorf("Expected %q in output:\n%s", want, text)
				}
			}
			if strings.Contains(text, "2. ") {
				t.Error("Expected only one entry with --top 1")
			}
		})
	}
}

func TestInspectJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.parquet")
	writeTable(t, path)

	var out bytes.Buffer
	if err := inspect(&out, path, true, 0); err != nil {
		t.Fatalf("inspect failed: %v", err)
	}

	var stats agent.Stats
	if err := json.Unmarshal(out.Bytes(), &stats); err != nil {
		t.Fatalf("Output is not JSON: %v", err)
	}
	if stats.Entries != 3 || stats.States != 2 || stats.TotalVisits != 11 {
		t.Errorf("Unexpected stats %+v", stats)
	}
	if stats.PerAction["left"] != 1 || stats.PerAction["down"] != 1 {
		t.Errorf("Unexpected per-action counts %v", stats.PerAction)
	}
}

func TestInspectMissingTable(t *testing.T) {
	var out bytes.Buffer
	err := inspect(&out, filepath.Join(t.TempDir(), "missing.parquet"), false, 0)
	if !errors.Is(err, store.ErrTableNotFound) {
		t.Errorf("Expected ErrTableNotFound, got %v", err)
	}
}

func TestTopEntries(t *testing.T) {
	rows := []store.TableRow{
		{Value: 1, Visits: 2},
		{Value: 5, Visits: 9},
		{Value: 3, Visits: 2},
	}
	top := topEntries(rows, 2)
	if len(top) != 2 || top[0].Value != 5 || top[1].Value != 3 {
		t.Errorf("Unexpected order %+v", top)
	}
	if rows[0].Value != 1 {
		t.Error("topEntries reordered its input")
	}
	if len(topEntries(rows, 10)) != 3 {
		t.Error("Expected every row when n exceeds the table")
	}
}

func TestAppRequiresPath(t *testing.T) {
	var out bytes.Buffer
	if err := newApp(&out).Run(context.Background(), []string{"inspect"}); err == nil {
		t.Error("Expected error without a table path")
	}
}
