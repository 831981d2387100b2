package agent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

func TestSaveLoadTable(t *testing.T) {
	for _, name := range []string{"qtable.parquet", "qtable.db"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			src := newTestAgent(t, DefaultParams())
			s := state(engine.Board{{0, 2}, {4, 0}}, 4)
			src.Table().Set(KeyOf(s), engine.Left, Entry{Value: 3.5, Visits: 7})
			src.Table().Set(KeyOf(s), engine.Up, Entry{Value: -1, Visits: 2})

			if err := src.SaveTable(path); err != nil {
				t.Fatalf("SaveTable failed: %v", err)
			}

			dst := newTestAgent(t, DefaultParams())
			dst.LoadTable(path)
			if dst.Table().Len() != 2 {
				t.Fatalf("Expected 2 entries, got %d", dst.Table().Len())
			}
			if dst.GetQValue(s, engine.Left) != 3.5 || dst.GetCount(s, engine.Left) != 7 {
				t.Errorf("Left entry mismatch: %v/%d", dst.GetQValue(s, engine.Left), dst.GetCount(s, engine.Left))
			}
			if dst.GetQValue(s, engine.Up) != -1 || dst.GetCount(s, engine.Up) != 2 {
				t.Errorf("Up entry mismatch: %v/%d", dst.GetQValue(s, engine.Up), dst.GetCount(s, engine.Up))
			}
		})
	}
}

func TestLoadTableMissingStartsEmpty(t *testing.T) {
	a := newTestAgent(t, DefaultParams())
	s := state(engine.Board{{0, 2}, {4, 0}}, 4)
	a.Table().Set(KeyOf(s), engine.Left, Entry{Value: 1})

	a.LoadTable(filepath.Join(t.TempDir(), "missing.parquet"))
	if a.Table().Len() != 0 {
		t.Errorf("Expected empty table, got %d entries", a.Table().Len())
	}
}

func TestLoadTableCorruptStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.parquet")
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	a := newTestAgent(t, DefaultParams())
	a.LoadTable(path)
	if a.Table() == nil || a.Table().Len() != 0 {
		t.Error("Expected an empty table after a corrupt load")
	}
}
