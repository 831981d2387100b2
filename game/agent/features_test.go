package agent

import (
	"testing"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

func TestKeyOfEquality(t *testing.T) {
	a := state(engine.Board{{2, 0}, {0, 4}}, 8)
	b := state(engine.Board{{2, 0}, {0, 4}}, 8)
	if KeyOf(a) != KeyOf(b) {
		t.Error("Expected identical snapshots to share a key")
	}

	if KeyOf(a) == KeyOf(state(engine.Board{{2, 0}, {0, 4}}, 12)) {
		t.Error("Expected different scores to give different keys")
	}
	if KeyOf(a) == KeyOf(state(engine.Board{{0, 2}, {0, 4}}, 8)) {
		t.Error("Expected different boards to give different keys")
	}
}

func TestKeyOfIsDetached(t *testing.T) {
	s := state(engine.Board{{2, 0}, {0, 4}}, 8)
	key := KeyOf(s)
	s.Board[0][0] = 1024
	if key != KeyOf(state(engine.Board{{2, 0}, {0, 4}}, 8)) {
		t.Error("Key changed after the source board was mutated")
	}
}

func TestStateKeyDecode(t *testing.T) {
	s := state(engine.Board{
		{0, 2, 4},
		{128, 2048, 0},
		{65536, 0, 2},
	}, 99)
	decoded, err := KeyOf(s).State()
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if !decoded.Equal(s) || decoded.Dim != 3 {
		t.Errorf("Expected %v, got %v", s, decoded)
	}

	bad := StateKey{Dim: 2, Cells: "\x02"}
	if _, err := bad.Board(); err == nil {
		t.Error("Expected error for truncated key")
	}
}
