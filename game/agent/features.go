package agent

import (
	"encoding/binary"
	"fmt"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

// StateKey identifies a snapshot in the Q-table. Two snapshots with the same
// board and score map to the same key. Cells holds the board as row-major
// uvarints, which keeps the key comparable and immutable.
type StateKey struct {
	Dim   int
	Cells string
	Score int
}

// KeyOf derives the table key of a snapshot.
func KeyOf(state *engine.GameState) StateKey {
	buf := make([]byte, 0, state.Dim*state.Dim)
	for _, row := range state.Board {
		for _, v := range row {
			buf = binary.AppendUvarint(buf, uint64(v))
		}
	}
	return StateKey{Dim: state.Dim, Cells: string(buf), Score: state.Score}
}

// Board decodes the key back into a board.
func (k StateKey) Board() (engine.Board, error) {
	board := engine.NewBoard(k.Dim)
	buf := []byte(k.Cells)
	for r := 0; r < k.Dim; r++ {
		for c := 0; c < k.Dim; c++ {
			v, n := binary.Uvarint(buf)
			if n <= 0 {
				return nil, fmt.Errorf("state key truncated at cell (%d,%d)", r, c)
			}
			board[r][c] = int(v)
			buf = buf[n:]
		}
	}
	if len(buf) != 0 {
		return nil, fmt.Errorf("state key has %d trailing bytes", len(buf))
	}
	return board, nil
}

// State decodes the key into a snapshot.
func (k StateKey) State() (*engine.GameState, error) {
	board, err := k.Board()
	if err != nil {
		return nil, err
	}
	return &engine.GameState{Board: board, Score: k.Score, Dim: k.Dim}, nil
}
