package engine

import (
	"fmt"
	"strings"
)

// Direction is one of the four board shifts.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

const (
	// Validation constants
	MinDim         = 2
	MaxDim         = 8
	MinGoal        = 4
	DefaultDim     = 4
	DefaultGoal    = 2048
	SpawnFourOdds  = 0.1
	EmptyCellGlyph = "_"
)

// Directions lists every direction in probe order. ValidMoves, MovePossible
// and the agents all iterate in this order.
var Directions = []Direction{Left, Right, Up, Down}

// rotations maps a direction to the clockwise quarter turns that orient the
// board so the move becomes a left move.
var rotations = map[Direction]int{
	Left:  0,
	Right: 2,
	Up:    3,
	Down:  1,
}

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool {
	_, ok := rotations[d]
	return ok
}

// ParseDirection accepts "left", "right", "up", "down" and the single-letter
// keys w, a, s, d.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "a":
		return Left, nil
	case "right", "d":
		return Right, nil
	case "up", "w":
		return Up, nil
	case "down", "s":
		return Down, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Board is a square grid of tile values; 0 is an empty cell.
type Board [][]int

// NewBoard returns an empty dim x dim board.
func NewBoard(dim int) Board {
	b := make(Board, dim)
	for i := range b {
		b[i] = make([]int, dim)
	}
	return b
}

// Clone performs a deep copy of the board.
func (b Board) Clone() Board {
	if b == nil {
		return nil
	}
	out := make(Board, len(b))
	for i, row := range b {
		out[i] = make([]int, len(row))
		copy(out[i], row)
	}
	return out
}

// Equal reports whether both boards hold the same cells.
func (b Board) Equal(other Board) bool {
	if len(b) != len(other) {
		return false
	}
	for i := range b {
		if len(b[i]) != len(other[i]) {
			return false
		}
		for j := range b[i] {
			if b[i][j] != other[i][j] {
				return false
			}
		}
	}
	return true
}

// Cell is a board coordinate.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// GameConfig holds the rules of one game.
type GameConfig struct {
	Dim       int  `json:"dim"`
	Goal      int  `json:"goal"`
	StopOnWin bool `json:"stop_on_win"`
	// MaxTurns caps an episode; 0 means unbounded.
	MaxTurns int `json:"max_turns,omitempty"`
}

// GameState is the read-only view handed to an agent each turn. It owns a
// deep copy of the board, so moves applied to it never reach the live game.
type GameState struct {
	Board Board `json:"board"`
	Score int   `json:"score"`
	Dim   int   `json:"dim"`
}
