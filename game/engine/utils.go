package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// EmptyCells returns the empty cells of the grid in row-major order
func EmptyCells(b Board) []Cell {
	var cells []Cell
	for r, row := range b {
		for c, v := range row {
			if v == 0 {
				cells = append(cells, Cell{Row: r, Col: c})
			}
		}
	}
	return cells
}

// CountEmpty counts the empty cells of the grid
func CountEmpty(b Board) int {
	count := 0
	for _, row := range b {
		for _, v := range row {
			if v == 0 {
				count++
			}
		}
	}
	return count
}

// MaxTile returns the largest tile value on the grid
func MaxTile(b Board) int {
	best := 0
	for _, row := range b {
		for _, v := range row {
			if v > best {
				best = v
			}
		}
	}
	return best
}

// ReachedGoal reports whether any tile is at least goal
func ReachedGoal(b Board, goal int) bool {
	for _, row := range b {
		for _, v := range row {
			if v >= goal {
				return true
			}
		}
	}
	return false
}

// AnyMovePossible simulates every direction on scratch copies
func AnyMovePossible(b Board) bool {
	for _, dir := range Directions {
		if _, _, moved := Slide(b, dir, false); moved {
			return true
		}
	}
	return false
}

// MinCellWidth is the narrowest rendered cell.
const MinCellWidth = 4

// CellWidth returns the column width that fits every tile of b, at least
// MinCellWidth.
func CellWidth(b Board) int {
	return max(MinCellWidth, len(strconv.Itoa(MaxTile(b))))
}

// Render draws the board as rows of right-aligned cells separated by tabs,
// with empty cells shown as EmptyCellGlyph. All cells share the width of the
// largest tile.
func Render(b Board) string {
	width := CellWidth(b)
	var sb strings.Builder
	for _, row := range b {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == 0 {
				cells[i] = fmt.Sprintf("%*s", width, EmptyCellGlyph)
			} else {
				cells[i] = fmt.Sprintf("%*d", width, v)
			}
		}
		sb.WriteString(strings.Join(cells, "\t"))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// NewGameState snapshots board and score. The board is deep-copied.
func NewGameState(board Board, score, dim int) *GameState {
	return &GameState{
		Board: board.Clone(),
		Score: score,
		Dim:   dim,
	}
}

// Clone performs a deep copy of the snapshot.
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	return NewGameState(gs.Board, gs.Score, gs.Dim)
}

// GetScore returns the score at the time of the snapshot
func (gs *GameState) GetScore() int {
	return gs.Score
}

// EmptyCount counts the empty cells of the snapshot
func (gs *GameState) EmptyCount() int {
	return CountEmpty(gs.Board)
}

// MaxTile returns the largest tile in the snapshot
func (gs *GameState) MaxTile() int {
	return MaxTile(gs.Board)
}

// LargestInCorner reports whether the top-left cell holds the largest tile.
func (gs *GameState) LargestInCorner() bool {
	if len(gs.Board) == 0 || len(gs.Board[0]) == 0 {
		return false
	}
	return gs.Board[0][0] == MaxTile(gs.Board)
}

// Equal compares board contents and score.
func (gs *GameState) Equal(other *GameState) bool {
	if gs == nil || other == nil {
		return gs == other
	}
	return gs.Score == other.Score && gs.Board.Equal(other.Board)
}

func (gs *GameState) String() string {
	return Render(gs.Board)
}
