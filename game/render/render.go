// Package render draws boards for the terminal, optionally in colour.
package render

import (
	"fmt"
	"strings"

	"github.com/logrusorgru/aurora"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

// Renderer draws boards with the same layout as engine.Render. With colours
// enabled each tile is tinted by its magnitude.
type Renderer struct {
	au aurora.Aurora
}

// New returns a renderer. Pass false for plain output, e.g. when stdout is
// not a terminal.
func New(color bool) *Renderer {
	return &Renderer{au: aurora.NewAurora(color)}
}

// Tile formats one cell padded to its own width, at least
// engine.MinCellWidth columns.
func (r *Renderer) Tile(v int) string {
	return r.tile(v, engine.CellWidth(engine.Board{{v}}))
}

// tile pads the cell to width before colouring it so the grid stays aligned.
func (r *Renderer) tile(v, width int) string {
	if v == 0 {
		return fmt.Sprintf("%*s", width, engine.EmptyCellGlyph)
	}
	cell := fmt.Sprintf("%*d", width, v)
	switch {
	case v <= 4:
		return r.au.White(cell).String()
	case v <= 16:
		return r.au.Yellow(cell).String()
	case v <= 64:
		return r.au.Red(cell).String()
	case v <= 256:
		return r.au.Magenta(cell).String()
	case v <= 1024:
		return r.au.Cyan(cell).String()
	}
	return r.au.Green(cell).Bold().String()
}

// Board draws the grid, one line per row, sized to the largest tile.
func (r *Renderer) Board(b engine.Board) string {
	width := engine.CellWidth(b)
	var sb strings.Builder
	for _, row := range b {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = r.tile(v, width)
		}
		sb.WriteString(strings.Join(cells, "\t"))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// State draws a score line followed by the board.
func (r *Renderer) State(gs *engine.GameState) string {
	header := fmt.Sprintf("score: %s  max tile: %s\n",
		r.au.Bold(gs.Score).String(), r.au.Bold(gs.MaxTile()).String())
	return header + r.Board(gs.Board)
}
