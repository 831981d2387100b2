package agent

import "github.com/wricardo/mcp-training/tilemerge/game/engine"

const (
	// EmptyCellReward is paid per empty cell of the resulting board.
	EmptyCellReward = 10.0
	// ExplorationConstant scales the visit-count bonus of ExplorationFn.
	ExplorationConstant = 10.0
)

// ComputeReward scores the transition from start to end. It pays the score
// gained, a bonus per empty cell, and a corner bonus when the largest tile of
// end sits in the top-left cell. The corner bonus is based on the score of
// start, not end.
func ComputeReward(start, end *engine.GameState) float64 {
	gained := float64(end.Score - start.Score)
	empty := float64(end.EmptyCount())

	var corner float64
	if end.LargestInCorner() {
		corner = float64(start.Score) + 0.5*gained
	}

	return gained + corner + empty*EmptyCellReward
}

// ExplorationFn ranks an action by its value plus a bonus that shrinks as the
// action is tried more often.
func ExplorationFn(value float64, count int) float64 {
	return value + ExplorationConstant/float64(count+1)
}
