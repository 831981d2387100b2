package agent

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

var (
	ErrUnknownAgent  = errors.New("unknown agent kind")
	ErrInvalidParams = errors.New("invalid agent parameters")
)

// Kind names an agent implementation in profiles and on the command line.
type Kind string

const (
	KindQLearn   Kind = "qlearn"
	KindRandom   Kind = "random"
	KindPriority Kind = "priority"
)

// Kinds lists every known agent kind.
var Kinds = []Kind{KindQLearn, KindRandom, KindPriority}

// Agent is a player driven by a session.
type Agent interface {
	// GetMove returns the next direction for state. ok is false when the
	// agent has no move to offer.
	GetMove(state *engine.GameState) (dir engine.Direction, ok bool)

	// Final is called once per episode with the terminal snapshot.
	Final(state *engine.GameState)
}

// New builds an agent of the given kind. params only applies to KindQLearn.
func New(kind Kind, params Params, rng *rand.Rand, logger *slog.Logger) (Agent, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source cannot be nil")
	}
	switch kind {
	case KindQLearn:
		return NewQLearnAgent(params, rng, logger)
	case KindRandom:
		return NewRandomAgent(rng), nil
	case KindPriority:
		return NewPriorityAgent(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAgent, kind)
}

// RandomAgent picks uniformly among the legal moves.
type RandomAgent struct {
	rng *rand.Rand
}

func NewRandomAgent(rng *rand.Rand) *RandomAgent {
	return &RandomAgent{rng: rng}
}

func (a *RandomAgent) GetMove(state *engine.GameState) (engine.Direction, bool) {
	moves := state.ValidMoves()
	if len(moves) == 0 {
		return 0, false
	}
	return moves[a.rng.Intn(len(moves))], true
}

func (a *RandomAgent) Final(*engine.GameState) {}

// PriorityOrder is the preference order of PriorityAgent.
var PriorityOrder = []engine.Direction{engine.Left, engine.Down, engine.Right, engine.Up}

// PriorityAgent plays the first legal move in PriorityOrder.
type PriorityAgent struct{}

func NewPriorityAgent() *PriorityAgent {
	return &PriorityAgent{}
}

func (PriorityAgent) GetMove(state *engine.GameState) (engine.Direction, bool) {
	for _, dir := range PriorityOrder {
		if state.CanMove(dir) {
			return dir, true
		}
	}
	return 0, false
}

func (PriorityAgent) Final(*engine.GameState) {}
