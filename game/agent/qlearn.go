package agent

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

// Params configures a QLearnAgent.
type Params struct {
	Alpha   float64 `json:"alpha"`
	Epsilon float64 `json:"epsilon"`
	Gamma   float64 `json:"gamma"`
	// MaxAttempts is stored and persisted with profiles but not used by the
	// learning rule.
	MaxAttempts int `json:"max_attempts"`
	// NumTraining is the number of episodes after which alpha and epsilon
	// are frozen at 0.
	NumTraining int `json:"num_training"`
}

// DefaultParams returns the standard learning parameters.
func DefaultParams() Params {
	return Params{
		Alpha:       0.2,
		Epsilon:     0.05,
		Gamma:       0.8,
		MaxAttempts: 30,
		NumTraining: 0,
	}
}

// ValidateParams checks that the rates lie in [0,1] and the counts are not
// negative.
func ValidateParams(p Params) error {
	rates := []struct {
		name  string
		value float64
	}{
		{"alpha", p.Alpha},
		{"epsilon", p.Epsilon},
		{"gamma", p.Gamma},
	}
	for _, r := range rates {
		if r.value < 0 || r.value > 1 {
			return fmt.Errorf("%w: %s must be in [0,1], got %v", ErrInvalidParams, r.name, r.value)
		}
	}
	if p.MaxAttempts < 0 {
		return fmt.Errorf("%w: max_attempts cannot be negative", ErrInvalidParams)
	}
	if p.NumTraining < 0 {
		return fmt.Errorf("%w: num_training cannot be negative", ErrInvalidParams)
	}
	return nil
}

// pendingMove is the last (state, action) taken, waiting for the next
// snapshot to compute its reward.
type pendingMove struct {
	state  *engine.GameState
	key    StateKey
	action engine.Direction
}

// QLearnAgent learns a tabular Q-function with epsilon-greedy selection and a
// visit-count exploration bonus.
type QLearnAgent struct {
	alpha       float64
	epsilon     float64
	gamma       float64
	maxAttempts int
	numTraining int

	episodesSoFar int
	frozen        bool

	table   *QTable
	pending *pendingMove
	rng     *rand.Rand
	logger  *slog.Logger
}

// NewQLearnAgent creates a learning agent with an empty table.
func NewQLearnAgent(p Params, rng *rand.Rand, logger *slog.Logger) (*QLearnAgent, error) {
	if err := ValidateParams(p); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("random source cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QLearnAgent{
		alpha:       p.Alpha,
		epsilon:     p.Epsilon,
		gamma:       p.Gamma,
		maxAttempts: p.MaxAttempts,
		numTraining: p.NumTraining,
		table:       NewQTable(),
		rng:         rng,
		logger:      logger,
	}, nil
}

// Accessors

func (a *QLearnAgent) EpisodesSoFar() int   { return a.episodesSoFar }
func (a *QLearnAgent) NumTraining() int     { return a.numTraining }
func (a *QLearnAgent) Alpha() float64       { return a.alpha }
func (a *QLearnAgent) SetAlpha(v float64)   { a.alpha = v }
func (a *QLearnAgent) Epsilon() float64     { return a.epsilon }
func (a *QLearnAgent) SetEpsilon(v float64) { a.epsilon = v }
func (a *QLearnAgent) Gamma() float64       { return a.gamma }
func (a *QLearnAgent) MaxAttempts() int     { return a.maxAttempts }
func (a *QLearnAgent) Table() *QTable       { return a.table }
func (a *QLearnAgent) Frozen() bool         { return a.frozen }

// IncrementEpisodesSoFar counts one more finished episode.
func (a *QLearnAgent) IncrementEpisodesSoFar() {
	a.episodesSoFar++
}

// GetQValue returns Q(state, action), 0 for unseen pairs.
func (a *QLearnAgent) GetQValue(state *engine.GameState, action engine.Direction) float64 {
	return a.qValue(KeyOf(state), action)
}

func (a *QLearnAgent) qValue(key StateKey, action engine.Direction) float64 {
	e, _ := a.table.Get(key, action)
	return e.Value
}

// MaxQValue returns the best value over the actions seen for state, 0 if the
// state is unseen.
func (a *QLearnAgent) MaxQValue(state *engine.GameState) float64 {
	return a.table.Max(KeyOf(state))
}

// GetCount returns how often action was taken in state.
func (a *QLearnAgent) GetCount(state *engine.GameState, action engine.Direction) int {
	return a.count(KeyOf(state), action)
}

func (a *QLearnAgent) count(key StateKey, action engine.Direction) int {
	e, _ := a.table.Get(key, action)
	return e.Visits
}

// Learn applies the Q-learning update. The visit count is left unchanged.
func (a *QLearnAgent) Learn(state *engine.GameState, action engine.Direction, reward float64, next *engine.GameState) {
	a.learn(KeyOf(state), action, reward, KeyOf(next))
}

func (a *QLearnAgent) learn(key StateKey, action engine.Direction, reward float64, next StateKey) {
	e, _ := a.table.Get(key, action)
	e.Value = (1-a.alpha)*e.Value + a.alpha*(reward+a.gamma*a.table.Max(next))
	a.table.Set(key, action, e)
}

// UpdateCount records one more visit of (state, action).
func (a *QLearnAgent) UpdateCount(state *engine.GameState, action engine.Direction) {
	a.updateCount(KeyOf(state), action)
}

func (a *QLearnAgent) updateCount(key StateKey, action engine.Direction) {
	e, _ := a.table.Get(key, action)
	e.Visits++
	a.table.Set(key, action, e)
}

// GetMove learns from the pending move, if any, then picks the next one.
// With probability epsilon the move is uniformly random; otherwise it is the
// first legal move maximising ExplorationFn in engine.Directions order.
func (a *QLearnAgent) GetMove(state *engine.GameState) (engine.Direction, bool) {
	moves := state.ValidMoves()
	if len(moves) == 0 {
		// the pending move is learned in Final
		return 0, false
	}

	key := KeyOf(state)
	if a.pending != nil {
		reward := ComputeReward(a.pending.state, state)
		a.learn(a.pending.key, a.pending.action, reward, key)
	}

	var action engine.Direction
	if a.rng.Float64() < a.epsilon {
		action = moves[a.rng.Intn(len(moves))]
	} else {
		action = a.bestAction(key, moves)
	}

	a.updateCount(key, action)
	a.pending = &pendingMove{state: state.Clone(), key: key, action: action}
	return action, true
}

func (a *QLearnAgent) bestAction(key StateKey, moves []engine.Direction) engine.Direction {
	best := moves[0]
	bestScore := ExplorationFn(a.qValue(key, best), a.count(key, best))
	for _, dir := range moves[1:] {
		score := ExplorationFn(a.qValue(key, dir), a.count(key, dir))
		if score > bestScore {
			best, bestScore = dir, score
		}
	}
	return best
}

// Final learns from the last move against the terminal snapshot and closes
// the episode. Once NumTraining episodes have been played, alpha and epsilon
// are set to 0.
func (a *QLearnAgent) Final(state *engine.GameState) {
	a.logger.Debug("game ended", "game", a.episodesSoFar+1, "score", state.Score)

	if a.pending != nil {
		reward := ComputeReward(a.pending.state, state)
		a.learn(a.pending.key, a.pending.action, reward, KeyOf(state))
	}
	a.pending = nil
	a.IncrementEpisodesSoFar()

	if a.episodesSoFar >= a.numTraining {
		if !a.frozen {
			a.logger.Info("training done, alpha and epsilon frozen", "episodes", a.episodesSoFar)
		}
		a.frozen = true
		a.SetAlpha(0)
		a.SetEpsilon(0)
	}
}
