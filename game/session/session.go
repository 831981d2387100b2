package session

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/wricardo/mcp-training/tilemerge/game/agent"
	"github.com/wricardo/mcp-training/tilemerge/game/engine"
)

var (
	ErrSessionFinished = errors.New("session already finished")
	ErrNoAgent         = errors.New("session has no agent")
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusSetup    Status = "setup"
	StatusPlaying  Status = "playing"
	StatusWon      Status = "won"
	StatusGameOver Status = "game_over"
)

// Reason explains why an episode ended.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonWon         Reason = "won"
	ReasonNoMoves     Reason = "no_moves"
	ReasonIllegalMove Reason = "illegal_move"
	ReasonAgentPassed Reason = "agent_passed"
	ReasonTurnLimit   Reason = "turn_limit"
)

// TurnEvent describes one applied move.
type TurnEvent struct {
	Turn int              `json:"turn"`
	Move engine.Direction `json:"move"`
	// AfterMove is the board right after the shift, before the new tile.
	AfterMove engine.Board `json:"after_move"`
	// Board includes the spawned tile.
	Board engine.Board `json:"board"`
	Score int          `json:"score"`
}

// TurnHook is called after every applied move.
type TurnHook func(TurnEvent)

// Result summarises a finished (or interrupted) episode.
type Result struct {
	Status  Status       `json:"status"`
	Reason  Reason       `json:"reason"`
	Won     bool         `json:"won"`
	Score   int          `json:"score"`
	MaxTile int          `json:"max_tile"`
	Turns   int          `json:"turns"`
	Board   engine.Board `json:"board"`
}

// Option configures a Session.
type Option func(*Session)

// WithTurnHook registers a hook called after every applied move.
func WithTurnHook(hook TurnHook) Option {
	return func(s *Session) { s.hook = hook }
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session runs one episode: it owns the live board, spawns tiles and asks
// its agent for a move each turn.
type Session struct {
	config   engine.GameConfig
	engine   engine.Engine
	agent    agent.Agent
	status   Status
	reason   Reason
	won      bool
	finished bool
	turns    int
	hook     TurnHook
	logger   *slog.Logger
}

// New sets up a session on an empty board and spawns the two starting tiles.
// a may be nil for a manually driven session.
func New(cfg engine.GameConfig, a agent.Agent, rng *rand.Rand, opts ...Option) (*Session, error) {
	if err := engine.ValidateGameConfig(&cfg); err != nil {
		return nil, err
	}
	eng, err := engine.NewEngine(cfg.Dim, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	s := newSession(cfg, eng, a, opts)
	eng.AddNewTile()
	eng.AddNewTile()
	s.status = StatusPlaying
	return s, nil
}

// NewFromBoard starts a session on an existing board without spawning tiles.
func NewFromBoard(cfg engine.GameConfig, board engine.Board, score int, a agent.Agent, rng *rand.Rand, opts ...Option) (*Session, error) {
	if err := engine.ValidateGameConfig(&cfg); err != nil {
		return nil, err
	}
	if len(board) != cfg.Dim {
		return nil, fmt.Errorf("%w: board has %d rows, want %d", engine.ErrInvalidConfig, len(board), cfg.Dim)
	}
	eng, err := engine.NewEngineFromBoard(board, score, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	s := newSession(cfg, eng, a, opts)
	s.status = StatusPlaying
	return s, nil
}

func newSession(cfg engine.GameConfig, eng engine.Engine, a agent.Agent, opts []Option) *Session {
	s := &Session{
		config: cfg,
		engine: eng,
		agent:  a,
		status: StatusSetup,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the rules of the session
func (s *Session) Config() engine.GameConfig { return s.config }

// Status returns the lifecycle state
func (s *Session) Status() Status { return s.status }

// Reason returns why the session ended, or ReasonNone while it runs
func (s *Session) Reason() Reason { return s.reason }

// Finished reports whether the episode is over
func (s *Session) Finished() bool { return s.finished }

// Turns returns the number of applied moves
func (s *Session) Turns() int { return s.turns }

// State returns a deep-copied snapshot of the live board
func (s *Session) State() *engine.GameState { return s.engine.GetState() }

// Result summarises the session as it stands
func (s *Session) Result() Result {
	return Result{
		Status:  s.status,
		Reason:  s.reason,
		Won:     s.won,
		Score:   s.engine.GetScore(),
		MaxTile: engine.MaxTile(s.engine.GetBoard()),
		Turns:   s.turns,
		Board:   s.engine.GetBoard(),
	}
}

// Play drives the agent until the episode ends.
func (s *Session) Play() (Result, error) {
	if s.finished {
		return s.Result(), ErrSessionFinished
	}
	if s.agent == nil {
		return s.Result(), ErrNoAgent
	}

	for !s.finished {
		if !s.engine.MovePossible() {
			s.finish(ReasonNoMoves)
			break
		}

		dir, ok := s.agent.GetMove(s.engine.GetState())
		if !ok {
			s.finish(ReasonAgentPassed)
			break
		}
		if !dir.Valid() || !s.engine.CanMove(dir) {
			s.logger.Debug("agent chose an illegal move", "move", dir.String(), "turn", s.turns+1)
			s.finish(ReasonIllegalMove)
			break
		}

		if _, err := s.Step(dir); err != nil {
			return s.Result(), err
		}
	}

	return s.Result(), nil
}

// Step applies one move with scoring and spawns a tile. A move that does not
// change the board is ignored and reports false. Step is also the entry point
// for manual play.
func (s *Session) Step(dir engine.Direction) (bool, error) {
	if s.finished {
		return false, ErrSessionFinished
	}
	if !dir.Valid() || !s.engine.Move(dir, true) {
		return false, nil
	}

	s.turns++
	afterMove := s.engine.GetBoard()
	s.engine.AddNewTile()

	if s.hook != nil {
		s.hook(TurnEvent{
			Turn:      s.turns,
			Move:      dir,
			AfterMove: afterMove,
			Board:     s.engine.GetBoard(),
			Score:     s.engine.GetScore(),
		})
	}

	if !s.won && s.engine.CheckWin(s.config.Goal) {
		s.won = true
		s.status = StatusWon
		if s.config.StopOnWin {
			s.finish(ReasonWon)
			return true, nil
		}
	}

	if !s.engine.MovePossible() {
		s.finish(ReasonNoMoves)
	} else if s.config.MaxTurns > 0 && s.turns >= s.config.MaxTurns {
		s.finish(ReasonTurnLimit)
	}
	return true, nil
}

// finish closes the episode and hands the final snapshot to the agent.
func (s *Session) finish(reason Reason) {
	s.finished = true
	s.reason = reason
	if !s.won {
		s.status = StatusGameOver
	}

	s.logger.Debug("session finished",
		"status", s.status,
		"reason", reason,
		"score", s.engine.GetScore(),
		"turns", s.turns)

	if s.agent != nil {
		s.agent.Final(s.engine.GetState())
	}
}
