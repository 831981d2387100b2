package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/tilemerge/game/agent"
	"github.com/wricardo/mcp-training/tilemerge/game/engine"
	"github.com/wricardo/mcp-training/tilemerge/game/session"
)

var ErrInvalidTrainingConfig = errors.New("invalid training config")

// TrainingConfig is a training profile: the game rules, the agent and how
// long to train it.
type TrainingConfig struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	AgentKind   agent.Kind        `json:"agent_kind"`
	Game        engine.GameConfig `json:"game"`
	Agent       agent.Params      `json:"agent"`
	Episodes    int               `json:"episodes"`
	// SaveEvery saves the table every N episodes; 0 only saves at the end.
	SaveEvery int `json:"save_every"`
	// TablePath is where a qlearn agent loads and saves its table. Empty
	// disables persistence.
	TablePath   string `json:"table_path,omitempty"`
	HistoryPath string `json:"history_path,omitempty"`
	// Seed fixes the random source; 0 seeds from the clock.
	Seed int64 `json:"seed,omitempty"`
}

// DefaultTrainingConfig returns the classic 4x4 profile.
func DefaultTrainingConfig() *TrainingConfig {
	return &TrainingConfig{
		Name:        "default",
		Description: "Classic 4x4 board, goal 2048, Q-learning agent",
		AgentKind:   agent.KindQLearn,
		Game:        engine.DefaultGameConfig(),
		Agent:       agent.DefaultParams(),
		Episodes:    100,
		SaveEvery:   10,
		TablePath:   "qtable.parquet",
	}
}

// ValidateTrainingConfig checks the profile and the game and agent settings
// it carries.
func ValidateTrainingConfig(cfg *TrainingConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: config cannot be nil", ErrInvalidTrainingConfig)
	}
	if err := engine.ValidateGameConfig(&cfg.Game); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTrainingConfig, err)
	}

	known := false
	for _, k := range agent.Kinds {
		if cfg.AgentKind == k {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: %w: %q", ErrInvalidTrainingConfig, agent.ErrUnknownAgent, cfg.AgentKind)
	}

	if cfg.AgentKind == agent.KindQLearn {
		if err := agent.ValidateParams(cfg.Agent); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidTrainingConfig, err)
		}
	}
	if cfg.Episodes < 1 {
		return fmt.Errorf("%w: episodes must be at least 1, got %d", ErrInvalidTrainingConfig, cfg.Episodes)
	}
	if cfg.SaveEvery < 0 {
		return fmt.Errorf("%w: save_every cannot be negative", ErrInvalidTrainingConfig)
	}
	return nil
}

// ConfigInfo provides information about a training profile
type ConfigInfo struct {
	Filename    string     `json:"filename"`
	ConfigID    string     `json:"config_id"` // The identifier to pass to --config
	Name        string     `json:"name"`
	Description string     `json:"description"`
	AgentKind   agent.Kind `json:"agent_kind"`
	Dim         int        `json:"dim"`
	Goal        int        `json:"goal"`
	Episodes    int        `json:"episodes"`
}

// EpisodeResult is the outcome of one episode
type EpisodeResult struct {
	Episode   int            `json:"episode"`
	Score     int            `json:"score"`
	MaxTile   int            `json:"max_tile"`
	Turns     int            `json:"turns"`
	Won       bool           `json:"won"`
	Reason    session.Reason `json:"reason"`
	TableSize int            `json:"table_size"`
	Duration  time.Duration  `json:"duration"`
	Board     engine.Board   `json:"board,omitempty"`
}

// TrainingReport summarises a training run
type TrainingReport struct {
	RunID      string          `json:"run_id"`
	ConfigName string          `json:"config_name"`
	AgentKind  agent.Kind      `json:"agent_kind"`
	StartedAt  time.Time       `json:"started_at"`
	Duration   time.Duration   `json:"duration"`
	Episodes   []EpisodeResult `json:"episodes"`
	Wins       int             `json:"wins"`
	BestScore  int             `json:"best_score"`
	BestTile   int             `json:"best_tile"`
	MeanScore  float64         `json:"mean_score"`
	TableSize  int             `json:"table_size"`
	Frozen     bool            `json:"frozen"`

	totalScore int
}

// add folds one episode into the summary.
func (r *TrainingReport) add(res EpisodeResult) {
	r.Episodes = append(r.Episodes, res)
	if res.Won {
		r.Wins++
	}
	if res.Score > r.BestScore {
		r.BestScore = res.Score
	}
	if res.MaxTile > r.BestTile {
		r.BestTile = res.MaxTile
	}
	r.TableSize = res.TableSize

	r.totalScore += res.Score
	r.MeanScore = float64(r.totalScore) / float64(len(r.Episodes))
}

// WinRate returns the fraction of won episodes.
func (r *TrainingReport) WinRate() float64 {
	if len(r.Episodes) == 0 {
		return 0
	}
	return float64(r.Wins) / float64(len(r.Episodes))
}
