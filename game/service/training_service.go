package service

import (
	"context"

	"github.com/wricardo/mcp-training/tilemerge/game/session"
)

// TrainingService defines the operations a driver needs to train and play
type TrainingService interface {
	// Training
	Train(ctx context.Context, cfg *TrainingConfig, observers ...EpisodeObserver) (*TrainingReport, error)

	// Single episode
	PlayOnce(ctx context.Context, cfg *TrainingConfig, hook session.TurnHook) (*EpisodeResult, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, name string) (*TrainingConfig, error)
}

// ConfigManager handles training profile loading
type ConfigManager interface {
	LoadConfig(name string) (*TrainingConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *TrainingConfig
	SaveConfig(name string, config *TrainingConfig) error
}

// EpisodeObserver is notified after every finished episode
type EpisodeObserver interface {
	OnEpisode(runID string, result EpisodeResult)
}

// TurnObserver is an optional extension of EpisodeObserver that also
// receives every applied move.
type TurnObserver interface {
	OnTurn(runID string, episode int, event session.TurnEvent)
}
