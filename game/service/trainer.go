package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/tilemerge/game/agent"
	"github.com/wricardo/mcp-training/tilemerge/game/session"
	"github.com/wricardo/mcp-training/tilemerge/game/store"
)

// trainingServiceImpl implements the TrainingService interface
type trainingServiceImpl struct {
	configs ConfigManager
	logger  *slog.Logger
}

// NewTrainingService creates a new training service instance. configs may be
// nil when profiles are always passed in directly.
func NewTrainingService(configs ConfigManager, logger *slog.Logger) TrainingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &trainingServiceImpl{
		configs: configs,
		logger:  logger,
	}
}

// Train plays cfg.Episodes episodes with one agent. The context is checked
// between episodes; on cancellation the partial report is returned with the
// context error after the table has been saved.
func (s *trainingServiceImpl) Train(ctx context.Context, cfg *TrainingConfig, observers ...EpisodeObserver) (*TrainingReport, error) {
	if err := ValidateTrainingConfig(cfg); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seedFor(cfg)))
	player, learner, err := s.buildAgent(cfg, rng)
	if err != nil {
		return nil, err
	}

	report := &TrainingReport{
		RunID:      uuid.NewString(),
		ConfigName: cfg.Name,
		AgentKind:  cfg.AgentKind,
		StartedAt:  time.Now(),
	}
	logger := s.logger.With("run_id", report.RunID)
	logger.Info("training started",
		"config", cfg.Name,
		"agent", cfg.AgentKind,
		"episodes", cfg.Episodes,
		"dim", cfg.Game.Dim,
		"goal", cfg.Game.Goal)

	for ep := 1; ep <= cfg.Episodes; ep++ {
		select {
		case <-ctx.Done():
			logger.Warn("training interrupted", "completed", ep-1)
			if err := s.finish(cfg, report, learner, logger); err != nil {
				return report, err
			}
			return report, ctx.Err()
		default:
		}

		res, err := s.playEpisode(cfg, ep, player, learner, rng, turnHook(report.RunID, ep, observers))
		if err != nil {
			return report, fmt.Errorf("episode %d: %w", ep, err)
		}
		report.add(res)

		logger.Info("episode finished",
			"episode", ep,
			"score", res.Score,
			"max_tile", res.MaxTile,
			"turns", res.Turns,
			"reason", res.Reason)

		for _, obs := range observers {
			obs.OnEpisode(report.RunID, res)
		}

		if learner != nil && cfg.TablePath != "" && cfg.SaveEvery > 0 && ep%cfg.SaveEvery == 0 && ep < cfg.Episodes {
			if err := learner.SaveTable(cfg.TablePath); err != nil {
				return report, err
			}
		}
	}

	if err := s.finish(cfg, report, learner, logger); err != nil {
		return report, err
	}
	return report, nil
}

// finish saves the table and the history and stamps the report.
func (s *trainingServiceImpl) finish(cfg *TrainingConfig, report *TrainingReport, learner *agent.QLearnAgent, logger *slog.Logger) error {
	report.Duration = time.Since(report.StartedAt)
	if learner != nil {
		report.Frozen = learner.Frozen()
		if cfg.TablePath != "" {
			if err := learner.SaveTable(cfg.TablePath); err != nil {
				return err
			}
		}
	}

	if cfg.HistoryPath != "" && len(report.Episodes) > 0 {
		if err := store.WriteEpisodes(cfg.HistoryPath, historyRows(report)); err != nil {
			return fmt.Errorf("write history: %w", err)
		}
		logger.Info("history written", "path", cfg.HistoryPath, "episodes", len(report.Episodes))
	}

	logger.Info("training finished",
		"episodes", len(report.Episodes),
		"wins", report.Wins,
		"best_score", report.BestScore,
		"mean_score", report.MeanScore,
		"table_size", report.TableSize,
		"duration", report.Duration)
	return nil
}

// PlayOnce plays a single episode. A qlearn agent loads its table and plays
// greedily without learning; the table is not saved.
func (s *trainingServiceImpl) PlayOnce(ctx context.Context, cfg *TrainingConfig, hook session.TurnHook) (*EpisodeResult, error) {
	if err := ValidateTrainingConfig(cfg); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seedFor(cfg)))
	player, learner, err := s.buildAgent(cfg, rng)
	if err != nil {
		return nil, err
	}
	if learner != nil {
		learner.SetAlpha(0)
		learner.SetEpsilon(0)
	}

	res, err := s.playEpisode(cfg, 1, player, learner, rng, hook)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ListConfigs returns the available training profiles
func (s *trainingServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	if s.configs == nil {
		return nil, fmt.Errorf("no config manager")
	}
	return s.configs.ListConfigs()
}

// LoadConfig loads a profile by name, or the default profile when name is empty
func (s *trainingServiceImpl) LoadConfig(ctx context.Context, name string) (*TrainingConfig, error) {
	if s.configs == nil {
		return nil, fmt.Errorf("no config manager")
	}
	if name == "" {
		return s.configs.GetDefault(), nil
	}
	cfg, err := s.configs.LoadConfig(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", name, err)
	}
	return cfg, nil
}

// buildAgent creates the agent for cfg. learner is non-nil for qlearn agents.
func (s *trainingServiceImpl) buildAgent(cfg *TrainingConfig, rng *rand.Rand) (agent.Agent, *agent.QLearnAgent, error) {
	player, err := agent.New(cfg.AgentKind, cfg.Agent, rng, s.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create agent: %w", err)
	}
	learner, ok := player.(*agent.QLearnAgent)
	if !ok {
		return player, nil, nil
	}
	if cfg.TablePath != "" {
		learner.LoadTable(cfg.TablePath)
	}
	return player, learner, nil
}

func (s *trainingServiceImpl) playEpisode(cfg *TrainingConfig, ep int, player agent.Agent, learner *agent.QLearnAgent, rng *rand.Rand, hook session.TurnHook) (EpisodeResult, error) {
	start := time.Now()
	opts := []session.Option{session.WithLogger(s.logger)}
	if hook != nil {
		opts = append(opts, session.WithTurnHook(hook))
	}

	sess, err := session.New(cfg.Game, player, rng, opts...)
	if err != nil {
		return EpisodeResult{}, err
	}
	result, err := sess.Play()
	if err != nil {
		return EpisodeResult{}, err
	}

	res := EpisodeResult{
		Episode:  ep,
		Score:    result.Score,
		MaxTile:  result.MaxTile,
		Turns:    result.Turns,
		Won:      result.Won,
		Reason:   result.Reason,
		Duration: time.Since(start),
		Board:    result.Board,
	}
	if learner != nil {
		res.TableSize = learner.Table().Len()
	}
	return res, nil
}

// turnHook fans applied moves out to the observers that want them.
func turnHook(runID string, ep int, observers []EpisodeObserver) session.TurnHook {
	var turnObservers []TurnObserver
	for _, obs := range observers {
		if to, ok := obs.(TurnObserver); ok {
			turnObservers = append(turnObservers, to)
		}
	}
	if len(turnObservers) == 0 {
		return nil
	}
	return func(ev session.TurnEvent) {
		for _, to := range turnObservers {
			to.OnTurn(runID, ep, ev)
		}
	}
}

func historyRows(report *TrainingReport) []store.EpisodeRow {
	rows := make([]store.EpisodeRow, len(report.Episodes))
	for i, ep := range report.Episodes {
		rows[i] = store.EpisodeRow{
			RunID:      report.RunID,
			Episode:    int64(ep.Episode),
			Score:      int64(ep.Score),
			MaxTile:    int64(ep.MaxTile),
			Turns:      int64(ep.Turns),
			Won:        ep.Won,
			Reason:     string(ep.Reason),
			TableSize:  int64(ep.TableSize),
			DurationMs: ep.Duration.Milliseconds(),
		}
	}
	return rows
}

func seedFor(cfg *TrainingConfig) int64 {
	if cfg.Seed != 0 {
		return cfg.Seed
	}
	return time.Now().UnixNano()
}
