package engine

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid game config")

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config cannot be nil", ErrInvalidConfig)
	}

	// Validate board size
	if config.Dim < MinDim || config.Dim > MaxDim {
		return fmt.Errorf("%w: dim must be between %d and %d, got %d", ErrInvalidConfig, MinDim, MaxDim, config.Dim)
	}

	// Spawned tiles are 2 and 4, so a goal must be a reachable power of two above them
	if config.Goal < MinGoal || !isPowerOfTwo(config.Goal) {
		return fmt.Errorf("%w: goal must be a power of two >= %d, got %d", ErrInvalidConfig, MinGoal, config.Goal)
	}

	if config.MaxTurns < 0 {
		return fmt.Errorf("%w: max_turns cannot be negative, got %d", ErrInvalidConfig, config.MaxTurns)
	}

	return nil
}

// DefaultGameConfig returns the classic 4x4 game played to 2048
func DefaultGameConfig() GameConfig {
	return GameConfig{
		Dim:       DefaultDim,
		Goal:      DefaultGoal,
		StopOnWin: true,
	}
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
