package store

import (
	"errors"
	"os"
)

// EpisodeRow records the outcome of one training episode.
type EpisodeRow struct {
	RunID      string `parquet:"run_id"`
	Episode    int64  `parquet:"episode"`
	Score      int64  `parquet:"score"`
	MaxTile    int64  `parquet:"max_tile"`
	Turns      int64  `parquet:"turns"`
	Won        bool   `parquet:"won"`
	Reason     string `parquet:"reason"`
	TableSize  int64  `parquet:"table_size"`
	DurationMs int64  `parquet:"duration_ms"`
}

// WriteEpisodes writes the episode history of a run to a Parquet file.
func WriteEpisodes(path string, rows []EpisodeRow) error {
	return writeParquet(path, rows, "episodes_v1")
}

// ReadEpisodes loads an episode history written by WriteEpisodes.
func ReadEpisodes(path string) ([]EpisodeRow, error) {
	rows, err := readParquet[EpisodeRow](path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrTableNotFound
	}
	return rows, err
}
