package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// ParquetStore keeps a value table in a single zstd-compressed Parquet file.
type ParquetStore struct{}

func (ParquetStore) SaveTable(path string, rows []TableRow) error {
	return writeParquet(path, rows, "qtable_v1")
}

func (ParquetStore) LoadTable(path string) ([]TableRow, error) {
	rows, err := readParquet[TableRow](path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrTableNotFound
	}
	return rows, err
}

// writeParquet writes to a temp file and renames it over outPath.
func writeParquet[T any](outPath string, rows []T, schema string) error {
	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schema),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

func readParquet[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[T](pf)
	defer reader.Close()

	rows := make([]T, reader.NumRows())
	total := 0
	for total < len(rows) {
		n, err := reader.Read(rows[total:])
		total += n
		if err == io.EOF || (err == nil && n == 0) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read parquet: %w", err)
		}
	}
	return rows[:total], nil
}
