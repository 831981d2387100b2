package store

import (
	"errors"
	"path/filepath"
	"strings"
)

var ErrTableNotFound = errors.New("value table not found")

// TableRow is one (state, action) entry of a learned value table.
//
// Cells holds the board in row-major order, Dim*Dim values. Action uses the
// engine's direction numbering.
type TableRow struct {
	Dim    int32   `parquet:"dim"`
	Cells  []int32 `parquet:"cells"`
	Score  int64   `parquet:"score"`
	Action int32   `parquet:"action"`
	Value  float64 `parquet:"value"`
	Visits int64   `parquet:"visits"`
}

// TableStore persists value tables keyed by file path.
type TableStore interface {
	// SaveTable writes rows to path, replacing any previous table
	SaveTable(path string, rows []TableRow) error

	// LoadTable reads every row stored at path. A missing file yields ErrTableNotFound.
	LoadTable(path string) ([]TableRow, error)
}

// ForPath picks a backend from the file extension: SQLite for .db, .sqlite and
// .sqlite3, Parquet otherwise.
func ForPath(path string) TableStore {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return SQLiteStore{}
	default:
		return ParquetStore{}
	}
}

// SaveTable writes rows with the backend matching path
func SaveTable(path string, rows []TableRow) error {
	return ForPath(path).SaveTable(path, rows)
}

// LoadTable reads rows with the backend matching path
func LoadTable(path string) ([]TableRow, error) {
	return ForPath(path).LoadTable(path)
}
