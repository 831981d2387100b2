package store

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS q_entries (
	dim     INTEGER NOT NULL,
	cells   BLOB    NOT NULL,
	score   INTEGER NOT NULL,
	action  INTEGER NOT NULL,
	value   REAL    NOT NULL,
	visits  INTEGER NOT NULL,
	PRIMARY KEY (cells, score, action)
);
`

// SQLiteStore keeps a value table in a SQLite database file.
type SQLiteStore struct{}

// openDB opens a SQLite database and runs migrations.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (SQLiteStore) SaveTable(path string, rows []TableRow) error {
	db, err := openDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM q_entries`); err != nil {
		return fmt.Errorf("clear table: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO q_entries (dim, cells, score, action, value, visits) VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.Dim, encodeCells(r.Cells), r.Score, r.Action, r.Value, r.Visits); err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (SQLiteStore) LoadTable(path string) ([]TableRow, error) {
	// sql.Open would create the file, so check first
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ErrTableNotFound
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rs, err := db.Query(`SELECT dim, cells, score, action, value, visits FROM q_entries`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rs.Close()

	var rows []TableRow
	for rs.Next() {
		var r TableRow
		var blob []byte
		if err := rs.Scan(&r.Dim, &blob, &r.Score, &r.Action, &r.Value, &r.Visits); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		cells, err := decodeCells(blob)
		if err != nil {
			return nil, err
		}
		r.Cells = cells
		rows = append(rows, r)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return rows, nil
}

func encodeCells(cells []int32) []byte {
	buf := make([]byte, 4*len(cells))
	for i, v := range cells {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	return buf
}

func decodeCells(buf []byte) ([]int32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("cells blob length %d is not a multiple of 4", len(buf))
	}
	cells := make([]int32, len(buf)/4)
	for i := range cells {
		cells[i] = int32(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return cells, nil
}
