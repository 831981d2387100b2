package agent

import (
	"errors"
	"fmt"

	"github.com/wricardo/mcp-training/tilemerge/game/store"
)

// SaveTable writes the Q-table to path. The backend follows the extension,
// see store.ForPath.
func (a *QLearnAgent) SaveTable(path string) error {
	if err := store.SaveTable(path, a.table.Rows()); err != nil {
		return fmt.Errorf("save q-table: %w", err)
	}
	a.logger.Info("q-table saved", "path", path, "entries", a.table.Len())
	return nil
}

// LoadTable replaces the Q-table with the one stored at path. A missing or
// unreadable file leaves the agent with an empty table; the problem is only
// logged.
func (a *QLearnAgent) LoadTable(path string) {
	rows, err := store.LoadTable(path)
	if errors.Is(err, store.ErrTableNotFound) {
		a.logger.Info("no q-table found, starting empty", "path", path)
		a.table = NewQTable()
		return
	}
	if err != nil {
		a.logger.Warn("q-table unreadable, starting empty", "path", path, "error", err)
		a.table = NewQTable()
		return
	}

	table, err := TableFromRows(rows)
	if err != nil {
		a.logger.Warn("q-table corrupt, starting empty", "path", path, "error", err)
		a.table = NewQTable()
		return
	}
	a.table = table
	a.logger.Info("q-table loaded", "path", path, "entries", table.Len())
}
