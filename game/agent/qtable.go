package agent

import (
	"fmt"
	"math"
	"sort"

	"github.com/wricardo/mcp-training/tilemerge/game/engine"
	"github.com/wricardo/mcp-training/tilemerge/game/store"
)

// Entry is the learned value of one (state, action) pair.
type Entry struct {
	Value  float64
	Visits int
}

// QTable maps (state, action) pairs to entries. It is indexed by state so the
// best value of a state only looks at that state's actions. Entries are never
// removed.
type QTable struct {
	states  map[StateKey]map[engine.Direction]Entry
	entries int
}

func NewQTable() *QTable {
	return &QTable{states: make(map[StateKey]map[engine.Direction]Entry)}
}

// Get returns the entry for the pair and whether it exists.
func (t *QTable) Get(key StateKey, dir engine.Direction) (Entry, bool) {
	e, ok := t.states[key][dir]
	return e, ok
}

// Set stores the entry for the pair.
func (t *QTable) Set(key StateKey, dir engine.Direction, e Entry) {
	actions, ok := t.states[key]
	if !ok {
		actions = make(map[engine.Direction]Entry, len(engine.Directions))
		t.states[key] = actions
	}
	if _, exists := actions[dir]; !exists {
		t.entries++
	}
	actions[dir] = e
}

// Max returns the best value stored for key, or 0 if key is unseen.
func (t *QTable) Max(key StateKey) float64 {
	actions := t.states[key]
	if len(actions) == 0 {
		return 0
	}
	best := math.Inf(-1)
	for _, e := range actions {
		if e.Value > best {
			best = e.Value
		}
	}
	return best
}

// Len returns the number of (state, action) entries.
func (t *QTable) Len() int {
	return t.entries
}

// StateCount returns the number of distinct states.
func (t *QTable) StateCount() int {
	return len(t.states)
}

// Rows flattens the table for persistence.
func (t *QTable) Rows() []store.TableRow {
	rows := make([]store.TableRow, 0, t.entries)
	for key, actions := range t.states {
		cells := make([]int32, 0, key.Dim*key.Dim)
		board, err := key.Board()
		if err != nil {
			continue
		}
		for _, row := range board {
			for _, v := range row {
				cells = append(cells, int32(v))
			}
		}
		for dir, e := range actions {
			rows = append(rows, store.TableRow{
				Dim:    int32(key.Dim),
				Cells:  cells,
				Score:  int64(key.Score),
				Action: int32(dir),
				Value:  e.Value,
				Visits: int64(e.Visits),
			})
		}
	}
	return rows
}

// TableFromRows rebuilds a table from persisted rows.
func TableFromRows(rows []store.TableRow) (*QTable, error) {
	t := NewQTable()
	for i, r := range rows {
		dim := int(r.Dim)
		if dim < engine.MinDim || dim > engine.MaxDim || len(r.Cells) != dim*dim {
			return nil, fmt.Errorf("row %d: %d cells do not fit a %dx%d board", i, len(r.Cells), dim, dim)
		}
		dir := engine.Direction(r.Action)
		if !dir.Valid() {
			return nil, fmt.Errorf("row %d: invalid action %d", i, r.Action)
		}
		board := engine.NewBoard(dim)
		for k, v := range r.Cells {
			board[k/dim][k%dim] = int(v)
		}
		key := KeyOf(&engine.GameState{Board: board, Score: int(r.Score), Dim: dim})
		t.Set(key, dir, Entry{Value: r.Value, Visits: int(r.Visits)})
	}
	return t, nil
}

// Stats summarises a table.
type Stats struct {
	Entries     int            `json:"entries"`
	States      int            `json:"states"`
	TotalVisits int            `json:"total_visits"`
	MinValue    float64        `json:"min_value"`
	MaxValue    float64        `json:"max_value"`
	MeanValue   float64        `json:"mean_value"`
	PerAction   map[string]int `json:"per_action"`
	Dims        []int          `json:"dims"`
}

// Stats computes summary statistics over every entry.
func (t *QTable) Stats() Stats {
	s := Stats{
		Entries:   t.entries,
		States:    len(t.states),
		PerAction: make(map[string]int, len(engine.Directions)),
	}
	if t.entries == 0 {
		return s
	}

	dims := make(map[int]bool)
	s.MinValue = math.Inf(1)
	s.MaxValue = math.Inf(-1)
	var sum float64
	for key, actions := range t.states {
		dims[key.Dim] = true
		for dir, e := range actions {
			s.TotalVisits += e.Visits
			s.PerAction[dir.String()]++
			sum += e.Value
			s.MinValue = math.Min(s.MinValue, e.Value)
			s.MaxValue = math.Max(s.MaxValue, e.Value)
		}
	}
	s.MeanValue = sum / float64(t.entries)
	for d := range dims {
		s.Dims = append(s.Dims, d)
	}
	sort.Ints(s.Dims)
	return s
}
