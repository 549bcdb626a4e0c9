package agent

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-qlearning/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/entity"
)

// ActionValues holds one value per cell index.
type ActionValues [entity.CellCount]float64

// QTable maps exact board configurations to action values. Unknown states read
// as all zeros and are materialized on first access.
type QTable struct {
	values map[entity.StateKey]*ActionValues
}

func NewQTable() *QTable {
	return &QTable{
		values: make(map[entity.StateKey]*ActionValues),
	}
}

// NewQTableFrom builds a table from a stored mapping, rejecting keys that are
// not board configurations.
func NewQTableFrom(stored map[entity.StateKey]ActionValues) (*QTable, error) {
	table := NewQTable()

	for key, values := range stored {
		if !key.Valid() {
			return nil, fmt.Errorf("%w: invalid state key %q", apperror.ErrCorruptTable, key)
		}

		copied := values
		table.values[key] = &copied
	}

	return table, nil
}

// Values returns the live entry for key, creating a zero entry if needed.
func (that *QTable) Values(key entity.StateKey) *ActionValues {
	values, ok := that.values[key]
	if !ok {
		values = &ActionValues{}
		that.values[key] = values
	}

	return values
}

func (that *QTable) Get(key entity.StateKey, action int) float64 {
	return that.Values(key)[action]
}

func (that *QTable) Set(key entity.StateKey, action int, value float64) {
	that.Values(key)[action] = value
}

// Lookup reads an entry without materializing it.
func (that *QTable) Lookup(key entity.StateKey) (ActionValues, bool) {
	values, ok := that.values[key]
	if !ok {
		return ActionValues{}, false
	}

	return *values, true
}

func (that *QTable) Len() int {
	return len(that.values)
}

// Snapshot copies the table into the mapping written to a TableStore.
func (that *QTable) Snapshot() map[entity.StateKey]ActionValues {
	snapshot := make(map[entity.StateKey]ActionValues, len(that.values))
	for key, values := range that.values {
		snapshot[key] = *values
	}

	return snapshot
}
