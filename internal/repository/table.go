package repository

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-qlearning/internal/agent"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/entity"
)

// storedTable is the payload written by every table repository. Rows are
// slices so a payload of the wrong width is detected instead of padded.
type storedTable map[entity.StateKey][]float64

func toStoredTable(table map[entity.StateKey]agent.ActionValues) storedTable {
	stored := make(storedTable, len(table))
	for key, values := range table {
		row := values
		stored[key] = row[:]
	}

	return stored
}

func fromStoredTable(stored storedTable) (map[entity.StateKey]agent.ActionValues, error) {
	table := make(map[entity.StateKey]agent.ActionValues, len(stored))

	for key, row := range stored {
		if !key.Valid() {
			return nil, fmt.Errorf("%w: invalid state key %q", apperror.ErrCorruptTable, key)
		}

		if len(row) != entity.CellCount {
			return nil, fmt.Errorf("%w: state %s has %d values", apperror.ErrCorruptTable, key, len(row))
		}

		var values agent.ActionValues
		copy(values[:], row)
		table[key] = values
	}

	return table, nil
}
