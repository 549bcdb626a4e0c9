package agent

import (
	"context"

	"github.com/rocketscienceinc/tictactoe-qlearning/internal/entity"
)

// Agent is the capability set the training loop and the play service drive.
// Actions are flat cell indices (row*3+col).
type Agent interface {
	// ChooseAction returns false when valid is empty.
	ChooseAction(state entity.State, valid []int, training bool) (int, bool)
	RecordMove(state entity.State, action int)
	Learn(reward float64)
}

// Learner is an Agent with a tunable exploration rate and a persistable table.
type Learner interface {
	Agent

	Epsilon() float64
	SetEpsilon(epsilon float64)
	Table() *QTable

	Save(ctx context.Context, store TableStore, id string) error
	Load(ctx context.Context, store TableStore, id string) error
}

// TableStore is the persistence port for Q-tables. The payload is exactly the
// state to action-values mapping.
type TableStore interface {
	Save(ctx context.Context, id string, table map[entity.StateKey]ActionValues) error
	Load(ctx context.Context, id string) (map[entity.StateKey]ActionValues, error)
}
