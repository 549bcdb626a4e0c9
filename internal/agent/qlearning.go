package agent

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/rocketscienceinc/tictactoe-qlearning/internal/entity"
)

const (
	DefaultEpsilon = 0.1
	DefaultAlpha   = 0.5
	DefaultGamma   = 0.9
)

// Params are fixed per agent, except epsilon which the trainer decays.
type Params struct {
	Epsilon float64 // exploration probability while training
	Alpha   float64 // step size of each update
	Gamma   float64 // discount applied per move walking back from the outcome
}

func DefaultParams() Params {
	return Params{
		Epsilon: DefaultEpsilon,
		Alpha:   DefaultAlpha,
		Gamma:   DefaultGamma,
	}
}

type Stats struct {
	StatesLearned int     `json:"states_learned"`
	Epsilon       float64 `json:"epsilon"`
	Alpha         float64 `json:"alpha"`
	Gamma         float64 `json:"gamma"`
}

type trajectoryStep struct {
	key    entity.StateKey
	action int
}

// QLearning is an epsilon-greedy tabular learner. It owns its table and its
// trajectory and is not safe for concurrent use.
type QLearning struct {
	params     Params
	table      *QTable
	trajectory []trajectoryStep
	rng        *rand.Rand
}

func NewQLearning(params Params, rng *rand.Rand) *QLearning {
	return &QLearning{
		params: params,
		table:  NewQTable(),
		rng:    rng,
	}
}

// ChooseAction ignores entries of valid that are not cell indices; with none
// left it reports no action.
func (that *QLearning) ChooseAction(state entity.State, valid []int, training bool) (int, bool) {
	actions := make([]int, 0, len(valid))
	for _, action := range valid {
		if action >= 0 && action < entity.CellCount {
			actions = append(actions, action)
		}
	}

	if len(actions) == 0 {
		return 0, false
	}

	values := that.table.Values(state.Key())

	if training && that.rng.Float64() < that.params.Epsilon {
		return actions[that.rng.Intn(len(actions))], true
	}

	bestValue := math.Inf(-1)
	best := make([]int, 0, len(actions))
	for _, action := range actions {
		switch value := values[action]; {
		case value > bestValue:
			bestValue = value
			best = append(best[:0], action)
		case value == bestValue:
			best = append(best, action)
		}
	}

	// uniform among ties so low indices are not favoured
	return best[that.rng.Intn(len(best))], true
}

func (that *QLearning) RecordMove(state entity.State, action int) {
	that.trajectory = append(that.trajectory, trajectoryStep{key: state.Key(), action: action})
}

// Learn walks the trajectory newest first, moving each value toward a target
// that starts at reward and is discounted by gamma after every step. The
// trajectory is consumed.
func (that *QLearning) Learn(reward float64) {
	target := reward

	for i := len(that.trajectory) - 1; i >= 0; i-- {
		step := that.trajectory[i]
		values := that.table.Values(step.key)

		current := values[step.action]
		updated := current + that.params.Alpha*(target-current)
		values[step.action] = updated

		target = that.params.Gamma * updated
	}

	that.trajectory = that.trajectory[:0]
}

func (that *QLearning) Epsilon() float64 {
	return that.params.Epsilon
}

func (that *QLearning) SetEpsilon(epsilon float64) {
	that.params.Epsilon = epsilon
}

func (that *QLearning) Params() Params {
	return that.params
}

func (that *QLearning) Table() *QTable {
	return that.table
}

func (that *QLearning) Stats() Stats {
	return Stats{
		StatesLearned: that.table.Len(),
		Epsilon:       that.params.Epsilon,
		Alpha:         that.params.Alpha,
		Gamma:         that.params.Gamma,
	}
}

func (that *QLearning) Save(ctx context.Context, store TableStore, id string) error {
	if err := store.Save(ctx, id, that.table.Snapshot()); err != nil {
		return fmt.Errorf("failed to save q-table %s: %w", id, err)
	}

	return nil
}

// Load replaces the table with the stored one. The current table is kept when
// loading fails.
func (that *QLearning) Load(ctx context.Context, store TableStore, id string) error {
	stored, err := store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load q-table %s: %w", id, err)
	}

	table, err := NewQTableFrom(stored)
	if err != nil {
		return fmt.Errorf("failed to load q-table %s: %w", id, err)
	}

	that.table = table

	return nil
}
