package agent

import (
	"context"
	"math/rand"
	"testing"

	"github.com/rocketscienceinc/tictactoe-qlearning/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	tables map[string]map[entity.StateKey]ActionValues
}

func newMemoryStore() *memoryStore {
	return &memoryStore{tables: make(map[string]map[entity.StateKey]ActionValues)}
}

func (that *memoryStore) Save(_ context.Context, id string, table map[entity.StateKey]ActionValues) error {
	that.tables[id] = table
	return nil
}

func (that *memoryStore) Load(_ context.Context, id string) (map[entity.StateKey]ActionValues, error) {
	table, ok := that.tables[id]
	if !ok {
		return nil, apperror.ErrTableNotFound
	}
	return table, nil
}

func newTestLearner(epsilon float64) *QLearning {
	params := DefaultParams()
	params.Epsilon = epsilon

	return NewQLearning(params, rand.New(rand.NewSource(42)))
}

func TestQLearning_ChooseAction(t *testing.T) {
	t.Run("No valid actions", func(t *testing.T) {
		// Given: a learner
		learner := newTestLearner(0.5)

		// When: it is asked to act without options
		_, ok := learner.ChooseAction(entity.State{}, nil, true)

		// Then: it reports no action
		assert.False(t, ok)
	})

	t.Run("Out-of-range entries are ignored in both branches", func(t *testing.T) {
		for _, epsilon := range []float64{0, 1} {
			// Given: a learner that always or never explores
			learner := newTestLearner(epsilon)

			// When: the only candidates are not cell indices
			_, ok := learner.ChooseAction(entity.State{}, []int{9, -1}, true)

			// Then: it reports no action
			assert.False(t, ok, "epsilon %v", epsilon)

			// When: a legal index is mixed in
			action, ok := learner.ChooseAction(entity.State{}, []int{9, 4, -1}, true)

			// Then: only the legal one can be chosen and learning stays in range
			require.True(t, ok, "epsilon %v", epsilon)
			assert.Equal(t, 4, action, "epsilon %v", epsilon)

			learner.RecordMove(entity.State{}, action)
			require.NotPanics(t, func() { learner.Learn(1) })
		}
	})

	t.Run("Greedy pick of the best stored value", func(t *testing.T) {
		// Given: a learner that never explores and one known state
		learner := newTestLearner(0)
		state := entity.State{}
		*learner.Table().Values(state.Key()) = ActionValues{0, 0, 5, 0, 0, 0, 0, 0, 0}

		for i := 0; i < 100; i++ {
			// When: it chooses among cells 0, 2 and 4
			action, ok := learner.ChooseAction(state, []int{0, 2, 4}, true)

			// Then: cell 2 is always chosen
			require.True(t, ok)
			require.Equal(t, 2, action)
		}

		assert.Equal(t, 1, learner.Table().Len())
	})

	t.Run("Best value outside the valid set is ignored", func(t *testing.T) {
		// Given: the best value sits on an occupied cell
		learner := newTestLearner(0)
		state := entity.State{entity.X}
		*learner.Table().Values(state.Key()) = ActionValues{9, 1, 3, 0, 0, 0, 0, 0, -1}

		// When: it chooses among the empty cells
		action, ok := learner.ChooseAction(state, []int{1, 2, 8}, false)

		// Then: the best valid cell wins
		require.True(t, ok)
		assert.Equal(t, 2, action)
	})

	t.Run("Ties are broken at random", func(t *testing.T) {
		// Given: a learner with an all-zero table
		learner := newTestLearner(0)
		counts := make(map[int]int)

		// When: it chooses many times among equal cells
		for i := 0; i < 3000; i++ {
			action, ok := learner.ChooseAction(entity.State{}, []int{0, 4, 8}, false)
			require.True(t, ok)
			counts[action]++
		}

		// Then: every tied cell is picked a fair share of the time
		require.Len(t, counts, 3)
		for action, count := range counts {
			assert.Greater(t, count, 800, "action %d", action)
		}
	})

	t.Run("Exploration only while training", func(t *testing.T) {
		// Given: a learner that always explores and prefers cell 2
		learner := newTestLearner(1)
		state := entity.State{}
		learner.Table().Set(state.Key(), 2, 1)

		seen := make(map[int]bool)
		for i := 0; i < 200; i++ {
			// When: it acts in training mode
			action, _ := learner.ChooseAction(state, []int{0, 1, 2, 3}, true)
			seen[action] = true

			// When: it acts in evaluation mode
			greedy, _ := learner.ChooseAction(state, []int{0, 1, 2, 3}, false)

			// Then: evaluation is always greedy
			require.Equal(t, 2, greedy)
		}

		// Then: training explored the other cells
		assert.Len(t, seen, 4)
	})

	t.Run("Unknown state is materialized as zeros", func(t *testing.T) {
		// Given: an empty table
		learner := newTestLearner(0)
		state := entity.State{entity.X, entity.O}

		// When: the learner looks at a new state
		_, ok := learner.ChooseAction(state, []int{2, 3}, false)
		require.True(t, ok)

		// Then: a zero entry exists for it
		values, found := learner.Table().Lookup(state.Key())
		require.True(t, found)
		assert.Equal(t, ActionValues{}, values)
	})
}

func TestQLearning_Learn(t *testing.T) {
	t.Run("Backward temporal difference", func(t *testing.T) {
		// Given: a learner with alpha 0.5, gamma 0.9 and three recorded moves
		learner := NewQLearning(Params{Epsilon: 0, Alpha: 0.5, Gamma: 0.9}, rand.New(rand.NewSource(1)))

		first := entity.State{}
		second := entity.State{entity.X, entity.O}
		third := entity.State{entity.X, entity.O, entity.X, entity.O}

		learner.RecordMove(first, 0)
		learner.RecordMove(second, 2)
		learner.RecordMove(third, 4)

		// When: the episode is won
		learner.Learn(1)

		// Then: credit decays walking back from the last move
		table := learner.Table()
		assert.InDelta(t, 0.5, table.Get(third.Key(), 4), 1e-12)
		assert.InDelta(t, 0.225, table.Get(second.Key(), 2), 1e-12)
		assert.InDelta(t, 0.10125, table.Get(first.Key(), 0), 1e-12)
	})

	t.Run("Trajectory is consumed once", func(t *testing.T) {
		// Given: a learner with one recorded move
		learner := NewQLearning(Params{Alpha: 0.5, Gamma: 0.9}, rand.New(rand.NewSource(1)))
		state := entity.State{}
		learner.RecordMove(state, 4)

		// When: learn is called twice
		learner.Learn(-1)
		learner.Learn(-1)

		// Then: only the first call updates the value
		assert.InDelta(t, -0.5, learner.Table().Get(state.Key(), 4), 1e-12)
	})

	t.Run("Existing values move toward the target", func(t *testing.T) {
		// Given: a stored value of 0.4
		learner := NewQLearning(Params{Alpha: 0.5, Gamma: 0.9}, rand.New(rand.NewSource(1)))
		state := entity.State{}
		learner.Table().Set(state.Key(), 4, 0.4)
		learner.RecordMove(state, 4)

		// When: the episode is a draw
		learner.Learn(0)

		// Then: the value is halved
		assert.InDelta(t, 0.2, learner.Table().Get(state.Key(), 4), 1e-12)
	})
}

func TestQLearning_SaveLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("Round trip", func(t *testing.T) {
		// Given: a learner with a trained entry
		store := newMemoryStore()
		learner := newTestLearner(0)
		learner.RecordMove(entity.State{}, 4)
		learner.Learn(1)

		// When: the table is saved and loaded into a fresh learner
		require.NoError(t, learner.Save(ctx, store, "agent"))

		restored := newTestLearner(0)
		require.NoError(t, restored.Load(ctx, store, "agent"))

		// Then: the mapping is identical
		assert.Equal(t, learner.Table().Snapshot(), restored.Table().Snapshot())
	})

	t.Run("Loaded table is independent of the store payload", func(t *testing.T) {
		// Given: a stored table
		store := newMemoryStore()
		key := entity.State{}.Key()
		store.tables["agent"] = map[entity.StateKey]ActionValues{key: {1}}

		learner := newTestLearner(0)
		require.NoError(t, learner.Load(ctx, store, "agent"))

		// When: the learner updates its table
		learner.Table().Set(key, 0, 7)

		// Then: the stored payload is untouched
		assert.InDelta(t, 1.0, store.tables["agent"][key][0], 1e-12)
	})

	t.Run("Missing table", func(t *testing.T) {
		learner := newTestLearner(0)

		err := learner.Load(ctx, newMemoryStore(), "absent")

		require.ErrorIs(t, err, apperror.ErrTableNotFound)
	})

	t.Run("Corrupt table keeps the current one", func(t *testing.T) {
		// Given: a stored table with a malformed key
		store := newMemoryStore()
		store.tables["agent"] = map[entity.StateKey]ActionValues{"bogus": {}}

		learner := newTestLearner(0)
		learner.Table().Set(entity.State{}.Key(), 1, 2)

		// When: it is loaded
		err := learner.Load(ctx, store, "agent")

		// Then: the load fails and the table is kept
		require.ErrorIs(t, err, apperror.ErrCorruptTable)
		assert.Equal(t, 1, learner.Table().Len())
	})
}

func TestQLearning_Stats(t *testing.T) {
	learner := NewQLearning(Params{Epsilon: 0.3, Alpha: 0.5, Gamma: 0.9}, rand.New(rand.NewSource(1)))
	learner.Table().Values(entity.State{}.Key())
	learner.SetEpsilon(0.2)

	assert.Equal(t, Stats{StatesLearned: 1, Epsilon: 0.2, Alpha: 0.5, Gamma: 0.9}, learner.Stats())
}

func TestRandom(t *testing.T) {
	random := NewRandom(rand.New(rand.NewSource(3)))

	t.Run("No valid actions", func(t *testing.T) {
		_, ok := random.ChooseAction(entity.State{}, []int{}, true)
		assert.False(t, ok)
	})

	t.Run("Picks only valid actions", func(t *testing.T) {
		seen := make(map[int]bool)
		for i := 0; i < 200; i++ {
			action, ok := random.ChooseAction(entity.State{}, []int{1, 5, 7}, false)
			require.True(t, ok)
			require.Contains(t, []int{1, 5, 7}, action)
			seen[action] = true
		}
		assert.Len(t, seen, 3)
	})

	t.Run("Record and learn are no-ops", func(t *testing.T) {
		assert.NotPanics(t, func() {
			random.RecordMove(entity.State{}, 1)
			random.Learn(1)
		})
	})
}
