package agent

import (
	"math/rand"

	"github.com/rocketscienceinc/tictactoe-qlearning/internal/entity"
)

// Random plays uniformly among the valid actions and never learns.
type Random struct {
	rng *rand.Rand
}

func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

func (that *Random) ChooseAction(_ entity.State, valid []int, _ bool) (int, bool) {
	if len(valid) == 0 {
		return 0, false
	}

	return valid[that.rng.Intn(len(valid))], true
}

func (that *Random) RecordMove(entity.State, int) {}

func (that *Random) Learn(float64) {}
