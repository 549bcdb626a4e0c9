package usecase

import (
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/agent"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/entity"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/tictactoe"
)

// PlayGame runs one episode to its natural end. The side to move is always
// taken from the environment. When training, both agents learn from the
// outcome with mirrored rewards; otherwise nothing is recorded.
func PlayGame(env *tictactoe.Environment, playerX, playerO agent.Agent, training bool) entity.Outcome {
	state := env.Reset()

	for done := false; !done; {
		current := playerX
		if env.Mover() == entity.O {
			current = playerO
		}

		action, ok := current.ChooseAction(state, env.ValidActionsFlat(), training)
		if !ok {
			break
		}

		if training {
			current.RecordMove(state, action)
		}

		result := env.StepFlat(action)
		state = result.State
		done = result.Done
	}

	outcome := env.Outcome()

	if training {
		rewardX, rewardO := terminalRewards(outcome)
		playerX.Learn(rewardX)
		playerO.Learn(rewardO)
	}

	return outcome
}

func terminalRewards(outcome entity.Outcome) (float64, float64) {
	switch outcome {
	case entity.OutcomeXWins:
		return tictactoe.RewardWin, tictactoe.RewardLoss
	case entity.OutcomeOWins:
		return tictactoe.RewardLoss, tictactoe.RewardWin
	default:
		return tictactoe.RewardDraw, tictactoe.RewardDraw
	}
}
