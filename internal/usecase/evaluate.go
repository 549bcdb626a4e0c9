package usecase

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/rocketscienceinc/tictactoe-qlearning/internal/agent"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/entity"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/tictactoe"
)

// Report summarizes a match where the candidate plays X. Scores are +1 for a
// candidate win, -1 for a loss and 0 for a draw.
type Report struct {
	Games        int     `json:"games"`
	AgentWins    int     `json:"agent_wins"`
	OpponentWins int     `json:"opponent_wins"`
	Draws        int     `json:"draws"`
	MeanScore    float64 `json:"mean_score"`
	StdErr       float64 `json:"std_err"`
}

// Evaluate plays games without learning, candidate as X and opponent as O.
func Evaluate(ctx context.Context, env *tictactoe.Environment, candidate, opponent agent.Agent, games int) (*Report, error) {
	if games <= 0 {
		return nil, ErrNoEpisodes
	}

	report := &Report{}
	scores := make([]float64, 0, games)

	for game := 0; game < games; game++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("evaluation interrupted at game %d: %w", game, err)
		}

		switch PlayGame(env, candidate, opponent, false) {
		case entity.OutcomeXWins:
			report.AgentWins++
			scores = append(scores, 1)
		case entity.OutcomeOWins:
			report.OpponentWins++
			scores = append(scores, -1)
		default:
			report.Draws++
			scores = append(scores, 0)
		}
	}

	report.Games = len(scores)

	mean, std := stat.MeanStdDev(scores, nil)
	report.MeanScore = mean
	if len(scores) > 1 {
		report.StdErr = stat.StdErr(std, float64(len(scores)))
	}

	return report, nil
}
