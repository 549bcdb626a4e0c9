package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-qlearning/internal/agent"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/entity"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/tictactoe"
)

const (
	DefaultEpisodes    = 50000
	DefaultMinEpsilon  = 0.05
	DefaultDecayRate   = 0.95
	DefaultDecayEvery  = 10000
	DefaultCheckpoints = 20
)

var ErrNoEpisodes = errors.New("number of episodes must be positive")

type TrainerConfig struct {
	Episodes    int
	MinEpsilon  float64
	DecayRate   float64
	DecayEvery  int
	Checkpoints int
	TableID     string
	// OpponentTableID, when set, also persists playerO's table.
	OpponentTableID string
}

func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		Episodes:    DefaultEpisodes,
		MinEpsilon:  DefaultMinEpsilon,
		DecayRate:   DefaultDecayRate,
		DecayEvery:  DefaultDecayEvery,
		Checkpoints: DefaultCheckpoints,
	}
}

// Checkpoint is one point of the training curve.
type Checkpoint struct {
	Episode       int     `json:"episode"`
	WinRate       float64 `json:"win_rate"`
	DrawRate      float64 `json:"draw_rate"`
	Epsilon       float64 `json:"epsilon"`
	StatesLearned int     `json:"states_learned"`
}

type TrainingStats struct {
	Episodes    int          `json:"episodes"`
	XWins       int          `json:"x_wins"`
	OWins       int          `json:"o_wins"`
	Draws       int          `json:"draws"`
	Checkpoints []Checkpoint `json:"checkpoints"`
}

func (that *TrainingStats) record(outcome entity.Outcome) {
	that.Episodes++

	switch outcome {
	case entity.OutcomeXWins:
		that.XWins++
	case entity.OutcomeOWins:
		that.OWins++
	default:
		that.Draws++
	}
}

// WinRate is the share of decisive games.
func (that *TrainingStats) WinRate() float64 {
	if that.Episodes == 0 {
		return 0
	}

	return float64(that.XWins+that.OWins) / float64(that.Episodes)
}

func (that *TrainingStats) DrawRate() float64 {
	if that.Episodes == 0 {
		return 0
	}

	return float64(that.Draws) / float64(that.Episodes)
}

// Trainer runs self-play between two learners sharing one environment.
// playerX is the primary learner whose table is persisted.
type Trainer struct {
	logger *slog.Logger
	conf   TrainerConfig

	env     *tictactoe.Environment
	playerX agent.Learner
	playerO agent.Learner
	store   agent.TableStore
}

func NewTrainer(
	logger *slog.Logger,
	conf TrainerConfig,
	env *tictactoe.Environment,
	playerX, playerO agent.Learner,
	store agent.TableStore,
) *Trainer {
	return &Trainer{
		logger:  logger.With("component", "trainer"),
		conf:    conf,
		env:     env,
		playerX: playerX,
		playerO: playerO,
		store:   store,
	}
}

// Train plays the configured number of episodes and saves playerX's table
// (and playerO's when OpponentTableID is set).
// Cancellation is observed between episodes; the table learned so far is still
// saved.
func (that *Trainer) Train(ctx context.Context) (*TrainingStats, error) {
	log := that.logger.With("method", "Train")

	if that.conf.Episodes <= 0 {
		return nil, ErrNoEpisodes
	}

	interval := that.checkpointInterval()
	stats := &TrainingStats{}

	log.Info("training started",
		"episodes", that.conf.Episodes,
		"epsilon", that.playerX.Epsilon(),
		"checkpoint_interval", interval,
	)

	var interrupted error
	for episode := 0; episode < that.conf.Episodes; episode++ {
		if err := ctx.Err(); err != nil {
			interrupted = fmt.Errorf("training interrupted at episode %d: %w", episode, err)
			break
		}

		if that.conf.DecayEvery > 0 && episode > 0 && episode%that.conf.DecayEvery == 0 {
			that.decayEpsilon()
			log.Debug("epsilon decayed", "episode", episode, "epsilon", that.playerX.Epsilon())
		}

		stats.record(PlayGame(that.env, that.playerX, that.playerO, true))

		if (episode+1)%interval == 0 {
			checkpoint := Checkpoint{
				Episode:       episode + 1,
				WinRate:       stats.WinRate(),
				DrawRate:      stats.DrawRate(),
				Epsilon:       that.playerX.Epsilon(),
				StatesLearned: that.playerX.Table().Len(),
			}
			stats.Checkpoints = append(stats.Checkpoints, checkpoint)

			log.Info("checkpoint",
				"episode", checkpoint.Episode,
				"x_wins", stats.XWins,
				"o_wins", stats.OWins,
				"draws", stats.Draws,
				"epsilon", checkpoint.Epsilon,
				"states_learned", checkpoint.StatesLearned,
			)
		}
	}

	log.Info("training complete",
		"episodes", stats.Episodes,
		"x_wins", stats.XWins,
		"o_wins", stats.OWins,
		"draws", stats.Draws,
		"states_learned", that.playerX.Table().Len(),
	)

	if that.store != nil {
		if err := that.playerX.Save(context.WithoutCancel(ctx), that.store, that.conf.TableID); err != nil {
			return stats, fmt.Errorf("failed to persist trained table: %w", err)
		}

		log.Info("table saved", "table_id", that.conf.TableID)

		if that.conf.OpponentTableID != "" {
			if err := that.playerO.Save(context.WithoutCancel(ctx), that.store, that.conf.OpponentTableID); err != nil {
				return stats, fmt.Errorf("failed to persist opponent table: %w", err)
			}

			log.Info("table saved", "table_id", that.conf.OpponentTableID)
		}
	}

	return stats, interrupted
}

func (that *Trainer) decayEpsilon() {
	for _, learner := range []agent.Learner{that.playerX, that.playerO} {
		learner.SetEpsilon(max(that.conf.MinEpsilon, learner.Epsilon()*that.conf.DecayRate))
	}
}

func (that *Trainer) checkpointInterval() int {
	checkpoints := that.conf.Checkpoints
	if checkpoints <= 0 {
		checkpoints = DefaultCheckpoints
	}

	return max(1, that.conf.Episodes/checkpoints)
}
