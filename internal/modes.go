package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/rocketscienceinc/tictactoe-qlearning/internal/agent"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/config"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/service"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-qlearning/transport/rest"
)

// Seeds of the individual random sources, offset from the configured seed.
const (
	seedPlayerX = iota
	seedPlayerO
	seedBaseline
)

func newLearner(conf config.Training, offset int64) *agent.QLearning {
	params := agent.Params{
		Epsilon: conf.Epsilon,
		Alpha:   conf.Alpha,
		Gamma:   conf.Gamma,
	}

	return agent.NewQLearning(params, rand.New(rand.NewSource(conf.Seed+offset))) //nolint: gosec // not security sensitive
}

func newBaseline(conf config.Training) *agent.Random {
	return agent.NewRandom(rand.New(rand.NewSource(conf.Seed + seedBaseline))) //nolint: gosec // not security sensitive
}

func runTrain(ctx context.Context, logger *slog.Logger, conf *config.Config, store agent.TableStore) error {
	log := logger.With("component", "app", "method", "runTrain")

	tableID := conf.Storage.TableID
	opponentID := tableID + opponentSuffix

	playerX := newLearner(conf.Training, seedPlayerX)
	playerO := newLearner(conf.Training, seedPlayerO)

	if conf.Training.Resume {
		for id, learner := range map[string]*agent.QLearning{tableID: playerX, opponentID: playerO} {
			err := learner.Load(ctx, store, id)
			if errors.Is(err, apperror.ErrTableNotFound) {
				log.Info("no table to resume, starting empty", "table_id", id)
				continue
			}

			if err != nil {
				return fmt.Errorf("failed to resume training: %w", err)
			}

			log.Info("resuming training", "table_id", id, "states", learner.Table().Len())
		}
	}

	trainer := usecase.NewTrainer(logger, usecase.TrainerConfig{
		Episodes:        conf.Training.Episodes,
		MinEpsilon:      conf.Training.MinEpsilon,
		DecayRate:       conf.Training.DecayRate,
		DecayEvery:      conf.Training.DecayEvery,
		Checkpoints:     conf.Training.Checkpoints,
		TableID:         tableID,
		OpponentTableID: opponentID,
	}, tictactoe.NewEnvironment(), playerX, playerO, store)

	if _, err := trainer.Train(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("training stopped early, progress saved")
			return nil
		}

		return fmt.Errorf("training failed: %w", err)
	}

	if conf.Evaluation.Games <= 0 {
		return nil
	}

	return evaluate(ctx, log, conf, playerX)
}

func runEvaluate(ctx context.Context, logger *slog.Logger, conf *config.Config, store agent.TableStore) error {
	log := logger.With("component", "app", "method", "runEvaluate")

	candidate := newLearner(conf.Training, seedPlayerX)
	if err := candidate.Load(ctx, store, conf.Storage.TableID); err != nil {
		return fmt.Errorf("could not load agent: %w", err)
	}

	return evaluate(ctx, log, conf, candidate)
}

func evaluate(ctx context.Context, log *slog.Logger, conf *config.Config, candidate agent.Agent) error {
	report, err := usecase.Evaluate(ctx, tictactoe.NewEnvironment(), candidate, newBaseline(conf.Training), conf.Evaluation.Games)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	log.Info("evaluation against random baseline",
		"games", report.Games,
		"wins", report.AgentWins,
		"losses", report.OpponentWins,
		"draws", report.Draws,
		"mean_score", report.MeanScore,
		"std_err", report.StdErr,
	)

	return nil
}

func runServe(ctx context.Context, logger *slog.Logger, conf *config.Config, store agent.TableStore) error {
	log := logger.With("component", "app", "method", "runServe")

	tableID := conf.Storage.TableID + opponentSuffix

	opponent := newLearner(conf.Training, seedPlayerO)
	if err := opponent.Load(ctx, store, tableID); err != nil {
		return fmt.Errorf("could not load agent: %w", err)
	}

	gamePlay := service.NewGamePlayService(logger, tictactoe.NewEnvironment(), opponent)
	router := rest.NewRouter(rest.NewHandlers(logger, gamePlay))

	log.Info("Starting HTTP server", "port", conf.HTTPPort, "table_id", tableID, "states", opponent.Table().Len())

	if err := rest.Start(ctx, conf.HTTPPort, router); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}
