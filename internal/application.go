package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-qlearning/internal/agent"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/config"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/repository"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/repository/storage"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// opponentSuffix names the table of the learner trained as O.
const opponentSuffix = "-o"

// RunApp - runs the application in the configured mode.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	store, closeStore, err := newTableStore(ctx, log, conf)
	if err != nil {
		return err
	}

	defer closeStore()

	log.Info("Starting", "mode", conf.Mode, "storage", conf.Storage.Driver, "table_id", conf.Storage.TableID)

	switch conf.Mode {
	case config.ModeTrain:
		return runTrain(ctx, logger, conf, store)
	case config.ModeEvaluate:
		return runEvaluate(ctx, logger, conf, store)
	case config.ModeServe:
		return runServe(ctx, logger, conf, store)
	default:
		return fmt.Errorf("unknown mode %q", conf.Mode)
	}
}

func newTableStore(ctx context.Context, log *slog.Logger, conf *config.Config) (agent.TableStore, func(), error) {
	if conf.Storage.Driver != config.DriverRedis {
		return repository.NewFileTableRepository(conf.Storage.Dir), func() {}, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, storage.RedisOptions{
		Addr:     redisAddrString,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	closeStore := func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	return repository.NewTableRepository(redisStorage.Connection), closeStore, nil
}
