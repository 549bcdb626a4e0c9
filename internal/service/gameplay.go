package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-qlearning/internal/agent"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/entity"
	"github.com/rocketscienceinc/tictactoe-qlearning/internal/tictactoe"
)

// HumanMark is the side played by the caller; the agent answers as its opponent.
const HumanMark = entity.X

type TurnResult struct {
	Board    entity.State
	Done     bool
	Winner   entity.Cell
	AIAction *int
}

type GamePlayService interface {
	Reset(ctx context.Context) entity.State
	MakeTurn(ctx context.Context, cell int) (*TurnResult, error)
}

// gamePlayService owns a single game shared by every caller.
type gamePlayService struct {
	logger *slog.Logger

	mu    sync.Mutex
	env   *tictactoe.Environment
	agent agent.Agent
}

func NewGamePlayService(logger *slog.Logger, env *tictactoe.Environment, opponent agent.Agent) GamePlayService {
	env.Reset()

	return &gamePlayService{
		logger: logger.With("component", "gameplay"),
		env:    env,
		agent:  opponent,
	}
}

func (that *gamePlayService) Reset(_ context.Context) entity.State {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.logger.Debug("game reset", "game", that.env.GameCount()+1)

	return that.env.Reset()
}

// MakeTurn plays the human move at cell and, unless that ends the game, the
// agent's greedy reply. An illegal cell is rejected and the game is left as is.
func (that *gamePlayService) MakeTurn(_ context.Context, cell int) (*TurnResult, error) {
	log := that.logger.With("method", "MakeTurn", "cell", cell)

	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.env.Validate(entity.PositionFromIndex(cell)); err != nil {
		log.Debug("move rejected", "error", err)
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	step := that.env.StepFlat(cell)
	if step.Done {
		return that.result(nil), nil
	}

	aiAction, ok := that.agent.ChooseAction(step.State, that.env.ValidActionsFlat(), false)
	if !ok {
		return that.result(nil), nil
	}

	that.env.StepFlat(aiAction)
	log.Debug("agent replied", "ai_action", aiAction)

	return that.result(&aiAction), nil
}

func (that *gamePlayService) result(aiAction *int) *TurnResult {
	return &TurnResult{
		Board:    that.env.State(),
		Done:     that.env.IsGameOver(),
		Winner:   that.env.Winner(),
		AIAction: aiAction,
	}
}
