package tictactoe

import (
	"slices"

	"github.com/rocketscienceinc/tictactoe-qlearning/internal/entity"
)

const (
	RewardWin  = 1.0
	RewardLoss = -1.0
	RewardDraw = 0.0

	// InvalidMovePenalty ends the episode when an agent picks an occupied or
	// out-of-range cell.
	InvalidMovePenalty = -10.0
)

// Move is one entry of the environment history.
type Move struct {
	Row    int         `json:"row"`
	Col    int         `json:"col"`
	Player entity.Cell `json:"player"`
}

// Info describes the game after a step.
type Info struct {
	Winner      entity.Cell `json:"winner"`
	IsDraw      bool        `json:"is_draw"`
	IsTerminal  bool        `json:"is_terminal"`
	MoveCount   int         `json:"move_count"`
	Mover       entity.Cell `json:"current_player"`
	InvalidMove bool        `json:"invalid_move,omitempty"`
}

type StepResult struct {
	State  entity.State `json:"state"`
	Reward float64      `json:"reward"`
	Done   bool         `json:"done"`
	Info   Info         `json:"info"`
}

// Snapshot is the full description of the current game.
type Snapshot struct {
	State            entity.State      `json:"state"`
	AvailableActions []entity.Position `json:"available_actions"`
	AvailableFlat    []int             `json:"available_actions_flat"`
	History          []Move            `json:"move_history"`
	MoveCount        int               `json:"move_count"`
	Mover            entity.Cell       `json:"current_player"`
	GameCount        int               `json:"game_count"`

	entity.GameStatus
}

// Environment wraps a board behind a step interface. It is ACTIVE after Reset
// and becomes TERMINAL on the move that completes a line or fills the board;
// TERMINAL lasts until the next Reset.
type Environment struct {
	board     *entity.Board
	history   []Move
	gameCount int
}

func NewEnvironment() *Environment {
	return &Environment{
		board: entity.NewBoard(),
	}
}

func (that *Environment) Reset() entity.State {
	that.board.Reset()
	that.history = that.history[:0]
	that.gameCount++

	return that.board.State()
}

// Step plays pos for the current mover.
func (that *Environment) Step(pos entity.Position) StepResult {
	if !that.board.IsValidMove(pos) {
		return StepResult{
			State:  that.board.State(),
			Reward: InvalidMovePenalty,
			Done:   true,
			Info:   that.info(true),
		}
	}

	mover := that.board.Mover()

	// validity was checked above
	_ = that.board.ApplyMove(pos)
	that.history = append(that.history, Move{Row: pos.Row, Col: pos.Col, Player: mover})

	status := that.board.Status()

	return StepResult{
		State:  that.board.State(),
		Reward: reward(status, mover),
		Done:   status.IsTerminal,
		Info:   that.info(false),
	}
}

// StepFlat plays the cell at index row*3+col.
func (that *Environment) StepFlat(index int) StepResult {
	return that.Step(entity.PositionFromIndex(index))
}

// Validate returns the error ApplyMove would produce for pos without playing it.
func (that *Environment) Validate(pos entity.Position) error {
	if that.board.IsValidMove(pos) {
		return nil
	}

	probe := *that.board

	return probe.ApplyMove(pos)
}

func reward(status entity.GameStatus, mover entity.Cell) float64 {
	switch status.Winner {
	case mover:
		return RewardWin
	case mover.Opponent():
		return RewardLoss
	default:
		return RewardDraw
	}
}

func (that *Environment) info(invalid bool) Info {
	status := that.board.Status()

	return Info{
		Winner:      status.Winner,
		IsDraw:      status.IsDraw,
		IsTerminal:  status.IsTerminal,
		MoveCount:   len(that.history),
		Mover:       that.board.Mover(),
		InvalidMove: invalid,
	}
}

func (that *Environment) State() entity.State {
	return that.board.State()
}

func (that *Environment) ValidActions() []entity.Position {
	return slices.Collect(that.board.ValidActions())
}

func (that *Environment) ValidActionsFlat() []int {
	actions := make([]int, 0, entity.CellCount)
	for pos := range that.board.ValidActions() {
		actions = append(actions, pos.Index())
	}

	return actions
}

func (that *Environment) Mover() entity.Cell {
	return that.board.Mover()
}

func (that *Environment) Winner() entity.Cell {
	return that.board.Winner()
}

func (that *Environment) Outcome() entity.Outcome {
	return entity.OutcomeOf(that.board.Status())
}

func (that *Environment) IsGameOver() bool {
	return that.board.IsTerminal()
}

func (that *Environment) History() []Move {
	return slices.Clone(that.history)
}

func (that *Environment) GameCount() int {
	return that.gameCount
}

func (that *Environment) Snapshot() Snapshot {
	return Snapshot{
		State:            that.board.State(),
		AvailableActions: that.ValidActions(),
		AvailableFlat:    that.ValidActionsFlat(),
		History:          that.History(),
		MoveCount:        len(that.history),
		Mover:            that.board.Mover(),
		GameCount:        that.gameCount,
		GameStatus:       that.board.Status(),
	}
}
