package entity

import (
	"fmt"
	"iter"

	"github.com/rocketscienceinc/tictactoe-qlearning/internal/apperror"
)

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board owns the 3x3 grid and the turn order. X always moves first.
// A Board is not safe for concurrent use.
type Board struct {
	cells  State
	mover  Cell
	moves  int
	result Outcome
}

func NewBoard() *Board {
	board := &Board{}
	board.Reset()

	return board
}

func (that *Board) Reset() {
	that.cells = State{}
	that.mover = X
	that.moves = 0
	that.result = OutcomeNone
}

// ValidActions yields the empty cells in row-major order. The sequence reads
// the board lazily, so it reflects the board at iteration time and can be
// ranged over any number of times.
func (that *Board) ValidActions() iter.Seq[Position] {
	return func(yield func(Position) bool) {
		for i, cell := range that.cells {
			if cell != Empty {
				continue
			}

			if !yield(PositionFromIndex(i)) {
				return
			}
		}
	}
}

// IsValidMove reports whether ApplyMove would accept pos.
func (that *Board) IsValidMove(pos Position) bool {
	return that.validateMove(pos) == nil
}

// ApplyMove places the mover's mark on pos. The board is left untouched when
// an error is returned.
func (that *Board) ApplyMove(pos Position) error {
	if err := that.validateMove(pos); err != nil {
		return err
	}

	that.cells[pos.Index()] = that.mover
	that.moves++

	// the result is recorded once, the board refuses moves afterwards
	if outcome := OutcomeOf(that.Status()); outcome != OutcomeNone {
		that.result = outcome
	}

	that.mover = that.mover.Opponent()

	return nil
}

func (that *Board) validateMove(pos Position) error {
	if !pos.InBounds() {
		return fmt.Errorf("%w: %s", apperror.ErrInvalidCell, pos)
	}

	if that.IsTerminal() {
		return apperror.ErrGameFinished
	}

	if that.cells[pos.Index()] != Empty {
		return fmt.Errorf("%w: %s", apperror.ErrCellOccupied, pos)
	}

	return nil
}

// Winner scans rows, then columns, then diagonals. Empty means no winner.
func (that *Board) Winner() Cell {
	for _, combo := range WinCombos {
		a, b, c := that.cells[combo[0]], that.cells[combo[1]], that.cells[combo[2]]
		if a != Empty && a == b && b == c {
			return a
		}
	}

	return Empty
}

func (that *Board) IsDraw() bool {
	for _, cell := range that.cells {
		if cell == Empty {
			return false
		}
	}

	return that.Winner() == Empty
}

func (that *Board) IsTerminal() bool {
	return that.Winner() != Empty || that.IsDraw()
}

func (that *Board) Status() GameStatus {
	winner := that.Winner()
	isDraw := that.IsDraw()

	return GameStatus{
		Winner:     winner,
		IsDraw:     isDraw,
		IsTerminal: winner != Empty || isDraw,
	}
}

// Outcome is the result recorded by the move that ended the game.
func (that *Board) Outcome() Outcome {
	return that.result
}

func (that *Board) Mover() Cell {
	return that.mover
}

func (that *Board) MoveCount() int {
	return that.moves
}

func (that *Board) At(pos Position) Cell {
	if !pos.InBounds() {
		return Empty
	}

	return that.cells[pos.Index()]
}

func (that *Board) State() State {
	return that.cells
}

func (that *Board) StateKey() StateKey {
	return that.cells.Key()
}
