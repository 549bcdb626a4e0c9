package apperror

import "errors"

var (
	ErrGameFinished = errors.New("game is already finished")
	ErrCellOccupied = errors.New("cell is already occupied")
	ErrInvalidCell  = errors.New("invalid cell index")

	ErrTableNotFound  = errors.New("q-table not found")
	ErrCorruptTable   = errors.New("q-table is corrupt")
	ErrInvalidTableID = errors.New("invalid q-table id")
)
