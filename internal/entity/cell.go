package entity

import "fmt"

const (
	BoardSize = 3
	CellCount = BoardSize * BoardSize
)

// Cell is the content of a single square. The numeric values double as the
// state encoding handed to agents: 0 empty, +1 X, -1 O.
type Cell int8

const (
	O     Cell = -1
	Empty Cell = 0
	X     Cell = 1
)

const (
	symbolEmpty = '.'
	symbolX     = 'X'
	symbolO     = 'O'
)

func (c Cell) Opponent() Cell {
	return -c
}

func (c Cell) Symbol() byte {
	switch c {
	case X:
		return symbolX
	case O:
		return symbolO
	default:
		return symbolEmpty
	}
}

func (c Cell) String() string {
	return string(c.Symbol())
}

// Position addresses a cell by row and column, both in [0, BoardSize).
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// PositionFromIndex converts a flat index (row*3+col) to a Position.
// Indices outside 0..8 map to out-of-bounds positions.
func PositionFromIndex(index int) Position {
	return Position{Row: index / BoardSize, Col: index % BoardSize}
}

func (p Position) Index() int {
	return p.Row*BoardSize + p.Col
}

func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < BoardSize && p.Col >= 0 && p.Col < BoardSize
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// State is the row-major snapshot of the board consumed by agents.
type State [CellCount]Cell

// Key returns the canonical lookup identity of the state.
func (s State) Key() StateKey {
	key := make([]byte, CellCount)
	for i, cell := range s {
		key[i] = cell.Symbol()
	}

	return StateKey(key)
}

// StateKey is a fixed-width serialization of the 9 cells, one symbol per cell.
// Rotations and reflections are distinct keys.
type StateKey string

func (k StateKey) Valid() bool {
	if len(k) != CellCount {
		return false
	}

	for i := 0; i < len(k); i++ {
		switch k[i] {
		case symbolEmpty, symbolX, symbolO:
		default:
			return false
		}
	}

	return true
}

// State decodes the key back into cells. The key must be valid.
func (k StateKey) State() State {
	var state State
	for i := 0; i < CellCount && i < len(k); i++ {
		switch k[i] {
		case symbolX:
			state[i] = X
		case symbolO:
			state[i] = O
		}
	}

	return state
}
