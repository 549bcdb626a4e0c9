package entity

import "strings"

// String renders the grid with row and column coordinates.
func (that *Board) String() string {
	var sb strings.Builder

	sb.WriteString("  0 1 2")
	for row := 0; row < BoardSize; row++ {
		sb.WriteByte('\n')
		sb.WriteByte(byte('0' + row))
		for col := 0; col < BoardSize; col++ {
			sb.WriteByte(' ')
			sb.WriteByte(that.At(Position{Row: row, Col: col}).Symbol())
		}
	}

	return sb.String()
}

// Compact renders one line per row without coordinates.
func (that *Board) Compact() string {
	key := string(that.StateKey())

	rows := make([]string, 0, BoardSize)
	for row := 0; row < BoardSize; row++ {
		rows = append(rows, key[row*BoardSize:(row+1)*BoardSize])
	}

	return strings.Join(rows, "\n")
}
