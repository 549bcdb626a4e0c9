package tictactoe

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-qlearning/internal/entity"
)

const (
	RenderConsole = "console"
	RenderSimple  = "simple"
)

// Render returns a display string for the current board. Unknown modes render
// nothing.
func (that *Environment) Render(mode string) string {
	switch mode {
	case RenderConsole:
		return that.renderConsole()
	case RenderSimple:
		return that.board.Compact()
	default:
		return ""
	}
}

func (that *Environment) renderConsole() string {
	var sb strings.Builder

	separator := strings.Repeat("=", 15)

	sb.WriteString(separator + "\n")
	fmt.Fprintf(&sb, "  Game #%d\n", that.gameCount)
	sb.WriteString(separator + "\n")
	sb.WriteString(that.board.String() + "\n")

	status := that.board.Status()
	switch {
	case status.Winner != entity.Empty:
		fmt.Fprintf(&sb, "\nWinner: %s\n", status.Winner)
	case status.IsDraw:
		sb.WriteString("\nDraw!\n")
	}

	fmt.Fprintf(&sb, "Moves: %d\n", len(that.history))
	sb.WriteString(separator)

	return sb.String()
}
