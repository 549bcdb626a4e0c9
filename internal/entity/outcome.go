package entity

// GameStatus is derived from the cells on demand and never stored.
type GameStatus struct {
	Winner     Cell `json:"winner"`
	IsDraw     bool `json:"is_draw"`
	IsTerminal bool `json:"is_terminal"`
}

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeXWins
	OutcomeOWins
	OutcomeDraw
)

func OutcomeOf(status GameStatus) Outcome {
	switch {
	case status.Winner == X:
		return OutcomeXWins
	case status.Winner == O:
		return OutcomeOWins
	case status.IsDraw:
		return OutcomeDraw
	default:
		return OutcomeNone
	}
}

// Winner returns the winning mark, or Empty for a draw or an unfinished game.
func (o Outcome) Winner() Cell {
	switch o {
	case OutcomeXWins:
		return X
	case OutcomeOWins:
		return O
	default:
		return Empty
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeXWins:
		return "x_wins"
	case OutcomeOWins:
		return "o_wins"
	case OutcomeDraw:
		return "draw"
	default:
		return "none"
	}
}
