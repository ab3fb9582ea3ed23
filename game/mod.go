package game

import "fmt"

// Player identifies the owner of a cell and the side to move.
type Player int8

const (
	Empty Player = iota
	PlayerA
	PlayerB
)

func (p Player) Opponent() Player {
	switch p {
	case PlayerA:
		return PlayerB
	case PlayerB:
		return PlayerA
	default:
		return Empty
	}
}

func (p Player) String() string {
	switch p {
	case PlayerA:
		return "X"
	case PlayerB:
		return "O"
	default:
		return "."
	}
}

// Result is the outcome of a position. Exactly one value holds at any time.
type Result int8

const (
	Ongoing Result = iota
	PlayerAWins
	PlayerBWins
	Draw
)

// Winner returns the winning player, or Empty for draws and unfinished games.
func (r Result) Winner() Player {
	switch r {
	case PlayerAWins:
		return PlayerA
	case PlayerBWins:
		return PlayerB
	default:
		return Empty
	}
}

func (r Result) String() string {
	switch r {
	case PlayerAWins:
		return "x_wins"
	case PlayerBWins:
		return "o_wins"
	case Draw:
		return "draw"
	default:
		return "ongoing"
	}
}

func winFor(p Player) Result {
	if p == PlayerA {
		return PlayerAWins
	}
	return PlayerBWins
}

// Move places the mover's mark on a cell.
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (m Move) String() string {
	return fmt.Sprintf("(%d, %d)", m.Row, m.Col)
}

type StateHash uint64

// State should be immutable - operations on State always return a new copy
type State interface {
	Player() Player
	LegalMoves() []Move
	Play(Move) (State, error)
	Winner() Result
	Hash() StateHash
}

func IsTerminal(s State) bool {
	return s.Winner() != Ongoing
}
