package searcher

import (
	"math"

	"tictac/game"
)

type uct struct {
	numerator float64
}

func newUCT(c float64, N float64) *uct {
	if N == 0 {
		panic("N cannot be 0")
	}
	return &uct{numerator: c * c * math.Log(N)}
}

func (u uct) evaluate(w float64, n float64) float64 {
	if n == 0 {
		panic("n cannot be 0")
	}
	// UCT = w/n + c*sqrt(ln(N)/n)
	return w/n + math.Sqrt(u.numerator/n)
}

// Edge holds the statistics of one root child after a search.
type Edge struct {
	Move    game.Move
	Visits  int
	Rewards float64
}

// Policy lists the root children in expansion order.
type Policy []Edge

// Best returns the most visited move. Ties go to the earliest expanded child.
func (p Policy) Best() (game.Move, bool) {
	best := -1
	for i, e := range p {
		if best < 0 || e.Visits > p[best].Visits {
			best = i
		}
	}
	if best < 0 {
		return game.Move{}, false
	}
	return p[best].Move, true
}

func (p Policy) TotalVisits() int {
	total := 0
	for _, e := range p {
		total += e.Visits
	}
	return total
}
