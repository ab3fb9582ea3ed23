package agent

import (
	"fmt"

	"tictac/experiments/metrics"
	"tictac/game"

	"golang.org/x/exp/rand"
)

type randomAgent struct {
	rng *rand.Rand
}

// NewRandomAgent returns an agent that plays uniformly random legal moves.
func NewRandomAgent(seed uint64) Agent {
	return &randomAgent{rng: newRand(seed)}
}

func (a *randomAgent) FindMove(state *game.Grid) (game.Move, metrics.SearchMetric, error) {
	if state.IsTerminal() {
		return game.Move{}, metrics.SearchMetric{}, fmt.Errorf("%w: game is over (%s)", game.ErrIllegalMove, state.Winner())
	}
	moves := state.LegalMoves()
	return moves[a.rng.Intn(len(moves))], metrics.SearchMetric{}, nil
}
