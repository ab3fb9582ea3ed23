package agent

import (
	"errors"
	"fmt"

	"tictac/experiments/metrics"
	"tictac/game"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

var ErrNoInput = errors.New("no input")

type Agent interface {
	// FindMove returns the move to play and performance metrics (if collected) from the search process
	FindMove(state *game.Grid) (game.Move, metrics.SearchMetric, error)
}

// fallback picks a uniformly random legal move when the search produced none.
func fallback(state *game.Grid, rng *rand.Rand, metric metrics.SearchMetric) (game.Move, metrics.SearchMetric, error) {
	if state.IsTerminal() {
		return game.Move{}, metric, fmt.Errorf("no legal moves to fall back on: %s", state.Winner())
	}
	moves := state.LegalMoves()
	move := moves[rng.Intn(len(moves))]
	metric.Fallback = true
	log.Warn().Msgf("search found no move, falling back to random move %s", move)
	return move, metric, nil
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewSource(seed))
}
