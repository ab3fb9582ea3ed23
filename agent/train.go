package agent

import (
	"errors"
	"math"

	"tictac/experiments/metrics"
	"tictac/game"
	"tictac/searcher"

	"golang.org/x/exp/rand"
)

type trainingAgent struct {
	mcts        *searcher.MCTS
	temperature float64
	rng         *rand.Rand
}

// NewTrainingAgent returns a new agent for self-play: it samples moves in
// proportion to visits^(1/temperature), so games in an arena differ.
func NewTrainingAgent(mcts *searcher.MCTS, temperature float64, seed uint64) Agent {
	if temperature <= 0 {
		temperature = 1.0
	}
	return &trainingAgent{mcts: mcts, temperature: temperature, rng: newRand(seed)}
}

func (a *trainingAgent) FindMove(state *game.Grid) (game.Move, metrics.SearchMetric, error) {
	policy, metric, err := a.mcts.Simulate(state)
	if errors.Is(err, searcher.ErrNoMoveFound) {
		return fallback(state, a.rng, metric)
	}
	if err != nil {
		return game.Move{}, metric, err
	}
	return sample(adjustTemperature(policy, a.temperature), a.rng.Float64()), metric, nil
}

type weightedMove struct {
	move game.Move
	prob float64
}

func adjustTemperature(policy searcher.Policy, temperature float64) []weightedMove {
	// Compute temperature-adjusted move probabilities
	exponent := 1.0 / temperature
	sum := 0.0
	adjusted := make([]weightedMove, len(policy))
	for i, edge := range policy {
		prob := math.Pow(float64(edge.Visits), exponent)
		sum += prob
		adjusted[i] = weightedMove{move: edge.Move, prob: prob}
	}
	// Normalize
	for i := range adjusted {
		adjusted[i].prob /= sum
	}
	return adjusted
}

func sample(policy []weightedMove, sampled float64) game.Move {
	cumulative := 0.0
	var lastMove game.Move
	for _, wm := range policy {
		lastMove = wm.move
		cumulative += wm.prob
		if sampled < cumulative {
			return wm.move
		}
	}
	return lastMove // Fallback in case of rounding errors
}
