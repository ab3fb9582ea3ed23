package agent

import (
	"errors"

	"tictac/experiments/metrics"
	"tictac/game"
	"tictac/searcher"

	"golang.org/x/exp/rand"
)

type evaluationAgent struct {
	mcts *searcher.MCTS
	rng  *rand.Rand
}

// NewEvaluationAgent returns a new agent for actual game play: it plays the most visited move.
func NewEvaluationAgent(mcts *searcher.MCTS, seed uint64) Agent {
	return &evaluationAgent{mcts: mcts, rng: newRand(seed)}
}

func (a *evaluationAgent) FindMove(state *game.Grid) (game.Move, metrics.SearchMetric, error) {
	policy, metric, err := a.mcts.Simulate(state)
	if errors.Is(err, searcher.ErrNoMoveFound) {
		return fallback(state, a.rng, metric)
	}
	if err != nil {
		return game.Move{}, metric, err
	}

	move, ok := policy.Best()
	if !ok {
		return fallback(state, a.rng, metric)
	}
	return move, metric, nil
}
