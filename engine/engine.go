package engine

import (
	"context"

	"tictac/experiments/metrics"
	"tictac/game"
)

type Runner interface {
	// Run plays a game till there's a result or the context is done
	Run(ctx context.Context) (game.Result, metrics.GameMetric, []metrics.MoveMetric, error)
}

// Update describes one applied move.
type Update struct {
	Step   int
	Player game.Player
	Move   game.Move
	State  *game.Grid
}
