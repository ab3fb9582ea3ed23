package engine

import (
	"context"
	"fmt"
	"time"

	"tictac/agent"
	"tictac/experiments/metrics"
	"tictac/game"

	"github.com/rs/zerolog/log"
)

type Engine struct {
	State     *game.Grid
	Agents    []agent.Agent // Indexed by seat: X first, O second
	observers []func(Update)
}

var _ Runner = (*Engine)(nil)

func LocalEngine(state *game.Grid, agents []agent.Agent) *Engine {
	if len(agents) != 2 {
		panic("need exactly two agents")
	}

	return &Engine{
		State:  state,
		Agents: agents,
	}
}

// Observe registers fn to be called after every applied move.
func (e *Engine) Observe(fn func(Update)) {
	e.observers = append(e.observers, fn)
}

// Run executes the entire game loop until the game is decided.
func (e *Engine) Run(ctx context.Context) (game.Result, metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{
		StartingPlayer: e.State.Player().String(),
		StartTime:      time.Now(),
	}
	var moveMetrics []metrics.MoveMetric

	log.Info().Msgf("player %s is starting", e.State.Player())

	step := 1
	for !e.State.IsTerminal() {
		if err := ctx.Err(); err != nil {
			return game.Ongoing, gameMetric, moveMetrics, err
		}

		player := e.State.Player()
		move, searchMetric, err := e.seat(player).FindMove(e.State)
		if err != nil {
			return game.Ongoing, gameMetric, moveMetrics, fmt.Errorf("step %d: player %s: %w", step, player, err)
		}

		next, err := e.State.Apply(move)
		if err != nil {
			return game.Ongoing, gameMetric, moveMetrics, fmt.Errorf("step %d: player %s: %w", step, player, err)
		}

		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       player.String(),
			Move:         move.String(),
			SearchMetric: searchMetric,
		})
		log.Debug().Msgf("step %d: player %s plays %s", step, player, move)

		e.State = next
		for _, observe := range e.observers {
			observe(Update{Step: step, Player: player, Move: move, State: next})
		}
		step++
	}

	result := e.State.Winner()
	gameMetric.Result = result.String()
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = len(moveMetrics)

	log.Info().Msgf("game over after %d moves: %s", gameMetric.TotalMoves, result)
	return result, gameMetric, moveMetrics, nil
}

func (e *Engine) seat(p game.Player) agent.Agent {
	if p == game.PlayerA {
		return e.Agents[0]
	}
	return e.Agents[1]
}
