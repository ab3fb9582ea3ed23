package engine

import (
	"context"
	"errors"
	"testing"

	"tictac/agent"
	"tictac/experiments/metrics"
	"tictac/game"

	"github.com/stretchr/testify/require"
)

// scriptedAgent plays its moves in order.
type scriptedAgent struct {
	moves []game.Move
	err   error
}

func (a *scriptedAgent) FindMove(state *game.Grid) (game.Move, metrics.SearchMetric, error) {
	if a.err != nil {
		return game.Move{}, metrics.SearchMetric{}, a.err
	}
	move := a.moves[0]
	a.moves = a.moves[1:]
	return move, metrics.SearchMetric{Iterations: 1}, nil
}

func TestLocalEngineRun(t *testing.T) {
	t.Run("plays scripted moves to a win", func(t *testing.T) {
		state, _ := game.NewGame(3, 3)
		x := &scriptedAgent{moves: []game.Move{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}}}
		o := &scriptedAgent{moves: []game.Move{{Row: 1, Col: 0}, {Row: 1, Col: 1}}}
		e := LocalEngine(state, []agent.Agent{x, o})

		var updates []Update
		e.Observe(func(u Update) { updates = append(updates, u) })

		result, gameMetric, moveMetrics, err := e.Run(context.Background())

		require.NoError(t, err)
		require.Equal(t, game.PlayerAWins, result)
		require.Equal(t, "X", gameMetric.StartingPlayer)
		require.Equal(t, "x_wins", gameMetric.Result)
		require.Equal(t, 5, gameMetric.TotalMoves)
		require.Len(t, moveMetrics, 5)
		require.Equal(t, "O", moveMetrics[1].Player)
		require.Equal(t, "(1, 1)", moveMetrics[3].Move)
		require.Equal(t, 1, moveMetrics[4].Iterations)
		require.Len(t, updates, 5)
		require.Equal(t, game.Move{Row: 0, Col: 2}, updates[4].Move)
		require.Same(t, e.State, updates[4].State)
	})

	t.Run("random agents always finish", func(t *testing.T) {
		for seed := uint64(1); seed <= 10; seed++ {
			state, _ := game.NewGame(4, 3)
			e := LocalEngine(state, []agent.Agent{agent.NewRandomAgent(seed), agent.NewRandomAgent(seed + 100)})

			result, gameMetric, moveMetrics, err := e.Run(context.Background())

			require.NoError(t, err)
			require.NotEqual(t, game.Ongoing, result)
			require.LessOrEqual(t, gameMetric.TotalMoves, 16)
			require.Len(t, moveMetrics, gameMetric.TotalMoves)
		}
	})

	t.Run("rejects illegal agent moves", func(t *testing.T) {
		state, _ := game.NewGame(3, 3)
		x := &scriptedAgent{moves: []game.Move{{Row: 0, Col: 0}, {Row: 0, Col: 1}}}
		o := &scriptedAgent{moves: []game.Move{{Row: 0, Col: 0}}} // Occupied
		e := LocalEngine(state, []agent.Agent{x, o})

		_, _, moveMetrics, err := e.Run(context.Background())

		require.ErrorIs(t, err, game.ErrIllegalMove)
		require.Contains(t, err.Error(), "step 2: player O")
		require.Len(t, moveMetrics, 1)
	})

	t.Run("propagates agent errors", func(t *testing.T) {
		state, _ := game.NewGame(3, 3)
		boom := errors.New("boom")
		e := LocalEngine(state, []agent.Agent{&scriptedAgent{err: boom}, &scriptedAgent{}})

		_, _, _, err := e.Run(context.Background())

		require.ErrorIs(t, err, boom)
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		state, _ := game.NewGame(3, 3)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		e := LocalEngine(state, []agent.Agent{agent.NewRandomAgent(1), agent.NewRandomAgent(2)})

		_, _, _, err := e.Run(ctx)

		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("needs two agents", func(t *testing.T) {
		state, _ := game.NewGame(3, 3)
		require.Panics(t, func() { LocalEngine(state, []agent.Agent{agent.NewRandomAgent(1)}) })
	})
}
