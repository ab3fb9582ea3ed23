package searcher

import (
	"math"
	"testing"

	"tictac/game"

	"github.com/stretchr/testify/require"
)

func TestNewMCTS(t *testing.T) {
	t.Run("panics without an iteration budget", func(t *testing.T) {
		require.Panics(t, func() { NewMCTS() })
		require.Panics(t, func() { NewMCTS(WithIterations(0)) })
	})

	t.Run("defaults", func(t *testing.T) {
		m := NewMCTS(WithIterations(10))
		require.Equal(t, 1, m.goroutines)
		require.Equal(t, DefaultExploration, m.exploration)
		require.False(t, m.reuse)
	})

	t.Run("ignores invalid options", func(t *testing.T) {
		m := NewMCTS(WithIterations(10), WithGoroutines(-1), WithExplorationConstant(-1))
		require.Equal(t, 1, m.goroutines)
		require.Equal(t, DefaultExploration, m.exploration)
	})
}

func TestSearch(t *testing.T) {
	t.Run("terminal root", func(t *testing.T) {
		for _, root := range []*game.Grid{
			mustGrid(t, 3, "XXX", "OO.", "..."),
			mustGrid(t, 3, "XOX", "XOO", "OXX"),
		} {
			_, err := Search(root, 100, DefaultExploration)
			require.ErrorIs(t, err, ErrTerminalRoot)
		}
	})

	t.Run("single iteration returns a legal move", func(t *testing.T) {
		root, _ := game.NewGame(3, 3)
		move, err := Search(root, 1, DefaultExploration)
		require.NoError(t, err)
		require.Contains(t, root.LegalMoves(), move)
	})

	t.Run("invalid budget", func(t *testing.T) {
		root, _ := game.NewGame(3, 3)
		_, err := Search(root, 0, DefaultExploration)
		require.ErrorIs(t, err, ErrInvalidBudget)
		_, err = Search(root, 10, 0)
		require.ErrorIs(t, err, ErrInvalidBudget)
		_, err = Search(root, 10, math.NaN())
		require.ErrorIs(t, err, ErrInvalidBudget)
	})

	t.Run("no legal moves in an unfinished game", func(t *testing.T) {
		_, err := Search(mockState{player: game.PlayerA}, 5, DefaultExploration)
		require.ErrorIs(t, err, ErrNoMoveFound)
	})

	t.Run("takes an immediate win", func(t *testing.T) {
		root := mustGrid(t, 3, "XX.", "OO.", "...")
		m := NewMCTS(WithIterations(1000), WithSeed(1))
		move, err := m.Search(root)
		require.NoError(t, err)
		require.Equal(t, game.Move{Row: 0, Col: 2}, move)
	})

	t.Run("blocks an immediate loss", func(t *testing.T) {
		root := mustGrid(t, 3, "XX.", ".O.", "...")
		m := NewMCTS(WithIterations(2000), WithSeed(1))
		move, err := m.Search(root)
		require.NoError(t, err)
		require.Equal(t, game.Move{Row: 0, Col: 2}, move)
	})

	t.Run("finds a short line on a larger board", func(t *testing.T) {
		root := mustGrid(t, 3,
			".....",
			".XX..",
			".....",
			"..O..",
			"...O.",
		)
		m := NewMCTS(WithIterations(3000), WithSeed(5))
		move, err := m.Search(root)
		require.NoError(t, err)
		require.Contains(t, []game.Move{{Row: 1, Col: 0}, {Row: 1, Col: 3}}, move)
	})
}

func TestSimulate(t *testing.T) {
	t.Run("visits add up to the iteration budget", func(t *testing.T) {
		root, _ := game.NewGame(3, 3)
		m := NewMCTS(WithIterations(200), WithSeed(3), WithMetrics())

		policy, metric, err := m.Simulate(root)

		require.NoError(t, err)
		require.Len(t, policy, 9, "Every root move should be expanded")
		require.Equal(t, 200, policy.TotalVisits())
		require.Equal(t, 200, m.root.visits)
		require.Equal(t, 200, metric.Episodes)
		require.Equal(t, 200, metric.Iterations)
		require.LessOrEqual(t, metric.TreeSize, 201, "Each iteration adds at most one node")
		require.Greater(t, metric.TreeSize, 10)
		require.True(t, metric.IsTreeReset)
		for _, edge := range policy {
			require.GreaterOrEqual(t, edge.Visits, 1)
		}
	})

	t.Run("best child by visits has been visited", func(t *testing.T) {
		root, _ := game.NewGame(4, 3)
		m := NewMCTS(WithIterations(50), WithSeed(9))

		_, err := m.Search(root)
		require.NoError(t, err)

		best := m.root.bestChildByVisits()
		require.NotNil(t, best)
		require.GreaterOrEqual(t, best.visits, 1)
	})

	t.Run("same seed gives the same tree", func(t *testing.T) {
		root, _ := game.NewGame(3, 3)
		p1, _, err := NewMCTS(WithIterations(300), WithSeed(11)).Simulate(root)
		require.NoError(t, err)
		p2, _, err := NewMCTS(WithIterations(300), WithSeed(11)).Simulate(root)
		require.NoError(t, err)
		require.Equal(t, p1, p2)
	})

	t.Run("parallel search spends the whole budget", func(t *testing.T) {
		root, _ := game.NewGame(3, 3)
		m := NewMCTS(WithIterations(500), WithGoroutines(8), WithSeed(2), WithMetrics())

		policy, metric, err := m.Simulate(root)

		require.NoError(t, err)
		require.Equal(t, 500, policy.TotalVisits(), "Virtual losses should all be reversed")
		require.Equal(t, 500, m.root.visits)
		require.Equal(t, 500, metric.Episodes)
		require.Equal(t, 8, metric.Goroutines)
	})

	t.Run("parallel search takes an immediate win", func(t *testing.T) {
		root := mustGrid(t, 3, "XX.", "OO.", "...")
		m := NewMCTS(WithIterations(2000), WithGoroutines(4), WithSeed(1))
		move, err := m.Search(root)
		require.NoError(t, err)
		require.Equal(t, game.Move{Row: 0, Col: 2}, move)
	})
}

func TestTreeReuse(t *testing.T) {
	t.Run("continues from a grandchild of the previous root", func(t *testing.T) {
		root, _ := game.NewGame(3, 3)
		m := NewMCTS(WithIterations(500), WithSeed(4), WithTreeReuse(), WithMetrics())

		_, metric, err := m.Simulate(root)
		require.NoError(t, err)
		require.True(t, metric.IsTreeReset)

		next, _ := root.Apply(game.Move{Row: 1, Col: 1})
		next, _ = next.Apply(game.Move{Row: 0, Col: 0})
		want := m.root.find(next.Hash(), maxReuseDepth)
		require.NotNil(t, want, "Both moves should have been expanded")
		previous := want.visits

		_, metric, err = m.Simulate(next)
		require.NoError(t, err)
		require.False(t, metric.IsTreeReset)
		require.Same(t, want, m.root)
		require.Nil(t, m.root.parent, "New root should be detached")
		require.Equal(t, previous+500, m.root.visits)
	})

	t.Run("starts over for an unrelated position", func(t *testing.T) {
		root, _ := game.NewGame(3, 3)
		m := NewMCTS(WithIterations(100), WithSeed(4), WithTreeReuse(), WithMetrics())
		_, _, err := m.Simulate(root)
		require.NoError(t, err)

		other := mustGrid(t, 3, "XO.", "XO.", "...")
		_, metric, err := m.Simulate(other)
		require.NoError(t, err)
		require.True(t, metric.IsTreeReset)
		require.Equal(t, 100, m.root.visits)
	})

	t.Run("disabled by default", func(t *testing.T) {
		root, _ := game.NewGame(3, 3)
		m := NewMCTS(WithIterations(100), WithSeed(4), WithMetrics())
		_, _, err := m.Simulate(root)
		require.NoError(t, err)
		first := m.root

		_, metric, err := m.Simulate(root)
		require.NoError(t, err)
		require.True(t, metric.IsTreeReset)
		require.NotSame(t, first, m.root)
	})
}
