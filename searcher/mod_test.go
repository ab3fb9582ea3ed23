package searcher

import (
	"slices"
	"testing"

	"tictac/game"

	"github.com/stretchr/testify/require"
)

// mockState is a game without rules: it offers the same moves until told otherwise.
type mockState struct {
	player game.Player
	moves  []game.Move
	played []game.Move
	result game.Result
}

func (m mockState) Player() game.Player {
	return m.player
}

func (m mockState) LegalMoves() []game.Move {
	return m.moves
}

func (m mockState) Play(move game.Move) (game.State, error) {
	return mockState{
		player: m.player.Opponent(),
		played: append(slices.Clone(m.played), move),
	}, nil
}

func (m mockState) Hash() game.StateHash {
	return game.StateHash(len(m.played))
}

func (m mockState) Winner() game.Result {
	return m.result
}

func mustGrid(t *testing.T, winLength int, rows ...string) *game.Grid {
	t.Helper()
	g, err := game.Parse(winLength, rows...)
	require.NoError(t, err)
	return g
}
