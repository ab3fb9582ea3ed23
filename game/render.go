package game

import (
	"fmt"
	"strings"
)

// Rows renders each board row as a string of X, O and '.'.
func (g *Grid) Rows() []string {
	rows := make([]string, g.size)
	var sb strings.Builder
	for row := 0; row < g.size; row++ {
		sb.Reset()
		for col := 0; col < g.size; col++ {
			sb.WriteString(g.At(row, col).String())
		}
		rows[row] = sb.String()
	}
	return rows
}

func (g *Grid) String() string {
	return strings.Join(g.Rows(), "\n")
}

// Parse builds a grid from rendered rows. The side to move is derived from
// the mark counts: X moves first, so X has either as many marks as O or one more.
// A winning line must belong to the last mover.
func Parse(winLength int, rows ...string) (*Grid, error) {
	size := len(rows)
	if err := validateDimensions(size, winLength); err != nil {
		return nil, err
	}

	g := &Grid{
		size:      size,
		winLength: winLength,
		cells:     make([]Player, 0, size*size),
	}
	counts := map[Player]int{}
	for i, row := range rows {
		if len(row) != size {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidBoard, i, len(row), size)
		}
		for j, ch := range row {
			p, ok := parseCell(ch)
			if !ok {
				return nil, fmt.Errorf("%w: unexpected %q at (%d, %d)", ErrInvalidBoard, ch, i, j)
			}
			counts[p]++
			g.cells = append(g.cells, p)
		}
	}

	switch counts[PlayerA] - counts[PlayerB] {
	case 0:
		g.turn = PlayerA
	case 1:
		g.turn = PlayerB
	default:
		return nil, fmt.Errorf("%w: %d X marks against %d O marks", ErrInvalidBoard, counts[PlayerA], counts[PlayerB])
	}

	xWins, oWins := g.hasLine(PlayerA), g.hasLine(PlayerB)
	switch {
	case xWins && oWins:
		return nil, fmt.Errorf("%w: both players have a winning line", ErrInvalidBoard)
	case xWins && g.turn != PlayerB:
		return nil, fmt.Errorf("%w: X has a line but O moved after it", ErrInvalidBoard)
	case oWins && g.turn != PlayerA:
		return nil, fmt.Errorf("%w: O has a line but X moved after it", ErrInvalidBoard)
	}
	g.result = g.evaluate()
	return g, nil
}

func parseCell(ch rune) (Player, bool) {
	switch ch {
	case 'X', 'x':
		return PlayerA, true
	case 'O', 'o':
		return PlayerB, true
	case '.', '-', '_', ' ':
		return Empty, true
	default:
		return Empty, false
	}
}
