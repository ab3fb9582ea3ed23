package agent

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"tictac/experiments/metrics"
	"tictac/game"
)

type humanAgent struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewHumanAgent returns an agent that prompts on out and reads "row col" lines from in.
func NewHumanAgent(in io.Reader, out io.Writer) Agent {
	return &humanAgent{in: bufio.NewScanner(in), out: out}
}

func (a *humanAgent) FindMove(state *game.Grid) (game.Move, metrics.SearchMetric, error) {
	legal := state.LegalMoves()
	for {
		fmt.Fprintf(a.out, "%s\n%s to move, enter row and column (0-%d): ", state, state.Player(), state.Size()-1)
		if !a.in.Scan() {
			if err := a.in.Err(); err != nil {
				return game.Move{}, metrics.SearchMetric{}, err
			}
			return game.Move{}, metrics.SearchMetric{}, ErrNoInput
		}

		move, err := parseMove(a.in.Text())
		if err != nil {
			fmt.Fprintf(a.out, "%v\n", err)
			continue
		}
		if !slices.Contains(legal, move) {
			fmt.Fprintf(a.out, "%s is not a legal move\n", move)
			continue
		}
		return move, metrics.SearchMetric{}, nil
	}
}

// parseMove accepts "row col" or "row,col".
func parseMove(line string) (game.Move, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	if len(fields) != 2 {
		return game.Move{}, fmt.Errorf("expected two numbers, got %q", strings.TrimSpace(line))
	}
	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return game.Move{}, fmt.Errorf("invalid row %q", fields[0])
	}
	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return game.Move{}, fmt.Errorf("invalid column %q", fields[1])
	}
	return game.Move{Row: row, Col: col}, nil
}
