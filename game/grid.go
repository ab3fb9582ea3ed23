package game

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
)

const MinSize = 3

// Grid is a size x size board on which a player wins by placing winLength
// marks in a row, column or diagonal.
type Grid struct {
	size      int
	winLength int
	cells     []Player // Row-major
	turn      Player
	result    Result
}

var directions = [4][2]int{
	{0, 1},  // Row
	{1, 0},  // Column
	{1, 1},  // Diagonal
	{1, -1}, // Anti-diagonal
}

// NewGame returns an empty board with PlayerA to move.
func NewGame(size, winLength int) (*Grid, error) {
	if err := validateDimensions(size, winLength); err != nil {
		return nil, err
	}
	return &Grid{
		size:      size,
		winLength: winLength,
		cells:     make([]Player, size*size),
		turn:      PlayerA,
		result:    Ongoing,
	}, nil
}

func validateDimensions(size, winLength int) error {
	if size < MinSize {
		return fmt.Errorf("%w: size %d is below %d", ErrInvalidDimensions, size, MinSize)
	}
	if winLength < MinSize || winLength > size {
		return fmt.Errorf("%w: win length %d must be within [%d, %d]", ErrInvalidDimensions, winLength, MinSize, size)
	}
	return nil
}

func (g *Grid) Size() int      { return g.size }
func (g *Grid) WinLength() int { return g.winLength }
func (g *Grid) Player() Player { return g.turn }
func (g *Grid) Winner() Result { return g.result }

func (g *Grid) IsTerminal() bool {
	return g.result != Ongoing
}

// At returns the mark on a cell, or Empty when the cell is off the board.
func (g *Grid) At(row, col int) Player {
	if !g.inBounds(row, col) {
		return Empty
	}
	return g.cells[row*g.size+col]
}

func (g *Grid) inBounds(row, col int) bool {
	return row >= 0 && row < g.size && col >= 0 && col < g.size
}

// LegalMoves returns the empty cells in row-major order. A won board still
// lists its empty cells; Apply rejects them once the game is over.
func (g *Grid) LegalMoves() []Move {
	moves := make([]Move, 0, len(g.cells))
	for i, cell := range g.cells {
		if cell == Empty {
			moves = append(moves, Move{Row: i / g.size, Col: i % g.size})
		}
	}
	return moves
}

// Apply returns the board after the mover marks the given cell. The receiver is left untouched.
func (g *Grid) Apply(move Move) (*Grid, error) {
	if g.IsTerminal() {
		return nil, fmt.Errorf("%w: game is over (%s)", ErrIllegalMove, g.result)
	}
	if !g.inBounds(move.Row, move.Col) {
		return nil, fmt.Errorf("%w: %s is off a %dx%d board", ErrIllegalMove, move, g.size, g.size)
	}
	idx := move.Row*g.size + move.Col
	if g.cells[idx] != Empty {
		return nil, fmt.Errorf("%w: %s is occupied by %s", ErrIllegalMove, move, g.cells[idx])
	}

	cells := make([]Player, len(g.cells))
	copy(cells, g.cells)
	cells[idx] = g.turn

	next := &Grid{
		size:      g.size,
		winLength: g.winLength,
		cells:     cells,
		turn:      g.turn.Opponent(),
	}
	next.result = next.evaluate()
	return next, nil
}

func (g *Grid) Play(move Move) (State, error) {
	next, err := g.Apply(move)
	if err != nil {
		return nil, err
	}
	return next, nil
}

func (g *Grid) evaluate() Result {
	for _, p := range []Player{PlayerA, PlayerB} {
		if g.hasLine(p) {
			return winFor(p)
		}
	}
	for _, cell := range g.cells {
		if cell == Empty {
			return Ongoing
		}
	}
	return Draw
}

// hasLine reports whether p holds winLength contiguous cells along any
// row, column, diagonal or anti-diagonal. Runs are measured from their first
// cell only, so every cell is visited once per direction.
func (g *Grid) hasLine(p Player) bool {
	for row := 0; row < g.size; row++ {
		for col := 0; col < g.size; col++ {
			if g.cells[row*g.size+col] != p {
				continue
			}
			for _, d := range directions {
				if g.At(row-d[0], col-d[1]) == p {
					continue
				}
				run := 1
				for g.At(row+run*d[0], col+run*d[1]) == p {
					run++
				}
				if run >= g.winLength {
					return true
				}
			}
		}
	}
	return false
}

// Hash identifies the position including the side to move.
func (g *Grid) Hash() StateHash {
	hasher := fnv.New64a()

	binary.Write(hasher, binary.LittleEndian, int64(g.size))
	binary.Write(hasher, binary.LittleEndian, int64(g.winLength))
	binary.Write(hasher, binary.LittleEndian, int64(g.turn))

	for _, cell := range g.cells {
		binary.Write(hasher, binary.LittleEndian, int8(cell))
	}

	return StateHash(hasher.Sum64())
}

// Equal reports whether two grids hold the same position with the same side to move.
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.size != other.size || g.winLength != other.winLength || g.turn != other.turn {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}
