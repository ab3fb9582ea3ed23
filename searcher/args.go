package searcher

import "math"

// Hyperparameters for MCTS

const DefaultExploration = math.Sqrt2 // c in the UCT formula

// Use rewards to estimate the chance of winning
const (
	Win  = 1.0
	Draw = 0.5
	Loss = 0.0
)

// Tree reuse looks this many plies below the previous root for the new root.
const maxReuseDepth = 2
