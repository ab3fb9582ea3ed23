package searcher

import (
	"fmt"
	"slices"
	"sync"

	"tictac/game"

	"golang.org/x/exp/rand"
)

// node is a position in the search tree. Rewards are accumulated from the
// perspective of player, the side that moved into the node.
type node struct {
	mu       sync.Mutex
	parent   *node
	move     game.Move
	state    game.State
	hash     game.StateHash
	player   game.Player
	untried  []game.Move
	children []*node
	rewards  float64
	visits   int
}

func newNode(parent *node, move game.Move, state game.State) *node {
	var moves []game.Move
	if !game.IsTerminal(state) {
		moves = state.LegalMoves()
	}
	return &node{
		parent:   parent,
		move:     move,
		state:    state,
		hash:     state.Hash(),
		player:   state.Player().Opponent(),
		untried:  moves,
		children: make([]*node, 0, len(moves)),
	}
}

func (n *node) isTerminal() bool {
	return game.IsTerminal(n.state)
}

func (n *node) isFullyExpanded() bool {
	return len(n.untried) == 0
}

// expand moves an untried move into a new child. The caller must hold the lock.
func (n *node) expand(move game.Move) (*node, error) {
	i := slices.Index(n.untried, move)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s is not an untried move", ErrInvalidExpansion, move)
	}

	state, err := n.state.Play(move)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExpansion, err)
	}

	n.untried = slices.Delete(n.untried, i, i+1)
	child := newNode(n, move, state)
	n.children = append(n.children, child)
	return child, nil
}

// bestChildByUCT returns the first unvisited child if there is one, otherwise
// the child with the highest UCT score. Ties go to the earliest child.
// The caller must hold the lock.
func (n *node) bestChildByUCT(c float64) *node {
	if len(n.children) == 0 {
		return nil
	}

	stats := make([][2]float64, len(n.children))
	for i, child := range n.children {
		w, v := child.stats()
		if v == 0 {
			return child
		}
		stats[i] = [2]float64{w, float64(v)}
	}

	policy := newUCT(c, float64(n.visits))
	var best *node
	maxScore := 0.0
	for i, child := range n.children {
		score := policy.evaluate(stats[i][0], stats[i][1])
		if best == nil || score > maxScore {
			best = child
			maxScore = score
		}
	}
	return best
}

// bestChildByVisits returns the most visited child, ties to the earliest, or nil without children.
func (n *node) bestChildByVisits() *node {
	var best *node
	maxVisits := -1
	for _, child := range n.children {
		if _, v := child.stats(); v > maxVisits {
			best = child
			maxVisits = v
		}
	}
	return best
}

func (n *node) stats() (float64, int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.rewards, n.visits
}

// selectOrExpand advances one step down the tree. It returns the child to
// continue from and whether the descent should go on. A terminal node
// returns itself.
func (n *node) selectOrExpand(c float64, rng *rand.Rand, virtualLoss bool) (*node, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.isTerminal() {
		return n, false, nil
	}

	if !n.isFullyExpanded() {
		child, err := n.expand(n.untried[rng.Intn(len(n.untried))])
		if err != nil {
			return nil, false, err
		}
		if virtualLoss {
			child.applyLoss()
		}
		return child, false, nil
	}

	child := n.bestChildByUCT(c)
	if child == nil {
		// Non-terminal state without legal moves
		return n, false, nil
	}
	if virtualLoss {
		child.applyLoss()
	}
	return child, true, nil
}

// applyLoss records a temporary visit without reward so that concurrent
// descents spread across siblings.
func (n *node) applyLoss() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.rewards += Loss
	n.visits++
}

func (n *node) reverseLoss() {
	n.rewards -= Loss
	n.visits--
}

// backup records result on n and returns its parent.
func (n *node) backup(result game.Result, virtualLoss bool) *node {
	n.mu.Lock()
	defer n.mu.Unlock()

	if virtualLoss {
		n.reverseLoss()
	}
	n.rewards += reward(result, n.player)
	n.visits++

	return n.parent
}

func reward(result game.Result, player game.Player) float64 {
	switch {
	case result == game.Draw:
		return Draw
	case result.Winner() == player:
		return Win
	default:
		return Loss
	}
}

// find returns the node at most depth plies below n holding the given position.
func (n *node) find(hash game.StateHash, depth int) *node {
	if n.hash == hash {
		return n
	}
	if depth == 0 {
		return nil
	}
	n.mu.Lock()
	children := slices.Clone(n.children)
	n.mu.Unlock()

	for _, child := range children {
		if found := child.find(hash, depth-1); found != nil {
			return found
		}
	}
	return nil
}

func (n *node) policy() Policy {
	n.mu.Lock()
	defer n.mu.Unlock()

	policy := make(Policy, 0, len(n.children))
	for _, child := range n.children {
		w, v := child.stats()
		policy = append(policy, Edge{Move: child.move, Visits: v, Rewards: w})
	}
	return policy
}

// size counts the nodes in the subtree rooted at n.
func (n *node) size() int {
	n.mu.Lock()
	children := slices.Clone(n.children)
	n.mu.Unlock()

	total := 1
	for _, child := range children {
		total += child.size()
	}
	return total
}
