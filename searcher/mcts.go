package searcher

import (
	"fmt"
	"math"
	"time"

	"tictac/experiments/metrics"
	"tictac/game"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

type Option func(mcts *MCTS)

// MCTS runs a UCT tree search. It keeps the last tree for optional reuse, so
// a single MCTS must not run concurrent searches.
type MCTS struct {
	goroutines  int
	iterations  int
	exploration float64
	seed        uint64
	searches    uint64
	reuse       bool
	collect     bool
	root        *node
	metrics     metrics.Collector
}

func WithIterations(iterations int) Option {
	return func(m *MCTS) {
		if iterations > 0 {
			m.iterations = iterations
		}
	}
}

func WithExplorationConstant(c float64) Option {
	return func(m *MCTS) {
		if c > 0 && !math.IsInf(c, 1) {
			m.exploration = c
		}
	}
}

func WithGoroutines(goroutines int) Option {
	return func(m *MCTS) {
		if goroutines > 0 {
			m.goroutines = goroutines
		}
	}
}

// WithSeed fixes the random source. Seed 0 keeps the time-based default.
func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		if seed != 0 {
			m.seed = seed
		}
	}
}

func WithTreeReuse() Option {
	return func(m *MCTS) {
		m.reuse = true
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.collect = true
		m.metrics = metrics.NewCollector()
	}
}

func NewMCTS(options ...Option) *MCTS {
	m := &MCTS{ // Default values
		goroutines:  1,
		exploration: DefaultExploration,
		seed:        uint64(time.Now().UnixNano()),
		metrics:     metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.iterations <= 0 {
		panic("Must specify search iterations")
	}
	return m
}

// Search returns a move for a single search of iterations episodes from root.
func Search(root game.State, iterations int, c float64) (game.Move, error) {
	if iterations <= 0 {
		return game.Move{}, fmt.Errorf("%w: %d iterations", ErrInvalidBudget, iterations)
	}
	if !(c > 0) || math.IsInf(c, 1) {
		return game.Move{}, fmt.Errorf("%w: exploration constant %v", ErrInvalidBudget, c)
	}
	return NewMCTS(WithIterations(iterations), WithExplorationConstant(c)).Search(root)
}

// Search returns the most visited root child after a full search.
func (m *MCTS) Search(state game.State) (game.Move, error) {
	if _, _, err := m.Simulate(state); err != nil {
		return game.Move{}, err
	}
	best := m.root.bestChildByVisits()
	if best == nil {
		return game.Move{}, ErrNoMoveFound
	}
	return best.move, nil
}

// Simulate builds the tree for state and returns the root children statistics.
func (m *MCTS) Simulate(state game.State) (Policy, metrics.SearchMetric, error) {
	if game.IsTerminal(state) {
		return nil, metrics.SearchMetric{}, fmt.Errorf("%w: %s", ErrTerminalRoot, state.Winner())
	}

	m.metrics.Start(m.goroutines, m.iterations)
	m.findRoot(state)
	if err := m.iterate(); err != nil {
		return nil, metrics.SearchMetric{}, err
	}
	if m.collect {
		m.metrics.SetTreeSize(m.root.size())
	}
	metric := m.metrics.Complete()

	policy := m.root.policy()
	if len(policy) == 0 {
		return nil, metric, ErrNoMoveFound
	}

	log.Debug().Msgf("searched %d iterations over %d root moves with %d goroutines", m.iterations, len(policy), m.goroutines)
	return policy, metric, nil
}

func (m *MCTS) iterate() error {
	task := make(chan any, m.iterations)
	for i := 0; i < m.iterations; i++ {
		task <- nil
	}
	close(task)

	virtualLoss := m.goroutines > 1
	base := m.seed + m.searches*uint64(m.goroutines)
	m.searches++

	var g errgroup.Group
	for i := 0; i < m.goroutines; i++ {
		rng := rand.New(rand.NewSource(base + uint64(i)))
		g.Go(func() error {
			for range task {
				if err := m.simulate(rng, virtualLoss); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func (m *MCTS) findRoot(state game.State) {
	if m.reuse && m.root != nil {
		if root := m.root.find(state.Hash(), maxReuseDepth); root != nil {
			root.parent = nil
			m.root = root
			m.metrics.SetTreeReset(false)
			return
		}
		log.Debug().Msgf("no reusable node for state hash %d, starting a new tree", state.Hash())
	}
	m.root = newNode(nil, game.Move{}, state)
	m.metrics.SetTreeReset(true)
}

func (m *MCTS) simulate(rng *rand.Rand, virtualLoss bool) error {
	leaf, depth, err := selectThenExpand(m.root, m.exploration, rng, virtualLoss)
	if err != nil {
		return err
	}
	result, moves, err := rollout(leaf.state, rng)
	if err != nil {
		return err
	}
	backup(leaf, result, virtualLoss)
	m.metrics.AddEpisode(depth, moves)
	return nil
}

func selectThenExpand(root *node, c float64, rng *rand.Rand, virtualLoss bool) (*node, int, error) {
	if virtualLoss {
		root.applyLoss()
	}
	depth := 0
	parent := root
	child, selected, err := parent.selectOrExpand(c, rng, virtualLoss)
	for err == nil && child != parent {
		depth++
		if !selected {
			break
		}
		parent = child
		child, selected, err = parent.selectOrExpand(c, rng, virtualLoss)
	}
	return child, depth, err
}

// rollout plays uniformly random moves until the game ends. The visited
// states are not added to the tree.
func rollout(state game.State, rng *rand.Rand) (game.Result, int, error) {
	moves := 0
	for !game.IsTerminal(state) {
		legal := state.LegalMoves()
		if len(legal) == 0 {
			return game.Draw, moves, nil
		}
		next, err := state.Play(legal[rng.Intn(len(legal))]) // Random rollout policy
		if err != nil {
			return game.Ongoing, moves, err
		}
		state = next
		moves++
	}
	return state.Winner(), moves, nil
}

func backup(leaf *node, result game.Result, virtualLoss bool) {
	n := leaf
	for n != nil {
		n = n.backup(result, virtualLoss)
	}
}
