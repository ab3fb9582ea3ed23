package experiments

import (
	"context"
	"fmt"
	"time"

	"tictac/agent"
	"tictac/engine"
	"tictac/experiments/metrics"
	"tictac/game"
	"tictac/searcher"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	KindMCTS     = "mcts"
	KindTraining = "training"
	KindRandom   = "random"
)

// MatchUp pits two agent configurations against each other. Seats
// alternate between games so both play X equally often.
type MatchUp struct {
	First  metrics.AgentConfig
	Second metrics.AgentConfig
}

type Arena struct {
	Size      int
	WinLength int
	Games     int // Per match up
	Workers   int
	Seed      uint64 // 0 seeds from the clock
	OutputDir string // Empty skips writing records
	Name      string
}

type Summary struct {
	Seed  uint64 // Base seed the agents were derived from
	RunID string
	Dir   string
	Games int
	XWins int
	OWins int
	Draws int
	Wins  map[int]int // Per AgentConfig.ID
}

type gameResult struct {
	record metrics.GameRecord
	moves  []metrics.MoveMetric
	result game.Result
}

// SelfPlay returns a match up of an agent against itself.
func SelfPlay(config metrics.AgentConfig) []MatchUp {
	return []MatchUp{{First: config, Second: config}}
}

// Parallelization pairs a sequential baseline against the same agent with more goroutines.
func Parallelization(baseline metrics.AgentConfig, goroutines []int) []MatchUp {
	baseline.Goroutines = 1
	matchUps := []MatchUp{}
	for i, g := range goroutines {
		config := baseline
		config.ID = baseline.ID + i + 1
		config.Goroutines = g
		matchUps = append(matchUps, MatchUp{First: baseline, Second: config})
	}
	return matchUps
}

// Run plays every match up and tallies the results by mark and by agent.
func (a Arena) Run(ctx context.Context, matchUps []MatchUp) (Summary, error) {
	if a.Games <= 0 {
		return Summary{}, fmt.Errorf("games per match up must be positive, got %d", a.Games)
	}
	for _, matchUp := range matchUps {
		for _, config := range []metrics.AgentConfig{matchUp.First, matchUp.Second} {
			if config.Kind != KindRandom && config.Iterations <= 0 {
				return Summary{}, fmt.Errorf("agent %d: %w: %d iterations", config.ID, searcher.ErrInvalidBudget, config.Iterations)
			}
		}
	}

	if a.Seed == 0 {
		a.Seed = uint64(time.Now().UnixNano())
	}

	total := a.Games * len(matchUps)
	results := make([]gameResult, total)

	log.Info().Msgf("starting %s experiment: %d match ups, %d games each, seed %d...", a.Name, len(matchUps), a.Games, a.Seed)

	g, ctx := errgroup.WithContext(ctx)
	if a.Workers > 0 {
		g.SetLimit(a.Workers)
	}
	for mi, matchUp := range matchUps {
		for i := 0; i < a.Games; i++ {
			id := mi*a.Games + i + 1
			x, o := matchUp.First, matchUp.Second
			if i%2 == 1 {
				x, o = o, x
			}
			g.Go(func() error {
				res, err := a.runGame(ctx, id, x, o)
				if err != nil {
					return fmt.Errorf("game %d: %w", id, err)
				}
				results[id-1] = res
				log.Info().Msgf("completed match up %d of %d game %d with result: %s", mi+1, len(matchUps), i+1, res.result)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	summary := tally(results)
	summary.Seed = a.Seed
	log.Info().Msgf("completed %s experiment: X wins %d, O wins %d, draws %d", a.Name, summary.XWins, summary.OWins, summary.Draws)

	if a.OutputDir == "" {
		return summary, nil
	}
	writer, err := metrics.NewWriter(a.OutputDir, a.Name)
	if err != nil {
		return summary, err
	}
	summary.RunID = writer.RunID.String()
	summary.Dir = writer.Dir()
	if err := store(writer, matchUps, results); err != nil {
		return summary, err
	}
	log.Info().Msgf("stored experiment records in %s", writer.Dir())
	return summary, nil
}

// runGame executes a single game between two agents
func (a Arena) runGame(ctx context.Context, id int, x, o metrics.AgentConfig) (gameResult, error) {
	state, err := game.NewGame(a.Size, a.WinLength)
	if err != nil {
		return gameResult{}, err
	}
	seed := a.Seed + uint64(id)*2
	agents := []agent.Agent{
		CreateAgent(x, seed),
		CreateAgent(o, seed+1),
	}

	result, gameMetric, moveMetrics, err := engine.LocalEngine(state, agents).Run(ctx)
	if err != nil {
		return gameResult{}, err
	}
	return gameResult{
		record: metrics.GameRecord{
			ID:         id,
			Agent1:     x.ID,
			Agent2:     o.ID,
			GameMetric: gameMetric,
		},
		moves:  moveMetrics,
		result: result,
	}, nil
}

func tally(results []gameResult) Summary {
	summary := Summary{Games: len(results), Wins: map[int]int{}}
	for _, res := range results {
		switch res.result {
		case game.PlayerAWins:
			summary.XWins++
			summary.Wins[res.record.Agent1]++
		case game.PlayerBWins:
			summary.OWins++
			summary.Wins[res.record.Agent2]++
		case game.Draw:
			summary.Draws++
		}
	}
	return summary
}

func store(writer *metrics.Writer, matchUps []MatchUp, results []gameResult) error {
	seen := map[int]bool{}
	configs := []metrics.AgentConfig{}
	for _, matchUp := range matchUps {
		for _, config := range []metrics.AgentConfig{matchUp.First, matchUp.Second} {
			if !seen[config.ID] {
				seen[config.ID] = true
				configs = append(configs, config)
			}
		}
	}

	gameRecords := make([]metrics.GameRecord, 0, len(results))
	moveRecords := []metrics.MoveRecord{}
	for _, res := range results {
		gameRecords = append(gameRecords, res.record)
		for _, mm := range res.moves {
			moveRecords = append(moveRecords, metrics.MoveRecord{
				Game:       res.record.ID,
				MoveMetric: mm,
			})
		}
	}

	if err := writer.WriteAgentConfigs(configs); err != nil {
		return fmt.Errorf("failed to store agent configs: %w", err)
	}
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return fmt.Errorf("failed to write game records: %w", err)
	}
	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return fmt.Errorf("failed to write move records: %w", err)
	}
	return nil
}

// CreateAgent builds a fresh agent, with its own search tree, for one game.
func CreateAgent(config metrics.AgentConfig, seed uint64) agent.Agent {
	switch config.Kind {
	case KindRandom:
		return agent.NewRandomAgent(seed)
	case KindTraining:
		return agent.NewTrainingAgent(createMCTS(config, seed), config.Temperature, seed)
	default:
		return agent.NewEvaluationAgent(createMCTS(config, seed), seed)
	}
}

func createMCTS(config metrics.AgentConfig, seed uint64) *searcher.MCTS {
	options := []searcher.Option{
		searcher.WithIterations(config.Iterations),
		searcher.WithSeed(seed),
		searcher.WithMetrics(),
	}

	if config.Goroutines > 0 {
		options = append(options, searcher.WithGoroutines(config.Goroutines))
	}
	if config.Exploration > 0 {
		options = append(options, searcher.WithExplorationConstant(config.Exploration))
	}
	if config.TreeReuse {
		options = append(options, searcher.WithTreeReuse())
	}

	return searcher.NewMCTS(options...)
}
