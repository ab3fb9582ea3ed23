package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tictac/agent"
	"tictac/config"
	"tictac/engine"
	"tictac/experiments"
	"tictac/experiments/metrics"
	"tictac/game"
	"tictac/server"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `usage: tictac <command> [flags]

commands:
  play    play against the search from the terminal
  arena   run self-play games and store the records as CSV
  serve   serve move suggestions over HTTP
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]

	flags := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := flags.String("config", "", "Config file (yaml, json, toml or .env)")
	humanFirst := flags.Bool("human-first", true, "Human plays X in play mode")
	experiment := flags.String("experiment", "selfplay", "Arena experiment: selfplay or parallel")
	flags.Parse(os.Args[2:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	setupLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "play":
		err = play(ctx, cfg, os.Stdin, os.Stdout, *humanFirst)
	case "arena":
		err = arena(ctx, cfg, *experiment)
	case "serve":
		err = server.New(*cfg).ListenAndServe(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Msgf("%s failed", command)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func searchConfig(cfg *config.Config) metrics.AgentConfig {
	return metrics.AgentConfig{
		ID:          1,
		Kind:        experiments.KindMCTS,
		Goroutines:  cfg.Search.Goroutines,
		Iterations:  cfg.Search.Iterations,
		Exploration: cfg.Search.Exploration,
		Temperature: cfg.Arena.Temperature,
		TreeReuse:   cfg.Search.TreeReuse,
	}
}

func play(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, humanFirst bool) error {
	state, err := game.NewGame(cfg.Board.Size, cfg.Board.WinLength)
	if err != nil {
		return err
	}

	human := agent.NewHumanAgent(in, out)
	computer := experiments.CreateAgent(searchConfig(cfg), cfg.Search.Seed)
	agents := []agent.Agent{human, computer}
	if !humanFirst {
		agents = []agent.Agent{computer, human}
	}

	e := engine.LocalEngine(state, agents)
	e.Observe(func(u engine.Update) {
		fmt.Fprintf(out, "%s plays %s\n", u.Player, u.Move)
	})

	result, _, _, err := e.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n", e.State)
	switch result {
	case game.Draw:
		fmt.Fprintln(out, "It's a draw!")
	default:
		fmt.Fprintf(out, "%s wins!\n", result.Winner())
	}
	return nil
}

func arena(ctx context.Context, cfg *config.Config, experiment string) error {
	a := experiments.Arena{
		Size:      cfg.Board.Size,
		WinLength: cfg.Board.WinLength,
		Games:     cfg.Arena.Games,
		Workers:   cfg.Arena.Workers,
		Seed:      cfg.Search.Seed,
		OutputDir: cfg.Arena.OutputDir,
		Name:      cfg.Arena.Name,
	}

	first := searchConfig(cfg)
	var matchUps []experiments.MatchUp
	switch experiment {
	case "selfplay":
		if cfg.Arena.Opponent == experiments.KindMCTS {
			matchUps = experiments.SelfPlay(first)
		} else {
			second := first
			second.ID = 2
			second.Kind = cfg.Arena.Opponent
			matchUps = []experiments.MatchUp{{First: first, Second: second}}
		}
	case "parallel":
		a.Name = "parallelization"
		matchUps = experiments.Parallelization(first, []int{2, 4, 8})
	default:
		return fmt.Errorf("unknown experiment %q", experiment)
	}

	summary, err := a.Run(ctx, matchUps)
	if err != nil {
		return err
	}
	fmt.Printf("games: %d, X wins: %d, O wins: %d, draws: %d\n", summary.Games, summary.XWins, summary.OWins, summary.Draws)
	for id, wins := range summary.Wins {
		fmt.Printf("agent %d wins: %d\n", id, wins)
	}
	if summary.Dir != "" {
		fmt.Printf("records (run %s): %s\n", summary.RunID, summary.Dir)
	}
	return nil
}
