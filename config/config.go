package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"tictac/game"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid config")

const EnvPrefix = "TICTAC"

type Config struct {
	Board  BoardConfig  `mapstructure:"board"`
	Search SearchConfig `mapstructure:"search"`
	Arena  ArenaConfig  `mapstructure:"arena"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
}

type BoardConfig struct {
	Size      int `mapstructure:"size"`
	WinLength int `mapstructure:"win_length"`
}

type SearchConfig struct {
	Iterations  int     `mapstructure:"iterations"`
	Exploration float64 `mapstructure:"exploration"`
	Goroutines  int     `mapstructure:"goroutines"`
	Seed        uint64  `mapstructure:"seed"` // 0 seeds from the clock
	TreeReuse   bool    `mapstructure:"tree_reuse"`
}

type ArenaConfig struct {
	Games       int     `mapstructure:"games"`
	Workers     int     `mapstructure:"workers"`
	OutputDir   string  `mapstructure:"output_dir"`
	Name        string  `mapstructure:"name"`
	Opponent    string  `mapstructure:"opponent"` // mcts, training or random
	Temperature float64 `mapstructure:"temperature"`
}

type ServerConfig struct {
	Addr          string        `mapstructure:"addr"`
	MaxIterations int           `mapstructure:"max_iterations"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("board.size", 3)
	v.SetDefault("board.win_length", 3)

	v.SetDefault("search.iterations", 1000)
	v.SetDefault("search.exploration", math.Sqrt2)
	v.SetDefault("search.goroutines", 1)
	v.SetDefault("search.seed", 0)
	v.SetDefault("search.tree_reuse", false)

	v.SetDefault("arena.games", 10)
	v.SetDefault("arena.workers", 4)
	v.SetDefault("arena.output_dir", "experiments")
	v.SetDefault("arena.name", "selfplay")
	v.SetDefault("arena.opponent", "mcts")
	v.SetDefault("arena.temperature", 1.0)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_iterations", 100000)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)
}

// Load reads defaults, then the optional config file at path, then TICTAC_*
// environment variables (e.g. TICTAC_SEARCH_ITERATIONS).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := game.NewGame(c.Board.Size, c.Board.WinLength); err != nil {
		return fmt.Errorf("%w: board: %w", ErrInvalidConfig, err)
	}
	if c.Search.Iterations <= 0 {
		return fmt.Errorf("%w: search.iterations must be positive, got %d", ErrInvalidConfig, c.Search.Iterations)
	}
	if !(c.Search.Exploration > 0) || math.IsInf(c.Search.Exploration, 1) {
		return fmt.Errorf("%w: search.exploration must be positive, got %v", ErrInvalidConfig, c.Search.Exploration)
	}
	if c.Search.Goroutines <= 0 {
		return fmt.Errorf("%w: search.goroutines must be positive, got %d", ErrInvalidConfig, c.Search.Goroutines)
	}
	if c.Arena.Games <= 0 || c.Arena.Workers <= 0 {
		return fmt.Errorf("%w: arena.games and arena.workers must be positive", ErrInvalidConfig)
	}
	switch c.Arena.Opponent {
	case "mcts", "training", "random":
	default:
		return fmt.Errorf("%w: unknown arena.opponent %q", ErrInvalidConfig, c.Arena.Opponent)
	}
	if c.Server.MaxIterations < c.Search.Iterations {
		return fmt.Errorf("%w: server.max_iterations %d is below search.iterations %d", ErrInvalidConfig, c.Server.MaxIterations, c.Search.Iterations)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}
	return nil
}
