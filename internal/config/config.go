// Package config resolves server settings. A flag wins over the matching
// environment variable, which wins over a .env file, which wins over the
// built-in default.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite3"
	StorePostgres = "postgres"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	TCPAddr        string
	HTTPAddr       string
	FrontendURL    string
	StartingChips  int
	DealerDelay    time.Duration
	NextRoundDelay time.Duration
	StoreDriver    string
	StoreDSN       string
	LogLevel       zerolog.Level
}

// Load reads envFiles (".env" when none are given; a missing file is not an
// error) and then parses args.
func Load(args []string, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	startingChips, err := envInt("STARTING_CHIPS", 100)
	if err != nil {
		return nil, err
	}
	dealerDelay, err := envDuration("DEALER_DELAY", time.Second)
	if err != nil {
		return nil, err
	}
	nextRoundDelay, err := envDuration("NEXT_ROUND_DELAY", 3*time.Second)
	if err != nil {
		return nil, err
	}

	var (
		cfg      Config
		logLevel string
	)
	fset := flag.NewFlagSet("blackjack-duel", flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	fset.StringVar(&cfg.TCPAddr, "tcp", envString("TCP_ADDR", ":5555"), "Game line-protocol address")
	fset.StringVar(&cfg.HTTPAddr, "http", envString("HTTP_ADDR", ":8080"), "HTTP status and websocket address")
	fset.StringVar(&cfg.FrontendURL, "frontend", envString("FRONTEND_URL", "http://localhost:5173"), "Frontend URL for CORS")
	fset.IntVar(&cfg.StartingChips, "chips", startingChips, "Starting chip balance per seat")
	fset.DurationVar(&cfg.DealerDelay, "dealer-delay", dealerDelay, "Pause between dealer draws")
	fset.DurationVar(&cfg.NextRoundDelay, "next-round-delay", nextRoundDelay, "Pause between settlement and the next betting window")
	fset.StringVar(&cfg.StoreDriver, "store", envString("STORE_DRIVER", StoreMemory), "Round history store: memory, sqlite3 or postgres")
	fset.StringVar(&cfg.StoreDSN, "dsn", envString("STORE_DSN", ""), "Database path or connection string")
	fset.StringVar(&logLevel, "log-level", envString("LOG_LEVEL", "info"), "Log level")

	if err := fset.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	cfg.LogLevel, err = zerolog.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: log level %q", ErrInvalid, logLevel)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.StartingChips <= 0 {
		return fmt.Errorf("%w: starting chips must be positive", ErrInvalid)
	}
	if c.DealerDelay < 0 || c.NextRoundDelay < 0 {
		return fmt.Errorf("%w: delays must not be negative", ErrInvalid)
	}

	switch c.StoreDriver {
	case StoreMemory:
	case StoreSQLite:
		if c.StoreDSN == "" {
			c.StoreDSN = "./data/blackjack.db"
		}
	case StorePostgres:
		if c.StoreDSN == "" {
			return fmt.Errorf("%w: postgres needs a DSN", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalid, c.StoreDriver)
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalid, key, v)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalid, key, v)
	}
	return d, nil
}
