package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"TCP_ADDR", "HTTP_ADDR", "FRONTEND_URL", "STARTING_CHIPS", "DEALER_DELAY",
	"NEXT_ROUND_DELAY", "STORE_DRIVER", "STORE_DSN", "LOG_LEVEL",
}

// clearEnv unsets every config key for the duration of the test so that
// values from an env file can apply.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		prev, had := os.LookupEnv(k)
		require.NoError(t, os.Unsetenv(k))
		k := k
		t.Cleanup(func() {
			if had {
				os.Setenv(k, prev)
			} else {
				os.Unsetenv(k)
			}
		})
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "none.env")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil, missingEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, ":5555", cfg.TCPAddr)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 100, cfg.StartingChips)
	assert.Equal(t, time.Second, cfg.DealerDelay)
	assert.Equal(t, 3*time.Second, cfg.NextRoundDelay)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"STARTING_CHIPS=250\nNEXT_ROUND_DELAY=5s\nTCP_ADDR=:7000\nLOG_LEVEL=debug\n"), 0o600))

	t.Setenv("TCP_ADDR", ":6000")

	cfg, err := Load([]string{"-next-round-delay=2s"}, envFile)
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.StartingChips, "env file applies when nothing else is set")
	assert.Equal(t, ":6000", cfg.TCPAddr, "environment beats env file")
	assert.Equal(t, 2*time.Second, cfg.NextRoundDelay, "flag beats env file")
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
}

func TestLoad_SQLiteDefaultPath(t *testing.T) {
	clearEnv(t)

	cfg, err := Load([]string{"-store", "sqlite3"}, missingEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, "./data/blackjack.db", cfg.StoreDSN)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{name: "bad chips env", env: map[string]string{"STARTING_CHIPS": "lots"}},
		{name: "bad delay env", env: map[string]string{"DEALER_DELAY": "soon"}},
		{name: "zero chips flag", args: []string{"-chips=0"}},
		{name: "negative delay", args: []string{"-dealer-delay=-1s"}},
		{name: "unknown store", args: []string{"-store=redis"}},
		{name: "postgres without dsn", env: map[string]string{"STORE_DRIVER": "postgres"}},
		{name: "bad log level", args: []string{"-log-level=loud"}},
		{name: "unknown flag", args: []string{"-port=1"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load(tc.args, missingEnvFile(t))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}
