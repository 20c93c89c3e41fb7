package config_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/hanzi-cloze/internal/config"
	"github.com/phrazzld/hanzi-cloze/internal/scoring"
)

func TestWatchScoring_WithoutFile(t *testing.T) {
	setupEnv(t, map[string]string{config.ConfigFileEnv: ""})

	cfg, err := config.Load()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.False(t, cfg.WatchScoring(logger, func(scoring.Config) error { return nil }))
}

func TestWatchScoring_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloze.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scoring:\n  valid_threshold: 0.6\n"), 0o600))
	setupEnv(t, map[string]string{config.ConfigFileEnv: path})

	cfg, err := config.Load()
	require.NoError(t, err)

	var (
		mu      sync.Mutex
		applied []scoring.Config
	)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.True(t, cfg.WatchScoring(logger, func(c scoring.Config) error {
		mu.Lock()
		defer mu.Unlock()
		applied = append(applied, c)
		return nil
	}))

	require.NoError(t, os.WriteFile(path, []byte("scoring:\n  valid_threshold: 0.75\n"), 0o600))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, c := range applied {
			if c.ValidThreshold == 0.75 {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)
}
