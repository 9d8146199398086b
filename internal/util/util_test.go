package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"24h", 24 * time.Hour, true},
		{"90m", 90 * time.Minute, true},
		{"7d", 7 * 24 * time.Hour, true},
		{"2w", 14 * 24 * time.Hour, true},
		{"d", 0, false},
		{"soon", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	cfgPath := filepath.Join(dir, "config.yaml")
	content := "data_dir: " + dataDir + "\n" +
		"default_port: 7\n" +
		"sync_interval: 5m\n" +
		"resolver:\n  server: 127.0.0.1:5353\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))

	cfg, err := LoadConfig(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, 7, cfg.DefaultPort)
	assert.Equal(t, 5*time.Minute, cfg.SyncInterval)
	assert.Equal(t, "127.0.0.1:5353", cfg.Resolver.Server)
	assert.Equal(t, filepath.Join(dataDir, "hosts.json"), cfg.HostsFile)
	assert.Equal(t, filepath.Join(dataDir, "history.db"), cfg.HistoryFile)
	assert.Equal(t, 8080, cfg.WebPort)
	assert.DirExists(t, dataDir)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("bogus"))
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wolbook.log")
	l := NewLogger(zerolog.DebugLevel, path, false)
	l.Info("woke %s", "desk")
	l.Debug("detail %d", 1)
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "woke desk")
	assert.Contains(t, string(data), "detail 1")
}
