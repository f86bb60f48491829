package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()
	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, 30*time.Second, c.ItemTimeout)
	assert.True(t, c.AutoSync)
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expected    func(c *Config)
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "10.0.0.1:9090", "-i", "10", "-f", "/tmp/f.db", "-d", "/tmp/att", "-t", "5", "-l", "debug"},
			expected: func(c *Config) {
				c.ServerEndpointAddr = "10.0.0.1:9090"
				c.OnlineCheckInterval = 10 * time.Second
				c.DatabasePath = "/tmp/f.db"
				c.AttachmentsDir = "/tmp/att"
				c.ItemTimeout = 5 * time.Second
				c.LogLevel = "debug"
			},
		},
		{
			name:     "switch off and subcommand ignored",
			args:     []string{"-s=false", "outbox", "list"},
			expected: func(c *Config) { c.AutoSync = false },
		},
		{name: "bad interval", args: []string{"-i", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg, tt.args) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg, tt.args) })
			want := defaults()
			tt.expected(want)
			assert.Empty(t, cmp.Diff(want, cfg))
		})
	}
}

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestParseJson(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"server_endpoint_addr":  "srv:1",
		"online_check_interval": "7s",
		"item_timeout":          int64(2 * time.Second),
		"auto_sync":             false,
	})

	cfg := defaults()
	parseJson(cfg, []string{"-c", path})

	want := defaults()
	want.ServerEndpointAddr = "srv:1"
	want.OnlineCheckInterval = 7 * time.Second
	want.ItemTimeout = 2 * time.Second
	want.AutoSync = false
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestParseJson_Errors(t *testing.T) {
	require.Panics(t, func() { parseJson(defaults(), []string{"-config", filepath.Join(t.TempDir(), "missing.json")}) })

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	require.Panics(t, func() { parseJson(defaults(), []string{"-c", bad}) })
}

func TestLoadConfig_FlagsOverrideJSON(t *testing.T) {
	path := writeTempJSON(t, map[string]any{"server_endpoint_addr": "from-json:1", "log_level": "warn"})

	cfg := LoadConfig([]string{"-c", path, "-a", "from-flag:2", "sync"})
	assert.Equal(t, "from-flag:2", cfg.ServerEndpointAddr)
	assert.Equal(t, "warn", cfg.LogLevel)
}
