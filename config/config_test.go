package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
database:
  driver: sqlite
  path: ":memory:"
booking:
  sample_step: 30m
log:
  level: debug
`)

	v, err := LoadConfig(path)
	require.NoError(t, err)
	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, 30*time.Minute, cfg.Booking.SampleStep)
	assert.Equal(t, "debug", cfg.Log.Level)

	// defaults fill what the file leaves out
	assert.Equal(t, "Europe/Chisinau", cfg.Booking.Timezone)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeConfig(t, "database:\n  driver: postgres\n")
	t.Setenv("OPTIVENUE_DATABASE_DRIVER", "memory")
	t.Setenv("OPTIVENUE_SERVER_PORT", "7000")

	v, err := LoadConfig(path)
	require.NoError(t, err)
	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, ":7000", cfg.GetServerAddress())
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown driver", body: "database:\n  driver: mongo\n"},
		{name: "sqlite without path", body: "database:\n  driver: sqlite\n  path: \"\"\n"},
		{name: "zero sample step", body: "booking:\n  sample_step: 0s\n"},
		{name: "bad log level", body: "log:\n  level: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := LoadConfig(writeConfig(t, tt.body))
			require.NoError(t, err)
			_, err = ParseConfig(v)
			assert.Error(t, err)
		})
	}
}

func TestReloadLog(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")
	v, err := LoadConfig(path)
	require.NoError(t, err)

	var got []LogConfig
	apply := func(lc LogConfig) { got = append(got, lc) }

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n  format: text\n"), 0o600))
	require.NoError(t, v.ReadInConfig())
	reloadLog(v, fsnotify.Event{Name: path, Op: fsnotify.Write}, apply)
	require.Len(t, got, 1)
	assert.Equal(t, LogConfig{Level: "debug", Format: "text"}, got[0])

	reloadLog(v, fsnotify.Event{Name: path, Op: fsnotify.Remove}, apply)
	assert.Len(t, got, 1)

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\n"), 0o600))
	require.NoError(t, v.ReadInConfig())
	reloadLog(v, fsnotify.Event{Name: path, Op: fsnotify.Write}, apply)
	assert.Len(t, got, 1, "invalid level is not applied")
}

func TestWatchLogPicksUpFileChanges(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")
	v, err := LoadConfig(path)
	require.NoError(t, err)

	var mu sync.Mutex
	level := ""
	WatchLog(v, func(lc LogConfig) {
		mu.Lock()
		defer mu.Unlock()
		level = lc.Level
	})

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o600))
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return level == "warn"
	}, 5*time.Second, 20*time.Millisecond)
}
