package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/snitch-monitoring/snitch/agent/internal/config"
)

const baseYAML = "aggregator_host: agg.local\naggregator_port: 9000\nmax_retries: 3\npid_file: /run/snitch.pid\n"

func parse(t *testing.T, doc string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(doc))
	require.NoError(t, err)
	return cfg
}

func TestResolve_Defaults(t *testing.T) {
	dest := Resolve(parse(t, baseYAML).Log())

	assert.Equal(t, config.LevelInfo, dest.MinLevel)
	assert.Equal(t, FileSink{Path: "/var/log/snitch.log"}, dest.Sink)
}

func TestResolve_Variants(t *testing.T) {
	tests := []struct {
		name      string
		log       string
		wantLevel config.Level
		wantSink  Sink
	}{
		{"stdout", "log:\n  level: warn\n  location:\n    type: stdout\n", config.LevelWarn, StdoutSink{}},
		{"file default path", "log:\n  location:\n    type: file\n", config.LevelInfo, FileSink{Path: config.DefaultLogPath}},
		{"file custom path", "log:\n  level: debug\n  location:\n    type: file\n    path: /tmp/a.log\n", config.LevelDebug, FileSink{Path: "/tmp/a.log"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dest := Resolve(parse(t, baseYAML+tc.log).Log())
			assert.Equal(t, tc.wantLevel, dest.MinLevel)
			assert.Equal(t, tc.wantSink, dest.Sink)
		})
	}
}

func TestDestination_WithLevel(t *testing.T) {
	dest := Resolve(parse(t, baseYAML).Log())
	override := dest.WithLevel(config.LevelError)

	assert.Equal(t, config.LevelError, override.MinLevel)
	assert.Equal(t, dest.Sink, override.Sink)
	assert.Equal(t, config.LevelInfo, dest.MinLevel, "original must be unchanged")
}

func TestZapLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ZapLevel(config.LevelDebug))
	assert.Equal(t, zapcore.InfoLevel, ZapLevel(config.LevelInfo))
	assert.Equal(t, zapcore.WarnLevel, ZapLevel(config.LevelWarn))
	assert.Equal(t, zapcore.ErrorLevel, ZapLevel(config.LevelError))
}

func TestNew_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "agent.log")
	logger, closeFn, err := New(Destination{MinLevel: config.LevelWarn, Sink: FileSink{Path: path}})
	require.NoError(t, err)

	logger.Info("dropped below level")
	logger.Warn("kept", zap.String("component", "test"))
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "test", entry["component"])
	assert.Contains(t, entry, "ts")
}

func TestNew_FileSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	require.NoError(t, os.WriteFile(path, []byte("existing\n"), 0o600))

	logger, closeFn, err := New(Destination{MinLevel: config.LevelInfo, Sink: FileSink{Path: path}})
	require.NoError(t, err)
	logger.Info("appended")
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "existing\n"))
	assert.Contains(t, string(data), `"msg":"appended"`)
}

func TestNew_FileSinkUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	// The parent "directory" is a regular file.
	_, _, err := New(Destination{Sink: FileSink{Path: filepath.Join(blocker, "agent.log")}})
	assert.Error(t, err)
}

func TestNew_Stdout(t *testing.T) {
	logger, closeFn, err := New(Destination{MinLevel: config.LevelError, Sink: StdoutSink{}})
	require.NoError(t, err)
	defer closeFn()

	assert.False(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))
}

func TestSink_String(t *testing.T) {
	assert.Equal(t, "stdout", StdoutSink{}.String())
	assert.Equal(t, "file:/var/log/snitch.log", FileSink{Path: "/var/log/snitch.log"}.String())
}
