package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/snitch-monitoring/snitch/agent/internal/config"
)

// New builds a JSON logger for dest. The returned func flushes the logger
// and closes the sink; call it once on shutdown.
func New(dest Destination) (*zap.Logger, func(), error) {
	ws, closeSink, err := open(dest.Sink)
	if err != nil {
		return nil, nil, err
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		ws,
		zap.NewAtomicLevelAt(ZapLevel(dest.MinLevel)),
	)
	logger := zap.New(core, zap.AddCaller(), zap.ErrorOutput(zapcore.Lock(os.Stderr)))

	return logger, func() {
		// Sync on a terminal stdout returns EINVAL; nothing to do about it.
		_ = logger.Sync()
		closeSink()
	}, nil
}

// ZapLevel converts a config level to its zap equivalent.
func ZapLevel(l config.Level) zapcore.Level {
	switch l {
	case config.LevelDebug:
		return zapcore.DebugLevel
	case config.LevelWarn:
		return zapcore.WarnLevel
	case config.LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func open(s Sink) (zapcore.WriteSyncer, func(), error) {
	fs, ok := s.(FileSink)
	if !ok {
		return zapcore.Lock(os.Stdout), func() {}, nil
	}

	// zap.Open treats the bare names "stdout" and "stderr" specially.
	path, err := filepath.Abs(fs.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: resolve %q: %w", fs.Path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("logging: create log directory: %w", err)
	}
	ws, closeFile, err := zap.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: open %s: %w", path, err)
	}
	return ws, closeFile, nil
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}
