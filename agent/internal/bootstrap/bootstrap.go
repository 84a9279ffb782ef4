// Package bootstrap orders agent startup: load the config, build the logger,
// record the pid, then hand the configuration to the collector. Failures are
// wrapped in a StageError so the caller can tell which step failed.
package bootstrap

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/snitch-monitoring/snitch/agent/internal/collect"
	"github.com/snitch-monitoring/snitch/agent/internal/config"
	"github.com/snitch-monitoring/snitch/agent/internal/logging"
	"github.com/snitch-monitoring/snitch/agent/internal/pidfile"
	"github.com/snitch-monitoring/snitch/agent/internal/version"
)

// Stage names a startup step.
type Stage string

const (
	StageConfig  Stage = "config"
	StageLogging Stage = "logging"
	StagePIDFile Stage = "pidfile"
	StageRuntime Stage = "runtime"
)

// StageError records which startup step failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Options controls a single agent run.
type Options struct {
	ConfigPath string

	// LevelOverride replaces log.level from the file when non-nil.
	LevelOverride *config.Level

	// Trace receives the raw config file before it is parsed. Nil disables it.
	Trace io.Writer

	// WatchConfig reports on-disk edits to the config while running.
	WatchConfig bool

	// NewCollector builds the collection subsystem. Defaults to collect.NewIdle.
	NewCollector collect.Factory
}

// Run starts the agent and blocks until the collector returns.
func Run(ctx context.Context, opts Options) error {
	var loadOpts []config.LoadOption
	if opts.Trace != nil {
		loadOpts = append(loadOpts, config.WithTrace(opts.Trace))
	}
	cfg, err := config.Load(opts.ConfigPath, loadOpts...)
	if err != nil {
		return &StageError{Stage: StageConfig, Err: err}
	}

	dest := logging.Resolve(cfg.Log())
	if opts.LevelOverride != nil {
		dest = dest.WithLevel(*opts.LevelOverride)
	}
	logger, closeLog, err := logging.New(dest)
	if err != nil {
		return &StageError{Stage: StageLogging, Err: err}
	}
	defer closeLog()

	logger.Info("snitch-agent starting",
		zap.String("version", version.Version),
		zap.String("config", opts.ConfigPath),
		zap.String("aggregator", cfg.AggregatorAddr()),
		zap.Int("max_retries", cfg.MaxRetries()),
		zap.Stringer("log_level", dest.MinLevel),
		zap.Stringer("log_sink", dest.Sink),
	)

	if err := pidfile.Write(cfg.PIDFile()); err != nil {
		logger.Error("failed to write pid file", zap.String("path", cfg.PIDFile()), zap.Error(err))
		return &StageError{Stage: StagePIDFile, Err: err}
	}
	defer func() {
		if err := pidfile.Remove(cfg.PIDFile()); err != nil {
			logger.Warn("failed to remove pid file", zap.String("path", cfg.PIDFile()), zap.Error(err))
		}
	}()

	if opts.WatchConfig {
		stop := watch(ctx, opts.ConfigPath, cfg, logger)
		defer stop()
	}

	newCollector := opts.NewCollector
	if newCollector == nil {
		newCollector = collect.NewIdle
	}
	if err := newCollector(cfg, logger).Run(ctx); err != nil {
		logger.Error("collector failed", zap.Error(err))
		return &StageError{Stage: StageRuntime, Err: err}
	}

	logger.Info("snitch-agent stopped")
	return nil
}

// watch starts the config drift watcher. The returned func stops it and
// waits for it to exit so nothing logs after the logger is closed.
func watch(ctx context.Context, path string, cfg *config.Config, logger *zap.Logger) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		err := config.Watch(ctx, path, logger, cfg, func(*config.Config) {
			logger.Warn("config changed on disk, restart snitch-agent to apply it",
				zap.String("path", path))
		})
		if err != nil {
			logger.Error("config watcher stopped", zap.String("path", path), zap.Error(err))
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
