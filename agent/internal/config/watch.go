package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch monitors path for edits while the agent runs. The running
// configuration is never replaced: when the file on disk parses to a value
// different from current, onChange receives it so the caller can report that
// a restart is needed. An invalid file is logged and otherwise ignored.
// Watch runs until ctx is cancelled.
//
// The parent directory is watched rather than the file, so edits that
// replace the file (write to a temp file, then rename over path) keep being
// seen.
func Watch(ctx context.Context, path string, logger *zap.Logger, current *Config, onChange func(*Config)) error {
	target := filepath.Clean(path)
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}

	logger.Debug("config: watching for changes", zap.String("path", path))

	last := current
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			// A rename over path arrives as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				logger.Warn("config: file on disk is invalid, running configuration unchanged",
					zap.String("path", path), zap.Error(err))
				continue
			}
			if cfg.Equal(last) {
				continue
			}
			last = cfg
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("config: watcher error", zap.Error(err))
		}
	}
}
