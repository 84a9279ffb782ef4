// Package collect defines the hand-off point between agent startup and the
// collection subsystem. NewIdle is the built-in collector: it holds the
// process open and reports its settings until shutdown, without sending
// anything to the aggregator.
package collect

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/snitch-monitoring/snitch/agent/internal/config"
)

// DefaultHeartbeat is how often the idle collector logs that it is alive.
const DefaultHeartbeat = time.Minute

// Collector gathers host data and forwards it to the aggregator.
// Run blocks until ctx is cancelled or the collector fails.
type Collector interface {
	Run(ctx context.Context) error
}

// Factory builds a Collector from the loaded configuration.
type Factory func(cfg *config.Config, logger *zap.Logger) Collector

// Idle is a Collector with no data sources.
type Idle struct {
	cfg       *config.Config
	logger    *zap.Logger
	heartbeat time.Duration
}

// NewIdle creates an idle collector. It satisfies Factory.
func NewIdle(cfg *config.Config, logger *zap.Logger) Collector {
	return &Idle{
		cfg:       cfg,
		logger:    logger,
		heartbeat: DefaultHeartbeat,
	}
}

// Run logs the aggregator settings and waits for ctx to be cancelled.
func (c *Idle) Run(ctx context.Context) error {
	c.logger.Info("collector starting",
		zap.String("aggregator", c.cfg.AggregatorAddr()),
		zap.Int("max_retries", c.cfg.MaxRetries()),
		zap.String("platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	)

	ticker := time.NewTicker(c.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("collector shutting down")
			return nil
		case <-ticker.C:
			c.logger.Debug("collector idle, no sources registered",
				zap.String("aggregator", c.cfg.AggregatorAddr()),
			)
		}
	}
}
