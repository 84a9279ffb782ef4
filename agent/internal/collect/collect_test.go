package collect

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/snitch-monitoring/snitch/agent/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte("aggregator_host: agg.local\naggregator_port: 9000\nmax_retries: 3\npid_file: /run/snitch.pid\n"))
	require.NoError(t, err)
	return cfg
}

func TestIdle_RunUntilCancelled(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := NewIdle(testConfig(t), zap.New(core)).(*Idle)
	c.heartbeat = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("collector idle, no sources registered").Len() > 0
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	start := logs.FilterMessage("collector starting").All()
	require.Len(t, start, 1)
	fields := start[0].ContextMap()
	assert.Equal(t, "agg.local:9000", fields["aggregator"])
	assert.EqualValues(t, 3, fields["max_retries"])
	assert.Equal(t, 1, logs.FilterMessage("collector shutting down").Len())
}

func TestIdle_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewIdle(testConfig(t), zap.NewNop()).Run(ctx)
	assert.NoError(t, err)
}
