package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"hostelverse-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, maxRetries int) *Client {
	return &Client{
		config: &ClientConfig{
			ConnectionTimeout: time.Second,
			RetryConfig: &RetryConfig{
				MaxRetries: maxRetries,
				BaseDelay:  time.Millisecond,
				MaxDelay:   2 * time.Millisecond,
			},
		},
		logger: logger.NewTestLogger(t),
	}
}

func TestExecuteWithRetry_RetriesTransientErrors(t *testing.T) {
	c := testClient(t, 3)

	attempts := 0
	err := c.ExecuteWithRetry(context.Background(), "topology", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("rpc error: code = Unavailable desc = connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestExecuteWithRetry_StopsOnPermanentError(t *testing.T) {
	c := testClient(t, 3)

	attempts := 0
	err := c.ExecuteWithRetry(context.Background(), "topology", func(context.Context) error {
		attempts++
		return errors.New("invalid argument")
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Contains(t, err.Error(), "invalid argument")
}

func TestExecuteWithRetry_ExhaustsBudget(t *testing.T) {
	c := testClient(t, 2)

	attempts := 0
	err := c.ExecuteWithRetry(context.Background(), "topology", func(context.Context) error {
		attempts++
		return errors.New("deadline exceeded")
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestExecuteWithRetry_HonoursCancellation(t *testing.T) {
	c := testClient(t, 5)
	c.config.RetryConfig.BaseDelay = time.Hour
	c.config.RetryConfig.MaxDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.ExecuteWithRetry(ctx, "topology", func(context.Context) error {
		return errors.New("connection reset by peer")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(errors.New("Unavailable: broker unreachable")))
	assert.True(t, isRetryableZeebeError(errors.New("context deadline exceeded")))
	assert.False(t, isRetryableZeebeError(errors.New("NOT_FOUND: job not found")))
}
