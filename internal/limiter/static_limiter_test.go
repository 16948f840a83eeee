package limiter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/s3ops/s3pitrestore/internal/limiter"
)

func TestNewOpLimiterUnlimited(t *testing.T) {
	require.Nil(t, limiter.NewOpLimiter(0))
	require.Nil(t, limiter.NewOpLimiter(-1))
}

func TestNilOpLimiterNeverBlocks(t *testing.T) {
	var l *limiter.OpLimiter
	require.NoError(t, l.Wait(context.Background()))
}

func TestOpLimiterRespectsCancellation(t *testing.T) {
	l := limiter.NewOpLimiter(1)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := l.Wait(ctx)
	require.Error(t, err)
}
