package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/stockdash/pkg/async"
)

func TestAsyncAwait(t *testing.T) {
	t.Parallel()

	future := async.Async(t.Context(), 21, func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	})

	result, err := future.Await()
	require.NoError(t, err)
	assert.Equal(t, 42, result)
}

func TestAsyncPropagatesError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("fetch failed")
	future := async.Async(t.Context(), "AAPL", func(_ context.Context, _ string) (string, error) {
		return "", wantErr
	})

	_, err := future.Await()
	assert.ErrorIs(t, err, wantErr)
}

func TestAsyncPreCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	var called atomic.Bool
	future := async.Async(ctx, 0, func(context.Context, int) (int, error) {
		called.Store(true)
		return 0, nil
	})

	_, err := future.Await()
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called.Load())
}

func TestAwaitWithTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	future := async.Async(t.Context(), 0, func(context.Context, int) (int, error) {
		<-release
		return 1, nil
	})

	_, err := future.AwaitWithTimeout(10 * time.Millisecond)
	assert.ErrorIs(t, err, async.ErrTimeout)

	close(release)
	result, err := future.Await()
	require.NoError(t, err)
	assert.Equal(t, 1, result)
}

func TestIsComplete(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	future := async.Async(t.Context(), 0, func(context.Context, int) (int, error) {
		<-release
		return 1, nil
	})

	assert.False(t, future.IsComplete())
	close(release)
	_, _ = future.Await()
	assert.True(t, future.IsComplete())
}

func TestWaitAll(t *testing.T) {
	t.Parallel()

	double := func(_ context.Context, n int) (int, error) { return n * 2, nil }
	futures := []*async.Future[int]{
		async.Async(t.Context(), 1, double),
		async.Async(t.Context(), 2, double),
		async.Async(t.Context(), 3, double),
	}

	results, err := async.WaitAll(futures...)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, results)
}

func TestWaitAllFirstError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("boom")
	ok := async.Async(t.Context(), 1, func(_ context.Context, n int) (int, error) { return n, nil })
	bad := async.Async(t.Context(), 2, func(context.Context, int) (int, error) { return 0, wantErr })

	_, err := async.WaitAll(ok, bad)
	assert.ErrorIs(t, err, wantErr)
}
