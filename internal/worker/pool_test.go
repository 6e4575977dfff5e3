package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteKeepsOrder(t *testing.T) {
	pool := NewPool(3, func(_ context.Context, n int) (int, error) {
		return n * n, nil
	})
	inputs := []int{1, 2, 3, 4, 5, 6, 7}
	results := pool.Execute(context.Background(), inputs)

	require.Len(t, results, len(inputs))
	for i, r := range results {
		assert.Equal(t, inputs[i], r.Input)
		assert.Equal(t, inputs[i]*inputs[i], r.Result)
		assert.NoError(t, r.Err)
	}
}

func TestExecuteFailureDoesNotStopOthers(t *testing.T) {
	errOdd := errors.New("odd")
	pool := NewPool(2, func(_ context.Context, n int) (string, error) {
		if n%2 == 1 {
			return "", errOdd
		}
		return "even", nil
	})
	results := pool.Execute(context.Background(), []int{1, 2, 3, 4})
	assert.ErrorIs(t, results[0].Err, errOdd)
	assert.Equal(t, "even", results[1].Result)
	assert.ErrorIs(t, results[2].Err, errOdd)
	assert.Equal(t, "even", results[3].Result)
}

func TestExecuteBoundsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	release := make(chan struct{})
	pool := NewPool(2, func(_ context.Context, _ int) (struct{}, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		running.Add(-1)
		return struct{}{}, nil
	})

	done := make(chan struct{})
	go func() {
		pool.Execute(context.Background(), make([]int, 6))
		close(done)
	}()
	for i := 0; i < 6; i++ {
		release <- struct{}{}
	}
	<-done
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	pool := NewPool(0, func(_ context.Context, _ int) (int, error) {
		calls.Add(1)
		return 0, nil
	})
	results := pool.Execute(ctx, []int{1, 2})
	assert.Zero(t, calls.Load())
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}
