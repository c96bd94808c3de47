package sift_test

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-emd/algorithms/sift"
)

func TestNewPool(t *testing.T) {
	assert.IsType(t, sift.Sequential{}, sift.NewPool(0))
	assert.IsType(t, sift.Sequential{}, sift.NewPool(1))

	pool, ok := sift.NewPool(3).(*sift.Pool)
	require.True(t, ok)
	assert.Equal(t, 3, pool.Workers())
}

func TestExecutorKeepsSubmissionOrder(t *testing.T) {
	for _, workers := range []int{1, 2, 8} {
		out := make([]int, 50)
		err := sift.NewPool(workers).Run(len(out), func(i int) error {
			// Later tasks finish first
			time.Sleep(time.Duration(len(out)-i) * 10 * time.Microsecond)
			out[i] = i * i
			return nil
		})
		require.NoError(t, err)
		for i, v := range out {
			assert.Equal(t, i*i, v, "workers %d index %d", workers, i)
		}
	}
}

func TestExecutorBoundsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	err := sift.NewPool(3).Run(30, func(i int) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(200 * time.Microsecond)
		running.Add(-1)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestExecutorAbortsOnError(t *testing.T) {
	boom := errors.New("boom")

	var calls atomic.Int32
	err := sift.Sequential{}.Run(10, func(i int) error {
		calls.Add(1)
		if i == 3 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(4), calls.Load())

	calls.Store(0)
	err = sift.NewPool(2).Run(1000, func(i int) error {
		calls.Add(1)
		if i == 0 {
			return boom
		}
		time.Sleep(50 * time.Microsecond)
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Less(t, calls.Load(), int32(1000))
}

func TestExecutorEmptyBatch(t *testing.T) {
	assert.NoError(t, sift.NewPool(4).Run(0, func(int) error { return errors.New("unreachable") }))
	assert.NoError(t, sift.Sequential{}.Run(0, func(int) error { return errors.New("unreachable") }))
}
