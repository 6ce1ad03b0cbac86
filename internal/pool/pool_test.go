package pool_test

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gosphere/internal/pool"
)

func TestSubmitRunsEveryTaskExactlyOnce(t *testing.T) {
	p := pool.New(4)
	defer p.Close()

	var count atomic.Int64
	var tasks []pool.Task
	for i := 0; i < 100; i++ {
		i := i
		tasks = append(tasks, func() (any, error) {
			count.Add(1)
			return i * i, nil
		})
	}
	futures := p.SubmitAll(tasks)
	for i, f := range futures {
		v, err := f.Wait()
		require.NoError(t, err)
		assert.Equal(t, i*i, v)
	}
	assert.Equal(t, int64(100), count.Load())
}

func TestFutureWaitIsIdempotent(t *testing.T) {
	p := pool.New(2)
	defer p.Close()

	f := p.Submit(func() (any, error) { return 42, nil })
	v1, err1 := f.Wait()
	v2, err2 := f.Wait()
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, v1, v2)
}

func TestFuturePropagatesTaskError(t *testing.T) {
	p := pool.New(1)
	defer p.Close()

	f := p.Submit(func() (any, error) { return nil, fmt.Errorf("boom") })
	_, err := f.Wait()
	require.Error(t, err)
	assert.EqualError(t, err, "boom")
}

func TestSingleWorkerProcessesInFIFOOrder(t *testing.T) {
	p := pool.New(1)
	defer p.Close()

	var order []int
	var tasks []pool.Task
	for i := 0; i < 20; i++ {
		i := i
		tasks = append(tasks, func() (any, error) {
			order = append(order, i)
			return nil, nil
		})
	}
	futures := p.SubmitAll(tasks)
	for _, f := range futures {
		_, _ = f.Wait()
	}
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}
