package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolExecuteCollectsResultsByName(t *testing.T) {
	tasks := []Task{
		{Name: "a", Execute: func() (any, error) { return 1, nil }},
		{Name: "b", Execute: func() (any, error) { return "two", nil }},
		{Name: "c", Execute: func() (any, error) { return nil, errors.New("boom") }},
	}

	results := NewPool(2).Execute(context.Background(), tasks)
	require.Len(t, results, 3)

	assert.Equal(t, 1, results["a"].Data)
	assert.NoError(t, results["a"].Err)
	assert.Equal(t, "two", results["b"].Data)
	assert.EqualError(t, results["c"].Err, "boom")
}

func TestPoolRunsEveryTaskOnce(t *testing.T) {
	var executions int64
	var tasks []Task
	for i := 0; i < 20; i++ {
		tasks = append(tasks, Task{
			Name: string(rune('a' + i)),
			Execute: func() (any, error) {
				atomic.AddInt64(&executions, 1)
				return nil, nil
			},
		})
	}

	results := NewPool(4).Execute(context.Background(), tasks)
	assert.Len(t, results, 20)
	assert.Equal(t, int64(20), atomic.LoadInt64(&executions))
}

func TestPoolIsReusableAcrossBatches(t *testing.T) {
	pool := NewPool(2)
	tasks := []Task{
		{Name: "a", Execute: func() (any, error) { return "first", nil }},
		{Name: "b", Execute: func() (any, error) { return "second", nil }},
	}

	first := pool.Execute(context.Background(), tasks)
	require.Len(t, first, 2)

	second := pool.Execute(context.Background(), tasks)
	require.Len(t, second, 2)
	assert.Equal(t, "first", second["a"].Data)
}

func TestPoolStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewPool(1).Execute(ctx, []Task{
		{Name: "a", Execute: func() (any, error) { return 1, nil }},
	})
	assert.LessOrEqual(t, len(results), 1)
}
