// Package async fans a batch of named queries out over a bounded worker
// group and collects each outcome by name.
package async

import (
	"context"
	"sync"
)

// Task is one unit of work. Names must be unique within a batch; the result
// map is keyed by them.
type Task struct {
	Name    string
	Execute func() (any, error)
}

// Result is the outcome of one task.
type Result struct {
	Name string
	Data any
	Err  error
}

// Pool bounds how many tasks run at once. A Pool is reusable; each Execute
// call gets its own channels.
type Pool struct {
	workers int
}

func NewPool(workers int) *Pool {
	return &Pool{workers: workers}
}

// Execute runs every task and returns the results keyed by task name. A
// cancelled context stops dispatching further tasks; results gathered so far
// are returned.
func (p *Pool) Execute(ctx context.Context, tasks []Task) map[string]Result {
	taskCh := make(chan Task)
	resultCh := make(chan Result, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				data, err := task.Execute()
				resultCh <- Result{Name: task.Name, Data: data, Err: err}
			}
		}()
	}

	go func() {
		defer close(taskCh)
		for _, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make(map[string]Result, len(tasks))
	for result := range resultCh {
		results[result.Name] = result
	}
	return results
}
