package pool

import (
	"context"
	"sync"
)

// WorkerFunc defines the function signature for a worker that processes an item and may return an error.
type WorkerFunc[T any] func(ctx context.Context, item T) error

// Result is the outcome of one item. Err is the context's error for items
// that were never started because ctx was canceled.
type Result[T any] struct {
	Index int
	Item  T
	Err   error
}

type task[T any] struct {
	index int
	item  T
}

// Run processes items concurrently with at most numWorkers goroutines and
// returns one Result per item, in input order.
func Run[T any](ctx context.Context, items []T, numWorkers int, workerFunc WorkerFunc[T]) []Result[T] {
	results := make([]Result[T], len(items))
	for i, item := range items {
		results[i] = Result[T]{Index: i, Item: item}
	}
	if len(items) == 0 {
		return results
	}
	numWorkers = max(1, min(numWorkers, len(items)))

	var wg sync.WaitGroup
	started := make([]bool, len(items))
	taskChan := make(chan task[T], numWorkers)

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range taskChan {
				select {
				case <-ctx.Done():
					continue
				default:
				}
				// Each index is written by exactly one worker.
				started[t.index] = true
				results[t.index].Err = workerFunc(ctx, t.item)
			}
		}()
	}

OUT:
	for i, item := range items {
		select {
		case taskChan <- task[T]{index: i, item: item}:
		case <-ctx.Done():
			// Stop feeding tasks if the context is cancelled
			break OUT
		}
	}
	close(taskChan)
	wg.Wait()

	for i := range results {
		if !started[i] {
			results[i].Err = ctx.Err()
		}
	}
	return results
}

// Errors returns the non-nil errors of results in input order.
func Errors[T any](results []Result[T]) []error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}
