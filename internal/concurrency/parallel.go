package concurrency

import (
	"context"
	"sync"
)

// Options configures parallel processing.
type Options struct {
	// MaxWorkers caps the number of concurrent workers.
	MaxWorkers int
}

func DefaultOptions() Options {
	return Options{MaxWorkers: 4}
}

// Map runs itemFunc over items with a bounded worker pool.
// Results come back in input order. Errors are collected rather than
// short-circuiting, so a partial run still yields its successes.
func Map[T any, R any](
	ctx context.Context,
	items []T,
	opts Options,
	itemFunc func(ctx context.Context, index int, item T) (R, error),
) ([]R, []error) {
	if len(items) == 0 {
		return []R{}, nil
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = DefaultOptions().MaxWorkers
	}
	if workers > len(items) {
		workers = len(items)
	}

	type outcome struct {
		index int
		value R
		err   error
	}

	jobs := make(chan int, len(items))
	results := make(chan outcome, len(items))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					results <- outcome{index: i, err: ctx.Err()}
				default:
					value, err := itemFunc(ctx, i, items[i])
					results <- outcome{index: i, value: value, err: err}
				}
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	values := make([]R, len(items))
	var errs []error
	for i := 0; i < len(items); i++ {
		out := <-results
		values[out.index] = out.value
		if out.err != nil {
			errs = append(errs, out.err)
		}
	}
	return values, errs
}
