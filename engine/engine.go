// Package engine drives the concurrent per-item processing shared by every
// pipeline stage: download one goroutine per filter list, extract one
// goroutine per filter list, categorize/output one goroutine per tag.
package engine

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/listharvest/listharvest/log"
)

// chanCap bounds the error channel so a goroutine never blocks trying to
// report a failure, even if every item fails.
const chanCap = 1000

// Work is the per-item unit of processing a stage hands to Run. It should
// check ctx between I/O operations and return promptly on cancellation.
type Work[T any] func(ctx context.Context, item T) error

// Run processes items concurrently, bounded by concurrency simultaneous
// goroutines, aggregating every failure with go-multierror rather than
// aborting on the first one. It checks ctx before starting each item's
// goroutine and returns ctx.Err() (possibly wrapped with other items'
// errors) if cancellation is observed.
//
// concurrency of 0 is treated as 1.
func Run[T any](ctx context.Context, items []T, concurrency uint, work Work[T]) error {
	if concurrency == 0 {
		concurrency = 1
	}

	guard := make(chan struct{}, concurrency)
	errChan := make(chan error, chanCap)

	var wg sync.WaitGroup

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			errChan <- err

			break
		}

		wg.Add(1)

		go func(item T) {
			defer wg.Done()

			guard <- struct{}{}
			defer func() { <-guard }()

			if err := work(ctx, item); err != nil {
				errChan <- err
			}
		}(item)
	}

	wg.Wait()
	close(errChan)

	var result error

	for err := range errChan {
		result = multierror.Append(result, err)
	}

	if result != nil {
		log.PrefixedLog("engine").Warnf("processing completed with errors: %v", result)
	}

	return result
}
