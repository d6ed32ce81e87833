// Package workerpool fans keyed work out over a fixed number of goroutines.
package workerpool

import (
	"context"
	"sync"
	"sync/atomic"
)

// Process runs fn over items on at most workers goroutines. Items with the
// same partition key run one after another in slice order, distinct keys run
// concurrently. The first error stops workers from picking up new partitions
// and is returned. Cancelling ctx does not skip items: fn sees the cancelled
// context and decides what to do with them, and Process returns ctx.Err().
func Process[T any, K comparable](
	ctx context.Context,
	workers int,
	items []T,
	partition func(T) K,
	fn func(context.Context, T) error,
) error {
	groups := group(items, partition)
	if workers < 1 {
		workers = 1
	}
	if workers > len(groups) {
		workers = len(groups)
	}

	var (
		next     atomic.Int64
		failed   atomic.Bool
		errOnce  sync.Once
		firstErr error
		wg       sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !failed.Load() {
				i := int(next.Add(1)) - 1
				if i >= len(groups) {
					return
				}
				for _, item := range groups[i] {
					if err := fn(ctx, item); err != nil {
						errOnce.Do(func() { firstErr = err })
						failed.Store(true)
						return
					}
				}
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

// group splits items by key, keeping first-seen key order and item order.
func group[T any, K comparable](items []T, partition func(T) K) [][]T {
	index := make(map[K]int)
	groups := make([][]T, 0)
	for _, item := range items {
		k := partition(item)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], item)
	}
	return groups
}
