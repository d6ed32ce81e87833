// Package batcher groups queued items into bounded batches for a flush callback.
package batcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

var ErrStopped = errors.New("batcher stopped")

// FlushFunc persists one batch. The slice is reused after it returns.
type FlushFunc[T any] func(context.Context, []T) error

type Config struct {
	// Size flushes as soon as this many items are pending.
	Size int
	// Interval flushes whatever is pending at least this often.
	Interval time.Duration
	// RPS caps flush calls per second.
	RPS int
	// Buffer is the queue capacity, twice Size when zero.
	Buffer int
}

// Batcher queues items from any goroutine and hands them to a single flush
// loop.
type Batcher[T any] struct {
	logger *zap.Logger
	flush  FlushFunc[T]
	size   int
	every  time.Duration
	limit  ratelimit.Limiter
	queue  chan T

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopped  chan struct{}
}

func New[T any](cfg Config, flush FlushFunc[T], logger *zap.Logger) *Batcher[T] {
	if cfg.Size <= 0 {
		cfg.Size = 1
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = cfg.Size * 2
	}
	limit := ratelimit.NewUnlimited()
	if cfg.RPS > 0 {
		limit = ratelimit.New(cfg.RPS)
	}
	return &Batcher[T]{
		logger:  logger,
		flush:   flush,
		size:    cfg.Size,
		every:   cfg.Interval,
		limit:   limit,
		queue:   make(chan T, cfg.Buffer),
		stopped: make(chan struct{}),
	}
}

func (b *Batcher[T]) Start(ctx context.Context) {
	b.wg.Add(1)
	go b.loop(ctx)
}

// Stop flushes everything queued so far and waits for the loop to exit.
// It is safe to call more than once.
func (b *Batcher[T]) Stop() {
	b.stopOnce.Do(func() { close(b.stopped) })
	b.wg.Wait()
}

// Add queues item, waiting for room until ctx is done.
func (b *Batcher[T]) Add(ctx context.Context, item T) error {
	if b.isStopped() {
		return ErrStopped
	}
	select {
	case b.queue <- item:
		return nil
	case <-b.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAdd queues item only if there is room right now.
func (b *Batcher[T]) TryAdd(item T) bool {
	if b.isStopped() {
		return false
	}
	select {
	case b.queue <- item:
		return true
	default:
		return false
	}
}

func (b *Batcher[T]) isStopped() bool {
	select {
	case <-b.stopped:
		return true
	default:
		return false
	}
}

func (b *Batcher[T]) loop(ctx context.Context) {
	defer b.wg.Done()

	var tick <-chan time.Time
	if b.every > 0 {
		ticker := time.NewTicker(b.every)
		defer ticker.Stop()
		tick = ticker.C
	}

	pending := make([]T, 0, b.size)
	write := func(ctx context.Context) {
		if len(pending) == 0 {
			return
		}
		b.limit.Take()
		if err := b.flush(ctx, pending); err != nil {
			b.logger.Error("batch not flushed", zap.Int("size", len(pending)), zap.Error(err))
		} else {
			b.logger.Debug("batch flushed", zap.Int("size", len(pending)))
		}
		pending = pending[:0]
	}
	collect := func(ctx context.Context, item T) {
		pending = append(pending, item)
		if len(pending) >= b.size {
			write(ctx)
		}
	}

	for {
		select {
		case item := <-b.queue:
			collect(ctx, item)
		case <-tick:
			write(ctx)
		case <-b.stopped:
			b.drain(context.WithoutCancel(ctx), collect, write)
			return
		case <-ctx.Done():
			b.drain(context.WithoutCancel(ctx), collect, write)
			return
		}
	}
}

// drain empties the queue without blocking, then writes the remainder.
func (b *Batcher[T]) drain(ctx context.Context, collect func(context.Context, T), write func(context.Context)) {
	for {
		select {
		case item := <-b.queue:
			collect(ctx, item)
		default:
			write(ctx)
			return
		}
	}
}
