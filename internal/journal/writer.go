// Package journal batches escrow events into the repository.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/pkg/batcher"
	"go.uber.org/zap"
)

const (
	defaultFlushSize     = 500
	defaultFlushInterval = time.Second
	defaultFlushRPS      = 10
)

type Config struct {
	FlushSize     int
	FlushInterval time.Duration
	FlushRPS      int
	// BufferSize bounds the events waiting for a flush.
	BufferSize int
}

// Writer is an event sink for the hub and the satellites. Recording never
// blocks a state transition: when the buffer is full the event is dropped and
// counted.
type Writer struct {
	logger  *zap.Logger
	repo    Repository
	metrics Metrics
	batcher *batcher.Batcher[model.Event]
}

func NewWriter(cfg Config, repo Repository, metrics Metrics, logger *zap.Logger) *Writer {
	if cfg.FlushSize <= 0 {
		cfg.FlushSize = defaultFlushSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	if cfg.FlushRPS <= 0 {
		cfg.FlushRPS = defaultFlushRPS
	}

	w := &Writer{
		logger:  logger.Named("journal"),
		repo:    repo,
		metrics: metrics,
	}
	w.batcher = batcher.New(batcher.Config{
		Size:     cfg.FlushSize,
		Interval: cfg.FlushInterval,
		RPS:      cfg.FlushRPS,
		Buffer:   cfg.BufferSize,
	}, w.flush, w.logger)
	return w
}

func (w *Writer) Start(ctx context.Context) {
	w.batcher.Start(ctx)
}

// Stop flushes what is buffered and waits for the flush loop to exit.
func (w *Writer) Stop() {
	w.batcher.Stop()
}

func (w *Writer) Record(_ context.Context, event model.Event) {
	queued := w.batcher.TryAdd(event)
	w.metrics.ObserveRecord(queued)
	if !queued {
		w.logger.Warn("journal buffer full, event dropped",
			zap.String("id", event.ID.String()),
			zap.String("type", string(event.Type)),
			zap.Uint32("domain", uint32(event.Domain)),
		)
	}
}

func (w *Writer) flush(ctx context.Context, events []model.Event) error {
	started := time.Now()
	err := w.repo.InsertEvents(ctx, events)
	w.metrics.ObserveFlush(err, len(events), started)
	if err != nil {
		return fmt.Errorf("write %d events: %w", len(events), err)
	}
	return nil
}
