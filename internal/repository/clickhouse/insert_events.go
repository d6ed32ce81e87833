package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
)

// InsertEvents stores journal rows in ClickHouse.
func (r *Repository) InsertEvents(ctx context.Context, events []model.Event) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("insert_events", firstDomain(events), err, start)
	}()

	if len(events) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx, insertEventsQuery)
	if err != nil {
		return fmt.Errorf("prepare events batch: %w", err)
	}

	for _, ev := range events {
		if err = batch.Append(eventRow(ev)...); err != nil {
			return fmt.Errorf("append event: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert events: %w", err)
	}
	return nil
}

const insertEventsQuery = `
INSERT INTO escrow_events (
	id,
	domain,
	type,
	payment_id,
	product_id,
	key,
	actor,
	token,
	amount,
	reason,
	occurred_at
) VALUES`

func eventRow(ev model.Event) []any {
	amount := "0"
	if ev.Amount != nil {
		amount = ev.Amount.Dec()
	}
	return []any{
		ev.ID,
		uint32(ev.Domain),
		string(ev.Type),
		uint64(ev.PaymentID),
		uint64(ev.ProductID),
		ev.Key.Hex(),
		ev.Actor.Hex(),
		ev.Token.Hex(),
		amount,
		ev.Reason,
		ev.OccurredAt.UTC(),
	}
}

// firstDomain labels a batch by its first event; batches are flushed per node
// and rarely mix domains.
func firstDomain(events []model.Event) model.Domain {
	if len(events) == 0 {
		return 0
	}
	return events[0].Domain
}
