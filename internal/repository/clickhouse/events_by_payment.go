package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
)

// EventsByPayment returns the journal of one payment in the order it happened.
func (r *Repository) EventsByPayment(ctx context.Context, domain model.Domain, paymentID model.PaymentID) ([]model.Event, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("events_by_payment", domain, err, start)
	}()

	rows, err := r.conn.Query(ctx, eventsByPaymentQuery, uint32(domain), uint64(paymentID))
	if err != nil {
		return nil, fmt.Errorf("query events by payment: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", cerr)
		}
	}()

	var events []model.Event
	for rows.Next() {
		var (
			id                     uuid.UUID
			typ, key, actor, token string
			productID              uint64
			amount, reason         string
			occurredAt             time.Time
		)
		if err = rows.Scan(&id, &typ, &productID, &key, &actor, &token, &amount, &reason, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		value, convErr := uint256.FromDecimal(amount)
		if convErr != nil {
			err = fmt.Errorf("parse event amount %q: %w", amount, convErr)
			return nil, err
		}

		events = append(events, model.Event{
			ID:         id,
			Domain:     domain,
			Type:       model.EventType(typ),
			PaymentID:  paymentID,
			ProductID:  model.ProductID(productID),
			Key:        common.HexToHash(key),
			Actor:      common.HexToAddress(actor),
			Token:      common.HexToAddress(token),
			Amount:     value,
			Reason:     reason,
			OccurredAt: occurredAt,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

const eventsByPaymentQuery = `
SELECT
	id,
	type,
	product_id,
	key,
	actor,
	token,
	amount,
	reason,
	occurred_at
FROM escrow_events
WHERE domain = ? AND payment_id = ?
ORDER BY occurred_at ASC, id ASC`
