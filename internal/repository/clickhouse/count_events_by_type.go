package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
)

// CountEventsByType counts journal rows per event type. A zero domain counts
// across every domain.
func (r *Repository) CountEventsByType(ctx context.Context, domain model.Domain) (map[model.EventType]uint64, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("count_events_by_type", domain, err, start)
	}()

	query, args := countEventsByTypeQuery(domain)
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query event counts: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", cerr)
		}
	}()

	counts := make(map[model.EventType]uint64)
	for rows.Next() {
		var (
			typ   string
			count uint64
		)
		if err = rows.Scan(&typ, &count); err != nil {
			return nil, fmt.Errorf("scan event count: %w", err)
		}
		counts[model.EventType(typ)] = count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event counts: %w", err)
	}

	return counts, nil
}

func countEventsByTypeQuery(domain model.Domain) (string, []any) {
	if !domain.Valid() {
		return `
SELECT type, count()
FROM escrow_events
GROUP BY type`, nil
	}
	return `
SELECT type, count()
FROM escrow_events
WHERE domain = ?
GROUP BY type`, []any{uint32(domain)}
}
