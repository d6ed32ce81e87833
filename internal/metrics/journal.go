package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	journalRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "journal",
		Name:      "records_total",
		Help:      "Count of events offered to the journal.",
	}, []string{"status"})
	journalFlushTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "journal",
		Name:      "flush_total",
		Help:      "Count of journal flushes.",
	}, []string{"status"})
	journalFlushDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "journal",
		Name:      "flush_duration_seconds",
		Help:      "Duration of a journal flush.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})
	journalFlushSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "journal",
		Name:      "flush_size",
		Help:      "Number of events written per flush.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})
)

// Journal tracks metrics for the batched event journal.
type Journal struct{}

func NewJournal() *Journal {
	return &Journal{}
}

// ObserveRecord counts an event as queued or dropped.
func (m Journal) ObserveRecord(queued bool) {
	status := "queued"
	if !queued {
		status = "dropped"
	}
	journalRecordsTotal.WithLabelValues(status).Inc()
}

func (m Journal) ObserveFlush(err error, events int, started time.Time) {
	status := statusOf(err)
	journalFlushTotal.WithLabelValues(status).Inc()
	journalFlushDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
	journalFlushSize.Observe(float64(events))
}
