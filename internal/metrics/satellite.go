package metrics

import (
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/message"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	satelliteOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "satellite",
		Name:      "operations_total",
		Help:      "Count of satellite operations by outcome and rejection reason.",
	}, []string{"domain", "operation", "status", "reason"})
	satelliteOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "satellite",
		Name:      "operation_duration_seconds",
		Help:      "Duration of satellite operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"domain", "operation", "status"})
	satelliteSettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "satellite",
		Name:      "settlements_total",
		Help:      "Count of settlement outcomes.",
	}, []string{"domain", "outcome", "reason"})
	satelliteSwapsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "satellite",
		Name:      "swaps_total",
		Help:      "Count of AMM swaps.",
	}, []string{"domain", "status"})
	satelliteSwapDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "satellite",
		Name:      "swap_duration_seconds",
		Help:      "Duration of quote plus swap.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"domain", "status"})
)

// Satellite tracks metrics for one satellite.
type Satellite struct {
	domain string
}

func NewSatellite(domain model.Domain) *Satellite {
	return &Satellite{domain: domain.String()}
}

func (m Satellite) ObserveOperation(operation string, err error, started time.Time) {
	status := statusOf(err)
	satelliteOperationsTotal.WithLabelValues(m.domain, operation, status, reasonOf(err)).Inc()
	satelliteOperationDuration.WithLabelValues(m.domain, operation, status).Observe(time.Since(started).Seconds())
}

func (m Satellite) ObserveSettlement(outcome message.Outcome, reason string) {
	if reason == "" {
		reason = "none"
	}
	satelliteSettlementsTotal.WithLabelValues(m.domain, outcome.String(), reason).Inc()
}

func (m Satellite) ObserveSwap(err error, started time.Time) {
	status := statusOf(err)
	satelliteSwapsTotal.WithLabelValues(m.domain, status).Inc()
	satelliteSwapDuration.WithLabelValues(m.domain, status).Observe(time.Since(started).Seconds())
}
