package metrics

import (
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hubOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "hub",
		Name:      "operations_total",
		Help:      "Count of hub operations by outcome and rejection reason.",
	}, []string{"domain", "operation", "status", "reason"})
	hubOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "hub",
		Name:      "operation_duration_seconds",
		Help:      "Duration of hub operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"domain", "operation", "status"})
	hubPaymentTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "hub",
		Name:      "payment_transitions_total",
		Help:      "Count of payment state transitions.",
	}, []string{"domain", "status", "settlement"})
)

// Hub tracks metrics for one hub.
type Hub struct {
	domain string
}

func NewHub(domain model.Domain) *Hub {
	return &Hub{domain: domain.String()}
}

// ObserveOperation records the outcome and duration of a hub operation.
func (m Hub) ObserveOperation(operation string, err error, started time.Time) {
	status := statusOf(err)
	hubOperationsTotal.WithLabelValues(m.domain, operation, status, reasonOf(err)).Inc()
	hubOperationDuration.WithLabelValues(m.domain, operation, status).Observe(time.Since(started).Seconds())
}

func (m Hub) ObservePayment(status model.PaymentStatus, settlement model.SettlementState) {
	hubPaymentTransitionsTotal.WithLabelValues(m.domain, status.String(), settlement.String()).Inc()
}
