package metrics

import (
	"strconv"
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bridgeSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "bridge",
		Name:      "sent_total",
		Help:      "Count of messages handed to the bridge.",
	}, []string{"origin", "destination", "status"})
	bridgeDeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "bridge",
		Name:      "deliveries_total",
		Help:      "Count of delivery attempts.",
	}, []string{"destination", "status", "redelivered"})
	bridgeDeliveryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "bridge",
		Name:      "delivery_duration_seconds",
		Help:      "Duration of a handler call for one delivery.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"destination", "status"})
	bridgeDeadLettersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "bridge",
		Name:      "dead_letters_total",
		Help:      "Count of messages that exhausted their delivery attempts.",
	}, []string{"destination"})
)

// Bridge tracks metrics for the in-memory bridge network.
type Bridge struct{}

func NewBridge() *Bridge {
	return &Bridge{}
}

func (m Bridge) ObserveSend(origin, destination model.Domain, err error) {
	bridgeSentTotal.WithLabelValues(origin.String(), destination.String(), statusOf(err)).Inc()
}

func (m Bridge) ObserveDelivery(destination model.Domain, err error, redelivered bool, started time.Time) {
	status := statusOf(err)
	bridgeDeliveriesTotal.WithLabelValues(destination.String(), status, strconv.FormatBool(redelivered)).Inc()
	bridgeDeliveryDuration.WithLabelValues(destination.String(), status).Observe(time.Since(started).Seconds())
}

func (m Bridge) ObserveDeadLetter(destination model.Domain) {
	bridgeDeadLettersTotal.WithLabelValues(destination.String()).Inc()
}
