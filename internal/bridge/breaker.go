package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerSettings tunes the circuit breaker around an outbound Sender.
type BreakerSettings struct {
	Name                string
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
	Interval            time.Duration
}

func DefaultBreakerSettings(name string) BreakerSettings {
	return BreakerSettings{
		Name:                name,
		ConsecutiveFailures: 5,
		OpenTimeout:         30 * time.Second,
		Interval:            time.Minute,
	}
}

// BreakerSender stops calling a failing transport until it has had time to recover.
type BreakerSender struct {
	next Sender
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerSender(next Sender, settings BreakerSettings, logger *zap.Logger) *BreakerSender {
	logger = logger.Named("breaker").With(zap.String("name", settings.Name))
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: 1,
		Interval:    settings.Interval,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("bridge circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &BreakerSender{next: next, cb: cb}
}

func (b *BreakerSender) Send(ctx context.Context, destination model.Domain, recipient common.Address, payload []byte) (common.Hash, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Send(ctx, destination, recipient, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return common.Hash{}, fmt.Errorf("send to domain %d: %w: %w", destination, ErrDeliveryUnconfirmed, err)
		}
		return common.Hash{}, err
	}
	return res.(common.Hash), nil
}

// State exposes the breaker state for health reporting.
func (b *BreakerSender) State() gobreaker.State {
	return b.cb.State()
}
