package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/ethereum/go-ethereum/common"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

var (
	// ErrDeliveryUnconfirmed means the transport did not accept the message.
	ErrDeliveryUnconfirmed = errors.New("bridge: delivery unconfirmed")
	ErrQueueFull           = errors.New("bridge: queue full")
	ErrUnknownDomain       = errors.New("bridge: unknown domain")
)

// Envelope is a message as seen by the receiving domain.
type Envelope struct {
	ID           common.Hash
	Executor     common.Address
	Origin       model.Domain
	OriginSender common.Address
	Destination  model.Domain
	Recipient    common.Address
	Payload      []byte
	Attempt      int
	Redelivered  bool
}

type (
	// Sender hands a payload to the bridge. It never waits for delivery.
	Sender interface {
		Send(ctx context.Context, destination model.Domain, recipient common.Address, payload []byte) (common.Hash, error)
	}
	// Handler is invoked by the bridge executor for every delivery. A non-nil
	// error leaves the message queued for another attempt.
	Handler interface {
		Receive(ctx context.Context, env Envelope) error
	}
	Metrics interface {
		ObserveSend(origin, destination model.Domain, err error)
		ObserveDelivery(destination model.Domain, err error, redelivered bool, started time.Time)
		ObserveDeadLetter(destination model.Domain)
	}
)
