package hub

import (
	"context"
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Ledger is the hub domain's token accounting.
	Ledger interface {
		Transfer(token, from, to common.Address, amount *uint256.Int) error
	}
	// Bridge sends crosschain messages without waiting for delivery.
	Bridge interface {
		Send(ctx context.Context, destination model.Domain, recipient common.Address, payload []byte) (common.Hash, error)
	}
	Metrics interface {
		ObserveOperation(operation string, err error, started time.Time)
		ObservePayment(status model.PaymentStatus, settlement model.SettlementState)
	}
	EventSink interface {
		Record(ctx context.Context, event model.Event)
	}
)
