package satellite

import (
	"context"
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/message"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/swap"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Ledger is the satellite domain's token accounting.
	Ledger interface {
		Transfer(token, from, to common.Address, amount *uint256.Int) error
		BalanceOf(token, account common.Address) *uint256.Int
	}
	Bridge interface {
		Send(ctx context.Context, destination model.Domain, recipient common.Address, payload []byte) (common.Hash, error)
	}
	Swapper interface {
		Quote(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *uint256.Int) (*uint256.Int, error)
		Swap(ctx context.Context, req swap.Request) (*uint256.Int, error)
	}
	Metrics interface {
		ObserveOperation(operation string, err error, started time.Time)
		ObserveSettlement(outcome message.Outcome, reason string)
		ObserveSwap(err error, started time.Time)
	}
	EventSink interface {
		Record(ctx context.Context, event model.Event)
	}
)
