package transport

import (
	"context"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Hub is the read side of the escrow hub.
	Hub interface {
		Product(id model.ProductID) (model.Product, bool)
		ProductIDs() []model.ProductID
		SettlementTokens() []common.Address
		Arm(domain model.Domain) (common.Address, bool)
		Binding(domain model.Domain, hubToken common.Address) (common.Address, bool)
		IsWhitelisted(addr common.Address) bool
		Fee() *uint256.Int
		PendingFee() (model.PendingFee, bool)
		Nonce(buyer common.Address) uint64
		AllowedSigner() common.Address
		Payment(id model.PaymentID) (model.Payment, bool)
	}
	Journal interface {
		EventsByPayment(ctx context.Context, domain model.Domain, paymentID model.PaymentID) ([]model.Event, error)
		CountEventsByType(ctx context.Context, domain model.Domain) (map[model.EventType]uint64, error)
	}
)
