package model

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type PaymentID uint64

type PaymentStatus uint8

const (
	PaymentPaid PaymentStatus = iota + 1
	PaymentReleased
	PaymentRefunded
)

func (s PaymentStatus) String() string {
	switch s {
	case PaymentPaid:
		return "paid"
	case PaymentReleased:
		return "released"
	case PaymentRefunded:
		return "refunded"
	default:
		return "unknown"
	}
}

// SettlementState tracks crosschain progress of a payment still in PaymentPaid.
type SettlementState uint8

const (
	SettlementLocal SettlementState = iota + 1
	SettlementInFlight
	SettlementFailed
	SettlementCancelling
)

func (s SettlementState) String() string {
	switch s {
	case SettlementLocal:
		return "local"
	case SettlementInFlight:
		return "in_flight"
	case SettlementFailed:
		return "failed"
	case SettlementCancelling:
		return "cancelling"
	default:
		return "unknown"
	}
}

// Payment is the escrow record created by a successful payProduct.
type Payment struct {
	ID        PaymentID
	Key       common.Hash
	ProductID ProductID
	Buyer     common.Address
	Seller    common.Address
	Token     common.Address
	Principal *uint256.Int
	Shipping  *uint256.Int
	Fee       *uint256.Int

	// OriginDomain is where the buyer paid, OutputDomain where the seller is paid.
	OriginDomain Domain
	OutputDomain Domain

	Status        PaymentStatus
	Settlement    SettlementState
	FailureReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Total is principal plus shipping.
func (p Payment) Total() *uint256.Int {
	return new(uint256.Int).Add(p.Principal, p.Shipping)
}

// Net is the seller's share: principal minus the protocol fee.
func (p Payment) Net() *uint256.Int {
	return new(uint256.Int).Sub(p.Principal, p.Fee)
}

func (p Payment) Crosschain() bool {
	return p.Settlement != SettlementLocal
}

func (p Payment) Clone() Payment {
	p.Principal = p.Principal.Clone()
	p.Shipping = p.Shipping.Clone()
	p.Fee = p.Fee.Clone()
	return p
}
