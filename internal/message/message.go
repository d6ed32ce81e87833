// Package message defines the crosschain instructions exchanged between the
// hub and its satellites, and their wire encoding.
package message

import (
	"encoding/binary"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

type Kind uint8

const (
	KindSettle Kind = iota + 1
	KindCancel
	KindPay
	KindReceipt
)

func (k Kind) String() string {
	switch k {
	case KindSettle:
		return "settle"
	case KindCancel:
		return "cancel"
	case KindPay:
		return "pay"
	case KindReceipt:
		return "receipt"
	default:
		return "unknown"
	}
}

// Message is one of Settle, Cancel, Pay or Receipt.
type Message interface {
	Kind() Kind
	MessageKey() common.Hash
}

// Settle asks a satellite to pay a seller on its domain.
type Settle struct {
	Key          common.Hash
	PaymentID    model.PaymentID
	ProductID    model.ProductID
	Buyer        common.Address
	Seller       common.Address
	Token        common.Address
	Amount       *uint256.Int
	PayoutDomain model.Domain
}

// Cancel asks a satellite to give up on a settlement it has not executed yet.
type Cancel struct {
	Key       common.Hash
	PaymentID model.PaymentID
}

// Pay carries a buyer payment collected on a satellite to the hub.
type Pay struct {
	Key          common.Hash
	ProductID    model.ProductID
	Buyer        common.Address
	HubToken     common.Address
	ShippingCost *uint256.Int
	Nonce        uint64
	Signature    []byte
	Total        *uint256.Int
}

type Outcome uint8

const (
	OutcomeConfirmed Outcome = iota + 1
	OutcomeFailed
	OutcomeCancelled
	OutcomeAccepted
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeConfirmed:
		return "confirmed"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Receipt reports the outcome of a Settle, Cancel or Pay back to its sender.
type Receipt struct {
	Key     common.Hash
	Outcome Outcome
	Amount  *uint256.Int
	Reason  string
}

func (Settle) Kind() Kind  { return KindSettle }
func (Cancel) Kind() Kind  { return KindCancel }
func (Pay) Kind() Kind     { return KindPay }
func (Receipt) Kind() Kind { return KindReceipt }

func (m Settle) MessageKey() common.Hash  { return m.Key }
func (m Cancel) MessageKey() common.Hash  { return m.Key }
func (m Pay) MessageKey() common.Hash     { return m.Key }
func (m Receipt) MessageKey() common.Hash { return m.Key }

// SettlementKey is the idempotency key of a hub payment: its product id plus
// payment sequence, scoped to the hub domain.
func SettlementKey(hub model.Domain, productID model.ProductID, paymentID model.PaymentID) common.Hash {
	return crypto.Keccak256Hash(
		[]byte("settle"),
		u32(uint32(hub)),
		u64(uint64(productID)),
		u64(uint64(paymentID)),
	)
}

// PayKey is the idempotency key of a payment collected on a satellite.
// attempt is the satellite's pay sequence, so a retry after a rejection is a
// new message while a redelivered one keeps its key.
func PayKey(origin model.Domain, buyer common.Address, nonce, attempt uint64) common.Hash {
	return crypto.Keccak256Hash(
		[]byte("pay"),
		u32(uint32(origin)),
		buyer.Bytes(),
		u64(nonce),
		u64(attempt),
	)
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func u64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
