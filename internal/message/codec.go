package message

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Payloads are a one byte kind followed by the ABI encoding of that kind's fields.

var ErrUnknownKind = errors.New("unknown message kind")

var (
	bytes32Type = mustType("bytes32")
	uint8Type   = mustType("uint8")
	uint32Type  = mustType("uint32")
	uint64Type  = mustType("uint64")
	uint256Type = mustType("uint256")
	addressType = mustType("address")
	bytesType   = mustType("bytes")
	stringType  = mustType("string")

	settleArgs = abi.Arguments{
		{Name: "key", Type: bytes32Type},
		{Name: "paymentId", Type: uint64Type},
		{Name: "productId", Type: uint64Type},
		{Name: "buyer", Type: addressType},
		{Name: "seller", Type: addressType},
		{Name: "token", Type: addressType},
		{Name: "amount", Type: uint256Type},
		{Name: "payoutDomain", Type: uint32Type},
	}
	cancelArgs = abi.Arguments{
		{Name: "key", Type: bytes32Type},
		{Name: "paymentId", Type: uint64Type},
	}
	payArgs = abi.Arguments{
		{Name: "key", Type: bytes32Type},
		{Name: "productId", Type: uint64Type},
		{Name: "buyer", Type: addressType},
		{Name: "hubToken", Type: addressType},
		{Name: "shippingCost", Type: uint256Type},
		{Name: "nonce", Type: uint64Type},
		{Name: "signature", Type: bytesType},
		{Name: "total", Type: uint256Type},
	}
	receiptArgs = abi.Arguments{
		{Name: "key", Type: bytes32Type},
		{Name: "outcome", Type: uint8Type},
		{Name: "amount", Type: uint256Type},
		{Name: "reason", Type: stringType},
	}
)

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(fmt.Sprintf("abi type %s: %v", t, err))
	}
	return typ
}

// Encode serializes m into a bridge payload.
func Encode(m Message) ([]byte, error) {
	var (
		body []byte
		err  error
	)
	switch v := m.(type) {
	case Settle:
		body, err = settleArgs.Pack([32]byte(v.Key), uint64(v.PaymentID), uint64(v.ProductID),
			v.Buyer, v.Seller, v.Token, toBig(v.Amount), uint32(v.PayoutDomain))
	case Cancel:
		body, err = cancelArgs.Pack([32]byte(v.Key), uint64(v.PaymentID))
	case Pay:
		body, err = payArgs.Pack([32]byte(v.Key), uint64(v.ProductID), v.Buyer, v.HubToken,
			toBig(v.ShippingCost), v.Nonce, nonNil(v.Signature), toBig(v.Total))
	case Receipt:
		body, err = receiptArgs.Pack([32]byte(v.Key), uint8(v.Outcome), toBig(v.Amount), v.Reason)
	default:
		return nil, fmt.Errorf("encode %T: %w", m, ErrUnknownKind)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Kind(), err)
	}
	return append([]byte{byte(m.Kind())}, body...), nil
}

// Decode parses a bridge payload. Any malformed payload wraps model.ErrPayload.
func Decode(payload []byte) (Message, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty payload: %w", model.ErrPayload)
	}
	kind := Kind(payload[0])
	var args abi.Arguments
	switch kind {
	case KindSettle:
		args = settleArgs
	case KindCancel:
		args = cancelArgs
	case KindPay:
		args = payArgs
	case KindReceipt:
		args = receiptArgs
	default:
		return nil, fmt.Errorf("kind %d: %w: %w", kind, ErrUnknownKind, model.ErrPayload)
	}

	values, err := args.Unpack(payload[1:])
	if err != nil {
		return nil, fmt.Errorf("decode %s: %v: %w", kind, err, model.ErrPayload)
	}

	d := decoder{values: values}
	var m Message
	switch kind {
	case KindSettle:
		m = Settle{
			Key:          d.hash(0),
			PaymentID:    model.PaymentID(d.u64(1)),
			ProductID:    model.ProductID(d.u64(2)),
			Buyer:        d.address(3),
			Seller:       d.address(4),
			Token:        d.address(5),
			Amount:       d.amount(6),
			PayoutDomain: model.Domain(d.u32(7)),
		}
	case KindCancel:
		m = Cancel{
			Key:       d.hash(0),
			PaymentID: model.PaymentID(d.u64(1)),
		}
	case KindPay:
		m = Pay{
			Key:          d.hash(0),
			ProductID:    model.ProductID(d.u64(1)),
			Buyer:        d.address(2),
			HubToken:     d.address(3),
			ShippingCost: d.amount(4),
			Nonce:        d.u64(5),
			Signature:    d.raw(6),
			Total:        d.amount(7),
		}
	case KindReceipt:
		m = Receipt{
			Key:     d.hash(0),
			Outcome: Outcome(d.u8(1)),
			Amount:  d.amount(2),
			Reason:  d.str(3),
		}
	}
	if d.err != nil {
		return nil, fmt.Errorf("decode %s: %v: %w", kind, d.err, model.ErrPayload)
	}
	return m, nil
}

func toBig(v *uint256.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v.ToBig()
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

// decoder pulls typed values out of an Unpack result, keeping the first error.
type decoder struct {
	values []interface{}
	err    error
}

func (d *decoder) value(i int) interface{} {
	if d.err != nil {
		return nil
	}
	if i >= len(d.values) {
		d.err = fmt.Errorf("missing field %d", i)
		return nil
	}
	return d.values[i]
}

func (d *decoder) fail(i int, v interface{}) {
	if d.err == nil {
		d.err = fmt.Errorf("field %d has type %T", i, v)
	}
}

func (d *decoder) hash(i int) common.Hash {
	v := d.value(i)
	b, ok := v.([32]byte)
	if !ok {
		d.fail(i, v)
		return common.Hash{}
	}
	return common.Hash(b)
}

func (d *decoder) address(i int) common.Address {
	v := d.value(i)
	a, ok := v.(common.Address)
	if !ok {
		d.fail(i, v)
	}
	return a
}

func (d *decoder) u8(i int) uint8 {
	v := d.value(i)
	n, ok := v.(uint8)
	if !ok {
		d.fail(i, v)
	}
	return n
}

func (d *decoder) u32(i int) uint32 {
	v := d.value(i)
	n, ok := v.(uint32)
	if !ok {
		d.fail(i, v)
	}
	return n
}

func (d *decoder) u64(i int) uint64 {
	v := d.value(i)
	n, ok := v.(uint64)
	if !ok {
		d.fail(i, v)
	}
	return n
}

func (d *decoder) amount(i int) *uint256.Int {
	v := d.value(i)
	b, ok := v.(*big.Int)
	if !ok {
		d.fail(i, v)
		return new(uint256.Int)
	}
	n, overflow := uint256.FromBig(b)
	if overflow {
		d.fail(i, v)
		return new(uint256.Int)
	}
	return n
}

func (d *decoder) raw(i int) []byte {
	v := d.value(i)
	b, ok := v.([]byte)
	if !ok {
		d.fail(i, v)
	}
	return b
}

func (d *decoder) str(i int) string {
	v := d.value(i)
	s, ok := v.(string)
	if !ok {
		d.fail(i, v)
	}
	return s
}
