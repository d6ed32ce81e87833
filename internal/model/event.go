package model

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
)

type EventType string

const (
	EventProductSubmitted     EventType = "product_submitted"
	EventProductUpdated       EventType = "product_updated"
	EventFeePrepared          EventType = "fee_prepared"
	EventFeeImplemented       EventType = "fee_implemented"
	EventPaymentPaid          EventType = "payment_paid"
	EventPaymentReleased      EventType = "payment_released"
	EventPaymentRefunded      EventType = "payment_refunded"
	EventPaymentCancelling    EventType = "payment_cancelling"
	EventSettlementFailed     EventType = "settlement_failed"
	EventSettlementConfirmed  EventType = "settlement_confirmed"
	EventSettlementCancelled  EventType = "settlement_cancelled"
	EventTreasuryClaimed      EventType = "treasury_claimed"
	EventCrosschainPaySent    EventType = "crosschain_pay_sent"
	EventCrosschainPayRefused EventType = "crosschain_pay_refused"
	EventMessageRejected      EventType = "message_rejected"
)

// Event is one journal row describing a committed ledger transition.
type Event struct {
	ID         uuid.UUID
	Domain     Domain
	Type       EventType
	PaymentID  PaymentID
	ProductID  ProductID
	Key        common.Hash
	Actor      common.Address
	Token      common.Address
	Amount     *uint256.Int
	Reason     string
	OccurredAt time.Time
}

func NewEvent(domain Domain, typ EventType, at time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Domain:     domain,
		Type:       typ,
		Amount:     new(uint256.Int),
		OccurredAt: at,
	}
}
