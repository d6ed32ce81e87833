package hub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/bridge"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/message"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// inboundPay is the stored answer to a Pay collected on a satellite.
type inboundPay struct {
	paymentID model.PaymentID
	receipt   message.Receipt
}

// Receive handles envelopes from satellites: settlement receipts and
// payments collected on their domains.
func (h *Hub) Receive(ctx context.Context, env bridge.Envelope) (err error) {
	started := time.Now()
	defer func() { h.observe("receive", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	logger := h.logger.With(zap.String("envelope", env.ID.Hex()), zap.Uint32("origin", uint32(env.Origin)))
	defer func() {
		if err != nil {
			e := h.event(model.EventMessageRejected)
			e.Actor = env.OriginSender
			e.Reason = model.ReasonOf(err)
			h.record(ctx, e)
			logger.Warn("message rejected", zap.Error(err))
		}
	}()

	if env.Executor != h.executor {
		return model.ErrExecutor
	}
	arm, ok := h.arms[env.Origin]
	if !ok || arm != env.OriginSender {
		return model.ErrAuthorizedOrigin
	}
	msg, err := message.Decode(env.Payload)
	if err != nil {
		return err
	}

	switch m := msg.(type) {
	case message.Receipt:
		return h.handleReceipt(ctx, logger, env.Origin, arm, m)
	case message.Pay:
		return h.handlePay(ctx, logger, env.Origin, arm, m)
	default:
		return fmt.Errorf("%s message at hub: %w", msg.Kind(), model.ErrPayload)
	}
}

func (h *Hub) handleReceipt(ctx context.Context, logger *zap.Logger, origin model.Domain, arm common.Address, r message.Receipt) error {
	id, ok := h.paymentKeys[r.Key]
	if !ok {
		logger.Warn("receipt for unknown payment ignored", zap.String("key", r.Key.Hex()))
		return nil
	}
	p := h.payments[id]
	if p.OutputDomain != origin {
		return model.ErrAuthorizedOrigin
	}
	if p.Status != model.PaymentPaid || !p.Crosschain() {
		logger.Info("stale receipt ignored",
			zap.Uint64("payment_id", uint64(id)),
			zap.Stringer("outcome", r.Outcome),
			zap.Stringer("status", p.Status),
		)
		return nil
	}

	switch r.Outcome {
	case message.OutcomeConfirmed:
		// the satellite paid the seller from its liquidity; reimburse its account here
		if err := h.ledger.Transfer(p.Token, h.address, arm, p.Net()); err != nil {
			return fmt.Errorf("reimburse arm %s: %w", arm.Hex(), err)
		}
		h.release(ctx, p, arm)
		h.record(ctx, h.paymentEvent(model.EventSettlementConfirmed, p))
		return nil
	case message.OutcomeFailed:
		p.FailureReason = r.Reason
		if p.Settlement == model.SettlementCancelling {
			h.record(ctx, h.paymentEvent(model.EventSettlementFailed, p))
			return h.refund(ctx, p, arm)
		}
		p.Settlement = model.SettlementFailed
		p.UpdatedAt = h.clock.Now()
		h.record(ctx, h.paymentEvent(model.EventSettlementFailed, p))
		h.metrics.ObservePayment(p.Status, p.Settlement)
		logger.Info("settlement failed", zap.Uint64("payment_id", uint64(id)), zap.String("reason", r.Reason))
		return nil
	case message.OutcomeCancelled:
		h.record(ctx, h.paymentEvent(model.EventSettlementCancelled, p))
		return h.refund(ctx, p, arm)
	default:
		return fmt.Errorf("%s receipt for a settlement: %w", r.Outcome, model.ErrPayload)
	}
}

func (h *Hub) handlePay(ctx context.Context, logger *zap.Logger, origin model.Domain, arm common.Address, m message.Pay) error {
	if stored, ok := h.inboundPays[m.Key]; ok {
		logger.Info("duplicate pay, resending receipt", zap.String("key", m.Key.Hex()))
		return h.sendReceipt(ctx, origin, arm, stored.receipt)
	}

	req := PayRequest{
		Buyer:        m.Buyer,
		ProductID:    m.ProductID,
		ShippingCost: m.ShippingCost,
		Nonce:        m.Nonce,
		Signature:    m.Signature,
		Value:        m.Total,
	}
	var (
		payment *model.Payment
		err     error
	)
	if product, ok := h.products[m.ProductID]; ok && product.Token != m.HubToken {
		err = model.ErrSettlementToken
	} else {
		payment, err = h.acceptPayment(ctx, req, arm, origin)
	}

	record := inboundPay{receipt: message.Receipt{Key: m.Key, Amount: m.Total}}
	switch {
	case err == nil:
		record.paymentID = payment.ID
		record.receipt.Outcome = message.OutcomeAccepted
	case isRejection(err):
		record.receipt.Outcome = message.OutcomeRejected
		record.receipt.Reason = model.ReasonOf(err)

		e := h.event(model.EventCrosschainPayRefused)
		e.ProductID = m.ProductID
		e.Key = m.Key
		e.Actor = m.Buyer
		e.Token = m.HubToken
		e.Amount = m.Total.Clone()
		e.Reason = record.receipt.Reason
		h.record(ctx, e)
		logger.Info("crosschain pay refused", zap.String("key", m.Key.Hex()), zap.Error(err))
	default:
		// not a verdict on the payment; let the bridge retry
		return err
	}
	h.inboundPays[m.Key] = record
	return h.sendReceipt(ctx, origin, arm, record.receipt)
}

func (h *Hub) sendReceipt(ctx context.Context, destination model.Domain, arm common.Address, r message.Receipt) error {
	payload, err := message.Encode(r)
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}
	if _, err := h.bridge.Send(ctx, destination, arm, payload); err != nil {
		return fmt.Errorf("send receipt: %v: %w", err, model.ErrDelivery)
	}
	return nil
}

// isRejection reports whether err is a protocol verdict rather than an
// infrastructure failure.
func isRejection(err error) bool {
	var e *model.Error
	if !errors.As(err, &e) {
		return false
	}
	return !errors.Is(err, model.ErrDelivery)
}
