package hub

import (
	"context"
	"fmt"
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/message"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/oracle"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/pkg/safe"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

// PayRequest is a buyer's purchase. Value is what the buyer sends and must
// equal price plus shipping.
type PayRequest struct {
	Buyer        common.Address
	ProductID    model.ProductID
	ShippingCost *uint256.Int
	Nonce        uint64
	Signature    []byte
	Value        *uint256.Int
}

// PayProduct escrows price plus shipping from the buyer and opens a payment.
func (h *Hub) PayProduct(ctx context.Context, req PayRequest) (id model.PaymentID, err error) {
	started := time.Now()
	defer func() { h.observe("pay_product", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	p, err := h.acceptPayment(ctx, req, req.Buyer, h.domain)
	if err != nil {
		return 0, err
	}
	return p.ID, nil
}

// acceptPayment runs every payProduct check, pulls the total from payer and
// records the payment. Nothing is changed when it fails.
func (h *Hub) acceptPayment(ctx context.Context, req PayRequest, payer common.Address, origin model.Domain) (*model.Payment, error) {
	product, ok := h.products[req.ProductID]
	if !ok {
		return nil, model.ErrNotExists
	}
	if !product.Enabled {
		return nil, model.ErrEnabled
	}
	if product.Stock == 0 {
		return nil, model.ErrStock
	}
	if _, ok := h.tokens[product.Token]; !ok {
		return nil, model.ErrSettlementToken
	}

	shipping := new(uint256.Int)
	if req.ShippingCost != nil {
		shipping = req.ShippingCost.Clone()
	}
	if req.Nonce != h.nonces[req.Buyer] {
		return nil, model.ErrNonce
	}
	quote := oracle.Quote{ProductID: req.ProductID, Buyer: req.Buyer, ShippingCost: shipping, Nonce: req.Nonce}
	if err := oracle.Verify(quote, h.chainID, req.Signature, h.allowedSigner); err != nil {
		return nil, err
	}

	total, overflow := new(uint256.Int).AddOverflow(product.Price, shipping)
	if overflow || req.Value == nil || !req.Value.Eq(total) {
		return nil, model.ErrValue
	}

	out := product.OutputPaymentDomain
	settlement := model.SettlementLocal
	var (
		arm     common.Address
		foreign common.Address
	)
	if out != h.domain {
		if arm, ok = h.arms[out]; !ok {
			return nil, model.ErrArm
		}
		if foreign, ok = h.foreignToken(out, product.Token); !ok {
			return nil, model.ErrBinding
		}
		settlement = model.SettlementInFlight
	}

	if err := h.ledger.Transfer(product.Token, payer, h.address, total); err != nil {
		return nil, fmt.Errorf("collect %s from %s: %v: %w", total.Dec(), payer.Hex(), err, model.ErrFunds)
	}

	id := model.PaymentID(h.paymentSeq + 1)
	now := h.clock.Now()
	payment := &model.Payment{
		ID:           id,
		Key:          message.SettlementKey(h.domain, product.ID, id),
		ProductID:    product.ID,
		Buyer:        req.Buyer,
		Seller:       product.Seller,
		Token:        product.Token,
		Principal:    product.Price.Clone(),
		Shipping:     shipping,
		Fee:          model.FeeAmount(product.Price, h.fee),
		OriginDomain: origin,
		OutputDomain: out,
		Status:       model.PaymentPaid,
		Settlement:   settlement,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if settlement == model.SettlementInFlight {
		if err := h.sendSettle(ctx, payment, arm, foreign); err != nil {
			if rerr := h.ledger.Transfer(product.Token, h.address, payer, total); rerr != nil {
				h.logger.Error("failed to return escrow after send failure", zap.Uint64("payment_id", uint64(id)), zap.Error(rerr))
			}
			return nil, err
		}
	}

	h.paymentSeq++
	h.nonces[req.Buyer]++
	product.Stock--
	h.products[product.ID] = product
	h.payments[id] = payment
	h.paymentKeys[payment.Key] = id

	e := h.paymentEvent(model.EventPaymentPaid, payment)
	e.Amount = total
	h.record(ctx, e)
	h.metrics.ObservePayment(payment.Status, payment.Settlement)
	h.logger.Info("payment accepted",
		zap.Uint64("payment_id", uint64(id)),
		zap.Uint64("product_id", uint64(product.ID)),
		zap.String("buyer", req.Buyer.Hex()),
		zap.String("total", total.Dec()),
		zap.Stringer("settlement", settlement),
	)
	return payment, nil
}

func (h *Hub) sendSettle(ctx context.Context, p *model.Payment, arm, foreign common.Address) error {
	payload, err := message.Encode(message.Settle{
		Key:          p.Key,
		PaymentID:    p.ID,
		ProductID:    p.ProductID,
		Buyer:        p.Buyer,
		Seller:       p.Seller,
		Token:        foreign,
		Amount:       p.Net(),
		PayoutDomain: p.OutputDomain,
	})
	if err != nil {
		return fmt.Errorf("encode settle: %w", err)
	}
	if _, err := h.bridge.Send(ctx, p.OutputDomain, arm, payload); err != nil {
		return fmt.Errorf("send settle: %v: %w", err, model.ErrDelivery)
	}
	return nil
}

// ReleasePayment pays the seller of a local payment and accrues fee and shipping.
func (h *Hub) ReleasePayment(ctx context.Context, caller common.Address, id model.PaymentID) (err error) {
	started := time.Now()
	defer func() { h.observe("release_payment", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	p, ok := h.payments[id]
	if !ok {
		return model.ErrNotExists
	}
	if caller != p.Seller && caller != p.Buyer && caller != h.owner {
		return model.ErrAuthorized
	}
	if p.Status != model.PaymentPaid {
		return model.ErrStatus
	}
	if p.Crosschain() {
		return model.ErrLocal
	}
	if err = h.ledger.Transfer(p.Token, h.address, p.Seller, p.Net()); err != nil {
		return fmt.Errorf("release payment %d: %w", id, err)
	}
	h.release(ctx, p, caller)
	return nil
}

// RefundPayment returns the escrow to the buyer. An in-flight crosschain
// payment is cancelled on its satellite first and refunded by the receipt.
func (h *Hub) RefundPayment(ctx context.Context, caller common.Address, id model.PaymentID) (err error) {
	started := time.Now()
	defer func() { h.observe("refund_payment", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	p, ok := h.payments[id]
	if !ok {
		return model.ErrNotExists
	}
	if caller != p.Seller && caller != h.owner {
		return model.ErrAuthorized
	}
	if p.Status != model.PaymentPaid {
		return model.ErrStatus
	}

	switch p.Settlement {
	case model.SettlementLocal, model.SettlementFailed:
		return h.refund(ctx, p, caller)
	case model.SettlementInFlight:
		if caller != h.owner {
			return model.ErrOwner
		}
		return h.cancel(ctx, p, caller)
	default:
		return model.ErrStatus
	}
}

func (h *Hub) cancel(ctx context.Context, p *model.Payment, caller common.Address) error {
	arm, ok := h.arms[p.OutputDomain]
	if !ok {
		return model.ErrArm
	}
	payload, err := message.Encode(message.Cancel{Key: p.Key, PaymentID: p.ID})
	if err != nil {
		return fmt.Errorf("encode cancel: %w", err)
	}
	if _, err := h.bridge.Send(ctx, p.OutputDomain, arm, payload); err != nil {
		return fmt.Errorf("send cancel: %v: %w", err, model.ErrDelivery)
	}
	p.Settlement = model.SettlementCancelling
	p.UpdatedAt = h.clock.Now()

	e := h.paymentEvent(model.EventPaymentCancelling, p)
	e.Actor = caller
	h.record(ctx, e)
	h.metrics.ObservePayment(p.Status, p.Settlement)
	h.logger.Info("payment cancelling", zap.Uint64("payment_id", uint64(p.ID)))
	return nil
}

// release marks p released after the seller has been paid.
func (h *Hub) release(ctx context.Context, p *model.Payment, actor common.Address) {
	accrue(h.feesAccrued, p.Token, p.Fee)
	accrue(h.shippingAccrued, p.Token, p.Shipping)
	p.Status = model.PaymentReleased
	p.UpdatedAt = h.clock.Now()

	e := h.paymentEvent(model.EventPaymentReleased, p)
	e.Actor = actor
	e.Amount = p.Net()
	h.record(ctx, e)
	h.metrics.ObservePayment(p.Status, p.Settlement)
	h.logger.Info("payment released", zap.Uint64("payment_id", uint64(p.ID)), zap.String("net", p.Net().Dec()))
}

func (h *Hub) refund(ctx context.Context, p *model.Payment, actor common.Address) error {
	total := p.Total()
	if err := h.ledger.Transfer(p.Token, h.address, p.Buyer, total); err != nil {
		return fmt.Errorf("refund payment %d: %w", p.ID, err)
	}
	p.Status = model.PaymentRefunded
	p.UpdatedAt = h.clock.Now()

	if product, ok := h.products[p.ProductID]; ok {
		stock, err := safe.AddUint64(product.Stock, 1)
		if err != nil {
			h.logger.Warn("stock not restored", zap.Uint64("product_id", uint64(p.ProductID)), zap.Error(err))
		} else {
			product.Stock = stock
			h.products[p.ProductID] = product
		}
	}

	e := h.paymentEvent(model.EventPaymentRefunded, p)
	e.Actor = actor
	e.Amount = total
	h.record(ctx, e)
	h.metrics.ObservePayment(p.Status, p.Settlement)
	h.logger.Info("payment refunded", zap.Uint64("payment_id", uint64(p.ID)), zap.String("total", total.Dec()))
	return nil
}

func (h *Hub) ClaimFees(ctx context.Context, caller, token, to common.Address) (err error) {
	started := time.Now()
	defer func() { h.observe("claim_fees", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.claim(ctx, caller, token, to, h.feesAccrued)
}

func (h *Hub) ClaimShippingCost(ctx context.Context, caller, token, to common.Address) (err error) {
	started := time.Now()
	defer func() { h.observe("claim_shipping_cost", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.claim(ctx, caller, token, to, h.shippingAccrued)
}

func (h *Hub) claim(ctx context.Context, caller, token, to common.Address, accrued map[common.Address]*uint256.Int) error {
	if err := h.requireOwner(caller); err != nil {
		return err
	}
	if model.IsZeroAddress(to) {
		return model.ErrZeroAddress
	}
	amount, ok := accrued[token]
	if !ok || amount.IsZero() {
		return model.ErrAmount
	}
	if err := h.ledger.Transfer(token, h.address, to, amount); err != nil {
		return fmt.Errorf("claim %s of %s: %w", amount.Dec(), token.Hex(), err)
	}
	delete(accrued, token)

	e := h.event(model.EventTreasuryClaimed)
	e.Actor = to
	e.Token = token
	e.Amount = amount
	h.record(ctx, e)
	return nil
}

func (h *Hub) paymentEvent(typ model.EventType, p *model.Payment) model.Event {
	e := h.event(typ)
	e.PaymentID = p.ID
	e.ProductID = p.ProductID
	e.Key = p.Key
	e.Actor = p.Buyer
	e.Token = p.Token
	e.Amount = p.Total()
	e.Reason = p.FailureReason
	return e
}

func accrue(accrued map[common.Address]*uint256.Int, token common.Address, amount *uint256.Int) {
	current, ok := accrued[token]
	if !ok {
		accrued[token] = amount.Clone()
		return
	}
	current.Add(current, amount)
}
