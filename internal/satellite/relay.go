package satellite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/bridge"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/message"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/swap"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

// instruction is the closed set of things the hub can ask of a satellite.
type instruction interface {
	instruction()
}

type (
	settleInstr        struct{ message.Settle }
	swapAndSettleInstr struct{ message.Settle }
	cancelInstr        struct{ message.Cancel }
	payAnswerInstr     struct{ message.Receipt }
)

func (settleInstr) instruction()        {}
func (swapAndSettleInstr) instruction() {}
func (cancelInstr) instruction()        {}
func (payAnswerInstr) instruction()     {}

func (s *Satellite) classify(msg message.Message) (instruction, error) {
	switch m := msg.(type) {
	case message.Settle:
		if m.Token == s.payoutToken {
			return settleInstr{m}, nil
		}
		return swapAndSettleInstr{m}, nil
	case message.Cancel:
		return cancelInstr{m}, nil
	case message.Receipt:
		if m.Outcome == message.OutcomeAccepted || m.Outcome == message.OutcomeRejected {
			return payAnswerInstr{m}, nil
		}
	}
	return nil, fmt.Errorf("%s message at satellite: %w", msg.Kind(), model.ErrPayload)
}

// Receive handles envelopes from the hub.
func (s *Satellite) Receive(ctx context.Context, env bridge.Envelope) (err error) {
	started := time.Now()
	defer func() { s.observe("receive", started, err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := s.logger.With(zap.String("envelope", env.ID.Hex()))
	defer func() {
		if err != nil {
			e := s.event(model.EventMessageRejected)
			e.Actor = env.OriginSender
			e.Reason = model.ReasonOf(err)
			s.events.Record(ctx, e)
			logger.Warn("message rejected", zap.Error(err))
		}
	}()

	if env.Executor != s.executor {
		return model.ErrExecutor
	}
	if env.Origin != s.hubDomain || env.OriginSender != s.hubAddress {
		return model.ErrAuthorizedOrigin
	}
	msg, err := message.Decode(env.Payload)
	if err != nil {
		return err
	}
	instr, err := s.classify(msg)
	if err != nil {
		return err
	}

	switch in := instr.(type) {
	case settleInstr:
		return s.settle(ctx, logger, in.Settle, false)
	case swapAndSettleInstr:
		return s.settle(ctx, logger, in.Settle, true)
	case cancelInstr:
		return s.cancel(ctx, logger, in.Cancel)
	case payAnswerInstr:
		return s.answerPay(ctx, logger, in.Receipt)
	default:
		return model.ErrPayload
	}
}

func (s *Satellite) settle(ctx context.Context, logger *zap.Logger, m message.Settle, withSwap bool) error {
	if stored, ok := s.settlements[m.Key]; ok {
		logger.Info("settlement replayed", zap.String("key", m.Key.Hex()), zap.Stringer("outcome", stored.Outcome))
		return s.reply(ctx, stored)
	}

	var (
		receipt message.Receipt
		err     error
	)
	if withSwap {
		receipt, err = s.swapAndPay(ctx, m)
	} else {
		receipt, err = s.pay(m)
	}
	if err != nil {
		return err
	}

	s.settlements[m.Key] = receipt
	s.metrics.ObserveSettlement(receipt.Outcome, receipt.Reason)

	typ := model.EventSettlementConfirmed
	if receipt.Outcome == message.OutcomeFailed {
		typ = model.EventSettlementFailed
	}
	e := s.event(typ)
	e.PaymentID = m.PaymentID
	e.ProductID = m.ProductID
	e.Key = m.Key
	e.Actor = m.Seller
	e.Token = s.payoutToken
	e.Amount = receipt.Amount.Clone()
	e.Reason = receipt.Reason
	s.events.Record(ctx, e)
	logger.Info("settlement executed",
		zap.Uint64("payment_id", uint64(m.PaymentID)),
		zap.Stringer("outcome", receipt.Outcome),
		zap.String("reason", receipt.Reason),
		zap.String("amount", receipt.Amount.Dec()),
	)
	return s.reply(ctx, receipt)
}

// pay transfers the settlement amount to the seller from local liquidity.
// The returned error is reserved for failures worth a redelivery.
func (s *Satellite) pay(m message.Settle) (message.Receipt, error) {
	if reason, ok := s.precheck(m); !ok {
		return failed(m.Key, reason), nil
	}
	if err := s.ledger.Transfer(m.Token, s.address, m.Seller, m.Amount); err != nil {
		return message.Receipt{}, fmt.Errorf("pay seller %s: %w", m.Seller.Hex(), err)
	}
	return message.Receipt{Key: m.Key, Outcome: message.OutcomeConfirmed, Amount: m.Amount.Clone()}, nil
}

// swapAndPay swaps the settlement amount into the payout token and pays the
// seller. A swap whose transfer failed is not repeated on redelivery.
func (s *Satellite) swapAndPay(ctx context.Context, m message.Settle) (message.Receipt, error) {
	if out, ok := s.swapped[m.Key]; ok {
		return s.payOut(m, out)
	}
	if reason, ok := s.precheck(m); !ok {
		return failed(m.Key, reason), nil
	}

	started := time.Now()
	quote, err := s.swapper.Quote(ctx, m.Token, s.payoutToken, m.Amount)
	if err != nil {
		s.metrics.ObserveSwap(err, started)
		if errors.Is(err, swap.ErrNoLiquidity) || errors.Is(err, swap.ErrNoRoute) {
			return failed(m.Key, model.ErrLiquidity.Reason), nil
		}
		return message.Receipt{}, fmt.Errorf("quote %s: %w", m.Token.Hex(), err)
	}
	minOut := MinAmountOut(quote, s.slippageBps)

	out, err := s.swapper.Swap(ctx, swap.Request{
		Trader:       s.address,
		TokenIn:      m.Token,
		TokenOut:     s.payoutToken,
		AmountIn:     m.Amount,
		MinAmountOut: minOut,
	})
	s.metrics.ObserveSwap(err, started)
	switch {
	case errors.Is(err, swap.ErrSlippage):
		return failed(m.Key, model.ErrSlippage.Reason), nil
	case errors.Is(err, swap.ErrNoLiquidity), errors.Is(err, swap.ErrNoRoute):
		return failed(m.Key, model.ErrLiquidity.Reason), nil
	case err != nil:
		return message.Receipt{}, fmt.Errorf("swap %s: %w", m.Token.Hex(), err)
	}
	if out.Lt(minOut) {
		// the swapped funds stay in local liquidity
		return failed(m.Key, model.ErrSlippage.Reason), nil
	}

	s.swapped[m.Key] = out
	return s.payOut(m, out)
}

func (s *Satellite) payOut(m message.Settle, out *uint256.Int) (message.Receipt, error) {
	if err := s.ledger.Transfer(s.payoutToken, s.address, m.Seller, out); err != nil {
		return message.Receipt{}, fmt.Errorf("pay seller %s: %w", m.Seller.Hex(), err)
	}
	delete(s.swapped, m.Key)
	return message.Receipt{Key: m.Key, Outcome: message.OutcomeConfirmed, Amount: out.Clone()}, nil
}

// precheck re-validates a settlement against local state and returns the
// failure reason when it cannot be executed.
func (s *Satellite) precheck(m message.Settle) (string, bool) {
	if m.PayoutDomain != s.domain {
		return model.ErrDomain.Reason, false
	}
	if _, ok := s.accepted[m.Token]; !ok {
		return model.ErrSettlementToken.Reason, false
	}
	if m.Amount == nil || m.Amount.IsZero() {
		return model.ErrAmount.Reason, false
	}
	if s.ledger.BalanceOf(m.Token, s.address).Lt(m.Amount) {
		return model.ErrLiquidity.Reason, false
	}
	return "", true
}

// cancel arbitrates a hub cancellation: a settled key stays confirmed,
// anything else is tombstoned so a late Settle never pays.
func (s *Satellite) cancel(ctx context.Context, logger *zap.Logger, m message.Cancel) error {
	if stored, ok := s.settlements[m.Key]; ok {
		logger.Info("cancel for a decided settlement", zap.String("key", m.Key.Hex()), zap.Stringer("outcome", stored.Outcome))
		return s.reply(ctx, stored)
	}

	receipt := message.Receipt{Key: m.Key, Outcome: message.OutcomeCancelled, Amount: new(uint256.Int)}
	s.settlements[m.Key] = receipt
	// a swap already made stays in local liquidity
	delete(s.swapped, m.Key)
	s.metrics.ObserveSettlement(receipt.Outcome, "")

	e := s.event(model.EventSettlementCancelled)
	e.PaymentID = m.PaymentID
	e.Key = m.Key
	s.events.Record(ctx, e)
	logger.Info("settlement cancelled", zap.Uint64("payment_id", uint64(m.PaymentID)))
	return s.reply(ctx, receipt)
}

// answerPay resolves a payment this satellite forwarded. A rejected payment
// is refunded to the buyer.
func (s *Satellite) answerPay(ctx context.Context, logger *zap.Logger, r message.Receipt) error {
	p, ok := s.pays[r.Key]
	if !ok {
		logger.Warn("answer for unknown pay ignored", zap.String("key", r.Key.Hex()))
		return nil
	}
	if p.Status != PayPending {
		logger.Info("duplicate pay answer ignored", zap.String("key", r.Key.Hex()), zap.Stringer("status", p.Status))
		return nil
	}

	if r.Outcome == message.OutcomeAccepted {
		p.Status = PayAccepted
		logger.Info("pay accepted", zap.String("key", r.Key.Hex()))
		return nil
	}

	if err := s.ledger.Transfer(p.Token, s.address, p.Buyer, p.Total); err != nil {
		return fmt.Errorf("refund buyer %s: %w", p.Buyer.Hex(), err)
	}
	p.Status = PayRejected
	p.Reason = r.Reason

	e := s.event(model.EventCrosschainPayRefused)
	e.ProductID = p.ProductID
	e.Key = p.Key
	e.Actor = p.Buyer
	e.Token = p.Token
	e.Amount = p.Total.Clone()
	e.Reason = r.Reason
	s.events.Record(ctx, e)
	logger.Info("pay rejected, buyer refunded", zap.String("key", r.Key.Hex()), zap.String("reason", r.Reason))
	return nil
}

func (s *Satellite) reply(ctx context.Context, r message.Receipt) error {
	payload, err := message.Encode(r)
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}
	if _, err := s.bridge.Send(ctx, s.hubDomain, s.hubAddress, payload); err != nil {
		return fmt.Errorf("send receipt: %v: %w", err, model.ErrDelivery)
	}
	return nil
}

func failed(key common.Hash, reason string) message.Receipt {
	return message.Receipt{Key: key, Outcome: message.OutcomeFailed, Amount: new(uint256.Int), Reason: reason}
}

// MinAmountOut is quote * (10000 - bps) / 10000.
func MinAmountOut(quote *uint256.Int, bps uint64) *uint256.Int {
	out, overflow := new(uint256.Int).MulDivOverflow(quote, uint256.NewInt(bpsDenominator-bps), uint256.NewInt(bpsDenominator))
	if overflow {
		return quote.Clone()
	}
	return out
}
