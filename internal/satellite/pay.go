package satellite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/message"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/swap"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

// PayRequest buys a hub product from this domain. Total is price plus
// shipping in the hub token; AmountIn of TokenIn is swapped into its local
// equivalent when TokenIn differs.
type PayRequest struct {
	Buyer        common.Address
	ProductID    model.ProductID
	HubToken     common.Address
	ShippingCost *uint256.Int
	Nonce        uint64
	Signature    []byte
	TokenIn      common.Address
	AmountIn     *uint256.Int
	Total        *uint256.Int
}

// PayProduct collects the payment locally and forwards it to the hub. The
// hub's answer arrives asynchronously; a rejection refunds the buyer.
func (s *Satellite) PayProduct(ctx context.Context, req PayRequest) (key common.Hash, err error) {
	started := time.Now()
	defer func() { s.observe("pay_product", started, err) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	local, ok := s.localToken(req.HubToken)
	if !ok {
		return common.Hash{}, model.ErrBinding
	}
	if req.Total == nil || req.Total.IsZero() || req.AmountIn == nil || req.AmountIn.IsZero() {
		return common.Hash{}, model.ErrValue
	}
	if _, ok := s.accepted[req.TokenIn]; !ok {
		return common.Hash{}, model.ErrSettlementToken
	}
	ident := payIdent{buyer: req.Buyer, nonce: req.Nonce}
	if prev, ok := s.latestPay[ident]; ok && s.pays[prev].Status != PayRejected {
		return common.Hash{}, model.ErrNonce
	}
	key = message.PayKey(s.domain, req.Buyer, req.Nonce, s.paySeq)

	if err = s.collect(ctx, req, local); err != nil {
		return common.Hash{}, err
	}

	payload, err := message.Encode(message.Pay{
		Key:          key,
		ProductID:    req.ProductID,
		Buyer:        req.Buyer,
		HubToken:     req.HubToken,
		ShippingCost: req.ShippingCost,
		Nonce:        req.Nonce,
		Signature:    req.Signature,
		Total:        req.Total,
	})
	if err == nil {
		_, err = s.bridge.Send(ctx, s.hubDomain, s.hubAddress, payload)
	}
	if err != nil {
		if rerr := s.ledger.Transfer(local, s.address, req.Buyer, req.Total); rerr != nil {
			s.logger.Error("failed to return payment after send failure", zap.String("key", key.Hex()), zap.Error(rerr))
		}
		return common.Hash{}, fmt.Errorf("send pay: %v: %w", err, model.ErrDelivery)
	}

	s.paySeq++
	s.latestPay[ident] = key
	s.pays[key] = &Pay{
		Key:       key,
		ProductID: req.ProductID,
		Buyer:     req.Buyer,
		Token:     local,
		Total:     req.Total.Clone(),
		Status:    PayPending,
	}

	e := s.event(model.EventCrosschainPaySent)
	e.ProductID = req.ProductID
	e.Key = key
	e.Actor = req.Buyer
	e.Token = local
	e.Amount = req.Total.Clone()
	s.events.Record(ctx, e)
	s.logger.Info("pay forwarded to hub",
		zap.String("key", key.Hex()),
		zap.Uint64("product_id", uint64(req.ProductID)),
		zap.String("total", req.Total.Dec()),
	)
	return key, nil
}

// payIdent is the hub nonce a satellite payment spends. Only one attempt per
// ident may be in flight or accepted.
type payIdent struct {
	buyer common.Address
	nonce uint64
}

// collect leaves exactly Total of local in the satellite account.
func (s *Satellite) collect(ctx context.Context, req PayRequest, local common.Address) error {
	if req.TokenIn == local {
		if !req.AmountIn.Eq(req.Total) {
			return model.ErrValue
		}
		if err := s.ledger.Transfer(local, req.Buyer, s.address, req.Total); err != nil {
			return fmt.Errorf("collect payment: %v: %w", err, model.ErrFunds)
		}
		return nil
	}

	if err := s.ledger.Transfer(req.TokenIn, req.Buyer, s.address, req.AmountIn); err != nil {
		return fmt.Errorf("collect payment: %v: %w", err, model.ErrFunds)
	}

	started := time.Now()
	out, err := s.swapper.Swap(ctx, swap.Request{
		Trader:       s.address,
		TokenIn:      req.TokenIn,
		TokenOut:     local,
		AmountIn:     req.AmountIn,
		MinAmountOut: req.Total,
	})
	s.metrics.ObserveSwap(err, started)
	if err != nil {
		s.giveBack(req.TokenIn, req.Buyer, req.AmountIn)
		switch {
		case errors.Is(err, swap.ErrSlippage):
			return fmt.Errorf("swap payment: %v: %w", err, model.ErrSlippage)
		case errors.Is(err, swap.ErrNoLiquidity), errors.Is(err, swap.ErrNoRoute):
			return fmt.Errorf("swap payment: %v: %w", err, model.ErrLiquidity)
		default:
			return fmt.Errorf("swap payment: %w", err)
		}
	}
	if out.Lt(req.Total) {
		s.giveBack(local, req.Buyer, out)
		return fmt.Errorf("swap payment returned %s: %w", out.Dec(), model.ErrSlippage)
	}
	if surplus := new(uint256.Int).Sub(out, req.Total); !surplus.IsZero() {
		s.giveBack(local, req.Buyer, surplus)
	}
	return nil
}

func (s *Satellite) giveBack(token, buyer common.Address, amount *uint256.Int) {
	if err := s.ledger.Transfer(token, s.address, buyer, amount); err != nil {
		s.logger.Error("failed to return funds to buyer",
			zap.String("buyer", buyer.Hex()),
			zap.String("token", token.Hex()),
			zap.String("amount", amount.Dec()),
			zap.Error(err),
		)
	}
}
