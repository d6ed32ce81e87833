package hub

import (
	"context"
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

// PrepareFee schedules newFee. A later call replaces the pending change and restarts the timelock.
func (h *Hub) PrepareFee(ctx context.Context, caller common.Address, newFee *uint256.Int) (err error) {
	started := time.Now()
	defer func() { h.observe("prepare_fee", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	if err = h.requireOwner(caller); err != nil {
		return err
	}
	if newFee == nil || newFee.Gt(model.MaxFee) {
		return model.ErrFee
	}
	h.pendingFee = &model.PendingFee{
		NewFee:        newFee.Clone(),
		EarliestApply: h.clock.Now().Add(h.feeDelay),
	}

	e := h.event(model.EventFeePrepared)
	e.Actor = caller
	e.Amount = newFee.Clone()
	h.record(ctx, e)
	h.logger.Info("fee prepared",
		zap.String("fee_percent", model.FormatFeePercent(newFee)),
		zap.Time("earliest_apply", h.pendingFee.EarliestApply),
	)
	return nil
}

func (h *Hub) ImplementFee(ctx context.Context, caller common.Address) (err error) {
	started := time.Now()
	defer func() { h.observe("implement_fee", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	if err = h.requireOwner(caller); err != nil {
		return err
	}
	if h.pendingFee == nil {
		return model.ErrNotPrepared
	}
	if h.clock.Now().Before(h.pendingFee.EarliestApply) {
		return model.ErrLocked
	}
	h.fee = h.pendingFee.NewFee
	h.pendingFee = nil

	e := h.event(model.EventFeeImplemented)
	e.Actor = caller
	e.Amount = h.fee.Clone()
	h.record(ctx, e)
	h.logger.Info("fee implemented", zap.String("fee_percent", model.FormatFeePercent(h.fee)))
	return nil
}

func (h *Hub) ChangeAllowedSigner(_ context.Context, caller, signer common.Address) (err error) {
	started := time.Now()
	defer func() { h.observe("change_allowed_signer", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	if err = h.requireOwner(caller); err != nil {
		return err
	}
	if model.IsZeroAddress(signer) {
		return model.ErrZeroAddress
	}
	h.allowedSigner = signer
	h.logger.Info("allowed signer changed", zap.String("signer", signer.Hex()))
	return nil
}
