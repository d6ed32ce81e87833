package hub

import (
	"context"
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// AddArm registers the satellite contract serving domain.
func (h *Hub) AddArm(_ context.Context, caller common.Address, domain model.Domain, arm common.Address) (err error) {
	started := time.Now()
	defer func() { h.observe("add_arm", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	if err = h.requireOwner(caller); err != nil {
		return err
	}
	if !domain.Valid() {
		return model.ErrDomain
	}
	if model.IsZeroAddress(arm) {
		return model.ErrContractAddress
	}
	if _, ok := h.arms[domain]; ok {
		return model.ErrArmExists
	}
	h.arms[domain] = arm
	h.logger.Info("arm added", zap.Uint32("arm_domain", uint32(domain)), zap.String("arm", arm.Hex()))
	return nil
}

func (h *Hub) UpdateArm(_ context.Context, caller common.Address, domain model.Domain, arm common.Address) (err error) {
	started := time.Now()
	defer func() { h.observe("update_arm", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	if err = h.requireOwner(caller); err != nil {
		return err
	}
	if model.IsZeroAddress(arm) {
		return model.ErrContractAddress
	}
	if _, ok := h.arms[domain]; !ok {
		return model.ErrNotExists
	}
	h.arms[domain] = arm
	h.logger.Info("arm updated", zap.Uint32("arm_domain", uint32(domain)), zap.String("arm", arm.Hex()))
	return nil
}

func (h *Hub) AddSettlementToken(_ context.Context, caller, token common.Address) (err error) {
	started := time.Now()
	defer func() { h.observe("add_settlement_token", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	if err = h.requireOwner(caller); err != nil {
		return err
	}
	if model.IsZeroAddress(token) {
		return model.ErrZeroAddress
	}
	if _, ok := h.tokens[token]; ok {
		return model.ErrTokenExists
	}
	h.addToken(token)
	return nil
}

func (h *Hub) RemoveSettlementToken(_ context.Context, caller, token common.Address) (err error) {
	started := time.Now()
	defer func() { h.observe("remove_settlement_token", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	if err = h.requireOwner(caller); err != nil {
		return err
	}
	if model.IsZeroAddress(token) {
		return model.ErrZeroAddress
	}
	if _, ok := h.tokens[token]; !ok {
		return model.ErrNotExists
	}
	delete(h.tokens, token)
	for i, t := range h.tokenOrder {
		if t == token {
			h.tokenOrder = append(h.tokenOrder[:i], h.tokenOrder[i+1:]...)
			break
		}
	}
	return nil
}

// BindSettlementToken maps hubToken to its equivalent on domain.
func (h *Hub) BindSettlementToken(_ context.Context, caller common.Address, domain model.Domain, hubToken, foreignToken common.Address) (err error) {
	started := time.Now()
	defer func() { h.observe("bind_settlement_token", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.bind(caller, domain, hubToken, foreignToken)
}

func (h *Hub) UpdateBindSettlementToken(_ context.Context, caller common.Address, domain model.Domain, hubToken, foreignToken common.Address) (err error) {
	started := time.Now()
	defer func() { h.observe("update_bind_settlement_token", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.bind(caller, domain, hubToken, foreignToken)
}

func (h *Hub) bind(caller common.Address, domain model.Domain, hubToken, foreignToken common.Address) error {
	if err := h.requireOwner(caller); err != nil {
		return err
	}
	if !domain.Valid() {
		return model.ErrDomain
	}
	if _, ok := h.tokens[hubToken]; !ok {
		return model.ErrInvalidToken
	}
	h.bindings[bindingKey{domain: domain, token: hubToken}] = foreignToken
	return nil
}

func (h *Hub) AddWhitelistedSeller(_ context.Context, caller, seller common.Address) (err error) {
	started := time.Now()
	defer func() { h.observe("add_whitelisted_seller", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	if err = h.requireOwner(caller); err != nil {
		return err
	}
	h.whitelist[seller] = true
	return nil
}

func (h *Hub) RemoveWhitelistedSeller(_ context.Context, caller, seller common.Address) (err error) {
	started := time.Now()
	defer func() { h.observe("remove_whitelisted_seller", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	if err = h.requireOwner(caller); err != nil {
		return err
	}
	delete(h.whitelist, seller)
	return nil
}

func (h *Hub) addToken(token common.Address) {
	h.tokens[token] = struct{}{}
	h.tokenOrder = append(h.tokenOrder, token)
}

// foreignToken resolves the token a payout on domain is made in.
func (h *Hub) foreignToken(domain model.Domain, token common.Address) (common.Address, bool) {
	if token == model.NativeToken {
		if foreign, ok := h.bindings[bindingKey{domain: domain, token: token}]; ok {
			return foreign, true
		}
		return model.NativeToken, true
	}
	foreign, ok := h.bindings[bindingKey{domain: domain, token: token}]
	return foreign, ok
}
