package hub

import (
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func (h *Hub) Product(id model.ProductID) (model.Product, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.products[id]
	if !ok {
		return model.Product{}, false
	}
	return p.Clone(), true
}

// ProductIDs lists product ids in creation order.
func (h *Hub) ProductIDs() []model.ProductID {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]model.ProductID, len(h.productIDs))
	copy(out, h.productIDs)
	return out
}

func (h *Hub) SettlementTokens() []common.Address {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]common.Address, len(h.tokenOrder))
	copy(out, h.tokenOrder)
	return out
}

func (h *Hub) Arm(domain model.Domain) (common.Address, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	arm, ok := h.arms[domain]
	return arm, ok
}

// Binding returns the token hubToken pays out as on domain.
func (h *Hub) Binding(domain model.Domain, hubToken common.Address) (common.Address, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.foreignToken(domain, hubToken)
}

func (h *Hub) IsWhitelisted(addr common.Address) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.whitelist[addr]
}

func (h *Hub) Fee() *uint256.Int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fee.Clone()
}

func (h *Hub) PendingFee() (model.PendingFee, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pendingFee == nil {
		return model.PendingFee{}, false
	}
	return model.PendingFee{NewFee: h.pendingFee.NewFee.Clone(), EarliestApply: h.pendingFee.EarliestApply}, true
}

// Nonce is the next nonce a shipping quote for buyer must carry.
func (h *Hub) Nonce(buyer common.Address) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.nonces[buyer]
}

func (h *Hub) AllowedSigner() common.Address {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.allowedSigner
}

func (h *Hub) Owner() common.Address {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.owner
}

func (h *Hub) Payment(id model.PaymentID) (model.Payment, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.payments[id]
	if !ok {
		return model.Payment{}, false
	}
	return p.Clone(), true
}

func (h *Hub) AccruedFees(token common.Address) *uint256.Int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return amountOrZero(h.feesAccrued[token])
}

func (h *Hub) AccruedShipping(token common.Address) *uint256.Int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return amountOrZero(h.shippingAccrued[token])
}

func amountOrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v.Clone()
}
