package hub

import (
	"context"
	"fmt"
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/pkg/safe"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// SubmitProduct lists a new product. It is enabled on creation.
func (h *Hub) SubmitProduct(ctx context.Context, caller common.Address, product model.Product) (err error) {
	started := time.Now()
	defer func() { h.observe("submit_product", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	staged, _, err := h.stageSubmit(caller, []model.Product{product})
	if err != nil {
		return err
	}
	h.commitProducts(ctx, staged, model.EventProductSubmitted)
	return nil
}

// BatchSubmitProduct lists all products or none of them.
func (h *Hub) BatchSubmitProduct(ctx context.Context, caller common.Address, products []model.Product) (err error) {
	started := time.Now()
	defer func() { h.observe("batch_submit_product", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	staged, i, err := h.stageSubmit(caller, products)
	if err != nil {
		return fmt.Errorf("product at %d: %w", i, err)
	}
	h.commitProducts(ctx, staged, model.EventProductSubmitted)
	return nil
}

// UpdateProduct overwrites every field of a product.
func (h *Hub) UpdateProduct(ctx context.Context, caller common.Address, product model.Product) (err error) {
	started := time.Now()
	defer func() { h.observe("update_product", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	staged, _, err := h.stageUpdate(caller, []model.Product{product})
	if err != nil {
		return err
	}
	h.commitProducts(ctx, staged, model.EventProductUpdated)
	return nil
}

func (h *Hub) BatchUpdateProduct(ctx context.Context, caller common.Address, products []model.Product) (err error) {
	started := time.Now()
	defer func() { h.observe("batch_update_product", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	staged, i, err := h.stageUpdate(caller, products)
	if err != nil {
		return fmt.Errorf("product at %d: %w", i, err)
	}
	h.commitProducts(ctx, staged, model.EventProductUpdated)
	return nil
}

func (h *Hub) SwitchEnable(ctx context.Context, caller common.Address, id model.ProductID, enabled bool) (err error) {
	started := time.Now()
	defer func() { h.observe("switch_enable", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.switchEnable(ctx, caller, []model.ProductID{id}, enabled)
}

func (h *Hub) BatchSwitchEnable(ctx context.Context, caller common.Address, ids []model.ProductID, enabled bool) (err error) {
	started := time.Now()
	defer func() { h.observe("batch_switch_enable", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.switchEnable(ctx, caller, ids, enabled)
}

func (h *Hub) AddStock(ctx context.Context, caller common.Address, id model.ProductID, delta uint64) (err error) {
	started := time.Now()
	defer func() { h.observe("add_stock", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.adjustStock(ctx, caller, []model.ProductID{id}, []uint64{delta}, safe.AddUint64)
}

func (h *Hub) RemoveStock(ctx context.Context, caller common.Address, id model.ProductID, delta uint64) (err error) {
	started := time.Now()
	defer func() { h.observe("remove_stock", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.adjustStock(ctx, caller, []model.ProductID{id}, []uint64{delta}, safe.SubUint64)
}

// BatchAddStock adds deltas[i] to the stock of ids[i].
func (h *Hub) BatchAddStock(ctx context.Context, caller common.Address, ids []model.ProductID, deltas []uint64) (err error) {
	started := time.Now()
	defer func() { h.observe("batch_add_stock", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.adjustStock(ctx, caller, ids, deltas, safe.AddUint64)
}

func (h *Hub) BatchRemoveStock(ctx context.Context, caller common.Address, ids []model.ProductID, deltas []uint64) (err error) {
	started := time.Now()
	defer func() { h.observe("batch_remove_stock", started, err) }()
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.adjustStock(ctx, caller, ids, deltas, safe.SubUint64)
}

func (h *Hub) validateProduct(p model.Product, creating bool) error {
	if p.ID == 0 {
		return model.ErrProductID
	}
	if p.Price == nil || p.Price.IsZero() {
		return model.ErrPrice
	}
	if model.IsZeroAddress(p.Seller) {
		return model.ErrSeller
	}
	if creating && p.Stock == 0 {
		return model.ErrStock
	}
	if _, ok := h.tokens[p.Token]; !ok {
		return model.ErrSettlementToken
	}
	if !p.OutputPaymentDomain.Valid() {
		return model.ErrDomain
	}
	return nil
}

// authorizeSeller lets the owner act on any product and a whitelisted seller
// only on products it sells.
func (h *Hub) authorizeSeller(caller common.Address, sellers ...common.Address) error {
	if caller == h.owner {
		return nil
	}
	if !h.whitelist[caller] {
		return model.ErrWhitelisted
	}
	for _, seller := range sellers {
		if seller != caller {
			return model.ErrWhitelisted
		}
	}
	return nil
}

func (h *Hub) stageSubmit(caller common.Address, products []model.Product) ([]model.Product, int, error) {
	staged := make([]model.Product, 0, len(products))
	seen := make(map[model.ProductID]struct{}, len(products))
	for i, p := range products {
		if err := h.validateProduct(p, true); err != nil {
			return nil, i, err
		}
		if _, ok := h.products[p.ID]; ok {
			return nil, i, model.ErrProductExists
		}
		if _, ok := seen[p.ID]; ok {
			return nil, i, model.ErrProductExists
		}
		if err := h.authorizeSeller(caller, p.Seller); err != nil {
			return nil, i, err
		}
		seen[p.ID] = struct{}{}
		p = p.Clone()
		p.Enabled = true
		staged = append(staged, p)
	}
	return staged, 0, nil
}

func (h *Hub) stageUpdate(caller common.Address, products []model.Product) ([]model.Product, int, error) {
	staged := make([]model.Product, 0, len(products))
	for i, p := range products {
		if err := h.validateProduct(p, false); err != nil {
			return nil, i, err
		}
		sellers := []common.Address{p.Seller}
		if current, ok := h.products[p.ID]; ok {
			sellers = append(sellers, current.Seller)
		}
		if err := h.authorizeSeller(caller, sellers...); err != nil {
			return nil, i, err
		}
		staged = append(staged, p.Clone())
	}
	return staged, 0, nil
}

func (h *Hub) commitProducts(ctx context.Context, staged []model.Product, typ model.EventType) {
	for _, p := range staged {
		if _, ok := h.products[p.ID]; !ok {
			h.productIDs = append(h.productIDs, p.ID)
		}
		h.products[p.ID] = p

		e := h.event(typ)
		e.ProductID = p.ID
		e.Actor = p.Seller
		e.Token = p.Token
		e.Amount = p.Price.Clone()
		h.record(ctx, e)
	}
	h.logger.Info("products committed", zap.String("event", string(typ)), zap.Int("count", len(staged)))
}

func (h *Hub) switchEnable(_ context.Context, caller common.Address, ids []model.ProductID, enabled bool) error {
	for i, id := range ids {
		p, ok := h.products[id]
		if !ok {
			return fmt.Errorf("product at %d: %w", i, model.ErrNotExists)
		}
		if err := h.authorizeSeller(caller, p.Seller); err != nil {
			return fmt.Errorf("product at %d: %w", i, err)
		}
	}
	for _, id := range ids {
		p := h.products[id]
		p.Enabled = enabled
		h.products[id] = p
	}
	return nil
}

func (h *Hub) adjustStock(_ context.Context, caller common.Address, ids []model.ProductID, deltas []uint64, apply func(a, b uint64) (uint64, error)) error {
	if len(ids) != len(deltas) {
		return model.ErrLength
	}
	staged := make(map[model.ProductID]uint64, len(ids))
	for i, id := range ids {
		p, ok := h.products[id]
		if !ok {
			return fmt.Errorf("product at %d: %w", i, model.ErrNotExists)
		}
		if err := h.authorizeSeller(caller, p.Seller); err != nil {
			return fmt.Errorf("product at %d: %w", i, err)
		}
		current, ok := staged[id]
		if !ok {
			current = p.Stock
		}
		next, err := apply(current, deltas[i])
		if err != nil {
			return fmt.Errorf("product at %d: %v: %w", i, err, model.ErrStock)
		}
		staged[id] = next
	}
	for id, stock := range staged {
		p := h.products[id]
		p.Stock = stock
		h.products[id] = p
	}
	return nil
}
