package transport

import (
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/holiman/uint256"
)

// Amounts are rendered as decimal strings; they do not fit a JSON number.

type productView struct {
	ID                  uint64 `json:"id"`
	Seller              string `json:"seller"`
	Price               string `json:"price"`
	Token               string `json:"token"`
	Enabled             bool   `json:"enabled"`
	OutputPaymentDomain uint32 `json:"output_payment_domain"`
	Stock               uint64 `json:"stock"`
}

func newProductView(p model.Product) productView {
	return productView{
		ID:                  uint64(p.ID),
		Seller:              p.Seller.Hex(),
		Price:               dec(p.Price),
		Token:               p.Token.Hex(),
		Enabled:             p.Enabled,
		OutputPaymentDomain: uint32(p.OutputPaymentDomain),
		Stock:               p.Stock,
	}
}

type paymentView struct {
	ID            uint64    `json:"id"`
	Key           string    `json:"key"`
	ProductID     uint64    `json:"product_id"`
	Buyer         string    `json:"buyer"`
	Seller        string    `json:"seller"`
	Token         string    `json:"token"`
	Principal     string    `json:"principal"`
	Shipping      string    `json:"shipping"`
	Fee           string    `json:"fee"`
	OriginDomain  uint32    `json:"origin_domain"`
	OutputDomain  uint32    `json:"output_domain"`
	Status        string    `json:"status"`
	Settlement    string    `json:"settlement"`
	FailureReason string    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func newPaymentView(p model.Payment) paymentView {
	return paymentView{
		ID:            uint64(p.ID),
		Key:           p.Key.Hex(),
		ProductID:     uint64(p.ProductID),
		Buyer:         p.Buyer.Hex(),
		Seller:        p.Seller.Hex(),
		Token:         p.Token.Hex(),
		Principal:     dec(p.Principal),
		Shipping:      dec(p.Shipping),
		Fee:           dec(p.Fee),
		OriginDomain:  uint32(p.OriginDomain),
		OutputDomain:  uint32(p.OutputDomain),
		Status:        p.Status.String(),
		Settlement:    p.Settlement.String(),
		FailureReason: p.FailureReason,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

type pendingFeeView struct {
	Fee           string    `json:"fee"`
	Percent       string    `json:"percent"`
	EarliestApply time.Time `json:"earliest_apply"`
}

type feeView struct {
	Fee     string          `json:"fee"`
	Percent string          `json:"percent"`
	Pending *pendingFeeView `json:"pending,omitempty"`
}

type eventView struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	Actor      string    `json:"actor"`
	Token      string    `json:"token"`
	Amount     string    `json:"amount"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newEventView(e model.Event) eventView {
	return eventView{
		ID:         e.ID.String(),
		Type:       string(e.Type),
		Key:        e.Key.Hex(),
		Actor:      e.Actor.Hex(),
		Token:      e.Token.Hex(),
		Amount:     dec(e.Amount),
		Reason:     e.Reason,
		OccurredAt: e.OccurredAt,
	}
}

func dec(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}
