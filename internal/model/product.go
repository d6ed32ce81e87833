package model

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type ProductID uint64

// Product is a catalogue listing. Products are never deleted, only disabled.
type Product struct {
	ID                  ProductID
	Seller              common.Address
	Price               *uint256.Int
	Token               common.Address
	Enabled             bool
	OutputPaymentDomain Domain
	Stock               uint64
}

// Clone returns a copy that shares no mutable state with p.
func (p Product) Clone() Product {
	if p.Price != nil {
		p.Price = p.Price.Clone()
	}
	return p
}
