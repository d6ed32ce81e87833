package model

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

const feeDecimals = 18

var (
	// FeeUnit is one percent.
	FeeUnit = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(feeDecimals))
	// MaxFee is one hundred percent.
	MaxFee = new(uint256.Int).Mul(uint256.NewInt(100), FeeUnit)
)

// PendingFee is a fee change waiting for its timelock.
type PendingFee struct {
	NewFee        *uint256.Int
	EarliestApply time.Time
}

// FeeAmount returns price * fee / MaxFee, rounded down.
func FeeAmount(price, fee *uint256.Int) *uint256.Int {
	amount, overflow := new(uint256.Int).MulDivOverflow(price, fee, MaxFee)
	if overflow {
		// fee <= MaxFee keeps the result below price
		return price.Clone()
	}
	return amount
}

// ParseFeePercent parses a decimal percentage such as "1.5" into the 1e18-scaled fee unit.
func ParseFeePercent(s string) (*uint256.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("parse fee percent: %w", err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("fee percent %s is negative", s)
	}
	scaled := d.Shift(feeDecimals)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("fee percent %s has more than %d decimals", s, feeDecimals)
	}
	fee, overflow := uint256.FromBig(scaled.BigInt())
	if overflow || fee.Gt(MaxFee) {
		return nil, fmt.Errorf("fee percent %s exceeds 100", s)
	}
	return fee, nil
}

// FormatFeePercent renders a scaled fee as a decimal percentage.
func FormatFeePercent(fee *uint256.Int) string {
	if fee == nil {
		return "0"
	}
	return decimal.NewFromBigInt(fee.ToBig(), -feeDecimals).String()
}
