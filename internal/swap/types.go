package swap

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

var (
	// ErrSlippage means the swap would return less than the requested minimum.
	ErrSlippage    = errors.New("swap: output below minimum")
	ErrNoLiquidity = errors.New("swap: no liquidity")
	ErrNoRoute     = errors.New("swap: no route")
)

// Request converts AmountIn of TokenIn held by Trader into TokenOut.
type Request struct {
	Trader       common.Address
	TokenIn      common.Address
	TokenOut     common.Address
	AmountIn     *uint256.Int
	MinAmountOut *uint256.Int
}

type (
	// Swapper is the AMM primitive.
	Swapper interface {
		Quote(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *uint256.Int) (*uint256.Int, error)
		Swap(ctx context.Context, req Request) (*uint256.Int, error)
	}
	Ledger interface {
		Transfer(token, from, to common.Address, amount *uint256.Int) error
	}
)
