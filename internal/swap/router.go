// Package swap converts between tokens of one domain through constant-product pools.
package swap

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

const (
	bpsDenominator = 10_000
	defaultFeeBps  = 30
)

type pairKey struct {
	a, b common.Address
}

func keyOf(x, y common.Address) pairKey {
	if x.Cmp(y) < 0 {
		return pairKey{a: x, b: y}
	}
	return pairKey{a: y, b: x}
}

// pair is an x*y=k pool whose reserves live on the ledger under address.
type pair struct {
	address  common.Address
	reserves map[common.Address]*uint256.Int
}

func (p *pair) amountOut(tokenIn, tokenOut common.Address, amountIn *uint256.Int, feeBps uint64) (*uint256.Int, error) {
	reserveIn, reserveOut := p.reserves[tokenIn], p.reserves[tokenOut]
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, ErrNoLiquidity
	}
	inWithFee := new(uint256.Int).Mul(amountIn, uint256.NewInt(bpsDenominator-feeBps))
	numerator := new(uint256.Int).Mul(inWithFee, reserveOut)
	denominator := new(uint256.Int).Mul(reserveIn, uint256.NewInt(bpsDenominator))
	denominator.Add(denominator, inWithFee)
	out := new(uint256.Int).Div(numerator, denominator)
	if out.IsZero() || !out.Lt(reserveOut) {
		return nil, ErrNoLiquidity
	}
	return out, nil
}

type hop struct {
	pair      *pair
	tokenIn   common.Address
	tokenOut  common.Address
	amountIn  *uint256.Int
	amountOut *uint256.Int
}

// Router swaps directly when a pool exists, otherwise through the base token.
type Router struct {
	logger *zap.Logger
	ledger Ledger
	base   common.Address
	feeBps uint64

	mu    sync.Mutex
	pairs map[pairKey]*pair
}

func NewRouter(ledger Ledger, base common.Address, logger *zap.Logger) *Router {
	return &Router{
		logger: logger,
		ledger: ledger,
		base:   base,
		feeBps: defaultFeeBps,
		pairs:  make(map[pairKey]*pair),
	}
}

// AddLiquidity moves both amounts from provider into the tokenA/tokenB pool,
// creating the pool on first use.
func (r *Router) AddLiquidity(provider, tokenA, tokenB common.Address, amountA, amountB *uint256.Int) error {
	if tokenA == tokenB {
		return fmt.Errorf("add liquidity: identical tokens %s", tokenA.Hex())
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.pairFor(tokenA, tokenB, true)
	if err := r.ledger.Transfer(tokenA, provider, p.address, amountA); err != nil {
		return fmt.Errorf("add liquidity %s: %w", tokenA.Hex(), err)
	}
	if err := r.ledger.Transfer(tokenB, provider, p.address, amountB); err != nil {
		if refundErr := r.ledger.Transfer(tokenA, p.address, provider, amountA); refundErr != nil {
			r.logger.Error("refund liquidity failed", zap.Error(refundErr))
		}
		return fmt.Errorf("add liquidity %s: %w", tokenB.Hex(), err)
	}
	p.reserves[tokenA].Add(p.reserves[tokenA], amountA)
	p.reserves[tokenB].Add(p.reserves[tokenB], amountB)
	return nil
}

// Reserves returns the pool balances of tokenA and tokenB.
func (r *Router) Reserves(tokenA, tokenB common.Address) (*uint256.Int, *uint256.Int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.pairFor(tokenA, tokenB, false)
	if p == nil {
		return new(uint256.Int), new(uint256.Int)
	}
	return p.reserves[tokenA].Clone(), p.reserves[tokenB].Clone()
}

func (r *Router) Quote(_ context.Context, tokenIn, tokenOut common.Address, amountIn *uint256.Int) (*uint256.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hops, err := r.route(tokenIn, tokenOut, amountIn)
	if err != nil {
		return nil, err
	}
	return hops[len(hops)-1].amountOut.Clone(), nil
}

// Swap executes req atomically: nothing moves unless the final output reaches MinAmountOut.
func (r *Router) Swap(_ context.Context, req Request) (*uint256.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hops, err := r.route(req.TokenIn, req.TokenOut, req.AmountIn)
	if err != nil {
		return nil, err
	}
	out := hops[len(hops)-1].amountOut
	if req.MinAmountOut != nil && out.Lt(req.MinAmountOut) {
		return nil, fmt.Errorf("%s < %s: %w", out.Dec(), req.MinAmountOut.Dec(), ErrSlippage)
	}

	if err := r.ledger.Transfer(req.TokenIn, req.Trader, hops[0].pair.address, req.AmountIn); err != nil {
		return nil, fmt.Errorf("pull swap input: %w", err)
	}
	for i, h := range hops {
		recipient := req.Trader
		if i+1 < len(hops) {
			recipient = hops[i+1].pair.address
		}
		if err := r.ledger.Transfer(h.tokenOut, h.pair.address, recipient, h.amountOut); err != nil {
			return nil, fmt.Errorf("pay swap hop %d: %w", i, err)
		}
		h.pair.reserves[h.tokenIn].Add(h.pair.reserves[h.tokenIn], h.amountIn)
		h.pair.reserves[h.tokenOut].Sub(h.pair.reserves[h.tokenOut], h.amountOut)
	}

	r.logger.Debug("swapped",
		zap.String("token_in", req.TokenIn.Hex()),
		zap.String("token_out", req.TokenOut.Hex()),
		zap.String("amount_in", req.AmountIn.Dec()),
		zap.String("amount_out", out.Dec()),
	)
	return out.Clone(), nil
}

func (r *Router) route(tokenIn, tokenOut common.Address, amountIn *uint256.Int) ([]hop, error) {
	if tokenIn == tokenOut {
		return nil, fmt.Errorf("%s to itself: %w", tokenIn.Hex(), ErrNoRoute)
	}
	if amountIn == nil || amountIn.IsZero() {
		return nil, fmt.Errorf("zero input: %w", ErrNoLiquidity)
	}

	path := []common.Address{tokenIn, tokenOut}
	if r.pairFor(tokenIn, tokenOut, false) == nil {
		if tokenIn == r.base || tokenOut == r.base {
			return nil, fmt.Errorf("%s/%s: %w", tokenIn.Hex(), tokenOut.Hex(), ErrNoRoute)
		}
		path = []common.Address{tokenIn, r.base, tokenOut}
	}

	hops := make([]hop, 0, len(path)-1)
	amount := amountIn
	for i := 0; i+1 < len(path); i++ {
		p := r.pairFor(path[i], path[i+1], false)
		if p == nil {
			return nil, fmt.Errorf("%s/%s: %w", path[i].Hex(), path[i+1].Hex(), ErrNoRoute)
		}
		out, err := p.amountOut(path[i], path[i+1], amount, r.feeBps)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", path[i].Hex(), path[i+1].Hex(), err)
		}
		hops = append(hops, hop{pair: p, tokenIn: path[i], tokenOut: path[i+1], amountIn: amount, amountOut: out})
		amount = out
	}
	return hops, nil
}

func (r *Router) pairFor(tokenA, tokenB common.Address, create bool) *pair {
	key := keyOf(tokenA, tokenB)
	if p, ok := r.pairs[key]; ok {
		return p
	}
	if !create {
		return nil
	}
	p := &pair{
		address: common.BytesToAddress(crypto.Keccak256(key.a.Bytes(), key.b.Bytes())),
		reserves: map[common.Address]*uint256.Int{
			key.a: new(uint256.Int),
			key.b: new(uint256.Int),
		},
	}
	r.pairs[key] = p
	return p
}
