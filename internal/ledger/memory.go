// Package ledger keeps fungible-token balances for one domain in memory.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

// Memory is a token -> account -> balance table. The zero token address is
// the domain's native currency.
type Memory struct {
	mu       sync.Mutex
	balances map[common.Address]map[common.Address]*uint256.Int
}

func NewMemory() *Memory {
	return &Memory{balances: make(map[common.Address]map[common.Address]*uint256.Int)}
}

// Mint credits amount of token to account out of thin air.
func (m *Memory) Mint(token, account common.Address, amount *uint256.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bal := m.balance(token, account)
	bal.Add(bal, amount)
}

func (m *Memory) BalanceOf(token, account common.Address) *uint256.Int {
	m.mu.Lock()
	defer m.mu.Unlock()

	accounts, ok := m.balances[token]
	if !ok {
		return new(uint256.Int)
	}
	bal, ok := accounts[account]
	if !ok {
		return new(uint256.Int)
	}
	return bal.Clone()
}

// Transfer moves amount of token between accounts, failing without effect
// when from holds less than amount.
func (m *Memory) Transfer(token, from, to common.Address, amount *uint256.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	src := m.balance(token, from)
	if src.Lt(amount) {
		return fmt.Errorf("transfer %s of %s from %s: %w", amount.Dec(), token.Hex(), from.Hex(), ErrInsufficientBalance)
	}
	src.Sub(src, amount)
	dst := m.balance(token, to)
	dst.Add(dst, amount)
	return nil
}

func (m *Memory) balance(token, account common.Address) *uint256.Int {
	accounts, ok := m.balances[token]
	if !ok {
		accounts = make(map[common.Address]*uint256.Int)
		m.balances[token] = accounts
	}
	bal, ok := accounts[account]
	if !ok {
		bal = new(uint256.Int)
		accounts[account] = bal
	}
	return bal
}
