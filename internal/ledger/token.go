// Package ledger provides in-memory fungible asset ledgers with ERC-20
// transfer and allowance semantics, and the Vault adapter the pool engine
// uses to move assets in and out of its reserves.
package ledger

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Token is a single fungible asset. Every method is atomic: a failed call
// leaves balances and allowances untouched.
type Token struct {
	name    string
	symbol  string
	address common.Address

	mu          sync.RWMutex
	totalSupply uint256.Int
	balances    map[common.Address]*uint256.Int
	allowances  map[common.Address]map[common.Address]*uint256.Int
}

func NewToken(name, symbol string, address common.Address) *Token {
	return &Token{
		name:       name,
		symbol:     symbol,
		address:    address,
		balances:   make(map[common.Address]*uint256.Int),
		allowances: make(map[common.Address]map[common.Address]*uint256.Int),
	}
}

func (t *Token) Name() string            { return t.name }
func (t *Token) Symbol() string          { return t.symbol }
func (t *Token) Address() common.Address { return t.address }

func (t *Token) TotalSupply() *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.totalSupply.Clone()
}

// BalanceOf returns a copy of account's balance.
func (t *Token) BalanceOf(account common.Address) *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.balanceOf(account).Clone()
}

// Allowance returns how much spender may still move out of owner's balance.
func (t *Token) Allowance(owner, spender common.Address) *uint256.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.allowance(owner, spender).Clone()
}

// Mint creates amount new units in to's balance.
func (t *Token) Mint(to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return fmt.Errorf("mint: %w", ErrZeroAddress)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	supply, overflow := new(uint256.Int).AddOverflow(&t.totalSupply, amount)
	if overflow {
		return fmt.Errorf("mint %s %s: %w", amount.Dec(), t.symbol, ErrOverflow)
	}
	// balance <= totalSupply, so it cannot overflow either
	balance := new(uint256.Int).Add(t.balanceOf(to), amount)

	t.totalSupply.Set(supply)
	t.balances[to] = balance
	return nil
}

// Approve sets spender's allowance over owner's balance to amount.
func (t *Token) Approve(owner, spender common.Address, amount *uint256.Int) error {
	if owner == (common.Address{}) || spender == (common.Address{}) {
		return fmt.Errorf("approve: %w", ErrZeroAddress)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	spenders, ok := t.allowances[owner]
	if !ok {
		spenders = make(map[common.Address]*uint256.Int)
		t.allowances[owner] = spenders
	}
	spenders[spender] = amount.Clone()
	return nil
}

// Transfer moves amount from from to to.
func (t *Token) Transfer(from, to common.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transfer(from, to, amount)
}

// TransferFrom moves amount from from to to on behalf of spender, spending
// spender's allowance. An allowance of 2^256-1 is treated as unlimited and is
// not decremented.
func (t *Token) TransferFrom(spender, from, to common.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	allowed := t.allowance(from, spender)
	if allowed.Lt(amount) {
		return fmt.Errorf("%s: %s allowed %s, need %s: %w",
			t.symbol, spender.Hex(), allowed.Dec(), amount.Dec(), ErrInsufficientAuthorization)
	}
	if err := t.transfer(from, to, amount); err != nil {
		return err
	}
	if !isUnlimited(allowed) {
		t.allowances[from][spender] = new(uint256.Int).Sub(allowed, amount)
	}
	return nil
}

// Refund undoes TransferFrom(spender, from, to, amount): amount moves back
// from to to from and spender's allowance is restored.
func (t *Token) Refund(spender, from, to common.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.transfer(to, from, amount); err != nil {
		return err
	}
	allowed := t.allowance(from, spender)
	if isUnlimited(allowed) {
		return nil
	}
	restored, overflow := new(uint256.Int).AddOverflow(allowed, amount)
	if overflow {
		restored.SetAllOne()
	}
	spenders, ok := t.allowances[from]
	if !ok {
		spenders = make(map[common.Address]*uint256.Int)
		t.allowances[from] = spenders
	}
	spenders[spender] = restored
	return nil
}

func (t *Token) transfer(from, to common.Address, amount *uint256.Int) error {
	if from == (common.Address{}) || to == (common.Address{}) {
		return fmt.Errorf("transfer: %w", ErrZeroAddress)
	}
	balance := t.balanceOf(from)
	if balance.Lt(amount) {
		return fmt.Errorf("%s: %s holds %s, need %s: %w",
			t.symbol, from.Hex(), balance.Dec(), amount.Dec(), ErrInsufficientBalance)
	}
	if from == to {
		return nil
	}

	t.balances[from] = new(uint256.Int).Sub(balance, amount)
	t.balances[to] = new(uint256.Int).Add(t.balanceOf(to), amount)
	return nil
}

func (t *Token) balanceOf(account common.Address) *uint256.Int {
	if b, ok := t.balances[account]; ok {
		return b
	}
	return new(uint256.Int)
}

func (t *Token) allowance(owner, spender common.Address) *uint256.Int {
	if a, ok := t.allowances[owner][spender]; ok {
		return a
	}
	return new(uint256.Int)
}

func isUnlimited(v *uint256.Int) bool {
	return v.Eq(new(uint256.Int).SetAllOne())
}
