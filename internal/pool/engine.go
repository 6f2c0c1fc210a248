// Package pool implements the constant-product pool engine: two reserves, a
// share ledger, and the state transitions that move assets between providers,
// traders and the pool.
package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/dex-amm/pkg/uniswapv2"
)

// Ledger moves one asset between accounts and the pool. Debit must fail
// without side effects when the account is underfunded or has not
// authorized the pool.
type Ledger interface {
	Asset() common.Address
	Debit(ctx context.Context, from common.Address, amount *uint256.Int) error
	Credit(ctx context.Context, to common.Address, amount *uint256.Int) error
}

// Reverser is implemented by ledgers that can undo a Debit or Credit
// exactly, allowances included. Without it the engine undoes a Debit with a
// Credit and a Credit with a Debit.
type Reverser interface {
	ReverseDebit(ctx context.Context, from common.Address, amount *uint256.Int) error
	ReverseCredit(ctx context.Context, to common.Address, amount *uint256.Int) error
}

// Engine owns the pool state. Mutating calls hold the write lock for their
// whole duration, ledger calls included; reads get copies under the read
// lock. A failed call leaves reserves, shares and balances unchanged.
type Engine struct {
	logger  *slog.Logger
	address common.Address
	ledgerA Ledger
	ledgerB Ledger
	sink    EventSink
	metrics *Metrics

	mu          sync.RWMutex
	reserveA    uint256.Int
	reserveB    uint256.Int
	totalShares uint256.Int
	shares      map[common.Address]*uint256.Int
}

type Option func(*Engine)

func WithEventSink(sink EventSink) Option {
	return func(e *Engine) { e.sink = sink }
}

func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an empty pool at address trading ledgerA's asset against
// ledgerB's.
func New(logger *slog.Logger, address common.Address, ledgerA, ledgerB Ledger, opts ...Option) *Engine {
	e := &Engine{
		logger:  logger,
		address: address,
		ledgerA: ledgerA,
		ledgerB: ledgerB,
		shares:  make(map[common.Address]*uint256.Int),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Address() common.Address { return e.address }
func (e *Engine) TokenA() common.Address  { return e.ledgerA.Asset() }
func (e *Engine) TokenB() common.Address  { return e.ledgerB.Asset() }

// AddLiquidity deposits amountA and amountB from caller and mints shares.
//
// Deposits into a non-empty pool should match the reserve ratio. A deposit
// off the ratio is accepted whole but only credited for its smaller side;
// the excess stays in the reserves and accrues to every shareholder.
func (e *Engine) AddLiquidity(ctx context.Context, caller common.Address, amountA, amountB *uint256.Int) (*uint256.Int, error) {
	if err := e.checkCaller(caller); err != nil {
		return nil, fmt.Errorf("add liquidity: %w", err)
	}
	if isZero(amountA) || isZero(amountB) {
		return nil, fmt.Errorf("add liquidity: both amounts must be positive: %w", ErrInvalidAmount)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	minted, err := uniswapv2.MintShares(amountA, amountB, &e.reserveA, &e.reserveB, &e.totalShares)
	if err != nil {
		return nil, fmt.Errorf("add liquidity: %w", mathErr(err))
	}
	if minted.IsZero() {
		return nil, fmt.Errorf("add liquidity: deposit too small to mint a share: %w", ErrInvalidAmount)
	}

	newReserveA, overflowA := new(uint256.Int).AddOverflow(&e.reserveA, amountA)
	newReserveB, overflowB := new(uint256.Int).AddOverflow(&e.reserveB, amountB)
	newTotal, overflowT := new(uint256.Int).AddOverflow(&e.totalShares, minted)
	if overflowA || overflowB || overflowT {
		return nil, fmt.Errorf("add liquidity: %w", ErrOverflow)
	}

	if err := e.ledgerA.Debit(ctx, caller, amountA); err != nil {
		return nil, fmt.Errorf("add liquidity: debit asset A: %w", err)
	}
	if err := e.ledgerB.Debit(ctx, caller, amountB); err != nil {
		err = fmt.Errorf("add liquidity: debit asset B: %w", err)
		return nil, e.revert(err, "refund asset A", func() error {
			return reverseDebit(ctx, e.ledgerA, caller, amountA)
		})
	}

	e.reserveA.Set(newReserveA)
	e.reserveB.Set(newReserveB)
	e.totalShares.Set(newTotal)
	e.shares[caller] = new(uint256.Int).Add(e.shareOf(caller), minted)

	e.logger.Debug("liquidity added", "account", caller.Hex(), "amount_a", amountA.Dec(), "amount_b", amountB.Dec(), "shares", minted.Dec())
	e.committed(ctx, "add", LiquidityAdded{
		Account:      caller,
		AmountA:      amountA.Clone(),
		AmountB:      amountB.Clone(),
		SharesMinted: minted.Clone(),
	})
	return minted, nil
}

// RemoveLiquidity burns shares held by caller and pays out the pro-rata part
// of both reserves, rounded down.
func (e *Engine) RemoveLiquidity(ctx context.Context, caller common.Address, shares *uint256.Int) (amountA, amountB *uint256.Int, err error) {
	if err := e.checkCaller(caller); err != nil {
		return nil, nil, fmt.Errorf("remove liquidity: %w", err)
	}
	if isZero(shares) {
		return nil, nil, fmt.Errorf("remove liquidity: shares must be positive: %w", ErrInvalidAmount)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	held := e.shareOf(caller)
	if shares.Gt(held) {
		return nil, nil, fmt.Errorf("remove liquidity: have %s, need %s: %w", held.Dec(), shares.Dec(), ErrInsufficientShares)
	}

	amountA, amountB, err = uniswapv2.RedeemShares(shares, &e.reserveA, &e.reserveB, &e.totalShares)
	if err != nil {
		return nil, nil, fmt.Errorf("remove liquidity: %w", mathErr(err))
	}
	if amountA.IsZero() && amountB.IsZero() {
		return nil, nil, fmt.Errorf("remove liquidity: withdrawal too small: %w", ErrInvalidAmount)
	}

	if err := e.ledgerA.Credit(ctx, caller, amountA); err != nil {
		return nil, nil, fmt.Errorf("remove liquidity: credit asset A: %w", err)
	}
	if err := e.ledgerB.Credit(ctx, caller, amountB); err != nil {
		err = fmt.Errorf("remove liquidity: credit asset B: %w", err)
		return nil, nil, e.revert(err, "reclaim asset A", func() error {
			return reverseCredit(ctx, e.ledgerA, caller, amountA)
		})
	}

	e.reserveA.Sub(&e.reserveA, amountA)
	e.reserveB.Sub(&e.reserveB, amountB)
	e.totalShares.Sub(&e.totalShares, shares)
	if remaining := new(uint256.Int).Sub(held, shares); remaining.IsZero() {
		delete(e.shares, caller)
	} else {
		e.shares[caller] = remaining
	}

	e.logger.Debug("liquidity removed", "account", caller.Hex(), "amount_a", amountA.Dec(), "amount_b", amountB.Dec(), "shares", shares.Dec())
	e.committed(ctx, "remove", LiquidityRemoved{
		Account:      caller,
		AmountA:      amountA.Clone(),
		AmountB:      amountB.Clone(),
		SharesBurned: shares.Clone(),
	})
	return amountA, amountB, nil
}

// SwapAForB sells amountIn of asset A to the pool for asset B.
func (e *Engine) SwapAForB(ctx context.Context, caller common.Address, amountIn *uint256.Int) (*uint256.Int, error) {
	return e.Swap(ctx, caller, AssetA, amountIn)
}

// SwapBForA sells amountIn of asset B to the pool for asset A.
func (e *Engine) SwapBForA(ctx context.Context, caller common.Address, amountIn *uint256.Int) (*uint256.Int, error) {
	return e.Swap(ctx, caller, AssetB, amountIn)
}

// Swap sells amountIn of assetIn at the price given by the current reserves.
// There is no minimum-output guard.
func (e *Engine) Swap(ctx context.Context, caller common.Address, assetIn Asset, amountIn *uint256.Int) (*uint256.Int, error) {
	if err := e.checkCaller(caller); err != nil {
		return nil, fmt.Errorf("swap: %w", err)
	}
	if isZero(amountIn) {
		return nil, fmt.Errorf("swap: %w", ErrInvalidAmount)
	}
	if assetIn != AssetA && assetIn != AssetB {
		return nil, fmt.Errorf("swap: %s: %w", assetIn, ErrUnknownAsset)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.totalShares.IsZero() {
		return nil, fmt.Errorf("swap: %w", ErrEmptyPool)
	}

	reserveIn, reserveOut := &e.reserveA, &e.reserveB
	ledgerIn, ledgerOut := e.ledgerA, e.ledgerB
	if assetIn == AssetB {
		reserveIn, reserveOut = reserveOut, reserveIn
		ledgerIn, ledgerOut = ledgerOut, ledgerIn
	}

	amountOut, err := uniswapv2.GetAmountOut(amountIn, reserveIn, reserveOut)
	if err != nil {
		return nil, fmt.Errorf("swap: %w", mathErr(err))
	}
	if amountOut.IsZero() {
		return nil, fmt.Errorf("swap: output rounds to zero: %w", ErrInvalidAmount)
	}

	newIn, overflow := new(uint256.Int).AddOverflow(reserveIn, amountIn)
	if overflow {
		return nil, fmt.Errorf("swap: reserve %s: %w", assetIn, ErrOverflow)
	}
	newOut := new(uint256.Int).Sub(reserveOut, amountOut)

	if !uniswapv2.InvariantHolds(amountIn, amountOut, reserveIn, reserveOut) ||
		uniswapv2.Product(newIn, newOut).Cmp(uniswapv2.Product(reserveIn, reserveOut)) < 0 {
		e.logger.Error("swap rejected by invariant check", "asset_in", assetIn.String(), "amount_in", amountIn.Dec(), "amount_out", amountOut.Dec())
		return nil, fmt.Errorf("swap: %w", ErrInvariantViolated)
	}

	if err := ledgerIn.Debit(ctx, caller, amountIn); err != nil {
		return nil, fmt.Errorf("swap: debit asset %s: %w", assetIn, err)
	}
	if err := ledgerOut.Credit(ctx, caller, amountOut); err != nil {
		err = fmt.Errorf("swap: credit asset %s: %w", assetIn.Other(), err)
		return nil, e.revert(err, "refund input", func() error {
			return reverseDebit(ctx, ledgerIn, caller, amountIn)
		})
	}

	reserveIn.Set(newIn)
	reserveOut.Set(newOut)

	e.logger.Debug("swap", "account", caller.Hex(), "asset_in", assetIn.String(), "amount_in", amountIn.Dec(), "amount_out", amountOut.Dec())
	if e.metrics != nil {
		e.metrics.Swaps.WithLabelValues(assetIn.String()).Inc()
	}
	e.committed(ctx, "", Swap{
		Account:   caller,
		AssetIn:   ledgerIn.Asset(),
		AmountIn:  amountIn.Clone(),
		AmountOut: amountOut.Clone(),
	})
	return amountOut, nil
}

// Reserves returns a consistent copy of both reserves.
func (e *Engine) Reserves() (reserveA, reserveB *uint256.Int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.reserveA.Clone(), e.reserveB.Clone()
}

// Price returns reserveB/reserveA, the amount of asset B per unit of asset
// A, as an exact ratio.
func (e *Engine) Price() (*big.Rat, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.totalShares.IsZero() {
		return nil, ErrEmptyPool
	}
	return new(big.Rat).SetFrac(e.reserveB.ToBig(), e.reserveA.ToBig()), nil
}

// Quote returns what Swap(assetIn, amountIn) would pay out against the
// current reserves, without changing them.
func (e *Engine) Quote(assetIn Asset, amountIn *uint256.Int) (*uint256.Int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	switch assetIn {
	case AssetA:
		return GetAmountOut(amountIn, &e.reserveA, &e.reserveB)
	case AssetB:
		return GetAmountOut(amountIn, &e.reserveB, &e.reserveA)
	default:
		return nil, fmt.Errorf("quote: %s: %w", assetIn, ErrUnknownAsset)
	}
}

// Position returns account's shares and the total supply read together.
func (e *Engine) Position(account common.Address) (shares, totalShares *uint256.Int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.shareOf(account).Clone(), e.totalShares.Clone()
}

func (e *Engine) ShareOf(account common.Address) *uint256.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.shareOf(account).Clone()
}

func (e *Engine) TotalShares() *uint256.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.totalShares.Clone()
}

// Snapshot is a consistent copy of the pool state.
type Snapshot struct {
	ReserveA    *uint256.Int
	ReserveB    *uint256.Int
	TotalShares *uint256.Int
	Providers   int
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Snapshot{
		ReserveA:    e.reserveA.Clone(),
		ReserveB:    e.reserveB.Clone(),
		TotalShares: e.totalShares.Clone(),
		Providers:   len(e.shares),
	}
}

// GetAmountOut is the fee-adjusted constant-product quote. It fails with
// ErrEmptyPool when either reserve is zero.
func GetAmountOut(amountIn, reserveIn, reserveOut *uint256.Int) (*uint256.Int, error) {
	if isZero(amountIn) {
		return nil, ErrInvalidAmount
	}
	out, err := uniswapv2.GetAmountOut(amountIn, reserveIn, reserveOut)
	if err != nil {
		return nil, mathErr(err)
	}
	return out, nil
}

// checkCaller rejects the zero address and the pool's own account. Ledger
// transfers from the pool to itself are no-ops, so letting the pool trade
// would move reserves without moving tokens.
func (e *Engine) checkCaller(caller common.Address) error {
	switch caller {
	case common.Address{}:
		return fmt.Errorf("zero address: %w", ErrInvalidAccount)
	case e.address:
		return fmt.Errorf("%s is the pool: %w", caller.Hex(), ErrInvalidAccount)
	}
	return nil
}

func (e *Engine) shareOf(account common.Address) *uint256.Int {
	if s, ok := e.shares[account]; ok {
		return s
	}
	return new(uint256.Int)
}

// committed runs after a transition has been applied. op is the liquidity
// metric label; swaps pass "".
func (e *Engine) committed(ctx context.Context, op string, ev Event) {
	if e.metrics != nil {
		if op != "" {
			e.metrics.LiquidityChanges.WithLabelValues(op).Inc()
		}
		e.metrics.observeState(&e.reserveA, &e.reserveB, &e.totalShares)
	}
	if e.sink != nil {
		e.sink.Publish(ctx, ev)
	}
}

// revert undoes a transfer that already went through when a later one
// failed. A failed undo is logged and joined to the original error.
func (e *Engine) revert(cause error, what string, undo func() error) error {
	if err := undo(); err != nil {
		e.logger.Error("failed to revert transfer", "step", what, "original_error", cause, "revert_error", err)
		return errors.Join(cause, fmt.Errorf("%s: %w", what, err))
	}
	return cause
}

// Undo runs even when ctx is already cancelled.
func reverseDebit(ctx context.Context, l Ledger, from common.Address, amount *uint256.Int) error {
	ctx = context.WithoutCancel(ctx)
	if r, ok := l.(Reverser); ok {
		return r.ReverseDebit(ctx, from, amount)
	}
	return l.Credit(ctx, from, amount)
}

func reverseCredit(ctx context.Context, l Ledger, to common.Address, amount *uint256.Int) error {
	ctx = context.WithoutCancel(ctx)
	if r, ok := l.(Reverser); ok {
		return r.ReverseCredit(ctx, to, amount)
	}
	return l.Debit(ctx, to, amount)
}

func mathErr(err error) error {
	switch {
	case errors.Is(err, uniswapv2.ErrInsufficientInput):
		return fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	case errors.Is(err, uniswapv2.ErrInsufficientLiquidity):
		return fmt.Errorf("%w: %w", ErrEmptyPool, err)
	case errors.Is(err, uniswapv2.ErrOverflow):
		return fmt.Errorf("%w: %w", ErrOverflow, err)
	default:
		return err
	}
}

func isZero(v *uint256.Int) bool {
	return v == nil || v.IsZero()
}
