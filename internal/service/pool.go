package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/dex-amm/internal/ledger"
	"github.com/nulln0ne/dex-amm/internal/pool"
)

// PoolService exposes a pool engine together with the two token ledgers it
// trades, resolving tokens by side, address or symbol.
type PoolService struct {
	BaseService
	engine *pool.Engine
	tokens [2]*ledger.Token
}

// NewPoolService constructs a PoolService. tokenA and tokenB must be the
// tokens behind the engine's ledgers, in the same order.
func NewPoolService(logger *slog.Logger, engine *pool.Engine, tokenA, tokenB *ledger.Token) *PoolService {
	return &PoolService{
		BaseService: newBaseService(logger, "pool"),
		engine:      engine,
		tokens:      [2]*ledger.Token{tokenA, tokenB},
	}
}

// PoolInfo describes the pool and its current state.
type PoolInfo struct {
	Address common.Address
	TokenA  *ledger.Token
	TokenB  *ledger.Token
	pool.Snapshot
}

func (s *PoolService) Info() PoolInfo {
	return PoolInfo{
		Address:  s.engine.Address(),
		TokenA:   s.tokens[pool.AssetA],
		TokenB:   s.tokens[pool.AssetB],
		Snapshot: s.engine.Snapshot(),
	}
}

// Resolve maps ref to a pool side. ref may be "A" or "B", a token address,
// or a token symbol.
func (s *PoolService) Resolve(ref string) (pool.Asset, error) {
	if asset, err := pool.ParseAsset(ref); err == nil {
		return asset, nil
	}
	if common.IsHexAddress(ref) {
		return s.assetOf(common.HexToAddress(ref))
	}
	for i, tok := range s.tokens {
		if strings.EqualFold(tok.Symbol(), ref) {
			return pool.Asset(i), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", ref, ErrUnknownToken)
}

// Token returns the ledger of one side.
func (s *PoolService) Token(asset pool.Asset) (*ledger.Token, error) {
	if asset != pool.AssetA && asset != pool.AssetB {
		return nil, fmt.Errorf("%s: %w", asset, ErrUnknownToken)
	}
	return s.tokens[asset], nil
}

// Quote computes the expected output amount for swapping amountIn of src to
// dst against the current reserves. It validates the token pair and applies
// the fee-adjusted constant-product formula.
func (s *PoolService) Quote(src, dst common.Address, amountIn *uint256.Int) (*uint256.Int, error) {
	s.logger.Debug("quoting swap", "src", src.Hex(), "dst", dst.Hex(), "in", amountIn.Dec())

	if src == dst {
		return nil, ErrSameToken
	}
	assetIn, err := s.assetOf(src)
	if err != nil {
		return nil, ErrPairMismatch
	}
	if assetOut, err := s.assetOf(dst); err != nil || assetOut != assetIn.Other() {
		return nil, ErrPairMismatch
	}

	out, err := s.engine.Quote(assetIn, amountIn)
	if errors.Is(err, pool.ErrEmptyPool) {
		return nil, ErrEmptyReserves
	}
	if err != nil {
		return nil, err
	}
	s.logger.Debug("amount out computed", "out", out.Dec())
	return out, nil
}

func (s *PoolService) Price() (*big.Rat, error) {
	price, err := s.engine.Price()
	if errors.Is(err, pool.ErrEmptyPool) {
		return nil, ErrEmptyReserves
	}
	return price, err
}

// Position returns account's shares together with the total share supply
// at the same instant.
func (s *PoolService) Position(account common.Address) (shares, totalShares *uint256.Int) {
	return s.engine.Position(account)
}

func (s *PoolService) AddLiquidity(ctx context.Context, account common.Address, amountA, amountB *uint256.Int) (*uint256.Int, error) {
	shares, err := s.engine.AddLiquidity(ctx, account, amountA, amountB)
	if err != nil {
		s.logger.Debug("add liquidity failed", "account", account.Hex(), "err", err)
		return nil, err
	}
	return shares, nil
}

func (s *PoolService) RemoveLiquidity(ctx context.Context, account common.Address, shares *uint256.Int) (amountA, amountB *uint256.Int, err error) {
	amountA, amountB, err = s.engine.RemoveLiquidity(ctx, account, shares)
	if err != nil {
		s.logger.Debug("remove liquidity failed", "account", account.Hex(), "err", err)
		return nil, nil, err
	}
	return amountA, amountB, nil
}

// Swap sells amountIn of assetIn for the other side.
func (s *PoolService) Swap(ctx context.Context, account common.Address, assetIn pool.Asset, amountIn *uint256.Int) (*uint256.Int, error) {
	out, err := s.engine.Swap(ctx, account, assetIn, amountIn)
	if err != nil {
		s.logger.Debug("swap failed", "account", account.Hex(), "asset_in", assetIn.String(), "err", err)
		return nil, err
	}
	return out, nil
}

func (s *PoolService) assetOf(token common.Address) (pool.Asset, error) {
	switch token {
	case s.tokens[pool.AssetA].Address():
		return pool.AssetA, nil
	case s.tokens[pool.AssetB].Address():
		return pool.AssetB, nil
	default:
		return 0, fmt.Errorf("%s: %w", token.Hex(), ErrUnknownToken)
	}
}
