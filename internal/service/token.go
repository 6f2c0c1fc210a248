package service

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nulln0ne/dex-amm/internal/pool"
)

// Balance returns account's balance of one side's token.
func (s *PoolService) Balance(asset pool.Asset, account common.Address) (*uint256.Int, error) {
	tok, err := s.Token(asset)
	if err != nil {
		return nil, err
	}
	return tok.BalanceOf(account), nil
}

// Approve lets spender move up to amount of owner's tokens. Approving the
// pool address is what makes deposits and swaps possible.
func (s *PoolService) Approve(asset pool.Asset, owner, spender common.Address, amount *uint256.Int) error {
	tok, err := s.Token(asset)
	if err != nil {
		return err
	}
	if err := tok.Approve(owner, spender, amount); err != nil {
		return err
	}
	s.logger.Debug("approval", "token", tok.Symbol(), "owner", owner.Hex(), "spender", spender.Hex(), "amount", amount.Dec())
	return nil
}

func (s *PoolService) Transfer(asset pool.Asset, from, to common.Address, amount *uint256.Int) error {
	tok, err := s.Token(asset)
	if err != nil {
		return err
	}
	if err := tok.Transfer(from, to, amount); err != nil {
		return err
	}
	s.logger.Debug("transfer", "token", tok.Symbol(), "from", from.Hex(), "to", to.Hex(), "amount", amount.Dec())
	return nil
}
