package ledger

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Vault binds a Token to the pool account holding its reserve. Debits pull
// from an account using the allowance it granted the pool; credits pay out
// of the pool's own balance.
type Vault struct {
	token *Token
	pool  common.Address
}

func NewVault(token *Token, pool common.Address) *Vault {
	return &Vault{token: token, pool: pool}
}

func (v *Vault) Token() *Token { return v.token }

// Debit moves amount from the account into the pool.
func (v *Vault) Debit(ctx context.Context, from common.Address, amount *uint256.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return v.token.TransferFrom(v.pool, from, v.pool, amount)
}

// Credit moves amount from the pool to the account.
func (v *Vault) Credit(ctx context.Context, to common.Address, amount *uint256.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return v.token.Transfer(v.pool, to, amount)
}

// Asset is the address of the bound token.
func (v *Vault) Asset() common.Address { return v.token.Address() }

// ReverseDebit returns a debited amount and restores the pool's allowance.
func (v *Vault) ReverseDebit(_ context.Context, from common.Address, amount *uint256.Int) error {
	return v.token.Refund(v.pool, from, v.pool, amount)
}

// ReverseCredit takes a credited amount back without spending allowance.
func (v *Vault) ReverseCredit(_ context.Context, to common.Address, amount *uint256.Int) error {
	return v.token.Transfer(to, v.pool, amount)
}
