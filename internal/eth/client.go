// Package eth holds the go-ethereum plumbing shared by the pool service:
// RPC dialing and EVM-style address derivation.
package eth

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

func Dial(ctx context.Context, url string) (*ethclient.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	return ethclient.DialContext(ctx, url)
}

// Deployment is the set of addresses produced by deploying token A, token B
// and the pool, in that order, from a single deployer account.
type Deployment struct {
	Deployer common.Address
	TokenA   common.Address
	TokenB   common.Address
	Pool     common.Address
}

// Deploy derives the CREATE addresses of the two tokens and the pool for
// deployer starting at nonce.
func Deploy(deployer common.Address, nonce uint64) Deployment {
	return Deployment{
		Deployer: deployer,
		TokenA:   crypto.CreateAddress(deployer, nonce),
		TokenB:   crypto.CreateAddress(deployer, nonce+1),
		Pool:     crypto.CreateAddress(deployer, nonce+2),
	}
}
