package eth

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

func TestDeploy(t *testing.T) {
	deployer := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	d := Deploy(deployer, 0)

	if d.Deployer != deployer {
		t.Fatalf("unexpected deployer: %s", d.Deployer.Hex())
	}
	if d.TokenA != crypto.CreateAddress(deployer, 0) {
		t.Fatalf("unexpected token A address: %s", d.TokenA.Hex())
	}
	if d.TokenB != crypto.CreateAddress(deployer, 1) {
		t.Fatalf("unexpected token B address: %s", d.TokenB.Hex())
	}
	if d.Pool != crypto.CreateAddress(deployer, 2) {
		t.Fatalf("unexpected pool address: %s", d.Pool.Hex())
	}
	if d.TokenA == d.TokenB || d.TokenB == d.Pool {
		t.Fatalf("addresses must be distinct: %+v", d)
	}
}

func TestDeploy_Deterministic(t *testing.T) {
	deployer := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	if Deploy(deployer, 5) != Deploy(deployer, 5) {
		t.Fatalf("deployment addresses must be deterministic")
	}
	if Deploy(deployer, 0).TokenB != Deploy(deployer, 1).TokenA {
		t.Fatalf("nonce offsets must line up")
	}
}
