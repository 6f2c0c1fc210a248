package config

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// DefaultInitialSupply is one million tokens with 18 decimals.
const DefaultInitialSupply = "1000000000000000000000000"

type TokenConfig struct {
	Name   string
	Symbol string
}

type Config struct {
	Addr          string
	LogLevel      string
	LogFormat     string
	Deployer      common.Address
	InitialSupply *uint256.Int
	TokenA        TokenConfig
	TokenB        TokenConfig
	// EventDB is the SQLite path of the event journal; empty disables it.
	EventDB string
}

func FromEnv() (*Config, error) {
	addr := getenv("ADDR", ":1337")
	logLevel := getenv("LOG_LEVEL", "info")
	logFormat := getenv("LOG_FORMAT", "text")

	deployerHex := os.Getenv("DEPLOYER_ADDRESS")
	if deployerHex == "" {
		return nil, ErrMissingDeployer
	}
	if !common.IsHexAddress(deployerHex) {
		return nil, fmt.Errorf("%q: %w", deployerHex, ErrInvalidDeployer)
	}
	deployer := common.HexToAddress(deployerHex)
	if deployer == (common.Address{}) {
		return nil, fmt.Errorf("zero address: %w", ErrInvalidDeployer)
	}

	supplyStr := getenv("INITIAL_SUPPLY", DefaultInitialSupply)
	supply, err := uint256.FromDecimal(supplyStr)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", supplyStr, ErrInvalidSupply)
	}
	if supply.IsZero() {
		return nil, fmt.Errorf("zero supply: %w", ErrInvalidSupply)
	}

	cfg := &Config{
		Addr:          addr,
		LogLevel:      logLevel,
		LogFormat:     logFormat,
		Deployer:      deployer,
		InitialSupply: supply,
		TokenA: TokenConfig{
			Name:   getenv("TOKEN_A_NAME", "Token A"),
			Symbol: getenv("TOKEN_A_SYMBOL", "TKA"),
		},
		TokenB: TokenConfig{
			Name:   getenv("TOKEN_B_NAME", "Token B"),
			Symbol: getenv("TOKEN_B_SYMBOL", "TKB"),
		},
		EventDB: os.Getenv("EVENT_DB"),
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
