package config

import "errors"

// ErrMissingDeployer indicates that the required DEPLOYER_ADDRESS variable is
// not set in the environment.
var ErrMissingDeployer = errors.New("missing DEPLOYER_ADDRESS environment variable")

// ErrInvalidDeployer indicates that DEPLOYER_ADDRESS is not a hex address.
var ErrInvalidDeployer = errors.New("DEPLOYER_ADDRESS is not a valid address")

// ErrInvalidSupply indicates that INITIAL_SUPPLY is not a positive base-10
// integer below 2^256.
var ErrInvalidSupply = errors.New("INITIAL_SUPPLY must be a positive 256-bit integer")
