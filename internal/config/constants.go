package config

import "time"

// Gas limits used as EstimateGas fallbacks when the node cannot simulate the tx.
// These are conservative upper bounds; actual gas used will be lower.
const (
	GasLimitContractCall = uint64(200_000)
	GasLimitDeploy       = uint64(3_000_000)
)

// Timeouts shared by the RPC client and the commands.
const (
	RPCDialTimeout      = 10 * time.Second
	TxConfirmTimeout    = 3 * time.Minute
	TxDeployTimeout     = 5 * time.Minute
	ReceiptPollInterval = 2 * time.Second
)

// Defaults written to a fresh config.
const (
	DefaultRPCAlgorithm  = "fastest"

	DefaultTokenContract = "SampleToken"
	DefaultTokenName     = "Sample Coin"
	DefaultTokenSymbol   = "SAM"
	DefaultInitialSupply = "10000000000" // 10e9 base units
	DefaultFaucetAmount  = "10000"       // whole tokens per drip
)
