package config

// Config holds all samkit configuration.
type Config struct {
	DefaultNetwork string                  `json:"default_network" mapstructure:"default_network"`
	DefaultWallet  string                  `json:"default_wallet"  mapstructure:"default_wallet"`
	ArtifactsDir   string                  `json:"artifacts_dir"   mapstructure:"artifacts_dir"` // Hardhat artifacts/ or Foundry out/
	RPCAlgorithm   string                  `json:"rpc_algorithm"   mapstructure:"rpc_algorithm"` // "fastest" | "failover"
	Token          TokenDefaults           `json:"token"           mapstructure:"token"`
	Faucet         FaucetDefaults          `json:"faucet"          mapstructure:"faucet"`
	Networks       map[string]NetworkEntry `json:"networks"        mapstructure:"networks"`

	// internal: config dir path used for Save()
	configDir string
}

// TokenDefaults are the constructor arguments `samkit deploy` uses when no
// flags are given.
type TokenDefaults struct {
	Contract      string `json:"contract"       mapstructure:"contract"` // "SampleToken" | "SampleCoin"
	Name          string `json:"name"           mapstructure:"name"`
	Symbol        string `json:"symbol"         mapstructure:"symbol"`
	InitialSupply string `json:"initial_supply" mapstructure:"initial_supply"` // base units, decimal
}

// FaucetDefaults configure the optional Faucet deployment.
type FaucetDefaults struct {
	Amount    string `json:"amount"    mapstructure:"amount"` // whole tokens per drip
	Forwarder string `json:"forwarder" mapstructure:"forwarder"`
}

// NetworkEntry is a user-defined JSON-RPC network.
type NetworkEntry struct {
	RPCURL       string   `json:"rpc_url"                     mapstructure:"rpc_url"`
	FallbackRPCs []string `json:"fallback_rpc_urls,omitempty" mapstructure:"fallback_rpc_urls"`
	ChainID      int64    `json:"chain_id"                    mapstructure:"chain_id"`
	Explorer     string   `json:"explorer,omitempty"          mapstructure:"explorer"`
}
