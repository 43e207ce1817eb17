package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

const (
	defaultNetwork = "hardhat"

	configFile      = "config.json"
	deploymentsFile = "deployments.json"

	// EnvPrefix prefixes every environment override, e.g. SAMKIT_DEFAULT_NETWORK.
	EnvPrefix = "SAMKIT"
)

// ErrUnknownKey is returned by Set for keys that are not settable.
var ErrUnknownKey = errors.New("unknown config key")

// DefaultDir resolves the config directory: SAMKIT_CONFIG_DIR, then ~/.samkit.
func DefaultDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home dir: %w", err)
	}
	return filepath.Join(home, ".samkit"), nil
}

// Load reads config.json from dir (or defaults) and applies SAMKIT_*
// environment overrides on top. dir defaults to DefaultDir().
func Load(dir string) (*Config, error) {
	return load(dir, true)
}

// LoadFile is Load without environment overrides. Use it before Save so
// overrides are not written back to disk.
func LoadFile(dir string) (*Config, error) {
	return load(dir, false)
}

func load(dir string, withEnv bool) (*Config, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")
	setDefaults(v)
	if withEnv {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	path := filepath.Join(dir, configFile)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.configDir = dir
	if cfg.Networks == nil {
		cfg.Networks = make(map[string]NetworkEntry)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("default_network", defaultNetwork)
	v.SetDefault("default_wallet", "")
	v.SetDefault("artifacts_dir", "")
	v.SetDefault("rpc_algorithm", DefaultRPCAlgorithm)
	v.SetDefault("token.contract", DefaultTokenContract)
	v.SetDefault("token.name", DefaultTokenName)
	v.SetDefault("token.symbol", DefaultTokenSymbol)
	v.SetDefault("token.initial_supply", DefaultInitialSupply)
	v.SetDefault("faucet.amount", DefaultFaucetAmount)
	v.SetDefault("faucet.forwarder", "")
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	return saveJSON(filepath.Join(c.configDir, configFile), c)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// DeploymentsPath is the deployment registry file inside the config dir.
func (c *Config) DeploymentsPath() string {
	return filepath.Join(c.configDir, deploymentsFile)
}

// settable maps `samkit config set` keys to their fields.
func (c *Config) settable() map[string]*string {
	return map[string]*string{
		"default_network":      &c.DefaultNetwork,
		"default_wallet":       &c.DefaultWallet,
		"artifacts_dir":        &c.ArtifactsDir,
		"rpc_algorithm":        &c.RPCAlgorithm,
		"token.contract":       &c.Token.Contract,
		"token.name":           &c.Token.Name,
		"token.symbol":         &c.Token.Symbol,
		"token.initial_supply": &c.Token.InitialSupply,
		"faucet.amount":        &c.Faucet.Amount,
		"faucet.forwarder":     &c.Faucet.Forwarder,
	}
}

// Keys lists the settable keys in sorted order.
func (c *Config) Keys() []string {
	m := c.settable()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of a settable key.
func (c *Config) Get(key string) (string, error) {
	p, ok := c.settable()[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return *p, nil
}

// Set updates a settable key.
func (c *Config) Set(key, value string) error {
	p, ok := c.settable()[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	*p = value
	return nil
}

// AddNetwork registers a custom JSON-RPC network.
func (c *Config) AddNetwork(name string, n NetworkEntry) error {
	if name == "" || n.RPCURL == "" {
		return errors.New("network name and rpc_url are required")
	}
	if c.Networks == nil {
		c.Networks = make(map[string]NetworkEntry)
	}
	if _, ok := c.Networks[name]; ok {
		return fmt.Errorf("network %s already exists", name)
	}
	c.Networks[name] = n
	return nil
}

// RemoveNetwork removes a custom network.
func (c *Config) RemoveNetwork(name string) error {
	if _, ok := c.Networks[name]; !ok {
		return fmt.Errorf("network %s not found", name)
	}
	delete(c.Networks, name)
	return nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
