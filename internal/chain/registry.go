package chain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Mohsinsiddi/samkit/internal/config"
	"github.com/Mohsinsiddi/samkit/internal/devnet"
)

// ErrChainNotFound is returned when a network is not in the registry.
var ErrChainNotFound = errors.New("network not found")

// Network holds the metadata for one deployment target.
type Network struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	ChainID     int64  `json:"chain_id"`
	RPCURL      string `json:"rpc_url,omitempty"`
	// FallbackRPCs are tried alongside RPCURL when choosing an endpoint.
	FallbackRPCs   []string `json:"fallback_rpc_urls,omitempty"`
	Explorer       string   `json:"explorer,omitempty"`
	NativeCurrency string   `json:"native_currency"`
	// InProcess networks run on a fresh devnet inside the binary.
	InProcess bool `json:"in_process"`
	// Custom is set for networks that come from the config file.
	Custom bool `json:"custom,omitempty"`
}

// TxURL returns the explorer link for a transaction, or "" without an explorer.
func (n *Network) TxURL(hash string) string {
	if n.Explorer == "" {
		return ""
	}
	return strings.TrimRight(n.Explorer, "/") + "/tx/" + hash
}

// Endpoints returns RPCURL followed by the fallbacks, without duplicates.
func (n *Network) Endpoints() []string {
	seen := make(map[string]bool, 1+len(n.FallbackRPCs))
	var out []string
	for _, u := range append([]string{n.RPCURL}, n.FallbackRPCs...) {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// AddressURL returns the explorer link for an address, or "".
func (n *Network) AddressURL(addr string) string {
	if n.Explorer == "" {
		return ""
	}
	return strings.TrimRight(n.Explorer, "/") + "/address/" + addr
}

// Registry is the network registry.
type Registry struct {
	networks []Network
	byName   map[string]*Network
	byID     map[int64]*Network
}

// NewRegistry returns the built-in networks plus custom, which may override
// a built-in of the same name.
func NewRegistry(custom map[string]config.NetworkEntry) *Registry {
	nets := builtinNetworks()
	index := make(map[string]int, len(nets))
	for i, n := range nets {
		index[n.Name] = i
	}

	names := make([]string, 0, len(custom))
	for name := range custom {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		e := custom[name]
		n := Network{
			Name:           strings.ToLower(name),
			DisplayName:    name,
			ChainID:        e.ChainID,
			RPCURL:         e.RPCURL,
			FallbackRPCs:   e.FallbackRPCs,
			Explorer:       e.Explorer,
			NativeCurrency: "ETH",
			Custom:         true,
		}
		if i, ok := index[n.Name]; ok {
			nets[i] = n
			continue
		}
		index[n.Name] = len(nets)
		nets = append(nets, n)
	}

	r := &Registry{
		networks: nets,
		byName:   make(map[string]*Network, len(nets)),
		byID:     make(map[int64]*Network, len(nets)),
	}
	for i := range r.networks {
		n := &r.networks[i]
		r.byName[n.Name] = n
		// first wins, so hardhat keeps 31337 over localhost
		if _, taken := r.byID[n.ChainID]; !taken && n.ChainID != 0 {
			r.byID[n.ChainID] = n
		}
	}
	return r
}

// All returns every network, built-ins first.
func (r *Registry) All() []Network {
	return r.networks
}

// Get finds a network by name (e.g. "hardhat", "sepolia").
func (r *Registry) Get(name string) (*Network, error) {
	n, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrChainNotFound, name)
	}
	return n, nil
}

// GetByChainID finds a network by its numeric chain ID.
func (r *Registry) GetByChainID(id int64) (*Network, error) {
	n, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: chain id %d", ErrChainNotFound, id)
	}
	return n, nil
}

func builtinNetworks() []Network {
	return []Network{
		{
			Name: "hardhat", DisplayName: "Hardhat (in-process)", ChainID: devnet.DefaultChainID,
			NativeCurrency: "ETH", InProcess: true,
		},
		{
			Name: "localhost", DisplayName: "Localhost", ChainID: 31337,
			RPCURL: "http://127.0.0.1:8545", NativeCurrency: "ETH",
		},
		{
			Name: "sepolia", DisplayName: "Sepolia", ChainID: 11155111,
			RPCURL: "https://ethereum-sepolia-rpc.publicnode.com",
			FallbackRPCs: []string{
				"https://sepolia.drpc.org",
				"https://1rpc.io/sepolia",
			},
			Explorer: "https://sepolia.etherscan.io", NativeCurrency: "ETH",
		},
	}
}
