package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrContractNotFound is returned when a deployment or artifact is not found.
var ErrContractNotFound = errors.New("contract not found")

// Deployment is one recorded contract deployment.
type Deployment struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`         // alias, e.g. "SAM"
	Contract   string    `json:"contract" yaml:"contract"` // artifact name, e.g. "SampleToken"
	Network    string    `json:"network" yaml:"network"`
	Address    string    `json:"address" yaml:"address"`
	Deployer   string    `json:"deployer" yaml:"deployer"`
	TxHash     string    `json:"tx_hash" yaml:"tx_hash"`
	Block      uint64    `json:"block" yaml:"block"`
	DeployedAt time.Time `json:"deployed_at" yaml:"deployed_at"`
}

// Registry stores deployments keyed by "name@network".
type Registry struct {
	path        string
	deployments map[string]*Deployment
}

// NewRegistry creates a Registry backed by a JSON file.
func NewRegistry(path string) *Registry {
	return &Registry{
		path:        path,
		deployments: make(map[string]*Deployment),
	}
}

// Load reads stored deployments from disk. A missing file is an empty registry.
func (r *Registry) Load() error {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var entries []Deployment
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing %s: %w", r.path, err)
	}
	for i := range entries {
		d := &entries[i]
		r.deployments[key(d.Name, d.Network)] = d
	}
	return nil
}

// Save writes all deployments to disk, oldest first.
func (r *Registry) Save() error {
	entries := make([]Deployment, 0, len(r.deployments))
	for _, d := range r.All() {
		entries = append(entries, *d)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o600)
}

// Path is the backing file.
func (r *Registry) Path() string { return r.path }

// Add adds or replaces a deployment, assigning an ID and timestamp if unset.
func (r *Registry) Add(d *Deployment) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.DeployedAt.IsZero() {
		d.DeployedAt = time.Now().UTC()
	}
	r.deployments[key(d.Name, d.Network)] = d
}

// Get returns a deployment by name and network.
func (r *Registry) Get(name, network string) (*Deployment, error) {
	d, ok := r.deployments[key(name, network)]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrContractNotFound, name, network)
	}
	return d, nil
}

// ByContract returns the deployments of an artifact on network, newest first.
func (r *Registry) ByContract(contract, network string) []*Deployment {
	var out []*Deployment
	for _, d := range r.deployments {
		if strings.EqualFold(d.Contract, contract) && d.Network == network {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeployedAt.After(out[j].DeployedAt) })
	return out
}

// All returns every deployment, oldest first.
func (r *Registry) All() []*Deployment {
	out := make([]*Deployment, 0, len(r.deployments))
	for _, d := range r.deployments {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DeployedAt.Equal(out[j].DeployedAt) {
			return key(out[i].Name, out[i].Network) < key(out[j].Name, out[j].Network)
		}
		return out[i].DeployedAt.Before(out[j].DeployedAt)
	})
	return out
}

// Remove deletes a deployment.
func (r *Registry) Remove(name, network string) error {
	k := key(name, network)
	if _, ok := r.deployments[k]; !ok {
		return fmt.Errorf("%w: %s on %s", ErrContractNotFound, name, network)
	}
	delete(r.deployments, k)
	return nil
}

// ExportYAML writes all deployments as a YAML list.
func (r *Registry) ExportYAML(w io.Writer) error {
	entries := make([]Deployment, 0, len(r.deployments))
	for _, d := range r.All() {
		entries = append(entries, *d)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encoding deployments: %w", err)
	}
	return enc.Close()
}

func key(name, network string) string {
	return name + "@" + network
}
