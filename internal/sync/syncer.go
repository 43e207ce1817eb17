// Package sync merges deployment manifests shared by other machines (the
// output of `samkit deployments export`) into the local registry.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Mohsinsiddi/samkit/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// maxManifestSize caps remote downloads.
const maxManifestSize = 4 << 20

// Result counts what a Run changed.
type Result struct {
	Added     int
	Updated   int
	Unchanged int
	Skipped   int // already present with another address and overwrite was off
}

// Syncer imports manifests into a registry.
type Syncer struct {
	reg    *contract.Registry
	client *http.Client
	now    func() time.Time
}

// New creates a Syncer writing to reg.
func New(reg *contract.Registry) *Syncer {
	return &Syncer{
		reg:    reg,
		client: &http.Client{Timeout: 15 * time.Second},
		now:    time.Now,
	}
}

// Run reads the manifest at source (an http(s) URL or a file path), merges
// its entries for network (all networks when empty) and saves the registry.
// Existing entries with a different address are replaced only when overwrite
// is set.
func (s *Syncer) Run(ctx context.Context, source, network string, overwrite bool) (Result, error) {
	var res Result
	data, err := s.read(ctx, source)
	if err != nil {
		return res, fmt.Errorf("reading manifest: %w", err)
	}
	entries, err := Parse(data)
	if err != nil {
		return res, err
	}

	for _, d := range entries {
		if network != "" && d.Network != network {
			continue
		}
		existing, err := s.reg.Get(d.Name, d.Network)
		switch {
		case err != nil:
			res.Added++
		case strings.EqualFold(existing.Address, d.Address):
			res.Unchanged++
			continue
		case !overwrite:
			res.Skipped++
			continue
		default:
			res.Updated++
		}
		if d.DeployedAt.IsZero() {
			d.DeployedAt = s.now().UTC()
		}
		s.reg.Add(d)
	}

	if res.Added+res.Updated == 0 {
		return res, nil
	}
	if err := s.reg.Save(); err != nil {
		return res, fmt.Errorf("saving deployments: %w", err)
	}
	return res, nil
}

// Parse decodes a JSON or YAML list of deployments and validates each entry.
func Parse(data []byte) ([]*contract.Deployment, error) {
	var entries []*contract.Deployment
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("parsing manifest: %w", err)
		}
	} else if err := yaml.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	for i, d := range entries {
		if d == nil || d.Name == "" || d.Network == "" {
			return nil, fmt.Errorf("manifest entry %d: name and network are required", i)
		}
		if !common.IsHexAddress(d.Address) {
			return nil, fmt.Errorf("manifest entry %d (%s@%s): invalid address %q", i, d.Name, d.Network, d.Address)
		}
		d.Address = common.HexToAddress(d.Address).Hex()
	}
	return entries, nil
}

func (s *Syncer) read(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return os.ReadFile(source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", source, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxManifestSize))
}
