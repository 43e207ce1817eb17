package sync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Mohsinsiddi/samkit/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tokenAddr  = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	faucetAddr = "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func testSyncer(t *testing.T) (*Syncer, *contract.Registry) {
	t.Helper()
	reg := contract.NewRegistry(filepath.Join(t.TempDir(), "deployments.json"))
	s := New(reg)
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s, reg
}

func manifestServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv
}

const jsonManifest = `[
  {"name": "SAM", "contract": "SampleToken", "network": "sepolia", "address": "0x5fbdb2315678afecb367f032d93f642f64180aa3", "block": 12},
  {"name": "SAMFaucet", "contract": "Faucet", "network": "sepolia", "address": "` + faucetAddr + `", "block": 13},
  {"name": "SAM", "contract": "SampleToken", "network": "localhost", "address": "` + tokenAddr + `"}
]`

// ---------------------------------------------------------------------------
// Parse
// ---------------------------------------------------------------------------

func TestParseJSONChecksumsAddresses(t *testing.T) {
	entries, err := Parse([]byte(jsonManifest))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, tokenAddr, entries[0].Address)
	assert.Equal(t, uint64(12), entries[0].Block)
}

func TestParseYAML(t *testing.T) {
	data := `
- name: SAM
  contract: SampleToken
  network: sepolia
  address: ` + tokenAddr + `
  block: 7
`
	entries, err := Parse([]byte(data))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "SampleToken", entries[0].Contract)
	assert.Equal(t, uint64(7), entries[0].Block)
}

func TestParseRejectsBadEntries(t *testing.T) {
	_, err := Parse([]byte(`[{"name": "SAM", "network": "sepolia", "address": "0x123"}]`))
	assert.ErrorContains(t, err, "invalid address")

	_, err = Parse([]byte(`[{"name": "SAM", "address": "` + tokenAddr + `"}]`))
	assert.ErrorContains(t, err, "network are required")

	_, err = Parse([]byte(`{not json`))
	assert.Error(t, err)
}

func TestParseRoundTripsExport(t *testing.T) {
	_, reg := testSyncer(t)
	reg.Add(&contract.Deployment{Name: "SAM", Contract: "SampleToken", Network: "sepolia", Address: tokenAddr})

	path := filepath.Join(t.TempDir(), "export.yaml")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, reg.ExportYAML(f))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	entries, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "SAM", entries[0].Name)
}

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

func TestRunFromURL(t *testing.T) {
	s, reg := testSyncer(t)
	srv := manifestServer(t, jsonManifest)

	res, err := s.Run(context.Background(), srv.URL, "", false)
	require.NoError(t, err)
	assert.Equal(t, Result{Added: 3}, res)

	d, err := reg.Get("SAMFaucet", "sepolia")
	require.NoError(t, err)
	assert.Equal(t, faucetAddr, d.Address)
	assert.Equal(t, 2026, d.DeployedAt.Year(), "missing timestamps are filled in")

	// Persisted.
	again := contract.NewRegistry(reg.Path())
	require.NoError(t, again.Load())
	assert.Len(t, again.All(), 3)
}

func TestRunFiltersNetwork(t *testing.T) {
	s, reg := testSyncer(t)
	srv := manifestServer(t, jsonManifest)

	res, err := s.Run(context.Background(), srv.URL, "localhost", false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)
	assert.Len(t, reg.All(), 1)
}

func TestRunFromFile(t *testing.T) {
	s, reg := testSyncer(t)
	path := filepath.Join(t.TempDir(), "shared.json")
	require.NoError(t, os.WriteFile(path, []byte(jsonManifest), 0o600))

	_, err := s.Run(context.Background(), path, "sepolia", false)
	require.NoError(t, err)
	assert.Len(t, reg.All(), 2)
}

func TestRunConflicts(t *testing.T) {
	s, reg := testSyncer(t)
	reg.Add(&contract.Deployment{Name: "SAM", Network: "sepolia", Address: faucetAddr})
	reg.Add(&contract.Deployment{Name: "SAMFaucet", Network: "sepolia", Address: faucetAddr})
	srv := manifestServer(t, jsonManifest)

	res, err := s.Run(context.Background(), srv.URL, "sepolia", false)
	require.NoError(t, err)
	assert.Equal(t, Result{Unchanged: 1, Skipped: 1}, res)
	d, _ := reg.Get("SAM", "sepolia")
	assert.Equal(t, faucetAddr, d.Address, "kept without overwrite")

	res, err = s.Run(context.Background(), srv.URL, "sepolia", true)
	require.NoError(t, err)
	assert.Equal(t, Result{Updated: 1, Unchanged: 1}, res)
	d, _ = reg.Get("SAM", "sepolia")
	assert.Equal(t, tokenAddr, d.Address)
}

func TestRunHTTPError(t *testing.T) {
	s, _ := testSyncer(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := s.Run(context.Background(), srv.URL, "", false)
	assert.ErrorContains(t, err, "404")
}

func TestRunMissingFile(t *testing.T) {
	s, _ := testSyncer(t)
	_, err := s.Run(context.Background(), filepath.Join(t.TempDir(), "nope.json"), "", false)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
