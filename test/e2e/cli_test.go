package e2e_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary before all E2E tests.
	tmp, err := os.MkdirTemp("", "samkit-e2e-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmp)

	binaryPath = filepath.Join(tmp, "samkit")
	// Build from the module root (two levels up from test/e2e/).
	moduleRoot, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		panic(err)
	}
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = moduleRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	os.Exit(m.Run())
}

func runCLI(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(),
		"SAMKIT_CONFIG_DIR="+configDir,
		"SAMKIT_KEYRING_BACKEND=file",
		"SAMKIT_KEYRING_PASSWORD=e2e",
		"SAMKIT_PRIVATE_KEY=",
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestVersionFlag(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "samkit")
	assert.Contains(t, out, "0.1.0")
}

func TestHelpCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"deploy", "token", "faucet", "permit", "wallet", "network", "config", "deployments"} {
		assert.Contains(t, out, sub)
	}
	assert.Contains(t, out, "--network")
}

func TestDeployHardhat(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "deploy", "--network", "hardhat")
	require.NoError(t, err, out)

	assert.Contains(t, out, "Deploying contracts with the account: 0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	assert.Contains(t, out, "Account balance: 10000000000000000000000")
	assert.Contains(t, out, "SAM deployed to: 0x5FbDB2315678afecb367f032d93F642f64180aa3")
}

func TestDeployWithFaucetHardhat(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "deploy", "--with-faucet")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Faucet deployed to: 0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	assert.Contains(t, out, "Faucet added as SAM minter")
}

func TestConfigDefaultNetworkPersists(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "config", "set", "default_network", "sepolia")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "sepolia")
}

func TestEnvOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	cmd := exec.Command(binaryPath, "config", "show")
	cmd.Env = append(os.Environ(), "SAMKIT_CONFIG_DIR="+dir, "SAMKIT_TOKEN_SYMBOL=ENV")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err)
	assert.Contains(t, string(out), "ENV")
}

func TestWalletImportFromStdin(t *testing.T) {
	dir := t.TempDir()
	cmd := exec.Command(binaryPath, "wallet", "import", "dev1")
	cmd.Env = append(os.Environ(),
		"SAMKIT_CONFIG_DIR="+dir,
		"SAMKIT_KEYRING_BACKEND=file",
		"SAMKIT_KEYRING_PASSWORD=e2e",
	)
	cmd.Stdin = strings.NewReader("0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d\n")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))

	list, err := runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.Contains(t, list, "dev1")
	assert.Contains(t, list, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
}

func TestUnreachableNodeFails(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "network", "add", "dead", "--rpc", "http://127.0.0.1:1", "--chain-id", "31337")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "token", "info", "--network", "dead")
	require.Error(t, err)
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, out, "not reachable")
}

func TestUnknownCommandShowsError(t *testing.T) {
	dir := t.TempDir()
	out, _ := runCLI(t, dir, "unknowncommand")
	assert.Contains(t, strings.ToLower(out), "unknown command")
}
