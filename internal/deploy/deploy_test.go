package deploy_test

import (
	"bytes"
	"context"
	"math/big"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Mohsinsiddi/samkit/internal/contract"
	"github.com/Mohsinsiddi/samkit/internal/deploy"
	"github.com/Mohsinsiddi/samkit/internal/devnet"
	"github.com/Mohsinsiddi/samkit/internal/sam"
	"github.com/Mohsinsiddi/samkit/internal/samples"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	firstDeployment  = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	secondDeployment = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
)

func newChain(t *testing.T) *devnet.Chain {
	t.Helper()
	return samples.NewDevnet()
}

// ---------------------------------------------------------------------------
// defaults / validation
// ---------------------------------------------------------------------------

func TestDefaultParams(t *testing.T) {
	p := deploy.DefaultParams()
	assert.Equal(t, "SampleToken", p.Contract)
	assert.Equal(t, "Sample Coin", p.Name)
	assert.Equal(t, "SAM", p.Symbol)
	assert.Equal(t, "10000000000", p.InitialSupply.String())
	assert.False(t, p.WithFaucet)
	assert.Equal(t, "10000000000000000000000", p.FaucetAmount.String())
	assert.NoError(t, p.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*deploy.Params)
	}{
		{"unknown contract", func(p *deploy.Params) { p.Contract = "ERC721" }},
		{"empty symbol", func(p *deploy.Params) { p.Symbol = "" }},
		{"nil supply", func(p *deploy.Params) { p.InitialSupply = nil }},
		{"negative supply", func(p *deploy.Params) { p.InitialSupply = big.NewInt(-1) }},
		{"zero faucet amount", func(p *deploy.Params) { p.WithFaucet = true; p.FaucetAmount = big.NewInt(0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := deploy.DefaultParams()
			tt.edit(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestValidateFaucetNeedsSampleToken(t *testing.T) {
	p := deploy.DefaultParams()
	p.Contract = deploy.ContractSampleCoin
	p.WithFaucet = true
	assert.ErrorIs(t, p.Validate(), deploy.ErrFaucetNeedsMinter)
}

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

func TestRunLogsAndDeploys(t *testing.T) {
	c := newChain(t)
	key, err := c.Key(0)
	require.NoError(t, err)

	var out bytes.Buffer
	res, err := deploy.Run(context.Background(), c, key, deploy.DefaultParams(), &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Deploying contracts with the account: 0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", lines[0])
	assert.Equal(t, "Account balance: 10000000000000000000000", lines[1])
	assert.Equal(t, "SAM deployed to: "+firstDeployment.Hex(), lines[2])

	assert.Equal(t, firstDeployment, res.Token.Address)
	assert.Equal(t, "SAM", res.Token.Name)
	assert.Equal(t, uint64(1), res.Token.Block)
	assert.NotEqual(t, common.Hash{}, res.Token.TxHash)
	assert.Nil(t, res.Faucet)

	tok := sam.BindToken(c, res.Token.Address)
	supply, err := tok.TotalSupply(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10e9), supply.Int64())
	name, err := tok.Name(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Sample Coin", name)
}

func TestRunWithFaucet(t *testing.T) {
	c := newChain(t)
	key, err := c.Key(0)
	require.NoError(t, err)

	p := deploy.DefaultParams()
	p.WithFaucet = true
	var out bytes.Buffer
	res, err := deploy.Run(context.Background(), c, key, p, &out)
	require.NoError(t, err)

	require.NotNil(t, res.Faucet)
	assert.Equal(t, secondDeployment, res.Faucet.Address)
	assert.NotEqual(t, common.Hash{}, res.MinterTx)
	assert.Contains(t, out.String(), "Faucet deployed to: "+secondDeployment.Hex())
	assert.Contains(t, out.String(), "Faucet added as SAM minter")

	minters, err := sam.BindToken(c, res.Token.Address).Minters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []common.Address{res.Deployer, res.Faucet.Address}, minters)

	other, err := c.Key(1)
	require.NoError(t, err)
	_, err = sam.BindFaucet(c, res.Faucet.Address).Connect(other).Drip(context.Background())
	require.NoError(t, err)
}

func TestRunSampleCoin(t *testing.T) {
	c := newChain(t)
	key, err := c.Key(0)
	require.NoError(t, err)

	p := deploy.DefaultParams()
	p.Contract = deploy.ContractSampleCoin
	res, err := deploy.Run(context.Background(), c, key, p, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "SampleCoin", res.Token.Contract)

	v, err := sam.BindCoin(c, res.Token.Address).Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestRunNilKey(t *testing.T) {
	_, err := deploy.Run(context.Background(), newChain(t), nil, deploy.DefaultParams(), &bytes.Buffer{})
	assert.ErrorIs(t, err, contract.ErrNoSigner)
}

func TestRunInvalidParamsSendsNothing(t *testing.T) {
	c := newChain(t)
	key, err := c.Key(0)
	require.NoError(t, err)

	p := deploy.DefaultParams()
	p.Contract = "Nope"
	var out bytes.Buffer
	_, err = deploy.Run(context.Background(), c, key, p, &out)
	require.Error(t, err)
	assert.Empty(t, out.String())
	n, err := c.BlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)
}

func TestRunArtifactOverrideWithoutConstructor(t *testing.T) {
	c := newChain(t)
	key, err := c.Key(0)
	require.NoError(t, err)

	builtin, ok := contract.Builtin("SampleToken")
	require.True(t, ok)
	renamed := *builtin.Artifact
	renamed.ContractName = "MyToken"

	p := deploy.DefaultParams()
	p.Artifacts = map[string]*contract.Artifact{"SampleToken": &renamed}
	_, err = deploy.Run(context.Background(), c, key, p, &bytes.Buffer{})
	assert.ErrorIs(t, err, devnet.ErrUnknownContract)
}

// ---------------------------------------------------------------------------
// Record
// ---------------------------------------------------------------------------

func TestRecordWritesRegistry(t *testing.T) {
	c := newChain(t)
	key, err := c.Key(0)
	require.NoError(t, err)

	p := deploy.DefaultParams()
	p.WithFaucet = true
	res, err := deploy.Run(context.Background(), c, key, p, &bytes.Buffer{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sub", "deployments.json")
	require.NoError(t, deploy.Record(contract.NewRegistry(path), "hardhat", res))

	reg := contract.NewRegistry(path)
	require.NoError(t, reg.Load())
	tokenDep, err := reg.Get("SAM", "hardhat")
	require.NoError(t, err)
	assert.Equal(t, firstDeployment.Hex(), tokenDep.Address)
	assert.Equal(t, "SampleToken", tokenDep.Contract)
	assert.Equal(t, res.Deployer.Hex(), tokenDep.Deployer)
	assert.NotEmpty(t, tokenDep.ID)

	faucetDep, err := reg.Get("SAMFaucet", "hardhat")
	require.NoError(t, err)
	assert.Equal(t, "Faucet", faucetDep.Contract)
	assert.Len(t, reg.All(), 2)
}
