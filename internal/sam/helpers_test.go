package sam_test

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"testing"
	"time"

	"github.com/Mohsinsiddi/samkit/internal/devnet"
	"github.com/Mohsinsiddi/samkit/internal/sam"
	"github.com/Mohsinsiddi/samkit/internal/samples"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

const (
	tokenName     = "SampleToken"
	tokenSymbol   = "SAM"
	initialSupply = 10e9 // base units
	mintAmount    = 10e3 // whole tokens
)

// signers mirrors ethers.getSigners(): owner plus a few funded accounts.
type signers struct {
	chain *devnet.Chain
	owner *ecdsa.PrivateKey
	addr1 *ecdsa.PrivateKey
	addr2 *ecdsa.PrivateKey
	addr3 *ecdsa.PrivateKey
}

func addr(k *ecdsa.PrivateKey) common.Address { return crypto.PubkeyToAddress(k.PublicKey) }

func newSigners(t *testing.T) signers {
	t.Helper()
	c := samples.NewDevnet(devnet.WithClock(func() time.Time { return time.Unix(1_700_000_000, 0) }))
	keys := make([]*ecdsa.PrivateKey, 4)
	for i := range keys {
		k, err := c.Key(i)
		require.NoError(t, err)
		keys[i] = k
	}
	return signers{chain: c, owner: keys[0], addr1: keys[1], addr2: keys[2], addr3: keys[3]}
}

func deployToken(t *testing.T, s signers) *sam.Token {
	t.Helper()
	tok, _, err := sam.DeployToken(context.Background(), s.chain, s.owner, nil, tokenName, tokenSymbol, big.NewInt(initialSupply))
	require.NoError(t, err)
	return tok
}

// wholeTokens scales n by 10^18.
func wholeTokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

// deployFaucetStack deploys the token and a faucet and makes the faucet a minter.
func deployFaucetStack(t *testing.T, s signers, forwarder common.Address) (*sam.Token, *sam.Faucet) {
	t.Helper()
	ctx := context.Background()
	tok := deployToken(t, s)

	f, _, err := sam.DeployFaucet(ctx, s.chain, s.owner, nil, tokenSymbol, tok.Address(), wholeTokens(mintAmount), forwarder)
	require.NoError(t, err)

	_, err = tok.AddMinter(ctx, f.Address())
	require.NoError(t, err)
	return tok, f
}

func deployFaucetOnly(ctx context.Context, s signers, token common.Address) (*sam.Faucet, *types.Receipt, error) {
	return sam.DeployFaucet(ctx, s.chain, s.owner, nil, tokenSymbol, token, wholeTokens(mintAmount), common.Address{})
}
