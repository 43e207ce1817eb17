// Package deploy is the SAM deployment script: it deploys the token and,
// optionally, a faucet that is allowed to mint it.
package deploy

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/Mohsinsiddi/samkit/internal/config"
	"github.com/Mohsinsiddi/samkit/internal/contract"
	"github.com/Mohsinsiddi/samkit/internal/sam"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Supported token contracts.
const (
	ContractSampleToken = "SampleToken"
	ContractSampleCoin  = "SampleCoin"
	ContractFaucet      = "Faucet"
)

// ErrFaucetNeedsMinter is returned when a faucet is requested for a token
// without a minter role.
var ErrFaucetNeedsMinter = errors.New("faucet requires a SampleToken (SampleCoin has no minters)")

// Params controls what gets deployed.
type Params struct {
	Contract      string
	Name          string
	Symbol        string
	InitialSupply *big.Int // base units, not scaled by decimals

	WithFaucet   bool
	FaucetAmount *big.Int // base units per drip
	Forwarder    common.Address

	// Artifacts overrides the embedded ABI-only artifacts by contract name.
	// RPC networks need compiled bytecode; the devnet does not.
	Artifacts map[string]*contract.Artifact
}

// DefaultParams is the stock deployment: SampleToken "Sample Coin"
// (SAM) with an initial supply of 10e9 base units.
func DefaultParams() Params {
	supply, _ := new(big.Int).SetString(config.DefaultInitialSupply, 10)
	amount, _ := new(big.Int).SetString(config.DefaultFaucetAmount, 10)
	return Params{
		Contract:      config.DefaultTokenContract,
		Name:          config.DefaultTokenName,
		Symbol:        config.DefaultTokenSymbol,
		InitialSupply: supply,
		FaucetAmount:  new(big.Int).Mul(amount, new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)),
	}
}

// Validate checks params before anything is sent.
func (p Params) Validate() error {
	switch p.Contract {
	case ContractSampleToken, ContractSampleCoin:
	default:
		return fmt.Errorf("unsupported contract %q (want %s or %s)", p.Contract, ContractSampleToken, ContractSampleCoin)
	}
	if p.Symbol == "" {
		return errors.New("symbol must not be empty")
	}
	if p.InitialSupply == nil || p.InitialSupply.Sign() < 0 {
		return errors.New("initial supply must be zero or positive")
	}
	if p.WithFaucet {
		if p.Contract != ContractSampleToken {
			return ErrFaucetNeedsMinter
		}
		if p.FaucetAmount == nil || p.FaucetAmount.Sign() <= 0 {
			return errors.New("faucet amount must be positive")
		}
	}
	return nil
}

// Step is one mined deployment.
type Step struct {
	Name     string
	Contract string
	Address  common.Address
	TxHash   common.Hash
	Block    uint64
}

// Result is everything Run deployed.
type Result struct {
	Deployer common.Address
	Balance  *big.Int
	Token    Step
	Faucet   *Step
	MinterTx common.Hash // addMinter(faucet), zero without a faucet
}

// Run deploys the token (and the faucet when requested) from key and
// writes progress lines to out.
func Run(ctx context.Context, backend contract.Backend, key *ecdsa.PrivateKey, p Params, out io.Writer) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if key == nil {
		return nil, contract.ErrNoSigner
	}
	deployer := crypto.PubkeyToAddress(key.PublicKey)
	fmt.Fprintln(out, "Deploying contracts with the account:", deployer.Hex())

	balance, err := backend.BalanceAt(ctx, deployer)
	if err != nil {
		return nil, fmt.Errorf("reading deployer balance: %w", err)
	}
	fmt.Fprintln(out, "Account balance:", balance.String())

	res := &Result{Deployer: deployer, Balance: balance}
	art := p.Artifacts[p.Contract]

	var (
		tokenAddr common.Address
		receipt   *types.Receipt
		token     *sam.Token
	)
	switch p.Contract {
	case ContractSampleCoin:
		var coin *sam.Coin
		coin, receipt, err = sam.DeployCoin(ctx, backend, key, art, p.Name, p.Symbol, p.InitialSupply)
		if err == nil {
			tokenAddr = coin.Address()
		}
	default:
		token, receipt, err = sam.DeployToken(ctx, backend, key, art, p.Name, p.Symbol, p.InitialSupply)
		if err == nil {
			tokenAddr = token.Address()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("deploying %s: %w", p.Contract, err)
	}
	res.Token = step(p.Symbol, p.Contract, tokenAddr, receipt)
	fmt.Fprintf(out, "%s deployed to: %s\n", p.Symbol, tokenAddr.Hex())

	if !p.WithFaucet {
		return res, nil
	}

	faucet, receipt, err := sam.DeployFaucet(ctx, backend, key, p.Artifacts[ContractFaucet], p.Symbol, tokenAddr, p.FaucetAmount, p.Forwarder)
	if err != nil {
		return res, fmt.Errorf("deploying faucet: %w", err)
	}
	fs := step(p.Symbol+"Faucet", ContractFaucet, faucet.Address(), receipt)
	res.Faucet = &fs
	fmt.Fprintln(out, "Faucet deployed to:", faucet.Address().Hex())

	receipt, err = token.AddMinter(ctx, faucet.Address())
	if err != nil {
		return res, fmt.Errorf("granting faucet the minter role: %w", err)
	}
	res.MinterTx = receipt.TxHash
	fmt.Fprintf(out, "Faucet added as %s minter\n", p.Symbol)
	return res, nil
}

func step(name, kind string, addr common.Address, r *types.Receipt) Step {
	s := Step{Name: name, Contract: kind, Address: addr}
	if r != nil {
		s.TxHash = r.TxHash
		if r.BlockNumber != nil {
			s.Block = r.BlockNumber.Uint64()
		}
	}
	return s
}

// Record adds the deployments in res to reg under network and saves it.
func Record(reg *contract.Registry, network string, res *Result) error {
	steps := []Step{res.Token}
	if res.Faucet != nil {
		steps = append(steps, *res.Faucet)
	}
	for _, s := range steps {
		reg.Add(&contract.Deployment{
			Name:     s.Name,
			Contract: s.Contract,
			Network:  network,
			Address:  s.Address.Hex(),
			Deployer: res.Deployer.Hex(),
			TxHash:   s.TxHash.Hex(),
			Block:    s.Block,
		})
	}
	if err := reg.Save(); err != nil {
		return fmt.Errorf("saving deployments: %w", err)
	}
	return nil
}
