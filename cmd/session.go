package cmd

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io"
	"math/big"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/samkit/internal/chain"
	"github.com/Mohsinsiddi/samkit/internal/config"
	"github.com/Mohsinsiddi/samkit/internal/contract"
	"github.com/Mohsinsiddi/samkit/internal/deploy"
	"github.com/Mohsinsiddi/samkit/internal/devnet"
	"github.com/Mohsinsiddi/samkit/internal/ens"
	"github.com/Mohsinsiddi/samkit/internal/rpc"
	"github.com/Mohsinsiddi/samkit/internal/sam"
	"github.com/Mohsinsiddi/samkit/internal/samples"
	"github.com/Mohsinsiddi/samkit/internal/ui"
	"github.com/Mohsinsiddi/samkit/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// session is one command's connection to a network.
type session struct {
	net     *chain.Network
	backend contract.Backend
	devnet  *devnet.Chain // in-process networks only
	client  *chain.Client // RPC networks only
}

func openSession(ctx context.Context) (*session, error) {
	net, err := chain.NewRegistry(cfg.Networks).Get(currentNetwork())
	if err != nil {
		return nil, fmt.Errorf("%w (see `samkit network list`)", err)
	}
	if net.InProcess {
		dn := samples.NewDevnet()
		return &session{net: net, backend: dn, devnet: dn}, nil
	}

	algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
	if err != nil {
		return nil, err
	}
	dialCtx, cancel := context.WithTimeout(ctx, config.RPCDialTimeout)
	defer cancel()
	url, err := rpc.Best(dialCtx, net.Endpoints(), algo, net.ChainID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", net.Name, err)
	}
	client, err := chain.Dial(dialCtx, url)
	if err != nil {
		return nil, err
	}
	id, err := client.ChainID(dialCtx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%s (%s) is not reachable: %w", net.Name, url, err)
	}
	if net.ChainID != 0 && id.Int64() != net.ChainID {
		client.Close()
		return nil, fmt.Errorf("%s: node reports chain id %d, expected %d", net.Name, id.Int64(), net.ChainID)
	}
	return &session{net: net, backend: client, client: client}, nil
}

func (s *session) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// signer resolves the key that sends transactions. In-process networks use
// development account #0 unless a wallet is named or a signing wallet is the
// default.
func (s *session) signer(walletName string) (*ecdsa.PrivateKey, error) {
	if walletName == "" {
		walletName = cfg.DefaultWallet
	}
	m := newWalletManager()
	if s.devnet != nil && walletName == "" {
		if w := m.Default(); w == nil || w.Type != wallet.TypeSigning {
			return s.devnet.Key(0)
		}
	}
	return wallet.Resolve(m, walletName, s.net.ChainID == devnet.DefaultChainID)
}

// tokenStack binds the SAM token and its faucet. In-process networks get a
// freshly deployed stack; RPC networks look them up in the deployment
// registry (or take addresses directly).
func (s *session) tokenStack(ctx context.Context, tokenRef, faucetRef string) (*sam.Token, *sam.Faucet, error) {
	if s.devnet != nil {
		p, err := paramsFromConfig()
		if err != nil {
			return nil, nil, err
		}
		p.Contract = deploy.ContractSampleToken
		p.WithFaucet = true
		res, err := s.autoDeploy(ctx, p)
		if err != nil {
			return nil, nil, err
		}
		return sam.BindToken(s.backend, res.Token.Address), sam.BindFaucet(s.backend, res.Faucet.Address), nil
	}

	tokenAddr, err := s.lookup(tokenRef, cfg.Token.Symbol)
	if err != nil {
		return nil, nil, err
	}
	tok := sam.BindToken(s.backend, tokenAddr)

	faucetAddr, err := s.lookup(faucetRef, cfg.Token.Symbol+"Faucet")
	if errors.Is(err, contract.ErrContractNotFound) {
		return tok, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return tok, sam.BindFaucet(s.backend, faucetAddr), nil
}

// faucetStack binds a faucet and the token it mints, read from the faucet
// itself.
func (s *session) faucetStack(ctx context.Context, faucetRef string) (*sam.Token, *sam.Faucet, error) {
	if s.devnet != nil {
		return s.tokenStack(ctx, "", faucetRef)
	}
	faucetAddr, err := s.lookup(faucetRef, cfg.Token.Symbol+"Faucet")
	if errors.Is(err, contract.ErrContractNotFound) {
		return nil, nil, errNoFaucet
	}
	if err != nil {
		return nil, nil, err
	}
	f := sam.BindFaucet(s.backend, faucetAddr)
	tokenAddr, err := f.Token(ctx)
	if err != nil {
		return nil, nil, err
	}
	return sam.BindToken(s.backend, tokenAddr), f, nil
}

// coin binds a SampleCoin, deploying one on in-process networks.
func (s *session) coin(ctx context.Context, ref string) (*sam.Coin, error) {
	if s.devnet != nil {
		p, err := paramsFromConfig()
		if err != nil {
			return nil, err
		}
		p.Contract = deploy.ContractSampleCoin
		p.WithFaucet = false
		res, err := s.autoDeploy(ctx, p)
		if err != nil {
			return nil, err
		}
		return sam.BindCoin(s.backend, res.Token.Address), nil
	}
	addr, err := s.lookup(ref, cfg.Token.Symbol)
	if err != nil {
		return nil, err
	}
	return sam.BindCoin(s.backend, addr), nil
}

func (s *session) autoDeploy(ctx context.Context, p deploy.Params) (*deploy.Result, error) {
	key, err := s.devnet.Key(0)
	if err != nil {
		return nil, err
	}
	res, err := deploy.Run(ctx, s.backend, key, p, io.Discard)
	if err != nil {
		return nil, fmt.Errorf("deploying %s on %s: %w", p.Contract, s.net.Name, err)
	}
	return res, nil
}

// lookup resolves ref (an address or a deployment name, fallback when empty)
// on the session network.
func (s *session) lookup(ref, fallback string) (common.Address, error) {
	if ref == "" {
		ref = fallback
	}
	if common.IsHexAddress(ref) {
		return common.HexToAddress(ref), nil
	}
	reg, err := openRegistry()
	if err != nil {
		return common.Address{}, err
	}
	d, err := reg.Get(ref, s.net.Name)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w (deploy first with `samkit deploy --network %s`)", err, s.net.Name)
	}
	return common.HexToAddress(d.Address), nil
}

// resolveAddress accepts a hex address, an ENS name, a wallet name or a development
// account index such as "#1".
func (s *session) resolveAddress(ctx context.Context, arg string) (common.Address, error) {
	if common.IsHexAddress(arg) {
		return common.HexToAddress(arg), nil
	}
	if ens.IsName(arg) {
		if s.devnet != nil {
			return common.Address{}, fmt.Errorf("cannot resolve %q: ENS is not available on %s", arg, s.net.Name)
		}
		return ens.Resolve(ctx, s.backend, arg)
	}
	if strings.HasPrefix(arg, "#") {
		i, err := strconv.Atoi(arg[1:])
		accts := wallet.HardhatAccounts()
		if err != nil || i < 0 || i >= len(accts) {
			return common.Address{}, fmt.Errorf("unknown development account %q (have #0-#%d)", arg, len(accts)-1)
		}
		return accts[i].Address, nil
	}
	w, err := newWalletManager().Get(arg)
	if err != nil {
		return common.Address{}, fmt.Errorf("%q is neither an address nor a wallet: %w", arg, err)
	}
	return common.HexToAddress(w.Address), nil
}

// logTx prints the receipt details in verbose mode.
func (s *session) logTx(out io.Writer, label string, r *types.Receipt) {
	if !verbose || r == nil {
		return
	}
	line := fmt.Sprintf("  %s tx %s", label, r.TxHash.Hex())
	if r.BlockNumber != nil {
		line += fmt.Sprintf(" (block %d)", r.BlockNumber.Uint64())
	}
	fmt.Fprintln(out, ui.Meta(line))
	if link := s.net.TxURL(r.TxHash.Hex()); link != "" {
		fmt.Fprintln(out, ui.Meta("  "+link))
	}
}

func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(filepath.Join(cfg.Dir(), "wallets.json"))),
		wallet.WithKeystore(wallet.OpenKeystore(cfg.Dir())),
	)
}

func openRegistry() (*contract.Registry, error) {
	reg := contract.NewRegistry(cfg.DeploymentsPath())
	if err := reg.Load(); err != nil {
		return nil, fmt.Errorf("loading deployments: %w", err)
	}
	return reg, nil
}

// loadArtifacts reads compiled artifacts from the configured directory.
// Contracts that are missing there fall back to the embedded ABIs.
func loadArtifacts() (map[string]*contract.Artifact, error) {
	if cfg.ArtifactsDir == "" {
		return nil, nil
	}
	out := make(map[string]*contract.Artifact)
	for _, name := range []string{deploy.ContractSampleToken, deploy.ContractSampleCoin, deploy.ContractFaucet} {
		a, err := contract.FindArtifact(cfg.ArtifactsDir, name)
		if errors.Is(err, contract.ErrContractNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[name] = a
	}
	return out, nil
}

// paramsFromConfig builds deploy params from the token/faucet defaults.
func paramsFromConfig() (deploy.Params, error) {
	p := deploy.DefaultParams()
	p.Contract = cfg.Token.Contract
	p.Name = cfg.Token.Name
	p.Symbol = cfg.Token.Symbol

	supply, ok := new(big.Int).SetString(cfg.Token.InitialSupply, 10)
	if !ok {
		return p, fmt.Errorf("config token.initial_supply %q is not an integer", cfg.Token.InitialSupply)
	}
	p.InitialSupply = supply

	amount, err := chain.ParseUnits(cfg.Faucet.Amount, sam.Decimals)
	if err != nil {
		return p, fmt.Errorf("config faucet.amount: %w", err)
	}
	p.FaucetAmount = amount

	if cfg.Faucet.Forwarder != "" {
		if !common.IsHexAddress(cfg.Faucet.Forwarder) {
			return p, fmt.Errorf("config faucet.forwarder %q is not an address", cfg.Faucet.Forwarder)
		}
		p.Forwarder = common.HexToAddress(cfg.Faucet.Forwarder)
	}
	return p, nil
}

// parseAmount reads a token amount: decimal whole tokens, or base units with raw.
func parseAmount(s string, raw bool) (*big.Int, error) {
	if raw {
		n, ok := new(big.Int).SetString(s, 10)
		if !ok || n.Sign() < 0 {
			return nil, fmt.Errorf("invalid raw amount %q", s)
		}
		return n, nil
	}
	return chain.ParseUnits(s, sam.Decimals)
}

// formatAmount renders base units as "1.5 SAM (1500000000000000000)".
func formatAmount(n *big.Int, symbol string) string {
	return fmt.Sprintf("%s %s %s", chain.FormatToken(n, sam.Decimals), symbol, ui.Meta("("+n.String()+")"))
}
