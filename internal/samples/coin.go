package samples

import (
	"math/big"

	"github.com/Mohsinsiddi/samkit/internal/devnet"
	"github.com/Mohsinsiddi/samkit/internal/permit"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// SampleCoin is an Ownable ERC20 that accepts EIP-712 signed approvals.
type SampleCoin struct {
	erc20
	ownable
	nonces map[common.Address]*big.Int
}

// NewSampleCoin is the devnet constructor for
// SampleCoin(string name, string symbol, uint256 initialSupply).
func NewSampleCoin(env *devnet.Env, raw []byte) (devnet.Contract, error) {
	args, err := coinABI.Constructor.Inputs.Unpack(raw)
	if err != nil {
		return nil, env.Revert("")
	}
	c := &SampleCoin{
		erc20:  newERC20(args[0].(string), args[1].(string)),
		nonces: make(map[common.Address]*big.Int),
	}
	if err := c.transferOwnership(env, coinABI, env.Sender); err != nil {
		return nil, err
	}
	if err := c.mint(env, coinABI, env.Sender, args[2].(*big.Int)); err != nil {
		return nil, err
	}
	return c, nil
}

// Clone implements devnet.Contract.
func (c *SampleCoin) Clone() devnet.Contract {
	cp := &SampleCoin{erc20: c.erc20.clone(), ownable: c.ownable, nonces: make(map[common.Address]*big.Int, len(c.nonces))}
	for a, n := range c.nonces {
		cp.nonces[a] = new(big.Int).Set(n)
	}
	return cp
}

// Restore implements devnet.Contract.
func (c *SampleCoin) Restore(from devnet.Contract) { *c = *from.(*SampleCoin) }

func (c *SampleCoin) nonceOf(owner common.Address) *big.Int {
	if n, ok := c.nonces[owner]; ok {
		return new(big.Int).Set(n)
	}
	return new(big.Int)
}

func (c *SampleCoin) domainSeparator(env *devnet.Env) common.Hash {
	return permit.DomainSeparator(c.name, env.ChainID, env.Self)
}

// applyPermit checks run in a fixed order so the first failing rule names the error.
func (c *SampleCoin) applyPermit(env *devnet.Env, owner, spender common.Address, amount, deadline *big.Int, sig permit.Signature) error {
	if owner == (common.Address{}) {
		return env.Fail(coinABI, "OwnerZeroAddress")
	}
	if spender == (common.Address{}) {
		return env.Fail(coinABI, "SpenderZeroAddress")
	}
	if deadline.Cmp(new(big.Int).SetUint64(env.Time)) < 0 {
		return env.Fail(coinABI, "PermitExpired")
	}

	nonce := c.nonceOf(owner)
	digest := permit.Digest(c.domainSeparator(env), permit.Message{
		Owner:    owner,
		Spender:  spender,
		Amount:   amount,
		Nonce:    nonce,
		Deadline: deadline,
	})
	recovered := permit.Recover(digest, sig)
	if recovered == (common.Address{}) {
		return env.Fail(coinABI, "RecoveredOwnerZeroAddress")
	}
	if recovered != owner {
		return env.Fail(coinABI, "InvalidSignature")
	}

	c.nonces[owner] = nonce.Add(nonce, big.NewInt(1))
	return c.approve(env, coinABI, owner, spender, amount)
}

// Run implements devnet.Contract.
func (c *SampleCoin) Run(env *devnet.Env, input []byte) ([]byte, error) {
	return devnet.Dispatch(coinABI, input, func(m *abi.Method, args []any) ([]any, error) {
		if out, ok, err := c.erc20.handle(env, coinABI, m, args); ok {
			return out, err
		}
		if out, ok, err := c.ownable.handle(env, coinABI, m, args); ok {
			return out, err
		}

		switch m.Name {
		case "DOMAIN_SEPARATOR":
			return []any{[32]byte(c.domainSeparator(env))}, nil
		case "PERMIT_TYPEHASH":
			return []any{[32]byte(permit.PermitTypeHash)}, nil
		case "version":
			return []any{permit.Version}, nil
		case "nonces":
			return []any{c.nonceOf(args[0].(common.Address))}, nil
		case "permit":
			sig := permit.Signature{V: args[4].(uint8), R: args[5].([32]byte), S: args[6].([32]byte)}
			return nil, c.applyPermit(env,
				args[0].(common.Address), args[1].(common.Address),
				args[2].(*big.Int), args[3].(*big.Int), sig)
		}
		return nil, env.Revert("")
	})
}
