package samples

import (
	"math/big"

	"github.com/Mohsinsiddi/samkit/internal/devnet"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// SampleToken is an Ownable ERC20 whose minters are tracked by an
// enumerable MINTER_ROLE. The deployer is owner, admin and first minter.
type SampleToken struct {
	erc20
	ownable
	roles
}

// NewSampleToken is the devnet constructor for
// SampleToken(string name, string symbol, uint256 initialSupply).
// initialSupply is minted to the deployer as-is, in base units.
func NewSampleToken(env *devnet.Env, raw []byte) (devnet.Contract, error) {
	args, err := tokenABI.Constructor.Inputs.Unpack(raw)
	if err != nil {
		return nil, env.Revert("")
	}
	t := &SampleToken{
		erc20: newERC20(args[0].(string), args[1].(string)),
		roles: newRoles(),
	}
	if err := t.transferOwnership(env, tokenABI, env.Sender); err != nil {
		return nil, err
	}
	if err := t.grant(env, tokenABI, DefaultAdminRole, env.Sender); err != nil {
		return nil, err
	}
	if err := t.grant(env, tokenABI, MinterRole, env.Sender); err != nil {
		return nil, err
	}
	if err := t.mint(env, tokenABI, env.Sender, args[2].(*big.Int)); err != nil {
		return nil, err
	}
	return t, nil
}

// Clone implements devnet.Contract.
func (t *SampleToken) Clone() devnet.Contract {
	return &SampleToken{erc20: t.erc20.clone(), ownable: t.ownable, roles: t.roles.clone()}
}

// Restore implements devnet.Contract.
func (t *SampleToken) Restore(from devnet.Contract) { *t = *from.(*SampleToken) }

// Run implements devnet.Contract.
func (t *SampleToken) Run(env *devnet.Env, input []byte) ([]byte, error) {
	return devnet.Dispatch(tokenABI, input, func(m *abi.Method, args []any) ([]any, error) {
		if out, ok, err := t.erc20.handle(env, tokenABI, m, args); ok {
			return out, err
		}
		if out, ok, err := t.ownable.handle(env, tokenABI, m, args); ok {
			return out, err
		}
		if out, ok, err := t.roles.handle(env, tokenABI, m, args); ok {
			return out, err
		}

		switch m.Name {
		case "addMinter":
			if err := t.onlyOwner(env); err != nil {
				return nil, err
			}
			return nil, t.grant(env, tokenABI, MinterRole, args[0].(common.Address))
		case "mint":
			if err := t.checkRole(env, MinterRole, env.Sender); err != nil {
				return nil, err
			}
			return nil, t.mint(env, tokenABI, args[0].(common.Address), args[1].(*big.Int))
		case "burn":
			return nil, t.burn(env, tokenABI, env.Sender, args[0].(*big.Int))
		}
		return nil, env.Revert("")
	})
}
