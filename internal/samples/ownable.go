package samples

import (
	"github.com/Mohsinsiddi/samkit/internal/devnet"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

type ownable struct {
	owner common.Address
}

func (o *ownable) transferOwnership(env *devnet.Env, parsed *abi.ABI, newOwner common.Address) error {
	prev := o.owner
	o.owner = newOwner
	return env.Emit(parsed, "OwnershipTransferred", prev, newOwner)
}

func (o *ownable) onlyOwner(env *devnet.Env) error {
	if env.Sender != o.owner {
		return env.Revert("Ownable: caller is not the owner")
	}
	return nil
}

func (o *ownable) handle(env *devnet.Env, parsed *abi.ABI, m *abi.Method, args []any) ([]any, bool, error) {
	switch m.Name {
	case "owner":
		return []any{o.owner}, true, nil
	case "transferOwnership":
		if err := o.onlyOwner(env); err != nil {
			return nil, true, err
		}
		newOwner := args[0].(common.Address)
		if newOwner == (common.Address{}) {
			return nil, true, env.Revert("Ownable: new owner is the zero address")
		}
		return nil, true, o.transferOwnership(env, parsed, newOwner)
	}
	return nil, false, nil
}
