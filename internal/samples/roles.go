package samples

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/samkit/internal/devnet"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	// DefaultAdminRole administers every other role.
	DefaultAdminRole = [32]byte{}

	// MinterRole is keccak256("MINTER_ROLE").
	MinterRole = [32]byte(crypto.Keccak256Hash([]byte("MINTER_ROLE")))
)

// roles is AccessControlEnumerable: members are listed in grant order and
// a revoke swaps the last member into the freed slot.
type roles struct {
	members map[[32]byte][]common.Address
	admins  map[[32]byte][32]byte
}

func newRoles() roles {
	return roles{
		members: make(map[[32]byte][]common.Address),
		admins:  make(map[[32]byte][32]byte),
	}
}

func (r *roles) clone() roles {
	cp := newRoles()
	for role, m := range r.members {
		cp.members[role] = append([]common.Address(nil), m...)
	}
	for role, admin := range r.admins {
		cp.admins[role] = admin
	}
	return cp
}

func (r *roles) hasRole(role [32]byte, account common.Address) bool {
	for _, m := range r.members[role] {
		if m == account {
			return true
		}
	}
	return false
}

func (r *roles) adminOf(role [32]byte) [32]byte {
	return r.admins[role]
}

func (r *roles) checkRole(env *devnet.Env, role [32]byte, account common.Address) error {
	if r.hasRole(role, account) {
		return nil
	}
	return env.Revert(fmt.Sprintf("AccessControl: account %s is missing role %s",
		strings.ToLower(account.Hex()), hexutil.Encode(role[:])))
}

func (r *roles) grant(env *devnet.Env, parsed *abi.ABI, role [32]byte, account common.Address) error {
	if r.hasRole(role, account) {
		return nil
	}
	r.members[role] = append(r.members[role], account)
	return env.Emit(parsed, "RoleGranted", role, account, env.Sender)
}

func (r *roles) revoke(env *devnet.Env, parsed *abi.ABI, role [32]byte, account common.Address) error {
	list := r.members[role]
	for i, m := range list {
		if m != account {
			continue
		}
		last := len(list) - 1
		list[i] = list[last]
		r.members[role] = list[:last]
		return env.Emit(parsed, "RoleRevoked", role, account, env.Sender)
	}
	return nil
}

func (r *roles) handle(env *devnet.Env, parsed *abi.ABI, m *abi.Method, args []any) ([]any, bool, error) {
	switch m.Name {
	case "DEFAULT_ADMIN_ROLE":
		return []any{DefaultAdminRole}, true, nil
	case "MINTER_ROLE":
		return []any{MinterRole}, true, nil
	case "hasRole":
		return []any{r.hasRole(args[0].([32]byte), args[1].(common.Address))}, true, nil
	case "getRoleMemberCount":
		return []any{big.NewInt(int64(len(r.members[args[0].([32]byte)])))}, true, nil
	case "getRoleMember":
		role, idx := args[0].([32]byte), args[1].(*big.Int)
		list := r.members[role]
		if !idx.IsInt64() || idx.Int64() >= int64(len(list)) {
			return nil, true, env.Revert("")
		}
		return []any{list[idx.Int64()]}, true, nil
	case "grantRole":
		role := args[0].([32]byte)
		if err := r.checkRole(env, r.adminOf(role), env.Sender); err != nil {
			return nil, true, err
		}
		return nil, true, r.grant(env, parsed, role, args[1].(common.Address))
	case "revokeRole":
		role := args[0].([32]byte)
		if err := r.checkRole(env, r.adminOf(role), env.Sender); err != nil {
			return nil, true, err
		}
		return nil, true, r.revoke(env, parsed, role, args[1].(common.Address))
	case "renounceRole":
		role, account := args[0].([32]byte), args[1].(common.Address)
		if account != env.Sender {
			return nil, true, env.Revert("AccessControl: can only renounce roles for self")
		}
		return nil, true, r.revoke(env, parsed, role, account)
	}
	return nil, false, nil
}
