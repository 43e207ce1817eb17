// Package samples holds the native implementations of SampleToken,
// SampleCoin and Faucet that the in-process devnet deploys in place of
// their bytecode.
package samples

import (
	"math/big"

	"github.com/Mohsinsiddi/samkit/internal/contract"
	"github.com/Mohsinsiddi/samkit/internal/devnet"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
)

// Decimals of every sample token.
const Decimals = 18

var (
	tokenABI  = builtinABI("SampleToken")
	coinABI   = builtinABI("SampleCoin")
	faucetABI = builtinABI("Faucet")
)

func builtinABI(name string) *abi.ABI {
	b, ok := contract.Builtin(name)
	if !ok {
		panic("samples: no builtin artifact " + name)
	}
	return &b.Artifact.ABI
}

// erc20 is the OpenZeppelin 4.x ERC20 core.
type erc20 struct {
	name        string
	symbol      string
	totalSupply *big.Int
	balances    map[common.Address]*big.Int
	allowances  map[common.Address]map[common.Address]*big.Int
}

func newERC20(name, symbol string) erc20 {
	return erc20{
		name:        name,
		symbol:      symbol,
		totalSupply: new(big.Int),
		balances:    make(map[common.Address]*big.Int),
		allowances:  make(map[common.Address]map[common.Address]*big.Int),
	}
}

func (t *erc20) clone() erc20 {
	cp := newERC20(t.name, t.symbol)
	cp.totalSupply.Set(t.totalSupply)
	for a, b := range t.balances {
		cp.balances[a] = new(big.Int).Set(b)
	}
	for o, m := range t.allowances {
		inner := make(map[common.Address]*big.Int, len(m))
		for s, v := range m {
			inner[s] = new(big.Int).Set(v)
		}
		cp.allowances[o] = inner
	}
	return cp
}

func (t *erc20) balanceOf(a common.Address) *big.Int {
	if b, ok := t.balances[a]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (t *erc20) allowance(owner, spender common.Address) *big.Int {
	if v, ok := t.allowances[owner][spender]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

func (t *erc20) transfer(env *devnet.Env, parsed *abi.ABI, from, to common.Address, amount *big.Int) error {
	if from == (common.Address{}) {
		return env.Revert("ERC20: transfer from the zero address")
	}
	if to == (common.Address{}) {
		return env.Revert("ERC20: transfer to the zero address")
	}
	bal := t.balanceOf(from)
	if bal.Cmp(amount) < 0 {
		return env.Revert("ERC20: transfer amount exceeds balance")
	}
	t.balances[from] = bal.Sub(bal, amount)
	t.balances[to] = new(big.Int).Add(t.balanceOf(to), amount)
	return env.Emit(parsed, "Transfer", from, to, new(big.Int).Set(amount))
}

func (t *erc20) approve(env *devnet.Env, parsed *abi.ABI, owner, spender common.Address, amount *big.Int) error {
	if owner == (common.Address{}) {
		return env.Revert("ERC20: approve from the zero address")
	}
	if spender == (common.Address{}) {
		return env.Revert("ERC20: approve to the zero address")
	}
	if t.allowances[owner] == nil {
		t.allowances[owner] = make(map[common.Address]*big.Int)
	}
	t.allowances[owner][spender] = new(big.Int).Set(amount)
	return env.Emit(parsed, "Approval", owner, spender, new(big.Int).Set(amount))
}

// spendAllowance leaves an unlimited (max uint256) allowance untouched.
func (t *erc20) spendAllowance(env *devnet.Env, parsed *abi.ABI, owner, spender common.Address, amount *big.Int) error {
	current := t.allowance(owner, spender)
	if current.Cmp(math.MaxBig256) == 0 {
		return nil
	}
	if current.Cmp(amount) < 0 {
		return env.Revert("ERC20: insufficient allowance")
	}
	return t.approve(env, parsed, owner, spender, current.Sub(current, amount))
}

func (t *erc20) mint(env *devnet.Env, parsed *abi.ABI, to common.Address, amount *big.Int) error {
	if to == (common.Address{}) {
		return env.Revert("ERC20: mint to the zero address")
	}
	t.totalSupply.Add(t.totalSupply, amount)
	t.balances[to] = new(big.Int).Add(t.balanceOf(to), amount)
	return env.Emit(parsed, "Transfer", common.Address{}, to, new(big.Int).Set(amount))
}

func (t *erc20) burn(env *devnet.Env, parsed *abi.ABI, from common.Address, amount *big.Int) error {
	if from == (common.Address{}) {
		return env.Revert("ERC20: burn from the zero address")
	}
	bal := t.balanceOf(from)
	if bal.Cmp(amount) < 0 {
		return env.Revert("ERC20: burn amount exceeds balance")
	}
	t.balances[from] = bal.Sub(bal, amount)
	t.totalSupply.Sub(t.totalSupply, amount)
	return env.Emit(parsed, "Transfer", from, common.Address{}, new(big.Int).Set(amount))
}

// handle serves the ERC20 methods. ok is false for any other method.
func (t *erc20) handle(env *devnet.Env, parsed *abi.ABI, m *abi.Method, args []any) (out []any, ok bool, err error) {
	switch m.Name {
	case "name":
		return []any{t.name}, true, nil
	case "symbol":
		return []any{t.symbol}, true, nil
	case "decimals":
		return []any{uint8(Decimals)}, true, nil
	case "totalSupply":
		return []any{new(big.Int).Set(t.totalSupply)}, true, nil
	case "balanceOf":
		return []any{t.balanceOf(args[0].(common.Address))}, true, nil
	case "allowance":
		return []any{t.allowance(args[0].(common.Address), args[1].(common.Address))}, true, nil
	case "transfer":
		err := t.transfer(env, parsed, env.Sender, args[0].(common.Address), args[1].(*big.Int))
		return []any{err == nil}, true, err
	case "approve":
		err := t.approve(env, parsed, env.Sender, args[0].(common.Address), args[1].(*big.Int))
		return []any{err == nil}, true, err
	case "transferFrom":
		from, to, amount := args[0].(common.Address), args[1].(common.Address), args[2].(*big.Int)
		if err := t.spendAllowance(env, parsed, from, env.Sender, amount); err != nil {
			return nil, true, err
		}
		err := t.transfer(env, parsed, from, to, amount)
		return []any{err == nil}, true, err
	}
	return nil, false, nil
}
