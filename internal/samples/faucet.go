package samples

import (
	"math/big"
	"time"

	"github.com/Mohsinsiddi/samkit/internal/devnet"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Cooldown is the minimum time between two drips to the same address.
const Cooldown = 24 * time.Hour

// Faucet mints a fixed amount of its token to each caller at most once
// per Cooldown. Calls relayed by the trusted forwarder carry the real
// sender in the last 20 bytes of calldata (ERC-2771).
type Faucet struct {
	symbol    string
	token     common.Address
	amount    *big.Int
	forwarder common.Address
	lastDrip  map[common.Address]uint64
}

// NewFaucet is the devnet constructor for
// Faucet(string symbol, address token, uint256 amount, address trustedForwarder).
func NewFaucet(env *devnet.Env, raw []byte) (devnet.Contract, error) {
	args, err := faucetABI.Constructor.Inputs.Unpack(raw)
	if err != nil {
		return nil, env.Revert("")
	}
	return &Faucet{
		symbol:    args[0].(string),
		token:     args[1].(common.Address),
		amount:    new(big.Int).Set(args[2].(*big.Int)),
		forwarder: args[3].(common.Address),
		lastDrip:  make(map[common.Address]uint64),
	}, nil
}

// Clone implements devnet.Contract.
func (f *Faucet) Clone() devnet.Contract {
	cp := *f
	cp.amount = new(big.Int).Set(f.amount)
	cp.lastDrip = make(map[common.Address]uint64, len(f.lastDrip))
	for a, t := range f.lastDrip {
		cp.lastDrip[a] = t
	}
	return &cp
}

// Restore implements devnet.Contract.
func (f *Faucet) Restore(from devnet.Contract) { *f = *from.(*Faucet) }

// msgSender reads the ERC-2771 suffix of forwarded calls. The suffix is
// left on the calldata; ABI decoding ignores trailing bytes.
func (f *Faucet) msgSender(env *devnet.Env, input []byte) common.Address {
	if f.forwarder != (common.Address{}) && env.Sender == f.forwarder && len(input) >= 4+common.AddressLength {
		return common.BytesToAddress(input[len(input)-common.AddressLength:])
	}
	return env.Sender
}

func (f *Faucet) drip(env *devnet.Env, to common.Address) error {
	cooldown := uint64(Cooldown / time.Second)
	if last, ok := f.lastDrip[to]; ok && env.Time < last+cooldown {
		return env.Revert("DRIP_COOLDOWN")
	}
	f.lastDrip[to] = env.Time

	data, err := tokenABI.Pack("mint", to, new(big.Int).Set(f.amount))
	if err != nil {
		return err
	}
	if _, err := env.Call(f.token, data); err != nil {
		return err
	}
	return env.Emit(faucetABI, "Drip", to, new(big.Int).Set(f.amount))
}

// Run implements devnet.Contract.
func (f *Faucet) Run(env *devnet.Env, input []byte) ([]byte, error) {
	sender := f.msgSender(env, input)
	return devnet.Dispatch(faucetABI, input, func(m *abi.Method, args []any) ([]any, error) {
		switch m.Name {
		case "drip":
			return nil, f.drip(env, sender)
		case "symbol":
			return []any{f.symbol}, nil
		case "token":
			return []any{f.token}, nil
		case "amount":
			return []any{new(big.Int).Set(f.amount)}, nil
		case "COOLDOWN":
			return []any{big.NewInt(int64(Cooldown / time.Second))}, nil
		case "lastDrip":
			return []any{new(big.Int).SetUint64(f.lastDrip[args[0].(common.Address)])}, nil
		case "isTrustedForwarder":
			return []any{args[0].(common.Address) == f.forwarder}, nil
		}
		return nil, env.Revert("")
	})
}
