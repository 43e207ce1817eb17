package devnet

import (
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/samkit/internal/contract"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Env is the execution context of one contract call: the msg and block
// globals plus access to logs and other contracts.
type Env struct {
	chain *Chain
	logs  []*types.Log

	Sender      common.Address // msg.sender
	Origin      common.Address // tx.origin
	Self        common.Address // address(this)
	Time        uint64         // block.timestamp
	BlockNumber uint64
	ChainID     *big.Int
	Input       []byte
}

func (c *Chain) newEnv(from, self common.Address, number, ts uint64, input []byte) *Env {
	return &Env{
		chain:       c,
		Sender:      from,
		Origin:      from,
		Self:        self,
		Time:        ts,
		BlockNumber: number,
		ChainID:     new(big.Int).Set(c.chainID),
		Input:       input,
	}
}

// run executes input against the contract at to. Calls to an address
// without code succeed with no output.
func (e *Env) run(to common.Address, input []byte) ([]byte, error) {
	inst, ok := e.chain.contracts[to]
	if !ok {
		return nil, nil
	}
	return inst.Run(e, input)
}

// Call makes a nested call from this contract to another. The callee sees
// Sender == Self. A reverted nested call leaves no state changes or logs.
func (e *Env) Call(to common.Address, input []byte) ([]byte, error) {
	child := &Env{
		chain:       e.chain,
		logs:        e.logs,
		Sender:      e.Self,
		Origin:      e.Origin,
		Self:        to,
		Time:        e.Time,
		BlockNumber: e.BlockNumber,
		ChainID:     e.ChainID,
		Input:       input,
	}
	snap := e.chain.snapshot()
	out, err := child.run(to, input)
	if err != nil {
		e.chain.restore(snap)
		return nil, err
	}
	e.logs = child.logs
	return out, nil
}

// Emit appends the ABI-encoded event name to the transaction's logs.
// args are given in declaration order, indexed and non-indexed alike.
func (e *Env) Emit(parsed *abi.ABI, name string, args ...any) error {
	ev, ok := parsed.Events[name]
	if !ok {
		return fmt.Errorf("devnet: unknown event %s", name)
	}
	if len(args) != len(ev.Inputs) {
		return fmt.Errorf("devnet: event %s takes %d args, got %d", name, len(ev.Inputs), len(args))
	}

	topics := []common.Hash{ev.ID}
	var data []any
	for i, in := range ev.Inputs {
		if !in.Indexed {
			data = append(data, args[i])
			continue
		}
		t, err := abi.MakeTopics([]any{args[i]})
		if err != nil {
			return fmt.Errorf("devnet: encoding topic %s.%s: %w", name, in.Name, err)
		}
		topics = append(topics, t[0][0])
	}
	packed, err := ev.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		return fmt.Errorf("devnet: encoding %s data: %w", name, err)
	}

	e.logs = append(e.logs, &types.Log{Address: e.Self, Topics: topics, Data: packed})
	return nil
}

// Revert aborts the call with an Error(string) reason, like require(cond, reason).
func (e *Env) Revert(reason string) error {
	return &contract.RevertError{Reason: reason, Data: contract.EncodeRevert(reason)}
}

// Fail aborts the call with the ABI custom error name, like revert Name().
func (e *Env) Fail(parsed *abi.ABI, name string) error {
	ce, ok := parsed.Errors[name]
	if !ok {
		return &contract.RevertError{Reason: name}
	}
	return &contract.RevertError{Reason: name, Data: append([]byte(nil), ce.ID[:4]...)}
}

// Handler runs one decoded method call and returns its outputs.
type Handler func(method *abi.Method, args []any) ([]any, error)

// Dispatch decodes input against parsed, hands it to h and encodes the
// outputs. Unknown selectors and malformed arguments revert with no reason.
func Dispatch(parsed *abi.ABI, input []byte, h Handler) ([]byte, error) {
	if len(input) < 4 {
		return nil, &contract.RevertError{}
	}
	m, err := parsed.MethodById(input[:4])
	if err != nil {
		return nil, &contract.RevertError{}
	}
	args, err := m.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, &contract.RevertError{}
	}
	out, err := h(m, args)
	if err != nil {
		return nil, err
	}
	return m.Outputs.Pack(out...)
}
