// Package devnet is an in-process development chain in the spirit of
// Hardhat's built-in network. Contracts are native Go types; transactions are
// real signed EIP-1559 transactions and each one is mined into its own block.
package devnet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/Mohsinsiddi/samkit/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
)

// DefaultChainID is Hardhat's chain id.
const DefaultChainID = 31337

const blockGasLimit = 30_000_000

var (
	// ErrUnknownContract is returned when deploying an artifact with no registered constructor.
	ErrUnknownContract = errors.New("no native implementation registered")

	// ErrUnknownAccount is returned when a key is not one of the chain's accounts.
	ErrUnknownAccount = errors.New("unknown account")
)

// Contract is a native contract instance. Run executes one call; Clone
// returns a deep copy used to roll back reverted transactions.
type Contract interface {
	Run(env *Env, input []byte) ([]byte, error)
	// Clone returns a deep copy of the contract state.
	Clone() Contract
	// Restore overwrites the receiver's state with from, a value returned
	// by Clone on the same contract. Frames still running on the receiver
	// see the restored state.
	Restore(from Contract)
}

// Constructor creates a contract from its ABI-encoded constructor arguments.
type Constructor func(env *Env, args []byte) (Contract, error)

// Chain is a single-node chain that mines one block per transaction.
type Chain struct {
	mu sync.Mutex

	chainID  *big.Int
	balance  *big.Int
	signer   types.Signer
	clock    func() time.Time
	offset   time.Duration
	floor    uint64
	accounts []*ecdsa.PrivateKey

	blockNumber uint64
	blockTime   uint64

	balances  map[common.Address]*big.Int
	nonces    map[common.Address]uint64
	contracts map[common.Address]Contract
	ctors     map[string]Constructor
	receipts  map[common.Hash]*types.Receipt
}

// Option configures a Chain.
type Option func(*Chain)

// WithChainID overrides the default 31337.
func WithChainID(id int64) Option {
	return func(c *Chain) { c.chainID = big.NewInt(id) }
}

// WithClock sets the wall clock block timestamps are derived from.
func WithClock(clock func() time.Time) Option {
	return func(c *Chain) { c.clock = clock }
}

// WithAccounts replaces the default development accounts.
func WithAccounts(keys ...*ecdsa.PrivateKey) Option {
	return func(c *Chain) { c.accounts = keys }
}

// WithBalance sets the starting balance of every account, in wei.
func WithBalance(wei *big.Int) Option {
	return func(c *Chain) { c.balance = wei }
}

// New creates a chain at genesis. Accounts start with 10000 ETH unless
// WithBalance says otherwise.
func New(opts ...Option) *Chain {
	c := &Chain{
		chainID:   big.NewInt(DefaultChainID),
		balance:   new(big.Int).Mul(big.NewInt(10_000), big.NewInt(params.Ether)),
		clock:     time.Now,
		accounts:  DefaultKeys(),
		balances:  make(map[common.Address]*big.Int),
		nonces:    make(map[common.Address]uint64),
		contracts: make(map[common.Address]Contract),
		ctors:     make(map[string]Constructor),
		receipts:  make(map[common.Hash]*types.Receipt),
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, k := range c.accounts {
		c.balances[crypto.PubkeyToAddress(k.PublicKey)] = new(big.Int).Set(c.balance)
	}

	c.signer = types.LatestSignerForChainID(c.chainID)
	c.blockTime = uint64(c.clock().Unix())
	return c
}

// Register installs the native implementation deployed for artifacts named name.
func (c *Chain) Register(name string, ctor Constructor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctors[name] = ctor
}

// Accounts returns the funded development accounts.
func (c *Chain) Accounts() []common.Address {
	out := make([]common.Address, len(c.accounts))
	for i, k := range c.accounts {
		out[i] = crypto.PubkeyToAddress(k.PublicKey)
	}
	return out
}

// Key returns the private key of account i.
func (c *Chain) Key(i int) (*ecdsa.PrivateKey, error) {
	if i < 0 || i >= len(c.accounts) {
		return nil, fmt.Errorf("%w: index %d (have %d)", ErrUnknownAccount, i, len(c.accounts))
	}
	return c.accounts[i], nil
}

// IncreaseTime moves the clock forward so the next block is at least d
// after the latest one (evm_increaseTime).
func (c *Chain) IncreaseTime(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset += d
	c.floor = c.blockTime + uint64(d/time.Second)
}

// BlockNumber returns the latest block number.
func (c *Chain) BlockNumber(context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blockNumber, nil
}

// Receipt returns the receipt of a mined transaction.
func (c *Chain) Receipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.receipts[hash]
	if !ok {
		return nil, fmt.Errorf("transaction %s not found", hash.Hex())
	}
	return r, nil
}

// ChainID implements contract.Backend.
func (c *Chain) ChainID(context.Context) (*big.Int, error) {
	return new(big.Int).Set(c.chainID), nil
}

// BalanceAt implements contract.Backend.
func (c *Chain) BalanceAt(_ context.Context, account common.Address) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.balances[account]; ok {
		return new(big.Int).Set(b), nil
	}
	return new(big.Int), nil
}

// BlockTimestamp implements contract.Backend. It returns the latest block's timestamp.
func (c *Chain) BlockTimestamp(context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blockTime, nil
}

// Call implements contract.Backend. State changes made by the call are discarded.
func (c *Chain) Call(ctx context.Context, from, to common.Address, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.snapshot()
	defer c.restore(snap)

	env := c.newEnv(from, to, c.blockNumber, c.blockTime, data)
	return env.run(to, data)
}

// Transact implements contract.Backend.
func (c *Chain) Transact(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, data []byte) (*types.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, from, err := c.sign(key, &to, data)
	if err != nil {
		return nil, err
	}
	number, ts := c.nextBlock()

	snap := c.snapshot()
	env := c.newEnv(from, to, number, ts, data)
	_, runErr := env.run(to, data)
	if runErr != nil {
		c.restore(snap)
	}
	receipt := c.mine(tx, env, runErr, common.Address{})
	if runErr != nil {
		return receipt, runErr
	}
	return receipt, nil
}

// Deploy implements contract.Backend. The contract address follows the
// usual CREATE rule from the sender and its nonce.
func (c *Chain) Deploy(ctx context.Context, key *ecdsa.PrivateKey, artifact *contract.Artifact, ctorArgs []byte) (common.Address, *types.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return common.Address{}, nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ctor, ok := c.ctors[artifact.ContractName]
	if !ok {
		return common.Address{}, nil, fmt.Errorf("%w: %s", ErrUnknownContract, artifact.ContractName)
	}

	data := append(append([]byte{}, artifact.Bytecode...), ctorArgs...)
	tx, from, err := c.sign(key, nil, data)
	if err != nil {
		return common.Address{}, nil, err
	}
	addr := crypto.CreateAddress(from, tx.Nonce())
	number, ts := c.nextBlock()

	snap := c.snapshot()
	env := c.newEnv(from, addr, number, ts, ctorArgs)
	inst, runErr := ctor(env, ctorArgs)
	if runErr == nil {
		c.contracts[addr] = inst
	} else {
		c.restore(snap)
		addr = common.Address{}
	}
	receipt := c.mine(tx, env, runErr, addr)
	if runErr != nil {
		return common.Address{}, receipt, runErr
	}
	return addr, receipt, nil
}

// sign builds and signs the transaction the way a wallet would, so the
// hash is that of a real EIP-1559 transaction. The sender's nonce is consumed.
func (c *Chain) sign(key *ecdsa.PrivateKey, to *common.Address, data []byte) (*types.Transaction, common.Address, error) {
	if key == nil {
		return nil, common.Address{}, contract.ErrNoSigner
	}
	from := crypto.PubkeyToAddress(key.PublicKey)
	tx, err := types.SignNewTx(key, c.signer, &types.DynamicFeeTx{
		ChainID:   c.chainID,
		Nonce:     c.nonces[from],
		GasTipCap: big.NewInt(0),
		GasFeeCap: big.NewInt(0),
		Gas:       blockGasLimit,
		To:        to,
		Data:      data,
	})
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("signing transaction: %w", err)
	}
	c.nonces[from]++
	return tx, from, nil
}

func (c *Chain) nextBlock() (uint64, uint64) {
	ts := uint64(c.clock().Add(c.offset).Unix())
	if ts <= c.blockTime {
		ts = c.blockTime + 1
	}
	if ts < c.floor {
		ts = c.floor
	}
	return c.blockNumber + 1, ts
}

func (c *Chain) mine(tx *types.Transaction, env *Env, runErr error, created common.Address) *types.Receipt {
	c.blockNumber = env.BlockNumber
	c.blockTime = env.Time

	number := new(big.Int).SetUint64(env.BlockNumber)
	blockHash := crypto.Keccak256Hash(number.Bytes(), tx.Hash().Bytes())

	receipt := &types.Receipt{
		Type:              types.DynamicFeeTxType,
		TxHash:            tx.Hash(),
		ContractAddress:   created,
		BlockHash:         blockHash,
		BlockNumber:       number,
		TransactionIndex:  0,
		CumulativeGasUsed: 0,
		Status:            types.ReceiptStatusSuccessful,
	}
	if runErr != nil {
		receipt.Status = types.ReceiptStatusFailed
	} else {
		for i, lg := range env.logs {
			lg.BlockNumber = env.BlockNumber
			lg.BlockHash = blockHash
			lg.TxHash = tx.Hash()
			lg.Index = uint(i)
			receipt.Logs = append(receipt.Logs, lg)
		}
	}
	if receipt.Logs == nil {
		receipt.Logs = []*types.Log{}
	}
	c.receipts[tx.Hash()] = receipt
	return receipt
}

type snapshot struct {
	contracts map[common.Address]Contract
	balances  map[common.Address]*big.Int
}

func (c *Chain) snapshot() snapshot {
	s := snapshot{
		contracts: make(map[common.Address]Contract, len(c.contracts)),
		balances:  make(map[common.Address]*big.Int, len(c.balances)),
	}
	for a, k := range c.contracts {
		s.contracts[a] = k.Clone()
	}
	for a, b := range c.balances {
		s.balances[a] = new(big.Int).Set(b)
	}
	return s
}

// restore rolls state back to s in place. Contracts created after the
// snapshot are removed.
func (c *Chain) restore(s snapshot) {
	for a, live := range c.contracts {
		saved, ok := s.contracts[a]
		if !ok {
			delete(c.contracts, a)
			continue
		}
		live.Restore(saved)
	}
	c.balances = s.balances
}

var _ contract.Backend = (*Chain)(nil)
