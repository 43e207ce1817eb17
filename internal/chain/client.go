package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/samkit/internal/config"
	"github.com/Mohsinsiddi/samkit/internal/contract"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client is a contract.Backend over a JSON-RPC node.
type Client struct {
	eth *ethclient.Client
	url string

	// PollInterval is how often WaitForReceipt polls. Defaults to 2s.
	PollInterval time.Duration
	// ConfirmTimeout bounds how long Transact waits for a receipt.
	ConfirmTimeout time.Duration
	// DeployTimeout bounds how long Deploy waits for a receipt.
	DeployTimeout time.Duration
}

var _ contract.Backend = (*Client)(nil)

// Dial connects to the node at url.
func Dial(ctx context.Context, url string) (*Client, error) {
	rc, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", url, err)
	}
	return &Client{
		eth:            ethclient.NewClient(rc),
		url:            url,
		PollInterval:   config.ReceiptPollInterval,
		ConfirmTimeout: config.TxConfirmTimeout,
		DeployTimeout:  config.TxDeployTimeout,
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() { c.eth.Close() }

// URL returns the RPC endpoint.
func (c *Client) URL() string { return c.url }

// ChainID implements contract.Backend.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	return c.eth.ChainID(ctx)
}

// BalanceAt implements contract.Backend.
func (c *Client) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	return c.eth.BalanceAt(ctx, account, nil)
}

// BlockNumber returns the latest block number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.eth.BlockNumber(ctx)
}

// BlockTimestamp implements contract.Backend.
func (c *Client) BlockTimestamp(ctx context.Context) (uint64, error) {
	head, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, err
	}
	return head.Time, nil
}

// Ping returns the round-trip latency of eth_blockNumber and the block it reported.
func (c *Client) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	blockNum, err = c.eth.BlockNumber(ctx)
	return time.Since(start), blockNum, err
}

// Call implements contract.Backend. A revert comes back as *contract.RevertError.
func (c *Client) Call(ctx context.Context, from, to common.Address, data []byte) ([]byte, error) {
	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{From: from, To: &to, Data: data}, nil)
	if err != nil {
		if re, ok := RevertFromError(err); ok {
			return nil, re
		}
		return nil, err
	}
	return out, nil
}

// Transact implements contract.Backend.
func (c *Client) Transact(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, data []byte) (*types.Receipt, error) {
	return c.send(ctx, key, &to, data, config.GasLimitContractCall, c.ConfirmTimeout)
}

// Deploy implements contract.Backend.
func (c *Client) Deploy(ctx context.Context, key *ecdsa.PrivateKey, artifact *contract.Artifact, ctorArgs []byte) (common.Address, *types.Receipt, error) {
	if !artifact.Deployable() {
		return common.Address{}, nil, fmt.Errorf("%w: %s (point --artifacts at a compiled Hardhat project)", contract.ErrNoBytecode, artifact.ContractName)
	}
	data := append(append([]byte{}, artifact.Bytecode...), ctorArgs...)
	receipt, err := c.send(ctx, key, nil, data, config.GasLimitDeploy, c.DeployTimeout)
	if err != nil {
		return common.Address{}, receipt, err
	}
	return receipt.ContractAddress, receipt, nil
}

// send signs an EIP-1559 transaction (legacy on chains without a base fee),
// broadcasts it and waits for the receipt.
func (c *Client) send(ctx context.Context, key *ecdsa.PrivateKey, to *common.Address, data []byte, fallbackGas uint64, timeout time.Duration) (*types.Receipt, error) {
	if key == nil {
		return nil, contract.ErrNoSigner
	}
	from := crypto.PubkeyToAddress(key.PublicKey)

	chainID, err := c.eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching chain id: %w", err)
	}
	nonce, err := c.eth.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("fetching nonce: %w", err)
	}

	msg := ethereum.CallMsg{From: from, To: to, Data: data}
	gas, err := c.eth.EstimateGas(ctx, msg)
	if err != nil {
		if re, ok := RevertFromError(err); ok {
			return nil, re
		}
		gas = fallbackGas
	} else {
		gas = gas * 12 / 10
	}

	fees, err := c.SuggestFees(ctx)
	if err != nil {
		return nil, err
	}

	var txData types.TxData
	if fees.BaseFee != nil {
		txData = &types.DynamicFeeTx{
			ChainID: chainID, Nonce: nonce, GasTipCap: fees.Tip, GasFeeCap: fees.FeeCap,
			Gas: gas, To: to, Data: data,
		}
	} else {
		txData = &types.LegacyTx{Nonce: nonce, GasPrice: fees.GasPrice, Gas: gas, To: to, Data: data}
	}
	tx, err := types.SignNewTx(key, types.LatestSignerForChainID(chainID), txData)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	if err := c.eth.SendTransaction(ctx, tx); err != nil {
		if re, ok := RevertFromError(err); ok {
			return nil, re
		}
		return nil, fmt.Errorf("sending transaction: %w", err)
	}

	receipt, err := c.WaitForReceipt(ctx, tx.Hash(), timeout)
	if err != nil {
		return nil, err
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return receipt, c.replayRevert(ctx, msg, receipt)
	}
	return receipt, nil
}

// replayRevert re-runs a failed transaction with eth_call at its block to
// recover the revert reason.
func (c *Client) replayRevert(ctx context.Context, msg ethereum.CallMsg, receipt *types.Receipt) error {
	var at *big.Int
	if receipt.BlockNumber != nil && receipt.BlockNumber.Sign() > 0 {
		at = new(big.Int).Sub(receipt.BlockNumber, big.NewInt(1))
	}
	_, err := c.eth.CallContract(ctx, msg, at)
	if re, ok := RevertFromError(err); ok {
		return re
	}
	return &contract.RevertError{}
}

// WaitForReceipt polls every PollInterval until the transaction is mined,
// ctx is done or timeout expires.
func (c *Client) WaitForReceipt(ctx context.Context, hash common.Hash, timeout time.Duration) (*types.Receipt, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	interval := c.PollInterval
	if interval <= 0 {
		interval = config.ReceiptPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		receipt, err := c.eth.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("transaction %s not mined within %s: %w", hash.Hex(), timeout, ctx.Err())
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("fetching receipt %s: %w", hash.Hex(), err)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("transaction %s not mined within %s: %w", hash.Hex(), timeout, ctx.Err())
		case <-ticker.C:
		}
	}
}
