package contract

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Backend is a chain the bindings can talk to. chain.Client implements it
// over JSON-RPC and devnet.Chain implements it in process.
//
// Transact and Deploy block until the transaction is mined. A mined but
// reverted transaction is reported as a *RevertError together with its receipt.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
	BlockTimestamp(ctx context.Context) (uint64, error)
	Call(ctx context.Context, from, to common.Address, data []byte) ([]byte, error)
	Transact(ctx context.Context, key *ecdsa.PrivateKey, to common.Address, data []byte) (*types.Receipt, error)
	Deploy(ctx context.Context, key *ecdsa.PrivateKey, artifact *Artifact, ctorArgs []byte) (common.Address, *types.Receipt, error)
}
