package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/params"
)

// Fees is the gas pricing used for the next transaction.
type Fees struct {
	BaseFee  *big.Int // nil on pre-London chains
	Tip      *big.Int
	FeeCap   *big.Int // 2*baseFee + tip
	GasPrice *big.Int // legacy price, only set when BaseFee is nil
}

var defaultTip = big.NewInt(params.GWei)

// SuggestFees reads the latest base fee and the node's tip suggestion.
func (c *Client) SuggestFees(ctx context.Context) (*Fees, error) {
	head, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching latest header: %w", err)
	}
	if head.BaseFee == nil {
		price, err := c.eth.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching gas price: %w", err)
		}
		return &Fees{GasPrice: price}, nil
	}

	tip, err := c.eth.SuggestGasTipCap(ctx)
	if err != nil || tip == nil {
		tip = new(big.Int).Set(defaultTip)
	}
	feeCap := new(big.Int).Mul(head.BaseFee, big.NewInt(2))
	feeCap.Add(feeCap, tip)
	return &Fees{BaseFee: head.BaseFee, Tip: tip, FeeCap: feeCap}, nil
}
