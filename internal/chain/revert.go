package chain

import (
	"errors"
	"strings"

	"github.com/Mohsinsiddi/samkit/internal/contract"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// RevertFromError recognises a revert in a JSON-RPC error. Revert data
// attached to the error (geth, anvil, hardhat) is decoded first; otherwise
// the reason is pulled out of the message text.
func RevertFromError(err error) (*contract.RevertError, bool) {
	if err == nil {
		return nil, false
	}
	var de rpc.DataError
	if errors.As(err, &de) {
		if s, ok := de.ErrorData().(string); ok {
			if data, decErr := hexutil.Decode(s); decErr == nil && len(data) > 0 {
				return contract.NewRevert(data), true
			}
		}
	}

	msg := err.Error()
	if reason, ok := extractRevertReason(msg); ok {
		return &contract.RevertError{Reason: reason}, true
	}
	return nil, false
}

// extractRevertReason handles the common message shapes:
//
//	execution reverted: DRIP_COOLDOWN
//	VM Exception while processing transaction: reverted with reason string 'DRIP_COOLDOWN'
//	VM Exception while processing transaction: reverted with custom error 'PermitExpired()'
func extractRevertReason(msg string) (string, bool) {
	if i := strings.Index(msg, "reverted with reason string '"); i >= 0 {
		rest := msg[i+len("reverted with reason string '"):]
		if j := strings.LastIndex(rest, "'"); j >= 0 {
			rest = rest[:j]
		}
		return rest, true
	}
	if i := strings.Index(msg, "reverted with custom error '"); i >= 0 {
		rest := msg[i+len("reverted with custom error '"):]
		if j := strings.IndexAny(rest, "('"); j >= 0 {
			rest = rest[:j]
		}
		return rest, true
	}
	if i := strings.Index(msg, "execution reverted"); i >= 0 {
		rest := strings.TrimPrefix(msg[i+len("execution reverted"):], ":")
		return strings.TrimSpace(rest), true
	}
	if strings.Contains(msg, "VM Exception") && strings.Contains(msg, "revert") {
		return "", true
	}
	return "", false
}
