package contract

import (
	"bytes"
	"errors"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	errorStringSelector = Selector("Error(string)")
	panicSelector       = Selector("Panic(uint256)")
)

// RevertError is a transaction or call that the contract rejected.
// Reason is the Error(string) message or the custom error name; Data is the
// raw revert payload.
type RevertError struct {
	Reason string
	Data   []byte
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		if len(e.Data) > 0 {
			return "execution reverted: " + hexutil.Encode(e.Data)
		}
		return "execution reverted"
	}
	return "execution reverted: " + e.Reason
}

// IsRevert reports whether err is a revert. A non-empty reason must also match.
func IsRevert(err error, reason string) bool {
	var re *RevertError
	if !errors.As(err, &re) {
		return false
	}
	return reason == "" || re.Reason == reason
}

// DecodeRevert turns raw revert data into a reason. Error(string) and
// Panic(uint256) are decoded directly; anything else is matched against the
// custom errors of the given ABIs.
func DecodeRevert(data []byte, abis ...*abi.ABI) (string, bool) {
	if len(data) < 4 {
		return "", false
	}
	if bytes.Equal(data[:4], errorStringSelector[:]) || bytes.Equal(data[:4], panicSelector[:]) {
		reason, err := abi.UnpackRevert(data)
		if err != nil {
			return "", false
		}
		return reason, true
	}
	for _, parsed := range abis {
		if parsed == nil {
			continue
		}
		for name, e := range parsed.Errors {
			if bytes.Equal(e.ID[:4], data[:4]) {
				return name, true
			}
		}
	}
	return "", false
}

// NewRevert builds the RevertError for raw revert data.
func NewRevert(data []byte, abis ...*abi.ABI) *RevertError {
	reason, _ := DecodeRevert(data, abis...)
	return &RevertError{Reason: reason, Data: data}
}

// EncodeRevert is the Error(string) payload for reason.
func EncodeRevert(reason string) []byte {
	packed, _ := abi.Arguments{{Type: stringTy}}.Pack(reason)
	return append(errorStringSelector[:], packed...)
}

var stringTy, _ = abi.NewType("string", "", nil)
