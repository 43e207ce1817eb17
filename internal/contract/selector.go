package contract

import "golang.org/x/crypto/sha3"

// Selector returns the 4-byte function selector for a canonical signature
// such as "transfer(address,uint256)".
func Selector(signature string) [4]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	var out [4]byte
	copy(out[:], h.Sum(nil))
	return out
}
