package chain

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	eth1  = new(big.Float).SetInt(big.NewInt(1e18))
	gwei1 = new(big.Float).SetInt(big.NewInt(1e9))
)

// WeiToETH formats wei as ETH with 18 decimals.
func WeiToETH(wei *big.Int) string {
	f := new(big.Float).SetInt(wei)
	f.Quo(f, eth1)
	return f.Text('f', 18)
}

// WeiToGwei formats wei as gwei with 9 decimals.
func WeiToGwei(wei *big.Int) string {
	f := new(big.Float).SetInt(wei)
	f.Quo(f, gwei1)
	return f.Text('f', 9)
}

// FormatToken renders raw token units with the given decimals, exactly and
// without trailing zeros: FormatToken(1500000, 6) == "1.5".
func FormatToken(raw *big.Int, decimals int) string {
	if raw == nil {
		return "0"
	}
	if decimals <= 0 {
		return raw.String()
	}
	neg := raw.Sign() < 0
	abs := new(big.Int).Abs(raw)
	div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(abs, div, new(big.Int))

	s := whole.String()
	if frac.Sign() != 0 {
		fs := fmt.Sprintf("%0*s", decimals, frac.String())
		s += "." + strings.TrimRight(fs, "0")
	}
	if neg {
		s = "-" + s
	}
	return s
}

// ParseUnits converts a decimal string such as "1.5" into raw units.
func ParseUnits(amount string, decimals int) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, errors.New("empty amount")
	}
	if strings.HasPrefix(amount, "-") {
		return nil, fmt.Errorf("negative amount %q", amount)
	}
	whole, frac, hasFrac := strings.Cut(amount, ".")
	if hasFrac && len(frac) > decimals {
		return nil, fmt.Errorf("amount %q has more than %d decimals", amount, decimals)
	}
	if whole == "" {
		whole = "0"
	}
	digits := whole + frac + strings.Repeat("0", decimals-len(frac))
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}
	return n, nil
}
