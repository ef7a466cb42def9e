package univ3

import (
	"fmt"
	"math/big"
	"strings"
)

// BigIntToDecimal renders a base-unit amount as a decimal string without
// precision loss, e.g. 1 wei at 18 decimals -> "0.000000000000000001".
func BigIntToDecimal(wei *big.Int, decimals uint8) string {
	if wei == nil {
		return "0"
	}
	if decimals == 0 {
		return wei.String()
	}

	sign := wei.Sign()
	abs := new(big.Int).Abs(wei)
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	text := new(big.Rat).SetFrac(abs, denom).FloatString(int(decimals))
	if sign < 0 {
		return "-" + text
	}
	return text
}

// DecimalToBigInt parses a decimal string back into base units. It rejects
// fractional digits beyond the token's precision rather than rounding.
func DecimalToBigInt(s string, decimals uint8) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac := s, ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		whole, frac = s[:idx], s[idx+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > int(decimals) {
		// excess digits are only acceptable when zero
		extra := frac[decimals:]
		if strings.Trim(extra, "0") != "" {
			return nil, fmt.Errorf("amount %q exceeds %d decimal places", s, decimals)
		}
		frac = frac[:decimals]
	}
	frac += strings.Repeat("0", int(decimals)-len(frac))

	digits := whole + frac
	out, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("invalid decimal amount %q", s)
	}
	if neg {
		out.Neg(out)
	}
	return out, nil
}
