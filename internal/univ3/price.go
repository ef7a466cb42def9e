package univ3

import "math/big"

const floatPrec = 256

// TickToPrice returns 1.0001^tick adjusted for token decimals, i.e. the
// human-readable token1-per-token0 price at the given tick.
func TickToPrice(tick int32, decimals0, decimals1 uint8) *big.Float {
	price := powTick(tick)

	shift := int(decimals0) - int(decimals1)
	if shift != 0 {
		adj := pow10Float(shift)
		price.Mul(price, adj)
	}
	return price
}

// PriceRange converts both range bounds to prices and guarantees
// lower <= upper in the output. The second return reports whether the
// bounds had to be swapped.
func PriceRange(tickLower, tickUpper int32, decimals0, decimals1 uint8) (lower, upper *big.Float, swapped bool) {
	lower = TickToPrice(tickLower, decimals0, decimals1)
	upper = TickToPrice(tickUpper, decimals0, decimals1)
	if lower.Cmp(upper) > 0 {
		return upper, lower, true
	}
	return lower, upper, false
}

// powTick computes 1.0001^tick by exponentiation by squaring at 256-bit
// precision, well past the float64 range limit for extreme ticks.
func powTick(tick int32) *big.Float {
	exp := uint64(tick)
	if tick < 0 {
		exp = uint64(-int64(tick))
	}

	base := big.NewFloat(1.0001).SetPrec(floatPrec)
	result := big.NewFloat(1).SetPrec(floatPrec)
	for exp > 0 {
		if exp&1 != 0 {
			result.Mul(result, base)
		}
		base.Mul(base, base)
		exp >>= 1
	}

	if tick < 0 {
		one := big.NewFloat(1).SetPrec(floatPrec)
		result = one.Quo(one, result)
	}
	return result
}

func pow10Float(shift int) *big.Float {
	abs := shift
	if abs < 0 {
		abs = -abs
	}
	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs)), nil)
	adj := new(big.Float).SetPrec(floatPrec).SetInt(pow)
	if shift < 0 {
		one := big.NewFloat(1).SetPrec(floatPrec)
		adj = one.Quo(one, adj)
	}
	return adj
}
