package univ3

import (
	"fmt"
	"math/big"
)

var (
	// Q96 is the 2^96 fixed-point scale of sqrt prices.
	Q96 = new(big.Int).Lsh(big.NewInt(1), 96)
	// Q128 is the 2^128 scale of fee-growth accumulators.
	Q128 = new(big.Int).Lsh(big.NewInt(1), 128)
)

// AmountsForLiquidity derives the token amounts backing a position at the
// given pool price: all token0 below the range, all token1 above it, a
// price-weighted split inside. All arithmetic is truncating integer math.
func AmountsForLiquidity(sqrtPriceX96 *big.Int, tickLower, tickUpper int32, liquidity *big.Int) (amount0, amount1 *big.Int, err error) {
	if sqrtPriceX96 == nil || liquidity == nil {
		return nil, nil, fmt.Errorf("nil input")
	}
	if tickLower > tickUpper {
		tickLower, tickUpper = tickUpper, tickLower
	}

	sqrtLower, err := SqrtRatioAtTick(tickLower)
	if err != nil {
		return nil, nil, err
	}
	sqrtUpper, err := SqrtRatioAtTick(tickUpper)
	if err != nil {
		return nil, nil, err
	}

	switch {
	case sqrtPriceX96.Cmp(sqrtLower) <= 0:
		return amount0Delta(sqrtLower, sqrtUpper, liquidity), big.NewInt(0), nil
	case sqrtPriceX96.Cmp(sqrtUpper) >= 0:
		return big.NewInt(0), amount1Delta(sqrtLower, sqrtUpper, liquidity), nil
	default:
		return amount0Delta(sqrtPriceX96, sqrtUpper, liquidity),
			amount1Delta(sqrtLower, sqrtPriceX96, liquidity), nil
	}
}

// amount0Delta = (liquidity << 96) * (sqrtB - sqrtA) / sqrtB / sqrtA
func amount0Delta(sqrtA, sqrtB, liquidity *big.Int) *big.Int {
	if sqrtA.Cmp(sqrtB) > 0 {
		sqrtA, sqrtB = sqrtB, sqrtA
	}
	out := new(big.Int).Lsh(liquidity, 96)
	out.Mul(out, new(big.Int).Sub(sqrtB, sqrtA))
	out.Div(out, sqrtB)
	return out.Div(out, sqrtA)
}

// amount1Delta = liquidity * (sqrtB - sqrtA) / 2^96
func amount1Delta(sqrtA, sqrtB, liquidity *big.Int) *big.Int {
	if sqrtA.Cmp(sqrtB) > 0 {
		sqrtA, sqrtB = sqrtB, sqrtA
	}
	out := new(big.Int).Mul(liquidity, new(big.Int).Sub(sqrtB, sqrtA))
	return out.Div(out, Q96)
}
