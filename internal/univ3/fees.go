package univ3

import (
	"math/big"

	"github.com/holiman/uint256"
)

// FeeGrowthInside derives the fee growth accumulated inside a tick range from
// the pool-global accumulators and the feeGrowthOutside values at both bounds.
// Accumulators increase monotonically modulo 2^256; every subtraction here is
// wrapping, matching the on-chain arithmetic.
func FeeGrowthInside(
	global0, global1 *uint256.Int,
	lowerOutside0, lowerOutside1 *uint256.Int,
	upperOutside0, upperOutside1 *uint256.Int,
	tickLower, tickUpper, tickCurrent int32,
) (inside0, inside1 *uint256.Int) {
	below0, below1 := new(uint256.Int), new(uint256.Int)
	if tickCurrent >= tickLower {
		below0.Set(lowerOutside0)
		below1.Set(lowerOutside1)
	} else {
		below0.Sub(global0, lowerOutside0)
		below1.Sub(global1, lowerOutside1)
	}

	above0, above1 := new(uint256.Int), new(uint256.Int)
	if tickCurrent < tickUpper {
		above0.Set(upperOutside0)
		above1.Set(upperOutside1)
	} else {
		above0.Sub(global0, upperOutside0)
		above1.Sub(global1, upperOutside1)
	}

	inside0 = new(uint256.Int).Sub(global0, below0)
	inside0.Sub(inside0, above0)
	inside1 = new(uint256.Int).Sub(global1, below1)
	inside1.Sub(inside1, above1)
	return inside0, inside1
}

// AccruedFees converts the wrapping fee-growth delta since the position was
// last touched into token amounts: delta * liquidity / 2^128.
func AccruedFees(liquidity *big.Int, inside0Now, inside1Now, inside0Last, inside1Last *uint256.Int) (fee0, fee1 *big.Int) {
	delta0 := new(uint256.Int).Sub(inside0Now, inside0Last)
	delta1 := new(uint256.Int).Sub(inside1Now, inside1Last)

	fee0 = new(big.Int).Mul(delta0.ToBig(), liquidity)
	fee0.Rsh(fee0, 128)
	fee1 = new(big.Int).Mul(delta1.ToBig(), liquidity)
	fee1.Rsh(fee1, 128)
	return fee0, fee1
}
