package univ3

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Tick bounds supported by V3 pools.
const (
	MinTick int32 = -887272
	MaxTick int32 = 887272
)

var (
	q32  = uint256.NewInt(1 << 32)
	maxU = new(uint256.Int).Not(uint256.NewInt(0))

	// Per-bit multipliers of the on-chain tick math, Q128 fixed point.
	tickMultipliers = []string{
		"0xfff97272373d413259a46990580e213a",
		"0xfff2e50f5f656932ef12357cf3c7fdcc",
		"0xffe5caca7e10e4e61c3624eaa0941cd0",
		"0xffcb9843d60f6159c9db58835c926644",
		"0xff973b41fa98c081472e6896dfb254c0",
		"0xff2ea16466c96a3843ec78b326b52861",
		"0xfe5dee046a99a2a811c461f1969c3053",
		"0xfcbe86c7900a88aedcffc83b479aa3a4",
		"0xf987a7253ac413176f2b074cf7815e54",
		"0xf3392b0822b70005940c7a398e4b70f3",
		"0xe7159475a2c29b7443b29c7fa6e889d9",
		"0xd097f3bdfd2022b8845ad8f792aa5825",
		"0xa9f746462d870fdf8a65dc1f90e061e5",
		"0x70d869a156d2a1b890bb3df62baf32f7",
		"0x31be135f97d08fd981231505542fcfa6",
		"0x9aa508b5b7a84e1c677de54f3e99bc9",
		"0x5d6af8dedb81196699c329225ee604",
		"0x2216e584f5fa1ea926041bedfe98",
		"0x48a170391f7dc42444e8fa2",
	}

	ratioOdd  = uint256.MustFromHex("0xfffcb933bd6fad37aa2d162d1a594001")
	ratioEven = uint256.MustFromHex("0x100000000000000000000000000000000")

	tickMuls = mustParseMultipliers()
)

func mustParseMultipliers() []*uint256.Int {
	out := make([]*uint256.Int, len(tickMultipliers))
	for i, hex := range tickMultipliers {
		out[i] = uint256.MustFromHex(hex)
	}
	return out
}

// SqrtRatioAtTick replicates the on-chain sqrt price computation: the Q64.96
// square root of 1.0001^tick, truncating exactly as the pool contract does.
func SqrtRatioAtTick(tick int32) (*big.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, fmt.Errorf("tick %d out of range", tick)
	}

	absTick := uint64(tick)
	if tick < 0 {
		absTick = uint64(-int64(tick))
	}

	ratio := new(uint256.Int)
	if absTick&1 != 0 {
		ratio.Set(ratioOdd)
	} else {
		ratio.Set(ratioEven)
	}

	for i, mul := range tickMuls {
		if absTick&(1<<(uint(i)+1)) != 0 {
			// ratio and multiplier both fit in 128 bits, product cannot overflow
			ratio.Mul(ratio, mul)
			ratio.Rsh(ratio, 128)
		}
	}

	if tick > 0 {
		ratio.Div(maxU, ratio)
	}

	// Q128 -> Q96, rounding up
	rem := new(uint256.Int).Mod(ratio, q32)
	ratio.Rsh(ratio, 32)
	if !rem.IsZero() {
		ratio.AddUint64(ratio, 1)
	}

	return ratio.ToBig(), nil
}
