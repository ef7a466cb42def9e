package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// RawPosition is a point-in-time snapshot of one position NFT read from chain.
// It is built fresh per request and discarded after mapping to a PositionRow.
type RawPosition struct {
	TokenID     *big.Int
	DexID       string
	PoolAddress common.Address

	Token0 common.Address
	Token1 common.Address

	Token0Meta *TokenMeta
	Token1Meta *TokenMeta

	FeeTier   uint32
	TickLower int32
	TickUpper int32

	Liquidity                *big.Int
	FeeGrowthInside0LastX128 *big.Int
	FeeGrowthInside1LastX128 *big.Int
	TokensOwed0              *big.Int
	TokensOwed1              *big.Int

	// Pool is nil when the owning pool's state read failed.
	Pool *PoolState

	// TickBounds is nil when the per-tick fee accumulators could not be read;
	// fee accrual then falls back to the on-chain tokensOwed amounts.
	TickBounds *TickBoundaries
}

// PoolState captures the pool fields needed for valuation at read time.
type PoolState struct {
	SqrtPriceX96         *big.Int
	Tick                 int32
	FeeGrowthGlobal0X128 *big.Int
	FeeGrowthGlobal1X128 *big.Int
}

// TickBoundaries holds the feeGrowthOutside accumulators at both range bounds.
type TickBoundaries struct {
	LowerOutside0X128 *big.Int
	LowerOutside1X128 *big.Int
	UpperOutside0X128 *big.Int
	UpperOutside1X128 *big.Int
}
