package valuation

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"positionScope/internal/model"
	"positionScope/internal/univ3"
)

// fillFees computes unclaimed fees for the row. The full on-chain formula
// needs the pool's global accumulators and both boundary accumulators; when
// either is missing the on-chain tokensOwed amounts serve as a lower-bound
// estimate and the row is flagged. The USD figure is set only when both
// token prices resolve.
func (e *Engine) fillFees(row *model.PositionRow, raw *model.RawPosition, metaKnown bool, price0 float64, hasPrice0 bool, price1 float64, hasPrice1 bool) {
	fee0, fee1, full, err := unclaimedFees(raw)
	if err != nil {
		e.logger.Warn("fee computation failed",
			zap.String("position", row.PositionKey),
			zap.Error(err))
		row.Warnings = append(row.Warnings, model.WarnFeesCalcFailed)
		row.EnrichmentStatus = model.EnrichmentPartial
		return
	}
	if !full {
		row.Warnings = append(row.Warnings, model.WarnFeesDataUnavailable)
	}

	if !metaKnown || !hasPrice0 || !hasPrice1 {
		// leave unclaimedFeesUsd unset rather than report a partial figure
		return
	}

	usd0 := usdValue(univ3.BigIntToDecimal(fee0, raw.Token0Meta.Decimals), price0)
	usd1 := usdValue(univ3.BigIntToDecimal(fee1, raw.Token1Meta.Decimals), price1)
	if usd0 == nil || usd1 == nil {
		return
	}
	total := *usd0 + *usd1
	row.UnclaimedFeesUsd = &total
}

// unclaimedFees returns the total owed fee amounts per token and whether the
// full fee-growth formula was applied.
func unclaimedFees(raw *model.RawPosition) (fee0, fee1 *big.Int, full bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fee accrual panic: %v", r)
		}
	}()

	if raw.Pool == nil || raw.TickBounds == nil {
		return new(big.Int).Set(raw.TokensOwed0), new(big.Int).Set(raw.TokensOwed1), false, nil
	}

	global0, overflow := uint256.FromBig(raw.Pool.FeeGrowthGlobal0X128)
	if overflow {
		return nil, nil, false, fmt.Errorf("feeGrowthGlobal0X128 overflow")
	}
	global1, overflow := uint256.FromBig(raw.Pool.FeeGrowthGlobal1X128)
	if overflow {
		return nil, nil, false, fmt.Errorf("feeGrowthGlobal1X128 overflow")
	}
	lower0, overflow := uint256.FromBig(raw.TickBounds.LowerOutside0X128)
	if overflow {
		return nil, nil, false, fmt.Errorf("lower outside0 overflow")
	}
	lower1, overflow := uint256.FromBig(raw.TickBounds.LowerOutside1X128)
	if overflow {
		return nil, nil, false, fmt.Errorf("lower outside1 overflow")
	}
	upper0, overflow := uint256.FromBig(raw.TickBounds.UpperOutside0X128)
	if overflow {
		return nil, nil, false, fmt.Errorf("upper outside0 overflow")
	}
	upper1, overflow := uint256.FromBig(raw.TickBounds.UpperOutside1X128)
	if overflow {
		return nil, nil, false, fmt.Errorf("upper outside1 overflow")
	}
	last0, overflow := uint256.FromBig(raw.FeeGrowthInside0LastX128)
	if overflow {
		return nil, nil, false, fmt.Errorf("feeGrowthInside0Last overflow")
	}
	last1, overflow := uint256.FromBig(raw.FeeGrowthInside1LastX128)
	if overflow {
		return nil, nil, false, fmt.Errorf("feeGrowthInside1Last overflow")
	}

	inside0, inside1 := univ3.FeeGrowthInside(
		global0, global1,
		lower0, lower1,
		upper0, upper1,
		raw.TickLower, raw.TickUpper, raw.Pool.Tick,
	)

	accrued0, accrued1 := univ3.AccruedFees(raw.Liquidity, inside0, inside1, last0, last1)

	fee0 = new(big.Int).Add(accrued0, raw.TokensOwed0)
	fee1 = new(big.Int).Add(accrued1, raw.TokensOwed1)
	return fee0, fee1, true, nil
}
