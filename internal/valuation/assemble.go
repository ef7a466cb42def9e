package valuation

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"positionScope/internal/model"
	"positionScope/internal/univ3"
)

// assemble maps one raw position to its normalized row. The contract is to
// degrade gracefully, never to drop a position the wallet owns: a panic in
// the mapping yields a minimal identity row with enrichmentStatus "failed".
func (e *Engine) assemble(raw *model.RawPosition, prices map[string]float64, incentives map[string]*model.IncentiveInfo, ent model.Entitlements) (row model.PositionRow) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("position mapping failed",
				zap.String("dex", raw.DexID),
				zap.String("token_id", raw.TokenID.String()),
				zap.Any("panic", r))
			row = identityRow(raw, ent)
			row.EnrichmentStatus = model.EnrichmentFailed
			row.Warnings = append(row.Warnings, model.WarnMappingFailed)
			redact(&row, ent)
		}
	}()

	row = identityRow(raw, ent)

	meta0, meta1 := raw.Token0Meta, raw.Token1Meta
	if meta0 != nil {
		row.Token0 = model.TokenRef{Address: strings.ToLower(raw.Token0.Hex()), Symbol: meta0.Symbol, Decimals: meta0.Decimals}
	}
	if meta1 != nil {
		row.Token1 = model.TokenRef{Address: strings.ToLower(raw.Token1.Hex()), Symbol: meta1.Symbol, Decimals: meta1.Decimals}
	}
	metaKnown := meta0 != nil && meta1 != nil
	if !metaKnown {
		row.Warnings = append(row.Warnings, model.WarnTokenMetaUnavailable)
	}

	price0, hasPrice0 := prices[strings.ToLower(raw.Token0.Hex())]
	price1, hasPrice1 := prices[strings.ToLower(raw.Token1.Hex())]

	var currentTick *int32
	if raw.Pool != nil {
		tick := raw.Pool.Tick
		currentTick = &tick
	} else {
		row.Warnings = append(row.Warnings, model.WarnPoolStateUnavailable)
	}
	row.Status = determineStatus(currentTick, raw.TickLower, raw.TickUpper)

	if raw.Pool != nil && metaKnown {
		e.fillAmounts(&row, raw, meta0.Decimals, meta1.Decimals, price0, hasPrice0, price1, hasPrice1)
		fillRange(&row, raw, meta0.Decimals, meta1.Decimals)
	}

	e.fillFees(&row, raw, metaKnown, price0, hasPrice0, price1, hasPrice1)

	if metaKnown {
		row.Claim = buildClaim(raw, meta0, meta1, price0, hasPrice0, price1, hasPrice1)
	}

	if info, ok := incentives[row.PoolAddress]; ok && info != nil {
		row.IncentivesUsdPerDay = info.UsdPerDay
		row.Fees24hUsd = info.Fees24hUsd
		if len(info.Tokens) > 0 {
			row.IncentivesTokens = info.Tokens
		}
	}

	if row.EnrichmentStatus == model.EnrichmentOK {
		if row.RangeMin == nil || row.RangeMax == nil || row.CurrentPrice == nil || *row.RangeMin >= *row.RangeMax {
			row.EnrichmentStatus = model.EnrichmentPartial
		}
	}

	redact(&row, ent)
	return row
}

// identityRow carries only the fields known from the position struct itself.
func identityRow(raw *model.RawPosition, ent model.Entitlements) model.PositionRow {
	tokenID := raw.TokenID.String()
	pool := strings.ToLower(raw.PoolAddress.Hex())
	return model.PositionRow{
		TokenID:          tokenID,
		Dex:              raw.DexID,
		PoolAddress:      pool,
		PositionKey:      fmt.Sprintf("%s:%s:%s", raw.DexID, pool, tokenID),
		Token0:           model.TokenRef{Address: strings.ToLower(raw.Token0.Hex())},
		Token1:           model.TokenRef{Address: strings.ToLower(raw.Token1.Hex())},
		FeeTier:          raw.FeeTier,
		Liquidity:        raw.Liquidity.String(),
		IncentivesTokens: []model.IncentiveToken{},
		Status:           model.StatusUnknown,
		Entitlements:     ent,
		EnrichmentStatus: model.EnrichmentOK,
		Warnings:         []string{},
	}
}

func (e *Engine) fillAmounts(row *model.PositionRow, raw *model.RawPosition, decimals0, decimals1 uint8, price0 float64, hasPrice0 bool, price1 float64, hasPrice1 bool) {
	amount0, amount1, err := univ3.AmountsForLiquidity(raw.Pool.SqrtPriceX96, raw.TickLower, raw.TickUpper, raw.Liquidity)
	if err != nil {
		e.logger.Warn("amount derivation failed",
			zap.String("position", row.PositionKey),
			zap.Error(err))
		row.EnrichmentStatus = model.EnrichmentPartial
		return
	}

	var usd0, usd1 *float64
	if hasPrice0 {
		usd0 = usdValue(univ3.BigIntToDecimal(amount0, decimals0), price0)
	} else {
		row.Warnings = append(row.Warnings, model.WarnPriceMissingToken0)
	}
	if hasPrice1 {
		usd1 = usdValue(univ3.BigIntToDecimal(amount1, decimals1), price1)
	} else {
		row.Warnings = append(row.Warnings, model.WarnPriceMissingToken1)
	}

	row.AmountsUsd = model.AmountsUsd{Token0: usd0, Token1: usd1, Total: sumUsd(usd0, usd1)}
	row.TvlUsd = row.AmountsUsd.Total
}

func fillRange(row *model.PositionRow, raw *model.RawPosition, decimals0, decimals1 uint8) {
	lower, upper, swapped := univ3.PriceRange(raw.TickLower, raw.TickUpper, decimals0, decimals1)
	if swapped {
		row.Warnings = append(row.Warnings, model.WarnRangeInverted)
		row.EnrichmentStatus = model.EnrichmentPartial
	}

	row.RangeMin = finiteFloat(lower)
	row.RangeMax = finiteFloat(upper)
	row.CurrentPrice = finiteFloat(univ3.TickToPrice(raw.Pool.Tick, decimals0, decimals1))
}

// buildClaim aggregates the immediately claimable tokensOwed amounts. The
// USD total is set only when every nonzero constituent has a resolvable
// price; a partial sum would read as a misleadingly small claim.
func buildClaim(raw *model.RawPosition, meta0, meta1 *model.TokenMeta, price0 float64, hasPrice0 bool, price1 float64, hasPrice1 bool) *model.Claim {
	amount0 := univ3.BigIntToDecimal(raw.TokensOwed0, meta0.Decimals)
	amount1 := univ3.BigIntToDecimal(raw.TokensOwed1, meta1.Decimals)

	var usd0, usd1 *float64
	if hasPrice0 {
		usd0 = usdValue(amount0, price0)
	}
	if hasPrice1 {
		usd1 = usdValue(amount1, price1)
	}

	claim := &model.Claim{
		Tokens: []model.ClaimToken{
			{Symbol: meta0.Symbol, Amount: amount0, Usd: usd0},
			{Symbol: meta1.Symbol, Amount: amount1, Usd: usd1},
		},
	}

	priced := (hasPrice0 || raw.TokensOwed0.Sign() == 0) && (hasPrice1 || raw.TokensOwed1.Sign() == 0)
	if priced {
		total := 0.0
		if usd0 != nil {
			total += *usd0
		}
		if usd1 != nil {
			total += *usd1
		}
		claim.Usd = &total
	}
	return claim
}

func finiteFloat(f *big.Float) *float64 {
	v, _ := f.Float64()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func usdValue(decimalAmount string, price float64) *float64 {
	amount, err := strconv.ParseFloat(decimalAmount, 64)
	if err != nil {
		return nil
	}
	usd := amount * price
	if math.IsNaN(usd) || math.IsInf(usd, 0) {
		return nil
	}
	return &usd
}

func sumUsd(values ...*float64) *float64 {
	total := 0.0
	any := false
	for _, v := range values {
		if v != nil {
			total += *v
			any = true
		}
	}
	if !any {
		return nil
	}
	return &total
}
