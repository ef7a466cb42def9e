package valuation

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"positionScope/internal/model"
	"positionScope/internal/pricing"
	"positionScope/internal/univ3"
)

var (
	testWallet = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testPool   = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testToken0 = common.HexToAddress("0x3333333333333333333333333333333333333333")
	testToken1 = common.HexToAddress("0x4444444444444444444444444444444444444444")
)

type fakeSource struct {
	positions []model.RawPosition
	calls     int
	panics    bool
}

func (f *fakeSource) DiscoverPositions(_ context.Context, _ common.Address) []model.RawPosition {
	f.calls++
	if f.panics {
		panic("rpc exploded")
	}
	return f.positions
}

type fakeIncentives struct {
	data map[string]*model.IncentiveInfo
}

func (f *fakeIncentives) IncentivesForPools(_ context.Context, pools []string) (map[string]*model.IncentiveInfo, error) {
	out := make(map[string]*model.IncentiveInfo)
	for _, pool := range pools {
		if info, ok := f.data[pool]; ok {
			out[pool] = info
		}
	}
	return out, nil
}

func healthyPosition() model.RawPosition {
	sqrtPrice, _ := univ3.SqrtRatioAtTick(0)
	return model.RawPosition{
		TokenID:     big.NewInt(42),
		DexID:       "uniswap-v3",
		PoolAddress: testPool,
		Token0:      testToken0,
		Token1:      testToken1,
		Token0Meta:  &model.TokenMeta{Address: testToken0.Hex(), Decimals: 18, Symbol: "WETH"},
		Token1Meta:  &model.TokenMeta{Address: testToken1.Hex(), Decimals: 6, Symbol: "USDC"},
		FeeTier:     3000,
		TickLower:   -60,
		TickUpper:   60,
		Liquidity:   new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil),

		FeeGrowthInside0LastX128: big.NewInt(0),
		FeeGrowthInside1LastX128: big.NewInt(0),
		TokensOwed0:              big.NewInt(0),
		TokensOwed1:              big.NewInt(0),

		Pool: &model.PoolState{
			SqrtPriceX96:         sqrtPrice,
			Tick:                 0,
			FeeGrowthGlobal0X128: big.NewInt(0),
			FeeGrowthGlobal1X128: big.NewInt(0),
		},
		TickBounds: &model.TickBoundaries{
			LowerOutside0X128: big.NewInt(0),
			LowerOutside1X128: big.NewInt(0),
			UpperOutside0X128: big.NewInt(0),
			UpperOutside1X128: big.NewInt(0),
		},
	}
}

func testPrices() pricing.StaticResolver {
	return pricing.StaticResolver{
		strings.ToLower(testToken0.Hex()): 2000,
		strings.ToLower(testToken1.Hex()): 1,
	}
}

func TestValuateHealthyPosition(t *testing.T) {
	source := &fakeSource{positions: []model.RawPosition{healthyPosition()}}
	engine := NewEngine(source, testPrices(), nil, Options{}, nil)

	report, err := engine.Valuate(context.Background(), testWallet, model.EntitlementsFor(model.RolePro))
	require.NoError(t, err)
	require.Len(t, report.Positions, 1)
	require.Equal(t, strings.ToLower(testWallet.Hex()), report.Address)

	row := report.Positions[0]
	require.Equal(t, "42", row.TokenID)
	require.Equal(t, "uniswap-v3", row.Dex)
	require.Equal(t, strings.ToLower(testPool.Hex()), row.PoolAddress)
	require.Equal(t, "uniswap-v3:"+strings.ToLower(testPool.Hex())+":42", row.PositionKey)
	require.Equal(t, model.StatusIn, row.Status)
	require.Equal(t, model.EnrichmentOK, row.EnrichmentStatus)
	require.Empty(t, row.Warnings)

	require.NotNil(t, row.TvlUsd)
	require.Greater(t, *row.TvlUsd, 0.0)
	require.NotNil(t, row.AmountsUsd.Token0)
	require.NotNil(t, row.AmountsUsd.Token1)
	require.NotNil(t, row.RangeMin)
	require.NotNil(t, row.RangeMax)
	require.NotNil(t, row.CurrentPrice)
	require.Less(t, *row.RangeMin, *row.RangeMax)
	require.NotNil(t, row.Claim)
	require.NotNil(t, row.UnclaimedFeesUsd)
}

func TestValuatePoolStateMissing(t *testing.T) {
	raw := healthyPosition()
	raw.Pool = nil
	raw.TickBounds = nil
	raw.TokensOwed0 = big.NewInt(1000)
	source := &fakeSource{positions: []model.RawPosition{raw}}
	engine := NewEngine(source, testPrices(), nil, Options{}, nil)

	report, err := engine.Valuate(context.Background(), testWallet, model.EntitlementsFor(model.RolePro))
	require.NoError(t, err)
	require.Len(t, report.Positions, 1)

	row := report.Positions[0]
	require.Equal(t, model.StatusUnknown, row.Status)
	require.Equal(t, model.EnrichmentPartial, row.EnrichmentStatus)
	require.Contains(t, row.Warnings, model.WarnPoolStateUnavailable)
	require.Contains(t, row.Warnings, model.WarnFeesDataUnavailable)
	require.Nil(t, row.TvlUsd)
	require.Nil(t, row.RangeMin)
}

func TestValuateVisitorRedaction(t *testing.T) {
	incentives := &fakeIncentives{data: map[string]*model.IncentiveInfo{
		strings.ToLower(testPool.Hex()): {
			UsdPerDay:  floatPtr(12.5),
			Fees24hUsd: floatPtr(3.2),
			Tokens:     []model.IncentiveToken{{Symbol: "CAKE", AmountPerDay: 100}},
		},
	}}
	source := &fakeSource{positions: []model.RawPosition{healthyPosition()}}
	engine := NewEngine(source, testPrices(), incentives, Options{}, nil)

	report, err := engine.Valuate(context.Background(), testWallet, model.EntitlementsFor(model.RoleVisitor))
	require.NoError(t, err)

	row := report.Positions[0]
	require.NotNil(t, row.TvlUsd)
	require.Nil(t, row.Claim)
	require.Nil(t, row.UnclaimedFeesUsd)
	require.Nil(t, row.IncentivesUsdPerDay)
	require.Nil(t, row.Fees24hUsd)
	require.Nil(t, row.RangeMin)
	require.Nil(t, row.RangeMax)
	require.Nil(t, row.CurrentPrice)
	require.Empty(t, row.IncentivesTokens)
}

func TestValuateProSeesIncentives(t *testing.T) {
	incentives := &fakeIncentives{data: map[string]*model.IncentiveInfo{
		strings.ToLower(testPool.Hex()): {
			UsdPerDay:  floatPtr(12.5),
			Fees24hUsd: floatPtr(3.2),
			Tokens:     []model.IncentiveToken{{Symbol: "CAKE", AmountPerDay: 100}},
		},
	}}
	source := &fakeSource{positions: []model.RawPosition{healthyPosition()}}
	engine := NewEngine(source, testPrices(), incentives, Options{}, nil)

	report, err := engine.Valuate(context.Background(), testWallet, model.EntitlementsFor(model.RolePro))
	require.NoError(t, err)

	row := report.Positions[0]
	require.NotNil(t, row.IncentivesUsdPerDay)
	require.Equal(t, 12.5, *row.IncentivesUsdPerDay)
	require.NotNil(t, row.Fees24hUsd)
	require.Len(t, row.IncentivesTokens, 1)
}

func TestValuatePremiumLacksAnalytics(t *testing.T) {
	incentives := &fakeIncentives{data: map[string]*model.IncentiveInfo{
		strings.ToLower(testPool.Hex()): {Fees24hUsd: floatPtr(3.2)},
	}}
	source := &fakeSource{positions: []model.RawPosition{healthyPosition()}}
	engine := NewEngine(source, testPrices(), incentives, Options{}, nil)

	report, err := engine.Valuate(context.Background(), testWallet, model.EntitlementsFor(model.RolePremium))
	require.NoError(t, err)

	row := report.Positions[0]
	require.Nil(t, row.Fees24hUsd)
	require.NotNil(t, row.RangeMin)
}

func TestValuateMissingPricesWarns(t *testing.T) {
	source := &fakeSource{positions: []model.RawPosition{healthyPosition()}}
	engine := NewEngine(source, pricing.StaticResolver{}, nil, Options{}, nil)

	report, err := engine.Valuate(context.Background(), testWallet, model.EntitlementsFor(model.RolePro))
	require.NoError(t, err)

	row := report.Positions[0]
	require.Contains(t, row.Warnings, model.WarnPriceMissingToken0)
	require.Contains(t, row.Warnings, model.WarnPriceMissingToken1)
	require.Nil(t, row.TvlUsd)
	// range bounds derive from ticks alone and survive missing prices
	require.NotNil(t, row.RangeMin)
}

func TestValuateCachesPerEntitlement(t *testing.T) {
	source := &fakeSource{positions: []model.RawPosition{healthyPosition()}}
	engine := NewEngine(source, testPrices(), nil, Options{}, nil)

	pro := model.EntitlementsFor(model.RolePro)
	first, err := engine.Valuate(context.Background(), testWallet, pro)
	require.NoError(t, err)
	second, err := engine.Valuate(context.Background(), testWallet, pro)
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, 1, source.calls)

	_, err = engine.Valuate(context.Background(), testWallet, model.EntitlementsFor(model.RoleVisitor))
	require.NoError(t, err)
	require.Equal(t, 2, source.calls)
}

func TestValuatePanicReturnsErrorUncached(t *testing.T) {
	source := &fakeSource{panics: true}
	engine := NewEngine(source, testPrices(), nil, Options{}, nil)

	_, err := engine.Valuate(context.Background(), testWallet, model.EntitlementsFor(model.RolePro))
	require.Error(t, err)

	source.panics = false
	source.positions = []model.RawPosition{healthyPosition()}
	report, err := engine.Valuate(context.Background(), testWallet, model.EntitlementsFor(model.RolePro))
	require.NoError(t, err)
	require.Len(t, report.Positions, 1)
}

func TestValuateEmptyWallet(t *testing.T) {
	source := &fakeSource{}
	engine := NewEngine(source, testPrices(), nil, Options{}, nil)

	report, err := engine.Valuate(context.Background(), testWallet, model.EntitlementsFor(model.RoleVisitor))
	require.NoError(t, err)
	require.Empty(t, report.Positions)
}

func floatPtr(v float64) *float64 { return &v }
