package model

// EnrichmentStatus reports how complete a row's computed analytics are.
type EnrichmentStatus string

const (
	EnrichmentOK      EnrichmentStatus = "ok"
	EnrichmentPartial EnrichmentStatus = "partial"
	EnrichmentFailed  EnrichmentStatus = "failed"
)

// RangeStatus classifies the current pool tick against the position range.
type RangeStatus string

const (
	StatusIn      RangeStatus = "in"
	StatusNear    RangeStatus = "near"
	StatusOut     RangeStatus = "out"
	StatusUnknown RangeStatus = "unknown"
)

// Warning codes attached to rows when a derived field could not be computed.
const (
	WarnFeesDataUnavailable  = "fees_data_unavailable"
	WarnFeesCalcFailed       = "fees_calc_failed"
	WarnPriceMissingToken0   = "price_missing_token0"
	WarnPriceMissingToken1   = "price_missing_token1"
	WarnRangeInverted        = "range_inverted"
	WarnPoolStateUnavailable = "pool_state_unavailable"
	WarnTokenMetaUnavailable = "token_metadata_unavailable"
	WarnMappingFailed        = "mapping_failed"
)

// TokenRef identifies one side of the pair on the wire.
type TokenRef struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// AmountsUsd breaks the position value down per token. Nil means unknown,
// never zero-when-missing.
type AmountsUsd struct {
	Total  *float64 `json:"total"`
	Token0 *float64 `json:"token0"`
	Token1 *float64 `json:"token1"`
}

// ClaimToken is one immediately claimable token amount.
type ClaimToken struct {
	Symbol string   `json:"symbol"`
	Amount string   `json:"amount"`
	Usd    *float64 `json:"usd"`
}

// Claim aggregates the on-chain tokensOwed amounts.
type Claim struct {
	Usd    *float64     `json:"usd"`
	Tokens []ClaimToken `json:"tokens"`
}

// PositionRow is the normalized, externally visible unit of the response.
// Every numeric USD field is either a finite number or nil.
type PositionRow struct {
	TokenID     string `json:"tokenId"`
	Dex         string `json:"dex"`
	PoolAddress string `json:"poolAddress"`
	PositionKey string `json:"positionKey"`

	Token0  TokenRef `json:"token0"`
	Token1  TokenRef `json:"token1"`
	FeeTier uint32   `json:"feeTier"`

	Liquidity string `json:"liquidity"`

	AmountsUsd          AmountsUsd       `json:"amountsUsd"`
	TvlUsd              *float64         `json:"tvlUsd"`
	UnclaimedFeesUsd    *float64         `json:"unclaimedFeesUsd"`
	Fees24hUsd          *float64         `json:"fees24hUsd"`
	IncentivesUsdPerDay *float64         `json:"incentivesUsdPerDay"`
	IncentivesTokens    []IncentiveToken `json:"incentivesTokens"`

	RangeMin     *float64 `json:"rangeMin,omitempty"`
	RangeMax     *float64 `json:"rangeMax,omitempty"`
	CurrentPrice *float64 `json:"currentPrice,omitempty"`

	Status RangeStatus `json:"status"`
	Claim  *Claim      `json:"claim"`

	Entitlements     Entitlements     `json:"entitlements"`
	EnrichmentStatus EnrichmentStatus `json:"enrichmentStatus"`
	Warnings         []string         `json:"warnings"`
}
