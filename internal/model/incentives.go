package model

// IncentiveToken is one validated reward-token entry from the snapshot store.
type IncentiveToken struct {
	Symbol       string  `json:"symbol"`
	AmountPerDay float64 `json:"amountPerDay"`
	TokenAddress string  `json:"tokenAddress,omitempty"`
	Decimals     *uint8  `json:"decimals,omitempty"`
}

// IncentiveInfo is the per-pool incentive snapshot. A nil UsdPerDay with a
// populated token list means the program exists but is unpriced.
type IncentiveInfo struct {
	UsdPerDay  *float64         `json:"usdPerDay"`
	Fees24hUsd *float64         `json:"fees24hUsd"`
	Tokens     []IncentiveToken `json:"tokens"`
}

// PoolIncentiveRecord is the storage row shape for snapshot upserts.
type PoolIncentiveRecord struct {
	PoolAddress string           `json:"pool_address"`
	UsdPerDay   *float64         `json:"usd_per_day"`
	Fees24hUsd  *float64         `json:"fees_24h_usd"`
	Tokens      []IncentiveToken `json:"tokens"`
}
