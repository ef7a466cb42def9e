package postgres

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"positionScope/internal/model"
)

// rawIncentiveToken is the untrusted JSONB shape. Fields are validated before
// a record is accepted; malformed entries are counted and skipped rather than
// failing the pool lookup.
type rawIncentiveToken struct {
	Symbol       string   `json:"symbol"`
	AmountPerDay *float64 `json:"amountPerDay"`
	TokenAddress string   `json:"tokenAddress"`
	Decimals     *int     `json:"decimals"`
}

func parseIncentiveTokens(data []byte) (tokens []model.IncentiveToken, malformed int) {
	if len(data) == 0 {
		return nil, 0
	}

	var raw []rawIncentiveToken
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 1
	}

	for _, entry := range raw {
		token, ok := validateIncentiveToken(entry)
		if !ok {
			malformed++
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens, malformed
}

func validateIncentiveToken(entry rawIncentiveToken) (model.IncentiveToken, bool) {
	if strings.TrimSpace(entry.Symbol) == "" {
		return model.IncentiveToken{}, false
	}
	if entry.AmountPerDay == nil || math.IsNaN(*entry.AmountPerDay) || math.IsInf(*entry.AmountPerDay, 0) || *entry.AmountPerDay < 0 {
		return model.IncentiveToken{}, false
	}

	token := model.IncentiveToken{
		Symbol:       entry.Symbol,
		AmountPerDay: *entry.AmountPerDay,
	}
	if entry.TokenAddress != "" {
		if !common.IsHexAddress(entry.TokenAddress) {
			return model.IncentiveToken{}, false
		}
		token.TokenAddress = strings.ToLower(entry.TokenAddress)
	}
	if entry.Decimals != nil {
		if *entry.Decimals < 0 || *entry.Decimals > 255 {
			return model.IncentiveToken{}, false
		}
		d := uint8(*entry.Decimals)
		token.Decimals = &d
	}
	return token, true
}

func encodeIncentiveTokens(tokens []model.IncentiveToken) ([]byte, error) {
	if tokens == nil {
		tokens = []model.IncentiveToken{}
	}
	return json.Marshal(tokens)
}
