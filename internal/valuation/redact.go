package valuation

import "positionScope/internal/model"

// redact strips premium-only fields from the wire payload itself for roles
// without the premium entitlement; clients never see data they could not
// have requested.
func redact(row *model.PositionRow, ent model.Entitlements) {
	if !ent.Flags.Analytics {
		row.Fees24hUsd = nil
	}
	if ent.Flags.Premium {
		return
	}

	row.Claim = nil
	row.IncentivesTokens = []model.IncentiveToken{}
	row.IncentivesUsdPerDay = nil
	row.UnclaimedFeesUsd = nil
	row.Fees24hUsd = nil
	row.RangeMin = nil
	row.RangeMax = nil
	row.CurrentPrice = nil
}
