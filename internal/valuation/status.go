package valuation

import "positionScope/internal/model"

// nearTolerancePercent widens the range by this share of its width on both
// sides when classifying "near".
const nearTolerancePercent = 5

// determineStatus classifies the current tick against the position range.
// A nil tick means the pool state was unavailable.
func determineStatus(tick *int32, tickLower, tickUpper int32) model.RangeStatus {
	if tick == nil {
		return model.StatusUnknown
	}
	t := int64(*tick)
	lower := int64(tickLower)
	upper := int64(tickUpper)
	if lower > upper {
		lower, upper = upper, lower
	}

	if t >= lower && t <= upper {
		return model.StatusIn
	}

	tolerance := (upper - lower) * nearTolerancePercent / 100
	if t < lower && t >= lower-tolerance {
		return model.StatusNear
	}
	if t > upper && t <= upper+tolerance {
		return model.StatusNear
	}
	return model.StatusOut
}
