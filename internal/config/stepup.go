package config

import "github.com/shopspring/decimal"

var (
	minStepUp = decimal.RequireFromString("0.03")
	maxStepUp = decimal.RequireFromString("0.07")

	lowSavings  = decimal.NewFromInt(1_000_000)
	highSavings = decimal.NewFromInt(5_000_000)
	halfPercent = decimal.RequireFromString("0.005")
)

// SuggestStepUpRate proposes a yearly contribution increase for a saver.
// Younger savers get a steeper ramp; small savings nudge it up and large
// savings nudge it down. The result is clamped to 3%..7%.
func SuggestStepUpRate(age int, savings decimal.Decimal) decimal.Decimal {
	var rate decimal.Decimal
	switch {
	case age <= 30:
		rate = decimal.RequireFromString("0.07")
	case age <= 35:
		rate = decimal.RequireFromString("0.06")
	case age <= 45:
		rate = decimal.RequireFromString("0.05")
	case age <= 55:
		rate = decimal.RequireFromString("0.04")
	default:
		rate = decimal.RequireFromString("0.03")
	}

	switch {
	case savings.LessThan(lowSavings):
		rate = rate.Add(halfPercent)
	case savings.GreaterThan(highSavings):
		rate = rate.Sub(halfPercent)
	}

	if rate.LessThan(minStepUp) {
		return minStepUp
	}
	if rate.GreaterThan(maxStepUp) {
		return maxStepUp
	}
	return rate
}
