package calculation

import (
	"fmt"

	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	shortHorizonYears     = 3
	longHorizonYears      = 10
	shortHorizonMaxEquity = decimal.NewFromInt(20)
)

// AllocationWarnings returns advisory notes about a preset given how many
// years remain until the goal. They never block computation.
func AllocationWarnings(preset domain.Preset, customEquity *decimal.Decimal, yearsToGoal int) []string {
	fraction, err := EquityFraction(preset, customEquity)
	if err != nil {
		return nil
	}
	equityPct := fraction.Mul(hundred)

	var warnings []string
	if yearsToGoal < shortHorizonYears && equityPct.GreaterThan(shortHorizonMaxEquity) {
		warnings = append(warnings, fmt.Sprintf("High equity allocation (%s%%) for short-term goal (<%d years)", equityPct.StringFixed(0), shortHorizonYears))
	}
	if yearsToGoal > longHorizonYears && preset != domain.PresetAllIn {
		warnings = append(warnings, fmt.Sprintf("Consider All-in allocation for long-term goal (>%d years)", longHorizonYears))
	}
	return warnings
}
