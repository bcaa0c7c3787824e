package calculation

import (
	"fmt"

	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// ratePlaces is the number of decimal places kept for monthly rates
	ratePlaces = 20
	// workPlaces bounds intermediate products inside power computations
	workPlaces = 28
	// moneyPlaces is the precision balances and cashflows are rounded to each month
	moneyPlaces = 10
)

var (
	one        = decimal.NewFromInt(1)
	twelve     = decimal.NewFromInt(12)
	hundred    = decimal.NewFromInt(100)
	oneTwelfth = one.DivRound(twelve, workPlaces)
)

// MonthlyRate converts an annual effective rate to the equivalent monthly
// rate, (1+annual)^(1/12) - 1, using decimal exponentiation.
func MonthlyRate(annual decimal.Decimal) (decimal.Decimal, error) {
	base := one.Add(annual)
	if !base.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: annual rate %s", domain.ErrInvalidRate, annual.String())
	}
	if annual.IsZero() {
		return decimal.Zero, nil
	}
	root, err := base.PowWithPrecision(oneTwelfth, workPlaces)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrInvalidRate, err)
	}
	return root.Sub(one).Round(ratePlaces), nil
}

// EquityFraction returns the equity share of a preset as a fraction of one.
// customEquity is a percentage and only consulted for the Custom preset.
func EquityFraction(preset domain.Preset, customEquity *decimal.Decimal) (decimal.Decimal, error) {
	switch preset {
	case domain.PresetAllIn:
		return one, nil
	case domain.PresetGrow:
		return decimal.NewFromFloat(0.8), nil
	case domain.PresetRegular:
		return decimal.NewFromFloat(0.6), nil
	case domain.PresetSafe:
		return decimal.NewFromFloat(0.1), nil
	case domain.PresetCustom:
		pct := domain.DefaultCustomEquity
		if customEquity != nil {
			pct = *customEquity
		}
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return decimal.Zero, fmt.Errorf("%w: custom equity %s%% outside 0-100", domain.ErrInvalidPreset, pct.String())
		}
		return pct.Div(hundred), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrInvalidPreset, preset)
	}
}

// BlendedAnnualRate weights the equity and debt assumptions by the equity fraction
func BlendedAnnualRate(equityFraction decimal.Decimal, a domain.Assumptions) decimal.Decimal {
	return equityFraction.Mul(a.EquityAnnual).Add(one.Sub(equityFraction).Mul(a.DebtAnnual))
}

// BlendedMonthlyRate is the monthly rate of the blended annual return
func BlendedMonthlyRate(equityFraction decimal.Decimal, a domain.Assumptions) (decimal.Decimal, error) {
	return MonthlyRate(BlendedAnnualRate(equityFraction, a))
}

// PresetMonthlyRate resolves a preset straight to its blended monthly rate
func PresetMonthlyRate(preset domain.Preset, customEquity *decimal.Decimal, a domain.Assumptions) (decimal.Decimal, error) {
	f, err := EquityFraction(preset, customEquity)
	if err != nil {
		return decimal.Zero, err
	}
	return BlendedMonthlyRate(f, a)
}

// powInt raises base to an integer power by repeated squaring, rounding
// every intermediate product so long horizons stay bounded in size.
func powInt(base decimal.Decimal, n int) decimal.Decimal {
	if n < 0 {
		p := powInt(base, -n)
		if p.IsZero() {
			return decimal.Zero
		}
		return one.DivRound(p, workPlaces)
	}
	result := one
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base).Round(workPlaces)
		}
		n >>= 1
		if n > 0 {
			base = base.Mul(base).Round(workPlaces)
		}
	}
	return result
}

// grow compounds an amount at a monthly rate for the given number of months
func grow(amount, monthlyRate decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return amount
	}
	return amount.Mul(powInt(one.Add(monthlyRate), months)).Round(moneyPlaces)
}
