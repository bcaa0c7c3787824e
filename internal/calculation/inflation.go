package calculation

import (
	"fmt"

	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/shopspring/decimal"
)

// Inflate grows a present value at an annual rate for a whole number of years
func Inflate(presentValue, annualRate decimal.Decimal, years int) decimal.Decimal {
	if years == 0 || annualRate.IsZero() {
		return presentValue
	}
	return presentValue.Mul(powInt(one.Add(annualRate), years)).Round(moneyPlaces)
}

// InflateYears is Inflate for fractional year counts
func InflateYears(presentValue, annualRate, years decimal.Decimal) (decimal.Decimal, error) {
	if years.IsZero() || annualRate.IsZero() {
		return presentValue, nil
	}
	base := one.Add(annualRate)
	if !base.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: annual rate %s", domain.ErrInvalidRate, annualRate.String())
	}
	factor, err := base.PowWithPrecision(years, workPlaces)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrInvalidRate, err)
	}
	return presentValue.Mul(factor).Round(moneyPlaces), nil
}

// ScheduleYear is one year of a recurring cost
type ScheduleYear struct {
	YearOffset int             `json:"year_offset"`
	Annual     decimal.Decimal `json:"annual"`
	Monthly    decimal.Decimal `json:"monthly"`
}

// RecurringSchedule inflates an annual cost to each of durationYears
// consecutive years starting at startYearOffset. Inflation is applied once
// per year; the monthly figure is flat within a year.
func RecurringSchedule(annualToday, annualRate decimal.Decimal, startYearOffset, durationYears int) []ScheduleYear {
	if durationYears <= 0 {
		return nil
	}
	out := make([]ScheduleYear, 0, durationYears)
	for i := 0; i < durationYears; i++ {
		year := startYearOffset + i
		annual := Inflate(annualToday, annualRate, year)
		out = append(out, ScheduleYear{
			YearOffset: year,
			Annual:     annual,
			Monthly:    annual.DivRound(twelve, moneyPlaces),
		})
	}
	return out
}

// ScheduleTotal sums the annual amounts of a recurring schedule
func ScheduleTotal(years []ScheduleYear) decimal.Decimal {
	total := decimal.Zero
	for _, y := range years {
		total = total.Add(y.Annual)
	}
	return total
}

// MonthlyCashflows expands each schedule year into 12 monthly entries.
// Entries are negated when withdrawal is true.
func MonthlyCashflows(years []ScheduleYear, withdrawal bool) []domain.Cashflow {
	out := make([]domain.Cashflow, 0, len(years)*12)
	for _, y := range years {
		amount := y.Monthly
		if withdrawal {
			amount = amount.Neg()
		}
		for k := 0; k < 12; k++ {
			out = append(out, domain.Cashflow{Month: y.YearOffset*12 + k, Amount: amount})
		}
	}
	return out
}
