package calculation

import (
	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	horizonBufferMonths = 24
	minHorizonMonths    = 36
	maxSimulationAge    = 90
)

var (
	// ExhaustionThreshold is the balance at or below which a portfolio in a withdrawal year counts as depleted
	ExhaustionThreshold = decimal.NewFromInt(1000)
	crore               = decimal.NewFromInt(10_000_000)
)

// PortfolioResult is the combined yearly trajectory of every goal
type PortfolioResult struct {
	Points       []domain.ChartPoint
	Exhausted    bool
	DepletionAge *int
}

// rateSchedule picks the monthly return for each simulated month
type rateSchedule struct {
	currentAge int
	retireAge  int
	during     decimal.Decimal
	post       decimal.Decimal
	hasRetire  bool
}

func newRateSchedule(plan *domain.Plan) (rateSchedule, error) {
	rs := rateSchedule{currentAge: plan.Profile.Age}
	ret, ok := plan.RetirementGoal()
	if !ok {
		r, err := PresetMonthlyRate(domain.PresetRegular, nil, plan.Profile.Assumptions)
		if err != nil {
			return rs, err
		}
		rs.during, rs.post = r, r
		return rs, nil
	}
	during, err := PresetMonthlyRate(ret.DuringPreset, ret.CustomEquityDuring, plan.Profile.Assumptions)
	if err != nil {
		return rs, err
	}
	post := domain.PresetSafe
	if ret.PostPreset != nil {
		post = *ret.PostPreset
	}
	postRate, err := PresetMonthlyRate(post, ret.CustomEquityPost, plan.Profile.Assumptions)
	if err != nil {
		return rs, err
	}
	rs.during, rs.post = during, postRate
	rs.retireAge = ret.RetireAge
	rs.hasRetire = true
	return rs, nil
}

func (rs rateSchedule) at(month int) decimal.Decimal {
	if rs.hasRetire && rs.currentAge+month/12 >= rs.retireAge {
		return rs.post
	}
	return rs.during
}

type yearTotals struct {
	contributions decimal.Decimal
	withdrawals   decimal.Decimal
}

// SimulatePortfolio steps the combined balance forward month by month:
// growth at the phase-dependent rate first, then the month's net cashflow.
// A snapshot is taken every 12 months. If the balance falls to the
// exhaustion threshold during a year with withdrawals, that year's point is
// the exhausted balance and the simulation stops; each year appears once.
func SimulatePortfolio(plan *domain.Plan, computations []domain.GoalComputation) (PortfolioResult, error) {
	rates, err := newRateSchedule(plan)
	if err != nil {
		return PortfolioResult{}, err
	}

	net := make(map[int]decimal.Decimal)
	years := make(map[int]*yearTotals)
	maxMonth := 0
	add := func(cf domain.Cashflow) {
		net[cf.Month] = net[cf.Month].Add(cf.Amount)
		yt, ok := years[cf.Month/12]
		if !ok {
			yt = &yearTotals{}
			years[cf.Month/12] = yt
		}
		if cf.Amount.IsNegative() {
			yt.withdrawals = yt.withdrawals.Add(cf.Amount.Neg())
		} else {
			yt.contributions = yt.contributions.Add(cf.Amount)
		}
		maxMonth = max(maxMonth, cf.Month)
	}
	for _, gc := range computations {
		for _, cf := range gc.ContributionSchedule {
			add(cf)
		}
		for _, cf := range gc.WithdrawalSchedule {
			add(cf)
		}
	}

	horizon := min(max(maxMonth+horizonBufferMonths, minHorizonMonths), max(0, (maxSimulationAge-plan.Profile.Age)*12))

	result := PortfolioResult{Points: make([]domain.ChartPoint, 0, horizon/12+1)}
	balance := plan.TotalAllocated()
	for m := 0; m <= horizon; m++ {
		balance = balance.Mul(one.Add(rates.at(m))).Round(moneyPlaces)
		if flow, ok := net[m]; ok {
			balance = balance.Add(flow)
		}

		yt := years[m/12]
		withdrawing := yt != nil && yt.withdrawals.IsPositive()
		if withdrawing && balance.LessThanOrEqual(ExhaustionThreshold) {
			point := snapshot(plan.Profile.Age, m, balance, yt)
			point.Exhausted = true
			// a mid-year exhaustion replaces that year's snapshot
			if n := len(result.Points); n > 0 && result.Points[n-1].Year == point.Year {
				result.Points[n-1] = point
			} else {
				result.Points = append(result.Points, point)
			}
			result.Exhausted = true
			age := point.Age
			result.DepletionAge = &age
			break
		}
		if m%12 == 0 {
			result.Points = append(result.Points, snapshot(plan.Profile.Age, m, balance, yt))
		}
	}
	return result, nil
}

func snapshot(currentAge, month int, balance decimal.Decimal, yt *yearTotals) domain.ChartPoint {
	year := month / 12
	point := domain.ChartPoint{
		Year:               year,
		Age:                currentAge + year,
		PortfolioValue:     balance.Round(2),
		PortfolioCrore:     balance.DivRound(crore, 4).InexactFloat64(),
		AnnualContribution: decimal.Zero,
		AnnualWithdrawal:   decimal.Zero,
	}
	if yt != nil {
		point.AnnualContribution = yt.contributions.Round(2)
		point.AnnualWithdrawal = yt.withdrawals.Round(2)
		if yt.contributions.IsPositive() {
			avg := yt.contributions.DivRound(twelve, 2)
			point.MonthlyContribution = &avg
		}
	}
	return point
}
