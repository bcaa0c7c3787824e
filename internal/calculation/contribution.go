package calculation

import (
	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/shopspring/decimal"
)

// SolverOptions configures the contribution and corpus searches
type SolverOptions struct {
	Tolerance     decimal.Decimal // stop once the search bracket is this narrow
	MaxIterations int             // hard cap on bisection steps
	LowerBound    decimal.Decimal // smallest monthly contribution considered
}

// DefaultSolverOptions returns the standard solver configuration
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Tolerance:     decimal.NewFromInt(1), // ₹1
		MaxIterations: 50,
		LowerBound:    decimal.NewFromInt(100),
	}
}

func (o SolverOptions) withDefaults() SolverOptions {
	d := DefaultSolverOptions()
	if !o.Tolerance.IsPositive() {
		o.Tolerance = d.Tolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if !o.LowerBound.IsPositive() {
		o.LowerBound = d.LowerBound
	}
	return o
}

// ContributionRequest describes one accumulation problem
type ContributionRequest struct {
	Target         decimal.Decimal
	MonthlyRate    decimal.Decimal
	StepUpRate     decimal.Decimal
	StartMonth     int
	EndMonth       int // inclusive
	InitialBalance decimal.Decimal
}

// SimulationResult is the outcome of one forward accumulation run
type SimulationResult struct {
	FinalBalance decimal.Decimal
	StopMonth    int // month the target was reached, or EndMonth when it never was
	Reached      bool
}

// ContributionResult is the solved first-year monthly contribution
type ContributionResult struct {
	MonthlyContribution decimal.Decimal
	StopMonth           int
	FinalBalance        decimal.Decimal
	Iterations          int
	Reached             bool
	// Approximate marks answers that do not reach the target
	Approximate bool
}

// SteppedContribution is the contribution paid in month m: c*(1+stepUp)^floor(m/12)
func SteppedContribution(c, stepUpRate decimal.Decimal, month int) decimal.Decimal {
	return c.Mul(powInt(one.Add(stepUpRate), month/12)).Round(moneyPlaces)
}

// SimulateWithEarlyStop grows the balance month by month, adding the
// stepped contribution after growth, and stops the first month the balance
// reaches the target.
func SimulateWithEarlyStop(c decimal.Decimal, req ContributionRequest) SimulationResult {
	return simulate(c, req, true)
}

// SimulateFullWindow runs the whole window without stopping early
func SimulateFullWindow(c decimal.Decimal, req ContributionRequest) SimulationResult {
	return simulate(c, req, false)
}

func simulate(c decimal.Decimal, req ContributionRequest, earlyStop bool) SimulationResult {
	balance := req.InitialBalance
	if req.EndMonth < req.StartMonth {
		return SimulationResult{
			FinalBalance: balance,
			StopMonth:    req.EndMonth,
			Reached:      balance.GreaterThanOrEqual(req.Target),
		}
	}
	growth := one.Add(req.MonthlyRate)
	year := -1
	var amount decimal.Decimal
	for m := req.StartMonth; m <= req.EndMonth; m++ {
		if m/12 != year {
			year = m / 12
			amount = SteppedContribution(c, req.StepUpRate, m)
		}
		balance = balance.Mul(growth).Round(moneyPlaces).Add(amount)
		if earlyStop && balance.GreaterThanOrEqual(req.Target) {
			return SimulationResult{FinalBalance: balance, StopMonth: m, Reached: true}
		}
	}
	return SimulationResult{
		FinalBalance: balance,
		StopMonth:    req.EndMonth,
		Reached:      balance.GreaterThanOrEqual(req.Target),
	}
}

// SolveContribution finds the smallest first-year monthly contribution that
// reaches the target within the window, searching [LowerBound, target/6].
// When even the upper bound falls short the upper bound is returned marked
// approximate.
func SolveContribution(req ContributionRequest, opts SolverOptions) ContributionResult {
	return solve(req, opts, decimal.NewFromInt(6), SimulateWithEarlyStop)
}

// SolveContributionNoEarlyStop searches [LowerBound, target/12] against the
// balance at the end of the full window.
func SolveContributionNoEarlyStop(req ContributionRequest, opts SolverOptions) ContributionResult {
	return solve(req, opts, twelve, SimulateFullWindow)
}

func solve(req ContributionRequest, opts SolverOptions, divisor decimal.Decimal, run func(decimal.Decimal, ContributionRequest) SimulationResult) ContributionResult {
	opts = opts.withDefaults()
	if !req.Target.IsPositive() {
		return ContributionResult{MonthlyContribution: decimal.Zero, StopMonth: req.StartMonth, Reached: true}
	}
	if req.EndMonth < req.StartMonth {
		res := run(decimal.Zero, req)
		return ContributionResult{
			MonthlyContribution: decimal.Zero,
			StopMonth:           req.EndMonth,
			FinalBalance:        res.FinalBalance,
			Reached:             res.Reached,
			Approximate:         !res.Reached,
		}
	}

	lo := opts.LowerBound
	hi := decimal.Max(req.Target.DivRound(divisor, moneyPlaces), lo)

	upper := run(hi, req)
	iterations := 1
	if !upper.Reached {
		return ContributionResult{
			MonthlyContribution: hi,
			StopMonth:           upper.StopMonth,
			FinalBalance:        upper.FinalBalance,
			Iterations:          iterations,
			Approximate:         true,
		}
	}

	lower := run(lo, req)
	iterations++
	if lower.Reached {
		return ContributionResult{
			MonthlyContribution: lo,
			StopMonth:           lower.StopMonth,
			FinalBalance:        lower.FinalBalance,
			Iterations:          iterations,
			Reached:             true,
		}
	}

	best, bestRes := hi, upper
	two := decimal.NewFromInt(2)
	for iterations < opts.MaxIterations && hi.Sub(lo).GreaterThan(opts.Tolerance) {
		iterations++
		mid := lo.Add(hi).DivRound(two, moneyPlaces)
		res := run(mid, req)
		if res.Reached {
			hi = mid
			best, bestRes = mid, res
		} else {
			lo = mid
		}
	}

	return ContributionResult{
		MonthlyContribution: best,
		StopMonth:           bestRes.StopMonth,
		FinalBalance:        bestRes.FinalBalance,
		Iterations:          iterations,
		Reached:             true,
	}
}

// SteppedSchedule lists the stepped contributions for months start..stop inclusive
func SteppedSchedule(c, stepUpRate decimal.Decimal, startMonth, stopMonth int) []domain.Cashflow {
	if c.IsZero() || stopMonth < startMonth {
		return []domain.Cashflow{}
	}
	out := make([]domain.Cashflow, 0, stopMonth-startMonth+1)
	year := -1
	var amount decimal.Decimal
	for m := startMonth; m <= stopMonth; m++ {
		if m/12 != year {
			year = m / 12
			amount = SteppedContribution(c, stepUpRate, m)
		}
		out = append(out, domain.Cashflow{Month: m, Amount: amount})
	}
	return out
}

// TotalContribution sums the amounts of a schedule
func TotalContribution(schedule []domain.Cashflow) decimal.Decimal {
	total := decimal.Zero
	for _, cf := range schedule {
		total = total.Add(cf.Amount)
	}
	return total
}
