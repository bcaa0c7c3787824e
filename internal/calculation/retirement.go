package calculation

import (
	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/shopspring/decimal"
)

// degenerateEpsilon is the |r-g| below which the annuity formula switches to its limit form
var degenerateEpsilon = decimal.New(1, -10)

// DrawdownTolerance is how far from zero a simulated drawdown may end and still count as funded
var DrawdownTolerance = decimal.NewFromInt(1000)

// RetirementCorpus is the present value at retirement of n monthly
// withdrawals starting at pmt and growing at g, discounted at r:
// pmt*(1-((1+g)/(1+r))^n)/(r-g), or pmt*n/(1+r) when r and g coincide.
func RetirementCorpus(pmt, r, g decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return decimal.Zero
	}
	if r.Sub(g).Abs().LessThan(degenerateEpsilon) {
		return pmt.Mul(decimal.NewFromInt(int64(months))).DivRound(one.Add(r), moneyPlaces)
	}
	q := one.Add(g).DivRound(one.Add(r), workPlaces)
	factor := one.Sub(powInt(q, months))
	return pmt.Mul(factor).DivRound(r.Sub(g), moneyPlaces)
}

// RetirementWithdrawals lists months withdrawals starting at startMonth.
// The first withdrawal is pmt and each later one grows at the monthly inflation rate g.
func RetirementWithdrawals(pmt, g decimal.Decimal, startMonth, months int) []domain.Cashflow {
	if months <= 0 {
		return nil
	}
	out := make([]domain.Cashflow, 0, months)
	growth := one.Add(g)
	amount := pmt
	for k := 0; k < months; k++ {
		out = append(out, domain.Cashflow{Month: startMonth + k, Amount: amount.Neg()})
		amount = amount.Mul(growth).Round(moneyPlaces)
	}
	return out
}

// SimulateDrawdown applies growth and then each withdrawal in turn and returns the ending balance
func SimulateDrawdown(corpus, r decimal.Decimal, withdrawals []domain.Cashflow) decimal.Decimal {
	growth := one.Add(r)
	balance := corpus
	for _, w := range withdrawals {
		balance = balance.Mul(growth).Round(moneyPlaces).Add(w.Amount)
	}
	return balance
}

// SolveCorpusBySimulation bisects on the starting corpus until the simulated
// drawdown ends within tolerance of zero. It returns the corpus and the
// number of iterations used.
func SolveCorpusBySimulation(withdrawals []domain.Cashflow, r decimal.Decimal, opts SolverOptions) (decimal.Decimal, int) {
	opts = opts.withDefaults()
	lo := decimal.Zero
	hi := TotalContribution(withdrawals).Neg()
	if !hi.IsPositive() {
		return decimal.Zero, 0
	}
	two := decimal.NewFromInt(2)
	iterations := 0
	for iterations < opts.MaxIterations && hi.Sub(lo).GreaterThan(opts.Tolerance) {
		iterations++
		mid := lo.Add(hi).DivRound(two, moneyPlaces)
		if SimulateDrawdown(mid, r, withdrawals).IsNegative() {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi, iterations
}

// RetirementSizing is the corpus and withdrawal stream for one retirement goal
type RetirementSizing struct {
	FirstWithdrawal decimal.Decimal
	Corpus          decimal.Decimal
	Withdrawals     []domain.Cashflow
	// Simulated is true when the closed form failed its drawdown check
	Simulated bool
}

// SizeRetirement computes the corpus needed at retireMonth to fund a monthly
// spend that starts at spendToday inflated to retirement, for months
// withdrawals discounted at the post-retirement rate r.
func SizeRetirement(spendToday, annualInflation decimal.Decimal, yearsToRetire, retireMonth, months int, r decimal.Decimal, opts SolverOptions) (RetirementSizing, error) {
	g, err := MonthlyRate(annualInflation)
	if err != nil {
		return RetirementSizing{}, err
	}
	pmt := Inflate(spendToday, annualInflation, yearsToRetire)
	withdrawals := RetirementWithdrawals(pmt, g, retireMonth, months)
	corpus := RetirementCorpus(pmt, r, g, months)

	sizing := RetirementSizing{FirstWithdrawal: pmt, Corpus: corpus, Withdrawals: withdrawals}
	if SimulateDrawdown(corpus, r, withdrawals).Abs().GreaterThan(DrawdownTolerance) {
		sizing.Corpus, _ = SolveCorpusBySimulation(withdrawals, r, opts)
		sizing.Simulated = true
	}
	return sizing, nil
}

// RetirementInputs collects what ValidateRetirementPlan needs
type RetirementInputs struct {
	CurrentAge        int
	RetireAge         int
	PlanTillAge       int
	MonthlySpendToday decimal.Decimal
	Inflation         decimal.Decimal
	AccumulationRate  decimal.Decimal // monthly
	WithdrawalRate    decimal.Decimal // monthly
	StepUpRate        decimal.Decimal
	InitialBalance    decimal.Decimal
}

// RetirementValidation reports a full accumulate-then-withdraw run
type RetirementValidation struct {
	TargetCorpus       decimal.Decimal
	CorpusAtRetirement decimal.Decimal
	FinalBalance       decimal.Decimal
	StopMonth          int
	Valid              bool
}

// ValidateRetirementPlan accumulates with the given contribution until the
// target corpus is reached (then lets it grow untouched until retirement)
// and draws it down to the plan-till age. The plan is valid when the final
// balance lies within DrawdownTolerance of zero.
func ValidateRetirementPlan(in RetirementInputs, contribution decimal.Decimal, opts SolverOptions) (RetirementValidation, error) {
	if in.PlanTillAge <= in.RetireAge || in.RetireAge < in.CurrentAge {
		return RetirementValidation{}, domain.ErrInvalidGoalWindow
	}
	retireMonth := (in.RetireAge - in.CurrentAge) * 12
	months := (in.PlanTillAge - in.RetireAge) * 12
	sizing, err := SizeRetirement(in.MonthlySpendToday, in.Inflation, in.RetireAge-in.CurrentAge, retireMonth, months, in.WithdrawalRate, opts)
	if err != nil {
		return RetirementValidation{}, err
	}

	growth := one.Add(in.AccumulationRate)
	balance := in.InitialBalance
	stopMonth := retireMonth - 1
	contributing := true
	year := -1
	var amount decimal.Decimal
	for m := 0; m < retireMonth; m++ {
		balance = balance.Mul(growth).Round(moneyPlaces)
		if contributing {
			if m/12 != year {
				year = m / 12
				amount = SteppedContribution(contribution, in.StepUpRate, m)
			}
			balance = balance.Add(amount)
			if balance.GreaterThanOrEqual(sizing.Corpus) {
				contributing = false
				stopMonth = m
			}
		}
	}

	final := SimulateDrawdown(balance, in.WithdrawalRate, sizing.Withdrawals)
	return RetirementValidation{
		TargetCorpus:       sizing.Corpus,
		CorpusAtRetirement: balance,
		FinalBalance:       final,
		StopMonth:          stopMonth,
		Valid:              final.Abs().LessThanOrEqual(DrawdownTolerance),
	}, nil
}
