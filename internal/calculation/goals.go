package calculation

import (
	"fmt"

	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/shopspring/decimal"
)

// goalCompiler turns one goal into its target, withdrawals and contribution
// stream. It implements domain.GoalVisitor so every variant is covered.
type goalCompiler struct {
	profile domain.Profile
	lumpsum decimal.Decimal
	opts    SolverOptions
	logger  Logger

	result *domain.GoalComputation
}

// CompileGoal computes the funding requirement of a single goal.
// Windows that are inverted fail with domain.ErrInvalidGoalWindow.
func (e *Engine) CompileGoal(profile domain.Profile, goal domain.Goal, lumpsum decimal.Decimal) (*domain.GoalComputation, error) {
	gc := &goalCompiler{
		profile: profile,
		lumpsum: lumpsum,
		opts:    e.Options,
		logger:  e.Logger,
	}
	if err := goal.Accept(gc); err != nil {
		id := goal.Common().ID
		return nil, &domain.GoalError{GoalID: id, Op: "compile " + string(goal.Kind()), Err: err}
	}
	return gc.result, nil
}

func (gc *goalCompiler) monthsFromNow(age int) int {
	return max(0, (age-gc.profile.Age)*12)
}

func (gc *goalCompiler) yearsFromNow(age int) int {
	return max(0, age-gc.profile.Age)
}

func (gc *goalCompiler) VisitRetirement(g *domain.RetirementGoal) error {
	if g.PlanTillAge <= g.RetireAge {
		return fmt.Errorf("%w: plan_till_age %d must exceed retire_age %d", domain.ErrInvalidGoalWindow, g.PlanTillAge, g.RetireAge)
	}
	post := domain.PresetSafe
	if g.PostPreset != nil {
		post = *g.PostPreset
	}
	r, err := PresetMonthlyRate(post, g.CustomEquityPost, gc.profile.Assumptions)
	if err != nil {
		return err
	}

	retireMonth := gc.monthsFromNow(g.RetireAge)
	months := (g.PlanTillAge - max(g.RetireAge, gc.profile.Age)) * 12
	sizing, err := SizeRetirement(g.MonthlySpendToday, g.Inflation, gc.yearsFromNow(g.RetireAge), retireMonth, months, r, gc.opts)
	if err != nil {
		return err
	}
	if sizing.Simulated {
		gc.logger.Debugf("retirement %s: closed-form corpus missed drawdown check, solved by simulation", g.ID)
	}
	gc.logger.Debugf("retirement %s: first withdrawal %s, corpus %s over %d months",
		g.ID, sizing.FirstWithdrawal.StringFixed(2), sizing.Corpus.StringFixed(2), months)

	corpus := sizing.Corpus
	return gc.fund(&g.GoalBase, corpus, &corpus, sizing.Withdrawals, g.RetireAge)
}

func (gc *goalCompiler) VisitEducation(g *domain.EducationGoal) error {
	years := RecurringSchedule(g.CostPerYearToday, g.Inflation, g.StartInYears, g.DurationYears)
	return gc.fund(&g.GoalBase, ScheduleTotal(years), nil, MonthlyCashflows(years, true), gc.profile.Age+g.StartInYears)
}

func (gc *goalCompiler) VisitVacation(g *domain.VacationGoal) error {
	if g.LastHolidayAge < g.FirstHolidayAge {
		return fmt.Errorf("%w: last_holiday_age %d before first_holiday_age %d", domain.ErrInvalidGoalWindow, g.LastHolidayAge, g.FirstHolidayAge)
	}
	offset := gc.yearsFromNow(g.FirstHolidayAge)
	years := RecurringSchedule(g.SpendPerYearToday, g.Inflation, offset, g.LastHolidayAge-g.FirstHolidayAge+1)
	return gc.fund(&g.GoalBase, ScheduleTotal(years), nil, MonthlyCashflows(years, true), g.FirstHolidayAge)
}

func (gc *goalCompiler) VisitPurchase(g *domain.PurchaseGoal) error {
	return gc.singleWithdrawal(&g.GoalBase, g.ItemCostToday, g.PurchaseAge)
}

func (gc *goalCompiler) VisitCustom(g *domain.CustomGoal) error {
	return gc.singleWithdrawal(&g.GoalBase, g.TargetAmount, g.TargetAge)
}

func (gc *goalCompiler) singleWithdrawal(base *domain.GoalBase, amountToday decimal.Decimal, age int) error {
	target := Inflate(amountToday, base.Inflation, gc.yearsFromNow(age))
	withdrawals := []domain.Cashflow{{Month: gc.monthsFromNow(age), Amount: target.Neg()}}
	return gc.fund(base, target, nil, withdrawals, age)
}

// fund grows the lumpsum across the accumulation window and solves for the
// contribution that closes whatever gap remains.
func (gc *goalCompiler) fund(base *domain.GoalBase, target decimal.Decimal, corpus *decimal.Decimal, withdrawals []domain.Cashflow, goalAge int) error {
	if base.AccumulationStopAge < base.AccumulationStartAge {
		return fmt.Errorf("%w: accumulation_stop_age %d before accumulation_start_age %d",
			domain.ErrInvalidGoalWindow, base.AccumulationStopAge, base.AccumulationStartAge)
	}
	r, err := PresetMonthlyRate(base.DuringPreset, base.CustomEquityDuring, gc.profile.Assumptions)
	if err != nil {
		return err
	}

	startMonth := gc.monthsFromNow(base.AccumulationStartAge)
	endMonth := (base.AccumulationStopAge-gc.profile.Age)*12 - 1
	windowMonths := max(0, endMonth-startMonth+1)

	atStart := grow(gc.lumpsum, r, startMonth)
	lumpsumFV := grow(atStart, r, windowMonths)
	remaining := decimal.Max(target.Sub(lumpsumFV), decimal.Zero)

	out := &domain.GoalComputation{
		GoalID:                   base.ID,
		GoalType:                 base.Type,
		Title:                    base.Title,
		MonthlyContributionYear1: decimal.Zero,
		Lumpsum:                  gc.lumpsum,
		LumpsumFutureValue:       lumpsumFV,
		TargetAmount:             target,
		TargetCorpus:             corpus,
		RemainingTarget:          remaining,
		StartMonth:               startMonth,
		EndMonth:                 endMonth,
		TotalContribution:        decimal.Zero,
		ContributionSchedule:     []domain.Cashflow{},
		WithdrawalSchedule:       withdrawals,
		Warnings:                 AllocationWarnings(base.DuringPreset, base.CustomEquityDuring, goalAge-gc.profile.Age),
	}
	if out.WithdrawalSchedule == nil {
		out.WithdrawalSchedule = []domain.Cashflow{}
	}

	switch {
	case remaining.IsZero():
		out.Status = domain.StatusFundedByLumpsum
	case windowMonths == 0:
		out.Status = domain.StatusUnreachable
		out.Approximate = true
		gc.logger.Warnf("goal %s: no accumulation months left, %s remains unfunded", base.ID, remaining.StringFixed(2))
	default:
		res := SolveContribution(ContributionRequest{
			Target:         target,
			MonthlyRate:    r,
			StepUpRate:     gc.profile.StepUp.AnnualRate,
			StartMonth:     startMonth,
			EndMonth:       endMonth,
			InitialBalance: atStart,
		}, gc.opts)
		stop := res.StopMonth
		out.MonthlyContributionYear1 = res.MonthlyContribution
		out.ActualStopMonth = &stop
		out.SolverIterations = res.Iterations
		out.Approximate = res.Approximate
		out.ContributionSchedule = SteppedSchedule(res.MonthlyContribution, gc.profile.StepUp.AnnualRate, startMonth, stop)
		out.TotalContribution = TotalContribution(out.ContributionSchedule)
		if res.Reached {
			out.Status = domain.StatusContributionRequired
		} else {
			out.Status = domain.StatusUnreachable
			gc.logger.Warnf("goal %s: target %s unreachable within window, best contribution %s",
				base.ID, target.StringFixed(2), res.MonthlyContribution.StringFixed(2))
		}
		gc.logger.Debugf("goal %s: contribution %s stops at month %d after %d iterations",
			base.ID, res.MonthlyContribution.StringFixed(2), stop, res.Iterations)
	}

	gc.result = out
	return nil
}
