package calculation

import (
	"fmt"

	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/shopspring/decimal"
)

// Engine computes a plan. It holds configuration only; every call to
// Compute starts from the plan it is given and keeps nothing between calls.
type Engine struct {
	Options SolverOptions
	Logger  Logger
}

// NewEngine creates an engine with default solver options
func NewEngine() *Engine {
	return &Engine{
		Options: DefaultSolverOptions(),
		Logger:  NopLogger{},
	}
}

// NewEngineWithOptions creates an engine with custom solver options
func NewEngineWithOptions(opts SolverOptions) *Engine {
	e := NewEngine()
	e.Options = opts.withDefaults()
	return e
}

// SetLogger sets the engine's logger; nil restores the no-op logger
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// Compute runs every goal through the compiler and then simulates the
// combined portfolio. The plan is not modified.
func (e *Engine) Compute(plan *domain.Plan) (*domain.ComputedOutput, error) {
	if plan == nil {
		return nil, fmt.Errorf("plan cannot be nil")
	}
	if e.Logger == nil {
		e.Logger = NopLogger{}
	}

	out := &domain.ComputedOutput{
		PerGoal:                  make([]domain.GoalComputation, 0, len(plan.Goals)),
		TotalMonthlyContribution: decimal.Zero,
		StepUpPercent:            plan.Profile.StepUp.AnnualRate.Mul(hundred),
		TotalAllocated:           plan.TotalAllocated(),
	}
	out.UnallocatedSavings = plan.Profile.Savings.Sub(out.TotalAllocated)

	for _, goal := range plan.Goals {
		gc, err := e.CompileGoal(plan.Profile, goal, plan.LumpsumFor(goal.Common().ID))
		if err != nil {
			return nil, err
		}
		out.PerGoal = append(out.PerGoal, *gc)
		out.TotalMonthlyContribution = out.TotalMonthlyContribution.Add(gc.MonthlyContributionYear1)
	}

	portfolio, err := SimulatePortfolio(plan, out.PerGoal)
	if err != nil {
		return nil, fmt.Errorf("portfolio simulation failed: %w", err)
	}
	out.Chart = portfolio.Points
	out.Exhausted = portfolio.Exhausted
	out.DepletionAge = portfolio.DepletionAge
	if portfolio.Exhausted {
		e.Logger.Warnf("portfolio exhausted at age %d", *portfolio.DepletionAge)
	}

	e.Logger.Infof("computed %d goals, total monthly contribution %s", len(out.PerGoal), out.TotalMonthlyContribution.StringFixed(2))
	return out, nil
}
