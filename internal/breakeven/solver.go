package breakeven

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/capplan/internal/calculation"
	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/rgehrsitz/capplan/internal/transform"
	"github.com/shopspring/decimal"
)

// Solver finds the plan parameters that fit a monthly budget
type Solver struct {
	CalcEngine *calculation.Engine
	Options    SolverOptions
}

// NewSolver creates a new break-even solver
func NewSolver(calcEngine *calculation.Engine, options SolverOptions) *Solver {
	return &Solver{
		CalcEngine: calcEngine,
		Options:    options,
	}
}

// NewDefaultSolver creates a solver with default options
func NewDefaultSolver(calcEngine *calculation.Engine) *Solver {
	return NewSolver(calcEngine, DefaultSolverOptions())
}

// Optimize performs optimization based on the request
func (s *Solver) Optimize(ctx context.Context, req OptimizationRequest) (*OptimizationResult, error) {
	if req.BasePlan == nil {
		return nil, &BreakEvenError{Operation: "optimize", Message: "base plan cannot be nil"}
	}
	if err := req.Constraints.Validate(); err != nil {
		return nil, err
	}

	if req.MaxIterations == 0 {
		req.MaxIterations = s.Options.MaxIterations
	}
	if req.Tolerance.IsZero() {
		req.Tolerance = s.Options.Tolerance
	}

	switch req.Target {
	case OptimizeRetireAge:
		return s.optimizeRetireAge(ctx, req)
	case OptimizeStepUp:
		return s.optimizeStepUp(ctx, req)
	default:
		return nil, &BreakEvenError{
			Operation: "optimize",
			Message:   fmt.Sprintf("unsupported optimization target: %s", req.Target),
		}
	}
}

// optimizeRetireAge scans retirement ages upward and stops at the first one
// whose first-year contribution fits the budget
func (s *Solver) optimizeRetireAge(ctx context.Context, req OptimizationRequest) (*OptimizationResult, error) {
	goal, err := retirementGoal(req.BasePlan, req.Constraints.GoalID)
	if err != nil {
		return nil, err
	}

	minAge := max(req.BasePlan.Profile.Age+1, goal.AccumulationStartAge+1)
	maxAge := goal.PlanTillAge - 1
	if req.Constraints.MinRetireAge != nil {
		minAge = max(minAge, *req.Constraints.MinRetireAge)
	}
	if req.Constraints.MaxRetireAge != nil {
		maxAge = min(maxAge, *req.Constraints.MaxRetireAge)
	}
	if minAge > maxAge {
		return nil, &BreakEvenError{
			Operation: "optimize_retire_age",
			Message:   fmt.Sprintf("no retirement ages between %d and %d", minAge, maxAge),
		}
	}

	base, err := s.compute(req.BasePlan)
	if err != nil {
		return nil, &BreakEvenError{Operation: "optimize_retire_age", Message: "failed to compute base plan", Cause: err}
	}

	var last *OptimizationResult
	iterations := 0
	for age := minAge; age <= maxAge; age++ {
		iterations++

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		plan, err := transform.ApplyTransforms(req.BasePlan, []transform.PlanTransform{
			&transform.SetRetireAge{GoalID: goal.ID, Age: age},
		})
		if err != nil {
			return nil, &BreakEvenError{
				Operation: "optimize_retire_age",
				Message:   "failed to apply retire age transform",
				Cause:     err,
			}
		}
		out, err := s.compute(plan)
		if err != nil {
			return nil, &BreakEvenError{
				Operation: "optimize_retire_age",
				Message:   fmt.Sprintf("failed to compute plan retiring at %d", age),
				Cause:     err,
			}
		}

		candidate := age
		last = s.evaluateResult(req, base, plan, out, iterations)
		last.OptimalRetireAge = &candidate
		if fits(out, req.Constraints.Budget) {
			last.Success = true
			last.ConvergenceInfo = fmt.Sprintf("Evaluated %d retirement ages", iterations)
			return last, nil
		}
	}

	last.ConvergenceInfo = fmt.Sprintf("No retirement age up to %d fits the budget", maxAge)
	return last, nil
}

// optimizeStepUp bisects the step-up rate for the smallest one whose
// first-year contribution fits the budget. A higher step-up always lowers
// the first-year contribution.
func (s *Solver) optimizeStepUp(ctx context.Context, req OptimizationRequest) (*OptimizationResult, error) {
	lo := decimal.Zero
	hi := s.Options.MaxStepUp
	if !hi.IsPositive() {
		hi = DefaultSolverOptions().MaxStepUp
	}
	if req.Constraints.MinStepUp != nil {
		lo = *req.Constraints.MinStepUp
	}
	if req.Constraints.MaxStepUp != nil {
		hi = *req.Constraints.MaxStepUp
	}

	base, err := s.compute(req.BasePlan)
	if err != nil {
		return nil, &BreakEvenError{Operation: "optimize_step_up", Message: "failed to compute base plan", Cause: err}
	}

	iterations := 0
	try := func(rate decimal.Decimal) (*OptimizationResult, bool, error) {
		iterations++
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		default:
		}

		plan, err := transform.ApplyTransforms(req.BasePlan, []transform.PlanTransform{&transform.SetStepUp{Rate: rate}})
		if err != nil {
			return nil, false, &BreakEvenError{
				Operation: "optimize_step_up",
				Message:   "failed to apply step-up transform",
				Cause:     err,
			}
		}
		out, err := s.compute(plan)
		if err != nil {
			return nil, false, &BreakEvenError{
				Operation: "optimize_step_up",
				Message:   fmt.Sprintf("failed to compute plan with step-up %s", rate),
				Cause:     err,
			}
		}
		result := s.evaluateResult(req, base, plan, out, iterations)
		r := rate
		result.OptimalStepUp = &r
		return result, fits(out, req.Constraints.Budget), nil
	}

	best, ok, err := try(hi)
	if err != nil {
		return nil, err
	}
	if !ok {
		best.ConvergenceInfo = fmt.Sprintf("Budget not met even at %s%% step-up", hi.Mul(decimal.NewFromInt(100)).StringFixed(1))
		return best, nil
	}

	low, ok, err := try(lo)
	if err != nil {
		return nil, err
	}
	if ok {
		low.Success = true
		low.ConvergenceInfo = "Lowest step-up already fits the budget"
		return low, nil
	}

	for iterations < req.MaxIterations && hi.Sub(lo).GreaterThan(req.Tolerance) {
		mid := lo.Add(hi).Div(decimal.NewFromInt(2)).Round(6)
		result, ok, err := try(mid)
		if err != nil {
			return nil, err
		}
		if ok {
			hi, best = mid, result
		} else {
			lo = mid
		}
	}

	best.Success = true
	best.Iterations = iterations
	if hi.Sub(lo).GreaterThan(req.Tolerance) {
		best.ConvergenceInfo = fmt.Sprintf("Max iterations (%d) reached", req.MaxIterations)
	} else {
		best.ConvergenceInfo = "Binary search converged"
	}
	return best, nil
}

func (s *Solver) compute(plan *domain.Plan) (*domain.ComputedOutput, error) {
	if s.CalcEngine == nil {
		s.CalcEngine = calculation.NewEngine()
	}
	return s.CalcEngine.Compute(plan)
}

// evaluateResult creates an optimization result from a computed plan
func (s *Solver) evaluateResult(req OptimizationRequest, base *domain.ComputedOutput, plan *domain.Plan, out *domain.ComputedOutput, iterations int) *OptimizationResult {
	return &OptimizationResult{
		Target:                   req.Target,
		Budget:                   req.Constraints.Budget,
		Iterations:               iterations,
		MonthlyContribution:      out.TotalMonthlyContribution,
		LifetimeContribution:     lifetimeContribution(out),
		FinalValue:               out.FinalValue(),
		Exhausted:                out.Exhausted,
		DepletionAge:             out.DepletionAge,
		BaseMonthlyContribution:  base.TotalMonthlyContribution,
		ContributionDiffFromBase: out.TotalMonthlyContribution.Sub(base.TotalMonthlyContribution),
		Plan:                     plan,
		Output:                   out,
	}
}

func fits(out *domain.ComputedOutput, budget decimal.Decimal) bool {
	return out.TotalMonthlyContribution.LessThanOrEqual(budget)
}

func lifetimeContribution(out *domain.ComputedOutput) decimal.Decimal {
	total := decimal.Zero
	for _, gc := range out.PerGoal {
		total = total.Add(gc.TotalContribution)
	}
	return total
}

func retirementGoal(plan *domain.Plan, id string) (*domain.RetirementGoal, error) {
	if id == "" {
		if r, ok := plan.RetirementGoal(); ok {
			return r, nil
		}
		return nil, &BreakEvenError{Operation: "optimize_retire_age", Message: "plan has no retirement goal"}
	}
	g, ok := plan.FindGoal(id)
	if !ok {
		return nil, &BreakEvenError{Operation: "optimize_retire_age", Message: fmt.Sprintf("goal %s not found", id)}
	}
	r, ok := g.(*domain.RetirementGoal)
	if !ok {
		return nil, &BreakEvenError{Operation: "optimize_retire_age", Message: fmt.Sprintf("goal %s is not a retirement goal", id)}
	}
	return r, nil
}
