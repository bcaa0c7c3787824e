package breakeven

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/rgehrsitz/capplan/internal/inr"
)

// OptimizeMultiDimensional solves every target against the same budget and
// compares the outcomes. Targets that cannot apply to the plan are skipped.
func (s *Solver) OptimizeMultiDimensional(ctx context.Context, basePlan *domain.Plan, constraints Constraints) (*MultiDimensionalResult, error) {
	if err := constraints.Validate(); err != nil {
		return nil, err
	}

	targets := []OptimizationTarget{OptimizeStepUp}
	if _, err := retirementGoal(basePlan, constraints.GoalID); err == nil {
		targets = append([]OptimizationTarget{OptimizeRetireAge}, targets...)
	}

	var results []OptimizationResult
	for _, target := range targets {
		result, err := s.Optimize(ctx, OptimizationRequest{
			BasePlan:      basePlan,
			Target:        target,
			Constraints:   constraints,
			MaxIterations: s.Options.MaxIterations,
			Tolerance:     s.Options.Tolerance,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		results = append(results, *result)
	}

	if len(results) == 0 {
		return nil, &BreakEvenError{
			Operation: "optimize_multi_dimensional",
			Message:   "no optimizations could run",
		}
	}

	mdResult := &MultiDimensionalResult{Results: results}
	mdResult.Recommendations = s.generateMultiDimensionalRecommendations(mdResult)
	return mdResult, nil
}

func (s *Solver) generateMultiDimensionalRecommendations(result *MultiDimensionalResult) []string {
	var recommendations []string

	for _, r := range result.Results {
		if !r.Success {
			recommendations = append(recommendations,
				fmt.Sprintf("Changing %s alone cannot bring contributions within %s per month", r.Target, inr.Format(r.Budget)))
			continue
		}
		switch {
		case r.OptimalRetireAge != nil:
			recommendations = append(recommendations,
				fmt.Sprintf("Retire at %d to contribute %s per month", *r.OptimalRetireAge, inr.Format(r.MonthlyContribution)))
		case r.OptimalStepUp != nil:
			recommendations = append(recommendations,
				fmt.Sprintf("Step up contributions by %s a year to start at %s per month",
					inr.Percent(*r.OptimalStepUp, 1), inr.Format(r.MonthlyContribution)))
		}
		if r.Exhausted && r.DepletionAge != nil {
			recommendations = append(recommendations,
				fmt.Sprintf("Warning: the %s plan runs out of money at age %d", r.Target, *r.DepletionAge))
		}
	}

	return recommendations
}
