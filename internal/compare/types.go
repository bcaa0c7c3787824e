package compare

import (
	"fmt"

	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/rgehrsitz/capplan/internal/inr"
	"github.com/shopspring/decimal"
)

// ComparisonResult represents a single plan variant with calculated metrics
type ComparisonResult struct {
	ScenarioName string                 `json:"scenario_name"`
	Description  string                 `json:"description"`
	Output       *domain.ComputedOutput `json:"-"`

	// Key Metrics
	MonthlyContribution  decimal.Decimal `json:"monthly_contribution"`
	LifetimeContribution decimal.Decimal `json:"lifetime_contribution"`
	PeakValue            decimal.Decimal `json:"peak_value"`
	FinalValue           decimal.Decimal `json:"final_value"`
	Exhausted            bool            `json:"exhausted"`
	DepletionAge         *int            `json:"depletion_age,omitempty"`
	UnreachableGoals     int             `json:"unreachable_goals"`

	// Comparison to Base
	ContributionDiffFromBase decimal.Decimal `json:"contribution_diff_from_base"`
	ContributionPctFromBase  decimal.Decimal `json:"contribution_pct_from_base"`
	LifetimeDiffFromBase     decimal.Decimal `json:"lifetime_diff_from_base"`
	FinalValueDiffFromBase   decimal.Decimal `json:"final_value_diff_from_base"`

	// Plan specifics for display
	RetireAge int    `json:"retire_age,omitempty"`
	StepUp    string `json:"step_up"`
}

// ComparisonSet represents a collection of plan comparisons
type ComparisonSet struct {
	BaseScenarioName   string             `json:"base_scenario_name"`
	BaseResult         *ComparisonResult  `json:"base_result"`
	AlternativeResults []ComparisonResult `json:"alternative_results"`
	Recommendations    []string           `json:"recommendations"`
	ConfigPath         string             `json:"config_path"`
}

// MetricsCalculator extracts key metrics from computed plans
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics computes the comparison metrics for a computed plan
func (mc *MetricsCalculator) CalculateMetrics(name string, plan *domain.Plan, out *domain.ComputedOutput) ComparisonResult {
	result := ComparisonResult{
		ScenarioName:         name,
		Output:               out,
		MonthlyContribution:  out.TotalMonthlyContribution,
		LifetimeContribution: mc.lifetimeContribution(out),
		PeakValue:            out.PeakValue(),
		FinalValue:           out.FinalValue(),
		Exhausted:            out.Exhausted,
		DepletionAge:         out.DepletionAge,
		StepUp:               out.StepUpPercent.StringFixed(1) + "%",
	}
	for _, gc := range out.PerGoal {
		if gc.Status == domain.StatusUnreachable {
			result.UnreachableGoals++
		}
	}
	if ret, ok := plan.RetirementGoal(); ok {
		result.RetireAge = ret.RetireAge
	}
	return result
}

// CalculateComparison computes deltas between a plan variant and the base
func (mc *MetricsCalculator) CalculateComparison(scenario, base ComparisonResult) ComparisonResult {
	scenario.ContributionDiffFromBase = scenario.MonthlyContribution.Sub(base.MonthlyContribution)
	if !base.MonthlyContribution.IsZero() {
		scenario.ContributionPctFromBase = scenario.ContributionDiffFromBase.
			Div(base.MonthlyContribution).
			Mul(decimal.NewFromInt(100))
	}
	scenario.LifetimeDiffFromBase = scenario.LifetimeContribution.Sub(base.LifetimeContribution)
	scenario.FinalValueDiffFromBase = scenario.FinalValue.Sub(base.FinalValue)
	return scenario
}

// lifetimeContribution sums every scheduled contribution across goals
func (mc *MetricsCalculator) lifetimeContribution(out *domain.ComputedOutput) decimal.Decimal {
	total := decimal.Zero
	for _, gc := range out.PerGoal {
		total = total.Add(gc.TotalContribution)
	}
	return total
}

// GenerateRecommendations creates recommendations based on comparison results
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}

	if len(compSet.AlternativeResults) == 0 || compSet.BaseResult == nil {
		return recommendations
	}
	base := compSet.BaseResult

	// Lowest monthly ask among solvent variants
	cheapest := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if !alt.Exhausted && alt.MonthlyContribution.LessThan(cheapest.MonthlyContribution) {
			cheapest = alt
		}
	}
	if cheapest != base {
		saving := base.MonthlyContribution.Sub(cheapest.MonthlyContribution)
		recommendations = append(recommendations,
			"Lowest Contribution: "+cheapest.ScenarioName+" needs "+inr.Format(saving)+
				" less per month than the base plan")
	}

	// Smallest total paid in
	leanest := base
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if !alt.Exhausted && alt.LifetimeContribution.LessThan(leanest.LifetimeContribution) {
			leanest = alt
		}
	}
	if leanest != base {
		saving := base.LifetimeContribution.Sub(leanest.LifetimeContribution)
		recommendations = append(recommendations,
			"Least Paid In: "+leanest.ScenarioName+" saves "+inr.Compact(saving, false)+
				" in lifetime contributions")
	}

	// Variants that run dry
	for _, alt := range compSet.AlternativeResults {
		if alt.Exhausted && alt.DepletionAge != nil {
			recommendations = append(recommendations,
				fmt.Sprintf("Warning: %s runs out of money at age %d", alt.ScenarioName, *alt.DepletionAge))
		}
	}

	return recommendations
}
