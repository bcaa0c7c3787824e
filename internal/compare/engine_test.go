package compare

import (
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rgehrsitz/capplan/internal/calculation"
	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/rgehrsitz/capplan/internal/transform"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlan() *domain.Plan {
	post := domain.PresetCustom
	zero := decimal.Zero
	return &domain.Plan{
		Profile: domain.Profile{
			Name:    "Saver",
			Age:     31,
			Savings: decimal.NewFromInt(1000000),
			StepUp:  domain.StepUp{AnnualRate: decimal.RequireFromString("0.05")},
			Assumptions: domain.Assumptions{
				EquityAnnual: decimal.RequireFromString("0.12"),
				DebtAnnual:   decimal.RequireFromString("0.07"),
			},
		},
		Goals: domain.Goals{
			&domain.RetirementGoal{
				GoalBase: domain.GoalBase{
					Type: domain.GoalRetirement, ID: "retirement", Title: "Retirement",
					Inflation:            decimal.RequireFromString("0.05"),
					AccumulationStartAge: 31, AccumulationStopAge: 60,
					DuringPreset: domain.PresetRegular, PostPreset: &post, CustomEquityPost: &zero,
				},
				MonthlySpendToday: decimal.NewFromInt(100000),
				RetireAge:         60,
				PlanTillAge:       85,
			},
		},
	}
}

func TestCompare_Templates(t *testing.T) {
	ce := NewCompareEngine(calculation.NewEngine())
	compSet, err := ce.Compare(context.Background(), testPlan(), CompareOptions{
		BaseScenarioName: "mine",
		Templates:        []string{"retire_later_2yr", "retire_earlier_2yr", "no_step_up"},
		ConfigPath:       "plan.yaml",
	})
	require.NoError(t, err)

	assert.Equal(t, "mine", compSet.BaseScenarioName)
	assert.Equal(t, "plan.yaml", compSet.ConfigPath)
	require.NotNil(t, compSet.BaseResult)
	assert.Equal(t, 60, compSet.BaseResult.RetireAge)
	assert.Equal(t, "5.0%", compSet.BaseResult.StepUp)
	require.Len(t, compSet.AlternativeResults, 3)

	later := compSet.AlternativeResults[0]
	assert.Equal(t, "mine_retire_later_2yr", later.ScenarioName)
	assert.Equal(t, "Retire 2 years later", later.Description)
	assert.Equal(t, 62, later.RetireAge)
	assert.True(t, later.ContributionDiffFromBase.IsNegative(), "more years and fewer retirement months cost less per month")
	assert.True(t, later.ContributionPctFromBase.IsNegative())

	earlier := compSet.AlternativeResults[1]
	assert.True(t, earlier.ContributionDiffFromBase.IsPositive())

	flat := compSet.AlternativeResults[2]
	assert.Equal(t, "0.0%", flat.StepUp)
	assert.True(t, flat.MonthlyContribution.GreaterThan(compSet.BaseResult.MonthlyContribution),
		"without step-up the first-year contribution must be higher")

	require.NotEmpty(t, compSet.Recommendations)
	assert.Contains(t, compSet.Recommendations[0], "Lowest Contribution: mine_retire_later_2yr")
}

func TestCompare_AdHocTransforms(t *testing.T) {
	ce := NewCompareEngine(calculation.NewEngine())
	compSet, err := ce.Compare(context.Background(), testPlan(), CompareOptions{
		Transforms: []transform.PlanTransform{
			&transform.SetStepUp{Rate: decimal.RequireFromString("0.10")},
			&transform.SetAllocation{GoalID: "retirement", Lumpsum: decimal.NewFromInt(1000000)},
		},
	})
	require.NoError(t, err)
	require.Len(t, compSet.AlternativeResults, 1)

	alt := compSet.AlternativeResults[0]
	assert.Equal(t, "base_custom", alt.ScenarioName)
	assert.Equal(t, "Set contribution step-up to 10.0%; Allocate 1000000 to goal retirement", alt.Description)
	assert.True(t, alt.MonthlyContribution.LessThan(compSet.BaseResult.MonthlyContribution))
}

func TestCompare_Errors(t *testing.T) {
	ce := NewCompareEngine(calculation.NewEngine())
	ctx := context.Background()

	_, err := ce.Compare(ctx, nil, CompareOptions{})
	assert.Error(t, err)

	_, err = ce.Compare(ctx, testPlan(), CompareOptions{Templates: []string{"moonshot"}})
	assert.ErrorContains(t, err, "template moonshot not found")

	// 20 years earlier is before the saver's current age
	_, err = ce.Compare(ctx, testPlan(), CompareOptions{Transforms: []transform.PlanTransform{
		&transform.ShiftRetirement{GoalID: "retirement", Years: -40},
	}})
	assert.ErrorContains(t, err, "failed to apply transforms")
}

func TestComparePlans_HonoursContext(t *testing.T) {
	ce := NewCompareEngine(calculation.NewEngine())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ce.ComparePlans(ctx, NamedPlan{Name: "a", Plan: testPlan()}, []NamedPlan{{Name: "b", Plan: testPlan()}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComparePlans_IdenticalPlansHaveZeroDeltas(t *testing.T) {
	ce := NewCompareEngine(calculation.NewEngine())
	compSet, err := ce.ComparePlans(context.Background(),
		NamedPlan{Name: "a", Plan: testPlan()},
		[]NamedPlan{{Name: "b", Plan: testPlan()}})
	require.NoError(t, err)

	alt := compSet.AlternativeResults[0]
	assert.True(t, alt.ContributionDiffFromBase.IsZero())
	assert.True(t, alt.LifetimeDiffFromBase.IsZero())
	assert.True(t, alt.FinalValueDiffFromBase.IsZero())
	assert.Empty(t, compSet.Recommendations)
}

func sampleSet() *ComparisonSet {
	depleted := 70
	return &ComparisonSet{
		BaseScenarioName: "base",
		ConfigPath:       "plan.yaml",
		BaseResult: &ComparisonResult{
			ScenarioName:         "base",
			MonthlyContribution:  decimal.NewFromInt(25000),
			LifetimeContribution: decimal.NewFromInt(19000000),
			PeakValue:            decimal.NewFromInt(105000000),
			FinalValue:           decimal.NewFromInt(5000),
			StepUp:               "5.0%",
		},
		AlternativeResults: []ComparisonResult{
			{
				ScenarioName:             "base_retire_later_2yr",
				Description:              "Retire 2 years later",
				MonthlyContribution:      decimal.NewFromInt(20000),
				LifetimeContribution:     decimal.NewFromInt(17000000),
				PeakValue:                decimal.NewFromInt(100000000),
				FinalValue:               decimal.NewFromInt(3000),
				ContributionDiffFromBase: decimal.NewFromInt(-5000),
				ContributionPctFromBase:  decimal.NewFromInt(-20),
				LifetimeDiffFromBase:     decimal.NewFromInt(-2000000),
			},
			{
				ScenarioName:        "base_low_returns",
				MonthlyContribution: decimal.NewFromInt(10000),
				Exhausted:           true,
				DepletionAge:        &depleted,
			},
		},
	}
}

func TestGenerateRecommendations(t *testing.T) {
	recs := GenerateRecommendations(sampleSet())
	require.Len(t, recs, 3)
	assert.Equal(t, "Lowest Contribution: base_retire_later_2yr needs ₹5,000 less per month than the base plan", recs[0])
	assert.Equal(t, "Least Paid In: base_retire_later_2yr saves ₹20.0L in lifetime contributions", recs[1])
	assert.Equal(t, "Warning: base_low_returns runs out of money at age 70", recs[2])

	assert.Empty(t, GenerateRecommendations(&ComparisonSet{BaseResult: sampleSet().BaseResult}))
}

func TestTableFormatter_Format(t *testing.T) {
	out := (&TableFormatter{}).Format(sampleSet())
	for _, want := range []string{
		"CAPITAL PLAN COMPARISON",
		"Base Plan: base",
		"Configuration: plan.yaml",
		"base (base)",
		"₹10.5Cr",
		"depleted",
		"Monthly Contribution: -₹5,000 (-20.0%)",
		"Lifetime Paid In:     -₹20.0L",
		"Runs out of money at age 70",
	} {
		assert.True(t, strings.Contains(out, want), "table should contain %q\n%s", want, out)
	}
}

func TestTableFormatter_FormatCompact(t *testing.T) {
	set := sampleSet()
	set.Recommendations = GenerateRecommendations(set)
	out := (&TableFormatter{}).FormatCompact(set)
	assert.Equal(t, "Base: base | base_retire_later_2yr: -₹5,000/mo | base_low_returns: =", out)
}

func TestCSVFormatter_Format(t *testing.T) {
	out, err := (&CSVFormatter{}).Format(sampleSet())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Scenario,Type,Monthly Contribution"))
	assert.Equal(t, "base,base,25000.00,19000000.00,105000000.00,5000.00,,0,0.00,0.00,0.00,0.00", lines[1])
	assert.Contains(t, lines[3], ",70,")
}

func TestJSONFormatter_Format(t *testing.T) {
	pretty, err := (&JSONFormatter{Pretty: true}).Format(sampleSet())
	require.NoError(t, err)
	assert.Contains(t, pretty, "\n  \"base_scenario_name\": \"base\"")

	compact, err := (&JSONFormatter{}).Format(sampleSet())
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(compact), &decoded))
	alts := decoded["alternative_results"].([]any)
	assert.Len(t, alts, 2)
	assert.NotContains(t, compact, "Output")
	assert.Equal(t, "plan.yaml", decoded["config_path"])

	base := decoded["base_result"].(map[string]any)
	assert.Equal(t, "25000", base["monthly_contribution"])
	assert.Equal(t, "5.0%", base["step_up"])

	later := alts[0].(map[string]any)
	assert.Equal(t, "-5000", later["contribution_diff_from_base"])
	assert.NotContains(t, later, "depletion_age")
	low := alts[1].(map[string]any)
	assert.Equal(t, true, low["exhausted"])
	assert.InDelta(t, 70, low["depletion_age"], 0)
}
