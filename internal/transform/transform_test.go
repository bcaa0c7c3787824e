package transform

import (
	"errors"
	"testing"

	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestPlan() *domain.Plan {
	safe := domain.PresetSafe
	return &domain.Plan{
		Profile: domain.Profile{
			Name:    "Priya",
			Age:     35,
			Savings: decimal.NewFromInt(2500000),
			StepUp:  domain.StepUp{AnnualRate: decimal.RequireFromString("0.05")},
			Assumptions: domain.Assumptions{
				EquityAnnual: decimal.RequireFromString("0.12"),
				DebtAnnual:   decimal.RequireFromString("0.06"),
			},
		},
		Goals: domain.Goals{
			&domain.RetirementGoal{
				GoalBase: domain.GoalBase{
					Type: domain.GoalRetirement, ID: "ret", Title: "Retirement",
					Inflation:            decimal.RequireFromString("0.05"),
					AccumulationStartAge: 35, AccumulationStopAge: 60,
					DuringPreset: domain.PresetRegular, PostPreset: &safe,
				},
				MonthlySpendToday: decimal.NewFromInt(80000),
				RetireAge:         60,
				PlanTillAge:       85,
			},
			&domain.PurchaseGoal{
				GoalBase: domain.GoalBase{
					Type: domain.GoalPurchase, ID: "home", Title: "Home",
					Inflation:            decimal.RequireFromString("0.07"),
					AccumulationStartAge: 35, AccumulationStopAge: 42,
					DuringPreset: domain.PresetGrow,
				},
				PurchaseAge:   42,
				ItemCostToday: decimal.NewFromInt(8000000),
			},
		},
		Allocations: []domain.Allocation{
			{GoalID: "ret", Lumpsum: decimal.NewFromInt(1500000)},
			{GoalID: "home", Lumpsum: decimal.NewFromInt(500000)},
		},
	}
}

func TestApplyTransforms_NilPlan(t *testing.T) {
	_, err := ApplyTransforms(nil, []PlanTransform{&SetStepUp{Rate: decimal.Zero}})
	assert.Error(t, err)
}

func TestApplyTransforms_EmptyReturnsCopy(t *testing.T) {
	base := createTestPlan()
	result, err := ApplyTransforms(base, nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotSame(t, base, result)

	result.Goals[0].Common().Title = "changed"
	assert.Equal(t, "Retirement", base.Goals[0].Common().Title)
}

func TestApplyTransforms_NilTransform(t *testing.T) {
	_, err := ApplyTransforms(createTestPlan(), []PlanTransform{nil})
	assert.ErrorContains(t, err, "index 0 is nil")
}

func TestApplyTransforms_Chains(t *testing.T) {
	base := createTestPlan()
	result, err := ApplyTransforms(base, []PlanTransform{
		&ShiftRetirement{GoalID: "ret", Years: 2},
		&SetAllocation{GoalID: "home", Lumpsum: decimal.Zero},
		&SetStepUp{Rate: decimal.RequireFromString("0.08")},
	})
	require.NoError(t, err)

	ret := result.Goals[0].(*domain.RetirementGoal)
	assert.Equal(t, 62, ret.RetireAge)
	assert.Equal(t, 62, ret.AccumulationStopAge)
	require.Len(t, result.Allocations, 1)
	assert.Equal(t, "0.08", result.Profile.StepUp.AnnualRate.String())

	// the base is untouched
	assert.Equal(t, 60, base.Goals[0].(*domain.RetirementGoal).RetireAge)
	assert.Len(t, base.Allocations, 2)
}

func TestApplyTransforms_StopsOnValidationError(t *testing.T) {
	_, err := ApplyTransforms(createTestPlan(), []PlanTransform{
		&SetStepUp{Rate: decimal.RequireFromString("0.05")},
		&RemoveGoal{GoalID: "missing"},
	})
	require.Error(t, err)
	var te *TransformError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "remove_goal", te.TransformName)
	assert.Equal(t, "validate", te.Operation)
}

func TestSetProfile_RederivesStepUp(t *testing.T) {
	age := 28
	result, err := ApplyTransforms(createTestPlan(), []PlanTransform{&SetProfile{Age: &age}})
	require.NoError(t, err)
	assert.Equal(t, 28, result.Profile.Age)
	// 28 years old with ₹25L
	assert.Equal(t, "0.07", result.Profile.StepUp.AnnualRate.String())

	name := "Asha"
	result, err = ApplyTransforms(createTestPlan(), []PlanTransform{&SetProfile{SaverName: &name}})
	require.NoError(t, err)
	assert.Equal(t, "Asha", result.Profile.Name)
	assert.Equal(t, "0.05", result.Profile.StepUp.AnnualRate.String(), "renaming keeps the step-up")

	savings := decimal.NewFromInt(100000)
	result, err = ApplyTransforms(createTestPlan(), []PlanTransform{&SetProfile{Savings: &savings, KeepStepUp: true}})
	require.NoError(t, err)
	assert.Equal(t, "0.05", result.Profile.StepUp.AnnualRate.String())
}

func TestSetProfile_Validate(t *testing.T) {
	young := 12
	empty := " "
	neg := decimal.NewFromInt(-1)
	plan := createTestPlan()
	assert.Error(t, (&SetProfile{Age: &young}).Validate(plan))
	assert.Error(t, (&SetProfile{SaverName: &empty}).Validate(plan))
	assert.Error(t, (&SetProfile{Savings: &neg}).Validate(plan))
	assert.NoError(t, (&SetProfile{}).Validate(plan))
	assert.Equal(t, "Leave profile unchanged", (&SetProfile{}).Description())
}

func TestSetAssumptions(t *testing.T) {
	equity := decimal.RequireFromString("0.10")
	result, err := ApplyTransforms(createTestPlan(), []PlanTransform{&SetAssumptions{EquityAnnual: &equity}})
	require.NoError(t, err)
	assert.True(t, result.Profile.Assumptions.EquityAnnual.Equal(equity))
	assert.True(t, result.Profile.Assumptions.DebtAnnual.Equal(decimal.RequireFromString("0.06")))

	bad := decimal.NewFromInt(2)
	assert.Error(t, (&SetAssumptions{DebtAnnual: &bad}).Validate(createTestPlan()))
}

func TestAddGoal(t *testing.T) {
	goal := &domain.VacationGoal{
		GoalBase: domain.GoalBase{
			Title: "Trips", AccumulationStartAge: 35, AccumulationStopAge: 40, DuringPreset: domain.PresetGrow,
		},
		FirstHolidayAge: 40, LastHolidayAge: 45,
		SpendPerYearToday: decimal.NewFromInt(200000),
	}
	add := &AddGoal{Goal: goal}
	result, err := ApplyTransforms(createTestPlan(), []PlanTransform{add})
	require.NoError(t, err)
	require.Len(t, result.Goals, 3)
	added := result.Goals[2]
	assert.NotEmpty(t, added.Common().ID)
	assert.Equal(t, domain.GoalVacation, added.Common().Type)
	assert.Empty(t, goal.ID, "the caller's goal is cloned, not adopted")

	dup := &AddGoal{Goal: &domain.CustomGoal{GoalBase: domain.GoalBase{ID: "ret"}}}
	assert.Error(t, dup.Validate(createTestPlan()))
	assert.Error(t, (&AddGoal{}).Validate(createTestPlan()))
}

func TestUpdateGoal_MergesFields(t *testing.T) {
	update := &UpdateGoal{GoalID: "ret", Patch: NewGoalPatch(map[string]string{
		"monthly_spend_today": "95000",
		"post_preset":         "Regular",
		"title":               "Retire well",
	})}
	assert.Equal(t, "Update goal ret (monthly_spend_today, post_preset, title)", update.Description())

	base := createTestPlan()
	result, err := ApplyTransforms(base, []PlanTransform{update})
	require.NoError(t, err)

	ret := result.Goals[0].(*domain.RetirementGoal)
	assert.True(t, ret.MonthlySpendToday.Equal(decimal.NewFromInt(95000)))
	assert.Equal(t, domain.PresetRegular, *ret.PostPreset)
	assert.Equal(t, "Retire well", ret.Title)
	assert.Equal(t, 60, ret.RetireAge, "untouched fields survive")

	assert.Equal(t, domain.PresetSafe, *base.Goals[0].Common().PostPreset)
}

func TestUpdateGoal_Validate(t *testing.T) {
	plan := createTestPlan()
	assert.Error(t, (&UpdateGoal{GoalID: "ret", Patch: NewGoalPatch(map[string]string{"type": "custom"})}).Validate(plan))
	assert.Error(t, (&UpdateGoal{GoalID: "ret", Patch: NewGoalPatch(map[string]string{"id": "x"})}).Validate(plan))
	assert.Error(t, (&UpdateGoal{GoalID: "ret"}).Validate(plan))
	assert.Error(t, (&UpdateGoal{GoalID: "nope", Patch: NewGoalPatch(map[string]string{"title": "x"})}).Validate(plan))

	_, err := (&UpdateGoal{GoalID: "ret", Patch: NewGoalPatch(map[string]string{"retire_age": "soon"})}).Apply(plan)
	assert.Error(t, err)
}

func TestRemoveGoal_DropsAllocations(t *testing.T) {
	result, err := ApplyTransforms(createTestPlan(), []PlanTransform{&RemoveGoal{GoalID: "home"}})
	require.NoError(t, err)
	require.Len(t, result.Goals, 1)
	require.Len(t, result.Allocations, 1)
	assert.Equal(t, "ret", result.Allocations[0].GoalID)
}

func TestSetRetireAge_Validate(t *testing.T) {
	plan := createTestPlan()
	assert.Error(t, (&SetRetireAge{GoalID: "ret", Age: 30}).Validate(plan), "before current age")
	assert.Error(t, (&SetRetireAge{GoalID: "ret", Age: 85}).Validate(plan), "at plan till age")
	assert.Error(t, (&SetRetireAge{GoalID: "home", Age: 50}).Validate(plan), "not a retirement goal")
	assert.NoError(t, (&SetRetireAge{GoalID: "ret", Age: 55}).Validate(plan))

	assert.Error(t, (&ShiftRetirement{GoalID: "ret", Years: 30}).Validate(plan))
	assert.Equal(t, "Retire 3 years earlier", (&ShiftRetirement{Years: -3}).Description())
}

func TestSetPreset(t *testing.T) {
	// every goal
	result, err := ApplyTransforms(createTestPlan(), []PlanTransform{&SetPreset{Phase: PhaseDuring, Preset: domain.PresetAllIn}})
	require.NoError(t, err)
	for _, g := range result.Goals {
		assert.Equal(t, domain.PresetAllIn, g.Common().DuringPreset)
	}

	// one goal, post phase, custom
	equity := decimal.NewFromInt(30)
	result, err = ApplyTransforms(createTestPlan(), []PlanTransform{&SetPreset{GoalID: "home", Phase: PhasePost, Preset: domain.PresetCustom, CustomEquity: &equity}})
	require.NoError(t, err)
	home := result.Goals[1].Common()
	require.NotNil(t, home.PostPreset)
	assert.Equal(t, domain.PresetCustom, *home.PostPreset)
	assert.True(t, home.CustomEquityPost.Equal(equity))
	assert.Equal(t, domain.PresetSafe, *result.Goals[0].Common().PostPreset)

	plan := createTestPlan()
	err = (&SetPreset{Phase: PhaseDuring, Preset: "Yolo"}).Validate(plan)
	assert.True(t, errors.Is(err, domain.ErrInvalidPreset))
	assert.Error(t, (&SetPreset{Phase: "later", Preset: domain.PresetSafe}).Validate(plan))
}

func TestSetAllocation(t *testing.T) {
	tests := []struct {
		name    string
		goal    string
		lumpsum int64
		want    []domain.Allocation
	}{
		{"replace", "home", 700000, []domain.Allocation{
			{GoalID: "ret", Lumpsum: decimal.NewFromInt(1500000)},
			{GoalID: "home", Lumpsum: decimal.NewFromInt(700000)},
		}},
		{"remove with zero", "ret", 0, []domain.Allocation{
			{GoalID: "home", Lumpsum: decimal.NewFromInt(500000)},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ApplyTransforms(createTestPlan(), []PlanTransform{&SetAllocation{GoalID: tt.goal, Lumpsum: decimal.NewFromInt(tt.lumpsum)}})
			require.NoError(t, err)
			require.Len(t, result.Allocations, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].GoalID, result.Allocations[i].GoalID)
				assert.True(t, tt.want[i].Lumpsum.Equal(result.Allocations[i].Lumpsum))
			}
		})
	}

	plan := createTestPlan()
	plan.Allocations = nil
	result, err := (&SetAllocation{GoalID: "home", Lumpsum: decimal.NewFromInt(10)}).Apply(plan)
	require.NoError(t, err)
	assert.Len(t, result.Allocations, 1)

	assert.Error(t, (&SetAllocation{GoalID: "home", Lumpsum: decimal.NewFromInt(-1)}).Validate(plan))
}

func TestTransformError(t *testing.T) {
	cause := errors.New("boom")
	err := NewTransformError("set_preset", "apply", "bad mix", cause)
	assert.Equal(t, "transform set_preset (apply): bad mix: boom", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "transform x (validate): y", NewTransformError("x", "validate", "y", nil).Error())
}
