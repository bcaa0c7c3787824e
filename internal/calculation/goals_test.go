package calculation

import (
	"errors"
	"testing"

	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func presetPtr(p domain.Preset) *domain.Preset { return &p }

func testProfile(age int, equity, debt string) domain.Profile {
	return domain.Profile{
		Name:        "Test Saver",
		Age:         age,
		Savings:     dec("1000000"),
		StepUp:      domain.StepUp{AnnualRate: dec("0.05")},
		Assumptions: domain.Assumptions{EquityAnnual: dec(equity), DebtAnnual: dec(debt)},
	}
}

// retireAt60Plan is the accumulate-at-12%/withdraw-at-7% calibration plan
func retireAt60Plan() *domain.Plan {
	return &domain.Plan{
		Profile: testProfile(31, "0.12", "0.07"),
		Goals: domain.Goals{&domain.RetirementGoal{
			GoalBase: domain.GoalBase{
				Type:                 domain.GoalRetirement,
				ID:                   "retirement",
				Title:                "Retirement",
				Inflation:            dec("0.05"),
				AccumulationStartAge: 31,
				AccumulationStopAge:  60,
				DuringPreset:         domain.PresetAllIn,
				PostPreset:           presetPtr(domain.PresetCustom),
				CustomEquityPost:     decPtr("0"),
			},
			MonthlySpendToday: dec("100000"),
			RetireAge:         60,
			PlanTillAge:       85,
		}},
	}
}

// fireAt45Plan is the accumulate-at-9.6%/withdraw-at-7.2% calibration plan
func fireAt45Plan() *domain.Plan {
	return &domain.Plan{
		Profile: testProfile(32, "0.12", "0.06"),
		Goals: domain.Goals{&domain.RetirementGoal{
			GoalBase: domain.GoalBase{
				Type:                 domain.GoalRetirement,
				ID:                   "fire",
				Title:                "Early retirement",
				Inflation:            dec("0.05"),
				AccumulationStartAge: 32,
				AccumulationStopAge:  45,
				DuringPreset:         domain.PresetRegular,
				PostPreset:           presetPtr(domain.PresetCustom),
				CustomEquityPost:     decPtr("20"),
			},
			MonthlySpendToday: dec("100000"),
			RetireAge:         45,
			PlanTillAge:       85,
		}},
	}
}

func carGoal(age int) *domain.PurchaseGoal {
	return &domain.PurchaseGoal{
		GoalBase: domain.GoalBase{
			Type:                 domain.GoalPurchase,
			ID:                   "car",
			Title:                "Car",
			Inflation:            dec("0.06"),
			AccumulationStartAge: age,
			AccumulationStopAge:  age + 5,
			DuringPreset:         domain.PresetRegular,
		},
		PurchaseAge:   age + 5,
		ItemCostToday: dec("1000000"),
	}
}

func TestCompileGoal_RetirementCalibration(t *testing.T) {
	tests := []struct {
		name       string
		plan       *domain.Plan
		corpus     float64
		contribute float64
		stop       int
	}{
		// Contributions are what the stepped solver converges to under monthly
		// compounding with annual step-ups. Published figures for these plans
		// (about 21,732 and 148,885) do not hold under those conventions.
		// TestValidateRetirementPlan_CalibrationCases checks the final balance.
		{"retire at 60", retireAt60Plan(), 97969692.16, 23958.64, 347},
		{"fire at 45", fireAt45Plan(), 61211054.82, 159857.92, 155},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine()
			gc, err := engine.CompileGoal(tt.plan.Profile, tt.plan.Goals[0], decimal.Zero)
			require.NoError(t, err)

			require.NotNil(t, gc.TargetCorpus)
			assert.InDelta(t, tt.corpus, gc.TargetCorpus.InexactFloat64(), 0.01)
			assert.Equal(t, domain.StatusContributionRequired, gc.Status)
			assert.False(t, gc.Approximate)
			assert.InDelta(t, tt.contribute, gc.MonthlyContributionYear1.InexactFloat64(), 1.5)
			require.NotNil(t, gc.ActualStopMonth)
			assert.Equal(t, tt.stop, *gc.ActualStopMonth)
		})
	}
}

func TestCompileGoal_RetirementOracle(t *testing.T) {
	engine := NewEngineWithOptions(SolverOptions{Tolerance: dec("0.0001"), MaxIterations: 50})
	plan := retireAt60Plan()
	gc, err := engine.CompileGoal(plan.Profile, plan.Goals[0], decimal.Zero)
	require.NoError(t, err)

	r := monthly(t, "0.12")
	post := monthly(t, "0.07")
	v, err := ValidateRetirementPlan(RetirementInputs{
		CurrentAge:        31,
		RetireAge:         60,
		PlanTillAge:       85,
		MonthlySpendToday: dec("100000"),
		Inflation:         dec("0.05"),
		AccumulationRate:  r,
		WithdrawalRate:    post,
		StepUpRate:        dec("0.05"),
	}, gc.MonthlyContributionYear1, engine.Options)
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.InDelta(t, 0, v.FinalBalance.InexactFloat64(), 1000)
}

func TestCompileGoal_EarlyStopConsistency(t *testing.T) {
	profile := testProfile(30, "0.12", "0.07")
	goal := carGoal(30)
	goal.AccumulationStopAge = 45

	gc, err := NewEngine().CompileGoal(profile, goal, dec("100000"))
	require.NoError(t, err)
	require.Equal(t, domain.StatusContributionRequired, gc.Status)
	require.NotNil(t, gc.ActualStopMonth)
	require.NotEmpty(t, gc.ContributionSchedule)

	last := gc.ContributionSchedule[len(gc.ContributionSchedule)-1]
	assert.Equal(t, *gc.ActualStopMonth, last.Month)
	assert.LessOrEqual(t, last.Month, gc.EndMonth)
	for _, cf := range gc.ContributionSchedule {
		assert.LessOrEqual(t, cf.Month, *gc.ActualStopMonth)
	}
	assert.True(t, gc.TotalContribution.Equal(TotalContribution(gc.ContributionSchedule)))
}

func TestCompileGoal_MonotonicInLumpsum(t *testing.T) {
	profile := testProfile(30, "0.12", "0.07")
	engine := NewEngine()

	prev := decimal.NewFromInt(1 << 40)
	for _, lump := range []string{"0", "100000", "250000", "500000", "750000", "1000000", "5000000"} {
		gc, err := engine.CompileGoal(profile, carGoal(30), dec(lump))
		require.NoError(t, err)
		assert.True(t, gc.MonthlyContributionYear1.LessThanOrEqual(prev.Add(engine.Options.Tolerance)),
			"lumpsum %s raised contribution to %s", lump, gc.MonthlyContributionYear1)
		prev = gc.MonthlyContributionYear1
	}
}

func TestCompileGoal_SufficientLumpsum(t *testing.T) {
	profile := testProfile(30, "0.12", "0.07")
	gc, err := NewEngine().CompileGoal(profile, carGoal(30), dec("5000000"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFundedByLumpsum, gc.Status)
	assert.True(t, gc.MonthlyContributionYear1.IsZero())
	assert.Empty(t, gc.ContributionSchedule)
	assert.Nil(t, gc.ActualStopMonth)
	assert.True(t, gc.RemainingTarget.IsZero())
	assert.True(t, gc.LumpsumFutureValue.GreaterThanOrEqual(gc.TargetAmount))
	assert.Equal(t, 0, gc.SolverIterations)
}

func TestCompileGoal_LumpsumExactlyAtTarget(t *testing.T) {
	profile := testProfile(30, "0.12", "0.07")
	r, err := PresetMonthlyRate(domain.PresetRegular, nil, profile.Assumptions)
	require.NoError(t, err)
	target := Inflate(dec("1000000"), dec("0.06"), 5)

	// grow a candidate lumpsum and nudge it up until its future value covers the target
	lump := target.DivRound(powInt(one.Add(r), 60), 2)
	for grow(lump, r, 60).LessThan(target) {
		lump = lump.Add(dec("0.01"))
	}

	gc, err := NewEngine().CompileGoal(profile, carGoal(30), lump)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFundedByLumpsum, gc.Status)
	assert.True(t, gc.MonthlyContributionYear1.IsZero())

	short, err := NewEngine().CompileGoal(profile, carGoal(30), lump.Sub(dec("1000")))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusContributionRequired, short.Status)
	assert.True(t, short.MonthlyContributionYear1.IsPositive())
}

func TestCompileGoal_LumpsumGrowsToWindowStart(t *testing.T) {
	profile := testProfile(30, "0.12", "0.07")
	goal := carGoal(30)
	goal.AccumulationStartAge = 33
	goal.AccumulationStopAge = 35

	gc, err := NewEngine().CompileGoal(profile, goal, dec("100000"))
	require.NoError(t, err)
	assert.Equal(t, 36, gc.StartMonth)
	assert.Equal(t, 59, gc.EndMonth)

	r, err := PresetMonthlyRate(domain.PresetRegular, nil, profile.Assumptions)
	require.NoError(t, err)
	assert.True(t, gc.LumpsumFutureValue.Equal(grow(grow(dec("100000"), r, 36), r, 24)))
	require.NotEmpty(t, gc.ContributionSchedule)
	assert.Equal(t, 36, gc.ContributionSchedule[0].Month)
}

func TestCompileGoal_Purchase(t *testing.T) {
	profile := testProfile(30, "0.12", "0.07")
	gc, err := NewEngine().CompileGoal(profile, carGoal(30), decimal.Zero)
	require.NoError(t, err)

	want := Inflate(dec("1000000"), dec("0.06"), 5)
	assert.True(t, gc.TargetAmount.Equal(want))
	assert.Nil(t, gc.TargetCorpus)
	require.Len(t, gc.WithdrawalSchedule, 1)
	assert.Equal(t, 60, gc.WithdrawalSchedule[0].Month)
	assert.True(t, gc.WithdrawalSchedule[0].Amount.Equal(want.Neg()))
}

func TestCompileGoal_Custom(t *testing.T) {
	profile := testProfile(40, "0.12", "0.07")
	goal := &domain.CustomGoal{
		GoalBase: domain.GoalBase{
			Type: domain.GoalCustom, ID: "wedding", Title: "Wedding",
			Inflation: dec("0.07"), AccumulationStartAge: 40, AccumulationStopAge: 48,
			DuringPreset: domain.PresetGrow,
		},
		Description:  "Daughter's wedding",
		TargetAmount: dec("2500000"),
		TargetAge:    48,
	}
	gc, err := NewEngine().CompileGoal(profile, goal, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, gc.TargetAmount.Equal(Inflate(dec("2500000"), dec("0.07"), 8)))
	assert.Equal(t, 96, gc.WithdrawalSchedule[0].Month)
	assert.Equal(t, domain.StatusContributionRequired, gc.Status)
}

func TestCompileGoal_Education(t *testing.T) {
	profile := testProfile(35, "0.12", "0.07")
	goal := &domain.EducationGoal{
		GoalBase: domain.GoalBase{
			Type: domain.GoalEducation, ID: "college", Title: "College",
			Inflation: dec("0.08"), AccumulationStartAge: 35, AccumulationStopAge: 45,
			DuringPreset: domain.PresetGrow,
		},
		StartInYears:     10,
		DurationYears:    4,
		CostPerYearToday: dec("200000"),
	}
	gc, err := NewEngine().CompileGoal(profile, goal, decimal.Zero)
	require.NoError(t, err)

	want := decimal.Zero
	for i := 10; i < 14; i++ {
		want = want.Add(Inflate(dec("200000"), dec("0.08"), i))
	}
	assert.True(t, gc.TargetAmount.Equal(want))
	require.Len(t, gc.WithdrawalSchedule, 48)
	assert.Equal(t, 120, gc.WithdrawalSchedule[0].Month)
	assert.Equal(t, 167, gc.WithdrawalSchedule[47].Month)
	assert.Equal(t, 119, gc.EndMonth)
}

func TestCompileGoal_Vacation(t *testing.T) {
	profile := testProfile(30, "0.12", "0.07")
	goal := &domain.VacationGoal{
		GoalBase: domain.GoalBase{
			Type: domain.GoalVacation, ID: "trips", Title: "Trips",
			Inflation: dec("0.06"), AccumulationStartAge: 30, AccumulationStopAge: 35,
			DuringPreset: domain.PresetSafe,
		},
		FirstHolidayAge:   35,
		LastHolidayAge:    37,
		SpendPerYearToday: dec("150000"),
	}
	gc, err := NewEngine().CompileGoal(profile, goal, decimal.Zero)
	require.NoError(t, err)

	require.Len(t, gc.WithdrawalSchedule, 36)
	assert.Equal(t, 60, gc.WithdrawalSchedule[0].Month)
	assert.Equal(t, 95, gc.WithdrawalSchedule[35].Month)
	want := Inflate(dec("150000"), dec("0.06"), 5).Add(Inflate(dec("150000"), dec("0.06"), 6)).Add(Inflate(dec("150000"), dec("0.06"), 7))
	assert.True(t, gc.TargetAmount.Equal(want))
}

func TestCompileGoal_InvalidWindows(t *testing.T) {
	profile := testProfile(30, "0.12", "0.07")

	inverted := carGoal(30)
	inverted.AccumulationStartAge = 40
	inverted.AccumulationStopAge = 35
	_, err := NewEngine().CompileGoal(profile, inverted, decimal.Zero)
	assert.True(t, errors.Is(err, domain.ErrInvalidGoalWindow))
	var ge *domain.GoalError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, "car", ge.GoalID)

	plan := retireAt60Plan()
	ret := plan.Goals[0].(*domain.RetirementGoal)
	ret.PlanTillAge = 60
	_, err = NewEngine().CompileGoal(plan.Profile, ret, decimal.Zero)
	assert.True(t, errors.Is(err, domain.ErrInvalidGoalWindow))

	vac := &domain.VacationGoal{
		GoalBase:        domain.GoalBase{ID: "v", AccumulationStartAge: 30, AccumulationStopAge: 31, DuringPreset: domain.PresetSafe},
		FirstHolidayAge: 40,
		LastHolidayAge:  35,
	}
	_, err = NewEngine().CompileGoal(profile, vac, decimal.Zero)
	assert.True(t, errors.Is(err, domain.ErrInvalidGoalWindow))
}

func TestCompileGoal_InvalidPreset(t *testing.T) {
	profile := testProfile(30, "0.12", "0.07")
	goal := carGoal(30)
	goal.DuringPreset = domain.Preset("YOLO")
	_, err := NewEngine().CompileGoal(profile, goal, decimal.Zero)
	assert.True(t, errors.Is(err, domain.ErrInvalidPreset))
}

func TestCompileGoal_EmptyWindowIsUnreachable(t *testing.T) {
	profile := testProfile(30, "0.12", "0.07")
	goal := carGoal(30)
	goal.AccumulationStartAge = 30
	goal.AccumulationStopAge = 30

	gc, err := NewEngine().CompileGoal(profile, goal, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnreachable, gc.Status)
	assert.True(t, gc.Approximate)
	assert.True(t, gc.MonthlyContributionYear1.IsZero())
	assert.Empty(t, gc.ContributionSchedule)
}

func TestCompileGoal_Warnings(t *testing.T) {
	profile := testProfile(30, "0.12", "0.07")
	short := carGoal(30)
	short.PurchaseAge = 32
	short.AccumulationStopAge = 32
	short.DuringPreset = domain.PresetAllIn

	gc, err := NewEngine().CompileGoal(profile, short, decimal.Zero)
	require.NoError(t, err)
	require.Len(t, gc.Warnings, 1)
	assert.Contains(t, gc.Warnings[0], "High equity allocation (100%)")

	plan := fireAt45Plan()
	gc, err = NewEngine().CompileGoal(plan.Profile, plan.Goals[0], decimal.Zero)
	require.NoError(t, err)
	require.Len(t, gc.Warnings, 1)
	assert.Contains(t, gc.Warnings[0], "Consider All-in allocation")
}
