package calculation

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLogger records formats for assertions
type TestLogger struct {
	messages []string
}

func (tl *TestLogger) Debugf(format string, args ...any) {
	tl.messages = append(tl.messages, "DEBUG: "+format)
}

func (tl *TestLogger) Infof(format string, args ...any) {
	tl.messages = append(tl.messages, "INFO: "+format)
}

func (tl *TestLogger) Warnf(format string, args ...any) {
	tl.messages = append(tl.messages, "WARN: "+format)
}

func (tl *TestLogger) Errorf(format string, args ...any) {
	tl.messages = append(tl.messages, "ERROR: "+format)
}

func TestNewEngine(t *testing.T) {
	engine := NewEngine()

	assert.NotNil(t, engine, "Should create engine")
	assert.NotNil(t, engine.Logger, "Should initialize logger")
	assert.Equal(t, 50, engine.Options.MaxIterations)
	assert.True(t, engine.Options.Tolerance.Equal(decimal.NewFromInt(1)))
}

func TestEngine_SetLogger(t *testing.T) {
	engine := NewEngine()

	customLogger := &TestLogger{}
	engine.SetLogger(customLogger)
	assert.Equal(t, customLogger, engine.Logger, "Should set custom logger")

	engine.SetLogger(nil)
	assert.NotNil(t, engine.Logger, "Should not be nil")
	assert.IsType(t, NopLogger{}, engine.Logger, "Should be no-op logger")
}

func TestEngine_LogsSolverProgress(t *testing.T) {
	engine := NewEngine()
	logger := &TestLogger{}
	engine.SetLogger(logger)

	_, err := engine.Compute(retireAt60Plan())
	require.NoError(t, err)
	assert.NotEmpty(t, logger.messages)
	assert.Contains(t, logger.messages[len(logger.messages)-1], "INFO: computed")
}

func familyPlan() *domain.Plan {
	plan := retireAt60Plan()
	plan.Profile.Savings = dec("2000000")
	plan.Goals = append(plan.Goals, carGoal(31), &domain.EducationGoal{
		GoalBase: domain.GoalBase{
			Type: domain.GoalEducation, ID: "school", Title: "School",
			Inflation: dec("0.08"), AccumulationStartAge: 31, AccumulationStopAge: 41,
			DuringPreset: domain.PresetGrow,
		},
		StartInYears:     10,
		DurationYears:    4,
		CostPerYearToday: dec("300000"),
	})
	plan.Allocations = []domain.Allocation{
		{GoalID: "car", Lumpsum: dec("300000")},
		{GoalID: "retirement", Lumpsum: dec("500000")},
	}
	return plan
}

func TestEngine_Compute(t *testing.T) {
	out, err := NewEngine().Compute(familyPlan())
	require.NoError(t, err)

	require.Len(t, out.PerGoal, 3)
	assert.Equal(t, "retirement", out.PerGoal[0].GoalID)
	assert.Equal(t, "car", out.PerGoal[1].GoalID)
	assert.Equal(t, "school", out.PerGoal[2].GoalID)

	sum := decimal.Zero
	for _, gc := range out.PerGoal {
		sum = sum.Add(gc.MonthlyContributionYear1)
	}
	assert.True(t, out.TotalMonthlyContribution.Equal(sum))
	assert.True(t, out.StepUpPercent.Equal(dec("5")))
	assert.True(t, out.TotalAllocated.Equal(dec("800000")))
	assert.True(t, out.UnallocatedSavings.Equal(dec("1200000")))

	car, ok := out.Goal("car")
	require.True(t, ok)
	assert.True(t, car.Lumpsum.Equal(dec("300000")))
	_, ok = out.Goal("missing")
	assert.False(t, ok)
}

func TestEngine_ComputeIsIdempotent(t *testing.T) {
	engine := NewEngine()
	plan := familyPlan()

	first, err := engine.Compute(plan)
	require.NoError(t, err)
	second, err := engine.Compute(plan)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b, "recomputing an unchanged plan must be byte-identical")

	// a fresh engine gives the same answer too
	third, err := NewEngine().Compute(plan.DeepCopy())
	require.NoError(t, err)
	c, err := json.Marshal(third)
	require.NoError(t, err)
	assert.Equal(t, a, c)
}

func TestEngine_ComputeDoesNotMutatePlan(t *testing.T) {
	plan := familyPlan()
	before, err := json.Marshal(plan)
	require.NoError(t, err)

	_, err = NewEngine().Compute(plan)
	require.NoError(t, err)

	after, err := json.Marshal(plan)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestEngine_ComputeFailsFastOnInvalidWindow(t *testing.T) {
	plan := familyPlan()
	plan.Goals[1].Common().AccumulationStopAge = 20

	out, err := NewEngine().Compute(plan)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, domain.ErrInvalidGoalWindow))
}

func TestEngine_ComputeNilPlan(t *testing.T) {
	_, err := NewEngine().Compute(nil)
	assert.Error(t, err)
}

func TestEngine_UnallocatedMayBeNegative(t *testing.T) {
	plan := familyPlan()
	plan.Allocations = append(plan.Allocations, domain.Allocation{GoalID: "school", Lumpsum: dec("5000000")})

	out, err := NewEngine().Compute(plan)
	require.NoError(t, err)
	assert.True(t, out.UnallocatedSavings.IsNegative(), "the engine uses lumpsums as given")
	school, _ := out.Goal("school")
	assert.Equal(t, domain.StatusFundedByLumpsum, school.Status)
}
