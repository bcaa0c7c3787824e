package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accumulationRequest(t *testing.T, target string, annual string, months int) ContributionRequest {
	t.Helper()
	r, err := MonthlyRate(dec(annual))
	require.NoError(t, err)
	return ContributionRequest{
		Target:         dec(target),
		MonthlyRate:    r,
		StepUpRate:     dec("0.05"),
		StartMonth:     0,
		EndMonth:       months - 1,
		InitialBalance: decimal.Zero,
	}
}

func TestSteppedContribution(t *testing.T) {
	c := dec("10000")
	assert.True(t, SteppedContribution(c, dec("0.05"), 0).Equal(c))
	assert.True(t, SteppedContribution(c, dec("0.05"), 11).Equal(c))
	assert.True(t, SteppedContribution(c, dec("0.05"), 12).Equal(dec("10500")))
	assert.True(t, SteppedContribution(c, dec("0.05"), 24).Equal(dec("11025")))
	assert.True(t, SteppedContribution(c, decimal.Zero, 120).Equal(c))
}

func TestSimulateFullWindow_MonotonicInContribution(t *testing.T) {
	req := accumulationRequest(t, "50000000", "0.10", 240)
	prev := decimal.NewFromInt(-1)
	for _, c := range []string{"100", "1000", "5000", "5000.01", "20000", "100000"} {
		res := SimulateFullWindow(dec(c), req)
		assert.True(t, res.FinalBalance.GreaterThan(prev), "contribution %s should grow the terminal balance", c)
		prev = res.FinalBalance
	}
}

func TestSimulateWithEarlyStop_StopsAtTarget(t *testing.T) {
	req := accumulationRequest(t, "1000000", "0.12", 120)
	res := SimulateWithEarlyStop(dec("20000"), req)
	require.True(t, res.Reached)
	assert.Less(t, res.StopMonth, req.EndMonth)
	assert.True(t, res.FinalBalance.GreaterThanOrEqual(req.Target))

	// one month earlier the target had not been reached
	shorter := req
	shorter.EndMonth = res.StopMonth - 1
	before := SimulateWithEarlyStop(dec("20000"), shorter)
	assert.False(t, before.Reached)
}

func TestSolveContribution_ZeroTarget(t *testing.T) {
	req := accumulationRequest(t, "0", "0.12", 120)
	res := SolveContribution(req, DefaultSolverOptions())
	assert.True(t, res.MonthlyContribution.IsZero())
	assert.Equal(t, 0, res.Iterations)
	assert.False(t, res.Approximate)
}

func TestSolveContribution_FindsSmallestReachingContribution(t *testing.T) {
	req := accumulationRequest(t, "25000000", "0.11", 300)
	opts := DefaultSolverOptions()
	res := SolveContribution(req, opts)

	require.True(t, res.Reached)
	assert.False(t, res.Approximate)
	assert.LessOrEqual(t, res.Iterations, opts.MaxIterations)

	at := SimulateWithEarlyStop(res.MonthlyContribution, req)
	assert.True(t, at.Reached)
	assert.Equal(t, at.StopMonth, res.StopMonth)

	below := SimulateWithEarlyStop(res.MonthlyContribution.Sub(opts.Tolerance).Sub(dec("0.01")), req)
	assert.False(t, below.Reached, "a contribution below the tolerance band must fall short")
}

func TestSolveContribution_LowerBoundAlreadyEnough(t *testing.T) {
	req := accumulationRequest(t, "1000", "0.08", 60)
	res := SolveContribution(req, DefaultSolverOptions())
	assert.True(t, res.MonthlyContribution.Equal(dec("100")))
	assert.True(t, res.Reached)
	assert.Less(t, res.StopMonth, 60)
}

func TestSolveContribution_UnreachableReturnsApproximation(t *testing.T) {
	// A single month cannot accumulate six times the per-month ceiling.
	req := accumulationRequest(t, "6000000", "0.08", 1)
	res := SolveContribution(req, DefaultSolverOptions())

	assert.True(t, res.Approximate)
	assert.False(t, res.Reached)
	assert.True(t, res.MonthlyContribution.Equal(dec("1000000")))
	assert.Equal(t, 0, res.StopMonth)
}

func TestSolveContribution_EmptyWindow(t *testing.T) {
	req := accumulationRequest(t, "100000", "0.08", 0)
	res := SolveContribution(req, DefaultSolverOptions())
	assert.True(t, res.MonthlyContribution.IsZero())
	assert.True(t, res.Approximate)
}

func TestSolveContribution_IterationCapStillAnswers(t *testing.T) {
	req := accumulationRequest(t, "25000000", "0.11", 300)
	res := SolveContribution(req, SolverOptions{Tolerance: dec("0.0000001"), MaxIterations: 5})
	assert.Equal(t, 5, res.Iterations)
	assert.True(t, res.Reached, "best trial still reaches the target")
}

func TestSolveContributionNoEarlyStop(t *testing.T) {
	req := accumulationRequest(t, "25000000", "0.11", 300)
	full := SolveContributionNoEarlyStop(req, DefaultSolverOptions())
	early := SolveContribution(req, DefaultSolverOptions())

	require.True(t, full.Reached)
	assert.Equal(t, req.EndMonth, full.StopMonth)
	assert.InDelta(t, early.MonthlyContribution.InexactFloat64(), full.MonthlyContribution.InexactFloat64(), 2.0)
	assert.True(t, SimulateFullWindow(full.MonthlyContribution, req).Reached)
}

func TestSteppedSchedule(t *testing.T) {
	schedule := SteppedSchedule(dec("1000"), dec("0.10"), 6, 25)
	require.Len(t, schedule, 20)
	assert.Equal(t, 6, schedule[0].Month)
	assert.Equal(t, 25, schedule[len(schedule)-1].Month)
	assert.True(t, schedule[5].Amount.Equal(dec("1000")))  // month 11
	assert.True(t, schedule[6].Amount.Equal(dec("1100")))  // month 12
	assert.True(t, schedule[18].Amount.Equal(dec("1210"))) // month 24

	total := TotalContribution(schedule)
	assert.True(t, total.Equal(dec("6000").Add(dec("13200")).Add(dec("2420"))))

	assert.Empty(t, SteppedSchedule(decimal.Zero, dec("0.1"), 0, 10))
	assert.Empty(t, SteppedSchedule(dec("100"), dec("0.1"), 10, 9))
}
