package domain

import (
	"github.com/shopspring/decimal"
)

// Cashflow is a signed amount landing in a month counted from now (month 0).
// Positive amounts are contributions, negative amounts are withdrawals.
type Cashflow struct {
	Month  int             `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// GoalStatus summarises how a goal gets funded
type GoalStatus string

const (
	StatusFundedByLumpsum      GoalStatus = "funded_by_lumpsum"
	StatusContributionRequired GoalStatus = "contribution_required"
	StatusUnreachable          GoalStatus = "unreachable"
)

// GoalComputation is the derived funding result for a single goal
type GoalComputation struct {
	GoalID                   string          `json:"goal_id"`
	GoalType                 GoalType        `json:"goal_type"`
	Title                    string          `json:"title"`
	Status                   GoalStatus      `json:"status"`
	MonthlyContributionYear1 decimal.Decimal `json:"monthly_contribution_year1"`
	Lumpsum                  decimal.Decimal `json:"lumpsum"`
	LumpsumFutureValue       decimal.Decimal `json:"lumpsum_future_value"`
	TargetAmount             decimal.Decimal `json:"target_amount"`
	// TargetCorpus is only set for retirement goals
	TargetCorpus    *decimal.Decimal `json:"target_corpus,omitempty"`
	RemainingTarget decimal.Decimal  `json:"remaining_target"`
	StartMonth      int              `json:"start_month"`
	EndMonth        int              `json:"end_month"`
	// ActualStopMonth is nil when no contributions are scheduled
	ActualStopMonth      *int            `json:"actual_stop_month"`
	Approximate          bool            `json:"approximate"`
	SolverIterations     int             `json:"solver_iterations"`
	TotalContribution    decimal.Decimal `json:"total_contribution"`
	ContributionSchedule []Cashflow      `json:"contribution_schedule"`
	WithdrawalSchedule   []Cashflow      `json:"withdrawal_schedule"`
	Warnings             []string        `json:"warnings,omitempty"`
}

// ChartPoint is a yearly snapshot of the combined portfolio
type ChartPoint struct {
	Year               int             `json:"year"`
	Age                int             `json:"age"`
	PortfolioValue     decimal.Decimal `json:"portfolio_value"`
	PortfolioCrore     float64         `json:"portfolio_crore"`
	AnnualContribution decimal.Decimal `json:"annual_contribution"`
	// MonthlyContribution is nil for years without contributions
	MonthlyContribution *decimal.Decimal `json:"monthly_contribution"`
	AnnualWithdrawal    decimal.Decimal  `json:"annual_withdrawal"`
	Exhausted           bool             `json:"exhausted,omitempty"`
}

// ComputedOutput is the full result of computing a plan
type ComputedOutput struct {
	PerGoal                  []GoalComputation `json:"per_goal"`
	TotalMonthlyContribution decimal.Decimal   `json:"total_monthly_contribution"`
	StepUpPercent            decimal.Decimal   `json:"step_up_percent"`
	TotalAllocated           decimal.Decimal   `json:"total_allocated"`
	UnallocatedSavings       decimal.Decimal   `json:"unallocated_savings"`
	Chart                    []ChartPoint      `json:"chart"`
	Exhausted                bool              `json:"exhausted"`
	// DepletionAge is the age at which the portfolio ran out during withdrawals
	DepletionAge *int `json:"depletion_age,omitempty"`
}

// Goal returns the computation for a goal id
func (o *ComputedOutput) Goal(id string) (*GoalComputation, bool) {
	for i := range o.PerGoal {
		if o.PerGoal[i].GoalID == id {
			return &o.PerGoal[i], true
		}
	}
	return nil, false
}

// FinalValue returns the last charted portfolio value
func (o *ComputedOutput) FinalValue() decimal.Decimal {
	if len(o.Chart) == 0 {
		return decimal.Zero
	}
	return o.Chart[len(o.Chart)-1].PortfolioValue
}

// PeakValue returns the highest charted portfolio value
func (o *ComputedOutput) PeakValue() decimal.Decimal {
	peak := decimal.Zero
	for _, p := range o.Chart {
		if p.PortfolioValue.GreaterThan(peak) {
			peak = p.PortfolioValue
		}
	}
	return peak
}
