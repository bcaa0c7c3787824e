package breakeven

import (
	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/shopspring/decimal"
)

// OptimizationTarget defines which plan parameter to solve for
type OptimizationTarget string

const (
	OptimizeRetireAge OptimizationTarget = "retire_age"
	OptimizeStepUp    OptimizationTarget = "step_up"
)

// ParseTarget resolves a target name, accepting the CLI spellings
func ParseTarget(s string) (OptimizationTarget, error) {
	switch s {
	case "retire_age", "retire-age":
		return OptimizeRetireAge, nil
	case "step_up", "step-up":
		return OptimizeStepUp, nil
	}
	return "", &BreakEvenError{Operation: "parse_target", Message: "unknown optimization target: " + s}
}

// Constraints bound the search. Budget is the highest acceptable total
// monthly contribution in the first year.
type Constraints struct {
	Budget decimal.Decimal `json:"budget"`

	// Retirement goal to move; empty means the plan's retirement goal
	GoalID string `json:"goal_id,omitempty"`

	MinRetireAge *int `json:"min_retire_age,omitempty"`
	MaxRetireAge *int `json:"max_retire_age,omitempty"`

	// Step-up rate bounds as fractions, e.g. 0.05 for 5%
	MinStepUp *decimal.Decimal `json:"min_step_up,omitempty"`
	MaxStepUp *decimal.Decimal `json:"max_step_up,omitempty"`
}

// OptimizationRequest defines the parameters for an optimization run
type OptimizationRequest struct {
	BasePlan      *domain.Plan
	Target        OptimizationTarget
	Constraints   Constraints
	MaxIterations int             // bisection cap for the step-up search
	Tolerance     decimal.Decimal // step-up bracket width at which bisection stops
}

// OptimizationResult contains the results of an optimization run
type OptimizationResult struct {
	Target          OptimizationTarget `json:"target"`
	Budget          decimal.Decimal    `json:"budget"`
	Success         bool               `json:"success"`
	Iterations      int                `json:"iterations"`
	ConvergenceInfo string             `json:"convergence_info"`

	OptimalRetireAge *int             `json:"optimal_retire_age,omitempty"`
	OptimalStepUp    *decimal.Decimal `json:"optimal_step_up,omitempty"`

	// Results at the optimum (or at the closest candidate when unsuccessful)
	MonthlyContribution  decimal.Decimal `json:"monthly_contribution"`
	LifetimeContribution decimal.Decimal `json:"lifetime_contribution"`
	FinalValue           decimal.Decimal `json:"final_value"`
	Exhausted            bool            `json:"exhausted"`
	DepletionAge         *int            `json:"depletion_age,omitempty"`

	// Comparison to the unchanged plan
	BaseMonthlyContribution  decimal.Decimal `json:"base_monthly_contribution"`
	ContributionDiffFromBase decimal.Decimal `json:"contribution_diff_from_base"`

	Plan   *domain.Plan           `json:"-"`
	Output *domain.ComputedOutput `json:"-"`
}

// MultiDimensionalResult contains the results of solving every target
type MultiDimensionalResult struct {
	Results         []OptimizationResult `json:"results"`
	Recommendations []string             `json:"recommendations"`
}

// SolverOptions configures the solver
type SolverOptions struct {
	Tolerance     decimal.Decimal // step-up bracket width
	MaxIterations int
	MaxStepUp     decimal.Decimal // upper step-up bound when none is given
}

// DefaultSolverOptions returns default solver configuration
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Tolerance:     decimal.RequireFromString("0.0005"), // 0.05 percentage points
		MaxIterations: 50,
		MaxStepUp:     decimal.RequireFromString("0.15"),
	}
}

// Validate checks that the constraints are internally consistent
func (c *Constraints) Validate() error {
	if !c.Budget.IsPositive() {
		return &BreakEvenError{
			Operation: "validate_constraints",
			Message:   "budget must be positive",
		}
	}

	if c.MinRetireAge != nil && c.MaxRetireAge != nil && *c.MinRetireAge > *c.MaxRetireAge {
		return &BreakEvenError{
			Operation: "validate_constraints",
			Message:   "min_retire_age cannot be greater than max_retire_age",
		}
	}

	for _, r := range []*decimal.Decimal{c.MinStepUp, c.MaxStepUp} {
		if r != nil && (r.IsNegative() || r.GreaterThan(decimal.NewFromInt(1))) {
			return &BreakEvenError{
				Operation: "validate_constraints",
				Message:   "step-up bounds must be between 0 and 1",
			}
		}
	}
	if c.MinStepUp != nil && c.MaxStepUp != nil && c.MinStepUp.GreaterThan(*c.MaxStepUp) {
		return &BreakEvenError{
			Operation: "validate_constraints",
			Message:   "min_step_up cannot be greater than max_step_up",
		}
	}

	return nil
}

// BreakEvenError represents errors from the break-even solver
type BreakEvenError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *BreakEvenError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *BreakEvenError) Unwrap() error {
	return e.Cause
}
