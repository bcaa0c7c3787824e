// Package tuimsg holds the messages scenes send to the root model.
package tuimsg

import (
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/capplan/internal/breakeven"
	"github.com/rgehrsitz/capplan/internal/compare"
	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/rgehrsitz/capplan/internal/transform"
)

// PlanLoadedMsg signals a plan has been loaded
type PlanLoadedMsg struct {
	Plan   *domain.Plan
	Source string
}

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}

// EditPlanMsg asks the root model to apply edits and recompute
type EditPlanMsg struct {
	Label      string
	Transforms []transform.PlanTransform
}

// ComputeCompleteMsg carries a fresh computation. Revision identifies the
// plan edit it was computed for so stale results can be dropped.
type ComputeCompleteMsg struct {
	Revision int
	Output   *domain.ComputedOutput
	Err      error
}

// CompareRequestMsg asks for the plan to be compared against templates
type CompareRequestMsg struct {
	Templates []string
}

// ComparisonCompleteMsg signals a comparison has finished
type ComparisonCompleteMsg struct {
	Set *compare.ComparisonSet
	Err error
}

// OptimizeRequestMsg asks the break-even solver to fit a monthly budget.
// An empty target solves every target.
type OptimizeRequestMsg struct {
	Target breakeven.OptimizationTarget
	Budget decimal.Decimal
}

// OptimizationCompleteMsg signals an optimization has finished
type OptimizationCompleteMsg struct {
	Result *breakeven.MultiDimensionalResult
	Err    error
}

// StatusMsg shows a transient line in the status bar
type StatusMsg struct {
	Text    string
	IsError bool
}
