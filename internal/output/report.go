package output

import (
	"fmt"
	"time"

	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/rgehrsitz/capplan/internal/inr"
	"github.com/shopspring/decimal"
)

// Report is a computed plan ready for rendering
type Report struct {
	Plan        *domain.Plan
	Output      *domain.ComputedOutput
	GeneratedAt time.Time
}

// NewReport pairs a plan with its computed output
func NewReport(plan *domain.Plan, out *domain.ComputedOutput) *Report {
	return &Report{Plan: plan, Output: out, GeneratedAt: time.Now()}
}

// GoalRow is one goal's line in a report, already formatted for display
type GoalRow struct {
	Title       string
	Type        string
	Status      string
	Monthly     string
	Lumpsum     string
	Target      string
	Window      string
	Approximate bool
	Warnings    []string
}

var statusLabels = map[domain.GoalStatus]string{
	domain.StatusFundedByLumpsum:      "Funded by lumpsum",
	domain.StatusContributionRequired: "Contribution required",
	domain.StatusUnreachable:          "Unreachable",
}

// StatusLabel renders a goal status for people
func StatusLabel(s domain.GoalStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// GoalRows formats every goal computation of the report
func (r *Report) GoalRows() []GoalRow {
	rows := make([]GoalRow, 0, len(r.Output.PerGoal))
	for _, gc := range r.Output.PerGoal {
		target := gc.TargetAmount
		if gc.TargetCorpus != nil {
			target = *gc.TargetCorpus
		}
		rows = append(rows, GoalRow{
			Title:       gc.Title,
			Type:        string(gc.GoalType),
			Status:      StatusLabel(gc.Status),
			Monthly:     inr.Format(gc.MonthlyContributionYear1),
			Lumpsum:     inr.Compact(gc.Lumpsum, false),
			Target:      inr.Compact(target, true),
			Window:      r.window(gc),
			Approximate: gc.Approximate,
			Warnings:    gc.Warnings,
		})
	}
	return rows
}

// window describes the ages over which a goal is funded
func (r *Report) window(gc domain.GoalComputation) string {
	if gc.ActualStopMonth == nil {
		return "-"
	}
	age := r.Plan.Profile.Age
	return fmt.Sprintf("%d-%d", age+gc.StartMonth/12, age+*gc.ActualStopMonth/12)
}

// LifetimeContribution sums every scheduled contribution
func (r *Report) LifetimeContribution() decimal.Decimal {
	total := decimal.Zero
	for _, gc := range r.Output.PerGoal {
		total = total.Add(gc.TotalContribution)
	}
	return total
}

// Warnings gathers goal advisories prefixed with the goal title, followed by
// a depletion warning when the portfolio runs out
func (r *Report) Warnings() []string {
	var warnings []string
	for _, gc := range r.Output.PerGoal {
		for _, w := range gc.Warnings {
			warnings = append(warnings, fmt.Sprintf("%s: %s", gc.Title, w))
		}
		if gc.Status == domain.StatusUnreachable {
			warnings = append(warnings, fmt.Sprintf("%s: target cannot be reached within the contribution window", gc.Title))
		}
	}
	if r.Output.Exhausted && r.Output.DepletionAge != nil {
		warnings = append(warnings, fmt.Sprintf("Portfolio runs out of money at age %d", *r.Output.DepletionAge))
	}
	return warnings
}
