package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/capplan/internal/inr"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	badStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// ConsoleFormatter renders the full plan report for a terminal
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	plan, out := report.Plan, report.Output

	fmt.Fprintln(&buf, strings.Repeat("=", 81))
	fmt.Fprintln(&buf, titleStyle.Render("CAPITAL PLAN REPORT"))
	fmt.Fprintln(&buf, strings.Repeat("=", 81))
	fmt.Fprintf(&buf, "Saver:        %s (age %d)\n", plan.Profile.Name, plan.Profile.Age)
	fmt.Fprintf(&buf, "Savings:      %s\n", inr.Format(plan.Profile.Savings))
	fmt.Fprintf(&buf, "Allocated:    %s\n", inr.Format(out.TotalAllocated))
	fmt.Fprintf(&buf, "Unallocated:  %s\n", inr.Format(out.UnallocatedSavings))
	fmt.Fprintf(&buf, "Step-up:      %s%% a year\n", out.StepUpPercent.StringFixed(1))
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, sectionStyle.Render("KEY ASSUMPTIONS"))
	for _, a := range Assumptions(plan) {
		fmt.Fprintf(&buf, "• %s\n", a)
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, sectionStyle.Render("GOALS"))
	fmt.Fprintf(&buf, "%-24s %-11s %-22s %12s %10s %12s %8s\n", "Goal", "Type", "Status", "Monthly", "Lumpsum", "Target", "Ages")
	fmt.Fprintln(&buf, strings.Repeat("-", 105))
	for _, row := range report.GoalRows() {
		status := row.Status
		if row.Approximate {
			status += "*"
		}
		fmt.Fprintf(&buf, "%-24s %-11s %-22s %12s %10s %12s %8s\n",
			truncate(row.Title, 24), row.Type, status, row.Monthly, row.Lumpsum, row.Target, row.Window)
	}
	fmt.Fprintln(&buf, strings.Repeat("-", 105))
	fmt.Fprintf(&buf, "TOTAL MONTHLY CONTRIBUTION: %s\n", inr.Format(out.TotalMonthlyContribution))
	fmt.Fprintf(&buf, "LIFETIME PAID IN:           %s\n", inr.Compact(report.LifetimeContribution(), true))
	fmt.Fprintln(&buf)

	if len(out.Chart) > 0 {
		fmt.Fprintln(&buf, sectionStyle.Render("PORTFOLIO PROJECTION"))
		fmt.Fprintf(&buf, "%5s %5s %14s %14s %14s %14s\n", "Year", "Age", "Value", "Monthly", "Paid In", "Withdrawn")
		for _, p := range out.Chart {
			monthly := "-"
			if p.MonthlyContribution != nil {
				monthly = inr.Format(*p.MonthlyContribution)
			}
			line := fmt.Sprintf("%5d %5d %14s %14s %14s %14s",
				p.Year, p.Age, inr.Compact(p.PortfolioValue, true), monthly,
				inr.Compact(p.AnnualContribution, false), inr.Compact(p.AnnualWithdrawal, false))
			if p.Exhausted {
				line = badStyle.Render(line + "  depleted")
			}
			fmt.Fprintln(&buf, line)
		}
		fmt.Fprintln(&buf)
		fmt.Fprintf(&buf, "Peak value:  %s\n", inr.Compact(out.PeakValue(), true))
		fmt.Fprintf(&buf, "Final value: %s\n", inr.Compact(out.FinalValue(), true))
		fmt.Fprintln(&buf)
	}

	if warnings := report.Warnings(); len(warnings) > 0 {
		fmt.Fprintln(&buf, sectionStyle.Render("WARNINGS"))
		for _, w := range warnings {
			fmt.Fprintln(&buf, warnStyle.Render("⚠ "+w))
		}
		fmt.Fprintln(&buf)
	}

	return buf.Bytes(), nil
}

// ConsoleLiteFormatter renders a short summary
type ConsoleLiteFormatter struct{}

func (c ConsoleLiteFormatter) Name() string { return "console-lite" }

func (c ConsoleLiteFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	out := report.Output

	fmt.Fprintln(&buf, titleStyle.Render("CAPITAL PLAN SUMMARY"))
	fmt.Fprintf(&buf, "Total monthly contribution: %s\n", inr.Format(out.TotalMonthlyContribution))
	for _, row := range report.GoalRows() {
		fmt.Fprintf(&buf, "  • %s: %s/mo (%s)\n", row.Title, row.Monthly, row.Status)
	}
	if out.Exhausted && out.DepletionAge != nil {
		fmt.Fprintln(&buf, badStyle.Render(fmt.Sprintf("Runs out of money at age %d", *out.DepletionAge)))
	} else {
		fmt.Fprintf(&buf, "Final portfolio: %s\n", inr.Compact(out.FinalValue(), true))
	}
	return buf.Bytes(), nil
}

func truncate(s string, maxLen int) string {
	if len([]rune(s)) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}
