package compare

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/capplan/internal/inr"
	"github.com/shopspring/decimal"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table comparing plan variants
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString("CAPITAL PLAN COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Base Plan: %s\n", compSet.BaseScenarioName))
	if compSet.ConfigPath != "" {
		sb.WriteString(fmt.Sprintf("Configuration: %s\n", compSet.ConfigPath))
	}
	sb.WriteString("\n")

	nameWidth := 30
	numWidth := 12

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, "Scenario",
		numWidth, "Monthly",
		numWidth, "Paid In",
		numWidth, "Peak",
		numWidth, "Final"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	sb.WriteString(tf.formatRow(compSet.BaseResult, nameWidth, numWidth, true))

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(tf.formatRow(&alt, nameWidth, numWidth, false))
		}
	}

	sb.WriteString(strings.Repeat("=", 80) + "\n")

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString("\nCOMPARISON TO BASE\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")

		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(fmt.Sprintf("\n%s:\n", alt.ScenarioName))
			if alt.Description != "" {
				sb.WriteString(fmt.Sprintf("  %s\n", alt.Description))
			}

			sb.WriteString(fmt.Sprintf("  Monthly Contribution: %s%s (%s%%)\n",
				tf.deltaSymbol(alt.ContributionDiffFromBase),
				inr.Format(alt.ContributionDiffFromBase.Abs()),
				alt.ContributionPctFromBase.StringFixed(1)))

			if !alt.LifetimeDiffFromBase.IsZero() {
				sb.WriteString(fmt.Sprintf("  Lifetime Paid In:     %s%s\n",
					tf.deltaSymbol(alt.LifetimeDiffFromBase),
					inr.Compact(alt.LifetimeDiffFromBase.Abs(), false)))
			}

			if alt.Exhausted && alt.DepletionAge != nil {
				sb.WriteString(fmt.Sprintf("  Runs out of money at age %d\n", *alt.DepletionAge))
			}
		}
		sb.WriteString("\n")
	}

	if len(compSet.Recommendations) > 0 {
		sb.WriteString("\nRECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range compSet.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatRow formats a single plan row
func (tf *TableFormatter) formatRow(result *ComparisonResult, nameWidth, numWidth int, isBase bool) string {
	name := result.ScenarioName
	if isBase {
		name += " (base)"
	}

	final := inr.Compact(result.FinalValue, false)
	if result.Exhausted {
		final = "depleted"
	}

	return fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, tf.truncate(name, nameWidth),
		numWidth, inr.Compact(result.MonthlyContribution, false),
		numWidth, inr.Compact(result.LifetimeContribution, false),
		numWidth, inr.Compact(result.PeakValue, false),
		numWidth, final)
}

// deltaSymbol returns a sign for deltas; a higher contribution is shown with +
func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	} else if delta.IsNegative() {
		return "-"
	}
	return " "
}

// truncate truncates a string to maxLen
func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// FormatCompact creates a single-line summary of contribution changes
func (tf *TableFormatter) FormatCompact(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Base: %s | ", compSet.BaseScenarioName))

	for i, alt := range compSet.AlternativeResults {
		if i > 0 {
			sb.WriteString(" | ")
		}
		change := "="
		if alt.ContributionDiffFromBase.IsPositive() {
			change = "+" + inr.Format(alt.ContributionDiffFromBase) + "/mo"
		} else if alt.ContributionDiffFromBase.IsNegative() {
			change = "-" + inr.Format(alt.ContributionDiffFromBase.Abs()) + "/mo"
		}
		sb.WriteString(fmt.Sprintf("%s: %s", alt.ScenarioName, change))
	}

	return sb.String()
}
