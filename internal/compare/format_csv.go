package compare

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Scenario",
		"Type",
		"Monthly Contribution",
		"Lifetime Contribution",
		"Peak Value",
		"Final Value",
		"Depletion Age",
		"Unreachable Goals",
		"Contribution Diff from Base",
		"Contribution % Change",
		"Lifetime Diff from Base",
		"Final Value Diff from Base",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	if err := writer.Write(cf.formatRow(compSet.BaseResult, "base")); err != nil {
		return "", err
	}

	for _, alt := range compSet.AlternativeResults {
		if err := writer.Write(cf.formatRow(&alt, "alternative")); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// formatRow formats a comparison result as a CSV row
func (cf *CSVFormatter) formatRow(result *ComparisonResult, scenarioType string) []string {
	depletion := ""
	if result.DepletionAge != nil {
		depletion = formatInt(*result.DepletionAge)
	}
	return []string{
		result.ScenarioName,
		scenarioType,
		result.MonthlyContribution.StringFixed(2),
		result.LifetimeContribution.StringFixed(2),
		result.PeakValue.StringFixed(2),
		result.FinalValue.StringFixed(2),
		depletion,
		formatInt(result.UnreachableGoals),
		result.ContributionDiffFromBase.StringFixed(2),
		result.ContributionPctFromBase.StringFixed(2),
		result.LifetimeDiffFromBase.StringFixed(2),
		result.FinalValueDiffFromBase.StringFixed(2),
	}
}

func formatInt(i int) string {
	return fmt.Sprintf("%d", i)
}
