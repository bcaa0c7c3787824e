package breakeven

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rgehrsitz/capplan/internal/inr"
	"github.com/shopspring/decimal"
)

// TableFormatter formats optimization results as a console table
type TableFormatter struct{}

// Format generates a formatted table for an optimization result
func (tf *TableFormatter) Format(result *OptimizationResult) string {
	var sb strings.Builder

	sb.WriteString("BREAK-EVEN OPTIMIZATION RESULTS\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")

	sb.WriteString(fmt.Sprintf("Optimization Target: %s\n", result.Target))
	sb.WriteString(fmt.Sprintf("Monthly Budget:      %s\n", inr.Format(result.Budget)))
	sb.WriteString(fmt.Sprintf("Status:              %s\n", tf.formatStatus(result.Success)))
	sb.WriteString(fmt.Sprintf("Iterations:          %d\n", result.Iterations))
	if result.ConvergenceInfo != "" {
		sb.WriteString(fmt.Sprintf("Convergence:         %s\n", result.ConvergenceInfo))
	}
	sb.WriteString("\n")

	sb.WriteString("OPTIMAL PARAMETERS\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	if result.OptimalRetireAge != nil {
		sb.WriteString(fmt.Sprintf("Retire Age:          %d\n", *result.OptimalRetireAge))
	}
	if result.OptimalStepUp != nil {
		sb.WriteString(fmt.Sprintf("Yearly Step-up:      %s\n", inr.Percent(*result.OptimalStepUp, 2)))
	}
	sb.WriteString("\n")

	sb.WriteString("PROJECTED RESULTS\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Monthly Contribution:  %s\n", inr.Format(result.MonthlyContribution)))
	sb.WriteString(fmt.Sprintf("Lifetime Paid In:      %s\n", inr.Compact(result.LifetimeContribution, true)))
	sb.WriteString(fmt.Sprintf("Final Portfolio:       %s\n", inr.Compact(result.FinalValue, true)))
	if result.Exhausted && result.DepletionAge != nil {
		sb.WriteString(fmt.Sprintf("Runs out of money at age %d\n", *result.DepletionAge))
	}
	sb.WriteString("\n")

	sb.WriteString("COMPARISON TO CURRENT PLAN\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Current Contribution:  %s\n", inr.Format(result.BaseMonthlyContribution)))
	sb.WriteString(fmt.Sprintf("Change:                %s%s\n",
		tf.deltaSymbol(result.ContributionDiffFromBase), inr.Format(result.ContributionDiffFromBase)))
	sb.WriteString("\n")

	return sb.String()
}

// FormatMultiDimensional formats results from multiple optimizations
func (tf *TableFormatter) FormatMultiDimensional(result *MultiDimensionalResult) string {
	var sb strings.Builder

	sb.WriteString("MULTI-DIMENSIONAL OPTIMIZATION RESULTS\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n\n")

	sb.WriteString("SUMMARY OF ALL OPTIMIZATIONS\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")
	sb.WriteString(fmt.Sprintf("%-14s %-12s %12s %14s %14s\n", "Optimization", "Value", "Monthly", "Lifetime", "Status"))
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	for _, res := range result.Results {
		value := "-"
		switch {
		case res.OptimalRetireAge != nil:
			value = fmt.Sprintf("age %d", *res.OptimalRetireAge)
		case res.OptimalStepUp != nil:
			value = inr.Percent(*res.OptimalStepUp, 2)
		}
		status := "fits"
		if !res.Success {
			status = "over budget"
		}
		sb.WriteString(fmt.Sprintf("%-14s %-12s %12s %14s %14s\n",
			tf.truncate(string(res.Target), 14),
			value,
			inr.Compact(res.MonthlyContribution, false),
			inr.Compact(res.LifetimeContribution, false),
			status))
	}
	sb.WriteString("\n")

	if len(result.Recommendations) > 0 {
		sb.WriteString("RECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, rec := range result.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format generates JSON output
func (jf *JSONFormatter) Format(result *OptimizationResult) (string, error) {
	return jf.marshal(result)
}

// FormatMultiDimensional formats multi-dimensional results as JSON
func (jf *JSONFormatter) FormatMultiDimensional(result *MultiDimensionalResult) (string, error) {
	return jf.marshal(result)
}

func (jf *JSONFormatter) marshal(v any) (string, error) {
	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return "", err
	}

	return string(data), nil
}

func (tf *TableFormatter) formatStatus(success bool) string {
	if success {
		return "✓ Fits budget"
	}
	return "⚠ Over budget"
}

func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	}
	return ""
}

func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
