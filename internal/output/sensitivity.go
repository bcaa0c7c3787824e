package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/rgehrsitz/capplan/internal/inr"
	"github.com/shopspring/decimal"
)

// SensitivityConsoleFormatter renders sweeps as console tables
type SensitivityConsoleFormatter struct{}

// Format renders a single- or multi-parameter analysis
func (SensitivityConsoleFormatter) Format(a *domain.ParameterSensitivityAnalysis) string {
	var sb strings.Builder

	sb.WriteString("SENSITIVITY ANALYSIS\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Base monthly contribution: %s\n", inr.Format(a.Base.MonthlyContribution)))
	sb.WriteString(fmt.Sprintf("Base final value:          %s\n", inr.Compact(a.Base.FinalValue, true)))

	for _, p := range a.Parameters {
		sb.WriteString(fmt.Sprintf("\n%s (plan value %s)\n", p.Name, inr.Percent(p.BaseValue, 2)))
		if p.Description != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", p.Description))
		}
		sb.WriteString(fmt.Sprintf("  %-10s %14s %10s %14s %10s\n", "Value", "Monthly", "Change", "Final", "Depletes"))
		sb.WriteString("  " + strings.Repeat("-", 62) + "\n")
		for _, r := range a.Results {
			v, ok := r.ParameterValues[p.Name]
			if !ok {
				continue
			}
			sb.WriteString(fmt.Sprintf("  %-10s %14s %10s %14s %10s\n",
				inr.Percent(v, 2),
				inr.Format(r.KeyMetrics.MonthlyContribution),
				signedPercent(r.KeyMetrics.ContributionChangePct),
				inr.Compact(r.KeyMetrics.FinalValue, true),
				depletionLabel(r.KeyMetrics.DepletionAge)))
		}
	}

	sb.WriteString("\n")
	writeSummary(&sb, a.Summary)
	return sb.String()
}

// FormatMatrix renders a two-parameter sweep as a grid of monthly contributions
func (SensitivityConsoleFormatter) FormatMatrix(m *domain.SensitivityMatrix) string {
	var sb strings.Builder

	sb.WriteString("SENSITIVITY MATRIX\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Rows: %s, columns: %s\n", m.Parameter1.Name, m.Parameter2.Name))
	sb.WriteString(fmt.Sprintf("Base monthly contribution: %s\n\n", inr.Format(m.Base.MonthlyContribution)))

	sb.WriteString(fmt.Sprintf("%-10s", ""))
	if len(m.MatrixResults) > 0 {
		for _, cell := range m.MatrixResults[0] {
			sb.WriteString(fmt.Sprintf(" %12s", inr.Percent(cell.ParameterValues[m.Parameter2.Name], 2)))
		}
	}
	sb.WriteString("\n")

	for _, row := range m.MatrixResults {
		if len(row) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("%-10s", inr.Percent(row[0].ParameterValues[m.Parameter1.Name], 2)))
		for _, cell := range row {
			sb.WriteString(fmt.Sprintf(" %12s", inr.Compact(cell.KeyMetrics.MonthlyContribution, true)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Largest swing:      %s\n", m.Summary.MostSensitiveCombination))
	sb.WriteString(fmt.Sprintf("Interaction effect: %s\n", signedPercent(m.Summary.InteractionEffect)))
	sb.WriteString(fmt.Sprintf("Risk level:         %s\n", m.Summary.RiskLevel))
	for _, rec := range m.Summary.Recommendations {
		sb.WriteString(fmt.Sprintf("  • %s\n", rec))
	}
	return sb.String()
}

func writeSummary(sb *strings.Builder, s domain.SensitivitySummary) {
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	names := make([]string, 0, len(s.SensitivityScores))
	for name := range s.SensitivityScores {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("  %-16s %s%% per point\n", name, s.SensitivityScores[name].StringFixed(2)))
	}
	sb.WriteString(fmt.Sprintf("Most sensitive: %s\n", s.MostSensitiveParameter))
	sb.WriteString(fmt.Sprintf("Risk level:     %s\n", s.RiskLevel))
	for _, rec := range s.Recommendations {
		sb.WriteString(fmt.Sprintf("  • %s\n", rec))
	}
}

func signedPercent(pct decimal.Decimal) string {
	sign := ""
	if pct.IsPositive() {
		sign = "+"
	}
	return sign + pct.StringFixed(2) + "%"
}

func depletionLabel(age *int) string {
	if age == nil {
		return "-"
	}
	return fmt.Sprintf("age %d", *age)
}

// SensitivityJSONFormatter renders sweeps as JSON
type SensitivityJSONFormatter struct {
	Pretty bool
}

// Format marshals a single- or multi-parameter analysis
func (jf SensitivityJSONFormatter) Format(a *domain.ParameterSensitivityAnalysis) (string, error) {
	return jf.marshal(a)
}

// FormatMatrix marshals a two-parameter sweep
func (jf SensitivityJSONFormatter) FormatMatrix(m *domain.SensitivityMatrix) (string, error) {
	return jf.marshal(m)
}

func (jf SensitivityJSONFormatter) marshal(v any) (string, error) {
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

// SensitivityCSVFormatter writes one row per computed point
type SensitivityCSVFormatter struct{}

var sensitivityCSVHeader = []string{
	"Scenario", "Parameter", "Value", "Monthly Contribution", "Contribution Change",
	"Contribution % Change", "Lifetime Contribution", "Final Value", "Depletion Age", "Unreachable Goals",
}

// Format writes a single- or multi-parameter analysis
func (SensitivityCSVFormatter) Format(a *domain.ParameterSensitivityAnalysis) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(sensitivityCSVHeader); err != nil {
		return "", err
	}
	for _, r := range a.Results {
		if err := w.Write(sensitivityRow(r, parameterNames(r))); err != nil {
			return "", err
		}
	}
	w.Flush()
	return buf.String(), w.Error()
}

// FormatMatrix writes every matrix cell
func (SensitivityCSVFormatter) FormatMatrix(m *domain.SensitivityMatrix) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(sensitivityCSVHeader); err != nil {
		return "", err
	}
	names := []string{m.Parameter1.Name, m.Parameter2.Name}
	for _, row := range m.MatrixResults {
		for _, cell := range row {
			if err := w.Write(sensitivityRow(cell, names)); err != nil {
				return "", err
			}
		}
	}
	w.Flush()
	return buf.String(), w.Error()
}

func parameterNames(r domain.SensitivityResult) []string {
	names := make([]string, 0, len(r.ParameterValues))
	for name := range r.ParameterValues {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sensitivityRow(r domain.SensitivityResult, names []string) []string {
	values := make([]string, len(names))
	for i, name := range names {
		values[i] = r.ParameterValues[name].String()
	}
	depletion := ""
	if r.KeyMetrics.DepletionAge != nil {
		depletion = fmt.Sprintf("%d", *r.KeyMetrics.DepletionAge)
	}
	return []string{
		r.ScenarioName,
		strings.Join(names, "+"),
		strings.Join(values, "+"),
		r.KeyMetrics.MonthlyContribution.StringFixed(2),
		r.KeyMetrics.ContributionChange.StringFixed(2),
		r.KeyMetrics.ContributionChangePct.StringFixed(2),
		r.KeyMetrics.LifetimeContribution.StringFixed(2),
		r.KeyMetrics.FinalValue.StringFixed(2),
		depletion,
		fmt.Sprintf("%d", r.KeyMetrics.UnreachableGoals),
	}
}
