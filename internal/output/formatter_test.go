package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rgehrsitz/capplan/internal/calculation"
	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestReport(t *testing.T) *Report {
	t.Helper()
	post := domain.PresetCustom
	zero := decimal.Zero
	plan := &domain.Plan{
		Profile: domain.Profile{
			Name:    "Asha",
			Age:     31,
			Savings: decimal.NewFromInt(1000000),
			StepUp:  domain.StepUp{AnnualRate: decimal.RequireFromString("0.05")},
			Assumptions: domain.Assumptions{
				EquityAnnual: decimal.RequireFromString("0.12"),
				DebtAnnual:   decimal.RequireFromString("0.07"),
			},
		},
		Goals: domain.Goals{
			&domain.RetirementGoal{
				GoalBase: domain.GoalBase{
					Type: domain.GoalRetirement, ID: "retirement", Title: "Retirement",
					Inflation:            decimal.RequireFromString("0.05"),
					AccumulationStartAge: 31, AccumulationStopAge: 60,
					DuringPreset: domain.PresetRegular, PostPreset: &post, CustomEquityPost: &zero,
				},
				MonthlySpendToday: decimal.NewFromInt(100000),
				RetireAge:         60,
				PlanTillAge:       85,
			},
			&domain.PurchaseGoal{
				GoalBase: domain.GoalBase{
					Type: domain.GoalPurchase, ID: "bike", Title: "Bike",
					Inflation:            decimal.RequireFromString("0.05"),
					AccumulationStartAge: 31, AccumulationStopAge: 33,
					DuringPreset: domain.PresetSafe,
				},
				PurchaseAge:   33,
				ItemCostToday: decimal.NewFromInt(200000),
			},
		},
		Allocations: []domain.Allocation{{GoalID: "bike", Lumpsum: decimal.NewFromInt(400000)}},
	}
	out, err := calculation.NewEngine().Compute(plan)
	require.NoError(t, err)
	report := NewReport(plan, out)
	report.GeneratedAt = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	return report
}

func TestFormatterFunc(t *testing.T) {
	report := buildTestReport(t)
	var received *Report
	formatter := FormatterFunc{
		ID: "test-formatter",
		F: func(r *Report) ([]byte, error) {
			received = r
			return []byte("test output"), nil
		},
	}

	out, err := formatter.Format(report)
	require.NoError(t, err)
	assert.Same(t, report, received)
	assert.Equal(t, []byte("test output"), out)
	assert.Equal(t, "test-formatter", formatter.Name())
}

func TestWriteFormatted(t *testing.T) {
	t.Chdir(t.TempDir())

	formatter := FormatterFunc{ID: "txt", F: func(*Report) ([]byte, error) { return []byte("content"), nil }}
	filename, err := WriteFormatted(formatter, buildTestReport(t), "txt")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "capital_plan_report_"))
	assert.True(t, strings.HasSuffix(filename, ".txt"))

	content, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "content", string(content))

	failing := FormatterFunc{ID: "bad", F: func(*Report) ([]byte, error) { return nil, fmt.Errorf("formatter error") }}
	filename, err = WriteFormatted(failing, buildTestReport(t), "txt")
	require.Error(t, err)
	assert.Empty(t, filename)
	assert.Contains(t, err.Error(), "formatter error")
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"console", "console-lite", "csv", "detailed-csv", "html", "json", "pdf"}, AvailableFormatterNames())
	assert.Equal(t, []string{"console-verbose", "lite", "summary", "verbose"}, AvailableFormatAliases())

	f := GetFormatterByName("Verbose")
	require.NotNil(t, f)
	assert.Equal(t, "console", f.Name())
	assert.Equal(t, "console-lite", GetFormatterByName("summary").Name())
	assert.Nil(t, GetFormatterByName("non-existent"))
}

func TestReport_GoalRows(t *testing.T) {
	report := buildTestReport(t)
	rows := report.GoalRows()
	require.Len(t, rows, 2)

	assert.Equal(t, "Retirement", rows[0].Title)
	assert.Equal(t, "Contribution required", rows[0].Status)
	assert.Equal(t, "31-59", rows[0].Window, "the last contribution lands in the year before retirement")

	assert.Equal(t, "Bike", rows[1].Title)
	assert.Equal(t, "Funded by lumpsum", rows[1].Status, "₹4L at 10% equity covers a ₹2.2L bike")
	assert.Equal(t, "-", rows[1].Window)
	assert.Equal(t, "₹4.0L", rows[1].Lumpsum)

	assert.Contains(t, Assumptions(report.Plan), "Unallocated savings of ₹600,000 are not invested towards any goal")
}

func TestConsoleFormatter(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(buildTestReport(t))
	require.NoError(t, err)
	content := string(out)
	for _, want := range []string{
		"CAPITAL PLAN REPORT", "Saver:        Asha (age 31)", "Savings:      ₹1,000,000",
		"KEY ASSUMPTIONS", "Equity returns: 12.0% annually", "GOALS", "Retirement", "Funded by lumpsum",
		"TOTAL MONTHLY CONTRIBUTION:", "PORTFOLIO PROJECTION", "Final value:",
	} {
		assert.Contains(t, content, want)
	}
}

func TestConsoleLiteFormatter(t *testing.T) {
	out, err := ConsoleLiteFormatter{}.Format(buildTestReport(t))
	require.NoError(t, err)
	content := string(out)
	assert.Contains(t, content, "CAPITAL PLAN SUMMARY")
	assert.Contains(t, content, "• Bike: ₹0/mo (Funded by lumpsum)")
}

func TestCSVFormatters(t *testing.T) {
	report := buildTestReport(t)

	out, err := CSVSummarizer{}.Format(report)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "GoalID", records[0][0])
	assert.Equal(t, "retirement", records[1][0])
	assert.NotEmpty(t, records[1][8], "retirement rows carry the corpus")
	assert.Equal(t, "bike", records[2][0])
	assert.Equal(t, "funded_by_lumpsum", records[2][3])
	assert.Empty(t, records[2][8])

	out, err = DetailedCSVFormatter{}.Format(report)
	require.NoError(t, err)
	records, err = csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, len(report.Output.Chart)+1)
	assert.Equal(t, "Year", records[0][0])
	assert.Equal(t, "31", records[1][1])
}

func TestJSONFormatter(t *testing.T) {
	out, err := JSONFormatter{}.Format(buildTestReport(t))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	for _, key := range []string{"generated_at", "plan", "output", "assumptions"} {
		assert.Contains(t, doc, key)
	}
	output := doc["output"].(map[string]any)
	assert.Contains(t, output, "per_goal")
	assert.Contains(t, output, "total_monthly_contribution")
}

func TestHTMLFormatter(t *testing.T) {
	out, err := HTMLFormatter{}.Format(buildTestReport(t))
	require.NoError(t, err)
	content := string(out)
	assert.Contains(t, content, "<!DOCTYPE html>")
	assert.Contains(t, content, "<title>Capital Plan: Asha</title>")
	assert.Contains(t, content, "Capital Plan Report")
	assert.Contains(t, content, "Generated 14 October 2026")
	assert.Contains(t, content, "<td>Bike</td>")
}

func TestPDFFormatter(t *testing.T) {
	out, err := PDFFormatter{}.Format(buildTestReport(t))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Equal(t, "Rs 1,000", pdfText("₹1,000"))
}
