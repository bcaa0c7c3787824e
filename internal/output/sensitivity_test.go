package output

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleSensitivity() *domain.ParameterSensitivityAnalysis {
	depletes := 78
	point := func(v, monthly, pct string, depletion *int) domain.SensitivityResult {
		return domain.SensitivityResult{
			ParameterValues: map[string]decimal.Decimal{domain.ParamEquityReturn: d(v)},
			ScenarioName:    "equity_return=" + v,
			KeyMetrics: domain.SensitivityMetrics{
				MonthlyContribution:   d(monthly),
				FinalValue:            d("25000000"),
				DepletionAge:          depletion,
				ContributionChangePct: d(pct),
			},
		}
	}
	param := domain.EquityReturnParam
	param.BaseValue = d("0.12")
	return &domain.ParameterSensitivityAnalysis{
		Parameters:   []domain.SensitivityParameter{param},
		Base:         domain.SensitivityMetrics{MonthlyContribution: d("24000"), FinalValue: d("25000000")},
		AnalysisType: "single",
		Results: []domain.SensitivityResult{
			point("0.10", "30000", "25", &depletes),
			point("0.12", "24000", "0", nil),
			point("0.14", "19000", "-20.83", nil),
		},
		Summary: domain.SensitivitySummary{
			MostSensitiveParameter: domain.ParamEquityReturn,
			SensitivityScores:      map[string]decimal.Decimal{domain.ParamEquityReturn: d("12.5")},
			RiskLevel:              "MEDIUM",
			Recommendations:        []string{"Revisit the plan when assumptions move by a point or more"},
		},
	}
}

func sampleMatrix() *domain.SensitivityMatrix {
	cell := func(eq, su, monthly string) domain.SensitivityResult {
		return domain.SensitivityResult{
			ParameterValues: map[string]decimal.Decimal{domain.ParamEquityReturn: d(eq), domain.ParamStepUpRate: d(su)},
			ScenarioName:    "equity_return=" + eq + " step_up_rate=" + su,
			KeyMetrics:      domain.SensitivityMetrics{MonthlyContribution: d(monthly)},
		}
	}
	return &domain.SensitivityMatrix{
		Parameter1: domain.EquityReturnParam,
		Parameter2: domain.StepUpRateParam,
		Base:       domain.SensitivityMetrics{MonthlyContribution: d("24000")},
		MatrixResults: [][]domain.SensitivityResult{
			{cell("0.10", "0", "52000"), cell("0.10", "0.1", "21000")},
			{cell("0.14", "0", "33000"), cell("0.14", "0.1", "12000")},
		},
		Summary: domain.SensitivityMatrixSummary{
			MostSensitiveCombination: "equity_return=0.10 step_up_rate=0",
			InteractionEffect:        d("7.5"),
			RiskLevel:                "HIGH",
			Recommendations:          []string{"Use conservative values for both parameters"},
		},
	}
}

func TestSensitivityConsoleFormatter(t *testing.T) {
	out := SensitivityConsoleFormatter{}.Format(sampleSensitivity())

	assert.Contains(t, out, "SENSITIVITY ANALYSIS")
	assert.Contains(t, out, "equity_return (plan value 12.00%)")
	assert.Contains(t, out, "10.00%")
	assert.Contains(t, out, "+25.00%")
	assert.Contains(t, out, "-20.83%")
	assert.Contains(t, out, "age 78")
	assert.Contains(t, out, "12.50% per point")
	assert.Contains(t, out, "Risk level:     MEDIUM")
}

func TestSensitivityConsoleFormatter_Matrix(t *testing.T) {
	out := SensitivityConsoleFormatter{}.FormatMatrix(sampleMatrix())

	assert.Contains(t, out, "SENSITIVITY MATRIX")
	assert.Contains(t, out, "Rows: equity_return, columns: step_up_rate")
	assert.Contains(t, out, "14.00%")
	assert.Contains(t, out, "+7.50%")
	assert.Contains(t, out, "HIGH")
	// a header line plus one line per row
	grid := strings.Split(out, "\n\n")[1]
	assert.Len(t, strings.Split(strings.TrimSpace(grid), "\n"), 3)
}

func TestSensitivityJSONFormatter(t *testing.T) {
	out, err := SensitivityJSONFormatter{Pretty: true}.Format(sampleSensitivity())
	require.NoError(t, err)

	var decoded domain.ParameterSensitivityAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "single", decoded.AnalysisType)
	assert.Len(t, decoded.Results, 3)

	out, err = SensitivityJSONFormatter{}.FormatMatrix(sampleMatrix())
	require.NoError(t, err)
	assert.NotContains(t, out, "\n")
	assert.Contains(t, out, `"interaction_effect"`)
}

func TestSensitivityCSVFormatter(t *testing.T) {
	out, err := SensitivityCSVFormatter{}.Format(sampleSensitivity())
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Scenario", rows[0][0])
	assert.Equal(t, "equity_return", rows[1][1])
	assert.Equal(t, "30000.00", rows[1][3])
	assert.Equal(t, "78", rows[1][8])
	assert.Equal(t, "", rows[2][8])

	out, err = SensitivityCSVFormatter{}.FormatMatrix(sampleMatrix())
	require.NoError(t, err)
	rows, err = csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "equity_return+step_up_rate", rows[1][1])
	assert.Equal(t, "0.1+0", rows[1][2])
}
