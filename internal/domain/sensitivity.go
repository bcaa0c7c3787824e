package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Sweepable plan parameters
const (
	ParamEquityReturn  = "equity_return"
	ParamDebtReturn    = "debt_return"
	ParamInflationRate = "inflation_rate"
	ParamStepUpRate    = "step_up_rate"
)

// SensitivityParameter is a plan parameter swept across a range of rates
type SensitivityParameter struct {
	Name        string          `yaml:"name" json:"name"`
	MinValue    decimal.Decimal `yaml:"min_value" json:"min_value"`
	MaxValue    decimal.Decimal `yaml:"max_value" json:"max_value"`
	Steps       int             `yaml:"steps" json:"steps"`
	BaseValue   decimal.Decimal `yaml:"base_value" json:"base_value"` // the plan's own value, filled in by the analyzer
	Description string          `yaml:"description" json:"description"`
}

// ParameterSensitivityAnalysis holds one or more single-parameter sweeps
type ParameterSensitivityAnalysis struct {
	Parameters   []SensitivityParameter `json:"parameters"`
	Base         SensitivityMetrics     `json:"base"`
	Results      []SensitivityResult    `json:"results"`
	Summary      SensitivitySummary     `json:"summary"`
	AnalysisType string                 `json:"analysis_type"` // "single" or "multi"
}

// SensitivityResult is the plan computed at one point of a sweep
type SensitivityResult struct {
	ParameterValues map[string]decimal.Decimal `json:"parameter_values"`
	ScenarioName    string                     `json:"scenario_name"`
	KeyMetrics      SensitivityMetrics         `json:"key_metrics"`
}

// SensitivityMetrics are the outputs compared across a sweep
type SensitivityMetrics struct {
	MonthlyContribution   decimal.Decimal `json:"monthly_contribution"`
	LifetimeContribution  decimal.Decimal `json:"lifetime_contribution"`
	FinalValue            decimal.Decimal `json:"final_value"`
	DepletionAge          *int            `json:"depletion_age,omitempty"`
	UnreachableGoals      int             `json:"unreachable_goals"`
	ContributionChange    decimal.Decimal `json:"contribution_change"`
	ContributionChangePct decimal.Decimal `json:"contribution_change_pct"`
}

// SensitivitySummary scores each parameter by the percentage change in the
// monthly contribution per percentage point moved
type SensitivitySummary struct {
	MostSensitiveParameter string                     `json:"most_sensitive_parameter"`
	SensitivityScores      map[string]decimal.Decimal `json:"sensitivity_scores"`
	Recommendations        []string                   `json:"recommendations"`
	RiskLevel              string                     `json:"risk_level"` // "LOW", "MEDIUM", "HIGH", "CRITICAL"
}

// SensitivityMatrix is a two-parameter sweep
type SensitivityMatrix struct {
	Parameter1    SensitivityParameter     `json:"parameter1"`
	Parameter2    SensitivityParameter     `json:"parameter2"`
	Base          SensitivityMetrics       `json:"base"`
	MatrixResults [][]SensitivityResult    `json:"matrix_results"`
	Summary       SensitivityMatrixSummary `json:"summary"`
}

// SensitivityMatrixSummary reports how far the joint effect of two
// parameters departs from the sum of their separate effects
type SensitivityMatrixSummary struct {
	MostSensitiveCombination string          `json:"most_sensitive_combination"`
	InteractionEffect        decimal.Decimal `json:"interaction_effect"` // percentage points of contribution change
	Recommendations          []string        `json:"recommendations"`
	RiskLevel                string          `json:"risk_level"`
}

// Common sensitivity parameters. BaseValue is left zero; it comes from the plan.
var (
	EquityReturnParam = SensitivityParameter{
		Name:        ParamEquityReturn,
		MinValue:    decimal.RequireFromString("0.08"),
		MaxValue:    decimal.RequireFromString("0.14"),
		Steps:       7,
		Description: "Expected annual equity return",
	}

	DebtReturnParam = SensitivityParameter{
		Name:        ParamDebtReturn,
		MinValue:    decimal.RequireFromString("0.04"),
		MaxValue:    decimal.RequireFromString("0.08"),
		Steps:       5,
		Description: "Expected annual debt return",
	}

	InflationRateParam = SensitivityParameter{
		Name:        ParamInflationRate,
		MinValue:    decimal.RequireFromString("0.04"),
		MaxValue:    decimal.RequireFromString("0.08"),
		Steps:       5,
		Description: "Inflation applied to every goal",
	}

	StepUpRateParam = SensitivityParameter{
		Name:        ParamStepUpRate,
		MinValue:    decimal.Zero,
		MaxValue:    decimal.RequireFromString("0.10"),
		Steps:       5,
		Description: "Yearly increase in contributions",
	}
)

// GetCommonParameters returns the parameters every plan can be swept on
func GetCommonParameters() []SensitivityParameter {
	return []SensitivityParameter{
		EquityReturnParam,
		DebtReturnParam,
		InflationRateParam,
		StepUpRateParam,
	}
}

// LookupSensitivityParameter returns the common parameter with the given name
func LookupSensitivityParameter(name string) (SensitivityParameter, error) {
	for _, p := range GetCommonParameters() {
		if p.Name == name {
			return p, nil
		}
	}
	return SensitivityParameter{}, fmt.Errorf("unknown sensitivity parameter %q", name)
}

// ParseSensitivityParameter reads "name", "name:min-max" or
// "name:min-max:steps". Range values are percentages, so
// "equity_return:8-14:7" sweeps 0.08 to 0.14 in seven steps. Omitted parts
// keep the common parameter's defaults.
func ParseSensitivityParameter(s string) (SensitivityParameter, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) > 3 {
		return SensitivityParameter{}, fmt.Errorf("invalid parameter %q: expected name:min-max:steps", s)
	}

	param, err := LookupSensitivityParameter(strings.TrimSpace(parts[0]))
	if err != nil {
		return SensitivityParameter{}, err
	}

	if len(parts) >= 2 {
		lo, hi, ok := strings.Cut(parts[1], "-")
		if !ok {
			return SensitivityParameter{}, fmt.Errorf("invalid range %q: expected min-max", parts[1])
		}
		if param.MinValue, err = parsePercent(lo); err != nil {
			return SensitivityParameter{}, fmt.Errorf("invalid range %q: %w", parts[1], err)
		}
		if param.MaxValue, err = parsePercent(hi); err != nil {
			return SensitivityParameter{}, fmt.Errorf("invalid range %q: %w", parts[1], err)
		}
	}

	if len(parts) == 3 {
		steps, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return SensitivityParameter{}, fmt.Errorf("invalid steps %q: %w", parts[2], err)
		}
		param.Steps = steps
	}

	if param.MinValue.GreaterThan(param.MaxValue) {
		return SensitivityParameter{}, fmt.Errorf("invalid range for %s: min above max", param.Name)
	}
	return param, nil
}

func parsePercent(s string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if err != nil {
		return decimal.Zero, err
	}
	return v.Div(decimal.NewFromInt(100)), nil
}

// DetermineRiskLevel grades the highest sensitivity score
func (ss *SensitivitySummary) DetermineRiskLevel() string {
	maxScore := decimal.Zero
	for _, score := range ss.SensitivityScores {
		if score.GreaterThan(maxScore) {
			maxScore = score
		}
	}
	return RiskLevelFor(maxScore)
}

// RiskLevelFor grades a sensitivity score
func RiskLevelFor(score decimal.Decimal) string {
	switch {
	case score.LessThan(decimal.NewFromInt(5)):
		return "LOW"
	case score.LessThan(decimal.NewFromInt(15)):
		return "MEDIUM"
	case score.LessThan(decimal.NewFromInt(30)):
		return "HIGH"
	default:
		return "CRITICAL"
	}
}

// GenerateRecommendations suggests follow-ups from the risk level and the
// most sensitive parameter
func (ss *SensitivitySummary) GenerateRecommendations() []string {
	var recommendations []string

	switch ss.DetermineRiskLevel() {
	case "LOW":
		recommendations = append(recommendations, "Plan is robust to parameter changes")
	case "MEDIUM":
		recommendations = append(recommendations, "Revisit the plan when assumptions move by a point or more")
	case "HIGH":
		recommendations = append(recommendations, "Plan is sensitive to parameter changes")
		recommendations = append(recommendations, "Keep a contribution buffer above the computed SIP")
	case "CRITICAL":
		recommendations = append(recommendations, "⚠️ Plan is highly sensitive to parameter changes")
		recommendations = append(recommendations, "Use conservative assumptions and review the plan every year")
	}

	switch ss.MostSensitiveParameter {
	case ParamEquityReturn:
		recommendations = append(recommendations, "Consider the Safe or Regular presets for goals close to their target age")
	case ParamDebtReturn:
		recommendations = append(recommendations, "Debt returns drive the post-accumulation phase; check the retirement mix")
	case ParamInflationRate:
		recommendations = append(recommendations, "Targets grow quickly with inflation; re-estimate goal costs regularly")
	case ParamStepUpRate:
		recommendations = append(recommendations, "Contributions depend heavily on stepping up; confirm the yearly increase is sustainable")
	}

	return recommendations
}
