package calculation

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/shopspring/decimal"
)

const maxSensitivitySteps = 50

// SensitivityAnalyzer sweeps plan parameters and recomputes the plan at
// every point
type SensitivityAnalyzer struct {
	engine *Engine
}

// NewSensitivityAnalyzer creates an analyzer; a nil engine uses NewEngine
func NewSensitivityAnalyzer(engine *Engine) *SensitivityAnalyzer {
	if engine == nil {
		engine = NewEngine()
	}
	return &SensitivityAnalyzer{engine: engine}
}

// AnalyzeSingleParameter sweeps one parameter
func (sa *SensitivityAnalyzer) AnalyzeSingleParameter(
	ctx context.Context,
	plan *domain.Plan,
	parameter domain.SensitivityParameter,
) (*domain.ParameterSensitivityAnalysis, error) {
	base, err := sa.baseMetrics(plan)
	if err != nil {
		return nil, err
	}

	parameter, err = sa.prepare(plan, parameter)
	if err != nil {
		return nil, err
	}

	results, err := sa.sweep(ctx, plan, parameter, base)
	if err != nil {
		return nil, err
	}

	summary := domain.SensitivitySummary{
		MostSensitiveParameter: parameter.Name,
		SensitivityScores: map[string]decimal.Decimal{
			parameter.Name: sensitivityScore(results, parameter),
		},
	}
	summary.RiskLevel = summary.DetermineRiskLevel()
	summary.Recommendations = summary.GenerateRecommendations()

	return &domain.ParameterSensitivityAnalysis{
		Parameters:   []domain.SensitivityParameter{parameter},
		Base:         base,
		Results:      results,
		Summary:      summary,
		AnalysisType: "single",
	}, nil
}

// AnalyzeMultipleParameters sweeps each parameter on its own and ranks them
func (sa *SensitivityAnalyzer) AnalyzeMultipleParameters(
	ctx context.Context,
	plan *domain.Plan,
	parameters []domain.SensitivityParameter,
) (*domain.ParameterSensitivityAnalysis, error) {
	if len(parameters) == 0 {
		return nil, fmt.Errorf("at least one sensitivity parameter is required")
	}

	base, err := sa.baseMetrics(plan)
	if err != nil {
		return nil, err
	}

	analysis := &domain.ParameterSensitivityAnalysis{
		Base:         base,
		AnalysisType: "multi",
		Summary: domain.SensitivitySummary{
			SensitivityScores: make(map[string]decimal.Decimal, len(parameters)),
		},
	}

	maxScore := decimal.NewFromInt(-1)
	for _, param := range parameters {
		param, err := sa.prepare(plan, param)
		if err != nil {
			return nil, err
		}
		if _, dup := analysis.Summary.SensitivityScores[param.Name]; dup {
			return nil, fmt.Errorf("parameter %s given more than once", param.Name)
		}

		results, err := sa.sweep(ctx, plan, param, base)
		if err != nil {
			return nil, fmt.Errorf("failed to analyze parameter %s: %w", param.Name, err)
		}

		score := sensitivityScore(results, param)
		analysis.Summary.SensitivityScores[param.Name] = score
		if score.GreaterThan(maxScore) {
			maxScore = score
			analysis.Summary.MostSensitiveParameter = param.Name
		}

		analysis.Parameters = append(analysis.Parameters, param)
		analysis.Results = append(analysis.Results, results...)
	}

	analysis.Summary.RiskLevel = analysis.Summary.DetermineRiskLevel()
	analysis.Summary.Recommendations = analysis.Summary.GenerateRecommendations()
	return analysis, nil
}

// AnalyzeParameterMatrix sweeps two parameters over every combination
func (sa *SensitivityAnalyzer) AnalyzeParameterMatrix(
	ctx context.Context,
	plan *domain.Plan,
	param1, param2 domain.SensitivityParameter,
) (*domain.SensitivityMatrix, error) {
	if param1.Name == param2.Name {
		return nil, fmt.Errorf("matrix analysis needs two different parameters, got %s twice", param1.Name)
	}

	base, err := sa.baseMetrics(plan)
	if err != nil {
		return nil, err
	}
	if param1, err = sa.prepare(plan, param1); err != nil {
		return nil, err
	}
	if param2, err = sa.prepare(plan, param2); err != nil {
		return nil, err
	}

	values1 := generateParameterValues(param1)
	values2 := generateParameterValues(param2)

	matrix := &domain.SensitivityMatrix{
		Parameter1:    param1,
		Parameter2:    param2,
		Base:          base,
		MatrixResults: make([][]domain.SensitivityResult, len(values1)),
	}

	var maxScore, maxChange decimal.Decimal
	for i, v1 := range values1 {
		matrix.MatrixResults[i] = make([]domain.SensitivityResult, len(values2))
		for j, v2 := range values2 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			values := map[string]decimal.Decimal{param1.Name: v1, param2.Name: v2}
			result, err := sa.evaluate(plan, values, base)
			if err != nil {
				return nil, fmt.Errorf("failed to compute %s=%s, %s=%s: %w",
					param1.Name, v1.String(), param2.Name, v2.String(), err)
			}
			result.ScenarioName = scenarioName(param1.Name, v1) + " " + scenarioName(param2.Name, v2)
			matrix.MatrixResults[i][j] = *result

			change := result.KeyMetrics.ContributionChangePct.Abs()
			if change.GreaterThan(maxChange) {
				maxChange = change
				matrix.Summary.MostSensitiveCombination = result.ScenarioName
			}

			points := v1.Sub(param1.BaseValue).Abs().Add(v2.Sub(param2.BaseValue).Abs()).Mul(hundred)
			if points.IsPositive() {
				if s := change.Div(points); s.GreaterThan(maxScore) {
					maxScore = s
				}
			}
		}
	}

	interaction, err := sa.interactionEffect(plan, param1, param2, base)
	if err != nil {
		return nil, err
	}
	matrix.Summary.InteractionEffect = interaction
	matrix.Summary.RiskLevel = domain.RiskLevelFor(maxScore)
	matrix.Summary.Recommendations = matrixRecommendations(matrix)
	return matrix, nil
}

// interactionEffect compares moving both parameters to their maxima with the
// sum of moving each alone
func (sa *SensitivityAnalyzer) interactionEffect(plan *domain.Plan, p1, p2 domain.SensitivityParameter, base domain.SensitivityMetrics) (decimal.Decimal, error) {
	joint, err := sa.evaluate(plan, map[string]decimal.Decimal{p1.Name: p1.MaxValue, p2.Name: p2.MaxValue}, base)
	if err != nil {
		return decimal.Zero, err
	}
	only1, err := sa.evaluate(plan, map[string]decimal.Decimal{p1.Name: p1.MaxValue}, base)
	if err != nil {
		return decimal.Zero, err
	}
	only2, err := sa.evaluate(plan, map[string]decimal.Decimal{p2.Name: p2.MaxValue}, base)
	if err != nil {
		return decimal.Zero, err
	}

	separate := only1.KeyMetrics.ContributionChangePct.Add(only2.KeyMetrics.ContributionChangePct)
	return joint.KeyMetrics.ContributionChangePct.Sub(separate).Round(2), nil
}

func matrixRecommendations(m *domain.SensitivityMatrix) []string {
	recs := []string{
		fmt.Sprintf("Largest swing at %s", m.Summary.MostSensitiveCombination),
	}
	if m.Summary.InteractionEffect.Abs().GreaterThan(decimal.NewFromInt(5)) {
		recs = append(recs, fmt.Sprintf("%s and %s compound each other; stress them together",
			m.Parameter1.Name, m.Parameter2.Name))
	} else {
		recs = append(recs, fmt.Sprintf("%s and %s act roughly independently", m.Parameter1.Name, m.Parameter2.Name))
	}
	if m.Summary.RiskLevel == "HIGH" || m.Summary.RiskLevel == "CRITICAL" {
		recs = append(recs, "Use conservative values for both parameters")
	}
	return recs
}

func (sa *SensitivityAnalyzer) sweep(ctx context.Context, plan *domain.Plan, param domain.SensitivityParameter, base domain.SensitivityMetrics) ([]domain.SensitivityResult, error) {
	values := generateParameterValues(param)
	results := make([]domain.SensitivityResult, 0, len(values))
	for _, v := range values {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := sa.evaluate(plan, map[string]decimal.Decimal{param.Name: v}, base)
		if err != nil {
			return nil, fmt.Errorf("failed to compute %s=%s: %w", param.Name, v.String(), err)
		}
		result.ScenarioName = scenarioName(param.Name, v)
		results = append(results, *result)
	}
	return results, nil
}

func (sa *SensitivityAnalyzer) evaluate(plan *domain.Plan, values map[string]decimal.Decimal, base domain.SensitivityMetrics) (*domain.SensitivityResult, error) {
	modified := plan.DeepCopy()
	for name, v := range values {
		if err := modifyParameter(modified, name, v); err != nil {
			return nil, err
		}
	}

	out, err := sa.engine.Compute(modified)
	if err != nil {
		return nil, err
	}

	metrics := metricsFor(out)
	metrics.ContributionChange = metrics.MonthlyContribution.Sub(base.MonthlyContribution)
	if base.MonthlyContribution.IsPositive() {
		metrics.ContributionChangePct = metrics.ContributionChange.Div(base.MonthlyContribution).Mul(hundred).Round(2)
	}

	return &domain.SensitivityResult{
		ParameterValues: values,
		KeyMetrics:      metrics,
	}, nil
}

func (sa *SensitivityAnalyzer) baseMetrics(plan *domain.Plan) (domain.SensitivityMetrics, error) {
	if plan == nil {
		return domain.SensitivityMetrics{}, fmt.Errorf("plan cannot be nil")
	}
	out, err := sa.engine.Compute(plan)
	if err != nil {
		return domain.SensitivityMetrics{}, fmt.Errorf("failed to compute base plan: %w", err)
	}
	return metricsFor(out), nil
}

// prepare validates the sweep range and fills in the plan's own value
func (sa *SensitivityAnalyzer) prepare(plan *domain.Plan, param domain.SensitivityParameter) (domain.SensitivityParameter, error) {
	baseValue, err := currentParameterValue(plan, param.Name)
	if err != nil {
		return param, err
	}
	param.BaseValue = baseValue

	if param.Steps < 1 || param.Steps > maxSensitivitySteps {
		return param, fmt.Errorf("%s: steps must be between 1 and %d, got %d", param.Name, maxSensitivitySteps, param.Steps)
	}
	if param.MinValue.GreaterThan(param.MaxValue) {
		return param, fmt.Errorf("%s: min %s is above max %s", param.Name, param.MinValue.String(), param.MaxValue.String())
	}
	if param.MinValue.IsNegative() {
		return param, fmt.Errorf("%s: values cannot be negative", param.Name)
	}
	return param, nil
}

func metricsFor(out *domain.ComputedOutput) domain.SensitivityMetrics {
	m := domain.SensitivityMetrics{
		MonthlyContribution: out.TotalMonthlyContribution,
		FinalValue:          out.FinalValue(),
		DepletionAge:        out.DepletionAge,
	}
	for _, gc := range out.PerGoal {
		m.LifetimeContribution = m.LifetimeContribution.Add(gc.TotalContribution)
		if gc.Status == domain.StatusUnreachable {
			m.UnreachableGoals++
		}
	}
	return m
}

// sensitivityScore is the largest percentage change in the monthly
// contribution per percentage point the parameter moved off its base
func sensitivityScore(results []domain.SensitivityResult, param domain.SensitivityParameter) decimal.Decimal {
	score := decimal.Zero
	for _, r := range results {
		points := r.ParameterValues[param.Name].Sub(param.BaseValue).Abs().Mul(hundred)
		if !points.IsPositive() {
			continue
		}
		s := r.KeyMetrics.ContributionChangePct.Abs().Div(points)
		if s.GreaterThan(score) {
			score = s
		}
	}
	return score.Round(2)
}

// generateParameterValues spreads Steps values evenly from MinValue to
// MaxValue; a single step sweeps only the base value
func generateParameterValues(param domain.SensitivityParameter) []decimal.Decimal {
	if param.Steps <= 1 {
		return []decimal.Decimal{param.BaseValue}
	}

	stepSize := param.MaxValue.Sub(param.MinValue).Div(decimal.NewFromInt(int64(param.Steps - 1)))
	values := make([]decimal.Decimal, 0, param.Steps)
	for i := 0; i < param.Steps-1; i++ {
		values = append(values, param.MinValue.Add(stepSize.Mul(decimal.NewFromInt(int64(i)))).Round(6))
	}
	return append(values, param.MaxValue)
}

func currentParameterValue(plan *domain.Plan, name string) (decimal.Decimal, error) {
	switch name {
	case domain.ParamEquityReturn:
		return plan.Profile.Assumptions.EquityAnnual, nil
	case domain.ParamDebtReturn:
		return plan.Profile.Assumptions.DebtAnnual, nil
	case domain.ParamStepUpRate:
		return plan.Profile.StepUp.AnnualRate, nil
	case domain.ParamInflationRate:
		if len(plan.Goals) == 0 {
			return decimal.Zero, nil
		}
		sum := decimal.Zero
		for _, g := range plan.Goals {
			sum = sum.Add(g.Common().Inflation)
		}
		return sum.Div(decimal.NewFromInt(int64(len(plan.Goals)))).Round(6), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown sensitivity parameter %q", name)
	}
}

// modifyParameter sets a parameter on a plan the caller owns
func modifyParameter(plan *domain.Plan, name string, value decimal.Decimal) error {
	switch name {
	case domain.ParamEquityReturn:
		plan.Profile.Assumptions.EquityAnnual = value
	case domain.ParamDebtReturn:
		plan.Profile.Assumptions.DebtAnnual = value
	case domain.ParamStepUpRate:
		plan.Profile.StepUp.AnnualRate = value
	case domain.ParamInflationRate:
		for _, g := range plan.Goals {
			g.Common().Inflation = value
		}
	default:
		return fmt.Errorf("unknown sensitivity parameter %q", name)
	}
	return nil
}

func scenarioName(name string, value decimal.Decimal) string {
	return fmt.Sprintf("%s=%s%%", name, value.Mul(hundred).StringFixed(2))
}
