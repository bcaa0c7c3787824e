package compare

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/capplan/internal/calculation"
	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/rgehrsitz/capplan/internal/transform"
)

// CompareEngine orchestrates plan comparison
type CompareEngine struct {
	CalcEngine        *calculation.Engine
	MetricsCalculator *MetricsCalculator
	TemplateRegistry  *transform.TemplateRegistry
}

// NewCompareEngine creates a new comparison engine
func NewCompareEngine(calcEngine *calculation.Engine) *CompareEngine {
	return &CompareEngine{
		CalcEngine:        calcEngine,
		MetricsCalculator: NewMetricsCalculator(),
	}
}

// CompareOptions configures comparison behavior
type CompareOptions struct {
	BaseScenarioName string                    // Display name of the unmodified plan
	Templates        []string                  // Template names to apply, one variant each
	Transforms       []transform.PlanTransform // Ad-hoc edits combined into one extra variant
	ConfigPath       string
}

// NamedPlan pairs a plan with the label it is reported under
type NamedPlan struct {
	Name        string
	Description string
	Plan        *domain.Plan
}

// Compare computes the base plan and one variant per template, plus one
// for the ad-hoc transforms when any are given
func (ce *CompareEngine) Compare(
	ctx context.Context,
	plan *domain.Plan,
	options CompareOptions,
) (*ComparisonSet, error) {
	if plan == nil {
		return nil, fmt.Errorf("base plan cannot be nil")
	}
	baseName := options.BaseScenarioName
	if baseName == "" {
		baseName = "base"
	}

	ce.TemplateRegistry = transform.CreateBuiltInTemplates(plan)

	alternatives := make([]NamedPlan, 0, len(options.Templates)+1)
	for _, templateName := range options.Templates {
		template, ok := ce.TemplateRegistry.Get(templateName)
		if !ok {
			return nil, fmt.Errorf("template %s not found", templateName)
		}

		modified, err := transform.ApplyTemplate(plan, template)
		if err != nil {
			return nil, fmt.Errorf("failed to apply template %s: %w", templateName, err)
		}
		alternatives = append(alternatives, NamedPlan{
			Name:        baseName + "_" + template.Name,
			Description: template.Description,
			Plan:        modified,
		})
	}

	if len(options.Transforms) > 0 {
		modified, err := transform.ApplyTransforms(plan, options.Transforms)
		if err != nil {
			return nil, fmt.Errorf("failed to apply transforms: %w", err)
		}
		desc := ""
		for i, t := range options.Transforms {
			if i > 0 {
				desc += "; "
			}
			desc += t.Description()
		}
		alternatives = append(alternatives, NamedPlan{Name: baseName + "_custom", Description: desc, Plan: modified})
	}

	compSet, err := ce.ComparePlans(ctx, NamedPlan{Name: baseName, Plan: plan}, alternatives)
	if err != nil {
		return nil, err
	}
	compSet.ConfigPath = options.ConfigPath
	return compSet, nil
}

// ComparePlans compares explicit plans against a base
func (ce *CompareEngine) ComparePlans(
	ctx context.Context,
	base NamedPlan,
	alternatives []NamedPlan,
) (*ComparisonSet, error) {
	if base.Plan == nil {
		return nil, fmt.Errorf("base plan %s cannot be nil", base.Name)
	}

	baseOut, err := ce.CalcEngine.Compute(base.Plan)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate base plan: %w", err)
	}
	baseResult := ce.MetricsCalculator.CalculateMetrics(base.Name, base.Plan, baseOut)
	baseResult.Description = base.Description

	results := make([]ComparisonResult, 0, len(alternatives))
	for _, alt := range alternatives {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if alt.Plan == nil {
			return nil, fmt.Errorf("plan %s cannot be nil", alt.Name)
		}

		out, err := ce.CalcEngine.Compute(alt.Plan)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate plan %s: %w", alt.Name, err)
		}

		altResult := ce.MetricsCalculator.CalculateMetrics(alt.Name, alt.Plan, out)
		altResult.Description = alt.Description
		altResult = ce.MetricsCalculator.CalculateComparison(altResult, baseResult)
		results = append(results, altResult)
	}

	compSet := &ComparisonSet{
		BaseScenarioName:   base.Name,
		BaseResult:         &baseResult,
		AlternativeResults: results,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)

	return compSet, nil
}
