package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/shopspring/decimal"
)

// TemplateRegistry manages built-in what-if templates
type TemplateRegistry struct {
	templates map[string]Template
}

// Template represents a named collection of transforms
type Template struct {
	Name        string
	Description string
	Transforms  []PlanTransform
}

// NewTemplateRegistry creates an empty template registry
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]Template),
	}
}

// Register adds a template to the registry
func (tr *TemplateRegistry) Register(t Template) {
	tr.templates[strings.ToLower(t.Name)] = t
}

// Get retrieves a template by name (case-insensitive)
func (tr *TemplateRegistry) Get(name string) (Template, bool) {
	t, ok := tr.templates[strings.ToLower(name)]
	return t, ok
}

// List returns all registered template names, sorted
func (tr *TemplateRegistry) List() []string {
	names := make([]string, 0, len(tr.templates))
	for name := range tr.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateBuiltInTemplates creates a template registry for the plan. Retirement
// timing templates are only offered when the plan has a retirement goal.
func CreateBuiltInTemplates(plan *domain.Plan) *TemplateRegistry {
	registry := NewTemplateRegistry()

	if plan != nil {
		if ret, ok := plan.RetirementGoal(); ok {
			for _, years := range []int{2, 5} {
				registry.Register(Template{
					Name:        fmt.Sprintf("retire_later_%dyr", years),
					Description: fmt.Sprintf("Retire %d years later", years),
					Transforms:  []PlanTransform{&ShiftRetirement{GoalID: ret.ID, Years: years}},
				})
				registry.Register(Template{
					Name:        fmt.Sprintf("retire_earlier_%dyr", years),
					Description: fmt.Sprintf("Retire %d years earlier", years),
					Transforms:  []PlanTransform{&ShiftRetirement{GoalID: ret.ID, Years: -years}},
				})
			}

			registry.Register(Template{
				Name:        "retire_later_2yr_all_in",
				Description: "Retire 2 years later with every goal accumulating in All-in",
				Transforms: []PlanTransform{
					&ShiftRetirement{GoalID: ret.ID, Years: 2},
					&SetPreset{Phase: PhaseDuring, Preset: domain.PresetAllIn},
				},
			})
		}
	}

	// Contribution growth
	registry.Register(Template{
		Name:        "step_up_10pct",
		Description: "Increase contributions by 10% every year",
		Transforms:  []PlanTransform{&SetStepUp{Rate: decimal.RequireFromString("0.10")}},
	})
	registry.Register(Template{
		Name:        "no_step_up",
		Description: "Keep contributions flat",
		Transforms:  []PlanTransform{&SetStepUp{Rate: decimal.Zero}},
	})

	// Asset mix
	registry.Register(Template{
		Name:        "all_in",
		Description: "Accumulate every goal in All-in (100% equity)",
		Transforms:  []PlanTransform{&SetPreset{Phase: PhaseDuring, Preset: domain.PresetAllIn}},
	})
	registry.Register(Template{
		Name:        "play_safe",
		Description: "Accumulate every goal in Safe (10% equity)",
		Transforms:  []PlanTransform{&SetPreset{Phase: PhaseDuring, Preset: domain.PresetSafe}},
	})

	// Market assumptions
	lowEquity, lowDebt := decimal.RequireFromString("0.10"), decimal.RequireFromString("0.05")
	registry.Register(Template{
		Name:        "low_returns",
		Description: "Assume 10% equity and 5% debt returns",
		Transforms:  []PlanTransform{&SetAssumptions{EquityAnnual: &lowEquity, DebtAnnual: &lowDebt}},
	})
	highEquity, highDebt := decimal.RequireFromString("0.14"), decimal.RequireFromString("0.07")
	registry.Register(Template{
		Name:        "high_returns",
		Description: "Assume 14% equity and 7% debt returns",
		Transforms:  []PlanTransform{&SetAssumptions{EquityAnnual: &highEquity, DebtAnnual: &highDebt}},
	})

	return registry
}

// ApplyTemplate applies a template to a base plan
func ApplyTemplate(base *domain.Plan, template Template) (*domain.Plan, error) {
	if len(template.Transforms) == 0 {
		if base == nil {
			return nil, fmt.Errorf("base plan cannot be nil")
		}
		return base.DeepCopy(), nil
	}
	return ApplyTransforms(base, template.Transforms)
}

// ParseTemplateList parses a comma-separated list of template names
func ParseTemplateList(templateList string) []string {
	if templateList == "" {
		return nil
	}

	parts := strings.Split(templateList, ",")
	templates := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			templates = append(templates, trimmed)
		}
	}
	return templates
}

// GetTemplateHelp returns formatted help text for all templates
func GetTemplateHelp(registry *TemplateRegistry) string {
	if len(registry.templates) == 0 {
		return "No templates registered"
	}

	categories := map[string][]Template{}
	order := []string{"Retirement Timing", "Contributions", "Asset Mix", "Market Assumptions"}
	for _, name := range registry.List() {
		t := registry.templates[name]
		switch {
		case strings.HasPrefix(name, "retire_"):
			categories["Retirement Timing"] = append(categories["Retirement Timing"], t)
		case strings.Contains(name, "step_up"):
			categories["Contributions"] = append(categories["Contributions"], t)
		case strings.HasSuffix(name, "_returns"):
			categories["Market Assumptions"] = append(categories["Market Assumptions"], t)
		default:
			categories["Asset Mix"] = append(categories["Asset Mix"], t)
		}
	}

	var sb strings.Builder
	sb.WriteString("Available Templates:\n\n")
	for _, category := range order {
		templates := categories[category]
		if len(templates) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s:\n", category))
		for _, t := range templates {
			sb.WriteString(fmt.Sprintf("  %-30s %s\n", t.Name, t.Description))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Usage:\n")
	sb.WriteString("  capplan compare plan.yaml --with no_step_up,step_up_10pct\n")
	sb.WriteString("  capplan compare plan.yaml --with all_in,play_safe\n")

	return sb.String()
}
