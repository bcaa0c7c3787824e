// Package samples ships ready-made plans for demos and first runs.
package samples

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rgehrsitz/capplan/internal/config"
	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed plans/*.yaml
var planFiles embed.FS

// Sample is a named example plan
type Sample struct {
	ID          string      `yaml:"-"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Plan        domain.Plan `yaml:"plan"`
}

// Prepare returns a copy of the sample plan with fresh goal ids, keeping
// each allocation pointed at its goal
func (s *Sample) Prepare() *domain.Plan {
	plan := s.Plan.DeepCopy()
	remap := make(map[string]string, len(plan.Goals))
	for _, g := range plan.Goals {
		id := uuid.New().String()
		remap[g.Common().ID] = id
		g.Common().ID = id
	}
	for i := range plan.Allocations {
		if id, ok := remap[plan.Allocations[i].GoalID]; ok {
			plan.Allocations[i].GoalID = id
		}
	}
	return plan
}

// All loads every embedded sample, sorted by id
func All() ([]*Sample, error) {
	entries, err := planFiles.ReadDir("plans")
	if err != nil {
		return nil, fmt.Errorf("failed to list samples: %w", err)
	}
	parser := config.NewInputParser()
	out := make([]*Sample, 0, len(entries))
	for _, entry := range entries {
		s, err := load(parser, entry.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get loads one sample by id
func Get(id string) (*Sample, error) {
	all, err := All()
	if err != nil {
		return nil, err
	}
	for _, s := range all {
		if strings.EqualFold(s.ID, id) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("unknown sample %q", id)
}

func load(parser *config.InputParser, name string) (*Sample, error) {
	data, err := planFiles.ReadFile(path.Join("plans", name))
	if err != nil {
		return nil, fmt.Errorf("failed to read sample %s: %w", name, err)
	}
	var s Sample
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse sample %s: %w", name, err)
	}
	s.ID = strings.TrimSuffix(name, path.Ext(name))
	config.AssignGoalIDs(&s.Plan)
	if err := parser.ValidatePlan(&s.Plan); err != nil {
		return nil, fmt.Errorf("sample %s: %w", s.ID, err)
	}
	return &s, nil
}

// DefaultPlan is the starting plan for a new session
func DefaultPlan() *domain.Plan {
	age := 35
	savings := decimal.NewFromInt(4_000_000)
	safe := domain.PresetSafe
	inflation := decimal.RequireFromString("0.05")

	base := func(t domain.GoalType, title string, stop int, preset domain.Preset) domain.GoalBase {
		return domain.GoalBase{
			Type:                 t,
			ID:                   uuid.New().String(),
			Title:                title,
			Inflation:            inflation,
			AccumulationStartAge: age,
			AccumulationStopAge:  stop,
			DuringPreset:         preset,
		}
	}

	retirement := &domain.RetirementGoal{
		GoalBase:          base(domain.GoalRetirement, "Retirement", 60, domain.PresetRegular),
		MonthlySpendToday: decimal.NewFromInt(100_000),
		RetireAge:         60,
		PlanTillAge:       90,
	}
	retirement.PostPreset = &safe

	college := &domain.EducationGoal{
		GoalBase:         base(domain.GoalEducation, "Daughter's College Fund", 49, domain.PresetRegular),
		StartInYears:     14,
		DurationYears:    2,
		CostPerYearToday: decimal.NewFromInt(3_500_000),
	}
	post := safe
	college.PostPreset = &post

	house := &domain.PurchaseGoal{
		GoalBase:      base(domain.GoalPurchase, "House Down Payment", 45, domain.PresetGrow),
		PurchaseAge:   45,
		ItemCostToday: decimal.NewFromInt(7_500_000),
	}

	vacation := &domain.VacationGoal{
		GoalBase:          base(domain.GoalVacation, "Vacation Corpus", 60, domain.PresetRegular),
		FirstHolidayAge:   40,
		LastHolidayAge:    70,
		SpendPerYearToday: decimal.NewFromInt(200_000),
	}
	vacation.Inflation = decimal.RequireFromString("0.06")

	return &domain.Plan{
		Profile: domain.Profile{
			Name:    "Saurabh Gandhi",
			Age:     age,
			Savings: savings,
			StepUp:  domain.StepUp{AnnualRate: config.SuggestStepUpRate(age, savings)},
			Assumptions: domain.Assumptions{
				EquityAnnual: decimal.RequireFromString("0.12"),
				DebtAnnual:   decimal.RequireFromString("0.06"),
			},
		},
		Goals:       domain.Goals{retirement, college, house, vacation},
		Allocations: []domain.Allocation{},
	}
}
