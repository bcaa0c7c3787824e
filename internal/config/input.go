package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Supported plan file formats
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

const (
	minAge = 18
	maxAge = 100
)

var (
	decOne     = decimal.NewFromInt(1)
	decHundred = decimal.NewFromInt(100)
)

// InputParser handles parsing of plan files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a plan from a YAML or JSON file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Plan, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	plan, err := ip.Parse(data, formatFromName(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filename, err)
	}
	return plan, nil
}

// Parse decodes and validates a plan. An empty format sniffs the payload.
func (ip *InputParser) Parse(data []byte, format string) (*domain.Plan, error) {
	if format == "" {
		format = sniffFormat(data)
	}

	var plan domain.Plan
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	AssignGoalIDs(&plan)

	if err := ip.ValidatePlan(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// AssignGoalIDs gives every goal without an id a fresh one
func AssignGoalIDs(plan *domain.Plan) {
	for _, g := range plan.Goals {
		if strings.TrimSpace(g.Common().ID) == "" {
			g.Common().ID = uuid.New().String()
		}
	}
}

func formatFromName(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return ""
}

func sniffFormat(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatYAML
}

// Issue is a single validation failure
type Issue struct {
	Field   string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Field, i.Message)
}

// ValidationError lists every problem found in a plan
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return "plan validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether an issue was recorded for the field
func (e *ValidationError) Has(field string) bool {
	for _, issue := range e.Issues {
		if issue.Field == field {
			return true
		}
	}
	return false
}

type validator struct {
	issues []Issue
}

func (v *validator) addf(field, format string, args ...any) {
	v.issues = append(v.issues, Issue{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) fraction(field string, d decimal.Decimal) {
	if d.IsNegative() || d.GreaterThan(decOne) {
		v.addf(field, "must be between 0 and 1")
	}
}

func (v *validator) minAge(field string, age int) {
	if age < minAge {
		v.addf(field, "must be at least %d", minAge)
	}
}

// ValidatePlan checks a plan against the input rules and returns a
// *ValidationError listing every failure
func (ip *InputParser) ValidatePlan(plan *domain.Plan) error {
	if plan == nil {
		return &ValidationError{Issues: []Issue{{Field: "plan", Message: "is required"}}}
	}
	v := &validator{}

	ip.validateProfile(v, &plan.Profile)

	seen := make(map[string]bool, len(plan.Goals))
	for i, g := range plan.Goals {
		prefix := fmt.Sprintf("goals[%d]", i)
		ip.validateGoal(v, prefix, g)
		id := g.Common().ID
		if id == "" {
			continue
		}
		if seen[id] {
			v.addf(prefix+".id", "duplicate goal id %q", id)
		}
		seen[id] = true
	}

	for i, a := range plan.Allocations {
		prefix := fmt.Sprintf("allocations[%d]", i)
		if !seen[a.GoalID] {
			v.addf(prefix+".goal_id", "unknown goal %q", a.GoalID)
		}
		if a.Lumpsum.IsNegative() {
			v.addf(prefix+".lumpsum", "cannot be negative")
		}
	}
	if plan.TotalAllocated().GreaterThan(plan.Profile.Savings) {
		v.addf("allocations", "Total allocations cannot exceed available savings")
	}

	if len(v.issues) > 0 {
		return &ValidationError{Issues: v.issues}
	}
	return nil
}

func (ip *InputParser) validateProfile(v *validator, p *domain.Profile) {
	if strings.TrimSpace(p.Name) == "" {
		v.addf("profile.name", "is required")
	}
	if p.Age < minAge || p.Age > maxAge {
		v.addf("profile.age", "must be between %d and %d", minAge, maxAge)
	}
	if p.Savings.IsNegative() {
		v.addf("profile.savings", "cannot be negative")
	}
	v.fraction("profile.step_up.annual_rate", p.StepUp.AnnualRate)
	v.fraction("profile.assumptions.equity_annual", p.Assumptions.EquityAnnual)
	v.fraction("profile.assumptions.debt_annual", p.Assumptions.DebtAnnual)
}

func (ip *InputParser) validateGoal(v *validator, prefix string, g domain.Goal) {
	b := g.Common()
	if strings.TrimSpace(b.Title) == "" {
		v.addf(prefix+".title", "is required")
	}
	v.fraction(prefix+".inflation", b.Inflation)
	v.minAge(prefix+".accumulation_start_age", b.AccumulationStartAge)
	v.minAge(prefix+".accumulation_stop_age", b.AccumulationStopAge)
	if b.AccumulationStopAge < b.AccumulationStartAge {
		v.addf(prefix+".accumulation_stop_age", "Stop age must be greater than or equal to start age")
	}

	if !b.DuringPreset.Valid() {
		v.addf(prefix+".during_preset", "unknown preset %q", b.DuringPreset)
	}
	if b.PostPreset != nil && !b.PostPreset.Valid() {
		v.addf(prefix+".post_preset", "unknown preset %q", *b.PostPreset)
	}
	ip.validateEquity(v, prefix+".custom_equity_during", b.CustomEquityDuring)
	ip.validateEquity(v, prefix+".custom_equity_post", b.CustomEquityPost)

	_ = g.Accept(&goalRules{v: v, prefix: prefix})
}

func (ip *InputParser) validateEquity(v *validator, field string, pct *decimal.Decimal) {
	if pct == nil {
		return
	}
	if pct.IsNegative() || pct.GreaterThan(decHundred) {
		v.addf(field, "must be between 0 and 100")
	}
}

// goalRules checks the fields specific to each goal variant
type goalRules struct {
	v      *validator
	prefix string
}

func (r *goalRules) amount(field string, d decimal.Decimal) {
	if d.IsNegative() {
		r.v.addf(r.prefix+"."+field, "cannot be negative")
	}
}

func (r *goalRules) VisitRetirement(g *domain.RetirementGoal) error {
	r.amount("monthly_spend_today", g.MonthlySpendToday)
	r.v.minAge(r.prefix+".retire_age", g.RetireAge)
	r.v.minAge(r.prefix+".plan_till_age", g.PlanTillAge)
	if g.PlanTillAge <= g.RetireAge {
		r.v.addf(r.prefix+".plan_till_age", "Plan till age must be greater than retire age")
	}
	return nil
}

func (r *goalRules) VisitEducation(g *domain.EducationGoal) error {
	if g.StartInYears < 0 {
		r.v.addf(r.prefix+".start_in_years", "cannot be negative")
	}
	if g.DurationYears < 1 {
		r.v.addf(r.prefix+".duration_years", "must be at least 1")
	}
	r.amount("cost_per_year_today", g.CostPerYearToday)
	return nil
}

func (r *goalRules) VisitVacation(g *domain.VacationGoal) error {
	r.v.minAge(r.prefix+".first_holiday_age", g.FirstHolidayAge)
	r.v.minAge(r.prefix+".last_holiday_age", g.LastHolidayAge)
	if g.LastHolidayAge < g.FirstHolidayAge {
		r.v.addf(r.prefix+".last_holiday_age", "Last holiday age must be greater than or equal to first holiday age")
	}
	r.amount("spend_per_year_today", g.SpendPerYearToday)
	return nil
}

func (r *goalRules) VisitPurchase(g *domain.PurchaseGoal) error {
	r.v.minAge(r.prefix+".purchase_age", g.PurchaseAge)
	r.amount("item_cost_today", g.ItemCostToday)
	return nil
}

func (r *goalRules) VisitCustom(g *domain.CustomGoal) error {
	r.v.minAge(r.prefix+".target_age", g.TargetAge)
	r.amount("target_amount", g.TargetAmount)
	return nil
}
