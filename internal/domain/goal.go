package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// GoalType discriminates the goal variants
type GoalType string

const (
	GoalRetirement GoalType = "retirement"
	GoalEducation  GoalType = "education"
	GoalVacation   GoalType = "vacation"
	GoalPurchase   GoalType = "purchase"
	GoalCustom     GoalType = "custom"
)

// Goal is the closed set of financial goals a plan can hold.
// Only the five variants in this package implement it; callers branch on
// the concrete type through a GoalVisitor so that every variant is handled.
type Goal interface {
	Kind() GoalType
	Common() *GoalBase
	Accept(v GoalVisitor) error
	Clone() Goal
	sealed()
}

// GoalVisitor has one method per goal variant. Adding a variant adds a
// method here, which breaks every visitor until it handles the new case.
type GoalVisitor interface {
	VisitRetirement(g *RetirementGoal) error
	VisitEducation(g *EducationGoal) error
	VisitVacation(g *VacationGoal) error
	VisitPurchase(g *PurchaseGoal) error
	VisitCustom(g *CustomGoal) error
}

// GoalBase carries the fields shared by every goal variant
type GoalBase struct {
	Type                 GoalType         `yaml:"type" json:"type"`
	ID                   string           `yaml:"id" json:"id"`
	Title                string           `yaml:"title" json:"title"`
	Inflation            decimal.Decimal  `yaml:"inflation" json:"inflation"`
	AccumulationStartAge int              `yaml:"accumulation_start_age" json:"accumulation_start_age"`
	AccumulationStopAge  int              `yaml:"accumulation_stop_age" json:"accumulation_stop_age"`
	DuringPreset         Preset           `yaml:"during_preset" json:"during_preset"`
	PostPreset           *Preset          `yaml:"post_preset,omitempty" json:"post_preset,omitempty"`
	CustomEquityDuring   *decimal.Decimal `yaml:"custom_equity_during,omitempty" json:"custom_equity_during,omitempty"`
	CustomEquityPost     *decimal.Decimal `yaml:"custom_equity_post,omitempty" json:"custom_equity_post,omitempty"`
}

// Common returns the shared goal fields
func (b *GoalBase) Common() *GoalBase { return b }

func (b GoalBase) clone() GoalBase {
	out := b
	if b.PostPreset != nil {
		p := *b.PostPreset
		out.PostPreset = &p
	}
	if b.CustomEquityDuring != nil {
		v := *b.CustomEquityDuring
		out.CustomEquityDuring = &v
	}
	if b.CustomEquityPost != nil {
		v := *b.CustomEquityPost
		out.CustomEquityPost = &v
	}
	return out
}

// RetirementGoal funds an inflation-growing monthly expense from retirement until the plan-till age
type RetirementGoal struct {
	GoalBase          `yaml:",inline"`
	MonthlySpendToday decimal.Decimal `yaml:"monthly_spend_today" json:"monthly_spend_today"`
	RetireAge         int             `yaml:"retire_age" json:"retire_age"`
	PlanTillAge       int             `yaml:"plan_till_age" json:"plan_till_age"`
}

// EducationGoal funds a run of annual costs starting some years from now
type EducationGoal struct {
	GoalBase         `yaml:",inline"`
	StartInYears     int             `yaml:"start_in_years" json:"start_in_years"`
	DurationYears    int             `yaml:"duration_years" json:"duration_years"`
	CostPerYearToday decimal.Decimal `yaml:"cost_per_year_today" json:"cost_per_year_today"`
}

// VacationGoal funds a yearly holiday between two ages, inclusive
type VacationGoal struct {
	GoalBase          `yaml:",inline"`
	FirstHolidayAge   int             `yaml:"first_holiday_age" json:"first_holiday_age"`
	LastHolidayAge    int             `yaml:"last_holiday_age" json:"last_holiday_age"`
	SpendPerYearToday decimal.Decimal `yaml:"spend_per_year_today" json:"spend_per_year_today"`
}

// PurchaseGoal funds a single purchase at a given age
type PurchaseGoal struct {
	GoalBase      `yaml:",inline"`
	PurchaseAge   int             `yaml:"purchase_age" json:"purchase_age"`
	ItemCostToday decimal.Decimal `yaml:"item_cost_today" json:"item_cost_today"`
}

// CustomGoal funds a user-described amount at a given age
type CustomGoal struct {
	GoalBase     `yaml:",inline"`
	Description  string          `yaml:"description" json:"description"`
	TargetAmount decimal.Decimal `yaml:"target_amount" json:"target_amount"`
	TargetAge    int             `yaml:"target_age" json:"target_age"`
}

func (g *RetirementGoal) Kind() GoalType { return GoalRetirement }
func (g *EducationGoal) Kind() GoalType  { return GoalEducation }
func (g *VacationGoal) Kind() GoalType   { return GoalVacation }
func (g *PurchaseGoal) Kind() GoalType   { return GoalPurchase }
func (g *CustomGoal) Kind() GoalType     { return GoalCustom }

func (g *RetirementGoal) Accept(v GoalVisitor) error { return v.VisitRetirement(g) }
func (g *EducationGoal) Accept(v GoalVisitor) error  { return v.VisitEducation(g) }
func (g *VacationGoal) Accept(v GoalVisitor) error   { return v.VisitVacation(g) }
func (g *PurchaseGoal) Accept(v GoalVisitor) error   { return v.VisitPurchase(g) }
func (g *CustomGoal) Accept(v GoalVisitor) error     { return v.VisitCustom(g) }

func (g *RetirementGoal) Clone() Goal {
	c := *g
	c.GoalBase = g.GoalBase.clone()
	return &c
}

func (g *EducationGoal) Clone() Goal {
	c := *g
	c.GoalBase = g.GoalBase.clone()
	return &c
}

func (g *VacationGoal) Clone() Goal {
	c := *g
	c.GoalBase = g.GoalBase.clone()
	return &c
}

func (g *PurchaseGoal) Clone() Goal {
	c := *g
	c.GoalBase = g.GoalBase.clone()
	return &c
}

func (g *CustomGoal) Clone() Goal {
	c := *g
	c.GoalBase = g.GoalBase.clone()
	return &c
}

func (*RetirementGoal) sealed() {}
func (*EducationGoal) sealed()  {}
func (*VacationGoal) sealed()   {}
func (*PurchaseGoal) sealed()   {}
func (*CustomGoal) sealed()     {}

// NewGoal returns an empty goal of the given type with its type tag set
func NewGoal(t GoalType) (Goal, error) {
	var g Goal
	switch t {
	case GoalRetirement:
		g = &RetirementGoal{}
	case GoalEducation:
		g = &EducationGoal{}
	case GoalVacation:
		g = &VacationGoal{}
	case GoalPurchase:
		g = &PurchaseGoal{}
	case GoalCustom:
		g = &CustomGoal{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGoalType, t)
	}
	g.Common().Type = t
	return g, nil
}

// AllGoalTypes lists the goal variants in display order
func AllGoalTypes() []GoalType {
	return []GoalType{GoalRetirement, GoalEducation, GoalVacation, GoalPurchase, GoalCustom}
}
