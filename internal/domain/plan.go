package domain

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// StepUp describes the yearly increase applied to contributions
type StepUp struct {
	AnnualRate decimal.Decimal `yaml:"annual_rate" json:"annual_rate"`
}

// Profile describes the saver
type Profile struct {
	Name        string          `yaml:"name" json:"name"`
	Age         int             `yaml:"age" json:"age"`
	Savings     decimal.Decimal `yaml:"savings" json:"savings"`
	StepUp      StepUp          `yaml:"step_up" json:"step_up"`
	Assumptions Assumptions     `yaml:"assumptions" json:"assumptions"`
}

// Allocation earmarks part of the savings as a lumpsum for one goal
type Allocation struct {
	GoalID  string          `yaml:"goal_id" json:"goal_id"`
	Lumpsum decimal.Decimal `yaml:"lumpsum" json:"lumpsum"`
}

// Plan is the complete engine input
type Plan struct {
	Profile     Profile      `yaml:"profile" json:"profile"`
	Goals       Goals        `yaml:"goals" json:"goals"`
	Allocations []Allocation `yaml:"allocations,omitempty" json:"allocations,omitempty"`
}

// LumpsumFor returns the total lumpsum allocated to a goal
func (p *Plan) LumpsumFor(goalID string) decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		if a.GoalID == goalID {
			total = total.Add(a.Lumpsum)
		}
	}
	return total
}

// TotalAllocated sums every allocation lumpsum
func (p *Plan) TotalAllocated() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.Lumpsum)
	}
	return total
}

// FindGoal returns the goal with the given id
func (p *Plan) FindGoal(id string) (Goal, bool) {
	for _, g := range p.Goals {
		if g.Common().ID == id {
			return g, true
		}
	}
	return nil, false
}

// RetirementGoal returns the first retirement goal in the plan, if any
func (p *Plan) RetirementGoal() (*RetirementGoal, bool) {
	for _, g := range p.Goals {
		if r, ok := g.(*RetirementGoal); ok {
			return r, true
		}
	}
	return nil, false
}

// DeepCopy returns a plan that shares no mutable state with p
func (p *Plan) DeepCopy() *Plan {
	if p == nil {
		return nil
	}
	out := &Plan{Profile: p.Profile}
	if p.Goals != nil {
		out.Goals = make(Goals, len(p.Goals))
		for i, g := range p.Goals {
			out.Goals[i] = g.Clone()
		}
	}
	if p.Allocations != nil {
		out.Allocations = append([]Allocation(nil), p.Allocations...)
	}
	return out
}

// Goals is an ordered list of goals that decodes each element by its type tag
type Goals []Goal

type goalTag struct {
	Type GoalType `yaml:"type" json:"type"`
}

// UnmarshalYAML decodes each goal into its concrete variant
func (gs *Goals) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("goals: expected a sequence, got %v", value.Tag)
	}
	out := make(Goals, 0, len(value.Content))
	for i, node := range value.Content {
		var tag goalTag
		if err := node.Decode(&tag); err != nil {
			return fmt.Errorf("goal %d: %w", i, err)
		}
		g, err := NewGoal(tag.Type)
		if err != nil {
			return fmt.Errorf("goal %d: %w", i, err)
		}
		if err := node.Decode(g); err != nil {
			return fmt.Errorf("goal %d (%s): %w", i, tag.Type, err)
		}
		g.Common().Type = g.Kind()
		out = append(out, g)
	}
	*gs = out
	return nil
}

// UnmarshalJSON decodes each goal into its concrete variant
func (gs *Goals) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("goals: %w", err)
	}
	out := make(Goals, 0, len(raw))
	for i, msg := range raw {
		var tag goalTag
		if err := json.Unmarshal(msg, &tag); err != nil {
			return fmt.Errorf("goal %d: %w", i, err)
		}
		g, err := NewGoal(tag.Type)
		if err != nil {
			return fmt.Errorf("goal %d: %w", i, err)
		}
		if err := json.Unmarshal(msg, g); err != nil {
			return fmt.Errorf("goal %d (%s): %w", i, tag.Type, err)
		}
		g.Common().Type = g.Kind()
		out = append(out, g)
	}
	*gs = out
	return nil
}
