package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// AddGoal appends a goal to the plan. A goal without an id gets a new one.
type AddGoal struct {
	Goal domain.Goal
}

func (ag *AddGoal) Name() string {
	return "add_goal"
}

func (ag *AddGoal) Description() string {
	if ag.Goal == nil {
		return "Add goal"
	}
	return fmt.Sprintf("Add %s goal %q", ag.Goal.Kind(), ag.Goal.Common().Title)
}

func (ag *AddGoal) Validate(base *domain.Plan) error {
	if err := requireBase(ag.Name(), base); err != nil {
		return err
	}
	if ag.Goal == nil {
		return NewTransformError(ag.Name(), "validate", "goal cannot be nil", nil)
	}
	if id := ag.Goal.Common().ID; id != "" {
		if _, exists := base.FindGoal(id); exists {
			return NewTransformError(ag.Name(), "validate", fmt.Sprintf("goal %s already exists", id), nil)
		}
	}
	return nil
}

func (ag *AddGoal) Apply(base *domain.Plan) (*domain.Plan, error) {
	modified := base.DeepCopy()
	g := ag.Goal.Clone()
	if g.Common().ID == "" {
		g.Common().ID = uuid.New().String()
	}
	g.Common().Type = g.Kind()
	modified.Goals = append(modified.Goals, g)
	return modified, nil
}

// UpdateGoal merges a YAML mapping of field values into an existing goal.
// Fields absent from the patch keep their values. The type and id are fixed.
type UpdateGoal struct {
	GoalID string
	Patch  *yaml.Node
}

// NewGoalPatch builds an UpdateGoal patch from field names and plain values,
// letting YAML resolve numbers and strings the same way a plan file would
func NewGoalPatch(fields map[string]string) *yaml.Node {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Value: fields[k]},
		)
	}
	return node
}

func patchKeys(patch *yaml.Node) []string {
	var keys []string
	for i := 0; i+1 < len(patch.Content); i += 2 {
		keys = append(keys, patch.Content[i].Value)
	}
	return keys
}

func (ug *UpdateGoal) Name() string {
	return "update_goal"
}

func (ug *UpdateGoal) Description() string {
	if ug.Patch == nil {
		return fmt.Sprintf("Update goal %s", ug.GoalID)
	}
	return fmt.Sprintf("Update goal %s (%s)", ug.GoalID, strings.Join(patchKeys(ug.Patch), ", "))
}

func (ug *UpdateGoal) Validate(base *domain.Plan) error {
	if _, err := requireGoal(ug.Name(), base, ug.GoalID); err != nil {
		return err
	}
	if ug.Patch == nil || ug.Patch.Kind != yaml.MappingNode {
		return NewTransformError(ug.Name(), "validate", "patch must be a mapping", nil)
	}
	for _, k := range patchKeys(ug.Patch) {
		if k == "type" || k == "id" {
			return NewTransformError(ug.Name(), "validate", fmt.Sprintf("field %s cannot be changed", k), nil)
		}
	}
	return nil
}

func (ug *UpdateGoal) Apply(base *domain.Plan) (*domain.Plan, error) {
	modified := base.DeepCopy()
	for i, g := range modified.Goals {
		if g.Common().ID != ug.GoalID {
			continue
		}
		updated := g.Clone()
		if err := ug.Patch.Decode(updated); err != nil {
			return nil, NewTransformError(ug.Name(), "apply", "patch does not fit goal", err)
		}
		modified.Goals[i] = updated
	}
	return modified, nil
}

// RemoveGoal drops a goal together with its allocations
type RemoveGoal struct {
	GoalID string
}

func (rg *RemoveGoal) Name() string {
	return "remove_goal"
}

func (rg *RemoveGoal) Description() string {
	return fmt.Sprintf("Remove goal %s", rg.GoalID)
}

func (rg *RemoveGoal) Validate(base *domain.Plan) error {
	_, err := requireGoal(rg.Name(), base, rg.GoalID)
	return err
}

func (rg *RemoveGoal) Apply(base *domain.Plan) (*domain.Plan, error) {
	modified := base.DeepCopy()

	goals := make(domain.Goals, 0, len(modified.Goals))
	for _, g := range modified.Goals {
		if g.Common().ID != rg.GoalID {
			goals = append(goals, g)
		}
	}
	modified.Goals = goals

	allocations := make([]domain.Allocation, 0, len(modified.Allocations))
	for _, a := range modified.Allocations {
		if a.GoalID != rg.GoalID {
			allocations = append(allocations, a)
		}
	}
	modified.Allocations = allocations

	return modified, nil
}

// ShiftRetirement moves the retirement age by whole years, keeping the
// accumulation window ending at retirement
type ShiftRetirement struct {
	GoalID string
	Years  int
}

func (sr *ShiftRetirement) Name() string {
	return "shift_retirement"
}

func (sr *ShiftRetirement) Description() string {
	if sr.Years < 0 {
		return fmt.Sprintf("Retire %d years earlier", -sr.Years)
	}
	return fmt.Sprintf("Retire %d years later", sr.Years)
}

func (sr *ShiftRetirement) Validate(base *domain.Plan) error {
	g, err := requireGoal(sr.Name(), base, sr.GoalID)
	if err != nil {
		return err
	}
	r, ok := g.(*domain.RetirementGoal)
	if !ok {
		return NewTransformError(sr.Name(), "validate", fmt.Sprintf("goal %s is not a retirement goal", sr.GoalID), nil)
	}
	return (&SetRetireAge{GoalID: sr.GoalID, Age: r.RetireAge + sr.Years}).Validate(base)
}

func (sr *ShiftRetirement) Apply(base *domain.Plan) (*domain.Plan, error) {
	g, _ := base.FindGoal(sr.GoalID)
	r := g.(*domain.RetirementGoal)
	return (&SetRetireAge{GoalID: sr.GoalID, Age: r.RetireAge + sr.Years}).Apply(base)
}

// SetRetireAge sets an absolute retirement age and ends accumulation there
type SetRetireAge struct {
	GoalID string
	Age    int
}

func (sra *SetRetireAge) Name() string {
	return "set_retire_age"
}

func (sra *SetRetireAge) Description() string {
	return fmt.Sprintf("Retire at age %d", sra.Age)
}

func (sra *SetRetireAge) Validate(base *domain.Plan) error {
	g, err := requireGoal(sra.Name(), base, sra.GoalID)
	if err != nil {
		return err
	}
	r, ok := g.(*domain.RetirementGoal)
	if !ok {
		return NewTransformError(sra.Name(), "validate", fmt.Sprintf("goal %s is not a retirement goal", sra.GoalID), nil)
	}
	if sra.Age < base.Profile.Age {
		return NewTransformError(sra.Name(), "validate", fmt.Sprintf("retire age %d is before current age %d", sra.Age, base.Profile.Age), nil)
	}
	if sra.Age < r.AccumulationStartAge {
		return NewTransformError(sra.Name(), "validate", fmt.Sprintf("retire age %d is before accumulation starts at %d", sra.Age, r.AccumulationStartAge), nil)
	}
	if sra.Age >= r.PlanTillAge {
		return NewTransformError(sra.Name(), "validate", fmt.Sprintf("retire age %d must be before plan till age %d", sra.Age, r.PlanTillAge), nil)
	}
	return nil
}

func (sra *SetRetireAge) Apply(base *domain.Plan) (*domain.Plan, error) {
	modified := base.DeepCopy()
	g, _ := modified.FindGoal(sra.GoalID)
	r := g.(*domain.RetirementGoal)
	r.RetireAge = sra.Age
	r.AccumulationStopAge = sra.Age
	return modified, nil
}

// Phase selects which allocation a SetPreset changes
type Phase string

const (
	PhaseDuring Phase = "during"
	PhasePost   Phase = "post"
)

// SetPreset changes the asset mix of one goal, or of every goal when GoalID is empty
type SetPreset struct {
	GoalID       string
	Phase        Phase
	Preset       domain.Preset
	CustomEquity *decimal.Decimal
}

func (sp *SetPreset) Name() string {
	return "set_preset"
}

func (sp *SetPreset) Description() string {
	target := "all goals"
	if sp.GoalID != "" {
		target = "goal " + sp.GoalID
	}
	mix := string(sp.Preset)
	if sp.Preset == domain.PresetCustom && sp.CustomEquity != nil {
		mix = fmt.Sprintf("Custom %s%% equity", sp.CustomEquity.StringFixed(0))
	}
	return fmt.Sprintf("Use %s %s the accumulation window for %s", mix, sp.phaseWord(), target)
}

func (sp *SetPreset) phaseWord() string {
	if sp.Phase == PhasePost {
		return "after"
	}
	return "during"
}

func (sp *SetPreset) Validate(base *domain.Plan) error {
	if err := requireBase(sp.Name(), base); err != nil {
		return err
	}
	if sp.GoalID != "" {
		if _, err := requireGoal(sp.Name(), base, sp.GoalID); err != nil {
			return err
		}
	}
	if sp.Phase != PhaseDuring && sp.Phase != PhasePost {
		return NewTransformError(sp.Name(), "validate", fmt.Sprintf("phase must be during or post, got %q", sp.Phase), nil)
	}
	if !sp.Preset.Valid() {
		return NewTransformError(sp.Name(), "validate", fmt.Sprintf("unknown preset %q", sp.Preset), domain.ErrInvalidPreset)
	}
	if sp.CustomEquity != nil && (sp.CustomEquity.IsNegative() || sp.CustomEquity.GreaterThan(decHundred)) {
		return NewTransformError(sp.Name(), "validate", "custom equity must be between 0 and 100", domain.ErrInvalidPreset)
	}
	return nil
}

func (sp *SetPreset) Apply(base *domain.Plan) (*domain.Plan, error) {
	modified := base.DeepCopy()
	for _, g := range modified.Goals {
		b := g.Common()
		if sp.GoalID != "" && b.ID != sp.GoalID {
			continue
		}
		var custom *decimal.Decimal
		if sp.CustomEquity != nil {
			v := *sp.CustomEquity
			custom = &v
		}
		if sp.Phase == PhasePost {
			p := sp.Preset
			b.PostPreset = &p
			b.CustomEquityPost = custom
		} else {
			b.DuringPreset = sp.Preset
			b.CustomEquityDuring = custom
		}
	}
	return modified, nil
}
