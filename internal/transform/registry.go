package transform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/shopspring/decimal"
)

// TransformRegistry provides a central registry for all available transforms.
// It enables creation of transforms from string parameters, useful for CLI commands.
type TransformRegistry struct {
	factories map[string]TransformFactory
}

// TransformFactory is a function that creates a transform from parameters.
type TransformFactory func(params map[string]string) (PlanTransform, error)

// NewTransformRegistry creates a new registry with all built-in transforms registered.
func NewTransformRegistry() *TransformRegistry {
	registry := &TransformRegistry{
		factories: make(map[string]TransformFactory),
	}

	registry.Register("set_profile", createSetProfile)
	registry.Register("set_step_up", createSetStepUp)
	registry.Register("set_assumptions", createSetAssumptions)

	registry.Register("add_goal", createAddGoal)
	registry.Register("update_goal", createUpdateGoal)
	registry.Register("remove_goal", createRemoveGoal)
	registry.Register("shift_retirement", createShiftRetirement)
	registry.Register("set_retire_age", createSetRetireAge)
	registry.Register("set_preset", createSetPreset)

	registry.Register("set_allocation", createSetAllocation)

	return registry
}

// Register adds a transform factory to the registry.
func (r *TransformRegistry) Register(name string, factory TransformFactory) {
	r.factories[name] = factory
}

// Create creates a transform by name with the given parameters.
func (r *TransformRegistry) Create(name string, params map[string]string) (PlanTransform, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("unknown transform: %s", name)
	}

	return factory(params)
}

// List returns the names of all registered transforms, sorted.
func (r *TransformRegistry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseTransformSpec parses a transform specification string.
// Format: "transform_name:param1=value1,param2=value2"
// Example: "set_retire_age:goal=retirement,age=58"
func (r *TransformRegistry) ParseTransformSpec(spec string) (PlanTransform, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid transform spec format, expected 'name:params', got: %s", spec)
	}

	name := strings.TrimSpace(parts[0])
	paramsStr := strings.TrimSpace(parts[1])

	params := make(map[string]string)
	if paramsStr != "" {
		for _, paramPair := range strings.Split(paramsStr, ",") {
			kv := strings.SplitN(paramPair, "=", 2)
			if len(kv) != 2 {
				return nil, fmt.Errorf("invalid parameter format, expected 'key=value', got: %s", paramPair)
			}
			params[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}

	return r.Create(name, params)
}

func required(transform string, params map[string]string, key string) (string, error) {
	v, ok := params[key]
	if !ok || v == "" {
		return "", fmt.Errorf("%s requires '%s' parameter", transform, key)
	}
	return v, nil
}

func optionalDecimal(params map[string]string, key string) (*decimal.Decimal, error) {
	v, ok := params[key]
	if !ok {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return &d, nil
}

// Factory functions for each transform

func createSetProfile(params map[string]string) (PlanTransform, error) {
	sp := &SetProfile{}
	if name, ok := params["name"]; ok {
		sp.SaverName = &name
	}
	if ageStr, ok := params["age"]; ok {
		age, err := strconv.Atoi(ageStr)
		if err != nil {
			return nil, fmt.Errorf("invalid age value: %w", err)
		}
		sp.Age = &age
	}
	savings, err := optionalDecimal(params, "savings")
	if err != nil {
		return nil, err
	}
	sp.Savings = savings
	if keep, ok := params["keep_step_up"]; ok {
		sp.KeepStepUp = keep == "true" || keep == "yes" || keep == "1"
	}
	return sp, nil
}

func createSetStepUp(params map[string]string) (PlanTransform, error) {
	rateStr, err := required("set_step_up", params, "rate")
	if err != nil {
		return nil, err
	}
	rate, err := decimal.NewFromString(rateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid rate value: %w", err)
	}
	return &SetStepUp{Rate: rate}, nil
}

func createSetAssumptions(params map[string]string) (PlanTransform, error) {
	equity, err := optionalDecimal(params, "equity")
	if err != nil {
		return nil, err
	}
	debt, err := optionalDecimal(params, "debt")
	if err != nil {
		return nil, err
	}
	if equity == nil && debt == nil {
		return nil, fmt.Errorf("set_assumptions requires 'equity' or 'debt' parameter")
	}
	return &SetAssumptions{EquityAnnual: equity, DebtAnnual: debt}, nil
}

func createAddGoal(params map[string]string) (PlanTransform, error) {
	typeStr, err := required("add_goal", params, "type")
	if err != nil {
		return nil, err
	}
	g, err := domain.NewGoal(domain.GoalType(typeStr))
	if err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(params))
	for k, v := range params {
		if k != "type" {
			fields[k] = v
		}
	}
	if err := NewGoalPatch(fields).Decode(g); err != nil {
		return nil, fmt.Errorf("invalid add_goal fields: %w", err)
	}
	g.Common().Type = g.Kind()
	return &AddGoal{Goal: g}, nil
}

func createUpdateGoal(params map[string]string) (PlanTransform, error) {
	goalID, err := required("update_goal", params, "goal")
	if err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(params))
	for k, v := range params {
		if k != "goal" {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("update_goal requires at least one field to change")
	}
	return &UpdateGoal{GoalID: goalID, Patch: NewGoalPatch(fields)}, nil
}

func createRemoveGoal(params map[string]string) (PlanTransform, error) {
	goalID, err := required("remove_goal", params, "goal")
	if err != nil {
		return nil, err
	}
	return &RemoveGoal{GoalID: goalID}, nil
}

func createShiftRetirement(params map[string]string) (PlanTransform, error) {
	goalID, err := required("shift_retirement", params, "goal")
	if err != nil {
		return nil, err
	}
	yearsStr, err := required("shift_retirement", params, "years")
	if err != nil {
		return nil, err
	}
	years, err := strconv.Atoi(yearsStr)
	if err != nil {
		return nil, fmt.Errorf("invalid years value: %w", err)
	}
	return &ShiftRetirement{GoalID: goalID, Years: years}, nil
}

func createSetRetireAge(params map[string]string) (PlanTransform, error) {
	goalID, err := required("set_retire_age", params, "goal")
	if err != nil {
		return nil, err
	}
	ageStr, err := required("set_retire_age", params, "age")
	if err != nil {
		return nil, err
	}
	age, err := strconv.Atoi(ageStr)
	if err != nil {
		return nil, fmt.Errorf("invalid age value: %w", err)
	}
	return &SetRetireAge{GoalID: goalID, Age: age}, nil
}

func createSetPreset(params map[string]string) (PlanTransform, error) {
	presetStr, err := required("set_preset", params, "preset")
	if err != nil {
		return nil, err
	}
	preset, err := domain.ParsePreset(presetStr)
	if err != nil {
		return nil, err
	}
	phase := PhaseDuring
	if p, ok := params["phase"]; ok {
		phase = Phase(strings.ToLower(p))
	}
	custom, err := optionalDecimal(params, "equity")
	if err != nil {
		return nil, err
	}
	return &SetPreset{GoalID: params["goal"], Phase: phase, Preset: preset, CustomEquity: custom}, nil
}

func createSetAllocation(params map[string]string) (PlanTransform, error) {
	goalID, err := required("set_allocation", params, "goal")
	if err != nil {
		return nil, err
	}
	amountStr, err := required("set_allocation", params, "lumpsum")
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid lumpsum value: %w", err)
	}
	return &SetAllocation{GoalID: goalID, Lumpsum: amount}, nil
}
