package transform

import (
	"fmt"

	"github.com/rgehrsitz/capplan/internal/domain"
)

// PlanTransform defines the interface for all plan edits.
// Transforms are composable operations that produce a modified copy of a
// plan, enabling what-if comparison, solvers and interactive editing.
type PlanTransform interface {
	// Apply returns a new plan with the edit applied. The base is not modified.
	Apply(base *domain.Plan) (*domain.Plan, error)

	// Name returns a short identifier for this transform (e.g., "set_retire_age").
	Name() string

	// Description returns a human-readable description of what this transform does.
	Description() string

	// Validate checks the transform parameters against the base without applying it.
	Validate(base *domain.Plan) error
}

// ApplyTransforms applies a sequence of transforms to a base plan.
// Each transform receives the output of the previous one.
func ApplyTransforms(base *domain.Plan, transforms []PlanTransform) (*domain.Plan, error) {
	if base == nil {
		return nil, fmt.Errorf("base plan cannot be nil")
	}

	if len(transforms) == 0 {
		return base.DeepCopy(), nil
	}

	current := base
	for i, transform := range transforms {
		if transform == nil {
			return nil, fmt.Errorf("transform at index %d is nil", i)
		}

		if err := transform.Validate(current); err != nil {
			return nil, fmt.Errorf("transform %s validation failed: %w", transform.Name(), err)
		}

		next, err := transform.Apply(current)
		if err != nil {
			return nil, fmt.Errorf("transform %s failed: %w", transform.Name(), err)
		}
		current = next
	}

	return current, nil
}

// TransformError represents an error that occurred during transformation.
type TransformError struct {
	TransformName string
	Operation     string
	Reason        string
	Err           error
}

func (e *TransformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transform %s (%s): %s: %v", e.TransformName, e.Operation, e.Reason, e.Err)
	}
	return fmt.Sprintf("transform %s (%s): %s", e.TransformName, e.Operation, e.Reason)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// NewTransformError creates a new TransformError.
func NewTransformError(transformName, operation, reason string, err error) error {
	return &TransformError{
		TransformName: transformName,
		Operation:     operation,
		Reason:        reason,
		Err:           err,
	}
}

func requireBase(name string, base *domain.Plan) error {
	if base == nil {
		return NewTransformError(name, "validate", "base plan cannot be nil", nil)
	}
	return nil
}

func requireGoal(name string, base *domain.Plan, goalID string) (domain.Goal, error) {
	if err := requireBase(name, base); err != nil {
		return nil, err
	}
	if goalID == "" {
		return nil, NewTransformError(name, "validate", "goal id cannot be empty", nil)
	}
	g, ok := base.FindGoal(goalID)
	if !ok {
		return nil, NewTransformError(name, "validate", fmt.Sprintf("goal %s not found in plan", goalID), nil)
	}
	return g, nil
}
