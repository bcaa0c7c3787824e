package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGoalWindow is returned when a goal's age window is empty or inverted
	ErrInvalidGoalWindow = errors.New("invalid goal window")
	// ErrInvalidPreset is returned for asset-allocation presets outside the known set
	ErrInvalidPreset = errors.New("invalid allocation preset")
	// ErrInvalidRate is returned when a rate cannot be converted (annual rate at or below -100%)
	ErrInvalidRate = errors.New("invalid rate")
	// ErrUnknownGoalType is returned when decoding a goal with an unrecognised type tag
	ErrUnknownGoalType = errors.New("unknown goal type")
)

// GoalError ties a computation failure to the goal that caused it
type GoalError struct {
	GoalID string
	Op     string
	Err    error
}

func (e *GoalError) Error() string {
	return fmt.Sprintf("goal %s: %s: %v", e.GoalID, e.Op, e.Err)
}

func (e *GoalError) Unwrap() error {
	return e.Err
}
