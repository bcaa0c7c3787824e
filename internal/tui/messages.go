package tui

import (
	"github.com/rgehrsitz/capplan/internal/tui/tuimsg"
)

// Scene represents different screens in the TUI
type Scene int

const (
	SceneHome Scene = iota
	SceneGoals
	SceneParameters
	SceneCompare
	SceneOptimize
	SceneResults
	SceneHelp
)

// NavigateMsg switches to a different scene
type NavigateMsg struct {
	Scene Scene
}

// QuitMsg signals the application should exit
type QuitMsg struct{}

// Messages shared with the scenes
type (
	PlanLoadedMsg           = tuimsg.PlanLoadedMsg
	ErrorMsg                = tuimsg.ErrorMsg
	EditPlanMsg             = tuimsg.EditPlanMsg
	ComputeCompleteMsg      = tuimsg.ComputeCompleteMsg
	CompareRequestMsg       = tuimsg.CompareRequestMsg
	ComparisonCompleteMsg   = tuimsg.ComparisonCompleteMsg
	OptimizeRequestMsg      = tuimsg.OptimizeRequestMsg
	OptimizationCompleteMsg = tuimsg.OptimizationCompleteMsg
	StatusMsg               = tuimsg.StatusMsg
)
