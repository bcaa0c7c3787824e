// Package tui is the interactive plan editor. Every edit produces a new
// plan value and an explicit recompute; nothing is shared with the
// background commands except private copies.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/capplan/internal/breakeven"
	"github.com/rgehrsitz/capplan/internal/calculation"
	"github.com/rgehrsitz/capplan/internal/compare"
	"github.com/rgehrsitz/capplan/internal/config"
	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/rgehrsitz/capplan/internal/samples"
	"github.com/rgehrsitz/capplan/internal/share"
	"github.com/rgehrsitz/capplan/internal/tui/scenes"
)

// historyLimit bounds the undo stack
const historyLimit = 50

// Model represents the entire application state
type Model struct {
	// Navigation
	currentScene  Scene
	previousScene Scene

	// Terminal dimensions
	width  int
	height int

	// Plan and its latest computation. revision counts accepted edits so
	// results computed for an older plan can be dropped.
	source   string
	plan     *domain.Plan
	output   *domain.ComputedOutput
	revision int
	history  []*domain.Plan

	// Scene models
	homeModel       *scenes.HomeModel
	goalsModel      *scenes.GoalsModel
	parametersModel *scenes.ParametersModel
	compareModel    *scenes.CompareModel
	optimizeModel   *scenes.OptimizeModel
	resultsModel    *scenes.ResultsModel

	keys keyMap
	help help.Model

	// Status line
	status        string
	statusIsError bool

	// Error state
	err error

	// Loading state
	loading        bool
	loadingMessage string

	// copyToClipboard is swapped out in tests
	copyToClipboard func(string) error
}

// NewModel creates a new application model. The source is a plan file,
// a sample id, a share code, or empty for the default plan.
func NewModel(source string) Model {
	return Model{
		currentScene:    SceneHome,
		source:          source,
		homeModel:       scenes.NewHomeModel(),
		goalsModel:      scenes.NewGoalsModel(),
		parametersModel: scenes.NewParametersModel(),
		compareModel:    scenes.NewCompareModel(),
		optimizeModel:   scenes.NewOptimizeModel(),
		resultsModel:    scenes.NewResultsModel(),
		keys:            defaultKeyMap(),
		help:            help.New(),
		width:           80,
		height:          24,
		loading:         true,
		loadingMessage:  "Loading plan...",
		copyToClipboard: writeClipboard,
	}
}

// Init initializes the model (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	return loadPlanCmd(m.source)
}

// Plan returns the plan being edited
func (m Model) Plan() *domain.Plan { return m.plan }

// Output returns the latest computation
func (m Model) Output() *domain.ComputedOutput { return m.output }

// loadPlanCmd returns a command that resolves a plan source
func loadPlanCmd(source string) tea.Cmd {
	return func() tea.Msg {
		plan, err := LoadPlan(source)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return PlanLoadedMsg{Plan: plan, Source: source}
	}
}

// LoadPlan resolves a source to a plan: an existing file, then a sample id,
// then a share code. An empty source yields the default plan.
func LoadPlan(source string) (*domain.Plan, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return samples.DefaultPlan(), nil
	}
	if _, err := os.Stat(source); err == nil {
		return config.NewInputParser().LoadFromFile(source)
	}
	if s, err := samples.Get(source); err == nil {
		return s.Prepare(), nil
	}
	plan, err := share.Decode(source)
	if err != nil {
		return nil, fmt.Errorf("%q is not a plan file, sample or share code: %w", source, err)
	}
	return plan, nil
}

// computeCmd computes a private copy of the plan with its own engine
func computeCmd(plan *domain.Plan, revision int) tea.Cmd {
	private := plan.DeepCopy()
	return func() tea.Msg {
		out, err := calculation.NewEngine().Compute(private)
		return ComputeCompleteMsg{Revision: revision, Output: out, Err: err}
	}
}

// compareCmd compares the plan against templates
func compareCmd(plan *domain.Plan, templates []string) tea.Cmd {
	private := plan.DeepCopy()
	return func() tea.Msg {
		ce := compare.NewCompareEngine(calculation.NewEngine())
		set, err := ce.Compare(context.Background(), private, compare.CompareOptions{
			BaseScenarioName: "current",
			Templates:        templates,
		})
		return ComparisonCompleteMsg{Set: set, Err: err}
	}
}

// optimizeCmd runs the break-even solver. An empty target solves every target.
func optimizeCmd(plan *domain.Plan, target breakeven.OptimizationTarget, constraints breakeven.Constraints) tea.Cmd {
	private := plan.DeepCopy()
	return func() tea.Msg {
		solver := breakeven.NewDefaultSolver(calculation.NewEngine())
		ctx := context.Background()
		if target == "" {
			result, err := solver.OptimizeMultiDimensional(ctx, private, constraints)
			return OptimizationCompleteMsg{Result: result, Err: err}
		}
		result, err := solver.Optimize(ctx, breakeven.OptimizationRequest{
			BasePlan:    private,
			Target:      target,
			Constraints: constraints,
		})
		if err != nil {
			return OptimizationCompleteMsg{Err: err}
		}
		return OptimizationCompleteMsg{Result: &breakeven.MultiDimensionalResult{
			Results: []breakeven.OptimizationResult{*result},
		}}
	}
}

// String returns a human-readable name for a scene
func (s Scene) String() string {
	switch s {
	case SceneHome:
		return "Home"
	case SceneGoals:
		return "Goals"
	case SceneParameters:
		return "Parameters"
	case SceneCompare:
		return "Compare"
	case SceneOptimize:
		return "Optimize"
	case SceneResults:
		return "Results"
	case SceneHelp:
		return "Help"
	default:
		return "Unknown"
	}
}
