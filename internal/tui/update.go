package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/capplan/internal/breakeven"
	"github.com/rgehrsitz/capplan/internal/config"
	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/rgehrsitz/capplan/internal/share"
	"github.com/rgehrsitz/capplan/internal/transform"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case NavigateMsg:
		if msg.Scene != m.currentScene {
			m.previousScene = m.currentScene
			m.currentScene = msg.Scene
		}
		return m, nil

	case QuitMsg:
		return m, tea.Quit

	case ErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil

	case StatusMsg:
		m.status = msg.Text
		m.statusIsError = msg.IsError
		return m, nil

	case PlanLoadedMsg:
		m.loading = false
		m.history = nil
		return m.commit(msg.Plan, "Loaded plan "+msg.Plan.Profile.Name)

	case EditPlanMsg:
		return m.applyEdit(msg)

	case ComputeCompleteMsg:
		if msg.Revision != m.revision {
			return m, nil
		}
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("Compute failed: %v", msg.Err), true)
			return m, nil
		}
		m.output = msg.Output
		m.homeModel.SetPlan(m.plan, m.output)
		m.goalsModel.SetPlan(m.plan, m.output)
		m.resultsModel.SetResults(m.plan, m.output)
		return m, nil

	case CompareRequestMsg:
		if m.plan == nil {
			return m, nil
		}
		return m, compareCmd(m.plan, msg.Templates)

	case ComparisonCompleteMsg:
		if msg.Err != nil {
			m.compareModel.Fail()
			m.setStatus(fmt.Sprintf("Comparison failed: %v", msg.Err), true)
			return m, nil
		}
		m.compareModel.SetResult(msg.Set)
		return m, nil

	case OptimizeRequestMsg:
		if m.plan == nil {
			return m, nil
		}
		return m, optimizeCmd(m.plan, msg.Target, breakeven.Constraints{Budget: msg.Budget})

	case OptimizationCompleteMsg:
		if msg.Err != nil {
			m.optimizeModel.Fail(msg.Err)
			return m, nil
		}
		m.optimizeModel.SetResult(msg.Result)
		return m, nil
	}

	return m.updateCurrentScene(msg)
}

// applyEdit applies transforms to the current plan. A rejected edit leaves
// the plan untouched and reports why.
func (m Model) applyEdit(msg EditPlanMsg) (tea.Model, tea.Cmd) {
	if m.plan == nil {
		return m, nil
	}
	next, err := transform.ApplyTransforms(m.plan, msg.Transforms)
	if err == nil {
		err = config.NewInputParser().ValidatePlan(next)
	}
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}

	m.history = append(m.history, m.plan)
	if len(m.history) > historyLimit {
		m.history = m.history[len(m.history)-historyLimit:]
	}
	return m.commit(next, msg.Label)
}

// commit makes plan current, refreshes the scenes and schedules a recompute
func (m Model) commit(plan *domain.Plan, label string) (tea.Model, tea.Cmd) {
	m.plan = plan
	m.revision++
	m.homeModel.SetPlan(plan, m.output)
	m.goalsModel.SetPlan(plan, m.output)
	m.parametersModel.SetPlan(plan)
	m.compareModel.SetPlan(plan)
	m.optimizeModel.SetPlan(plan)
	m.setStatus(label, false)
	return m, computeCmd(plan, m.revision)
}

func (m Model) undo() (tea.Model, tea.Cmd) {
	if len(m.history) == 0 {
		m.setStatus("Nothing to undo", false)
		return m, nil
	}
	prev := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	return m.commit(prev, "Undid last edit")
}

func (m Model) copyShareCode() (tea.Model, tea.Cmd) {
	if m.plan == nil {
		return m, nil
	}
	code, err := share.Encode(m.plan)
	if err != nil {
		m.setStatus(fmt.Sprintf("Share failed: %v", err), true)
		return m, nil
	}
	if err := m.copyToClipboard(code); err != nil {
		m.setStatus("Share code: "+code, false)
		return m, nil
	}
	m.setStatus(fmt.Sprintf("Copied share code (%d characters)", len(code)), false)
	return m, nil
}

func (m *Model) setStatus(text string, isError bool) {
	m.status = text
	m.statusIsError = isError
}

func (m *Model) resize() {
	h := max(0, m.height-4)
	m.homeModel.SetSize(m.width, h)
	m.goalsModel.SetSize(m.width, h)
	m.parametersModel.SetSize(m.width, h)
	m.compareModel.SetSize(m.width, h)
	m.optimizeModel.SetSize(m.width, h)
	m.resultsModel.SetSize(m.width, h)
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// An error screen is dismissed by any key once a plan is available
	if m.err != nil {
		if m.plan == nil {
			return m, tea.Quit
		}
		m.err = nil
		return m, nil
	}

	// The budget field takes every key, including esc to leave it
	if m.currentScene == SceneOptimize && m.optimizeModel.Capturing() {
		return m.updateCurrentScene(msg)
	}

	navigate := func(s Scene) (tea.Model, tea.Cmd) {
		return m, func() tea.Msg { return NavigateMsg{Scene: s} }
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		return navigate(SceneHelp)
	case key.Matches(msg, m.keys.Back):
		if m.currentScene == SceneHome {
			return m, nil
		}
		if m.previousScene != m.currentScene {
			return navigate(m.previousScene)
		}
		return navigate(SceneHome)
	case key.Matches(msg, m.keys.Home):
		return navigate(SceneHome)
	case key.Matches(msg, m.keys.Goals):
		return navigate(SceneGoals)
	case key.Matches(msg, m.keys.Parameters):
		return navigate(SceneParameters)
	case key.Matches(msg, m.keys.Compare):
		return navigate(SceneCompare)
	case key.Matches(msg, m.keys.Optimize):
		return navigate(SceneOptimize)
	case key.Matches(msg, m.keys.Results):
		return navigate(SceneResults)
	case key.Matches(msg, m.keys.Undo):
		return m.undo()
	case key.Matches(msg, m.keys.Share):
		return m.copyShareCode()
	}

	return m.updateCurrentScene(msg)
}

// updateCurrentScene delegates updates to the current scene's model
func (m Model) updateCurrentScene(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentScene {
	case SceneHome:
		m.homeModel, cmd = m.homeModel.Update(msg)
	case SceneGoals:
		m.goalsModel, cmd = m.goalsModel.Update(msg)
	case SceneParameters:
		m.parametersModel, cmd = m.parametersModel.Update(msg)
	case SceneCompare:
		m.compareModel, cmd = m.compareModel.Update(msg)
	case SceneOptimize:
		m.optimizeModel, cmd = m.optimizeModel.Update(msg)
	case SceneResults:
		m.resultsModel, cmd = m.resultsModel.Update(msg)
	}
	return m, cmd
}
