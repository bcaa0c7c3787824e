package scenes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/capplan/internal/breakeven"
	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/rgehrsitz/capplan/internal/inr"
	"github.com/rgehrsitz/capplan/internal/transform"
	"github.com/rgehrsitz/capplan/internal/tui/tuimsg"
	"github.com/rgehrsitz/capplan/internal/tui/tuistyles"
)

// OptimizeMode represents the step of the break-even flow
type OptimizeMode int

const (
	ModeSelectTarget OptimizeMode = iota
	ModeSetBudget
	ModeShowResults
)

type targetChoice struct {
	label  string
	target breakeven.OptimizationTarget // empty solves every target
}

var targetChoices = []targetChoice{
	{"Retirement age", breakeven.OptimizeRetireAge},
	{"Yearly step-up", breakeven.OptimizeStepUp},
	{"Both", ""},
}

var optimizeKeys = struct {
	Up, Down, Select, Apply, New key.Binding
}{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑↓", "navigate")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Apply:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "apply to plan")),
	New:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new search")),
}

// OptimizeModel finds the retirement age or step-up that fits a monthly budget
type OptimizeModel struct {
	plan        *domain.Plan
	mode        OptimizeMode
	choice      int
	budgetInput textinput.Model
	inputErr    error
	optimizing  bool
	result      *breakeven.MultiDimensionalResult
	resultIdx   int
	width       int
	height      int
}

// NewOptimizeModel creates a new optimize scene model
func NewOptimizeModel() *OptimizeModel {
	ti := textinput.New()
	ti.Placeholder = "e.g. 40000 or 1.2L"
	ti.CharLimit = 16
	ti.Width = 20

	return &OptimizeModel{
		mode:        ModeSelectTarget,
		budgetInput: ti,
		width:       80,
		height:      24,
	}
}

// SetPlan updates the plan the solver runs against
func (m *OptimizeModel) SetPlan(plan *domain.Plan) {
	m.plan = plan
	if m.mode == ModeShowResults && !m.optimizing {
		m.mode = ModeSelectTarget
		m.result = nil
	}
}

// SetSize updates the model dimensions
func (m *OptimizeModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Capturing reports whether keystrokes are going into the budget field
func (m *OptimizeModel) Capturing() bool {
	return m.mode == ModeSetBudget
}

// SetResult shows the finished search
func (m *OptimizeModel) SetResult(result *breakeven.MultiDimensionalResult) {
	m.result = result
	m.resultIdx = 0
	m.optimizing = false
	m.mode = ModeShowResults
}

// Fail returns to budget entry after a failed search
func (m *OptimizeModel) Fail(err error) {
	m.optimizing = false
	m.inputErr = err
	m.mode = ModeSetBudget
	m.budgetInput.Focus()
}

// Update handles messages for the optimize scene
func (m *OptimizeModel) Update(msg tea.Msg) (*OptimizeModel, tea.Cmd) {
	switch m.mode {
	case ModeSetBudget:
		return m.updateBudgetInput(msg)
	case ModeShowResults:
		return m.updateResults(msg)
	}
	return m.updateTargetSelection(msg)
}

func (m *OptimizeModel) updateTargetSelection(msg tea.Msg) (*OptimizeModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, optimizeKeys.Up):
		if m.choice > 0 {
			m.choice--
		}
	case key.Matches(keyMsg, optimizeKeys.Down):
		if m.choice < len(targetChoices)-1 {
			m.choice++
		}
	case key.Matches(keyMsg, optimizeKeys.Select):
		m.mode = ModeSetBudget
		m.inputErr = nil
		m.budgetInput.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m *OptimizeModel) updateBudgetInput(msg tea.Msg) (*OptimizeModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEnter:
			budget, err := inr.Parse(m.budgetInput.Value())
			if err != nil {
				m.inputErr = err
				return m, nil
			}
			if !budget.IsPositive() {
				m.inputErr = fmt.Errorf("enter a monthly budget above zero")
				return m, nil
			}
			m.inputErr = nil
			m.optimizing = true
			m.budgetInput.Blur()
			target := targetChoices[m.choice].target
			return m, func() tea.Msg {
				return tuimsg.OptimizeRequestMsg{Target: target, Budget: budget}
			}
		case tea.KeyEsc:
			m.mode = ModeSelectTarget
			m.budgetInput.Blur()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.budgetInput, cmd = m.budgetInput.Update(msg)
	return m, cmd
}

func (m *OptimizeModel) updateResults(msg tea.Msg) (*OptimizeModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.result == nil {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, optimizeKeys.Up):
		if m.resultIdx > 0 {
			m.resultIdx--
		}
	case key.Matches(keyMsg, optimizeKeys.Down):
		if m.resultIdx < len(m.result.Results)-1 {
			m.resultIdx++
		}
	case key.Matches(keyMsg, optimizeKeys.Apply):
		return m, m.applyCmd()
	case key.Matches(keyMsg, optimizeKeys.New):
		m.mode = ModeSelectTarget
		m.result = nil
		m.budgetInput.SetValue("")
	}
	return m, nil
}

// Transform turns the highlighted result into a plan edit
func (m *OptimizeModel) Transform() (transform.PlanTransform, bool) {
	if m.result == nil || m.resultIdx >= len(m.result.Results) || m.plan == nil {
		return nil, false
	}
	r := m.result.Results[m.resultIdx]
	switch {
	case r.OptimalRetireAge != nil:
		goal, ok := m.plan.RetirementGoal()
		if !ok {
			return nil, false
		}
		return &transform.SetRetireAge{GoalID: goal.ID, Age: *r.OptimalRetireAge}, true
	case r.OptimalStepUp != nil:
		return &transform.SetStepUp{Rate: *r.OptimalStepUp}, true
	}
	return nil, false
}

func (m *OptimizeModel) applyCmd() tea.Cmd {
	t, ok := m.Transform()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		return tuimsg.EditPlanMsg{Label: t.Description(), Transforms: []transform.PlanTransform{t}}
	}
}

// View renders the optimize scene
func (m *OptimizeModel) View() string {
	title := tuistyles.TitleStyle.Render("Break-even solver")
	intro := tuistyles.SubtitleStyle.Render("Find the plan change that keeps the first-year monthly contribution within a budget.")

	var body string
	switch {
	case m.optimizing:
		body = tuistyles.InfoStyle.Render("⠋ Searching...")
	case m.mode == ModeSetBudget:
		body = m.renderBudgetInput()
	case m.mode == ModeShowResults:
		body = m.renderResults()
	default:
		body = m.renderTargetSelection()
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, intro, "", body)
}

func (m *OptimizeModel) renderTargetSelection() string {
	var sb strings.Builder
	sb.WriteString("Solve for:\n")
	for i, c := range targetChoices {
		if i == m.choice {
			sb.WriteString(tuistyles.SelectedItemStyle.Render("❯ " + c.label))
		} else {
			sb.WriteString("  " + c.label)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(tuistyles.SubtitleStyle.Render("↑↓ navigate • enter select"))
	return sb.String()
}

func (m *OptimizeModel) renderBudgetInput() string {
	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tuistyles.ColorPrimary).
		Padding(0, 1)

	parts := []string{
		"Solving for: " + targetChoices[m.choice].label,
		"Monthly budget:",
		inputStyle.Render("₹ " + m.budgetInput.View()),
	}
	if m.inputErr != nil {
		parts = append(parts, tuistyles.ErrorStyle.Render(m.inputErr.Error()))
	}
	parts = append(parts, tuistyles.SubtitleStyle.Render("enter to solve • esc to go back"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *OptimizeModel) renderResults() string {
	if m.result == nil {
		return tuistyles.SubtitleStyle.Render("No results available")
	}

	var sb strings.Builder
	for i, r := range m.result.Results {
		value := "-"
		switch {
		case r.OptimalRetireAge != nil:
			value = fmt.Sprintf("retire at %d", *r.OptimalRetireAge)
		case r.OptimalStepUp != nil:
			value = "step up " + inr.Percent(*r.OptimalStepUp, 2)
		}
		status := tuistyles.MetricPositiveStyle.Render("✓ fits")
		if !r.Success {
			status = tuistyles.ErrorStyle.Render("⚠ over budget")
		}
		line := fmt.Sprintf("%-18s %-12s %s/mo", value, status, inr.Format(r.MonthlyContribution))
		if i == m.resultIdx {
			sb.WriteString(tuistyles.SelectedItemStyle.Render("❯ ") + line)
		} else {
			sb.WriteString("  " + line)
		}
		sb.WriteString("\n")
		sb.WriteString(tuistyles.SubtitleStyle.Render(fmt.Sprintf("    budget %s • %s", inr.Format(r.Budget), r.ConvergenceInfo)))
		sb.WriteString("\n")
	}
	for _, rec := range m.result.Recommendations {
		sb.WriteString("\n")
		sb.WriteString(tuistyles.InfoStyle.Render("• " + rec))
	}
	sb.WriteString("\n\n")
	sb.WriteString(tuistyles.SubtitleStyle.Render("↑↓ choose • a apply to plan • n new search"))
	return sb.String()
}
