package scenes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/rgehrsitz/capplan/internal/transform"
	"github.com/rgehrsitz/capplan/internal/tui/components"
	"github.com/rgehrsitz/capplan/internal/tui/tuimsg"
	"github.com/rgehrsitz/capplan/internal/tui/tuistyles"
)

// Slider keys
const (
	ParamAge       = "age"
	ParamSavings   = "savings"
	ParamStepUp    = "step_up"
	ParamEquity    = "equity"
	ParamDebt      = "debt"
	ParamRetireAge = "retire_age"
)

var paramKeys = struct {
	Up, Down, Inc, Dec, Apply, Reset key.Binding
}{
	Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑↓", "navigate")),
	Down:  key.NewBinding(key.WithKeys("down", "j")),
	Inc:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("←→", "adjust")),
	Dec:   key.NewBinding(key.WithKeys("left")),
	Apply: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply and recompute")),
	Reset: key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "reset")),
}

// ParametersModel edits the profile, the return assumptions and the
// retirement age with sliders. Changes are sent as one edit on enter.
type ParametersModel struct {
	plan          *domain.Plan
	sliders       []*components.ParameterSlider
	initial       map[string]float64
	focusedSlider int
	width         int
	height        int
}

// NewParametersModel creates a new parameters scene model
func NewParametersModel() *ParametersModel {
	return &ParametersModel{width: 80, height: 24}
}

// SetPlan rebuilds the sliders from the plan
func (m *ParametersModel) SetPlan(plan *domain.Plan) {
	m.plan = plan
	m.buildSliders()
}

// SetSize updates the scene dimensions
func (m *ParametersModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func percent(v float64) string { return fmt.Sprintf("%.1f%%", v) }

func lakhs(v float64) string { return fmt.Sprintf("₹%.0fL", v) }

func (m *ParametersModel) buildSliders() {
	focused := m.focusedSlider
	m.sliders = nil
	m.initial = map[string]float64{}
	if m.plan == nil {
		return
	}
	p := m.plan.Profile

	add := func(s *components.ParameterSlider) {
		s.WithWidth(36)
		m.initial[s.Key] = s.Value
		m.sliders = append(m.sliders, s)
	}

	add(components.NewParameterSlider(ParamAge, "Current age", float64(p.Age), 18, 80, 1).
		WithDescription("Changing age or savings suggests a new step-up rate"))
	add(components.NewParameterSlider(ParamSavings, "Savings",
		p.Savings.Div(decimal.NewFromInt(100_000)).InexactFloat64(), 0, 1000, 1).
		WithFormat(lakhs))
	add(components.NewParameterSlider(ParamStepUp, "Yearly step-up",
		p.StepUp.AnnualRate.Mul(decimal.NewFromInt(100)).InexactFloat64(), 0, 15, 0.5).
		WithFormat(percent).
		WithDescription("Contributions grow by this much every year"))
	add(components.NewParameterSlider(ParamEquity, "Equity return",
		p.Assumptions.EquityAnnual.Mul(decimal.NewFromInt(100)).InexactFloat64(), 4, 18, 0.5).
		WithFormat(percent))
	add(components.NewParameterSlider(ParamDebt, "Debt return",
		p.Assumptions.DebtAnnual.Mul(decimal.NewFromInt(100)).InexactFloat64(), 2, 10, 0.25).
		WithFormat(percent))
	if r, ok := m.plan.RetirementGoal(); ok {
		add(components.NewParameterSlider(ParamRetireAge, "Retirement age",
			float64(r.RetireAge), float64(p.Age+1), float64(r.PlanTillAge-1), 1).
			WithDescription("Saving for retirement stops at this age"))
	}

	m.focusedSlider = min(focused, len(m.sliders)-1)
	m.sliders[m.focusedSlider].SetFocused(true)
}

// Modified reports whether any slider moved from the plan's value
func (m *ParametersModel) Modified() bool {
	for _, s := range m.sliders {
		if m.changed(s) {
			return true
		}
	}
	return false
}

func (m *ParametersModel) changed(s *components.ParameterSlider) bool {
	return s.Value != m.initial[s.Key]
}

// Update handles messages for the parameters scene
func (m *ParametersModel) Update(msg tea.Msg) (*ParametersModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.sliders) == 0 {
		return m, nil
	}

	focused := m.sliders[m.focusedSlider]
	switch {
	case key.Matches(keyMsg, paramKeys.Up):
		m.moveFocus(-1)
	case key.Matches(keyMsg, paramKeys.Down):
		m.moveFocus(1)
	case key.Matches(keyMsg, paramKeys.Inc):
		focused.Increment()
	case key.Matches(keyMsg, paramKeys.Dec):
		focused.Decrement()
	case key.Matches(keyMsg, paramKeys.Reset):
		m.buildSliders()
	case key.Matches(keyMsg, paramKeys.Apply):
		return m, m.applyCmd()
	}
	return m, nil
}

func (m *ParametersModel) moveFocus(delta int) {
	next := m.focusedSlider + delta
	if next < 0 || next >= len(m.sliders) {
		return
	}
	m.sliders[m.focusedSlider].SetFocused(false)
	m.focusedSlider = next
	m.sliders[next].SetFocused(true)
}

// Transforms turns the moved sliders into plan edits, profile first so that
// an explicit step-up overrides the suggested one
func (m *ParametersModel) Transforms() []transform.PlanTransform {
	var (
		profile     transform.SetProfile
		assumptions transform.SetAssumptions
		out         []transform.PlanTransform
		tail        []transform.PlanTransform
	)
	hundred := decimal.NewFromInt(100)

	for _, s := range m.sliders {
		if !m.changed(s) {
			continue
		}
		switch s.Key {
		case ParamAge:
			age := int(s.Value)
			profile.Age = &age
		case ParamSavings:
			savings := decimal.NewFromFloat(s.Value).Mul(decimal.NewFromInt(100_000)).Round(0)
			profile.Savings = &savings
		case ParamStepUp:
			tail = append(tail, &transform.SetStepUp{Rate: decimal.NewFromFloat(s.Value).Div(hundred)})
		case ParamEquity:
			v := decimal.NewFromFloat(s.Value).Div(hundred)
			assumptions.EquityAnnual = &v
		case ParamDebt:
			v := decimal.NewFromFloat(s.Value).Div(hundred)
			assumptions.DebtAnnual = &v
		case ParamRetireAge:
			if r, ok := m.plan.RetirementGoal(); ok {
				tail = append(tail, &transform.SetRetireAge{GoalID: r.ID, Age: int(s.Value)})
			}
		}
	}

	if profile.Age != nil || profile.Savings != nil {
		out = append(out, &profile)
	}
	if assumptions.EquityAnnual != nil || assumptions.DebtAnnual != nil {
		out = append(out, &assumptions)
	}
	return append(out, tail...)
}

func (m *ParametersModel) applyCmd() tea.Cmd {
	transforms := m.Transforms()
	if len(transforms) == 0 {
		return nil
	}
	descriptions := make([]string, len(transforms))
	for i, t := range transforms {
		descriptions[i] = t.Description()
	}
	return func() tea.Msg {
		return tuimsg.EditPlanMsg{Label: strings.Join(descriptions, "; "), Transforms: transforms}
	}
}

// View renders the parameters scene
func (m *ParametersModel) View() string {
	if len(m.sliders) == 0 {
		return tuistyles.SubtitleStyle.Render("No plan loaded")
	}

	rendered := make([]string, len(m.sliders))
	for i, s := range m.sliders {
		rendered[i] = s.Render()
	}

	status := tuistyles.SubtitleStyle.Render("Matches the current plan")
	if m.Modified() {
		status = tuistyles.WarningStyle.Render("● Unapplied changes, press enter to recompute")
	}

	hints := []string{}
	for _, b := range []key.Binding{paramKeys.Up, paramKeys.Inc, paramKeys.Apply, paramKeys.Reset} {
		hints = append(hints, b.Help().Key+" "+b.Help().Desc)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		tuistyles.TitleStyle.Render("Plan parameters"),
		"",
		strings.Join(rendered, "\n\n"),
		"",
		status,
		tuistyles.SubtitleStyle.Render(strings.Join(hints, " • ")),
	)
}
