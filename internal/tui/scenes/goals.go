package scenes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/rgehrsitz/capplan/internal/inr"
	"github.com/rgehrsitz/capplan/internal/transform"
	"github.com/rgehrsitz/capplan/internal/tui/components"
	"github.com/rgehrsitz/capplan/internal/tui/tuimsg"
	"github.com/rgehrsitz/capplan/internal/tui/tuistyles"
)

// LumpsumStep is how much one keypress moves a goal's lumpsum
var LumpsumStep = decimal.NewFromInt(100_000)

var goalKeys = struct {
	Up, Down, During, Post, More, Less, Add, Remove key.Binding
}{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous goal")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next goal")),
	During: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "cycle saving mix")),
	Post:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "cycle mix after saving")),
	More:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "lumpsum +1L")),
	Less:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "lumpsum -1L")),
	Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add purchase goal")),
	Remove: key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove goal")),
}

// GoalsModel lists the plan's goals and edits the selected one
type GoalsModel struct {
	plan     *domain.Plan
	output   *domain.ComputedOutput
	selected int
	width    int
	height   int
}

// NewGoalsModel creates a new goals scene model
func NewGoalsModel() *GoalsModel {
	return &GoalsModel{width: 80, height: 24}
}

// SetPlan updates the plan being edited, keeping the selection in range
func (m *GoalsModel) SetPlan(plan *domain.Plan, out *domain.ComputedOutput) {
	m.plan = plan
	m.output = out
	if plan == nil || m.selected >= len(plan.Goals) {
		m.selected = 0
		if plan != nil && len(plan.Goals) > 0 {
			m.selected = len(plan.Goals) - 1
		}
	}
}

// SetSize updates the scene dimensions
func (m *GoalsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Selected returns the selected goal
func (m *GoalsModel) Selected() (domain.Goal, bool) {
	if m.plan == nil || m.selected < 0 || m.selected >= len(m.plan.Goals) {
		return nil, false
	}
	return m.plan.Goals[m.selected], true
}

// Update handles messages for the goals scene
func (m *GoalsModel) Update(msg tea.Msg) (*GoalsModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.plan == nil {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, goalKeys.Up):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case key.Matches(keyMsg, goalKeys.Down):
		if m.selected < len(m.plan.Goals)-1 {
			m.selected++
		}
		return m, nil
	case key.Matches(keyMsg, goalKeys.Add):
		return m, edit("Added a purchase goal", &transform.AddGoal{Goal: m.newPurchaseGoal()})
	}

	g, ok := m.Selected()
	if !ok {
		return m, nil
	}
	b := g.Common()

	switch {
	case key.Matches(keyMsg, goalKeys.During):
		next := nextPreset(b.DuringPreset)
		return m, edit(fmt.Sprintf("%s saves in %s", b.Title, next),
			&transform.SetPreset{GoalID: b.ID, Phase: transform.PhaseDuring, Preset: next})
	case key.Matches(keyMsg, goalKeys.Post):
		current := domain.PresetSafe
		if b.PostPreset != nil {
			current = *b.PostPreset
		}
		next := nextPreset(current)
		return m, edit(fmt.Sprintf("%s holds %s after saving", b.Title, next),
			&transform.SetPreset{GoalID: b.ID, Phase: transform.PhasePost, Preset: next})
	case key.Matches(keyMsg, goalKeys.More):
		return m, m.adjustLumpsum(b, LumpsumStep)
	case key.Matches(keyMsg, goalKeys.Less):
		return m, m.adjustLumpsum(b, LumpsumStep.Neg())
	case key.Matches(keyMsg, goalKeys.Remove):
		return m, edit("Removed "+b.Title, &transform.RemoveGoal{GoalID: b.ID})
	}
	return m, nil
}

func (m *GoalsModel) adjustLumpsum(b *domain.GoalBase, delta decimal.Decimal) tea.Cmd {
	lumpsum := decimal.Max(decimal.Zero, m.plan.LumpsumFor(b.ID).Add(delta))
	return edit(fmt.Sprintf("%s lumpsum %s", b.Title, inr.Compact(lumpsum, false)),
		&transform.SetAllocation{GoalID: b.ID, Lumpsum: lumpsum})
}

// newPurchaseGoal is a placeholder goal five years out, to be tuned from the CLI or a plan file
func (m *GoalsModel) newPurchaseGoal() *domain.PurchaseGoal {
	age := m.plan.Profile.Age
	return &domain.PurchaseGoal{
		GoalBase: domain.GoalBase{
			Type:                 domain.GoalPurchase,
			Title:                fmt.Sprintf("Purchase %d", len(m.plan.Goals)+1),
			Inflation:            decimal.RequireFromString("0.06"),
			AccumulationStartAge: age,
			AccumulationStopAge:  age + 5,
			DuringPreset:         domain.PresetRegular,
		},
		PurchaseAge:   age + 5,
		ItemCostToday: decimal.NewFromInt(500_000),
	}
}

// nextPreset cycles through the named presets, skipping Custom
func nextPreset(p domain.Preset) domain.Preset {
	presets := []domain.Preset{domain.PresetAllIn, domain.PresetGrow, domain.PresetRegular, domain.PresetSafe}
	for i, candidate := range presets {
		if candidate == p {
			return presets[(i+1)%len(presets)]
		}
	}
	return presets[0]
}

func edit(label string, t transform.PlanTransform) tea.Cmd {
	return func() tea.Msg {
		return tuimsg.EditPlanMsg{Label: label, Transforms: []transform.PlanTransform{t}}
	}
}

// View renders the goals scene
func (m *GoalsModel) View() string {
	if m.plan == nil {
		return tuistyles.SubtitleStyle.Render("No plan loaded")
	}

	cards := make([]*components.GoalCard, len(m.plan.Goals))
	for i, g := range m.plan.Goals {
		var gc *domain.GoalComputation
		if m.output != nil {
			gc, _ = m.output.Goal(g.Common().ID)
		}
		cards[i] = components.NewGoalCard(g, gc).WithWidth(max(40, min(m.width-4, 72)))
	}

	var content strings.Builder
	content.WriteString(tuistyles.TitleStyle.Render("Goals"))
	content.WriteString("\n\n")
	content.WriteString(components.GoalListCompact(cards, m.selected))
	content.WriteString("\n\n")
	if m.selected < len(cards) {
		content.WriteString(cards[m.selected].SetSelected(true).Render())
		content.WriteString("\n\n")
	}

	hints := make([]string, 0, 8)
	for _, b := range []key.Binding{goalKeys.Up, goalKeys.Down, goalKeys.During, goalKeys.Post,
		goalKeys.More, goalKeys.Less, goalKeys.Add, goalKeys.Remove} {
		hints = append(hints, b.Help().Key+" "+b.Help().Desc)
	}
	content.WriteString(tuistyles.SubtitleStyle.Render(strings.Join(hints, " • ")))
	return content.String()
}
