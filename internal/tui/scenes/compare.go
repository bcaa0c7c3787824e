package scenes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/capplan/internal/compare"
	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/rgehrsitz/capplan/internal/inr"
	"github.com/rgehrsitz/capplan/internal/transform"
	"github.com/rgehrsitz/capplan/internal/tui/tuimsg"
	"github.com/rgehrsitz/capplan/internal/tui/tuistyles"
)

var compareKeys = struct {
	Up, Down, Toggle, Run, Clear key.Binding
}{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑↓", "navigate")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select template")),
	Run:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "compare")),
	Clear:  key.NewBinding(key.WithKeys("backspace"), key.WithHelp("backspace", "clear")),
}

// CompareModel picks what-if templates and shows how each changes the plan
type CompareModel struct {
	templates []transform.Template
	selected  map[string]bool
	cursor    int
	running   bool
	result    *compare.ComparisonSet
	width     int
	height    int
}

// NewCompareModel creates a new compare scene model
func NewCompareModel() *CompareModel {
	return &CompareModel{selected: map[string]bool{}, width: 80, height: 24}
}

// SetPlan refreshes the templates offered for the plan. A previous
// comparison no longer describes the plan, so it is dropped.
func (m *CompareModel) SetPlan(plan *domain.Plan) {
	registry := transform.CreateBuiltInTemplates(plan)
	m.templates = m.templates[:0]
	for _, name := range registry.List() {
		t, _ := registry.Get(name)
		m.templates = append(m.templates, t)
	}
	for name := range m.selected {
		if _, ok := registry.Get(name); !ok {
			delete(m.selected, name)
		}
	}
	m.cursor = min(m.cursor, max(0, len(m.templates)-1))
	m.result = nil
}

// SetSize updates the scene dimensions
func (m *CompareModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetResult shows a finished comparison
func (m *CompareModel) SetResult(set *compare.ComparisonSet) {
	m.running = false
	m.result = set
}

// Fail clears the running state after a failed comparison
func (m *CompareModel) Fail() {
	m.running = false
}

// SelectedTemplates returns the chosen template names in display order
func (m *CompareModel) SelectedTemplates() []string {
	var names []string
	for _, t := range m.templates {
		if m.selected[t.Name] {
			names = append(names, t.Name)
		}
	}
	return names
}

// Update handles messages for the compare scene
func (m *CompareModel) Update(msg tea.Msg) (*CompareModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.templates) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, compareKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, compareKeys.Down):
		if m.cursor < len(m.templates)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, compareKeys.Toggle):
		name := m.templates[m.cursor].Name
		m.selected[name] = !m.selected[name]
	case key.Matches(keyMsg, compareKeys.Clear):
		m.selected = map[string]bool{}
		m.result = nil
	case key.Matches(keyMsg, compareKeys.Run):
		names := m.SelectedTemplates()
		if len(names) == 0 {
			names = []string{m.templates[m.cursor].Name}
		}
		m.running = true
		return m, func() tea.Msg { return tuimsg.CompareRequestMsg{Templates: names} }
	}
	return m, nil
}

// View renders the compare scene
func (m *CompareModel) View() string {
	var list strings.Builder
	for i, t := range m.templates {
		check := "[ ]"
		if m.selected[t.Name] {
			check = "[x]"
		}
		cursor, style := "  ", tuistyles.UnselectedItemStyle
		if i == m.cursor {
			cursor, style = "▸ ", tuistyles.SelectedItemStyle
		}
		list.WriteString(style.Render(fmt.Sprintf("%s%s %-24s", cursor, check, t.Name)))
		list.WriteString(tuistyles.SubtitleStyle.Render(" " + t.Description))
		list.WriteString("\n")
	}

	parts := []string{
		tuistyles.TitleStyle.Render("Compare what-if templates"),
		"",
		strings.TrimRight(list.String(), "\n"),
		"",
	}

	switch {
	case m.running:
		parts = append(parts, tuistyles.InfoStyle.Render("Comparing..."))
	case m.result != nil:
		parts = append(parts, m.renderResult())
	}

	hints := []string{}
	for _, b := range []key.Binding{compareKeys.Up, compareKeys.Toggle, compareKeys.Run, compareKeys.Clear} {
		hints = append(hints, b.Help().Key+" "+b.Help().Desc)
	}
	parts = append(parts, "", tuistyles.SubtitleStyle.Render(strings.Join(hints, " • ")))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *CompareModel) renderResult() string {
	set := m.result
	var sb strings.Builder
	header := fmt.Sprintf("%-32s %12s %12s %12s %10s", "Scenario", "Monthly", "Change", "Paid in", "Final")
	sb.WriteString(tuistyles.TableHeaderStyle.Render(header))
	sb.WriteString("\n")

	row := func(r *compare.ComparisonResult, base bool) string {
		change := "-"
		if !base {
			change = signed(r.ContributionDiffFromBase.Round(0).IntPart())
		}
		final := inr.Compact(r.FinalValue, false)
		if r.Exhausted {
			final = "depleted"
		}
		return fmt.Sprintf("%-32s %12s %12s %12s %10s",
			truncateName(r.ScenarioName, 32),
			inr.Compact(r.MonthlyContribution, false),
			change,
			inr.Compact(r.LifetimeContribution, false),
			final)
	}

	sb.WriteString(tuistyles.TableHighlightStyle.Render(row(set.BaseResult, true)))
	sb.WriteString("\n")
	for i := range set.AlternativeResults {
		alt := &set.AlternativeResults[i]
		style := tuistyles.TableCellStyle
		if alt.Exhausted {
			style = tuistyles.ErrorStyle
		}
		sb.WriteString(style.Render(row(alt, false)))
		sb.WriteString("\n")
	}
	for _, rec := range set.Recommendations {
		sb.WriteString("\n")
		sb.WriteString(tuistyles.InfoStyle.Render("• " + rec))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func signed(v int64) string {
	if v > 0 {
		return "+" + inr.Format(decimal.NewFromInt(v))
	}
	if v < 0 {
		return "-" + inr.Format(decimal.NewFromInt(-v))
	}
	return "="
}

func truncateName(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
