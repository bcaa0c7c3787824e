package scenes

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/rgehrsitz/capplan/internal/inr"
	"github.com/rgehrsitz/capplan/internal/tui/components"
	"github.com/rgehrsitz/capplan/internal/tui/tuistyles"
)

// HomeModel represents the home dashboard scene
type HomeModel struct {
	plan     *domain.Plan
	output   *domain.ComputedOutput
	previous *domain.ComputedOutput
	width    int
	height   int
}

// NewHomeModel creates a new home scene model
func NewHomeModel() *HomeModel {
	return &HomeModel{width: 80, height: 24}
}

// SetPlan updates the plan and its computation. The last output is kept so
// the dashboard can show what the latest edit changed.
func (m *HomeModel) SetPlan(plan *domain.Plan, out *domain.ComputedOutput) {
	if out != nil && m.output != nil && out != m.output {
		m.previous = m.output
	}
	m.plan = plan
	m.output = out
}

// SetSize updates the model dimensions
func (m *HomeModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Update handles messages for the home scene
func (m *HomeModel) Update(msg tea.Msg) (*HomeModel, tea.Cmd) {
	// Passive; navigation is handled by the root model
	return m, nil
}

// View renders the home dashboard
func (m *HomeModel) View() string {
	if m.plan == nil {
		return tuistyles.BorderStyle.Render(tuistyles.SubtitleStyle.Render("Loading plan..."))
	}

	var content strings.Builder
	content.WriteString(m.renderProfile())
	content.WriteString("\n\n")

	if m.output == nil {
		content.WriteString(tuistyles.SubtitleStyle.Render("Computing..."))
		return content.String()
	}

	content.WriteString(m.renderMetrics())
	content.WriteString("\n\n")
	content.WriteString(m.renderGoals())
	content.WriteString("\n\n")

	chartWidth := max(40, min(m.width-4, 100))
	content.WriteString(components.NewPortfolioChart(m.output.Chart).WithSize(chartWidth, 10).Render())
	if m.output.Exhausted && m.output.DepletionAge != nil {
		content.WriteString("\n")
		content.WriteString(tuistyles.ErrorStyle.Render(
			fmt.Sprintf("⚠ The portfolio runs out of money at age %d", *m.output.DepletionAge)))
	}
	return content.String()
}

func (m *HomeModel) renderProfile() string {
	p := m.plan.Profile
	label := tuistyles.MetricLabelStyle
	lines := []string{
		tuistyles.SectionStyle.Render(fmt.Sprintf("%s, age %d", p.Name, p.Age)),
		label.Render("Savings ") + inr.Format(p.Savings) +
			label.Render("   Returns ") + inr.Percent(p.Assumptions.EquityAnnual, 1) + " equity / " +
			inr.Percent(p.Assumptions.DebtAnnual, 1) + " debt",
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *HomeModel) renderMetrics() string {
	out := m.output
	monthly := components.NewAmountCard("Monthly contribution", out.TotalMonthlyContribution).
		WithDescription(fmt.Sprintf("rising %s%% a year", out.StepUpPercent.StringFixed(1)))
	final := components.NewAmountCard("Final value", out.FinalValue())
	if m.previous != nil {
		monthly.WithDelta(out.TotalMonthlyContribution.Sub(m.previous.TotalMonthlyContribution), true)
		final.WithDelta(out.FinalValue().Sub(m.previous.FinalValue()), false)
	}

	cards := []*components.MetricCard{
		monthly,
		components.NewAmountCard("Allocated", out.TotalAllocated).
			WithDescription(inr.Compact(out.UnallocatedSavings, false) + " unallocated"),
		components.NewAmountCard("Peak value", out.PeakValue()),
		final,
	}
	columns := max(1, m.width/28)
	return components.MetricGrid(cards, columns)
}

func (m *HomeModel) renderGoals() string {
	cards := make([]*components.GoalCard, 0, len(m.plan.Goals))
	for _, g := range m.plan.Goals {
		gc, _ := m.output.Goal(g.Common().ID)
		cards = append(cards, components.NewGoalCard(g, gc))
	}
	return tuistyles.SectionStyle.Render("Goals") + "\n" + components.GoalListCompact(cards, -1)
}
