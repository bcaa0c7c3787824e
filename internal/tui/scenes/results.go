package scenes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/rgehrsitz/capplan/internal/inr"
	"github.com/rgehrsitz/capplan/internal/output"
	"github.com/rgehrsitz/capplan/internal/tui/tuistyles"
)

// ResultsView selects what the results scene shows
type ResultsView int

const (
	ViewGoals ResultsView = iota
	ViewYears
)

var resultsKeys = struct {
	Toggle, Up, Down, PageUp, PageDown key.Binding
}{
	Toggle:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "goals/years")),
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑↓", "scroll")),
	Down:     key.NewBinding(key.WithKeys("down", "j")),
	PageUp:   key.NewBinding(key.WithKeys("pgup")),
	PageDown: key.NewBinding(key.WithKeys("pgdown")),
}

// ResultsModel shows the computed plan in detail
type ResultsModel struct {
	report *output.Report
	view   ResultsView
	offset int
	width  int
	height int
}

// NewResultsModel creates a new results scene model
func NewResultsModel() *ResultsModel {
	return &ResultsModel{width: 80, height: 24}
}

// SetResults updates the computation to display
func (m *ResultsModel) SetResults(plan *domain.Plan, out *domain.ComputedOutput) {
	if plan == nil || out == nil {
		m.report = nil
		return
	}
	m.report = output.NewReport(plan, out)
	m.offset = min(m.offset, m.maxOffset())
}

// SetSize updates the scene dimensions
func (m *ResultsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *ResultsModel) pageSize() int {
	return max(5, m.height-12)
}

func (m *ResultsModel) maxOffset() int {
	if m.report == nil {
		return 0
	}
	return max(0, len(m.report.Output.Chart)-m.pageSize())
}

// Update handles messages for the results scene
func (m *ResultsModel) Update(msg tea.Msg) (*ResultsModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, resultsKeys.Toggle):
		m.view = (m.view + 1) % 2
	case key.Matches(keyMsg, resultsKeys.Up):
		m.offset = max(0, m.offset-1)
	case key.Matches(keyMsg, resultsKeys.Down):
		m.offset = min(m.maxOffset(), m.offset+1)
	case key.Matches(keyMsg, resultsKeys.PageUp):
		m.offset = max(0, m.offset-m.pageSize())
	case key.Matches(keyMsg, resultsKeys.PageDown):
		m.offset = min(m.maxOffset(), m.offset+m.pageSize())
	}
	return m, nil
}

// View renders the results scene
func (m *ResultsModel) View() string {
	if m.report == nil {
		return tuistyles.SubtitleStyle.Render("No results yet")
	}

	body := m.renderGoals()
	if m.view == ViewYears {
		body = m.renderYears()
	}

	summary := fmt.Sprintf("Total %s/mo • paid in %s over the plan • peak %s",
		inr.Format(m.report.Output.TotalMonthlyContribution),
		inr.Compact(m.report.LifetimeContribution(), true),
		inr.Compact(m.report.Output.PeakValue(), true))

	return lipgloss.JoinVertical(lipgloss.Left,
		tuistyles.TitleStyle.Render("Results"),
		tuistyles.SubtitleStyle.Render(summary),
		"",
		body,
		"",
		tuistyles.SubtitleStyle.Render("tab goals/years • ↑↓ pgup pgdown scroll"),
	)
}

func (m *ResultsModel) renderGoals() string {
	var sb strings.Builder
	sb.WriteString(tuistyles.TableHeaderStyle.Render(
		fmt.Sprintf("%-24s %-10s %-22s %12s %10s %10s %7s", "Goal", "Type", "Status", "Monthly", "Lumpsum", "Target", "Ages")))
	sb.WriteString("\n")
	for _, row := range m.report.GoalRows() {
		monthly := row.Monthly
		if row.Approximate {
			monthly = "~" + monthly
		}
		sb.WriteString(tuistyles.TableCellStyle.Render(fmt.Sprintf("%-24s %-10s %-22s %12s %10s %10s %7s",
			truncateName(row.Title, 24), row.Type, row.Status, monthly, row.Lumpsum, row.Target, row.Window)))
		sb.WriteString("\n")
	}
	if warnings := m.report.Warnings(); len(warnings) > 0 {
		sb.WriteString("\n")
		for _, w := range warnings {
			sb.WriteString(tuistyles.WarningStyle.Render("⚠ " + w))
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (m *ResultsModel) renderYears() string {
	chart := m.report.Output.Chart
	end := min(len(chart), m.offset+m.pageSize())

	var sb strings.Builder
	sb.WriteString(tuistyles.TableHeaderStyle.Render(
		fmt.Sprintf("%5s %4s %14s %14s %14s %12s", "Year", "Age", "Portfolio", "Paid in", "Withdrawn", "Monthly")))
	sb.WriteString("\n")
	for _, p := range chart[m.offset:end] {
		monthly := "-"
		if p.MonthlyContribution != nil {
			monthly = inr.Format(*p.MonthlyContribution)
		}
		style := tuistyles.TableCellStyle
		if p.Exhausted {
			style = tuistyles.ErrorStyle
		}
		sb.WriteString(style.Render(fmt.Sprintf("%5d %4d %14s %14s %14s %12s",
			p.Year, p.Age,
			inr.Compact(p.PortfolioValue, true),
			inr.Compact(p.AnnualContribution, false),
			inr.Compact(p.AnnualWithdrawal, false),
			monthly)))
		sb.WriteString("\n")
	}
	sb.WriteString(tuistyles.SubtitleStyle.Render(fmt.Sprintf("years %d-%d of %d", m.offset+1, end, len(chart))))
	return sb.String()
}
