package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current state of the application
func (m Model) View() string {
	if m.loading {
		return m.renderApp(BorderStyle.Render("⠋ " + m.loadingMessage))
	}
	if m.err != nil {
		return m.renderError()
	}

	var content string
	switch m.currentScene {
	case SceneHome:
		content = m.homeModel.View()
	case SceneGoals:
		content = m.goalsModel.View()
	case SceneParameters:
		content = m.parametersModel.View()
	case SceneCompare:
		content = m.compareModel.View()
	case SceneOptimize:
		content = m.optimizeModel.View()
	case SceneResults:
		content = m.resultsModel.View()
	case SceneHelp:
		content = m.renderHelp()
	default:
		content = "Unknown scene"
	}

	return m.renderApp(content)
}

// renderApp wraps content with title bar and status bar
func (m Model) renderApp(content string) string {
	contentHeight := max(1, m.height-5)
	container := lipgloss.NewStyle().
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitleBar(),
		container,
		m.renderStatusBar(),
	)
}

// renderTitleBar renders the application title and breadcrumb
func (m Model) renderTitleBar() string {
	title := TitleStyle.Render("capplan · goal-based capital planning")
	crumb := m.currentScene.String()
	if m.plan != nil {
		crumb = fmt.Sprintf("%s / %s", m.plan.Profile.Name, crumb)
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, SubtitleStyle.Render(crumb))
}

// renderStatusBar shows the last action above the key hints
func (m Model) renderStatusBar() string {
	status := SubtitleStyle.Render(m.status)
	if m.statusIsError {
		status = ErrorStyle.Render(m.status)
	}
	hints := m.help.ShortHelpView(m.keys.ShortHelp())
	return StatusBarStyle.Width(max(1, m.width)).Render(status + "\n" + hints)
}

// renderError renders an error message
func (m Model) renderError() string {
	next := "Press any key to continue..."
	if m.plan == nil {
		next = "Press any key to quit."
	}
	return m.renderApp(ErrorStyle.Render(fmt.Sprintf("Error: %v\n\n%s", m.err, next)))
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	sections := []struct {
		title string
		lines []string
	}{
		{"Goals", []string{
			"↑/↓ select a goal",
			"d / t cycle the mix while saving / after saving",
			"+ / - move the goal's lumpsum by ₹1L",
			"a add a purchase goal, x remove the selected goal",
		}},
		{"Parameters", []string{
			"↑/↓ choose a slider, ←/→ adjust it",
			"enter applies every moved slider and recomputes, z resets",
		}},
		{"Compare", []string{
			"space selects templates, enter compares them with the current plan",
		}},
		{"Optimize", []string{
			"solve for the retirement age or step-up that fits a monthly budget",
			"budgets accept 40000, 40K or 1.2L; a applies the chosen result",
		}},
	}

	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("Keyboard shortcuts"))
	sb.WriteString("\n\n")
	sb.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	sb.WriteString("\n")
	for _, s := range sections {
		sb.WriteString("\n")
		sb.WriteString(HelpKeyStyle.Render(s.title))
		sb.WriteString("\n")
		for _, l := range s.lines {
			sb.WriteString("  " + l + "\n")
		}
	}
	return BorderStyle.Render(strings.TrimRight(sb.String(), "\n"))
}
