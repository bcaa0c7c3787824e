package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/rgehrsitz/capplan/internal/inr"
	"github.com/rgehrsitz/capplan/internal/tui/tuistyles"
)

// GoalCard displays one goal with its computed funding
type GoalCard struct {
	Goal        domain.Goal
	Computation *domain.GoalComputation
	IsSelected  bool
	Width       int
}

// NewGoalCard creates a card for a goal. The computation may be nil while
// the plan is being recomputed.
func NewGoalCard(g domain.Goal, gc *domain.GoalComputation) *GoalCard {
	return &GoalCard{Goal: g, Computation: gc, Width: 56}
}

// SetSelected marks the card as selected
func (c *GoalCard) SetSelected(selected bool) *GoalCard {
	c.IsSelected = selected
	return c
}

// WithWidth sets the card width
func (c *GoalCard) WithWidth(width int) *GoalCard {
	c.Width = width
	return c
}

// Highlights lists the goal's key parameters and results
func (c *GoalCard) Highlights() []string {
	b := c.Goal.Common()
	post := "-"
	if b.PostPreset != nil {
		post = string(*b.PostPreset)
	}
	out := []string{
		fmt.Sprintf("Saving from %d to %d", b.AccumulationStartAge, b.AccumulationStopAge),
		fmt.Sprintf("Mix %s, then %s", b.DuringPreset, post),
	}
	if r, ok := c.Goal.(*domain.RetirementGoal); ok {
		out = append(out, fmt.Sprintf("Spend %s a month from %d to %d",
			inr.Compact(r.MonthlySpendToday, false), r.RetireAge, r.PlanTillAge))
	}
	gc := c.Computation
	if gc == nil {
		return out
	}
	if !gc.Lumpsum.IsZero() {
		out = append(out, "Lumpsum "+inr.Compact(gc.Lumpsum, false))
	}
	target := gc.TargetAmount
	if gc.TargetCorpus != nil {
		target = *gc.TargetCorpus
	}
	out = append(out, "Target "+inr.Compact(target, true))
	return out
}

// Render returns the styled goal card
func (c *GoalCard) Render() string {
	var content strings.Builder

	content.WriteString(tuistyles.TitleStyle.Render(c.Goal.Common().Title))
	content.WriteString(tuistyles.SubtitleStyle.Render("  " + string(c.Goal.Kind())))
	content.WriteString("\n")
	content.WriteString(c.statusLine())
	content.WriteString("\n")

	for _, h := range c.Highlights() {
		content.WriteString(tuistyles.MetricLabelStyle.Render("• " + h))
		content.WriteString("\n")
	}
	if c.Computation != nil {
		for _, w := range c.Computation.Warnings {
			content.WriteString(tuistyles.WarningStyle.Render("⚠ " + w))
			content.WriteString("\n")
		}
	}

	border := tuistyles.ColorBorder
	if c.IsSelected {
		border = tuistyles.ColorPrimary
	}
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(c.Width)

	return cardStyle.Render(strings.TrimRight(content.String(), "\n"))
}

func (c *GoalCard) statusLine() string {
	gc := c.Computation
	if gc == nil {
		return tuistyles.SubtitleStyle.Render("computing...")
	}
	style := tuistyles.StatusStyle(gc.Status)
	switch gc.Status {
	case domain.StatusFundedByLumpsum:
		return style.Render("Funded by lumpsum")
	case domain.StatusUnreachable:
		return style.Render(fmt.Sprintf("Unreachable, best effort %s/mo", inr.Format(gc.MonthlyContributionYear1)))
	}
	return style.Render(fmt.Sprintf("%s/mo in year one", inr.Format(gc.MonthlyContributionYear1)))
}

// RenderCompact returns a single-line version for lists
func (c *GoalCard) RenderCompact() string {
	monthly := "-"
	if gc := c.Computation; gc != nil && gc.Status != domain.StatusFundedByLumpsum {
		monthly = inr.Compact(gc.MonthlyContributionYear1, false) + "/mo"
	}
	return fmt.Sprintf("%-28s %-10s %s", truncate(c.Goal.Common().Title, 28), c.Goal.Kind(), monthly)
}

// GoalListCompact renders a compact list for selection menus
func GoalListCompact(cards []*GoalCard, selectedIndex int) string {
	if len(cards) == 0 {
		return tuistyles.InfoStyle.Render("No goals in this plan")
	}

	rendered := make([]string, len(cards))
	for i, card := range cards {
		prefix, style := "  ", tuistyles.UnselectedItemStyle
		if i == selectedIndex {
			prefix, style = "▸ ", tuistyles.SelectedItemStyle
		}
		rendered[i] = style.Render(prefix + card.RenderCompact())
	}
	return strings.Join(rendered, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
