package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/capplan/internal/inr"
	"github.com/rgehrsitz/capplan/internal/tui/tuistyles"
)

// MetricCard displays a single metric with label, value, and optional trend
type MetricCard struct {
	Label       string
	Value       string
	Trend       *Trend
	Description string
	Width       int
}

// Trend is a metric's change. IsGood decides the color, which is not always
// the direction: a smaller contribution is good news.
type Trend struct {
	IsUp   bool
	IsGood bool
	Change string
}

// NewMetricCard creates a new metric card
func NewMetricCard(label, value string) *MetricCard {
	return &MetricCard{
		Label: label,
		Value: value,
		Width: 26,
	}
}

// NewAmountCard creates a card for a rupee amount
func NewAmountCard(label string, amount decimal.Decimal) *MetricCard {
	return NewMetricCard(label, inr.Compact(amount, true))
}

// WithDelta adds a trend for the change in an amount. Zero deltas are not shown.
func (m *MetricCard) WithDelta(delta decimal.Decimal, lowerIsBetter bool) *MetricCard {
	if delta.IsZero() {
		return m
	}
	up := delta.IsPositive()
	sign := ""
	if up {
		sign = "+"
	}
	m.Trend = &Trend{
		IsUp:   up,
		IsGood: up != lowerIsBetter,
		Change: sign + inr.Compact(delta, false),
	}
	return m
}

// WithDescription adds a description/subtitle
func (m *MetricCard) WithDescription(desc string) *MetricCard {
	m.Description = desc
	return m
}

// WithWidth sets the card width
func (m *MetricCard) WithWidth(width int) *MetricCard {
	m.Width = width
	return m
}

func (m *MetricCard) trend(sep string) string {
	if m.Trend == nil {
		return ""
	}
	arrow := tuistyles.TrendIndicator(m.Trend.IsUp)
	style := tuistyles.MetricTrendStyle(m.Trend.IsGood)
	return sep + style.Render(fmt.Sprintf("%s %s", arrow, m.Trend.Change))
}

// Render returns the styled metric card
func (m *MetricCard) Render() string {
	content := tuistyles.MetricLabelStyle.Render(m.Label) + "\n" +
		tuistyles.MetricValueStyle.Render(m.Value) +
		m.trend("\n")
	if m.Description != "" {
		content += "\n" + tuistyles.SubtitleStyle.Render(m.Description)
	}

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tuistyles.ColorBorder).
		Padding(0, 1).
		Width(m.Width)

	return cardStyle.Render(content)
}

// RenderCompact returns a compact inline version without border
func (m *MetricCard) RenderCompact() string {
	label := tuistyles.MetricLabelStyle.Render(m.Label + ":")
	value := tuistyles.MetricValueStyle.Render(m.Value)
	return label + " " + value + m.trend(" ")
}

// MetricGrid renders multiple metric cards in a grid layout
func MetricGrid(cards []*MetricCard, columns int) string {
	if len(cards) == 0 {
		return ""
	}
	if columns < 1 {
		columns = 1
	}

	var rows, currentRow []string
	for i, card := range cards {
		currentRow = append(currentRow, card.Render())
		if (i+1)%columns == 0 || i == len(cards)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, currentRow...))
			currentRow = nil
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
