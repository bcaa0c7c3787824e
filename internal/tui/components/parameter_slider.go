package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/capplan/internal/tui/tuistyles"
)

// ParameterSlider displays an adjustable plan parameter
type ParameterSlider struct {
	Key         string // identifies the parameter to the owning scene
	Label       string
	Value       float64
	Min         float64
	Max         float64
	Step        float64
	Width       int
	IsFocused   bool
	Description string

	// Format renders a value; defaults to %.0f
	Format func(float64) string
}

// NewParameterSlider creates a new parameter slider
func NewParameterSlider(key, label string, value, min, max, step float64) *ParameterSlider {
	p := &ParameterSlider{
		Key:   key,
		Label: label,
		Min:   min,
		Max:   max,
		Step:  step,
		Width: 30,
	}
	p.SetValue(value)
	return p
}

// WithFormat sets the value formatter
func (p *ParameterSlider) WithFormat(format func(float64) string) *ParameterSlider {
	p.Format = format
	return p
}

// WithWidth sets the slider width
func (p *ParameterSlider) WithWidth(width int) *ParameterSlider {
	p.Width = width
	return p
}

// WithDescription adds a description/help text
func (p *ParameterSlider) WithDescription(desc string) *ParameterSlider {
	p.Description = desc
	return p
}

// SetFocused sets the focus state
func (p *ParameterSlider) SetFocused(focused bool) *ParameterSlider {
	p.IsFocused = focused
	return p
}

// Increment increases the value by step
func (p *ParameterSlider) Increment() {
	p.SetValue(p.Value + p.Step)
}

// Decrement decreases the value by step
func (p *ParameterSlider) Decrement() {
	p.SetValue(p.Value - p.Step)
}

// SetValue sets the value, snapping to the step grid and clamping to min/max
func (p *ParameterSlider) SetValue(value float64) {
	if p.Step > 0 {
		value = p.Min + math.Round((value-p.Min)/p.Step)*p.Step
	}
	p.Value = math.Max(p.Min, math.Min(p.Max, value))
}

// Percentage returns the value as a fraction of the range
func (p *ParameterSlider) Percentage() float64 {
	if p.Max == p.Min {
		return 0
	}
	return (p.Value - p.Min) / (p.Max - p.Min)
}

func (p *ParameterSlider) format(v float64) string {
	if p.Format != nil {
		return p.Format(v)
	}
	return fmt.Sprintf("%.0f", v)
}

// Render returns the styled parameter slider
func (p *ParameterSlider) Render() string {
	var content strings.Builder

	labelStyle := tuistyles.ParameterLabelStyle
	valueStyle := tuistyles.ParameterValueStyle
	if p.IsFocused {
		labelStyle = labelStyle.Foreground(tuistyles.ColorPrimary)
		valueStyle = valueStyle.Foreground(tuistyles.ColorAccent)
	}

	content.WriteString(labelStyle.Render(p.Label))
	content.WriteString("  ")
	content.WriteString(valueStyle.Render(p.format(p.Value)))
	content.WriteString("\n")
	content.WriteString(p.renderBar())

	rangeStyle := lipgloss.NewStyle().Foreground(tuistyles.ColorMuted)
	content.WriteString("  ")
	content.WriteString(rangeStyle.Render(fmt.Sprintf("%s ─ %s", p.format(p.Min), p.format(p.Max))))

	if p.Description != "" && p.IsFocused {
		content.WriteString("\n")
		content.WriteString(tuistyles.SubtitleStyle.Render(p.Description))
	}

	return content.String()
}

// renderBar draws the track with the thumb at the current value
func (p *ParameterSlider) renderBar() string {
	filled := int(math.Round(float64(p.Width-1) * p.Percentage()))
	filled = max(0, min(p.Width-1, filled))

	thumbStyle := tuistyles.SliderThumbStyle
	if p.IsFocused {
		thumbStyle = thumbStyle.Foreground(tuistyles.ColorAccent)
	}

	var bar strings.Builder
	bar.WriteString("[")
	bar.WriteString(thumbStyle.Render(strings.Repeat("━", filled) + "●"))
	bar.WriteString(tuistyles.SliderTrackStyle.Render(strings.Repeat("─", p.Width-1-filled)))
	bar.WriteString("]")
	return bar.String()
}
