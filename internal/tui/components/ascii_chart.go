package components

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/rgehrsitz/capplan/internal/tui/tuistyles"
)

// DataSeries represents a single line in a chart
type DataSeries struct {
	Name   string
	Points []float64
	Color  lipgloss.Color
}

// ASCIIChart displays a simple line chart
type ASCIIChart struct {
	Title      string
	Series     []*DataSeries
	Labels     []string // X-axis labels, one per point
	Width      int
	Height     int
	XAxisLabel string

	// FormatY renders Y-axis values; defaults to crore
	FormatY func(float64) string
}

// NewASCIIChart creates a new ASCII chart
func NewASCIIChart(title string) *ASCIIChart {
	return &ASCIIChart{
		Title:  title,
		Width:  60,
		Height: 12,
	}
}

// NewPortfolioChart plots the yearly portfolio value in crore against age
func NewPortfolioChart(points []domain.ChartPoint) *ASCIIChart {
	values := make([]float64, len(points))
	labels := make([]string, len(points))
	for i, p := range points {
		values[i] = p.PortfolioCrore
		labels[i] = strconv.Itoa(p.Age)
	}
	return NewASCIIChart("Portfolio value").
		AddSeries("Portfolio", values, tuistyles.ColorChartLine1).
		WithLabels(labels).
		WithAxisLabel("Age")
}

// AddSeries adds a data series to the chart
func (c *ASCIIChart) AddSeries(name string, points []float64, color lipgloss.Color) *ASCIIChart {
	c.Series = append(c.Series, &DataSeries{Name: name, Points: points, Color: color})
	return c
}

// WithLabels sets the X-axis labels
func (c *ASCIIChart) WithLabels(labels []string) *ASCIIChart {
	c.Labels = labels
	return c
}

// WithSize sets the chart dimensions
func (c *ASCIIChart) WithSize(width, height int) *ASCIIChart {
	c.Width = width
	c.Height = height
	return c
}

// WithAxisLabel sets the X-axis label
func (c *ASCIIChart) WithAxisLabel(label string) *ASCIIChart {
	c.XAxisLabel = label
	return c
}

// Render returns the styled chart
func (c *ASCIIChart) Render() string {
	if !c.hasPoints() {
		return tuistyles.InfoStyle.Render("No data to display")
	}

	var content strings.Builder
	if c.Title != "" {
		content.WriteString(tuistyles.SectionStyle.Render(c.Title))
		content.WriteString("\n")
	}

	lo, hi := c.bounds()
	content.WriteString(c.renderGrid(lo, hi))

	if c.XAxisLabel != "" {
		content.WriteString("\n")
		content.WriteString(tuistyles.SubtitleStyle.Render(c.XAxisLabel))
	}
	if len(c.Series) > 1 {
		content.WriteString("\n")
		content.WriteString(c.renderLegend())
	}
	return content.String()
}

func (c *ASCIIChart) hasPoints() bool {
	for _, s := range c.Series {
		if len(s.Points) > 0 {
			return true
		}
	}
	return false
}

// bounds spans every series. Portfolio values never go below zero, so the
// floor stays at zero unless a series does.
func (c *ASCIIChart) bounds() (float64, float64) {
	lo, hi := 0.0, math.Inf(-1)
	for _, s := range c.Series {
		for _, v := range s.Points {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi + (hi-lo)*0.05
}

func (c *ASCIIChart) formatY(v float64) string {
	if c.FormatY != nil {
		return c.FormatY(v)
	}
	return fmt.Sprintf("₹%.1fCr", v)
}

// renderGrid plots the series with Y-axis values on the left
func (c *ASCIIChart) renderGrid(lo, hi float64) string {
	const yAxisWidth = 9
	width := max(c.Width-yAxisWidth-3, 2)
	height := max(c.Height, 2)

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	toCell := func(i, n int, v float64) (int, int) {
		x := 0
		if n > 1 {
			x = int(float64(i) / float64(n-1) * float64(width-1))
		}
		y := height - 1 - int(math.Round((v-lo)/(hi-lo)*float64(height-1)))
		return x, y
	}

	for idx, s := range c.Series {
		char := seriesChar(idx)
		px, py := -1, -1
		for i, v := range s.Points {
			x, y := toCell(i, len(s.Points), v)
			if px >= 0 {
				drawLine(grid, px, py, x, y, char)
			} else {
				plot(grid, x, y, char)
			}
			px, py = x, y
		}
	}

	axisStyle := lipgloss.NewStyle().
		Foreground(tuistyles.ColorMuted).
		Width(yAxisWidth).
		Align(lipgloss.Right)

	var out strings.Builder
	for i, row := range grid {
		label := ""
		if i == 0 || i == height-1 || i == height/2 {
			label = c.formatY(hi - float64(i)/float64(height-1)*(hi-lo))
		}
		out.WriteString(axisStyle.Render(label))
		out.WriteString(" │")
		out.WriteString(string(row))
		out.WriteString("\n")
	}
	out.WriteString(strings.Repeat(" ", yAxisWidth))
	out.WriteString(" └")
	out.WriteString(strings.Repeat("─", width))
	if len(c.Labels) > 0 {
		out.WriteString("\n")
		out.WriteString(c.renderXAxisLabels(yAxisWidth+2, width))
	}
	return out.String()
}

// renderXAxisLabels places up to six labels under their points
func (c *ASCIIChart) renderXAxisLabels(indent, width int) string {
	line := []rune(strings.Repeat(" ", width+8))
	n := len(c.Labels)
	step := max(1, (n+5)/6)
	for i := 0; i < n; i += step {
		x := 0
		if n > 1 {
			x = int(float64(i) / float64(n-1) * float64(width-1))
		}
		for j, r := range c.Labels[i] {
			if x+j < len(line) {
				line[x+j] = r
			}
		}
	}
	labelStyle := lipgloss.NewStyle().Foreground(tuistyles.ColorMuted)
	return strings.Repeat(" ", indent) + labelStyle.Render(strings.TrimRight(string(line), " "))
}

func (c *ASCIIChart) renderLegend() string {
	items := make([]string, len(c.Series))
	for i, s := range c.Series {
		symbol := lipgloss.NewStyle().Foreground(s.Color).Render(string(seriesChar(i)))
		items[i] = symbol + " " + s.Name
	}
	return tuistyles.SubtitleStyle.Render(strings.Join(items, " • "))
}

func seriesChar(index int) rune {
	chars := []rune{'●', '■', '▲'}
	return chars[index%len(chars)]
}

func plot(grid [][]rune, x, y int, char rune) {
	if y >= 0 && y < len(grid) && x >= 0 && x < len(grid[y]) {
		grid[y][x] = char
	}
}

// drawLine joins two cells using Bresenham's algorithm
func drawLine(grid [][]rune, x0, y0, x1, y1 int, char rune) {
	dx, dy := abs(x1-x0), abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	for {
		plot(grid, x0, y0, char)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
