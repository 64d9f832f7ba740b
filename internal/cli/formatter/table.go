// Package formatter renders command output for terminals.
package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorHeader = lipgloss.Color("#fe8019")
	ColorDim    = lipgloss.Color("#928374")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorGreen  = lipgloss.Color("#8ec07c")

	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
)

// Header renders a section title.
func Header(title string) string {
	return StyleHeader.Render(title)
}

// Efficiency renders a percentage, green from 75% up and red below 50%.
func Efficiency(pct float64) string {
	s := fmt.Sprintf("%.1f%%", pct)
	switch {
	case pct >= 75:
		return StyleGreen.Render(s)
	case pct < 50:
		return StyleRed.Render(s)
	default:
		return s
	}
}

// RenderTable renders an aligned table with a separator under the header.
// Column widths are measured on visible text, so styled cells line up.
func RenderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	cols := len(headers)

	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	const colGap = 2
	var b strings.Builder

	writeRow := func(cells []string, style func(string) string) {
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := max(widths[i]-lipgloss.Width(cell), 0)
			b.WriteString(style(cell))
			if i < cols-1 {
				b.WriteString(strings.Repeat(" ", pad+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, func(s string) string { return StyleHeader.Render(s) })

	seps := make([]string, cols)
	for i, w := range widths {
		seps[i] = strings.Repeat("─", w)
	}
	writeRow(seps, func(s string) string { return StyleDim.Render(s) })

	for _, row := range rows {
		writeRow(row, func(s string) string { return s })
	}
	return b.String()
}
