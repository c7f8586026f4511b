package ui

import (
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

// Table renders rows under headers with a thin border. Columns listed in
// right are right-aligned.
func Table(headers []string, rows [][]string, right ...int) string {
	align := make(map[int]bool, len(right))
	for _, c := range right {
		align[c] = true
	}
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Rule)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := cell
			if row == table.HeaderRow {
				s = s.Bold(true).Foreground(Primary)
			}
			if align[col] {
				s = s.Align(lipgloss.Right)
			}
			return s
		})
	return t.String()
}

// Bar draws value as a share of peak, width cells at most.
func Bar(value, peak float64, width int) string {
	if peak <= 0 || value <= 0 || width <= 0 {
		return ""
	}
	n := int(value / peak * float64(width))
	n = max(1, min(n, width))
	return barFill.Render(strings.Repeat("█", n))
}

// Truncate cuts s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
