// Package ui renders the command line output: tables, weight bars and
// graded verdicts. Colors are downsampled to what the destination supports
// and dropped entirely when it is not a terminal.
package ui

import (
	"io"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
)

var (
	Primary = lipgloss.Color("#8B5CF6")
	Accent  = lipgloss.Color("#14B8A6")
	Success = lipgloss.Color("#22C55E")
	Failure = lipgloss.Color("#F43F5E")
	Dim     = lipgloss.Color("#94A3B8")
	Rule    = lipgloss.Color("#334155")
)

var (
	Heading = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	Hint    = lipgloss.NewStyle().Foreground(Dim).Italic(true)

	Correct   = lipgloss.NewStyle().Foreground(Success).Bold(true)
	Incorrect = lipgloss.NewStyle().Foreground(Failure).Bold(true)

	barFill = lipgloss.NewStyle().Foreground(Accent)
)

// Writer wraps w so styled text degrades to the color profile w supports.
func Writer(w io.Writer) io.Writer {
	return colorprofile.NewWriter(w, os.Environ())
}

// Verdict labels a graded answer.
func Verdict(correct bool) string {
	if correct {
		return Correct.Render("✓ correct")
	}
	return Incorrect.Render("✗ incorrect")
}
