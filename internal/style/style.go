// Package style provides consistent terminal styling using Lipgloss.
// Styling is disabled when stdout is not a terminal, so container logs and
// pipes see plain text.
package style

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	// Bold emphasizes important values.
	Bold = lipgloss.NewStyle().Bold(true)

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)

	stdoutIsTerminal = term.IsTerminal(int(os.Stdout.Fd()))
)

// render applies the style only when writing to a terminal.
func render(s lipgloss.Style, text string) string {
	if !stdoutIsTerminal {
		return text
	}
	return s.Render(text)
}

// Success styles a success narration line.
func Success(text string) string { return render(successStyle, text) }

// Warn styles a warning.
func Warn(text string) string { return render(warnStyle, text) }

// Error styles a fatal diagnostic prefix.
func Error(text string) string { return render(errorStyle, text) }

// Dim styles secondary detail.
func Dim(text string) string { return render(dimStyle, text) }
