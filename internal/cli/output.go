package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
)

func printSuccess(out io.Writer, format string, args ...any) {
	fmt.Fprintln(out, successStyle.Render("✓")+" "+fmt.Sprintf(format, args...))
}

func printWarning(out io.Writer, format string, args ...any) {
	fmt.Fprintln(out, warningStyle.Render("!")+" "+fmt.Sprintf(format, args...))
}

func printFailure(out io.Writer, format string, args ...any) {
	fmt.Fprintln(out, errorStyle.Render("✗")+" "+fmt.Sprintf(format, args...))
}

func printMuted(out io.Writer, format string, args ...any) {
	fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

func printHeading(out io.Writer, title string) {
	fmt.Fprintln(out, headingStyle.Render(title))
}
