package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var styles = struct {
	Heading lipgloss.Style
	Label   lipgloss.Style
	Success lipgloss.Style
	Failure lipgloss.Style
}{
	Heading: lipgloss.NewStyle().Bold(true),
	Label:   lipgloss.NewStyle().Width(12),
	Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	Failure: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
}

func printHeading(w io.Writer, title string) {
	fmt.Fprintln(w, styles.Heading.Render(title))
}

// printField writes an aligned "label value" line.
func printField(w io.Writer, label string, format string, args ...any) {
	fmt.Fprintf(w, "  %s %s\n", styles.Label.Render(label), fmt.Sprintf(format, args...))
}

func printOK(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styles.Success.Render("✓ "+fmt.Sprintf(format, args...)))
}

func printFail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styles.Failure.Render("✗ "+fmt.Sprintf(format, args...)))
}
