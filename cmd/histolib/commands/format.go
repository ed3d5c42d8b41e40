package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wonny/histolib/pkg/format"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// out is where every printer writes; commands point it at cmd.OutOrStdout()
var out io.Writer = os.Stdout

var (
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	neutralStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	headingStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// PrintHeader prints a titled double-line header
func PrintHeader(title string) {
	fmt.Fprintln(out)
	PrintDoubleSeparator()
	fmt.Fprintf(out, "  %s\n", headingStyle.Render(title))
	PrintSeparator()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Fprintln(out, "───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "⚠️  %s\n", message)
	fmt.Fprintln(out)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Fprintf(out, "✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(out, "❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Fprintf(out, "ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(out, strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row. Widths are measured on the rendered
// cell so styled values stay aligned.
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Fprint(out, val)
		if pad := widths[i] - lipgloss.Width(val); pad > 0 {
			fmt.Fprint(out, strings.Repeat(" ", pad))
		}
		if i < len(values)-1 {
			fmt.Fprint(out, "  ")
		}
	}
	fmt.Fprintln(out)
}

// PrintNumberedList prints a numbered list
func PrintNumberedList(items []string) {
	for i, item := range items {
		fmt.Fprintf(out, "   %d. %s\n", i+1, item)
	}
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Fprintf(out, "   %-*s : %s\n", keyWidth, key, value)
}

// toneStyle maps a pill tone to its terminal color
func toneStyle(t format.Tone) lipgloss.Style {
	switch t {
	case format.TonePositive:
		return positiveStyle
	case format.ToneNegative:
		return negativeStyle
	default:
		return neutralStyle
	}
}

// renderPill renders "Label value" colored by tone
func renderPill(p format.Pill) string {
	text := p.Label
	if p.Value != "" {
		text += " " + p.Value
	}
	return toneStyle(p.Tone).Render(text)
}

// renderPills joins pills with a middle dot
func renderPills(pills []format.Pill) string {
	parts := make([]string, len(pills))
	for i, p := range pills {
		parts[i] = renderPill(p)
	}
	return strings.Join(parts, mutedStyle.Render(" · "))
}
