// Package console renders validation results for terminals.
package console

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/hatsunemiku3939/docschema/pkg/report"
)

var (
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5555"))

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#50FA7B"))

	infoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	filePathStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#BD93F9"))

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB86C"))

	keywordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#BD93F9"))
)

// isTTY checks if stdout is a terminal
func isTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// applyStyle conditionally applies styling based on TTY status
func applyStyle(style lipgloss.Style, text string) string {
	if isTTY() {
		return style.Render(text)
	}
	return text
}

// FormatSuccessMessage formats a success message with styling
func FormatSuccessMessage(message string) string {
	return applyStyle(successStyle, "✓ ") + message
}

// FormatInfoMessage formats an informational message
func FormatInfoMessage(message string) string {
	return applyStyle(infoStyle, "ℹ ") + message
}

// FormatErrorMessage formats an error message
func FormatErrorMessage(message string) string {
	return applyStyle(errorStyle, "✗ ") + message
}

// FormatReport renders a report as one block per path:
//
//	invoice.json: 2 problems
//	  /currency
//	    - The value "XXX" is not valid. Allowed values: EUR, USD
func FormatReport(file string, r report.Report) string {
	var b strings.Builder
	problems := 0
	for _, p := range r.Paths() {
		problems += len(r.Messages(p))
	}
	noun := "problems"
	if problems == 1 {
		noun = "problem"
	}
	b.WriteString(applyStyle(errorStyle, "✗ "))
	b.WriteString(applyStyle(filePathStyle, file))
	fmt.Fprintf(&b, ": %d %s\n", problems, noun)

	for _, p := range r.Paths() {
		b.WriteString("  ")
		b.WriteString(applyStyle(pathStyle, p))
		b.WriteString("\n")
		for _, msg := range r.Messages(p) {
			b.WriteString("    - ")
			b.WriteString(msg)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// FormatFailureTree renders the raw failure tree, one node per line, indented by depth.
func FormatFailureTree(root *report.FailureNode) string {
	if root == nil {
		return ""
	}
	type item struct {
		node  *report.FailureNode
		depth int
	}
	var b strings.Builder
	stack := []item{{root, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.node == nil {
			continue
		}

		b.WriteString(strings.Repeat("  ", it.depth))
		b.WriteString(applyStyle(pathStyle, it.node.PathString()))
		keyword := it.node.Keyword
		if keyword == "" {
			keyword = "schema"
		}
		b.WriteString(" ")
		b.WriteString(applyStyle(keywordStyle, "["+keyword+"]"))
		if it.node.Message != "" {
			b.WriteString(" ")
			b.WriteString(it.node.Message)
		}
		b.WriteString("\n")

		for i := len(it.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{it.node.Children[i], it.depth + 1})
		}
	}
	return b.String()
}

// RenderTable renders rows under headers with left aligned, padded columns.
func RenderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	b.WriteString(applyStyle(headerStyle, renderRow(headers, widths)))
	b.WriteString("\n")
	sep := make([]string, len(headers))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	b.WriteString(renderRow(sep, widths))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(renderRow(row, widths))
		b.WriteString("\n")
	}
	return b.String()
}

func renderRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = fmt.Sprintf("%-*s", w, cell)
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}
