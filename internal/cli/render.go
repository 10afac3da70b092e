package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Table renders a bordered table. The first column is left-aligned, the rest
// right-aligned. A row holding the single cell "---" draws a separator.
func (p Palette) Table(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var b strings.Builder
	rule := func(left, mid, right string) {
		b.WriteString(p.Dim(left))
		for i, w := range widths {
			b.WriteString(p.Dim(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(p.Dim(mid))
			}
		}
		b.WriteString(p.Dim(right))
		b.WriteByte('\n')
	}
	row := func(cells []string, style func(string) string) {
		b.WriteString(p.Dim("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			if i == 0 {
				b.WriteString(style(" " + cell + pad + " "))
			} else {
				b.WriteString(style(" " + pad + cell + " "))
			}
			if i < numCols-1 {
				b.WriteString(p.Dim("│"))
			}
		}
		b.WriteString(p.Dim("│"))
		b.WriteByte('\n')
	}

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(p.styled(p.header, t.Title))
		b.WriteByte('\n')
	}

	rule("╭", "┬", "╮")
	if len(t.Headers) > 0 {
		row(t.Headers, func(s string) string { return p.styled(p.header, s) })
		rule("├", "┼", "┤")
	}
	for _, r := range t.Rows {
		if len(r) == 1 && r[0] == "---" {
			rule("├", "┼", "┤")
			continue
		}
		row(r, func(s string) string { return p.styled(p.value, s) })
	}
	rule("╰", "┴", "╯")

	return b.String()
}

func (p Palette) styled(s lipgloss.Style, text string) string {
	if p.plain {
		return text
	}
	return s.Render(text)
}
