// Package tree lays a comment thread out as screen lines and maps lines
// back to the rows they belong to.
package tree

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/glabrego/snoo-cli/internal/comments"
)

// HeaderRow marks lines that belong to no comment row.
const HeaderRow = -1

type Line struct {
	Text string
	Row  int
}

// RenderFunc draws one row at the given content width, without indentation.
type RenderFunc func(row comments.Row, width int) []string

// IndentFunc returns the gutter for a depth. It may contain ANSI styling.
type IndentFunc func(depth int) string

type BuildOptions struct {
	Width  int
	Indent IndentFunc
	Render RenderFunc
	// Spacing inserts a blank line between top-level comments.
	Spacing bool
}

type Layout struct {
	Lines []Line
	first []int
	last  []int
}

func Build(header []string, rows []comments.Row, opts BuildOptions) Layout {
	width := max(1, opts.Width)
	lay := Layout{
		Lines: make([]Line, 0, len(header)+len(rows)*3),
		first: make([]int, len(rows)),
		last:  make([]int, len(rows)),
	}
	for _, text := range header {
		lay.Lines = append(lay.Lines, Line{Text: text, Row: HeaderRow})
	}

	for i, row := range rows {
		if opts.Spacing && row.Depth == 0 && i > 0 {
			lay.Lines = append(lay.Lines, Line{Row: HeaderRow})
		}
		indent := ""
		if opts.Indent != nil {
			indent = opts.Indent(row.Depth)
		}
		// Deep threads keep at least half the width for text.
		if ansi.StringWidth(indent) > width/2 {
			indent = ansi.Truncate(indent, width/2, "")
		}
		content := max(1, width-ansi.StringWidth(indent))

		var body []string
		if opts.Render != nil {
			body = opts.Render(row, content)
		}
		if len(body) == 0 {
			body = []string{""}
		}
		lay.first[i] = len(lay.Lines)
		for _, text := range body {
			lay.Lines = append(lay.Lines, Line{Text: indent + text, Row: i})
		}
		lay.last[i] = len(lay.Lines) - 1
	}
	return lay
}

// Span returns the first and last line of row.
func (l Layout) Span(row int) (first, last int, ok bool) {
	if row < 0 || row >= len(l.first) {
		return 0, 0, false
	}
	return l.first[row], l.last[row], true
}

// RowsIn returns the rows with at least one line in [top, top+height), in
// display order.
func (l Layout) RowsIn(top, height int) []int {
	if height <= 0 || len(l.Lines) == 0 {
		return nil
	}
	top = max(0, top)
	end := min(len(l.Lines), top+height)
	out := make([]int, 0, height)
	prev := HeaderRow
	for i := top; i < end; i++ {
		row := l.Lines[i].Row
		if row == HeaderRow || row == prev {
			continue
		}
		out = append(out, row)
		prev = row
	}
	return out
}

// Render joins the lines in [top, top+height).
func (l Layout) Render(top, height int) string {
	if len(l.Lines) == 0 || height <= 0 {
		return ""
	}
	top = max(0, min(top, len(l.Lines)-1))
	end := min(len(l.Lines), top+height)
	var b strings.Builder
	for _, line := range l.Lines[top:end] {
		b.WriteString(line.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// MaxTop is the last top line that still fills the screen.
func (l Layout) MaxTop(height int) int {
	return max(0, len(l.Lines)-height)
}
