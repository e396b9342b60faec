package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/glabrego/snoo-cli/internal/comments"
	"github.com/glabrego/snoo-cli/internal/entity"
	"github.com/glabrego/snoo-cli/internal/render/markup"
	tuitheme "github.com/glabrego/snoo-cli/internal/tui/theme"
)

// PostHeaderLines is the block shown above a post's comments.
func PostHeaderLines(post entity.Post, now time.Time, width int, th tuitheme.Theme) []string {
	width = max(1, width)
	lines := make([]string, 0, 16)
	for _, line := range markup.Lines("", post.Title, width) {
		lines = append(lines, th.Title.Render(line))
	}
	lines = append(lines, strings.Repeat("=", max(1, min(width, len([]rune(post.Title))))))
	lines = append(lines, th.MetaLabel.Render(truncate(EntityMeta(post, now), width)))
	if post.URL != "" && !strings.Contains(post.URL, post.Permalink) {
		lines = append(lines, th.MetaValue.Render(truncate(post.URL, width)))
	}

	if body := markup.Lines(post.SelfTextHTML, post.SelfText, width); len(body) > 0 {
		lines = append(lines, "")
		lines = append(lines, body...)
	}
	lines = append(lines, "")
	return lines
}

type CommentParams struct {
	Row     comments.Row
	Now     time.Time
	Width   int
	Active  bool
	Match   bool
	Current bool
}

// CommentLines draws one comment or placeholder row at width, without
// its depth indentation.
func CommentLines(p CommentParams, th tuitheme.Theme) []string {
	width := max(1, p.Width)
	if p.Row.More {
		return []string{th.RenderActiveLine(p.Active, th.More.Render(truncate(MoreLabel(p.Row), width)))}
	}

	author := p.Row.Author
	if author == "" {
		author = "[deleted]"
	}
	header := th.Author.Render("u/"+author) + " " +
		th.Score.Render(fmt.Sprintf("%d pts", p.Row.Score)) + " " +
		th.MetaLabel.Render(RelativeTimeLabel(p.Now, p.Row.CreatedAt))
	if p.Row.Collapsed {
		header += " " + th.MetaLabel.Render(fmt.Sprintf("[+%d hidden]", p.Row.HiddenReplies))
	}
	if p.Current {
		header = th.Match.Render("▶") + " " + header
	} else if p.Match {
		header = th.Match.Render("•") + " " + header
	}

	lines := []string{th.RenderActiveLine(p.Active, truncate(header, width))}
	if p.Row.Collapsed {
		return lines
	}
	for _, line := range markup.Lines("", p.Row.Body, width) {
		lines = append(lines, th.RenderActiveLine(p.Active, line))
	}
	return lines
}

// MoreLabel describes a placeholder and the state of its loader.
func MoreLabel(row comments.Row) string {
	var label string
	switch {
	case row.Remaining == 0:
		label = "continue this thread →"
	case row.Remaining == 1:
		label = "load 1 more reply"
	default:
		label = fmt.Sprintf("load %d more replies", row.Remaining)
	}
	switch row.LoaderState {
	case comments.LoaderCountingDown:
		label += " (loading soon)"
	case comments.LoaderLoading:
		label += " (loading…)"
	}
	return label
}

// Indent builds the gutter for depth, one coloured bar per level.
func Indent(depth int, th tuitheme.Theme) string {
	if depth <= 0 {
		return ""
	}
	var b strings.Builder
	for d := 0; d < depth; d++ {
		b.WriteString(th.GutterStyle(d).Render("│"))
		b.WriteString(" ")
	}
	return b.String()
}
