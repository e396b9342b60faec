package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/glabrego/snoo-cli/internal/entity"
	tuitheme "github.com/glabrego/snoo-cli/internal/tui/theme"
)

type EntityLineParams struct {
	Entity     entity.Entity
	Now        time.Time
	ShowNumber bool
	VisiblePos int
	Active     bool
	Width      int
}

// RenderEntityLine draws one feed item as a title line and a meta line.
func RenderEntityLine(p EntityLineParams, th tuitheme.Theme) []string {
	cursorMarker := " "
	if p.Active {
		cursorMarker = ">"
	}
	prefix := fmt.Sprintf(" %s ", cursorMarker)
	if p.ShowNumber {
		prefix = fmt.Sprintf(" %s%3d. ", cursorMarker, p.VisiblePos+1)
	}
	indent := strings.Repeat(" ", ansi.StringWidth(prefix))

	available := max(1, p.Width-ansi.StringWidth(prefix))
	title := truncate(EntityTitle(p.Entity), available)
	meta := truncate(EntityMeta(p.Entity, p.Now), available)

	return []string{
		th.RenderActiveLine(p.Active, prefix+th.StyleEntityTitle(p.Entity, title)),
		th.RenderActiveLine(p.Active, indent+th.MetaLabel.Render(meta)),
	}
}

func EntityTitle(e entity.Entity) string {
	var title string
	switch v := e.(type) {
	case entity.Post:
		title = v.Title
		if v.Flair != "" {
			title = "[" + v.Flair + "] " + title
		}
	case entity.Comment:
		title = firstLine(v.Body)
	case entity.Subreddit:
		title = "r/" + v.Name
		if v.Title != "" {
			title += " | " + v.Title
		}
	case entity.User:
		title = "u/" + v.Name
	case entity.Multi:
		title = "m/" + v.Name
	case entity.Message:
		title = v.Subject
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return "(untitled)"
	}
	return title
}

func EntityMeta(e entity.Entity, now time.Time) string {
	var parts []string
	switch v := e.(type) {
	case entity.Post:
		parts = append(parts, "r/"+v.Subreddit, "u/"+v.Author,
			fmt.Sprintf("%d pts", v.Score), fmt.Sprintf("%d comments", v.NumComments),
			RelativeTimeLabel(now, v.CreatedAt))
		if v.Over18 {
			parts = append(parts, "nsfw")
		}
	case entity.Comment:
		parts = append(parts, "r/"+v.Subreddit, "u/"+v.Author,
			fmt.Sprintf("%d pts", v.Score), RelativeTimeLabel(now, v.CreatedAt))
	case entity.Subreddit:
		parts = append(parts, fmt.Sprintf("%d subscribers", v.Subscribers))
	case entity.User:
		parts = append(parts, fmt.Sprintf("%d link karma", v.LinkKarma), fmt.Sprintf("%d comment karma", v.CommentKarma))
	case entity.Multi:
		parts = append(parts, "by "+v.Owner, fmt.Sprintf("%d subreddits", len(v.Subreddits)))
	case entity.Message:
		parts = append(parts, "from "+v.Author, RelativeTimeLabel(now, v.CreatedAt))
		if v.Unread {
			parts = append(parts, "unread")
		}
	}
	return strings.Join(parts, " · ")
}

func RelativeTimeLabel(now, then time.Time) string {
	if now.IsZero() {
		now = time.Now()
	}
	if then.IsZero() {
		return "unknown"
	}
	if then.After(now) {
		return "just now"
	}
	d := now.Sub(then)
	if d < time.Minute {
		return "just now"
	}
	if d < time.Hour {
		n := int(d / time.Minute)
		if n == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", n)
	}
	if d < 24*time.Hour {
		n := int(d / time.Hour)
		if n == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", n)
	}
	n := int(d / (24 * time.Hour))
	if n == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", n)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return strings.Repeat(".", maxLen)
	}
	return ansi.Truncate(s, maxLen, "...")
}
