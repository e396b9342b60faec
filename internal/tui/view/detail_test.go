package view

import (
	"strings"
	"testing"
	"time"

	"github.com/glabrego/snoo-cli/internal/comments"
	"github.com/glabrego/snoo-cli/internal/entity"
	tuitheme "github.com/glabrego/snoo-cli/internal/tui/theme"
)

func TestPostHeaderLines_RendersSelfText(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	lines := PostHeaderLines(entity.Post{
		Title:        "Ask: favourite Go library?",
		Subreddit:    "golang",
		Author:       "gopher",
		SelfTextHTML: "<div class=\"md\"><p>Mine is <strong>bubbletea</strong>.</p></div>",
		SelfText:     "Mine is **bubbletea**.",
		CreatedAt:    now.Add(-time.Hour),
	}, now, 60, tuitheme.Default())

	joined := stripANSI(strings.Join(lines, "\n"))
	if !strings.Contains(joined, "Ask: favourite Go library?") {
		t.Fatalf("expected title, got %q", joined)
	}
	if !strings.Contains(joined, "r/golang") {
		t.Fatalf("expected meta line, got %q", joined)
	}
	if !strings.Contains(joined, "Mine is bubbletea.") {
		t.Fatalf("expected rendered self text, got %q", joined)
	}
}

func TestCommentLines_CollapsedShowsHiddenCount(t *testing.T) {
	lines := CommentLines(CommentParams{
		Row:   comments.Row{ID: "t1_a", Author: "gopher", Body: "hidden body", Collapsed: true, HiddenReplies: 3},
		Width: 60,
	}, tuitheme.Default())

	if len(lines) != 1 {
		t.Fatalf("expected only the header for a collapsed comment, got %q", lines)
	}
	if got := stripANSI(lines[0]); !strings.Contains(got, "[+3 hidden]") {
		t.Fatalf("expected hidden reply count, got %q", got)
	}
}

func TestCommentLines_MatchMarkers(t *testing.T) {
	row := comments.Row{ID: "t1_a", Author: "gopher", Body: "text"}
	current := stripANSI(CommentLines(CommentParams{Row: row, Width: 60, Current: true}, tuitheme.Default())[0])
	if !strings.HasPrefix(current, "▶ ") {
		t.Fatalf("expected current match marker, got %q", current)
	}
	match := stripANSI(CommentLines(CommentParams{Row: row, Width: 60, Match: true}, tuitheme.Default())[0])
	if !strings.HasPrefix(match, "• ") {
		t.Fatalf("expected match marker, got %q", match)
	}
}

func TestMoreLabel(t *testing.T) {
	cases := []struct {
		row  comments.Row
		want string
	}{
		{row: comments.Row{More: true}, want: "continue this thread →"},
		{row: comments.Row{More: true, Remaining: 1}, want: "load 1 more reply"},
		{row: comments.Row{More: true, Remaining: 7, LoaderState: comments.LoaderCountingDown}, want: "load 7 more replies (loading soon)"},
		{row: comments.Row{More: true, Remaining: 2, LoaderState: comments.LoaderLoading}, want: "load 2 more replies (loading…)"},
	}
	for _, tc := range cases {
		if got := MoreLabel(tc.row); got != tc.want {
			t.Fatalf("MoreLabel(%+v) = %q, want %q", tc.row, got, tc.want)
		}
	}
}

func TestIndent(t *testing.T) {
	th := tuitheme.Default()
	if got := Indent(0, th); got != "" {
		t.Fatalf("expected no gutter at depth 0, got %q", got)
	}
	if got := stripANSI(Indent(2, th)); got != "│ │ " {
		t.Fatalf("unexpected gutter %q", got)
	}
}
