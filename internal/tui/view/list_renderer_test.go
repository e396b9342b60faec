package view

import (
	"errors"
	"strings"
	"testing"

	"github.com/glabrego/snoo-cli/internal/feed"
)

func TestListTail(t *testing.T) {
	cases := []struct {
		name string
		in   ListRenderInput
		want string
	}{
		{name: "initial load", in: ListRenderInput{Mode: feed.DisplayLoading}, want: "loading…"},
		{name: "first call", in: ListRenderInput{Mode: feed.DisplayItems, Call: 1}, want: "loading…"},
		{name: "later call", in: ListRenderInput{Mode: feed.DisplayItems, Call: 4}, want: "loading… call 4"},
		{name: "error", in: ListRenderInput{Mode: feed.DisplayError, Err: errors.New("timeout")}, want: "could not load feed: timeout (r to retry)"},
		{name: "empty", in: ListRenderInput{Mode: feed.DisplayEmpty}, want: "nothing here"},
		{name: "end", in: ListRenderInput{Mode: feed.DisplayEndOfFeed}, want: "end of feed"},
		{name: "more to come", in: ListRenderInput{Mode: feed.DisplayItems}, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ListTail(tc.in); got != tc.want {
				t.Fatalf("ListTail = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestListTail_SpinnerPrefix(t *testing.T) {
	got := ListTail(ListRenderInput{Call: 2, Spinner: "*"})
	if got != "* loading… call 2" {
		t.Fatalf("unexpected tail %q", got)
	}
}

func TestRenderListBody_RendersWindowAndTail(t *testing.T) {
	var rendered []int
	out := RenderListBody(ListRenderInput{
		Count:  5,
		Start:  1,
		End:    3,
		Cursor: 2,
		Mode:   feed.DisplayEndOfFeed,
		RenderEntityLine: func(index int, active bool) []string {
			rendered = append(rendered, index)
			marker := " "
			if active {
				marker = ">"
			}
			return []string{marker + "item", "meta"}
		},
	})

	if len(rendered) != 2 || rendered[0] != 1 || rendered[1] != 2 {
		t.Fatalf("rendered = %v, want [1 2]", rendered)
	}
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	want := []string{" item", "meta", ">item", "meta", "end of feed"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("lines = %q, want %q", lines, want)
	}
}
