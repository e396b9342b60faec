package view

import (
	"strconv"
	"strings"

	"github.com/glabrego/snoo-cli/internal/feed"
)

type ListRenderInput struct {
	Count  int
	Start  int
	End    int
	Cursor int
	Mode   feed.DisplayMode
	// Call is the upstream request number of a load in progress, 0 when idle.
	Call    int
	Spinner string
	Err     error

	RenderEntityLine func(index int, active bool) []string
}

func RenderListBody(in ListRenderInput) string {
	var b strings.Builder
	if in.Count > 0 && in.Start >= 0 && in.Start < in.End {
		for i := in.Start; i < min(in.End, in.Count); i++ {
			for _, line := range in.RenderEntityLine(i, i == in.Cursor) {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
	}
	if tail := ListTail(in); tail != "" {
		b.WriteString(tail)
		b.WriteString("\n")
	}
	return b.String()
}

// ListTail is the line shown after the last item for the session state.
func ListTail(in ListRenderInput) string {
	switch {
	case in.Call > 0 || in.Mode == feed.DisplayLoading:
		label := "loading…"
		if in.Call > 1 {
			label = "loading… call " + strconv.Itoa(in.Call)
		}
		if in.Spinner != "" {
			label = in.Spinner + " " + label
		}
		return label
	case in.Mode == feed.DisplayError:
		msg := "could not load feed"
		if in.Err != nil {
			msg += ": " + in.Err.Error()
		}
		return msg + " (r to retry)"
	case in.Mode == feed.DisplayEmpty:
		return "nothing here"
	case in.Mode == feed.DisplayEndOfFeed:
		return "end of feed"
	}
	return ""
}
