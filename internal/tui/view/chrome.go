package view

import (
	"fmt"
	"strings"

	tuitheme "github.com/glabrego/snoo-cli/internal/tui/theme"
)

func Toolbar(inThread bool) string {
	if inThread {
		return "j/k move | space collapse | enter load more | / search | n/N match | u unseen | m mark seen | o open | esc back"
	}
	return "j/k move | enter comments | s sort | t time | / search | H hide read | r reload | o open | q quit"
}

type FooterParams struct {
	Feed     string
	Sort     string
	Time     string
	Query    string
	HideRead bool
	Shown    int
	// Match fields describe the comment search, when one is active.
	MatchMode  string
	MatchRank  int
	MatchTotal int
}

func Footer(p FooterParams, th tuitheme.Theme) string {
	feed := p.Feed
	if feed == "" {
		feed = "front page"
	}
	parts := []string{
		th.MetaLabel.Render("feed") + " " + th.MetaValue.Render(feed),
		th.MetaLabel.Render("sort") + " " + th.MetaValue.Render(p.Sort),
	}
	if p.Time != "" {
		parts = append(parts, th.MetaLabel.Render("time")+" "+th.MetaValue.Render(p.Time))
	}
	if p.HideRead {
		parts = append(parts, th.MetaValue.Render("hiding read"))
	}
	parts = append(parts, th.MetaValue.Render(fmt.Sprintf("%d shown", p.Shown)))
	if p.Query != "" {
		parts = append(parts, th.MetaLabel.Render("search")+" "+th.MetaValue.Render(fmt.Sprintf("%q", p.Query)))
	}
	if p.MatchMode != "" {
		parts = append(parts, th.MetaLabel.Render(p.MatchMode)+" "+th.MetaValue.Render(MatchCounter(p.MatchRank, p.MatchTotal)))
	}
	return strings.Join(parts, " • ")
}

// MatchCounter renders "current/total", with "-" before the first jump.
func MatchCounter(rank, total int) string {
	if rank <= 0 {
		return fmt.Sprintf("-/%d", total)
	}
	return fmt.Sprintf("%d/%d", rank, total)
}

func Message(loading bool, hasWarning bool, status, warning string, th tuitheme.Theme) string {
	state := "idle"
	if loading {
		state = "loading"
	}
	if hasWarning {
		state = "warning"
	}
	main := "Ready"
	if status != "" {
		main = status
	} else if hasWarning {
		main = warning
	}
	stateLabel := th.StateIdle.Render("state")
	switch state {
	case "warning":
		stateLabel = th.StateWarn.Render("state")
	case "loading":
		stateLabel = th.StateLoad.Render("state")
	}
	return fmt.Sprintf("%s: %s | %s", stateLabel, state, th.MetaValue.Render(main))
}
