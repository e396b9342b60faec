package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/snoo-cli/internal/comments"
	"github.com/glabrego/snoo-cli/internal/entity"
	"github.com/glabrego/snoo-cli/internal/tui/actions"
	"github.com/glabrego/snoo-cli/internal/tui/state"
	"github.com/glabrego/snoo-cli/internal/tui/tree"
	"github.com/glabrego/snoo-cli/internal/tui/view"
)

// threadState is the comment view of one post. It is empty while the feed
// is shown.
type threadState struct {
	thread   *comments.Thread
	post     entity.Post
	rows     []comments.Row
	cursor   int
	cursorID string
	top      int
	// lastTop is top as of the previous sync, for the scroll direction.
	lastTop int
	// visibleMore holds the placeholders currently on screen.
	visibleMore map[string]bool
}

func (m Model) inThread() bool {
	return m.thread.thread != nil
}

func (m *Model) enterThread(thread *comments.Thread, post entity.Post) {
	m.closeThread()
	m.thread = threadState{
		thread:      thread,
		post:        post,
		visibleMore: make(map[string]bool),
	}
	m.refreshThread()
	m.syncThread(false)
}

func (m *Model) closeThread() {
	if m.thread.thread != nil {
		m.thread.thread.Close()
	}
	m.thread = threadState{}
}

// refreshThread re-reads the rows and keeps the cursor on the same comment
// while it is still shown.
func (m *Model) refreshThread() {
	ts := &m.thread
	if ts.thread == nil {
		return
	}
	ts.rows = ts.thread.Rows()
	if ts.cursorID != "" {
		for i, row := range ts.rows {
			if row.ID == ts.cursorID {
				ts.cursor = i
				return
			}
		}
	}
	ts.cursor = state.ClampCursor(ts.cursor, len(ts.rows))
	ts.cursorID = ""
	if ts.cursor < len(ts.rows) {
		ts.cursorID = ts.rows[ts.cursor].ID
	}
}

func (m *Model) setThreadCursor(i int) {
	ts := &m.thread
	ts.cursor = state.ClampCursor(i, len(ts.rows))
	ts.cursorID = ""
	if ts.cursor < len(ts.rows) {
		ts.cursorID = ts.rows[ts.cursor].ID
	}
}

func (m Model) currentRow() (comments.Row, bool) {
	ts := m.thread
	if ts.cursor < 0 || ts.cursor >= len(ts.rows) {
		return comments.Row{}, false
	}
	return ts.rows[ts.cursor], true
}

func (m Model) threadLayout() tree.Layout {
	ts := m.thread
	now := m.nowFn()
	width := m.contentWidth()

	matches := make(map[string]bool)
	for _, id := range ts.thread.Matches() {
		matches[id] = true
	}
	current, _, _ := ts.thread.CurrentMatch()
	active := ts.cursorID

	return tree.Build(view.PostHeaderLines(ts.post, now, width, m.theme), ts.rows, tree.BuildOptions{
		Width: width,
		Indent: func(depth int) string {
			return view.Indent(depth, m.theme)
		},
		Render: func(row comments.Row, w int) []string {
			return view.CommentLines(view.CommentParams{
				Row:     row,
				Now:     now,
				Width:   w,
				Active:  row.ID == active,
				Match:   matches[row.ID],
				Current: row.ID == current,
			}, m.theme)
		},
		Spacing: true,
	})
}

// syncThread scrolls the cursor into view, then tells the thread what is on
// screen: first the top visible comment, then placeholders entering or
// leaving.
// With track set the visible set also moves the match cursor, which only
// manual scrolling should do.
func (m *Model) syncThread(track bool) {
	ts := &m.thread
	if ts.thread == nil {
		return
	}
	height := m.bodyHeight()
	lay := m.threadLayout()
	maxTop := lay.MaxTop(height)
	if first, last, ok := lay.Span(ts.cursor); ok {
		if ts.cursor == 0 && last < height {
			ts.top = 0
		} else {
			ts.top = state.FollowCursor(ts.top, first, last, height, maxTop)
		}
	} else {
		ts.top = min(ts.top, maxTop)
	}

	visible := lay.RowsIn(ts.top, height)
	ids := make([]string, 0, len(visible))
	var appeared []string
	onScreen := make(map[string]bool)
	topSet := false
	for _, idx := range visible {
		row := ts.rows[idx]
		if row.More {
			onScreen[row.ID] = true
			if !ts.visibleMore[row.ID] {
				appeared = append(appeared, row.ID)
			}
			continue
		}
		ids = append(ids, row.ID)
		if !topSet {
			if pos, ok := ts.thread.Position(row.ID); ok {
				ts.thread.SetTopIndex(pos)
				topSet = true
			}
		}
	}
	// The fast path compares against the top index, so it must be current.
	for _, id := range appeared {
		ts.thread.MoreAppeared(id)
	}
	for id := range ts.visibleMore {
		if !onScreen[id] {
			ts.thread.MoreDisappeared(id)
		}
	}
	ts.visibleMore = onScreen
	if track {
		ts.thread.OnVisibleSetChanged(ids, ts.top >= ts.lastTop)
	}
	ts.lastTop = ts.top
}

func (m Model) updateThreadKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ts := &m.thread
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Back):
		m.closeThread()
		m.status = ""
		m.err = nil
		return m, m.syncFeedWindow()
	case key.Matches(msg, m.keys.Up):
		m.setThreadCursor(ts.cursor - 1)
		m.syncThread(true)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.setThreadCursor(ts.cursor + 1)
		m.syncThread(true)
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.pageThread(-1)
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.pageThread(1)
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.setThreadCursor(0)
		m.syncThread(true)
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.setThreadCursor(len(ts.rows) - 1)
		m.syncThread(true)
		return m, nil
	case key.Matches(msg, m.keys.Collapse):
		return m.toggleCurrent()
	case key.Matches(msg, m.keys.Enter):
		row, ok := m.currentRow()
		if !ok {
			return m, nil
		}
		if !row.More {
			return m.toggleCurrent()
		}
		if err := ts.thread.TapMore(row.ID); err != nil {
			m.err = err
			return m, nil
		}
		m.refreshThread()
		m.syncThread(false)
		return m, nil
	case key.Matches(msg, m.keys.Search):
		current := ""
		if ts.thread.SearchMode() == comments.SearchText {
			current = m.search.Value()
		}
		return m.startSearch(searchThread, current)
	case key.Matches(msg, m.keys.NextMatch):
		return m.matchStep(true)
	case key.Matches(msg, m.keys.PrevMatch):
		return m.matchStep(false)
	case key.Matches(msg, m.keys.Unseen):
		on := ts.thread.SearchMode() != comments.SearchUnseen
		return m, actions.UnseenModeCmd(ts.thread, on)
	case key.Matches(msg, m.keys.MarkSeen):
		return m, actions.MarkAllSeenCmd(ts.thread)
	case key.Matches(msg, m.keys.Open):
		return m.openURL(ts.post)
	}
	return m, nil
}

func (m Model) toggleCurrent() (tea.Model, tea.Cmd) {
	row, ok := m.currentRow()
	if !ok || row.More {
		return m, nil
	}
	if err := m.thread.thread.ToggleCollapsed(row.ID); err != nil {
		if !errors.Is(err, comments.ErrUnknownNode) {
			m.err = err
		}
		return m, nil
	}
	m.refreshThread()
	m.syncThread(false)
	return m, nil
}

// pageThread scrolls by a screen and puts the cursor on the first row shown.
func (m *Model) pageThread(dir int) {
	ts := &m.thread
	height := m.bodyHeight()
	lay := m.threadLayout()
	top := max(0, min(ts.top+dir*height, lay.MaxTop(height)))
	rows := lay.RowsIn(top, height)
	if len(rows) == 0 {
		return
	}
	ts.top = top
	m.setThreadCursor(rows[0])
	m.syncThread(true)
}

func (m Model) applyThreadSearch(query string) (tea.Model, tea.Cmd) {
	m.thread.thread.SetSearchQuery(query)
	m.refreshThread()
	if strings.TrimSpace(query) == "" {
		m.syncThread(false)
		return m.setStatus("Search cleared")
	}
	_, _, total := m.thread.thread.CurrentMatch()
	if total == 0 {
		m.syncThread(false)
		return m.setStatus(fmt.Sprintf("No comments match %q", strings.TrimSpace(query)))
	}
	m.jumpToMatch(true)
	return m, nil
}

func (m Model) matchStep(forward bool) (tea.Model, tea.Cmd) {
	if m.thread.thread.SearchMode() == comments.SearchOff {
		return m.setStatus("No active search")
	}
	if !m.jumpToMatch(forward) {
		return m.setStatus("No matches")
	}
	return m, nil
}

// jumpToMatch advances the match cursor and moves to the row it points at.
func (m *Model) jumpToMatch(forward bool) bool {
	ts := &m.thread
	target, ok := ts.thread.ScrollToNextMatch(forward)
	if !ok {
		return false
	}
	m.refreshThread()
	for i, row := range ts.rows {
		if row.ID == target {
			m.setThreadCursor(i)
			break
		}
	}
	m.syncThread(false)
	return true
}
