package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/snoo-cli/internal/entity"
	"github.com/glabrego/snoo-cli/internal/feed"
	"github.com/glabrego/snoo-cli/internal/tui/actions"
	"github.com/glabrego/snoo-cli/internal/tui/state"
	"github.com/glabrego/snoo-cli/internal/tui/view"
)

// entityLines is the height of one feed item.
const entityLines = 2

// timeFilters are the ranges accepted by top and controversial listings,
// in cycling order. The empty filter leaves the choice to Reddit.
var timeFilters = []string{"", "hour", "day", "week", "month", "year", "all"}

func (m Model) updateFeedKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Up):
		return m.moveFeedCursor(-1)
	case key.Matches(msg, m.keys.Down):
		return m.moveFeedCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		return m.moveFeedCursor(-m.feedVisibleItems())
	case key.Matches(msg, m.keys.PageDown):
		return m.moveFeedCursor(m.feedVisibleItems())
	case key.Matches(msg, m.keys.Top):
		return m.moveFeedCursor(-len(m.snap.Entities))
	case key.Matches(msg, m.keys.Bottom):
		return m.moveFeedCursor(len(m.snap.Entities))
	case key.Matches(msg, m.keys.Enter):
		return m.openCurrentThread()
	case key.Matches(msg, m.keys.Open):
		e, ok := m.currentEntity()
		if !ok {
			return m, nil
		}
		post, ok := e.(entity.Post)
		if !ok {
			return m, nil
		}
		return m.openURL(post)
	case key.Matches(msg, m.keys.Reload):
		return m.reload()
	case key.Matches(msg, m.keys.Sort):
		return m.cycleSort()
	case key.Matches(msg, m.keys.Time):
		return m.cycleTimeFilter()
	case key.Matches(msg, m.keys.Search):
		return m.startSearch(searchFeed, m.snap.Query)
	case key.Matches(msg, m.keys.HideRead):
		return m.toggleHideRead()
	}
	return m, nil
}

func (m Model) moveFeedCursor(delta int) (tea.Model, tea.Cmd) {
	if len(m.snap.Entities) == 0 {
		return m, nil
	}
	m.cursor = state.ClampCursor(m.cursor+delta, len(m.snap.Entities))
	m.rememberSelection()
	return m, m.syncFeedWindow()
}

func (m Model) currentEntity() (entity.Entity, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Entities) {
		return nil, false
	}
	return m.snap.Entities[m.cursor], true
}

func (m *Model) rememberSelection() {
	if e, ok := m.currentEntity(); ok {
		m.selectedID = e.Fullname()
		return
	}
	m.selectedID = ""
}

// refreshFeed takes a new snapshot and keeps the cursor on the same entity
// when it is still listed.
func (m *Model) refreshFeed() {
	m.snap = m.paginator.Snapshot()
	if m.selectedID != "" {
		for i, e := range m.snap.Entities {
			if e.Fullname() == m.selectedID {
				m.cursor = i
				return
			}
		}
	}
	m.cursor = state.ClampCursor(m.cursor, len(m.snap.Entities))
	m.rememberSelection()
}

// resetFeedView forgets the cursor and the visible window before the
// session is restarted, so nothing from the old listing is reported hidden.
func (m *Model) resetFeedView() {
	m.cursor = 0
	m.selectedID = ""
	m.winStart = 0
	m.window = nil
	m.err = nil
	m.status = ""
	m.snap = m.paginator.Snapshot()
}

func (m Model) feedVisibleItems() int {
	// One line is kept for the list tail.
	return max(1, (m.bodyHeight()-1)/entityLines)
}

func (m Model) feedWindow() (int, int) {
	return state.CenteredWindow(len(m.snap.Entities), m.cursor, m.feedVisibleItems())
}

// syncFeedWindow reports items that scrolled out of view and asks for more
// when the last visible item is close to the end.
func (m *Model) syncFeedWindow() tea.Cmd {
	entities := m.snap.Entities
	start, end := m.feedWindow()

	var cmds []tea.Cmd
	for _, idx := range state.Leaving(m.winStart, m.winStart+len(m.window), start, end) {
		cmds = append(cmds, actions.MarkHiddenCmd(m.paginator, m.window[idx-m.winStart], idx))
	}
	m.winStart = start
	m.window = append(m.window[:0:0], entities[start:end]...)

	if end > start && m.paginator.OnElementVisible(entities[end-1], end-1) {
		cmds = append(cmds, actions.LoadFeedCmd(m.paginator, true, false))
	}
	return tea.Batch(cmds...)
}

func (m Model) reload() (tea.Model, tea.Cmd) {
	m.err = nil
	m.status = ""
	if m.snap.Mode == feed.DisplayError && len(m.snap.Entities) > 0 {
		return m, actions.RetryFeedCmd(m.paginator)
	}
	m.resetFeedView()
	return m, actions.LoadFeedCmd(m.paginator, false, true)
}

func (m Model) cycleSort() (tea.Model, tea.Cmd) {
	next := feed.NextSort(m.snap.Sort)
	if !m.paginator.SetSort(next) {
		return m, nil
	}
	if !sortTakesTime(next) && m.timeFilter != "" {
		m.timeFilter = ""
		m.paginator.SetFilter("")
	}
	m.resetFeedView()
	m.status = "Sort: " + string(next)
	return m, tea.Batch(
		actions.LoadFeedCmd(m.paginator, false, false),
		persistPreferencesCmd(m.savePreferencesFn, m.preferences()),
	)
}

func (m Model) cycleTimeFilter() (tea.Model, tea.Cmd) {
	if !sortTakesTime(m.snap.Sort) {
		return m.setStatus("Time range applies to top and controversial")
	}
	next := timeFilters[0]
	for i, f := range timeFilters {
		if f == m.timeFilter {
			next = timeFilters[(i+1)%len(timeFilters)]
			break
		}
	}
	m.timeFilter = next
	if !m.paginator.SetFilter(next) {
		return m, nil
	}
	m.resetFeedView()
	if next == "" {
		m.status = "Time range: default"
	} else {
		m.status = "Time range: " + next
	}
	return m, actions.LoadFeedCmd(m.paginator, false, false)
}

func sortTakesTime(s feed.Sort) bool {
	return s == feed.SortTop || s == feed.SortControversial
}

func (m Model) applyFeedSearch(query string) (tea.Model, tea.Cmd) {
	if !m.paginator.SetSearchQuery(query) {
		return m, nil
	}
	m.resetFeedView()
	if q := strings.TrimSpace(query); q != "" {
		m.status = "Searching for " + q
	}
	return m, actions.LoadFeedCmd(m.paginator, false, false)
}

func (m Model) toggleHideRead() (tea.Model, tea.Cmd) {
	m.hideRead = !m.hideRead
	m.paginator.SetHideRead(m.hideRead)
	m.resetFeedView()
	if m.hideRead {
		m.status = "Hide read: on"
	} else {
		m.status = "Hide read: off"
	}
	return m, tea.Batch(
		actions.LoadFeedCmd(m.paginator, false, true),
		persistPreferencesCmd(m.savePreferencesFn, m.preferences()),
	)
}

func (m Model) openCurrentThread() (tea.Model, tea.Cmd) {
	e, ok := m.currentEntity()
	if !ok {
		return m, nil
	}
	var postID string
	switch v := e.(type) {
	case entity.Post:
		postID = v.ID
	case entity.Comment:
		_, postID = entity.SplitFullname(v.LinkID)
	}
	if postID == "" {
		return m.setStatus("Nothing to open")
	}
	m.opening = postID
	m.err = nil
	m.status = "Loading comments…"
	return m, actions.OpenThreadCmd(m.service, postID, m.signalChange)
}

func (m Model) signalChange() {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}

func (m Model) feedBody() string {
	start, end := m.feedWindow()
	now := m.nowFn()
	width := m.contentWidth()
	return view.RenderListBody(view.ListRenderInput{
		Count:   len(m.snap.Entities),
		Start:   start,
		End:     end,
		Cursor:  m.cursor,
		Mode:    m.snap.Mode,
		Call:    m.loadingCall(),
		Spinner: m.spinner.View(),
		Err:     m.snap.Err,
		RenderEntityLine: func(index int, active bool) []string {
			return view.RenderEntityLine(view.EntityLineParams{
				Entity:     m.snap.Entities[index],
				Now:        now,
				ShowNumber: true,
				VisiblePos: index,
				Active:     active,
				Width:      width,
			}, m.theme)
		},
	})
}

func (m Model) loadingCall() int {
	if !m.snap.Progress.Active {
		return 0
	}
	return max(1, m.snap.Progress.CurrentCall)
}
