package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/glabrego/snoo-cli/internal/comments"
	"github.com/glabrego/snoo-cli/internal/entity"
	"github.com/glabrego/snoo-cli/internal/feed"
	"github.com/glabrego/snoo-cli/internal/logging"
	"github.com/glabrego/snoo-cli/internal/tui/actions"
	"github.com/glabrego/snoo-cli/internal/tui/platform"
	tuitheme "github.com/glabrego/snoo-cli/internal/tui/theme"
	"github.com/glabrego/snoo-cli/internal/tui/view"
)

type Service interface {
	NewPaginator(opts feed.Options) *feed.Paginator
	OpenThread(ctx context.Context, postID string, onChange func()) (*comments.Thread, entity.Post, error)
}

type Preferences struct {
	Sort     feed.Sort
	HideRead bool
	Feed     string
}

type Options struct {
	Feed             string
	Sort             feed.Sort
	ChunkSize        int
	HideRead         bool
	MarkReadOnScroll bool
	Logger           logrus.FieldLogger
}

// chromeLines is everything around the body: title, toolbar, spacer,
// footer and message line.
const chromeLines = 5

type clearStatusMsg struct {
	id int
}

type preferenceSaveErrorMsg struct {
	err error
}

type searchTarget int

const (
	searchFeed searchTarget = iota
	searchThread
)

type Model struct {
	service   Service
	keys      KeyMap
	theme     tuitheme.Theme
	log       logrus.FieldLogger
	paginator *feed.Paginator
	changes   chan struct{}

	snap       feed.Snapshot
	cursor     int
	selectedID string
	winStart   int
	window     []entity.Entity
	hideRead   bool
	timeFilter string

	thread  threadState
	opening string

	searching bool
	searchFor searchTarget
	search    textinput.Model
	spinner   spinner.Model
	showHelp  bool

	width    int
	height   int
	status   string
	statusID int
	err      error

	openURLFn         func(string) error
	copyURLFn         func(string) error
	nowFn             func() time.Time
	savePreferencesFn func(Preferences) error
}

func NewModel(service Service, opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	ti := textinput.New()
	ti.Placeholder = "search"
	ti.Prompt = "/ "
	ti.CharLimit = 256

	m := Model{
		service:   service,
		keys:      DefaultKeyMap(),
		theme:     tuitheme.Default(),
		log:       logging.OrDiscard(opts.Logger),
		changes:   make(chan struct{}, 1),
		hideRead:  opts.HideRead,
		search:    ti,
		spinner:   s,
		openURLFn: platform.OpenURLInBrowser,
		copyURLFn: platform.CopyURLToClipboard,
		nowFn:     time.Now,
	}
	m.paginator = service.NewPaginator(feed.Options{
		Feed:             opts.Feed,
		Sort:             opts.Sort,
		ChunkSize:        opts.ChunkSize,
		HideRead:         opts.HideRead,
		MarkReadOnScroll: opts.MarkReadOnScroll,
		Logger:           m.log,
		OnChange:         m.signalChange,
	})
	m.snap = m.paginator.Snapshot()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		actions.LoadFeedCmd(m.paginator, false, false),
		actions.WaitForChangeCmd(m.changes),
		m.spinner.Tick,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.inThread() {
			m.syncThread(false)
			return m, nil
		}
		return m, m.syncFeedWindow()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		if key.Matches(msg, m.keys.Help) {
			m.showHelp = !m.showHelp
			return m, nil
		}
		if m.showHelp {
			switch {
			case key.Matches(msg, m.keys.Back):
				m.showHelp = false
			case key.Matches(msg, m.keys.Quit):
				return m.quit()
			}
			return m, nil
		}
		if m.inThread() {
			return m.updateThreadKeys(msg)
		}
		return m.updateFeedKeys(msg)
	case actions.ChangedMsg:
		cmds := []tea.Cmd{actions.WaitForChangeCmd(m.changes)}
		m.refreshFeed()
		if m.inThread() {
			m.refreshThread()
			m.syncThread(false)
		} else {
			cmds = append(cmds, m.syncFeedWindow())
		}
		return m, tea.Batch(cmds...)
	case actions.FeedLoadedMsg:
		m.refreshFeed()
		if msg.Err != nil {
			m.status = ""
			m.err = msg.Err
		}
		m.log.WithFields(logrus.Fields{"more": msg.More, "duration": msg.Duration}).Debug("feed load finished")
		if m.inThread() {
			return m, nil
		}
		return m, m.syncFeedWindow()
	case actions.ThreadOpenedMsg:
		if msg.PostID != m.opening {
			if msg.Thread != nil {
				msg.Thread.Close()
			}
			return m, nil
		}
		m.opening = ""
		if msg.Err != nil {
			m.status = ""
			m.err = msg.Err
			return m, nil
		}
		m.status = ""
		m.err = nil
		m.enterThread(msg.Thread, msg.Post)
		return m, nil
	case actions.SeenMarkedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		return m.setStatus("Marked all comments seen")
	case actions.UnseenModeMsg:
		if !m.inThread() {
			return m, nil
		}
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.refreshThread()
		m.syncThread(false)
		if !msg.On {
			return m.setStatus("Unseen mode: off")
		}
		_, _, total := m.thread.thread.CurrentMatch()
		if total == 0 {
			return m.setStatus("No unseen comments")
		}
		m.jumpToMatch(true)
		return m.setStatus(fmt.Sprintf("Unseen mode: %d comments", total))
	case actions.ActionErrorMsg:
		m.err = msg.Err
		return m, nil
	case actions.OpenURLSuccessMsg:
		return m.setStatus(msg.Status)
	case actions.OpenURLErrorMsg:
		m.status = ""
		m.err = msg.Err
		return m, nil
	case preferenceSaveErrorMsg:
		m.err = fmt.Errorf("save preferences: %w", msg.err)
		return m, nil
	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
		}
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.titleLine())
	b.WriteString("\n")
	if m.showHelp {
		b.WriteString("Help (? to close)\n\n")
		b.WriteString(m.helpView())
		b.WriteString("\n")
		b.WriteString(m.bottomLine())
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(view.Toolbar(m.inThread()))
	b.WriteString("\n\n")
	if m.inThread() {
		b.WriteString(m.threadLayout().Render(m.thread.top, m.bodyHeight()))
	} else {
		b.WriteString(m.feedBody())
	}
	b.WriteString(m.footer())
	b.WriteString("\n")
	b.WriteString(m.bottomLine())
	b.WriteString("\n")
	return b.String()
}

func (m Model) titleLine() string {
	mode := "feed"
	if m.inThread() {
		mode = "comments"
	}
	return m.theme.Title.Render("snoo") + " " + m.theme.ModePill.Render(mode)
}

func (m Model) footer() string {
	p := view.FooterParams{
		Feed:     m.paginator.Feed(),
		Sort:     string(m.snap.Sort),
		Time:     m.snap.Filter,
		Query:    m.snap.Query,
		HideRead: m.hideRead,
		Shown:    len(m.snap.Entities),
	}
	if m.inThread() {
		p.Shown = m.thread.thread.FlattenedCount()
		p.Query = ""
		switch m.thread.thread.SearchMode() {
		case comments.SearchText:
			p.MatchMode = "match"
		case comments.SearchUnseen:
			p.MatchMode = "unseen"
		}
		if p.MatchMode != "" {
			_, p.MatchRank, p.MatchTotal = m.thread.thread.CurrentMatch()
		}
	}
	return view.Footer(p, m.theme)
}

// bottomLine is the search prompt while typing, the message panel otherwise.
func (m Model) bottomLine() string {
	if m.searching {
		return m.search.View()
	}
	warning := ""
	if m.err != nil {
		warning = m.err.Error()
	}
	return view.Message(m.loading(), m.err != nil, m.status, warning, m.theme)
}

func (m Model) loading() bool {
	return m.snap.Progress.Active || m.opening != ""
}

func (m Model) helpView() string {
	bindings := m.keys.feedHelp()
	section := "Feed:"
	if m.inThread() {
		bindings = m.keys.threadHelp()
		section = "Comments:"
	}
	lines := []string{section}
	for _, b := range bindings {
		h := b.Help()
		lines = append(lines, fmt.Sprintf("  %-8s %s", h.Key, h.Desc))
	}
	return strings.Join(lines, "\n")
}

func (m Model) bodyHeight() int {
	if m.height <= 0 {
		return 20
	}
	return max(1, m.height-chromeLines)
}

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return max(20, m.width-2)
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		query := m.search.Value()
		m.searching = false
		m.search.Blur()
		if m.searchFor == searchThread && m.inThread() {
			return m.applyThreadSearch(query)
		}
		return m.applyFeedSearch(query)
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) startSearch(target searchTarget, current string) (tea.Model, tea.Cmd) {
	m.searching = true
	m.searchFor = target
	m.search.SetValue(current)
	m.search.CursorEnd()
	return m, m.search.Focus()
}

func (m Model) openURL(post entity.Post) (tea.Model, tea.Cmd) {
	target, err := platform.ValidateURL(post.URL)
	if err != nil {
		target, err = platform.ValidateURL(platform.PermalinkURL(post.Permalink))
	}
	if err != nil {
		m.status = ""
		m.err = err
		return m, nil
	}
	m.err = nil
	return m, actions.OpenURLCmd(target, m.openURLFn, m.copyURLFn)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.closeThread()
	return m, tea.Quit
}

func (m Model) setStatus(status string) (tea.Model, tea.Cmd) {
	m.statusID++
	m.status = status
	m.err = nil
	return m, clearStatusCmd(m.statusID, 4*time.Second)
}

func clearStatusCmd(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return clearStatusMsg{id: id}
	})
}

func persistPreferencesCmd(saveFn func(Preferences) error, prefs Preferences) tea.Cmd {
	if saveFn == nil {
		return nil
	}
	return func() tea.Msg {
		if err := saveFn(prefs); err != nil {
			return preferenceSaveErrorMsg{err: err}
		}
		return nil
	}
}

// ApplyPreferences sets the starting sort and hide-read state. It must be
// called before the program starts.
func (m *Model) ApplyPreferences(prefs Preferences) {
	if prefs.Sort != "" {
		m.paginator.SetSort(prefs.Sort)
	}
	m.hideRead = prefs.HideRead
	m.paginator.SetHideRead(prefs.HideRead)
	m.snap = m.paginator.Snapshot()
}

func (m *Model) SetPreferencesSaver(saveFn func(Preferences) error) {
	m.savePreferencesFn = saveFn
}

func (m Model) preferences() Preferences {
	return Preferences{
		Sort:     m.snap.Sort,
		HideRead: m.hideRead,
		Feed:     m.paginator.Feed(),
	}
}
