package comments

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/glabrego/snoo-cli/internal/dedup"
	"github.com/glabrego/snoo-cli/internal/entity"
	"github.com/glabrego/snoo-cli/internal/logging"
)

var (
	ErrUnknownNode = errors.New("unknown comment node")
	ErrNotMore     = errors.New("node is not a placeholder")
)

// SeenStore keeps, per post, the comment ids already viewed as a single
// comma-joined blob.
type SeenStore interface {
	GetSeenCommentsBlob(ctx context.Context, postID string) (string, bool, error)
	AppendSeenComments(ctx context.Context, postID string, ids []string) error
}

type SearchMode int

const (
	SearchOff SearchMode = iota
	SearchText
	SearchUnseen
)

type ThreadOptions struct {
	// PostID is the bare id of the post the thread belongs to.
	PostID    string
	Fetcher   MoreFetcher
	Seen      SeenStore
	Network   NetworkQuality
	Logger    logrus.FieldLogger
	AfterFunc AfterFunc
	// FastCountdown and SlowCountdown default to the package constants.
	FastCountdown time.Duration
	SlowCountdown time.Duration
	// OnChange is called without locks held after the tree, the index or a
	// placeholder state changed.
	OnChange func()
}

// Row is a display snapshot of one node.
type Row struct {
	ID        string
	Depth     int
	Author    string
	Body      string
	Score     int
	CreatedAt time.Time
	Collapsed bool
	// HiddenReplies counts descendants of a collapsed node.
	HiddenReplies int
	More          bool
	Remaining     int
	LoaderState   LoaderState
}

type signature struct {
	count    int
	revision uint64
}

// Thread owns a comment tree and everything derived from it. Methods are
// safe for concurrent use; "more" fetches run in background goroutines.
type Thread struct {
	opts   ThreadOptions
	log    logrus.FieldLogger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	roots     []*Node
	nodes     map[string]*Node
	ingested  *dedup.Set
	loaders   map[string]*moreLoader
	revision  uint64
	sig       signature
	flat      Flattened
	mode      SearchMode
	query     string
	seenBlob  string
	hasRecord bool
	index     *SearchIndex
	topIndex  int
}

func NewThread(opts ThreadOptions) *Thread {
	if opts.AfterFunc == nil {
		opts.AfterFunc = realAfterFunc
	}
	if opts.FastCountdown <= 0 {
		opts.FastCountdown = FastCountdown
	}
	if opts.SlowCountdown <= 0 {
		opts.SlowCountdown = SlowCountdown
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &Thread{
		opts:     opts,
		log:      logging.OrDiscard(opts.Logger).WithField("post", opts.PostID),
		ctx:      ctx,
		cancel:   cancel,
		nodes:    make(map[string]*Node),
		ingested: dedup.New(0),
		loaders:  make(map[string]*moreLoader),
	}
	t.refreshLocked()
	return t
}

func (t *Thread) postFullname() string {
	return entity.Fullname(entity.KindPost, t.opts.PostID)
}

// Load replaces the tree with a fresh top-level listing.
func (t *Thread) Load(raw []RawNode) {
	t.mu.Lock()
	for _, l := range t.loaders {
		l.stopCountdown()
	}
	t.nodes = make(map[string]*Node)
	t.ingested = dedup.New(len(raw))
	t.loaders = make(map[string]*moreLoader)
	roots, _ := Build(t.filterIngestedLocked(raw), t.postFullname(), nil)
	t.roots = roots
	t.registerLocked(roots)
	t.revision++
	t.refreshLocked()
	t.mu.Unlock()
	t.notify()
}

// filterIngestedLocked drops comments already in the tree. Placeholders
// are never filtered because their names are not comment names.
func (t *Thread) filterIngestedLocked(raw []RawNode) []RawNode {
	out := make([]RawNode, 0, len(raw))
	for _, r := range raw {
		if r.More == nil && t.ingested.Contains(r.Name) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (t *Thread) registerLocked(roots []*Node) {
	walk(roots, func(n *Node) bool {
		t.nodes[n.ID] = n
		if n.IsMore() {
			t.loaders[n.ID] = &moreLoader{node: n}
		} else {
			t.ingested.Add(n.ID)
		}
		return true
	})
}

// unregisterLocked forgets a resolved placeholder. Its loader stays so
// the resolved state remains observable.
func (t *Thread) unregisterLocked(n *Node) {
	delete(t.nodes, n.ID)
}

// refreshLocked re-flattens when the tree signature moved and rebuilds the
// search index for the active mode.
func (t *Thread) refreshLocked() {
	sig := signature{count: countNodes(t.roots), revision: t.revision}
	if sig != t.sig || t.flat.position == nil {
		t.flat = Flatten(t.roots)
		t.sig = sig
	}
	t.reindexLocked()
}

func (t *Thread) reindexLocked() {
	prev := t.index
	switch t.mode {
	case SearchText:
		t.index = NewTextIndex(t.flat, t.query)
	case SearchUnseen:
		t.index = NewUnseenIndex(t.flat, t.seenBlob, t.hasRecord)
	default:
		t.index = nil
		return
	}
	t.index.Carry(prev)
}

func (t *Thread) FlattenedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.flat.Entries)
}

func (t *Thread) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Entry(nil), t.flat.Entries...)
}

// Rows returns the visible tree in display order, placeholders included.
func (t *Thread) Rows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	rows := make([]Row, 0, len(t.flat.Entries)+len(t.loaders))
	walk(t.roots, func(n *Node) bool {
		row := Row{
			ID:        n.ID,
			Depth:     n.Depth,
			Author:    n.Author,
			Body:      n.Body,
			Score:     n.Score,
			CreatedAt: n.CreatedAt,
			Collapsed: n.Collapsed,
		}
		if n.IsMore() {
			row.More = true
			row.Remaining = n.More.Count
			if l := t.loaders[n.ID]; l != nil {
				row.LoaderState = l.state
			}
		}
		if n.Collapsed {
			row.HiddenReplies = countNodes(n.Children)
		}
		rows = append(rows, row)
		return !n.Collapsed
	})
	return rows
}

// Position returns the flattened index of a comment.
func (t *Thread) Position(id string) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flat.Position(id)
}

// SetSearchQuery switches to text search, or off for an empty query.
func (t *Thread) SetSearchQuery(q string) {
	q = strings.TrimSpace(q)
	t.mu.Lock()
	t.query = q
	if q == "" {
		t.mode = SearchOff
	} else {
		t.mode = SearchText
	}
	t.reindexLocked()
	t.mu.Unlock()
	t.notify()
}

// SetUnseenMode toggles navigation over comments missing from the post's
// seen record. Turning it on clears any text query.
func (t *Thread) SetUnseenMode(ctx context.Context, on bool) error {
	if !on {
		t.mu.Lock()
		if t.mode == SearchUnseen {
			t.mode = SearchOff
			t.reindexLocked()
		}
		t.mu.Unlock()
		t.notify()
		return nil
	}

	blob, ok := "", false
	if t.opts.Seen != nil {
		var err error
		blob, ok, err = t.opts.Seen.GetSeenCommentsBlob(ctx, t.opts.PostID)
		if err != nil {
			return fmt.Errorf("load seen comments: %w", err)
		}
	}
	t.mu.Lock()
	t.seenBlob, t.hasRecord = blob, ok
	t.query = ""
	t.mode = SearchUnseen
	t.reindexLocked()
	t.mu.Unlock()
	t.notify()
	return nil
}

func (t *Thread) SearchMode() SearchMode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode
}

func (t *Thread) Matches() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.index == nil {
		return nil
	}
	return t.index.Matches()
}

// CurrentMatch returns the 1-based rank of the selected match and the
// match total. Rank is 0 when nothing is selected.
func (t *Thread) CurrentMatch() (id string, rank, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.index == nil {
		return "", 0, 0
	}
	id, rank = t.index.Current()
	return id, rank, t.index.Len()
}

// ScrollToNextMatch moves the match cursor and returns the id to scroll to.
func (t *Thread) ScrollToNextMatch(forward bool) (target string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.index == nil {
		return "", false
	}
	_, target, ok = t.index.Next(forward)
	return target, ok
}

// OnVisibleSetChanged lets the match cursor follow manual scrolling.
func (t *Thread) OnVisibleSetChanged(ids []string, scrollingDown bool) {
	t.mu.Lock()
	if t.index != nil {
		t.index.Track(ids, scrollingDown)
	}
	t.mu.Unlock()
}

// ToggleCollapsed hides or shows a comment's replies.
func (t *Thread) ToggleCollapsed(id string) error {
	t.mu.Lock()
	n, ok := t.nodes[id]
	if !ok || n.IsMore() {
		t.mu.Unlock()
		return fmt.Errorf("toggle %q: %w", id, ErrUnknownNode)
	}
	n.Collapsed = !n.Collapsed
	t.revision++
	t.refreshLocked()
	t.mu.Unlock()
	t.notify()
	return nil
}

// MarkAllSeen appends every flattened comment to the post's seen record.
func (t *Thread) MarkAllSeen(ctx context.Context) error {
	if t.opts.Seen == nil {
		return nil
	}
	t.mu.Lock()
	ids := make([]string, 0, len(t.flat.Entries))
	for _, e := range t.flat.Entries {
		ids = append(ids, e.ID)
	}
	t.mu.Unlock()
	if len(ids) == 0 {
		return nil
	}
	if err := t.opts.Seen.AppendSeenComments(ctx, t.opts.PostID, ids); err != nil {
		return fmt.Errorf("mark comments seen: %w", err)
	}
	return nil
}

// SetTopIndex records the first visible flattened index. Countdowns of
// placeholders scrolled above the top are cancelled.
func (t *Thread) SetTopIndex(i int) {
	t.mu.Lock()
	t.topIndex = i
	changed := false
	for id, l := range t.loaders {
		if l.state != LoaderCountingDown {
			continue
		}
		if pos, ok := t.flat.MorePositions[id]; ok && i > pos {
			l.stopCountdown()
			l.state = LoaderIdle
			changed = true
		}
	}
	t.mu.Unlock()
	if changed {
		t.notify()
	}
}

func (t *Thread) LoaderState(id string) (LoaderState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.loaders[id]
	if !ok {
		return LoaderIdle, false
	}
	return l.state, true
}

// MoreAppeared is called when a placeholder scrolls into view. Top-level
// placeholders and single fast children load at once; others count down.
func (t *Thread) MoreAppeared(id string) {
	t.mu.Lock()
	l, ok := t.loaders[id]
	if !ok || l.state != LoaderIdle {
		t.mu.Unlock()
		return
	}
	fast := t.opts.Network == nil || t.opts.Network.IsFastConnection()
	pos, placed := t.flat.MorePositions[id]
	switch {
	case l.node.Depth == 0:
		t.startLoadLocked(l)
	case l.node.More.Count == 1 && placed && pos >= t.topIndex && fast:
		t.startLoadLocked(l)
	default:
		d := t.opts.SlowCountdown
		if fast {
			d = t.opts.FastCountdown
		}
		l.stopCountdown()
		l.state = LoaderCountingDown
		token := l.token
		l.timer = t.opts.AfterFunc(d, func() { t.countdownFired(id, token) })
	}
	t.mu.Unlock()
	t.notify()
}

// MoreDisappeared cancels a pending countdown. A fetch already in flight
// keeps going.
func (t *Thread) MoreDisappeared(id string) {
	t.mu.Lock()
	l, ok := t.loaders[id]
	if !ok || l.state != LoaderCountingDown {
		t.mu.Unlock()
		return
	}
	l.stopCountdown()
	l.state = LoaderIdle
	t.mu.Unlock()
	t.notify()
}

// TapMore loads a placeholder now, skipping any countdown.
func (t *Thread) TapMore(id string) error {
	t.mu.Lock()
	l, ok := t.loaders[id]
	if !ok {
		_, known := t.nodes[id]
		t.mu.Unlock()
		if known {
			return fmt.Errorf("load %q: %w", id, ErrNotMore)
		}
		return fmt.Errorf("load %q: %w", id, ErrUnknownNode)
	}
	if l.state == LoaderIdle || l.state == LoaderCountingDown {
		l.stopCountdown()
		t.startLoadLocked(l)
	}
	t.mu.Unlock()
	t.notify()
	return nil
}

func (t *Thread) countdownFired(id string, token uint64) {
	t.mu.Lock()
	l, ok := t.loaders[id]
	if !ok || l.state != LoaderCountingDown || l.token != token {
		t.mu.Unlock()
		return
	}
	l.timer = nil
	t.startLoadLocked(l)
	t.mu.Unlock()
	t.notify()
}

func (t *Thread) startLoadLocked(l *moreLoader) {
	l.state = LoaderLoading
	if t.opts.Fetcher == nil {
		l.state = LoaderIdle
		t.log.WithField("more", l.node.ID).Warn("no fetcher for placeholder")
		return
	}
	req := MoreRequest{
		LinkID:   t.postFullname(),
		ParentID: l.node.ParentID,
		NodeID:   l.node.ID,
		ChildIDs: append([]string(nil), l.node.More.ChildIDs...),
	}
	t.wg.Add(1)
	go t.fetchMore(l, req)
}

func (t *Thread) fetchMore(l *moreLoader, req MoreRequest) {
	defer t.wg.Done()
	log := t.log.WithFields(logrus.Fields{"more": req.NodeID, "children": len(req.ChildIDs)})
	raw, err := t.opts.Fetcher.FetchMoreChildren(t.ctx, req)

	t.mu.Lock()
	if t.loaders[req.NodeID] != l {
		// The tree was replaced while the fetch ran.
		t.mu.Unlock()
		return
	}
	if err != nil {
		l.state = LoaderIdle
		t.mu.Unlock()
		log.WithError(err).Warn("load more comments failed")
		t.notify()
		return
	}
	grafted := t.graftLocked(l.node, raw)
	l.state = LoaderResolved
	t.mu.Unlock()
	log.WithField("grafted", grafted).Debug("more comments loaded")
	t.notify()
}

// graftLocked puts the subtree built from raw where the placeholder was.
func (t *Thread) graftLocked(placeholder *Node, raw []RawNode) int {
	parent := placeholder.Parent()
	batch := t.filterIngestedLocked(raw)
	roots, built := Build(batch, placeholder.ParentID, parent)

	siblings := &t.roots
	if parent != nil {
		siblings = &parent.Children
	}
	i := slices.Index(*siblings, placeholder)
	if i < 0 {
		t.log.WithField("more", placeholder.ID).Warn("placeholder no longer in tree")
		return 0
	}
	*siblings = slices.Concat((*siblings)[:i:i], roots, (*siblings)[i+1:])
	t.unregisterLocked(placeholder)
	t.registerLocked(roots)
	adopted := t.adoptLocked(batch, built, placeholder.ParentID)
	t.revision++
	t.refreshLocked()
	return countNodes(roots) + countNodes(adopted)
}

// adoptLocked attaches batch nodes whose parent is a comment already in
// the tree rather than in the batch. Reddit repeats known comments in
// "more" results, and those repeats are filtered before building.
func (t *Thread) adoptLocked(batch []RawNode, built map[string]*Node, rootParentID string) []*Node {
	var adopted []*Node
	for _, r := range batch {
		n, ok := built[r.Name]
		if !ok || n.ParentID == rootParentID || n.Parent() != nil {
			continue
		}
		if _, inBatch := built[n.ParentID]; inBatch {
			continue
		}
		p, ok := t.nodes[n.ParentID]
		if !ok || p.IsMore() {
			continue
		}
		n.setParent(p)
		p.Children = append(p.Children, n)
		setDepth(n, p.Depth+1)
		adopted = append(adopted, n)
	}
	t.registerLocked(adopted)
	return adopted
}

// Wait blocks until background fetches have finished.
func (t *Thread) Wait() {
	t.wg.Wait()
}

// Close cancels pending countdowns and in-flight fetches.
func (t *Thread) Close() {
	t.mu.Lock()
	for _, l := range t.loaders {
		l.stopCountdown()
	}
	t.mu.Unlock()
	t.cancel()
	t.wg.Wait()
}

func (t *Thread) notify() {
	if t.opts.OnChange != nil {
		t.opts.OnChange()
	}
}
