package feed

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/glabrego/snoo-cli/internal/dedup"
	"github.com/glabrego/snoo-cli/internal/entity"
	"github.com/glabrego/snoo-cli/internal/logging"
)

const (
	DefaultChunkSize         = 25
	DefaultLoadMoreThreshold = 5
	DefaultMaxCalls          = 50
)

type Options struct {
	Feed string
	Sort Sort
	// ChunkSize is the number of new, unfiltered entities a load collects
	// before publishing. It is also the page size requested upstream.
	ChunkSize         int
	HideRead          bool
	MarkReadOnScroll  bool
	LoadMoreThreshold int
	// MaxCalls bounds a single load when a filter rejects nearly everything.
	MaxCalls int
	Logger   logrus.FieldLogger
	// OnChange is called without locks held after every state transition.
	OnChange func()
}

// Paginator owns one feed session. Load may be called from several
// goroutines; a top-level load supersedes whatever was in flight.
type Paginator struct {
	fetcher PageFetcher
	seen    SeenStore
	opts    Options
	log     logrus.FieldLogger

	mu         sync.Mutex
	entities   []entity.Entity
	loaded     *dedup.Set
	cursor     string
	exhausted  bool
	mode       DisplayMode
	err        error
	sort       Sort
	query      string
	filter     string
	hideRead   bool
	progress   Progress
	generation uint64
	inFlight   bool
	cancel     context.CancelFunc
}

func NewPaginator(fetcher PageFetcher, seen SeenStore, opts Options) *Paginator {
	if opts.ChunkSize < 1 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.LoadMoreThreshold < 1 {
		opts.LoadMoreThreshold = DefaultLoadMoreThreshold
	}
	if opts.MaxCalls < 1 {
		opts.MaxCalls = DefaultMaxCalls
	}
	if opts.Sort == "" {
		opts.Sort = SortHot
	}
	return &Paginator{
		fetcher:  fetcher,
		seen:     seen,
		opts:     opts,
		log:      logging.OrDiscard(opts.Logger).WithField("feed", opts.Feed),
		loaded:   dedup.New(opts.ChunkSize),
		mode:     DisplayLoading,
		sort:     opts.Sort,
		hideRead: opts.HideRead,
	}
}

// Load fetches pages until ChunkSize new entities survive filtering or the
// source runs dry, then publishes them in one update. With more set it
// continues from the session cursor and appends; otherwise it starts over
// and replaces. A continuation is ignored while another load is in flight
// or after the feed is exhausted, unless force is set.
func (p *Paginator) Load(ctx context.Context, more, force bool) error {
	p.mu.Lock()
	if more && !force && (p.inFlight || p.exhausted) {
		p.mu.Unlock()
		return nil
	}
	if p.cancel != nil {
		p.cancel()
	}
	p.generation++
	gen := p.generation
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.inFlight = true
	p.progress = Progress{Active: true}
	if len(p.entities) == 0 {
		p.mode = DisplayLoading
	}

	cursor := ""
	loaded := dedup.New(p.opts.ChunkSize)
	if more {
		cursor = p.cursor
		loaded = p.loaded.Clone()
	}
	req := PageRequest{
		Feed:   p.opts.Feed,
		Sort:   p.effectiveSortLocked(),
		Query:  p.query,
		Filter: p.filter,
		Limit:  p.opts.ChunkSize,
	}
	hideRead := p.hideRead
	p.mu.Unlock()
	p.notify()
	defer cancel()

	log := p.log.WithFields(logrus.Fields{"generation": gen, "more": more})

	var seenPosts map[string]struct{}
	if hideRead && p.seen != nil {
		ids, err := p.seen.GetSeenPostIDs(runCtx, p.opts.Feed)
		if err != nil {
			log.WithError(err).Warn("load seen posts; hide-read disabled for this load")
		} else {
			seenPosts = ids
		}
	}

	buffer := make([]entity.Entity, 0, p.opts.ChunkSize)
	exhausted := false
	calls := 0
	raw := 0
	for {
		calls++
		if !p.setProgress(gen, calls) {
			return ErrSuperseded
		}

		req.Cursor = cursor
		page, err := p.fetcher.FetchPage(runCtx, req)
		if !p.isCurrent(gen) {
			log.WithField("call", calls).Debug("discarding superseded page")
			return ErrSuperseded
		}
		if err != nil {
			p.fail(gen, err)
			log.WithError(err).WithField("call", calls).Warn("fetch page failed")
			return fmt.Errorf("fetch page: %w", err)
		}

		raw += len(page.Entities)
		for _, e := range page.Entities {
			// Seen posts are added to loaded too, which keeps them hidden for
			// the rest of the session without asking the store again.
			if !loaded.Add(e.Fullname()) {
				continue
			}
			if seenPosts != nil {
				if id, ok := entity.PostID(e); ok {
					if _, seen := seenPosts[id]; seen {
						continue
					}
				}
			}
			buffer = append(buffer, e)
		}

		cursor = page.NextCursor
		if len(page.Entities) < p.opts.ChunkSize || cursor == "" {
			exhausted = true
			break
		}
		if len(buffer) >= p.opts.ChunkSize {
			break
		}
		if calls >= p.opts.MaxCalls {
			log.WithField("call", calls).Warn("call limit reached before chunk filled")
			break
		}
	}

	if !p.publish(gen, more, buffer, raw, loaded, cursor, exhausted) {
		return ErrSuperseded
	}
	log.WithFields(logrus.Fields{"call": calls, "added": len(buffer), "exhausted": exhausted}).Debug("page published")
	return nil
}

// Retry continues from the last successfully published cursor.
func (p *Paginator) Retry(ctx context.Context) error {
	return p.Load(ctx, true, true)
}

func (p *Paginator) setProgress(gen uint64, call int) bool {
	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		return false
	}
	p.progress = Progress{CurrentCall: call, Active: true}
	p.mu.Unlock()
	p.notify()
	return true
}

func (p *Paginator) isCurrent(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return gen == p.generation
}

func (p *Paginator) fail(gen uint64, err error) {
	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		return
	}
	p.mode = DisplayError
	p.err = err
	p.inFlight = false
	p.progress.Active = false
	p.cancel = nil
	p.mu.Unlock()
	p.notify()
}

// publish installs a finished load. raw counts the entities upstream sent
// before filtering; empty means upstream had nothing, while a feed that
// ran out with everything filtered is at its end.
func (p *Paginator) publish(gen uint64, more bool, buffer []entity.Entity, raw int, loaded *dedup.Set, cursor string, exhausted bool) bool {
	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		return false
	}
	if more {
		merged := make([]entity.Entity, 0, len(p.entities)+len(buffer))
		merged = append(merged, p.entities...)
		p.entities = append(merged, buffer...)
	} else {
		p.entities = buffer
	}
	p.loaded = loaded
	p.cursor = cursor
	p.exhausted = exhausted
	p.err = nil
	switch {
	case len(p.entities) == 0 && raw == 0:
		p.mode = DisplayEmpty
	case exhausted:
		p.mode = DisplayEndOfFeed
	case len(p.entities) == 0:
		p.mode = DisplayEmpty
	default:
		p.mode = DisplayItems
	}
	p.inFlight = false
	p.progress.Active = false
	p.cancel = nil
	p.mu.Unlock()
	p.notify()
	return true
}

// OnElementVisible reports whether the caller should continue the feed
// because index is close to the end. Callbacks referring to an entity that
// is no longer at index are ignored.
func (p *Paginator) OnElementVisible(e entity.Entity, index int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.matchesLocked(e, index) {
		p.log.WithField("index", index).Debug("ignoring stale visibility callback")
		return false
	}
	if p.mode != DisplayItems || p.inFlight || p.exhausted {
		return false
	}
	return index >= len(p.entities)-p.opts.LoadMoreThreshold
}

// OnElementHidden marks a post seen once it scrolls out of view, when
// mark-read-on-scroll is enabled.
func (p *Paginator) OnElementHidden(ctx context.Context, e entity.Entity, index int) error {
	p.mu.Lock()
	stale := !p.matchesLocked(e, index)
	p.mu.Unlock()
	if stale || !p.opts.MarkReadOnScroll || p.seen == nil {
		return nil
	}
	id, ok := entity.PostID(e)
	if !ok {
		return nil
	}
	if err := p.seen.MarkSeen(ctx, p.opts.Feed, []string{id}); err != nil {
		return fmt.Errorf("mark post seen: %w", err)
	}
	return nil
}

func (p *Paginator) matchesLocked(e entity.Entity, index int) bool {
	if e == nil || index < 0 || index >= len(p.entities) {
		return false
	}
	return p.entities[index].Fullname() == e.Fullname()
}

// SetSort resets the session when s differs from the current sort. The
// caller starts the next load.
func (p *Paginator) SetSort(s Sort) bool {
	p.mu.Lock()
	if s == p.sort {
		p.mu.Unlock()
		return false
	}
	p.sort = s
	p.resetLocked()
	p.mu.Unlock()
	p.notify()
	return true
}

func (p *Paginator) SetSearchQuery(q string) bool {
	q = strings.TrimSpace(q)
	p.mu.Lock()
	if q == p.query {
		p.mu.Unlock()
		return false
	}
	p.query = q
	p.resetLocked()
	p.mu.Unlock()
	p.notify()
	return true
}

func (p *Paginator) SetFilter(f string) bool {
	f = strings.TrimSpace(f)
	p.mu.Lock()
	if f == p.filter {
		p.mu.Unlock()
		return false
	}
	p.filter = f
	p.resetLocked()
	p.mu.Unlock()
	p.notify()
	return true
}

// SetHideRead only affects loads started afterwards; entities already
// published stay in place.
func (p *Paginator) SetHideRead(on bool) {
	p.mu.Lock()
	p.hideRead = on
	p.mu.Unlock()
}

// CredentialsChanged drops everything loaded under the previous account.
func (p *Paginator) CredentialsChanged() {
	p.mu.Lock()
	p.resetLocked()
	p.mu.Unlock()
	p.notify()
}

func (p *Paginator) resetLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.generation++
	p.entities = nil
	p.loaded = dedup.New(p.opts.ChunkSize)
	p.cursor = ""
	p.exhausted = false
	p.mode = DisplayLoading
	p.err = nil
	p.inFlight = false
	p.progress = Progress{}
}

func (p *Paginator) effectiveSortLocked() Sort {
	if p.query != "" {
		return searchSort
	}
	return p.sort
}

func (p *Paginator) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		Entities:  append([]entity.Entity(nil), p.entities...),
		Mode:      p.mode,
		Progress:  p.progress,
		Err:       p.err,
		Sort:      p.sort,
		Query:     p.query,
		Filter:    p.filter,
		Exhausted: p.exhausted,
	}
}

func (p *Paginator) Entities() []entity.Entity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]entity.Entity(nil), p.entities...)
}

func (p *Paginator) DisplayMode() DisplayMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

func (p *Paginator) Progress() Progress {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress
}

func (p *Paginator) Feed() string {
	return p.opts.Feed
}

func (p *Paginator) notify() {
	if p.opts.OnChange != nil {
		p.opts.OnChange()
	}
}
