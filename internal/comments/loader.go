package comments

import (
	"context"
	"time"
)

type LoaderState int

const (
	LoaderIdle LoaderState = iota
	LoaderCountingDown
	LoaderLoading
	LoaderResolved
)

func (s LoaderState) String() string {
	switch s {
	case LoaderIdle:
		return "idle"
	case LoaderCountingDown:
		return "counting down"
	case LoaderLoading:
		return "loading"
	case LoaderResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

const (
	FastCountdown = 1500 * time.Millisecond
	SlowCountdown = 4 * time.Second
)

// Timer is the part of *time.Timer the loader needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it through
// realAfterFunc; tests inject a manual clock.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// NetworkQuality reports whether recent requests were fast enough to load
// eagerly.
type NetworkQuality interface {
	IsFastConnection() bool
}

// MoreRequest identifies the children behind one placeholder.
type MoreRequest struct {
	LinkID string
	// ParentID is the fullname the fetched children hang under.
	ParentID string
	NodeID   string
	ChildIDs []string
}

// ContinueThread reports whether the placeholder stands for a deep thread
// with no listed children, which is fetched by loading the parent's
// permalink instead of by child ids.
func (r MoreRequest) ContinueThread() bool {
	return len(r.ChildIDs) == 0
}

type MoreFetcher interface {
	FetchMoreChildren(ctx context.Context, req MoreRequest) ([]RawNode, error)
}

// moreLoader tracks one placeholder. All fields are guarded by the owning
// Thread's mutex.
type moreLoader struct {
	node  *Node
	state LoaderState
	timer Timer
	// token tells a fired countdown whether it is still the live one.
	token uint64
}

func (l *moreLoader) stopCountdown() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.token++
}
