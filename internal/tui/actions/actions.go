package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/snoo-cli/internal/comments"
	"github.com/glabrego/snoo-cli/internal/entity"
	"github.com/glabrego/snoo-cli/internal/feed"
)

const (
	feedTimeout   = 60 * time.Second
	threadTimeout = 20 * time.Second
	storeTimeout  = 5 * time.Second
)

type FeedLoader interface {
	Load(ctx context.Context, more, force bool) error
	Retry(ctx context.Context) error
}

type HiddenMarker interface {
	OnElementHidden(ctx context.Context, e entity.Entity, index int) error
}

type ThreadOpener interface {
	OpenThread(ctx context.Context, postID string, onChange func()) (*comments.Thread, entity.Post, error)
}

type SeenMarker interface {
	MarkAllSeen(ctx context.Context) error
}

type UnseenToggler interface {
	SetUnseenMode(ctx context.Context, on bool) error
}

type FeedLoadedMsg struct {
	More     bool
	Err      error
	Duration time.Duration
}

// ChangedMsg reports that the feed or an open thread changed state in the
// background.
type ChangedMsg struct{}

type ThreadOpenedMsg struct {
	PostID string
	Thread *comments.Thread
	Post   entity.Post
	Err    error
}

type SeenMarkedMsg struct {
	Err error
}

type UnseenModeMsg struct {
	On  bool
	Err error
}

type ActionErrorMsg struct {
	Err error
}

type OpenURLSuccessMsg struct {
	Status string
}

type OpenURLErrorMsg struct {
	Err error
}

// LoadFeedCmd runs one paginator load. A load replaced by a newer one
// reports no error.
func LoadFeedCmd(loader FeedLoader, more, force bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), feedTimeout)
		defer cancel()
		start := time.Now()

		err := loader.Load(ctx, more, force)
		if errors.Is(err, feed.ErrSuperseded) {
			err = nil
		}
		return FeedLoadedMsg{More: more, Err: err, Duration: time.Since(start)}
	}
}

func RetryFeedCmd(loader FeedLoader) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), feedTimeout)
		defer cancel()
		start := time.Now()

		err := loader.Retry(ctx)
		if errors.Is(err, feed.ErrSuperseded) {
			err = nil
		}
		return FeedLoadedMsg{More: true, Err: err, Duration: time.Since(start)}
	}
}

// WaitForChangeCmd blocks until the next change signal. The model
// re-issues it after every ChangedMsg.
func WaitForChangeCmd(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return ChangedMsg{}
	}
}

func MarkHiddenCmd(marker HiddenMarker, e entity.Entity, index int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		if err := marker.OnElementHidden(ctx, e, index); err != nil {
			return ActionErrorMsg{Err: err}
		}
		return nil
	}
}

func OpenThreadCmd(opener ThreadOpener, postID string, onChange func()) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), threadTimeout)
		defer cancel()

		thread, post, err := opener.OpenThread(ctx, postID, onChange)
		if err != nil {
			return ThreadOpenedMsg{PostID: postID, Err: err}
		}
		return ThreadOpenedMsg{PostID: postID, Thread: thread, Post: post}
	}
}

func MarkAllSeenCmd(marker SeenMarker) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		return SeenMarkedMsg{Err: marker.MarkAllSeen(ctx)}
	}
}

func UnseenModeCmd(toggler UnseenToggler, on bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		return UnseenModeMsg{On: on, Err: toggler.SetUnseenMode(ctx, on)}
	}
}

func OpenURLCmd(url string, openFn, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if openFn != nil {
			if err := openFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Opened URL in browser"}
			}
		}
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Could not open browser, URL copied to clipboard"}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not open URL or copy to clipboard")}
	}
}
