// Package feed accumulates a paginated Reddit listing into a deduplicated,
// filtered stream of entities.
package feed

import (
	"context"
	"errors"

	"github.com/glabrego/snoo-cli/internal/entity"
)

// ErrSuperseded is returned by Load when a newer top-level load started
// before this one could publish. Its results were discarded.
var ErrSuperseded = errors.New("feed load superseded")

type DisplayMode int

const (
	DisplayLoading DisplayMode = iota
	DisplayEmpty
	DisplayItems
	DisplayEndOfFeed
	DisplayError
)

func (m DisplayMode) String() string {
	switch m {
	case DisplayLoading:
		return "loading"
	case DisplayEmpty:
		return "empty"
	case DisplayItems:
		return "items"
	case DisplayEndOfFeed:
		return "end of feed"
	case DisplayError:
		return "error"
	default:
		return "unknown"
	}
}

type Sort string

const (
	SortHot           Sort = "hot"
	SortNew           Sort = "new"
	SortTop           Sort = "top"
	SortRising        Sort = "rising"
	SortControversial Sort = "controversial"
)

// Sorts lists the user-selectable orders in cycling order.
var Sorts = []Sort{SortHot, SortNew, SortTop, SortRising, SortControversial}

// searchSort replaces the selected sort while a search query is active.
const searchSort = SortNew

func ParseSort(raw string) (Sort, bool) {
	for _, s := range Sorts {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

// NextSort returns the sort following s in Sorts, wrapping around.
func NextSort(s Sort) Sort {
	for i, candidate := range Sorts {
		if candidate == s {
			return Sorts[(i+1)%len(Sorts)]
		}
	}
	return Sorts[0]
}

type PageRequest struct {
	Feed   string
	Cursor string
	Sort   Sort
	Query  string
	Filter string
	Limit  int
}

// Page is one successful fetch. An empty Entities slice is a legitimate
// empty page; failures are reported through the error return instead.
type Page struct {
	Entities   []entity.Entity
	NextCursor string
}

type PageFetcher interface {
	FetchPage(ctx context.Context, req PageRequest) (Page, error)
}

// SeenStore is the per-feed record of posts the user already viewed.
type SeenStore interface {
	GetSeenPostIDs(ctx context.Context, feedID string) (map[string]struct{}, error)
	MarkSeen(ctx context.Context, feedID string, postIDs []string) error
}

// Progress reports how far a multi-call load has got.
type Progress struct {
	CurrentCall int
	Active      bool
}

// Snapshot is a consistent copy of the published session state.
type Snapshot struct {
	Entities  []entity.Entity
	Mode      DisplayMode
	Progress  Progress
	Err       error
	Sort      Sort
	Query     string
	Filter    string
	Exhausted bool
}
