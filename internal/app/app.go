package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/glabrego/snoo-cli/internal/comments"
	"github.com/glabrego/snoo-cli/internal/entity"
	"github.com/glabrego/snoo-cli/internal/feed"
	"github.com/glabrego/snoo-cli/internal/logging"
	"github.com/glabrego/snoo-cli/internal/reddit"
	"github.com/glabrego/snoo-cli/internal/storage"
)

// CommentSort is the order comment listings are requested in.
const CommentSort = "confidence"

type RedditClient interface {
	Me(ctx context.Context) (entity.User, error)
	ListFeed(ctx context.Context, req reddit.ListingRequest) (reddit.Listing, error)
	FetchComments(ctx context.Context, req reddit.CommentsRequest) (reddit.Thread, error)
	MoreChildren(ctx context.Context, linkID string, childIDs []string, sort string) ([]comments.RawNode, error)
}

type Repository interface {
	feed.SeenStore
	comments.SeenStore
	LoadUIPreferences(ctx context.Context) (storage.UIPreferences, error)
	SaveUIPreferences(ctx context.Context, prefs storage.UIPreferences) error
}

type Service struct {
	client  RedditClient
	repo    Repository
	network comments.NetworkQuality
	log     logrus.FieldLogger
}

// NewService wires client and repo together. network may be nil, in which
// case every connection counts as fast.
func NewService(client RedditClient, repo Repository, network comments.NetworkQuality, logger logrus.FieldLogger) *Service {
	return &Service{client: client, repo: repo, network: network, log: logging.OrDiscard(logger)}
}

// FetchPage serves feed.Paginator from the listing endpoints.
func (s *Service) FetchPage(ctx context.Context, req feed.PageRequest) (feed.Page, error) {
	listing, err := s.client.ListFeed(ctx, reddit.ListingRequest{
		Feed:  req.Feed,
		Sort:  string(req.Sort),
		After: req.Cursor,
		Limit: req.Limit,
		Query: req.Query,
		Time:  req.Filter,
	})
	if err != nil {
		return feed.Page{}, fmt.Errorf("fetch %s from reddit: %w", feedLabel(req.Feed), err)
	}
	return feed.Page{Entities: listing.Entities, NextCursor: listing.After}, nil
}

// FetchMoreChildren resolves a placeholder for comments.Thread. Deep
// threads without child ids are loaded through the parent's permalink.
func (s *Service) FetchMoreChildren(ctx context.Context, req comments.MoreRequest) ([]comments.RawNode, error) {
	if !req.ContinueThread() {
		nodes, err := s.client.MoreChildren(ctx, req.LinkID, req.ChildIDs, CommentSort)
		if err != nil {
			return nil, fmt.Errorf("fetch more comments from reddit: %w", err)
		}
		return nodes, nil
	}

	_, postID := entity.SplitFullname(req.LinkID)
	_, focus := entity.SplitFullname(req.ParentID)
	thread, err := s.client.FetchComments(ctx, reddit.CommentsRequest{
		PostID: postID,
		Sort:   CommentSort,
		Focus:  focus,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch continued thread from reddit: %w", err)
	}
	return thread.Comments, nil
}

// NewPaginator starts a feed session backed by this service and the seen
// store.
func (s *Service) NewPaginator(opts feed.Options) *feed.Paginator {
	if opts.Logger == nil {
		opts.Logger = s.log
	}
	return feed.NewPaginator(s, s.repo, opts)
}

// OpenThread loads the comments of postID into a new Thread. The caller
// owns the thread and must Close it.
func (s *Service) OpenThread(ctx context.Context, postID string, onChange func()) (*comments.Thread, entity.Post, error) {
	listing, err := s.client.FetchComments(ctx, reddit.CommentsRequest{PostID: postID, Sort: CommentSort})
	if err != nil {
		return nil, entity.Post{}, fmt.Errorf("fetch comments from reddit: %w", err)
	}

	thread := comments.NewThread(comments.ThreadOptions{
		PostID:   postID,
		Fetcher:  s,
		Seen:     s.repo,
		Network:  s.network,
		Logger:   s.log,
		OnChange: onChange,
	})
	thread.Load(listing.Comments)
	s.log.WithFields(logrus.Fields{"post": postID, "comments": thread.FlattenedCount()}).Debug("thread opened")

	post := listing.Post
	if post.ID == "" {
		post.ID = postID
	}
	return thread, post, nil
}

// CheckAuth verifies the access token by asking who it belongs to.
func (s *Service) CheckAuth(ctx context.Context) (entity.User, error) {
	user, err := s.client.Me(ctx)
	if err != nil {
		return entity.User{}, fmt.Errorf("verify reddit credentials: %w", err)
	}
	return user, nil
}

func (s *Service) LoadUIPreferences(ctx context.Context) (storage.UIPreferences, error) {
	prefs, err := s.repo.LoadUIPreferences(ctx)
	if err != nil {
		return storage.UIPreferences{}, fmt.Errorf("load ui preferences: %w", err)
	}
	return prefs, nil
}

func (s *Service) SaveUIPreferences(ctx context.Context, prefs storage.UIPreferences) error {
	if err := s.repo.SaveUIPreferences(ctx, prefs); err != nil {
		return fmt.Errorf("save ui preferences: %w", err)
	}
	return nil
}

func feedLabel(feed string) string {
	if feed == "" {
		return "front page"
	}
	return feed
}
