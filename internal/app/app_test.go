package app

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/glabrego/snoo-cli/internal/comments"
	"github.com/glabrego/snoo-cli/internal/entity"
	"github.com/glabrego/snoo-cli/internal/feed"
	"github.com/glabrego/snoo-cli/internal/reddit"
	"github.com/glabrego/snoo-cli/internal/storage"
)

type fakeClient struct {
	listing  reddit.Listing
	thread   reddit.Thread
	more     []comments.RawNode
	user     entity.User
	err      error
	listReqs []reddit.ListingRequest
	comReqs  []reddit.CommentsRequest
	moreIDs  [][]string
}

func (f *fakeClient) Me(context.Context) (entity.User, error) {
	if f.err != nil {
		return entity.User{}, f.err
	}
	return f.user, nil
}

func (f *fakeClient) ListFeed(_ context.Context, req reddit.ListingRequest) (reddit.Listing, error) {
	f.listReqs = append(f.listReqs, req)
	if f.err != nil {
		return reddit.Listing{}, f.err
	}
	return f.listing, nil
}

func (f *fakeClient) FetchComments(_ context.Context, req reddit.CommentsRequest) (reddit.Thread, error) {
	f.comReqs = append(f.comReqs, req)
	if f.err != nil {
		return reddit.Thread{}, f.err
	}
	return f.thread, nil
}

func (f *fakeClient) MoreChildren(_ context.Context, _ string, childIDs []string, _ string) ([]comments.RawNode, error) {
	f.moreIDs = append(f.moreIDs, childIDs)
	if f.err != nil {
		return nil, f.err
	}
	return f.more, nil
}

type fakeRepo struct {
	seen     map[string]struct{}
	blob     string
	hasBlob  bool
	prefs    storage.UIPreferences
	saved    *storage.UIPreferences
	marked   []string
	saveErr  error
	appended []string
}

func (f *fakeRepo) GetSeenPostIDs(context.Context, string) (map[string]struct{}, error) {
	return f.seen, nil
}

func (f *fakeRepo) MarkSeen(_ context.Context, _ string, ids []string) error {
	f.marked = append(f.marked, ids...)
	return nil
}

func (f *fakeRepo) GetSeenCommentsBlob(context.Context, string) (string, bool, error) {
	return f.blob, f.hasBlob, nil
}

func (f *fakeRepo) AppendSeenComments(_ context.Context, _ string, ids []string) error {
	f.appended = append(f.appended, ids...)
	return nil
}

func (f *fakeRepo) LoadUIPreferences(context.Context) (storage.UIPreferences, error) {
	return f.prefs, nil
}

func (f *fakeRepo) SaveUIPreferences(_ context.Context, prefs storage.UIPreferences) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = &prefs
	return nil
}

func TestService_FetchPage_MapsRequestAndCursor(t *testing.T) {
	client := &fakeClient{listing: reddit.Listing{
		Entities: []entity.Entity{entity.Post{ID: "a"}},
		After:    "t3_a",
	}}
	svc := NewService(client, &fakeRepo{}, nil, nil)

	page, err := svc.FetchPage(context.Background(), feed.PageRequest{
		Feed:   "r/golang",
		Cursor: "t3_z",
		Sort:   feed.SortTop,
		Filter: "week",
		Limit:  25,
	})
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if page.NextCursor != "t3_a" || len(page.Entities) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}

	want := reddit.ListingRequest{Feed: "r/golang", Sort: "top", After: "t3_z", Limit: 25, Time: "week"}
	if len(client.listReqs) != 1 || client.listReqs[0] != want {
		t.Fatalf("unexpected listing request: %+v", client.listReqs)
	}
}

func TestService_FetchPage_PropagatesError(t *testing.T) {
	svc := NewService(&fakeClient{err: errors.New("boom")}, &fakeRepo{}, nil, nil)

	if _, err := svc.FetchPage(context.Background(), feed.PageRequest{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestService_FetchMoreChildren_UsesChildIDs(t *testing.T) {
	client := &fakeClient{more: []comments.RawNode{{Name: "t1_x", ParentID: "t1_a"}}}
	svc := NewService(client, &fakeRepo{}, nil, nil)

	nodes, err := svc.FetchMoreChildren(context.Background(), comments.MoreRequest{
		LinkID:   "t3_p",
		ParentID: "t1_a",
		NodeID:   comments.MoreName("t1_a", "x"),
		ChildIDs: []string{"x", "y"},
	})
	if err != nil {
		t.Fatalf("FetchMoreChildren returned error: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("unexpected nodes: %+v", nodes)
	}
	if !reflect.DeepEqual(client.moreIDs, [][]string{{"x", "y"}}) {
		t.Fatalf("unexpected more children ids: %v", client.moreIDs)
	}
	if len(client.comReqs) != 0 {
		t.Fatalf("did not expect a comments request: %+v", client.comReqs)
	}
}

func TestService_FetchMoreChildren_ContinueThreadFocusesParent(t *testing.T) {
	client := &fakeClient{thread: reddit.Thread{Comments: []comments.RawNode{
		{Name: "t1_a", ParentID: "t3_p"},
		{Name: "t1_deep", ParentID: "t1_a"},
	}}}
	svc := NewService(client, &fakeRepo{}, nil, nil)

	nodes, err := svc.FetchMoreChildren(context.Background(), comments.MoreRequest{
		LinkID:   "t3_p",
		ParentID: "t1_a",
		NodeID:   comments.MoreName("t1_a", "_"),
	})
	if err != nil {
		t.Fatalf("FetchMoreChildren returned error: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("unexpected nodes: %+v", nodes)
	}
	want := reddit.CommentsRequest{PostID: "p", Sort: CommentSort, Focus: "a"}
	if len(client.comReqs) != 1 || client.comReqs[0] != want {
		t.Fatalf("unexpected comments request: %+v", client.comReqs)
	}
}

func TestService_OpenThread_LoadsComments(t *testing.T) {
	client := &fakeClient{thread: reddit.Thread{
		Post: entity.Post{ID: "p", Title: "Hello"},
		Comments: []comments.RawNode{
			{Name: "t1_a", ParentID: "t3_p", Body: "first"},
			{Name: "t1_b", ParentID: "t1_a", Body: "reply"},
			{Name: "t1_c", ParentID: "t3_p", Body: "second"},
		},
	}}
	repo := &fakeRepo{}
	svc := NewService(client, repo, nil, nil)

	thread, post, err := svc.OpenThread(context.Background(), "p", nil)
	if err != nil {
		t.Fatalf("OpenThread returned error: %v", err)
	}
	t.Cleanup(thread.Close)

	if post.Title != "Hello" {
		t.Fatalf("unexpected post: %+v", post)
	}
	if thread.FlattenedCount() != 3 {
		t.Fatalf("expected 3 comments, got %d", thread.FlattenedCount())
	}

	if err := thread.MarkAllSeen(context.Background()); err != nil {
		t.Fatalf("MarkAllSeen returned error: %v", err)
	}
	if want := []string{"t1_a", "t1_b", "t1_c"}; !reflect.DeepEqual(repo.appended, want) {
		t.Fatalf("appended = %v, want %v", repo.appended, want)
	}
}

func TestService_OpenThread_PropagatesError(t *testing.T) {
	svc := NewService(&fakeClient{err: errors.New("boom")}, &fakeRepo{}, nil, nil)

	if _, _, err := svc.OpenThread(context.Background(), "p", nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestService_NewPaginator_LoadsThroughService(t *testing.T) {
	client := &fakeClient{listing: reddit.Listing{Entities: []entity.Entity{
		entity.Post{ID: "a"},
		entity.Post{ID: "b"},
	}}}
	repo := &fakeRepo{seen: map[string]struct{}{"a": {}}}
	svc := NewService(client, repo, nil, nil)

	p := svc.NewPaginator(feed.Options{Feed: "r/golang", ChunkSize: 5, HideRead: true})
	if err := p.Load(context.Background(), false, false); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	got := p.Entities()
	if len(got) != 1 || got[0].Fullname() != "t3_b" {
		t.Fatalf("expected only the unseen post, got %+v", got)
	}
}

func TestService_UIPreferences(t *testing.T) {
	repo := &fakeRepo{prefs: storage.UIPreferences{Sort: "new"}}
	svc := NewService(&fakeClient{}, repo, nil, nil)

	prefs, err := svc.LoadUIPreferences(context.Background())
	if err != nil || prefs.Sort != "new" {
		t.Fatalf("unexpected preferences %+v err=%v", prefs, err)
	}

	if err := svc.SaveUIPreferences(context.Background(), storage.UIPreferences{HideRead: true}); err != nil {
		t.Fatalf("SaveUIPreferences returned error: %v", err)
	}
	if repo.saved == nil || !repo.saved.HideRead {
		t.Fatalf("preferences were not saved: %+v", repo.saved)
	}

	repo.saveErr = errors.New("disk full")
	if err := svc.SaveUIPreferences(context.Background(), storage.UIPreferences{}); err == nil {
		t.Fatal("expected save error")
	}
}

func TestService_CheckAuth(t *testing.T) {
	svc := NewService(&fakeClient{user: entity.User{Name: "spez"}}, &fakeRepo{}, nil, nil)

	user, err := svc.CheckAuth(context.Background())
	if err != nil || user.Name != "spez" {
		t.Fatalf("unexpected user %+v err=%v", user, err)
	}

	svc = NewService(&fakeClient{err: reddit.ErrUnauthorized}, &fakeRepo{}, nil, nil)
	if _, err := svc.CheckAuth(context.Background()); !errors.Is(err, reddit.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
