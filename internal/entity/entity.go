// Package entity defines the items a Reddit listing can contain.
package entity

import (
	"strings"
	"time"
)

// Kind is the type prefix Reddit puts in front of every id.
type Kind string

const (
	KindComment   Kind = "t1"
	KindUser      Kind = "t2"
	KindPost      Kind = "t3"
	KindMessage   Kind = "t4"
	KindSubreddit Kind = "t5"
	KindMulti     Kind = "LabeledMulti"
)

// Entity is one displayable item of a feed. The set of implementations is
// closed: Post, Comment, Subreddit, User, Multi and Message.
type Entity interface {
	Kind() Kind
	// Fullname is unique across all kinds.
	Fullname() string
	isEntity()
}

// Fullname joins a kind and a bare id, e.g. ("t3", "abc") -> "t3_abc".
func Fullname(kind Kind, id string) string {
	return string(kind) + "_" + id
}

// SplitFullname is the inverse of Fullname. Names without a kind prefix are
// returned with an empty kind.
func SplitFullname(name string) (Kind, string) {
	prefix, id, ok := strings.Cut(name, "_")
	if !ok || len(prefix) != 2 || prefix[0] != 't' {
		return "", name
	}
	return Kind(prefix), id
}

type Post struct {
	ID        string
	Subreddit string
	Title     string
	Author    string
	SelfText  string
	// SelfTextHTML is the rendered form of SelfText as Reddit returns it.
	SelfTextHTML string
	URL          string
	Permalink    string
	Flair        string
	Score        int
	NumComments  int
	Over18       bool
	Stickied     bool
	CreatedAt    time.Time
}

func (p Post) Kind() Kind       { return KindPost }
func (p Post) Fullname() string { return Fullname(KindPost, p.ID) }
func (Post) isEntity()          {}

type Comment struct {
	ID        string
	LinkID    string
	ParentID  string
	Subreddit string
	Author    string
	Body      string
	Score     int
	CreatedAt time.Time
}

func (c Comment) Kind() Kind       { return KindComment }
func (c Comment) Fullname() string { return Fullname(KindComment, c.ID) }
func (Comment) isEntity()          {}

type Subreddit struct {
	ID          string
	Name        string
	Title       string
	Description string
	Subscribers int
}

func (s Subreddit) Kind() Kind       { return KindSubreddit }
func (s Subreddit) Fullname() string { return Fullname(KindSubreddit, s.ID) }
func (Subreddit) isEntity()          {}

type User struct {
	ID           string
	Name         string
	LinkKarma    int
	CommentKarma int
	CreatedAt    time.Time
}

func (u User) Kind() Kind       { return KindUser }
func (u User) Fullname() string { return Fullname(KindUser, u.ID) }
func (User) isEntity()          {}

// Multi is a user-curated set of subreddits. It has no t-prefixed id, so
// its path (e.g. "/user/name/m/golang") serves as the fullname.
type Multi struct {
	Path       string
	Name       string
	Owner      string
	Subreddits []string
}

func (m Multi) Kind() Kind       { return KindMulti }
func (m Multi) Fullname() string { return m.Path }
func (Multi) isEntity()          {}

type Message struct {
	ID        string
	Author    string
	Subject   string
	Body      string
	Unread    bool
	CreatedAt time.Time
}

func (m Message) Kind() Kind       { return KindMessage }
func (m Message) Fullname() string { return Fullname(KindMessage, m.ID) }
func (Message) isEntity()          {}

// PostID returns the bare post id when e is a post.
func PostID(e Entity) (string, bool) {
	p, ok := e.(Post)
	if !ok {
		return "", false
	}
	return p.ID, true
}
