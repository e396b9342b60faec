package reddit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/glabrego/snoo-cli/internal/comments"
	"github.com/glabrego/snoo-cli/internal/entity"
	"github.com/glabrego/snoo-cli/internal/render/markup"
)

const kindMore = "more"

type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string  `json:"after"`
		Children []thing `json:"children"`
	} `json:"data"`
}

type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type moreChildrenResponse struct {
	JSON struct {
		Errors []json.RawMessage `json:"errors"`
		Data   struct {
			Things []thing `json:"things"`
		} `json:"data"`
	} `json:"json"`
}

type postData struct {
	ID            string  `json:"id"`
	Subreddit     string  `json:"subreddit"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	SelfText      string  `json:"selftext"`
	SelfTextHTML  string  `json:"selftext_html"`
	URL           string  `json:"url"`
	Permalink     string  `json:"permalink"`
	LinkFlairText string  `json:"link_flair_text"`
	Score         int     `json:"score"`
	NumComments   int     `json:"num_comments"`
	Over18        bool    `json:"over_18"`
	Stickied      bool    `json:"stickied"`
	CreatedUTC    float64 `json:"created_utc"`
}

type commentData struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	LinkID     string          `json:"link_id"`
	ParentID   string          `json:"parent_id"`
	Subreddit  string          `json:"subreddit"`
	Author     string          `json:"author"`
	Body       string          `json:"body"`
	BodyHTML   string          `json:"body_html"`
	Score      int             `json:"score"`
	CreatedUTC float64         `json:"created_utc"`
	Replies    json.RawMessage `json:"replies"`
}

type moreData struct {
	ID       string   `json:"id"`
	ParentID string   `json:"parent_id"`
	Count    int      `json:"count"`
	Children []string `json:"children"`
}

type subredditData struct {
	ID                string `json:"id"`
	DisplayName       string `json:"display_name"`
	Title             string `json:"title"`
	PublicDescription string `json:"public_description"`
	Subscribers       int    `json:"subscribers"`
}

type userData struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	LinkKarma    int     `json:"link_karma"`
	CommentKarma int     `json:"comment_karma"`
	CreatedUTC   float64 `json:"created_utc"`
}

type messageData struct {
	ID         string  `json:"id"`
	Author     string  `json:"author"`
	Subject    string  `json:"subject"`
	Body       string  `json:"body"`
	BodyHTML   string  `json:"body_html"`
	New        bool    `json:"new"`
	CreatedUTC float64 `json:"created_utc"`
}

type multiData struct {
	Path       string `json:"path"`
	Name       string `json:"name"`
	Owner      string `json:"owner"`
	Subreddits []struct {
		Name string `json:"name"`
	} `json:"subreddits"`
}

func unixTime(sec float64) time.Time {
	if sec <= 0 {
		return time.Time{}
	}
	return time.Unix(int64(sec), 0).UTC()
}

func (d userData) entity() entity.User {
	return entity.User{
		ID:           d.ID,
		Name:         d.Name,
		LinkKarma:    d.LinkKarma,
		CommentKarma: d.CommentKarma,
		CreatedAt:    unixTime(d.CreatedUTC),
	}
}

// decodeListingBody accepts a regular listing object or the bare array of
// things some endpoints, such as /api/multi/mine, return.
func decodeListingBody(body json.RawMessage) (Listing, error) {
	var things []thing
	var after string
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &things); err != nil {
			return Listing{}, fmt.Errorf("decode listing response: %w", err)
		}
	} else {
		var l listing
		if err := json.Unmarshal(trimmed, &l); err != nil {
			return Listing{}, fmt.Errorf("decode listing response: %w", err)
		}
		things, after = l.Data.Children, l.Data.After
	}

	out := Listing{Entities: make([]entity.Entity, 0, len(things)), After: after}
	for _, th := range things {
		e, err := th.entity()
		if err != nil {
			return Listing{}, err
		}
		if e != nil {
			out.Entities = append(out.Entities, e)
		}
	}
	return out, nil
}

// entity decodes a listing child. Kinds without an entity counterpart
// decode to nil.
func (th thing) entity() (entity.Entity, error) {
	switch entity.Kind(th.Kind) {
	case entity.KindPost:
		var d postData
		if err := th.decode(&d); err != nil {
			return nil, err
		}
		return entity.Post{
			ID:           d.ID,
			Subreddit:    d.Subreddit,
			Title:        d.Title,
			Author:       d.Author,
			SelfText:     markup.Text(d.SelfTextHTML, d.SelfText),
			SelfTextHTML: d.SelfTextHTML,
			URL:          d.URL,
			Permalink:    d.Permalink,
			Flair:        d.LinkFlairText,
			Score:        d.Score,
			NumComments:  d.NumComments,
			Over18:       d.Over18,
			Stickied:     d.Stickied,
			CreatedAt:    unixTime(d.CreatedUTC),
		}, nil
	case entity.KindComment:
		var d commentData
		if err := th.decode(&d); err != nil {
			return nil, err
		}
		return entity.Comment{
			ID:        d.ID,
			LinkID:    d.LinkID,
			ParentID:  d.ParentID,
			Subreddit: d.Subreddit,
			Author:    d.Author,
			Body:      markup.Text(d.BodyHTML, d.Body),
			Score:     d.Score,
			CreatedAt: unixTime(d.CreatedUTC),
		}, nil
	case entity.KindSubreddit:
		var d subredditData
		if err := th.decode(&d); err != nil {
			return nil, err
		}
		return entity.Subreddit{
			ID:          d.ID,
			Name:        d.DisplayName,
			Title:       d.Title,
			Description: d.PublicDescription,
			Subscribers: d.Subscribers,
		}, nil
	case entity.KindUser:
		var d userData
		if err := th.decode(&d); err != nil {
			return nil, err
		}
		return d.entity(), nil
	case entity.KindMessage:
		var d messageData
		if err := th.decode(&d); err != nil {
			return nil, err
		}
		return entity.Message{
			ID:        d.ID,
			Author:    d.Author,
			Subject:   d.Subject,
			Body:      markup.Text(d.BodyHTML, d.Body),
			Unread:    d.New,
			CreatedAt: unixTime(d.CreatedUTC),
		}, nil
	case entity.KindMulti:
		var d multiData
		if err := th.decode(&d); err != nil {
			return nil, err
		}
		m := entity.Multi{Path: d.Path, Name: d.Name, Owner: d.Owner}
		for _, s := range d.Subreddits {
			m.Subreddits = append(m.Subreddits, s.Name)
		}
		return m, nil
	default:
		return nil, nil
	}
}

func (th thing) decode(dst any) error {
	if err := json.Unmarshal(th.Data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", th.Kind, err)
	}
	return nil
}

// rawNode converts a comment or "more" thing. Other kinds report false.
func (th thing) rawNode() (comments.RawNode, bool, error) {
	switch th.Kind {
	case string(entity.KindComment):
		var d commentData
		if err := th.decode(&d); err != nil {
			return comments.RawNode{}, false, err
		}
		return commentNode(d), true, nil
	case kindMore:
		var d moreData
		if err := th.decode(&d); err != nil {
			return comments.RawNode{}, false, err
		}
		return comments.RawNode{
			Name:     comments.MoreName(d.ParentID, d.ID),
			ParentID: d.ParentID,
			More:     &comments.MoreInfo{Count: d.Count, ChildIDs: d.Children},
		}, true, nil
	default:
		return comments.RawNode{}, false, nil
	}
}

func commentNode(d commentData) comments.RawNode {
	name := d.Name
	if name == "" {
		name = entity.Fullname(entity.KindComment, d.ID)
	}
	return comments.RawNode{
		Name:      name,
		ParentID:  d.ParentID,
		Author:    d.Author,
		Body:      markup.Text(d.BodyHTML, d.Body),
		Score:     d.Score,
		CreatedAt: unixTime(d.CreatedUTC),
	}
}

// flattenComments walks nested replies in pre-order.
func flattenComments(children []thing) ([]comments.RawNode, error) {
	var out []comments.RawNode
	var visit func([]thing) error
	visit = func(things []thing) error {
		for _, th := range things {
			node, ok, err := th.rawNode()
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			out = append(out, node)
			if th.Kind != string(entity.KindComment) {
				continue
			}
			var d struct {
				Replies json.RawMessage `json:"replies"`
			}
			if err := th.decode(&d); err != nil {
				return err
			}
			replies := bytes.TrimSpace(d.Replies)
			if len(replies) == 0 || replies[0] != '{' {
				continue
			}
			var l listing
			if err := json.Unmarshal(replies, &l); err != nil {
				return fmt.Errorf("decode replies: %w", err)
			}
			if err := visit(l.Data.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(children); err != nil {
		return nil, err
	}
	return out, nil
}
