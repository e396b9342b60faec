// Package reddit is a small client for the Reddit JSON API.
package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/glabrego/snoo-cli/internal/comments"
	"github.com/glabrego/snoo-cli/internal/entity"
)

// ErrUnauthorized is returned when Reddit rejects the access token.
var ErrUnauthorized = errors.New("reddit: unauthorized")

// maxMoreChildren is the most ids /api/morechildren accepts per call.
const maxMoreChildren = 100

// LatencyObserver receives the round-trip time of every successful request.
type LatencyObserver interface {
	Observe(d time.Duration)
}

type ListingRequest struct {
	// Feed is a path such as "", "r/golang", "user/spez", "user/spez/m/tech",
	// "subreddits/mine", "message/inbox" or "api/multi/mine".
	Feed  string
	Sort  string
	After string
	Limit int
	Query string
	// Time is the "t" window for top and controversial sorts.
	Time string
}

type Listing struct {
	Entities []entity.Entity
	After    string
}

type CommentsRequest struct {
	PostID string
	Sort   string
	// Focus limits the listing to the subtree of one comment (bare id), as
	// used by continue-thread links.
	Focus string
	Limit int
}

type Thread struct {
	Post     entity.Post
	Comments []comments.RawNode
}

type Client struct {
	baseURL   string
	userAgent string
	token     string
	http      *http.Client
	observer  LatencyObserver
}

func NewClient(baseURL, userAgent, accessToken string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		token:     accessToken,
		http:      httpClient,
	}
}

// ObserveLatency registers o for request timings. It must be called before
// the client is shared.
func (c *Client) ObserveLatency(o LatencyObserver) {
	c.observer = o
}

// Me verifies the access token and returns the account it belongs to.
func (c *Client) Me(ctx context.Context) (entity.User, error) {
	var raw userData
	if err := c.getJSON(ctx, "/api/v1/me", nil, "identity", &raw); err != nil {
		return entity.User{}, err
	}
	return raw.entity(), nil
}

func (c *Client) ListFeed(ctx context.Context, req ListingRequest) (Listing, error) {
	path, q := listingPath(req)
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.After != "" {
		q.Set("after", req.After)
	}

	var body json.RawMessage
	if err := c.getJSON(ctx, path, q, "listing", &body); err != nil {
		return Listing{}, err
	}
	return decodeListingBody(body)
}

func listingPath(req ListingRequest) (string, url.Values) {
	q := make(url.Values)
	feed := strings.Trim(req.Feed, "/")

	if req.Query != "" {
		q.Set("q", req.Query)
		if req.Sort != "" {
			q.Set("sort", req.Sort)
		}
		if req.Time != "" {
			q.Set("t", req.Time)
		}
		if strings.HasPrefix(feed, "r/") {
			q.Set("restrict_sr", "on")
			return "/" + feed + "/search.json", q
		}
		return "/search.json", q
	}

	if req.Time != "" && (req.Sort == "top" || req.Sort == "controversial") {
		q.Set("t", req.Time)
	}

	switch {
	case feed == "":
		return "/" + sortOrDefault(req.Sort) + ".json", q
	case strings.HasPrefix(feed, "subreddits/"), strings.HasPrefix(feed, "message/"), strings.HasPrefix(feed, "api/"):
		return "/" + feed + ".json", q
	case strings.HasPrefix(feed, "user/") && !strings.Contains(feed, "/m/"):
		if req.Sort != "" {
			q.Set("sort", req.Sort)
		}
		return "/" + feed + ".json", q
	default:
		return "/" + feed + "/" + sortOrDefault(req.Sort) + ".json", q
	}
}

func sortOrDefault(s string) string {
	if s == "" {
		return "hot"
	}
	return s
}

// FetchComments loads a post with its comment listing flattened in
// pre-order, "more" placeholders included.
func (c *Client) FetchComments(ctx context.Context, req CommentsRequest) (Thread, error) {
	q := make(url.Values)
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}
	if req.Focus != "" {
		q.Set("comment", req.Focus)
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}

	var listings []listing
	if err := c.getJSON(ctx, "/comments/"+url.PathEscape(req.PostID)+".json", q, "comments", &listings); err != nil {
		return Thread{}, err
	}
	if len(listings) < 2 {
		return Thread{}, fmt.Errorf("decode comments response: expected 2 listings, got %d", len(listings))
	}

	var out Thread
	for _, th := range listings[0].Data.Children {
		e, err := th.entity()
		if err != nil {
			return Thread{}, err
		}
		if p, ok := e.(entity.Post); ok {
			out.Post = p
			break
		}
	}
	nodes, err := flattenComments(listings[1].Data.Children)
	if err != nil {
		return Thread{}, err
	}
	out.Comments = nodes
	return out, nil
}

// MoreChildren resolves the ids behind a "more" placeholder. Large sets are
// fetched in batches and concatenated in order.
func (c *Client) MoreChildren(ctx context.Context, linkID string, childIDs []string, sort string) ([]comments.RawNode, error) {
	var out []comments.RawNode
	for start := 0; start < len(childIDs); start += maxMoreChildren {
		end := min(start+maxMoreChildren, len(childIDs))
		q := make(url.Values)
		q.Set("api_type", "json")
		q.Set("link_id", linkID)
		q.Set("children", strings.Join(childIDs[start:end], ","))
		if sort != "" {
			q.Set("sort", sort)
		}

		var resp moreChildrenResponse
		if err := c.getJSON(ctx, "/api/morechildren", q, "more children", &resp); err != nil {
			return nil, err
		}
		if len(resp.JSON.Errors) > 0 {
			return nil, fmt.Errorf("more children failed: %s", string(resp.JSON.Errors[0]))
		}
		for _, th := range resp.JSON.Data.Things {
			node, ok, err := th.rawNode()
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, node)
			}
		}
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, resource string, dst any) error {
	if q == nil {
		q = make(url.Values)
	}
	q.Set("raw_json", "1")
	req, err := c.newRequest(ctx, http.MethodGet, path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", resource, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s failed with status %d: %w", resource, resp.StatusCode, ErrUnauthorized)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s failed with status %d: %s", resource, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s response: %w", resource, err)
	}
	if c.observer != nil {
		c.observer.Observe(time.Since(start))
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	fullURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	return req, nil
}
