package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

// UIPreferences are the feed settings restored on the next start.
type UIPreferences struct {
	Sort     string
	HideRead bool
	LastFeed string
}

func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps the read-modify-write of comment blobs serial.
	db.SetMaxOpenConns(1)
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) Init(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS seen_posts (
  feed_id TEXT NOT NULL,
  post_id TEXT NOT NULL,
  seen_at TEXT NOT NULL,
  PRIMARY KEY (feed_id, post_id)
);
CREATE TABLE IF NOT EXISTS seen_comments (
  post_id TEXT PRIMARY KEY,
  blob TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS ui_preferences (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// CheckWritable fails when the database file cannot be written, so the
// problem shows up at startup instead of on the first scroll.
func (r *Repository) CheckWritable(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO ui_preferences (key, value) VALUES ('write_check', ?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value
`, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("write check: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM ui_preferences WHERE key = 'write_check'`); err != nil {
		return fmt.Errorf("write check cleanup: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *Repository) GetSeenPostIDs(ctx context.Context, feedID string) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT post_id FROM seen_posts WHERE feed_id = ?`, feedID)
	if err != nil {
		return nil, fmt.Errorf("query seen posts: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan seen post: %w", err)
		}
		seen[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return seen, nil
}

// MarkSeen records postIDs for feedID. Marking a post twice refreshes its
// seen_at and is otherwise a no-op.
func (r *Repository) MarkSeen(ctx context.Context, feedID string, postIDs []string) error {
	if len(postIDs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO seen_posts (feed_id, post_id, seen_at)
VALUES (?, ?, ?)
ON CONFLICT(feed_id, post_id) DO UPDATE SET
  seen_at=excluded.seen_at
`)
	if err != nil {
		return fmt.Errorf("prepare mark seen statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, id := range postIDs {
		if id == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, feedID, id, now); err != nil {
			return fmt.Errorf("mark post %s seen: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetSeenCommentsBlob returns the comma-joined comment names recorded for
// postID. ok is false when the post was never opened.
func (r *Repository) GetSeenCommentsBlob(ctx context.Context, postID string) (string, bool, error) {
	var blob string
	err := r.db.QueryRowContext(ctx, `SELECT blob FROM seen_comments WHERE post_id = ?`, postID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query seen comments: %w", err)
	}
	return blob, true, nil
}

// AppendSeenComments adds ids to the blob of postID, skipping names that
// are already recorded. The record is created even when ids is empty.
func (r *Repository) AppendSeenComments(ctx context.Context, postID string, ids []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var blob string
	err = tx.QueryRowContext(ctx, `SELECT blob FROM seen_comments WHERE post_id = ?`, postID).Scan(&blob)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("query seen comments: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO seen_comments (post_id, blob, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(post_id) DO UPDATE SET
  blob=excluded.blob,
  updated_at=excluded.updated_at
`, postID, mergeBlob(blob, ids), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("save seen comments for %s: %w", postID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func mergeBlob(blob string, ids []string) string {
	var names []string
	known := make(map[string]struct{})
	if blob != "" {
		names = strings.Split(blob, ",")
		for _, name := range names {
			known[name] = struct{}{}
		}
	}
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := known[id]; ok {
			continue
		}
		known[id] = struct{}{}
		names = append(names, id)
	}
	return strings.Join(names, ",")
}

const (
	prefSort     = "sort"
	prefHideRead = "hide_read"
	prefLastFeed = "last_feed"
)

// LoadUIPreferences returns the stored preferences. Keys that were never
// saved keep their zero value.
func (r *Repository) LoadUIPreferences(ctx context.Context) (UIPreferences, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM ui_preferences WHERE key IN (?, ?, ?)`,
		prefSort, prefHideRead, prefLastFeed)
	if err != nil {
		return UIPreferences{}, fmt.Errorf("query ui preferences: %w", err)
	}
	defer rows.Close()

	var prefs UIPreferences
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return UIPreferences{}, fmt.Errorf("scan ui preference: %w", err)
		}
		switch key {
		case prefSort:
			prefs.Sort = value
		case prefLastFeed:
			prefs.LastFeed = value
		case prefHideRead:
			on, err := strconv.ParseBool(value)
			if err != nil {
				return UIPreferences{}, fmt.Errorf("parse %s preference %q: %w", key, value, err)
			}
			prefs.HideRead = on
		}
	}
	if err := rows.Err(); err != nil {
		return UIPreferences{}, fmt.Errorf("rows iteration: %w", err)
	}
	return prefs, nil
}

func (r *Repository) SaveUIPreferences(ctx context.Context, prefs UIPreferences) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO ui_preferences (key, value)
VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value
`)
	if err != nil {
		return fmt.Errorf("prepare preferences statement: %w", err)
	}
	defer stmt.Close()

	values := [][2]string{
		{prefSort, prefs.Sort},
		{prefHideRead, strconv.FormatBool(prefs.HideRead)},
		{prefLastFeed, prefs.LastFeed},
	}
	for _, kv := range values {
		if _, err := stmt.ExecContext(ctx, kv[0], kv[1]); err != nil {
			return fmt.Errorf("save %s preference: %w", kv[0], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
