// Package store persists ingested articles in SQLite, deduplicated by
// (feed_url, link).
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"
)

// timeFormat is the canonical textual representation for published
// dates. Written and read consistently so the read path never has to
// guess the layout.
const timeFormat = time.RFC3339

type Store struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	s := &Store{readDB: readDB, writeDB: writeDB}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS articles (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			feed_url  TEXT NOT NULL,
			title     TEXT NOT NULL,
			link      TEXT NOT NULL,
			summary   TEXT NOT NULL DEFAULT '',
			published TEXT NOT NULL,
			UNIQUE(feed_url, link)
		);
		CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published DESC);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	var errs []error
	if s.readDB != nil {
		errs = append(errs, s.readDB.Close())
	}
	if s.writeDB != nil {
		errs = append(errs, s.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// Insert records an article unless the (feed_url, link) pair already
// exists. A duplicate is a silent no-op; the return value reports
// whether a row was actually written.
func (s *Store) Insert(a Article) (bool, error) {
	if a.Title == "" || a.Link == "" {
		return false, fmt.Errorf("article missing title or link")
	}
	published := a.PublishedRaw
	if published == "" {
		published = a.Published.UTC().Format(timeFormat)
	}
	res, err := s.writeDB.Exec(`
		INSERT OR IGNORE INTO articles (feed_url, title, link, summary, published)
		VALUES (?, ?, ?, ?, ?)
	`, a.FeedURL, a.Title, a.Link, a.Summary, published)
	if err != nil {
		return false, fmt.Errorf("inserting article %s: %w", a.Link, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListAll returns every stored article ordered by published date
// descending. Rows whose stored date no longer parses sort as "now";
// their raw text is preserved for display.
func (s *Store) ListAll() ([]Article, error) {
	rows, err := s.readDB.Query(`
		SELECT id, feed_url, title, link, summary, published
		FROM articles
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	now := time.Now()
	var articles []Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ID, &a.FeedURL, &a.Title, &a.Link, &a.Summary, &a.PublishedRaw); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		t, err := time.Parse(timeFormat, a.PublishedRaw)
		if err != nil {
			t = now
		}
		a.Published = t
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Stable: equal timestamps keep insertion order.
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Published.After(articles[j].Published)
	})
	return articles, nil
}

// Prune deletes articles older than the given retention window and
// returns the number of rows removed.
func (s *Store) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UTC().Format(timeFormat)
	res, err := s.writeDB.Exec("DELETE FROM articles WHERE published < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning articles: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns the article count and database file size.
func (s *Store) Stats(dbPath string) (int64, int64, error) {
	var count int64
	if err := s.readDB.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting articles: %w", err)
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, nil
	}
	return count, info.Size(), nil
}
