package store

import (
	"path/filepath"
	"testing"
	"time"
)

func testDB(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleArticles() []Article {
	now := time.Now().UTC()
	return []Article{
		{FeedURL: "https://feeds.example.com/a", Title: "Post A", Link: "https://a.com/1", Summary: "Desc A", Published: now.Add(-1 * time.Hour)},
		{FeedURL: "https://feeds.example.com/a", Title: "Post B", Link: "https://a.com/2", Summary: "Desc B", Published: now.Add(-2 * time.Hour)},
		{FeedURL: "https://feeds.example.com/b", Title: "Post C", Link: "https://b.com/1", Summary: "Desc C", Published: now.Add(-48 * time.Hour)},
	}
}

func TestInsertAndListAll(t *testing.T) {
	db := testDB(t)

	for _, a := range sampleArticles() {
		inserted, err := db.Insert(a)
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if !inserted {
			t.Errorf("expected %s to be inserted", a.Link)
		}
	}

	got, err := db.ListAll()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(got))
	}
	// Should be ordered by published DESC
	for i := 1; i < len(got); i++ {
		if got[i].Published.After(got[i-1].Published) {
			t.Errorf("articles out of order: %s after %s", got[i].Link, got[i-1].Link)
		}
	}
	if got[0].Link != "https://a.com/1" {
		t.Errorf("expected newest first, got %s", got[0].Link)
	}
}

func TestInsertDuplicateIsNoOp(t *testing.T) {
	db := testDB(t)
	a := sampleArticles()[0]

	if _, err := db.Insert(a); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	// Same (feed_url, link) with different fields must be ignored
	dup := a
	dup.Title = "Changed Title"
	dup.Summary = "Changed summary"
	inserted, err := db.Insert(dup)
	if err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}
	if inserted {
		t.Error("duplicate insert should be a no-op")
	}

	got, err := db.ListAll()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 article, got %d", len(got))
	}
	if got[0].Title != "Post A" {
		t.Errorf("duplicate insert must not update fields, got title %q", got[0].Title)
	}
}

func TestInsertSameLinkDifferentFeeds(t *testing.T) {
	db := testDB(t)
	a := sampleArticles()[0]
	b := a
	b.FeedURL = "https://feeds.example.com/other"

	for _, art := range []Article{a, b} {
		inserted, err := db.Insert(art)
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if !inserted {
			t.Errorf("expected insert for feed %s", art.FeedURL)
		}
	}

	got, err := db.ListAll()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("same link from different feeds should both persist, got %d", len(got))
	}
}

func TestInsertRejectsMissingFields(t *testing.T) {
	db := testDB(t)

	for _, a := range []Article{
		{FeedURL: "f", Title: "", Link: "https://a.com", Published: time.Now()},
		{FeedURL: "f", Title: "Has Title", Link: "", Published: time.Now()},
	} {
		if _, err := db.Insert(a); err == nil {
			t.Errorf("expected error for article %+v", a)
		}
	}

	got, err := db.ListAll()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("store should be unchanged, got %d articles", len(got))
	}
}

func TestListAllUnparseableDate(t *testing.T) {
	db := testDB(t)

	// Write a row with a legacy date format directly
	_, err := db.writeDB.Exec(`
		INSERT INTO articles (feed_url, title, link, summary, published)
		VALUES (?, ?, ?, ?, ?)
	`, "f", "Legacy", "https://a.com/legacy", "s", "Mon, 02 Jan 2006 15:04:05 GMT")
	if err != nil {
		t.Fatalf("raw insert: %v", err)
	}
	old := sampleArticles()[2]
	if _, err := db.Insert(old); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := db.ListAll()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(got))
	}
	// Unparseable date sorts as "now", so it comes first
	if got[0].Title != "Legacy" {
		t.Errorf("expected legacy-date article to sort as now, got %q first", got[0].Title)
	}
	// But the raw text is preserved for display
	if got[0].PublishedRaw != "Mon, 02 Jan 2006 15:04:05 GMT" {
		t.Errorf("raw published text must be preserved, got %q", got[0].PublishedRaw)
	}
}

func TestPrune(t *testing.T) {
	db := testDB(t)
	for _, a := range sampleArticles() {
		if _, err := db.Insert(a); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	deleted, err := db.Prune(24 * time.Hour)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 pruned article, got %d", deleted)
	}

	got, err := db.ListAll()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 remaining articles, got %d", len(got))
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := db.Insert(sampleArticles()[0]); err != nil {
		t.Fatalf("insert: %v", err)
	}
	db.Close()

	db2, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer db2.Close()

	got, err := db2.ListAll()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("reopening must not lose data, got %d articles", len(got))
	}
}
