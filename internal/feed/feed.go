// Package feed ingests configured RSS/Atom sources into the article
// store.
package feed

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/nrouizem/ctic-news-feed/internal/store"
	"github.com/nrouizem/ctic-news-feed/internal/summarize"
	"github.com/nrouizem/ctic-news-feed/internal/textutil"
)

// Summarizer produces a short summary of plain article text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

type Fetcher struct {
	parser     *gofeed.Parser
	db         *store.Store
	summarizer Summarizer // nil means excerpt fallback only
}

func NewFetcher(db *store.Store, summarizer Summarizer) *Fetcher {
	return &Fetcher{parser: gofeed.NewParser(), db: db, summarizer: summarizer}
}

// Fetch parses one feed and stores every usable entry. Entries without
// a title or link are skipped; duplicates are silent no-ops.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) error {
	parsed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", feedURL, err)
	}

	for _, item := range parsed.Items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if item.Title == "" || item.Link == "" {
			log.Printf("skipping entry without title or link in %s", feedURL)
			continue
		}

		desc := item.Description
		if desc == "" {
			desc = item.Content
		}
		plain := textutil.StripHTML(desc)

		summary := f.summarize(ctx, plain)
		published := entryTime(item)

		inserted, err := f.db.Insert(store.Article{
			FeedURL:   feedURL,
			Title:     item.Title,
			Link:      item.Link,
			Summary:   summary,
			Published: published,
		})
		if err != nil {
			log.Printf("storing %s: %v", item.Link, err)
			continue
		}
		if inserted {
			log.Printf("stored %s", item.Link)
		}
	}
	return nil
}

func (f *Fetcher) summarize(ctx context.Context, plain string) string {
	if f.summarizer == nil {
		return summarize.FallbackSummary(plain)
	}
	s, err := f.summarizer.Summarize(ctx, plain)
	if err != nil || s == "" {
		if err != nil {
			log.Printf("summary unavailable, using excerpt: %v", err)
		}
		return summarize.FallbackSummary(plain)
	}
	return s
}

// entryTime resolves an entry's timestamp, defaulting to ingestion
// time when the source provides none.
func entryTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Now().UTC()
}

// FetchAll runs fetches across a fixed-size worker pool and waits for
// all of them. One feed's failure never aborts the others; per-feed
// errors come back for the caller to log.
func (f *Fetcher) FetchAll(ctx context.Context, feedURLs []string, workers int) []error {
	if workers <= 0 {
		workers = 4
	}
	if workers > len(feedURLs) {
		workers = len(feedURLs)
	}

	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)

	jobs := make(chan string)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for url := range jobs {
				if err := f.Fetch(ctx, url); err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
			}
		}()
	}

	for _, url := range feedURLs {
		jobs <- url
	}
	close(jobs)
	wg.Wait()
	return errs
}
