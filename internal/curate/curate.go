// Package curate filters stored articles into per-area topical feeds
// and republishes them as RSS files.
package curate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gorilla/feeds"

	"github.com/nrouizem/ctic-news-feed/internal/config"
	"github.com/nrouizem/ctic-news-feed/internal/store"
)

// KeywordSource resolves the keyword set for a topic area.
type KeywordSource interface {
	Lookup(ctx context.Context, area string) ([]string, error)
}

// Relevant reports whether any keyword appears as a substring of the
// article's title or summary, case-insensitively. Deliberately simple:
// no stemming, no tokenization, no ranking.
func Relevant(title, summary string, keywords []string) bool {
	text := strings.ToLower(title + " " + summary)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

type Curator struct {
	db       *store.Store
	keywords KeywordSource
	cfg      *config.Config
}

func New(db *store.Store, keywords KeywordSource, cfg *config.Config) *Curator {
	return &Curator{db: db, keywords: keywords, cfg: cfg}
}

// Run loads every stored article and writes one RSS file per area that
// has relevant articles. Areas without matches, or whose keywords are
// unavailable, produce no file and only an informational log line.
func (c *Curator) Run(ctx context.Context) error {
	articles, err := c.db.ListAll()
	if err != nil {
		return fmt.Errorf("loading articles: %w", err)
	}
	if len(articles) == 0 {
		log.Printf("no articles in store; nothing to curate")
		return nil
	}

	var errs []error
	for _, area := range c.cfg.Areas {
		kws, err := c.keywords.Lookup(ctx, area)
		if err != nil {
			log.Printf("keywords unavailable for %s: %v", area, err)
			continue
		}
		kws = append(kws, c.cfg.Keywords...)

		matched := Filter(articles, kws)
		if len(matched) == 0 {
			log.Printf("no articles found for %s", area)
			continue
		}

		path, err := c.writeFeed(area, matched)
		if err != nil {
			errs = append(errs, fmt.Errorf("writing feed for %s: %w", area, err))
			continue
		}
		log.Printf("RSS feed generated: %s (%d articles)", path, len(matched))
	}
	return errors.Join(errs...)
}

// Filter returns the articles relevant to the keyword set, sorted by
// published date descending. The sort is stable so equal timestamps
// keep their storage order.
func Filter(articles []store.Article, keywords []string) []store.Article {
	var matched []store.Article
	for _, a := range articles {
		if Relevant(a.Title, a.Summary, keywords) {
			matched = append(matched, a)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Published.After(matched[j].Published)
	})
	return matched
}

// BuildFeed assembles the syndication document for one area.
func BuildFeed(area string, articles []store.Article, cfg *config.Config) *feeds.Feed {
	f := &feeds.Feed{
		Title:       area + cfg.Output.TitleSuffix,
		Link:        &feeds.Link{Href: cfg.Output.BaseLink + strings.ToLower(area) + "_feed.xml"},
		Description: cfg.Output.Description,
	}
	for _, a := range articles {
		f.Items = append(f.Items, &feeds.Item{
			Title:       a.Title,
			Link:        &feeds.Link{Href: a.Link},
			Description: a.Summary,
			Created:     a.Published,
		})
	}
	return f
}

func (c *Curator) writeFeed(area string, articles []store.Article) (string, error) {
	if err := os.MkdirAll(c.cfg.OutputDir(), 0o755); err != nil {
		return "", err
	}

	rss := (&feeds.Rss{Feed: BuildFeed(area, articles, c.cfg)}).RssFeed()
	rss.Language = c.cfg.Language()

	path := filepath.Join(c.cfg.OutputDir(), strings.ToLower(area)+".xml")
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := feeds.WriteXML(rss, out); err != nil {
		out.Close()
		return "", err
	}
	return path, out.Close()
}
