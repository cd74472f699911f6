package store

import "time"

// Article is one persisted feed entry. Published is the parsed form of
// PublishedRaw and is used for ordering; PublishedRaw is what gets
// displayed and republished.
type Article struct {
	ID           int64
	FeedURL      string
	Title        string
	Link         string
	Summary      string
	Published    time.Time
	PublishedRaw string
}
