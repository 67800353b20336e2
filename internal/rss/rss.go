// Package rss is the supplementary news source: configured feeds are pulled
// and their items converted to raw news records for the news normalizer,
// alongside what the search tool returns.
package rss

import (
	"log/slog"
	"os"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/conflictmap/tracker/internal/bird"
	"github.com/conflictmap/tracker/internal/scraper"
)

// FeedsConfig is the YAML feed list:
//
//	feeds:
//	  - https://...
type FeedsConfig struct {
	Feeds []string `yaml:"feeds"`
}

// LoadFeeds reads the feed URL list. A missing file means no feeds
// configured, which is not an error.
func LoadFeeds(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg FeedsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return cfg.Feeds, nil
}

// FetchAll downloads every feed and converts items newer than maxAge to raw
// news records. Feed failures are logged and skipped.
func FetchAll(urls []string, maxAge time.Duration) []bird.RawMessage {
	parser := gofeed.NewParser()
	var items []bird.RawMessage
	ok := 0

	for _, url := range urls {
		feed, err := parser.ParseURL(url)
		if err != nil {
			slog.Warn("error parsing feed", "url", url, "error", err)
			continue
		}
		for _, item := range feed.Items {
			if item.PublishedParsed != nil && time.Since(*item.PublishedParsed) > maxAge {
				continue
			}
			items = append(items, convert(feed, item))
		}
		ok++
		slog.Debug("feed loaded", "url", url, "items", len(feed.Items))
	}

	slog.Info("feeds processed", "ok", ok, "total", len(urls))
	return items
}

// convert maps one feed item onto the raw message shape. Items with no
// description get one scraped from the article page, best effort.
func convert(feed *gofeed.Feed, item *gofeed.Item) bird.RawMessage {
	text := item.Title
	if item.Description != "" {
		text = item.Title + " — " + item.Description
	} else if desc := scraper.Description(item.Link); desc != "" {
		text = item.Title + " — " + desc
	}

	created := ""
	if item.PublishedParsed != nil {
		created = item.PublishedParsed.UTC().Format(time.RFC3339)
	}

	return bird.RawMessage{
		Title:     text,
		CreatedAt: created,
		Source:    feed.Title,
		URL:       item.Link,
	}
}
