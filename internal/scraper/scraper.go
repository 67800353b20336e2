// Package scraper pulls a short description out of an article page for feed
// items that carry no body text.
package scraper

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const descriptionMaxRunes = 300

var client = &http.Client{Timeout: 15 * time.Second}

// Description fetches url and extracts the best available summary text:
// og:description, then the meta description, then the first substantial
// article paragraph. Returns "" on any failure.
func Description(url string) string {
	if url == "" {
		return ""
	}
	desc, err := fetchDescription(url)
	if err != nil {
		slog.Debug("scrape failed", "url", url, "error", err)
		return ""
	}
	return desc
}

func fetchDescription(url string) (string, error) {
	resp, err := client.Get(url)
	if err != nil {
		return "", fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error parsing HTML: %w", err)
	}

	if content, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		if c := clean(content); c != "" {
			return c, nil
		}
	}
	if content, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		if c := clean(content); c != "" {
			return c, nil
		}
	}

	// First real paragraph of the article body.
	var paragraph string
	doc.Find("article p, .article-body p, .content p").EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if len(text) > 60 {
			paragraph = text
			return false
		}
		return true
	})
	return clean(paragraph), nil
}

func clean(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) > descriptionMaxRunes {
		s = string(runes[:descriptionMaxRunes]) + "..."
	}
	return s
}
