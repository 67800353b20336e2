// Package views builds the derived artifacts the frontend consumes: ticker
// texts and template samples. Both are pure functions of the merged state so
// repeated runs over the same store produce identical output.
package views

import (
	"regexp"
	"strings"

	"github.com/conflictmap/tracker/internal/bird"
	"github.com/conflictmap/tracker/internal/news"
)

const (
	tickerPerLanguage = 15
	tickerNewsInput   = 15
	tickerMsgInput    = 10
	tickerKeyRunes    = 40
	tickerMinKeyRunes = 10
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// Ticker formats news items and recent messages into short display strings,
// one list per language. The formatted string is reused verbatim across all
// language buckets; ticker text is not translated.
func Ticker(languages []string, items []news.News, msgs []bird.RawMessage, relevance []string) map[string][]string {
	ticker := make(map[string][]string, len(languages))
	for _, lang := range languages {
		ticker[lang] = []string{}
	}

	seen := make(map[string]struct{})

	add := func(text, author string) {
		key := tickerKey(text)
		if len([]rune(key)) < tickerMinKeyRunes {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		if len(ticker[languages[0]]) >= tickerPerLanguage {
			return
		}
		seen[key] = struct{}{}

		var formatted string
		if author != "" {
			formatted = "⚡ @" + author + ": " + clipRunes(text, 80)
		} else {
			formatted = "⚡ " + clipRunes(text, 100)
		}

		for _, lang := range languages {
			ticker[lang] = append(ticker[lang], formatted)
		}
	}

	for i, item := range items {
		if i >= tickerNewsInput {
			break
		}
		if item.Text == "" || !news.Relevant(item.Text, relevance) {
			continue
		}
		add(item.Text, "")
	}

	for i, msg := range msgs {
		if i >= tickerMsgInput {
			break
		}
		text := msg.BodyText()
		if text == "" {
			continue
		}
		author := msg.Username()
		if author == "" {
			author = "unknown"
		}
		add(text, author)
	}

	return ticker
}

// tickerKey normalizes text into the dedup key: first 40 runes, lower-cased,
// URLs stripped, whitespace collapsed.
func tickerKey(text string) string {
	key := strings.ToLower(strings.TrimSpace(clipRunes(text, tickerKeyRunes)))
	key = urlPattern.ReplaceAllString(key, "")
	return strings.Join(strings.Fields(key), " ")
}

func clipRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
