// Package news normalizes informational items into the canonical news
// schema and merges them into the persisted feed. News is categorized but
// never geolocated.
package news

import (
	"sort"
	"strings"
	"time"

	"github.com/conflictmap/tracker/internal/bird"
	"github.com/conflictmap/tracker/internal/classify"
	"github.com/conflictmap/tracker/internal/event"
	"github.com/conflictmap/tracker/internal/metrics"
)

// fingerprintRunes is the prefix length of the content fingerprint used to
// catch near-duplicates that don't share an id across sources.
const fingerprintRunes = 50

const titleMaxRunes = 100

// News is one normalized informational item.
type News struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	Category string `json:"category"`
	Source   string `json:"source"`
	Time     string `json:"time"`
	URL      string `json:"url"`
}

// DefaultRelevanceKeywords returns the regional relevance filter terms.
func DefaultRelevanceKeywords() []string {
	return []string{
		"israel", "iran", "gaza", "hamas", "hezbollah",
		"以色列", "伊朗", "加沙", "哈马斯", "真主党",
		"middle east", "中东", "syria", "叙利亚",
		"yemen", "也门", "red sea", "红海",
		"hormuz", "霍尔木兹", "lebanon", "黎巴嫩",
		"palestine", "巴勒斯坦", "west bank", "约旦河西岸",
		"tel aviv", "特拉维夫", "jerusalem", "耶路撒冷",
		"tehran", "德黑兰", "gulf", "海湾", "波斯湾",
	}
}

// Relevant reports whether text mentions any of the keywords,
// case-insensitively.
func Relevant(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// Normalizer converts raw news items to the canonical schema.
type Normalizer struct {
	Rules []classify.TypeRule
	Now   func() time.Time
}

func (n *Normalizer) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now().UTC()
}

// Normalize maps one raw item into a News record. It never fails: absent
// fields get documented fallbacks.
func (n *Normalizer) Normalize(raw bird.RawMessage) News {
	text := raw.BodyText()

	source := raw.Username()
	if source == "" {
		source = raw.Source
	}
	if source == "" {
		source = "Unknown"
	}
	if !strings.HasPrefix(source, "@") {
		source = "@" + source
	}

	id := raw.MessageID()
	if id == "" {
		id = "news_" + event.DeriveID(text)
	}

	ts := event.ParseTime(raw.CreatedTime(), n.now())

	return News{
		ID:       id,
		Title:    buildTitle(text),
		Text:     text,
		Category: classify.NewsCategory(text, n.Rules),
		Source:   source,
		Time:     ts.UTC().Format(time.RFC3339),
		URL:      raw.URL,
	}
}

func buildTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= titleMaxRunes {
		return text
	}
	return string(runes[:titleMaxRunes]) + "..."
}

// Fingerprint is the case-insensitive content-prefix dedup key.
func Fingerprint(text string) string {
	lower := strings.ToLower(text)
	runes := []rune(lower)
	if len(runes) > fingerprintRunes {
		runes = runes[:fingerprintRunes]
	}
	return string(runes)
}

// Merge folds fresh news into the existing feed. Existing items seed the
// seen sets, so fresh items are deduplicated both against history and
// against each other, by id and by content fingerprint. Result is ordered
// most-recent-first and capped at max.
func Merge(existing, fresh []News, max int) []News {
	seenIDs := make(map[string]struct{}, len(existing))
	seenPrefix := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		seenIDs[item.ID] = struct{}{}
		seenPrefix[Fingerprint(item.Text)] = struct{}{}
	}

	merged := make([]News, 0, len(existing)+len(fresh))
	merged = append(merged, existing...)

	for _, item := range fresh {
		fp := Fingerprint(item.Text)
		if _, dup := seenIDs[item.ID]; dup {
			metrics.Global.IncrementDuplicatesFiltered()
			continue
		}
		if _, dup := seenPrefix[fp]; dup {
			metrics.Global.IncrementDuplicatesFiltered()
			continue
		}
		seenIDs[item.ID] = struct{}{}
		seenPrefix[fp] = struct{}{}
		merged = append(merged, item)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Time > merged[j].Time
	})

	if max > 0 && len(merged) > max {
		merged = merged[:max]
	}
	return merged
}
