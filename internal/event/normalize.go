package event

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/conflictmap/tracker/internal/bird"
	"github.com/conflictmap/tracker/internal/classify"
	"github.com/conflictmap/tracker/internal/geo"
	"github.com/conflictmap/tracker/internal/translate"
)

const (
	titleMaxRunes      = 50
	titleWordBoundary  = 30
	descTranslateRunes = 200
)

// ErrEmptyMessage is returned for raw messages with no usable body text.
var ErrEmptyMessage = errors.New("message has no text")

// Normalizer converts raw messages into canonical events. All lookup tables
// are injected so tests can substitute small ones.
type Normalizer struct {
	EventRules   []classify.TypeRule
	CountryRules []classify.CountryRule
	Geo          *geo.Table
	Translator   Translator
	Languages    []string
	DefaultLang  string
	Now          func() time.Time
}

func (n *Normalizer) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now().UTC()
}

// Normalize turns one raw message into one event. The only failure is a
// bodyless message; everything else substitutes a default and continues.
func (n *Normalizer) Normalize(ctx context.Context, raw bird.RawMessage) (Event, error) {
	text := raw.BodyText()
	if strings.TrimSpace(text) == "" {
		return Event{}, ErrEmptyMessage
	}

	id := raw.MessageID()
	if id == "" {
		id = DeriveID(text)
	}

	username := raw.Username()
	if username == "" {
		username = "unknown"
	}

	ts := ParseTime(raw.CreatedTime(), n.now())

	eventType := classify.EventType(text, n.EventRules)
	country := classify.Country(text, n.CountryRules)
	locationName := n.Geo.ExtractLocation(text)
	coords := n.Geo.Coordinates(locationName, country)

	title := buildTitle(text)
	url := fmt.Sprintf("https://twitter.com/%s/status/%s", username, id)

	translations := n.buildTranslations(ctx, title, text, displayLocation(locationName, country))

	canonical := translations[n.DefaultLang]

	return Event{
		ID:           id,
		Type:         eventType,
		Country:      country,
		Title:        canonical.Title,
		Desc:         canonical.Desc,
		Location:     [2]float64(coords),
		LocationName: canonical.LocationName,
		Time:         ts.UTC().Format(time.RFC3339),
		Source:       "@" + username,
		TweetID:      id,
		URL:          url,
		IsNew:        false, // set by the frontend
		Translations: translations,
	}, nil
}

// displayLocation substitutes the country tag when no place was extracted.
func displayLocation(locationName, country string) string {
	if locationName != "" {
		return locationName
	}
	if country != "" {
		return strings.ToUpper(country)
	}
	return "MIDDLE EAST"
}

// buildTranslations fills every configured language slot. Each slot starts
// as the original text; then languages other than the detected source get a
// best-effort translation. A failed translation leaves the original in place.
func (n *Normalizer) buildTranslations(ctx context.Context, title, desc, locationName string) map[string]Translation {
	translations := make(map[string]Translation, len(n.Languages))
	for _, lang := range n.Languages {
		translations[lang] = Translation{Title: title, Desc: desc, LocationName: locationName}
	}

	sourceLang := translate.DetectLang(title)

	for _, lang := range n.Languages {
		if lang == sourceLang {
			continue
		}
		slot := translations[lang]

		if t := n.Translator.Translate(ctx, title, lang); t != "" {
			slot.Title = t
		}

		descShort := desc
		if runes := []rune(desc); len(runes) > descTranslateRunes {
			descShort = string(runes[:descTranslateRunes]) + "..."
		}
		if t := n.Translator.Translate(ctx, descShort, lang); t != "" {
			slot.Desc = t
		}

		if locationName != "" {
			if t := n.Translator.Translate(ctx, locationName, lang); t != "" {
				slot.LocationName = t
			}
		}

		translations[lang] = slot
	}

	return translations
}

// buildTitle takes the first 50 runes of the body, backing up to the last
// word boundary when the cut lands mid-word, with an ellipsis marker.
func buildTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= titleMaxRunes {
		return strings.TrimSpace(text)
	}

	title := strings.TrimSpace(string(runes[:titleMaxRunes]))
	if lastSpace := strings.LastIndex(title, " "); lastSpace > titleWordBoundary {
		title = title[:lastSpace]
	}
	return title + "..."
}

// ParseTime parses a raw creation timestamp. It accepts RFC3339 (with or
// without fractional seconds), the legacy Twitter layout, and as a last
// resort anything dateparse can make sense of. An unparsable timestamp is
// replaced with now; a bad timestamp must not sink the whole message.
func ParseTime(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return now
	}

	if strings.Contains(s, "T") {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
	} else {
		// Legacy format, e.g. "Wed Oct 05 18:23:00 +0000 2022"
		if t, err := time.Parse(time.RubyDate, s); err == nil {
			return t
		}
	}

	if t, err := dateparse.ParseAny(s); err == nil {
		return t
	}
	return now
}
