package views

import (
	"github.com/conflictmap/tracker/internal/event"
)

// templateLimit caps how many (type, country) combinations are sampled.
const templateLimit = 10

// Template is a per-language projection of a sampled event, used by the
// frontend to simulate fresh content between runs.
type Template struct {
	Type         string                       `json:"type"`
	Country      string                       `json:"country"`
	Location     [2]float64                   `json:"location"`
	Source       string                       `json:"source"`
	URL          string                       `json:"url"`
	TweetID      string                       `json:"tweetId"`
	Title        string                       `json:"title"`
	Desc         string                       `json:"desc"`
	LocationName string                       `json:"locationName"`
	Translations map[string]event.Translation `json:"translations"`
}

// Templates samples the merged event list for diversity: the first event
// seen for each distinct (type, country) pair, stopping at the limit. Walk
// order is the merged order, so the sample is deterministic.
func Templates(languages []string, events []event.Event) map[string][]Template {
	templates := make(map[string][]Template, len(languages))
	for _, lang := range languages {
		templates[lang] = []Template{}
	}

	type combo struct{ eventType, country string }
	seen := make(map[combo]struct{})

	for _, e := range events {
		key := combo{e.Type, e.Country}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		full := make(map[string]event.Translation, len(languages))
		for _, lang := range languages {
			full[lang] = projectLanguage(e, lang)
		}

		for _, lang := range languages {
			proj := full[lang]
			templates[lang] = append(templates[lang], Template{
				Type:         e.Type,
				Country:      e.Country,
				Location:     e.Location,
				Source:       sourceOrUnknown(e.Source),
				URL:          e.URL,
				TweetID:      e.TweetID,
				Title:        proj.Title,
				Desc:         proj.Desc,
				LocationName: proj.LocationName,
				Translations: full,
			})
		}

		if len(seen) >= templateLimit {
			break
		}
	}

	return templates
}

// projectLanguage returns a language's translation slot with the canonical
// fields filling any missing piece.
func projectLanguage(e event.Event, lang string) event.Translation {
	slot := e.Translations[lang]
	if slot.Title == "" {
		slot.Title = e.Title
	}
	if slot.Desc == "" {
		slot.Desc = e.Desc
	}
	if slot.LocationName == "" {
		slot.LocationName = e.LocationName
	}
	return slot
}

func sourceOrUnknown(source string) string {
	if source == "" {
		return "Unknown"
	}
	return source
}
