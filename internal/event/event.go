// Package event holds the canonical event schema, the normalizer that turns
// raw messages into events, and the merge engine that folds a run's output
// into the persisted store.
package event

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
)

// Translation is one language slot in an event's translations map. Any field
// may be empty; consumers fall back to the canonical fields.
type Translation struct {
	Title        string `json:"title,omitempty"`
	Desc         string `json:"desc,omitempty"`
	LocationName string `json:"locationName,omitempty"`
}

// Event is one observed incident, classified and geolocated. Immutable after
// creation except for in-place translation completion.
type Event struct {
	ID           string                 `json:"id"`
	Type         string                 `json:"type"`
	Country      string                 `json:"country"`
	Title        string                 `json:"title"`
	Desc         string                 `json:"desc"`
	Location     [2]float64             `json:"location"`
	LocationName string                 `json:"locationName"`
	Time         string                 `json:"time"`
	Source       string                 `json:"source"`
	TweetID      string                 `json:"tweetId"`
	URL          string                 `json:"url"`
	IsNew        bool                   `json:"isNew"`
	Translations map[string]Translation `json:"translations"`
}

// Key returns the identity used for deduplication: the upstream message id
// when present, else the event id.
func (e Event) Key() string {
	if e.TweetID != "" {
		return e.TweetID
	}
	return e.ID
}

// Translator is the capability the normalizer needs from the translation
// layer. An empty return means "no translation available" and is normal.
type Translator interface {
	Translate(ctx context.Context, text, target string) string
}

// DeriveID hashes message text into a stable identifier for messages that
// carry no id of their own. Collisions are an accepted risk: two distinct
// texts mapping to one id merely dedup into a single event.
func DeriveID(text string) string {
	h := sha1.New()
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))[:16]
}
