package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/conflictmap/tracker/internal/bird"
	"github.com/conflictmap/tracker/internal/classify"
	"github.com/conflictmap/tracker/internal/config"
	"github.com/conflictmap/tracker/internal/event"
	"github.com/conflictmap/tracker/internal/store"
)

// fakeSource replays canned messages; call counts are not tracked because
// the pipeline's fetch caps are exercised through the returned volume.
type fakeSource struct {
	searchResults map[string][]bird.RawMessage
	userResults   map[string][]bird.RawMessage
	newsResults   []bird.RawMessage
}

func (f *fakeSource) Search(_ context.Context, query string, _ int) []bird.RawMessage {
	return f.searchResults[query]
}

func (f *fakeSource) UserTweets(_ context.Context, handle string, _ int) []bird.RawMessage {
	return f.userResults[handle]
}

func (f *fakeSource) News(_ context.Context, _ int) []bird.RawMessage {
	return f.newsResults
}

type noopTranslator struct{}

func (noopTranslator) Translate(_ context.Context, _, _ string) string { return "" }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		DataDir:            dir,
		EventsFile:         filepath.Join(dir, "events.json"),
		BackupDir:          filepath.Join(dir, "backups"),
		FeedsFile:          filepath.Join(dir, "feeds.yaml"),
		LocationsFile:      filepath.Join(dir, "locations.yaml"),
		MaxKeywordSearches: 2,
		TweetsPerSearch:    5,
		MaxAccounts:        1,
		TweetsPerAccount:   3,
		NewsCount:          20,
		NewsMaxAge:         24 * time.Hour,
		MaxEvents:          100,
		MaxNews:            100,
		Languages:          []string{"zh", "en", "ar"},
		DefaultLang:        "zh",
		Keywords:           []string{"israel iran war", "tehran strike", "never queried"},
		Accounts:           []string{"IDF", "never fetched"},
		CountryRules:       classify.DefaultCountryRules(),
	}
}

func TestRunPipelineFullCycle(t *testing.T) {
	cfg := testConfig(t)
	src := &fakeSource{
		searchResults: map[string][]bird.RawMessage{
			"israel iran war": {{
				IDStr:     "100",
				Text:      "Israeli airstrike hits targets near Tehran",
				Author:    &bird.Author{Username: "osint_watch"},
				CreatedAt: "2024-05-01T10:00:00Z",
			}},
		},
		userResults: map[string][]bird.RawMessage{
			"IDF": {{
				IDStr:     "200",
				Text:      "Naval blockade declared in the Strait of Hormuz",
				Author:    &bird.Author{Username: "IDF"},
				CreatedAt: "2024-05-01T11:00:00Z",
			}},
		},
		newsResults: []bird.RawMessage{{
			IDStr:     "300",
			Text:      "Ceasefire talks between Israel and Hamas resume in Cairo",
			Author:    &bird.Author{Username: "reuters"},
			CreatedAt: "2024-05-01T09:00:00Z",
		}},
	}

	if err := RunPipeline(context.Background(), cfg, src, noopTranslator{}); err != nil {
		t.Fatalf("RunPipeline: %v", err)
	}

	doc, err := store.Load(cfg.EventsFile)
	if err != nil {
		t.Fatalf("Load after run: %v", err)
	}
	if len(doc.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(doc.Events))
	}
	// Newest first.
	if doc.Events[0].TweetID != "200" || doc.Events[1].TweetID != "100" {
		t.Errorf("event order: %s, %s", doc.Events[0].TweetID, doc.Events[1].TweetID)
	}
	if doc.Events[1].Type != "strike" || doc.Events[0].Type != "blockade" {
		t.Errorf("types: %s, %s", doc.Events[1].Type, doc.Events[0].Type)
	}
	if len(doc.News) != 1 || doc.News[0].Source != "@reuters" {
		t.Errorf("news = %+v", doc.News)
	}
	if len(doc.TickerTexts["zh"]) == 0 {
		t.Errorf("ticker empty")
	}
	if len(doc.Templates["en"]) != 2 {
		t.Errorf("templates per lang = %d, want 2", len(doc.Templates["en"]))
	}
	if doc.LastUpdated == "" {
		t.Errorf("LastUpdated unset")
	}
}

func TestRunPipelineEmptyFetchLeavesStoreAlone(t *testing.T) {
	cfg := testConfig(t)
	original := store.Empty()
	original.Events = []event.Event{{ID: "keep", Time: "2024-01-01T00:00:00Z"}}
	original.LastUpdated = "2024-01-01T00:00:00Z"
	if err := store.Save(cfg.EventsFile, original); err != nil {
		t.Fatal(err)
	}

	if err := RunPipeline(context.Background(), cfg, &fakeSource{}, noopTranslator{}); err != nil {
		t.Fatalf("RunPipeline: %v", err)
	}

	doc, err := store.Load(cfg.EventsFile)
	if err != nil {
		t.Fatal(err)
	}
	if doc.LastUpdated != "2024-01-01T00:00:00Z" {
		t.Errorf("store was rewritten on an empty fetch")
	}
	if _, err := os.Stat(cfg.BackupDir); !os.IsNotExist(err) {
		t.Errorf("backup created on an empty fetch")
	}
}

func TestRunPipelineMergesWithExistingStore(t *testing.T) {
	cfg := testConfig(t)
	original := store.Empty()
	original.Events = []event.Event{{
		ID:      "old",
		TweetID: "100",
		Type:    "strike",
		Country: "iran",
		Title:   "previously seen strike",
		Time:    "2024-04-01T00:00:00Z",
	}}
	if err := store.Save(cfg.EventsFile, original); err != nil {
		t.Fatal(err)
	}

	src := &fakeSource{
		searchResults: map[string][]bird.RawMessage{
			// Same id as the stored event, must be deduplicated.
			"israel iran war": {{
				IDStr:     "100",
				Text:      "Israeli airstrike hits targets near Tehran",
				CreatedAt: "2024-05-01T10:00:00Z",
			}},
			"tehran strike": {{
				IDStr:     "101",
				Text:      "Air defense activated over Isfahan",
				CreatedAt: "2024-05-02T10:00:00Z",
			}},
		},
	}

	if err := RunPipeline(context.Background(), cfg, src, noopTranslator{}); err != nil {
		t.Fatalf("RunPipeline: %v", err)
	}

	doc, err := store.Load(cfg.EventsFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Events) != 2 {
		t.Fatalf("events = %d, want 2 (duplicate folded)", len(doc.Events))
	}
	if doc.Events[0].TweetID != "101" || doc.Events[1].TweetID != "100" {
		t.Errorf("order: %s, %s", doc.Events[0].TweetID, doc.Events[1].TweetID)
	}
	// The stored copy of a duplicate wins over the refetched one.
	if doc.Events[1].Title != "previously seen strike" {
		t.Errorf("existing event replaced: %q", doc.Events[1].Title)
	}

	// A backup of the pre-run store exists.
	entries, err := os.ReadDir(cfg.BackupDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("backup dir: %v, %d entries", err, len(entries))
	}
}
