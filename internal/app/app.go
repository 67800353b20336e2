// Package app wires the pipeline together: one call to Run performs one
// fetch-normalize-merge-persist cycle and returns.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/conflictmap/tracker/internal/bird"
	"github.com/conflictmap/tracker/internal/classify"
	"github.com/conflictmap/tracker/internal/config"
	"github.com/conflictmap/tracker/internal/event"
	"github.com/conflictmap/tracker/internal/geo"
	"github.com/conflictmap/tracker/internal/logger"
	"github.com/conflictmap/tracker/internal/metrics"
	"github.com/conflictmap/tracker/internal/news"
	"github.com/conflictmap/tracker/internal/rss"
	"github.com/conflictmap/tracker/internal/store"
	"github.com/conflictmap/tracker/internal/translate"
	"github.com/conflictmap/tracker/internal/views"
)

// Source is the narrow view of the raw message source the pipeline needs.
// The bird CLI client satisfies it; tests use an in-memory fake.
type Source interface {
	Search(ctx context.Context, query string, count int) []bird.RawMessage
	UserTweets(ctx context.Context, handle string, count int) []bird.RawMessage
	News(ctx context.Context, count int) []bird.RawMessage
}

// Run executes one full pipeline cycle with the real collaborators.
func Run() error {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	translator := translate.New(translate.Options{
		GeminiAPIKey: cfg.GeminiAPIKey,
		Delay:        cfg.TranslateDelay,
		MaxCalls:     cfg.MaxTranslations,
	})
	defer translator.Close()

	source := bird.NewClient(cfg.BirdBin, cfg.FetchTimeout)

	return RunPipeline(context.Background(), cfg, source, translator)
}

// RunPipeline is the testable core: collaborators are injected.
func RunPipeline(ctx context.Context, cfg *config.Config, source Source, translator event.Translator) error {
	start := time.Now()
	defer func() {
		metrics.Global.RecordProcessingTime(time.Since(start))
	}()

	if err := runPipeline(ctx, cfg, source, translator); err != nil {
		metrics.Global.SetError(err.Error())
		return err
	}
	metrics.Global.SetLastRun()
	return nil
}

func runPipeline(ctx context.Context, cfg *config.Config, source Source, translator event.Translator) error {
	doc, err := store.Load(cfg.EventsFile)
	if err != nil {
		return err
	}
	slog.Info("store loaded", "events", len(doc.Events), "news", len(doc.News))

	geoTable, err := geo.LoadTable(cfg.LocationsFile)
	if err != nil {
		return err
	}

	// Fetch phase: keyword searches, monitored accounts, trending news.
	var messages []bird.RawMessage
	for i, keyword := range cfg.Keywords {
		if i >= cfg.MaxKeywordSearches {
			break
		}
		slog.Info("searching", "keyword", keyword)
		messages = append(messages, source.Search(ctx, keyword, cfg.TweetsPerSearch)...)
	}
	for i, account := range cfg.Accounts {
		if i >= cfg.MaxAccounts {
			break
		}
		slog.Info("fetching account", "handle", account)
		messages = append(messages, source.UserTweets(ctx, account, cfg.TweetsPerAccount)...)
	}
	rawNews := source.News(ctx, cfg.NewsCount)

	if feeds, err := rss.LoadFeeds(cfg.FeedsFile); err != nil {
		slog.Warn("feeds config unreadable", "error", err)
	} else if len(feeds) > 0 {
		rawNews = append(rawNews, rss.FetchAll(feeds, cfg.NewsMaxAge)...)
	}

	metrics.Global.AddMessagesFetched(len(messages) + len(rawNews))
	slog.Info("fetch complete", "messages", len(messages), "news_items", len(rawNews))

	if len(messages) == 0 {
		slog.Info("no messages fetched, keeping existing store unchanged")
		return nil
	}

	// Normalize news.
	relevance := news.DefaultRelevanceKeywords()
	newsNormalizer := &news.Normalizer{Rules: classify.DefaultNewsRules()}
	var freshNews []news.News
	for _, raw := range rawNews {
		if !news.Relevant(raw.BodyText(), relevance) {
			continue
		}
		freshNews = append(freshNews, newsNormalizer.Normalize(raw))
	}
	slog.Info("news normalized", "relevant", len(freshNews), "raw", len(rawNews))

	// Normalize events. One bad message is skipped, never the batch.
	normalizer := &event.Normalizer{
		EventRules:   classify.DefaultEventRules(),
		CountryRules: cfg.CountryRules,
		Geo:          geoTable,
		Translator:   translator,
		Languages:    cfg.Languages,
		DefaultLang:  cfg.DefaultLang,
	}
	var freshEvents []event.Event
	for _, raw := range messages {
		e, err := normalizer.Normalize(ctx, raw)
		if err != nil {
			slog.Warn("skipping message", "error", err)
			metrics.Global.IncrementNormalizeFailures()
			continue
		}
		freshEvents = append(freshEvents, e)
		metrics.Global.IncrementEventsNormalized()
	}
	slog.Info("events normalized", "count", len(freshEvents))

	if cfg.Backfill {
		event.Backfill(ctx, doc.Events, translator, cfg.Languages)
	}

	// Merge phase. A shrinking merge is a bug, not a state to persist.
	merged, err := event.Merge(doc.Events, freshEvents, cfg.MaxEvents)
	if err != nil {
		if errors.Is(err, event.ErrEventLoss) {
			slog.Error("refusing to persist shrinking merge, store left untouched",
				"existing", len(doc.Events), "error", err)
		}
		return err
	}
	mergedNews := news.Merge(doc.News, freshNews, cfg.MaxNews)

	// Derived views from the merged state.
	out := &store.Document{
		Events:      merged,
		Templates:   nil,
		TickerTexts: nil,
		News:        mergedNews,
		Languages:   cfg.Languages,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
	}
	out.TickerTexts = views.Ticker(cfg.Languages, freshNews, messages, relevance)
	out.Templates = views.Templates(cfg.Languages, merged)

	// Persist: backup the old store, then overwrite.
	if _, err := store.Backup(cfg.EventsFile, cfg.BackupDir); err != nil {
		return err
	}
	if err := store.Save(cfg.EventsFile, out); err != nil {
		return err
	}

	metrics.Global.SetStoreSizes(len(merged), len(mergedNews))
	slog.Info("store saved",
		"path", cfg.EventsFile,
		"events", len(merged),
		"news", len(mergedNews),
		"ticker_per_lang", len(out.TickerTexts[cfg.DefaultLang]),
		"templates_per_lang", len(out.Templates[cfg.DefaultLang]),
	)
	return nil
}
