package metrics

import (
	"sync"
	"time"
)

// Metrics collects per-run pipeline counters. Global is read by the optional
// monitoring HTTP server in cmd/tracker.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	MessagesFetched    int64
	EventsNormalized   int64
	NormalizeFailures  int64
	DuplicatesFiltered int64
	TranslationsOK     int64
	TranslationsFailed int64

	// Store state after the last successful run
	StoreEvents int
	StoreNews   int

	// Timings
	LastProcessingTime time.Duration

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddMessagesFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesFetched += int64(n)
}

func (m *Metrics) IncrementEventsNormalized() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EventsNormalized++
}

func (m *Metrics) IncrementNormalizeFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NormalizeFailures++
}

func (m *Metrics) IncrementDuplicatesFiltered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered++
}

func (m *Metrics) IncrementTranslationsOK() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TranslationsOK++
}

func (m *Metrics) IncrementTranslationsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TranslationsFailed++
}

func (m *Metrics) SetStoreSizes(events, news int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StoreEvents = events
	m.StoreNews = news
}

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastProcessingTime = duration
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"messages_fetched":        m.MessagesFetched,
		"events_normalized":       m.EventsNormalized,
		"normalize_failures":      m.NormalizeFailures,
		"duplicates_filtered":     m.DuplicatesFiltered,
		"translations_ok":         m.TranslationsOK,
		"translations_failed":     m.TranslationsFailed,
		"store_events":            m.StoreEvents,
		"store_news":              m.StoreNews,
		"last_processing_time_ms": m.LastProcessingTime.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
