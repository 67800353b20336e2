// Package store reads and writes the persisted feed document, the sole unit
// of durable state. One writer per run; callers serialize runs externally.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/conflictmap/tracker/internal/event"
	"github.com/conflictmap/tracker/internal/news"
	"github.com/conflictmap/tracker/internal/views"
)

// DefaultLanguages is the supported language set, in display order.
var DefaultLanguages = []string{"zh", "en", "ar"}

// Document is the top-level persisted record.
type Document struct {
	Events      []event.Event               `json:"events"`
	Templates   map[string][]views.Template `json:"templates"`
	TickerTexts map[string][]string         `json:"tickerTexts"`
	News        []news.News                 `json:"news"`
	Languages   []string                    `json:"languages"`
	LastUpdated string                      `json:"lastUpdated"`
}

// Empty returns a fresh document with no content. A missing store file on
// first run resolves to this, not to an error.
func Empty() *Document {
	return &Document{
		Events:      []event.Event{},
		Templates:   map[string][]views.Template{},
		TickerTexts: map[string][]string{},
		News:        []news.News{},
		Languages:   append([]string(nil), DefaultLanguages...),
	}
}

// Load reads the document at path. Missing file means empty store.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.Info("no existing store, starting empty", "path", path)
		return Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}

	doc := Empty()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse store %s: %w", path, err)
	}
	if len(doc.Languages) == 0 {
		doc.Languages = append([]string(nil), DefaultLanguages...)
	}
	return doc, nil
}

// Save writes the document with human-readable indentation. HTML escaping is
// off so non-ASCII content stays literal in the file.
func Save(path string, doc *Document) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

// Backup copies the current store file into dir under a timestamped name
// before the run mutates it. A missing store file is fine (first run);
// backups are never pruned here.
func Backup(path, dir string) (string, error) {
	src, err := os.Open(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("open store for backup: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	name := fmt.Sprintf("events-%s.json", time.Now().Format("20060102-150405"))
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("copy backup: %w", err)
	}
	slog.Info("backup created", "path", dstPath)
	return dstPath, nil
}
