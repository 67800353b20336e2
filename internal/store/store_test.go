package store

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/conflictmap/tracker/internal/event"
	"github.com/conflictmap/tracker/internal/news"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	doc, err := Load(filepath.Join(t.TempDir(), "events.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Events) != 0 || len(doc.News) != 0 {
		t.Errorf("missing file should load empty, got %+v", doc)
	}
	if len(doc.Languages) != 3 || doc.Languages[0] != "zh" {
		t.Errorf("Languages = %v", doc.Languages)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "events.json")

	doc := Empty()
	doc.Events = []event.Event{{
		ID:           "e1",
		Type:         "strike",
		Country:      "iran",
		Title:        "以色列空袭德黑兰",
		Location:     [2]float64{35.69, 51.39},
		LocationName: "德黑兰",
		Time:         "2024-05-01T10:00:00Z",
		Translations: map[string]event.Translation{
			"en": {Title: "Israeli strike on Tehran"},
		},
	}}
	doc.News = []news.News{{ID: "n1", Title: "talks", Text: "talks", Category: "diplomatic"}}
	doc.TickerTexts = map[string][]string{"en": {"⚡ breaking"}}
	doc.LastUpdated = "2024-05-01T11:00:00Z"

	if err := Save(path, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Events) != 1 || got.Events[0].Title != "以色列空袭德黑兰" {
		t.Errorf("events lost in round trip: %+v", got.Events)
	}
	if got.Events[0].Translations["en"].Title != "Israeli strike on Tehran" {
		t.Errorf("translations lost: %+v", got.Events[0].Translations)
	}
	if got.LastUpdated != doc.LastUpdated {
		t.Errorf("LastUpdated = %q", got.LastUpdated)
	}
	if len(got.TickerTexts["en"]) != 1 {
		t.Errorf("tickerTexts lost: %+v", got.TickerTexts)
	}
}

func TestSaveKeepsNonASCIILiteral(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	doc := Empty()
	doc.Events = []event.Event{{ID: "1", Title: "德黑兰突发", URL: "https://x.com/a?b=1&c=2"}}

	if err := Save(path, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("德黑兰突发")) {
		t.Errorf("non-ASCII content was escaped")
	}
	if bytes.Contains(data, []byte(`&`)) {
		t.Errorf("ampersand was HTML-escaped")
	}
	if !bytes.Contains(data, []byte("\n  \"events\"")) {
		t.Errorf("output not indented")
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("corrupt store should not load")
	}
}

func TestBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.json")
	if err := os.WriteFile(path, []byte(`{"events":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	backupDir := filepath.Join(dir, "backups")
	got, err := Backup(path, backupDir)
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	base := filepath.Base(got)
	if !strings.HasPrefix(base, "events-") || !strings.HasSuffix(base, ".json") {
		t.Errorf("backup name = %q", base)
	}
	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"events":[]}` {
		t.Errorf("backup content = %q", data)
	}
}

func TestBackupMissingStoreIsNoop(t *testing.T) {
	dir := t.TempDir()
	got, err := Backup(filepath.Join(dir, "events.json"), filepath.Join(dir, "backups"))
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if got != "" {
		t.Errorf("path = %q, want empty", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "backups")); !os.IsNotExist(err) {
		t.Errorf("backup dir should not be created on first run")
	}
}
