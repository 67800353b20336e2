package rss

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	body := "feeds:\n  - https://example.com/a.xml\n  - https://example.com/b.xml\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	feeds, err := LoadFeeds(path)
	if err != nil {
		t.Fatalf("LoadFeeds: %v", err)
	}
	if len(feeds) != 2 || feeds[0] != "https://example.com/a.xml" {
		t.Errorf("feeds = %v", feeds)
	}
}

func TestLoadFeedsMissingFile(t *testing.T) {
	feeds, err := LoadFeeds(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error, got %v", err)
	}
	if feeds != nil {
		t.Errorf("feeds = %v, want nil", feeds)
	}
}

func TestLoadFeedsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	if err := os.WriteFile(path, []byte("feeds: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFeeds(path); err == nil {
		t.Fatal("malformed YAML should error")
	}
}
