package views

import (
	"fmt"
	"strings"
	"testing"

	"github.com/conflictmap/tracker/internal/bird"
	"github.com/conflictmap/tracker/internal/news"
)

var testLangs = []string{"zh", "en", "ar"}

func TestTickerFormatsAndBuckets(t *testing.T) {
	items := []news.News{{Text: "Airstrikes reported near Tehran early on Friday"}}
	msgs := []bird.RawMessage{{
		Text:   "Naval movement spotted in the Strait of Hormuz",
		Author: &bird.Author{Username: "osint_watch"},
	}}

	got := Ticker(testLangs, items, msgs, news.DefaultRelevanceKeywords())

	for _, lang := range testLangs {
		if len(got[lang]) != 2 {
			t.Fatalf("lang %s: len = %d, want 2", lang, len(got[lang]))
		}
	}
	if got["en"][0] != "⚡ Airstrikes reported near Tehran early on Friday" {
		t.Errorf("news entry = %q", got["en"][0])
	}
	if got["en"][1] != "⚡ @osint_watch: Naval movement spotted in the Strait of Hormuz" {
		t.Errorf("message entry = %q", got["en"][1])
	}
	// Same formatted string in every bucket; ticker text is not translated.
	if got["zh"][0] != got["en"][0] || got["ar"][1] != got["en"][1] {
		t.Errorf("buckets differ: %v", got)
	}
}

func TestTickerTruncation(t *testing.T) {
	long := strings.Repeat("n", 150)
	items := []news.News{{Text: "tehran " + long}}
	msgs := []bird.RawMessage{{
		Text:   strings.Repeat("m", 150),
		Author: &bird.Author{Username: "acct"},
	}}

	got := Ticker(testLangs, items, msgs, news.DefaultRelevanceKeywords())

	if want := "⚡ " + clipRunes("tehran "+long, 100); got["en"][0] != want {
		t.Errorf("news truncation: %q", got["en"][0])
	}
	if want := "⚡ @acct: " + strings.Repeat("m", 80); got["en"][1] != want {
		t.Errorf("message truncation: %q", got["en"][1])
	}
}

func TestTickerDedup(t *testing.T) {
	msgs := []bird.RawMessage{
		{Text: "BREAKING: convoy crossing the border", Author: &bird.Author{Username: "a"}},
		{Text: "breaking:   convoy  crossing the border", Author: &bird.Author{Username: "b"}},
	}

	got := Ticker(testLangs, nil, msgs, nil)
	if len(got["en"]) != 1 {
		t.Fatalf("len = %d, want 1 (normalized dup)", len(got["en"]))
	}
	if !strings.Contains(got["en"][0], "@a:") {
		t.Errorf("first occurrence should win, got %q", got["en"][0])
	}
}

func TestTickerSkipsShortKeys(t *testing.T) {
	msgs := []bird.RawMessage{
		{Text: "ok", Author: &bird.Author{Username: "a"}},
		{Text: "https://t.co/onlyalink", Author: &bird.Author{Username: "b"}},
	}
	got := Ticker(testLangs, nil, msgs, nil)
	if len(got["en"]) != 0 {
		t.Errorf("short or link-only text should be skipped, got %v", got["en"])
	}
}

func TestTickerRelevanceFilter(t *testing.T) {
	items := []news.News{
		{Text: "New smartphone announced at trade show today"},
		{Text: "Explosions heard across Gaza overnight, sirens sounding"},
	}
	got := Ticker(testLangs, items, nil, news.DefaultRelevanceKeywords())
	if len(got["en"]) != 1 {
		t.Fatalf("len = %d, want 1", len(got["en"]))
	}
	if !strings.Contains(got["en"][0], "Gaza") {
		t.Errorf("wrong item survived: %q", got["en"][0])
	}
}

func TestTickerPerLanguageCap(t *testing.T) {
	var msgs []bird.RawMessage
	var items []news.News
	for i := 0; i < 20; i++ {
		items = append(items, news.News{
			Text: fmt.Sprintf("tehran update number %d with enough detail to pass", i),
		})
		msgs = append(msgs, bird.RawMessage{
			Text:   fmt.Sprintf("field report number %d with enough detail to pass", i),
			Author: &bird.Author{Username: "acct"},
		})
	}

	got := Ticker(testLangs, items, msgs, news.DefaultRelevanceKeywords())
	for _, lang := range testLangs {
		if len(got[lang]) != 15 {
			t.Errorf("lang %s: len = %d, want 15", lang, len(got[lang]))
		}
	}
}

func TestTickerEmptyInputsYieldEmptyLists(t *testing.T) {
	got := Ticker(testLangs, nil, nil, nil)
	for _, lang := range testLangs {
		if got[lang] == nil || len(got[lang]) != 0 {
			t.Errorf("lang %s: want empty non-nil list, got %#v", lang, got[lang])
		}
	}
}

func TestTickerUnknownAuthorFallback(t *testing.T) {
	msgs := []bird.RawMessage{{Text: "convoy sighted moving west towards the border"}}
	got := Ticker(testLangs, nil, msgs, nil)
	if len(got["en"]) != 1 || !strings.HasPrefix(got["en"][0], "⚡ @unknown: ") {
		t.Errorf("got %v", got["en"])
	}
}
