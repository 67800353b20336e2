package event

import (
	"context"
	"testing"
)

func TestBackfillFillsOnlyMissing(t *testing.T) {
	tr := &fakeTranslator{results: map[string]string{
		"以色列空袭|en": "Israeli airstrike",
		"以色列空袭|ar": "غارة إسرائيلية",
	}}

	events := []Event{{
		ID:    "1",
		Title: "以色列空袭",
		Translations: map[string]Translation{
			"zh": {Title: "以色列空袭"},
			"en": {Title: "already here"},
		},
	}}

	added := Backfill(context.Background(), events, tr, []string{"zh", "en", "ar"})

	if got := events[0].Translations["en"].Title; got != "already here" {
		t.Errorf("existing translation overwritten: %q", got)
	}
	if got := events[0].Translations["ar"].Title; got != "غارة إسرائيلية" {
		t.Errorf("ar title not filled: %q", got)
	}
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}
}

func TestBackfillIdentityUntouched(t *testing.T) {
	tr := &fakeTranslator{results: map[string]string{"hello|zh": "你好", "hello|ar": "مرحبا"}}
	events := []Event{{ID: "9", TweetID: "9", Title: "hello", Time: "2024-01-01T00:00:00Z"}}

	Backfill(context.Background(), events, tr, []string{"zh", "en", "ar"})

	e := events[0]
	if e.ID != "9" || e.TweetID != "9" || e.Title != "hello" || e.Time != "2024-01-01T00:00:00Z" {
		t.Errorf("backfill changed identity or content: %+v", e)
	}
}

func TestBackfillRerunIsNoop(t *testing.T) {
	tr := &fakeTranslator{results: map[string]string{"hello|zh": "你好", "hello|ar": "مرحبا"}}
	events := []Event{{ID: "9", Title: "hello"}}

	first := Backfill(context.Background(), events, tr, []string{"zh", "en", "ar"})
	second := Backfill(context.Background(), events, tr, []string{"zh", "en", "ar"})

	if first == 0 {
		t.Fatal("first pass filled nothing")
	}
	if second != 0 {
		t.Errorf("second pass added %d fields, want 0", second)
	}
}
