package event

import (
	"context"
	"log/slog"

	"github.com/conflictmap/tracker/internal/translate"
)

// Backfill completes missing translation slots on already-persisted events,
// in place. This is the one sanctioned mutation of an existing event: it may
// gain translation fields but never changes identity or content. Safe to
// re-run; filled slots are left alone. Returns the number of fields added.
func Backfill(ctx context.Context, events []Event, tr Translator, languages []string) int {
	added := 0

	for i := range events {
		e := &events[i]
		if e.Translations == nil {
			e.Translations = make(map[string]Translation, len(languages))
		}

		// Prefer the source-language slot as translation input, falling back
		// to the canonical fields.
		srcTitle, srcDesc, srcLoc := e.Title, e.Desc, e.LocationName
		srcLang := translate.DetectLang(srcTitle)
		if slot, ok := e.Translations[srcLang]; ok && slot.Title != "" {
			srcTitle = slot.Title
			if slot.Desc != "" {
				srcDesc = slot.Desc
			}
			if slot.LocationName != "" {
				srcLoc = slot.LocationName
			}
		}

		for _, lang := range languages {
			if lang == srcLang {
				continue
			}
			slot := e.Translations[lang]

			if slot.Title == "" && srcTitle != "" {
				if t := tr.Translate(ctx, srcTitle, lang); t != "" {
					slot.Title = t
					added++
				}
			}
			if slot.Desc == "" && srcDesc != "" {
				descShort := srcDesc
				if runes := []rune(srcDesc); len(runes) > descTranslateRunes {
					descShort = string(runes[:descTranslateRunes]) + "..."
				}
				if t := tr.Translate(ctx, descShort, lang); t != "" {
					slot.Desc = t
					added++
				}
			}
			if slot.LocationName == "" && srcLoc != "" {
				if t := tr.Translate(ctx, srcLoc, lang); t != "" {
					slot.LocationName = t
					added++
				}
			}

			e.Translations[lang] = slot
		}
	}

	if added > 0 {
		slog.Info("translation backfill complete", "fields_added", added)
	}
	return added
}
