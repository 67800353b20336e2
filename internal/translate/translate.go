// Package translate provides best-effort translation across the supported
// language set. Every failure degrades to "no translation"; callers treat
// an empty result as normal and fall back to the source text.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/conflictmap/tracker/internal/cache"
	"github.com/conflictmap/tracker/internal/metrics"
	"github.com/conflictmap/tracker/internal/ratelimit"
	"github.com/conflictmap/tracker/internal/retry"
)

// maxInputRunes bounds what we send to the backend per call.
const maxInputRunes = 500

// langCodes maps our two-letter codes to what the backend expects.
var langCodes = map[string]string{
	"zh": "zh-CN",
	"en": "en",
	"ar": "ar",
}

// Options configures a Translator.
type Options struct {
	GeminiAPIKey string        // empty disables the fallback backend
	Delay        time.Duration // inter-call throttle
	MaxCalls     int           // per-run budget, 0 = unlimited
	Timeout      time.Duration // per-request HTTP timeout
}

type Translator struct {
	client  *http.Client
	gemini  *geminiClient
	cache   *cache.Cache
	limiter *ratelimit.Limiter
}

func New(opts Options) *Translator {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	t := &Translator{
		client:  &http.Client{Timeout: opts.Timeout},
		cache:   cache.New(),
		limiter: ratelimit.New(opts.Delay, opts.MaxCalls),
	}
	if opts.GeminiAPIKey != "" {
		g, err := newGeminiClient(opts.GeminiAPIKey)
		if err != nil {
			slog.Warn("gemini client unavailable, continuing without fallback", "error", err)
		} else {
			t.gemini = g
		}
	}
	return t
}

func (t *Translator) Close() {
	if t.gemini != nil {
		t.gemini.Close()
	}
}

// Translate returns text in the target language, or "" when every backend
// fails. The source language is always auto-detected by the backend.
func (t *Translator) Translate(ctx context.Context, text, target string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	code, ok := langCodes[target]
	if !ok {
		return ""
	}

	text = truncateRunes(text, maxInputRunes)

	key := cache.Key(text, target)
	if cached, ok := t.cache.Get(key); ok {
		return cached
	}

	if err := t.limiter.Acquire(ctx); err != nil {
		metrics.Global.IncrementTranslationsFailed()
		return ""
	}

	result, err := t.googleTranslate(ctx, text, "auto", code)
	if err != nil || result == "" {
		if err != nil {
			slog.Warn("google translate failed", "target", target, "error", err)
		}
		result = t.geminiTranslate(ctx, text, target)
	}

	if result == "" {
		metrics.Global.IncrementTranslationsFailed()
		return ""
	}

	metrics.Global.IncrementTranslationsOK()
	t.cache.Set(key, result, time.Hour)
	return result
}

// googleTranslate calls the public gtx endpoint.
func (t *Translator) googleTranslate(ctx context.Context, text, from, to string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", from)
	params.Set("tl", to)
	params.Set("dt", "t")
	params.Set("q", text)

	fullURL := "https://translate.googleapis.com/translate_a/single?" + params.Encode()

	var result string
	err := retry.Do(ctx, retry.Config{MaxAttempts: 2, Delay: 2 * time.Second}, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return err
		}
		resp, err := t.client.Do(req)
		if err != nil {
			return fmt.Errorf("HTTP error: %w", err)
		}
		defer func() {
			if closeErr := resp.Body.Close(); closeErr != nil {
				slog.Warn("failed to close response body", "error", closeErr)
			}
		}()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("translate endpoint returned status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("error reading response: %w", err)
		}

		result, err = parseTranslateResponse(body)
		return err
	})
	return result, err
}

// parseTranslateResponse unpacks the nested-array payload of the gtx endpoint.
func parseTranslateResponse(body []byte) (string, error) {
	var response []interface{}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if len(response) == 0 {
		return "", errors.New("empty response from translate endpoint")
	}

	chunks, ok := response[0].([]interface{})
	if !ok {
		return "", errors.New("unexpected response format")
	}

	var b strings.Builder
	for _, chunk := range chunks {
		if arr, ok := chunk.([]interface{}); ok && len(arr) > 0 {
			if s, ok := arr[0].(string); ok {
				b.WriteString(s)
			}
		}
	}
	return b.String(), nil
}

func (t *Translator) geminiTranslate(ctx context.Context, text, target string) string {
	if t.gemini == nil {
		return ""
	}
	result, err := t.gemini.Translate(ctx, text, target)
	if err != nil {
		slog.Warn("gemini translate failed", "target", target, "error", err)
		return ""
	}
	return result
}

// DetectLang guesses the language of text: Arabic-range characters mean
// Arabic, any other non-ASCII means Chinese, otherwise English. Approximate
// on purpose; it is only used to decide which target language to skip.
func DetectLang(text string) string {
	for _, r := range text {
		if r >= 0x0600 && r <= 0x06FF {
			return "ar"
		}
	}
	for _, r := range text {
		if r > unicode.MaxASCII {
			return "zh"
		}
	}
	return "en"
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
