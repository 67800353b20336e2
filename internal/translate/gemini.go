package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var geminiLangNames = map[string]string{
	"zh": "Simplified Chinese",
	"en": "English",
	"ar": "Arabic",
}

// geminiClient is the fallback translation backend.
type geminiClient struct {
	client *genai.Client
}

func newGeminiClient(apiKey string) (*geminiClient, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiClient{client: client}, nil
}

func (g *geminiClient) Close() {
	if g.client != nil {
		g.client.Close()
	}
}

func (g *geminiClient) Translate(ctx context.Context, text, target string) (string, error) {
	langName, ok := geminiLangNames[target]
	if !ok {
		return "", fmt.Errorf("unsupported target language %q", target)
	}

	model := g.client.GenerativeModel("gemini-1.5-flash")

	prompt := fmt.Sprintf(`Translate the following text to %s.
Keep proper nouns and handles unchanged. Output only the translation, no commentary.

%s`, langName, text)

	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response from Gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String()), nil
}
