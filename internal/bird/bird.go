// Package bird wraps the bird CLI, the external search tool this pipeline
// pulls raw messages from. Every failure mode (missing binary, non-zero
// exit, timeout, garbage on stdout) collapses to an empty result; fetch
// problems must never kill a run.
package bird

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Author is the nested author object of a raw message, with aliases for the
// old and new CLI output shapes.
type Author struct {
	Username   string `json:"username"`
	ScreenName string `json:"screen_name"`
}

// Handle returns the best available handle, or "" when the author is absent.
func (a *Author) Handle() string {
	if a == nil {
		return ""
	}
	if a.Username != "" {
		return a.Username
	}
	return a.ScreenName
}

// RawMessage is one item of CLI output. All fields are optional; the
// accessor methods implement the documented fallbacks.
type RawMessage struct {
	ID        flexString `json:"id"`
	IDStr     string     `json:"id_str"`
	Text      string     `json:"text"`
	FullText  string     `json:"full_text"`
	Title     string     `json:"title"`
	Author    *Author    `json:"author"`
	User      *Author    `json:"user"`
	CreatedAt string     `json:"createdAt"`
	Created   string     `json:"created_at"`
	Time      string     `json:"time"`
	Source    string     `json:"source"`
	URL       string     `json:"url"`
}

// MessageID returns the explicit identifier, preferring id over id_str.
func (m RawMessage) MessageID() string {
	if m.ID != "" {
		return string(m.ID)
	}
	return m.IDStr
}

// BodyText returns the message body, falling back through the known aliases.
func (m RawMessage) BodyText() string {
	if m.Text != "" {
		return m.Text
	}
	if m.FullText != "" {
		return m.FullText
	}
	return m.Title
}

// Username returns the author handle or "" when unknown.
func (m RawMessage) Username() string {
	if h := m.Author.Handle(); h != "" {
		return h
	}
	return m.User.Handle()
}

// CreatedTime returns the raw creation timestamp, whichever field carries it.
func (m RawMessage) CreatedTime() string {
	if m.CreatedAt != "" {
		return m.CreatedAt
	}
	if m.Created != "" {
		return m.Created
	}
	return m.Time
}

// flexString tolerates numeric ids in the CLI output.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// Client invokes the CLI with a bounded timeout per call.
type Client struct {
	bin     string
	timeout time.Duration
}

func NewClient(bin string, timeout time.Duration) *Client {
	if bin == "" {
		bin = "bird"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{bin: bin, timeout: timeout}
}

// Search runs a keyword search.
func (c *Client) Search(ctx context.Context, query string, count int) []RawMessage {
	return c.run(ctx, "search", query, "-n", fmt.Sprint(count), "--json")
}

// UserTweets fetches the latest messages of one account.
func (c *Client) UserTweets(ctx context.Context, handle string, count int) []RawMessage {
	if !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}
	return c.run(ctx, "user-tweets", handle, "-n", fmt.Sprint(count), "--json")
}

// News fetches trending news items.
func (c *Client) News(ctx context.Context, count int) []RawMessage {
	return c.run(ctx, "news", "-n", fmt.Sprint(count), "--json")
}

func (c *Client) run(ctx context.Context, args ...string) []RawMessage {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.bin, args...)
	out, err := cmd.Output()
	if err != nil {
		slog.Warn("bird command failed", "args", strings.Join(args, " "), "error", err)
		return nil
	}

	msgs, err := ParseOutput(out)
	if err != nil {
		slog.Warn("bird output unparsable", "args", strings.Join(args, " "), "error", err)
		return nil
	}
	return msgs
}

// ParseOutput decodes CLI stdout: warning lines are stripped, and both a
// JSON array and a single object are accepted.
func ParseOutput(out []byte) ([]RawMessage, error) {
	var jsonLines []string
	for _, line := range strings.Split(string(out), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "⚠️") {
			continue
		}
		jsonLines = append(jsonLines, line)
	}
	text := strings.TrimSpace(strings.Join(jsonLines, "\n"))
	if text == "" {
		return nil, nil
	}

	if strings.HasPrefix(text, "[") {
		var msgs []RawMessage
		if err := json.Unmarshal([]byte(text), &msgs); err != nil {
			return nil, err
		}
		return msgs, nil
	}

	var msg RawMessage
	if err := json.Unmarshal([]byte(text), &msg); err != nil {
		return nil, err
	}
	return []RawMessage{msg}, nil
}
