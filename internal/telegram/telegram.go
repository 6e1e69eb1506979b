package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/dailyreads/internal/feeds"
	"github.com/deusflow/dailyreads/internal/news"
	"github.com/deusflow/dailyreads/internal/retry"
)

const (
	apiBase        = "https://api.telegram.org"
	maxMessageRune = 4000
)

// Notifier posts digest headlines to a Telegram chat.
type Notifier struct {
	token   string
	chatID  string
	baseURL string
	client  *http.Client
	retry   retry.RetryConfig
}

func NewNotifier(token, chatID string) *Notifier {
	return &Notifier{
		token:   token,
		chatID:  chatID,
		baseURL: apiBase,
		client:  &http.Client{Timeout: 30 * time.Second},
		retry:   retry.RetryConfig{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true},
	}
}

// SendMessage sends an HTML message, retrying with backoff.
func (n *Notifier) SendMessage(ctx context.Context, text string) error {
	attempt := 0
	err := retry.WithRetry(ctx, n.retry, func() error {
		attempt++
		err := n.sendOnce(ctx, text)
		if err != nil {
			slog.Warn("Telegram send failed", "attempt", attempt, "err", err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("can't send message to Telegram: %w", err)
	}
	slog.Info("Message sent to Telegram", "attempt", attempt)
	return nil
}

func (n *Notifier) sendOnce(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)

	payload := map[string]interface{}{
		"chat_id":                  n.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error make JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("error HTTP request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("telegram API error: status %d", resp.StatusCode)
	default:
		return retry.Permanent(fmt.Errorf("telegram API error: status %d", resp.StatusCode))
	}
}

// FormatDigest renders the selected articles as a Telegram HTML message.
func FormatDigest(date time.Time, articles map[feeds.Category]*news.Selection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Daily Digest %s</b>\n", date.Format(time.DateOnly))

	for _, c := range feeds.Categories {
		fmt.Fprintf(&b, "\n<b>%s</b>\n", html.EscapeString(c.Title()))
		a := articles[c]
		if a == nil {
			b.WriteString("<i>No suitable article found</i>\n")
			continue
		}
		fmt.Fprintf(&b, "<a href=\"%s\">%s</a>\n", html.EscapeString(a.URL), html.EscapeString(a.Title))
		for _, bullet := range a.Bullets {
			fmt.Fprintf(&b, "• %s\n", html.EscapeString(bullet))
		}
	}

	msg := b.String()
	if r := []rune(msg); len(r) > maxMessageRune {
		msg = string(r[:maxMessageRune])
	}
	return msg
}
