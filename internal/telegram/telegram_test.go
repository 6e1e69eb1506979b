package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/dailyreads/internal/feeds"
	"github.com/deusflow/dailyreads/internal/news"
	"github.com/deusflow/dailyreads/internal/retry"
)

func testNotifier(srv *httptest.Server) *Notifier {
	n := NewNotifier("TOKEN", "42")
	n.baseURL = srv.URL
	n.retry = retry.RetryConfig{MaxAttempts: 3, Delay: time.Millisecond}
	return n
}

func TestSendMessageRetries(t *testing.T) {
	var calls int32
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
	}))
	defer srv.Close()

	require.NoError(t, testNotifier(srv).SendMessage(context.Background(), "hello"))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, "42", payload["chat_id"])
	assert.Equal(t, "HTML", payload["parse_mode"])
}

func TestSendMessageBadRequestNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	assert.Error(t, testNotifier(srv).SendMessage(context.Background(), "hello"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSendMessageGivesUpOnServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	assert.Error(t, testNotifier(srv).SendMessage(context.Background(), "hello"))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFormatDigest(t *testing.T) {
	msg := FormatDigest(time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), map[feeds.Category]*news.Selection{
		feeds.AI: {Title: "A & B", URL: "https://example.com/?a=1&b=2", Bullets: []string{"x < y", "two", "three"}},
	})

	assert.Contains(t, msg, "<b>Daily Digest 2025-02-03</b>")
	assert.Contains(t, msg, `<a href="https://example.com/?a=1&amp;b=2">A &amp; B</a>`)
	assert.Contains(t, msg, "• x &lt; y")
	assert.Contains(t, msg, "<b>LLMs</b>\n<i>No suitable article found</i>")
}
