package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/dailyreads/internal/llm"
)

func chatServer(t *testing.T, content string, gotModel *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if gotModel != nil {
			*gotModel = req.Model
		}
		choices := []map[string]any{}
		if content != "" {
			choices = append(choices, map[string]any{
				"index":   0,
				"message": map[string]any{"role": "assistant", "content": content},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"choices": choices,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestComplete(t *testing.T) {
	var model string
	srv := chatServer(t, "  2\n", &model)
	c := NewClient("test-key", "", srv.URL+"/v1")

	out, err := c.Complete(context.Background(), "pick one")
	require.NoError(t, err)
	assert.Equal(t, "2", out)
	assert.Equal(t, DefaultModel, model)
}

func TestCompleteNoChoices(t *testing.T) {
	srv := chatServer(t, "", nil)
	c := NewClient("test-key", "custom-model", srv.URL+"/v1")

	_, err := c.Complete(context.Background(), "pick one")
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}
