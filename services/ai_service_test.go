package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAIServiceForTest(t *testing.T, handler http.HandlerFunc) *AIService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewAIService("test-key")
	svc.baseURL = server.URL
	return svc
}

func chatReply(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
}

func TestGenerateInsight(t *testing.T) {
	svc := newAIServiceForTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, openAIModel, req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "How is my reading habit going?", req.Messages[1].Content)

		json.NewEncoder(w).Encode(chatReply("  Great consistency this week!  "))
	})

	message, err := svc.GenerateInsight(context.Background(), "How is my reading habit going?")
	require.NoError(t, err)
	assert.Equal(t, "Great consistency this week!", message)
}

func TestGenerateInsight_MissingKey(t *testing.T) {
	svc := NewAIService("")

	message, err := svc.GenerateInsight(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, missingKeyMessage, message)
}

func TestGenerateInsight_FallbackOnEmptyReply(t *testing.T) {
	svc := newAIServiceForTest(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	message, err := svc.GenerateInsight(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, fallbackMessage, message)

	svc = newAIServiceForTest(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatReply("   "))
	})

	message, err = svc.GenerateInsight(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, fallbackMessage, message)
}

func TestGenerateInsight_UpstreamError(t *testing.T) {
	svc := newAIServiceForTest(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	})

	_, err := svc.GenerateInsight(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}
