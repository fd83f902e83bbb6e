// internal/services/openai_service_test.go
package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/shopify-automation/internal/config"
)

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAIService {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger, _ := logtest.NewNullLogger()
	return NewOpenAIService(config.OpenAIConfig{
		APIKey:         "sk-test",
		Model:          "gpt-3.5-turbo",
		BaseURL:        srv.URL + "/v1/",
		TimeoutSeconds: 5,
		MaxTokens:      500,
	}, logger)
}

func TestOpenAIGenerateContent(t *testing.T) {
	var req chatRequest
	svc := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  제목: 좋은 상품\n#태그  "}}]}`))
	})

	text := svc.GenerateContent(context.Background(), "write something", 0)

	assert.Equal(t, "제목: 좋은 상품\n#태그", text)
	assert.Equal(t, "gpt-3.5-turbo", req.Model)
	assert.Equal(t, 500, req.MaxTokens)
	assert.InDelta(t, 0.7, req.Temperature, 0.0001)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "write something", req.Messages[1].Content)
}

func TestOpenAIFallsBackOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"bad json", http.StatusOK, `{`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.payload))
			})
			assert.Equal(t, FallbackContent, svc.GenerateContent(context.Background(), "p", 100))
		})
	}
}

func TestOpenAIWithoutKey(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	svc := NewOpenAIService(config.OpenAIConfig{BaseURL: "http://127.0.0.1:0"}, logger)

	assert.Equal(t, FallbackContent, svc.GenerateContent(context.Background(), "p", 10))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Content generation failed, using fallback", hook.LastEntry().Message)
}
