// internal/services/openai_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/shopify-automation/internal/config"
	"github.com/javajoker/shopify-automation/internal/metrics"
)

const (
	FallbackContent       = "콘텐츠 생성 중 오류가 발생했습니다."
	contentSystemPrompt   = "당신은 전문적인 마케팅 콘텐츠 작성자입니다. 한국어로 명확하고 매력적인 콘텐츠를 작성해주세요."
	contentTemperature    = 0.7
	maxOpenAIResponseSize = 2 * 1024 * 1024
)

var errOpenAINotConfigured = errors.New("openai: api key is not configured")

// OpenAIService generates marketing copy through the chat completions API.
type OpenAIService struct {
	apiKey     string
	model      string
	baseURL    string
	maxTokens  int
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewOpenAIService(cfg config.OpenAIConfig, logger *logrus.Logger) *OpenAIService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &OpenAIService{
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		maxTokens: cfg.MaxTokens,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// GenerateContent returns the model's reply or FallbackContent on any failure.
func (s *OpenAIService) GenerateContent(ctx context.Context, prompt string, maxTokens int) string {
	if maxTokens <= 0 {
		maxTokens = s.maxTokens
	}

	text, err := s.complete(ctx, prompt, maxTokens)
	if err != nil {
		s.logger.WithError(err).Warn("Content generation failed, using fallback")
		return FallbackContent
	}
	return text
}

func (s *OpenAIService) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if s.apiKey == "" {
		return "", errOpenAINotConfigured
	}

	var err error
	done := metrics.TrackExternal("openai", "chat_completion")
	defer func() { done(err) }()

	body, err := json.Marshal(chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: contentSystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: contentTemperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxOpenAIResponseSize))
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		err = fmt.Errorf("openai: HTTP %d: %s", resp.StatusCode, truncate(string(data), 300))
		return "", err
	}

	var out chatResponse
	if err = json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("openai: failed to decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		err = errors.New("openai: response had no choices")
		return "", err
	}

	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
