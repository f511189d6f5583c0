package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	openAIChatURL = "https://api.openai.com/v1/chat/completions"
	openAIModel   = "gpt-4o-mini"

	coachSystemPrompt = "You are HabitPilot, an upbeat habit coach. Celebrate progress, share insight, and offer one actionable tip."

	// Returned when the server runs without an OpenAI key so the feature
	// degrades to a visible hint instead of an error.
	missingKeyMessage = "AI insights require an OPENAI_API_KEY environment variable. Add it to enable this feature."

	fallbackMessage = "Keep the momentum going!"
)

type AIService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		apiKey:  apiKey,
		baseURL: openAIChatURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateInsight proxies the prompt to the chat-completions API and returns
// the coach's reply. Stateless: nothing about the exchange is persisted.
func (s *AIService) GenerateInsight(ctx context.Context, prompt string) (string, error) {
	if s.apiKey == "" {
		return missingKeyMessage, nil
	}

	payload := chatCompletionRequest{
		Model: openAIModel,
		Messages: []chatMessage{
			{Role: "system", Content: coachSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorText, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai request failed with status %d: %s", resp.StatusCode, string(errorText))
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode openai response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return fallbackMessage, nil
	}

	message := strings.TrimSpace(completion.Choices[0].Message.Content)
	if message == "" {
		return fallbackMessage, nil
	}

	return message, nil
}
