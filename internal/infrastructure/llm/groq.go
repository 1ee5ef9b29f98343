package llm

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

	"StoryForge/internal/config"
	"StoryForge/internal/ports"
)

// hookTemperature is fixed: hooks should be punchy and varied, not safe.
const hookTemperature = 0.9

// ErrEmptyCompletion marks a successful request that produced no text.
var ErrEmptyCompletion = errors.New("empty completion content")

// GroqClient implements ports.ChatCompleter backed by OpenAI-compatible APIs.
type GroqClient struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ ports.ChatCompleter = (*GroqClient)(nil)

// NewGroqClient builds a client from configuration.
func NewGroqClient(cfg config.GroqConfig) *GroqClient {
	return &GroqClient{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Complete posts the prompt as a single user message and returns the trimmed
// completion text.
func (c *GroqClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("groq client is nil")
	}
	if c.apiKey == "" || c.baseURL == "" || c.model == "" {
		return "", fmt.Errorf("groq client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": hookTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("completion error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}

	if len(decoded.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	content := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}

	return content, nil
}
