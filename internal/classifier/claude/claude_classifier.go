// Package claude implements port.Classifier using the Anthropic Messages API.
package claude

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"hilyte/internal/classifier"
	"hilyte/internal/config"
	"hilyte/internal/port"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"

	defaultMaxTokens = 4096
)

// Classifier implements port.Classifier using the Anthropic Messages API.
type Classifier struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewClassifier creates a Claude-based classifier from a provider config.
func NewClassifier(cfg *config.ClassifierProviderConfig) *Classifier {
	return newClassifier(cfg, apiURL)
}

// NewClassifierWithEndpoint creates a classifier pointing at a custom API
// endpoint (for testing).
func NewClassifierWithEndpoint(cfg *config.ClassifierProviderConfig, endpoint string) *Classifier {
	return newClassifier(cfg, endpoint)
}

func newClassifier(cfg *config.ClassifierProviderConfig, endpoint string) *Classifier {
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Classifier{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *Classifier) Classify(ctx context.Context, input port.ClassifyInput) (*port.ClassifyOutput, error) {
	maxTokens := input.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	var content []map[string]interface{}
	if len(input.ImageBytes) > 0 {
		mediaType := input.ImageType
		if mediaType == "" {
			mediaType = "image/png"
		}
		content = append(content, map[string]interface{}{
			"type": "image",
			"source": map[string]interface{}{
				"type":       "base64",
				"media_type": mediaType,
				"data":       base64.StdEncoding.EncodeToString(input.ImageBytes),
			},
		})
	}
	content = append(content, map[string]interface{}{
		"type": "text",
		"text": input.UserPrompt,
	})

	reqBody := map[string]interface{}{
		"model":      c.model,
		"max_tokens": maxTokens,
		"system":     input.SystemPrompt,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": content,
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := classifier.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, classifier.NewRateLimitError("claude", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, c.model)
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, model string) (*port.ClassifyOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	if resp.StopReason == "max_tokens" {
		return nil, fmt.Errorf("output truncated (stop_reason: max_tokens): response exceeded output token limit")
	}

	return &port.ClassifyOutput{
		Text:      resp.Content[0].Text,
		ModelUsed: model,
	}, nil
}
