// Package gemini implements port.Classifier using Google's Gemini API.
package gemini

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
	apiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

	defaultMaxTokens = 4096
)

// Classifier implements port.Classifier using the Gemini generateContent API.
type Classifier struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewClassifier creates a Gemini-based classifier.
func NewClassifier(cfg *config.ClassifierProviderConfig) *Classifier {
	return newClassifier(cfg, "")
}

// NewClassifierWithEndpoint creates a classifier pointing at a custom API
// endpoint (for testing).
func NewClassifierWithEndpoint(cfg *config.ClassifierProviderConfig, endpoint string) *Classifier {
	return newClassifier(cfg, endpoint)
}

func newClassifier(cfg *config.ClassifierProviderConfig, endpoint string) *Classifier {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
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

	var parts []map[string]interface{}
	if len(input.ImageBytes) > 0 {
		mimeType := input.ImageType
		if mimeType == "" {
			mimeType = "image/png"
		}
		parts = append(parts, map[string]interface{}{
			"inline_data": map[string]interface{}{
				"mime_type": mimeType,
				"data":      base64.StdEncoding.EncodeToString(input.ImageBytes),
			},
		})
	}
	parts = append(parts, map[string]interface{}{
		"text": input.UserPrompt,
	})

	reqBody := map[string]interface{}{
		"system_instruction": map[string]interface{}{
			"parts": []map[string]interface{}{
				{"text": input.SystemPrompt},
			},
		},
		"contents": []map[string]interface{}{
			{
				"role":  "user",
				"parts": parts,
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"maxOutputTokens":  maxTokens,
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
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := classifier.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, classifier.NewRateLimitError("gemini", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, c.model)
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func parseResponse(body []byte, model string) (*port.ClassifyOutput, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	if resp.Candidates[0].FinishReason == "MAX_TOKENS" {
		return nil, fmt.Errorf("output truncated (finishReason: MAX_TOKENS)")
	}

	return &port.ClassifyOutput{
		Text:      resp.Candidates[0].Content.Parts[0].Text,
		ModelUsed: model,
	}, nil
}
