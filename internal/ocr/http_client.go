// Package ocr implements port.OCRAdapter against an external OCR engine's
// HTTP API. The engine is a black box producing text, positioned tokens, and
// a confidence score.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"hilyte/internal/config"
	"hilyte/internal/port"
)

// Client is an HTTP OCR adapter.
type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewClient creates an OCR client from config.
func NewClient(cfg *config.OCRConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
	}
}

// ocrResponse is the engine's wire format.
type ocrResponse struct {
	Text   string  `json:"text"`
	Tokens []token `json:"tokens"`
	// Confidence is reported in [0,100] by common engines; normalized to
	// [0,1] here.
	Confidence float64 `json:"confidence"`
}

type token struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Extract sends a page image to the OCR engine and normalizes its response.
func (c *Client) Extract(ctx context.Context, imageBytes []byte) (*port.OCRResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling OCR engine: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading OCR response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OCR engine error (status %d): %s", resp.StatusCode, string(body))
	}

	var wire ocrResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("unmarshaling OCR response: %w", err)
	}

	result := &port.OCRResult{
		Text:       wire.Text,
		Confidence: normalizeConfidence(wire.Confidence),
	}
	for _, t := range wire.Tokens {
		result.Tokens = append(result.Tokens, port.RawToken{
			Text:   t.Text,
			X:      t.X,
			Y:      t.Y,
			Width:  t.Width,
			Height: t.Height,
			Valid:  t.Width > 0 && t.Height > 0,
		})
	}
	return result, nil
}

func normalizeConfidence(v float64) float64 {
	if v > 1 {
		v = v / 100
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
