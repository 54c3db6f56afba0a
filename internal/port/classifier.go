package port

import "context"

// ClassifyInput carries one request to the external semantic classifier.
// ImageBytes is optional; when present the provider attaches the rendered
// page image alongside the prompts.
type ClassifyInput struct {
	SystemPrompt string
	UserPrompt   string
	ImageBytes   []byte
	ImageType    string // "image/png" or "image/jpeg"; defaults to image/png
	MaxTokens    int
}

// ClassifyOutput is the raw text result from a classifier call.
type ClassifyOutput struct {
	Text      string
	ModelUsed string
}

// Classifier abstracts the external LLM classification service. Callers treat
// it as an opaque synchronous call and must tolerate non-JSON responses.
type Classifier interface {
	Classify(ctx context.Context, input ClassifyInput) (*ClassifyOutput, error)
}
