package port

import "context"

// RawToken is a single recognized fragment as reported by the OCR engine or
// PDF text layer, before geometry normalization.
type RawToken struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Valid  bool    `json:"valid"` // false when the engine could not place the token
}

// OCRResult is the full output for one page region.
type OCRResult struct {
	Text       string
	Tokens     []RawToken
	Confidence float64 // engine-reported confidence in [0,1]
}

// OCRAdapter abstracts the OCR engine / PDF text layer. A result with zero
// confidence and empty text means the page yields zero items, not an error.
type OCRAdapter interface {
	Extract(ctx context.Context, imageBytes []byte) (*OCRResult, error)
}
