package classifier

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeKind tags how a classifier response was recovered.
type DecodeKind int

const (
	// DecodeParsed means the response body was valid JSON as-is.
	DecodeParsed DecodeKind = iota
	// DecodeSalvaged means JSON was recovered from surrounding prose or
	// markdown fencing via the brace-window heuristic.
	DecodeSalvaged
	// DecodeFallback means nothing usable was recovered; the caller must
	// substitute its documented default.
	DecodeFallback
)

func (k DecodeKind) String() string {
	switch k {
	case DecodeParsed:
		return "parsed"
	case DecodeSalvaged:
		return "salvaged"
	default:
		return "fallback"
	}
}

// Decode unmarshals a classifier response into v, tolerating partially-JSON
// output. It tries a direct parse first, then a best-effort salvage of the
// widest {...} window, and reports DecodeFallback when both fail. Required
// fields must still be validated by the caller; Decode only guarantees
// syntactic recovery.
func Decode(text string, v interface{}) (DecodeKind, error) {
	trimmed := strings.TrimSpace(text)
	if err := json.Unmarshal([]byte(trimmed), v); err == nil {
		return DecodeParsed, nil
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return DecodeFallback, fmt.Errorf("no JSON object in classifier response")
	}

	window := trimmed[start : end+1]
	if err := json.Unmarshal([]byte(window), v); err != nil {
		return DecodeFallback, fmt.Errorf("salvaged window is not valid JSON: %w", err)
	}
	return DecodeSalvaged, nil
}
