package taxonomy

import (
	"context"
	"fmt"
	"log"
	"strings"

	"hilyte/internal/classifier"
	"hilyte/internal/domain"
	"hilyte/internal/port"
)

const (
	// minAcceptConfidence is the floor below which a classified item goes to
	// the low-confidence holding list instead of the annotated set.
	minAcceptConfidence = 0.7

	classifyMaxTokens = 4096
)

const classifySystemPrompt = `You are an expert construction document analyzer specializing in extracting procurement data from architectural and engineering drawings. You assign each extracted construction item to a CSI MasterFormat division.

AVAILABLE CSI DIVISIONS:
%s
Respond with JSON only.`

const classifyUserPrompt = `Assign each of these extracted construction items to the single best-fitting CSI division. Consider what a contractor would actually purchase and install: "Steel W18x35 Beam" belongs to 05 - Metals, "AHU-1" to 23 - HVAC, "Duplex Receptacle" to 26 - Electrical, "6 CMU Block" to 04 - Masonry.

Return JSON:
{
  "classifications": [
    {
      "itemIndex": 0,
      "divisionCode": "XX 00 00",
      "divisionName": "Division Name",
      "confidence": 0.9,
      "rationale": "one sentence"
    }
  ]
}

Items:
%s`

// Engine classifies extraction items against an injected division table via
// the external semantic classifier.
type Engine struct {
	classifier port.Classifier
	table      Table
}

// NewEngine creates a classification engine over the given division table.
func NewEngine(c port.Classifier, table Table) *Engine {
	return &Engine{classifier: c, table: table}
}

// ClassifyPage classifies one page's items in a single batched call. The
// rendered page image, when available, rides along so the classifier sees the
// drawing context, not just item names. Items at or above the confidence
// floor land in accepted; the rest go to the low-confidence holding list.
// Items are never dropped. A classifier failure degrades the whole page to
// the holding list; only context cancellation is returned as an error.
func (e *Engine) ClassifyPage(ctx context.Context, items []domain.ExtractionItem, pageImage []byte) (accepted, lowConfidence []domain.ClassifiedItem, err error) {
	if len(items) == 0 {
		return nil, nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	out, err := e.classifier.Classify(ctx, port.ClassifyInput{
		SystemPrompt: fmt.Sprintf(classifySystemPrompt, e.table.Render()),
		UserPrompt:   fmt.Sprintf(classifyUserPrompt, renderItems(items)),
		ImageBytes:   pageImage,
		MaxTokens:    classifyMaxTokens,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		log.Printf("taxonomy: classification failed, holding %d items for review: %v", len(items), err)
		return nil, holdAll(items), nil
	}

	var wire struct {
		Classifications []struct {
			ItemIndex    int     `json:"itemIndex"`
			DivisionCode string  `json:"divisionCode"`
			DivisionName string  `json:"divisionName"`
			Confidence   float64 `json:"confidence"`
			Rationale    string  `json:"rationale"`
		} `json:"classifications"`
	}
	if kind, derr := classifier.Decode(out.Text, &wire); derr != nil || kind == classifier.DecodeFallback {
		log.Printf("taxonomy: classification response unparsable, holding %d items: %v", len(items), derr)
		return nil, holdAll(items), nil
	}

	byIndex := make(map[int]int, len(wire.Classifications))
	for ci, c := range wire.Classifications {
		if c.ItemIndex >= 0 && c.ItemIndex < len(items) {
			byIndex[c.ItemIndex] = ci
		}
	}

	for i, item := range items {
		ci, ok := byIndex[i]
		if !ok {
			lowConfidence = append(lowConfidence, unclassified(item))
			continue
		}
		c := wire.Classifications[ci]

		div, matched := e.table.Resolve(c.DivisionCode, c.DivisionName)
		color := div.Color
		if !matched && div.Code == "" {
			color = FallbackColor
		}

		classified := domain.ClassifiedItem{
			Item:                  item,
			DivisionCode:          div.Code,
			DivisionName:          div.Name,
			Color:                 color,
			AnnotationCoordinates: item.BoundingRegion,
			Rationale:             c.Rationale,
			Confidence:            clamp01(c.Confidence),
		}

		if classified.Confidence >= minAcceptConfidence {
			accepted = append(accepted, classified)
		} else {
			lowConfidence = append(lowConfidence, classified)
		}
	}

	return accepted, lowConfidence, nil
}

// Annotate assigns callout IDs to an accepted item set, sequential within
// each division in item order. It returns the same slice with callouts set.
func Annotate(items []domain.ClassifiedItem) []domain.ClassifiedItem {
	seq := make(map[string]int, len(items))
	for i := range items {
		code := items[i].DivisionCode
		seq[code]++
		items[i].CalloutID = fmt.Sprintf("%s-%d", code, seq[code])
		if items[i].Color == "" {
			items[i].Color = FallbackColor
		}
	}
	return items
}

func renderItems(items []domain.ExtractionItem) string {
	var b strings.Builder
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s (category: %s", i, it.RawName, it.Category)
		if it.Quantity != "" {
			fmt.Fprintf(&b, ", qty: %s", it.Quantity)
		}
		if it.Specification != "" {
			fmt.Fprintf(&b, ", spec: %s", it.Specification)
		}
		b.WriteString(")\n")
	}
	return b.String()
}

// holdAll wraps every item as an unclassified low-confidence entry.
func holdAll(items []domain.ExtractionItem) []domain.ClassifiedItem {
	out := make([]domain.ClassifiedItem, 0, len(items))
	for _, it := range items {
		out = append(out, unclassified(it))
	}
	return out
}

func unclassified(item domain.ExtractionItem) domain.ClassifiedItem {
	return domain.ClassifiedItem{
		Item:                  item,
		Color:                 FallbackColor,
		AnnotationCoordinates: item.BoundingRegion,
		Confidence:            0,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
