package taxonomy

import (
	"sort"
	"strings"

	"hilyte/internal/domain"
)

// Consolidation is the cross-page view built from a run's classified items.
type Consolidation struct {
	CrossReferences   []domain.CrossReference
	UniqueItems       []domain.ClassifiedItem
	DivisionBreakdown []domain.DivisionCount
}

// Consolidate builds cross-references, unique representatives, and the
// division breakdown from all pages' classified items. It is a pure,
// single-threaded pass: normalize, bucket, reduce. It mutates nothing and
// runs only after all pages have finished classification.
func Consolidate(items []domain.ClassifiedItem) Consolidation {
	// Deterministic order: page, then top-to-bottom, then left-to-right.
	ordered := make([]domain.ClassifiedItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Item.SourcePage != b.Item.SourcePage {
			return a.Item.SourcePage < b.Item.SourcePage
		}
		if a.Item.BoundingRegion.Y != b.Item.BoundingRegion.Y {
			return a.Item.BoundingRegion.Y < b.Item.BoundingRegion.Y
		}
		return a.Item.BoundingRegion.X < b.Item.BoundingRegion.X
	})

	var keys []string
	buckets := make(map[string][]domain.ClassifiedItem)
	for _, it := range ordered {
		key := normalizeCanonical(it.Item.RawName)
		if key == "" {
			continue
		}
		if _, seen := buckets[key]; !seen {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], it)
	}

	var c Consolidation
	for _, key := range keys {
		bucket := buckets[key]

		// First occurrence by page then position represents the bucket.
		c.UniqueItems = append(c.UniqueItems, bucket[0])

		if len(bucket) > 1 && spansMultiplePages(bucket) {
			ref := domain.CrossReference{CanonicalName: bucket[0].Item.RawName}
			for _, it := range bucket {
				ref.Occurrences = append(ref.Occurrences, domain.Occurrence{
					Page:             it.Item.SourcePage,
					ClassifiedItemID: it.Item.ID,
				})
			}
			c.CrossReferences = append(c.CrossReferences, ref)
		}
	}

	c.DivisionBreakdown = breakdownByDivision(c.UniqueItems, buckets, keys)
	return c
}

// normalizeCanonical reduces a name to its cross-page identity: lowercase
// with all non-alphanumerics stripped.
func normalizeCanonical(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func spansMultiplePages(bucket []domain.ClassifiedItem) bool {
	first := bucket[0].Item.SourcePage
	for _, it := range bucket[1:] {
		if it.Item.SourcePage != first {
			return true
		}
	}
	return false
}

// breakdownByDivision counts unique items per division, tagging each division
// with every source page that contributed an occurrence.
func breakdownByDivision(unique []domain.ClassifiedItem, buckets map[string][]domain.ClassifiedItem, keys []string) []domain.DivisionCount {
	type agg struct {
		name  string
		count int
		pages map[int]bool
	}
	byCode := make(map[string]*agg)

	for i, rep := range unique {
		a, ok := byCode[rep.DivisionCode]
		if !ok {
			a = &agg{name: rep.DivisionName, pages: make(map[int]bool)}
			byCode[rep.DivisionCode] = a
		}
		a.count++
		for _, it := range buckets[keys[i]] {
			a.pages[it.Item.SourcePage] = true
		}
	}

	codes := make([]string, 0, len(byCode))
	for code := range byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make([]domain.DivisionCount, 0, len(codes))
	for _, code := range codes {
		a := byCode[code]
		pages := make([]int, 0, len(a.pages))
		for p := range a.pages {
			pages = append(pages, p)
		}
		sort.Ints(pages)
		out = append(out, domain.DivisionCount{
			DivisionCode: code,
			DivisionName: a.name,
			UniqueItems:  a.count,
			Pages:        pages,
		})
	}
	return out
}
