// Package extract turns raw OCR text into candidate construction items using
// an ordered catalog of category-tagged patterns.
package extract

import (
	"regexp"

	"hilyte/internal/domain"
)

// PatternFamily is one entry of the extraction catalog. Pattern matches are
// inherently less certain than direct table reads, so each family scales the
// OCR confidence by its multiplier. Adding a family is a data change, not a
// code change.
type PatternFamily struct {
	Category             domain.ItemCategory
	Pattern              *regexp.Regexp
	ConfidenceMultiplier float64
}

// Catalog returns the default ordered pattern catalog for construction
// drawings. Earlier families win when two patterns produce the same
// normalized name.
func Catalog() []PatternFamily {
	return []PatternFamily{
		// Equipment tags: AHU-1, RTU-2, EF-3, P-1, WH-2, FCU-1, VAV-12.
		{
			Category:             domain.CategoryEquipment,
			Pattern:              regexp.MustCompile(`(?i)\b((?:AHU|RTU|FCU|VAV|EF|CU|WH|P|B)-\d+[A-Z]?(?:[ :][A-Za-z0-9 .\-/"]{3,60})?)`),
			ConfidenceMultiplier: 0.8,
		},
		// Named mechanical/electrical equipment.
		{
			Category:             domain.CategoryEquipment,
			Pattern:              regexp.MustCompile(`(?i)\b((?:\d+[ -]?TON )?(?:air handling unit|rooftop unit|exhaust fan|condensing unit|water heater|fire pump|transformer|switchboard|panelboard|generator|elevator|boiler|chiller)s?(?:[ ][A-Za-z0-9.\-/]{1,20})?)`),
			ConfidenceMultiplier: 0.8,
		},
		// Structural and envelope materials: W18x35 steel, 6" CMU, concrete mixes.
		{
			Category:             domain.CategoryMaterial,
			Pattern:              regexp.MustCompile(`(?i)\b((?:steel )?(?:W|HSS|C|L)\d+x\d+(?:x\d+)?(?: (?:beam|column|girder|brace))?)`),
			ConfidenceMultiplier: 0.8,
		},
		{
			Category:             domain.CategoryMaterial,
			Pattern:              regexp.MustCompile(`(?i)\b(\d+(?:["']|in\.?|mm)? ?(?:CMU|concrete|gypsum board|plywood|insulation|rebar|conduit|copper pipe|PVC pipe|ductwork)(?: (?:block|wall|slab|deck|sheathing))?(?:[, ][A-Za-z0-9.'" \-/]{0,30})?)`),
			ConfidenceMultiplier: 0.8,
		},
		{
			Category:             domain.CategoryMaterial,
			Pattern:              regexp.MustCompile(`(?i)\b((?:cast-in-place|precast|reinforced) concrete(?: [a-z]{3,12})?|(?:brick|stone) (?:veneer|masonry)|structural (?:steel|lumber))`),
			ConfidenceMultiplier: 0.8,
		},
		// Fixtures: lighting, plumbing, electrical devices.
		{
			Category:             domain.CategoryFixture,
			Pattern:              regexp.MustCompile(`(?i)\b((?:LED |fluorescent |recessed )?light(?:ing)? fixture(?: type [A-Z]\d*)?|duplex receptacle|GFCI receptacle|water closet|lavatory|urinal|floor drain|exit sign|emergency light)`),
			ConfidenceMultiplier: 0.8,
		},
		// Door/window/component marks: "Door Type A", "Window W1".
		{
			Category:             domain.CategoryComponent,
			Pattern:              regexp.MustCompile(`(?i)\b((?:door|window) (?:type )?[A-Z]\d{0,2}(?:[ :][A-Za-z0-9'" x\-]{3,40})?)`),
			ConfidenceMultiplier: 0.8,
		},
	}
}

// scheduleHeaderKeywords gates schedule-line parsing: the first table-like
// line must mention one of these before subsequent lines are read as rows.
var scheduleHeaderKeywords = regexp.MustCompile(`(?i)\b(qty|size|type|mark)\b`)

// tableLike matches lines with explicit positional structure: three or more
// consecutive spaces, pipe separators, or many whitespace-delimited fields.
var (
	wideGap    = regexp.MustCompile(`\s{3}`)
	pipeSep    = regexp.MustCompile(`\|`)
	enumPrefix = regexp.MustCompile(`^\s*\d+[.)]\s+`)
	nameStrip  = regexp.MustCompile(`[^A-Za-z0-9 \-./]`)
	wsCollapse = regexp.MustCompile(`\s+`)
)
