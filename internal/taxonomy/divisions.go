// Package taxonomy assigns CSI MasterFormat-style division codes to extracted
// items, generates annotation callouts, and consolidates items across pages.
package taxonomy

import (
	"fmt"
	"strings"

	"hilyte/internal/domain"
)

// FallbackColor is used when an item could not be matched to any division.
const FallbackColor = "#999999"

// Table is an immutable, ordered set of CSI divisions. It is injected into
// the classification engine at construction time, never a package singleton.
type Table struct {
	divisions []domain.Division
	byCode    map[string]int
}

// NewTable builds a Table from an ordered division list.
func NewTable(divisions []domain.Division) Table {
	byCode := make(map[string]int, len(divisions))
	for i, d := range divisions {
		byCode[d.Code] = i
	}
	return Table{divisions: divisions, byCode: byCode}
}

// Divisions returns a copy of the ordered division list.
func (t Table) Divisions() []domain.Division {
	out := make([]domain.Division, len(t.divisions))
	copy(out, t.divisions)
	return out
}

// Len returns the number of divisions in the table.
func (t Table) Len() int {
	return len(t.divisions)
}

// ByCode looks up a division by its exact code.
func (t Table) ByCode(code string) (domain.Division, bool) {
	i, ok := t.byCode[code]
	if !ok {
		return domain.Division{}, false
	}
	return t.divisions[i], true
}

// Resolve finds the division best matching a classifier-reported code and
// name: exact code match first, then name containment either way, then the
// first division as a last resort.
func (t Table) Resolve(code, name string) (domain.Division, bool) {
	if d, ok := t.ByCode(code); ok {
		return d, true
	}

	lower := strings.ToLower(name)
	if lower != "" {
		for _, d := range t.divisions {
			dn := strings.ToLower(d.Name)
			if strings.Contains(dn, lower) || strings.Contains(lower, dn) {
				return d, true
			}
		}
	}

	if len(t.divisions) > 0 {
		return t.divisions[0], false
	}
	return domain.Division{}, false
}

// Render lists the divisions as prompt context, one line per division.
func (t Table) Render() string {
	var b strings.Builder
	for _, d := range t.divisions {
		fmt.Fprintf(&b, "- %s: %s\n", d.Code, d.Name)
	}
	return b.String()
}

// DefaultDivisions is the standard 37-division CSI MasterFormat seed table,
// with the display colors used for drawing annotations.
func DefaultDivisions() []domain.Division {
	seed := []struct {
		code, name, description, color string
	}{
		{"00 00 00", "00 - Procurement and Contracting Requirements", "General project requirements, procurement processes", "#6B7280"},
		{"01 00 00", "01 - General Requirements", "Project management, quality control, temporary facilities", "#374151"},
		{"02 00 00", "02 - Existing Conditions", "Surveys, existing structures, environmental assessment", "#1F2937"},
		{"03 00 00", "03 - Concrete", "Cast-in-place concrete, precast concrete, cementitious decks", "#7C2D12"},
		{"04 00 00", "04 - Masonry", "Unit masonry, stone, masonry restoration", "#A16207"},
		{"05 00 00", "05 - Metals", "Structural metal framing, metal fabrications", "#4B5563"},
		{"06 00 00", "06 - Wood, Plastics, and Composites", "Rough carpentry, finish carpentry, architectural woodwork", "#92400E"},
		{"07 00 00", "07 - Thermal and Moisture Protection", "Waterproofing, insulation, roofing, siding", "#1E40AF"},
		{"08 00 00", "08 - Openings", "Doors, windows, skylights, hardware", "#7C3AED"},
		{"09 00 00", "09 - Finishes", "Plaster, gypsum board, tile, carpet, paint", "#BE185D"},
		{"10 00 00", "10 - Specialties", "Visual display surfaces, compartments, louvers", "#059669"},
		{"11 00 00", "11 - Equipment", "Vehicle service equipment, mercantile equipment", "#DC2626"},
		{"12 00 00", "12 - Furnishings", "Artwork, furniture, rugs, window treatments", "#7C2D12"},
		{"13 00 00", "13 - Special Construction", "Special purpose rooms, integrated construction", "#1565C0"},
		{"14 00 00", "14 - Conveying Equipment", "Elevators, escalators, moving walkways", "#5B21B6"},
		{"21 00 00", "21 - Fire Suppression", "Fire suppression systems, fire pumps", "#DC2626"},
		{"22 00 00", "22 - Plumbing", "Plumbing fixtures, water supply, waste systems", "#1976D2"},
		{"23 00 00", "23 - Heating Ventilating and Air Conditioning", "HVAC systems, air distribution, controls", "#388E3C"},
		{"24 00 00", "24 - Electrical", "Electrical service, power distribution, lighting", "#F57C00"},
		{"25 00 00", "25 - Integrated Automation", "Building automation, integrated systems", "#512DA8"},
		{"26 00 00", "26 - Electrical", "Electrical service and distribution, lighting", "#FFB300"},
		{"27 00 00", "27 - Communications", "Communications systems, audio-visual", "#00796B"},
		{"28 00 00", "28 - Electronic Safety and Security", "Fire alarm, security, monitoring systems", "#C62828"},
		{"31 00 00", "31 - Earthwork", "Site clearing, excavation, earth moving", "#8D6E63"},
		{"32 00 00", "32 - Exterior Improvements", "Paving, landscaping, site furnishings", "#689F38"},
		{"33 00 00", "33 - Utilities", "Water utilities, sanitary sewer, electrical utilities", "#0288D1"},
		{"34 00 00", "34 - Transportation", "Railways, mass transit, transportation infrastructure", "#455A64"},
		{"35 00 00", "35 - Waterway and Marine Construction", "Waterway construction, dredging, marine facilities", "#0097A7"},
		{"40 00 00", "40 - Process Integration", "Process piping, instrumentation, process equipment", "#5E35B1"},
		{"41 00 00", "41 - Material Processing and Handling Equipment", "Bulk material processing, material handling", "#8E24AA"},
		{"42 00 00", "42 - Process Heating, Cooling, and Drying Equipment", "Industrial heating and cooling systems", "#D81B60"},
		{"43 00 00", "43 - Process Gas and Liquid Handling, Purification Equipment", "Gas handling, liquid processing", "#00ACC1"},
		{"44 00 00", "44 - Pollution Control Equipment", "Air pollution control, water treatment", "#43A047"},
		{"45 00 00", "45 - Industry-Specific Manufacturing Equipment", "Specialized manufacturing equipment", "#FB8C00"},
		{"46 00 00", "46 - Water and Wastewater Equipment", "Water treatment, wastewater processing", "#3949AB"},
		{"47 00 00", "47 - Energy Generation", "Solar energy, wind energy, power generation", "#FFD54F"},
		{"48 00 00", "48 - Electrical Power Generation", "Electrical power systems, generators", "#FF7043"},
	}

	divisions := make([]domain.Division, len(seed))
	for i, s := range seed {
		divisions[i] = domain.Division{
			ID:          i + 1,
			Code:        s.code,
			Name:        s.name,
			Description: s.description,
			Color:       s.color,
			SortOrder:   i + 1,
			IsActive:    true,
		}
	}
	return divisions
}

// DefaultTable returns a Table over the standard division seed.
func DefaultTable() Table {
	return NewTable(DefaultDivisions())
}
