package domain

import (
	"time"

	"github.com/google/uuid"
)

// Region is an axis-aligned bounding box in page-relative pixel units,
// origin top-left. Coordinates stay in this space through the whole
// pipeline; nothing normalizes them partway through.
type Region struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the region's area in square pixels.
func (r Region) Area() float64 {
	return r.Width * r.Height
}

// Union returns the smallest region covering both r and other.
func (r Region) Union(other Region) Region {
	minX := r.X
	if other.X < minX {
		minX = other.X
	}
	minY := r.Y
	if other.Y < minY {
		minY = other.Y
	}
	maxX := r.X + r.Width
	if ox := other.X + other.Width; ox > maxX {
		maxX = ox
	}
	maxY := r.Y + r.Height
	if oy := other.Y + other.Height; oy > maxY {
		maxY = oy
	}
	return Region{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// PositionedToken is a single OCR/text-layer fragment with its bounding box.
// Immutable once created by the geometry store.
type PositionedToken struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Page   int     `json:"page"`
}

// Box returns the token's bounding region.
func (t PositionedToken) Box() Region {
	return Region{X: t.X, Y: t.Y, Width: t.Width, Height: t.Height}
}

// TableCandidate is a provisional table inferred from token geometry.
type TableCandidate struct {
	Headers        []string   `json:"headers"`
	Rows           [][]string `json:"rows"`
	BoundingRegion Region     `json:"boundingRegion"`
	Confidence     float64    `json:"confidence"`
}

// ExtractionItem is a candidate construction item produced by the pattern
// extractor or a table read.
type ExtractionItem struct {
	ID             uuid.UUID    `json:"id"`
	RawName        string       `json:"rawName"`
	Category       ItemCategory `json:"category"`
	Quantity       string       `json:"quantity,omitempty"`
	Specification  string       `json:"specification,omitempty"`
	SourcePage     int          `json:"sourcePage"`
	BoundingRegion Region       `json:"boundingRegion"`
	Confidence     float64      `json:"confidence"`
	NeedsReview    bool         `json:"needsReview"`
}

// RequirementMetadata carries referenced codes, standards, and dependencies.
type RequirementMetadata struct {
	Codes        []string `json:"codes,omitempty"`
	Standards    []string `json:"standards,omitempty"`
	References   []string `json:"references,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// RequirementStatement is a technical requirement detected by stage 2 of the
// analysis pipeline. Immutable after creation; compliance items and clusters
// reference it by ID.
type RequirementStatement struct {
	ID         string              `json:"id"`
	Kind       RequirementKind     `json:"kind"`
	Priority   Priority            `json:"priority"`
	Discipline string              `json:"discipline,omitempty"`
	Content    string              `json:"content"`
	Context    string              `json:"context,omitempty"`
	Metadata   RequirementMetadata `json:"metadata"`
	Confidence float64             `json:"confidence"`
	SourcePage int                 `json:"sourcePage"`
}

// ComplianceItem maps requirements to a building code or standard.
// The relation is many-to-many by ID; compliance items own nothing.
type ComplianceItem struct {
	ID                    string             `json:"id"`
	Code                  string             `json:"code"`
	Description           string             `json:"description"`
	Category              ComplianceCategory `json:"category"`
	ComplianceLevel       ComplianceLevel    `json:"complianceLevel"`
	RelatedRequirementIDs []string           `json:"relatedRequirementIds"`
}

// TextCluster groups requirements by thematic similarity. Purely an index.
type TextCluster struct {
	ID                   string   `json:"id"`
	Theme                string   `json:"theme"`
	Confidence           float64  `json:"confidence"`
	MemberRequirementIDs []string `json:"memberRequirementIds"`
	RelationshipNotes    string   `json:"relationshipNotes,omitempty"`
}

// Section is one structural region of a page identified by stage 1.
type Section struct {
	Title            string `json:"title"`
	Type             string `json:"type"`
	Content          string `json:"content"`
	RequirementCount int    `json:"requirementCount"`
}

// DocumentStructure is the stage 1 output the later stages build on.
type DocumentStructure struct {
	Sections     []Section `json:"sections"`
	DocumentType string    `json:"documentType"`
}

// TraceabilityRow tracks one requirement's implementation state.
type TraceabilityRow struct {
	RequirementID        string               `json:"requirementId"`
	ImplementationStatus ImplementationStatus `json:"implementationStatus"`
	ChangeHistory        []string             `json:"changeHistory"`
}

// AnalysisSummary is derived purely from already-computed pipeline data.
type AnalysisSummary struct {
	DocumentComplexity   DocumentComplexity `json:"documentComplexity"`
	TotalRequirements    int                `json:"totalRequirements"`
	CriticalRequirements int                `json:"criticalRequirements"`
	ComplianceItemCount  int                `json:"complianceItemCount"`
	ClusterCount         int                `json:"clusterCount"`
	RecommendedActions   []string           `json:"recommendedActions"`
}

// Division is one entry of the CSI MasterFormat-style taxonomy table.
type Division struct {
	ID          int    `db:"id" json:"id"`
	Code        string `db:"code" json:"code"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Color       string `db:"color" json:"color"`
	SortOrder   int    `db:"sort_order" json:"sort_order"`
	IsActive    bool   `db:"is_active" json:"is_active"`
}

// ClassifiedItem wraps an extraction item with its assigned division,
// annotation coordinates, and callout identity. One per page occurrence.
type ClassifiedItem struct {
	Item                  ExtractionItem `json:"item"`
	DivisionCode          string         `json:"divisionCode"`
	DivisionName          string         `json:"divisionName"`
	Color                 string         `json:"color"`
	AnnotationCoordinates Region         `json:"annotationCoordinates"`
	CalloutID             string         `json:"calloutId"`
	Rationale             string         `json:"rationale,omitempty"`
	Confidence            float64        `json:"confidence"`
}

// Occurrence is one page-level appearance of a cross-referenced item.
type Occurrence struct {
	Page             int       `json:"page"`
	ClassifiedItemID uuid.UUID `json:"classifiedItemId"`
}

// CrossReference links occurrences of the same logical item across pages.
// It always carries at least two occurrences; single-occurrence items never
// get one. Occurrences remain individually addressable; this is an index,
// not a merge.
type CrossReference struct {
	CanonicalName string       `json:"canonicalName"`
	Occurrences   []Occurrence `json:"occurrences"`
}

// DivisionCount is one row of the consolidated division breakdown.
type DivisionCount struct {
	DivisionCode string `json:"divisionCode"`
	DivisionName string `json:"divisionName"`
	UniqueItems  int    `json:"uniqueItems"`
	Pages        []int  `json:"pages"`
}

// PageBundle is the JSON-serializable per-page output consumed downstream.
type PageBundle struct {
	Page            int                    `json:"page"`
	Tables          []TableCandidate       `json:"tables"`
	Items           []ClassifiedItem       `json:"items"`
	LowConfidence   []ClassifiedItem       `json:"lowConfidenceItems,omitempty"`
	Requirements    []RequirementStatement `json:"requirements"`
	ComplianceItems []ComplianceItem       `json:"complianceItems"`
	Clusters        []TextCluster          `json:"clusters"`
	Traceability    []TraceabilityRow      `json:"traceability,omitempty"`
	Summary         AnalysisSummary        `json:"summary"`
}

// DrawingResult aggregates all page bundles of a run plus the consolidated
// cross-page view.
type DrawingResult struct {
	RunID             uuid.UUID        `json:"runId"`
	Pages             []PageBundle     `json:"pages"`
	CrossReferences   []CrossReference `json:"crossReferences"`
	UniqueItems       []ClassifiedItem `json:"uniqueItems"`
	DivisionBreakdown []DivisionCount  `json:"divisionBreakdown"`
}

// ExtractionRun is the persisted record of one drawing-level extraction.
type ExtractionRun struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	DrawingID  uuid.UUID  `db:"drawing_id" json:"drawing_id"`
	Status     RunStatus  `db:"status" json:"status"`
	PageCount  int        `db:"page_count" json:"page_count"`
	ItemCount  int        `db:"item_count" json:"item_count"`
	Error      string     `db:"error" json:"error,omitempty"`
	StartedAt  time.Time  `db:"started_at" json:"started_at"`
	FinishedAt *time.Time `db:"finished_at" json:"finished_at,omitempty"`
}

// StoredItem is the persisted row for one classified item occurrence.
type StoredItem struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	RunID        uuid.UUID    `db:"run_id" json:"run_id"`
	Page         int          `db:"page" json:"page"`
	Name         string       `db:"name" json:"name"`
	Category     ItemCategory `db:"category" json:"category"`
	DivisionCode string       `db:"division_code" json:"division_code"`
	CalloutID    string       `db:"callout_id" json:"callout_id"`
	Confidence   float64      `db:"confidence" json:"confidence"`
	NeedsReview  bool         `db:"needs_review" json:"needs_review"`
	RegionX      float64      `db:"region_x" json:"region_x"`
	RegionY      float64      `db:"region_y" json:"region_y"`
	RegionW      float64      `db:"region_w" json:"region_w"`
	RegionH      float64      `db:"region_h" json:"region_h"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}
