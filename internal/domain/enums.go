package domain

// ItemCategory classifies what kind of construction item was extracted.
type ItemCategory string

const (
	CategoryMaterial  ItemCategory = "material"
	CategoryEquipment ItemCategory = "equipment"
	CategoryFixture   ItemCategory = "fixture"
	CategoryComponent ItemCategory = "component"
)

// ValidItemCategories is the closed set of extraction item categories.
var ValidItemCategories = map[ItemCategory]bool{
	CategoryMaterial:  true,
	CategoryEquipment: true,
	CategoryFixture:   true,
	CategoryComponent: true,
}

// RequirementKind classifies a detected requirement statement.
type RequirementKind string

const (
	KindSpecification RequirementKind = "specification"
	KindRequirement   RequirementKind = "requirement"
	KindCompliance    RequirementKind = "compliance"
	KindStandard      RequirementKind = "standard"
	KindProcedure     RequirementKind = "procedure"
	KindNote          RequirementKind = "note"
)

// Priority ranks how urgent a requirement is.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// IsCritical reports whether the priority counts toward the critical
// requirement total in the analysis summary.
func (p Priority) IsCritical() bool {
	return p == PriorityCritical || p == PriorityHigh
}

// ComplianceCategory classifies a compliance item by its regulatory source.
type ComplianceCategory string

const (
	ComplianceBuildingCode     ComplianceCategory = "building_code"
	ComplianceSafetyStandard   ComplianceCategory = "safety_standard"
	ComplianceDesignStandard   ComplianceCategory = "design_standard"
	ComplianceMaterialStandard ComplianceCategory = "material_standard"
	ComplianceProcedure        ComplianceCategory = "procedure"
)

// ComplianceLevel indicates how binding a compliance item is.
type ComplianceLevel string

const (
	ComplianceMandatory   ComplianceLevel = "mandatory"
	ComplianceRecommended ComplianceLevel = "recommended"
	ComplianceOptional    ComplianceLevel = "optional"
)

// RunStatus represents the lifecycle of an extraction run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// DocumentComplexity buckets a page by how many requirements it carries.
type DocumentComplexity string

const (
	ComplexityLow    DocumentComplexity = "low"
	ComplexityMedium DocumentComplexity = "medium"
	ComplexityHigh   DocumentComplexity = "high"
)

// ImplementationStatus tracks a requirement in the traceability matrix.
type ImplementationStatus string

const (
	ImplementationNotStarted ImplementationStatus = "not_started"
	ImplementationInProgress ImplementationStatus = "in_progress"
	ImplementationComplete   ImplementationStatus = "complete"
)
