// Package pipeline runs the four-stage document analysis over one page's raw
// text: structure, requirement detection, compliance mapping, and thematic
// clustering. Each stage delegates semantics to the injected classifier and
// degrades to its own fallback on failure; a failed stage never aborts the
// later stages.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"hilyte/internal/classifier"
	"hilyte/internal/domain"
	"hilyte/internal/port"
)

const (
	stageMaxTokens = 3000

	fallbackSectionTitle   = "Document Content"
	fallbackSectionType    = "general"
	fallbackSectionContent = "Content could not be analyzed"
	fallbackDocumentType   = "mixed"
)

// Result is the full output of an analysis run for one page.
type Result struct {
	Structure       domain.DocumentStructure
	Requirements    []domain.RequirementStatement
	ComplianceItems []domain.ComplianceItem
	Clusters        []domain.TextCluster
	Traceability    []domain.TraceabilityRow
	Summary         domain.AnalysisSummary
}

// Pipeline orchestrates the four analysis stages.
type Pipeline struct {
	classifier port.Classifier
}

// New creates a Pipeline delegating to the given classifier.
func New(c port.Classifier) *Pipeline {
	return &Pipeline{classifier: c}
}

// Run executes all four stages in order against one page's raw text. The only
// error it returns is context cancellation, checked between stages; every
// classifier failure degrades to the stage's fallback instead.
func (p *Pipeline) Run(ctx context.Context, page int, text string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	structure := p.analyzeStructure(ctx, text)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	requirements := p.detectRequirements(ctx, page, text, structure)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	complianceItems := p.mapCompliance(ctx, requirements)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clusters := p.clusterRequirements(ctx, requirements)

	traceability := buildTraceability(requirements)
	summary := buildSummary(requirements, complianceItems, clusters)

	return &Result{
		Structure:       structure,
		Requirements:    requirements,
		ComplianceItems: complianceItems,
		Clusters:        clusters,
		Traceability:    traceability,
		Summary:         summary,
	}, nil
}

func (p *Pipeline) classify(ctx context.Context, userPrompt string) (string, error) {
	out, err := p.classifier.Classify(ctx, port.ClassifyInput{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    stageMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

// analyzeStructure is stage 1. It always produces a structure; on any failure
// it returns the fallback section so the later stages have something to work
// against.
func (p *Pipeline) analyzeStructure(ctx context.Context, text string) domain.DocumentStructure {
	raw, err := p.classify(ctx, fmt.Sprintf(structurePrompt, text))
	if err != nil {
		log.Printf("pipeline: structure analysis failed: %v", err)
		return fallbackStructure()
	}

	var wire struct {
		Sections []struct {
			Title            string `json:"title"`
			Type             string `json:"type"`
			Content          string `json:"content"`
			RequirementCount int    `json:"requirementCount"`
		} `json:"sections"`
		DocumentType string `json:"documentType"`
	}
	if kind, err := classifier.Decode(raw, &wire); err != nil || kind == classifier.DecodeFallback {
		log.Printf("pipeline: structure response unparsable: %v", err)
		return fallbackStructure()
	}
	if len(wire.Sections) == 0 {
		return fallbackStructure()
	}

	structure := domain.DocumentStructure{DocumentType: wire.DocumentType}
	if structure.DocumentType == "" {
		structure.DocumentType = fallbackDocumentType
	}
	for _, s := range wire.Sections {
		structure.Sections = append(structure.Sections, domain.Section{
			Title:            s.Title,
			Type:             s.Type,
			Content:          s.Content,
			RequirementCount: s.RequirementCount,
		})
	}
	return structure
}

func fallbackStructure() domain.DocumentStructure {
	return domain.DocumentStructure{
		Sections: []domain.Section{{
			Title:            fallbackSectionTitle,
			Type:             fallbackSectionType,
			Content:          fallbackSectionContent,
			RequirementCount: 0,
		}},
		DocumentType: fallbackDocumentType,
	}
}

// detectRequirements is stage 2. On failure it returns an empty slice, which
// naturally short-circuits stages 3 and 4.
func (p *Pipeline) detectRequirements(ctx context.Context, page int, text string, structure domain.DocumentStructure) []domain.RequirementStatement {
	raw, err := p.classify(ctx, fmt.Sprintf(requirementsPrompt, structure.DocumentType, text))
	if err != nil {
		log.Printf("pipeline: requirement detection failed: %v", err)
		return nil
	}

	var wire struct {
		Requirements []struct {
			ID         string                     `json:"id"`
			Kind       string                     `json:"kind"`
			Priority   string                     `json:"priority"`
			Discipline string                     `json:"discipline"`
			Content    string                     `json:"content"`
			Context    string                     `json:"context"`
			Metadata   domain.RequirementMetadata `json:"metadata"`
			Confidence float64                    `json:"confidence"`
		} `json:"requirements"`
	}
	if kind, err := classifier.Decode(raw, &wire); err != nil || kind == classifier.DecodeFallback {
		log.Printf("pipeline: requirements response unparsable: %v", err)
		return nil
	}

	var reqs []domain.RequirementStatement
	for i, w := range wire.Requirements {
		if w.Content == "" {
			continue
		}
		id := w.ID
		if id == "" {
			id = fmt.Sprintf("req-%d-%d", page, i+1)
		}
		reqs = append(reqs, domain.RequirementStatement{
			ID:         id,
			Kind:       normalizeKind(w.Kind),
			Priority:   normalizePriority(w.Priority),
			Discipline: w.Discipline,
			Content:    w.Content,
			Context:    w.Context,
			Metadata:   w.Metadata,
			Confidence: clamp01(w.Confidence),
			SourcePage: page,
		})
	}
	return reqs
}

// mapCompliance is stage 3. Skipped entirely when there are no requirements.
func (p *Pipeline) mapCompliance(ctx context.Context, reqs []domain.RequirementStatement) []domain.ComplianceItem {
	if len(reqs) == 0 {
		return nil
	}

	raw, err := p.classify(ctx, fmt.Sprintf(compliancePrompt, summarizeRequirements(reqs)))
	if err != nil {
		log.Printf("pipeline: compliance mapping failed: %v", err)
		return nil
	}

	var wire struct {
		ComplianceItems []struct {
			ID                    string   `json:"id"`
			Code                  string   `json:"code"`
			Description           string   `json:"description"`
			Category              string   `json:"category"`
			ComplianceLevel       string   `json:"complianceLevel"`
			RelatedRequirementIDs []string `json:"relatedRequirementIds"`
		} `json:"complianceItems"`
	}
	if kind, err := classifier.Decode(raw, &wire); err != nil || kind == classifier.DecodeFallback {
		log.Printf("pipeline: compliance response unparsable: %v", err)
		return nil
	}

	known := make(map[string]bool, len(reqs))
	for _, r := range reqs {
		known[r.ID] = true
	}

	var items []domain.ComplianceItem
	for i, w := range wire.ComplianceItems {
		if w.Code == "" && w.Description == "" {
			continue
		}
		id := w.ID
		if id == "" {
			id = fmt.Sprintf("comp-%d", i+1)
		}
		// Drop references to requirement IDs the classifier invented.
		var related []string
		for _, rid := range w.RelatedRequirementIDs {
			if known[rid] {
				related = append(related, rid)
			}
		}
		items = append(items, domain.ComplianceItem{
			ID:                    id,
			Code:                  w.Code,
			Description:           w.Description,
			Category:              normalizeComplianceCategory(w.Category),
			ComplianceLevel:       normalizeComplianceLevel(w.ComplianceLevel),
			RelatedRequirementIDs: related,
		})
	}
	return items
}

// clusterRequirements is stage 4. Same empty-input short-circuit as stage 3.
func (p *Pipeline) clusterRequirements(ctx context.Context, reqs []domain.RequirementStatement) []domain.TextCluster {
	if len(reqs) == 0 {
		return nil
	}

	raw, err := p.classify(ctx, fmt.Sprintf(clusteringPrompt, renderRequirements(reqs)))
	if err != nil {
		log.Printf("pipeline: clustering failed: %v", err)
		return nil
	}

	var wire struct {
		Clusters []struct {
			ID                   string   `json:"id"`
			Theme                string   `json:"theme"`
			Confidence           float64  `json:"confidence"`
			MemberRequirementIDs []string `json:"memberRequirementIds"`
			RelationshipNotes    string   `json:"relationshipNotes"`
		} `json:"clusters"`
	}
	if kind, err := classifier.Decode(raw, &wire); err != nil || kind == classifier.DecodeFallback {
		log.Printf("pipeline: clustering response unparsable: %v", err)
		return nil
	}

	known := make(map[string]bool, len(reqs))
	for _, r := range reqs {
		known[r.ID] = true
	}

	var clusters []domain.TextCluster
	for i, w := range wire.Clusters {
		if w.Theme == "" {
			continue
		}
		id := w.ID
		if id == "" {
			id = fmt.Sprintf("cluster-%d", i+1)
		}
		var members []string
		for _, rid := range w.MemberRequirementIDs {
			if known[rid] {
				members = append(members, rid)
			}
		}
		clusters = append(clusters, domain.TextCluster{
			ID:                   id,
			Theme:                w.Theme,
			Confidence:           clamp01(w.Confidence),
			MemberRequirementIDs: members,
			RelationshipNotes:    w.RelationshipNotes,
		})
	}
	return clusters
}

// buildTraceability derives the traceability matrix from already-computed
// data. No external calls.
func buildTraceability(reqs []domain.RequirementStatement) []domain.TraceabilityRow {
	rows := make([]domain.TraceabilityRow, 0, len(reqs))
	for _, r := range reqs {
		rows = append(rows, domain.TraceabilityRow{
			RequirementID:        r.ID,
			ImplementationStatus: domain.ImplementationNotStarted,
			ChangeHistory:        []string{},
		})
	}
	return rows
}

// buildSummary computes the page summary from the stage outputs.
func buildSummary(reqs []domain.RequirementStatement, items []domain.ComplianceItem, clusters []domain.TextCluster) domain.AnalysisSummary {
	complexity := domain.ComplexityLow
	switch {
	case len(reqs) > 20:
		complexity = domain.ComplexityHigh
	case len(reqs) > 10:
		complexity = domain.ComplexityMedium
	}

	critical := 0
	for _, r := range reqs {
		if r.Priority.IsCritical() {
			critical++
		}
	}

	var actions []string
	if critical > 0 {
		actions = append(actions, fmt.Sprintf("Review %d critical/high priority requirements before proceeding", critical))
	}
	if len(items) > 0 {
		actions = append(actions, fmt.Sprintf("Verify compliance against %d identified codes and standards", len(items)))
	}
	if len(clusters) > 5 {
		actions = append(actions, "Consider reorganizing requirements by thematic cluster for review")
	}

	return domain.AnalysisSummary{
		DocumentComplexity:   complexity,
		TotalRequirements:    len(reqs),
		CriticalRequirements: critical,
		ComplianceItemCount:  len(items),
		ClusterCount:         len(clusters),
		RecommendedActions:   actions,
	}
}

func normalizeKind(s string) domain.RequirementKind {
	switch domain.RequirementKind(s) {
	case domain.KindSpecification, domain.KindRequirement, domain.KindCompliance,
		domain.KindStandard, domain.KindProcedure, domain.KindNote:
		return domain.RequirementKind(s)
	}
	return domain.KindNote
}

func normalizePriority(s string) domain.Priority {
	switch domain.Priority(s) {
	case domain.PriorityCritical, domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow:
		return domain.Priority(s)
	}
	return domain.PriorityMedium
}

func normalizeComplianceCategory(s string) domain.ComplianceCategory {
	switch domain.ComplianceCategory(s) {
	case domain.ComplianceBuildingCode, domain.ComplianceSafetyStandard,
		domain.ComplianceDesignStandard, domain.ComplianceMaterialStandard,
		domain.ComplianceProcedure:
		return domain.ComplianceCategory(s)
	}
	return domain.ComplianceBuildingCode
}

func normalizeComplianceLevel(s string) domain.ComplianceLevel {
	switch domain.ComplianceLevel(s) {
	case domain.ComplianceMandatory, domain.ComplianceRecommended, domain.ComplianceOptional:
		return domain.ComplianceLevel(s)
	}
	return domain.ComplianceRecommended
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
