package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"hilyte/internal/domain"
)

const systemPrompt = `You are an advanced NLP system specialized in construction document analysis. You analyze scanned construction drawing text and return structured findings. Respond with JSON only, no prose.`

const structurePrompt = `Analyze the structure of this construction document text. Identify its distinct sections (schedules, general notes, specifications, legends, title block content) and the overall document type.

Return JSON:
{
  "sections": [
    {
      "title": "section title",
      "type": "schedule|notes|specification|legend|general",
      "content": "the section's text",
      "requirementCount": 0
    }
  ],
  "documentType": "drawing|specification|schedule|detail|mixed"
}

Document text:
%s`

const requirementsPrompt = `Find all technical requirements, specifications, and standards in this construction document text. Focus on construction-specific terminology and industry standards.

Return JSON:
{
  "requirements": [
    {
      "id": "unique_id",
      "kind": "specification|requirement|compliance|standard|procedure|note",
      "priority": "critical|high|medium|low",
      "discipline": "architectural|structural|mechanical|electrical|civil",
      "content": "requirement text",
      "context": "surrounding context",
      "metadata": {
        "codes": [],
        "standards": [],
        "references": [],
        "dependencies": []
      },
      "confidence": 0.8
    }
  ]
}

Document type: %s

Document text:
%s`

const compliancePrompt = `Map these construction document requirements to building codes, safety requirements, and regulatory standards.

Return JSON:
{
  "complianceItems": [
    {
      "id": "unique_id",
      "code": "building code or standard reference",
      "description": "what must be complied with",
      "category": "building_code|safety_standard|design_standard|material_standard|procedure",
      "complianceLevel": "mandatory|recommended|optional",
      "relatedRequirementIds": ["requirement ids this maps to"]
    }
  ]
}

Requirements:
%s`

const clusteringPrompt = `Group these construction document requirements into thematic clusters. Each cluster should collect requirements that share a discipline, system, or subject.

Return JSON:
{
  "clusters": [
    {
      "id": "unique_id",
      "theme": "cluster theme",
      "confidence": 0.8,
      "memberRequirementIds": ["requirement ids in this cluster"],
      "relationshipNotes": "how the members relate"
    }
  ]
}

Requirements:
%s`

// maxSummaryContentLen bounds each requirement's content in the compliance
// prompt to keep the request within token limits.
const maxSummaryContentLen = 200

// summarizeRequirements renders requirements as a compact numbered list with
// content truncated for prompt size.
func summarizeRequirements(reqs []domain.RequirementStatement) string {
	var b strings.Builder
	for _, r := range reqs {
		fmt.Fprintf(&b, "- [%s] (%s, %s) %s\n", r.ID, r.Kind, r.Priority, truncateContent(r.Content))
	}
	return b.String()
}

// truncateContent caps content at maxSummaryContentLen bytes, backing up to a
// rune boundary so a multi-byte character is never split.
func truncateContent(content string) string {
	if len(content) <= maxSummaryContentLen {
		return content
	}
	cut := maxSummaryContentLen
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}

// renderRequirements renders requirements in full for the clustering prompt.
func renderRequirements(reqs []domain.RequirementStatement) string {
	var b strings.Builder
	for _, r := range reqs {
		fmt.Fprintf(&b, "- [%s] (%s, %s, %s) %s\n", r.ID, r.Kind, r.Priority, r.Discipline, r.Content)
	}
	return b.String()
}
