package services

import (
	"fmt"
	"strings"

	"github.com/alimgiray/bizscope/internal/models"
)

const analysisSystemPrompt = "You are an expert business analyst. Provide structured, actionable analyses as pure JSON."

const sectionSystemPrompt = "You are an expert business analyst. You must regenerate one specific section while keeping exactly the same JSON structure."

const analysisPromptTemplate = `Analyze this project and provide a complete structured analysis in JSON.

Project name: %s
Description: %s

Generate exactly this JSON structure (keep the keys and types):

{
  "name": "exact project name",
  "description": "exact project description",
  "businessModel": %s,
  "marketAnalysis": %s,
  "swotAnalysis": %s,
  "competitorsAnalysis": %s,
  "keyFeatures": %s,
  "strengthsWeaknesses": %s,
  "recommendedPlatforms": %s,
  "boilerplateInstructions": %s
}

Be concise but complete. Return only valid JSON.
`

const sectionPromptTemplate = `Regenerate one section of the analysis for this project.

Project name: %s
Original description: %s

%s
IMPORTANT:
- Follow EXACTLY this JSON structure
- Every sentence must start with a capital letter
- Be concise but complete
- Return only the JSON for this section, nothing else
`

// sectionShapes holds the expected JSON shape of every regenerable section
var sectionShapes = map[models.SectionKey]string{
	models.SectionBusinessModel: `{
  "revenueStreams": ["stream1", "stream2", "stream3"],
  "pricingStrategy": {
    "tiers": [
      {
        "name": "Plan name",
        "price": "Price (e.g. $29 per month)",
        "features": ["feature1", "feature2"]
      }
    ]
  }
}`,
	models.SectionMarketAnalysis: `{
  "marketSize": "Market size with figures",
  "trends": ["trend1", "trend2", "trend3"],
  "opportunities": ["opportunity1", "opportunity2"]
}`,
	models.SectionSWOTAnalysis: `{
  "strengths": ["strength1", "strength2", "strength3"],
  "weaknesses": ["weakness1", "weakness2"],
  "opportunities": ["opportunity1", "opportunity2", "opportunity3"],
  "threats": ["threat1", "threat2", "threat3"]
}`,
	models.SectionCompetitorsAnalysis: `{
  "mainCompetitors": [
    {
      "name": "Competitor name",
      "strengths": ["strength1", "strength2"],
      "weaknesses": ["weakness1", "weakness2"]
    }
  ],
  "positioning": "Strategic positioning of the project"
}`,
	models.SectionKeyFeatures: `[
  "Key feature 1",
  "Key feature 2",
  "Key feature 3",
  "Key feature 4"
]`,
	models.SectionStrengthsWeaknesses: `{
  "strengths": ["Product strength1", "Product strength2"],
  "weaknesses": ["Product weakness1", "Product weakness2"]
}`,
	models.SectionRecommendedPlatforms: `{
  "web": {"justification": "Why web"},
  "mobile": {"justification": "Why mobile"},
  "desktop": {"justification": "Why desktop"}
}`,
	models.SectionBoilerplateInstructions: `{
  "setup": "Setup instructions",
  "backend": "Backend instructions",
  "deployment": "Deployment instructions",
  "versionControl": "Version control instructions"
}`,
}

// SectionShape returns the JSON shape template for key
func SectionShape(key models.SectionKey) (string, error) {
	shape, ok := sectionShapes[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownSection, key)
	}
	return shape, nil
}

// BuildAnalysisPrompt embeds name and description into the full analysis template
func BuildAnalysisPrompt(name, description string) string {
	shapes := make([]any, 0, len(models.SectionKeys)+2)
	shapes = append(shapes, name, description)
	for _, key := range models.SectionKeys {
		shapes = append(shapes, indent(sectionShapes[key], "  "))
	}
	return fmt.Sprintf(analysisPromptTemplate, shapes...)
}

// BuildSectionPrompt returns the shape-and-hint block for one section.
// Unknown sections are an error, never an empty template.
func BuildSectionPrompt(key models.SectionKey, hint string) (string, error) {
	shape, err := SectionShape(key)
	if err != nil {
		return "", err
	}
	hint = strings.TrimSpace(hint)
	if hint == "" {
		hint = "Improve this section."
	}
	return fmt.Sprintf("Section to regenerate: %s\nUser instructions: %s\n\nExpected JSON structure for this section:\n%s\n", key, hint, shape), nil
}

func buildSectionUserPrompt(analysis *models.Analysis, key models.SectionKey, hint string) (string, error) {
	block, err := BuildSectionPrompt(key, hint)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(sectionPromptTemplate, analysis.Name, analysis.Description, block), nil
}

// indent prefixes every line after the first so nested shapes line up in the template
func indent(s, prefix string) string {
	return strings.ReplaceAll(s, "\n", "\n"+prefix)
}
