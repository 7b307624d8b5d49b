package models

import (
	"encoding/json"
	"fmt"
)

// Analysis is the structured business analysis generated for a project.
// Every slice is kept non-nil so the stored document never carries null arrays.
type Analysis struct {
	Name                    string                  `json:"name"`
	Description             string                  `json:"description"`
	BusinessModel           BusinessModel           `json:"businessModel"`
	MarketAnalysis          MarketAnalysis          `json:"marketAnalysis"`
	SWOTAnalysis            SWOTAnalysis            `json:"swotAnalysis"`
	CompetitorsAnalysis     CompetitorsAnalysis     `json:"competitorsAnalysis"`
	KeyFeatures             []string                `json:"keyFeatures"`
	StrengthsWeaknesses     StrengthsWeaknesses     `json:"strengthsWeaknesses"`
	RecommendedPlatforms    RecommendedPlatforms    `json:"recommendedPlatforms"`
	BoilerplateInstructions BoilerplateInstructions `json:"boilerplateInstructions"`
}

type BusinessModel struct {
	RevenueStreams  []string        `json:"revenueStreams"`
	PricingStrategy PricingStrategy `json:"pricingStrategy"`
}

type PricingStrategy struct {
	Tiers []PricingTier `json:"tiers"`
}

type PricingTier struct {
	Name     string   `json:"name"`
	Price    string   `json:"price"`
	Features []string `json:"features"`
}

type MarketAnalysis struct {
	MarketSize    string   `json:"marketSize"`
	Trends        []string `json:"trends"`
	Opportunities []string `json:"opportunities"`
}

type SWOTAnalysis struct {
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Threats       []string `json:"threats"`
}

type CompetitorsAnalysis struct {
	MainCompetitors []Competitor `json:"mainCompetitors"`
	Positioning     string       `json:"positioning"`
}

type Competitor struct {
	Name       string   `json:"name"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

type StrengthsWeaknesses struct {
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

type RecommendedPlatforms struct {
	Web     PlatformRecommendation `json:"web"`
	Mobile  PlatformRecommendation `json:"mobile"`
	Desktop PlatformRecommendation `json:"desktop"`
}

type PlatformRecommendation struct {
	Justification string `json:"justification"`
}

type BoilerplateInstructions struct {
	Setup          string `json:"setup"`
	Backend        string `json:"backend"`
	Deployment     string `json:"deployment"`
	VersionControl string `json:"versionControl"`
}

// SectionKey names a regenerable top-level key of the analysis
type SectionKey string

const (
	SectionBusinessModel           SectionKey = "businessModel"
	SectionMarketAnalysis          SectionKey = "marketAnalysis"
	SectionSWOTAnalysis            SectionKey = "swotAnalysis"
	SectionCompetitorsAnalysis     SectionKey = "competitorsAnalysis"
	SectionKeyFeatures             SectionKey = "keyFeatures"
	SectionStrengthsWeaknesses     SectionKey = "strengthsWeaknesses"
	SectionRecommendedPlatforms    SectionKey = "recommendedPlatforms"
	SectionBoilerplateInstructions SectionKey = "boilerplateInstructions"
)

// SectionKeys lists the sections in display order
var SectionKeys = []SectionKey{
	SectionBusinessModel,
	SectionMarketAnalysis,
	SectionSWOTAnalysis,
	SectionCompetitorsAnalysis,
	SectionKeyFeatures,
	SectionStrengthsWeaknesses,
	SectionRecommendedPlatforms,
	SectionBoilerplateInstructions,
}

// ParseSectionKey converts user input into a SectionKey
func ParseSectionKey(s string) (SectionKey, error) {
	for _, key := range SectionKeys {
		if string(key) == s {
			return key, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSection, s)
}

// IsArray reports whether the section is a JSON array rather than an object
func (k SectionKey) IsArray() bool {
	return k == SectionKeyFeatures
}

// NewAnalysisSkeleton returns an analysis with every field present but empty
func NewAnalysisSkeleton(name, description string) *Analysis {
	a := &Analysis{
		Name:        name,
		Description: description,
	}
	a.FillEmpty()
	return a
}

// FillEmpty replaces nil slices with empty ones throughout the document
func (a *Analysis) FillEmpty() {
	a.BusinessModel.RevenueStreams = orEmpty(a.BusinessModel.RevenueStreams)
	if a.BusinessModel.PricingStrategy.Tiers == nil {
		a.BusinessModel.PricingStrategy.Tiers = []PricingTier{}
	}
	for i := range a.BusinessModel.PricingStrategy.Tiers {
		tier := &a.BusinessModel.PricingStrategy.Tiers[i]
		tier.Features = orEmpty(tier.Features)
	}

	a.MarketAnalysis.Trends = orEmpty(a.MarketAnalysis.Trends)
	a.MarketAnalysis.Opportunities = orEmpty(a.MarketAnalysis.Opportunities)

	a.SWOTAnalysis.Strengths = orEmpty(a.SWOTAnalysis.Strengths)
	a.SWOTAnalysis.Weaknesses = orEmpty(a.SWOTAnalysis.Weaknesses)
	a.SWOTAnalysis.Opportunities = orEmpty(a.SWOTAnalysis.Opportunities)
	a.SWOTAnalysis.Threats = orEmpty(a.SWOTAnalysis.Threats)

	if a.CompetitorsAnalysis.MainCompetitors == nil {
		a.CompetitorsAnalysis.MainCompetitors = []Competitor{}
	}
	for i := range a.CompetitorsAnalysis.MainCompetitors {
		c := &a.CompetitorsAnalysis.MainCompetitors[i]
		c.Strengths = orEmpty(c.Strengths)
		c.Weaknesses = orEmpty(c.Weaknesses)
	}

	a.KeyFeatures = orEmpty(a.KeyFeatures)
	a.StrengthsWeaknesses.Strengths = orEmpty(a.StrengthsWeaknesses.Strengths)
	a.StrengthsWeaknesses.Weaknesses = orEmpty(a.StrengthsWeaknesses.Weaknesses)
}

// Section returns the value stored under key
func (a *Analysis) Section(key SectionKey) (any, error) {
	switch key {
	case SectionBusinessModel:
		return a.BusinessModel, nil
	case SectionMarketAnalysis:
		return a.MarketAnalysis, nil
	case SectionSWOTAnalysis:
		return a.SWOTAnalysis, nil
	case SectionCompetitorsAnalysis:
		return a.CompetitorsAnalysis, nil
	case SectionKeyFeatures:
		return a.KeyFeatures, nil
	case SectionStrengthsWeaknesses:
		return a.StrengthsWeaknesses, nil
	case SectionRecommendedPlatforms:
		return a.RecommendedPlatforms, nil
	case SectionBoilerplateInstructions:
		return a.BoilerplateInstructions, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSection, key)
}

// SetSection decodes raw into the section named by key, leaving every other
// section untouched. On a decode error the analysis is not modified.
func (a *Analysis) SetSection(key SectionKey, raw json.RawMessage) error {
	var err error
	switch key {
	case SectionBusinessModel:
		err = decodeSection(raw, &a.BusinessModel)
	case SectionMarketAnalysis:
		err = decodeSection(raw, &a.MarketAnalysis)
	case SectionSWOTAnalysis:
		err = decodeSection(raw, &a.SWOTAnalysis)
	case SectionCompetitorsAnalysis:
		err = decodeSection(raw, &a.CompetitorsAnalysis)
	case SectionKeyFeatures:
		if !isArray(raw) {
			err = errNotArray
			break
		}
		err = decodeSection(raw, (*looseStrings)(&a.KeyFeatures))
	case SectionStrengthsWeaknesses:
		err = decodeSection(raw, &a.StrengthsWeaknesses)
	case SectionRecommendedPlatforms:
		err = decodeSection(raw, &a.RecommendedPlatforms)
	case SectionBoilerplateInstructions:
		err = decodeSection(raw, &a.BoilerplateInstructions)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSection, key)
	}
	if err != nil {
		return fmt.Errorf("%w: section %s: %v", ErrMalformedResponse, key, err)
	}
	a.FillEmpty()
	return nil
}

// DecodeAnalysis parses a generated analysis document. Only name and
// description are required. Nested values are decoded loosely; a section whose
// top-level value has the wrong kind is left empty and reported in skipped
// instead of failing the whole document.
func DecodeAnalysis(data []byte) (analysis *Analysis, skipped []SectionKey, err error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	name, err := requiredText(raw, "name")
	if err != nil {
		return nil, nil, err
	}
	description, err := requiredText(raw, "description")
	if err != nil {
		return nil, nil, err
	}

	analysis = NewAnalysisSkeleton(name, description)
	for _, key := range SectionKeys {
		value, ok := raw[string(key)]
		if !ok || string(value) == "null" {
			continue
		}
		if err := analysis.SetSection(key, value); err != nil {
			skipped = append(skipped, key)
		}
	}
	return analysis, skipped, nil
}

func decodeSection[T any](raw json.RawMessage, dst *T) error {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = v
	return nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
