package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Generated sections are decoded loosely. Scalars of any JSON type land in
// string fields, lists are decoded one element at a time and a lone value
// where a list is expected becomes a one-element list. Only a section whose
// top-level value has the wrong kind is rejected.

var errNotArray = errors.New("expected an array")

// looseString accepts a JSON string, number, bool or null. Objects and arrays
// are kept as their compact JSON text.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || isNull(data):
		*s = ""
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
	case data[0] == '{' || data[0] == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*s = looseString(buf.String())
	default:
		*s = looseString(data)
	}
	return nil
}

type looseStrings []string

func (l *looseStrings) UnmarshalJSON(data []byte) error {
	items, err := decodeList[looseString](data)
	if err != nil {
		return err
	}
	if items == nil {
		*l = nil
		return nil
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = string(item)
	}
	*l = out
	return nil
}

type tierList []PricingTier

func (l *tierList) UnmarshalJSON(data []byte) error {
	items, err := decodeList[PricingTier](data)
	*l = items
	return err
}

type competitorList []Competitor

func (l *competitorList) UnmarshalJSON(data []byte) error {
	items, err := decodeList[Competitor](data)
	*l = items
	return err
}

// decodeList decodes an array element by element, dropping elements that do
// not decode. Null yields nil.
func decodeList[T any](data []byte) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || isNull(data) {
		return nil, nil
	}
	if data[0] != '[' {
		var single T
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, err
		}
		return []T{single}, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (m *BusinessModel) UnmarshalJSON(data []byte) error {
	var v struct {
		RevenueStreams  looseStrings    `json:"revenueStreams"`
		PricingStrategy PricingStrategy `json:"pricingStrategy"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = BusinessModel{RevenueStreams: v.RevenueStreams, PricingStrategy: v.PricingStrategy}
	return nil
}

// A bare list is taken as the tiers themselves and a scalar as the name of a
// single tier.
func (p *PricingStrategy) UnmarshalJSON(data []byte) error {
	if !isObject(data) {
		tiers, err := decodeList[PricingTier](data)
		*p = PricingStrategy{Tiers: tiers}
		return err
	}
	var v struct {
		Tiers tierList `json:"tiers"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = PricingStrategy{Tiers: v.Tiers}
	return nil
}

func (t *PricingTier) UnmarshalJSON(data []byte) error {
	if !isObject(data) {
		var name looseString
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*t = PricingTier{Name: string(name)}
		return nil
	}
	var v struct {
		Name     looseString  `json:"name"`
		Price    looseString  `json:"price"`
		Features looseStrings `json:"features"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*t = PricingTier{Name: string(v.Name), Price: string(v.Price), Features: v.Features}
	return nil
}

func (m *MarketAnalysis) UnmarshalJSON(data []byte) error {
	var v struct {
		MarketSize    looseString  `json:"marketSize"`
		Trends        looseStrings `json:"trends"`
		Opportunities looseStrings `json:"opportunities"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = MarketAnalysis{MarketSize: string(v.MarketSize), Trends: v.Trends, Opportunities: v.Opportunities}
	return nil
}

func (s *SWOTAnalysis) UnmarshalJSON(data []byte) error {
	var v struct {
		Strengths     looseStrings `json:"strengths"`
		Weaknesses    looseStrings `json:"weaknesses"`
		Opportunities looseStrings `json:"opportunities"`
		Threats       looseStrings `json:"threats"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = SWOTAnalysis{
		Strengths:     v.Strengths,
		Weaknesses:    v.Weaknesses,
		Opportunities: v.Opportunities,
		Threats:       v.Threats,
	}
	return nil
}

func (c *CompetitorsAnalysis) UnmarshalJSON(data []byte) error {
	var v struct {
		MainCompetitors competitorList `json:"mainCompetitors"`
		Positioning     looseString    `json:"positioning"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = CompetitorsAnalysis{MainCompetitors: v.MainCompetitors, Positioning: string(v.Positioning)}
	return nil
}

func (c *Competitor) UnmarshalJSON(data []byte) error {
	if !isObject(data) {
		var name looseString
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*c = Competitor{Name: string(name)}
		return nil
	}
	var v struct {
		Name       looseString  `json:"name"`
		Strengths  looseStrings `json:"strengths"`
		Weaknesses looseStrings `json:"weaknesses"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Competitor{Name: string(v.Name), Strengths: v.Strengths, Weaknesses: v.Weaknesses}
	return nil
}

func (s *StrengthsWeaknesses) UnmarshalJSON(data []byte) error {
	var v struct {
		Strengths  looseStrings `json:"strengths"`
		Weaknesses looseStrings `json:"weaknesses"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = StrengthsWeaknesses{Strengths: v.Strengths, Weaknesses: v.Weaknesses}
	return nil
}

// A bare value is taken as the justification.
func (p *PlatformRecommendation) UnmarshalJSON(data []byte) error {
	if !isObject(data) {
		var justification looseString
		if err := json.Unmarshal(data, &justification); err != nil {
			return err
		}
		*p = PlatformRecommendation{Justification: string(justification)}
		return nil
	}
	var v struct {
		Justification looseString `json:"justification"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = PlatformRecommendation{Justification: string(v.Justification)}
	return nil
}

func (b *BoilerplateInstructions) UnmarshalJSON(data []byte) error {
	var v struct {
		Setup          looseString `json:"setup"`
		Backend        looseString `json:"backend"`
		Deployment     looseString `json:"deployment"`
		VersionControl looseString `json:"versionControl"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = BoilerplateInstructions{
		Setup:          string(v.Setup),
		Backend:        string(v.Backend),
		Deployment:     string(v.Deployment),
		VersionControl: string(v.VersionControl),
	}
	return nil
}

// requiredText reads a top-level string field that must be present and
// non-blank.
func requiredText(raw map[string]json.RawMessage, key string) (string, error) {
	value, ok := raw[key]
	if !ok || isNull(bytes.TrimSpace(value)) {
		return "", fmt.Errorf("%w: missing %s", ErrIncompleteResponse, key)
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return "", fmt.Errorf("%w: %s is not a string", ErrMalformedResponse, key)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: empty %s", ErrIncompleteResponse, key)
	}
	return s, nil
}

func isNull(data []byte) bool {
	return string(data) == "null"
}

func isObject(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}

func isArray(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '['
}
