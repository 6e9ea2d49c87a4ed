package xai

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var jsonBlockRE = regexp.MustCompile(`\{[\s\S]*\}`)

// rawAnalysis tolerates the probability arriving as a number or a string
// (possibly percent-suffixed).
type rawAnalysis struct {
	EstimatedProbability json.RawMessage `json:"estimated_probability"`
	Confidence           string          `json:"confidence"`
	Reasoning            string          `json:"reasoning"`
	KeyEvents            []string        `json:"key_events"`
	Risks                []string        `json:"risks"`
	Sources              []string        `json:"sources"`
}

// ParseAnalysis extracts the JSON block from a model response. When no valid
// JSON is present the whole content becomes low-confidence reasoning and the
// probability falls back to the current market price.
func ParseAnalysis(content string, currentPrice float64) *Analysis {
	raw := parseRaw(content)
	if raw == nil {
		return &Analysis{
			EstimatedProbability: clampProbability(currentPrice),
			Confidence:           "low",
			Reasoning:            content,
			KeyEvents:            []string{},
			Risks:                []string{},
			Sources:              []string{},
		}
	}

	analysis := &Analysis{
		EstimatedProbability: clampProbability(parseProbability(raw.EstimatedProbability, currentPrice)),
		Confidence:           raw.Confidence,
		Reasoning:            raw.Reasoning,
		KeyEvents:            raw.KeyEvents,
		Risks:                raw.Risks,
		Sources:              raw.Sources,
	}
	if analysis.Confidence == "" {
		analysis.Confidence = "medium"
	}
	if analysis.KeyEvents == nil {
		analysis.KeyEvents = []string{}
	}
	if analysis.Risks == nil {
		analysis.Risks = []string{}
	}
	if analysis.Sources == nil {
		analysis.Sources = []string{}
	}
	return analysis
}

func parseRaw(content string) *rawAnalysis {
	candidate := content
	if match := jsonBlockRE.FindString(content); match != "" {
		candidate = match
	}
	var raw rawAnalysis
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return nil
	}
	return &raw
}

func parseProbability(raw json.RawMessage, fallback float64) float64 {
	if len(raw) == 0 {
		return fallback
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return fallback
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return fallback
		}
		return v / 100
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}

func clampProbability(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
