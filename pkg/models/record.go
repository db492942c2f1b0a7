package models

import (
	"sort"
	"strings"
)

// SourceSchema tags a TrainingRecord with the corpus document it came from.
type SourceSchema string

const (
	SourceSymptomDisease   SourceSchema = "symptom_disease"
	SourceFeverCases       SourceSchema = "fever_cases"
	SourceSeverityWeights  SourceSchema = "severity_weights"
	SourceRiskAssessment   SourceSchema = "risk_assessment"
	SourceTriageProtocol   SourceSchema = "triage_protocol"
	SourceEmergencyMarkers SourceSchema = "emergency_markers"
	SourceConsultations    SourceSchema = "consultations"
)

// Target identifies one of the three classifiers a record can train.
type Target string

const (
	TargetDisease   Target = "disease"
	TargetSeverity  Target = "severity"
	TargetEmergency Target = "emergency"
)

// TrainingRecord is one normalized row of corpus data. Symptoms is never
// empty. A record carries only the labels its source document provides:
// Disease may be "", Severity may be 0 (unset), Emergency may be nil.
type TrainingRecord struct {
	Symptoms  []string     `json:"symptoms"`
	Source    SourceSchema `json:"source"`
	Disease   string       `json:"disease,omitempty"`
	Severity  int          `json:"severity,omitempty"`
	Emergency *bool        `json:"emergency,omitempty"`
}

// HasLabel reports whether the record carries the label for the given target.
func (r *TrainingRecord) HasLabel(target Target) bool {
	switch target {
	case TargetDisease:
		return r.Disease != ""
	case TargetSeverity:
		return r.Severity >= 1 && r.Severity <= 10
	case TargetEmergency:
		return r.Emergency != nil
	}
	return false
}

// NormalizeToken lowercases a symptom or label and collapses whitespace
// and hyphens to underscores, so "Body Ache" and "body_ache" encode the same.
func NormalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), "_")
}

// NormalizeSymptoms normalizes, deduplicates and sorts a symptom list.
// The sorted order makes record deduplication and encoding order-independent.
func NormalizeSymptoms(symptoms []string) []string {
	seen := make(map[string]struct{}, len(symptoms))
	out := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		tok := NormalizeToken(s)
		if tok == "" {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}
