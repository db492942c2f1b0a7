package models

import "context"

// EmergencyEstimate is a rule-based emergency judgment with the markers
// that triggered it.
type EmergencyEstimate struct {
	Emergency bool     `json:"emergency"`
	Reasons   []string `json:"reasons,omitempty"`
}

// KnowledgeBase is the rule-based collaborator the decision engine falls
// back to when a classifier artifact is absent. The boolean return reports
// whether the knowledge base had any signal for the input; false means the
// engine must mark the field indeterminate rather than fabricate a value.
type KnowledgeBase interface {
	// DiseasesForSymptoms scores candidate diseases by symptom overlap,
	// best first, scores normalized into [0,1].
	DiseasesForSymptoms(symptoms []string) []DiseaseScore

	// SeverityEstimate averages known per-symptom severity weights,
	// clamped to [1,10].
	SeverityEstimate(symptoms []string) (int, bool)

	// EmergencyEstimate checks emergency markers and critical symptom
	// combinations.
	EmergencyEstimate(symptoms []string) (EmergencyEstimate, bool)

	// Precautions returns precaution text for a symptom or disease.
	Precautions(key string) []string

	// Description returns the free-text description for a symptom token,
	// or "" when the symptom is unknown.
	Description(symptom string) string

	// TriageLevel matches symptoms against triage protocols and returns
	// the highest matching priority, or "" when none match.
	TriageLevel(symptoms []string) string
}

// DecisionEngine is the serving interface: one snapshot loaded at startup,
// any number of concurrent Analyze calls against it.
type DecisionEngine interface {
	Analyze(ctx context.Context, symptoms []string) (*Decision, error)
	LoadedArtifacts() []ArtifactKind
}
