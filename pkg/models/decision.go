package models

// Provenance records which signal produced a Decision field, so downstream
// response generation can phrase confidence appropriately. A fallback
// emergency flag must never be presented as a model judgment.
type Provenance string

const (
	ProvenanceModel         Provenance = "model"
	ProvenanceFallback      Provenance = "fallback"
	ProvenanceIndeterminate Provenance = "indeterminate"
)

// DecisionField names the three predicted fields of a Decision.
type DecisionField string

const (
	FieldDisease   DecisionField = "disease"
	FieldSeverity  DecisionField = "severity"
	FieldEmergency DecisionField = "emergency"
)

// SimilarityHit is one nearest-neighbor result: an index key and its
// cosine similarity to the query vector.
type SimilarityHit struct {
	Key   string  `json:"key"`
	Score float32 `json:"score"`
}

// DiseaseScore is a knowledge-base disease estimate with a score in [0,1].
type DiseaseScore struct {
	Disease string  `json:"disease"`
	Score   float64 `json:"score"`
}

// Decision is the structured output of the decision engine for one symptom
// set. SeverityScore is always in [1,10] and EmergencyFlag is always a real
// boolean, regardless of which artifacts were loaded; Sources says where
// each field came from.
type Decision struct {
	PredictedDisease     string          `json:"predicted_disease"`
	DiseaseConfidence    float64         `json:"disease_confidence"`
	SeverityScore        int             `json:"severity_score"`
	EmergencyFlag        bool            `json:"emergency_flag"`
	EmergencyProbability float64         `json:"emergency_probability"`
	SimilarSymptoms      []SimilarityHit `json:"similar_symptoms"`
	SimilarDiseases      []SimilarityHit `json:"similar_diseases"`

	Sources map[DecisionField]Provenance `json:"sources"`

	// EncodingFailure carries the error text when the symptom set could
	// not be embedded. Model predictions and index context are
	// unavailable in that case and every field comes from its fallback;
	// the caller can tell this apart from artifacts simply being absent.
	EncodingFailure string `json:"encoding_failure,omitempty"`
}

// ClampSeverity forces a severity score into the [1,10] invariant range.
func ClampSeverity(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}
