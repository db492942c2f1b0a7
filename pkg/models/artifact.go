package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ArtifactKind addresses one slot in the artifact store.
type ArtifactKind string

const (
	ArtifactDiseaseClassifier   ArtifactKind = "disease_classifier"
	ArtifactSeverityClassifier  ArtifactKind = "severity_classifier"
	ArtifactEmergencyClassifier ArtifactKind = "emergency_classifier"
	ArtifactSymptomIndex        ArtifactKind = "symptom_index"
	ArtifactDiseaseIndex        ArtifactKind = "disease_index"
)

// AllArtifactKinds returns the five slots in a fixed order.
func AllArtifactKinds() []ArtifactKind {
	return []ArtifactKind{
		ArtifactDiseaseClassifier,
		ArtifactSeverityClassifier,
		ArtifactEmergencyClassifier,
		ArtifactSymptomIndex,
		ArtifactDiseaseIndex,
	}
}

// EncoderInfo fingerprints the embedding encoder an artifact was built with.
// Artifacts and the serving encoder must agree on all three fields;
// otherwise predictions silently drift.
type EncoderInfo struct {
	Name         string `json:"name"`
	Dimensions   int    `json:"dimensions"`
	IsNormalized bool   `json:"normalized"`
}

func (e EncoderInfo) Equal(other EncoderInfo) bool {
	return e == other
}

// Artifact is the envelope persisted in the store: a versioned, immutable
// payload holding the serialized state of one classifier or index.
// Version is shared by all artifacts of one training run.
type Artifact struct {
	Kind      ArtifactKind    `json:"kind"`
	Version   uuid.UUID       `json:"version"`
	Encoder   EncoderInfo     `json:"encoder"`
	CreatedAt time.Time       `json:"created_at"`
	Payload   json.RawMessage `json:"payload"`
}
