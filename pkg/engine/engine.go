// Package engine implements the serving-side decision engine: one
// artifact snapshot loaded at startup, combined with the rule-based
// knowledge base into a full Decision per symptom set. Every loaded
// structure is read-only after Load, so Analyze is safe for any number
// of concurrent callers.
package engine

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/curalab/triage/internal"
	"github.com/curalab/triage/pkg/classifier"
	"github.com/curalab/triage/pkg/index"
	"github.com/curalab/triage/pkg/models"
)

var log = internal.GetLogger()

// Options tunes the engine. Zero values fall back to defaults.
type Options struct {
	// TopK is the neighbor count for the similarity context queries.
	TopK int
}

// Engine holds one immutable artifact snapshot. A nil model pointer means
// the slot was absent or unusable at load time and the knowledge base
// covers that field.
type Engine struct {
	store   models.ArtifactStore
	encoder models.Encoder
	kb      models.KnowledgeBase
	topK    int

	disease      *classifier.DiseaseModel
	severity     *classifier.SeverityModel
	emergency    *classifier.EmergencyModel
	symptomIndex *index.Index
	diseaseIndex *index.Index

	loaded []models.ArtifactKind
}

var _ models.DecisionEngine = &Engine{}

func New(store models.ArtifactStore, encoder models.Encoder, kb models.KnowledgeBase, opts Options) *Engine {
	topK := opts.TopK
	if topK <= 0 {
		topK = index.DefaultTopK
	}
	return &Engine{store: store, encoder: encoder, kb: kb, topK: topK}
}

// Load reads every artifact slot once. Missing slots and artifacts built
// by a different encoder are skipped with a warning; the engine is ready
// either way and serves knowledge-base fallbacks for uncovered fields.
func (e *Engine) Load(ctx context.Context) error {
	for _, kind := range models.AllArtifactKinds() {
		artifact, err := e.store.Get(ctx, kind)
		if err != nil {
			if errors.Is(err, models.ErrArtifactMissing) {
				log.Warnf("artifact %s not present, using fallbacks", kind)
			} else {
				log.Warnf("artifact %s unreadable, using fallbacks: %v", kind, err)
			}
			continue
		}
		if !artifact.Encoder.Equal(e.encoder.Info()) {
			log.Warnf(
				"artifact %s was built with encoder %s/%d, serving encoder is %s/%d; skipping",
				kind, artifact.Encoder.Name, artifact.Encoder.Dimensions,
				e.encoder.Info().Name, e.encoder.Info().Dimensions,
			)
			continue
		}
		if err := e.install(kind, artifact.Payload); err != nil {
			log.Warnf("artifact %s payload unusable, using fallbacks: %v", kind, err)
			continue
		}
		e.loaded = append(e.loaded, kind)
		log.Debugf("artifact %s loaded (version %s)", kind, artifact.Version)
	}
	log.Infof("decision engine ready with %d of %d artifacts", len(e.loaded), len(models.AllArtifactKinds()))
	return nil
}

func (e *Engine) install(kind models.ArtifactKind, payload json.RawMessage) error {
	switch kind {
	case models.ArtifactDiseaseClassifier:
		m := &classifier.DiseaseModel{}
		if err := json.Unmarshal(payload, m); err != nil {
			return err
		}
		e.disease = m
	case models.ArtifactSeverityClassifier:
		m := &classifier.SeverityModel{}
		if err := json.Unmarshal(payload, m); err != nil {
			return err
		}
		e.severity = m
	case models.ArtifactEmergencyClassifier:
		m := &classifier.EmergencyModel{}
		if err := json.Unmarshal(payload, m); err != nil {
			return err
		}
		e.emergency = m
	case models.ArtifactSymptomIndex:
		idx := &index.Index{}
		if err := json.Unmarshal(payload, idx); err != nil {
			return err
		}
		e.symptomIndex = idx
	case models.ArtifactDiseaseIndex:
		idx := &index.Index{}
		if err := json.Unmarshal(payload, idx); err != nil {
			return err
		}
		e.diseaseIndex = idx
	}
	return nil
}

// LoadedArtifacts returns the kinds present in the snapshot.
func (e *Engine) LoadedArtifacts() []models.ArtifactKind {
	out := make([]models.ArtifactKind, len(e.loaded))
	copy(out, e.loaded)
	return out
}

// Analyze produces a Decision for one symptom set. The set is encoded
// exactly once; each predicted field comes from its classifier when
// loaded, from the knowledge base when not, and is marked indeterminate
// when neither has signal. An encoding failure degrades every field to
// its fallback instead of failing the call.
func (e *Engine) Analyze(ctx context.Context, symptoms []string) (*models.Decision, error) {
	tokens := models.NormalizeSymptoms(symptoms)
	if len(tokens) == 0 {
		return nil, models.ErrNoSymptoms
	}

	var vec []float32
	var encodingFailure string
	if e.needsVector() {
		v, err := e.encoder.EncodeTokens(ctx, tokens)
		if err != nil {
			log.Warnf("encoding failed, serving fallbacks only: %v", err)
			encodingFailure = err.Error()
		} else {
			vec = v
		}
	}

	decision := &models.Decision{
		EncodingFailure: encodingFailure,
		SeverityScore:   models.ClampSeverity(0),
		SimilarSymptoms: []models.SimilarityHit{},
		SimilarDiseases: []models.SimilarityHit{},
		Sources: map[models.DecisionField]models.Provenance{
			models.FieldDisease:   models.ProvenanceIndeterminate,
			models.FieldSeverity:  models.ProvenanceIndeterminate,
			models.FieldEmergency: models.ProvenanceIndeterminate,
		},
	}

	e.decideDisease(decision, tokens, vec)
	e.decideSeverity(decision, tokens, vec)
	e.decideEmergency(decision, tokens, vec)

	if e.symptomIndex != nil && vec != nil {
		if hits, err := e.symptomIndex.Search(vec, e.topK); err != nil {
			log.Warnf("symptom index query failed: %v", err)
		} else {
			decision.SimilarSymptoms = hits
		}
	}
	if e.diseaseIndex != nil && vec != nil {
		if hits, err := e.diseaseIndex.Search(vec, e.topK); err != nil {
			log.Warnf("disease index query failed: %v", err)
		} else {
			decision.SimilarDiseases = hits
		}
	}

	return decision, nil
}

func (e *Engine) needsVector() bool {
	return e.disease != nil || e.severity != nil || e.emergency != nil ||
		e.symptomIndex != nil || e.diseaseIndex != nil
}

func (e *Engine) decideDisease(decision *models.Decision, tokens []string, vec []float32) {
	if e.disease != nil && vec != nil {
		label, confidence, err := e.disease.Predict(vec)
		if err == nil {
			decision.PredictedDisease = label
			decision.DiseaseConfidence = confidence
			decision.Sources[models.FieldDisease] = models.ProvenanceModel
			return
		}
		log.Warnf("disease model prediction failed: %v", err)
	}
	if scores := e.kb.DiseasesForSymptoms(tokens); len(scores) > 0 {
		decision.PredictedDisease = scores[0].Disease
		decision.DiseaseConfidence = scores[0].Score
		decision.Sources[models.FieldDisease] = models.ProvenanceFallback
	}
}

func (e *Engine) decideSeverity(decision *models.Decision, tokens []string, vec []float32) {
	if e.severity != nil && vec != nil {
		score, err := e.severity.Predict(vec)
		if err == nil {
			decision.SeverityScore = score
			decision.Sources[models.FieldSeverity] = models.ProvenanceModel
			return
		}
		log.Warnf("severity model prediction failed: %v", err)
	}
	if score, ok := e.kb.SeverityEstimate(tokens); ok {
		decision.SeverityScore = score
		decision.Sources[models.FieldSeverity] = models.ProvenanceFallback
	}
}

// decideEmergency never consults the indices: a high similarity to an
// emergency-labeled neighbor is not an emergency judgment.
func (e *Engine) decideEmergency(decision *models.Decision, tokens []string, vec []float32) {
	if e.emergency != nil && vec != nil {
		flag, p, err := e.emergency.Predict(vec)
		if err == nil {
			decision.EmergencyFlag = flag
			decision.EmergencyProbability = p
			decision.Sources[models.FieldEmergency] = models.ProvenanceModel
			return
		}
		log.Warnf("emergency model prediction failed: %v", err)
	}
	if est, ok := e.kb.EmergencyEstimate(tokens); ok {
		decision.EmergencyFlag = est.Emergency
		decision.Sources[models.FieldEmergency] = models.ProvenanceFallback
	}
}
