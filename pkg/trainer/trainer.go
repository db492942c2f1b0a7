// Package trainer implements the batch rebuild: corpus to encoded
// samples to trained classifiers and similarity indices, persisted as
// one versioned artifact set. Targets fail independently; a corpus that
// cannot support one classifier still produces the others.
package trainer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/curalab/triage/internal"
	"github.com/curalab/triage/pkg/classifier"
	"github.com/curalab/triage/pkg/corpus"
	"github.com/curalab/triage/pkg/index"
	"github.com/curalab/triage/pkg/models"
)

var log = internal.GetLogger()

// Report summarizes one rebuild run.
type Report struct {
	Version  uuid.UUID                      `json:"version"`
	Encoder  models.EncoderInfo             `json:"encoder"`
	Records  int                            `json:"records"`
	Counts   map[models.Target]int          `json:"counts"`
	Trained  []models.ArtifactKind          `json:"trained"`
	Skipped  map[models.ArtifactKind]string `json:"skipped,omitempty"`
	Duration time.Duration                  `json:"duration"`
}

// AllClassifiersFailed reports whether no classifier artifact was
// produced. Index-only runs are not a usable model set.
func (r *Report) AllClassifiersFailed() bool {
	for _, kind := range r.Trained {
		switch kind {
		case models.ArtifactDiseaseClassifier,
			models.ArtifactSeverityClassifier,
			models.ArtifactEmergencyClassifier:
			return false
		}
	}
	return true
}

type Trainer struct {
	encoder models.Encoder
	store   models.ArtifactStore
}

func NewTrainer(encoder models.Encoder, store models.ArtifactStore) *Trainer {
	return &Trainer{encoder: encoder, store: store}
}

// Rebuild trains every target the corpus supports and replaces the
// corresponding artifact slots. All artifacts of one run share a build
// version and the encoder fingerprint. Data problems skip a target and
// are reported; storage failures abort the run.
func (t *Trainer) Rebuild(ctx context.Context, c *corpus.Corpus) (*Report, error) {
	start := time.Now()
	report := &Report{
		Version: uuid.New(),
		Encoder: t.encoder.Info(),
		Records: len(c.Records),
		Counts:  make(map[models.Target]int),
		Skipped: make(map[models.ArtifactKind]string),
	}
	createdAt := time.Now().UTC()

	// Identical symptom sets appear across source documents; encode each
	// set once.
	cache := make(map[string][]float32)

	if payload, err := t.trainDisease(ctx, c, cache, report); err != nil {
		t.skip(report, models.ArtifactDiseaseClassifier, err)
	} else if err := t.put(ctx, report, models.ArtifactDiseaseClassifier, payload, createdAt); err != nil {
		return nil, err
	}

	if payload, err := t.trainSeverity(ctx, c, cache, report); err != nil {
		t.skip(report, models.ArtifactSeverityClassifier, err)
	} else if err := t.put(ctx, report, models.ArtifactSeverityClassifier, payload, createdAt); err != nil {
		return nil, err
	}

	if payload, err := t.trainEmergency(ctx, c, cache, report); err != nil {
		t.skip(report, models.ArtifactEmergencyClassifier, err)
	} else if err := t.put(ctx, report, models.ArtifactEmergencyClassifier, payload, createdAt); err != nil {
		return nil, err
	}

	if payload, err := t.buildIndex(ctx, c.Symptoms); err != nil {
		t.skip(report, models.ArtifactSymptomIndex, err)
	} else if err := t.put(ctx, report, models.ArtifactSymptomIndex, payload, createdAt); err != nil {
		return nil, err
	}

	if payload, err := t.buildIndex(ctx, c.Diseases); err != nil {
		t.skip(report, models.ArtifactDiseaseIndex, err)
	} else if err := t.put(ctx, report, models.ArtifactDiseaseIndex, payload, createdAt); err != nil {
		return nil, err
	}

	report.Duration = time.Since(start)
	log.Infof(
		"rebuild %s complete: %d artifacts trained, %d skipped in %s",
		report.Version, len(report.Trained), len(report.Skipped), report.Duration,
	)
	return report, nil
}

func (t *Trainer) trainDisease(
	ctx context.Context, c *corpus.Corpus, cache map[string][]float32, report *Report,
) (json.RawMessage, error) {
	records, err := c.TargetRecords(models.TargetDisease)
	if err != nil {
		return nil, err
	}
	report.Counts[models.TargetDisease] = len(records)

	samples := make([]classifier.DiseaseSample, 0, len(records))
	for i := range records {
		vec, err := t.encodeSet(ctx, cache, records[i].Symptoms)
		if err != nil {
			return nil, err
		}
		samples = append(samples, classifier.DiseaseSample{Vector: vec, Label: records[i].Disease})
	}
	model, err := classifier.TrainDisease(samples)
	if err != nil {
		return nil, err
	}
	return json.Marshal(model)
}

func (t *Trainer) trainSeverity(
	ctx context.Context, c *corpus.Corpus, cache map[string][]float32, report *Report,
) (json.RawMessage, error) {
	records, err := c.TargetRecords(models.TargetSeverity)
	if err != nil {
		return nil, err
	}
	report.Counts[models.TargetSeverity] = len(records)

	samples := make([]classifier.SeveritySample, 0, len(records))
	for i := range records {
		vec, err := t.encodeSet(ctx, cache, records[i].Symptoms)
		if err != nil {
			return nil, err
		}
		samples = append(samples, classifier.SeveritySample{Vector: vec, Score: records[i].Severity})
	}
	model, err := classifier.TrainSeverity(samples)
	if err != nil {
		return nil, err
	}
	return json.Marshal(model)
}

func (t *Trainer) trainEmergency(
	ctx context.Context, c *corpus.Corpus, cache map[string][]float32, report *Report,
) (json.RawMessage, error) {
	records, err := c.TargetRecords(models.TargetEmergency)
	if err != nil {
		return nil, err
	}
	report.Counts[models.TargetEmergency] = len(records)

	samples := make([]classifier.EmergencySample, 0, len(records))
	for i := range records {
		vec, err := t.encodeSet(ctx, cache, records[i].Symptoms)
		if err != nil {
			return nil, err
		}
		samples = append(samples, classifier.EmergencySample{Vector: vec, Emergency: *records[i].Emergency})
	}
	model, err := classifier.TrainEmergency(samples)
	if err != nil {
		return nil, err
	}
	return json.Marshal(model)
}

// buildIndex encodes each vocabulary key on its own and builds the flat
// similarity index over the results.
func (t *Trainer) buildIndex(ctx context.Context, keys []string) (json.RawMessage, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("index vocabulary is empty")
	}
	entries := make(map[string][]float32, len(keys))
	for _, key := range keys {
		vec, err := t.encoder.EncodeTokens(ctx, []string{key})
		if err != nil {
			return nil, err
		}
		entries[key] = vec
	}
	idx, err := index.Build(entries)
	if err != nil {
		return nil, err
	}
	return json.Marshal(idx)
}

func (t *Trainer) encodeSet(ctx context.Context, cache map[string][]float32, symptoms []string) ([]float32, error) {
	key := strings.Join(symptoms, "|")
	if vec, ok := cache[key]; ok {
		return vec, nil
	}
	vec, err := t.encoder.EncodeTokens(ctx, symptoms)
	if err != nil {
		return nil, err
	}
	cache[key] = vec
	return vec, nil
}

func (t *Trainer) put(
	ctx context.Context, report *Report, kind models.ArtifactKind,
	payload json.RawMessage, createdAt time.Time,
) error {
	artifact := &models.Artifact{
		Kind:      kind,
		Version:   report.Version,
		Encoder:   report.Encoder,
		CreatedAt: createdAt,
		Payload:   payload,
	}
	if err := t.store.Put(ctx, artifact); err != nil {
		return err
	}
	report.Trained = append(report.Trained, kind)
	log.Debugf("artifact %s stored (version %s)", kind, report.Version)
	return nil
}

func (t *Trainer) skip(report *Report, kind models.ArtifactKind, err error) {
	report.Skipped[kind] = err.Error()
	log.Warnf("skipping %s: %v", kind, err)
}
