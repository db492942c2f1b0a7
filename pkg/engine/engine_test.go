package engine_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curalab/triage/pkg/corpus"
	"github.com/curalab/triage/pkg/encoder"
	"github.com/curalab/triage/pkg/engine"
	"github.com/curalab/triage/pkg/kb"
	"github.com/curalab/triage/pkg/models"
	"github.com/curalab/triage/pkg/store/fs"
	"github.com/curalab/triage/pkg/testutils"
	"github.com/curalab/triage/pkg/trainer"
)

// setupTrained builds a corpus dir, trains all artifacts into a file
// store, and returns the store plus the knowledge base over the same
// corpus.
func setupTrained(t *testing.T, enc models.Encoder) (*fs.Store, *kb.KB) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, testutils.CreateCorpusDir(dir))
	c, err := corpus.Load(dir)
	require.NoError(t, err)

	store, err := fs.NewStore(t.TempDir())
	require.NoError(t, err)
	report, err := trainer.NewTrainer(enc, store).Rebuild(context.Background(), c)
	require.NoError(t, err)
	require.Empty(t, report.Skipped)

	return store, kb.Load(dir)
}

func emptyStoreKB(t *testing.T) (*fs.Store, *kb.KB) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, testutils.CreateCorpusDir(dir))
	store, err := fs.NewStore(t.TempDir())
	require.NoError(t, err)
	return store, kb.Load(dir)
}

func TestAnalyzeEmptySymptoms(t *testing.T) {
	enc, err := encoder.NewLocalEncoder(64)
	require.NoError(t, err)
	store, knowledge := emptyStoreKB(t)

	eng := engine.New(store, enc, knowledge, engine.Options{})
	require.NoError(t, eng.Load(context.Background()))

	_, err = eng.Analyze(context.Background(), nil)
	assert.ErrorIs(t, err, models.ErrNoSymptoms)

	_, err = eng.Analyze(context.Background(), []string{"", "  "})
	assert.ErrorIs(t, err, models.ErrNoSymptoms)
}

func TestAnalyzeWithAllArtifacts(t *testing.T) {
	enc, err := encoder.NewLocalEncoder(64)
	require.NoError(t, err)
	store, knowledge := setupTrained(t, enc)

	eng := engine.New(store, enc, knowledge, engine.Options{TopK: 3})
	require.NoError(t, eng.Load(context.Background()))
	assert.ElementsMatch(t, models.AllArtifactKinds(), eng.LoadedArtifacts())

	decision, err := eng.Analyze(context.Background(), []string{"fever", "headache", "body_ache"})
	require.NoError(t, err)

	assert.Equal(t, models.ProvenanceModel, decision.Sources[models.FieldDisease])
	assert.Equal(t, models.ProvenanceModel, decision.Sources[models.FieldSeverity])
	assert.Equal(t, models.ProvenanceModel, decision.Sources[models.FieldEmergency])

	// The corpus maps this exact combination to Flu.
	assert.Equal(t, "flu", decision.PredictedDisease)
	assert.Greater(t, decision.DiseaseConfidence, 0.0)
	assert.GreaterOrEqual(t, decision.SeverityScore, 1)
	assert.LessOrEqual(t, decision.SeverityScore, 10)
	assert.GreaterOrEqual(t, decision.EmergencyProbability, 0.0)
	assert.LessOrEqual(t, decision.EmergencyProbability, 1.0)
	assert.Len(t, decision.SimilarSymptoms, 3)
	assert.Len(t, decision.SimilarDiseases, 3)
}

func TestAnalyzeEmergencyCase(t *testing.T) {
	enc, err := encoder.NewLocalEncoder(64)
	require.NoError(t, err)
	store, knowledge := setupTrained(t, enc)

	eng := engine.New(store, enc, knowledge, engine.Options{})
	require.NoError(t, eng.Load(context.Background()))

	decision, err := eng.Analyze(context.Background(), []string{"chest_pain", "shortness_of_breath"})
	require.NoError(t, err)
	assert.True(t, decision.EmergencyFlag)
}

func TestAnalyzeFallbackWithoutArtifacts(t *testing.T) {
	enc, err := encoder.NewLocalEncoder(64)
	require.NoError(t, err)
	store, knowledge := emptyStoreKB(t)

	eng := engine.New(store, enc, knowledge, engine.Options{})
	require.NoError(t, eng.Load(context.Background()))
	assert.Empty(t, eng.LoadedArtifacts())

	decision, err := eng.Analyze(context.Background(), []string{"fever", "headache"})
	require.NoError(t, err)

	assert.Equal(t, models.ProvenanceFallback, decision.Sources[models.FieldDisease])
	assert.Equal(t, models.ProvenanceFallback, decision.Sources[models.FieldSeverity])
	assert.Equal(t, models.ProvenanceFallback, decision.Sources[models.FieldEmergency])
	assert.NotEmpty(t, decision.PredictedDisease)
	assert.GreaterOrEqual(t, decision.SeverityScore, 1)
	assert.Empty(t, decision.SimilarSymptoms)
	assert.Empty(t, decision.SimilarDiseases)
}

func TestAnalyzeEmergencyArtifactAbsent(t *testing.T) {
	enc, err := encoder.NewLocalEncoder(64)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, testutils.CreateCorpusDir(dir))
	c, err := corpus.Load(dir)
	require.NoError(t, err)

	storeDir := t.TempDir()
	store, err := fs.NewStore(storeDir)
	require.NoError(t, err)
	_, err = trainer.NewTrainer(enc, store).Rebuild(context.Background(), c)
	require.NoError(t, err)

	// Drop only the emergency classifier slot.
	require.NoError(t, os.Remove(
		filepath.Join(storeDir, string(models.ArtifactEmergencyClassifier)+".json"),
	))

	eng := engine.New(store, enc, kb.Load(dir), engine.Options{})
	require.NoError(t, eng.Load(context.Background()))
	assert.NotContains(t, eng.LoadedArtifacts(), models.ArtifactEmergencyClassifier)

	decision, err := eng.Analyze(context.Background(), []string{"fever", "headache"})
	require.NoError(t, err)
	assert.Equal(t, models.ProvenanceModel, decision.Sources[models.FieldDisease])
	assert.Equal(t, models.ProvenanceModel, decision.Sources[models.FieldSeverity])
	assert.Equal(t, models.ProvenanceFallback, decision.Sources[models.FieldEmergency])
}

func TestAnalyzeIndeterminateFields(t *testing.T) {
	enc, err := encoder.NewLocalEncoder(64)
	require.NoError(t, err)
	store, err := fs.NewStore(t.TempDir())
	require.NoError(t, err)
	// Knowledge base with no data at all.
	knowledge := kb.New(&corpus.Documents{})

	eng := engine.New(store, enc, knowledge, engine.Options{})
	require.NoError(t, eng.Load(context.Background()))

	decision, err := eng.Analyze(context.Background(), []string{"anything"})
	require.NoError(t, err)

	assert.Equal(t, models.ProvenanceIndeterminate, decision.Sources[models.FieldDisease])
	assert.Equal(t, models.ProvenanceIndeterminate, decision.Sources[models.FieldSeverity])
	assert.Equal(t, models.ProvenanceIndeterminate, decision.Sources[models.FieldEmergency])
	assert.Empty(t, decision.PredictedDisease)
	assert.False(t, decision.EmergencyFlag)
	// Severity still lands in the invariant range.
	assert.GreaterOrEqual(t, decision.SeverityScore, 1)
	assert.LessOrEqual(t, decision.SeverityScore, 10)
}

// brokenEncoder reports the fingerprint of a working encoder but fails
// every encode call, standing in for an unreachable embedding service.
type brokenEncoder struct {
	info models.EncoderInfo
}

func (e *brokenEncoder) EncodeTokens(context.Context, []string) ([]float32, error) {
	return nil, models.NewEncodingError("embedding service unreachable", nil)
}

func (e *brokenEncoder) EncodeText(context.Context, string) ([]float32, error) {
	return nil, models.NewEncodingError("embedding service unreachable", nil)
}

func (e *brokenEncoder) Info() models.EncoderInfo {
	return e.info
}

func TestAnalyzeEncodingFailureSurfaced(t *testing.T) {
	trainEnc, err := encoder.NewLocalEncoder(64)
	require.NoError(t, err)
	store, knowledge := setupTrained(t, trainEnc)

	// Same fingerprint, so all artifacts load; every encode call fails.
	eng := engine.New(store, &brokenEncoder{info: trainEnc.Info()}, knowledge, engine.Options{})
	require.NoError(t, eng.Load(context.Background()))
	assert.ElementsMatch(t, models.AllArtifactKinds(), eng.LoadedArtifacts())

	decision, err := eng.Analyze(context.Background(), []string{"fever", "headache"})
	require.NoError(t, err)

	// The failure is carried on the Decision, distinguishing "encoder
	// broke" from "artifacts absent".
	assert.Contains(t, decision.EncodingFailure, "embedding service unreachable")
	assert.Equal(t, models.ProvenanceFallback, decision.Sources[models.FieldDisease])
	assert.Equal(t, models.ProvenanceFallback, decision.Sources[models.FieldSeverity])
	assert.Equal(t, models.ProvenanceFallback, decision.Sources[models.FieldEmergency])
	assert.Empty(t, decision.SimilarSymptoms)
	assert.Empty(t, decision.SimilarDiseases)
}

func TestAnalyzeNoEncodingFailureWhenHealthy(t *testing.T) {
	enc, err := encoder.NewLocalEncoder(64)
	require.NoError(t, err)
	store, knowledge := setupTrained(t, enc)

	eng := engine.New(store, enc, knowledge, engine.Options{})
	require.NoError(t, eng.Load(context.Background()))

	decision, err := eng.Analyze(context.Background(), []string{"fever"})
	require.NoError(t, err)
	assert.Empty(t, decision.EncodingFailure)
}

func TestLoadSkipsMismatchedFingerprint(t *testing.T) {
	trainEnc, err := encoder.NewLocalEncoder(64)
	require.NoError(t, err)
	store, knowledge := setupTrained(t, trainEnc)

	// Serve with a different embedding width.
	serveEnc, err := encoder.NewLocalEncoder(32)
	require.NoError(t, err)

	eng := engine.New(store, serveEnc, knowledge, engine.Options{})
	require.NoError(t, eng.Load(context.Background()))
	assert.Empty(t, eng.LoadedArtifacts())

	// Falls back to the knowledge base instead of predicting with a
	// misfit model.
	decision, err := eng.Analyze(context.Background(), []string{"fever", "headache"})
	require.NoError(t, err)
	assert.Equal(t, models.ProvenanceFallback, decision.Sources[models.FieldDisease])
}

func TestAnalyzeConcurrent(t *testing.T) {
	enc, err := encoder.NewLocalEncoder(64)
	require.NoError(t, err)
	store, knowledge := setupTrained(t, enc)

	eng := engine.New(store, enc, knowledge, engine.Options{})
	require.NoError(t, eng.Load(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := eng.Analyze(context.Background(), []string{"fever", "cough"})
			assert.NoError(t, err)
			assert.NotNil(t, decision)
		}()
	}
	wg.Wait()
}

func TestAnalyzeDeterministic(t *testing.T) {
	enc, err := encoder.NewLocalEncoder(64)
	require.NoError(t, err)
	store, knowledge := setupTrained(t, enc)

	eng := engine.New(store, enc, knowledge, engine.Options{})
	require.NoError(t, eng.Load(context.Background()))

	a, err := eng.Analyze(context.Background(), []string{"fever", "headache"})
	require.NoError(t, err)
	b, err := eng.Analyze(context.Background(), []string{"headache", "Fever"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
