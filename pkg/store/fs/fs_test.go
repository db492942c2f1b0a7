package fs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curalab/triage/pkg/models"
)

func testArtifact(kind models.ArtifactKind) *models.Artifact {
	payload, _ := json.Marshal(map[string]int{"dim": 4})
	return &models.Artifact{
		Kind:    kind,
		Version: uuid.New(),
		Encoder: models.EncoderInfo{
			Name:         "hash-ngram-v1",
			Dimensions:   4,
			IsNormalized: true,
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Payload:   payload,
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	artifact := testArtifact(models.ArtifactDiseaseClassifier)
	require.NoError(t, store.Put(ctx, artifact))

	got, err := store.Get(ctx, models.ArtifactDiseaseClassifier)
	require.NoError(t, err)
	assert.Equal(t, artifact.Kind, got.Kind)
	assert.Equal(t, artifact.Version, got.Version)
	assert.Equal(t, artifact.Encoder, got.Encoder)
	assert.JSONEq(t, string(artifact.Payload), string(got.Payload))
}

func TestGetMissingSlot(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), models.ArtifactSymptomIndex)
	assert.ErrorIs(t, err, models.ErrArtifactMissing)
}

func TestPutReplacesSlot(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first := testArtifact(models.ArtifactSeverityClassifier)
	second := testArtifact(models.ArtifactSeverityClassifier)
	require.NoError(t, store.Put(ctx, first))
	require.NoError(t, store.Put(ctx, second))

	got, err := store.Get(ctx, models.ArtifactSeverityClassifier)
	require.NoError(t, err)
	assert.Equal(t, second.Version, got.Version)
}

func TestList(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	kinds, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, kinds)

	require.NoError(t, store.Put(ctx, testArtifact(models.ArtifactDiseaseClassifier)))
	require.NoError(t, store.Put(ctx, testArtifact(models.ArtifactSymptomIndex)))

	kinds, err = store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.ArtifactKind{
		models.ArtifactDiseaseClassifier,
		models.ArtifactSymptomIndex,
	}, kinds)
}

func TestEmptyPath(t *testing.T) {
	_, err := NewStore("")
	assert.Error(t, err)
}
