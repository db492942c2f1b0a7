package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curalab/triage/config"
	"github.com/curalab/triage/pkg/corpus"
	"github.com/curalab/triage/pkg/encoder"
	"github.com/curalab/triage/pkg/engine"
	"github.com/curalab/triage/pkg/kb"
	"github.com/curalab/triage/pkg/models"
	"github.com/curalab/triage/pkg/store/fs"
	"github.com/curalab/triage/pkg/testutils"
	"github.com/curalab/triage/pkg/trainer"
)

func setupTestAppState(t *testing.T) *models.AppState {
	t.Helper()

	dataDir := t.TempDir()
	require.NoError(t, testutils.CreateCorpusDir(dataDir))
	c, err := corpus.Load(dataDir)
	require.NoError(t, err)

	enc, err := encoder.NewLocalEncoder(64)
	require.NoError(t, err)
	store, err := fs.NewStore(t.TempDir())
	require.NoError(t, err)
	_, err = trainer.NewTrainer(enc, store).Rebuild(context.Background(), c)
	require.NoError(t, err)

	knowledge := kb.Load(dataDir)
	eng := engine.New(store, enc, knowledge, engine.Options{})
	require.NoError(t, eng.Load(context.Background()))

	cfg := &config.Config{}
	cfg.Corpus.DataDir = dataDir
	cfg.Server.Port = 8000

	return &models.AppState{
		Encoder:       enc,
		ArtifactStore: store,
		KnowledgeBase: knowledge,
		Engine:        eng,
		Config:        cfg,
	}
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestAnalyzeHandler(t *testing.T) {
	appState := setupTestAppState(t)
	router := setupRouter(appState)

	w := postJSON(t, router, "/api/v1/analyze", AnalyzeRequest{
		Symptoms: []string{"fever", "headache", "body_ache"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Decision)
	assert.NotEmpty(t, resp.Decision.PredictedDisease)
	assert.GreaterOrEqual(t, resp.Decision.SeverityScore, 1)
	assert.LessOrEqual(t, resp.Decision.SeverityScore, 10)
}

func TestAnalyzeHandlerEmptySymptoms(t *testing.T) {
	appState := setupTestAppState(t)
	router := setupRouter(appState)

	w := postJSON(t, router, "/api/v1/analyze", AnalyzeRequest{Symptoms: []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, router, "/api/v1/analyze", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeHandlerBadJSON(t *testing.T) {
	appState := setupTestAppState(t)
	router := setupRouter(appState)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeHandlerEmergencyPrecautions(t *testing.T) {
	appState := setupTestAppState(t)
	router := setupRouter(appState)

	w := postJSON(t, router, "/api/v1/analyze", AnalyzeRequest{
		Symptoms: []string{"chest_pain", "shortness_of_breath"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "immediate", resp.TriageLevel)
}

func TestAnalyzeHandlerDescriptions(t *testing.T) {
	appState := setupTestAppState(t)
	router := setupRouter(appState)

	w := postJSON(t, router, "/api/v1/analyze", AnalyzeRequest{
		Symptoms: []string{"fever", "chest_pain"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Descriptions, "fever")
	assert.Contains(t, resp.Descriptions, "chest_pain")
	assert.NotEmpty(t, resp.Descriptions["fever"])
}

func TestTrainHandler(t *testing.T) {
	appState := setupTestAppState(t)
	router := setupRouter(appState)

	w := postJSON(t, router, "/api/v1/train", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report trainer.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.ElementsMatch(t, models.AllArtifactKinds(), report.Trained)
}

func TestTrainHandlerEmptyCorpus(t *testing.T) {
	appState := setupTestAppState(t)
	// Point the corpus at a directory with no documents. That is a
	// server configuration problem, not a bad request.
	appState.Config.Corpus.DataDir = t.TempDir()
	router := setupRouter(appState)

	w := postJSON(t, router, "/api/v1/train", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestArtifactListHandler(t *testing.T) {
	appState := setupTestAppState(t)
	router := setupRouter(appState)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/artifacts", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ArtifactListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.ElementsMatch(t, models.AllArtifactKinds(), resp.Loaded)
	assert.ElementsMatch(t, models.AllArtifactKinds(), resp.Stored)
}

func TestHealthz(t *testing.T) {
	appState := setupTestAppState(t)
	router := setupRouter(appState)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, config.VersionString, w.Header().Get(versionHeader))
}
