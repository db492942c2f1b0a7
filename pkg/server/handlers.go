package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/curalab/triage/pkg/corpus"
	"github.com/curalab/triage/pkg/models"
	"github.com/curalab/triage/pkg/trainer"
)

var validate = validator.New()

// AnalyzeRequest is the analyze endpoint body.
type AnalyzeRequest struct {
	Symptoms []string `json:"symptoms" validate:"required,min=1,dive,required"`
}

// AnalyzeResponse wraps the engine decision with the knowledge-base
// context the caller needs to phrase a response: precautions for the
// predicted disease, per-symptom descriptions, and the matched triage
// level.
type AnalyzeResponse struct {
	Decision     *models.Decision  `json:"decision"`
	Precautions  []string          `json:"precautions,omitempty"`
	Descriptions map[string]string `json:"descriptions,omitempty"`
	TriageLevel  string            `json:"triage_level,omitempty"`
}

// AnalyzeHandler runs the decision engine over a symptom set.
func AnalyzeHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnalyzeRequest
		if err := decodeJSON(r, &req); err != nil {
			renderError(w, err, http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			renderError(w, err, http.StatusBadRequest)
			return
		}

		decision, err := appState.Engine.Analyze(r.Context(), req.Symptoms)
		if err != nil {
			if errors.Is(err, models.ErrNoSymptoms) {
				renderError(w, err, http.StatusBadRequest)
				return
			}
			renderError(w, err, http.StatusInternalServerError)
			return
		}

		resp := AnalyzeResponse{
			Decision:    decision,
			TriageLevel: appState.KnowledgeBase.TriageLevel(req.Symptoms),
		}
		if decision.PredictedDisease != "" {
			resp.Precautions = appState.KnowledgeBase.Precautions(decision.PredictedDisease)
		}
		for _, symptom := range models.NormalizeSymptoms(req.Symptoms) {
			if description := appState.KnowledgeBase.Description(symptom); description != "" {
				if resp.Descriptions == nil {
					resp.Descriptions = make(map[string]string)
				}
				resp.Descriptions[symptom] = description
			}
		}

		if err := encodeJSON(w, resp); err != nil {
			renderError(w, err, http.StatusInternalServerError)
			return
		}
	}
}

// TrainHandler rebuilds the artifact set from the configured corpus
// directory. The serving engine keeps its current snapshot; new
// artifacts take effect on restart.
func TrainHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The corpus dir is server configuration, not client input: an
		// unusable corpus is a conflict or a server error, never a 400.
		c, err := corpus.Load(appState.Config.Corpus.DataDir)
		if err != nil {
			if errors.Is(err, models.ErrDataEmpty) {
				renderError(w, err, http.StatusConflict)
				return
			}
			renderError(w, err, http.StatusInternalServerError)
			return
		}

		t := trainer.NewTrainer(appState.Encoder, appState.ArtifactStore)
		report, err := t.Rebuild(r.Context(), c)
		if err != nil {
			renderError(w, err, http.StatusInternalServerError)
			return
		}

		if err := encodeJSON(w, report); err != nil {
			renderError(w, err, http.StatusInternalServerError)
			return
		}
	}
}

// ArtifactListResponse reports the artifact slots currently loaded by the
// serving engine and the slots populated in the store.
type ArtifactListResponse struct {
	Loaded []models.ArtifactKind `json:"loaded"`
	Stored []models.ArtifactKind `json:"stored"`
}

// ArtifactListHandler reports engine and store artifact status.
func ArtifactListHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stored, err := appState.ArtifactStore.List(r.Context())
		if err != nil {
			renderError(w, err, http.StatusInternalServerError)
			return
		}

		resp := ArtifactListResponse{
			Loaded: appState.Engine.LoadedArtifacts(),
			Stored: stored,
		}
		if err := encodeJSON(w, resp); err != nil {
			renderError(w, err, http.StatusInternalServerError)
			return
		}
	}
}
