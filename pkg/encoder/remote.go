package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/curalab/triage/pkg/models"
)

// RemoteEncoder calls an HTTP embedding service (e.g. a hosted
// sentence-transformer) for deployments that want learned embeddings
// instead of the hashed local encoder. The service must be deterministic
// for the fingerprint contract to hold; artifacts built against a
// different model or dimensionality are rejected at engine load.
type RemoteEncoder struct {
	serverURL string
	model     string
	dims      int
	client    *http.Client
}

var _ models.Encoder = &RemoteEncoder{}

func NewRemoteEncoder(serverURL, model string, dims int) *RemoteEncoder {
	return &RemoteEncoder{
		serverURL: strings.TrimRight(serverURL, "/"),
		model:     model,
		dims:      dims,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (e *RemoteEncoder) Info() models.EncoderInfo {
	return models.EncoderInfo{
		Name:         e.model,
		Dimensions:   e.dims,
		IsNormalized: false,
	}
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Texts []string `json:"texts"`
}

type embeddingResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// EncodeTokens joins the token set into a single phrase and embeds it.
// Tokens are normalized and sorted first so the request text, and with it
// the embedding, is independent of token order.
func (e *RemoteEncoder) EncodeTokens(ctx context.Context, tokens []string) ([]float32, error) {
	normalized := models.NormalizeSymptoms(tokens)
	if len(normalized) == 0 {
		return nil, models.NewEncodingError("no tokens to encode", nil)
	}
	return e.embed(ctx, strings.Join(normalized, " "))
}

func (e *RemoteEncoder) EncodeText(ctx context.Context, text string) ([]float32, error) {
	return e.EncodeTokens(ctx, strings.Fields(text))
}

func (e *RemoteEncoder) embed(ctx context.Context, text string) ([]float32, error) {
	jsonBody, err := json.Marshal(embeddingRequest{Model: e.model, Texts: []string{text}})
	if err != nil {
		return nil, models.NewEncodingError("marshaling embed request", err)
	}

	var bodyBytes []byte
	// Retry the embedding request 3 times with 1 second delay.
	err = retry.Do(
		func() error {
			var err error
			bodyBytes, err = e.makeEmbedRequest(ctx, jsonBody)
			return err
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.Context(ctx),
	)
	if err != nil {
		return nil, models.NewEncodingError("embedding service request failed", err)
	}

	var resp embeddingResponse
	if err := json.Unmarshal(bodyBytes, &resp); err != nil {
		return nil, models.NewEncodingError("unmarshaling embed response", err)
	}
	if len(resp.Embeddings) != 1 {
		return nil, models.NewEncodingError(
			fmt.Sprintf("expected 1 embedding, got %d", len(resp.Embeddings)), nil,
		)
	}
	if len(resp.Embeddings[0]) != e.dims {
		return nil, models.NewEncodingError(
			fmt.Sprintf("embedding width %d does not match configured %d", len(resp.Embeddings[0]), e.dims), nil,
		)
	}
	return resp.Embeddings[0], nil
}

func (e *RemoteEncoder) makeEmbedRequest(ctx context.Context, jsonBody []byte) ([]byte, error) {
	url := e.serverURL + "/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding service returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
