package encoder

import (
	"fmt"

	"github.com/curalab/triage/config"
	"github.com/curalab/triage/internal"
	"github.com/curalab/triage/pkg/models"
)

var log = internal.GetLogger()

// NewFromConfig builds the encoder selected by the encoder config section:
// the in-process deterministic encoder, or the HTTP embedding service.
func NewFromConfig(cfg *config.Config) (models.Encoder, error) {
	switch cfg.Encoder.Service {
	case "", "local":
		return NewLocalEncoder(cfg.Encoder.Dimensions)
	case "remote":
		if cfg.Encoder.ServerURL == "" {
			return nil, fmt.Errorf("encoder.server_url must be set for the remote encoder")
		}
		return NewRemoteEncoder(cfg.Encoder.ServerURL, cfg.Encoder.Model, cfg.Encoder.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown encoder service %q", cfg.Encoder.Service)
	}
}
