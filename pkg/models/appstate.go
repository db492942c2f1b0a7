package models

import (
	"github.com/curalab/triage/config"
)

// AppState is a struct that holds the state of the application
// Use cmd.NewAppState to create a new instance
type AppState struct {
	Encoder       Encoder
	ArtifactStore ArtifactStore
	KnowledgeBase KnowledgeBase
	Engine        DecisionEngine
	Config        *config.Config
}
