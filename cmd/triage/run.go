package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/curalab/triage/config"
	"github.com/curalab/triage/pkg/corpus"
	"github.com/curalab/triage/pkg/encoder"
	"github.com/curalab/triage/pkg/engine"
	"github.com/curalab/triage/pkg/kb"
	"github.com/curalab/triage/pkg/models"
	"github.com/curalab/triage/pkg/server"
	"github.com/curalab/triage/pkg/store/fs"
	"github.com/curalab/triage/pkg/store/redisstore"
	"github.com/curalab/triage/pkg/trainer"
)

const (
	ErrArtifactStoreTypeNotSet = "artifact_store.type must be set"
	ArtifactStoreTypeFile      = "file"
	ArtifactStoreTypeRedis     = "redis"
)

// run is the entrypoint for the triage server
func run() {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		log.Fatalf("Error configuring triage: %s", err)
	}

	handleCLIOptions(cfg)

	log.Infof("Starting triage server version %s", config.VersionString)

	config.SetLogLevel(cfg)
	appState := NewAppState(cfg)

	srv := server.Create(appState)

	log.Infof("Listening on: %s", srv.Addr)
	err = srv.ListenAndServe()
	if err != nil {
		log.Fatal(err)
	}
}

// runTrain rebuilds the artifact set and exits. The exit code is non-zero
// only when no classifier could be trained at all.
func runTrain() {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		log.Fatalf("Error configuring triage: %s", err)
	}

	handleCLIOptions(cfg)
	config.SetLogLevel(cfg)

	enc, err := encoder.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("Error creating encoder: %s", err)
	}
	store := initializeArtifactStore(cfg)

	c, err := corpus.Load(cfg.Corpus.DataDir)
	if err != nil {
		log.Fatalf("Error loading corpus from %s: %s", cfg.Corpus.DataDir, err)
	}
	log.Infof("Loaded %d training records from %s", len(c.Records), cfg.Corpus.DataDir)

	t := trainer.NewTrainer(enc, store)
	report, err := t.Rebuild(context.Background(), c)
	if err != nil {
		log.Fatalf("Rebuild failed: %s", err)
	}

	for kind, reason := range report.Skipped {
		log.Warnf("%s not trained: %s", kind, reason)
	}
	if report.AllClassifiersFailed() {
		log.Error("No classifier could be trained from the corpus")
		os.Exit(1)
	}
	log.Infof("Trained %d artifacts (version %s)", len(report.Trained), report.Version)
}

// NewAppState creates an AppState struct from the config file / ENV,
// initializes the artifact store and knowledge base, and loads the
// decision engine snapshot.
func NewAppState(cfg *config.Config) *models.AppState {
	enc, err := encoder.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("Error creating encoder: %s", err)
	}

	store := initializeArtifactStore(cfg)
	knowledge := kb.Load(cfg.Corpus.DataDir)

	eng := engine.New(store, enc, knowledge, engine.Options{TopK: cfg.Index.TopK})
	if err := eng.Load(context.Background()); err != nil {
		log.Fatalf("Error loading decision engine: %s", err)
	}

	return &models.AppState{
		Encoder:       enc,
		ArtifactStore: store,
		KnowledgeBase: knowledge,
		Engine:        eng,
		Config:        cfg,
	}
}

// handleCLIOptions handles CLI options that don't require the server to run
func handleCLIOptions(cfg *config.Config) {
	if showVersion {
		fmt.Println(config.VersionString)
		os.Exit(0)
	}
	if dumpConfig {
		out, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			log.Fatalf("Error dumping config: %s", err)
		}
		fmt.Println(string(out))
		os.Exit(0)
	}
}

// initializeArtifactStore initializes the artifact store based on the config file / ENV
func initializeArtifactStore(cfg *config.Config) models.ArtifactStore {
	if cfg.ArtifactStore.Type == "" {
		log.Fatal(ErrArtifactStoreTypeNotSet)
	}

	switch cfg.ArtifactStore.Type {
	case ArtifactStoreTypeFile:
		store, err := fs.NewStore(cfg.ArtifactStore.File.Path)
		if err != nil {
			log.Fatal(err)
		}
		log.Info("Using artifact store: ", cfg.ArtifactStore.Type)
		return store
	case ArtifactStoreTypeRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.ArtifactStore.Redis.Addr,
			Password: cfg.ArtifactStore.Redis.Password,
			DB:       cfg.ArtifactStore.Redis.DB,
		})
		log.Info("Using artifact store: ", cfg.ArtifactStore.Type)
		return redisstore.NewStore(client)
	default:
		log.Fatal(
			fmt.Sprintf(
				"artifact_store.type (%s) is not supported",
				cfg.ArtifactStore.Type,
			),
		)
		return nil
	}
}
