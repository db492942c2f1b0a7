// Package fs implements the artifact store on the local filesystem: one
// JSON file per slot, replaced atomically via a temp-file rename.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/curalab/triage/pkg/models"
	"github.com/curalab/triage/pkg/store"
)

type Store struct {
	dir string
}

var _ models.ArtifactStore = &Store{}

// NewStore creates the store directory if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, store.NewStorageError("artifact store path is empty", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, store.NewStorageError("creating artifact store directory", err)
	}
	return &Store{dir: dir}, nil
}

// Put atomically replaces the slot for the artifact's kind. The payload is
// written to a temp file in the same directory and renamed over the slot,
// so concurrent readers see either the old artifact or the new one.
func (s *Store) Put(_ context.Context, artifact *models.Artifact) error {
	data, err := json.Marshal(artifact)
	if err != nil {
		return store.NewStorageError("marshaling artifact", err)
	}

	tmp, err := os.CreateTemp(s.dir, string(artifact.Kind)+".*.tmp")
	if err != nil {
		return store.NewStorageError("creating temp artifact file", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return store.NewStorageError("writing artifact", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return store.NewStorageError("closing artifact file", err)
	}
	if err := os.Rename(tmpName, s.slotPath(artifact.Kind)); err != nil {
		os.Remove(tmpName)
		return store.NewStorageError("replacing artifact slot", err)
	}
	return nil
}

// Get reads the slot for the given kind.
func (s *Store) Get(_ context.Context, kind models.ArtifactKind) (*models.Artifact, error) {
	data, err := os.ReadFile(s.slotPath(kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.NewSlotNotFoundError(kind)
		}
		return nil, store.NewStorageError("reading artifact slot", err)
	}

	var artifact models.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, store.NewStorageError("unmarshaling artifact", err)
	}
	if artifact.Kind != kind {
		return nil, store.NewStorageError(
			fmt.Sprintf("slot %q holds artifact of kind %q", kind, artifact.Kind), nil,
		)
	}
	return &artifact, nil
}

// List returns the kinds with a populated slot.
func (s *Store) List(_ context.Context) ([]models.ArtifactKind, error) {
	var kinds []models.ArtifactKind
	for _, kind := range models.AllArtifactKinds() {
		if _, err := os.Stat(s.slotPath(kind)); err == nil {
			kinds = append(kinds, kind)
		}
	}
	return kinds, nil
}

func (s *Store) slotPath(kind models.ArtifactKind) string {
	return filepath.Join(s.dir, string(kind)+".json")
}
