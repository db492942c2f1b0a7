// Package redisstore implements the artifact store on redis: one key per
// slot. SET replaces the whole value atomically, which is exactly the
// whole-slot replace the store contract asks for.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/curalab/triage/pkg/models"
	"github.com/curalab/triage/pkg/store"
)

const keyPrefix = "triage:artifact:"

type Store struct {
	client *redis.Client
}

var _ models.ArtifactStore = &Store{}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Put(ctx context.Context, artifact *models.Artifact) error {
	data, err := json.Marshal(artifact)
	if err != nil {
		return store.NewStorageError("marshaling artifact", err)
	}
	if err := s.client.Set(ctx, slotKey(artifact.Kind), data, 0).Err(); err != nil {
		return store.NewStorageError("writing artifact slot", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, kind models.ArtifactKind) (*models.Artifact, error) {
	data, err := s.client.Get(ctx, slotKey(kind)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.NewSlotNotFoundError(kind)
		}
		return nil, store.NewStorageError("reading artifact slot", err)
	}

	var artifact models.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, store.NewStorageError("unmarshaling artifact", err)
	}
	return &artifact, nil
}

func (s *Store) List(ctx context.Context) ([]models.ArtifactKind, error) {
	var kinds []models.ArtifactKind
	for _, kind := range models.AllArtifactKinds() {
		n, err := s.client.Exists(ctx, slotKey(kind)).Result()
		if err != nil {
			return nil, store.NewStorageError("checking artifact slot", err)
		}
		if n > 0 {
			kinds = append(kinds, kind)
		}
	}
	return kinds, nil
}

func slotKey(kind models.ArtifactKind) string {
	return keyPrefix + string(kind)
}
