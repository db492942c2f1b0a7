package models

import "context"

// ArtifactStore persists trained artifacts, one addressable slot per kind.
// Put replaces the whole slot atomically; readers never observe a partial
// write. Get returns an error wrapping ErrArtifactMissing for empty slots.
type ArtifactStore interface {
	Put(ctx context.Context, artifact *Artifact) error
	Get(ctx context.Context, kind ArtifactKind) (*Artifact, error)
	List(ctx context.Context) ([]ArtifactKind, error)
}
