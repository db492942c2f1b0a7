// Package store holds the shared error types for the artifact store
// backends. Each backend keeps one addressable slot per artifact kind and
// replaces slots wholesale: a reader never observes a partially written
// artifact. Backend selection happens in cmd, which wires the configured
// backend into the AppState.
package store
