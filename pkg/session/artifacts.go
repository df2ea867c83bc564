package session

import (
	"context"
	"sync"

	"github.com/projectforge/aipg/pkg/errors"
)

// Artifact kinds stored per session.
const (
	ArtifactBlueprint = "blueprint"
	ArtifactBackend   = "backend"
	ArtifactFrontend  = "frontend"
)

// ArtifactStore persists the byte artifacts of a session: the blueprint JSON
// and the generated archives.
type ArtifactStore interface {
	// Save stores an artifact, replacing any previous one of the same kind.
	Save(ctx context.Context, sessionID, kind string, data []byte) error

	// Load returns an artifact, or a ResourceNotFound error.
	Load(ctx context.Context, sessionID, kind string) ([]byte, error)

	// Delete removes all artifacts for a session.
	Delete(ctx context.Context, sessionID string) error

	// Close releases store resources.
	Close() error
}

// MemoryArtifactStore keeps artifacts in process memory.
type MemoryArtifactStore struct {
	mu        sync.RWMutex
	artifacts map[string]map[string][]byte
}

// NewMemoryArtifactStore builds an empty in-memory store.
func NewMemoryArtifactStore() *MemoryArtifactStore {
	return &MemoryArtifactStore{artifacts: make(map[string]map[string][]byte)}
}

func (m *MemoryArtifactStore) Save(_ context.Context, sessionID, kind string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byKind, ok := m.artifacts[sessionID]
	if !ok {
		byKind = make(map[string][]byte)
		m.artifacts[sessionID] = byKind
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	byKind[kind] = stored
	return nil
}

func (m *MemoryArtifactStore) Load(_ context.Context, sessionID, kind string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if byKind, ok := m.artifacts[sessionID]; ok {
		if data, ok := byKind[kind]; ok {
			out := make([]byte, len(data))
			copy(out, data)
			return out, nil
		}
	}
	return nil, artifactNotFound(sessionID, kind)
}

func (m *MemoryArtifactStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.artifacts, sessionID)
	return nil
}

func (m *MemoryArtifactStore) Close() error { return nil }

func artifactNotFound(sessionID, kind string) error {
	return errors.WithFields(
		errors.New(errors.ResourceNotFound, "artifact not found"),
		errors.Fields{"session_id": sessionID, "kind": kind})
}
