package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectforge/aipg/pkg/agents"
	"github.com/projectforge/aipg/pkg/blueprint"
	"github.com/projectforge/aipg/pkg/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(time.Hour, time.Hour)
	t.Cleanup(store.Close)
	return store
}

func TestStoreCreateAndGet(t *testing.T) {
	store := newTestStore(t)

	sess := store.Create("Demo", StatusProcessing)
	require.NotEmpty(t, sess.ID)

	snap, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, snap.Status)
	assert.Equal(t, "Demo", snap.ProjectName)
	assert.False(t, snap.StartTime.IsZero())

	_, err = store.Get("no-such-session")
	require.Error(t, err)
	assert.Equal(t, errors.SessionNotFound, errors.Code(err))
}

func TestStoreStatusTransitions(t *testing.T) {
	store := newTestStore(t)
	sess := store.Create("Demo", StatusProcessing)

	require.NoError(t, store.SetStatus(sess.ID, StatusGenerating))
	require.NoError(t, store.Complete(sess.ID, []agents.Result{{AgentName: "a", Success: true}}))

	snap, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.False(t, snap.EndTime.IsZero())
	require.Len(t, snap.Results, 1)

	// Terminal sessions reject further transitions.
	err = store.SetStatus(sess.ID, StatusGenerating)
	require.Error(t, err)
}

func TestStoreFail(t *testing.T) {
	store := newTestStore(t)
	sess := store.Create("Demo", StatusGenerating)

	cause := errors.New(errors.AgentExecutionFailed, "all agents failed")
	require.NoError(t, store.Fail(sess.ID, cause, nil))

	snap, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Contains(t, snap.Error, "all agents failed")
}

func TestStoreCancel(t *testing.T) {
	store := newTestStore(t)
	sess := store.Create("Demo", StatusGenerating)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, store.SetCancel(sess.ID, cancel))

	require.NoError(t, store.Cancel(sess.ID))
	assert.Error(t, ctx.Err(), "cancel must propagate to the generation context")

	snap, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, snap.Status)

	// A finished session cannot be cancelled again.
	err = store.Cancel(sess.ID)
	require.Error(t, err)
	assert.Equal(t, errors.SessionNotCancellable, errors.Code(err))
}

func TestStoreCancelRaceWithComplete(t *testing.T) {
	store := newTestStore(t)
	sess := store.Create("Demo", StatusGenerating)

	require.NoError(t, store.Cancel(sess.ID))
	require.NoError(t, store.Complete(sess.ID, nil), "late completion is a no-op")

	snap, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, snap.Status)
}

func TestStoreBlueprint(t *testing.T) {
	store := newTestStore(t)
	sess := store.Create("Demo", StatusProcessing)

	_, err := store.Blueprint(sess.ID)
	require.Error(t, err)
	assert.Equal(t, errors.ResourceNotFound, errors.Code(err))

	bp := blueprint.NewInitial("Demo", "web-application", "demo")
	require.NoError(t, store.SetBlueprint(sess.ID, bp))

	got, err := store.Blueprint(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Demo", got.ProjectInfo.Name)
}

func TestStoreFallbackRecorded(t *testing.T) {
	store := newTestStore(t)
	sess := store.Create("Demo", StatusProcessing)

	require.NoError(t, store.SetFallback(sess.ID, "analysis unusable"))
	snap, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.True(t, snap.UsedFallback)
	assert.Equal(t, "analysis unusable", snap.FallbackReason)
}

func TestStoreTTLEviction(t *testing.T) {
	store := NewStore(30*time.Millisecond, time.Hour)
	defer store.Close()

	sess := store.Create("Demo", StatusGenerating)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, store.SetCancel(sess.ID, cancel))

	time.Sleep(60 * time.Millisecond)
	store.evictExpired()

	assert.Equal(t, 0, store.Len())
	assert.Error(t, ctx.Err(), "evicting a running session cancels it")

	_, err := store.Get(sess.ID)
	require.Error(t, err)
	assert.Equal(t, errors.SessionNotFound, errors.Code(err))
}

func TestStoreEvictionDeletesArtifacts(t *testing.T) {
	store := NewStore(30*time.Millisecond, time.Hour)
	defer store.Close()

	artifacts := NewMemoryArtifactStore()
	defer artifacts.Close()
	store.EvictArtifactsOnExpiry(artifacts)
	ctx := context.Background()

	sess := store.Create("Demo", StatusCompleted)
	require.NoError(t, artifacts.Save(ctx, sess.ID, ArtifactBlueprint, []byte("{}")))
	require.NoError(t, artifacts.Save(ctx, sess.ID, ArtifactBackend, []byte("backend-zip")))

	time.Sleep(60 * time.Millisecond)
	store.evictExpired()

	assert.Equal(t, 0, store.Len())
	_, err := artifacts.Load(ctx, sess.ID, ArtifactBlueprint)
	require.Error(t, err, "blueprint removed with the session")
	_, err = artifacts.Load(ctx, sess.ID, ArtifactBackend)
	require.Error(t, err, "archives removed with the session")
}

func TestStoreTTLKeepsFreshSessions(t *testing.T) {
	store := NewStore(time.Hour, time.Hour)
	defer store.Close()

	store.Create("Demo", StatusProcessing)
	store.evictExpired()
	assert.Equal(t, 1, store.Len())
}

func TestMemoryArtifactStore(t *testing.T) {
	store := NewMemoryArtifactStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", ArtifactBackend, []byte("zip-bytes")))

	data, err := store.Load(ctx, "s1", ArtifactBackend)
	require.NoError(t, err)
	assert.Equal(t, []byte("zip-bytes"), data)

	_, err = store.Load(ctx, "s1", ArtifactFrontend)
	require.Error(t, err)
	assert.Equal(t, errors.ResourceNotFound, errors.Code(err))

	// Overwrites replace the stored artifact.
	require.NoError(t, store.Save(ctx, "s1", ArtifactBackend, []byte("new-bytes")))
	data, err = store.Load(ctx, "s1", ArtifactBackend)
	require.NoError(t, err)
	assert.Equal(t, []byte("new-bytes"), data)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Load(ctx, "s1", ArtifactBackend)
	require.Error(t, err)
}

func TestSQLiteArtifactStore(t *testing.T) {
	path := t.TempDir() + "/artifacts.db"
	store, err := NewSQLiteArtifactStore(path)
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", ArtifactBlueprint, []byte(`{"project_info":{}}`)))
	require.NoError(t, store.Save(ctx, "s1", ArtifactBackend, []byte("backend-zip")))

	data, err := store.Load(ctx, "s1", ArtifactBackend)
	require.NoError(t, err)
	assert.Equal(t, []byte("backend-zip"), data)

	_, err = store.Load(ctx, "s2", ArtifactBackend)
	require.Error(t, err)
	assert.Equal(t, errors.ResourceNotFound, errors.Code(err))

	require.NoError(t, store.Save(ctx, "s1", ArtifactBackend, []byte("updated")))
	data, err = store.Load(ctx, "s1", ArtifactBackend)
	require.NoError(t, err)
	assert.Equal(t, []byte("updated"), data)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Load(ctx, "s1", ArtifactBlueprint)
	require.Error(t, err)
}
