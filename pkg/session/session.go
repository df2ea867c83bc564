// Package session tracks generation sessions and their artifacts.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/projectforge/aipg/pkg/agents"
	"github.com/projectforge/aipg/pkg/blueprint"
	"github.com/projectforge/aipg/pkg/errors"
	"github.com/projectforge/aipg/pkg/logging"
)

// Status is the lifecycle state of a generation session.
type Status string

const (
	StatusProcessing Status = "PROCESSING"
	StatusGenerating Status = "GENERATING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusCancelled  Status = "CANCELLED"

	// StatusNotFound is only ever rendered in responses for unknown ids.
	StatusNotFound Status = "NOT_FOUND"
)

// Terminal reports whether no further transitions can happen.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Session is the tracked state of one upload or generation run.
type Session struct {
	ID             string
	ProjectName    string
	Status         Status
	StartTime      time.Time
	EndTime        time.Time
	Error          string
	Results        []agents.Result
	UsedFallback   bool
	FallbackReason string

	blueprint *blueprint.Blueprint
	cancel    context.CancelFunc
	updatedAt time.Time
}

// Snapshot is a copy of session state safe to hand to HTTP handlers.
type Snapshot struct {
	ID             string
	ProjectName    string
	Status         Status
	StartTime      time.Time
	EndTime        time.Time
	Error          string
	Results        []agents.Result
	UsedFallback   bool
	FallbackReason string
}

const (
	DefaultTTL             = 2 * time.Hour
	DefaultCleanupInterval = 5 * time.Minute
)

// Store keeps sessions in memory with TTL eviction. Sessions that have not
// been touched within the TTL are cancelled if still running and removed.
type Store struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	ttl       time.Duration
	onEvict   func(sessionID string)
	closeChan chan struct{}
	cleanupWG sync.WaitGroup
	closeOnce sync.Once
}

// NewStore builds a Store and starts its cleanup loop. Non-positive
// durations select the defaults.
func NewStore(ttl, cleanupInterval time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}

	s := &Store{
		sessions:  make(map[string]*Session),
		ttl:       ttl,
		closeChan: make(chan struct{}),
	}

	s.cleanupWG.Add(1)
	go s.cleanupRoutine(cleanupInterval)
	return s
}

// Close stops the cleanup loop and cancels any running sessions.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.closeChan)
	})
	s.cleanupWG.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.cancel != nil && !sess.Status.Terminal() {
			sess.cancel()
		}
	}
}

// EvictArtifactsOnExpiry deletes a session's artifacts when the session is
// evicted, so the memory backend does not accumulate archives forever. The
// sqlite backend is left unwired on purpose: its artifacts outlive sessions
// so downloads survive eviction and restarts.
func (s *Store) EvictArtifactsOnExpiry(artifacts ArtifactStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvict = func(sessionID string) {
		if err := artifacts.Delete(context.Background(), sessionID); err != nil {
			logging.GetLogger().Warn(context.Background(),
				"failed to delete artifacts for evicted session %s: %v", sessionID, err)
		}
	}
}

// Create registers a new session in the given starting status.
func (s *Store) Create(projectName string, status Status) *Session {
	now := time.Now()
	sess := &Session{
		ID:          uuid.NewString(),
		ProjectName: projectName,
		Status:      status,
		StartTime:   now,
		updatedAt:   now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns a snapshot of the session, or a SessionNotFound error.
func (s *Store) Get(id string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Snapshot{}, notFound(id)
	}
	return sess.snapshot(), nil
}

// SetStatus moves a session to a new status. Transitions out of a terminal
// status are rejected.
func (s *Store) SetStatus(id string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return notFound(id)
	}
	if sess.Status.Terminal() {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "session already finished"),
			errors.Fields{"session_id": id, "status": string(sess.Status)})
	}

	sess.Status = status
	sess.touch()
	if status.Terminal() {
		sess.EndTime = time.Now()
	}
	return nil
}

// SetBlueprint attaches the blueprint produced for this session.
func (s *Store) SetBlueprint(id string, bp *blueprint.Blueprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return notFound(id)
	}
	sess.blueprint = bp
	sess.touch()
	return nil
}

// Blueprint returns the session's blueprint, or ResourceNotFound when the
// session exists but has no blueprint yet.
func (s *Store) Blueprint(id string) (*blueprint.Blueprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, notFound(id)
	}
	if sess.blueprint == nil {
		return nil, errors.WithFields(
			errors.New(errors.ResourceNotFound, "no blueprint for session"),
			errors.Fields{"session_id": id})
	}
	return sess.blueprint, nil
}

// SetFallback records that PRD analysis fell back to keyword extraction.
func (s *Store) SetFallback(id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return notFound(id)
	}
	sess.UsedFallback = true
	sess.FallbackReason = reason
	sess.touch()
	return nil
}

// SetCancel attaches the context cancel function of a running generation.
func (s *Store) SetCancel(id string, cancel context.CancelFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return notFound(id)
	}
	sess.cancel = cancel
	sess.touch()
	return nil
}

// Cancel aborts a running session. Only PROCESSING and GENERATING sessions
// can be cancelled.
func (s *Store) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return notFound(id)
	}
	if sess.Status != StatusProcessing && sess.Status != StatusGenerating {
		return errors.WithFields(
			errors.New(errors.SessionNotCancellable, "session is not running"),
			errors.Fields{"session_id": id, "status": string(sess.Status)})
	}

	if sess.cancel != nil {
		sess.cancel()
	}
	sess.Status = StatusCancelled
	sess.EndTime = time.Now()
	sess.touch()
	return nil
}

// Complete marks the session finished and records the agent results.
func (s *Store) Complete(id string, results []agents.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return notFound(id)
	}
	if sess.Status.Terminal() {
		// A cancel can race completion. First terminal state wins.
		return nil
	}
	sess.Status = StatusCompleted
	sess.Results = results
	sess.EndTime = time.Now()
	sess.touch()
	return nil
}

// Fail marks the session failed with the given error.
func (s *Store) Fail(id string, cause error, results []agents.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return notFound(id)
	}
	if sess.Status.Terminal() {
		return nil
	}
	sess.Status = StatusFailed
	if cause != nil {
		sess.Error = cause.Error()
	}
	sess.Results = results
	sess.EndTime = time.Now()
	sess.touch()
	return nil
}

// Len reports the number of tracked sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) cleanupRoutine(interval time.Duration) {
	defer s.cleanupWG.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.closeChan:
			return
		case <-ticker.C:
			s.evictExpired()
		}
	}
}

func (s *Store) evictExpired() {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	var evicted []string
	for id, sess := range s.sessions {
		if sess.updatedAt.After(cutoff) {
			continue
		}
		if sess.cancel != nil && !sess.Status.Terminal() {
			sess.cancel()
		}
		delete(s.sessions, id)
		evicted = append(evicted, id)
	}
	remaining := len(s.sessions)
	onEvict := s.onEvict
	s.mu.Unlock()

	if len(evicted) == 0 {
		return
	}
	if onEvict != nil {
		for _, id := range evicted {
			onEvict(id)
		}
	}
	logging.GetLogger().Info(context.Background(),
		"evicted %d expired sessions, %d remain", len(evicted), remaining)
}

func (sess *Session) touch() {
	sess.updatedAt = time.Now()
}

func (sess *Session) snapshot() Snapshot {
	results := make([]agents.Result, len(sess.Results))
	copy(results, sess.Results)
	return Snapshot{
		ID:             sess.ID,
		ProjectName:    sess.ProjectName,
		Status:         sess.Status,
		StartTime:      sess.StartTime,
		EndTime:        sess.EndTime,
		Error:          sess.Error,
		Results:        results,
		UsedFallback:   sess.UsedFallback,
		FallbackReason: sess.FallbackReason,
	}
}

func notFound(id string) error {
	return errors.WithFields(
		errors.New(errors.SessionNotFound, "session not found"),
		errors.Fields{"session_id": id})
}
