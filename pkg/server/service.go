// Package server exposes the project generation pipeline over HTTP.
package server

import (
	"context"
	"strings"
	"sync"

	"github.com/projectforge/aipg/pkg/agents"
	"github.com/projectforge/aipg/pkg/blueprint"
	"github.com/projectforge/aipg/pkg/errors"
	"github.com/projectforge/aipg/pkg/generator"
	"github.com/projectforge/aipg/pkg/logging"
	"github.com/projectforge/aipg/pkg/prd"
	"github.com/projectforge/aipg/pkg/session"
)

// Service coordinates PRD processing, agent orchestration, and artifact
// assembly around the session store. HTTP handlers stay thin on top of it.
type Service struct {
	store        *session.Store
	artifacts    session.ArtifactStore
	processor    *prd.Processor
	orchestrator *agents.Orchestrator

	// wg tracks background runs so Close can drain them.
	wg sync.WaitGroup
}

// NewService wires the pipeline together. With the memory artifact backend,
// artifacts are deleted when their session is evicted; sqlite artifacts are
// kept so downloads survive eviction and restarts.
func NewService(store *session.Store, artifacts session.ArtifactStore, processor *prd.Processor, orchestrator *agents.Orchestrator) *Service {
	if _, ok := artifacts.(*session.MemoryArtifactStore); ok {
		store.EvictArtifactsOnExpiry(artifacts)
	}
	return &Service{
		store:        store,
		artifacts:    artifacts,
		processor:    processor,
		orchestrator: orchestrator,
	}
}

// Close waits for in-flight background runs to finish.
func (s *Service) Close() {
	s.wg.Wait()
}

// DirectRequest is the body of a direct generation call, project settings
// without a PRD.
type DirectRequest struct {
	ProjectName string `json:"projectName"`
	ProjectType string `json:"projectType"`
	Description string `json:"description"`
}

func (r *DirectRequest) applyDefaults() {
	if strings.TrimSpace(r.ProjectName) == "" {
		r.ProjectName = "Generated Project"
	}
	if strings.TrimSpace(r.ProjectType) == "" {
		r.ProjectType = "web-application"
	}
	if strings.TrimSpace(r.Description) == "" {
		r.Description = "AI Generated Project"
	}
}

// UploadPRD registers a session and processes the uploaded PRD in the
// background. The returned session starts in PROCESSING.
func (s *Service) UploadPRD(filename string, data []byte, projectName string) (string, error) {
	if len(data) == 0 {
		return "", errors.New(errors.InvalidInput, "file is empty")
	}

	sess := s.store.Create(projectName, session.StatusProcessing)

	ctx, cancel := context.WithCancel(context.Background())
	ctx = logging.WithSessionID(ctx, sess.ID)
	if err := s.store.SetCancel(sess.ID, cancel); err != nil {
		cancel()
		return "", err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.processPRD(ctx, sess.ID, filename, data, projectName)
	}()

	return sess.ID, nil
}

func (s *Service) processPRD(ctx context.Context, sessionID, filename string, data []byte, projectName string) {
	logger := logging.GetLogger()
	logger.Info(ctx, "processing PRD upload %q", filename)

	outcome, err := s.processor.Process(ctx, filename, data, projectName)
	if err != nil {
		logger.Error(ctx, "PRD processing failed: %v", err)
		_ = s.store.Fail(sessionID, err, nil)
		return
	}

	if outcome.UsedFallback {
		_ = s.store.SetFallback(sessionID, outcome.FallbackReason)
	}
	if err := s.store.SetBlueprint(sessionID, outcome.Blueprint); err != nil {
		logger.Warn(ctx, "failed to attach blueprint: %v", err)
		return
	}
	s.saveBlueprintArtifact(ctx, sessionID, outcome.Blueprint)
	logger.Info(ctx, "PRD processing completed")
}

// StartGeneration launches agent orchestration for a session whose PRD has
// already been processed into a blueprint. A session already generating is
// rejected so a repeated request cannot launch a duplicate run.
func (s *Service) StartGeneration(sessionID string) error {
	snap, err := s.store.Get(sessionID)
	if err != nil {
		return err
	}
	if snap.Status == session.StatusGenerating {
		return errors.WithFields(
			errors.New(errors.GenerationInProgress, "generation already running"),
			errors.Fields{"session_id": sessionID})
	}

	bp, err := s.store.Blueprint(sessionID)
	if err != nil {
		return err
	}
	if err := s.store.SetStatus(sessionID, session.StatusGenerating); err != nil {
		return err
	}
	s.launchRun(sessionID, bp)
	return nil
}

// GenerateDirect builds a blueprint from inline settings and launches
// generation immediately, no PRD involved.
func (s *Service) GenerateDirect(req DirectRequest) (string, error) {
	req.applyDefaults()

	bp := blueprint.NewInitial(req.ProjectName, req.ProjectType, req.Description)
	sess := s.store.Create(req.ProjectName, session.StatusGenerating)
	if err := s.store.SetBlueprint(sess.ID, bp); err != nil {
		return "", err
	}
	s.launchRun(sess.ID, bp)
	return sess.ID, nil
}

func (s *Service) launchRun(sessionID string, bp *blueprint.Blueprint) {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = logging.WithSessionID(ctx, sessionID)
	if err := s.store.SetCancel(sessionID, cancel); err != nil {
		cancel()
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.run(ctx, sessionID, bp)
	}()
}

func (s *Service) run(ctx context.Context, sessionID string, bp *blueprint.Blueprint) {
	logger := logging.GetLogger()
	logger.Info(ctx, "starting project generation for %q", bp.Name())

	s.saveBlueprintArtifact(ctx, sessionID, bp)

	results, err := s.orchestrator.Execute(ctx, bp)
	if err != nil {
		logger.Error(ctx, "generation failed: %v", err)
		_ = s.store.Fail(sessionID, err, results)
		return
	}

	artifacts, err := generator.Assemble(ctx, results, bp)
	if err != nil {
		logger.Error(ctx, "archive assembly failed: %v", err)
		_ = s.store.Fail(sessionID, err, results)
		return
	}

	saveCtx := context.WithoutCancel(ctx)
	if artifacts.BackendZip != nil {
		if err := s.artifacts.Save(saveCtx, sessionID, session.ArtifactBackend, artifacts.BackendZip); err != nil {
			logger.Error(ctx, "failed to persist backend archive: %v", err)
			_ = s.store.Fail(sessionID, err, results)
			return
		}
	}
	if artifacts.FrontendZip != nil {
		if err := s.artifacts.Save(saveCtx, sessionID, session.ArtifactFrontend, artifacts.FrontendZip); err != nil {
			logger.Error(ctx, "failed to persist frontend archive: %v", err)
			_ = s.store.Fail(sessionID, err, results)
			return
		}
	}

	_ = s.store.Complete(sessionID, results)
	logger.Info(ctx, "project generation completed")
}

func (s *Service) saveBlueprintArtifact(ctx context.Context, sessionID string, bp *blueprint.Blueprint) {
	data, err := bp.MarshalIndent()
	if err != nil {
		return
	}
	if err := s.artifacts.Save(context.WithoutCancel(ctx), sessionID, session.ArtifactBlueprint, data); err != nil {
		logging.GetLogger().Warn(ctx, "failed to persist blueprint artifact: %v", err)
	}
}

// Status returns a session snapshot.
func (s *Service) Status(sessionID string) (session.Snapshot, error) {
	return s.store.Get(sessionID)
}

// BlueprintJSON returns the stored blueprint for a session as JSON.
func (s *Service) BlueprintJSON(ctx context.Context, sessionID string) ([]byte, error) {
	if bp, err := s.store.Blueprint(sessionID); err == nil {
		return bp.MarshalIndent()
	}
	// The session may have been evicted while its artifacts persist.
	return s.artifacts.Load(ctx, sessionID, session.ArtifactBlueprint)
}

// Archive returns a generated archive. kind is backend, frontend, or
// combined.
func (s *Service) Archive(ctx context.Context, sessionID, kind string) ([]byte, error) {
	if kind != "combined" {
		return s.artifacts.Load(ctx, sessionID, kind)
	}

	backendZip, berr := s.artifacts.Load(ctx, sessionID, session.ArtifactBackend)
	frontendZip, ferr := s.artifacts.Load(ctx, sessionID, session.ArtifactFrontend)
	if berr != nil && ferr != nil {
		return nil, artifactMissing(sessionID)
	}
	return generator.BuildCombinedZip(backendZip, frontendZip)
}

// Cancel aborts a running session.
func (s *Service) Cancel(sessionID string) error {
	return s.store.Cancel(sessionID)
}

// AgentInfo lists the registered agents.
func (s *Service) AgentInfo() []agents.Info {
	return s.orchestrator.AgentInfo()
}

func artifactMissing(sessionID string) error {
	return errors.WithFields(
		errors.New(errors.ResourceNotFound, "no archives for session"),
		errors.Fields{"session_id": sessionID})
}
