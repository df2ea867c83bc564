// Command aipgd runs the AI project generator HTTP service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/projectforge/aipg/pkg/agents"
	"github.com/projectforge/aipg/pkg/config"
	"github.com/projectforge/aipg/pkg/core"
	"github.com/projectforge/aipg/pkg/llms"
	"github.com/projectforge/aipg/pkg/logging"
	"github.com/projectforge/aipg/pkg/prd"
	"github.com/projectforge/aipg/pkg/server"
	"github.com/projectforge/aipg/pkg/session"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "aipgd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := setupLogging(cfg.Logging); err != nil {
		return err
	}
	logger := logging.GetLogger()
	ctx := context.Background()

	llm, err := llms.NewLLMForProvider(cfg.LLM.Provider, cfg.APIKey(), core.ModelID(cfg.LLM.ModelID))
	if err != nil {
		return fmt.Errorf("failed to initialize LLM: %w", err)
	}
	logger.Info(ctx, "using %s model %s", llm.ProviderName(), llm.ModelID())

	store := session.NewStore(cfg.Session.TTL, cfg.Session.CleanupInterval)
	defer store.Close()

	artifacts, err := newArtifactStore(cfg.Artifacts)
	if err != nil {
		return err
	}
	defer artifacts.Close()

	orchestrator := agents.NewOrchestrator(
		agents.DefaultAgents(llm),
		agents.WithConcurrency(cfg.Generation.Concurrency),
		agents.WithAgentTimeout(cfg.Generation.AgentTimeout),
	)
	processor := prd.NewProcessor(agents.NewAnalystAgent(llm), cfg.Generation.MaxUploadBytes)

	service := server.NewService(store, artifacts, processor, orchestrator)
	defer service.Close()

	srv := server.New(service, server.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		MaxUploadBytes: cfg.Generation.MaxUploadBytes,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info(ctx, "received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn(ctx, "shutdown did not complete cleanly: %v", err)
	}
	return nil
}

func setupLogging(cfg config.LoggingConfig) error {
	outputs := []logging.Output{logging.NewConsoleOutput(true, logging.WithColor(true))}
	if cfg.File != "" {
		fileOut, err := logging.NewFileOutput(cfg.File)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		outputs = append(outputs, fileOut)
	}
	logging.SetLogger(logging.NewLogger(logging.Config{
		Severity: logging.ParseSeverity(cfg.Level),
		Outputs:  outputs,
	}))
	return nil
}

func newArtifactStore(cfg config.ArtifactsConfig) (session.ArtifactStore, error) {
	if cfg.Backend == "sqlite" {
		return session.NewSQLiteArtifactStore(cfg.Path)
	}
	return session.NewMemoryArtifactStore(), nil
}
