// Package config defines the service configuration and its loading rules.
package config

import (
	"time"
)

// Config is the complete service configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server,omitempty" validate:"omitempty"`
	LLM        LLMConfig        `yaml:"llm" validate:"required"`
	Generation GenerationConfig `yaml:"generation,omitempty" validate:"omitempty"`
	Session    SessionConfig    `yaml:"session,omitempty" validate:"omitempty"`
	Artifacts  ArtifactsConfig  `yaml:"artifacts,omitempty" validate:"omitempty"`
	Logging    LoggingConfig    `yaml:"logging,omitempty" validate:"omitempty"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout,omitempty"`
}

// LLMConfig selects the model backing the agents.
type LLMConfig struct {
	// Provider name (anthropic, google, ollama).
	Provider string `yaml:"provider" validate:"required,oneof=anthropic google ollama"`

	// ModelID, e.g. gemini-2.5-flash or ollama:llama3.
	ModelID string `yaml:"model_id" validate:"required"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
}

// GenerationConfig tunes the agent pipeline.
type GenerationConfig struct {
	// Concurrency bounds how many agents run at once.
	Concurrency int `yaml:"concurrency,omitempty" validate:"omitempty,min=1,max=32"`

	// AgentTimeout caps a single agent run.
	AgentTimeout time.Duration `yaml:"agent_timeout,omitempty"`

	// MaxUploadBytes caps uploaded PRD size.
	MaxUploadBytes int64 `yaml:"max_upload_bytes,omitempty" validate:"omitempty,min=1024"`
}

// SessionConfig tunes session tracking.
type SessionConfig struct {
	// TTL is how long an idle session survives.
	TTL time.Duration `yaml:"ttl,omitempty"`

	// CleanupInterval is how often expired sessions are evicted.
	CleanupInterval time.Duration `yaml:"cleanup_interval,omitempty"`
}

// ArtifactsConfig selects the artifact store backend.
type ArtifactsConfig struct {
	// Backend is memory or sqlite.
	Backend string `yaml:"backend,omitempty" validate:"omitempty,oneof=memory sqlite"`

	// Path is the sqlite database file.
	Path string `yaml:"path,omitempty"`
}

// LoggingConfig tunes log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error, fatal.
	Level string `yaml:"level,omitempty" validate:"omitempty,oneof=debug info warn error fatal"`

	// File, when set, duplicates log output to a file.
	File string `yaml:"file,omitempty"`
}
