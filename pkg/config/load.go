package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/projectforge/aipg/pkg/errors"
	"github.com/projectforge/aipg/pkg/prd"
	"github.com/projectforge/aipg/pkg/session"
)

// Default builds the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ShutdownTimeout: 15 * time.Second,
		},
		LLM: LLMConfig{
			Provider:  "google",
			ModelID:   "gemini-2.5-flash",
			APIKeyEnv: "GEMINI_API_KEY",
		},
		Generation: GenerationConfig{
			Concurrency:    4,
			AgentTimeout:   5 * time.Minute,
			MaxUploadBytes: prd.DefaultMaxBytes,
		},
		Session: SessionConfig{
			TTL:             session.DefaultTTL,
			CleanupInterval: session.DefaultCleanupInterval,
		},
		Artifacts: ArtifactsConfig{
			Backend: "memory",
			Path:    "aipg_artifacts.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

var validate = validator.New()

// Load reads the YAML config at path, applies environment overrides, and
// validates the result. An empty path yields the defaults plus overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, errors.InvalidInput, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, errors.InvalidInput, "failed to parse config file")
		}
	}

	applyEnvOverrides(cfg)

	if err := validate.Struct(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ValidationFailed, "invalid configuration")
	}
	return cfg, nil
}

// APIKey resolves the provider API key from the configured environment
// variable.
func (c *Config) APIKey() string {
	if c.LLM.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.LLM.APIKeyEnv)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AIPG_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("AIPG_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("AIPG_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("AIPG_LLM_MODEL"); v != "" {
		cfg.LLM.ModelID = v
	}
	if v := os.Getenv("AIPG_LLM_API_KEY_ENV"); v != "" {
		cfg.LLM.APIKeyEnv = v
	}
	if v := os.Getenv("AIPG_AGENT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Generation.AgentTimeout = d
		}
	}
	if v := os.Getenv("AIPG_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Session.TTL = d
		}
	}
	if v := os.Getenv("AIPG_ARTIFACTS_BACKEND"); v != "" {
		cfg.Artifacts.Backend = v
	}
	if v := os.Getenv("AIPG_ARTIFACTS_PATH"); v != "" {
		cfg.Artifacts.Path = v
	}
	if v := os.Getenv("AIPG_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
