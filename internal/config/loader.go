package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Strob0t/Hearth/internal/domain/routing"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "hearth.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "HEARTH_PORT")
	setString(&cfg.Server.CORSOrigin, "HEARTH_CORS_ORIGIN")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "HEARTH_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "HEARTH_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "HEARTH_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "HEARTH_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "HEARTH_PG_HEALTH_CHECK")
	setString(&cfg.NATS.URL, "NATS_URL")
	setBool(&cfg.NATS.Enabled, "HEARTH_NATS_ENABLED")
	setString(&cfg.SmartHome.URL, "HEARTH_SMARTHOME_URL")
	setString(&cfg.SmartHome.Token, "HEARTH_SMARTHOME_TOKEN")
	setString(&cfg.Models.Ollama.URL, "OLLAMA_BASE_URL")
	setString(&cfg.Models.Cloud.URL, "HEARTH_CLOUD_URL")
	setString(&cfg.Models.Cloud.APIKey, "HEARTH_CLOUD_API_KEY")
	setDuration(&cfg.Models.CallTimeout, "HEARTH_MODEL_TIMEOUT")
	setInt(&cfg.Models.MaxTokens, "HEARTH_MODEL_MAX_TOKENS")
	setFloat64(&cfg.Models.Temperature, "HEARTH_MODEL_TEMPERATURE")
	setString(&cfg.Logging.Level, "HEARTH_LOG_LEVEL")
	setString(&cfg.Logging.Service, "HEARTH_LOG_SERVICE")
	setInt(&cfg.Breaker.MaxFailures, "HEARTH_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Window, "HEARTH_BREAKER_WINDOW")
	setInt64(&cfg.Cache.MaxSizeMB, "HEARTH_CACHE_SIZE_MB")
	setDuration(&cfg.Cache.TTL, "HEARTH_CACHE_TTL")
	setFloat64(&cfg.Classifier.MinConfidence, "HEARTH_MIN_CONFIDENCE")
	setInt(&cfg.Classifier.MaxIntents, "HEARTH_MAX_INTENTS")
	setDuration(&cfg.Orchestrator.ExpertTimeout, "HEARTH_EXPERT_TIMEOUT")
	setDuration(&cfg.Orchestrator.RetryBackoff, "HEARTH_RETRY_BACKOFF")
	setInt(&cfg.Orchestrator.MaxParallel, "HEARTH_MAX_PARALLEL")
	setInt(&cfg.Orchestrator.HistoryLimit, "HEARTH_HISTORY_LIMIT")
	setBool(&cfg.Telemetry.Enabled, "HEARTH_OTEL_ENABLED")
	setString(&cfg.Telemetry.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// validate checks that required fields are set and that every model chain
// is finite and free of repeated candidates.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Classifier.MinConfidence <= 0 || cfg.Classifier.MinConfidence >= 1 {
		return errors.New("classifier.min_confidence must be in (0, 1)")
	}
	for _, tier := range []routing.Tier{routing.TierLow, routing.TierMedium, routing.TierHigh} {
		chain := cfg.Models.Chain(tier)
		if len(chain) == 0 {
			return fmt.Errorf("models.%s: at least one candidate is required", tier)
		}
		seen := make(map[string]bool, len(chain))
		for _, route := range chain {
			if route.Provider == "" || route.Model == "" {
				return fmt.Errorf("models.%s: provider and model are required", tier)
			}
			if seen[route.Key()] {
				return fmt.Errorf("models.%s: candidate %s repeats in chain", tier, route.Key())
			}
			seen[route.Key()] = true
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
