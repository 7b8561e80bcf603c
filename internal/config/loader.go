package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "codeweaver.yaml"

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
// DEEPSEEK_API_KEY and GROQ_API_KEY are honored for compatibility with the
// stock provider pairing.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "CODEWEAVER_PORT")
	setString(&cfg.Server.CORSOrigin, "CODEWEAVER_CORS_ORIGIN")

	setString(&cfg.Providers.Code.Driver, "CODEWEAVER_CODE_DRIVER")
	setString(&cfg.Providers.Code.BaseURL, "CODEWEAVER_CODE_BASE_URL")
	setString(&cfg.Providers.Code.APIKey, "DEEPSEEK_API_KEY")
	setString(&cfg.Providers.Code.APIKey, "CODEWEAVER_CODE_API_KEY")
	setString(&cfg.Providers.Code.Model, "CODEWEAVER_CODE_MODEL")
	setInt(&cfg.Providers.Code.MaxTokens, "CODEWEAVER_CODE_MAX_TOKENS")

	setString(&cfg.Providers.Doc.Driver, "CODEWEAVER_DOC_DRIVER")
	setString(&cfg.Providers.Doc.BaseURL, "CODEWEAVER_DOC_BASE_URL")
	setString(&cfg.Providers.Doc.APIKey, "GROQ_API_KEY")
	setString(&cfg.Providers.Doc.APIKey, "CODEWEAVER_DOC_API_KEY")
	setString(&cfg.Providers.Doc.Model, "CODEWEAVER_DOC_MODEL")
	setInt(&cfg.Providers.Doc.MaxTokens, "CODEWEAVER_DOC_MAX_TOKENS")

	setInt(&cfg.Orchestrator.MaxRetries, "CODEWEAVER_MAX_RETRIES")
	setInt64(&cfg.Orchestrator.MaxConcurrent, "CODEWEAVER_MAX_CONCURRENT")
	setDuration(&cfg.Orchestrator.CodeTimeout, "CODEWEAVER_CODE_TIMEOUT")
	setDuration(&cfg.Orchestrator.DocTimeout, "CODEWEAVER_DOC_TIMEOUT")

	setString(&cfg.Logging.Level, "CODEWEAVER_LOG_LEVEL")
	setString(&cfg.Logging.Service, "CODEWEAVER_LOG_SERVICE")

	setInt(&cfg.Breaker.MaxFailures, "CODEWEAVER_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "CODEWEAVER_BREAKER_TIMEOUT")

	setFloat64(&cfg.Rate.RequestsPerSecond, "CODEWEAVER_RATE_RPS")
	setInt(&cfg.Rate.Burst, "CODEWEAVER_RATE_BURST")

	setDuration(&cfg.Idempotency.TTL, "CODEWEAVER_IDEMPOTENCY_TTL")
	setInt64(&cfg.Idempotency.MaxSizeMB, "CODEWEAVER_IDEMPOTENCY_SIZE_MB")

	setBool(&cfg.Telemetry.Enabled, "CODEWEAVER_TELEMETRY_ENABLED")
	setString(&cfg.Telemetry.Endpoint, "CODEWEAVER_TELEMETRY_ENDPOINT")
	setBool(&cfg.Telemetry.Insecure, "CODEWEAVER_TELEMETRY_INSECURE")
	setDuration(&cfg.Telemetry.Interval, "CODEWEAVER_TELEMETRY_INTERVAL")

	setString(&cfg.Export.Dir, "CODEWEAVER_EXPORT_DIR")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Providers.Code.Driver == "" {
		return errors.New("providers.code.driver is required")
	}
	if cfg.Providers.Doc.Driver == "" {
		return errors.New("providers.doc.driver is required")
	}
	if cfg.Orchestrator.MaxRetries < 0 {
		return errors.New("orchestrator.max_retries must be >= 0")
	}
	if cfg.Orchestrator.CodeTimeout <= 0 || cfg.Orchestrator.DocTimeout <= 0 {
		return errors.New("orchestrator timeouts must be > 0")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Rate.Burst < 1 {
		return errors.New("rate.burst must be >= 1")
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
