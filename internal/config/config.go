// Package config provides hierarchical configuration loading for CodeWeaver.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the CodeWeaver core service.
type Config struct {
	Server       Server       `yaml:"server"`
	Providers    Providers    `yaml:"providers"`
	Orchestrator Orchestrator `yaml:"orchestrator"`
	Logging      Logging      `yaml:"logging"`
	Breaker      Breaker      `yaml:"breaker"`
	Rate         Rate         `yaml:"rate"`
	Idempotency  Idempotency  `yaml:"idempotency"`
	Telemetry    Telemetry    `yaml:"telemetry"`
	Export       Export       `yaml:"export"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
}

// Provider holds the configuration for one model provider endpoint.
type Provider struct {
	Driver      string  `yaml:"driver"`   // registered gateway driver name
	BaseURL     string  `yaml:"base_url"` // empty = driver default
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// Providers holds the per-role provider configuration.
type Providers struct {
	Code Provider `yaml:"code"`
	Doc  Provider `yaml:"doc"`
}

// Orchestrator holds run execution configuration.
type Orchestrator struct {
	MaxRetries    int           `yaml:"max_retries"`    // retries per stage after the first attempt
	MaxConcurrent int64         `yaml:"max_concurrent"` // concurrent runs; values below 1 clamp to 1
	CodeTimeout   time.Duration `yaml:"code_timeout"`   // per gateway call, code stage
	DocTimeout    time.Duration `yaml:"doc_timeout"`    // per gateway call, doc stage
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// Breaker holds circuit breaker configuration for provider calls.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Rate holds rate limiter configuration.
type Rate struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Idempotency holds response replay cache configuration.
type Idempotency struct {
	TTL        time.Duration `yaml:"ttl"`
	MaxSizeMB  int64         `yaml:"max_size_mb"`
	HeaderName string        `yaml:"header_name"`
}

// Telemetry holds OTLP metrics export configuration.
type Telemetry struct {
	Enabled  bool          `yaml:"enabled"`
	Endpoint string        `yaml:"endpoint"`
	Insecure bool          `yaml:"insecure"`
	Interval time.Duration `yaml:"interval"`
}

// Export holds export formatter configuration.
type Export struct {
	Dir string `yaml:"dir"`
}

// Defaults returns a Config with sensible default values for local development.
// Provider endpoints and models follow the service's stock pairing: DeepSeek
// for code generation, Groq for documentation.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:       "3000",
			CORSOrigin: "http://localhost:5173",
		},
		Providers: Providers{
			Code: Provider{
				Driver:      "deepseek",
				Model:       "deepseek-chat",
				MaxTokens:   4000,
				Temperature: 0.7,
			},
			Doc: Provider{
				Driver:      "groq",
				Model:       "llama-3.3-70b-versatile",
				MaxTokens:   8000,
				Temperature: 0.7,
			},
		},
		Orchestrator: Orchestrator{
			MaxRetries:    2,
			MaxConcurrent: 8,
			CodeTimeout:   60 * time.Second,
			DocTimeout:    90 * time.Second,
		},
		Logging: Logging{
			Level:   "info",
			Service: "codeweaver-core",
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		Rate: Rate{
			RequestsPerSecond: 5,
			Burst:             20,
		},
		Idempotency: Idempotency{
			TTL:        10 * time.Minute,
			MaxSizeMB:  64,
			HeaderName: "Idempotency-Key",
		},
		Telemetry: Telemetry{
			Enabled:  false,
			Endpoint: "localhost:4317",
			Insecure: true,
			Interval: 30 * time.Second,
		},
		Export: Export{
			Dir: "exports",
		},
	}
}
