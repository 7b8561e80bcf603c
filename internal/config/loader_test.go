package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != "3000" {
		t.Errorf("expected port 3000, got %s", cfg.Server.Port)
	}
	if cfg.Providers.Code.Driver != "deepseek" || cfg.Providers.Doc.Driver != "groq" {
		t.Errorf("unexpected provider pairing: %s/%s", cfg.Providers.Code.Driver, cfg.Providers.Doc.Driver)
	}
	if cfg.Orchestrator.MaxRetries != 2 {
		t.Errorf("expected 2 retries, got %d", cfg.Orchestrator.MaxRetries)
	}
	if cfg.Breaker.Timeout != 30*time.Second {
		t.Errorf("expected breaker timeout 30s, got %v", cfg.Breaker.Timeout)
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "test.yaml")

	content := `
server:
  port: "9090"
  cors_origin: "http://example.com"
orchestrator:
  max_retries: 5
logging:
  level: "debug"
`
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, yamlPath); err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.CORSOrigin != "http://example.com" {
		t.Errorf("expected cors http://example.com, got %s", cfg.Server.CORSOrigin)
	}
	if cfg.Orchestrator.MaxRetries != 5 {
		t.Errorf("expected 5 retries, got %d", cfg.Orchestrator.MaxRetries)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
	// Unchanged fields keep defaults
	if cfg.Providers.Code.Model != "deepseek-chat" {
		t.Errorf("expected default code model, got %s", cfg.Providers.Code.Model)
	}
}

func TestLoadYAMLMissingFile(t *testing.T) {
	cfg := Defaults()
	if err := loadYAML(&cfg, filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CODEWEAVER_PORT", "4000")
	t.Setenv("CODEWEAVER_MAX_RETRIES", "1")
	t.Setenv("CODEWEAVER_CODE_TIMEOUT", "15s")
	t.Setenv("CODEWEAVER_TELEMETRY_ENABLED", "true")
	t.Setenv("DEEPSEEK_API_KEY", "sk-code")
	t.Setenv("GROQ_API_KEY", "gsk-doc")

	cfg := Defaults()
	loadEnv(&cfg)

	if cfg.Server.Port != "4000" {
		t.Errorf("expected port 4000, got %s", cfg.Server.Port)
	}
	if cfg.Orchestrator.MaxRetries != 1 {
		t.Errorf("expected 1 retry, got %d", cfg.Orchestrator.MaxRetries)
	}
	if cfg.Orchestrator.CodeTimeout != 15*time.Second {
		t.Errorf("expected 15s code timeout, got %v", cfg.Orchestrator.CodeTimeout)
	}
	if !cfg.Telemetry.Enabled {
		t.Error("expected telemetry enabled")
	}
	if cfg.Providers.Code.APIKey != "sk-code" || cfg.Providers.Doc.APIKey != "gsk-doc" {
		t.Error("expected provider keys from env")
	}
}

func TestEnvSpecificKeyWinsOverProviderKey(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "sk-generic")
	t.Setenv("CODEWEAVER_CODE_API_KEY", "sk-specific")

	cfg := Defaults()
	loadEnv(&cfg)

	if cfg.Providers.Code.APIKey != "sk-specific" {
		t.Errorf("expected CODEWEAVER_CODE_API_KEY to win, got %s", cfg.Providers.Code.APIKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(*Config) {}, false},
		{"empty port", func(c *Config) { c.Server.Port = "" }, true},
		{"empty code driver", func(c *Config) { c.Providers.Code.Driver = "" }, true},
		{"negative retries", func(c *Config) { c.Orchestrator.MaxRetries = -1 }, true},
		{"zero timeout", func(c *Config) { c.Orchestrator.CodeTimeout = 0 }, true},
		{"zero burst", func(c *Config) { c.Rate.Burst = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := validate(&cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
