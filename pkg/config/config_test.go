package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AIOT_CONFIG_PATH", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.TokenTTL != 3600 {
		t.Errorf("expected default token_ttl 3600, got %d", cfg.TokenTTL)
	}
	if cfg.APIListLimitMax != 1000 {
		t.Errorf("expected default api_list_limit_max 1000, got %d", cfg.APIListLimitMax)
	}
	if cfg.Source("token_ttl") != "default" {
		t.Errorf("expected source 'default', got %q", cfg.Source("token_ttl"))
	}
	if !cfg.ConsulEnabled {
		t.Error("expected consul enabled by default")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("token_ttl: 120\narchive_retention_days: 7\ntrusted_proxies:\n  - 10.0.0.0/8\n")
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), content, 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("AIOT_CONFIG_PATH", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.TokenTTL != 120 {
		t.Errorf("expected token_ttl 120 from file, got %d", cfg.TokenTTL)
	}
	if cfg.Source("token_ttl") != "file" {
		t.Errorf("expected source 'file', got %q", cfg.Source("token_ttl"))
	}
	if cfg.ArchiveRetentionDays != 7 {
		t.Errorf("expected archive_retention_days 7, got %d", cfg.ArchiveRetentionDays)
	}
	if !cfg.IsTrustedProxy("10.1.2.3") {
		t.Error("expected 10.1.2.3 to be a trusted proxy")
	}
	if cfg.IsTrustedProxy("192.168.1.1") {
		t.Error("expected 192.168.1.1 to not be a trusted proxy")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("token_ttl: 120\n")
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), content, 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("AIOT_CONFIG_PATH", dir)
	t.Setenv("AIOT_TOKEN_TTL", "900")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.TokenTTL != 900 {
		t.Errorf("expected env to override file, got token_ttl %d", cfg.TokenTTL)
	}
	if cfg.Source("token_ttl") != "environment" {
		t.Errorf("expected source 'environment', got %q", cfg.Source("token_ttl"))
	}
}

func TestValidate(t *testing.T) {
	cfg := newDefault()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}

	cfg.TokenTTL = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero token_ttl")
	}

	cfg = newDefault()
	cfg.TrustedProxies = []string{"not-a-cidr"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid trusted proxy")
	}
}

func TestInvalidYAMLFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{not yaml"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("AIOT_CONFIG_PATH", dir)

	if _, err := Load(); err == nil {
		t.Error("expected error for malformed config file")
	}
}
