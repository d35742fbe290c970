package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *AppConfig {
	return &AppConfig{
		App: AppSettings{Name: "customer-portal", Env: "test"},
		Auth: AuthSettings{
			SecretSalt:          "test-secret-salt",
			LockoutThreshold:    3,
			PasswordHistorySize: 3,
		},
		Session: SessionSettings{
			SigningKey: "test-signing-key",
			TTL:        30 * time.Minute,
		},
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsMissingSecretSalt(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.SecretSalt = "   "

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing secret salt")
	}
	if !strings.Contains(err.Error(), "secret_salt") {
		t.Fatalf("expected secret_salt in error, got %v", err)
	}
}

func TestValidateRejectsMissingSigningKey(t *testing.T) {
	cfg := validConfig()
	cfg.Session.SigningKey = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing signing key")
	}
}

func TestValidateRejectsNonPositiveThresholds(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.LockoutThreshold = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero lockout threshold")
	}

	cfg = validConfig()
	cfg.Auth.PasswordHistorySize = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative history size")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("PORTAL_AUTH_SECRET_SALT", "env-secret-salt")
	t.Setenv("PORTAL_SESSION_SIGNING_KEY", "env-signing-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}

	if cfg.Auth.SecretSalt != "env-secret-salt" {
		t.Fatalf("expected secret salt from env, got %q", cfg.Auth.SecretSalt)
	}
	if cfg.Auth.LockoutThreshold != 3 {
		t.Fatalf("expected default lockout threshold 3, got %d", cfg.Auth.LockoutThreshold)
	}
	if cfg.Auth.PasswordHistorySize != 3 {
		t.Fatalf("expected default history size 3, got %d", cfg.Auth.PasswordHistorySize)
	}
	if cfg.App.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.App.Port)
	}
}
