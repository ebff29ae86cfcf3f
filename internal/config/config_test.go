package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clinic")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Port = %q, want 8000", cfg.Port)
	}
	if cfg.DBMaxConns != 20 || cfg.DBMinConns != 5 {
		t.Errorf("pool defaults = %d/%d, want 20/5", cfg.DBMaxConns, cfg.DBMinConns)
	}
	if cfg.SessionIdleTimeout != 15*time.Minute {
		t.Errorf("SessionIdleTimeout = %v, want 15m", cfg.SessionIdleTimeout)
	}
	if cfg.TokenTTL != 8*time.Hour {
		t.Errorf("TokenTTL = %v, want 8h", cfg.TokenTTL)
	}
	if cfg.StrictInventory {
		t.Error("StrictInventory should default to false (lenient stock adjustments)")
	}
	if !cfg.IsDev() {
		t.Error("expected development mode by default")
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clinic")
	t.Setenv("PORT", "9090")
	t.Setenv("STRICT_INVENTORY", "true")
	t.Setenv("SESSION_IDLE_TIMEOUT", "5m")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if !cfg.StrictInventory {
		t.Error("expected STRICT_INVENTORY=true to be honored")
	}
	if cfg.SessionIdleTimeout != 5*time.Minute {
		t.Errorf("SessionIdleTimeout = %v, want 5m", cfg.SessionIdleTimeout)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v, want two entries", cfg.CORSOrigins)
	}
}

func TestValidateProductionRequiresSecrets(t *testing.T) {
	cfg := &Config{Env: "production"}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET error, got %v", err)
	}

	cfg.JWTSecret = strings.Repeat("s", 32)
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "ADMIN_USERNAME") {
		t.Fatalf("expected ADMIN_USERNAME error, got %v", err)
	}

	cfg.AdminUsername = "bidan"
	cfg.AdminPasswordHash = "plaintext"
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "bcrypt") {
		t.Fatalf("expected bcrypt hash error, got %v", err)
	}

	cfg.AdminPasswordHash = "$2a$10$abcdefghijklmnopqrstuv"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid production config, got %v", err)
	}
}

func TestValidateDevelopmentAllowsMissingSecrets(t *testing.T) {
	cfg := &Config{Env: "development"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("development config should validate, got %v", err)
	}
}
