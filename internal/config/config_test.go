package config

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.SQLitePath != "shiftpulse.db" {
		t.Fatalf("unexpected default sqlite path: %q", cfg.SQLitePath)
	}
	if cfg.Env != "development" || cfg.JWTSecret == "" {
		t.Fatalf("development must get a fallback jwt secret: %+v", cfg)
	}
	if key, err := cfg.EscrowKeyBytes(); err != nil || key != nil {
		t.Fatalf("empty escrow key must mean disabled escrow: %v %v", key, err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SHIFTPULSE_ADDR", ":9999")
	t.Setenv("SHIFTPULSE_ENV", "production")
	t.Setenv("SHIFTPULSE_JWT_SECRET", "prod-secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.Env != "production" || cfg.JWTSecret != "prod-secret" {
		t.Fatalf("env vars not applied: %+v", cfg)
	}
}

func TestLoadProductionRequiresSecret(t *testing.T) {
	t.Setenv("SHIFTPULSE_ENV", "production")
	t.Setenv("SHIFTPULSE_JWT_SECRET", "")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected a jwt secret error, got %v", err)
	}
}

func TestEscrowKeyBytes(t *testing.T) {
	good := base64.StdEncoding.EncodeToString(make([]byte, 32))
	t.Setenv("SHIFTPULSE_ESCROW_KEY", good)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	key, err := cfg.EscrowKeyBytes()
	if err != nil || len(key) != 32 {
		t.Fatalf("expected a 32-byte key, got %d %v", len(key), err)
	}

	t.Setenv("SHIFTPULSE_ESCROW_KEY", "not-base64!!")
	if _, err := Load(); err == nil {
		t.Fatalf("expected an error for malformed escrow key")
	}

	short := base64.StdEncoding.EncodeToString([]byte("short"))
	t.Setenv("SHIFTPULSE_ESCROW_KEY", short)
	if _, err := Load(); err == nil {
		t.Fatalf("expected an error for a short escrow key")
	}
}
