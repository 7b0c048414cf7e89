package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/portal")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8002" {
		t.Fatalf("port: want=%q got=%q", "8002", cfg.Port)
	}
	if cfg.GatewayTimeout != 10*time.Second {
		t.Fatalf("gateway timeout: want=%s got=%s", 10*time.Second, cfg.GatewayTimeout)
	}
	if cfg.StudentServiceURL != "http://localhost:8001" {
		t.Fatalf("student url: got=%q", cfg.StudentServiceURL)
	}
	if cfg.CourseServiceURL != "http://localhost:8000" {
		t.Fatalf("course url: got=%q", cfg.CourseServiceURL)
	}
	if cfg.IsProduction() {
		t.Fatalf("expected development mode by default")
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("JWT_SECRET")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatalf("Load: expected error when DATABASE_URL and JWT_SECRET are unset")
	}
}

func TestLoadReadsDotEnvFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/portal")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("GATEWAY_TIMEOUT", "")
	os.Unsetenv("GATEWAY_TIMEOUT")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("GATEWAY_TIMEOUT=3s\nGATEWAY_FANOUT=0\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("GATEWAY_TIMEOUT")
		os.Unsetenv("GATEWAY_FANOUT")
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GatewayTimeout != 3*time.Second {
		t.Fatalf("gateway timeout: want=%s got=%s", 3*time.Second, cfg.GatewayTimeout)
	}
	if cfg.GatewayFanout != 1 {
		t.Fatalf("gateway fanout should be clamped to 1, got %d", cfg.GatewayFanout)
	}
}
