package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"ENV", "PORT", "CORS_ALLOW_ORIGINS", "AI_PROVIDER", "AI_TIMEOUT", "MAX_BODY_BYTES", "AUTO_MIGRATE", "CONFIG_FILE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	want := []string{"http://localhost:8081", "http://localhost:19006", "exp://localhost:8081"}
	if !reflect.DeepEqual(cfg.CORSAllowOrigin, want) {
		t.Fatalf("unexpected CORS origins: %v", cfg.CORSAllowOrigin)
	}
	if cfg.AIProvider != "gemini" {
		t.Fatalf("expected gemini provider, got %q", cfg.AIProvider)
	}
	if cfg.AITimeout != 90*time.Second {
		t.Fatalf("expected 90s timeout, got %v", cfg.AITimeout)
	}
	if cfg.MaxBodyBytes != 10<<20 {
		t.Fatalf("expected 10MB body limit, got %d", cfg.MaxBodyBytes)
	}
	if !cfg.AutoMigrate {
		t.Fatalf("expected auto migrate in dev")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "config.yaml")
	content := "PORT: 9000\nAI_PROVIDER: openai\nCORS_ALLOW_ORIGINS:\n  - https://app.example.com\n  - https://admin.example.com\nAI_TIMEOUT: 30s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7000")
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("CORS_ALLOW_ORIGINS", "")
	t.Setenv("AI_TIMEOUT", "")

	cfg := Load()

	if cfg.Port != "7000" {
		t.Fatalf("expected env port 7000, got %q", cfg.Port)
	}
	if cfg.AIProvider != "openai" {
		t.Fatalf("expected file provider openai, got %q", cfg.AIProvider)
	}
	if len(cfg.CORSAllowOrigin) != 2 || cfg.CORSAllowOrigin[1] != "https://admin.example.com" {
		t.Fatalf("unexpected CORS origins from file: %v", cfg.CORSAllowOrigin)
	}
	if cfg.AITimeout != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %v", cfg.AITimeout)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("GEMINI_MODEL=gemini-test\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("GEMINI_MODEL", "")
	os.Unsetenv("GEMINI_MODEL")

	cfg := Load()

	if cfg.GeminiModel != "gemini-test" {
		t.Fatalf("expected GEMINI_MODEL from .env, got %q", cfg.GeminiModel)
	}
}

func TestProductionDisablesAutoMigrateByDefault(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENV", "prod")
	t.Setenv("AUTO_MIGRATE", "")

	cfg := Load()

	if !cfg.IsProduction() {
		t.Fatalf("expected production env")
	}
	if cfg.AutoMigrate {
		t.Fatalf("expected auto migrate off in production")
	}
}

func TestDurationAcceptsSeconds(t *testing.T) {
	t.Setenv("DB_PING_TIMEOUT", "5")
	src := source{}
	if got := src.getDuration("DB_PING_TIMEOUT", 0); got != 5*time.Second {
		t.Fatalf("expected 5s, got %v", got)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+): it changes the working directory
// for the duration of the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
