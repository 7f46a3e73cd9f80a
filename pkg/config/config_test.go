package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// chdirWithConfig writes config.yaml into a temp directory and changes into it
// so Load() finds it. Returns the directory.
func chdirWithConfig(t *testing.T, yamlContent string) string {
	t.Helper()

	tmpDir := t.TempDir()
	if yamlContent != "" {
		configPath := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
	}

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		os.Chdir(originalDir)
	})

	// Clear env vars that might interfere with tests
	for _, key := range []string{"PORT", "ENVIRONMENT", "BACKEND_URL", "BACKEND_DEFAULT_BRANCH", "REDIS_HOST", "TLS_CERT_PATH", "TLS_KEY_PATH", "MENU_FILE"} {
		os.Unsetenv(key)
	}
	t.Setenv("SESSION_SECRET", "test-session-secret")

	return tmpDir
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	chdirWithConfig(t, `
port: "3080"
env: "test"
backend:
  url: "http://backend.example.com:8000/"
  default_branch: "main"
redis:
  host: "redis.example.com"
  port: 6380
`)

	t.Setenv("PORT", "4080")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("BACKEND_DEFAULT_BRANCH", "staging")

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "4080" {
		t.Errorf("expected Port=4080 (from env), got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Errorf("expected Env=production (from env), got %s", cfg.Env)
	}
	if cfg.Backend.DefaultBranch != "staging" {
		t.Errorf("expected DefaultBranch=staging (from env), got %s", cfg.Backend.DefaultBranch)
	}
	if cfg.Version != "test-version" {
		t.Errorf("expected Version=test-version, got %s", cfg.Version)
	}

	// YAML values prove the file was read
	if cfg.Backend.URL != "http://backend.example.com:8000" {
		t.Errorf("expected trailing slash trimmed from backend url, got %s", cfg.Backend.URL)
	}
	if cfg.Redis.Addr() != "redis.example.com:6380" {
		t.Errorf("expected Redis.Addr=redis.example.com:6380, got %s", cfg.Redis.Addr())
	}
}

func TestLoad_Defaults(t *testing.T) {
	chdirWithConfig(t, `
env: "local"
`)

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Backend.URL != "http://localhost:8000" {
		t.Errorf("expected default backend url, got %s", cfg.Backend.URL)
	}
	if cfg.Backend.DefaultBranch != "main" {
		t.Errorf("expected DefaultBranch=main, got %s", cfg.Backend.DefaultBranch)
	}
	if cfg.Backend.Timeout() != 30*time.Second {
		t.Errorf("expected 30s backend timeout, got %s", cfg.Backend.Timeout())
	}
	if cfg.Backend.BreakerThreshold != 5 || cfg.Backend.BreakerReset() != 30*time.Second {
		t.Errorf("expected breaker 5/30s, got %d/%s", cfg.Backend.BreakerThreshold, cfg.Backend.BreakerReset())
	}
	if cfg.Redis.Enabled() {
		t.Error("expected redis to be disabled without a host")
	}
	if cfg.Redis.TreeTTL() != time.Hour {
		t.Errorf("expected 1h tree TTL, got %s", cfg.Redis.TreeTTL())
	}
	if cfg.Session.CookieName != "ekaya_console_session" {
		t.Errorf("unexpected cookie name %s", cfg.Session.CookieName)
	}
	if cfg.Menu.File != "" {
		t.Errorf("expected no menu file by default, got %s", cfg.Menu.File)
	}
}

func TestLoad_SecretsOnlyFromEnv(t *testing.T) {
	chdirWithConfig(t, `
env: "local"
backend:
  api_token: "from-yaml"
`)
	t.Setenv("BACKEND_API_TOKEN", "from-env")
	t.Setenv("REDIS_PASSWORD", "redis-secret")

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Backend.APIToken != "from-env" {
		t.Errorf("expected APIToken from env, got %q", cfg.Backend.APIToken)
	}
	if cfg.Redis.Password != "redis-secret" {
		t.Errorf("expected Redis.Password from env, got %q", cfg.Redis.Password)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	chdirWithConfig(t, "")

	_, err := Load("test-version")
	if err == nil {
		t.Error("expected error when config.yaml is missing")
	}
}

func TestLoad_InvalidBackendURL(t *testing.T) {
	chdirWithConfig(t, `
env: "local"
backend:
  url: "ftp://backend.example.com"
`)

	_, err := Load("test-version")
	if err == nil {
		t.Fatal("expected error for non-http backend url")
	}
	if !strings.Contains(err.Error(), "backend") {
		t.Errorf("expected error to mention 'backend', got: %v", err)
	}
}

func TestLoad_SessionSecretRequiredOutsideLocal(t *testing.T) {
	chdirWithConfig(t, `
env: "production"
`)
	os.Unsetenv("SESSION_SECRET")

	_, err := Load("test-version")
	if err == nil {
		t.Fatal("expected error when SESSION_SECRET is missing in production")
	}
	if !strings.Contains(err.Error(), "SESSION_SECRET") {
		t.Errorf("expected error to mention SESSION_SECRET, got: %v", err)
	}
}

func TestValidateTLS_BothProvided(t *testing.T) {
	tmpDir := chdirWithConfig(t, `
env: "local"
`)
	certPath := filepath.Join(tmpDir, "test-cert.pem")
	keyPath := filepath.Join(tmpDir, "test-key.pem")
	if err := os.WriteFile(certPath, []byte("fake-cert-content"), 0644); err != nil {
		t.Fatalf("failed to write test cert: %v", err)
	}
	if err := os.WriteFile(keyPath, []byte("fake-key-content"), 0644); err != nil {
		t.Fatalf("failed to write test key: %v", err)
	}

	t.Setenv("TLS_CERT_PATH", certPath)
	t.Setenv("TLS_KEY_PATH", keyPath)

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.TLSCertPath != certPath || cfg.TLSKeyPath != keyPath {
		t.Errorf("expected TLS paths from env, got cert=%s key=%s", cfg.TLSCertPath, cfg.TLSKeyPath)
	}
}

func TestValidateTLS_OnlyCertProvided(t *testing.T) {
	tmpDir := chdirWithConfig(t, `
env: "local"
`)
	certPath := filepath.Join(tmpDir, "test-cert.pem")
	if err := os.WriteFile(certPath, []byte("fake-cert-content"), 0644); err != nil {
		t.Fatalf("failed to write test cert: %v", err)
	}
	t.Setenv("TLS_CERT_PATH", certPath)

	_, err := Load("test-version")
	if err == nil {
		t.Fatal("expected error when only cert path is provided")
	}
	if !strings.Contains(err.Error(), "both tls_cert_path and tls_key_path must be provided together") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateTLS_KeyFileNotFound(t *testing.T) {
	tmpDir := chdirWithConfig(t, `
env: "local"
`)
	certPath := filepath.Join(tmpDir, "test-cert.pem")
	if err := os.WriteFile(certPath, []byte("fake-cert-content"), 0644); err != nil {
		t.Fatalf("failed to write test cert: %v", err)
	}
	t.Setenv("TLS_CERT_PATH", certPath)
	t.Setenv("TLS_KEY_PATH", filepath.Join(tmpDir, "missing-key.pem"))

	_, err := Load("test-version")
	if err == nil {
		t.Fatal("expected error when key file does not exist")
	}
	if !strings.Contains(err.Error(), "key") {
		t.Errorf("expected error to mention 'key', got: %v", err)
	}
}
