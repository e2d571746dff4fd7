package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"ENGADMIN_API_URL", "ENGADMIN_API_TIMEOUT", "ENGADMIN_MOCK_HOST", "ENGADMIN_MOCK_PORT", "ENGADMIN_MOCK_OTP"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	cfg, err := Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.File.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", cfg.File.Version)
	}
	if cfg.BaseURL() != DefaultBaseURL {
		t.Fatalf("expected default base url %q, got %q", DefaultBaseURL, cfg.BaseURL())
	}
	if cfg.DefaultStatus() != DefaultStatusFilter {
		t.Fatalf("expected default status %q, got %q", DefaultStatusFilter, cfg.DefaultStatus())
	}
	if cfg.APITimeout() != 0 {
		t.Fatalf("expected no timeout by default, got %s", cfg.APITimeout())
	}
}

func TestInitHomeWritesParseableConfig(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	if err := InitHome(home); err != nil {
		t.Fatalf("init home: %v", err)
	}
	for _, dir := range []string{"logs", "state"} {
		if info, err := os.Stat(filepath.Join(home, dir)); err != nil || !info.IsDir() {
			t.Fatalf("expected %s directory, err=%v", dir, err)
		}
	}
	cfg, err := Load(home)
	if err != nil {
		t.Fatalf("load generated config: %v", err)
	}
	if cfg.File.Mock.OTP != DefaultMockOTP || cfg.File.Mock.Port != DefaultMockPort {
		t.Fatalf("unexpected mock defaults: %+v", cfg.File.Mock)
	}
}

func TestLoadParsesYaml(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	configYAML := strings.TrimSpace(`
version: 1
api:
  base_url: http://localhost:9000/
  timeout: 45s
listing:
  default_status: Pending
mock:
  port: 9100
  otp: "654321"
`)
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte(configYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(home)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BaseURL() != "http://localhost:9000" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.BaseURL())
	}
	if cfg.APITimeout() != 45*time.Second {
		t.Fatalf("expected 45s timeout, got %s", cfg.APITimeout())
	}
	if cfg.DefaultStatus() != "pending" {
		t.Fatalf("expected lower-cased status filter, got %s", cfg.DefaultStatus())
	}
	if cfg.File.Mock.Host != DefaultMockHost {
		t.Fatalf("expected default mock host, got %s", cfg.File.Mock.Host)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"relative url":   "api:\n  base_url: /admin\n",
		"bad timeout":    "api:\n  timeout: soon\n",
		"unknown filter": "listing:\n  default_status: archived\n",
		"short otp":      "mock:\n  otp: \"123\"\n",
		"port range":     "mock:\n  port: 70000\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			home := t.TempDir()
			if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte(body), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(home); err == nil {
				t.Fatalf("expected validation error but got none")
			}
		})
	}
}

func TestEnvOverridesBeatFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENGADMIN_API_URL", "http://127.0.0.1:8111")
	t.Setenv("ENGADMIN_MOCK_PORT", "8222")
	home := t.TempDir()
	if err := InitHome(home); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(home)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL() != "http://127.0.0.1:8111" {
		t.Fatalf("expected env base url, got %s", cfg.BaseURL())
	}
	if cfg.File.Mock.Port != 8222 {
		t.Fatalf("expected env mock port, got %d", cfg.File.Mock.Port)
	}
}

func TestDotEnvInHomeIsLoaded(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("ENGADMIN_MOCK_OTP")
	t.Cleanup(func() { os.Unsetenv("ENGADMIN_MOCK_OTP") })
	home := t.TempDir()
	if err := os.WriteFile(filepath.Join(home, ".env"), []byte("ENGADMIN_MOCK_OTP=999999\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(home)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.File.Mock.OTP != "999999" {
		t.Fatalf("expected .env otp, got %s", cfg.File.Mock.OTP)
	}
}

func TestSetDefaultStatusPersists(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	if err := InitHome(home); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(home)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetDefaultStatus("rejected"); err != nil {
		t.Fatalf("set default status: %v", err)
	}
	if err := cfg.SetDefaultStatus("archived"); err == nil {
		t.Fatalf("expected unknown filter to be refused")
	}
	reloaded, err := Load(home)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.DefaultStatus() != "rejected" {
		t.Fatalf("expected persisted filter, got %s", reloaded.DefaultStatus())
	}
}

func TestSavingStatusKeepsRunOnlyBaseURL(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	if err := InitHome(home); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(home)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetBaseURL("http://127.0.0.1:9999/"); err != nil {
		t.Fatalf("set base url: %v", err)
	}
	if err := cfg.SetDefaultStatus("pending"); err != nil {
		t.Fatalf("set default status: %v", err)
	}
	if cfg.BaseURL() != "http://127.0.0.1:9999" {
		t.Fatalf("override lost in memory: %s", cfg.BaseURL())
	}
	reloaded, err := Load(home)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.BaseURL() != DefaultBaseURL {
		t.Fatalf("run-only base url leaked into config.yaml: %s", reloaded.BaseURL())
	}
	if reloaded.DefaultStatus() != "pending" {
		t.Fatalf("expected pending, got %s", reloaded.DefaultStatus())
	}
}
