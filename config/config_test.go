package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 8080 {
		t.Errorf("server port = %d", cfg.Server.Port)
	}
	if cfg.Data.Database.Driver != "sqlite3" {
		t.Errorf("driver = %q", cfg.Data.Database.Driver)
	}
	if cfg.Auth.OTPExpiry != 5*time.Minute {
		t.Errorf("otp expiry = %v", cfg.Auth.OTPExpiry)
	}
	if cfg.Reminder.Interval != 30*time.Minute || cfg.Reminder.Window != time.Hour {
		t.Errorf("reminder = %+v", cfg.Reminder)
	}
	if cfg.Storage.MaxUploadSize != 10<<20 {
		t.Errorf("max upload = %d", cfg.Storage.MaxUploadSize)
	}
	if cfg.Tracing.Enabled || cfg.Tracing.SamplingRate != 1 {
		t.Errorf("tracing = %+v", cfg.Tracing)
	}
	if cfg.Email.Provider != "log" {
		t.Errorf("email provider = %q", cfg.Email.Provider)
	}
}

func TestLoadConfigFile(t *testing.T) {
	p := writeConfig(t, `
app_name: hive
server:
  port: 9090
auth:
  jwt:
    secret: s3cret
    access_expiry: 15m
reminder:
  window: 2h
  workers: 8
storage:
  provider: minio
  bucket: files
tracing:
  enabled: true
  endpoint: otel:4317
  sampling_rate: 0.25
`)

	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AppName != "hive" || cfg.Server.Port != 9090 {
		t.Errorf("unexpected app/server: %q %d", cfg.AppName, cfg.Server.Port)
	}
	if cfg.Auth.JWT.Secret != "s3cret" || cfg.Auth.JWT.AccessExpiry != 15*time.Minute {
		t.Errorf("jwt = %+v", cfg.Auth.JWT)
	}
	if cfg.Auth.JWT.RefreshExpiry != 7*24*time.Hour {
		t.Errorf("refresh default lost: %v", cfg.Auth.JWT.RefreshExpiry)
	}
	if cfg.Reminder.Window != 2*time.Hour || cfg.Reminder.Workers != 8 {
		t.Errorf("reminder = %+v", cfg.Reminder)
	}
	if cfg.Storage.Provider != "minio" || cfg.Storage.Bucket != "files" {
		t.Errorf("storage = %+v", cfg.Storage)
	}

	if !cfg.Tracing.Enabled || cfg.Tracing.Endpoint != "otel:4317" || cfg.Tracing.SamplingRate != 0.25 {
		t.Errorf("tracing = %+v", cfg.Tracing)
	}

	got, err := GetConfig()
	if err != nil || got != cfg {
		t.Errorf("GetConfig did not return loaded config: %v", err)
	}
}

func TestEnvOverride(t *testing.T) {
	p := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("TASKHIVE_SERVER_PORT", "7070")

	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want env override 7070", cfg.Server.Port)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestOAuthProviderEnabled(t *testing.T) {
	cfg := Default()
	if cfg.OAuth.Google.Enabled() {
		t.Error("google enabled without credentials")
	}
	cfg.OAuth.Github.ClientID = "id"
	cfg.OAuth.Github.ClientSecret = "secret"
	if !cfg.OAuth.Github.Enabled() {
		t.Error("github should be enabled")
	}
}
