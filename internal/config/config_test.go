package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.MaxUploadSizeMB != 50 || cfg.AnalyzeConcurrency != 4 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ModelTimeout != 60*time.Second || cfg.SessionTTL != 24*time.Hour || cfg.RequestTimeout != 120*time.Second {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
	if cfg.OpenAIModel != "gpt-4.1-mini" || cfg.OperatorName != "Иван" || cfg.MockAI {
		t.Fatalf("unexpected model settings: %+v", cfg)
	}
	if cfg.ArchivalEnabled() {
		t.Fatalf("archival should be off without MINIO_ENDPOINT")
	}
}

func TestLoadEnvFileAndOverrides(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	content := "OPENAI_API_KEY=sk-test\nANALYZE_CONCURRENCY=2\nMOCK_AI=true\n"
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("ANALYZE_CONCURRENCY", "8")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OpenAIKey != "sk-test" || !cfg.MockAI {
		t.Fatalf("env file not applied: %+v", cfg)
	}
	if cfg.AnalyzeConcurrency != 8 {
		t.Fatalf("concurrency=%d, environment should win over the file", cfg.AnalyzeConcurrency)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("redis addr=%q", cfg.RedisAddr)
	}
}

func TestValidateRejectsNonPositiveLimits(t *testing.T) {
	t.Setenv("MAX_UPLOAD_MB", "0")
	t.Setenv("ANALYZE_CONCURRENCY", "-1")
	_, err := load(filepath.Join(t.TempDir(), "missing.env"))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "MAX_UPLOAD_MB") || !strings.Contains(err.Error(), "ANALYZE_CONCURRENCY") {
		t.Fatalf("err=%v", err)
	}
}

func TestValidateMinioCredentials(t *testing.T) {
	cfg := Config{
		Port: "8080", MaxUploadSizeMB: 1, AnalyzeConcurrency: 1, ModelTimeout: time.Second,
		ModelMaxTokens: 1, SessionTTL: time.Minute, RequestTimeout: time.Second,
		MinioEndpoint: "localhost:9000",
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for missing MinIO credentials")
	}
	cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket = "a", "b", "c"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
