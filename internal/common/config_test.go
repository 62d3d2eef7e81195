package common

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Recognition.APIVersion != "2023-07-31" {
		t.Fatalf("api version = %q", cfg.Recognition.APIVersion)
	}
	if cfg.Recognition.PollInterval != 2*time.Second {
		t.Fatalf("poll interval = %v", cfg.Recognition.PollInterval)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("model = %q", cfg.LLM.Model)
	}
	if cfg.Enrichment.CacheTTL != 24*time.Hour {
		t.Fatalf("cache ttl = %v", cfg.Enrichment.CacheTTL)
	}
	if cfg.Enrichment.Pacing != 500*time.Millisecond {
		t.Fatalf("pacing = %v", cfg.Enrichment.Pacing)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("ENRICH_PACING_MS", "50")
	t.Setenv("RECOGNITION_POLL_INTERVAL", "250ms")
	t.Setenv("OPENAI_TEMPERATURE", "0.7")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Enrichment.Pacing != 50*time.Millisecond {
		t.Fatalf("pacing = %v", cfg.Enrichment.Pacing)
	}
	if cfg.Recognition.PollInterval != 250*time.Millisecond {
		t.Fatalf("poll interval = %v", cfg.Recognition.PollInterval)
	}
	if cfg.LLM.Temperature != 0.7 {
		t.Fatalf("temperature = %v", cfg.LLM.Temperature)
	}
}

func TestModelMappingFromEnv(t *testing.T) {
	t.Setenv("MODEL_ID_FORM_6_5", "model-65")
	t.Setenv("MODEL_ID_FORM_7_5", "")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}

	if id, err := cfg.ResolveModel("6-5"); err != nil || id != "model-65" {
		t.Fatalf("ResolveModel(6-5) = %q, %v", id, err)
	}
	if _, err := cfg.ResolveModel("7-5"); !errors.Is(err, ErrUnknownForm) {
		t.Fatalf("ResolveModel(7-5) err = %v, want ErrUnknownForm", err)
	}
	if _, err := cfg.ResolveModel("nonexistent"); !errors.Is(err, ErrUnknownForm) {
		t.Fatalf("ResolveModel(nonexistent) err = %v", err)
	}
}

func TestConfigFileOverlay(t *testing.T) {
	t.Setenv("MODEL_ID_FORM_6_5", "env-model")

	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"model_mapping": {"6-5": "file-model", "7-3-5": "file-735"}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if id, _ := cfg.ResolveModel("6-5"); id != "file-model" {
		t.Fatalf("file overlay lost: 6-5 = %q", id)
	}
	if id, _ := cfg.ResolveModel("7-3-5"); id != "file-735" {
		t.Fatalf("7-3-5 = %q", id)
	}
}

func TestConfigFileMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("want error for missing config file")
	}
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Code != "CONFIG_ERROR" {
		t.Fatalf("err = %v", err)
	}
}

func TestValidateRequiresRecognitionCredentials(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("want error with empty credentials")
	}
	cfg.Recognition.Endpoint = "https://example.cognitiveservices.azure.com"
	cfg.Recognition.APIKey = "key"
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
}
