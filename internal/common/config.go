package common

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/politrack-jp/disclosure-ocr/constants"
)

// Config holds all application configuration
type Config struct {
	Recognition RecognitionConfig
	LLM         LLMConfig
	Enrichment  EnrichmentConfig
	JournalPath string

	// ModelMapping maps a form type to the recognition model ID trained for it.
	// Loaded from env, optionally overlaid by a JSON config file; form types
	// whose model ID is empty are dropped.
	ModelMapping map[string]string
}

// RecognitionConfig holds document-recognition API configuration
type RecognitionConfig struct {
	Endpoint     string
	APIKey       string
	APIVersion   string
	PollInterval time.Duration
	Timeout      time.Duration
}

// LLMConfig holds vision/enrichment model configuration
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// EnrichmentConfig holds payee-enrichment behavior knobs
type EnrichmentConfig struct {
	CacheTTL time.Duration
	// Pacing is the minimum spacing between sequential enrichment calls.
	Pacing time.Duration
}

// LoadConfig loads configuration from .env / environment variables. An
// optional JSON config file overlays the model mapping.
func LoadConfig(configFile string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Recognition: RecognitionConfig{
			Endpoint:     getEnv("AZURE_DOCUMENT_INTELLIGENCE_ENDPOINT", ""),
			APIKey:       getEnv("AZURE_DOCUMENT_INTELLIGENCE_KEY", ""),
			APIVersion:   getEnv("AZURE_DOCUMENT_INTELLIGENCE_API_VERSION", "2023-07-31"),
			PollInterval: getEnvAsDuration("RECOGNITION_POLL_INTERVAL", 2*time.Second),
			Timeout:      getEnvAsDuration("RECOGNITION_TIMEOUT", 5*time.Minute),
		},
		LLM: LLMConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.3),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
		},
		Enrichment: EnrichmentConfig{
			CacheTTL: getEnvAsDuration("ENRICH_CACHE_TTL", 24*time.Hour),
			Pacing:   time.Duration(getEnvAsInt("ENRICH_PACING_MS", 500)) * time.Millisecond,
		},
		JournalPath: getEnv("JOURNAL_PATH", ""),
	}

	mapping := make(map[string]string, len(constants.ModelIDEnvVars))
	for formType, envVar := range constants.ModelIDEnvVars {
		mapping[formType] = getEnv(envVar, "")
	}

	if configFile != "" {
		if err := overlayConfigFile(configFile, mapping); err != nil {
			return nil, err
		}
	}

	// Drop form types with no model configured.
	cfg.ModelMapping = make(map[string]string, len(mapping))
	for formType, modelID := range mapping {
		if modelID != "" {
			cfg.ModelMapping[formType] = modelID
		}
	}

	return cfg, nil
}

func overlayConfigFile(path string, mapping map[string]string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("read config file %s", path), err)
	}
	var fileCfg struct {
		ModelMapping map[string]string `json:"model_mapping"`
	}
	if err := json.Unmarshal(b, &fileCfg); err != nil {
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("parse config file %s", path), err)
	}
	for formType, modelID := range fileCfg.ModelMapping {
		mapping[formType] = modelID
	}
	return nil
}

// ResolveModel returns the recognition model ID for a form type.
func (c *Config) ResolveModel(formType string) (string, error) {
	modelID, ok := c.ModelMapping[formType]
	if !ok || modelID == "" {
		return "", NewAppError("CONFIG_ERROR", fmt.Sprintf("no model configured for form type %q", formType), ErrUnknownForm)
	}
	return modelID, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Recognition.Endpoint == "" || c.Recognition.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "AZURE_DOCUMENT_INTELLIGENCE_ENDPOINT and AZURE_DOCUMENT_INTELLIGENCE_KEY are required", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
