package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Port              string
	SQLitePath        string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	FastModel         string
	SmartModel        string
	Temperature       float64
	MaxTokens         int
	RequestsPerMinute int
}

func Default() Config {
	return Config{
		Port:              "8080",
		SQLitePath:        "dualdm.db",
		OpenAIBaseURL:     "https://api.openai.com/v1",
		FastModel:         "gpt-4o-mini",
		SmartModel:        "gpt-4o",
		Temperature:       0.8,
		MaxTokens:         1000,
		RequestsPerMinute: 120,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("PORT"); raw != "" {
		cfg.Port = raw
	}
	if raw := os.Getenv("SQLITE_PATH"); raw != "" {
		cfg.SQLitePath = raw
	}
	if raw := os.Getenv("OPENAI_API_KEY"); raw != "" {
		cfg.OpenAIAPIKey = raw
	}
	if raw := os.Getenv("OPENAI_BASE_URL"); raw != "" {
		cfg.OpenAIBaseURL = raw
	}
	if raw := os.Getenv("FAST_MODEL"); raw != "" {
		cfg.FastModel = raw
	}
	if raw := os.Getenv("SMART_MODEL"); raw != "" {
		cfg.SmartModel = raw
	}
	if raw := os.Getenv("MODEL_TEMPERATURE"); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil && value >= 0 {
			cfg.Temperature = value
		}
	}
	if raw := os.Getenv("MODEL_MAX_TOKENS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.MaxTokens = value
		}
	}
	if raw := os.Getenv("REQUESTS_PER_MINUTE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.RequestsPerMinute = value
		}
	}
	return cfg
}
