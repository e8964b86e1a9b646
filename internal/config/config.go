// Package config provides configuration for the pizzabot service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigFile names an optional YAML config file. Values from the file
// are applied first, then environment variables override them.
const EnvConfigFile = "PIZZABOT_CONFIG"

// Config holds the pizzabot configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Pizza API backend
	PizzaAPIURL string
	PizzaUserID string

	// LLM settings
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string
	LLMTimeout time.Duration

	// Agent settings
	MaxToolSteps int

	// Thread store
	MaxThreads int

	// Streaming pacing
	CallDelay    time.Duration
	ContentDelay time.Duration
}

// fileConfig mirrors Config with YAML tags; zero values mean "not set".
type fileConfig struct {
	HTTPPort       int    `yaml:"http_port"`
	PizzaAPIURL    string `yaml:"pizza_api_url"`
	PizzaUserID    string `yaml:"pizza_user_id"`
	LLMBaseURL     string `yaml:"llm_base_url"`
	LLMAPIKey      string `yaml:"llm_api_key"`
	LLMModel       string `yaml:"llm_model"`
	LLMTimeoutMS   int    `yaml:"llm_timeout_ms"`
	MaxToolSteps   int    `yaml:"max_tool_steps"`
	MaxThreads     int    `yaml:"max_threads"`
	CallDelayMS    int    `yaml:"call_delay_ms"`
	ContentDelayMS int    `yaml:"content_delay_ms"`
}

// Load loads configuration from the optional config file and environment
// variables. Environment variables win.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:     8080,
		PizzaAPIURL:  "http://localhost:8070",
		PizzaUserID:  "user_default",
		LLMBaseURL:   "http://localhost:4000",
		LLMModel:     "gpt-4o-mini",
		LLMTimeout:   60 * time.Second,
		MaxToolSteps: 8,
		MaxThreads:   0,
		CallDelay:    100 * time.Millisecond,
		ContentDelay: 50 * time.Millisecond,
	}

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	cfg.HTTPPort = getEnvInt("HTTP_PORT", cfg.HTTPPort)
	cfg.PizzaAPIURL = getEnv("PIZZA_API_URL", cfg.PizzaAPIURL)
	cfg.PizzaUserID = getEnv("PIZZA_USER_ID", cfg.PizzaUserID)
	cfg.LLMBaseURL = getEnv("LLM_BASE_URL", cfg.LLMBaseURL)
	cfg.LLMAPIKey = getEnv("LLM_API_KEY", cfg.LLMAPIKey)
	cfg.LLMModel = getEnv("LLM_MODEL", cfg.LLMModel)
	cfg.LLMTimeout = time.Duration(getEnvInt("LLM_TIMEOUT_MS", int(cfg.LLMTimeout/time.Millisecond))) * time.Millisecond
	cfg.MaxToolSteps = getEnvInt("MAX_TOOL_STEPS", cfg.MaxToolSteps)
	cfg.MaxThreads = getEnvInt("MAX_THREADS", cfg.MaxThreads)
	cfg.CallDelay = time.Duration(getEnvInt("CALL_DELAY_MS", int(cfg.CallDelay/time.Millisecond))) * time.Millisecond
	cfg.ContentDelay = time.Duration(getEnvInt("CONTENT_DELAY_MS", int(cfg.ContentDelay/time.Millisecond))) * time.Millisecond

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if fc.HTTPPort != 0 {
		cfg.HTTPPort = fc.HTTPPort
	}
	if fc.PizzaAPIURL != "" {
		cfg.PizzaAPIURL = fc.PizzaAPIURL
	}
	if fc.PizzaUserID != "" {
		cfg.PizzaUserID = fc.PizzaUserID
	}
	if fc.LLMBaseURL != "" {
		cfg.LLMBaseURL = fc.LLMBaseURL
	}
	if fc.LLMAPIKey != "" {
		cfg.LLMAPIKey = fc.LLMAPIKey
	}
	if fc.LLMModel != "" {
		cfg.LLMModel = fc.LLMModel
	}
	if fc.LLMTimeoutMS != 0 {
		cfg.LLMTimeout = time.Duration(fc.LLMTimeoutMS) * time.Millisecond
	}
	if fc.MaxToolSteps != 0 {
		cfg.MaxToolSteps = fc.MaxToolSteps
	}
	if fc.MaxThreads != 0 {
		cfg.MaxThreads = fc.MaxThreads
	}
	if fc.CallDelayMS != 0 {
		cfg.CallDelay = time.Duration(fc.CallDelayMS) * time.Millisecond
	}
	if fc.ContentDelayMS != 0 {
		cfg.ContentDelay = time.Duration(fc.ContentDelayMS) * time.Millisecond
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
