package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Lookup    LookupConfig
	LLM       LLMConfig
	Storage   StorageConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LookupConfig holds product lookup API configuration
type LookupConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	APIHost        string        `mapstructure:"api_host"`
	BaseURL        string        `mapstructure:"base_url"`
	MarketplaceURL string        `mapstructure:"marketplace_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// LLMConfig holds chat and embedding model configuration
type LLMConfig struct {
	APIKey         string  `mapstructure:"api_key"`
	BaseURL        string  `mapstructure:"base_url"`
	Model          string  `mapstructure:"model"`
	EmbeddingModel string  `mapstructure:"embedding_model"`
	Temperature    float32 `mapstructure:"temperature"`
	SystemPrompt   string  `mapstructure:"system_prompt"`
	TopK           int     `mapstructure:"top_k"`
	ChunkSize      int     `mapstructure:"chunk_size"`
	ChunkOverlap   int     `mapstructure:"chunk_overlap"`
}

// StorageConfig holds the directory where product records are written
type StorageConfig struct {
	Dir string `mapstructure:"dir"`
}

// SessionConfig holds session lifecycle configuration
type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// legacyEnv maps config keys to the variable names the tool has always read
var legacyEnv = map[string][]string{
	"lookup.api_key":  {"X-RapidAPI-Key", "X_RAPIDAPI_KEY"},
	"lookup.api_host": {"X-RapidAPI-Host", "X_RAPIDAPI_HOST"},
	"llm.api_key":     {"OPENAI_API_KEY"},
	"llm.base_url":    {"OPENAI_API_BASE"},
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/comparewise/")

	v.SetEnvPrefix("COMPAREWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		prefixed := "COMPAREWISE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, prefixed}, names...)...); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", key, err)
		}
	}

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile reads .env from the working directory if present. Variables that are
// already set are left untouched.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return gotenv.Load(".env")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	v.SetDefault("lookup.api_host", "axesso-axesso-amazon-data-service-v1.p.rapidapi.com")
	v.SetDefault("lookup.base_url", "https://axesso-axesso-amazon-data-service-v1.p.rapidapi.com")
	v.SetDefault("lookup.marketplace_url", "https://www.amazon.com")
	v.SetDefault("lookup.timeout", "30s")

	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-3.5-turbo-0125")
	v.SetDefault("llm.embedding_model", "text-embedding-ada-002")
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.system_prompt", "You are an AI model trained to assist users to compare different products")
	v.SetDefault("llm.top_k", 2)
	v.SetDefault("llm.chunk_size", 2048)
	v.SetDefault("llm.chunk_overlap", 200)

	v.SetDefault("storage.dir", ".")

	v.SetDefault("session.ttl", "2h")

	v.SetDefault("ratelimit.per_ip", 60)
}

// validate checks structural settings. Credentials are deliberately left to the
// external services to reject.
func validate(config *Config) error {
	switch config.Server.Environment {
	case "development", "test", "production":
	default:
		return fmt.Errorf("environment must be 'development', 'test' or 'production', got: %s", config.Server.Environment)
	}

	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if config.Lookup.BaseURL == "" {
		return fmt.Errorf("lookup base URL is required")
	}

	if config.Storage.Dir == "" {
		return fmt.Errorf("storage directory is required")
	}

	if config.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got: %s", config.Session.TTL)
	}

	if config.LLM.TopK < 1 {
		return fmt.Errorf("llm top_k must be at least 1, got: %d", config.LLM.TopK)
	}

	if config.LLM.ChunkSize < 1 || config.LLM.ChunkOverlap < 0 || config.LLM.ChunkOverlap >= config.LLM.ChunkSize {
		return fmt.Errorf("llm chunk_overlap must be smaller than chunk_size (got %d/%d)", config.LLM.ChunkOverlap, config.LLM.ChunkSize)
	}

	return nil
}
