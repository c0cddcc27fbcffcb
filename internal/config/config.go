package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the assistant-backend service.
type Config struct {
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Assistant AssistantConfig
	Translate TranslateConfig
	Chat      ChatConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host      string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port      string `envconfig:"SERVER_PORT" default:"8080"`
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	DSN string `envconfig:"DATABASE_DSN" required:"true"`
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	URI string `envconfig:"REDIS_URI" required:"true"`
}

// AssistantConfig holds the conversational API configuration. The fallback
// /simple-chat endpoint is tried when the primary /chat endpoint fails.
type AssistantConfig struct {
	BaseURL string        `envconfig:"ASSISTANT_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"ASSISTANT_TIMEOUT" default:"30s"`
}

// TranslateConfig holds the Google Translate v2 compatible API configuration.
// An empty API key disables translation; the service degrades to English-only.
type TranslateConfig struct {
	APIKey  string        `envconfig:"TRANSLATE_API_KEY"`
	BaseURL string        `envconfig:"TRANSLATE_BASE_URL" default:"https://translation.googleapis.com"`
	Timeout time.Duration `envconfig:"TRANSLATE_TIMEOUT" default:"10s"`
}

// ChatConfig holds conversation state settings.
type ChatConfig struct {
	// StateTTL bounds how long an idle session's history is kept.
	StateTTL time.Duration `envconfig:"CHAT_STATE_TTL" default:"720h"`
	// BotName is the assistant persona used in greetings.
	BotName string `envconfig:"CHAT_BOT_NAME" default:"Nova"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks configuration for logical errors beyond required fields.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Assistant.Timeout <= 0 {
		return fmt.Errorf("assistant timeout must be positive")
	}
	if c.Translate.Timeout <= 0 {
		return fmt.Errorf("translate timeout must be positive")
	}
	return nil
}
