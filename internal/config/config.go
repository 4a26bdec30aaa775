// Package config loads pennywise settings from viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/pennywise/internal/common"
	"github.com/spf13/viper"
)

// Config is the resolved application configuration.
type Config struct {
	LLM       LLMConfig
	Database  DatabaseConfig
	Server    ServerConfig
	Logging   LoggingConfig
	Redis     RedisConfig
	Locale    string
	RulesPath string
}

// LLMConfig selects and tunes the AI provider.
type LLMConfig struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	RateLimit   int
	MaxAttempts int
	RetryDelay  time.Duration
	Timeout     time.Duration
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	AllowedOrigins []string
	// TLSHosts are extra names or IPs the self-signed certificate covers.
	TLSHosts []string
	CertDir  string
	Port     int
	TLS      bool
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  string
	Format string
}

// RedisConfig configures the optional response cache.
type RedisConfig struct {
	Addr     string
	Password string
	TTL      time.Duration
	DB       int
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.rate_limit", 30)
	v.SetDefault("llm.max_attempts", 2)
	v.SetDefault("llm.retry_delay", time.Second)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("database.path", "$HOME/.local/share/pennywise/pennywise.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.cert_dir", "$HOME/.config/pennywise/certs")
	v.SetDefault("redis.ttl", time.Minute)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("locale", "en")
}

// Load reads the configuration from v, applying defaults for unset keys.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		LLM: LLMConfig{
			Provider:    strings.ToLower(v.GetString("llm.provider")),
			APIKey:      v.GetString("llm.api_key"),
			Model:       v.GetString("llm.model"),
			BaseURL:     v.GetString("llm.base_url"),
			Temperature: v.GetFloat64("llm.temperature"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
			RateLimit:   v.GetInt("llm.rate_limit"),
			MaxAttempts: v.GetInt("llm.max_attempts"),
			RetryDelay:  v.GetDuration("llm.retry_delay"),
			Timeout:     v.GetDuration("llm.timeout"),
		},
		Database: DatabaseConfig{
			Path: ExpandPath(v.GetString("database.path")),
		},
		Server: ServerConfig{
			Port:           v.GetInt("server.port"),
			AllowedOrigins: v.GetStringSlice("server.allowed_origins"),
			TLS:            v.GetBool("server.tls"),
			TLSHosts:       v.GetStringSlice("server.tls_hosts"),
			CertDir:        ExpandPath(v.GetString("server.cert_dir")),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TTL:      v.GetDuration("redis.ttl"),
		},
		Locale:    v.GetString("locale"),
		RulesPath: ExpandPath(v.GetString("rules.path")),
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = apiKeyFromProviderEnv(v, cfg.LLM.Provider)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the application cannot run with.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "gemini", "anthropic", "openai":
	default:
		return fmt.Errorf("%w: unsupported LLM provider %q", common.ErrInvalidConfig, c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("%w: llm.temperature must be between 0 and 2", common.ErrInvalidConfig)
	}
	if c.LLM.MaxAttempts < 1 || c.LLM.MaxAttempts > 2 {
		return fmt.Errorf("%w: llm.max_attempts must be 1 or 2", common.ErrInvalidConfig)
	}
	if c.LLM.RetryDelay <= 0 {
		return fmt.Errorf("%w: llm.retry_delay must be positive", common.ErrInvalidConfig)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", common.ErrInvalidConfig, c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	return nil
}

// apiKeyFromProviderEnv falls back to the provider's conventional environment variable.
func apiKeyFromProviderEnv(v *viper.Viper, provider string) string {
	var key string
	switch provider {
	case "gemini":
		key = "GEMINI_API_KEY"
	case "anthropic":
		key = "ANTHROPIC_API_KEY"
	case "openai":
		key = "OPENAI_API_KEY"
	default:
		return ""
	}
	_ = v.BindEnv("llm.provider_key_"+provider, key)
	return v.GetString("llm.provider_key_" + provider)
}

// ExpandPath resolves a leading ~ and $VAR references. Paths that cannot be
// resolved are returned with the unexpanded parts left as they were.
func ExpandPath(path string) string {
	rest, hasTilde := strings.CutPrefix(path, "~")
	if hasTilde && (rest == "" || rest[0] == '/' || rest[0] == filepath.Separator) {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + rest
		}
	}
	return os.ExpandEnv(path)
}
