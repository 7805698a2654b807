package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the token function
type Config struct {
	LiveKit LiveKitConfig `json:"livekit"`
	Server  ServerConfig  `json:"server"`
	Log     LogConfig     `json:"log"`
	Tracing TracingConfig `json:"tracing"`
}

// LiveKitConfig holds the credentials tokens are signed with
type LiveKitConfig struct {
	URL       string        `json:"url"`        // LiveKit server URL (e.g., wss://livekit.example.com)
	APIKey    string        `json:"api_key"`    // LiveKit API key
	APISecret string        `json:"api_secret"` // LiveKit API secret
	TokenTTL  time.Duration `json:"token_ttl"`  // Validity of issued tokens, "10m" or seconds in the config file (default: 10m)
}

// UnmarshalJSON accepts token_ttl as a Go duration string ("10m") or as a
// number of seconds.
func (c *LiveKitConfig) UnmarshalJSON(data []byte) error {
	type plain LiveKitConfig
	aux := struct {
		*plain
		TokenTTL json.RawMessage `json:"token_ttl"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.TokenTTL) == 0 || string(aux.TokenTTL) == "null" {
		return nil
	}

	var text string
	if err := json.Unmarshal(aux.TokenTTL, &text); err == nil {
		ttl, err := time.ParseDuration(text)
		if err != nil {
			return fmt.Errorf("token_ttl: %w", err)
		}
		c.TokenTTL = ttl
		return nil
	}

	var seconds float64
	if err := json.Unmarshal(aux.TokenTTL, &seconds); err != nil {
		return fmt.Errorf("token_ttl must be a duration string or seconds: %w", err)
	}
	c.TokenTTL = time.Duration(seconds * float64(time.Second))
	return nil
}

// IsComplete reports whether URL, API key and API secret are all set
func (c LiveKitConfig) IsComplete() bool {
	return c.URL != "" && c.APIKey != "" && c.APISecret != ""
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string   `json:"host"`
	Port        int      `json:"port"`
	CORSOrigins []string `json:"cors_origins"` // Allowed CORS origins
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `json:"level"` // debug, info, warn, error
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Enabled bool `json:"enabled"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LiveKit: LiveKitConfig{
			URL:       "",
			APIKey:    "",
			APISecret: "",
			TokenTTL:  10 * time.Minute,
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000"},
		},
		Log: LogConfig{
			Level: "info",
		},
		Tracing: TracingConfig{
			Enabled: false,
		},
	}
}

// envString loads a string environment variable into the target pointer if set
func envString(key string, target *string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

// envStringWithFallback tries primary first, then fallback
func envStringWithFallback(primary, fallback string, target *string) {
	for _, key := range []string{primary, fallback} {
		if v := os.Getenv(key); v != "" {
			*target = v
			return
		}
	}
}

// envInt loads an integer environment variable into the target pointer if set and valid
func envInt(key string, target *int) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*target = i
		}
	}
}

// envBool loads a boolean environment variable into the target pointer if set and valid
func envBool(key string, target *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*target = b
		}
	}
}

// envDuration loads a Go duration string (e.g. "10m") into the target pointer if set and valid
func envDuration(key string, target *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*target = d
		}
	}
}

// envStringSlice loads a comma-separated environment variable into a string slice
func envStringSlice(key string, target *[]string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			*target = result
		}
	}
}

// Load loads configuration from the config file and environment variables.
// Missing LiveKit credentials are not an error: the function reports them per
// request instead.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := DefaultConfig()

	configPath := getConfigPath()
	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			slog.Warn("failed to parse config file", "path", configPath, "error", err)
		}
	}

	// LiveKit credentials; the bare LIVEKIT_* names are what the LiveKit CLI and SDKs use
	envStringWithFallback("LIVEKIT_TOKEN_LIVEKIT_URL", "LIVEKIT_URL", &cfg.LiveKit.URL)
	envStringWithFallback("LIVEKIT_TOKEN_LIVEKIT_API_KEY", "LIVEKIT_API_KEY", &cfg.LiveKit.APIKey)
	envStringWithFallback("LIVEKIT_TOKEN_LIVEKIT_API_SECRET", "LIVEKIT_API_SECRET", &cfg.LiveKit.APISecret)
	envDuration("LIVEKIT_TOKEN_TTL", &cfg.LiveKit.TokenTTL)

	envString("LIVEKIT_TOKEN_SERVER_HOST", &cfg.Server.Host)
	envInt("LIVEKIT_TOKEN_SERVER_PORT", &cfg.Server.Port)
	envStringSlice("LIVEKIT_TOKEN_CORS_ORIGINS", &cfg.Server.CORSOrigins)

	envString("LIVEKIT_TOKEN_LOG_LEVEL", &cfg.Log.Level)
	envBool("LIVEKIT_TOKEN_TRACING", &cfg.Tracing.Enabled)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// The function only needs the URL to be non-empty; a bad one shows up in
	// /health/detailed rather than stopping the process.
	if cfg.LiveKit.URL != "" && !isValidURL(cfg.LiveKit.URL) {
		slog.Warn("LiveKit URL is not a valid URL, connectivity checks will fail", "url", cfg.LiveKit.URL)
	}

	return cfg, nil
}

// IsLiveKitConfigured returns true if LiveKit is properly configured
func (c *Config) IsLiveKitConfigured() bool {
	return c.LiveKit.IsComplete()
}

// isValidURL validates that a URL has proper format
func isValidURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	return err == nil && u.Scheme != "" && u.Host != ""
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks that the configuration has valid values
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server port must be between 1 and 65535")
	}

	if c.LiveKit.TokenTTL <= 0 {
		errs = append(errs, "token TTL must be positive")
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log level %q must be one of debug, info, warn, error", c.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// loadDotEnv copies KEY=VALUE pairs from a .env file (LIVEKIT_TOKEN_ENV_FILE,
// else ./.env) into the process environment. Variables already set win.
func loadDotEnv() {
	path := os.Getenv("LIVEKIT_TOKEN_ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load env file", "path", path, "error", err)
	}
}

// getConfigPath returns the path to the config file
func getConfigPath() string {
	if path := os.Getenv("LIVEKIT_TOKEN_CONFIG"); path != "" {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "config.json"
	}

	return filepath.Join(homeDir, ".config", "livekit-token", "config.json")
}
