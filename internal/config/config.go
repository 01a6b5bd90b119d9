// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.ownplanner/config.yaml)
//  3. Default values
//
// Error handling uses sentinel errors so callers can branch with errors.Is,
// wrapped with fmt.Errorf("%w: details", ErrXxx) for context.
// Sensitive data (the Gemini API key) is masked in MarshalJSON and String.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrMissingAPIKey indicates the Gemini API key is not set.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the model name is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidMaxToolRounds indicates the tool round cap is out of range.
	ErrInvalidMaxToolRounds = errors.New("invalid max tool rounds")

	// ErrInvalidSessionTimeout indicates the idle timeout is not positive.
	ErrInvalidSessionTimeout = errors.New("invalid session idle timeout")

	// ErrInvalidSweepInterval indicates the sweep interval is not positive.
	ErrInvalidSweepInterval = errors.New("invalid sweep interval")

	// ErrInvalidAddr indicates the HTTP listen address is empty.
	ErrInvalidAddr = errors.New("invalid listen address")
)

const (
	// DefaultModelName is the Gemini model used when none is configured.
	DefaultModelName = "gemini-2.0-flash-exp"

	// DefaultMaxToolRounds bounds the tool-call loop per user message.
	DefaultMaxToolRounds = 10

	// MaxAllowedToolRounds is the absolute cap on the configurable round limit.
	MaxAllowedToolRounds = 100

	// DefaultSessionIdleTimeout is how long a chat session survives without use.
	DefaultSessionIdleTimeout = 30 * time.Minute

	// DefaultSweepInterval is how often idle sessions are swept.
	DefaultSweepInterval = 5 * time.Minute
)

// Config stores application configuration.
// SECURITY: the API key is explicitly masked in MarshalJSON.
type Config struct {
	// Chat / model configuration
	ModelName     string `mapstructure:"model_name" json:"model_name"`
	GeminiAPIKey  string `mapstructure:"gemini_api_key" json:"gemini_api_key"` // SENSITIVE: masked in MarshalJSON
	MaxToolRounds int    `mapstructure:"max_tool_rounds" json:"max_tool_rounds"`

	// External tool process (MCP server over stdio).
	// Empty command means "spawn our own binary with the mcp subcommand".
	MCPCommand string   `mapstructure:"mcp_command" json:"mcp_command"`
	MCPArgs    []string `mapstructure:"mcp_args" json:"mcp_args"`

	// Session lifecycle
	SessionIdleTimeout time.Duration `mapstructure:"session_idle_timeout" json:"session_idle_timeout"`
	SweepInterval      time.Duration `mapstructure:"sweep_interval" json:"sweep_interval"`

	// HTTP server
	Addr        string   `mapstructure:"addr" json:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`
	RateBurst   int      `mapstructure:"rate_burst" json:"rate_burst"`

	// Storage
	DBPath string `mapstructure:"db_path" json:"db_path"`

	// Logging
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`
	LogLevel string `mapstructure:"log_level" json:"log_level"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".ownplanner")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v, configDir)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("model_name", DefaultModelName)
	v.SetDefault("max_tool_rounds", DefaultMaxToolRounds)

	v.SetDefault("mcp_command", "")
	v.SetDefault("mcp_args", []string{})

	v.SetDefault("session_idle_timeout", DefaultSessionIdleTimeout)
	v.SetDefault("sweep_interval", DefaultSweepInterval)

	v.SetDefault("addr", ":8080")
	v.SetDefault("cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("rate_burst", 60)

	v.SetDefault("db_path", filepath.Join(configDir, "ownplanner.db"))

	v.SetDefault("log_json", false)
	v.SetDefault("log_level", "info")
}

// bindEnvVariables binds environment variable overrides explicitly.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a panic here is a bug.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("gemini_api_key", "GEMINI_API_KEY")
	mustBind("model_name", "OWNPLANNER_MODEL_NAME")
	mustBind("addr", "OWNPLANNER_ADDR")
	mustBind("db_path", "OWNPLANNER_DB_PATH")
	mustBind("mcp_command", "OWNPLANNER_MCP_COMMAND")
	mustBind("log_level", "OWNPLANNER_LOG_LEVEL")
}

// Validate checks configuration ranges. The API key is checked separately by
// RequireAPIKey because the mcp subcommand runs without one.
func (c *Config) Validate() error {
	if c.ModelName == "" {
		return ErrInvalidModelName
	}
	if c.MaxToolRounds < 1 || c.MaxToolRounds > MaxAllowedToolRounds {
		return fmt.Errorf("%w: %d (must be 1..%d)", ErrInvalidMaxToolRounds, c.MaxToolRounds, MaxAllowedToolRounds)
	}
	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSessionTimeout, c.SessionIdleTimeout)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSweepInterval, c.SweepInterval)
	}
	if c.Addr == "" {
		return ErrInvalidAddr
	}
	return nil
}

// RequireAPIKey fails when no Gemini API key is configured.
func (c *Config) RequireAPIKey() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: set GEMINI_API_KEY", ErrMissingAPIKey)
	}
	return nil
}

// LogLevelValue maps the configured log level string to a slog.Level.
// Unknown values fall back to info.
func (c *Config) LogLevelValue() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// maskedValue is the placeholder for masked sensitive data.
const maskedValue = "████████"

// maskSecret masks a secret for safe logging. Short secrets are fully masked;
// longer ones keep the first and last two characters for debug utility.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit sensitive field masking.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.GeminiAPIKey = maskSecret(a.GeminiAPIKey)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
