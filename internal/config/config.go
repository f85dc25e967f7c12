// Package config loads bookmarkd configuration from flags, the environment
// and an optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App         AppConfig
	Logger      LoggerConfig
	Data        DataConfig
	Server      ServerConfig
	Auth        AuthConfig
	GoogleBooks GoogleBooksConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig locates the badger database and the token key.
type DataConfig struct {
	Path string
}

// DBPath is the badger directory under the data path.
func (d DataConfig) DBPath() string {
	return filepath.Join(d.Path, "db")
}

// KeyPath is the PASETO key file under the data path.
func (d DataConfig) KeyPath() string {
	return filepath.Join(d.Path, "auth.key")
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	CORSAllowedOrigins []string
}

// AuthConfig holds token configuration.
type AuthConfig struct {
	AccessTokenDuration time.Duration
}

// GoogleBooksConfig configures the book metadata client.
type GoogleBooksConfig struct {
	APIKey   string
	BaseURL  string
	Backfill bool
}

// flagValues are the raw command-line overrides.
type flagValues struct {
	env           string
	logLevel      string
	dataPath      string
	port          string
	readTimeout   string
	writeTimeout  string
	idleTimeout   string
	corsOrigins   string
	tokenDuration string
	booksAPIKey   string
	booksBaseURL  string
	backfill      string
	envFile       string
}

func registerFlags(fs *flag.FlagSet) *flagValues {
	v := &flagValues{}
	fs.StringVar(&v.env, "env", "", "Environment (development, staging, production)")
	fs.StringVar(&v.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&v.dataPath, "data-path", "", "Directory for the database and token key")
	fs.StringVar(&v.port, "port", "", "Server port (default: 8080)")
	fs.StringVar(&v.readTimeout, "read-timeout", "", "HTTP read timeout (default: 15s)")
	fs.StringVar(&v.writeTimeout, "write-timeout", "", "HTTP write timeout (default: 15s)")
	fs.StringVar(&v.idleTimeout, "idle-timeout", "", "HTTP idle timeout (default: 60s)")
	fs.StringVar(&v.corsOrigins, "cors-origins", "", "Comma separated allowed CORS origins (default: *)")
	fs.StringVar(&v.tokenDuration, "access-token-duration", "", "Access token lifetime (default: 4h)")
	fs.StringVar(&v.booksAPIKey, "google-books-api-key", "", "Google Books API key")
	fs.StringVar(&v.booksBaseURL, "google-books-base-url", "", "Google Books API base URL")
	fs.StringVar(&v.backfill, "metadata-backfill", "", "Fetch book metadata on creation (default: true)")
	fs.StringVar(&v.envFile, "env-file", ".env", "Path to .env file")
	return v
}

// LoadConfig loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	return Load(flag.CommandLine, os.Args[1:])
}

// Load parses args into fs and builds the configuration.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	v := registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// godotenv.Load never overrides variables that are already set. A
	// missing file is fine.
	if err := godotenv.Load(v.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", v.envFile, err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(v.env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(v.logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			Path: getConfigValue(v.dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:               getConfigValue(v.port, "SERVER_PORT", "8080"),
			CORSAllowedOrigins: splitList(getConfigValue(v.corsOrigins, "CORS_ALLOWED_ORIGINS", "*")),
		},
		GoogleBooks: GoogleBooksConfig{
			APIKey:   getConfigValue(v.booksAPIKey, "GOOGLE_BOOKS_API_KEY", ""),
			BaseURL:  getConfigValue(v.booksBaseURL, "GOOGLE_BOOKS_BASE_URL", ""),
			Backfill: getBoolConfigValue(v.backfill, "METADATA_BACKFILL", true),
		},
	}

	durations := []struct {
		flagValue, key, def string
		dst                 *time.Duration
	}{
		{v.readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{v.writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{v.idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{v.tokenDuration, "ACCESS_TOKEN_DURATION", "4h", &cfg.Auth.AccessTokenDuration},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.key, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.key, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.Path == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.Server.Port == "" {
		return errors.New("SERVER_PORT is required")
	}

	for name, d := range map[string]time.Duration{
		"SERVER_READ_TIMEOUT":   c.Server.ReadTimeout,
		"SERVER_WRITE_TIMEOUT":  c.Server.WriteTimeout,
		"SERVER_IDLE_TIMEOUT":   c.Server.IdleTimeout,
		"ACCESS_TOKEN_DURATION": c.Auth.AccessTokenDuration,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	return nil
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandDataPath defaults to ~/bookmarkd.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Data.Path, filepath.Join(homeDir, "bookmarkd"))
	if err != nil {
		return err
	}
	c.Data.Path = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1" and "yes" (case-insensitive) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
