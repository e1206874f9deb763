// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults applied when the matching environment variable is unset.
const (
	DefaultSentryAPIURL    = "https://sentry.io/api/0/"
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8000
	DefaultUpstreamTimeout = 10 * time.Second
	DefaultRequestTimeout  = 60 * time.Second
)

// Config holds all configuration parameters for the application.
type Config struct {
	Sentry  SentryConfig
	Server  ServerConfig
	Logging LoggingConfig
}

// SentryConfig holds Sentry API specific configuration.
type SentryConfig struct {
	// APIURL is the base of the REST API, ending in a slash.
	APIURL string
	// AuthToken optionally seeds the token store at startup.
	AuthToken string
	// Timeout bounds a single upstream request.
	Timeout time.Duration
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
	CORSOrigins    []string
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	Level  string
	Format string
}

// Addr returns the host:port the server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig initializes and loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("sentry.api_url", DefaultSentryAPIURL)
	v.SetDefault("sentry.timeout", DefaultUpstreamTimeout)
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.request_timeout", DefaultRequestTimeout)
	v.SetDefault("server.cors_origins", "*")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Map specific environment variables
	_ = v.BindEnv("sentry.api_url", "SENTRY_API_URL")
	_ = v.BindEnv("sentry.auth_token", "SENTRY_AUTH_TOKEN")
	_ = v.BindEnv("sentry.timeout", "RELAY_UPSTREAM_TIMEOUT")
	_ = v.BindEnv("server.host", "RELAY_HOST")
	_ = v.BindEnv("server.port", "RELAY_PORT")
	_ = v.BindEnv("server.request_timeout", "RELAY_REQUEST_TIMEOUT")
	_ = v.BindEnv("server.cors_origins", "RELAY_CORS_ORIGINS")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")

	config := &Config{
		Sentry: SentryConfig{
			APIURL:    v.GetString("sentry.api_url"),
			AuthToken: v.GetString("sentry.auth_token"),
			Timeout:   v.GetDuration("sentry.timeout"),
		},
		Server: ServerConfig{
			Host:           v.GetString("server.host"),
			Port:           v.GetInt("server.port"),
			RequestTimeout: v.GetDuration("server.request_timeout"),
			CORSOrigins:    splitList(v.GetString("server.cors_origins")),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(v.GetString("logging.level")),
			Format: strings.ToLower(v.GetString("logging.format")),
		},
	}

	if !strings.HasSuffix(config.Sentry.APIURL, "/") {
		config.Sentry.APIURL += "/"
	}

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ValidateConfig ensures that all configuration values are usable.
func ValidateConfig(config *Config) error {
	var problems []string

	u, err := url.Parse(config.Sentry.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("SENTRY_API_URL must be an absolute http(s) URL, got %q", config.Sentry.APIURL))
	}
	if config.Sentry.Timeout <= 0 {
		problems = append(problems, "RELAY_UPSTREAM_TIMEOUT must be positive")
	}
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("RELAY_PORT must be between 1 and 65535, got %d", config.Server.Port))
	}
	if config.Server.RequestTimeout <= 0 {
		problems = append(problems, "RELAY_REQUEST_TIMEOUT must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
