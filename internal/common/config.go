// Package common provides shared utilities for the site server.
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the site server
type Config struct {
	Environment string        `toml:"environment"`
	Site        SiteConfig    `toml:"site"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Mail        MailConfig    `toml:"mail"`
	Logging     LoggingConfig `toml:"logging"`
	Auth        AuthConfig    `toml:"auth"`
}

// SiteConfig holds site identity and content location.
type SiteConfig struct {
	Name       string `toml:"name"`
	BaseURL    string `toml:"base_url"`    // public URL, used to build article links
	ContentDir string `toml:"content_dir"` // directory holding posts.json and markdown files
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the embedded database location.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	LinkedIn LinkedInConfig `toml:"linkedin"`
}

// LinkedInConfig holds LinkedIn OAuth and API configuration.
type LinkedInConfig struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	RedirectURL  string   `toml:"redirect_url"`
	Scopes       []string `toml:"scopes"`
	RateLimit    int      `toml:"rate_limit"`
	Timeout      string   `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *LinkedInConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// IsConfigured reports whether client credentials are present.
func (c *LinkedInConfig) IsConfigured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// MailConfig holds SMTP configuration for the contact form.
type MailConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
	To       string `toml:"to"`
}

// AuthConfig holds admin authentication configuration.
type AuthConfig struct {
	JWTSecret     string `toml:"jwt_secret"`
	TokenExpiry   string `toml:"token_expiry"` // duration string, default "24h"
	AdminEmail    string `toml:"admin_email"`
	AdminPassword string `toml:"admin_password"` // bootstrap only, hashed on first start
}

// GetTokenExpiry parses and returns the token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Site: SiteConfig{
			Name:       "Learned Geek",
			BaseURL:    "https://learnedgeek.com",
			ContentDir: "Content",
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path: "data/site",
		},
		Clients: ClientsConfig{
			LinkedIn: LinkedInConfig{
				Scopes:    []string{"openid", "profile", "w_member_social"},
				RateLimit: 2,
				Timeout:   "30s",
			},
		},
		Mail: MailConfig{
			Port: 587,
		},
		Auth: AuthConfig{
			JWTSecret:   "dev-jwt-secret-change-in-production",
			TokenExpiry: "24h",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("LG_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("LG_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("LG_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("LG_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("LG_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if dir := os.Getenv("LG_CONTENT_DIR"); dir != "" {
		config.Site.ContentDir = dir
	}

	if u := os.Getenv("LG_BASE_URL"); u != "" {
		config.Site.BaseURL = u
	}

	// Auth overrides
	if v := os.Getenv("LG_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("LG_AUTH_ADMIN_EMAIL"); v != "" {
		config.Auth.AdminEmail = v
	}
	if v := os.Getenv("LG_AUTH_ADMIN_PASSWORD"); v != "" {
		config.Auth.AdminPassword = v
	}

	// LinkedIn overrides
	if v := os.Getenv("LG_LINKEDIN_CLIENT_ID"); v != "" {
		config.Clients.LinkedIn.ClientID = v
	}
	if v := os.Getenv("LG_LINKEDIN_CLIENT_SECRET"); v != "" {
		config.Clients.LinkedIn.ClientSecret = v
	}
	if v := os.Getenv("LG_LINKEDIN_REDIRECT_URL"); v != "" {
		config.Clients.LinkedIn.RedirectURL = v
	}

	// Mail overrides
	if v := os.Getenv("LG_MAIL_HOST"); v != "" {
		config.Mail.Host = v
	}
	if v := os.Getenv("LG_MAIL_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			config.Mail.Port = p
		}
	}
	if v := os.Getenv("LG_MAIL_USERNAME"); v != "" {
		config.Mail.Username = v
	}
	if v := os.Getenv("LG_MAIL_PASSWORD"); v != "" {
		config.Mail.Password = v
	}
	if v := os.Getenv("LG_MAIL_FROM"); v != "" {
		config.Mail.From = v
	}
	if v := os.Getenv("LG_MAIL_TO"); v != "" {
		config.Mail.To = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ArticleURL builds the public URL for a post slug.
func (c *Config) ArticleURL(slug string) string {
	return strings.TrimRight(c.Site.BaseURL, "/") + "/blog/" + slug
}
