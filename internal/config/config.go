// Package config loads configuration from environment variables. A .env file
// in the working directory is loaded first when present.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// Config holds the website and terminal host configuration.
type Config struct {
	// Server
	Port           string
	GinMode        string
	SiteURL        string
	StaticDir      string
	ResumeFile     string
	AllowedOrigins []string

	// Content
	ProfilePath string

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string

	// Database
	DatabasePath string

	// Admin
	AdminUsername string
	AdminPassword string
	JWTSecret     string
	// DefaultCredentials is set when the admin username or password fell
	// back to the development defaults.
	DefaultCredentials bool

	// Terminal
	NavigateDelay  time.Duration
	ExitDelay      time.Duration
	NextRoundDelay time.Duration
	SoundMuted     bool
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           envOr("PORT", "8080"),
		GinMode:        envOr("GIN_MODE", "release"),
		SiteURL:        strings.TrimRight(envOr("SITE_URL", "http://localhost:8080"), "/"),
		StaticDir:      envOr("STATIC_DIR", "./static"),
		ResumeFile:     envOr("RESUME_FILE", "./static/resume.pdf"),
		AllowedOrigins: envList("ALLOWED_ORIGINS"),
		ProfilePath:    envOr("PROFILE_PATH", ""),
		LogLevel:       envOr("LOG_LEVEL", "info"),
		LogFormat:      envOr("LOG_FORMAT", "json"),
		LogFile:        envOr("LOG_FILE", ""),
		DatabasePath:   envOr("DATABASE_PATH", "portfolio.db"),
		AdminUsername:  os.Getenv("ADMIN_USERNAME"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		NavigateDelay:  envDuration("TERMINAL_NAVIGATE_DELAY", 500*time.Millisecond),
		ExitDelay:      envDuration("TERMINAL_EXIT_DELAY", 500*time.Millisecond),
		NextRoundDelay: envDuration("HACKTYPE_NEXT_ROUND_DELAY", 1500*time.Millisecond),
		SoundMuted:     envBool("SOUND_MUTED", false),
	}

	// Default credentials for development (set ADMIN_USERNAME/ADMIN_PASSWORD in production)
	if cfg.AdminUsername == "" {
		cfg.AdminUsername = "admin"
		cfg.DefaultCredentials = true
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = "admin123"
		cfg.DefaultCredentials = true
	}
	if cfg.JWTSecret == "" {
		secret, err := randomHex(32)
		if err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.JWTSecret = secret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no safe fallback.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT %q is not a number", c.Port)
	}
	for name, d := range map[string]time.Duration{
		"TERMINAL_NAVIGATE_DELAY":   c.NavigateDelay,
		"TERMINAL_EXIT_DELAY":       c.ExitDelay,
		"HACKTYPE_NEXT_ROUND_DELAY": c.NextRoundDelay,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// envDuration accepts Go duration strings ("750ms") or plain milliseconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
