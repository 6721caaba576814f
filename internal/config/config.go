// Package config provides configuration management for the minipaint server.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration values for the server.
type Config struct {
	// Server configuration
	Port string
	Env  string

	// Database configuration
	DatabaseURL string

	// CORS configuration
	CORSOrigin string

	// Google Drive OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string

	// Admin emails (comma-separated in env)
	AdminEmails []string

	// Session lifetime in hours
	SessionTTLHours int

	// Image upload limits
	MaxImageBytes int
	MaxImageDim   int
}

// Load loads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		// Server
		Port: getEnv("PORT", "4000"),
		Env:  getEnv("ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "file:./dev.db"),

		// CORS
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:3000"),

		// Google Drive
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectURL:   getEnv("OAUTH_REDIRECT_URL", "http://localhost:3000/callback"),

		// Admin
		AdminEmails: getEnvList("ADMIN_EMAILS"),

		// Sessions
		SessionTTLHours: getEnvInt("SESSION_TTL_HOURS", 24*30),

		// Images
		MaxImageBytes: getEnvInt("MAX_IMAGE_BYTES", 5*1024*1024),
		MaxImageDim:   getEnvInt("MAX_IMAGE_DIM", 2048),
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// IsAdmin reports whether the given email is configured as an admin.
func (c *Config) IsAdmin(email string) bool {
	for _, e := range c.AdminEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default value.
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvList returns a comma-separated environment variable as a slice,
// with empty entries dropped.
func getEnvList(key string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
