package config

import (
	"testing"
)

func TestLoad_CustomEnvironment(t *testing.T) {
	// Set custom environment variables using t.Setenv (auto cleanup)
	t.Setenv("PORT", "8080")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "file:./prod.db")
	t.Setenv("CORS_ORIGIN", "http://example.com")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("OAUTH_REDIRECT_URL", "https://example.com/callback")
	t.Setenv("ADMIN_EMAILS", "boss@example.com, second@example.com")
	t.Setenv("SESSION_TTL_HOURS", "48")
	t.Setenv("MAX_IMAGE_BYTES", "1048576")
	t.Setenv("MAX_IMAGE_DIM", "1024")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Expected Port to be '8080', got '%s'", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Errorf("Expected Env to be 'production', got '%s'", cfg.Env)
	}
	if cfg.DatabaseURL != "file:./prod.db" {
		t.Errorf("Expected DatabaseURL to be 'file:./prod.db', got '%s'", cfg.DatabaseURL)
	}
	if cfg.CORSOrigin != "http://example.com" {
		t.Errorf("Expected CORSOrigin to be 'http://example.com', got '%s'", cfg.CORSOrigin)
	}
	if cfg.GoogleClientID != "client-id" {
		t.Errorf("Expected GoogleClientID to be 'client-id', got '%s'", cfg.GoogleClientID)
	}
	if cfg.OAuthRedirectURL != "https://example.com/callback" {
		t.Errorf("Expected OAuthRedirectURL mismatch: '%s'", cfg.OAuthRedirectURL)
	}
	if len(cfg.AdminEmails) != 2 {
		t.Fatalf("Expected 2 admin emails, got %d", len(cfg.AdminEmails))
	}
	if cfg.AdminEmails[1] != "second@example.com" {
		t.Errorf("Expected admin emails trimmed, got '%s'", cfg.AdminEmails[1])
	}
	if cfg.SessionTTLHours != 48 {
		t.Errorf("Expected SessionTTLHours 48, got %d", cfg.SessionTTLHours)
	}
	if cfg.MaxImageBytes != 1048576 {
		t.Errorf("Expected MaxImageBytes 1048576, got %d", cfg.MaxImageBytes)
	}
	if cfg.MaxImageDim != 1024 {
		t.Errorf("Expected MaxImageDim 1024, got %d", cfg.MaxImageDim)
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("SESSION_TTL_HOURS", "not-a-number")
	cfg := Load()
	if cfg.SessionTTLHours != 24*30 {
		t.Errorf("Expected default TTL on bad input, got %d", cfg.SessionTTLHours)
	}
}

func TestIsDevelopment(t *testing.T) {
	tests := []struct {
		env      string
		expected bool
	}{
		{"development", true},
		{"production", false},
		{"test", false},
		{"", false},
	}

	for _, tt := range tests {
		cfg := &Config{Env: tt.env}
		if got := cfg.IsDevelopment(); got != tt.expected {
			t.Errorf("IsDevelopment() with env '%s' = %v, want %v", tt.env, got, tt.expected)
		}
	}
}

func TestIsProduction(t *testing.T) {
	tests := []struct {
		env      string
		expected bool
	}{
		{"production", true},
		{"development", false},
		{"", false},
	}

	for _, tt := range tests {
		cfg := &Config{Env: tt.env}
		if got := cfg.IsProduction(); got != tt.expected {
			t.Errorf("IsProduction() with env '%s' = %v, want %v", tt.env, got, tt.expected)
		}
	}
}

func TestIsAdmin(t *testing.T) {
	cfg := &Config{AdminEmails: []string{"boss@example.com"}}

	if !cfg.IsAdmin("boss@example.com") {
		t.Error("Expected configured email to be admin")
	}
	// Matching is case-insensitive.
	if !cfg.IsAdmin("Boss@Example.com") {
		t.Error("Expected case-insensitive match")
	}
	if cfg.IsAdmin("other@example.com") {
		t.Error("Expected other email to not be admin")
	}
	if (&Config{}).IsAdmin("boss@example.com") {
		t.Error("Expected no admins when list is empty")
	}
}
