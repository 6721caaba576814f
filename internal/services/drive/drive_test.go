package drive

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"minipaint/internal/config"
)

func testService() *Service {
	return NewService(&config.Config{
		GoogleClientID:     "client-id",
		GoogleClientSecret: "client-secret",
		OAuthRedirectURL:   "https://example.com/callback",
	})
}

func TestConfigured(t *testing.T) {
	if !testService().Configured() {
		t.Error("Expected service with credentials to be configured")
	}
	empty := NewService(&config.Config{})
	if empty.Configured() {
		t.Error("Expected service without credentials to be unconfigured")
	}
}

func TestAuthURL(t *testing.T) {
	raw := testService().AuthURL("user-123")

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("AuthURL is not a valid URL: %v", err)
	}
	if !strings.HasPrefix(raw, authURL) {
		t.Errorf("Expected Google auth endpoint, got %s", raw)
	}

	q := parsed.Query()
	if q.Get("client_id") != "client-id" {
		t.Errorf("client_id mismatch: %s", q.Get("client_id"))
	}
	if q.Get("state") != "user-123" {
		t.Errorf("state mismatch: %s", q.Get("state"))
	}
	// Offline access with forced consent so a refresh token comes back.
	if q.Get("access_type") != "offline" {
		t.Errorf("access_type mismatch: %s", q.Get("access_type"))
	}
	if q.Get("prompt") != "consent" {
		t.Errorf("prompt mismatch: %s", q.Get("prompt"))
	}
	if !strings.Contains(q.Get("scope"), "drive.file") {
		t.Errorf("Expected drive.file scope, got %s", q.Get("scope"))
	}
}

func TestOperationsRequireConnection(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	if _, err := svc.UploadFile(ctx, "", nil, "a.jpg", "image/jpeg", ""); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected for upload, got %v", err)
	}
	if err := svc.MakePublic(ctx, "", "file-1"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected for permission, got %v", err)
	}
	if _, err := svc.EnsureFolder(ctx, "", "MiniPaint"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected for folder, got %v", err)
	}
}
