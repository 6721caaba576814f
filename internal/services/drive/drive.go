// Package drive integrates with Google Drive for guide image storage.
// Users connect their own Drive via OAuth; uploads land in a dedicated
// app folder and are made link-readable so guides can embed them.
package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"golang.org/x/oauth2"

	"minipaint/internal/config"
)

const (
	authURL   = "https://accounts.google.com/o/oauth2/auth"
	tokenURL  = "https://oauth2.googleapis.com/token"
	scope     = "https://www.googleapis.com/auth/drive.file"
	apiBase   = "https://www.googleapis.com/drive/v3"
	uploadURL = "https://www.googleapis.com/upload/drive/v3/files?uploadType=multipart&fields=id,webContentLink,webViewLink"

	// Public "uc" download URL. The proxy follows its redirects to the
	// actual content host.
	publicFileURL = "https://drive.google.com/uc?export=view&id=%s"

	folderMimeType = "application/vnd.google-apps.folder"
)

// ErrNotConnected is returned when an operation needs a Drive connection
// the user has not made.
var ErrNotConnected = errors.New("google drive is not connected")

// File describes an uploaded Drive file.
type File struct {
	ID             string `json:"id"`
	WebContentLink string `json:"webContentLink"`
	WebViewLink    string `json:"webViewLink"`
}

// Tokens is the result of an OAuth code exchange.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// Service wraps the Drive REST API behind the app's upload needs.
type Service struct {
	oauth      oauth2.Config
	httpClient *http.Client
}

// NewService creates a Drive service from the app config.
func NewService(cfg *config.Config) *Service {
	return &Service{
		oauth: oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes:       []string{scope},
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
			},
		},
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether OAuth client credentials are present.
func (s *Service) Configured() bool {
	return s.oauth.ClientID != "" && s.oauth.ClientSecret != ""
}

// AuthURL returns the consent URL. Offline access is requested so the
// exchange yields a refresh token we can store.
func (s *Service) AuthURL(state string) string {
	return s.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
}

// ExchangeCode trades an authorization code for tokens.
func (s *Service) ExchangeCode(ctx context.Context, code string) (*Tokens, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return &Tokens{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}, nil
}

// client returns an HTTP client that refreshes access tokens from the
// stored refresh token as needed.
func (s *Service) client(ctx context.Context, refreshToken string) (*http.Client, error) {
	if refreshToken == "" {
		return nil, ErrNotConnected
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	src := s.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	return oauth2.NewClient(ctx, src), nil
}

// EnsureFolder creates the named app folder and returns its ID.
func (s *Service) EnsureFolder(ctx context.Context, refreshToken, name string) (string, error) {
	client, err := s.client(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(map[string]string{
		"name":     name,
		"mimeType": folderMimeType,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBase+"/files?fields=id", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to create drive folder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", driveError("create folder", resp)
	}

	var file File
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return "", err
	}
	return file.ID, nil
}

// UploadFile uploads file data into the given folder via the multipart
// upload endpoint and returns the created file's metadata.
func (s *Service) UploadFile(ctx context.Context, refreshToken string, data []byte, filename, mimeType, folderID string) (*File, error) {
	client, err := s.client(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	metadata := map[string]interface{}{"name": filename}
	if folderID != "" {
		metadata["parents"] = []string{folderID}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return nil, err
	}
	if _, err := metaPart.Write(metadataJSON); err != nil {
		return nil, err
	}

	fileHeader := textproto.MIMEHeader{}
	fileHeader.Set("Content-Type", mimeType)
	filePart, err := writer.CreatePart(fileHeader)
	if err != nil {
		return nil, err
	}
	if _, err := filePart.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file to drive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, driveError("upload", resp)
	}

	var file File
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return nil, err
	}
	return &file, nil
}

// MakePublic grants anyone-with-link read access so the image proxy can
// fetch the file without credentials.
func (s *Service) MakePublic(ctx context.Context, refreshToken, fileID string) error {
	client, err := s.client(ctx, refreshToken)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]string{
		"type": "anyone",
		"role": "reader",
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/files/%s/permissions?fields=id", apiBase, fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to set drive permission: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return driveError("set permission", resp)
	}
	return nil
}

// FetchPublic downloads a link-readable file through the public download
// URL, following redirects to the content host. Returns the bytes and the
// served content type.
func (s *Service) FetchPublic(ctx context.Context, fileID string) ([]byte, string, error) {
	url := fmt.Sprintf(publicFileURL, fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch drive file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("drive returned status %d for file %s", resp.StatusCode, fileID)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, "", err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return data, contentType, nil
}

func driveError(op string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("drive %s failed with status %d: %s", op, resp.StatusCode, string(snippet))
}
