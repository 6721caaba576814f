package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"minipaint/internal/services/drive"
	"minipaint/internal/services/pubsub"
)

const driveFolderName = "MiniPaint"

// settingsResponse exposes connection state without the stored tokens.
type settingsResponse struct {
	DriveConnected bool    `json:"driveConnected"`
	DriveFolderID  *string `json:"driveFolderId"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	setting, err := s.settingRepo.FindByUserID(r.Context(), currentUser(r).ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	resp := settingsResponse{}
	if setting != nil {
		resp.DriveConnected = setting.DriveRefreshToken != nil && *setting.DriveRefreshToken != ""
		resp.DriveFolderID = setting.DriveFolderID
	}
	respondData(w, resp)
}

// handleDriveConnect returns the OAuth consent URL. The user ID rides
// along as state and is checked again on callback.
func (s *Server) handleDriveConnect(w http.ResponseWriter, r *http.Request) {
	if !s.drive.Configured() {
		respondErrorMessage(w, http.StatusServiceUnavailable, "google drive integration is not configured")
		return
	}
	respondData(w, map[string]string{
		"authUrl": s.drive.AuthURL(currentUser(r).ID),
	})
}

func (s *Server) handleDriveCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		respondErrorMessage(w, http.StatusBadRequest, "missing authorization code")
		return
	}
	user := currentUser(r)
	if state != user.ID {
		respondErrorMessage(w, http.StatusBadRequest, "oauth state mismatch")
		return
	}

	tokens, err := s.drive.ExchangeCode(r.Context(), code)
	if err != nil {
		respondError(w, http.StatusBadGateway, err)
		return
	}
	if tokens.RefreshToken == "" {
		respondErrorMessage(w, http.StatusBadGateway, "google did not return a refresh token, disconnect the app in your google account and retry")
		return
	}

	// Keep any folder created by a previous connection.
	var folderID *string
	if existing, err := s.settingRepo.FindByUserID(r.Context(), user.ID); err == nil && existing != nil {
		folderID = existing.DriveFolderID
	}

	if _, err := s.settingRepo.UpsertDriveTokens(r.Context(), user.ID, &tokens.RefreshToken, folderID); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.pubsub.Publish(pubsub.TopicSettingsUpdated, user.ID, "drive")
	respondOK(w)
}

func (s *Server) handleDriveDisconnect(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if err := s.settingRepo.ClearDriveTokens(r.Context(), user.ID); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.pubsub.Publish(pubsub.TopicSettingsUpdated, user.ID, "drive")
	respondOK(w)
}

// uploadResponse reports the stored file and what optimization did to it.
type uploadResponse struct {
	FileID        string `json:"fileId"`
	Format        string `json:"format"`
	FileSize      int    `json:"fileSize"`
	WasResized    bool   `json:"wasResized"`
	WasCompressed bool   `json:"wasCompressed"`
}

// handleDriveUpload validates and optimizes the uploaded image, then
// stores it in the user's Drive folder and makes it link-readable.
func (s *Server) handleDriveUpload(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	setting, err := s.settingRepo.FindByUserID(r.Context(), user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if setting == nil || setting.DriveRefreshToken == nil || *setting.DriveRefreshToken == "" {
		respondError(w, http.StatusBadRequest, drive.ErrNotConnected)
		return
	}
	refreshToken := *setting.DriveRefreshToken

	// Cap the multipart read at double the image limit; the optimizer can
	// shrink oversized pixels but a runaway body is refused outright.
	if err := r.ParseMultipartForm(int64(s.cfg.MaxImageBytes) * 2); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		respondErrorMessage(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, int64(s.cfg.MaxImageBytes)*4))
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.optimizer.ValidateAndOptimize(data, header.Filename)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err)
		return
	}

	folderID := ""
	if setting.DriveFolderID != nil {
		folderID = *setting.DriveFolderID
	}
	if folderID == "" {
		folderID, err = s.drive.EnsureFolder(r.Context(), refreshToken, driveFolderName)
		if err != nil {
			respondError(w, http.StatusBadGateway, err)
			return
		}
		if _, err := s.settingRepo.UpsertDriveTokens(r.Context(), user.ID, &refreshToken, &folderID); err != nil {
			respondError(w, http.StatusInternalServerError, err)
			return
		}
	}

	filename := fmt.Sprintf("guide-%d.%s", time.Now().UnixNano(), result.Format)
	uploaded, err := s.drive.UploadFile(r.Context(), refreshToken, result.Data, filename, result.MimeType(), folderID)
	if err != nil {
		respondError(w, http.StatusBadGateway, err)
		return
	}
	if err := s.drive.MakePublic(r.Context(), refreshToken, uploaded.ID); err != nil {
		respondError(w, http.StatusBadGateway, err)
		return
	}

	respondData(w, uploadResponse{
		FileID:        uploaded.ID,
		Format:        result.Format,
		FileSize:      len(result.Data),
		WasResized:    result.WasResized,
		WasCompressed: result.WasCompressed,
	})
}

// handleImageProxy streams a link-readable Drive file. Serving the bytes
// ourselves sidesteps Drive's referrer restrictions; responses are
// immutable so clients may cache for a year.
func (s *Server) handleImageProxy(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")
	if fileID == "" {
		respondErrorMessage(w, http.StatusBadRequest, "missing file id")
		return
	}

	data, contentType, err := s.drive.FetchPublic(r.Context(), fileID)
	if err != nil {
		if errors.Is(err, drive.ErrNotConnected) {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		respondError(w, http.StatusBadGateway, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
