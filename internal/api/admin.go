package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := s.accessRepo.FindTokens(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondData(w, tokens)
}

func (s *Server) handleGenerateToken(w http.ResponseWriter, r *http.Request) {
	token, err := s.accessRepo.GenerateToken(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondData(w, token)
}

func (s *Server) handleRevokeToken(w http.ResponseWriter, r *http.Request) {
	if err := s.accessRepo.RevokeToken(r.Context(), chi.URLParam(r, "tokenID")); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondOK(w)
}

func (s *Server) handleListBans(w http.ResponseWriter, r *http.Request) {
	banned, err := s.accessRepo.FindBannedUsers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondData(w, banned)
}

func (s *Server) handleBanUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email  string `json:"email"`
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.Email == "" {
		respondErrorMessage(w, http.StatusBadRequest, "email is required")
		return
	}

	admin := currentUser(r)
	if admin.Email == req.Email {
		respondErrorMessage(w, http.StatusBadRequest, "you cannot ban yourself")
		return
	}
	if err := s.accessRepo.BanUser(r.Context(), req.Email, req.Reason, admin.Email); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondOK(w)
}

func (s *Server) handleUnbanUser(w http.ResponseWriter, r *http.Request) {
	if err := s.accessRepo.UnbanUser(r.Context(), chi.URLParam(r, "banID")); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondOK(w)
}
