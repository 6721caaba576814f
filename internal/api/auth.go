package api

import (
	"errors"
	"net/http"

	"minipaint/internal/services/session"
)

type sessionResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"userId"`
	ExpiresAt string `json:"expiresAt"`
}

// handleRegister creates an account from an email and a one-time invite
// token, then issues a session.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		InviteToken string `json:"inviteToken"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	sess, err := s.sessions.Register(r.Context(), req.Email, req.InviteToken)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidInvite), errors.Is(err, session.ErrEmailTaken):
			respondError(w, http.StatusBadRequest, err)
		default:
			respondError(w, http.StatusInternalServerError, err)
		}
		return
	}

	respondData(w, sessionResponse{
		Token:     sess.Token,
		UserID:    sess.UserID,
		ExpiresAt: sess.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// handleLogin issues a session for an existing account.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	sess, err := s.sessions.Login(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrUnauthorized):
			respondError(w, http.StatusUnauthorized, err)
		case errors.Is(err, session.ErrBanned):
			respondError(w, http.StatusForbidden, err)
		default:
			respondError(w, http.StatusInternalServerError, err)
		}
		return
	}

	respondData(w, sessionResponse{
		Token:     sess.Token,
		UserID:    sess.UserID,
		ExpiresAt: sess.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(r.Context(), bearerToken(r)); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondOK(w)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	respondData(w, map[string]interface{}{
		"id":      user.ID,
		"email":   user.Email,
		"isAdmin": s.sessions.IsAdmin(user),
	})
}
