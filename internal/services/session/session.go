// Package session resolves bearer tokens to users and gates registration
// behind invite tokens. It is the explicit form of the ambient
// current-user state the web client used to carry.
package session

import (
	"context"
	"errors"
	"time"

	"minipaint/internal/database/models"
	"minipaint/internal/database/repositories"
)

var (
	// ErrUnauthorized is returned when no valid session matches a token.
	ErrUnauthorized = errors.New("not authenticated")
	// ErrBanned is returned when the session's email is on the ban list.
	ErrBanned = errors.New("account is banned")
	// ErrInvalidInvite is returned for a missing/used/revoked invite token.
	ErrInvalidInvite = errors.New("invalid or expired invite token")
	// ErrEmailTaken is returned when registering an existing email.
	ErrEmailTaken = errors.New("email already registered")
)

// Admins reports whether an email has admin rights.
type Admins interface {
	IsAdmin(email string) bool
}

// Service resolves sessions and performs invite-gated registration.
type Service struct {
	userRepo   *repositories.UserRepository
	accessRepo *repositories.AccessRepository
	admins     Admins
	sessionTTL time.Duration
}

// NewService creates a new session service.
func NewService(userRepo *repositories.UserRepository, accessRepo *repositories.AccessRepository, admins Admins, sessionTTL time.Duration) *Service {
	return &Service{
		userRepo:   userRepo,
		accessRepo: accessRepo,
		admins:     admins,
		sessionTTL: sessionTTL,
	}
}

// Resolve maps a bearer token to its user. Banned users are refused even
// with a live session.
func (s *Service) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	sess, err := s.userRepo.FindSessionByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrUnauthorized
	}
	user, err := s.userRepo.FindByID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	ban, err := s.accessRepo.FindBan(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if ban != nil {
		return nil, ErrBanned
	}
	return user, nil
}

// IsAdmin reports whether the user has admin rights.
func (s *Service) IsAdmin(user *models.User) bool {
	return user != nil && s.admins.IsAdmin(user.Email)
}

// Register validates the invite token, creates the user, consumes the
// token and issues a session.
func (s *Service) Register(ctx context.Context, email, inviteCode string) (*models.Session, error) {
	if email == "" || inviteCode == "" {
		return nil, ErrInvalidInvite
	}

	token, err := s.accessRepo.FindActiveToken(ctx, inviteCode)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, ErrInvalidInvite
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	user := models.User{Email: email}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		return nil, err
	}
	if err := s.accessRepo.ConsumeToken(ctx, token.ID, email); err != nil {
		return nil, err
	}
	return s.userRepo.CreateSession(ctx, user.ID, s.sessionTTL)
}

// Login issues a session for an existing, non-banned email. Credential
// verification lives with the external auth provider; this only mints the
// server-side session once that provider has vouched for the email.
func (s *Service) Login(ctx context.Context, email string) (*models.Session, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	ban, err := s.accessRepo.FindBan(ctx, email)
	if err != nil {
		return nil, err
	}
	if ban != nil {
		return nil, ErrBanned
	}
	return s.userRepo.CreateSession(ctx, user.ID, s.sessionTTL)
}

// Logout deletes the session for a token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.userRepo.DeleteSession(ctx, token)
}
