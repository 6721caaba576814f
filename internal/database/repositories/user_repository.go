package repositories

import (
	"context"
	"time"

	"github.com/lucsky/cuid"
	"gorm.io/gorm"

	"minipaint/internal/database/models"
)

// UserRepository handles user and session data access.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns a user by ID, or nil if not found.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).First(&user, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &user, nil
}

// FindByEmail returns a user by email, or nil if not found.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).First(&user, "email = ?", email)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &user, nil
}

// Create creates a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = cuid.New()
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// CreateSession issues a new session for a user.
func (r *UserRepository) CreateSession(ctx context.Context, userID string, ttl time.Duration) (*models.Session, error) {
	session := models.Session{
		ID:        cuid.New(),
		Token:     cuid.New() + cuid.New(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := r.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// FindSessionByToken returns an unexpired session, or nil.
func (r *UserRepository) FindSessionByToken(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	result := r.db.WithContext(ctx).
		First(&session, "token = ? AND expires_at > ?", token, time.Now())
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &session, nil
}

// DeleteSession removes a session (logout).
func (r *UserRepository) DeleteSession(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Delete(&models.Session{}, "token = ?", token).Error
}
