package repositories

import (
	"context"
	"time"

	"github.com/lucsky/cuid"
	"gorm.io/gorm"

	"minipaint/internal/database/models"
)

// AccessRepository handles invite tokens and the ban list.
type AccessRepository struct {
	db *gorm.DB
}

// NewAccessRepository creates a new AccessRepository.
func NewAccessRepository(db *gorm.DB) *AccessRepository {
	return &AccessRepository{db: db}
}

// FindTokens returns all invite tokens, newest first.
func (r *AccessRepository) FindTokens(ctx context.Context) ([]models.AccessToken, error) {
	var tokens []models.AccessToken
	result := r.db.WithContext(ctx).Order("created_at DESC").Find(&tokens)
	return tokens, result.Error
}

// FindActiveToken returns the active token with the given code, or nil.
func (r *AccessRepository) FindActiveToken(ctx context.Context, code string) (*models.AccessToken, error) {
	var token models.AccessToken
	result := r.db.WithContext(ctx).
		First(&token, "token_code = ? AND status = ?", code, models.TokenStatusActive)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &token, nil
}

// GenerateToken creates a new active invite token.
func (r *AccessRepository) GenerateToken(ctx context.Context) (*models.AccessToken, error) {
	token := models.AccessToken{
		ID:        cuid.New(),
		TokenCode: cuid.New(),
		Status:    models.TokenStatusActive,
	}
	if err := r.db.WithContext(ctx).Create(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// ConsumeToken marks a token used by the given email.
func (r *AccessRepository) ConsumeToken(ctx context.Context, tokenID, email string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.AccessToken{}).
		Where("id = ?", tokenID).
		Updates(map[string]interface{}{
			"status":        models.TokenStatusUsed,
			"used_at":       now,
			"used_by_email": email,
		}).Error
}

// RevokeToken marks a token revoked.
func (r *AccessRepository) RevokeToken(ctx context.Context, tokenID string) error {
	return r.db.WithContext(ctx).
		Model(&models.AccessToken{}).
		Where("id = ?", tokenID).
		Update("status", models.TokenStatusRevoked).Error
}

// FindBannedUsers returns the ban list, newest first.
func (r *AccessRepository) FindBannedUsers(ctx context.Context) ([]models.BannedUser, error) {
	var banned []models.BannedUser
	result := r.db.WithContext(ctx).Order("banned_at DESC").Find(&banned)
	return banned, result.Error
}

// FindBan returns the ban record for an email, or nil.
func (r *AccessRepository) FindBan(ctx context.Context, email string) (*models.BannedUser, error) {
	var ban models.BannedUser
	result := r.db.WithContext(ctx).First(&ban, "email = ?", email)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ban, nil
}

// BanUser adds an email to the ban list.
func (r *AccessRepository) BanUser(ctx context.Context, email, reason, bannedBy string) error {
	ban := models.BannedUser{
		ID:       cuid.New(),
		Email:    email,
		Reason:   reason,
		BannedBy: bannedBy,
	}
	return r.db.WithContext(ctx).Create(&ban).Error
}

// UnbanUser removes a ban record.
func (r *AccessRepository) UnbanUser(ctx context.Context, banID string) error {
	return r.db.WithContext(ctx).Delete(&models.BannedUser{}, "id = ?", banID).Error
}
