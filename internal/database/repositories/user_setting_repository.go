package repositories

import (
	"context"

	"github.com/lucsky/cuid"
	"gorm.io/gorm"

	"minipaint/internal/database/models"
)

// UserSettingRepository handles per-user integration settings.
type UserSettingRepository struct {
	db *gorm.DB
}

// NewUserSettingRepository creates a new UserSettingRepository.
func NewUserSettingRepository(db *gorm.DB) *UserSettingRepository {
	return &UserSettingRepository{db: db}
}

// FindByUserID returns the user's settings row, or nil if none exists.
func (r *UserSettingRepository) FindByUserID(ctx context.Context, userID string) (*models.UserSetting, error) {
	var setting models.UserSetting
	result := r.db.WithContext(ctx).First(&setting, "user_id = ?", userID)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &setting, nil
}

// UpsertDriveTokens creates or updates the user's Drive connection state.
func (r *UserSettingRepository) UpsertDriveTokens(ctx context.Context, userID string, refreshToken, folderID *string) (*models.UserSetting, error) {
	var setting models.UserSetting
	result := r.db.WithContext(ctx).First(&setting, "user_id = ?", userID)

	if result.Error == gorm.ErrRecordNotFound {
		setting = models.UserSetting{
			ID:                cuid.New(),
			UserID:            userID,
			DriveRefreshToken: refreshToken,
			DriveFolderID:     folderID,
		}
		if err := r.db.WithContext(ctx).Create(&setting).Error; err != nil {
			return nil, err
		}
		return &setting, nil
	} else if result.Error != nil {
		return nil, result.Error
	}

	setting.DriveRefreshToken = refreshToken
	setting.DriveFolderID = folderID
	if err := r.db.WithContext(ctx).Save(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// ClearDriveTokens disconnects the user's Drive integration.
func (r *UserSettingRepository) ClearDriveTokens(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Model(&models.UserSetting{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"drive_refresh_token": nil,
			"drive_folder_id":     nil,
		}).Error
}
