package repositories

import (
	"context"

	"github.com/lucsky/cuid"
	"gorm.io/gorm"

	"minipaint/internal/database/models"
)

// GuideRepository handles painting guide data access.
type GuideRepository struct {
	db *gorm.DB
}

// NewGuideRepository creates a new GuideRepository.
func NewGuideRepository(db *gorm.DB) *GuideRepository {
	return &GuideRepository{db: db}
}

// FindByUserID returns all guides for a user with details and paints
// join-fetched, details and paints ordered by their order index.
func (r *GuideRepository) FindByUserID(ctx context.Context, userID string) ([]models.PaintingGuide, error) {
	var guides []models.PaintingGuide
	result := r.db.WithContext(ctx).
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("Details.Paints", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&guides)
	return guides, result.Error
}

// FindByID returns a guide by ID with its full tree, or nil if not found.
func (r *GuideRepository) FindByID(ctx context.Context, id string) (*models.PaintingGuide, error) {
	var guide models.PaintingGuide
	result := r.db.WithContext(ctx).
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("Details.Paints", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		First(&guide, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &guide, nil
}

// CreateWithDetails inserts a guide and its full detail/paint tree in a
// transaction. Order indexes are assigned from list position.
func (r *GuideRepository) CreateWithDetails(ctx context.Context, guide *models.PaintingGuide) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if guide.ID == "" {
			guide.ID = cuid.New()
		}
		details := guide.Details
		guide.Details = nil
		if err := tx.Create(guide).Error; err != nil {
			return err
		}
		guide.Details = details
		return insertDetails(tx, guide.ID, details)
	})
}

// UpdateWithDetails updates the guide scalars and replaces the whole
// detail/paint tree: existing rows are deleted and the staged tree is
// reinserted. This is a destructive replace-sync, not a diff.
func (r *GuideRepository) UpdateWithDetails(ctx context.Context, guide *models.PaintingGuide) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":            guide.Name,
			"note":            guide.Note,
			"guide_type":      guide.GuideType,
			"primer_paint_id": guide.PrimerPaintID,
			"is_airbrush":     guide.IsAirbrush,
			"is_slapchop":     guide.IsSlapchop,
			"slapchop_note":   guide.SlapchopNote,
			"image_ref":       guide.ImageRef,
		}
		if err := tx.Model(&models.PaintingGuide{}).Where("id = ?", guide.ID).Updates(updates).Error; err != nil {
			return err
		}
		if err := deleteDetails(tx, guide.ID); err != nil {
			return err
		}
		return insertDetails(tx, guide.ID, guide.Details)
	})
}

// Delete removes a guide and its detail/paint tree.
func (r *GuideRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteDetails(tx, id); err != nil {
			return err
		}
		return tx.Delete(&models.PaintingGuide{}, "id = ?", id).Error
	})
}

func deleteDetails(tx *gorm.DB, guideID string) error {
	var detailIDs []string
	if err := tx.Model(&models.GuideDetail{}).
		Where("guide_id = ?", guideID).
		Pluck("id", &detailIDs).Error; err != nil {
		return err
	}
	if len(detailIDs) > 0 {
		if err := tx.Delete(&models.GuidePaint{}, "detail_id IN ?", detailIDs).Error; err != nil {
			return err
		}
	}
	return tx.Delete(&models.GuideDetail{}, "guide_id = ?", guideID).Error
}

func insertDetails(tx *gorm.DB, guideID string, details []models.GuideDetail) error {
	for i := range details {
		detail := models.GuideDetail{
			ID:          cuid.New(),
			GuideID:     guideID,
			Name:        details[i].Name,
			Description: details[i].Description,
			Category:    details[i].Category,
			OrderIndex:  i,
		}
		if err := tx.Create(&detail).Error; err != nil {
			return err
		}

		paints := make([]models.GuidePaint, 0, len(details[i].Paints))
		for j, p := range details[i].Paints {
			paints = append(paints, models.GuidePaint{
				ID:            cuid.New(),
				DetailID:      detail.ID,
				PaintName:     p.PaintName,
				PaintColorHex: p.PaintColorHex,
				PaintID:       p.PaintID,
				Role:          p.Role,
				Ratio:         p.Ratio,
				Note:          p.Note,
				OrderIndex:    j,
			})
		}
		if len(paints) > 0 {
			if err := tx.Create(&paints).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
