package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/lucsky/cuid"
	"gorm.io/gorm"

	"minipaint/internal/database/models"
)

// PaintRepository handles catalog, inventory, custom paint and wishlist
// data access.
type PaintRepository struct {
	db *gorm.DB
}

// NewPaintRepository creates a new PaintRepository.
func NewPaintRepository(db *gorm.DB) *PaintRepository {
	return &PaintRepository{db: db}
}

// ErrNotFound is returned by user-scoped mutations when no row matches
// both the id and the owning user.
var ErrNotFound = errors.New("record not found")

// IsUniqueViolation reports whether err is a unique-constraint conflict,
// used to translate duplicate inserts into informational notices.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// FindBrands returns all catalog brands ordered by name.
func (r *PaintRepository) FindBrands(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	result := r.db.WithContext(ctx).Order("name ASC").Find(&brands)
	return brands, result.Error
}

// FindBrandPaints returns all catalog paints for a brand with set and
// brand relations loaded.
func (r *PaintRepository) FindBrandPaints(ctx context.Context, brandID string) ([]models.CatalogPaint, error) {
	var paints []models.CatalogPaint
	result := r.db.WithContext(ctx).
		Preload("Brand").
		Preload("Set").
		Where("brand_id = ?", brandID).
		Order("name ASC").
		Find(&paints)
	return paints, result.Error
}

// FindPaintByID returns a catalog paint with its brand loaded, or nil
// if not found.
func (r *PaintRepository) FindPaintByID(ctx context.Context, id string) (*models.CatalogPaint, error) {
	var paint models.CatalogPaint
	result := r.db.WithContext(ctx).
		Preload("Brand").
		First(&paint, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &paint, nil
}

// ResolveCatalogPaint looks up a catalog paint by brand name plus
// product code, falling back to brand name plus paint name. Returns nil
// when nothing matches. Used to re-link archived guides to the catalog.
func (r *PaintRepository) ResolveCatalogPaint(ctx context.Context, brandName, productCode, name string) (*models.CatalogPaint, error) {
	if productCode != "" {
		var paint models.CatalogPaint
		result := r.db.WithContext(ctx).
			Joins("JOIN paint_brands ON paint_brands.id = catalog_paints.brand_id").
			Where("paint_brands.name = ? AND catalog_paints.product_code = ?", brandName, productCode).
			First(&paint)
		if result.Error == nil {
			return &paint, nil
		}
		if result.Error != gorm.ErrRecordNotFound {
			return nil, result.Error
		}
	}

	var paint models.CatalogPaint
	result := r.db.WithContext(ctx).
		Joins("JOIN paint_brands ON paint_brands.id = catalog_paints.brand_id").
		Where("paint_brands.name = ? AND catalog_paints.name = ?", brandName, name).
		First(&paint)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &paint, nil
}

// FindBrandSets returns a brand's paint sets ordered by name.
func (r *PaintRepository) FindBrandSets(ctx context.Context, brandID string) ([]models.PaintSet, error) {
	var sets []models.PaintSet
	result := r.db.WithContext(ctx).
		Where("brand_id = ?", brandID).
		Order("name ASC").
		Find(&sets)
	return sets, result.Error
}

// FindOwnedByUser returns the user's owned paints, newest first, with
// catalog paint, brand and set relations loaded.
func (r *PaintRepository) FindOwnedByUser(ctx context.Context, userID string) ([]models.OwnedPaint, error) {
	var owned []models.OwnedPaint
	result := r.db.WithContext(ctx).
		Preload("Paint").
		Preload("Paint.Brand").
		Preload("Paint.Set").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&owned)
	return owned, result.Error
}

// AddOwned adds a catalog paint to the user's inventory. A duplicate add
// surfaces the unique violation to the caller.
func (r *PaintRepository) AddOwned(ctx context.Context, userID, paintID string) error {
	owned := models.OwnedPaint{
		ID:      cuid.New(),
		UserID:  userID,
		PaintID: paintID,
	}
	return r.db.WithContext(ctx).Create(&owned).Error
}

// RemoveOwned removes one of the user's inventory entries. Rows owned
// by other users are invisible here.
func (r *PaintRepository) RemoveOwned(ctx context.Context, userID, ownedID string) error {
	result := r.db.WithContext(ctx).
		Delete(&models.OwnedPaint{}, "id = ? AND user_id = ?", ownedID, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindCustomByUser returns the user's custom paints, newest first.
func (r *PaintRepository) FindCustomByUser(ctx context.Context, userID string) ([]models.CustomPaint, error) {
	var paints []models.CustomPaint
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&paints)
	return paints, result.Error
}

// CreateCustom creates a custom paint.
func (r *PaintRepository) CreateCustom(ctx context.Context, paint *models.CustomPaint) error {
	if paint.ID == "" {
		paint.ID = cuid.New()
	}
	return r.db.WithContext(ctx).Create(paint).Error
}

// UpdateCustom updates an existing custom paint, scoped to its owner.
func (r *PaintRepository) UpdateCustom(ctx context.Context, paint *models.CustomPaint) error {
	result := r.db.WithContext(ctx).
		Model(&models.CustomPaint{}).
		Where("id = ? AND user_id = ?", paint.ID, paint.UserID).
		Updates(map[string]interface{}{
			"name":         paint.Name,
			"brand_name":   paint.BrandName,
			"set_name":     paint.SetName,
			"product_code": paint.ProductCode,
			"color_hex":    paint.ColorHex,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCustom removes one of the user's custom paints.
func (r *PaintRepository) DeleteCustom(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).
		Delete(&models.CustomPaint{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindWishlistByUser returns the user's wishlist, newest first, with both
// catalog and custom paint relations loaded.
func (r *PaintRepository) FindWishlistByUser(ctx context.Context, userID string) ([]models.WishlistPaint, error) {
	var wishlist []models.WishlistPaint
	result := r.db.WithContext(ctx).
		Preload("Paint").
		Preload("Paint.Brand").
		Preload("Paint.Set").
		Preload("CustomPaint").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&wishlist)
	return wishlist, result.Error
}

// AddWishlist puts a catalog or custom paint on the user's wishlist.
// Exactly one of paintID/customPaintID should be non-nil.
func (r *PaintRepository) AddWishlist(ctx context.Context, userID string, paintID, customPaintID *string) error {
	entry := models.WishlistPaint{
		ID:            cuid.New(),
		UserID:        userID,
		PaintID:       paintID,
		CustomPaintID: customPaintID,
	}
	return r.db.WithContext(ctx).Create(&entry).Error
}

// RemoveWishlist removes one of the user's wishlist entries.
func (r *PaintRepository) RemoveWishlist(ctx context.Context, userID, wishlistID string) error {
	result := r.db.WithContext(ctx).
		Delete(&models.WishlistPaint{}, "id = ? AND user_id = ?", wishlistID, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
