// Package backup provides portable JSON export and import of a user's
// painting guides.
package backup

import (
	"context"
	"time"

	"minipaint/internal/database/repositories"
	"minipaint/internal/services/version"
)

// ArchiveVersion is the format version written to new archives.
const ArchiveVersion = "1.0"

// Archive is a full guide export.
type Archive struct {
	Version  string          `json:"version"`
	Metadata *Metadata       `json:"metadata,omitempty"`
	Guides   []ExportedGuide `json:"guides"`
}

// Metadata contains export metadata.
type Metadata struct {
	ExportedAt string `json:"exportedAt"`
	AppVersion string `json:"appVersion"`
}

// ExportedGuide represents one exported painting guide.
type ExportedGuide struct {
	OriginalID   string         `json:"originalId,omitempty"`
	Name         string         `json:"name"`
	Note         *string        `json:"note,omitempty"`
	GuideType    string         `json:"guideType"`
	Primer       *PaintRef      `json:"primer,omitempty"`
	IsAirbrush   bool           `json:"isAirbrush"`
	IsSlapchop   bool           `json:"isSlapchop"`
	SlapchopNote *string        `json:"slapchopNote,omitempty"`
	Steps        []ExportedStep `json:"steps"`
	CreatedAt    string         `json:"createdAt,omitempty"`
}

// ExportedStep represents one step of a guide.
type ExportedStep struct {
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Category    *string         `json:"category,omitempty"`
	Paints      []ExportedPaint `json:"paints"`
}

// ExportedPaint represents a paint slot within a step. The name and hex
// snapshot are authoritative; Catalog is a best-effort link back to the
// shared catalog.
type ExportedPaint struct {
	Name     string    `json:"name"`
	ColorHex string    `json:"colorHex"`
	Role     *string   `json:"role,omitempty"`
	Ratio    int       `json:"ratio"`
	Note     *string   `json:"note,omitempty"`
	Catalog  *PaintRef `json:"catalog,omitempty"`
}

// PaintRef identifies a catalog paint by stable attributes rather than
// a database ID, so archives survive catalog reseeds and move between
// installations.
type PaintRef struct {
	Brand       string `json:"brand"`
	Name        string `json:"name"`
	ProductCode string `json:"productCode,omitempty"`
}

// ExportStats contains statistics about an export.
type ExportStats struct {
	GuidesCount int
	StepsCount  int
	PaintsCount int
}

// Service handles guide archive export and import.
type Service struct {
	guideRepo *repositories.GuideRepository
	paintRepo *repositories.PaintRepository
}

// NewService creates a new backup service.
func NewService(guideRepo *repositories.GuideRepository, paintRepo *repositories.PaintRepository) *Service {
	return &Service{
		guideRepo: guideRepo,
		paintRepo: paintRepo,
	}
}

// ExportGuides exports all of a user's guides to an archive. Image
// references are not exported; the files live in the owner's Drive and
// are not portable.
func (s *Service) ExportGuides(ctx context.Context, userID string) (*Archive, *ExportStats, error) {
	guides, err := s.guideRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	archive := &Archive{
		Version: ArchiveVersion,
		Metadata: &Metadata{
			ExportedAt: time.Now().UTC().Format(time.RFC3339),
			AppVersion: version.Version,
		},
		Guides: []ExportedGuide{},
	}
	stats := &ExportStats{}

	// Catalog paints referenced by guides, fetched once per ID.
	catalogRefs := make(map[string]*PaintRef)

	for _, guide := range guides {
		exported := ExportedGuide{
			OriginalID:   guide.ID,
			Name:         guide.Name,
			Note:         guide.Note,
			GuideType:    guide.GuideType,
			IsAirbrush:   guide.IsAirbrush,
			IsSlapchop:   guide.IsSlapchop,
			SlapchopNote: guide.SlapchopNote,
			Steps:        []ExportedStep{},
			CreatedAt:    guide.CreatedAt.UTC().Format(time.RFC3339),
		}

		if guide.PrimerPaintID != nil {
			ref, err := s.catalogRef(ctx, *guide.PrimerPaintID, catalogRefs)
			if err != nil {
				return nil, nil, err
			}
			exported.Primer = ref
		}

		for _, detail := range guide.Details {
			step := ExportedStep{
				Name:        detail.Name,
				Description: detail.Description,
				Category:    detail.Category,
				Paints:      []ExportedPaint{},
			}
			for _, paint := range detail.Paints {
				entry := ExportedPaint{
					Name:     paint.PaintName,
					ColorHex: paint.PaintColorHex,
					Role:     paint.Role,
					Ratio:    paint.Ratio,
					Note:     paint.Note,
				}
				if paint.PaintID != nil {
					ref, err := s.catalogRef(ctx, *paint.PaintID, catalogRefs)
					if err != nil {
						return nil, nil, err
					}
					entry.Catalog = ref
				}
				step.Paints = append(step.Paints, entry)
				stats.PaintsCount++
			}
			exported.Steps = append(exported.Steps, step)
			stats.StepsCount++
		}

		archive.Guides = append(archive.Guides, exported)
		stats.GuidesCount++
	}

	return archive, stats, nil
}

// catalogRef resolves a catalog paint ID to a portable reference,
// caching lookups. Dangling IDs resolve to nil.
func (s *Service) catalogRef(ctx context.Context, paintID string, cache map[string]*PaintRef) (*PaintRef, error) {
	if ref, ok := cache[paintID]; ok {
		return ref, nil
	}
	paint, err := s.paintRepo.FindPaintByID(ctx, paintID)
	if err != nil {
		return nil, err
	}
	if paint == nil || paint.Brand == nil {
		cache[paintID] = nil
		return nil, nil
	}
	ref := &PaintRef{
		Brand:       paint.Brand.Name,
		Name:        paint.Name,
		ProductCode: paint.ProductCode,
	}
	cache[paintID] = ref
	return ref, nil
}
