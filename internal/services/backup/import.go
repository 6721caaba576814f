package backup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"minipaint/internal/database/models"
)

var (
	ErrEmptyArchive       = errors.New("archive is empty")
	ErrUnsupportedVersion = errors.New("unsupported archive version")
)

// ImportMode determines how an import treats the user's existing guides.
type ImportMode string

const (
	// ImportModeMerge adds archived guides alongside existing ones.
	ImportModeMerge ImportMode = "MERGE"
	// ImportModeReplace deletes the user's guides before importing.
	ImportModeReplace ImportMode = "REPLACE"
)

// ImportOptions configures the import behavior.
type ImportOptions struct {
	Mode ImportMode
	// SkipDuplicates skips archived guides whose name matches an
	// existing guide instead of creating a second copy.
	SkipDuplicates bool
}

// ImportStats contains statistics about an import.
type ImportStats struct {
	GuidesCreated int      `json:"guidesCreated"`
	StepsCreated  int      `json:"stepsCreated"`
	PaintsCreated int      `json:"paintsCreated"`
	Skipped       int      `json:"skipped"`
	Warnings      []string `json:"warnings,omitempty"`
}

// ImportGuides imports an archive into a user's collection. Catalog
// references are re-linked best-effort; paints that no longer resolve
// keep their name and color snapshot and produce a warning.
func (s *Service) ImportGuides(ctx context.Context, userID string, archive *Archive, opts ImportOptions) (*ImportStats, error) {
	if archive == nil {
		return nil, ErrEmptyArchive
	}
	if archive.Version != ArchiveVersion {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, archive.Version)
	}
	if opts.Mode == "" {
		opts.Mode = ImportModeMerge
	}

	stats := &ImportStats{}

	existing, err := s.guideRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if opts.Mode == ImportModeReplace {
		for _, guide := range existing {
			if err := s.guideRepo.Delete(ctx, guide.ID); err != nil {
				return nil, err
			}
		}
		existing = nil
	}

	existingNames := make(map[string]bool)
	for _, guide := range existing {
		existingNames[strings.ToLower(guide.Name)] = true
	}

	// Resolved catalog refs, keyed by brand/code/name, nil when the
	// catalog has no match.
	resolved := make(map[string]*string)

	for _, exported := range archive.Guides {
		name := strings.TrimSpace(exported.Name)
		if name == "" {
			stats.Skipped++
			stats.Warnings = append(stats.Warnings, "skipped guide with empty name")
			continue
		}
		if opts.SkipDuplicates && existingNames[strings.ToLower(name)] {
			stats.Skipped++
			continue
		}

		guide := models.PaintingGuide{
			UserID:       userID,
			Name:         name,
			Note:         exported.Note,
			GuideType:    guideType(exported.GuideType),
			IsAirbrush:   exported.IsAirbrush,
			IsSlapchop:   exported.IsSlapchop,
			SlapchopNote: exported.SlapchopNote,
		}

		if exported.Primer != nil {
			paintID, err := s.resolveRef(ctx, exported.Primer, resolved, stats)
			if err != nil {
				return nil, err
			}
			guide.PrimerPaintID = paintID
		}

		for _, step := range exported.Steps {
			detail := models.GuideDetail{
				Name:        step.Name,
				Description: step.Description,
				Category:    step.Category,
			}
			for _, paint := range step.Paints {
				entry := models.GuidePaint{
					PaintName:     paint.Name,
					PaintColorHex: paint.ColorHex,
					Role:          paint.Role,
					Ratio:         paint.Ratio,
					Note:          paint.Note,
				}
				if entry.Ratio < 1 {
					entry.Ratio = 1
				}
				if paint.Catalog != nil {
					paintID, err := s.resolveRef(ctx, paint.Catalog, resolved, stats)
					if err != nil {
						return nil, err
					}
					entry.PaintID = paintID
				}
				detail.Paints = append(detail.Paints, entry)
				stats.PaintsCreated++
			}
			guide.Details = append(guide.Details, detail)
			stats.StepsCreated++
		}

		if err := s.guideRepo.CreateWithDetails(ctx, &guide); err != nil {
			return nil, err
		}
		existingNames[strings.ToLower(name)] = true
		stats.GuidesCreated++
	}

	return stats, nil
}

// resolveRef maps a portable catalog reference to a catalog paint ID,
// caching lookups and recording a warning the first time a reference
// fails to resolve.
func (s *Service) resolveRef(ctx context.Context, ref *PaintRef, cache map[string]*string, stats *ImportStats) (*string, error) {
	key := ref.Brand + "\x00" + ref.ProductCode + "\x00" + ref.Name
	if id, ok := cache[key]; ok {
		return id, nil
	}
	paint, err := s.paintRepo.ResolveCatalogPaint(ctx, ref.Brand, ref.ProductCode, ref.Name)
	if err != nil {
		return nil, err
	}
	if paint == nil {
		cache[key] = nil
		stats.Warnings = append(stats.Warnings,
			fmt.Sprintf("catalog paint not found: %s / %s", ref.Brand, ref.Name))
		return nil, nil
	}
	id := paint.ID
	cache[key] = &id
	return &id, nil
}

// guideType normalizes an archived guide type, falling back to
// layering for unknown values.
func guideType(value string) string {
	switch value {
	case models.GuideTypeLayering, models.GuideTypeContrast:
		return value
	default:
		return models.GuideTypeLayering
	}
}
