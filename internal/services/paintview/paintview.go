// Package paintview provides pure, order-preserving derived views over
// paint collections: library and inventory filters and brand statistics.
package paintview

import (
	"sort"
	"strings"

	"minipaint/internal/database/models"
)

// unknownBrand is the fallback bucket for owned paints whose brand
// relation is absent.
const unknownBrand = "Unknown"

// BrandStat is one row of the owned-paint brand statistics.
type BrandStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// FilterLibrary filters catalog paints by exact set name (if non-empty)
// and then by a case-insensitive substring match against name or product
// code.
func FilterLibrary(paints []models.CatalogPaint, setName, query string) []models.CatalogPaint {
	out := paints
	if setName != "" {
		filtered := make([]models.CatalogPaint, 0, len(out))
		for _, p := range out {
			if p.Set != nil && p.Set.Name == setName {
				filtered = append(filtered, p)
			}
		}
		out = filtered
	}
	if query != "" {
		q := strings.ToLower(query)
		filtered := make([]models.CatalogPaint, 0, len(out))
		for _, p := range out {
			if matchesQuery(p.Name, p.ProductCode, q) {
				filtered = append(filtered, p)
			}
		}
		out = filtered
	}
	return out
}

// FilterOwned filters owned paints by exact brand name, then exact set
// name (meaningful once a brand is chosen), then a case-insensitive
// substring match on the catalog paint's name or product code.
func FilterOwned(paints []models.OwnedPaint, brandName, setName, query string) []models.OwnedPaint {
	out := paints
	if brandName != "" {
		filtered := make([]models.OwnedPaint, 0, len(out))
		for _, p := range out {
			if p.Paint != nil && p.Paint.Brand != nil && p.Paint.Brand.Name == brandName {
				filtered = append(filtered, p)
			}
		}
		out = filtered
	}
	if setName != "" {
		filtered := make([]models.OwnedPaint, 0, len(out))
		for _, p := range out {
			if p.Paint != nil && p.Paint.Set != nil && p.Paint.Set.Name == setName {
				filtered = append(filtered, p)
			}
		}
		out = filtered
	}
	if query != "" {
		q := strings.ToLower(query)
		filtered := make([]models.OwnedPaint, 0, len(out))
		for _, p := range out {
			if p.Paint != nil && matchesQuery(p.Paint.Name, p.Paint.ProductCode, q) {
				filtered = append(filtered, p)
			}
		}
		out = filtered
	}
	return out
}

// OwnedStats groups owned paints by resolved brand name, falling back to
// "Unknown" when the brand relation is missing, and sorts descending by
// count. Equal counts order alphabetically by brand name so the result
// is deterministic.
func OwnedStats(paints []models.OwnedPaint) []BrandStat {
	counts := make(map[string]int)
	for _, p := range paints {
		if p.Paint == nil {
			continue
		}
		name := unknownBrand
		if p.Paint.Brand != nil {
			name = p.Paint.Brand.Name
		}
		counts[name]++
	}

	stats := make([]BrandStat, 0, len(counts))
	for name, count := range counts {
		stats = append(stats, BrandStat{Name: name, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Name < stats[j].Name
	})
	return stats
}

func matchesQuery(name, productCode, loweredQuery string) bool {
	if strings.Contains(strings.ToLower(name), loweredQuery) {
		return true
	}
	return productCode != "" && strings.Contains(strings.ToLower(productCode), loweredQuery)
}
