package guideform

import (
	"fmt"
	"strconv"
	"strings"

	"minipaint/internal/database/models"
)

// legacyMidtoneRole is the pre-layering role name still present in older
// rows; it maps to the first layer slot.
const legacyMidtoneRole = "midtone"

// NormalizeGuides prepares freshly fetched guides for the client: legacy
// roles are rewritten and per-detail layer role lists are derived.
func NormalizeGuides(guides []models.PaintingGuide) {
	for i := range guides {
		NormalizeDetails(guides[i].Details)
	}
}

// NormalizeDetails rewrites the legacy "midtone" role to "layer_0" and
// derives each detail's LayerRoles as layer_0..layer_N where N is the
// highest layer index seen among the detail's paints, defaulting to a
// single layer_0 when no layer roles are present. Collapse state resets
// to expanded.
func NormalizeDetails(details []models.GuideDetail) {
	for i := range details {
		detail := &details[i]

		maxLayer := 0
		hasLayers := false
		for j := range detail.Paints {
			paint := &detail.Paints[j]
			if paint.Role != nil && *paint.Role == legacyMidtoneRole {
				role := "layer_0"
				paint.Role = &role
			}
			if idx, ok := layerIndex(paint.Role); ok {
				if idx > maxLayer {
					maxLayer = idx
				}
				hasLayers = true
			}
		}

		if hasLayers {
			roles := make([]string, maxLayer+1)
			for n := 0; n <= maxLayer; n++ {
				roles[n] = fmt.Sprintf("layer_%d", n)
			}
			detail.LayerRoles = roles
		} else {
			detail.LayerRoles = []string{"layer_0"}
		}
		detail.IsCollapsed = false
	}
}

// layerIndex extracts N from a "layer_N" role.
func layerIndex(role *string) (int, bool) {
	if role == nil || !strings.HasPrefix(*role, "layer_") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(*role, "layer_"))
	if err != nil {
		return 0, false
	}
	return n, true
}
