package guideform

import (
	"testing"

	"minipaint/internal/database/models"
)

func TestNormalizeDetails_LegacyMidtone(t *testing.T) {
	details := []models.GuideDetail{
		{
			Paints: []models.GuidePaint{
				{PaintName: "Macragge Blue", Role: ptr("midtone")},
			},
		},
	}
	NormalizeDetails(details)

	if got := *details[0].Paints[0].Role; got != "layer_0" {
		t.Errorf("Expected midtone rewritten to layer_0, got %s", got)
	}
}

func TestNormalizeDetails_DerivesLayerRoles(t *testing.T) {
	details := []models.GuideDetail{
		{
			// A paint on layer_2 implies slots 0..2 even if the middle
			// slots are empty.
			Paints: []models.GuidePaint{
				{PaintName: "Base", Role: ptr("base")},
				{PaintName: "Bright", Role: ptr("layer_2")},
			},
		},
		{
			// No layer roles at all defaults to a single layer_0.
			Paints: []models.GuidePaint{
				{PaintName: "Wash", Role: ptr("shade")},
			},
		},
		{
			// No paints at all.
		},
	}
	NormalizeDetails(details)

	want := []string{"layer_0", "layer_1", "layer_2"}
	if got := details[0].LayerRoles; len(got) != 3 || got[0] != want[0] || got[2] != want[2] {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if got := details[1].LayerRoles; len(got) != 1 || got[0] != "layer_0" {
		t.Errorf("Expected default [layer_0], got %v", got)
	}
	if got := details[2].LayerRoles; len(got) != 1 || got[0] != "layer_0" {
		t.Errorf("Expected default [layer_0] for empty detail, got %v", got)
	}
}

func TestNormalizeDetails_MidtoneCountsAsLayerZero(t *testing.T) {
	details := []models.GuideDetail{
		{
			Paints: []models.GuidePaint{
				{PaintName: "Old", Role: ptr("midtone")},
				{PaintName: "New", Role: ptr("layer_1")},
			},
		},
	}
	NormalizeDetails(details)

	if got := details[0].LayerRoles; len(got) != 2 {
		t.Errorf("Expected layer_0 and layer_1, got %v", got)
	}
}

func TestNormalizeDetails_ResetsCollapse(t *testing.T) {
	details := []models.GuideDetail{{IsCollapsed: true}}
	NormalizeDetails(details)
	if details[0].IsCollapsed {
		t.Error("Expected collapse state reset to expanded")
	}
}

func TestNormalizeGuides(t *testing.T) {
	guides := []models.PaintingGuide{
		{
			Details: []models.GuideDetail{
				{Paints: []models.GuidePaint{{Role: ptr("midtone")}}},
			},
		},
	}
	NormalizeGuides(guides)
	if got := *guides[0].Details[0].Paints[0].Role; got != "layer_0" {
		t.Errorf("Expected normalization applied across guides, got %s", got)
	}
}
