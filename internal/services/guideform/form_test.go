package guideform

import (
	"errors"
	"testing"

	"minipaint/internal/database/models"
)

func ptr(s string) *string { return &s }

func TestForm_StartCreateDefaults(t *testing.T) {
	form := NewForm()
	if form.Phase != PhaseClosed {
		t.Fatalf("Expected new form closed, got %s", form.Phase)
	}

	form.StartCreate()
	if form.Phase != PhaseEditing {
		t.Errorf("Expected editing, got %s", form.Phase)
	}
	if form.Dirty {
		t.Error("Expected fresh form clean")
	}
	if form.IsEditingExisting() {
		t.Error("Expected create mode")
	}
	if form.Draft.GuideType != models.GuideTypeLayering {
		t.Errorf("Expected default guide type layering, got %s", form.Draft.GuideType)
	}
}

func TestForm_StartEditDeepCopies(t *testing.T) {
	original := models.PaintingGuide{
		ID:   "guide-1",
		Name: "Original",
		Note: ptr("original note"),
		Details: []models.GuideDetail{
			{
				Name:       "Armor",
				LayerRoles: []string{"layer_0"},
				Paints: []models.GuidePaint{
					{PaintName: "Macragge Blue", Role: ptr("base"), Ratio: 1},
				},
			},
		},
	}

	form := NewForm()
	form.StartEdit(original)

	// Mutate the draft every way the editor can.
	_ = form.SetField("name", "Changed")
	_ = form.SetField("note", "changed note")
	form.SetStepDescription(0, "new description")
	form.AddPaintToSlot(0, ptr("highlight"), PaintRef{Name: "Fenrisian Grey", Ratio: 1})
	form.SetPaintRatio(0, 0, "5")
	form.AddLayerStep(0)

	if original.Name != "Original" {
		t.Error("Draft edit leaked into original name")
	}
	if *original.Note != "original note" {
		t.Error("Draft edit leaked into original note")
	}
	if original.Details[0].Description != nil {
		t.Error("Draft edit leaked into original description")
	}
	if len(original.Details[0].Paints) != 1 {
		t.Error("Draft paint add leaked into original")
	}
	if original.Details[0].Paints[0].Ratio != 1 {
		t.Error("Draft ratio edit leaked into original")
	}
	if len(original.Details[0].LayerRoles) != 1 {
		t.Error("Draft layer add leaked into original")
	}
}

func TestForm_SetField(t *testing.T) {
	form := NewForm()
	form.StartCreate()

	if err := form.SetField("name", "Test Guide"); err != nil {
		t.Fatalf("SetField failed: %v", err)
	}
	if form.Draft.Name != "Test Guide" {
		t.Errorf("Name not set: %s", form.Draft.Name)
	}
	if !form.Dirty {
		t.Error("Expected form dirty after field set")
	}

	if err := form.SetField("bogus", "x"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("Expected ErrUnknownField, got %v", err)
	}

	// Empty guide type falls back to layering.
	_ = form.SetField("guideType", "")
	if form.Draft.GuideType != models.GuideTypeLayering {
		t.Errorf("Expected layering fallback, got %s", form.Draft.GuideType)
	}
	_ = form.SetField("guideType", models.GuideTypeContrast)
	if form.Draft.GuideType != models.GuideTypeContrast {
		t.Errorf("Expected contrast, got %s", form.Draft.GuideType)
	}

	// Empty optional strings clear to nil.
	_ = form.SetField("note", "something")
	_ = form.SetField("note", "")
	if form.Draft.Note != nil {
		t.Error("Expected empty note cleared to nil")
	}
}

func TestForm_StepOperations(t *testing.T) {
	form := NewForm()
	form.StartCreate()

	// Empty name is a no-op.
	form.AddStep("", "armor")
	if len(form.Draft.Details) != 0 {
		t.Error("Expected empty-named step rejected")
	}
	if form.Dirty {
		t.Error("Rejected add should not dirty the form")
	}

	form.AddStep("Armor", "armor")
	form.AddStep("Trim", "")
	if len(form.Draft.Details) != 2 {
		t.Fatalf("Expected 2 steps, got %d", len(form.Draft.Details))
	}
	if form.Draft.Details[1].Category != nil {
		t.Error("Expected empty category stored as nil")
	}
	if got := form.Draft.Details[0].LayerRoles; len(got) != 1 || got[0] != "layer_0" {
		t.Errorf("Expected new step to start with layer_0, got %v", got)
	}

	// Out-of-range removes are ignored.
	form.RemoveStep(-1)
	form.RemoveStep(5)
	if len(form.Draft.Details) != 2 {
		t.Error("Out-of-range remove changed the step list")
	}

	form.RemoveStep(0)
	if len(form.Draft.Details) != 1 || form.Draft.Details[0].Name != "Trim" {
		t.Error("Expected first step removed")
	}
}

func TestForm_PaintOperations(t *testing.T) {
	form := NewForm()
	form.StartCreate()
	form.AddStep("Armor", "")

	// Ratio below 1 clamps to 1 on add.
	form.AddPaintToSlot(0, ptr("base"), PaintRef{Name: "Macragge Blue", Ratio: 0})
	if got := form.Draft.Details[0].Paints[0].Ratio; got != 1 {
		t.Errorf("Expected ratio clamp to 1, got %d", got)
	}

	// Duplicate roles are allowed.
	form.AddPaintToSlot(0, ptr("base"), PaintRef{Name: "Kantor Blue", Ratio: 2})
	if len(form.Draft.Details[0].Paints) != 2 {
		t.Fatalf("Expected 2 paints, got %d", len(form.Draft.Details[0].Paints))
	}

	// Out-of-range slot is ignored.
	form.AddPaintToSlot(7, ptr("base"), PaintRef{Name: "Nope", Ratio: 1})
	if len(form.Draft.Details[0].Paints) != 2 {
		t.Error("Out-of-range paint add changed the list")
	}

	form.RemovePaintFromSlot(0, 0)
	if len(form.Draft.Details[0].Paints) != 1 || form.Draft.Details[0].Paints[0].PaintName != "Kantor Blue" {
		t.Error("Expected first paint removed")
	}
}

func TestForm_SetPaintRatioParsing(t *testing.T) {
	form := NewForm()
	form.StartCreate()
	form.AddStep("Armor", "")
	form.AddPaintToSlot(0, ptr("base"), PaintRef{Name: "Macragge Blue", Ratio: 3})

	// Non-numeric input is silently ignored.
	form.SetPaintRatio(0, 0, "abc")
	if got := form.Draft.Details[0].Paints[0].Ratio; got != 3 {
		t.Errorf("Expected ratio unchanged on garbage input, got %d", got)
	}

	// Negative literals are ignored too.
	form.SetPaintRatio(0, 0, "-2")
	if got := form.Draft.Details[0].Paints[0].Ratio; got != 3 {
		t.Errorf("Expected ratio unchanged on negative input, got %d", got)
	}

	form.SetPaintRatio(0, 0, "7")
	if got := form.Draft.Details[0].Paints[0].Ratio; got != 7 {
		t.Errorf("Expected ratio 7, got %d", got)
	}
}

func TestForm_AddLayerStep(t *testing.T) {
	form := NewForm()
	form.StartCreate()
	form.AddStep("Armor", "")

	form.AddLayerStep(0)
	form.AddLayerStep(0)
	want := []string{"layer_0", "layer_1", "layer_2"}
	got := form.Draft.Details[0].LayerRoles
	if len(got) != len(want) {
		t.Fatalf("Expected %d roles, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Role %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestForm_ToggleCollapseNotDirty(t *testing.T) {
	form := NewForm()
	form.StartCreate()
	form.AddStep("Armor", "")
	form.Dirty = false

	form.ToggleCollapse(0)
	if !form.Draft.Details[0].IsCollapsed {
		t.Error("Expected step collapsed")
	}
	if form.Dirty {
		t.Error("Collapse toggle must not dirty the form")
	}

	form.ToggleCollapse(0)
	if form.Draft.Details[0].IsCollapsed {
		t.Error("Expected step expanded again")
	}
}

func TestForm_CloseAndDiscard(t *testing.T) {
	form := NewForm()
	form.StartCreate()

	// A clean form closes immediately.
	if !form.RequestClose() {
		t.Error("Expected clean form to close")
	}
	if form.Phase != PhaseClosed {
		t.Errorf("Expected closed, got %s", form.Phase)
	}

	// A dirty form demands confirmation.
	form.StartCreate()
	_ = form.SetField("name", "Half done")
	if form.RequestClose() {
		t.Error("Expected dirty form to stay open")
	}
	if form.Phase != PhaseConfirmingDiscard {
		t.Errorf("Expected confirming_discard, got %s", form.Phase)
	}

	// Cancelling returns to editing with the draft intact.
	form.CancelDiscard()
	if form.Phase != PhaseEditing {
		t.Errorf("Expected editing after cancel, got %s", form.Phase)
	}
	if form.Draft.Name != "Half done" {
		t.Error("Expected draft preserved after cancel")
	}

	// Confirming abandons everything.
	form.RequestClose()
	form.ConfirmDiscard()
	if form.Phase != PhaseClosed {
		t.Errorf("Expected closed after discard, got %s", form.Phase)
	}
	if form.Draft.Name != "" {
		t.Error("Expected draft cleared after discard")
	}
}
