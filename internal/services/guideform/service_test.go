package guideform_test

import (
	"context"
	"errors"
	"testing"

	"minipaint/internal/services/guideform"
	"minipaint/internal/services/pubsub"
	"minipaint/internal/services/testutil"
)

func ptr(s string) *string { return &s }

func setupService(t *testing.T) (*guideform.Service, *testutil.TestDB, func()) {
	t.Helper()
	testDB, cleanup := testutil.SetupTestDB(t)
	service := guideform.NewService(testDB.GuideRepo, pubsub.New())
	return service, testDB, cleanup
}

func TestService_SaveCreatesGuide(t *testing.T) {
	service, _, cleanup := setupService(t)
	defer cleanup()
	ctx := context.Background()

	form := service.StartCreate("user-1")
	_ = form.SetField("name", "Ultramarine Armor")
	_ = form.SetField("guideType", "layering")
	form.AddStep("Armor", "armor")
	form.AddPaintToSlot(0, ptr("base"), guideform.PaintRef{
		Name:     "Macragge Blue",
		ColorHex: "#0F3D7C",
		Ratio:    1,
	})

	if err := service.Save(ctx, "user-1"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// The form closes on success.
	if service.Form("user-1").Phase != guideform.PhaseClosed {
		t.Error("Expected form closed after save")
	}

	guides, err := service.FetchGuides(ctx, "user-1")
	if err != nil {
		t.Fatalf("FetchGuides failed: %v", err)
	}
	if len(guides) != 1 {
		t.Fatalf("Expected 1 guide, got %d", len(guides))
	}
	if guides[0].Name != "Ultramarine Armor" {
		t.Errorf("Name mismatch: %s", guides[0].Name)
	}
	if len(guides[0].Details) != 1 || len(guides[0].Details[0].Paints) != 1 {
		t.Fatal("Expected detail tree persisted")
	}
	// FetchGuides normalizes: layer roles are derived.
	if got := guides[0].Details[0].LayerRoles; len(got) == 0 {
		t.Error("Expected layer roles derived on fetch")
	}
}

func TestService_SaveValidation(t *testing.T) {
	service, _, cleanup := setupService(t)
	defer cleanup()
	ctx := context.Background()

	// Saving without an open form fails.
	if err := service.Save(ctx, "user-1"); !errors.Is(err, guideform.ErrNotOpen) {
		t.Errorf("Expected ErrNotOpen, got %v", err)
	}

	// Saving a nameless draft fails and leaves the form open.
	service.StartCreate("user-1")
	if err := service.Save(ctx, "user-1"); !errors.Is(err, guideform.ErrNameRequired) {
		t.Errorf("Expected ErrNameRequired, got %v", err)
	}
	if service.Form("user-1").Phase != guideform.PhaseEditing {
		t.Error("Expected form still open after failed save")
	}
}

func TestService_EditRoundTrip(t *testing.T) {
	service, _, cleanup := setupService(t)
	defer cleanup()
	ctx := context.Background()

	form := service.StartCreate("user-1")
	_ = form.SetField("name", "First Pass")
	form.AddStep("Armor", "")
	form.AddStep("Trim", "")
	if err := service.Save(ctx, "user-1"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	guides, _ := service.FetchGuides(ctx, "user-1")
	guideID := guides[0].ID

	form, err := service.StartEdit(ctx, "user-1", guideID)
	if err != nil {
		t.Fatalf("StartEdit failed: %v", err)
	}
	if !form.IsEditingExisting() {
		t.Fatal("Expected edit mode")
	}
	if len(form.Draft.Details) != 2 {
		t.Fatalf("Expected 2 details loaded, got %d", len(form.Draft.Details))
	}

	// Drop a step and rename; save must replace, not append.
	form.RemoveStep(0)
	_ = form.SetField("name", "Second Pass")
	if err := service.Save(ctx, "user-1"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	guides, _ = service.FetchGuides(ctx, "user-1")
	if len(guides) != 1 {
		t.Fatalf("Expected update in place, got %d guides", len(guides))
	}
	if guides[0].Name != "Second Pass" {
		t.Errorf("Name mismatch: %s", guides[0].Name)
	}
	if len(guides[0].Details) != 1 || guides[0].Details[0].Name != "Trim" {
		t.Errorf("Expected only Trim to survive, got %+v", guides[0].Details)
	}
}

func TestService_StartEditMissingGuide(t *testing.T) {
	service, _, cleanup := setupService(t)
	defer cleanup()

	_, err := service.StartEdit(context.Background(), "user-1", "no-such-guide")
	if !errors.Is(err, guideform.ErrGuideNotFound) {
		t.Errorf("Expected ErrGuideNotFound, got %v", err)
	}
}

func TestService_Delete(t *testing.T) {
	service, _, cleanup := setupService(t)
	defer cleanup()
	ctx := context.Background()

	form := service.StartCreate("user-1")
	_ = form.SetField("name", "Doomed")
	if err := service.Save(ctx, "user-1"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	guides, _ := service.FetchGuides(ctx, "user-1")

	if err := service.Delete(ctx, "user-1", guides[0].ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	guides, _ = service.FetchGuides(ctx, "user-1")
	if len(guides) != 0 {
		t.Errorf("Expected no guides after delete, got %d", len(guides))
	}
}

func TestService_EditAndDeleteScopedToOwner(t *testing.T) {
	service, _, cleanup := setupService(t)
	defer cleanup()
	ctx := context.Background()

	form := service.StartCreate("user-1")
	_ = form.SetField("name", "Keep Out")
	if err := service.Save(ctx, "user-1"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	guides, _ := service.FetchGuides(ctx, "user-1")
	guideID := guides[0].ID

	// Another user cannot open the guide for editing.
	if _, err := service.StartEdit(ctx, "user-2", guideID); !errors.Is(err, guideform.ErrGuideNotFound) {
		t.Errorf("Expected ErrGuideNotFound for foreign edit, got %v", err)
	}

	// Nor delete it.
	if err := service.Delete(ctx, "user-2", guideID); !errors.Is(err, guideform.ErrGuideNotFound) {
		t.Errorf("Expected ErrGuideNotFound for foreign delete, got %v", err)
	}
	guides, _ = service.FetchGuides(ctx, "user-1")
	if len(guides) != 1 {
		t.Fatalf("Expected guide to survive foreign delete, got %d", len(guides))
	}

	// The owner still can.
	if _, err := service.StartEdit(ctx, "user-1", guideID); err != nil {
		t.Fatalf("StartEdit by owner failed: %v", err)
	}
}

func TestService_SaveDuringDiscardPrompt(t *testing.T) {
	service, _, cleanup := setupService(t)
	defer cleanup()
	ctx := context.Background()

	form := service.StartCreate("user-1")
	_ = form.SetField("name", "Half Done")
	form.RequestClose()
	if form.Phase != guideform.PhaseConfirmingDiscard {
		t.Fatalf("Expected discard prompt, got %s", form.Phase)
	}

	// Saving while the discard prompt is up is rejected.
	if err := service.Save(ctx, "user-1"); !errors.Is(err, guideform.ErrNotOpen) {
		t.Errorf("Expected ErrNotOpen during discard prompt, got %v", err)
	}

	// Backing out of the prompt makes the draft saveable again.
	form.CancelDiscard()
	if err := service.Save(ctx, "user-1"); err != nil {
		t.Fatalf("Save after cancel failed: %v", err)
	}
	guides, _ := service.FetchGuides(ctx, "user-1")
	if len(guides) != 1 {
		t.Fatalf("Expected 1 guide, got %d", len(guides))
	}
}

func TestService_FormsAreIsolatedPerUser(t *testing.T) {
	service, _, cleanup := setupService(t)
	defer cleanup()

	formA := service.StartCreate("user-a")
	_ = formA.SetField("name", "A's draft")

	formB := service.Form("user-b")
	if formB.Phase != guideform.PhaseClosed {
		t.Error("Expected user-b's form untouched")
	}
	if formB.Draft.Name != "" {
		t.Error("Expected user-b's draft empty")
	}
}
