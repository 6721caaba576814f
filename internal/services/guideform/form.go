// Package guideform holds the staged draft of a painting guide being
// created or edited. The draft is purely local until an explicit save,
// which flattens it into a replace-sync write batch.
package guideform

import (
	"errors"
	"fmt"
	"strconv"

	"minipaint/internal/database/models"
)

// Phase is the form's lifecycle state.
type Phase string

const (
	PhaseClosed            Phase = "closed"
	PhaseEditing           Phase = "editing"
	PhaseConfirmingDiscard Phase = "confirming_discard"
)

// ErrNameRequired is returned by Save when the draft has no name.
var ErrNameRequired = errors.New("guide name is required")

// ErrUnknownField is returned by SetField for an unrecognized field name.
var ErrUnknownField = errors.New("unknown guide field")

// PaintRef identifies a paint being placed into a role slot.
type PaintRef struct {
	Name     string
	ColorHex string
	PaintID  *string
	Ratio    int
	Note     *string
}

// Form is the staged draft for one editing session. It is exclusively
// owned by that session; methods are not safe for concurrent use.
type Form struct {
	Phase Phase
	Dirty bool

	// EditingGuideID is empty in create mode.
	EditingGuideID string

	Draft models.PaintingGuide
}

// NewForm returns a closed form with no draft.
func NewForm() *Form {
	return &Form{Phase: PhaseClosed}
}

// StartCreate resets the draft to empty defaults and opens the form.
func (f *Form) StartCreate() {
	f.Phase = PhaseEditing
	f.Dirty = false
	f.EditingGuideID = ""
	f.Draft = models.PaintingGuide{GuideType: models.GuideTypeLayering}
}

// StartEdit deep-copies the loaded guide into the draft. Mutating the
// draft afterwards never affects the original.
func (f *Form) StartEdit(guide models.PaintingGuide) {
	f.Phase = PhaseEditing
	f.Dirty = false
	f.EditingGuideID = guide.ID

	draft := guide
	draft.Details = copyDetails(guide.Details)
	f.Draft = draft
}

// SetField sets a top-level scalar field and marks the form dirty.
func (f *Form) SetField(field string, value interface{}) error {
	switch field {
	case "name":
		f.Draft.Name, _ = value.(string)
	case "note":
		f.Draft.Note = optString(value)
	case "guideType":
		if s, ok := value.(string); ok && s != "" {
			f.Draft.GuideType = s
		} else {
			f.Draft.GuideType = models.GuideTypeLayering
		}
	case "primerPaintId":
		f.Draft.PrimerPaintID = optString(value)
	case "isAirbrush":
		f.Draft.IsAirbrush, _ = value.(bool)
	case "isSlapchop":
		f.Draft.IsSlapchop, _ = value.(bool)
	case "slapchopNote":
		f.Draft.SlapchopNote = optString(value)
	case "imageRef":
		f.Draft.ImageRef = optString(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	f.Dirty = true
	return nil
}

// AddStep appends a detail with the given name and category. An empty
// name is a no-op.
func (f *Form) AddStep(name, category string) {
	if name == "" {
		return
	}
	var cat *string
	if category != "" {
		cat = &category
	}
	f.Draft.Details = append(f.Draft.Details, models.GuideDetail{
		Name:       name,
		Category:   cat,
		LayerRoles: []string{"layer_0"},
	})
	f.Dirty = true
}

// RemoveStep removes the detail at idx. Out-of-range indexes are ignored.
func (f *Form) RemoveStep(idx int) {
	if idx < 0 || idx >= len(f.Draft.Details) {
		return
	}
	f.Draft.Details = append(f.Draft.Details[:idx], f.Draft.Details[idx+1:]...)
	f.Dirty = true
}

// SetStepDescription updates a detail's description text.
func (f *Form) SetStepDescription(idx int, text string) {
	if idx < 0 || idx >= len(f.Draft.Details) {
		return
	}
	if text == "" {
		f.Draft.Details[idx].Description = nil
	} else {
		f.Draft.Details[idx].Description = &text
	}
	f.Dirty = true
}

// AddPaintToSlot appends a paint with the given role to a detail. Multiple
// paints may carry the same role; the view layer treats the first as
// canonical.
func (f *Form) AddPaintToSlot(detailIdx int, role *string, paint PaintRef) {
	if detailIdx < 0 || detailIdx >= len(f.Draft.Details) {
		return
	}
	ratio := paint.Ratio
	if ratio < 1 {
		ratio = 1
	}
	detail := &f.Draft.Details[detailIdx]
	detail.Paints = append(detail.Paints, models.GuidePaint{
		PaintName:     paint.Name,
		PaintColorHex: paint.ColorHex,
		PaintID:       paint.PaintID,
		Role:          role,
		Ratio:         ratio,
		Note:          paint.Note,
	})
	f.Dirty = true
}

// RemovePaintFromSlot removes a paint from a detail's paint list.
func (f *Form) RemovePaintFromSlot(detailIdx, paintIdx int) {
	if detailIdx < 0 || detailIdx >= len(f.Draft.Details) {
		return
	}
	detail := &f.Draft.Details[detailIdx]
	if paintIdx < 0 || paintIdx >= len(detail.Paints) {
		return
	}
	detail.Paints = append(detail.Paints[:paintIdx], detail.Paints[paintIdx+1:]...)
	f.Dirty = true
}

// SetPaintRatio updates a paint's mix ratio. Anything other than a
// non-negative integer literal is silently ignored.
func (f *Form) SetPaintRatio(detailIdx, paintIdx int, ratioText string) {
	ratio, err := strconv.Atoi(ratioText)
	if err != nil || ratio < 0 {
		return
	}
	if detailIdx < 0 || detailIdx >= len(f.Draft.Details) {
		return
	}
	detail := &f.Draft.Details[detailIdx]
	if paintIdx < 0 || paintIdx >= len(detail.Paints) {
		return
	}
	detail.Paints[paintIdx].Ratio = ratio
	f.Dirty = true
}

// AddLayerStep appends the next layer_N role slot to a detail
// (layering-mode only).
func (f *Form) AddLayerStep(detailIdx int) {
	if detailIdx < 0 || detailIdx >= len(f.Draft.Details) {
		return
	}
	detail := &f.Draft.Details[detailIdx]
	detail.LayerRoles = append(detail.LayerRoles, fmt.Sprintf("layer_%d", len(detail.LayerRoles)))
	f.Dirty = true
}

// ToggleCollapse flips a detail's collapsed flag. Purely structural UI
// state: does not mark the form dirty.
func (f *Form) ToggleCollapse(detailIdx int) {
	if detailIdx < 0 || detailIdx >= len(f.Draft.Details) {
		return
	}
	f.Draft.Details[detailIdx].IsCollapsed = !f.Draft.Details[detailIdx].IsCollapsed
}

// RequestClose closes the form if clean; a dirty form moves to the
// confirming-discard state instead. Returns true when the form closed.
func (f *Form) RequestClose() bool {
	if f.Dirty {
		f.Phase = PhaseConfirmingDiscard
		return false
	}
	f.reset()
	return true
}

// ConfirmDiscard abandons the draft and closes the form.
func (f *Form) ConfirmDiscard() {
	f.reset()
}

// CancelDiscard returns to editing.
func (f *Form) CancelDiscard() {
	if f.Phase == PhaseConfirmingDiscard {
		f.Phase = PhaseEditing
	}
}

// IsEditingExisting reports whether the draft edits a persisted guide.
func (f *Form) IsEditingExisting() bool {
	return f.EditingGuideID != ""
}

func (f *Form) reset() {
	f.Phase = PhaseClosed
	f.Dirty = false
	f.EditingGuideID = ""
	f.Draft = models.PaintingGuide{}
}

func copyDetails(details []models.GuideDetail) []models.GuideDetail {
	if details == nil {
		return nil
	}
	out := make([]models.GuideDetail, len(details))
	for i, d := range details {
		copied := d
		copied.Description = copyString(d.Description)
		copied.Category = copyString(d.Category)
		copied.LayerRoles = append([]string(nil), d.LayerRoles...)
		copied.Paints = make([]models.GuidePaint, len(d.Paints))
		for j, p := range d.Paints {
			cp := p
			cp.PaintID = copyString(p.PaintID)
			cp.Role = copyString(p.Role)
			cp.Note = copyString(p.Note)
			copied.Paints[j] = cp
		}
		out[i] = copied
	}
	return out
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func optString(value interface{}) *string {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	return &s
}
