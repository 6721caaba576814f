package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"minipaint/internal/database/models"
	"minipaint/internal/services/backup"
	"minipaint/internal/services/guideform"
	"minipaint/internal/services/pubsub"
)

// formResponse is the client view of a staged guide form.
type formResponse struct {
	Phase          guideform.Phase      `json:"phase"`
	Dirty          bool                 `json:"dirty"`
	EditingGuideID string               `json:"editingGuideId"`
	Draft          models.PaintingGuide `json:"draft"`
}

func formView(form *guideform.Form) formResponse {
	return formResponse{
		Phase:          form.Phase,
		Dirty:          form.Dirty,
		EditingGuideID: form.EditingGuideID,
		Draft:          form.Draft,
	}
}

// urlIndex parses a numeric path segment. Malformed values map to -1,
// which every form mutation treats as out of range.
func urlIndex(r *http.Request, name string) int {
	idx, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return -1
	}
	return idx
}

func (s *Server) handleListGuides(w http.ResponseWriter, r *http.Request) {
	guides, err := s.guides.FetchGuides(r.Context(), currentUser(r).ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondData(w, guides)
}

func (s *Server) handleDeleteGuide(w http.ResponseWriter, r *http.Request) {
	err := s.guides.Delete(r.Context(), currentUser(r).ID, chi.URLParam(r, "guideID"))
	if err != nil {
		if errors.Is(err, guideform.ErrGuideNotFound) {
			respondError(w, http.StatusNotFound, err)
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondOK(w)
}

func (s *Server) handleGetForm(w http.ResponseWriter, r *http.Request) {
	respondData(w, formView(s.guides.Form(currentUser(r).ID)))
}

func (s *Server) handleFormCreate(w http.ResponseWriter, r *http.Request) {
	respondData(w, formView(s.guides.StartCreate(currentUser(r).ID)))
}

func (s *Server) handleFormEdit(w http.ResponseWriter, r *http.Request) {
	form, err := s.guides.StartEdit(r.Context(), currentUser(r).ID, chi.URLParam(r, "guideID"))
	if err != nil {
		if errors.Is(err, guideform.ErrGuideNotFound) {
			respondError(w, http.StatusNotFound, err)
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondData(w, formView(form))
}

func (s *Server) handleFormSetField(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string      `json:"field"`
		Value interface{} `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	form := s.guides.Form(currentUser(r).ID)
	if err := form.SetField(req.Field, req.Value); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	respondData(w, formView(form))
}

func (s *Server) handleFormAddStep(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Category string `json:"category"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	form := s.guides.Form(currentUser(r).ID)
	form.AddStep(req.Name, req.Category)
	respondData(w, formView(form))
}

func (s *Server) handleFormRemoveStep(w http.ResponseWriter, r *http.Request) {
	form := s.guides.Form(currentUser(r).ID)
	form.RemoveStep(urlIndex(r, "stepIdx"))
	respondData(w, formView(form))
}

func (s *Server) handleFormSetStepDescription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	form := s.guides.Form(currentUser(r).ID)
	form.SetStepDescription(urlIndex(r, "stepIdx"), req.Text)
	respondData(w, formView(form))
}

func (s *Server) handleFormAddPaint(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role     *string `json:"role"`
		Name     string  `json:"name"`
		ColorHex string  `json:"colorHex"`
		PaintID  *string `json:"paintId"`
		Ratio    int     `json:"ratio"`
		Note     *string `json:"note"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	form := s.guides.Form(currentUser(r).ID)
	form.AddPaintToSlot(urlIndex(r, "stepIdx"), req.Role, guideform.PaintRef{
		Name:     req.Name,
		ColorHex: req.ColorHex,
		PaintID:  req.PaintID,
		Ratio:    req.Ratio,
		Note:     req.Note,
	})
	respondData(w, formView(form))
}

func (s *Server) handleFormRemovePaint(w http.ResponseWriter, r *http.Request) {
	form := s.guides.Form(currentUser(r).ID)
	form.RemovePaintFromSlot(urlIndex(r, "stepIdx"), urlIndex(r, "paintIdx"))
	respondData(w, formView(form))
}

func (s *Server) handleFormSetPaintRatio(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ratio string `json:"ratio"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	form := s.guides.Form(currentUser(r).ID)
	form.SetPaintRatio(urlIndex(r, "stepIdx"), urlIndex(r, "paintIdx"), req.Ratio)
	respondData(w, formView(form))
}

func (s *Server) handleFormAddLayer(w http.ResponseWriter, r *http.Request) {
	form := s.guides.Form(currentUser(r).ID)
	form.AddLayerStep(urlIndex(r, "stepIdx"))
	respondData(w, formView(form))
}

func (s *Server) handleFormToggleCollapse(w http.ResponseWriter, r *http.Request) {
	form := s.guides.Form(currentUser(r).ID)
	form.ToggleCollapse(urlIndex(r, "stepIdx"))
	respondData(w, formView(form))
}

func (s *Server) handleFormRequestClose(w http.ResponseWriter, r *http.Request) {
	form := s.guides.Form(currentUser(r).ID)
	form.RequestClose()
	respondData(w, formView(form))
}

func (s *Server) handleFormConfirmDiscard(w http.ResponseWriter, r *http.Request) {
	form := s.guides.Form(currentUser(r).ID)
	form.ConfirmDiscard()
	respondData(w, formView(form))
}

func (s *Server) handleFormCancelDiscard(w http.ResponseWriter, r *http.Request) {
	form := s.guides.Form(currentUser(r).ID)
	form.CancelDiscard()
	respondData(w, formView(form))
}

func (s *Server) handleFormSave(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r).ID
	if err := s.guides.Save(r.Context(), userID); err != nil {
		switch {
		case errors.Is(err, guideform.ErrNotOpen):
			respondError(w, http.StatusConflict, err)
		case errors.Is(err, guideform.ErrNameRequired):
			respondError(w, http.StatusBadRequest, err)
		default:
			respondError(w, http.StatusInternalServerError, err)
		}
		return
	}
	respondData(w, formView(s.guides.Form(userID)))
}

// handleExportGuides streams the user's guides as a downloadable
// archive, bypassing the response envelope.
func (s *Server) handleExportGuides(w http.ResponseWriter, r *http.Request) {
	archive, _, err := s.backup.ExportGuides(r.Context(), currentUser(r).ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	filename := "minipaint-guides-" + time.Now().UTC().Format("20060102") + ".json"
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(archive)
}

func (s *Server) handleImportGuides(w http.ResponseWriter, r *http.Request) {
	var archive backup.Archive
	if err := decodeJSON(r, &archive); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	opts := backup.ImportOptions{
		SkipDuplicates: r.URL.Query().Get("skipDuplicates") == "true",
	}
	if r.URL.Query().Get("mode") == "replace" {
		opts.Mode = backup.ImportModeReplace
	}

	userID := currentUser(r).ID
	stats, err := s.backup.ImportGuides(r.Context(), userID, &archive, opts)
	if err != nil {
		if errors.Is(err, backup.ErrEmptyArchive) || errors.Is(err, backup.ErrUnsupportedVersion) {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	s.pubsub.Publish(pubsub.TopicGuidesUpdated, userID, "import")
	respondData(w, stats)
}
