package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"minipaint/internal/database/models"
	"minipaint/internal/database/repositories"
	"minipaint/internal/services/progress"
	"minipaint/internal/services/pubsub"
)

// ownedBatch loads a batch and verifies it belongs to the current user.
// Writes the error response itself and returns nil when the caller should
// bail out.
func (s *Server) ownedBatch(w http.ResponseWriter, r *http.Request, batchID string) *models.Batch {
	batch, err := s.batchRepo.FindByID(r.Context(), batchID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return nil
	}
	if batch == nil || batch.UserID != currentUser(r).ID {
		respondErrorMessage(w, http.StatusNotFound, "batch not found")
		return nil
	}
	return batch
}

// ownedJob loads a job and verifies its batch belongs to the current user.
func (s *Server) ownedJob(w http.ResponseWriter, r *http.Request, jobID string) *models.PrintJob {
	job, err := s.batchRepo.FindJobByID(r.Context(), jobID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return nil
	}
	if job == nil {
		respondErrorMessage(w, http.StatusNotFound, "print job not found")
		return nil
	}
	if s.ownedBatch(w, r, job.BatchID) == nil {
		return nil
	}
	return job
}

func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("includeArchived") == "true"
	batches, err := s.batchRepo.FindByUserID(r.Context(), currentUser(r).ID, includeArchived)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	progress.Annotate(batches)
	respondData(w, batches)
}

func (s *Server) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string  `json:"name"`
		Tag     *string `json:"tag"`
		DueDate *string `json:"dueDate"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.Name == "" {
		respondErrorMessage(w, http.StatusBadRequest, "batch name is required")
		return
	}

	batch := models.Batch{
		UserID:  currentUser(r).ID,
		Name:    req.Name,
		Tag:     req.Tag,
		DueDate: req.DueDate,
	}
	if err := s.batchRepo.Create(r.Context(), &batch); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.pubsub.Publish(pubsub.TopicBatchesUpdated, batch.UserID, batch.ID)
	respondData(w, batch)
}

func (s *Server) handleArchiveBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Archived bool `json:"archived"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	batch := s.ownedBatch(w, r, chi.URLParam(r, "batchID"))
	if batch == nil {
		return
	}
	if err := s.batchRepo.SetArchived(r.Context(), batch.ID, req.Archived); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.pubsub.Publish(pubsub.TopicBatchesUpdated, batch.UserID, batch.ID)
	respondOK(w)
}

func (s *Server) handleDeleteBatch(w http.ResponseWriter, r *http.Request) {
	batch := s.ownedBatch(w, r, chi.URLParam(r, "batchID"))
	if batch == nil {
		return
	}
	if err := s.batchRepo.Delete(r.Context(), batch.ID); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.pubsub.Publish(pubsub.TopicBatchesUpdated, batch.UserID, batch.ID)
	respondOK(w)
}

type jobItemRequest struct {
	Name     string `json:"name"`
	LinkURL  string `json:"linkUrl"`
	Quantity int    `json:"quantity"`
}

func buildJobItems(reqs []jobItemRequest) []models.PrintJobItem {
	items := make([]models.PrintJobItem, 0, len(reqs))
	for _, it := range reqs {
		if it.Name == "" {
			continue
		}
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		items = append(items, models.PrintJobItem{
			Name:     it.Name,
			LinkURL:  it.LinkURL,
			Quantity: qty,
		})
	}
	return items
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  *string          `json:"name"`
		Items []jobItemRequest `json:"items"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	batch := s.ownedBatch(w, r, chi.URLParam(r, "batchID"))
	if batch == nil {
		return
	}

	job := models.PrintJob{
		BatchID: batch.ID,
		Name:    req.Name,
		Status:  models.JobStatusPlanned,
	}
	if err := s.batchRepo.CreateJobWithItems(r.Context(), &job, buildJobItems(req.Items)); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.pubsub.Publish(pubsub.TopicBatchesUpdated, batch.UserID, job.ID)
	respondData(w, job)
}

func (s *Server) handleReplaceJobItems(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []jobItemRequest `json:"items"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	job := s.ownedJob(w, r, chi.URLParam(r, "jobID"))
	if job == nil {
		return
	}
	if err := s.batchRepo.ReplaceJobItems(r.Context(), job.ID, buildJobItems(req.Items)); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.pubsub.Publish(pubsub.TopicBatchesUpdated, currentUser(r).ID, job.ID)
	respondOK(w)
}

func (s *Server) handleStartJob(w http.ResponseWriter, r *http.Request) {
	job := s.ownedJob(w, r, chi.URLParam(r, "jobID"))
	if job == nil {
		return
	}
	if err := s.progress.StartJob(r.Context(), currentUser(r).ID, job.ID); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondOK(w)
}

func (s *Server) handleRevertJob(w http.ResponseWriter, r *http.Request) {
	job := s.ownedJob(w, r, chi.URLParam(r, "jobID"))
	if job == nil {
		return
	}
	err := s.progress.RevertStatus(r.Context(), currentUser(r).ID, job.ID, job.Status)
	if err != nil {
		if errors.Is(err, progress.ErrNoRevert) {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondOK(w)
}

// reviewResponse flattens a completion review for the client.
type reviewResponse struct {
	Job    models.PrintJob `json:"job"`
	Failed map[string]int  `json:"failed"`
}

func (s *Server) handleOpenReview(w http.ResponseWriter, r *http.Request) {
	job := s.ownedJob(w, r, chi.URLParam(r, "jobID"))
	if job == nil {
		return
	}
	review, err := s.progress.OpenReview(r.Context(), currentUser(r).ID, job.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondData(w, reviewResponse{Job: review.Job, Failed: review.Failed})
}

func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	review := s.progress.Review(currentUser(r).ID)
	if review == nil {
		respondData(w, nil)
		return
	}
	respondData(w, reviewResponse{Job: review.Job, Failed: review.Failed})
}

func (s *Server) handleSetFailedQuantity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.Quantity < 0 {
		respondErrorMessage(w, http.StatusBadRequest, "quantity cannot be negative")
		return
	}

	err := s.progress.SetFailedQuantity(currentUser(r).ID, chi.URLParam(r, "itemID"), req.Quantity)
	if err != nil {
		respondError(w, http.StatusConflict, err)
		return
	}
	respondOK(w)
}

func (s *Server) handleConfirmCompletion(w http.ResponseWriter, r *http.Request) {
	err := s.progress.ConfirmCompletion(r.Context(), currentUser(r).ID)
	if err != nil {
		if errors.Is(err, progress.ErrNoReview) {
			respondError(w, http.StatusConflict, err)
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondOK(w)
}

func (s *Server) handleCancelReview(w http.ResponseWriter, r *http.Request) {
	s.progress.CancelReview(currentUser(r).ID)
	respondOK(w)
}

func (s *Server) handleAcknowledgeReprint(w http.ResponseWriter, r *http.Request) {
	err := s.progress.AcknowledgeReprint(r.Context(), currentUser(r).ID, chi.URLParam(r, "reprintID"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondErrorMessage(w, http.StatusNotFound, "reprint not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondOK(w)
}
