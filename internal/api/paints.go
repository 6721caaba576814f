package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"minipaint/internal/database/models"
	"minipaint/internal/database/repositories"
	"minipaint/internal/services/paintview"
	"minipaint/internal/services/pubsub"
)

func (s *Server) handleListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := s.paintRepo.FindBrands(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondData(w, brands)
}

func (s *Server) handleListBrandPaints(w http.ResponseWriter, r *http.Request) {
	paints, err := s.paintRepo.FindBrandPaints(r.Context(), chi.URLParam(r, "brandID"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	q := r.URL.Query()
	respondData(w, paintview.FilterLibrary(paints, q.Get("set"), q.Get("q")))
}

func (s *Server) handleListBrandSets(w http.ResponseWriter, r *http.Request) {
	sets, err := s.paintRepo.FindBrandSets(r.Context(), chi.URLParam(r, "brandID"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondData(w, sets)
}

func (s *Server) handleListOwned(w http.ResponseWriter, r *http.Request) {
	owned, err := s.paintRepo.FindOwnedByUser(r.Context(), currentUser(r).ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	q := r.URL.Query()
	respondData(w, paintview.FilterOwned(owned, q.Get("brand"), q.Get("set"), q.Get("q")))
}

func (s *Server) handleAddOwned(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaintID string `json:"paintId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.PaintID == "" {
		respondErrorMessage(w, http.StatusBadRequest, "paintId is required")
		return
	}

	userID := currentUser(r).ID
	if err := s.paintRepo.AddOwned(r.Context(), userID, req.PaintID); err != nil {
		if repositories.IsUniqueViolation(err) {
			respondNotice(w, "Paint is already in your inventory")
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.pubsub.Publish(pubsub.TopicPaintsUpdated, userID, req.PaintID)
	respondOK(w)
}

func (s *Server) handleRemoveOwned(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r).ID
	if err := s.paintRepo.RemoveOwned(r.Context(), userID, chi.URLParam(r, "ownedID")); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondErrorMessage(w, http.StatusNotFound, "inventory entry not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.pubsub.Publish(pubsub.TopicPaintsUpdated, userID, chi.URLParam(r, "ownedID"))
	respondOK(w)
}

func (s *Server) handleOwnedStats(w http.ResponseWriter, r *http.Request) {
	owned, err := s.paintRepo.FindOwnedByUser(r.Context(), currentUser(r).ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondData(w, paintview.OwnedStats(owned))
}

type customPaintRequest struct {
	Name        string `json:"name"`
	BrandName   string `json:"brandName"`
	SetName     string `json:"setName"`
	ProductCode string `json:"productCode"`
	ColorHex    string `json:"colorHex"`
}

func (s *Server) handleListCustom(w http.ResponseWriter, r *http.Request) {
	paints, err := s.paintRepo.FindCustomByUser(r.Context(), currentUser(r).ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondData(w, paints)
}

func (s *Server) handleCreateCustom(w http.ResponseWriter, r *http.Request) {
	var req customPaintRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.Name == "" {
		respondErrorMessage(w, http.StatusBadRequest, "paint name is required")
		return
	}

	userID := currentUser(r).ID
	paint := models.CustomPaint{
		UserID:      userID,
		Name:        req.Name,
		BrandName:   req.BrandName,
		SetName:     req.SetName,
		ProductCode: req.ProductCode,
		ColorHex:    req.ColorHex,
	}
	if err := s.paintRepo.CreateCustom(r.Context(), &paint); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.pubsub.Publish(pubsub.TopicPaintsUpdated, userID, paint.ID)
	respondData(w, paint)
}

func (s *Server) handleUpdateCustom(w http.ResponseWriter, r *http.Request) {
	var req customPaintRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	userID := currentUser(r).ID
	paint := models.CustomPaint{
		ID:          chi.URLParam(r, "paintID"),
		UserID:      userID,
		Name:        req.Name,
		BrandName:   req.BrandName,
		SetName:     req.SetName,
		ProductCode: req.ProductCode,
		ColorHex:    req.ColorHex,
	}
	if err := s.paintRepo.UpdateCustom(r.Context(), &paint); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondErrorMessage(w, http.StatusNotFound, "custom paint not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.pubsub.Publish(pubsub.TopicPaintsUpdated, userID, paint.ID)
	respondOK(w)
}

func (s *Server) handleDeleteCustom(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r).ID
	if err := s.paintRepo.DeleteCustom(r.Context(), userID, chi.URLParam(r, "paintID")); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondErrorMessage(w, http.StatusNotFound, "custom paint not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.pubsub.Publish(pubsub.TopicPaintsUpdated, userID, chi.URLParam(r, "paintID"))
	respondOK(w)
}

func (s *Server) handleListWishlist(w http.ResponseWriter, r *http.Request) {
	wishlist, err := s.paintRepo.FindWishlistByUser(r.Context(), currentUser(r).ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondData(w, wishlist)
}

func (s *Server) handleAddWishlist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaintID       *string `json:"paintId"`
		CustomPaintID *string `json:"customPaintId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.PaintID == nil && req.CustomPaintID == nil {
		respondErrorMessage(w, http.StatusBadRequest, "paintId or customPaintId is required")
		return
	}

	userID := currentUser(r).ID
	if err := s.paintRepo.AddWishlist(r.Context(), userID, req.PaintID, req.CustomPaintID); err != nil {
		if repositories.IsUniqueViolation(err) {
			respondNotice(w, "Paint is already on your wishlist")
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.pubsub.Publish(pubsub.TopicPaintsUpdated, userID, "wishlist")
	respondOK(w)
}

func (s *Server) handleRemoveWishlist(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r).ID
	if err := s.paintRepo.RemoveWishlist(r.Context(), userID, chi.URLParam(r, "wishlistID")); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondErrorMessage(w, http.StatusNotFound, "wishlist entry not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	s.pubsub.Publish(pubsub.TopicPaintsUpdated, userID, chi.URLParam(r, "wishlistID"))
	respondOK(w)
}
