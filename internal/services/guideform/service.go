package guideform

import (
	"context"
	"errors"
	"sync"

	"minipaint/internal/database/models"
	"minipaint/internal/database/repositories"
	"minipaint/internal/services/pubsub"
)

// ErrNotOpen is returned when an operation targets a form that isn't editing.
var ErrNotOpen = errors.New("no guide form open")

// ErrGuideNotFound is returned when an edit targets a missing guide.
var ErrGuideNotFound = errors.New("guide not found")

// Service manages one staged guide form per user and performs the save.
type Service struct {
	mu    sync.Mutex
	forms map[string]*Form // keyed by user id

	guideRepo *repositories.GuideRepository
	pubsub    *pubsub.PubSub
}

// NewService creates a new guide form service.
func NewService(guideRepo *repositories.GuideRepository, ps *pubsub.PubSub) *Service {
	return &Service{
		forms:     make(map[string]*Form),
		guideRepo: guideRepo,
		pubsub:    ps,
	}
}

// Form returns the user's form, creating a closed one if needed.
func (s *Service) Form(userID string) *Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	form, ok := s.forms[userID]
	if !ok {
		form = NewForm()
		s.forms[userID] = form
	}
	return form
}

// StartCreate opens an empty draft for the user.
func (s *Service) StartCreate(userID string) *Form {
	form := s.Form(userID)
	form.StartCreate()
	return form
}

// StartEdit loads the guide, normalizes it and deep-copies it into the
// user's draft. Guides owned by other users are treated as missing.
func (s *Service) StartEdit(ctx context.Context, userID, guideID string) (*Form, error) {
	guide, err := s.guideRepo.FindByID(ctx, guideID)
	if err != nil {
		return nil, err
	}
	if guide == nil || guide.UserID != userID {
		return nil, ErrGuideNotFound
	}
	NormalizeDetails(guide.Details)

	form := s.Form(userID)
	form.StartEdit(*guide)
	return form, nil
}

// Save validates the draft and flattens it into a write batch: an upsert
// of the guide scalars plus a full delete-then-reinsert of details and
// paints. On success the form closes and subscribers are told to re-fetch.
func (s *Service) Save(ctx context.Context, userID string) error {
	form := s.Form(userID)
	if form.Phase != PhaseEditing {
		return ErrNotOpen
	}
	if form.Draft.Name == "" {
		return ErrNameRequired
	}

	guide := form.Draft
	guide.Details = copyDetails(form.Draft.Details)
	guide.UserID = userID

	var err error
	if form.IsEditingExisting() {
		guide.ID = form.EditingGuideID
		err = s.guideRepo.UpdateWithDetails(ctx, &guide)
	} else {
		guide.ID = ""
		err = s.guideRepo.CreateWithDetails(ctx, &guide)
	}
	if err != nil {
		return err
	}

	form.reset()
	s.pubsub.Publish(pubsub.TopicGuidesUpdated, userID, guide.ID)
	return nil
}

// Delete removes a persisted guide and notifies subscribers. Guides
// owned by other users are treated as missing.
func (s *Service) Delete(ctx context.Context, userID, guideID string) error {
	guide, err := s.guideRepo.FindByID(ctx, guideID)
	if err != nil {
		return err
	}
	if guide == nil || guide.UserID != userID {
		return ErrGuideNotFound
	}
	if err := s.guideRepo.Delete(ctx, guideID); err != nil {
		return err
	}
	s.pubsub.Publish(pubsub.TopicGuidesUpdated, userID, guideID)
	return nil
}

// FetchGuides returns the user's guides normalized for the client.
func (s *Service) FetchGuides(ctx context.Context, userID string) ([]models.PaintingGuide, error) {
	guides, err := s.guideRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	NormalizeGuides(guides)
	return guides, nil
}
