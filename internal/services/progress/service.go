package progress

import (
	"context"
	"errors"
	"sync"

	"minipaint/internal/database/repositories"
	"minipaint/internal/services/pubsub"
)

// Service orchestrates job status transitions and completion reviews.
// Reviews are held per user; one user has at most one review open at a time.
type Service struct {
	mu      sync.Mutex
	reviews map[string]*CompletionReview // keyed by user id

	batchRepo *repositories.BatchRepository
	pubsub    *pubsub.PubSub
}

// ErrNoReview is returned when a completion is confirmed without an open review.
var ErrNoReview = errors.New("no completion review open")

// ErrNoRevert is returned when a planned job is asked to revert.
var ErrNoRevert = errors.New("job status has no revert target")

// NewService creates a new progress service.
func NewService(batchRepo *repositories.BatchRepository, ps *pubsub.PubSub) *Service {
	return &Service{
		reviews:   make(map[string]*CompletionReview),
		batchRepo: batchRepo,
		pubsub:    ps,
	}
}

// StartJob transitions a job from planned to printing.
func (s *Service) StartJob(ctx context.Context, userID, jobID string) error {
	if err := s.batchRepo.StartJob(ctx, jobID); err != nil {
		return err
	}
	s.pubsub.Publish(pubsub.TopicBatchesUpdated, userID, jobID)
	return nil
}

// RevertStatus moves a job one step back (printed→printing, printing→planned)
// and resets its progress percent. A planned job is left untouched.
func (s *Service) RevertStatus(ctx context.Context, userID, jobID, currentStatus string) error {
	target, ok := RevertTarget(currentStatus)
	if !ok {
		return ErrNoRevert
	}
	if err := s.batchRepo.SetJobStatus(ctx, jobID, target, 0); err != nil {
		return err
	}
	s.pubsub.Publish(pubsub.TopicBatchesUpdated, userID, jobID)
	return nil
}

// OpenReview loads the job and opens a completion review for the user,
// replacing any prior review.
func (s *Service) OpenReview(ctx context.Context, userID, jobID string) (*CompletionReview, error) {
	job, err := s.batchRepo.FindJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, errors.New("print job not found")
	}

	review := OpenReview(*job)
	s.mu.Lock()
	s.reviews[userID] = review
	s.mu.Unlock()
	return review, nil
}

// SetFailedQuantity records the failed quantity for one item in the user's
// open review.
func (s *Service) SetFailedQuantity(userID, itemID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	review, ok := s.reviews[userID]
	if !ok {
		return ErrNoReview
	}
	review.SetFailedQuantity(itemID, qty)
	return nil
}

// ConfirmCompletion marks the reviewed job printed and creates reprint
// records for every item with failures, in one transaction. The review is
// discarded only after the write succeeds.
func (s *Service) ConfirmCompletion(ctx context.Context, userID string) error {
	s.mu.Lock()
	review, ok := s.reviews[userID]
	s.mu.Unlock()
	if !ok {
		return ErrNoReview
	}

	if err := s.batchRepo.CompleteJobWithReprints(ctx, review.Job.ID, review.Reprints()); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.reviews, userID)
	s.mu.Unlock()

	s.pubsub.Publish(pubsub.TopicBatchesUpdated, userID, review.Job.ID)
	return nil
}

// CancelReview discards the user's open review, if any.
func (s *Service) CancelReview(userID string) {
	s.mu.Lock()
	delete(s.reviews, userID)
	s.mu.Unlock()
}

// Review returns the user's open review, or nil.
func (s *Service) Review(userID string) *CompletionReview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviews[userID]
}

// AcknowledgeReprint deletes a reprint record once its rework is done.
// The delete is scoped to the batch owner, so foreign reprint IDs come
// back as not found.
func (s *Service) AcknowledgeReprint(ctx context.Context, userID, reprintID string) error {
	if err := s.batchRepo.DeleteReprint(ctx, userID, reprintID); err != nil {
		return err
	}
	s.pubsub.Publish(pubsub.TopicBatchesUpdated, userID, reprintID)
	return nil
}
