package progress

import (
	"minipaint/internal/database/models"
)

// CompletionReview holds the per-item failed quantities captured while a
// job is being marked complete. It is exclusively owned by the editing
// session that opened it.
type CompletionReview struct {
	Job    models.PrintJob
	Failed map[string]int // item id -> quantity that failed
}

// OpenReview initializes a review for the given job with every item's
// failed quantity defaulted to 0.
func OpenReview(job models.PrintJob) *CompletionReview {
	failed := make(map[string]int, len(job.Items))
	for _, item := range job.Items {
		failed[item.ID] = 0
	}
	return &CompletionReview{Job: job, Failed: failed}
}

// SetFailedQuantity overwrites the failed quantity for an item. No upper
// bound against the ordered quantity is enforced here; the UI applies a
// soft max hint only.
func (r *CompletionReview) SetFailedQuantity(itemID string, qty int) {
	r.Failed[itemID] = qty
}

// Reprints builds the reprint records for every item with a failed
// quantity above zero. Reprints carry only a name/quantity snapshot;
// they are independent work orders, not tied to item identity.
func (r *CompletionReview) Reprints() []models.BatchReprint {
	var reprints []models.BatchReprint
	for _, item := range r.Job.Items {
		if qty := r.Failed[item.ID]; qty > 0 {
			reprints = append(reprints, models.BatchReprint{
				BatchID:  r.Job.BatchID,
				Name:     item.Name,
				Quantity: qty,
			})
		}
	}
	return reprints
}
