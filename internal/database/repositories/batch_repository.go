package repositories

import (
	"context"
	"time"

	"github.com/lucsky/cuid"
	"gorm.io/gorm"

	"minipaint/internal/database/models"
)

// BatchRepository handles batch, print job, item and reprint data access.
type BatchRepository struct {
	db *gorm.DB
}

// NewBatchRepository creates a new BatchRepository.
func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// FindByUserID returns all batches for a user with jobs, items and reprints
// join-fetched. Child ordering is chronological so display numbering stays
// stable across fetches.
func (r *BatchRepository) FindByUserID(ctx context.Context, userID string, includeArchived bool) ([]models.Batch, error) {
	var batches []models.Batch
	query := r.db.WithContext(ctx).
		Preload("PrintJobs", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("PrintJobs.Items").
		Preload("Reprints", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("user_id = ?", userID)
	if !includeArchived {
		query = query.Where("is_archived = ?", false)
	}
	result := query.Order("created_at DESC").Find(&batches)
	return batches, result.Error
}

// FindByID returns a batch by ID, or nil if not found.
func (r *BatchRepository) FindByID(ctx context.Context, id string) (*models.Batch, error) {
	var batch models.Batch
	result := r.db.WithContext(ctx).
		Preload("PrintJobs", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("PrintJobs.Items").
		Preload("Reprints").
		First(&batch, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &batch, nil
}

// Create creates a new batch.
func (r *BatchRepository) Create(ctx context.Context, batch *models.Batch) error {
	if batch.ID == "" {
		batch.ID = cuid.New()
	}
	return r.db.WithContext(ctx).Create(batch).Error
}

// SetArchived archives or unarchives a batch.
func (r *BatchRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Batch{}).
		Where("id = ?", id).
		Update("is_archived", archived).Error
}

// Delete removes a batch and all its jobs, items and reprints in one
// transaction (the schema has no cascade rule).
func (r *BatchRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.BatchReprint{}, "batch_id = ?", id).Error; err != nil {
			return err
		}
		var jobIDs []string
		if err := tx.Model(&models.PrintJob{}).
			Where("batch_id = ?", id).
			Pluck("id", &jobIDs).Error; err != nil {
			return err
		}
		if len(jobIDs) > 0 {
			if err := tx.Delete(&models.PrintJobItem{}, "print_job_id IN ?", jobIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.PrintJob{}, "batch_id = ?", id).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Batch{}, "id = ?", id).Error
	})
}

// FindJobByID returns a print job with its items, or nil if not found.
func (r *BatchRepository) FindJobByID(ctx context.Context, id string) (*models.PrintJob, error) {
	var job models.PrintJob
	result := r.db.WithContext(ctx).Preload("Items").First(&job, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &job, nil
}

// CreateJobWithItems creates a print job and its items in a transaction.
func (r *BatchRepository) CreateJobWithItems(ctx context.Context, job *models.PrintJob, items []models.PrintJobItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if job.ID == "" {
			job.ID = cuid.New()
		}
		if err := tx.Create(job).Error; err != nil {
			return err
		}
		return createJobItems(tx, job.ID, items)
	})
}

// ReplaceJobItems deletes a job's items and inserts the given staged list.
func (r *BatchRepository) ReplaceJobItems(ctx context.Context, jobID string, items []models.PrintJobItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.PrintJobItem{}, "print_job_id = ?", jobID).Error; err != nil {
			return err
		}
		return createJobItems(tx, jobID, items)
	})
}

func createJobItems(tx *gorm.DB, jobID string, items []models.PrintJobItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = cuid.New()
		}
		items[i].PrintJobID = jobID
	}
	return tx.Create(&items).Error
}

// StartJob transitions a job to printing and stamps the start time.
func (r *BatchRepository) StartJob(ctx context.Context, jobID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.PrintJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     models.JobStatusPrinting,
			"started_at": now,
		}).Error
}

// SetJobStatus updates a job's status and progress percent.
func (r *BatchRepository) SetJobStatus(ctx context.Context, jobID, status string, progressPercent int) error {
	return r.db.WithContext(ctx).
		Model(&models.PrintJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":           status,
			"progress_percent": progressPercent,
		}).Error
}

// CompleteJobWithReprints marks a job printed and inserts any reprint
// records in the same transaction, so a failure cannot leave a printed job
// without its reprints.
func (r *BatchRepository) CompleteJobWithReprints(ctx context.Context, jobID string, reprints []models.BatchReprint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.PrintJob{}).
			Where("id = ?", jobID).
			Updates(map[string]interface{}{
				"status":           models.JobStatusPrinted,
				"progress_percent": 100,
			}).Error
		if err != nil {
			return err
		}
		if len(reprints) == 0 {
			return nil
		}
		for i := range reprints {
			if reprints[i].ID == "" {
				reprints[i].ID = cuid.New()
			}
		}
		return tx.Create(&reprints).Error
	})
}

// DeleteReprint acknowledges a reprint by removing the record, scoped to
// the batch owner. No history is retained.
func (r *BatchRepository) DeleteReprint(ctx context.Context, userID, reprintID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND batch_id IN (?)",
			reprintID,
			r.db.Model(&models.Batch{}).Select("id").Where("user_id = ?", userID),
		).
		Delete(&models.BatchReprint{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
