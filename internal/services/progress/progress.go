// Package progress derives batch completion state from print-job statuses
// and orchestrates the job-completion / misprint / reprint workflow.
package progress

import (
	"math"

	"minipaint/internal/database/models"
)

// ComputeProgress returns the integer percentage of jobs that reached the
// printed status. An empty job list yields 0.
func ComputeProgress(jobs []models.PrintJob) int {
	if len(jobs) == 0 {
		return 0
	}
	printed := 0
	for _, j := range jobs {
		if j.Status == models.JobStatusPrinted {
			printed++
		}
	}
	return int(math.Round(float64(printed) / float64(len(jobs)) * 100))
}

// AssignDisplayNumbers numbers jobs 1-based by current list order. The
// numbering is fetch-time only and never persisted; storage order is
// assumed chronological and stable.
func AssignDisplayNumbers(jobs []models.PrintJob) {
	for i := range jobs {
		jobs[i].DisplayNumber = i + 1
	}
}

// Annotate recomputes all derived batch state after a fetch: per-batch
// progress and per-job display numbers.
func Annotate(batches []models.Batch) {
	for i := range batches {
		batches[i].Progress = ComputeProgress(batches[i].PrintJobs)
		AssignDisplayNumbers(batches[i].PrintJobs)
	}
}

// RevertTarget returns the status a job moves to when its current status is
// undone, and whether a revert applies at all. planned has no revert target.
func RevertTarget(current string) (string, bool) {
	switch current {
	case models.JobStatusPrinted:
		return models.JobStatusPrinting, true
	case models.JobStatusPrinting:
		return models.JobStatusPlanned, true
	default:
		return "", false
	}
}
