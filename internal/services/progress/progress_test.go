package progress

import (
	"testing"

	"minipaint/internal/database/models"
)

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		want     int
	}{
		{"no jobs", nil, 0},
		{"none printed", []string{models.JobStatusPlanned, models.JobStatusPrinting}, 0},
		{"all printed", []string{models.JobStatusPrinted, models.JobStatusPrinted}, 100},
		{"one of three", []string{models.JobStatusPrinted, models.JobStatusPlanned, models.JobStatusPlanned}, 33},
		{"two of three", []string{models.JobStatusPrinted, models.JobStatusPrinted, models.JobStatusPlanned}, 67},
		{"half", []string{models.JobStatusPrinted, models.JobStatusPrinting}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := make([]models.PrintJob, len(tt.statuses))
			for i, s := range tt.statuses {
				jobs[i] = models.PrintJob{Status: s}
			}
			if got := ComputeProgress(jobs); got != tt.want {
				t.Errorf("ComputeProgress() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAssignDisplayNumbers(t *testing.T) {
	jobs := []models.PrintJob{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	AssignDisplayNumbers(jobs)
	for i, job := range jobs {
		if job.DisplayNumber != i+1 {
			t.Errorf("Job %d: got display number %d, want %d", i, job.DisplayNumber, i+1)
		}
	}

	// Re-running after a removal renumbers without gaps.
	jobs = append(jobs[:1], jobs[2:]...)
	AssignDisplayNumbers(jobs)
	if jobs[0].DisplayNumber != 1 || jobs[1].DisplayNumber != 2 {
		t.Errorf("Expected renumbering 1,2 after removal, got %d,%d",
			jobs[0].DisplayNumber, jobs[1].DisplayNumber)
	}
}

func TestAnnotate(t *testing.T) {
	batches := []models.Batch{
		{
			PrintJobs: []models.PrintJob{
				{Status: models.JobStatusPrinted},
				{Status: models.JobStatusPlanned},
			},
		},
		{},
	}
	Annotate(batches)

	if batches[0].Progress != 50 {
		t.Errorf("Expected progress 50, got %d", batches[0].Progress)
	}
	if batches[0].PrintJobs[0].DisplayNumber != 1 || batches[0].PrintJobs[1].DisplayNumber != 2 {
		t.Error("Expected display numbers assigned")
	}
	if batches[1].Progress != 0 {
		t.Errorf("Expected empty batch progress 0, got %d", batches[1].Progress)
	}
}

func TestRevertTarget(t *testing.T) {
	if target, ok := RevertTarget(models.JobStatusPrinted); !ok || target != models.JobStatusPrinting {
		t.Errorf("printed should revert to printing, got %q (%v)", target, ok)
	}
	if target, ok := RevertTarget(models.JobStatusPrinting); !ok || target != models.JobStatusPlanned {
		t.Errorf("printing should revert to planned, got %q (%v)", target, ok)
	}
	if _, ok := RevertTarget(models.JobStatusPlanned); ok {
		t.Error("planned should have no revert target")
	}
}

func TestCompletionReview(t *testing.T) {
	job := models.PrintJob{
		ID:      "job-1",
		BatchID: "batch-1",
		Items: []models.PrintJobItem{
			{ID: "item-1", Name: "Knight", Quantity: 5},
			{ID: "item-2", Name: "Archer", Quantity: 3},
		},
	}

	review := OpenReview(job)
	if len(review.Failed) != 2 {
		t.Fatalf("Expected failed map for every item, got %d entries", len(review.Failed))
	}
	for id, qty := range review.Failed {
		if qty != 0 {
			t.Errorf("Item %s: expected initial failed quantity 0, got %d", id, qty)
		}
	}

	if reprints := review.Reprints(); len(reprints) != 0 {
		t.Errorf("Expected no reprints with zero failures, got %d", len(reprints))
	}

	review.SetFailedQuantity("item-1", 2)
	reprints := review.Reprints()
	if len(reprints) != 1 {
		t.Fatalf("Expected 1 reprint, got %d", len(reprints))
	}
	if reprints[0].Name != "Knight" || reprints[0].Quantity != 2 {
		t.Errorf("Reprint snapshot mismatch: %+v", reprints[0])
	}
	if reprints[0].BatchID != "batch-1" {
		t.Errorf("Reprint batch mismatch: %s", reprints[0].BatchID)
	}
}
