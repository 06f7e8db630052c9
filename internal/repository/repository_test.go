package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lewismosage/acna-gateway/internal/mocks"
	"github.com/lewismosage/acna-gateway/internal/models"
)

func TestMockJobRepository_PendingJobs(t *testing.T) {
	repo := mocks.NewMockJobRepository()
	ctx := context.Background()

	// Create jobs with different statuses
	jobs := []*models.ImportJob{
		{ID: "job-1", Status: models.JobStatusPending, Entity: models.KindResource},
		{ID: "job-2", Status: models.JobStatusProcessing, Entity: models.KindPaper},
		{ID: "job-3", Status: models.JobStatusPending, Entity: models.KindCaseStudy},
		{ID: "job-4", Status: models.JobStatusCompleted, Entity: models.KindProject},
	}

	for _, job := range jobs {
		if err := repo.Create(ctx, job); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	// Get pending jobs
	pending, err := repo.GetPendingJobs(ctx)
	if err != nil {
		t.Fatalf("GetPendingJobs failed: %v", err)
	}

	if len(pending) != 2 {
		t.Errorf("Expected 2 pending jobs, got %d", len(pending))
	}
}

func TestMockJobRepository_MarkAsProcessing(t *testing.T) {
	repo := mocks.NewMockJobRepository()
	ctx := context.Background()

	job := &models.ImportJob{ID: "job-1", Status: models.JobStatusPending, Entity: models.KindResource}
	repo.Create(ctx, job)

	// Mark as processing
	marked, err := repo.MarkJobAsProcessing(ctx, "job-1")
	if err != nil {
		t.Fatalf("MarkJobAsProcessing failed: %v", err)
	}
	if !marked {
		t.Error("Job should be marked as processing")
	}

	// Try to mark again (should fail - already processing)
	marked, _ = repo.MarkJobAsProcessing(ctx, "job-1")
	if marked {
		t.Error("Job should not be marked again")
	}

	// Unknown jobs are never claimed
	marked, _ = repo.MarkJobAsProcessing(ctx, "missing")
	if marked {
		t.Error("Unknown job should not be marked")
	}
}

func TestMockJobRepository_RecordErrors(t *testing.T) {
	repo := mocks.NewMockJobRepository()
	ctx := context.Background()

	job := &models.ImportJob{ID: "job-1", Status: models.JobStatusProcessing, Entity: models.KindResource}
	repo.Create(ctx, job)

	// Errors arrive in flushes
	repo.AddErrors(ctx, "job-1", []models.RecordError{
		{Line: 2, Field: "record", Message: "invalid JSON"},
		{Line: 3, Field: "title", Message: "title is required"},
	})
	repo.AddErrors(ctx, "job-1", []models.RecordError{
		{Line: 8, Field: "type", Message: "unknown resource type", Value: "Podcast"},
	})

	retrieved, err := repo.GetErrors(ctx, "job-1", 0)
	if err != nil {
		t.Fatalf("GetErrors failed: %v", err)
	}
	if len(retrieved) != 3 {
		t.Fatalf("Expected 3 errors, got %d", len(retrieved))
	}
	if retrieved[2].Line != 8 || retrieved[2].Value != "Podcast" {
		t.Errorf("Expected line order to be kept, got %+v", retrieved[2])
	}

	// Test limit
	retrieved, _ = repo.GetErrors(ctx, "job-1", 2)
	if len(retrieved) != 2 {
		t.Errorf("Expected 2 errors with limit, got %d", len(retrieved))
	}
}

func TestMockJobRepository_IdempotencyKey(t *testing.T) {
	repo := mocks.NewMockJobRepository()
	ctx := context.Background()

	job := &models.ImportJob{
		ID:             "job-1",
		Status:         models.JobStatusPending,
		Entity:         models.KindPaper,
		IdempotencyKey: "unique-key-123",
	}
	repo.Create(ctx, job)

	// Retrieve by idempotency key
	retrieved, err := repo.GetByIdempotencyKey(ctx, "unique-key-123")
	if err != nil {
		t.Fatalf("GetByIdempotencyKey failed: %v", err)
	}
	if retrieved == nil {
		t.Fatal("Job should be found by idempotency key")
	}
	if retrieved.ID != "job-1" {
		t.Errorf("Expected job-1, got %s", retrieved.ID)
	}

	// Non-existent key
	retrieved, _ = repo.GetByIdempotencyKey(ctx, "non-existent")
	if retrieved != nil {
		t.Error("Should not find job with non-existent key")
	}
}

func TestMockJobRepository_ListRecent(t *testing.T) {
	repo := mocks.NewMockJobRepository()
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		repo.Create(ctx, &models.ImportJob{
			ID:        fmt.Sprintf("job-%d", i),
			Status:    models.JobStatusCompleted,
			Entity:    models.KindResource,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	recent, err := repo.ListRecent(ctx, 3)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Expected 3 jobs, got %d", len(recent))
	}
	for i, want := range []string{"job-4", "job-3", "job-2"} {
		if recent[i].ID != want {
			t.Errorf("recent[%d] = %s, want %s", i, recent[i].ID, want)
		}
	}
}
