package repository

import (
	"context"

	"github.com/lewismosage/acna-gateway/internal/database"
	"github.com/lewismosage/acna-gateway/internal/models"
)

// JobRepository persists import jobs and their per-line errors. Entities
// themselves live in the content backend; the gateway only keeps job
// bookkeeping.
type JobRepository interface {
	Create(ctx context.Context, job *models.ImportJob) error
	Update(ctx context.Context, job *models.ImportJob) error
	GetByID(ctx context.Context, id string) (*models.ImportJob, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.ImportJob, error)
	ListRecent(ctx context.Context, limit int) ([]*models.ImportJob, error)
	GetPendingJobs(ctx context.Context) ([]*models.ImportJob, error)
	MarkJobAsProcessing(ctx context.Context, jobID string) (bool, error)
	AddErrors(ctx context.Context, jobID string, errors []models.RecordError) error
	GetErrors(ctx context.Context, jobID string, limit int) ([]models.RecordError, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Job JobRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Job: NewJobRepo(db),
	}
}
