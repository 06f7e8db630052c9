package service

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/lewismosage/acna-gateway/internal/config"
	"github.com/lewismosage/acna-gateway/internal/models"
	"github.com/lewismosage/acna-gateway/internal/repository"
)

// ContentCatalog exposes the catalog of every entity kind
type ContentCatalog interface {
	SurfaceProvider
	Wait()
}

// ImportService defines the interface for import operations
type ImportService interface {
	CreateImportJob(ctx context.Context, req *models.ImportRequest, filePath string) (*models.ImportJob, error)
	ProcessImport(ctx context.Context, job *models.ImportJob) error
}

// ExportService defines the interface for export operations
type ExportService interface {
	Stream(ctx context.Context, w http.ResponseWriter, req ExportRequest) error
}

// JobService defines the interface for job management
type JobService interface {
	StartProcessor(ctx context.Context)
	StopProcessor()
	GetJob(ctx context.Context, id string) (*models.ImportJobResponse, error)
	GetJobByIdempotencyKey(ctx context.Context, key string) (*models.ImportJob, error)
	GetJobErrors(ctx context.Context, id string) ([]models.RecordError, error)
	ListJobs(ctx context.Context, limit int) ([]*models.ImportJob, error)
	SetImportService(importService ImportService)
}

// Services holds all service interfaces
type Services struct {
	Content ContentCatalog
	Import  ImportService
	Export  ExportService
	Job     JobService
}

var _ ContentCatalog = (*ContentService)(nil)

// NewServices creates all services
func NewServices(repos *repository.Repositories, content ContentCatalog, cfg *config.Config, log zerolog.Logger) *Services {
	jobSvc := newJobService(repos.Job, log)
	importSvc := newImportService(repos.Job, content, cfg, log)
	exportSvc := newExportService(content, log)

	jobSvc.SetImportService(importSvc)

	return &Services{
		Content: content,
		Import:  importSvc,
		Export:  exportSvc,
		Job:     jobSvc,
	}
}
