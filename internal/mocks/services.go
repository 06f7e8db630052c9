package mocks

import (
	"context"
	"net/http"
	"sync"

	"github.com/lewismosage/acna-gateway/internal/backend"
	"github.com/lewismosage/acna-gateway/internal/models"
	"github.com/lewismosage/acna-gateway/internal/service"
)

// MockImportService is a mock implementation of ImportService
type MockImportService struct {
	mu            sync.Mutex
	CreateJobFunc func(ctx context.Context, req *models.ImportRequest, filePath string) (*models.ImportJob, error)
	ProcessFunc   func(ctx context.Context, job *models.ImportJob) error
	ProcessedJobs []*models.ImportJob
	CreatedJobs   []*models.ImportJob
	FilePaths     []string
	Tokens        []string
}

// Verify interface compliance
var _ service.ImportService = (*MockImportService)(nil)

func NewMockImportService() *MockImportService {
	return &MockImportService{
		ProcessedJobs: make([]*models.ImportJob, 0),
		CreatedJobs:   make([]*models.ImportJob, 0),
	}
}

func (m *MockImportService) CreateImportJob(ctx context.Context, req *models.ImportRequest, filePath string) (*models.ImportJob, error) {
	if m.CreateJobFunc != nil {
		return m.CreateJobFunc(ctx, req, filePath)
	}
	job := &models.ImportJob{
		ID:             "test-job-id",
		Entity:         req.Entity,
		Format:         req.Format,
		IdempotencyKey: req.IdempotencyKey,
		Status:         models.JobStatusPending,
		FilePath:       filePath,
	}
	m.mu.Lock()
	m.CreatedJobs = append(m.CreatedJobs, job)
	m.FilePaths = append(m.FilePaths, filePath)
	m.Tokens = append(m.Tokens, backend.TokenFromContext(ctx))
	m.mu.Unlock()
	return job, nil
}

func (m *MockImportService) ProcessImport(ctx context.Context, job *models.ImportJob) error {
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, job)
	}
	m.mu.Lock()
	m.ProcessedJobs = append(m.ProcessedJobs, job)
	m.mu.Unlock()
	job.Status = models.JobStatusCompleted
	return nil
}

// Processed returns the jobs processed so far
func (m *MockImportService) Processed() []*models.ImportJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.ImportJob(nil), m.ProcessedJobs...)
}

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	StreamFunc func(ctx context.Context, w http.ResponseWriter, req service.ExportRequest) error
	Requests   []service.ExportRequest
}

// Verify interface compliance
var _ service.ExportService = (*MockExportService)(nil)

func NewMockExportService() *MockExportService {
	return &MockExportService{}
}

func (m *MockExportService) Stream(ctx context.Context, w http.ResponseWriter, req service.ExportRequest) error {
	m.Requests = append(m.Requests, req)
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, w, req)
	}
	return nil
}

// MockJobService is a mock implementation of JobService
type MockJobService struct {
	Jobs          map[string]*models.ImportJobResponse
	Errors        map[string][]models.RecordError
	ImportService service.ImportService
}

// Verify interface compliance
var _ service.JobService = (*MockJobService)(nil)

func NewMockJobService() *MockJobService {
	return &MockJobService{
		Jobs:   make(map[string]*models.ImportJobResponse),
		Errors: make(map[string][]models.RecordError),
	}
}

func (m *MockJobService) StartProcessor(ctx context.Context) {}

func (m *MockJobService) StopProcessor() {}

func (m *MockJobService) GetJob(ctx context.Context, id string) (*models.ImportJobResponse, error) {
	return m.Jobs[id], nil
}

func (m *MockJobService) GetJobByIdempotencyKey(ctx context.Context, key string) (*models.ImportJob, error) {
	for _, job := range m.Jobs {
		if job.IdempotencyKey == key {
			return &job.ImportJob, nil
		}
	}
	return nil, nil
}

func (m *MockJobService) GetJobErrors(ctx context.Context, id string) ([]models.RecordError, error) {
	return m.Errors[id], nil
}

func (m *MockJobService) ListJobs(ctx context.Context, limit int) ([]*models.ImportJob, error) {
	jobs := make([]*models.ImportJob, 0, len(m.Jobs))
	for _, job := range m.Jobs {
		j := job.ImportJob
		jobs = append(jobs, &j)
	}
	return jobs, nil
}

func (m *MockJobService) SetImportService(importService service.ImportService) {
	m.ImportService = importService
}
