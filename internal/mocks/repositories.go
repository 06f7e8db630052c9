package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/lewismosage/acna-gateway/internal/models"
	"github.com/lewismosage/acna-gateway/internal/repository"
)

// MockJobRepository is a mock implementation of JobRepository
type MockJobRepository struct {
	mu              sync.Mutex
	Jobs            map[string]*models.ImportJob
	IdempotencyJobs map[string]*models.ImportJob
	Errors          map[string][]models.RecordError
	CreateError     error
	UpdateError     error
	Updates         int
}

// Verify interface compliance
var _ repository.JobRepository = (*MockJobRepository)(nil)

func NewMockJobRepository() *MockJobRepository {
	return &MockJobRepository{
		Jobs:            make(map[string]*models.ImportJob),
		IdempotencyJobs: make(map[string]*models.ImportJob),
		Errors:          make(map[string][]models.RecordError),
	}
}

func (m *MockJobRepository) Create(ctx context.Context, job *models.ImportJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Jobs[job.ID] = job
	if job.IdempotencyKey != "" {
		m.IdempotencyJobs[job.IdempotencyKey] = job
	}
	return nil
}

func (m *MockJobRepository) Update(ctx context.Context, job *models.ImportJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.Updates++
	m.Jobs[job.ID] = job
	return nil
}

func (m *MockJobRepository) GetByID(ctx context.Context, id string) (*models.ImportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Jobs[id], nil
}

func (m *MockJobRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.ImportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.IdempotencyJobs[key], nil
}

func (m *MockJobRepository) ListRecent(ctx context.Context, limit int) ([]*models.ImportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	jobs := make([]*models.ImportJob, 0, len(m.Jobs))
	for _, job := range m.Jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func (m *MockJobRepository) GetPendingJobs(ctx context.Context) ([]*models.ImportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []*models.ImportJob
	for _, job := range m.Jobs {
		if job.Status == models.JobStatusPending {
			pending = append(pending, job)
		}
	}
	return pending, nil
}

func (m *MockJobRepository) MarkJobAsProcessing(ctx context.Context, jobID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, exists := m.Jobs[jobID]
	if !exists || job.Status != models.JobStatusPending {
		return false, nil
	}
	job.Status = models.JobStatusProcessing
	return true, nil
}

func (m *MockJobRepository) AddErrors(ctx context.Context, jobID string, errors []models.RecordError) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[jobID] = append(m.Errors[jobID], errors...)
	return nil
}

func (m *MockJobRepository) GetErrors(ctx context.Context, jobID string, limit int) ([]models.RecordError, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	errors := m.Errors[jobID]
	if limit > 0 && len(errors) > limit {
		return errors[:limit], nil
	}
	return errors, nil
}

// JobErrors returns a copy of the errors recorded for a job
func (m *MockJobRepository) JobErrors(jobID string) []models.RecordError {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.RecordError(nil), m.Errors[jobID]...)
}
