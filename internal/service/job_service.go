package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lewismosage/acna-gateway/internal/models"
	"github.com/lewismosage/acna-gateway/internal/repository"
)

// jobPollInterval is how often the processor looks for pending jobs
const jobPollInterval = 2 * time.Second

// jobService is the concrete implementation of JobService
type jobService struct {
	jobRepo       repository.JobRepository
	importService ImportService
	log           zerolog.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	running       bool
	mu            sync.Mutex
	// sem bounds how many import jobs run at once
	sem chan struct{}
}

// newJobService creates a new JobService. Imports spend their time waiting
// on the backend, so the pool is sized above the CPU count.
func newJobService(jobRepo repository.JobRepository, log zerolog.Logger) *jobService {
	maxWorkers := runtime.NumCPU() * 2
	if maxWorkers < 2 {
		maxWorkers = 2
	}
	if maxWorkers > 16 {
		maxWorkers = 16
	}

	log.Info().Int("max_workers", maxWorkers).Msg("Initializing import job worker pool")

	return &jobService{
		jobRepo: jobRepo,
		log:     log.With().Str("service", "job").Logger(),
		sem:     make(chan struct{}, maxWorkers),
	}
}

// SetImportService sets the import service for job processing
func (s *jobService) SetImportService(importService ImportService) {
	s.importService = importService
}

// StartProcessor runs the background job processor until ctx is done or
// StopProcessor is called
func (s *jobService) StartProcessor(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.log.Info().Msg("Job processor started")

	ticker := time.NewTicker(jobPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.log.Info().Msg("Job processor stopping")
			return
		case <-ticker.C:
			s.processPendingJobs()
		}
	}
}

// StopProcessor stops the processor and waits for running jobs
func (s *jobService) StopProcessor() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.wg.Wait()
	s.running = false
	s.log.Info().Msg("Job processor stopped")
}

// processPendingJobs hands every pending job to a worker
func (s *jobService) processPendingJobs() {
	jobs, err := s.jobRepo.GetPendingJobs(s.ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to get pending jobs")
		return
	}

	for _, job := range jobs {
		// blocks while every worker is busy
		select {
		case s.sem <- struct{}{}:
		case <-s.ctx.Done():
			return
		}

		marked, err := s.jobRepo.MarkJobAsProcessing(s.ctx, job.ID)
		if err != nil || !marked {
			<-s.sem
			continue
		}

		s.wg.Add(1)
		go func(j *models.ImportJob) {
			defer s.wg.Done()
			defer func() { <-s.sem }()

			defer func() {
				if r := recover(); r != nil {
					s.log.Error().
						Interface("panic", r).
						Str("job_id", j.ID).
						Msg("Job processing panicked - recovered")
					j.Status = models.JobStatusFailed
					j.LastError = "internal error"
					if err := s.jobRepo.Update(context.WithoutCancel(s.ctx), j); err != nil {
						s.log.Error().Err(err).Str("job_id", j.ID).Msg("Failed to mark job as failed")
					}
				}
			}()
			s.processJob(j)
		}(job)
	}
}

// processJob runs one import job
func (s *jobService) processJob(job *models.ImportJob) {
	select {
	case <-s.ctx.Done():
		s.log.Warn().Str("job_id", job.ID).Msg("Job processing cancelled due to shutdown")
		return
	default:
	}

	s.log.Info().Str("job_id", job.ID).Str("entity", string(job.Entity)).Msg("Processing job")

	if s.importService == nil {
		s.log.Warn().Str("job_id", job.ID).Msg("No import service configured")
		return
	}
	if err := s.importService.ProcessImport(s.ctx, job); err != nil {
		s.log.Error().Err(err).Str("job_id", job.ID).Msg("Import processing failed")
	}
}

// GetJob retrieves a job with its first errors. A missing job yields nil.
func (s *jobService) GetJob(ctx context.Context, id string) (*models.ImportJobResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, nil
	}

	errs, err := s.jobRepo.GetErrors(ctx, id, 100)
	if err != nil {
		s.log.Error().Err(err).Str("job_id", id).Msg("Failed to get job errors")
	}

	response := &models.ImportJobResponse{
		ImportJob:  *job,
		Errors:     errs,
		ErrorCount: job.RejectedCount + job.FailedCount,
	}
	if response.ErrorCount > 0 {
		response.ErrorReport = "/v1/imports/" + job.ID + "/errors"
	}
	return response, nil
}

// GetJobByIdempotencyKey retrieves a job by idempotency key
func (s *jobService) GetJobByIdempotencyKey(ctx context.Context, key string) (*models.ImportJob, error) {
	return s.jobRepo.GetByIdempotencyKey(ctx, key)
}

// GetJobErrors retrieves every record error of a job
func (s *jobService) GetJobErrors(ctx context.Context, id string) ([]models.RecordError, error) {
	return s.jobRepo.GetErrors(ctx, id, 0)
}

// ListJobs returns the most recent jobs
func (s *jobService) ListJobs(ctx context.Context, limit int) ([]*models.ImportJob, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.jobRepo.ListRecent(ctx, limit)
}
