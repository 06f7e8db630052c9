package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lewismosage/acna-gateway/internal/backend"
	"github.com/lewismosage/acna-gateway/internal/config"
	"github.com/lewismosage/acna-gateway/internal/models"
	"github.com/lewismosage/acna-gateway/internal/repository"
	"github.com/lewismosage/acna-gateway/internal/validation"
)

// SurfaceProvider resolves the catalog of an entity kind
type SurfaceProvider interface {
	Surface(kind models.EntityKind) (Surface, bool)
}

// ErrNoCredential is returned when an import is requested without a caller
// token. Imports write to the backend as the uploader, never as the service.
var ErrNoCredential = errors.New("import requires the caller's credentials")

// errCredentialLost fails jobs whose uploader token is no longer held, such
// as pending jobs picked up after a restart
var errCredentialLost = errors.New("caller credentials are no longer available; upload the file again")

// importService is the concrete implementation of ImportService
type importService struct {
	jobs     repository.JobRepository
	surfaces SurfaceProvider
	cfg      *config.Config
	log      zerolog.Logger

	// credentials holds the uploader token per pending job id. Tokens stay
	// in memory and are never stored with the job.
	credentials sync.Map
}

// newImportService creates a new ImportService
func newImportService(jobs repository.JobRepository, surfaces SurfaceProvider, cfg *config.Config, log zerolog.Logger) *importService {
	return &importService{
		jobs:     jobs,
		surfaces: surfaces,
		cfg:      cfg,
		log:      log.With().Str("service", "import").Logger(),
	}
}

// CreateImportJob creates a new pending import job
func (s *importService) CreateImportJob(ctx context.Context, req *models.ImportRequest, filePath string) (*models.ImportJob, error) {
	if _, ok := s.surfaces.Surface(req.Entity); !ok {
		return nil, fmt.Errorf("unknown entity: %s", req.Entity)
	}
	token := backend.TokenFromContext(ctx)
	if token == "" {
		return nil, ErrNoCredential
	}
	job := &models.ImportJob{
		ID:             uuid.New().String(),
		Entity:         req.Entity,
		Format:         req.Format,
		Status:         models.JobStatusPending,
		IdempotencyKey: req.IdempotencyKey,
		FilePath:       filePath,
		CreatedAt:      time.Now(),
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	s.credentials.Store(job.ID, token)

	s.log.Info().
		Str("job_id", job.ID).
		Str("entity", string(job.Entity)).
		Str("format", string(job.Format)).
		Str("file", filePath).
		Msg("Import job created")

	return job, nil
}

// ProcessImport reads the job file, validates every record and creates the
// valid ones on the backend
func (s *importService) ProcessImport(ctx context.Context, job *models.ImportJob) error {
	if token, ok := s.credentials.LoadAndDelete(job.ID); ok {
		ctx = backend.WithToken(ctx, token.(string))
	}

	startTime := time.Now()
	job.Status = models.JobStatusProcessing
	job.StartedAt = &startTime
	if err := s.jobs.Update(ctx, job); err != nil {
		s.log.Error().Err(err).Str("job_id", job.ID).Msg("Failed to mark job as processing")
	}

	s.log.Info().
		Str("job_id", job.ID).
		Str("entity", string(job.Entity)).
		Msg("Starting import processing")

	err := s.run(ctx, job)

	completedAt := time.Now()
	job.CompletedAt = &completedAt
	job.DurationMs = completedAt.Sub(startTime).Milliseconds()

	if err != nil {
		job.Status = models.JobStatusFailed
		job.LastError = err.Error()
		s.log.Error().Err(err).Str("job_id", job.ID).Msg("Import failed")
	} else {
		job.Status = models.JobStatusCompleted
		s.log.Info().
			Str("job_id", job.ID).
			Int("total", job.TotalRecords).
			Int("created", job.CreatedCount).
			Int("rejected", job.RejectedCount).
			Int("failed", job.FailedCount).
			Int64("duration_ms", job.DurationMs).
			Msg("Import completed")
	}

	// the job context may already be cancelled; the final state must still land
	if uerr := s.jobs.Update(context.WithoutCancel(ctx), job); uerr != nil {
		s.log.Error().Err(uerr).Str("job_id", job.ID).Msg("Failed to store job result")
	}
	return err
}

// importRun holds the mutable state of one import
type importRun struct {
	mu     sync.Mutex
	job    *models.ImportJob
	errors []models.RecordError
}

func (r *importRun) reject(line int, errs []validation.ValidationError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.job.RejectedCount++
	for _, e := range errs {
		r.errors = append(r.errors, models.RecordError{
			Line:    line,
			Field:   e.Field,
			Message: e.Message,
			Value:   valueString(e.Value),
		})
	}
}

func (r *importRun) fail(line int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.job.FailedCount++
	r.job.LastError = err.Error()
	rec := models.RecordError{Line: line, Field: "backend", Message: err.Error()}
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		rec.Message = apiErr.Message
		rec.Value = fmt.Sprintf("HTTP %d", apiErr.Status)
	}
	r.errors = append(r.errors, rec)
}

func (r *importRun) created() {
	r.mu.Lock()
	r.job.CreatedCount++
	r.mu.Unlock()
}

// drain returns the pending errors once at least threshold are buffered
func (r *importRun) drain(threshold int) []models.RecordError {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.errors) == 0 || len(r.errors) < threshold {
		return nil
	}
	out := r.errors
	r.errors = nil
	return out
}

func (s *importService) run(ctx context.Context, job *models.ImportJob) error {
	surface, ok := s.surfaces.Surface(job.Entity)
	if !ok {
		return fmt.Errorf("unknown entity: %s", job.Entity)
	}
	// Without the uploader token the client would fall back to the service
	// token, so nothing is sent.
	if backend.TokenFromContext(ctx) == "" {
		return errCredentialLost
	}

	file, err := os.Open(job.FilePath)
	if err != nil {
		return err
	}
	defer file.Close()

	state := &importRun{job: job}
	validator := validation.NewValidator()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.cfg.Import.Concurrency, 1))

	readErr := readRows(file, job.Format, func(rec row) error {
		if err := gctx.Err(); err != nil {
			return err
		}
		job.TotalRecords++

		if rec.Err != nil {
			state.reject(rec.Line, []validation.ValidationError{{Field: "record", Message: rec.Err.Error()}})
		} else if entity, errs := surface.Check(rec.Raw, validator); len(errs) > 0 {
			state.reject(rec.Line, errs)
		} else {
			validator.Remember(entity)
			line := rec.Line
			g.Go(func() error {
				if _, err := surface.Submit(gctx, entity); err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					state.fail(line, err)
					return nil
				}
				state.created()
				return nil
			})
		}

		s.flushErrors(ctx, job.ID, state.drain(errorFlushThreshold))
		return nil
	})
	waitErr := g.Wait()
	s.flushErrors(ctx, job.ID, state.drain(1))

	if readErr != nil {
		return readErr
	}
	return waitErr
}

// errorFlushThreshold caps how many record errors are buffered in memory
// before they are written to the database
const errorFlushThreshold = 1000

func (s *importService) flushErrors(ctx context.Context, jobID string, errs []models.RecordError) {
	if len(errs) == 0 {
		return
	}
	if err := s.jobs.AddErrors(context.WithoutCancel(ctx), jobID, errs); err != nil {
		s.log.Error().Err(err).Int("count", len(errs)).Msg("Failed to flush record errors")
	}
}

func valueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	}
	return fmt.Sprint(v)
}
