package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/lewismosage/acna-gateway/internal/database"
	"github.com/lewismosage/acna-gateway/internal/models"
)

const jobColumns = `id, entity, format, status, idempotency_key, total_records, created_count,
	rejected_count, failed_count, duration_ms, file_path, last_error, created_at, started_at, completed_at`

// jobRepo is the concrete implementation of JobRepository
type jobRepo struct {
	db *database.DB
}

// NewJobRepo creates a new job repository
func NewJobRepo(db *database.DB) JobRepository {
	return &jobRepo{db: db}
}

// Create inserts a new job
func (r *jobRepo) Create(ctx context.Context, job *models.ImportJob) error {
	query := `
		INSERT INTO import_jobs (id, entity, format, status, idempotency_key, total_records,
			created_count, rejected_count, failed_count, file_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.Entity, job.Format, job.Status, nullString(job.IdempotencyKey),
		job.TotalRecords, job.CreatedCount, job.RejectedCount, job.FailedCount,
		nullString(job.FilePath), job.CreatedAt,
	)
	return err
}

// Update updates job status and counters
func (r *jobRepo) Update(ctx context.Context, job *models.ImportJob) error {
	query := `
		UPDATE import_jobs SET
			status = $1, total_records = $2, created_count = $3, rejected_count = $4,
			failed_count = $5, duration_ms = $6, last_error = $7, started_at = $8, completed_at = $9
		WHERE id = $10
	`
	_, err := r.db.ExecContext(ctx, query,
		job.Status, job.TotalRecords, job.CreatedCount, job.RejectedCount,
		job.FailedCount, job.DurationMs, nullString(job.LastError),
		job.StartedAt, job.CompletedAt, job.ID,
	)
	return err
}

// GetByID retrieves a job by ID
func (r *jobRepo) GetByID(ctx context.Context, id string) (*models.ImportJob, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM import_jobs WHERE id = $1`, id)
	return scanJob(row)
}

// GetByIdempotencyKey retrieves a job by idempotency key
func (r *jobRepo) GetByIdempotencyKey(ctx context.Context, key string) (*models.ImportJob, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM import_jobs WHERE idempotency_key = $1`, key)
	return scanJob(row)
}

// ListRecent returns the most recently created jobs
func (r *jobRepo) ListRecent(ctx context.Context, limit int) ([]*models.ImportJob, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM import_jobs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.ImportJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// GetPendingJobs retrieves all pending jobs
func (r *jobRepo) GetPendingJobs(ctx context.Context) ([]*models.ImportJob, error) {
	query := `
		SELECT id, entity, format, file_path, created_at
		FROM import_jobs WHERE status = 'pending'
		ORDER BY created_at
		FOR UPDATE SKIP LOCKED
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.ImportJob
	for rows.Next() {
		var job models.ImportJob
		var filePath sql.NullString
		if err := rows.Scan(&job.ID, &job.Entity, &job.Format, &filePath, &job.CreatedAt); err != nil {
			continue
		}
		job.FilePath = filePath.String
		job.Status = models.JobStatusPending
		jobs = append(jobs, &job)
	}

	return jobs, rows.Err()
}

// MarkJobAsProcessing atomically marks a pending job as processing
func (r *jobRepo) MarkJobAsProcessing(ctx context.Context, jobID string) (bool, error) {
	query := `
		UPDATE import_jobs SET status = 'processing', started_at = $1
		WHERE id = $2 AND status = 'pending'
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), jobID)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// AddErrors stores record errors using the COPY protocol. A bad import file
// can reject most of its lines, so errors are written in one round trip.
func (r *jobRepo) AddErrors(ctx context.Context, jobID string, errs []models.RecordError) error {
	if len(errs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("import_job_errors",
		"job_id", "line_number", "field", "message", "value",
	))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range errs {
		if _, err := stmt.ExecContext(ctx, jobID, e.Line, e.Field, e.Message, e.Value); err != nil {
			return err
		}
	}

	// Flush the COPY buffer
	if _, err := stmt.ExecContext(ctx); err != nil {
		return err
	}

	return tx.Commit()
}

// GetErrors retrieves record errors for a job, ordered by line
func (r *jobRepo) GetErrors(ctx context.Context, jobID string, limit int) ([]models.RecordError, error) {
	query := `SELECT line_number, field, message, value FROM import_job_errors WHERE job_id = $1 ORDER BY line_number, id`
	args := []any{jobID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RecordError
	for rows.Next() {
		var e models.RecordError
		var value sql.NullString
		if err := rows.Scan(&e.Line, &e.Field, &e.Message, &value); err != nil {
			continue
		}
		e.Value = value.String
		out = append(out, e)
	}

	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

// scanJob reads one jobColumns row. A missing row yields (nil, nil).
func scanJob(row scanner) (*models.ImportJob, error) {
	var job models.ImportJob
	var idempotencyKey, filePath, lastError sql.NullString
	var durationMs sql.NullInt64
	var startedAt, completedAt sql.NullTime

	err := row.Scan(
		&job.ID, &job.Entity, &job.Format, &job.Status, &idempotencyKey,
		&job.TotalRecords, &job.CreatedCount, &job.RejectedCount, &job.FailedCount,
		&durationMs, &filePath, &lastError, &job.CreatedAt, &startedAt, &completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	job.IdempotencyKey = idempotencyKey.String
	job.FilePath = filePath.String
	job.LastError = lastError.String
	job.DurationMs = durationMs.Int64
	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}

	return &job, nil
}

// helper to convert empty string to NULL
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
