package models

import (
	"time"
)

// JobStatus represents the status of an import job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// JobFormat is the encoding of an uploaded import file
type JobFormat string

const (
	FormatNDJSON JobFormat = "ndjson"
	FormatCSV    JobFormat = "csv"
)

// ImportJob tracks a bulk import of entity records into the backend
type ImportJob struct {
	ID             string     `json:"job_id" db:"id"`
	Entity         EntityKind `json:"entity" db:"entity"`
	Format         JobFormat  `json:"format" db:"format"`
	Status         JobStatus  `json:"status" db:"status"`
	IdempotencyKey string     `json:"idempotency_key,omitempty" db:"idempotency_key"`
	TotalRecords   int        `json:"total_records" db:"total_records"`
	CreatedCount   int        `json:"created" db:"created_count"`
	RejectedCount  int        `json:"rejected" db:"rejected_count"`
	FailedCount    int        `json:"failed" db:"failed_count"`
	DurationMs     int64      `json:"duration_ms,omitempty" db:"duration_ms"`
	FilePath       string     `json:"-" db:"file_path"`
	LastError      string     `json:"last_error,omitempty" db:"last_error"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	StartedAt      *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// Processed returns how many records reached a final outcome
func (j *ImportJob) Processed() int {
	return j.CreatedCount + j.RejectedCount + j.FailedCount
}

// RecordError describes why one line of an import file was not created
type RecordError struct {
	Line    int    `json:"line"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// ImportJobResponse is the API response for job status
type ImportJobResponse struct {
	ImportJob
	Errors      []RecordError `json:"errors,omitempty"`
	ErrorCount  int           `json:"error_count,omitempty"`
	ErrorReport string        `json:"error_report_url,omitempty"`
}

// ImportRequest represents an import job request
type ImportRequest struct {
	Entity         EntityKind
	Format         JobFormat
	IdempotencyKey string
}
