package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lewismosage/acna-gateway/internal/config"
	"github.com/lewismosage/acna-gateway/internal/models"
	"github.com/lewismosage/acna-gateway/internal/service"
)

// ImportHandler handles import endpoints
type ImportHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "import").Logger(),
	}
}

// CreateImport handles POST /v1/imports
// Accepts a multipart upload of an NDJSON or CSV file
func (h *ImportHandler) CreateImport(c *gin.Context) {
	ctx := c.Request.Context()

	// Get idempotency key from header
	idempotencyKey := c.GetHeader("Idempotency-Key")

	// Check for existing job with same idempotency key
	if idempotencyKey != "" {
		existingJob, err := h.services.Job.GetJobByIdempotencyKey(ctx, idempotencyKey)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to check idempotency key")
		}
		if existingJob != nil {
			h.log.Info().Str("job_id", existingJob.ID).Msg("Returning existing job for idempotency key")
			c.JSON(http.StatusOK, existingJob)
			return
		}
	}

	// Get entity kind
	entity := c.PostForm("entity")
	if entity == "" {
		entity = c.Query("entity")
	}
	if entity == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity parameter is required (resources, case-studies, research-projects, research-papers)"})
		return
	}
	kind, ok := models.ParseKind(entity)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity must be one of: resources, case-studies, research-projects, research-papers"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file upload is required"})
		return
	}
	defer file.Close()

	// Validate file size
	if header.Size > h.cfg.Import.MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("file too large, max size is %d MB", h.cfg.Import.MaxUploadSize/(1024*1024)),
		})
		return
	}

	// Determine file format from the form or the extension
	ext := strings.ToLower(filepath.Ext(header.Filename))
	format, ok := importFormat(c.PostForm("format"), ext)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "import requires an NDJSON (.ndjson, .jsonl) or CSV (.csv) file"})
		return
	}

	// Save uploaded file
	uploadDir := h.cfg.Import.UploadDir
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		h.log.Error().Err(err).Msg("Failed to create upload directory")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file"})
		return
	}

	filename := fmt.Sprintf("%s_%s%s", kind, uuid.New().String()[:8], ext)
	filePath := filepath.Join(uploadDir, filename)

	if err := saveUpload(file, filePath); err != nil {
		h.log.Error().Err(err).Msg("Failed to save upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file"})
		return
	}

	// Create import job
	req := &models.ImportRequest{
		Entity:         kind,
		Format:         format,
		IdempotencyKey: idempotencyKey,
	}

	job, err := h.services.Import.CreateImportJob(ctx, req, filePath)
	if err != nil {
		os.Remove(filePath)
		if errors.Is(err, service.ErrNoCredential) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		h.log.Error().Err(err).Msg("Failed to create import job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create import job"})
		return
	}

	h.log.Info().
		Str("job_id", job.ID).
		Str("entity", string(kind)).
		Str("file", header.Filename).
		Int64("size_bytes", header.Size).
		Msg("Import job created")

	c.JSON(http.StatusAccepted, gin.H{
		"job_id":  job.ID,
		"status":  job.Status,
		"entity":  job.Entity,
		"format":  job.Format,
		"message": "Import job created and queued for processing",
	})
}

// importFormat picks the file format. An explicit format wins over the
// file extension.
func importFormat(explicit, ext string) (models.JobFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(explicit)) {
	case "ndjson", "jsonl":
		return models.FormatNDJSON, true
	case "csv":
		return models.FormatCSV, true
	case "":
	default:
		return "", false
	}
	switch ext {
	case ".ndjson", ".jsonl", ".json":
		return models.FormatNDJSON, true
	case ".csv":
		return models.FormatCSV, true
	}
	return "", false
}

func saveUpload(src io.Reader, path string) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return err
	}
	return dst.Close()
}

// ListImports handles GET /v1/imports?limit=
func (h *ImportHandler) ListImports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	jobs, err := h.services.Job.ListJobs(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}
	if jobs == nil {
		jobs = []*models.ImportJob{}
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "count": len(jobs)})
}

// GetImportStatus handles GET /v1/imports/:job_id
func (h *ImportHandler) GetImportStatus(c *gin.Context) {
	ctx := c.Request.Context()
	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_id is required"})
		return
	}

	job, err := h.services.Job.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get job status"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// GetImportErrors handles GET /v1/imports/:job_id/errors
func (h *ImportHandler) GetImportErrors(c *gin.Context) {
	ctx := c.Request.Context()
	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_id is required"})
		return
	}

	errors, err := h.services.Job.GetJobErrors(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job errors")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get errors"})
		return
	}

	// Determine format from query param
	format := c.Query("format")
	if format == "" {
		format = "json"
	}

	if format == "csv" {
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=errors_%s.csv", jobID))
		writer := csv.NewWriter(c.Writer)
		writer.Write([]string{"line", "field", "message", "value"})
		for _, e := range errors {
			writer.Write([]string{strconv.Itoa(e.Line), e.Field, e.Message, e.Value})
		}
		writer.Flush()
		return
	}

	if errors == nil {
		errors = []models.RecordError{}
	}
	c.JSON(http.StatusOK, gin.H{
		"job_id":      jobID,
		"error_count": len(errors),
		"errors":      errors,
	})
}
