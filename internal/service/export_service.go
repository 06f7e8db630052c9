package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/lewismosage/acna-gateway/internal/models"
)

// Export formats
const (
	ExportNDJSON = "ndjson"
	ExportJSON   = "json"
	ExportCSV    = "csv"
)

// flushEvery is how many records are written between flushes
const flushEvery = 100

// ExportRequest selects what an export streams
type ExportRequest struct {
	Entity  models.EntityKind
	Format  string
	Scope   Scope
	Filters models.FilterState
}

// exportService is the concrete implementation of ExportService
type exportService struct {
	surfaces SurfaceProvider
	log      zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(surfaces SurfaceProvider, log zerolog.Logger) *exportService {
	return &exportService{
		surfaces: surfaces,
		log:      log.With().Str("service", "export").Logger(),
	}
}

// Stream writes the filtered listing of one entity kind. Nothing is written
// when the listing cannot be fetched, so the caller can still reply with an
// error.
func (s *exportService) Stream(ctx context.Context, w http.ResponseWriter, req ExportRequest) error {
	surface, ok := s.surfaces.Surface(req.Entity)
	if !ok {
		return fmt.Errorf("unknown entity: %s: %w", req.Entity, ErrUnsupported)
	}
	switch req.Format {
	case ExportNDJSON, ExportJSON, ExportCSV:
	default:
		return fmt.Errorf("unsupported format: %s: %w", req.Format, ErrUnsupported)
	}

	items, err := surface.Entities(ctx, req.Scope, req.Filters)
	if err != nil {
		return err
	}

	s.log.Info().
		Str("entity", string(req.Entity)).
		Str("format", req.Format).
		Str("scope", req.Scope.String()).
		Int("count", len(items)).
		Msg("Starting export")

	filename := string(req.Entity) + "." + req.Format
	switch req.Format {
	case ExportNDJSON:
		return s.streamNDJSON(w, filename, items)
	case ExportJSON:
		return s.streamJSON(w, filename, items)
	default:
		return s.streamCSV(w, filename, surface.CSVHeader(), items)
	}
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
}

func (s *exportService) streamNDJSON(w http.ResponseWriter, filename string, items []models.Entity) error {
	attachment(w, "application/x-ndjson", filename)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	for i, item := range items {
		// Encode appends the newline
		if err := enc.Encode(item); err != nil {
			return err
		}
		if (i+1)%flushEvery == 0 && flusher != nil {
			flusher.Flush()
		}
	}
	return nil
}

func (s *exportService) streamJSON(w http.ResponseWriter, filename string, items []models.Entity) error {
	attachment(w, "application/json", filename)

	if _, err := w.Write([]byte("[")); err != nil {
		return err
	}
	for i, item := range items {
		if i > 0 {
			if _, err := w.Write([]byte(",")); err != nil {
				return err
			}
		}
		data, err := json.Marshal(item)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte("]"))
	return err
}

func (s *exportService) streamCSV(w http.ResponseWriter, filename string, header []string, items []models.Entity) error {
	attachment(w, "text/csv", filename)

	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	for i, item := range items {
		if err := writer.Write(item.CSVRecord()); err != nil {
			return err
		}
		if (i+1)%flushEvery == 0 {
			writer.Flush()
		}
	}
	writer.Flush()
	return writer.Error()
}
