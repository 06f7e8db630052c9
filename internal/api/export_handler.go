package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/lewismosage/acna-gateway/internal/backend"
	"github.com/lewismosage/acna-gateway/internal/models"
	"github.com/lewismosage/acna-gateway/internal/service"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamExport handles GET /v1/exports?entity=...&format=...&scope=...
// Streams the filtered listing directly to the response
func (h *ExportHandler) StreamExport(c *gin.Context) {
	ctx := c.Request.Context()

	entity := c.Query("entity")
	if entity == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity parameter is required (resources, case-studies, research-projects, research-papers)"})
		return
	}
	kind, ok := models.ParseKind(entity)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity must be one of: resources, case-studies, research-projects, research-papers"})
		return
	}
	surface, ok := h.services.Content.Surface(kind)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity is not exportable"})
		return
	}

	format := c.Query("format")
	if format == "" {
		format = service.ExportNDJSON // Default to NDJSON for streaming
	}
	if format != service.ExportNDJSON && format != service.ExportJSON && format != service.ExportCSV {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of: ndjson, json, csv"})
		return
	}

	scope, err := scopeParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Drafts and rejected submissions leave the gateway only for signed-in callers
	if scope == service.ScopeAdmin && backend.TokenFromContext(ctx) == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	h.log.Info().
		Str("entity", string(kind)).
		Str("format", format).
		Str("scope", scope.String()).
		Msg("Starting streaming export")

	err = h.services.Export.Stream(ctx, c.Writer, service.ExportRequest{
		Entity:  kind,
		Format:  format,
		Scope:   scope,
		Filters: filterState(c, surface.FacetNames()),
	})
	if err != nil {
		h.log.Error().Err(err).Str("entity", string(kind)).Msg("Export failed")
		// Can't return error JSON after streaming has started
		if c.Writer.Written() {
			return
		}
		respondError(c, h.log, err)
	}
}
