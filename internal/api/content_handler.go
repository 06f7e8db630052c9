package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/lewismosage/acna-gateway/internal/config"
	"github.com/lewismosage/acna-gateway/internal/models"
	"github.com/lewismosage/acna-gateway/internal/service"
)

// moderationFields are dropped from member submissions; only administrators
// set them
var moderationFields = []string{
	"status", "isFeatured", "is_featured", "reviewNotes", "review_notes", "reviewDate", "review_date",
}

// ContentHandler serves the public, member and admin content endpoints
type ContentHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "content").Logger(),
	}
}

// PublicList handles GET /v1/public/:entity
func (h *ContentHandler) PublicList(c *gin.Context) {
	h.list(c, service.ScopePublic)
}

// AdminList handles GET /v1/admin/:entity
func (h *ContentHandler) AdminList(c *gin.Context) {
	h.list(c, service.ScopeAdmin)
}

func (h *ContentHandler) list(c *gin.Context, scope service.Scope) {
	s, ok := h.surfaceParam(c)
	if !ok {
		return
	}
	visible, err := visibleCount(c, h.cfg.Listing.CompactPageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listing, err := s.List(c.Request.Context(), scope, filterState(c, s.FacetNames()), visible)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// PublicDetail handles GET /v1/public/:entity/:id
func (h *ContentHandler) PublicDetail(c *gin.Context) {
	h.detail(c, service.ScopePublic)
}

// AdminDetail handles GET /v1/admin/:entity/:id
func (h *ContentHandler) AdminDetail(c *gin.Context) {
	h.detail(c, service.ScopeAdmin)
}

func (h *ContentHandler) detail(c *gin.Context, scope service.Scope) {
	s, ok := h.surfaceParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	item, err := s.Detail(c.Request.Context(), scope, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Download handles POST /v1/public/:entity/:id/download
func (h *ContentHandler) Download(c *gin.Context) {
	s, ok := h.surfaceParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	item, err := s.TrackDownload(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// SubmitCaseStudy handles POST /v1/submissions/case-studies
func (h *ContentHandler) SubmitCaseStudy(c *gin.Context) {
	s, ok := h.services.Content.Surface(models.KindCaseStudy)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "case study submissions are not available"})
		return
	}

	p, err := readPayload(c, h.cfg.Import.MaxUploadSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer p.Close()

	for _, key := range moderationFields {
		delete(p.Fields, key)
	}

	created, err := s.Create(c.Request.Context(), p.Fields, p.Files...)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info().Int("id", entityID(created)).Int("files", len(p.Files)).Msg("Case study submitted")
	c.JSON(http.StatusCreated, created)
}

// Create handles POST /v1/admin/:entity
func (h *ContentHandler) Create(c *gin.Context) {
	s, ok := h.surfaceParam(c)
	if !ok {
		return
	}
	p, err := readPayload(c, h.cfg.Import.MaxUploadSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer p.Close()

	created, err := s.Create(c.Request.Context(), p.Fields, p.Files...)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update handles PATCH /v1/admin/:entity/:id
func (h *ContentHandler) Update(c *gin.Context) {
	s, ok := h.surfaceParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	p, err := readPayload(c, h.cfg.Import.MaxUploadSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer p.Close()

	updated, err := s.Update(c.Request.Context(), id, p.Fields, p.Files...)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// UpdateStatus handles PATCH /v1/admin/:entity/:id/status
func (h *ContentHandler) UpdateStatus(c *gin.Context) {
	s, ok := h.surfaceParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := s.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ToggleFeatured handles POST /v1/admin/:entity/:id/featured
func (h *ContentHandler) ToggleFeatured(c *gin.Context) {
	s, ok := h.surfaceParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}

	updated, err := s.ToggleFeatured(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /v1/admin/:entity/:id?confirm=true
func (h *ContentHandler) Delete(c *gin.Context) {
	s, ok := h.surfaceParam(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	if confirmed, _ := strconv.ParseBool(c.Query("confirm")); !confirmed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deletion must be confirmed with confirm=true"})
		return
	}

	if err := s.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func entityID(v any) int {
	if e, ok := v.(models.Entity); ok {
		return e.EntityID()
	}
	return 0
}
