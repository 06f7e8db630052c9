package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lewismosage/acna-gateway/internal/backend"
	"github.com/lewismosage/acna-gateway/internal/models"
	"github.com/lewismosage/acna-gateway/internal/normalize"
	"github.com/lewismosage/acna-gateway/internal/service"
)

// maxVisible caps the listing cursor a client may request
const maxVisible = 1000

// payload is a submitted form: its fields plus any uploaded files
type payload struct {
	Fields map[string]any
	Files  []backend.File

	closers []multipart.File
}

// Close releases the uploaded files
func (p *payload) Close() {
	for _, f := range p.closers {
		f.Close()
	}
}

// readPayload decodes a JSON object body or a multipart form. Multipart
// values that look like JSON arrays or objects are decoded; files are
// attached under their snake_case field name.
func readPayload(c *gin.Context, maxSize int64) (*payload, error) {
	if maxSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
	}

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		fields := map[string]any{}
		if err := c.ShouldBindJSON(&fields); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		return &payload{Fields: fields}, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	p := &payload{Fields: make(map[string]any, len(form.Value))}
	for key, values := range form.Value {
		if len(values) == 0 {
			continue
		}
		if len(values) > 1 {
			list := make([]any, len(values))
			for i, v := range values {
				list[i] = v
			}
			p.Fields[key] = list
			continue
		}
		p.Fields[key] = formValue(values[0])
	}

	for key, headers := range form.File {
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				p.Close()
				return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
			}
			p.closers = append(p.closers, f)
			p.Files = append(p.Files, backend.File{
				Field:       normalize.SnakeCase(key),
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Reader:      f,
			})
		}
	}
	return p, nil
}

func formValue(s string) any {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			return v
		}
	}
	return s
}

// surfaceParam resolves the :entity path parameter
func (h *ContentHandler) surfaceParam(c *gin.Context) (service.Surface, bool) {
	kind, ok := models.ParseKind(c.Param("entity"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown entity %q", c.Param("entity"))})
		return nil, false
	}
	s, ok := h.services.Content.Surface(kind)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown entity %q", c.Param("entity"))})
		return nil, false
	}
	return s, true
}

// idParam parses the :id path parameter
func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return 0, false
	}
	return id, true
}

// filterState reads the search term and the facets the surface knows from
// the query string
func filterState(c *gin.Context, facets []string) models.FilterState {
	state := models.FilterState{Search: c.Query("search")}
	for _, name := range facets {
		if v, ok := c.GetQuery(name); ok {
			if state.Facets == nil {
				state.Facets = make(map[string]string)
			}
			state.Facets[name] = v
		}
	}
	return state
}

var errBadVisible = errors.New("visible and page_size must be positive integers")

// visibleCount returns how many items the listing should show. An explicit
// cursor wins over a page size; compact selects the short page.
func visibleCount(c *gin.Context, compactSize int) (int, error) {
	for _, key := range []string{"visible", "page_size"} {
		if v := c.Query(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return 0, errBadVisible
			}
			return min(n, maxVisible), nil
		}
	}
	if compact, _ := strconv.ParseBool(c.Query("compact")); compact {
		return compactSize, nil
	}
	return 0, nil
}

// scopeParam parses ?scope=public|admin
func scopeParam(c *gin.Context) (service.Scope, error) {
	switch strings.ToLower(c.DefaultQuery("scope", "public")) {
	case "public":
		return service.ScopePublic, nil
	case "admin":
		return service.ScopeAdmin, nil
	}
	return service.ScopePublic, fmt.Errorf("scope must be one of: public, admin")
}
