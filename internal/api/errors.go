package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/lewismosage/acna-gateway/internal/backend"
	"github.com/lewismosage/acna-gateway/internal/service"
)

// respondError converts a service error to a JSON error response. Backend
// client errors keep their status; anything else the backend does wrong is
// reported as a bad gateway with a retry hint.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	if vf, ok := service.AsValidationFailed(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "validation failed",
			"errors": vf.FieldErrors(),
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	case errors.Is(err, service.ErrUnsupported):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 && apiErr.Status != http.StatusTooManyRequests {
		c.JSON(apiErr.Status, gin.H{"error": apiErr.Message})
		return
	}

	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Backend request failed")
	c.JSON(http.StatusBadGateway, gin.H{
		"error":     err.Error(),
		"retryable": backend.Retryable(err),
	})
}
