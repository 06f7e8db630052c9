package api

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/lewismosage/acna-gateway/internal/backend"
	"github.com/lewismosage/acna-gateway/internal/config"
	"github.com/lewismosage/acna-gateway/internal/service"
)

// HealthCheck reports whether a dependency is usable
type HealthCheck func(ctx context.Context) error

// NewRouter creates and configures the Gin router. checks are consulted by
// /health, keyed by dependency name.
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger, checks ...map[string]HealthCheck) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware(cfg.Server.AllowedOrigins))
	router.Use(tokenMiddleware())

	// Handlers
	contentHandler := NewContentHandler(services, cfg, log)
	importHandler := NewImportHandler(services, cfg, log)
	exportHandler := NewExportHandler(services, log)

	// Health check
	router.GET("/health", healthCheck(mergeChecks(checks)))

	// API v1
	v1 := router.Group("/v1")
	{
		public := v1.Group("/public")
		{
			public.GET("/:entity", contentHandler.PublicList)
			public.GET("/:entity/:id", contentHandler.PublicDetail)
			public.POST("/:entity/:id/download", contentHandler.Download)
		}

		// Member submissions run with the member's own token
		v1.POST("/submissions/case-studies", requireToken(), contentHandler.SubmitCaseStudy)

		admin := v1.Group("/admin", requireToken())
		{
			admin.GET("/:entity", contentHandler.AdminList)
			admin.POST("/:entity", contentHandler.Create)
			admin.GET("/:entity/:id", contentHandler.AdminDetail)
			admin.PATCH("/:entity/:id", contentHandler.Update)
			admin.PATCH("/:entity/:id/status", contentHandler.UpdateStatus)
			admin.POST("/:entity/:id/featured", contentHandler.ToggleFeatured)
			admin.DELETE("/:entity/:id", contentHandler.Delete)
		}

		imports := v1.Group("/imports", requireToken())
		{
			imports.POST("", importHandler.CreateImport)
			imports.GET("", importHandler.ListImports)
			imports.GET("/:job_id", importHandler.GetImportStatus)
			imports.GET("/:job_id/errors", importHandler.GetImportErrors)
		}

		// Export endpoints
		v1.GET("/exports", exportHandler.StreamExport)
	}

	return router
}

// healthCheck returns the health status
func healthCheck(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code := "healthy", http.StatusOK
		deps := make(gin.H, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				deps[name] = err.Error()
				status, code = "unhealthy", http.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}

		c.JSON(code, gin.H{
			"status":       status,
			"timestamp":    time.Now().Format(time.RFC3339),
			"service":      "acna-gateway",
			"dependencies": deps,
		})
	}
}

func mergeChecks(all []map[string]HealthCheck) map[string]HealthCheck {
	merged := map[string]HealthCheck{}
	for _, m := range all {
		for name, check := range m {
			merged[name] = check
		}
	}
	return merged
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("path", c.Request.URL.Path).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware allows the configured frontends. A wildcard origin disables
// credentials, which browsers refuse to combine with "*".
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", "X-Requested-With", "Idempotency-Key"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// tokenMiddleware attaches the caller's bearer token to the request context
// so backend calls made on its behalf carry it
func tokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := backend.BearerToken(c.GetHeader("Authorization")); token != "" {
			c.Request = c.Request.WithContext(backend.WithToken(c.Request.Context(), token))
		}
		c.Next()
	}
}

// requireToken rejects requests without a bearer token. Without it the
// backend client would fall back to the service token.
func requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if backend.TokenFromContext(c.Request.Context()) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}
