package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Content backend the gateway fronts
	Backend BackendConfig

	// Listing surfaces (page sizes, fan-out statuses)
	Listing ListingConfig

	// Database configuration (import job bookkeeping)
	Database DatabaseConfig

	// Import/Export configuration
	Import ImportConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// BackendConfig holds settings for the REST backend client
type BackendConfig struct {
	BaseURL     string
	FileBaseURL string
	Timeout     time.Duration
	// ServiceToken authenticates calls made outside a user request
	// (imports, tracking). Requests carrying their own bearer token use it
	// instead.
	ServiceToken string
	// TrackingTimeout bounds fire-and-forget view/download tracking calls
	TrackingTimeout time.Duration
}

// ListingConfig holds listing surface settings
type ListingConfig struct {
	PageSize        int
	CompactPageSize int
	// PublicCaseStudyStatuses are fetched in parallel and merged for the
	// public case study listing
	PublicCaseStudyStatuses []string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// ImportConfig holds import job settings
type ImportConfig struct {
	Concurrency    int
	MaxUploadSize  int64 // in bytes
	UploadDir      string
	MigrationsPath string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present; real environment
// variables take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			AllowedOrigins:  getListEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		},
		Backend: BackendConfig{
			BaseURL:         getEnv("BACKEND_BASE_URL", "http://127.0.0.1:8000/api"),
			FileBaseURL:     getEnv("BACKEND_FILE_BASE_URL", ""),
			Timeout:         getDurationEnv("BACKEND_TIMEOUT", 30*time.Second),
			ServiceToken:    getEnv("BACKEND_SERVICE_TOKEN", ""),
			TrackingTimeout: getDurationEnv("BACKEND_TRACKING_TIMEOUT", 5*time.Second),
		},
		Listing: ListingConfig{
			PageSize:                getIntEnv("LISTING_PAGE_SIZE", 9),
			CompactPageSize:         getIntEnv("LISTING_COMPACT_PAGE_SIZE", 6),
			PublicCaseStudyStatuses: getListEnv("PUBLIC_CASE_STUDY_STATUSES", []string{"Approved", "Published"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Name:         getEnv("DB_NAME", "acna_gateway"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Import: ImportConfig{
			Concurrency:    getIntEnv("IMPORT_CONCURRENCY", 4),
			MaxUploadSize:  getInt64Env("MAX_UPLOAD_SIZE", 50*1024*1024), // 50MB
			UploadDir:      getEnv("UPLOAD_DIR", "./data/uploads"),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("BACKEND_BASE_URL is required")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BACKEND_BASE_URL must be an absolute URL, got %q", c.Backend.BaseURL)
	}
	if c.Listing.PageSize <= 0 || c.Listing.CompactPageSize <= 0 {
		return fmt.Errorf("listing page sizes must be positive")
	}
	if len(c.Listing.PublicCaseStudyStatuses) == 0 {
		return fmt.Errorf("PUBLIC_CASE_STUDY_STATUSES must name at least one status")
	}
	if c.Import.Concurrency <= 0 {
		return fmt.Errorf("IMPORT_CONCURRENCY must be positive")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getListEnv splits a comma-separated variable, dropping blank entries
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
