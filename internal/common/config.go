package common

import (
	"os"
	"runtime"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Ingest   IngestConfig
	Extract  ExtractConfig
	Catalog  CatalogConfig
	Database DatabaseConfig
	Metrics  MetricsConfig
	LogLevel string
}

// IngestConfig holds document-discovery configuration
type IngestConfig struct {
	LocalRoot string
	Limit     int
}

// ExtractConfig holds text-extraction and OCR configuration
type ExtractConfig struct {
	Pdftotext      string
	Pdftoppm       string
	Tesseract      string
	TesseractLang  string
	OCRDPI         int
	OCREnabled     bool
	OCRMaxPages    int
	MinTextLen     int
	Workers        int
	ProcessTimeout time.Duration
}

// CatalogConfig holds workbook and audit output configuration
type CatalogConfig struct {
	OutXLSX   string
	DedupeKey string
	VocabPath string
}

// DatabaseConfig holds run-store configuration. DSN empty means local SQLite
// at Path; a postgres:// DSN switches to pgx.
type DatabaseConfig struct {
	DSN  string
	Path string
}

// MetricsConfig holds the optional Prometheus listener address ("" disables).
type MetricsConfig struct {
	Addr string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Ingest: IngestConfig{
			LocalRoot: getEnv("LOCAL_ROOT", "."),
			Limit:     getEnvAsInt("LIMIT", 0),
		},
		Extract: ExtractConfig{
			Pdftotext:      getEnv("PDFTOTEXT", "pdftotext"),
			Pdftoppm:       getEnv("PDFTOPPM", "pdftoppm"),
			Tesseract:      getEnv("TESSERACT", "tesseract"),
			TesseractLang:  getEnv("TESSERACT_LANG", "eng"),
			OCRDPI:         getEnvAsInt("OCR_DPI", 300),
			OCREnabled:     getEnvAsBool("OCR", true),
			OCRMaxPages:    getEnvAsInt("OCR_MAX_PAGES", 0),
			MinTextLen:     getEnvAsInt("MIN_TEXT_LEN", 50),
			Workers:        getEnvAsInt("WORKERS", defaultWorkers()),
			ProcessTimeout: getEnvAsDuration("PROCESS_TIMEOUT", 3*time.Minute),
		},
		Catalog: CatalogConfig{
			OutXLSX:   getEnv("OUT_XLSX", "RFI_Catalog.xlsx"),
			DedupeKey: getEnv("DEDUPE_KEY", "LocalPath"),
			VocabPath: getEnv("VOCAB_PATH", ""),
		},
		Database: DatabaseConfig{
			DSN:  getEnv("DB_URL", ""),
			Path: getEnv("DB_PATH", "rfi_runs.db"),
		},
		Metrics: MetricsConfig{
			Addr: getEnv("METRICS_ADDR", ""),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func defaultWorkers() int {
	if n := runtime.NumCPU() - 1; n > 1 {
		return n
	}
	return 1
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Ingest.LocalRoot == "" {
		return NewAppError("CONFIG_ERROR", "LOCAL_ROOT is required", ErrInvalidInput)
	}
	if c.Catalog.OutXLSX == "" {
		return NewAppError("CONFIG_ERROR", "OUT_XLSX is required", ErrInvalidInput)
	}
	if c.Extract.Workers < 1 {
		return NewAppError("CONFIG_ERROR", "WORKERS must be at least 1", ErrInvalidInput)
	}
	if c.Extract.MinTextLen < 1 {
		return NewAppError("CONFIG_ERROR", "MIN_TEXT_LEN must be positive", ErrInvalidInput)
	}
	switch c.Catalog.DedupeKey {
	case "RfiNumber", "PdfTitle", "LocalPath":
	default:
		return NewAppError("CONFIG_ERROR", "DEDUPE_KEY must be RfiNumber, PdfTitle or LocalPath", ErrInvalidInput)
	}
	return nil
}
