package backend

import (
	"context"

	"achpay/internal/gcp"
	"achpay/internal/records"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the record source and optional cleanup function
type BackendResult struct {
	Source  records.Source
	Cleanup CleanupFunc
}

// Close runs the cleanup function if there is one
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates record sources based on configuration
type Factory interface {
	// CreateBackend creates a source instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// Memory (JSON file) specific
	DataFile string

	// SQL specific
	SQLiteDBPath string
	PostgresURL  string

	// Google specific
	GoogleSpreadsheetID string
	GoogleSheetName     string
	GCSBucket           string
	GCSObject           string
	GCSEndpoint         string
	GoogleCredentials   gcp.Credentials
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	SheetsBackend   BackendType = "sheets"
	GCSBackend      BackendType = "gcs"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend, SheetsBackend, GCSBackend:
		return true
	default:
		return false
	}
}
