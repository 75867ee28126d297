package backend

import (
	"context"
	"fmt"

	"achpay/internal/log"
	"achpay/internal/records/gcs"
	"achpay/internal/records/jsonfile"
	"achpay/internal/records/sheets"
	"achpay/internal/records/sqlstore"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case PostgresBackend:
		return f.createPostgresBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case GCSBackend:
		return f.createGCSBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	src := jsonfile.New(config.DataFile)

	f.logger.Info("Initialized memory backend", "data_file", config.DataFile)

	return &BackendResult{Source: src}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	src, err := sqlstore.OpenSQLite(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite source: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{Source: src, Cleanup: src.Close}, nil
}

func (f *DefaultFactory) createPostgresBackend(config Config) (*BackendResult, error) {
	src, err := sqlstore.OpenPostgres(config.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Postgres source: %w", err)
	}

	f.logger.Info("Initialized Postgres backend")

	return &BackendResult{Source: src, Cleanup: src.Close}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	src, err := sheets.New(ctx, sheets.Config{
		SpreadsheetID: config.GoogleSpreadsheetID,
		SheetName:     config.GoogleSheetName,
		Credentials:   config.GoogleCredentials,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets source: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", log.FieldSource, src.Name())

	return &BackendResult{Source: src}, nil
}

func (f *DefaultFactory) createGCSBackend(ctx context.Context, config Config) (*BackendResult, error) {
	src, err := gcs.New(ctx, gcs.Config{
		Bucket:      config.GCSBucket,
		Object:      config.GCSObject,
		Endpoint:    config.GCSEndpoint,
		Credentials: config.GoogleCredentials,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloud Storage source: %w", err)
	}

	f.logger.Info("Initialized Cloud Storage backend", log.FieldSource, src.Name())

	return &BackendResult{Source: src, Cleanup: src.Close}, nil
}
