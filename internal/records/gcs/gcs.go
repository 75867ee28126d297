package gcs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"achpay/internal/core"
	"achpay/internal/gcp"
	"achpay/internal/records"
	"achpay/internal/records/jsonfile"
)

const defaultObject = "ach_payments.json"

// Config locates the payments object in a bucket.
type Config struct {
	Bucket      string
	Object      string
	Credentials gcp.Credentials
	// Endpoint overrides the Cloud Storage API endpoint, e.g. an emulator. Requests are unauthenticated.
	Endpoint string
}

// Source reads a JSON payments array from a Cloud Storage object.
type Source struct {
	client *storage.Client
	bucket string
	object string
}

var _ records.Source = (*Source)(nil)

func New(ctx context.Context, cfg Config) (*Source, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("missing bucket name")
	}
	object := strings.TrimSpace(cfg.Object)
	if object == "" {
		object = defaultObject
	}

	opts, err := gcp.ClientOptions(ctx, cfg.Credentials, storage.ScopeReadOnly)
	if err != nil {
		return nil, err
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint), option.WithoutAuthentication())
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &Source{client: client, bucket: cfg.Bucket, object: object}, nil
}

func (s *Source) Name() string { return fmt.Sprintf("gs://%s/%s", s.bucket, s.object) }

func (s *Source) Load(ctx context.Context) ([]core.Payment, error) {
	r, err := s.client.Bucket(s.bucket).Object(s.object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open GCS object reader: %w", err)
	}
	defer r.Close()

	return jsonfile.Decode(r)
}

func (s *Source) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
