package gcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"google.golang.org/api/option"
)

// Credentials points at a service account key, inline or on disk.
// Both empty means Application Default Credentials.
type Credentials struct {
	JSON string
	File string
}

// ClientOptions builds Google API client options for the given scopes.
func ClientOptions(ctx context.Context, creds Credentials, scopes ...string) ([]option.ClientOption, error) {
	opts := make([]option.ClientOption, 0, 2)
	if len(scopes) > 0 {
		opts = append(opts, option.WithScopes(scopes...))
	}

	switch {
	case strings.TrimSpace(creds.JSON) != "":
		slog.InfoContext(ctx, "Using inline service account credentials", "json_length", len(creds.JSON))
		opts = append(opts, option.WithCredentialsJSON([]byte(creds.JSON)))
	case strings.TrimSpace(creds.File) != "":
		data, err := os.ReadFile(creds.File)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.InfoContext(ctx, "Using service account credentials file", "path", creds.File, "size", len(data))
		opts = append(opts, option.WithCredentialsJSON(data))
	default:
		slog.InfoContext(ctx, "No service account configured, using application default credentials")
	}
	return opts, nil
}
