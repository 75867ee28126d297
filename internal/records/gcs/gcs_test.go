package gcs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cloud.google.com/go/storage"
)

func newTestSource(t *testing.T, handler http.HandlerFunc) *Source {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := New(context.Background(), Config{Bucket: "payments", Endpoint: srv.URL + "/storage/v1/"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{Object: "x.json"}); err == nil {
		t.Fatal("expected error without bucket")
	}
}

func TestName(t *testing.T) {
	s := &Source{bucket: "payments", object: defaultObject}
	if got := s.Name(); got != "gs://payments/ach_payments.json" {
		t.Fatalf("Name() = %q", got)
	}
}

func TestLoadDecodesObject(t *testing.T) {
	var gotPath string
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": "txn_002", "amount": 2000, "currency": "USD", "scheduled_date": "2025-02-15", "recipient": "Jane Smith"},
			{"id": "txn_001", "amount": 1000, "currency": "USD", "scheduled_date": "2025-01-15", "recipient": "John Doe"}
		]`))
	})

	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if gotPath != "/payments/ach_payments.json" {
		t.Errorf("object path = %q", gotPath)
	}
	if len(got) != 2 || got[0].ID != "txn_002" || got[1].ID != "txn_001" {
		t.Fatalf("unexpected records: %+v", got)
	}
	if got[0].Amount != 2000 || got[0].ScheduledDate.String() != "2025-02-15" || got[0].Recipient != "Jane Smith" {
		t.Errorf("unexpected decode: %+v", got[0])
	}
}

func TestLoadMissingObject(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := s.Load(context.Background())
	if !errors.Is(err, storage.ErrObjectNotExist) {
		t.Fatalf("Load() error = %v, want ErrObjectNotExist", err)
	}
}

func TestLoadMalformedObject(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "an array"}`))
	})

	if _, err := s.Load(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}
