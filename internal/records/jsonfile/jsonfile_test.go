package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ach_payments.json")
	content := `[
		{"id": "txn_002", "amount": 2000, "currency": "USD", "scheduled_date": "2025-02-15", "recipient": "Jane Smith"},
		{"id": "txn_001", "amount": 1000, "currency": "USD", "scheduled_date": "2025-01-15", "recipient": "John Doe", "extra": true}
	]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := New(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 || got[0].ID != "txn_002" || got[1].ID != "txn_001" {
		t.Fatalf("unexpected records: %+v", got)
	}
	if got[1].Amount != 1000 || got[1].ScheduledDate.String() != "2025-01-15" || got[1].Recipient != "John Doe" {
		t.Fatalf("unexpected decode: %+v", got[1])
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.json")).Load(context.Background())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":       `{{`,
		"bad date":       `[{"id":"a","amount":1,"currency":"USD","scheduled_date":"01/02/2025","recipient":"x"}]`,
		"float amount":   `[{"id":"a","amount":1.5,"currency":"USD","scheduled_date":"2025-01-02","recipient":"x"}]`,
		"missing amount": `[{"id":"a","currency":"USD","scheduled_date":"2025-01-02","recipient":"x"}]`,
		"object root":    `{"id":"a"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
