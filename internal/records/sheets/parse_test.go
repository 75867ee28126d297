package sheets

import (
	"context"
	"testing"
)

func TestParseRows(t *testing.T) {
	values := [][]interface{}{
		{"txn_001", "1000", "USD", "John Doe", "2025-01-15"},
		{"", "", "", "", ""},
		{"txn_002", 2000.0, "USD", " Jane Smith ", "2025-02-15"},
		{},
		{"txn_003", "3,000", "USD", "John Smith", "2025-03-15"},
	}
	got, err := parseRows(values)
	if err != nil {
		t.Fatalf("parseRows: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 payments, got %d", len(got))
	}
	if got[1].Amount != 2000 || got[1].Recipient != "Jane Smith" {
		t.Fatalf("unexpected row: %+v", got[1])
	}
	if got[2].Amount != 3000 || got[2].ScheduledDate.String() != "2025-03-15" {
		t.Fatalf("unexpected row: %+v", got[2])
	}
}

func TestParseRowsErrors(t *testing.T) {
	cases := map[string][]interface{}{
		"fractional amount": {"a", 10.5, "USD", "x", "2025-01-01"},
		"text amount":       {"a", "ten", "USD", "x", "2025-01-01"},
		"missing amount":    {"a"},
		"bad date":          {"a", "10", "USD", "x", "Jan 1 2025"},
		"missing date":      {"a", "10", "USD", "x"},
	}
	for name, row := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := parseRows([][]interface{}{row}); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseRowsEmpty(t *testing.T) {
	got, err := parseRows(nil)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestNewRequiresSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected error without spreadsheet id")
	}
}
