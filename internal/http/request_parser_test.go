package http

import (
	"net/url"
	"testing"
)

func TestParsePaymentQuery(t *testing.T) {
	q := url.Values{
		"recipient": {" John ", "ignored"},
		"after":     {"2025-01-01"},
		"amount":    {"100"},
	}
	got := ParsePaymentQuery(q)
	if got.Recipient != " John " {
		t.Errorf("Recipient = %q, want untrimmed value", got.Recipient)
	}
	if got.After != "2025-01-01" || got.Before != "" {
		t.Errorf("After/Before = %q/%q", got.After, got.Before)
	}
}

func TestParseSearchTerm(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"red cross", "red cross"},
		{"  food bank\t", "food bank"},
		{"a\x00b\x07c", "abc"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ParseSearchTerm(url.Values{"search_term": {tt.raw}}); got != tt.want {
			t.Errorf("ParseSearchTerm(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
