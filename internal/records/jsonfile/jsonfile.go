package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"achpay/internal/core"
	"achpay/internal/records"
)

// record mirrors the on-disk fixture shape.
type record struct {
	ID            string    `json:"id"`
	Amount        *int64    `json:"amount"`
	Currency      string    `json:"currency"`
	Recipient     string    `json:"recipient"`
	ScheduledDate core.Date `json:"scheduled_date"`
}

// Source reads payments from a JSON array file.
type Source struct {
	path string
}

var _ records.Source = (*Source)(nil)

func New(path string) *Source {
	return &Source{path: path}
}

func (s *Source) Name() string { return "file:" + s.path }

// Load reads and decodes the file on every call.
func (s *Source) Load(_ context.Context) ([]core.Payment, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a JSON array of payment records, preserving order.
func Decode(r io.Reader) ([]core.Payment, error) {
	var raw []record
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode payments: %w", err)
	}
	out := make([]core.Payment, 0, len(raw))
	for i, rec := range raw {
		if rec.Amount == nil {
			return nil, fmt.Errorf("record %d (%s): missing amount", i, rec.ID)
		}
		out = append(out, core.Payment{
			ID:            rec.ID,
			Amount:        *rec.Amount,
			Currency:      rec.Currency,
			Recipient:     rec.Recipient,
			ScheduledDate: rec.ScheduledDate,
		})
	}
	return out, nil
}
