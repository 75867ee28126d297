package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gsheet "google.golang.org/api/sheets/v4"

	"achpay/internal/core"
	"achpay/internal/gcp"
	"achpay/internal/records"
)

const defaultSheetName = "Payments"

// Config selects the spreadsheet and credentials.
type Config struct {
	SpreadsheetID string
	SheetName     string
	Credentials   gcp.Credentials
}

// Source reads payment rows from a Google Sheet.
// Columns A..E: id, amount, currency, recipient, scheduled_date; row 1 is a header.
type Source struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ records.Source = (*Source)(nil)

func New(ctx context.Context, cfg Config) (*Source, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	name := strings.TrimSpace(cfg.SheetName)
	if name == "" {
		name = defaultSheetName
	}

	opts, err := gcp.ClientOptions(ctx, cfg.Credentials, gsheet.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Source{svc: svc, spreadsheetID: cfg.SpreadsheetID, sheetName: name}, nil
}

func (s *Source) Name() string { return "sheets:" + s.spreadsheetID + "/" + s.sheetName }

func (s *Source) Load(ctx context.Context) ([]core.Payment, error) {
	if s.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A2:E", s.sheetName)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", rng, err)
	}
	return parseRows(resp.Values)
}
