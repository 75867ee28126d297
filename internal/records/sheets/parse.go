package sheets

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"achpay/internal/core"
)

// parseRows converts a values matrix (as returned by the Sheets API) into
// payments. Fully blank rows are skipped; anything else malformed is an error.
func parseRows(values [][]interface{}) ([]core.Payment, error) {
	out := make([]core.Payment, 0, len(values))
	for i, raw := range values {
		row := toStrings(raw)
		if isBlankRow(row) {
			continue
		}
		rowNum := i + 2 // header is row 1

		amount, err := parseAmount(safeGet(raw, 1))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
		date, err := core.ParseDate(safeGetString(row, 4))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
		out = append(out, core.Payment{
			ID:            strings.TrimSpace(safeGetString(row, 0)),
			Amount:        amount,
			Currency:      strings.TrimSpace(safeGetString(row, 2)),
			Recipient:     strings.TrimSpace(safeGetString(row, 3)),
			ScheduledDate: date,
		})
	}
	return out, nil
}

// parseAmount accepts integer cell values, either numeric or text.
func parseAmount(v interface{}) (int64, error) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("amount %v is not a whole number of minor units", n)
		}
		return int64(n), nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		a, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", n)
		}
		return a, nil
	case nil:
		return 0, fmt.Errorf("missing amount")
	default:
		return 0, fmt.Errorf("unsupported amount %v", v)
	}
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func safeGet(arr []interface{}, idx int) interface{} {
	if idx >= 0 && idx < len(arr) {
		return arr[idx]
	}
	return nil
}

func safeGetString(arr []string, idx int) string {
	if idx >= 0 && idx < len(arr) {
		return arr[idx]
	}
	return ""
}
