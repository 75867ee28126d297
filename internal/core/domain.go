package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

type (
	// Date is a calendar date without time of day, held as UTC midnight.
	Date struct {
		time.Time
	}

	// Payment is a scheduled ACH payment record.
	Payment struct {
		ID            string
		Amount        int64 // minor units
		Currency      string
		Recipient     string
		ScheduledDate Date
	}
)

var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrEmptyID        = errors.New("empty payment id")
	ErrNegativeAmount = errors.New("negative amount")
	ErrEmptyCurrency  = errors.New("empty currency")
	ErrDuplicateID    = errors.New("duplicate payment id")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. Surrounding whitespace is ignored.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after other.
func (d Date) Compare(other Date) int {
	return d.Time.Compare(other.Time)
}

// MidnightIn returns the start of the date in loc.
func (d Date) MidnightIn(loc *time.Location) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: zero date", ErrInvalidDate)
	}
	return nil
}

func (p Payment) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrEmptyID
	}
	if p.Amount < 0 {
		return fmt.Errorf("%w: %s has amount %d", ErrNegativeAmount, p.ID, p.Amount)
	}
	if strings.TrimSpace(p.Currency) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyCurrency, p.ID)
	}
	if err := p.ScheduledDate.Validate(); err != nil {
		return fmt.Errorf("payment %s: %w", p.ID, err)
	}
	return nil
}

// WithinNext24Hours reports whether the scheduled date, taken at midnight in
// now's location, is between now and now+24h inclusive.
func (p Payment) WithinNext24Hours(now time.Time) bool {
	diff := p.ScheduledDate.MidnightIn(now.Location()).Sub(now)
	return diff >= 0 && diff <= 24*time.Hour
}

// ValidatePayments checks every record and rejects duplicate IDs.
func ValidatePayments(payments []Payment) error {
	seen := make(map[string]struct{}, len(payments))
	for i, p := range payments {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("record %d: %w: %s", i, ErrDuplicateID, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}
