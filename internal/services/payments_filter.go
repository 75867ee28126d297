package services

import (
	"strings"

	"achpay/internal/core"
)

// FilterParams holds the raw query filters. Blank values mean "no filter".
type FilterParams struct {
	Recipient string
	After     string
	Before    string
}

// Filter is the validated form of FilterParams.
type Filter struct {
	recipient string // lowercased needle, empty when absent
	after     *core.Date
	before    *core.Date
}

// Result is the outcome of applying a Filter.
type Result struct {
	Payments []core.Payment
	Total    int64
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

// NewFilter validates params. An unparsable non-blank date yields *core.InvalidFilterError.
func NewFilter(params FilterParams) (Filter, error) {
	var f Filter
	if !isBlank(params.Recipient) {
		f.recipient = strings.ToLower(params.Recipient)
	}

	bound := func(field, value string) (*core.Date, error) {
		if isBlank(value) {
			return nil, nil
		}
		d, err := core.ParseDate(value)
		if err != nil {
			return nil, &core.InvalidFilterError{Field: field, Value: value, Err: err}
		}
		return &d, nil
	}

	var err error
	if f.after, err = bound("after", params.After); err != nil {
		return Filter{}, err
	}
	if f.before, err = bound("before", params.Before); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// Matches reports whether p satisfies every present criterion.
func (f Filter) Matches(p core.Payment) bool {
	if f.recipient != "" && !strings.Contains(strings.ToLower(p.Recipient), f.recipient) {
		return false
	}
	if f.after != nil && p.ScheduledDate.Compare(*f.after) < 0 {
		return false
	}
	if f.before != nil && p.ScheduledDate.Compare(*f.before) > 0 {
		return false
	}
	return true
}

// Apply selects matching payments in input order and sums their amounts.
func (f Filter) Apply(payments []core.Payment) Result {
	res := Result{Payments: make([]core.Payment, 0)}
	for _, p := range payments {
		if !f.Matches(p) {
			continue
		}
		res.Payments = append(res.Payments, p)
		res.Total += p.Amount
	}
	return res
}

// FilterPayments parses params and applies them to payments.
func FilterPayments(payments []core.Payment, params FilterParams) (Result, error) {
	f, err := NewFilter(params)
	if err != nil {
		return Result{}, err
	}
	return f.Apply(payments), nil
}
