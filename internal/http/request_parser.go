package http

import (
	"net/url"
	"strings"

	"achpay/internal/services"
)

// Query parameters accepted by the API. Anything else is ignored.
const (
	paramRecipient  = "recipient"
	paramAfter      = "after"
	paramBefore     = "before"
	paramSearchTerm = "search_term"
)

// ParsePaymentQuery extracts the allow-listed payment filters. Values are
// passed through untouched; blank handling and date validation belong to
// the filter itself.
func ParsePaymentQuery(query url.Values) services.FilterParams {
	return services.FilterParams{
		Recipient: query.Get(paramRecipient),
		After:     query.Get(paramAfter),
		Before:    query.Get(paramBefore),
	}
}

// ParseSearchTerm returns the sanitized nonprofit search term.
func ParseSearchTerm(query url.Values) string {
	return sanitizeInput(query.Get(paramSearchTerm))
}

// sanitizeInput removes control characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
