package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"achpay/internal/core"
	"achpay/internal/services"
)

// ResponseBuilder provides a fluent API for building JSON responses.
type ResponseBuilder struct {
	statusCode int
	headers    map[string]string
	payload    any
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets the value encoded as the response body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	b.payload = v
	return b
}

// Write encodes the payload and sends the response. An encoding failure
// becomes a plain 500 before anything is written.
func (b *ResponseBuilder) Write(w http.ResponseWriter) error {
	var buf bytes.Buffer
	if b.payload != nil {
		if err := json.NewEncoder(&buf).Encode(b.payload); err != nil {
			http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
			return err
		}
	}

	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.payload != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	w.WriteHeader(b.statusCode)
	_, err := w.Write(buf.Bytes())
	return err
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a standard {"error": message} response.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(errorBody{Error: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// MethodNotAllowedError creates a 405 response listing the allowed methods.
func MethodNotAllowedError(allowedMethods string) *ResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").
		Header("Allow", allowedMethods)
}

// TooManyRequestsError creates a 429 response.
func TooManyRequestsError() *ResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later")
}

// paymentJSON is the wire form of one payment.
type paymentJSON struct {
	ID            string    `json:"id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Recipient     string    `json:"recipient"`
	Within24h     bool      `json:"within_24h"`
	ScheduledDate core.Date `json:"scheduled_date"`
}

type paymentsJSON struct {
	Total    int64         `json:"total"`
	Payments []paymentJSON `json:"payments"`
}

// newPaymentsJSON converts a query result, evaluating the 24 hour flag at now.
func newPaymentsJSON(res services.Result, now time.Time) paymentsJSON {
	out := paymentsJSON{
		Total:    res.Total,
		Payments: make([]paymentJSON, 0, len(res.Payments)),
	}
	for _, p := range res.Payments {
		out.Payments = append(out.Payments, paymentJSON{
			ID:            p.ID,
			Amount:        p.Amount,
			Currency:      p.Currency,
			Recipient:     p.Recipient,
			Within24h:     p.WithinNext24Hours(now),
			ScheduledDate: p.ScheduledDate,
		})
	}
	return out
}
