package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"achpay/internal/core"
	"achpay/internal/services"
)

func TestResponseBuilder_JSON(t *testing.T) {
	w := httptest.NewRecorder()
	err := NewResponse().
		Status(http.StatusCreated).
		Header("X-Custom", "value").
		JSON(map[string]int{"n": 1}).
		Write(w)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if w.Header().Get("X-Custom") != "value" {
		t.Errorf("X-Custom header = %q", w.Header().Get("X-Custom"))
	}
	if strings.TrimSpace(w.Body.String()) != `{"n":1}` {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestResponseBuilder_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	if err := NewResponse().JSON(func() {}).Write(w); err == nil {
		t.Fatal("expected encode error")
	}
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name string
		b    *ResponseBuilder
		code int
	}{
		{"bad request", BadRequestError("bad"), http.StatusBadRequest},
		{"internal", InternalServerError("oops"), http.StatusInternalServerError},
		{"not found", NotFoundError("nope"), http.StatusNotFound},
		{"method", MethodNotAllowedError("GET"), http.StatusMethodNotAllowed},
		{"rate", TooManyRequestsError(), http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			_ = tt.b.Write(w)
			if w.Code != tt.code {
				t.Errorf("Status code = %d, want %d", w.Code, tt.code)
			}
			var body errorBody
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Error == "" {
				t.Errorf("body = %q", w.Body.String())
			}
		})
	}
}

func TestNewPaymentsJSON(t *testing.T) {
	now := time.Date(2025, 4, 30, 23, 0, 0, 0, time.UTC)
	res := services.Result{
		Payments: []core.Payment{
			{ID: "a", Amount: 100, Currency: "USD", Recipient: "X", ScheduledDate: core.NewDate(2025, 5, 1)},
			{ID: "b", Amount: 200, Currency: "USD", Recipient: "Y", ScheduledDate: core.NewDate(2025, 4, 30)},
		},
		Total: 300,
	}
	got := newPaymentsJSON(res, now)
	if got.Total != 300 || len(got.Payments) != 2 {
		t.Fatalf("got %+v", got)
	}
	if !got.Payments[0].Within24h {
		t.Error("payment due in one hour should be within 24h")
	}
	if got.Payments[1].Within24h {
		t.Error("payment earlier today should not be within 24h")
	}

	empty := newPaymentsJSON(services.Result{}, now)
	if empty.Payments == nil {
		t.Error("payments should be an empty slice, not nil")
	}
}
