package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"achpay/internal/core"
	"achpay/internal/log"
)

// handleListPayments serves GET /ach_payments.
func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := ParsePaymentQuery(r.URL.Query())

	res, err := s.payments.Query(ctx, params)
	if err != nil {
		var filterErr *core.InvalidFilterError
		var loadErr *core.LoadError
		switch {
		case errors.As(err, &filterErr):
			log.FromContext(ctx).WarnContext(ctx, "Rejected payments query",
				log.FieldError, err.Error(),
				log.FieldOperation, log.OpValidate)
			writeResponse(w, r, BadRequestError(filterErr.Error()))
		case errors.As(err, &loadErr):
			log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, "Payment records unavailable", err,
				log.ComponentPayments, log.OpLoad, log.NewFields().WithFilter(params.Recipient, params.After, params.Before))
			writeResponse(w, r, InternalServerError("payment records unavailable"))
		default:
			log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, "Payments query failed", err,
				log.ComponentPayments, log.OpQuery, log.NewFields())
			writeResponse(w, r, InternalServerError("internal server error"))
		}
		return
	}

	writeResponse(w, r, NewResponse().JSON(newPaymentsJSON(res, s.now())))
}

// handleSearchNonprofits serves GET /non_profits. Upstream failures yield [].
func (s *Server) handleSearchNonprofits(w http.ResponseWriter, r *http.Request) {
	term := ParseSearchTerm(r.URL.Query())

	results := []json.RawMessage{}
	if s.nonprofits != nil {
		if found := s.nonprofits.Search(r.Context(), term); found != nil {
			results = found
		}
	}
	writeResponse(w, r, NewResponse().JSON(results))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, r, NewResponse().JSON(map[string]any{
		"status": "ok",
		"uptime": s.now().Sub(s.started).Round(time.Second).String(),
	}))
}

// handleReady reports 503 until a snapshot has been published.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.status == nil || s.status.LoadedAt().IsZero() {
		writeResponse(w, r, ErrorResponse(http.StatusServiceUnavailable, "payment records not loaded"))
		return
	}
	loadedAt := s.status.LoadedAt()
	writeResponse(w, r, NewResponse().JSON(map[string]any{
		"status":       "ready",
		"source":       s.status.Source(),
		"records":      s.status.Len(),
		"loaded_at":    loadedAt.UTC().Format(time.RFC3339),
		"snapshot_age": s.now().Sub(loadedAt).Round(time.Second).String(),
	}))
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, r, NotFoundError("not found"))
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, r, MethodNotAllowedError("GET, HEAD"))
}

func handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeResponse(w, r, TooManyRequestsError())
}

func handleInternalError(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, r, InternalServerError("internal server error"))
}

func writeResponse(w http.ResponseWriter, r *http.Request, b *ResponseBuilder) {
	if err := b.Write(w); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed writing response", log.FieldError, err.Error())
	}
}
