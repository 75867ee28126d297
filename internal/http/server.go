package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"achpay/internal/log"
	"achpay/internal/middleware/cors"
	"achpay/internal/middleware/ratelimit"
	"achpay/internal/middleware/recovery"
	"achpay/internal/middleware/security"
	"achpay/internal/middleware/trace"
	"achpay/internal/services"
)

// PaymentQuerier answers filtered payment queries.
type PaymentQuerier interface {
	Query(ctx context.Context, params services.FilterParams) (services.Result, error)
}

// NonprofitSearcher looks up nonprofits by free-text term. It never fails.
type NonprofitSearcher interface {
	Search(ctx context.Context, term string) []json.RawMessage
}

// StoreStatus reports on the loaded record snapshot.
type StoreStatus interface {
	Len() int
	Source() string
	LoadedAt() time.Time
}

// Options configures the HTTP server.
type Options struct {
	Addr               string
	CORSOrigins        []string
	NonprofitRateLimit int
	Logger             *log.Logger
	// Now is the clock used for the within_24h flag. Defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	http.Server
	payments   PaymentQuerier
	nonprofits NonprofitSearcher
	status     StoreStatus

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	now      func() time.Time
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, payments PaymentQuerier, nonprofits NonprofitSearcher, status StoreStatus) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	detector := security.NewDetector()
	s := &Server{
		payments:   payments,
		nonprofits: nonprofits,
		status:     status,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.NonprofitRateLimit,
			CleanupInterval:   5 * time.Minute,
		}),
		detector: detector,
		tracer:   trace.NewMiddleware(detector.ExtractClientIP),
		now:      now,
		started:  now(),
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handleMethodNotAllowed)

	r.HandleFunc("/ach_payments", s.handleListPayments).Methods(http.MethodGet, http.MethodHead)
	r.Handle("/non_profits",
		s.limiter.Middleware(detector.ExtractClientIP, handleRateLimited)(http.HandlerFunc(s.handleSearchNonprofits)),
	).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet, http.MethodHead)

	// Outermost first. CORS wraps the router so preflights never reach route matching.
	var h http.Handler = r
	h = cors.Middleware(opts.CORSOrigins)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = detector.Middleware(h)
	h = s.tracer.Middleware(h)
	h = recovery.Middleware(handleInternalError)(h)
	h = log.ComponentMiddleware(log.ComponentHTTP)(h)
	h = log.Middleware(logger)(h)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and its background routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// Metrics returns request and security counters for diagnostics.
func (s *Server) Metrics() (trace.Metrics, security.DetectionMetrics, ratelimit.Metrics) {
	return s.tracer.GetMetrics(), s.detector.GetMetrics(), s.limiter.GetMetrics()
}
