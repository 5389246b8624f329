package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"

	"cassa/internal/cache"
	"cassa/internal/core"
	"cassa/internal/log"
	"cassa/internal/middleware/ratelimit"
	"cassa/internal/middleware/security"
	"cassa/internal/middleware/trace"
	"cassa/internal/services"
)

// SalesReader is the read side of the ledger the API exposes.
type SalesReader interface {
	ListSales(ctx context.Context) ([]core.Sale, error)
	Get(ctx context.Context, id string) (core.Sale, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options wires the server to its services.
type Options struct {
	Addr      string
	Inventory *services.Inventory
	Checkout  *services.Checkout
	Reports   *services.Reports
	Sales     SalesReader
	Store     Pinger
	Location  *time.Location
	Logger    *log.Logger

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
	SessionIdleTTL     time.Duration
	MaxSessions        int
	// SecureCookies marks the session cookie Secure; enable behind TLS.
	SecureCookies bool
	// SweepInterval is how often expired sessions and snapshots are dropped.
	SweepInterval time.Duration
}

type Server struct {
	http.Server
	inventory *services.Inventory
	checkout  *services.Checkout
	reports   *services.Reports
	sales     SalesReader
	store     Pinger
	loc       *time.Location

	sessions    *sessions
	janitor     *cache.Janitor
	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// The session janitor starts immediately; Shutdown stops it.
func NewServer(opts Options) (*Server, error) {
	if opts.Inventory == nil || opts.Checkout == nil || opts.Reports == nil || opts.Sales == nil {
		return nil, errors.New("http: inventory, checkout, reports and sales are required")
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = log.FromContext(context.Background())
	}
	if opts.SessionIdleTTL <= 0 {
		opts.SessionIdleTTL = 30 * time.Minute
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 1000
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}

	detector, err := security.NewDetector(nil)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	s := &Server{
		inventory: opts.Inventory,
		checkout:  opts.Checkout,
		reports:   opts.Reports,
		sales:     opts.Sales,
		store:     opts.Store,
		loc:       opts.Location,
		sessions:  newSessions(opts.MaxSessions, opts.SessionIdleTTL, opts.SecureCookies),
		janitor:   cache.NewJanitor(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerSecond: opts.RateLimitRPS,
			Burst:             opts.RateLimitBurst,
		}),
		tracer: trace.NewMiddleware(opts.Logger, detector.ClientIP),
	}

	s.routes(mux)

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(detector.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded, try again later").Write(w)
	})(handler)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = detector.Middleware(handler)
	handler = corsHandler(opts.CORSAllowedOrigins).Handler(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.janitor.Register("sessions", s.sessions.carts)
	s.janitor.Register("reports", s.reports.Cache())
	s.janitor.Start(opts.SweepInterval)
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/items", s.handleListItems)
	mux.HandleFunc("POST /api/items", s.handleAddItem)
	mux.HandleFunc("POST /api/items/import", s.handleImportItems)
	mux.HandleFunc("DELETE /api/items/{name}", s.handleDeleteItem)

	mux.HandleFunc("GET /api/cart", s.handleGetCart)
	mux.HandleFunc("POST /api/cart/lines", s.handleAddCartLine)
	mux.HandleFunc("DELETE /api/cart", s.handleClearCart)
	mux.HandleFunc("POST /api/cart/checkout", s.handleCheckout)

	mux.HandleFunc("GET /api/sales", s.handleListSales)
	mux.HandleFunc("GET /api/sales/{id}/receipt", s.handleReceipt)

	mux.HandleFunc("GET /api/reports", s.handleReports)
	mux.HandleFunc("GET /api/reports/{view}", s.handleReportView)
}

func corsHandler(origins []string) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", trace.HeaderRequestID},
		ExposedHeaders:   []string{trace.HeaderRequestID, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           600,
	})
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.janitor.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// fail writes the error envelope for err, logging system failures.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	resp, userErr := FromError(err)
	logger := log.FromContext(r.Context())
	if userErr {
		logger.DebugContext(r.Context(), "Request rejected", log.FieldOperation, op, log.FieldError, err)
	} else {
		logger.ErrorContext(r.Context(), "Request failed", log.FieldOperation, op, log.FieldError, err)
	}
	resp.Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("storage unavailable"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
