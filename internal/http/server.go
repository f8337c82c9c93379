// Package http serves the FinApp screens as server-rendered pages.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codingniket/FinApp/internal/amqp"
	"github.com/codingniket/FinApp/internal/api"
	"github.com/codingniket/FinApp/internal/core"
	"github.com/codingniket/FinApp/internal/identity"
	"github.com/codingniket/FinApp/internal/ledger"
	applog "github.com/codingniket/FinApp/internal/log"
	"github.com/codingniket/FinApp/internal/middleware/ratelimit"
	"github.com/codingniket/FinApp/internal/middleware/security"
	"github.com/codingniket/FinApp/internal/middleware/trace"
	appweb "github.com/codingniket/FinApp/web"
)

// WalletAPI is the part of the wallet client the screens use.
type WalletAPI interface {
	ledger.TransactionsAPI
	ledger.RecentAPI
	CreateTransaction(ctx context.Context, req api.CreateTransactionRequest) (core.Transaction, error)
	AskAI(ctx context.Context, question string) (string, error)
	Ping(ctx context.Context) error
}

// Options wires the server to its collaborators. Publisher and Registry
// are optional.
type Options struct {
	Addr               string
	Wallet             WalletAPI
	Identity           identity.Provider
	Publisher          amqp.Publisher
	Logger             *applog.Logger
	Registry           *prometheus.Registry
	RateLimitPerMinute int
	SessionTTL         time.Duration
}

type Server struct {
	http.Server
	templates *template.Template
	wallet    WalletAPI
	identity  identity.Provider
	publisher amqp.Publisher
	logger    *applog.Logger
	events    *applog.StructuredLogger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	sessionTTL time.Duration
	started    time.Time

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and builds the handler chain.
func NewServer(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = 720 * time.Hour
	}

	detector := security.NewDetector()
	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		templates:        tmpl,
		wallet:           opts.Wallet,
		identity:         opts.Identity,
		publisher:        opts.Publisher,
		logger:           logger,
		events:           applog.NewStructuredLogger(logger),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP, logger),
		sessionTTL:       ttl,
		started:          time.Now(),
	}

	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if err := s.registerMetrics(registry); err != nil {
		return nil, err
	}

	s.Handler = s.routes(registry)
	return s, nil
}

func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

func (s *Server) routes(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()

	staticFS, err := fs.Sub(appweb.StaticFS, "static")
	if err == nil {
		static := security.StaticAssetMiddleware(86400)(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
		mux.Handle("GET /static/", static)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /sign-in", s.redirectSignedIn(s.handleSignInForm))
	mux.HandleFunc("POST /sign-in", s.handleSignIn)
	mux.HandleFunc("GET /sign-up", s.redirectSignedIn(s.handleSignUpForm))
	mux.HandleFunc("POST /sign-up", s.handleSignUp)
	mux.HandleFunc("POST /sign-up/verify", s.handleVerify)
	mux.HandleFunc("POST /sign-out", s.handleSignOut)

	mux.HandleFunc("GET /{$}", s.requireUser(s.handleHome))
	mux.HandleFunc("POST /transactions/{id}/delete", s.requireUser(s.handleDeleteTransaction))
	mux.HandleFunc("GET /create", s.requireUser(s.handleCreateForm))
	mux.HandleFunc("POST /create", s.requireUser(s.handleCreateTransaction))
	mux.HandleFunc("GET /trend", s.requireUser(s.handleTrend))
	mux.HandleFunc("GET /ask", s.requireUser(s.handleAskForm))
	mux.HandleFunc("POST /ask", s.requireUser(s.handleAsk))

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.handleRateLimited, http.MethodPost)(handler)
	handler = s.detectSuspicious(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = applog.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(handler)
	handler = applog.Middleware(s.logger)(handler)
	handler = s.traceMiddleware.Middleware(handler)
	return handler
}

func (s *Server) registerMetrics(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "finapp_http_requests_total",
			Help: "HTTP requests served.",
		}, func() float64 { return float64(s.traceMiddleware.GetMetrics().TotalRequests) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "finapp_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter.",
		}, func() float64 { return float64(s.rateLimiter.GetMetrics().TotalHits) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "finapp_rate_limit_clients",
			Help: "Clients tracked by the rate limiter.",
		}, func() float64 { return float64(s.rateLimiter.ActiveClients()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "finapp_suspicious_requests_total",
			Help: "Requests matching known probe patterns.",
		}, func() float64 { return float64(s.securityDetector.GetMetrics().SuspiciousRequests) }),
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
	}
	return nil
}

func (s *Server) detectSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.securityDetector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "Suspicious request",
				applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
				applog.FieldPath, r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	w.Header().Set("Retry-After", "60")
	http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
