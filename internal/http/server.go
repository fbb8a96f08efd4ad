package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/channkenn/pta-kaikei/internal/core"
	"github.com/channkenn/pta-kaikei/internal/ledger"
	applog "github.com/channkenn/pta-kaikei/internal/log"
	"github.com/channkenn/pta-kaikei/internal/session"
	appweb "github.com/channkenn/pta-kaikei/web"
)

// ServiceProvider hands out a ledger service bound to login
// credentials. The credentials are only proven by the first read.
type ServiceProvider interface {
	ServiceFor(ctx context.Context, passcode, year string) (ledger.Service, error)
}

// EventSink receives ledger mutations after they have been accepted by
// the remote store. A nil sink disables event publishing.
type EventSink interface {
	RecordAppended(ctx context.Context, year string, rec core.Record)
	RecordDeleted(ctx context.Context, year string, rowNum int64)
}

type Server struct {
	http.Server
	templates  *template.Template
	provider   ServiceProvider
	sessions   *session.Store
	categories *core.CategorySet
	sink       EventSink

	rateLimiter *rateLimiter

	sessionSweep time.Duration
	stopSweep    chan struct{}
	shutdownOnce sync.Once
}

// Option configures optional server collaborators.
type Option func(*Server)

// WithEventSink wires a mutation event sink into the server.
func WithEventSink(sink EventSink) Option {
	return func(s *Server) { s.sink = sink }
}

// WithSessionSweepInterval overrides how often expired sessions are
// collected.
func WithSessionSweepInterval(d time.Duration) Option {
	return func(s *Server) { s.sessionSweep = d }
}

// NewServer configures routes and templates, returning a ready-to-run
// http.Server. It fails when the embedded templates do not parse;
// every page render depends on them.
func NewServer(addr string, provider ServiceProvider, sessions *session.Store, categories *core.CategorySet, opts ...Option) (*Server, error) {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		provider:     provider,
		sessions:     sessions,
		categories:   categories,
		rateLimiter:  newRateLimiter(),
		sessionSweep: 5 * time.Minute,
		stopSweep:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/login", s.withSecurityHeaders(s.handleLogin))
	mux.HandleFunc("/ledger", s.withSecurityHeaders(s.handleLedger))
	mux.HandleFunc("/records", s.withSecurityHeaders(s.handleCreateRecord))
	mux.HandleFunc("/records/delete", s.withSecurityHeaders(s.handleDeleteRecord))
	mux.HandleFunc("/report/summary", s.withSecurityHeaders(s.handleSummary))
	// UI partials
	mux.HandleFunc("/ui/records", s.withSecurityHeaders(s.handleRecordsPartial))
	mux.HandleFunc("/ui/selection-totals", s.withSecurityHeaders(s.handleSelectionTotals))

	go s.startSessionSweep()

	return s, nil
}

// startSessionSweep collects expired sessions on a fixed interval.
func (s *Server) startSessionSweep() {
	ticker := time.NewTicker(s.sessionSweep)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := s.sessions.CleanExpired(); removed > 0 {
				slog.Debug("Session cleanup completed", "removed", removed, "live", s.sessions.Size())
			}
		case <-s.stopSweep:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopSweep != nil {
			close(s.stopSweep)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request logging to responses
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering trusted proxies)
		clientIP := extractClientIP(r)

		// Honor an upstream request ID, otherwise mint one
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}

		logger := applog.FromContext(r.Context()).With(applog.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), requestIDContextKey, requestID)
		ctx = applog.IntoContext(ctx, logger)
		r = r.WithContext(ctx)
		w.Header().Set("X-Request-ID", requestID)

		logger.InfoContext(ctx, "Request started",
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Rate limit mutations, not reads
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		logger.InfoContext(ctx, "Request completed",
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type contextKey string

const requestIDContextKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
