package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/RowanDark/cipherlab/internal/crack"
	"github.com/RowanDark/cipherlab/internal/logging"
	"github.com/RowanDark/cipherlab/internal/observability/metrics"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Config configures the REST API server.
type Config struct {
	Addr string
	// AuthToken, when set, must be presented as a bearer token on /api/*.
	AuthToken string
	Crack     *crack.Service
	Audit     *logging.AuditLogger
	Logger    *slog.Logger
}

// Server exposes the cipher and cracking operations over HTTP.
type Server struct {
	cfg        Config
	httpServer *http.Server
	crack      *crack.Service
	audit      *logging.AuditLogger
	logger     *slog.Logger
	token      string
}

// NewServer constructs a REST API server using the provided configuration.
func NewServer(cfg Config) (*Server, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("api address must be provided")
	}
	svc := cfg.Crack
	if svc == nil {
		svc = crack.NewService(crack.WithAuditLogger(cfg.Audit), crack.WithLogger(cfg.Logger))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:    cfg,
		crack:  svc,
		audit:  cfg.Audit,
		logger: logger,
		token:  strings.TrimSpace(cfg.AuthToken),
	}, nil
}

// Handler returns the routed handler, wrapped for HTTP/2 cleartext.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.route(mux, "/healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	s.route(mux, "/metrics", metrics.Handler())

	s.route(mux, "/api/v1/cipher/encrypt", s.requireToken(http.HandlerFunc(s.handleEncrypt)))
	s.route(mux, "/api/v1/cipher/decrypt", s.requireToken(http.HandlerFunc(s.handleDecrypt)))
	s.route(mux, "/api/v1/cipher/pipeline", s.requireToken(http.HandlerFunc(s.handlePipeline)))
	s.route(mux, "/api/v1/cipher/operations", s.requireToken(http.HandlerFunc(s.handleListOperations)))
	s.route(mux, "/api/v1/cipher/detect", s.requireToken(http.HandlerFunc(s.handleDetect)))

	s.route(mux, "/api/v1/crack/caesar", s.requireToken(http.HandlerFunc(s.handleCrackCaesar)))
	s.route(mux, "/api/v1/crack/vigenere", s.requireToken(http.HandlerFunc(s.handleCrackVigenere)))
	s.route(mux, "/api/v1/crack/railfence", s.requireToken(http.HandlerFunc(s.handleCrackRailFence)))

	s.route(mux, "/api/vigenere/decrypt", s.requireToken(http.HandlerFunc(s.handleLegacyVigenereDecrypt)))
	s.route(mux, "/api/vigenere/crack", s.requireToken(http.HandlerFunc(s.handleLegacyVigenereCrack)))

	return h2c.NewHandler(s.withRequestID(mux), &http2.Server{})
}

// Run listens on the configured address and serves until ctx is cancelled or
// a fatal error occurs.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("http api listening", slog.String("addr", ln.Addr().String()))
	_ = s.audit.Emit(logging.AuditEvent{
		EventType: logging.EventServerLifecycle,
		Decision:  logging.DecisionInfo,
		Reason:    "http api started",
		Metadata:  map[string]any{"addr": ln.Addr().String()},
	})

	errCh := make(chan error, 1)
	go func() {
		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		_ = s.httpServer.Shutdown(shutdownCtx)
		_ = s.audit.Emit(logging.AuditEvent{
			EventType: logging.EventServerLifecycle,
			Decision:  logging.DecisionInfo,
			Reason:    "http api stopped",
		})
		return <-errCh
	case err := <-errCh:
		return err
	}
}

// route registers h under pattern and records request metrics labelled with
// the pattern rather than the raw path.
func (s *Server) route(mux *http.ServeMux, pattern string, h http.Handler) {
	mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)
		metrics.ObserveHTTPRequest(pattern, rec.status, time.Since(start))
		s.logger.LogAttrs(r.Context(), slog.LevelDebug, "http request",
			slog.String("method", r.Method),
			slog.String("route", pattern),
			slog.Int("status", rec.status),
			slog.String("request_id", logging.RequestIDFromContext(r.Context())),
			slog.Duration("elapsed", time.Since(start)))
	}))
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.ContextWithRequestID(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode response", slog.Any("error", err))
	}
}
