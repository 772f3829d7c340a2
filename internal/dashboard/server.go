// Package dashboard implements the Dashboard Bridge: a WebSocket fan-out
// of Event Bus traffic plus an HTTP hook ingress for external processes to
// notify state changes, serving a single local project's dashboard tab.
package dashboard

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/ccwio/ccw/internal/config"
	"github.com/ccwio/ccw/internal/cwlog"
	_ "github.com/ccwio/ccw/internal/dashboard/docs" // swagger docs
	"github.com/ccwio/ccw/internal/eventbus"
	"github.com/ccwio/ccw/internal/store"
)

// @title ccw Dashboard Bridge API
// @version 1.0
// @description Read-only status endpoints and WebSocket ticket issuance for the ccw dashboard.
// @host localhost:8784
// @BasePath /

// Config configures the dashboard bridge's HTTP server.
type Config struct {
	Host        string
	Port        int
	Quiet       bool
	ProjectRoot string
	// Token, when non-empty, requires a matching bearer token on every
	// request except the ticket-authenticated /ws upgrade and /metrics.
	Token string
	// AllowedOrigins lists origins the browser dashboard may connect from.
	// Same-origin requests are always allowed regardless of this list.
	AllowedOrigins []string
}

// Server is the dashboard bridge HTTP/WebSocket server.
type Server struct {
	config    Config
	store     *store.Store
	bus       *eventbus.Bus
	tickets   *TicketStore
	router    chi.Router
	startedAt time.Time
}

// NewServer creates a dashboard Server bound to s and bus.
func NewServer(cfg Config, s *store.Store, bus *eventbus.Bus) *Server {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}

	srv := &Server{
		config:    cfg,
		store:     s,
		bus:       bus,
		tickets:   NewTicketStore(),
		startedAt: time.Now(),
	}
	srv.router = srv.setupRouter()
	return srv
}

func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	if !s.config.Quiet {
		r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: stdLogWriter{}}))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if s.config.Token != "" {
		cwlog.Log.Info("dashboard: bearer auth enabled")
		r.Use(bearerAuth(s.config.Token))
	} else {
		cwlog.Log.Warn("dashboard: running without authentication")
	}

	r.Get("/ws", s.handleWS)
	r.Post("/api/hook", s.handleHook)
	r.Post("/api/ws/ticket", s.handleIssueTicket)
	r.Get("/api/status/all", s.handleStatusAll)
	r.Get("/api/session-detail", s.handleSessionDetail)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	return r
}

// ListenAndServe starts the HTTP server and blocks until ctx is canceled
// or an unrecoverable error occurs.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if existing := config.FindInstanceByPort(s.config.Port); existing != nil {
		return fmt.Errorf("port %d is already in use by ccw %s (PID %d, started %s)",
			s.config.Port, existing.Type, existing.PID, existing.StartedAt.Format(time.RFC3339))
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	if s.config.Port == 0 {
		s.config.Port = ln.Addr().(*net.TCPAddr).Port
	}

	inst := config.Instance{
		Type:        config.InstanceDashboard,
		PID:         os.Getpid(),
		Port:        s.config.Port,
		Host:        s.config.Host,
		ProjectRoot: s.config.ProjectRoot,
		Token:       s.config.Token,
		StartedAt:   time.Now(),
	}
	if err := config.RegisterInstance(inst); err != nil {
		cwlog.Log.Warn("dashboard: failed to register instance", "error", err)
	}

	go s.tickets.runCleanup(ctx)

	httpServer := &http.Server{Handler: s.router}

	go func() {
		<-ctx.Done()
		config.UnregisterInstance(os.Getpid())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		cwlog.Log.Info("dashboard: shutting down")
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	cwlog.Log.Info("dashboard: listening", "addr", ln.Addr().String())
	err = httpServer.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// bearerAuth returns middleware that validates a bearer token using
// constant-time comparison. The WebSocket upgrade and metrics endpoints are
// exempt: /ws authenticates via redeemable ticket instead, and /metrics is
// meant for a local scrape target.
func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/ws" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="ccw-dashboard"`)
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing or malformed Authorization header")
				return
			}
			if subtle.ConstantTimeCompare([]byte(auth[len(prefix):]), []byte(token)) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Addr returns the configured host:port, independent of an actual listen.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// @Summary Issue a WebSocket auth ticket
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/ws/ticket [post]
func (s *Server) handleIssueTicket(w http.ResponseWriter, r *http.Request) {
	ticket := s.tickets.Issue()
	writeJSON(w, http.StatusOK, map[string]string{"ticket": ticket})
}

// @Summary List all sessions
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 500 {object} map[string]string
// @Router /api/status/all [get]
func (s *Server) handleStatusAll(w http.ResponseWriter, r *http.Request) {
	results, err := s.store.List(store.ListAll, true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": results})
}

// @Summary Read session content
// @Produce json
// @Param sessionId query string true "session id"
// @Param type query string true "content type"
// @Success 200 {object} any
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/session-detail [get]
func (s *Server) handleSessionDetail(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	kind := r.URL.Query().Get("type")
	if sessionID == "" || kind == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "sessionId and type are required")
		return
	}

	contentType, params, err := contentTypeForDetail(kind, r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	data, sErr := s.store.Read(sessionID, contentType, params)
	if sErr != nil {
		writeError(w, http.StatusNotFound, "not_found", sErr.Error())
		return
	}

	var parsed any
	if json.Unmarshal(data, &parsed) != nil {
		parsed = string(data)
	}
	writeJSON(w, http.StatusOK, parsed)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"error": code, "message": msg})
}

// stdLogWriter routes chi's access log through cwlog instead of stdout.
type stdLogWriter struct{}

func (stdLogWriter) Print(v ...any) {
	cwlog.Log.Info(fmt.Sprint(v...))
}
