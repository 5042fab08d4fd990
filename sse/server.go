// Package sse exposes the per-user push stream over text/event-stream.
package sse

import (
	_ "embed"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/PY0226H/aicomm/auth"
	"github.com/PY0226H/aicomm/domain"
	"github.com/PY0226H/aicomm/observability"
	"github.com/PY0226H/aicomm/runtime"
)

//go:embed index.html
var indexHTML []byte

// Server holds everything a connection handler needs: the verification key,
// the channel registry, and the metrics. All fields are set once at startup.
type Server struct {
	log       *slog.Logger
	dk        auth.DecodingKey
	registry  *runtime.Registry
	metrics   *observability.Metrics
	keepAlive time.Duration
}

func NewServer(log *slog.Logger, dk auth.DecodingKey, registry *runtime.Registry,
	metrics *observability.Metrics, keepAlive time.Duration) *Server {
	return &Server{
		log:       log,
		dk:        dk,
		registry:  registry,
		metrics:   metrics,
		keepAlive: keepAlive,
	}
}

// Verify implements contract.TokenVerifier so the auth gate can stay
// ignorant of where this service keeps its key.
func (s *Server) Verify(token string) (domain.User, error) {
	return s.dk.Verify(token)
}

// Router wires the HTTP surface: the event stream behind the auth gate,
// plus the unauthenticated test page, liveness and metrics endpoints.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	gate := auth.Middleware(s.log, s)
	r.Handle("/events", gate(http.HandlerFunc(s.handleEvents))).Methods(http.MethodGet)
	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
