package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/redistore"
	"github.com/aretw0/redistore/internal/logging"
	"github.com/aretw0/redistore/pkg/domain"
	"github.com/aretw0/redistore/pkg/lease"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultProbeTTL = 5 * time.Second

// Store is the subset of redistore.Store served over HTTP.
type Store interface {
	Ping(ctx context.Context) error
	SetTimeout(ctx context.Context, namespace, key string, ttl time.Duration) error
	CreateLease(ttl time.Duration) lease.Func
}

// Server exposes health, metrics, timer arming and lease probing.
type Server struct {
	Store  Store
	Logger *slog.Logger
}

// NewHandler creates the admin HTTP handler. gatherer backs /metrics; nil
// uses the default Prometheus registry.
func NewHandler(store Store, gatherer prometheus.Gatherer, logger *slog.Logger) (http.Handler, *Server) {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		Store:  store,
		Logger: logger,
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.Health)
	r.Get("/info", s.Info)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Put("/timers/{namespace}/{key}", s.ArmTimer)
	r.Post("/leases/{key}/probe", s.ProbeLease)
	return r, s
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Ping(r.Context()); err != nil {
		s.Logger.Warn("Health check failed", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Info handles GET /info.
func (s *Server) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "redistore",
		"version": redistore.Version,
	})
}

// ArmTimer handles PUT /timers/{namespace}/{key}?ttl=1500ms.
// A bare integer ttl is read as milliseconds.
func (s *Server) ArmTimer(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	key := chi.URLParam(r, "key")

	ttl, err := parseTTL(r.URL.Query().Get("ttl"), 0)
	if err != nil || ttl <= 0 {
		http.Error(w, "ttl must be a positive duration", http.StatusBadRequest)
		return
	}

	err = s.Store.SetTimeout(r.Context(), namespace, key, ttl)
	var cfgErr *domain.ConfigError
	if errors.As(err, &cfgErr) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		s.Logger.Error("Failed to arm timer", "namespace", namespace, "key", key, "err", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ProbeLease handles POST /leases/{key}/probe?ttl=5s. It acquires the lease
// and releases it right away.
func (s *Server) ProbeLease(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	ttl, err := parseTTL(r.URL.Query().Get("ttl"), defaultProbeTTL)
	if err != nil || ttl <= 0 {
		http.Error(w, "ttl must be a positive duration", http.StatusBadRequest)
		return
	}

	release, err := s.Store.CreateLease(ttl)(r.Context(), key)
	switch {
	case errors.Is(err, domain.ErrAlreadyLeased):
		writeJSON(w, http.StatusConflict, map[string]string{"key": key, "status": "leased"})
		return
	case err != nil:
		s.Logger.Error("Lease probe failed", "key", key, "err", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"key": key, "status": "error", "error": err.Error()})
		return
	}

	if err := release(r.Context()); err != nil {
		s.Logger.Warn("Failed to release probe lease (will expire via TTL)", "key", key, "err", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "status": "free"})
}

func parseTTL(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
