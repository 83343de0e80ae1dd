// Package httpapi expone el dashboard como API JSON.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alejandrodnm/nbaedge/internal/application/dashboard"
	"github.com/alejandrodnm/nbaedge/internal/domain"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const shutdownTimeout = 10 * time.Second

// Service es lo que la API necesita del dashboard.
type Service interface {
	Snapshot(ctx context.Context) (dashboard.Snapshot, error)
	Positions(ctx context.Context) ([]domain.Position, error)
	ScanLog(ctx context.Context) ([]domain.ScanLogEntry, error)
	TriggerScan(ctx context.Context) error
}

// Server envuelve el http.Server con apagado ordenado.
type Server struct {
	srv *http.Server
}

// NewRouter arma las rutas. metrics puede ser nil.
func NewRouter(svc Service, metrics http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	h := &handler{svc: svc}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/data", h.data)
		r.Post("/scan", h.scan)
		r.Get("/positions", h.positions)
		r.Get("/scan_log", h.scanLog)
	})
	return r
}

// New crea el servidor en addr.
func New(addr string, router http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}}
}

// Run sirve hasta que ctx se cancele y luego apaga con un plazo fijo.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http: listening", "addr", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("httpapi.Run: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http: graceful shutdown failed", "err", err)
		return s.srv.Close()
	}
	slog.Info("http: stopped")
	return nil
}

type handler struct {
	svc Service
}

type scanResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) data(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Snapshot(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not build snapshot", err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (h *handler) scan(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.TriggerScan(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, "could not schedule scan", err)
		return
	}
	respondJSON(w, http.StatusOK, scanResponse{OK: true, Message: "Scan manual programado"})
}

func (h *handler) positions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.svc.Positions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not load positions", err)
		return
	}
	respondJSON(w, http.StatusOK, positions)
}

func (h *handler) scanLog(w http.ResponseWriter, r *http.Request) {
	log, err := h.svc.ScanLog(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "could not load scan log", err)
		return
	}
	respondJSON(w, http.StatusOK, log)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("http: encode response", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		slog.Error("http: "+message, "err", err)
	}
	respondJSON(w, status, errorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

// requestLogger registra cada request con slog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}
