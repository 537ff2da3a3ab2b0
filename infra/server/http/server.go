// Package httpserver hosts the service's HTTP surface: the websocket
// endpoint plus health and registry-stats probes.
package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/chatwire/realtime-service/internal/domain/registry"
	"github.com/chatwire/realtime-service/internal/handler/ws"
)

// NewRouter mounts the realtime endpoint and operational probes.
func NewRouter(logger *slog.Logger, wsHandler *ws.Handler, reg registry.Registrar) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(reg.Stats()); err != nil {
			logger.Error("encode stats", "error", err)
		}
	})

	r.Get("/ws", wsHandler.ServeHTTP)

	return r
}

// NewServer wraps the router in an http.Server. Read timeouts stay loose on
// purpose: /ws connections are long-lived and manage their own deadlines.
func NewServer(addr string, mux *chi.Mux) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
