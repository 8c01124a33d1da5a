package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tankarena/lobby-server/internal/middleware"
	"github.com/tankarena/lobby-server/internal/relay"
	"github.com/tankarena/lobby-server/internal/ws"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	Logger  *slog.Logger
	Session *relay.Session
}

// NewRouter creates the HTTP router. The websocket endpoint is the whole
// player surface; everything else is operational.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger, middleware.DefaultPanicHandler))
	r.Use(middleware.Logging(cfg.Logger))

	wsHandler := ws.NewHandler(cfg.Session, cfg.Logger)
	r.Handle("/ws", wsHandler).Methods(http.MethodGet)

	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
