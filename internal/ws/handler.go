package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tankarena/lobby-server/internal/model"
	"github.com/tankarena/lobby-server/internal/relay"
)

// Handler upgrades HTTP requests to websocket connections and hands each
// one to the session coordinator under a fresh connection handle.
type Handler struct {
	session  *relay.Session
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a websocket upgrade handler. Origins are not
// restricted; game clients are not browsers.
func NewHandler(session *relay.Session, logger *slog.Logger) *Handler {
	return &Handler{
		session: session,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		h.logger.Warn("websocket upgrade failed",
			slog.String("remote", r.RemoteAddr),
			slog.Any("error", err))
		return
	}

	id := model.ConnID(uuid.NewString())
	client := NewClient(id, conn, h.session, h.logger)

	if err := h.session.Connect(id, client); err != nil {
		h.logger.Error("connection registration failed",
			slog.String("conn_id", string(id)),
			slog.Any("error", err))
		conn.Close()
		return
	}

	h.logger.Info("player connected",
		slog.String("conn_id", string(id)),
		slog.String("remote", r.RemoteAddr))

	go client.WritePump()
	client.ReadPump(r.Context())
}
