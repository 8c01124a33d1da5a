package relay

import (
	"log/slog"
	"sync"

	"github.com/tankarena/lobby-server/internal/model"
)

// Sender queues one encoded frame for delivery to a connection. A Sender
// must not block: slow consumers drop frames rather than stall the caller.
type Sender interface {
	Send(message []byte) error
}

// Registry maps live connection handles to their outbound send handles.
// It is the single source of truth for connection liveness.
type Registry struct {
	mu     sync.RWMutex
	conns  map[model.ConnID]Sender
	logger *slog.Logger
}

// NewRegistry creates an empty Registry
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		conns:  make(map[model.ConnID]Sender),
		logger: logger.With(slog.String("component", "registry")),
	}
}

// Register adds a new live connection. Handles are collision-free by
// generation, so a duplicate indicates a caller bug.
func (r *Registry) Register(id model.ConnID, sender Sender) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[id]; ok {
		return model.ErrDuplicateConn
	}
	r.conns[id] = sender
	r.logger.Info("connection registered",
		slog.String("conn_id", string(id)),
		slog.Int("total", len(r.conns)))
	return nil
}

// Unregister removes a connection; a no-op if it is already gone
func (r *Registry) Unregister(id model.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[id]; !ok {
		return
	}
	delete(r.conns, id)
	r.logger.Info("connection unregistered",
		slog.String("conn_id", string(id)),
		slog.Int("total", len(r.conns)))
}

// Send delivers one message to one connection. ErrNotConnected is a
// best-effort miss: the peer may have disconnected concurrently.
func (r *Registry) Send(id model.ConnID, message []byte) error {
	r.mu.RLock()
	sender, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return model.ErrNotConnected
	}
	return sender.Send(message)
}

// ConnIDs returns a snapshot of all registered handles
func (r *Registry) ConnIDs() []model.ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]model.ConnID, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of live connections
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
