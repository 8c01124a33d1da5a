package relay

import (
	"errors"
	"log/slog"

	"github.com/tankarena/lobby-server/internal/model"
)

// Broadcaster fans one message out to a recipient set via the Registry.
// Every delivery is independent: a miss for one recipient never prevents
// delivery to the others, and misses are swallowed, not surfaced.
type Broadcaster struct {
	registry *Registry
	logger   *slog.Logger
}

// NewBroadcaster creates a Broadcaster over the given registry
func NewBroadcaster(registry *Registry, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		registry: registry,
		logger:   logger.With(slog.String("component", "broadcaster")),
	}
}

// ToRoom delivers a message to every member of a room except the excluded
// handles (typically the sender)
func (b *Broadcaster) ToRoom(room *model.Room, message []byte, exclude ...model.ConnID) {
	excluded := make(map[model.ConnID]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	for i := range room.Players {
		id := room.Players[i].ID
		if excluded[id] {
			continue
		}
		b.send(id, message)
	}
}

// All delivers a message to every registered connection
func (b *Broadcaster) All(message []byte) {
	for _, id := range b.registry.ConnIDs() {
		b.send(id, message)
	}
}

func (b *Broadcaster) send(id model.ConnID, message []byte) {
	if err := b.registry.Send(id, message); err != nil {
		if errors.Is(err, model.ErrNotConnected) {
			// Peer disconnected concurrently; best-effort miss
			b.logger.Debug("skipped disconnected recipient", slog.String("conn_id", string(id)))
			return
		}
		b.logger.Warn("fan-out delivery failed",
			slog.String("conn_id", string(id)),
			slog.Any("error", err))
	}
}
