package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/tankarena/lobby-server/internal/model"
	"github.com/tankarena/lobby-server/internal/protocol"
	"github.com/tankarena/lobby-server/internal/services/room"
)

// Session is the coordinator: it dispatches each decoded inbound message
// to a room lifecycle operation and emits the resulting notifications.
// All room-mutating dispatch is serialized through one mutex, so every
// lifecycle operation is a single atomic step relative to its peers.
type Session struct {
	rooms       room.ControllerInterface
	registry    *Registry
	broadcaster *Broadcaster
	logger      *slog.Logger

	// mu serializes room/directory mutations across connections
	mu sync.Mutex
}

// NewSession creates a Session over the given controller and registry
func NewSession(rooms room.ControllerInterface, registry *Registry, logger *slog.Logger) *Session {
	return &Session{
		rooms:       rooms,
		registry:    registry,
		broadcaster: NewBroadcaster(registry, logger),
		logger:      logger.With(slog.String("component", "session")),
	}
}

// Connect registers a new live connection with the coordinator
func (s *Session) Connect(conn model.ConnID, sender Sender) error {
	return s.registry.Register(conn, sender)
}

// Disconnect tears a connection down: it is removed from the registry
// first so in-flight fan-outs skip it, then the leave transition runs.
// Safe to invoke redundantly; the second call finds nothing to do.
func (s *Session) Disconnect(ctx context.Context, conn model.ConnID) {
	s.registry.Unregister(conn)

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.rooms.Leave(ctx, conn)
	if err != nil {
		if !errors.Is(err, model.ErrNotInRoom) {
			s.logger.Error("disconnect teardown failed",
				slog.String("conn_id", string(conn)),
				slog.Any("error", err))
		}
		return
	}

	if result.Room != nil {
		s.broadcastToRoom(result.Room, protocol.NewPlayerLeft(result.PlayerID, len(result.Room.Players)))
	}
	s.broadcastRoomList(ctx)
}

// HandleMessage dispatches one inbound frame from a connection. Errors
// are reported to the sender only; the connection always stays open.
func (s *Session) HandleMessage(ctx context.Context, conn model.ConnID, raw []byte) {
	msg, err := protocol.Decode(raw)
	if err != nil {
		s.sendTo(conn, protocol.NewError(err.Error()))
		return
	}

	switch m := msg.(type) {
	case protocol.CreateRoom:
		s.handleCreateRoom(ctx, conn, m)
	case protocol.JoinRoom:
		s.handleJoinRoom(ctx, conn, m)
	case protocol.GetRoomList:
		s.handleGetRoomList(ctx, conn)
	case protocol.ReadyUp:
		s.handleReadyUp(ctx, conn)
	case protocol.StartGame:
		s.handleStartGame(ctx, conn)
	case protocol.GameUpdate:
		s.handleGameUpdate(ctx, conn, m)
	}
}

func (s *Session) handleCreateRoom(ctx context.Context, conn model.ConnID, msg protocol.CreateRoom) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.rooms.CreateRoom(ctx, conn, room.CreateParams{
		Name:         msg.Name,
		Password:     msg.Password,
		MaxPlayers:   msg.MaxPlayers,
		Stage:        msg.Stage,
		FriendlyFire: msg.FriendlyFire,
		PlayerName:   msg.PlayerName,
	})
	if err != nil {
		s.sendTo(conn, protocol.NewError(err.Error()))
		return
	}

	s.sendTo(conn, protocol.NewRoomCreated(created.ID))
	s.broadcastRoomList(ctx)
}

func (s *Session) handleJoinRoom(ctx context.Context, conn model.ConnID, msg protocol.JoinRoom) {
	s.mu.Lock()
	defer s.mu.Unlock()

	joined, err := s.rooms.JoinRoom(ctx, conn, model.RoomID(msg.RoomID), msg.Password, msg.PlayerName)
	if err != nil {
		s.sendTo(conn, protocol.NewJoinRoomError(err.Error()))
		return
	}

	s.sendTo(conn, protocol.NewRoomJoined(joined))

	joiner := joined.GetPlayer(conn)
	if joiner != nil {
		s.broadcastToRoom(joined, protocol.NewPlayerJoined(*joiner, len(joined.Players)), conn)
	}
	s.broadcastRoomList(ctx)
}

func (s *Session) handleGetRoomList(ctx context.Context, conn model.ConnID) {
	// Listing reads the same room state the mutating handlers write; the
	// memory backend hands out shared pointers, so reads serialize too
	s.mu.Lock()
	defer s.mu.Unlock()

	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		s.sendTo(conn, protocol.NewError(err.Error()))
		return
	}
	s.sendTo(conn, protocol.NewRoomList(rooms))
}

func (s *Session) handleReadyUp(ctx context.Context, conn model.ConnID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.rooms.ToggleReady(ctx, conn)
	if err != nil {
		s.sendTo(conn, protocol.NewError(err.Error()))
		return
	}

	// Everyone in the room, toggler included, sees the new tally
	s.broadcastToRoom(status.Room, protocol.NewPlayerReady(
		status.PlayerID, status.IsReady, status.ReadyCount, status.TotalCount))

	if status.CanStart {
		s.broadcastToRoom(status.Room, protocol.NewAllReady())
	}
}

func (s *Session) handleStartGame(ctx context.Context, conn model.ConnID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started, err := s.rooms.StartGame(ctx, conn)
	if err != nil {
		s.sendTo(conn, protocol.NewStartGameError(err.Error()))
		return
	}

	s.broadcastToRoom(started, protocol.NewGameStarted(started))
	s.broadcastRoomList(ctx)
}

func (s *Session) handleGameUpdate(ctx context.Context, conn model.ConnID, msg protocol.GameUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.rooms.RoomForRelay(ctx, conn)
	if err != nil {
		s.sendTo(conn, protocol.NewError(err.Error()))
		return
	}

	// Relay the frame byte-for-byte, excluding the sender
	s.broadcaster.ToRoom(target, msg.Raw, conn)
}

// broadcastRoomList pushes the current joinable-room snapshot to every
// connection. Called after every membership or lifecycle change; staleness
// by one event is acceptable since the next change re-broadcasts.
func (s *Session) broadcastRoomList(ctx context.Context) {
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		s.logger.Error("room list broadcast failed", slog.Any("error", err))
		return
	}
	if data := s.encode(protocol.NewRoomList(rooms)); data != nil {
		s.broadcaster.All(data)
	}
}

func (s *Session) broadcastToRoom(r *model.Room, msg any, exclude ...model.ConnID) {
	if data := s.encode(msg); data != nil {
		s.broadcaster.ToRoom(r, data, exclude...)
	}
}

func (s *Session) sendTo(conn model.ConnID, msg any) {
	data := s.encode(msg)
	if data == nil {
		return
	}
	if err := s.registry.Send(conn, data); err != nil {
		// Best-effort: the peer may have just disconnected
		s.logger.Debug("unicast miss",
			slog.String("conn_id", string(conn)),
			slog.Any("error", err))
	}
}

func (s *Session) encode(msg any) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("outbound encode failed", slog.Any("error", err))
		return nil
	}
	return data
}
