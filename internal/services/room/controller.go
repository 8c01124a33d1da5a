package room

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"golang.org/x/crypto/bcrypt"

	"github.com/tankarena/lobby-server/internal/dependencies/clock"
	"github.com/tankarena/lobby-server/internal/dependencies/random"
	"github.com/tankarena/lobby-server/internal/model"
	"github.com/tankarena/lobby-server/internal/storage"
)

const (
	// RoomIDLength is the length of generated room ids
	RoomIDLength = 6
	// RoomIDAlphabet is the characters used in room ids (avoid confusing chars)
	RoomIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Config holds the lifecycle policy knobs
type Config struct {
	// MinPlayersToStart is the member count required before the host may
	// start. 1 permits solo sessions; 2 enforces the stricter variant.
	MinPlayersToStart int

	// Palette is the set of colors assignable to members. Its size bounds
	// room capacity.
	Palette []model.Color
}

// DefaultConfig returns the default lifecycle policy
func DefaultConfig() Config {
	return Config{
		MinPlayersToStart: 1,
		Palette:           model.DefaultPalette,
	}
}

// Controller owns the room state machine: all membership, readiness and
// start transitions go through it. Callers are expected to serialize
// room-mutating operations (the session coordinator does).
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	cfg     Config
	logger  *slog.Logger
}

// NewController creates a new room Controller
func NewController(
	storage storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	if cfg.MinPlayersToStart < 1 {
		cfg.MinPlayersToStart = 1
	}
	if len(cfg.Palette) == 0 {
		cfg.Palette = model.DefaultPalette
	}
	return &Controller{
		storage: storage,
		clock:   clk,
		random:  rnd,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "room")),
	}
}

// MaxCapacity returns the largest room capacity the palette can serve
func (c *Controller) MaxCapacity() int {
	return len(c.cfg.Palette)
}

// CreateParams holds the fields of a create_room request
type CreateParams struct {
	Name         string
	Password     string
	MaxPlayers   int
	Stage        string
	FriendlyFire bool
	PlayerName   string
}

// CreateRoom creates a room with the given connection as creator and host.
// The creator always takes the first palette color.
func (c *Controller) CreateRoom(ctx context.Context, conn model.ConnID, params CreateParams) (*model.Room, error) {
	if _, err := c.storage.GetMemberRoom(ctx, conn); err == nil {
		return nil, model.ErrAlreadyInRoom
	}
	if params.MaxPlayers > len(c.cfg.Palette) {
		// Palette must cover capacity so joins can always be colored
		return nil, model.ErrNoColorAvailable
	}

	var passwordHash string
	if params.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		passwordHash = string(hash)
	}

	// Generate unique room id
	var id model.RoomID
	for {
		id = model.RoomID(c.random.String(RoomIDLength, RoomIDAlphabet))
		exists, err := c.storage.RoomExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	now := c.clock.Now()
	room := &model.Room{
		ID:           id,
		Name:         params.Name,
		PasswordHash: passwordHash,
		MaxPlayers:   params.MaxPlayers,
		Stage:        params.Stage,
		FriendlyFire: params.FriendlyFire,
		HostID:       conn,
		Players: []model.Player{
			{
				ID:       conn,
				Name:     params.PlayerName,
				Color:    c.cfg.Palette[0],
				JoinedAt: now,
			},
		},
		Started:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	if err := c.storage.SetMemberRoom(ctx, conn, id); err != nil {
		// Unwind the room so the two indexes stay consistent; the creator
		// is its only member
		if delErr := c.storage.DeleteRoom(ctx, id); delErr != nil {
			c.logger.Warn("orphaned room after failed index write",
				slog.String("room_id", string(id)),
				slog.Any("error", delErr))
		}
		return nil, err
	}

	c.logger.Info("room created",
		slog.String("room_id", string(id)),
		slog.String("host", string(conn)),
		slog.Int("max_players", params.MaxPlayers))

	return room, nil
}

// JoinRoom adds a connection to an existing room, assigning it the first
// palette color not already in use among current members
func (c *Controller) JoinRoom(ctx context.Context, conn model.ConnID, roomID model.RoomID, password, playerName string) (*model.Room, error) {
	if _, err := c.storage.GetMemberRoom(ctx, conn); err == nil {
		return nil, model.ErrAlreadyInRoom
	}

	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if room.PasswordRequired() {
		if bcrypt.CompareHashAndPassword([]byte(room.PasswordHash), []byte(password)) != nil {
			return nil, model.ErrWrongPassword
		}
	}
	if room.Started {
		return nil, model.ErrAlreadyStarted
	}
	if room.IsFull() {
		return nil, model.ErrRoomFull
	}

	color, err := c.pickColor(room)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	room.Players = append(room.Players, model.Player{
		ID:       conn,
		Name:     playerName,
		Color:    color,
		JoinedAt: now,
	})
	room.UpdatedAt = now

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	if err := c.storage.SetMemberRoom(ctx, conn, roomID); err != nil {
		// Unwind the membership so the joiner is not a ghost occupying a
		// slot no handle can release
		room.RemovePlayer(conn)
		if saveErr := c.storage.SaveRoom(ctx, room); saveErr != nil {
			c.logger.Warn("ghost member after failed index write",
				slog.String("room_id", string(roomID)),
				slog.String("conn_id", string(conn)),
				slog.Any("error", saveErr))
		}
		return nil, err
	}

	return room, nil
}

// pickColor returns the first palette color not in use in the room
func (c *Controller) pickColor(room *model.Room) (model.Color, error) {
	used := room.UsedColors()
	for _, color := range c.cfg.Palette {
		if !used[color] {
			return color, nil
		}
	}
	return "", model.ErrNoColorAvailable
}

// ReadyStatus describes the room's readiness after a toggle
type ReadyStatus struct {
	Room       *model.Room
	PlayerID   model.ConnID
	IsReady    bool
	ReadyCount int
	TotalCount int
	// CanStart is true when the toggle completed the room's readiness
	CanStart bool
}

// ToggleReady flips the ready flag of the member with the given handle.
// A started room permits only leave and relay, so toggles fail with
// ErrAlreadyStarted once the session is underway.
func (c *Controller) ToggleReady(ctx context.Context, conn model.ConnID) (*ReadyStatus, error) {
	room, err := c.roomForConn(ctx, conn)
	if err != nil {
		return nil, err
	}

	if room.Started {
		return nil, model.ErrAlreadyStarted
	}

	player := room.GetPlayer(conn)
	if player == nil {
		return nil, model.ErrNotInRoom
	}

	player.IsReady = !player.IsReady
	room.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	return &ReadyStatus{
		Room:       room,
		PlayerID:   conn,
		IsReady:    player.IsReady,
		ReadyCount: room.ReadyCount(),
		TotalCount: len(room.Players),
		CanStart:   c.CanStart(room),
	}, nil
}

// CanStart reports whether the room satisfies the start policy: every
// member ready and at least MinPlayersToStart members present
func (c *Controller) CanStart(room *model.Room) bool {
	return room.AllReady() && len(room.Players) >= c.cfg.MinPlayersToStart
}

// StartGame transitions the caller's room to the started state. Started is
// monotonic: a second call fails with ErrAlreadyStarted rather than
// re-broadcasting.
func (c *Controller) StartGame(ctx context.Context, conn model.ConnID) (*model.Room, error) {
	room, err := c.roomForConn(ctx, conn)
	if err != nil {
		return nil, err
	}

	if conn != room.HostID {
		return nil, model.ErrNotHost
	}
	if room.Started {
		return nil, model.ErrAlreadyStarted
	}
	if !c.CanStart(room) {
		return nil, model.ErrNotAllReady
	}

	room.Started = true
	room.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.logger.Info("game started",
		slog.String("room_id", string(room.ID)),
		slog.String("stage", room.Stage),
		slog.Int("players", len(room.Players)))

	return room, nil
}

// LeaveResult describes the outcome of a member's departure
type LeaveResult struct {
	RoomID   model.RoomID
	PlayerID model.ConnID
	// Room is the surviving room, or nil if it emptied and was destroyed
	Room *model.Room
	// HostChanged is true when the departing member was host and the role
	// moved to the earliest-joined survivor
	HostChanged bool
}

// Leave removes a member from its room, reassigning the host role to the
// earliest-joined survivor and destroying the room the moment it empties.
// Returns ErrNotInRoom for unmapped handles, which callers on the
// disconnect path treat as nothing-to-do.
func (c *Controller) Leave(ctx context.Context, conn model.ConnID) (*LeaveResult, error) {
	roomID, err := c.storage.GetMemberRoom(ctx, conn)
	if err != nil {
		return nil, err
	}

	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	wasHost := room.HostID == conn
	room.RemovePlayer(conn)

	result := &LeaveResult{RoomID: roomID, PlayerID: conn}

	// The room rewrite goes first: if it fails the member is untouched and
	// still reachable. A reverse-index entry left behind by a failure after
	// this point belongs to a dead handle and expires via the TTL backstop.
	if len(room.Players) == 0 {
		if err := c.storage.DeleteRoom(ctx, roomID); err != nil {
			return nil, err
		}
		c.logger.Info("room destroyed", slog.String("room_id", string(roomID)))
	} else {
		if wasHost {
			// Players is in join order, so index 0 is the earliest survivor
			room.HostID = room.Players[0].ID
			result.HostChanged = true
		}
		room.UpdatedAt = c.clock.Now()

		if err := c.storage.SaveRoom(ctx, room); err != nil {
			return nil, err
		}
		result.Room = room
	}

	if err := c.storage.DeleteMemberRoom(ctx, conn); err != nil {
		c.logger.Warn("reverse index cleanup failed",
			slog.String("conn_id", string(conn)),
			slog.Any("error", err))
	}

	return result, nil
}

// RoomForRelay returns the caller's room if its session has started, the
// gate for relaying opaque game payloads
func (c *Controller) RoomForRelay(ctx context.Context, conn model.ConnID) (*model.Room, error) {
	room, err := c.roomForConn(ctx, conn)
	if err != nil {
		return nil, err
	}
	if !room.Started {
		return nil, model.ErrGameNotStarted
	}
	return room, nil
}

// ListRooms returns summaries of all joinable rooms, oldest first.
// Started rooms are omitted: they accept no new members.
func (c *Controller) ListRooms(ctx context.Context) ([]model.RoomSummary, error) {
	rooms, err := c.storage.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	open := make([]*model.Room, 0, len(rooms))
	for _, room := range rooms {
		if !room.Started {
			open = append(open, room)
		}
	}
	sort.Slice(open, func(i, j int) bool {
		if open[i].CreatedAt.Equal(open[j].CreatedAt) {
			return open[i].ID < open[j].ID
		}
		return open[i].CreatedAt.Before(open[j].CreatedAt)
	})

	summaries := make([]model.RoomSummary, len(open))
	for i, room := range open {
		summaries[i] = room.Summary()
	}
	return summaries, nil
}

// roomForConn resolves a connection handle to its current room
func (c *Controller) roomForConn(ctx context.Context, conn model.ConnID) (*model.Room, error) {
	roomID, err := c.storage.GetMemberRoom(ctx, conn)
	if err != nil {
		return nil, err
	}
	room, err := c.storage.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			return nil, model.ErrNotInRoom
		}
		return nil, err
	}
	return room, nil
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateRoom(ctx context.Context, conn model.ConnID, params CreateParams) (*model.Room, error)
	JoinRoom(ctx context.Context, conn model.ConnID, roomID model.RoomID, password, playerName string) (*model.Room, error)
	ToggleReady(ctx context.Context, conn model.ConnID) (*ReadyStatus, error)
	StartGame(ctx context.Context, conn model.ConnID) (*model.Room, error)
	Leave(ctx context.Context, conn model.ConnID) (*LeaveResult, error)
	RoomForRelay(ctx context.Context, conn model.ConnID) (*model.Room, error)
	ListRooms(ctx context.Context) ([]model.RoomSummary, error)
}

var _ ControllerInterface = (*Controller)(nil)
