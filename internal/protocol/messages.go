package protocol

import (
	"github.com/tankarena/lobby-server/internal/model"
)

// MessageType is the tag identifying each wire message
type MessageType string

// Client -> server message types
const (
	TypeCreateRoom  MessageType = "create_room"
	TypeJoinRoom    MessageType = "join_room"
	TypeGetRoomList MessageType = "get_room_list"
	TypeReadyUp     MessageType = "ready_up"
	TypeStartGame   MessageType = "start_game"
	TypeGameUpdate  MessageType = "game_update"
)

// Server -> client message types
const (
	TypeRoomCreated    MessageType = "room_created"
	TypeRoomJoined     MessageType = "room_joined"
	TypeJoinRoomError  MessageType = "join_room_error"
	TypeRoomList       MessageType = "room_list"
	TypePlayerJoined   MessageType = "player_joined"
	TypePlayerReady    MessageType = "player_ready"
	TypeAllReady       MessageType = "all_ready"
	TypeGameStarted    MessageType = "game_started"
	TypeStartGameError MessageType = "start_game_error"
	TypePlayerLeft     MessageType = "player_left"
	TypeError          MessageType = "error"
)

// Inbound is the closed set of client-originated messages. Decode returns
// exactly one of the concrete types below.
type Inbound interface {
	inbound()
}

// CreateRoom asks the server to create a room with the sender as host
type CreateRoom struct {
	Name         string `json:"name"`
	Password     string `json:"password,omitempty"`
	MaxPlayers   int    `json:"max_players"`
	Stage        string `json:"stage"`
	PlayerName   string `json:"player_name"`
	FriendlyFire bool   `json:"friendly_fire,omitempty"`
}

// JoinRoom asks the server to add the sender to an existing room
type JoinRoom struct {
	RoomID     string `json:"room_id"`
	Password   string `json:"password,omitempty"`
	PlayerName string `json:"player_name"`
}

// GetRoomList requests a snapshot of all joinable rooms
type GetRoomList struct{}

// ReadyUp toggles the sender's ready flag
type ReadyUp struct{}

// StartGame asks the server to start the sender's room (host only)
type StartGame struct{}

// GameUpdate carries an opaque in-game payload. Raw holds the full frame
// exactly as received; the server relays it without inspection.
type GameUpdate struct {
	Raw []byte `json:"-"`
}

func (CreateRoom) inbound()  {}
func (JoinRoom) inbound()    {}
func (GetRoomList) inbound() {}
func (ReadyUp) inbound()     {}
func (StartGame) inbound()   {}
func (GameUpdate) inbound()  {}

// RoomState is the full room view sent to members. It carries the roster
// with colors and cosmetic counters but never the password.
type RoomState struct {
	ID           model.RoomID   `json:"id"`
	Name         string         `json:"name"`
	MaxPlayers   int            `json:"max_players"`
	Stage        string         `json:"stage"`
	FriendlyFire bool           `json:"friendly_fire"`
	HostID       model.ConnID   `json:"host_id"`
	Players      []model.Player `json:"players"`
	Started      bool           `json:"started"`
}

// RoomStateFromModel converts a model.Room to its wire representation
func RoomStateFromModel(r *model.Room) RoomState {
	players := make([]model.Player, len(r.Players))
	copy(players, r.Players)
	return RoomState{
		ID:           r.ID,
		Name:         r.Name,
		MaxPlayers:   r.MaxPlayers,
		Stage:        r.Stage,
		FriendlyFire: r.FriendlyFire,
		HostID:       r.HostID,
		Players:      players,
		Started:      r.Started,
	}
}

// Outbound messages. Each carries its own type tag so a single
// json.Marshal produces a complete frame.

// RoomCreated confirms room creation to the creator
type RoomCreated struct {
	Type   MessageType  `json:"type"`
	RoomID model.RoomID `json:"room_id"`
}

// NewRoomCreated builds a room_created message
func NewRoomCreated(id model.RoomID) RoomCreated {
	return RoomCreated{Type: TypeRoomCreated, RoomID: id}
}

// RoomJoined confirms a successful join with a snapshot of the room
type RoomJoined struct {
	Type MessageType `json:"type"`
	Room RoomState   `json:"room"`
}

// NewRoomJoined builds a room_joined message
func NewRoomJoined(room *model.Room) RoomJoined {
	return RoomJoined{Type: TypeRoomJoined, Room: RoomStateFromModel(room)}
}

// JoinRoomError reports a failed join to the joiner only
type JoinRoomError struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// NewJoinRoomError builds a join_room_error message
func NewJoinRoomError(message string) JoinRoomError {
	return JoinRoomError{Type: TypeJoinRoomError, Message: message}
}

// RoomList carries a snapshot of all joinable (non-started) rooms
type RoomList struct {
	Type  MessageType         `json:"type"`
	Rooms []model.RoomSummary `json:"rooms"`
}

// NewRoomList builds a room_list message
func NewRoomList(rooms []model.RoomSummary) RoomList {
	if rooms == nil {
		rooms = []model.RoomSummary{}
	}
	return RoomList{Type: TypeRoomList, Rooms: rooms}
}

// PlayerJoined notifies existing members that a player entered their room
type PlayerJoined struct {
	Type        MessageType  `json:"type"`
	Player      model.Player `json:"player"`
	PlayerCount int          `json:"player_count"`
}

// NewPlayerJoined builds a player_joined message
func NewPlayerJoined(player model.Player, playerCount int) PlayerJoined {
	return PlayerJoined{Type: TypePlayerJoined, Player: player, PlayerCount: playerCount}
}

// PlayerReady announces a ready-flag change with the room's readiness tally
type PlayerReady struct {
	Type       MessageType  `json:"type"`
	PlayerID   model.ConnID `json:"player_id"`
	IsReady    bool         `json:"is_ready"`
	ReadyCount int          `json:"ready_count"`
	TotalCount int          `json:"total_count"`
}

// NewPlayerReady builds a player_ready message
func NewPlayerReady(playerID model.ConnID, isReady bool, readyCount, totalCount int) PlayerReady {
	return PlayerReady{
		Type:       TypePlayerReady,
		PlayerID:   playerID,
		IsReady:    isReady,
		ReadyCount: readyCount,
		TotalCount: totalCount,
	}
}

// AllReady announces that every member of the room is ready
type AllReady struct {
	Type MessageType `json:"type"`
}

// NewAllReady builds an all_ready message
func NewAllReady() AllReady {
	return AllReady{Type: TypeAllReady}
}

// GameStarted announces the session start with the stage and final roster
type GameStarted struct {
	Type         MessageType    `json:"type"`
	Stage        string         `json:"stage"`
	FriendlyFire bool           `json:"friendly_fire"`
	Players      []model.Player `json:"players"`
}

// NewGameStarted builds a game_started message
func NewGameStarted(room *model.Room) GameStarted {
	players := make([]model.Player, len(room.Players))
	copy(players, room.Players)
	return GameStarted{
		Type:         TypeGameStarted,
		Stage:        room.Stage,
		FriendlyFire: room.FriendlyFire,
		Players:      players,
	}
}

// StartGameError reports a failed start to the caller only
type StartGameError struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// NewStartGameError builds a start_game_error message
func NewStartGameError(message string) StartGameError {
	return StartGameError{Type: TypeStartGameError, Message: message}
}

// PlayerLeft notifies remaining members that a player left their room
type PlayerLeft struct {
	Type        MessageType  `json:"type"`
	PlayerID    model.ConnID `json:"player_id"`
	PlayerCount int          `json:"player_count"`
}

// NewPlayerLeft builds a player_left message
func NewPlayerLeft(playerID model.ConnID, playerCount int) PlayerLeft {
	return PlayerLeft{Type: TypePlayerLeft, PlayerID: playerID, PlayerCount: playerCount}
}

// ErrorMessage is the generic unicast error for malformed or rejected
// requests. The connection always stays open.
type ErrorMessage struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// NewError builds an error message
func NewError(message string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Message: message}
}
