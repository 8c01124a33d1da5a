package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tankarena/lobby-server/internal/model"
)

func TestDecodeCreateRoom(t *testing.T) {
	raw := []byte(`{
		"type": "create_room",
		"name": "my room",
		"password": "hunter2",
		"max_players": 4,
		"stage": "stage-2",
		"player_name": "Alice",
		"friendly_fire": true
	}`)

	msg, err := Decode(raw)
	require.NoError(t, err)

	create, ok := msg.(CreateRoom)
	require.True(t, ok)
	assert.Equal(t, "my room", create.Name)
	assert.Equal(t, "hunter2", create.Password)
	assert.Equal(t, 4, create.MaxPlayers)
	assert.Equal(t, "stage-2", create.Stage)
	assert.Equal(t, "Alice", create.PlayerName)
	assert.True(t, create.FriendlyFire)
}

func TestDecodeJoinRoom(t *testing.T) {
	raw := []byte(`{"type": "join_room", "room_id": "ABC123", "player_name": "Bob"}`)

	msg, err := Decode(raw)
	require.NoError(t, err)

	join, ok := msg.(JoinRoom)
	require.True(t, ok)
	assert.Equal(t, "ABC123", join.RoomID)
	assert.Equal(t, "Bob", join.PlayerName)
	assert.Empty(t, join.Password)
}

func TestDecodeFieldlessMessages(t *testing.T) {
	tests := []struct {
		raw  string
		want Inbound
	}{
		{`{"type": "get_room_list"}`, GetRoomList{}},
		{`{"type": "ready_up"}`, ReadyUp{}},
		{`{"type": "start_game"}`, StartGame{}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			msg, err := Decode([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, msg)
		})
	}
}

func TestDecodeGameUpdateKeepsRawBytes(t *testing.T) {
	raw := []byte(`{"type": "game_update", "x": 12, "y": 7, "fired": true}`)

	msg, err := Decode(raw)
	require.NoError(t, err)

	update, ok := msg.(GameUpdate)
	require.True(t, ok)
	assert.Equal(t, raw, update.Raw)
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"invalid json", `{not json`},
		{"missing type", `{"name": "my room"}`},
		{"unknown type", `{"type": "launch_nukes"}`},
		{"create_room missing name", `{"type": "create_room", "player_name": "A", "max_players": 2}`},
		{"create_room missing player_name", `{"type": "create_room", "name": "r", "max_players": 2}`},
		{"create_room zero capacity", `{"type": "create_room", "name": "r", "player_name": "A", "max_players": 0}`},
		{"join_room missing room_id", `{"type": "join_room", "player_name": "B"}`},
		{"join_room missing player_name", `{"type": "join_room", "room_id": "ABC123"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestOutboundFramesCarryTypeTag(t *testing.T) {
	room := &model.Room{
		ID:         "room-1",
		Name:       "test",
		MaxPlayers: 2,
		Stage:      "stage-1",
		HostID:     "conn-a",
		Players:    []model.Player{{ID: "conn-a", Name: "Alice", Color: "blue"}},
	}

	tests := []struct {
		name     string
		msg      any
		wantType MessageType
	}{
		{"room_created", NewRoomCreated("room-1"), TypeRoomCreated},
		{"room_joined", NewRoomJoined(room), TypeRoomJoined},
		{"join_room_error", NewJoinRoomError("full"), TypeJoinRoomError},
		{"room_list", NewRoomList(nil), TypeRoomList},
		{"player_joined", NewPlayerJoined(room.Players[0], 1), TypePlayerJoined},
		{"player_ready", NewPlayerReady("conn-a", true, 1, 2), TypePlayerReady},
		{"all_ready", NewAllReady(), TypeAllReady},
		{"game_started", NewGameStarted(room), TypeGameStarted},
		{"start_game_error", NewStartGameError("not host"), TypeStartGameError},
		{"player_left", NewPlayerLeft("conn-a", 1), TypePlayerLeft},
		{"error", NewError("bad request"), TypeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.msg)
			require.NoError(t, err)

			var env struct {
				Type MessageType `json:"type"`
			}
			require.NoError(t, json.Unmarshal(data, &env))
			assert.Equal(t, tt.wantType, env.Type)
		})
	}
}

func TestRoomStateOmitsPassword(t *testing.T) {
	room := &model.Room{
		ID:           "room-1",
		Name:         "locked club",
		PasswordHash: "$2a$10$secrethash",
		MaxPlayers:   2,
		HostID:       "conn-a",
		Players:      []model.Player{{ID: "conn-a"}},
	}

	data, err := json.Marshal(NewRoomJoined(room))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secrethash", "password hash must never reach the wire")
	assert.NotContains(t, string(data), "password")
}

func TestNewRoomListNeverNil(t *testing.T) {
	data, err := json.Marshal(NewRoomList(nil))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rooms":[]`)
}
