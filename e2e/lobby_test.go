package e2e_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tankarena/lobby-server/internal/api"
	"github.com/tankarena/lobby-server/internal/factory"
	"github.com/tankarena/lobby-server/internal/model"
	"github.com/tankarena/lobby-server/internal/protocol"
	"github.com/tankarena/lobby-server/internal/services/room"
)

const frameWait = 5 * time.Second

// testServer runs the full HTTP stack over a real listener
type testServer struct {
	httpServer *httptest.Server
	wsURL      string
}

func startTestServer(t *testing.T, roomCfg room.Config) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app, err := factory.New(factory.Config{
		Logger:     logger,
		RoomConfig: roomCfg,
	})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:  logger,
		Session: app.Session,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testServer{
		httpServer: server,
		wsURL:      "ws" + strings.TrimPrefix(server.URL, "http") + "/ws",
	}
}

// player wraps one websocket connection to the server
type player struct {
	t    *testing.T
	conn *websocket.Conn
}

func (ts *testServer) connect(t *testing.T) *player {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(ts.wsURL, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	return &player{t: t, conn: conn}
}

func (p *player) send(msg map[string]any) {
	p.t.Helper()
	require.NoError(p.t, p.conn.WriteJSON(msg))
}

// waitFor reads frames until one of the wanted types arrives, returning
// its raw payload. Unrelated broadcasts along the way are discarded.
func (p *player) waitFor(want ...protocol.MessageType) []byte {
	p.t.Helper()

	require.NoError(p.t, p.conn.SetReadDeadline(time.Now().Add(frameWait)))
	for {
		_, data, err := p.conn.ReadMessage()
		require.NoError(p.t, err, "waiting for %v", want)

		var envelope struct {
			Type protocol.MessageType `json:"type"`
		}
		require.NoError(p.t, json.Unmarshal(data, &envelope))

		for _, w := range want {
			if envelope.Type == w {
				return data
			}
		}
	}
}

func (p *player) createRoom(name string, extra map[string]any) model.RoomID {
	p.t.Helper()

	msg := map[string]any{
		"type":        "create_room",
		"name":        name,
		"max_players": 4,
		"stage":       "desert",
		"player_name": "host",
	}
	for k, v := range extra {
		msg[k] = v
	}
	p.send(msg)

	var created protocol.RoomCreated
	require.NoError(p.t, json.Unmarshal(p.waitFor(protocol.TypeRoomCreated), &created))
	return created.RoomID
}

func (p *player) joinRoom(roomID model.RoomID, playerName string, password string) protocol.RoomJoined {
	p.t.Helper()

	p.send(map[string]any{
		"type":        "join_room",
		"room_id":     string(roomID),
		"player_name": playerName,
		"password":    password,
	})

	var joined protocol.RoomJoined
	require.NoError(p.t, json.Unmarshal(p.waitFor(protocol.TypeRoomJoined), &joined))
	return joined
}

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t, room.DefaultConfig())

	resp, err := http.Get(ts.httpServer.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
}

func TestFullLobbyFlow(t *testing.T) {
	ts := startTestServer(t, room.DefaultConfig())

	host := ts.connect(t)
	guest := ts.connect(t)

	roomID := host.createRoom("e2e room", nil)

	joined := guest.joinRoom(roomID, "guest", "")
	assert.Len(t, joined.Room.Players, 2)

	// Host sees the join announcement
	var announced protocol.PlayerJoined
	require.NoError(t, json.Unmarshal(host.waitFor(protocol.TypePlayerJoined), &announced))
	assert.Equal(t, "guest", announced.Player.Name)
	assert.Equal(t, 2, announced.PlayerCount)

	// Both ready up; second toggle completes the set
	host.send(map[string]any{"type": "ready_up"})
	guest.waitFor(protocol.TypePlayerReady)
	guest.send(map[string]any{"type": "ready_up"})
	host.waitFor(protocol.TypeAllReady)
	guest.waitFor(protocol.TypeAllReady)

	// Host starts; both members see game_started
	host.send(map[string]any{"type": "start_game"})
	var started protocol.GameStarted
	require.NoError(t, json.Unmarshal(guest.waitFor(protocol.TypeGameStarted), &started))
	assert.Equal(t, "desert", started.Stage)
	assert.Len(t, started.Players, 2)
	host.waitFor(protocol.TypeGameStarted)

	// Drain the room list broadcast that follows the start
	guest.waitFor(protocol.TypeRoomList)

	// Game traffic relays verbatim to the other member only
	frame := `{"type":"game_update","x":3.5,"y":-1,"firing":true}`
	require.NoError(t, host.conn.WriteMessage(websocket.TextMessage, []byte(frame)))

	require.NoError(t, guest.conn.SetReadDeadline(time.Now().Add(frameWait)))
	_, relayed, err := guest.conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, frame, string(relayed))
}

func TestJoinWithPassword(t *testing.T) {
	ts := startTestServer(t, room.DefaultConfig())

	host := ts.connect(t)
	guest := ts.connect(t)

	roomID := host.createRoom("locked room", map[string]any{"password": "hunter2"})

	// Wrong password is rejected
	guest.send(map[string]any{
		"type":        "join_room",
		"room_id":     string(roomID),
		"player_name": "guest",
		"password":    "wrong",
	})
	var joinErr protocol.JoinRoomError
	require.NoError(t, json.Unmarshal(guest.waitFor(protocol.TypeJoinRoomError), &joinErr))
	assert.Equal(t, model.ErrWrongPassword.Error(), joinErr.Message)

	// Correct password succeeds
	joined := guest.joinRoom(roomID, "guest", "hunter2")
	assert.Len(t, joined.Room.Players, 2)

	// The listing flags the password without exposing it
	guest.send(map[string]any{"type": "get_room_list"})
	var list protocol.RoomList
	require.NoError(t, json.Unmarshal(guest.waitFor(protocol.TypeRoomList), &list))
	require.Len(t, list.Rooms, 1)
	assert.True(t, list.Rooms[0].PasswordRequired)
}

func TestRoomCapacity(t *testing.T) {
	ts := startTestServer(t, room.DefaultConfig())

	host := ts.connect(t)
	roomID := host.createRoom("duel", map[string]any{"max_players": 2})

	second := ts.connect(t)
	second.joinRoom(roomID, "second", "")

	third := ts.connect(t)
	third.send(map[string]any{
		"type":        "join_room",
		"room_id":     string(roomID),
		"player_name": "third",
	})
	var joinErr protocol.JoinRoomError
	require.NoError(t, json.Unmarshal(third.waitFor(protocol.TypeJoinRoomError), &joinErr))
	assert.Equal(t, model.ErrRoomFull.Error(), joinErr.Message)
}

func TestNonHostCannotStart(t *testing.T) {
	ts := startTestServer(t, room.DefaultConfig())

	host := ts.connect(t)
	guest := ts.connect(t)
	roomID := host.createRoom("e2e room", nil)
	guest.joinRoom(roomID, "guest", "")

	host.send(map[string]any{"type": "ready_up"})
	guest.send(map[string]any{"type": "ready_up"})
	guest.waitFor(protocol.TypeAllReady)

	guest.send(map[string]any{"type": "start_game"})
	var startErr protocol.StartGameError
	require.NoError(t, json.Unmarshal(guest.waitFor(protocol.TypeStartGameError), &startErr))
	assert.Equal(t, model.ErrNotHost.Error(), startErr.Message)
}

func TestHostDisconnectReassignsHost(t *testing.T) {
	ts := startTestServer(t, room.DefaultConfig())

	host := ts.connect(t)
	guest := ts.connect(t)
	roomID := host.createRoom("e2e room", nil)
	guest.joinRoom(roomID, "guest", "")

	require.NoError(t, host.conn.Close())

	var left protocol.PlayerLeft
	require.NoError(t, json.Unmarshal(guest.waitFor(protocol.TypePlayerLeft), &left))
	assert.Equal(t, 1, left.PlayerCount)

	// The survivor inherited the host slot and can start alone
	guest.send(map[string]any{"type": "ready_up"})
	guest.waitFor(protocol.TypePlayerReady)
	guest.send(map[string]any{"type": "start_game"})
	guest.waitFor(protocol.TypeGameStarted)
}

func TestDisconnectDestroysEmptyRoom(t *testing.T) {
	ts := startTestServer(t, room.DefaultConfig())

	host := ts.connect(t)
	observer := ts.connect(t)
	host.createRoom("short lived", nil)

	// Observer sees the room appear...
	var list protocol.RoomList
	require.NoError(t, json.Unmarshal(observer.waitFor(protocol.TypeRoomList), &list))
	require.Len(t, list.Rooms, 1)

	// ...and vanish when its only member drops
	require.NoError(t, host.conn.Close())
	require.NoError(t, json.Unmarshal(observer.waitFor(protocol.TypeRoomList), &list))
	assert.Empty(t, list.Rooms)
}

func TestMinPlayersPolicy(t *testing.T) {
	cfg := room.DefaultConfig()
	cfg.MinPlayersToStart = 2
	ts := startTestServer(t, cfg)

	host := ts.connect(t)
	host.createRoom("needs two", nil)

	host.send(map[string]any{"type": "ready_up"})
	host.waitFor(protocol.TypePlayerReady)

	host.send(map[string]any{"type": "start_game"})
	var startErr protocol.StartGameError
	require.NoError(t, json.Unmarshal(host.waitFor(protocol.TypeStartGameError), &startErr))
	assert.Equal(t, model.ErrNotAllReady.Error(), startErr.Message)
}
