package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tankarena/lobby-server/internal/model"
	"github.com/tankarena/lobby-server/internal/testutil"
)

func TestBroadcasterToRoom(t *testing.T) {
	registry := NewRegistry(testutil.NopLogger())
	broadcaster := NewBroadcaster(registry, testutil.NopLogger())

	a := &captureSender{}
	b := &captureSender{}
	c := &captureSender{}
	require.NoError(t, registry.Register("conn-a", a))
	require.NoError(t, registry.Register("conn-b", b))
	require.NoError(t, registry.Register("conn-c", c))

	room := &model.Room{
		ID: "ROOM01",
		Players: []model.Player{
			{ID: "conn-a"},
			{ID: "conn-b"},
		},
	}

	broadcaster.ToRoom(room, []byte("payload"))

	assert.Len(t, a.Frames(), 1)
	assert.Len(t, b.Frames(), 1)
	assert.Empty(t, c.Frames(), "non-members must not receive room traffic")
}

func TestBroadcasterToRoomExcludesSender(t *testing.T) {
	registry := NewRegistry(testutil.NopLogger())
	broadcaster := NewBroadcaster(registry, testutil.NopLogger())

	a := &captureSender{}
	b := &captureSender{}
	require.NoError(t, registry.Register("conn-a", a))
	require.NoError(t, registry.Register("conn-b", b))

	room := &model.Room{
		ID: "ROOM01",
		Players: []model.Player{
			{ID: "conn-a"},
			{ID: "conn-b"},
		},
	}

	broadcaster.ToRoom(room, []byte("payload"), "conn-a")

	assert.Empty(t, a.Frames())
	require.Len(t, b.Frames(), 1)
	assert.Equal(t, "payload", string(b.Frames()[0]))
}

func TestBroadcasterSkipsDisconnectedMember(t *testing.T) {
	registry := NewRegistry(testutil.NopLogger())
	broadcaster := NewBroadcaster(registry, testutil.NopLogger())

	b := &captureSender{}
	require.NoError(t, registry.Register("conn-b", b))

	// conn-a is still listed as a member but its connection is gone
	room := &model.Room{
		ID: "ROOM01",
		Players: []model.Player{
			{ID: "conn-a"},
			{ID: "conn-b"},
		},
	}

	broadcaster.ToRoom(room, []byte("payload"))

	assert.Len(t, b.Frames(), 1, "one miss must not block the rest of the room")
}

func TestBroadcasterAll(t *testing.T) {
	registry := NewRegistry(testutil.NopLogger())
	broadcaster := NewBroadcaster(registry, testutil.NopLogger())

	a := &captureSender{}
	b := &captureSender{}
	require.NoError(t, registry.Register("conn-a", a))
	require.NoError(t, registry.Register("conn-b", b))

	broadcaster.All([]byte("announcement"))

	assert.Len(t, a.Frames(), 1)
	assert.Len(t, b.Frames(), 1)
}
