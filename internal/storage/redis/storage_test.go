package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/tankarena/lobby-server/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.RoomTTL = time.Hour
	cfg.MembershipTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) makeRoom(id model.RoomID) *model.Room {
	return &model.Room{
		ID:         id,
		Name:       "test room",
		MaxPlayers: 4,
		Stage:      "stage-1",
		HostID:     "conn-a",
		Players: []model.Player{
			{ID: "conn-a", Name: "Alice", Color: "blue"},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := s.makeRoom("room-1")
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	got, err := s.storage.GetRoom(s.ctx, "room-1")
	s.Require().NoError(err)
	s.Equal(room.Name, got.Name)
	s.Equal(room.HostID, got.HostID)
	s.Len(got.Players, 1)
	s.Equal(model.Color("blue"), got.Players[0].Color)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "missing")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestRoomExists() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.makeRoom("room-1")))

	exists, err := s.storage.RoomExists(s.ctx, "room-1")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.storage.RoomExists(s.ctx, "room-2")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *StorageSuite) TestDeleteRoomRemovesFromIndex() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.makeRoom("room-1")))
	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "room-1"))

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)
}

func (s *StorageSuite) TestListRooms() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.makeRoom("room-1")))
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.makeRoom("room-2")))

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Len(rooms, 2)
}

func (s *StorageSuite) TestListRoomsSkipsExpiredValues() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.makeRoom("room-1")))
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.makeRoom("room-2")))

	// Simulate the room value expiring while the index entry remains
	s.mini.FastForward(2 * time.Hour)

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)
}

func (s *StorageSuite) TestMemberRoomIndex() {
	s.Require().NoError(s.storage.SetMemberRoom(s.ctx, "conn-a", "room-1"))

	room, err := s.storage.GetMemberRoom(s.ctx, "conn-a")
	s.Require().NoError(err)
	s.Equal(model.RoomID("room-1"), room)

	s.Require().NoError(s.storage.DeleteMemberRoom(s.ctx, "conn-a"))

	_, err = s.storage.GetMemberRoom(s.ctx, "conn-a")
	s.ErrorIs(err, model.ErrNotInRoom)
}
