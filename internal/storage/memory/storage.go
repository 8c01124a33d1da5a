package memory

import (
	"context"
	"sync"

	"github.com/tankarena/lobby-server/internal/model"
	"github.com/tankarena/lobby-server/internal/storage"
)

// Storage is an in-memory implementation of the room directory. It is the
// default backend: lobby state is ephemeral and lost on restart.
type Storage struct {
	mu sync.RWMutex

	rooms      map[model.RoomID]*model.Room
	memberRoom map[model.ConnID]model.RoomID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		rooms:      make(map[model.RoomID]*model.Room),
		memberRoom: make(map[model.ConnID]model.RoomID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	return nil
}

func (s *Storage) RoomExists(ctx context.Context, id model.RoomID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[id]
	return ok, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*model.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// Membership operations

func (s *Storage) SetMemberRoom(ctx context.Context, conn model.ConnID, room model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberRoom[conn] = room
	return nil
}

func (s *Storage) GetMemberRoom(ctx context.Context, conn model.ConnID) (model.RoomID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.memberRoom[conn]
	if !ok {
		return "", model.ErrNotInRoom
	}
	return room, nil
}

func (s *Storage) DeleteMemberRoom(ctx context.Context, conn model.ConnID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.memberRoom, conn)
	return nil
}
