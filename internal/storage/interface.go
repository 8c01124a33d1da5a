package storage

import (
	"context"

	"github.com/tankarena/lobby-server/internal/model"
)

// Storage is the room directory: the forward index room id -> room and the
// reverse index connection handle -> room id. The room controller keeps the
// two consistent: a handle appears in the reverse index iff it is a member
// of the forward-indexed room.
type Storage interface {
	// Room operations (forward index)
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	DeleteRoom(ctx context.Context, id model.RoomID) error
	RoomExists(ctx context.Context, id model.RoomID) (bool, error)
	ListRooms(ctx context.Context) ([]*model.Room, error)

	// Membership operations (reverse index)
	SetMemberRoom(ctx context.Context, conn model.ConnID, room model.RoomID) error
	GetMemberRoom(ctx context.Context, conn model.ConnID) (model.RoomID, error)
	DeleteMemberRoom(ctx context.Context, conn model.ConnID) error
}
