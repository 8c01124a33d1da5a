package redis

import (
	"fmt"

	"github.com/tankarena/lobby-server/internal/model"
)

// Key prefix for all lobby data
const keyPrefix = "tankarena"

// roomKey returns the Redis key for a Room
func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

// roomIndexKey returns the Redis key for the SET of all room ids
func roomIndexKey() string {
	return fmt.Sprintf("%s:idx:rooms", keyPrefix)
}

// memberRoomKey returns the Redis key for the conn -> room reverse index
func memberRoomKey(conn model.ConnID) string {
	return fmt.Sprintf("%s:idx:member_room:%s", keyPrefix, conn)
}
