package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tankarena/lobby-server/internal/model"
	"github.com/tankarena/lobby-server/internal/storage"
)

// Storage is a Redis-backed implementation of the room directory, for
// running several relay instances against one shared lobby namespace
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	// Pipeline the value write and the index update together
	pipe := s.client.Pipeline()
	pipe.Set(ctx, roomKey(room.ID), data, s.cfg.RoomTTL)
	pipe.SAdd(ctx, roomIndexKey(), string(room.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, roomKey(id))
	pipe.SRem(ctx, roomIndexKey(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) RoomExists(ctx context.Context, id model.RoomID) (bool, error) {
	n, err := s.client.Exists(ctx, roomKey(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	ids, err := s.client.SMembers(ctx, roomIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	rooms := make([]*model.Room, 0, len(ids))
	for _, id := range ids {
		room, err := s.GetRoom(ctx, model.RoomID(id))
		if err != nil {
			if errors.Is(err, model.ErrRoomNotFound) {
				// Index entry outlived its TTL-expired value; drop it
				_ = s.client.SRem(ctx, roomIndexKey(), id).Err()
				continue
			}
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// Membership operations

func (s *Storage) SetMemberRoom(ctx context.Context, conn model.ConnID, room model.RoomID) error {
	return s.client.Set(ctx, memberRoomKey(conn), string(room), s.cfg.MembershipTTL).Err()
}

func (s *Storage) GetMemberRoom(ctx context.Context, conn model.ConnID) (model.RoomID, error) {
	id, err := s.client.Get(ctx, memberRoomKey(conn)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", model.ErrNotInRoom
		}
		return "", err
	}
	return model.RoomID(id), nil
}

func (s *Storage) DeleteMemberRoom(ctx context.Context, conn model.ConnID) error {
	return s.client.Del(ctx, memberRoomKey(conn)).Err()
}
