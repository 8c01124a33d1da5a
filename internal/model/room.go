package model

import "time"

// RoomID is a short unique identifier for joining rooms
type RoomID string

// Room is a named, capacity-bounded grouping of connections sharing one
// game session's lifecycle. Players is kept in join order; the earliest
// surviving member becomes host when the host departs.
type Room struct {
	ID           RoomID    `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash,omitempty"`
	MaxPlayers   int       `json:"max_players"`
	Stage        string    `json:"stage"`
	FriendlyFire bool      `json:"friendly_fire"`
	HostID       ConnID    `json:"host_id"`
	Players      []Player  `json:"players"`
	Started      bool      `json:"started"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GetPlayer returns the member with the given connection handle, or nil
func (r *Room) GetPlayer(id ConnID) *Player {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// RemovePlayer deletes the member with the given handle, preserving join
// order. Returns true if a member was removed.
func (r *Room) RemovePlayer(id ConnID) bool {
	for i := range r.Players {
		if r.Players[i].ID == id {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return true
		}
	}
	return false
}

// IsFull reports whether the room has reached capacity
func (r *Room) IsFull() bool {
	return len(r.Players) >= r.MaxPlayers
}

// PasswordRequired reports whether joining needs a password
func (r *Room) PasswordRequired() bool {
	return r.PasswordHash != ""
}

// ReadyCount returns the number of members with the ready flag set
func (r *Room) ReadyCount() int {
	count := 0
	for i := range r.Players {
		if r.Players[i].IsReady {
			count++
		}
	}
	return count
}

// AllReady reports whether every current member has toggled ready.
// An empty room is never ready.
func (r *Room) AllReady() bool {
	return len(r.Players) > 0 && r.ReadyCount() == len(r.Players)
}

// UsedColors returns the colors currently held by members
func (r *Room) UsedColors() map[Color]bool {
	used := make(map[Color]bool, len(r.Players))
	for i := range r.Players {
		used[r.Players[i].Color] = true
	}
	return used
}

// Summary returns the room-list projection of this room. The password
// itself is never exposed, only whether one is required.
func (r *Room) Summary() RoomSummary {
	return RoomSummary{
		ID:               r.ID,
		Name:             r.Name,
		CurrentPlayers:   len(r.Players),
		MaxPlayers:       r.MaxPlayers,
		PasswordRequired: r.PasswordRequired(),
		Stage:            r.Stage,
	}
}

// RoomSummary is the public projection of a room used in room lists
type RoomSummary struct {
	ID               RoomID `json:"id"`
	Name             string `json:"name"`
	CurrentPlayers   int    `json:"current_players"`
	MaxPlayers       int    `json:"max_players"`
	PasswordRequired bool   `json:"password_required"`
	Stage            string `json:"stage"`
}
