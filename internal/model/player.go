package model

import "time"

// ConnID uniquely identifies one live client connection. Handles are
// generated fresh on connect and never reused.
type ConnID string

// Color is a display color assigned to a room member from the room palette
type Color string

// DefaultPalette is the set of colors assignable to room members. Room
// capacity is bounded by the palette size at the input boundary.
var DefaultPalette = []Color{
	"blue", "green", "yellow", "purple", "red", "orange", "cyan", "magenta",
}

// Player represents one room member. Kills, Deaths and Ping are cosmetic
// counters the server stores and echoes but never interprets.
type Player struct {
	ID       ConnID    `json:"id"`
	Name     string    `json:"name"`
	Color    Color     `json:"color"`
	IsReady  bool      `json:"is_ready"`
	Kills    int       `json:"kills"`
	Deaths   int       `json:"deaths"`
	Ping     int       `json:"ping"`
	JoinedAt time.Time `json:"joined_at"`
}
