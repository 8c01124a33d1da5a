package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// RoomTTL bounds how long an abandoned room entry can linger.
	// Rooms are deleted eagerly when they empty; the TTL is a backstop.
	RoomTTL time.Duration

	// MembershipTTL bounds reverse-index entries the same way
	MembershipTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:           "redis://localhost:6379",
		PoolSize:      10,
		MinIdleConns:  2,
		RoomTTL:       24 * time.Hour,
		MembershipTTL: 24 * time.Hour,
	}
}
