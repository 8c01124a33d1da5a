package model

import "errors"

// Common errors used across the application. All of these are recoverable:
// they are reported to the originating connection and never terminate it.
var (
	// Room errors
	ErrRoomNotFound     = errors.New("room not found")
	ErrWrongPassword    = errors.New("incorrect password")
	ErrRoomFull         = errors.New("room is full")
	ErrAlreadyStarted   = errors.New("game already started")
	ErrNotHost          = errors.New("only the host can start the game")
	ErrNotAllReady      = errors.New("not all players are ready")
	ErrNotInRoom        = errors.New("player is not in a room")
	ErrAlreadyInRoom    = errors.New("player is already in a room")
	ErrNoColorAvailable = errors.New("no color available")
	ErrGameNotStarted   = errors.New("game has not started")

	// Connection registry errors
	ErrNotConnected  = errors.New("connection is not registered")
	ErrDuplicateConn = errors.New("connection is already registered")
)
