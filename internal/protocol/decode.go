package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed indicates an unparseable frame or a missing required field.
// It is reported to the sender only; the connection stays open.
var ErrMalformed = errors.New("malformed message")

// envelope is used to peek at the type tag before full decoding
type envelope struct {
	Type MessageType `json:"type"`
}

// Decode parses one inbound frame into its concrete message type.
// game_update frames keep the raw bytes so they can be relayed verbatim.
func Decode(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}

	switch env.Type {
	case TypeCreateRoom:
		var msg CreateRoom
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformed, env.Type)
		}
		if msg.Name == "" {
			return nil, fmt.Errorf("%w: create_room requires name", ErrMalformed)
		}
		if msg.PlayerName == "" {
			return nil, fmt.Errorf("%w: create_room requires player_name", ErrMalformed)
		}
		if msg.MaxPlayers < 1 {
			return nil, fmt.Errorf("%w: max_players must be at least 1", ErrMalformed)
		}
		return msg, nil

	case TypeJoinRoom:
		var msg JoinRoom
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformed, env.Type)
		}
		if msg.RoomID == "" {
			return nil, fmt.Errorf("%w: join_room requires room_id", ErrMalformed)
		}
		if msg.PlayerName == "" {
			return nil, fmt.Errorf("%w: join_room requires player_name", ErrMalformed)
		}
		return msg, nil

	case TypeGetRoomList:
		return GetRoomList{}, nil

	case TypeReadyUp:
		return ReadyUp{}, nil

	case TypeStartGame:
		return StartGame{}, nil

	case TypeGameUpdate:
		return GameUpdate{Raw: data}, nil

	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)

	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformed, env.Type)
	}
}
