package websocket

import (
	"encoding/json"
	"strings"

	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
	"github.com/rocketscienceinc/scrabble-backend/internal/scrabble"
)

// Message is the envelope for both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// sessionPayload is sent once after the upgrade so the client knows its id.
type sessionPayload struct {
	PlayerID string `json:"player_id"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type roomPayload struct {
	RoomID string `json:"room_id"`
}

type createRoomPayload struct {
	PlayerName string `json:"player_name"`
}

type joinRoomPayload struct {
	RoomID     string `json:"room_id"`
	PlayerName string `json:"player_name"`
}

type namePayload struct {
	RoomID string `json:"room_id"`
	Name   string `json:"name"`
}

type startGamePayload struct {
	RoomID          string `json:"room_id"`
	DurationMinutes int    `json:"duration_minutes"`
}

type placeTilePayload struct {
	RoomID      string      `json:"room_id"`
	Row         int         `json:"row"`
	Col         int         `json:"col"`
	Tile        entity.Tile `json:"tile"`
	TileIndex   int         `json:"tile_index"`
	BlankLetter string      `json:"blank_letter,omitempty"`
}

type submitMovePayload struct {
	RoomID      string               `json:"room_id"`
	PlacedTiles []scrabble.Placement `json:"placed_tiles"`
}

type exchangeTilesPayload struct {
	RoomID      string `json:"room_id"`
	TileIndices []int  `json:"tile_indices"`
}

type chatPayload struct {
	RoomID  string `json:"room_id"`
	Message string `json:"message"`
}

// decode reads a payload strictly: unknown fields and trailing data are rejected.
func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	decoder := json.NewDecoder(strings.NewReader(string(raw)))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		return err
	}

	if decoder.More() {
		return errTrailingData
	}

	return nil
}
