package event

import (
	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
	"github.com/rocketscienceinc/scrabble-backend/internal/scrabble"
)

// Event is an outbound message. The set is closed: only types in this package implement it.
type Event interface {
	// Name is the wire action the event is sent under.
	Name() string
	event()
}

type PlayerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	IsBot     bool   `json:"is_bot"`
	IsCreator bool   `json:"is_creator"`
	Connected bool   `json:"connected"`
	Spectator bool   `json:"spectator,omitempty"`
}

type RoomCreated struct {
	RoomID string `json:"room_id"`
}

func (RoomCreated) Name() string { return "roomCreated" }
func (RoomCreated) event()       {}

type RoomJoined struct {
	RoomID    string `json:"room_id"`
	PlayerID  string `json:"player_id"`
	IsCreator bool   `json:"is_creator"`
	RoomName  string `json:"room_name"`
}

func (RoomJoined) Name() string { return "roomJoined" }
func (RoomJoined) event()       {}

type RoomNotFound struct {
	RoomID string `json:"room_id"`
}

func (RoomNotFound) Name() string { return "roomNotFound" }
func (RoomNotFound) event()       {}

type PlayerUpdate struct {
	Players  []PlayerView `json:"players"`
	RoomName string       `json:"room_name"`
}

func (PlayerUpdate) Name() string { return "playerUpdate" }
func (PlayerUpdate) event()       {}

type CreatorUpdate struct {
	NewCreatorID string `json:"new_creator_id"`
}

func (CreatorUpdate) Name() string { return "creatorUpdate" }
func (CreatorUpdate) event()       {}

type GameStarted struct {
	MatchID         string   `json:"match_id"`
	TurnOrder       []string `json:"turn_order"`
	DurationSeconds int      `json:"duration_seconds,omitempty"`
}

func (GameStarted) Name() string { return "gameStarted" }
func (GameStarted) event()       {}

type BoardUpdate struct {
	Board     [][]*entity.Cell `json:"board"`
	LastMove  *scrabble.Move   `json:"last_move,omitempty"`
	TilesLeft int              `json:"tiles_left"`
}

func (BoardUpdate) Name() string { return "boardUpdate" }
func (BoardUpdate) event()       {}

// TileUpdate carries the recipient's whole rack.
type TileUpdate struct {
	NewTiles []entity.Tile `json:"new_tiles"`
}

func (TileUpdate) Name() string { return "tileUpdate" }
func (TileUpdate) event()       {}

type TurnUpdate struct {
	CurrentPlayer string `json:"current_player"`
}

func (TurnUpdate) Name() string { return "turnUpdate" }
func (TurnUpdate) event()       {}

type TimeUpdate struct {
	TimeLeft int `json:"time_left"`
}

func (TimeUpdate) Name() string { return "timeUpdate" }
func (TimeUpdate) event()       {}

type MoveError struct {
	Message string `json:"message"`
}

func (MoveError) Name() string { return "moveError" }
func (MoveError) event()       {}

type GameEnd struct {
	Winner     string             `json:"winner"`
	WinnerName string             `json:"winner_name"`
	Tie        bool               `json:"tie"`
	Reason     scrabble.EndReason `json:"reason"`
	Scores     map[string]int     `json:"scores"`
}

func (GameEnd) Name() string { return "gameEnd" }
func (GameEnd) event()       {}

type GameReset struct{}

func (GameReset) Name() string { return "gameReset" }
func (GameReset) event()       {}

type ChatMessage struct {
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Message    string `json:"message"`
	SentAt     int64  `json:"sent_at"`
}

func (ChatMessage) Name() string { return "chatMessage" }
func (ChatMessage) event()       {}

type TilePlaced struct {
	PlayerID string      `json:"player_id"`
	Row      int         `json:"row"`
	Col      int         `json:"col"`
	Tile     entity.Tile `json:"tile"`
	Letter   string      `json:"letter"`
}

func (TilePlaced) Name() string { return "tilePlaced" }
func (TilePlaced) event()       {}

type TilesRecalled struct {
	PlayerID string `json:"player_id"`
}

func (TilesRecalled) Name() string { return "tilesRecalled" }
func (TilesRecalled) event()       {}

type WordSubmitted struct {
	PlayerID string `json:"player_id"`
	Word     string `json:"word"`
	Score    int    `json:"score"`
}

func (WordSubmitted) Name() string { return "wordSubmitted" }
func (WordSubmitted) event()       {}

// GameState is the full resync snapshot for one recipient.
type GameState struct {
	RoomID        string               `json:"room_id"`
	RoomName      string               `json:"room_name"`
	CreatorID     string               `json:"creator_id"`
	Phase         scrabble.Phase       `json:"phase"`
	Players       []PlayerView         `json:"players"`
	Board         [][]*entity.Cell     `json:"board"`
	Pending       []scrabble.Placement `json:"pending,omitempty"`
	Rack          []entity.Tile        `json:"rack"`
	CurrentPlayer string               `json:"current_player"`
	TilesLeft     int                  `json:"tiles_left"`
	TimeLeft      int                  `json:"time_left,omitempty"`
	LastMove      *scrabble.Move       `json:"last_move,omitempty"`
	Chat          []ChatMessage        `json:"chat"`
}

func (GameState) Name() string { return "gameState" }
func (GameState) event()       {}
