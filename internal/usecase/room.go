package usecase

import (
	"math"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
	"github.com/rocketscienceinc/scrabble-backend/internal/event"
	"github.com/rocketscienceinc/scrabble-backend/internal/scrabble"
)

const maxNameLength = 32

// Room is one lobby plus its current match. mu guards every field; submitMu
// queues move submissions so only one waits on the dictionary at a time.
type Room struct {
	ID string

	mu       sync.Mutex
	submitMu sync.Mutex

	name      string
	creatorID string
	players   []*entity.Player
	chat      []event.ChatMessage
	match     *scrabble.Match
	clock     *clock
	deadline  time.Time
	grace     map[string]*time.Timer
	closed    bool
}

// RoomSummary is the public view of a room.
type RoomSummary struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	CreatorID string             `json:"creator_id"`
	Players   []event.PlayerView `json:"players"`
	Started   bool               `json:"started"`
	Phase     scrabble.Phase     `json:"phase,omitempty"`
}

func newRoom(creatorID string) *Room {
	return &Room{
		creatorID: creatorID,
		grace:     make(map[string]*time.Timer),
	}
}

func (that *Room) player(id string) *entity.Player {
	for _, player := range that.players {
		if player.ID == id {
			return player
		}
	}

	return nil
}

// humanIDs are the broadcast recipients: every non-bot member, seated or not.
func (that *Room) humanIDs() []string {
	ids := make([]string, 0, len(that.players))
	for _, player := range that.players {
		if !player.IsBot {
			ids = append(ids, player.ID)
		}
	}

	return ids
}

func (that *Room) firstHuman() string {
	for _, player := range that.players {
		if !player.IsBot {
			return player.ID
		}
	}

	return ""
}

// connectedHuman is the first online human other than except, or "".
func (that *Room) connectedHuman(except string) string {
	for _, player := range that.players {
		if !player.IsBot && player.Connected && player.ID != except {
			return player.ID
		}
	}

	return ""
}

// seatedHumanOnline reports whether any human in the running match is connected.
func (that *Room) seatedHumanOnline() bool {
	if that.match == nil {
		return false
	}

	for _, id := range that.match.TurnOrder() {
		if player := that.player(id); player != nil && !player.IsBot && player.Connected {
			return true
		}
	}

	return false
}

func (that *Room) dropBots() {
	kept := that.players[:0]
	for _, player := range that.players {
		if !player.IsBot {
			kept = append(kept, player)
		}
	}

	that.players = kept
}

func (that *Room) started() bool {
	return that.match != nil && that.match.IsPlaying()
}

func (that *Room) playerViews() []event.PlayerView {
	views := make([]event.PlayerView, 0, len(that.players))
	for _, player := range that.players {
		views = append(views, event.PlayerView{
			ID:        player.ID,
			Name:      player.Name,
			Score:     player.Score,
			IsBot:     player.IsBot,
			IsCreator: player.ID == that.creatorID,
			Connected: player.Connected,
			Spectator: that.match != nil && !that.match.IsSeated(player.ID),
		})
	}

	return views
}

func (that *Room) playerUpdate() event.PlayerUpdate {
	return event.PlayerUpdate{Players: that.playerViews(), RoomName: that.name}
}

func (that *Room) timeLeft() int {
	if that.clock == nil {
		return 0
	}

	return int(math.Ceil(time.Until(that.deadline).Seconds()))
}

func (that *Room) boardUpdate() event.BoardUpdate {
	return event.BoardUpdate{
		Board:     that.match.Board(),
		LastMove:  that.match.LastMove(),
		TilesLeft: that.match.TilesLeft(),
	}
}

func (that *Room) summary() RoomSummary {
	summary := RoomSummary{
		ID:        that.ID,
		Name:      that.name,
		CreatorID: that.creatorID,
		Players:   that.playerViews(),
		Started:   that.started(),
	}

	if that.match != nil {
		summary.Phase = that.match.Phase()
	}

	return summary
}

// state is the full snapshot as seen by viewer.
func (that *Room) state(viewer string) event.GameState {
	chat := make([]event.ChatMessage, len(that.chat))
	copy(chat, that.chat)

	state := event.GameState{
		RoomID:    that.ID,
		RoomName:  that.name,
		CreatorID: that.creatorID,
		Phase:     scrabble.PhaseWaiting,
		Players:   that.playerViews(),
		Chat:      chat,
	}

	if that.match == nil {
		return state
	}

	state.Phase = that.match.Phase()
	state.Board = that.match.Board()
	state.Rack = that.match.Rack(viewer)
	state.CurrentPlayer = that.match.CurrentPlayerID()
	state.TilesLeft = that.match.TilesLeft()
	state.TimeLeft = that.timeLeft()
	state.LastMove = that.match.LastMove()
	state.Pending = that.match.Pending()

	return state
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return "", apperror.ErrInvalidName
	}

	return name, nil
}
