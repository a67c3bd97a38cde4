package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
	"github.com/rocketscienceinc/scrabble-backend/internal/event"
	"github.com/rocketscienceinc/scrabble-backend/internal/pkg"
	"github.com/rocketscienceinc/scrabble-backend/internal/service"
)

const (
	maxChatLength  = 500
	archiveTimeout = 5 * time.Second
)

// Notifier delivers events to connected players. Unknown or offline ids are skipped.
type Notifier interface {
	Broadcast(playerIDs []string, evt event.Event)
	Send(playerID string, evt event.Event)
}

type wordValidator interface {
	IsValidWord(ctx context.Context, word string) bool
}

type matchArchive interface {
	Save(ctx context.Context, result *entity.MatchResult) error
}

type Options struct {
	RackSize        int
	MinPlayers      int
	MaxPlayers      int
	DefaultDuration time.Duration
	ReconnectGrace  time.Duration
	ChatHistory     int
	TickInterval    time.Duration
	Distribution    []entity.TileKind
	NewRand         func() *rand.Rand
}

func (that *Options) withDefaults() {
	if that.MinPlayers <= 0 {
		that.MinPlayers = 2
	}
	if that.MaxPlayers < that.MinPlayers {
		that.MaxPlayers = max(4, that.MinPlayers)
	}
	if that.ChatHistory <= 0 {
		that.ChatHistory = 100
	}
	if that.TickInterval <= 0 {
		that.TickInterval = time.Second
	}
	if that.NewRand == nil {
		that.NewRand = func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano())) //nolint: gosec // game randomness
		}
	}
}

// RoomManager is the registry of live rooms. Lock order is room.mu before that.mu.
type RoomManager struct {
	logger    *slog.Logger
	opts      Options
	notifier  Notifier
	validator wordValidator
	archive   matchArchive
	bots      service.BotService

	mu      sync.RWMutex
	rooms   map[string]*Room
	members map[string]string
}

// NewRoomManager wires the registry. archive may be nil when results are not kept.
func NewRoomManager(
	logger *slog.Logger,
	opts Options,
	notifier Notifier,
	validator wordValidator,
	archive matchArchive,
	bots service.BotService,
) *RoomManager {
	opts.withDefaults()

	if bots == nil {
		bots = service.NewBotService(opts.NewRand())
	}

	return &RoomManager{
		logger:    logger,
		opts:      opts,
		notifier:  notifier,
		validator: validator,
		archive:   archive,
		bots:      bots,

		rooms:   make(map[string]*Room),
		members: make(map[string]string),
	}
}

func (that *RoomManager) getRoom(roomID string) (*Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[strings.ToUpper(strings.TrimSpace(roomID))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	return room, nil
}

// lockRoom returns the room with its mutex held.
func (that *RoomManager) lockRoom(roomID string) (*Room, error) {
	room, err := that.getRoom(roomID)
	if err != nil {
		return nil, err
	}

	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	return room, nil
}

// lockMember is lockRoom plus a membership check.
func (that *RoomManager) lockMember(roomID, playerID string) (*Room, *entity.Player, error) {
	room, err := that.lockRoom(roomID)
	if err != nil {
		return nil, nil, err
	}

	player := room.player(playerID)
	if player == nil {
		room.mu.Unlock()
		return nil, nil, apperror.ErrPlayerNotInRoom
	}

	return room, player, nil
}

func (that *RoomManager) RoomOf(playerID string) string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.members[playerID]
}

// leaveOther drops playerID from any room other than roomID.
func (that *RoomManager) leaveOther(roomID, playerID string) {
	current := that.RoomOf(playerID)
	if current == "" || current == roomID {
		return
	}

	if err := that.LeaveRoom(current, playerID); err != nil {
		that.logger.Debug("failed to leave previous room", "method", "leaveOther", "roomID", current, "error", err)
	}
}

func (that *RoomManager) CreateRoom(playerID, playerName string) (string, error) {
	log := that.logger.With("method", "CreateRoom", "playerID", playerID)

	name, err := validateName(playerName)
	if err != nil {
		return "", err
	}

	that.leaveOther("", playerID)

	player := &entity.Player{ID: playerID, Name: name, Connected: true}

	room := newRoom(playerID)
	room.players = append(room.players, player)
	room.mu.Lock()
	defer room.mu.Unlock()

	that.mu.Lock()
	roomID := pkg.GenerateRoomCode()
	for that.rooms[roomID] != nil {
		roomID = pkg.GenerateRoomCode()
	}

	room.ID = roomID
	room.name = "Room " + roomID
	that.rooms[roomID] = room
	that.members[playerID] = roomID
	that.mu.Unlock()

	that.notifier.Send(playerID, event.RoomCreated{RoomID: roomID})
	that.notifier.Send(playerID, event.RoomJoined{RoomID: roomID, PlayerID: playerID, IsCreator: true, RoomName: room.name})
	that.notifier.Broadcast(room.humanIDs(), room.playerUpdate())

	log.Info("room created", "roomID", roomID)

	return roomID, nil
}

// JoinRoom seats a player in the lobby. Joining twice is a reconnect: the seat is
// kept and the current state is replayed. Players joining a running match watch it.
func (that *RoomManager) JoinRoom(roomID, playerID, playerName string) error {
	log := that.logger.With("method", "JoinRoom", "roomID", roomID, "playerID", playerID)

	that.leaveOther(strings.ToUpper(strings.TrimSpace(roomID)), playerID)

	room, err := that.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	player := room.player(playerID)
	rejoined := false
	switch {
	case player != nil:
		if timer, ok := room.grace[playerID]; ok {
			timer.Stop()
			delete(room.grace, playerID)
		}

		if name, nameErr := validateName(playerName); nameErr == nil {
			player.Name = name
		}

		player.Connected = true
		if room.match != nil {
			room.match.SetConnected(playerID, true)
		}
		rejoined = true

		log.Info("player rejoined")
	default:
		name, nameErr := validateName(playerName)
		if nameErr != nil {
			return nameErr
		}

		if len(room.humanIDs()) >= that.opts.MaxPlayers {
			return apperror.ErrRoomFull
		}

		player = &entity.Player{ID: playerID, Name: name, Connected: true}
		room.players = append(room.players, player)

		that.mu.Lock()
		that.members[playerID] = room.ID
		that.mu.Unlock()

		log.Info("player joined")
	}

	that.notifier.Send(playerID, event.RoomJoined{
		RoomID:    room.ID,
		PlayerID:  playerID,
		IsCreator: room.creatorID == playerID,
		RoomName:  room.name,
	})
	that.notifier.Broadcast(room.humanIDs(), room.playerUpdate())

	if room.match != nil {
		that.notifier.Send(playerID, room.state(playerID))
	}

	if rejoined && room.started() {
		that.afterTurn(room)
	}

	return nil
}

func (that *RoomManager) LeaveRoom(roomID, playerID string) error {
	room, _, err := that.lockMember(roomID, playerID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	that.removePlayer(room, playerID)

	that.logger.Info("player left", "method", "LeaveRoom", "roomID", roomID, "playerID", playerID)

	return nil
}

// Disconnect marks the player offline. The seat is kept for the reconnect grace
// period; a turn they hold passes on at once and the creator role moves to an
// online human if there is one.
func (that *RoomManager) Disconnect(playerID string) {
	log := that.logger.With("method", "Disconnect", "playerID", playerID)

	roomID := that.RoomOf(playerID)
	if roomID == "" {
		return
	}

	room, player, err := that.lockMember(roomID, playerID)
	if err != nil {
		log.Debug("player has no room", "error", err)
		return
	}
	defer room.mu.Unlock()

	player.Connected = false
	if room.match != nil && room.match.SetConnected(playerID, false) {
		that.afterTurn(room)
	}

	if that.opts.ReconnectGrace <= 0 {
		that.removePlayer(room, playerID)
		return
	}

	if room.creatorID == playerID {
		if next := room.connectedHuman(playerID); next != "" {
			room.creatorID = next
			that.notifier.Broadcast(room.humanIDs(), event.CreatorUpdate{NewCreatorID: next})
		}
	}

	that.notifier.Broadcast(room.humanIDs(), room.playerUpdate())

	if timer, ok := room.grace[playerID]; ok {
		timer.Stop()
	}
	room.grace[playerID] = time.AfterFunc(that.opts.ReconnectGrace, func() {
		that.expireSeat(roomID, playerID)
	})

	log.Info("player disconnected", "roomID", roomID)
}

func (that *RoomManager) expireSeat(roomID, playerID string) {
	room, player, err := that.lockMember(roomID, playerID)
	if err != nil {
		return
	}
	defer room.mu.Unlock()

	delete(room.grace, playerID)
	if player.Connected {
		return
	}

	that.removePlayer(room, playerID)

	that.logger.Info("reconnect grace expired", "method", "expireSeat", "roomID", roomID, "playerID", playerID)
}

// removePlayer drops a member. The creator role moves to the next human in seating
// order; a room without humans is destroyed. Caller holds room.mu.
func (that *RoomManager) removePlayer(room *Room, playerID string) {
	for i, player := range room.players {
		if player.ID == playerID {
			room.players = append(room.players[:i], room.players[i+1:]...)
			break
		}
	}

	if timer, ok := room.grace[playerID]; ok {
		timer.Stop()
		delete(room.grace, playerID)
	}

	that.mu.Lock()
	if that.members[playerID] == room.ID {
		delete(that.members, playerID)
	}
	that.mu.Unlock()

	if room.firstHuman() == "" {
		that.destroyRoom(room)
		return
	}

	if room.creatorID == playerID {
		room.creatorID = room.firstHuman()
		that.notifier.Broadcast(room.humanIDs(), event.CreatorUpdate{NewCreatorID: room.creatorID})
	}

	if room.match != nil && room.match.IsSeated(playerID) {
		wasPlaying := room.match.IsPlaying()
		changed := room.match.RemovePlayer(playerID)

		switch {
		case wasPlaying && room.match.IsEnded():
			that.finishMatch(room)
		case changed:
			that.afterTurn(room)
		}
	}

	that.notifier.Broadcast(room.humanIDs(), room.playerUpdate())
}

func (that *RoomManager) destroyRoom(room *Room) {
	room.closed = true
	that.stopClock(room)

	for id, timer := range room.grace {
		timer.Stop()
		delete(room.grace, id)
	}

	that.mu.Lock()
	delete(that.rooms, room.ID)
	for _, player := range room.players {
		if that.members[player.ID] == room.ID {
			delete(that.members, player.ID)
		}
	}
	that.mu.Unlock()

	that.logger.Info("room destroyed", "method", "destroyRoom", "roomID", room.ID)
}

func (that *RoomManager) SetRoomName(roomID, playerID, name string) error {
	room, _, err := that.lockMember(roomID, playerID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	if room.creatorID != playerID {
		return apperror.ErrNotCreator
	}

	if room.match != nil {
		return apperror.ErrAlreadyStarted
	}

	name, err = validateName(name)
	if err != nil {
		return err
	}

	room.name = name
	that.notifier.Broadcast(room.humanIDs(), room.playerUpdate())

	return nil
}

func (that *RoomManager) SetPlayerName(roomID, playerID, name string) error {
	room, player, err := that.lockMember(roomID, playerID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	name, err = validateName(name)
	if err != nil {
		return err
	}

	player.Name = name
	that.notifier.Broadcast(room.humanIDs(), room.playerUpdate())

	return nil
}

func (that *RoomManager) SendChat(roomID, playerID, text string) error {
	room, player, err := that.lockMember(roomID, playerID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	text = strings.TrimSpace(text)
	if text == "" {
		return apperror.ErrEmptyMessage
	}

	if utf8.RuneCountInString(text) > maxChatLength {
		text = string([]rune(text)[:maxChatLength])
	}

	msg := event.ChatMessage{
		SenderID:   player.ID,
		SenderName: player.Name,
		Message:    text,
		SentAt:     time.Now().Unix(),
	}

	room.chat = append(room.chat, msg)
	if extra := len(room.chat) - that.opts.ChatHistory; extra > 0 {
		room.chat = room.chat[extra:]
	}

	that.notifier.Broadcast(room.humanIDs(), msg)

	return nil
}

// RequestState sends the caller a full snapshot.
func (that *RoomManager) RequestState(roomID, playerID string) error {
	room, _, err := that.lockMember(roomID, playerID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	that.notifier.Send(playerID, room.state(playerID))

	return nil
}

func (that *RoomManager) GetRoom(roomID string) (RoomSummary, error) {
	room, err := that.lockRoom(roomID)
	if err != nil {
		return RoomSummary{}, err
	}
	defer room.mu.Unlock()

	return room.summary(), nil
}

// RoomCount is the number of live rooms.
func (that *RoomManager) RoomCount() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms)
}
