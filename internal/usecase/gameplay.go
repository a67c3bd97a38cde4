package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
	"github.com/rocketscienceinc/scrabble-backend/internal/event"
	"github.com/rocketscienceinc/scrabble-backend/internal/pkg"
	"github.com/rocketscienceinc/scrabble-backend/internal/scrabble"
	"github.com/rocketscienceinc/scrabble-backend/internal/service"
)

// StartGame deals a new match to everyone in the room, filling empty seats with
// bots up to the minimum. durationMinutes <= 0 uses the configured default.
func (that *RoomManager) StartGame(roomID, playerID string, durationMinutes int) error {
	log := that.logger.With("method", "StartGame", "roomID", roomID, "playerID", playerID)

	room, _, err := that.lockMember(roomID, playerID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	if room.creatorID != playerID {
		return apperror.ErrNotCreator
	}

	if room.match != nil && !room.match.IsEnded() {
		return apperror.ErrAlreadyStarted
	}

	room.dropBots()
	for i := 1; len(room.players) < that.opts.MinPlayers; i++ {
		room.players = append(room.players, entity.NewBotPlayer(fmt.Sprintf("bot-%s-%d", room.ID, i), fmt.Sprintf("Bot %d", i)))
	}

	match := scrabble.NewMatch(pkg.GenerateMatchID(), room.players, scrabble.Config{
		RackSize:     that.opts.RackSize,
		Distribution: that.opts.Distribution,
		Rand:         that.opts.NewRand(),
	})
	if err = match.Start(); err != nil {
		return fmt.Errorf("failed to start match: %w", err)
	}

	room.match = match

	duration := that.opts.DefaultDuration
	if durationMinutes > 0 {
		duration = time.Duration(durationMinutes) * time.Minute
	}

	that.stopClock(room)
	if duration > 0 {
		room.deadline = time.Now().Add(duration)
		room.clock = that.startClock(room)
	}

	recipients := room.humanIDs()
	that.notifier.Broadcast(recipients, event.GameStarted{
		MatchID:         match.ID,
		TurnOrder:       match.TurnOrder(),
		DurationSeconds: int(duration.Seconds()),
	})
	that.notifier.Broadcast(recipients, room.boardUpdate())
	that.sendRacks(room)
	that.notifier.Broadcast(recipients, room.playerUpdate())
	if duration > 0 {
		that.notifier.Broadcast(recipients, event.TimeUpdate{TimeLeft: room.timeLeft()})
	}

	log.Info("game started", "matchID", match.ID, "players", len(room.players))

	that.afterTurn(room)

	return nil
}

// lockMatch is lockMember for commands that need a match.
func (that *RoomManager) lockMatch(roomID, playerID string) (*Room, error) {
	room, _, err := that.lockMember(roomID, playerID)
	if err != nil {
		return nil, err
	}

	if room.match == nil {
		room.mu.Unlock()
		return nil, apperror.ErrGameIsNotStarted
	}

	return room, nil
}

func (that *RoomManager) PlaceTile(roomID, playerID string, pos entity.Position, tileIndex int, blankLetter string) error {
	room, err := that.lockMatch(roomID, playerID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	placement, err := room.match.PlaceTile(playerID, pos, tileIndex, blankLetter)
	if err != nil {
		return err
	}

	that.notifier.Broadcast(room.humanIDs(), event.TilePlaced{
		PlayerID: playerID,
		Row:      placement.Row,
		Col:      placement.Col,
		Tile:     placement.Tile,
		Letter:   placement.Face(),
	})

	return nil
}

func (that *RoomManager) RecallTiles(roomID, playerID string) error {
	room, err := that.lockMatch(roomID, playerID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	if err = room.match.RecallTiles(playerID); err != nil {
		return err
	}

	that.notifier.Broadcast(room.humanIDs(), event.TilesRecalled{PlayerID: playerID})

	return nil
}

// SubmitMove validates the move, asks the dictionary without holding the room
// lock and commits. Submissions for one room are handled one at a time in
// arrival order; an empty placement list submits the staged tiles.
func (that *RoomManager) SubmitMove(ctx context.Context, roomID, playerID string, placements []scrabble.Placement) error {
	log := that.logger.With("method", "SubmitMove", "roomID", roomID, "playerID", playerID)

	room, err := that.getRoom(roomID)
	if err != nil {
		return err
	}

	room.submitMu.Lock()
	defer room.submitMu.Unlock()

	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return apperror.ErrRoomNotFound
	}

	match := room.match
	if match == nil {
		room.mu.Unlock()
		return apperror.ErrGameIsNotStarted
	}

	move, err := match.PrepareMove(playerID, placements)
	room.mu.Unlock()

	if err != nil {
		return err
	}

	if !that.validator.IsValidWord(ctx, move.Word) {
		log.Info("word rejected", "word", move.Word)
		return fmt.Errorf("%w: %s", apperror.ErrInvalidWord, move.Word)
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed {
		return apperror.ErrRoomNotFound
	}

	if room.match != match {
		return apperror.ErrGameFinished
	}

	result, err := match.CommitMove(move)
	if err != nil {
		return err
	}

	recipients := room.humanIDs()
	that.notifier.Broadcast(recipients, event.WordSubmitted{PlayerID: playerID, Word: result.Move.Word, Score: result.Move.Score})
	that.notifier.Broadcast(recipients, room.boardUpdate())
	that.notifier.Send(playerID, event.TileUpdate{NewTiles: match.Rack(playerID)})
	that.notifier.Broadcast(recipients, room.playerUpdate())

	log.Info("move committed", "word", result.Move.Word, "score", result.Move.Score)

	if result.Ended {
		that.finishMatch(room)
		return nil
	}

	that.afterTurn(room)

	return nil
}

// ResetBoard clears the board. Its tiles go back to the bag.
func (that *RoomManager) ResetBoard(roomID, playerID string) error {
	room, err := that.lockMatch(roomID, playerID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	if err = room.match.ResetBoard(playerID); err != nil {
		return err
	}

	that.notifier.Broadcast(room.humanIDs(), room.boardUpdate())

	return nil
}

func (that *RoomManager) ShuffleTiles(roomID, playerID string) error {
	room, err := that.lockMatch(roomID, playerID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	if err = room.match.ShuffleRack(playerID); err != nil {
		return err
	}

	that.notifier.Send(playerID, event.TileUpdate{NewTiles: room.match.Rack(playerID)})

	return nil
}

func (that *RoomManager) ExchangeTiles(roomID, playerID string, indices []int) error {
	room, err := that.lockMatch(roomID, playerID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	_, ended, err := room.match.ExchangeTiles(playerID, indices)
	if err != nil {
		return err
	}

	that.notifier.Send(playerID, event.TileUpdate{NewTiles: room.match.Rack(playerID)})
	that.notifier.Broadcast(room.humanIDs(), room.boardUpdate())

	that.endTurn(room, ended)

	return nil
}

func (that *RoomManager) PassTurn(roomID, playerID string) error {
	room, err := that.lockMatch(roomID, playerID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	ended, err := room.match.Pass(playerID)
	if err != nil {
		return err
	}

	that.endTurn(room, ended)

	return nil
}

// ResetGame drops the match and returns the room to the lobby with zeroed scores.
func (that *RoomManager) ResetGame(roomID, playerID string) error {
	room, _, err := that.lockMember(roomID, playerID)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	if room.creatorID != playerID {
		return apperror.ErrNotCreator
	}

	if room.match == nil {
		return apperror.ErrGameIsNotStarted
	}

	that.stopClock(room)
	room.match = nil
	room.dropBots()
	for _, player := range room.players {
		player.Score = 0
	}

	that.notifier.Broadcast(room.humanIDs(), event.GameReset{})
	that.notifier.Broadcast(room.humanIDs(), room.playerUpdate())

	that.logger.Info("game reset", "method", "ResetGame", "roomID", room.ID)

	return nil
}

func (that *RoomManager) endTurn(room *Room, ended bool) {
	if ended {
		that.finishMatch(room)
		return
	}

	that.afterTurn(room)
}

// afterTurn announces the turn holder and plays bot turns until a human is up.
// Bots wait while no seated human is connected; a rejoin resumes them.
func (that *RoomManager) afterTurn(room *Room) {
	recipients := room.humanIDs()

	for room.match != nil && room.match.IsPlaying() {
		that.notifier.Broadcast(recipients, event.TurnUpdate{CurrentPlayer: room.match.CurrentPlayerID()})

		current := room.match.CurrentPlayer()
		if current == nil || !current.IsBot {
			return
		}

		if !room.seatedHumanOnline() {
			that.logger.Debug("bots paused", "method", "afterTurn", "roomID", room.ID)
			return
		}

		ended, err := that.playBot(room, current.ID)
		if err != nil {
			that.logger.Error("bot failed to act", "method", "afterTurn", "roomID", room.ID, "error", err)
			return
		}

		if ended {
			that.finishMatch(room)
			return
		}
	}
}

func (that *RoomManager) playBot(room *Room, botID string) (bool, error) {
	action := that.bots.NextAction(room.match.Rack(botID), room.match.TilesLeft())

	if action.Kind == service.BotExchange {
		_, ended, err := room.match.ExchangeTiles(botID, action.Indices)
		if err == nil {
			that.notifier.Broadcast(room.humanIDs(), room.boardUpdate())
			return ended, nil
		}
	}

	ended, err := room.match.Pass(botID)
	if err != nil {
		return false, fmt.Errorf("failed to pass bot turn: %w", err)
	}

	return ended, nil
}

func (that *RoomManager) sendRacks(room *Room) {
	for _, id := range room.match.TurnOrder() {
		if player := room.player(id); player != nil && !player.IsBot {
			that.notifier.Send(id, event.TileUpdate{NewTiles: room.match.Rack(id)})
		}
	}
}

// finishMatch announces the result and archives it. Caller holds room.mu.
func (that *RoomManager) finishMatch(room *Room) {
	that.stopClock(room)

	match := room.match
	winner, tie, reason := match.Result()

	scores := make(map[string]int, len(room.players))
	result := &entity.MatchResult{
		MatchID:   match.ID,
		RoomID:    room.ID,
		RoomName:  room.name,
		Winner:    winner,
		Tie:       tie,
		Reason:    string(reason),
		StartedAt: match.StartedAt(),
		EndedAt:   time.Now(),
	}

	winnerName := ""
	for _, id := range match.TurnOrder() {
		player := room.player(id)
		if player == nil {
			continue
		}

		scores[id] = player.Score
		result.Players = append(result.Players, entity.ResultPlayer{
			ID:    id,
			Name:  player.Name,
			Score: player.Score,
			IsBot: player.IsBot,
		})

		if id == winner {
			winnerName = player.Name
		}
	}

	that.notifier.Broadcast(room.humanIDs(), event.GameEnd{
		Winner:     winner,
		WinnerName: winnerName,
		Tie:        tie,
		Reason:     reason,
		Scores:     scores,
	})
	that.notifier.Broadcast(room.humanIDs(), room.playerUpdate())

	that.logger.Info("game ended", "method", "finishMatch", "roomID", room.ID, "winner", winner, "reason", reason)

	if that.archive == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()

		if err := that.archive.Save(ctx, result); err != nil {
			that.logger.Error("failed to archive match", "method", "finishMatch", "matchID", result.MatchID, "error", err)
		}
	}()
}
