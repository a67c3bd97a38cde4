package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
	"github.com/rocketscienceinc/scrabble-backend/internal/event"
)

const defaultPlayerName = "Player"

func parse(raw json.RawMessage, v any) error {
	if err := decode(raw, v); err != nil {
		return fmt.Errorf("%w: %w", errBadPayload, err)
	}

	return nil
}

// reportError tells the sender why a command was refused.
func (that *Server) reportError(c *client, message *Message, err error) {
	if errors.Is(err, apperror.ErrRoomNotFound) {
		var ref roomPayload
		_ = json.Unmarshal(message.Payload, &ref)

		evt := event.RoomNotFound{RoomID: ref.RoomID}
		that.sendTo(c, evt.Name(), evt)

		return
	}

	text := apperror.Message(err)
	switch {
	case errors.Is(err, errUnknownAction):
		text = "Unknown action: " + message.Action
	case errors.Is(err, errBadPayload):
		text = "Malformed payload for " + message.Action
	}

	evt := event.MoveError{Message: text}
	that.sendTo(c, evt.Name(), evt)
}

func (that *Server) handleCreateRoom(_ context.Context, playerID string, raw json.RawMessage) error {
	var payload createRoomPayload
	if err := parse(raw, &payload); err != nil {
		return err
	}

	if payload.PlayerName == "" {
		payload.PlayerName = defaultPlayerName
	}

	_, err := that.rooms.CreateRoom(playerID, payload.PlayerName)

	return err
}

func (that *Server) handleJoinRoom(_ context.Context, playerID string, raw json.RawMessage) error {
	var payload joinRoomPayload
	if err := parse(raw, &payload); err != nil {
		return err
	}

	if payload.PlayerName == "" {
		payload.PlayerName = defaultPlayerName
	}

	return that.rooms.JoinRoom(payload.RoomID, playerID, payload.PlayerName)
}

func (that *Server) handleLeaveRoom(_ context.Context, playerID string, raw json.RawMessage) error {
	var payload roomPayload
	if err := parse(raw, &payload); err != nil {
		return err
	}

	return that.rooms.LeaveRoom(payload.RoomID, playerID)
}

func (that *Server) handleSetRoomName(_ context.Context, playerID string, raw json.RawMessage) error {
	var payload namePayload
	if err := parse(raw, &payload); err != nil {
		return err
	}

	return that.rooms.SetRoomName(payload.RoomID, playerID, payload.Name)
}

func (that *Server) handleSetName(_ context.Context, playerID string, raw json.RawMessage) error {
	var payload namePayload
	if err := parse(raw, &payload); err != nil {
		return err
	}

	return that.rooms.SetPlayerName(payload.RoomID, playerID, payload.Name)
}

func (that *Server) handleSendChat(_ context.Context, playerID string, raw json.RawMessage) error {
	var payload chatPayload
	if err := parse(raw, &payload); err != nil {
		return err
	}

	return that.rooms.SendChat(payload.RoomID, playerID, payload.Message)
}

func (that *Server) handleRequestState(_ context.Context, playerID string, raw json.RawMessage) error {
	var payload roomPayload
	if err := parse(raw, &payload); err != nil {
		return err
	}

	return that.rooms.RequestState(payload.RoomID, playerID)
}

func (that *Server) handleStartGame(_ context.Context, playerID string, raw json.RawMessage) error {
	var payload startGamePayload
	if err := parse(raw, &payload); err != nil {
		return err
	}

	return that.rooms.StartGame(payload.RoomID, playerID, payload.DurationMinutes)
}

func (that *Server) handlePlaceTile(_ context.Context, playerID string, raw json.RawMessage) error {
	var payload placeTilePayload
	if err := parse(raw, &payload); err != nil {
		return err
	}

	pos := entity.Position{Row: payload.Row, Col: payload.Col}

	return that.rooms.PlaceTile(payload.RoomID, playerID, pos, payload.TileIndex, payload.BlankLetter)
}

func (that *Server) handleRecallTiles(_ context.Context, playerID string, raw json.RawMessage) error {
	var payload roomPayload
	if err := parse(raw, &payload); err != nil {
		return err
	}

	return that.rooms.RecallTiles(payload.RoomID, playerID)
}

func (that *Server) handleSubmitMove(ctx context.Context, playerID string, raw json.RawMessage) error {
	var payload submitMovePayload
	if err := parse(raw, &payload); err != nil {
		return err
	}

	return that.rooms.SubmitMove(ctx, payload.RoomID, playerID, payload.PlacedTiles)
}

func (that *Server) handleResetBoard(_ context.Context, playerID string, raw json.RawMessage) error {
	var payload roomPayload
	if err := parse(raw, &payload); err != nil {
		return err
	}

	return that.rooms.ResetBoard(payload.RoomID, playerID)
}

func (that *Server) handleShuffleTiles(_ context.Context, playerID string, raw json.RawMessage) error {
	var payload roomPayload
	if err := parse(raw, &payload); err != nil {
		return err
	}

	return that.rooms.ShuffleTiles(payload.RoomID, playerID)
}

func (that *Server) handleExchangeTiles(_ context.Context, playerID string, raw json.RawMessage) error {
	var payload exchangeTilesPayload
	if err := parse(raw, &payload); err != nil {
		return err
	}

	return that.rooms.ExchangeTiles(payload.RoomID, playerID, payload.TileIndices)
}

func (that *Server) handlePassTurn(_ context.Context, playerID string, raw json.RawMessage) error {
	var payload roomPayload
	if err := parse(raw, &payload); err != nil {
		return err
	}

	return that.rooms.PassTurn(payload.RoomID, playerID)
}

func (that *Server) handleResetGame(_ context.Context, playerID string, raw json.RawMessage) error {
	var payload roomPayload
	if err := parse(raw, &payload); err != nil {
		return err
	}

	return that.rooms.ResetGame(payload.RoomID, playerID)
}
