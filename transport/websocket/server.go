package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
	"github.com/rocketscienceinc/scrabble-backend/internal/pkg"
	"github.com/rocketscienceinc/scrabble-backend/internal/scrabble"
)

const sessionCookie = "user_session"

var (
	errTrailingData  = errors.New("trailing data after payload")
	errBadPayload    = errors.New("malformed payload")
	errUnknownAction = errors.New("unknown action")
)

type roomService interface {
	CreateRoom(playerID, playerName string) (string, error)
	JoinRoom(roomID, playerID, playerName string) error
	LeaveRoom(roomID, playerID string) error
	Disconnect(playerID string)

	SetRoomName(roomID, playerID, name string) error
	SetPlayerName(roomID, playerID, name string) error
	SendChat(roomID, playerID, text string) error
	RequestState(roomID, playerID string) error

	StartGame(roomID, playerID string, durationMinutes int) error
	PlaceTile(roomID, playerID string, pos entity.Position, tileIndex int, blankLetter string) error
	RecallTiles(roomID, playerID string) error
	SubmitMove(ctx context.Context, roomID, playerID string, placements []scrabble.Placement) error
	ResetBoard(roomID, playerID string) error
	ShuffleTiles(roomID, playerID string) error
	ExchangeTiles(roomID, playerID string, indices []int) error
	PassTurn(roomID, playerID string) error
	ResetGame(roomID, playerID string) error
}

type handlerFunc func(ctx context.Context, playerID string, payload json.RawMessage) error

type Server struct {
	logger   *slog.Logger
	rooms    roomService
	hub      *Hub
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, rooms roomService, hub *Hub) *Server {
	server := &Server{
		logger: logger,
		rooms:  rooms,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	server.handlers = map[string]handlerFunc{
		"createRoom":       server.handleCreateRoom,
		"joinRoom":         server.handleJoinRoom,
		"leaveRoom":        server.handleLeaveRoom,
		"setRoomName":      server.handleSetRoomName,
		"setName":          server.handleSetName,
		"sendChatMessage":  server.handleSendChat,
		"requestGameState": server.handleRequestState,
		"startGame":        server.handleStartGame,
		"placeTile":        server.handlePlaceTile,
		"recallTiles":      server.handleRecallTiles,
		"submitMove":       server.handleSubmitMove,
		"resetBoard":       server.handleResetBoard,
		"shuffleTiles":     server.handleShuffleTiles,
		"exchangeTiles":    server.handleExchangeTiles,
		"passTurn":         server.handlePassTurn,
		"resetGame":        server.handleResetGame,
	}

	return server
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	return mux
}

// Start - starts WebSocket server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveWS(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveWS")

	playerID, header := that.session(req)

	conn, err := that.upgrader.Upgrade(writer, req, header)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(playerID, conn)
	that.hub.register(c)
	go c.writePump()

	log.Info("WebSocket connection established", "playerID", playerID)

	that.sendTo(c, "session", sessionPayload{PlayerID: playerID})
	that.readPump(req.Context(), c)

	if that.hub.unregister(c) {
		that.rooms.Disconnect(playerID)
	}

	log.Info("WebSocket connection closed", "playerID", playerID)
}

// session reads the player id from the session cookie, issuing a new one if absent.
func (that *Server) session(req *http.Request) (string, http.Header) {
	if cookie, err := req.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	cookie := &http.Cookie{
		Name:     sessionCookie,
		Value:    pkg.GenerateNewSessionID(),
		Expires:  time.Now().Add(24 * time.Hour),
		Path:     "/",
		HttpOnly: true,
	}

	header := http.Header{}
	header.Add("Set-Cookie", cookie.String())

	that.logger.Info("session cookie not found, new one created", "method", "session", "cookie", cookie.Value)

	return cookie.Value, header
}

func (that *Server) readPump(ctx context.Context, c *client) {
	log := that.logger.With("method", "readPump", "playerID", c.playerID)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			that.sendTo(c, "moveError", errorPayload{Message: "Malformed message"})
			continue
		}

		that.dispatch(ctx, c, &message)
	}
}

// dispatch runs one command. A panic is contained to the command that caused it.
func (that *Server) dispatch(ctx context.Context, c *client, message *Message) {
	log := that.logger.With("method", "dispatch", "playerID", c.playerID, "action", message.Action)

	defer func() {
		if r := recover(); r != nil {
			log.Error("recovered from panic", "panic", r)
			that.sendTo(c, "moveError", errorPayload{Message: "Internal error"})
		}
	}()

	handler, ok := that.handlers[message.Action]
	if !ok {
		that.reportError(c, message, errUnknownAction)
		return
	}

	if err := handler(ctx, c.playerID, message.Payload); err != nil {
		log.Debug("command rejected", "error", err)
		that.reportError(c, message, err)
	}
}

// sendTo writes to one connection without going through the player lookup.
func (that *Server) sendTo(c *client, action string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		that.logger.Error("failed to marshal payload", "method", "sendTo", "action", action, "error", err)
		return
	}

	msg, err := json.Marshal(Message{Action: action, Payload: raw})
	if err != nil {
		that.logger.Error("failed to marshal message", "method", "sendTo", "action", action, "error", err)
		return
	}

	that.hub.mu.RLock()
	defer that.hub.mu.RUnlock()

	if that.hub.clients[c.playerID] != c {
		return
	}

	that.hub.deliver(c.playerID, msg)
}
