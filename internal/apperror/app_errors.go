package apperror

import "errors"

// client command errors.
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrPlayerNotInRoom  = errors.New("player is not in the room")
	ErrNotCreator       = errors.New("only the room creator can do that")
	ErrAlreadyStarted   = errors.New("game has already started")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrGameFinished     = errors.New("game is already finished")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrRoomFull         = errors.New("room is full")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrInvalidName      = errors.New("invalid name")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrSpectator        = errors.New("spectators can't play this match")
)

// move rejection errors.
var (
	ErrEmptyMove          = errors.New("no tiles placed")
	ErrOutOfBounds        = errors.New("placement is outside the board")
	ErrCellOccupied       = errors.New("cell is already occupied")
	ErrOverlap            = errors.New("two tiles placed on the same cell")
	ErrNotALine           = errors.New("tiles must be placed in a single row or column")
	ErrDisconnected       = errors.New("tiles must form a contiguous line")
	ErrMustCoverCenter    = errors.New("first word must cover the center square")
	ErrNotConnected       = errors.New("word must connect to tiles already on the board")
	ErrNoWord             = errors.New("move does not form a word of at least two letters")
	ErrInvalidWord        = errors.New("not a valid word")
	ErrTileNotInRack      = errors.New("tile is not in your rack")
	ErrInvalidTileIndex   = errors.New("invalid tile index")
	ErrInvalidBlankLetter = errors.New("blank tile needs a letter from A to Z")
	ErrPendingPlacements  = errors.New("recall placed tiles first")
	ErrEmptyExchange      = errors.New("no tiles selected for exchange")
	ErrBagTooSmall        = errors.New("not enough tiles left in the bag")
)

var messages = map[error]string{
	ErrRoomNotFound:       "Room does not exist",
	ErrNotYourTurn:        "Not your turn!",
	ErrCellOccupied:       "Tile already placed!",
	ErrInvalidWord:        "Invalid word!",
	ErrNotCreator:         "Only the room creator can do that",
	ErrAlreadyStarted:     "Game has already started",
	ErrGameIsNotStarted:   "Game has not started yet",
	ErrGameFinished:       "Game is over",
	ErrMustCoverCenter:    "First word must cover the center square",
	ErrNotConnected:       "Word must connect to existing tiles",
	ErrNotALine:           "Tiles must be in a single row or column",
	ErrDisconnected:       "Tiles must not leave gaps",
	ErrNoWord:             "Place at least two letters",
	ErrEmptyMove:          "Place some tiles first",
	ErrTileNotInRack:      "You don't have that tile",
	ErrPendingPlacements:  "Recall your placed tiles first",
	ErrInvalidBlankLetter: "Pick a letter for the blank tile",
}

// Message returns the reason string shown to the client for err.
func Message(err error) string {
	for sentinel, msg := range messages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}

	var unwrapped error = err
	for {
		next := errors.Unwrap(unwrapped)
		if next == nil {
			break
		}
		unwrapped = next
	}

	return unwrapped.Error()
}
