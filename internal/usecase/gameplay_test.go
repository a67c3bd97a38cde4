package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
	"github.com/rocketscienceinc/scrabble-backend/internal/dictionary"
	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
	"github.com/rocketscienceinc/scrabble-backend/internal/event"
	"github.com/rocketscienceinc/scrabble-backend/internal/scrabble"
)

func startedRoom(t *testing.T, manager *RoomManager, ids ...string) string {
	t.Helper()

	roomID, err := manager.CreateRoom(ids[0], ids[0])
	require.NoError(t, err)

	for _, id := range ids[1:] {
		require.NoError(t, manager.JoinRoom(roomID, id, id))
	}

	require.NoError(t, manager.StartGame(roomID, ids[0], 0))

	return roomID
}

// openingMove lays the first two rack tiles across the center.
func openingMove(rack []entity.Tile) []scrabble.Placement {
	return []scrabble.Placement{
		{Row: 7, Col: 7, Tile: rack[0], BlankLetter: "E"},
		{Row: 7, Col: 8, Tile: rack[1], BlankLetter: "E"},
	}
}

func boardCount(board [][]*entity.Cell) int {
	n := 0
	for _, row := range board {
		for _, cell := range row {
			if cell != nil {
				n++
			}
		}
	}

	return n
}

func currentTurn(t *testing.T, notifier *recordingNotifier, playerID string) string {
	t.Helper()

	evt, ok := notifier.last(playerID, "turnUpdate")
	require.True(t, ok)

	return evt.(event.TurnUpdate).CurrentPlayer
}

func TestRoomManager_StartGame(t *testing.T) {
	t.Run("Only the creator starts, once", func(t *testing.T) {
		manager, notifier, _ := newTestManager(t, Options{}, allowAll())
		roomID, err := manager.CreateRoom("alice", "Alice")
		require.NoError(t, err)
		require.NoError(t, manager.JoinRoom(roomID, "bob", "Bob"))

		require.ErrorIs(t, manager.StartGame(roomID, "bob", 0), apperror.ErrNotCreator)
		require.NoError(t, manager.StartGame(roomID, "alice", 0))
		require.ErrorIs(t, manager.StartGame(roomID, "alice", 0), apperror.ErrAlreadyStarted)

		// Then: both players got a rack and alice is up
		for _, id := range []string{"alice", "bob"} {
			evt, ok := notifier.last(id, "tileUpdate")
			require.True(t, ok)
			assert.Len(t, evt.(event.TileUpdate).NewTiles, scrabble.DefaultRackSize)
			assert.Equal(t, "alice", currentTurn(t, notifier, id))
		}

		state := stateOf(t, manager, notifier, roomID, "bob")
		assert.Equal(t, 100-2*scrabble.DefaultRackSize, state.TilesLeft)
	})

	t.Run("Empty seats are filled with bots that take their turns", func(t *testing.T) {
		// Given: a lone player and a minimum of two
		manager, notifier, _ := newTestManager(t, Options{MinPlayers: 2}, allowAll())
		roomID := startedRoom(t, manager, "alice")

		started, ok := notifier.last("alice", "gameStarted")
		require.True(t, ok)
		require.Len(t, started.(event.GameStarted).TurnOrder, 2)

		// When: alice passes
		require.NoError(t, manager.PassTurn(roomID, "alice"))

		// Then: the bot plays and hands the turn back
		assert.Equal(t, "alice", currentTurn(t, notifier, "alice"))
		summary, err := manager.GetRoom(roomID)
		require.NoError(t, err)
		assert.True(t, summary.Players[1].IsBot)
	})
}

func TestRoomManager_SubmitMove(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid word is committed and broadcast", func(t *testing.T) {
		// Given: a started two player game
		manager, notifier, _ := newTestManager(t, Options{}, allowAll())
		roomID := startedRoom(t, manager, "alice", "bob")
		rack := stateOf(t, manager, notifier, roomID, "alice").Rack

		// When: alice plays two tiles through the center
		err := manager.SubmitMove(ctx, roomID, "alice", openingMove(rack))

		// Then: everybody sees the word, bob is up, alice is refilled
		require.NoError(t, err)

		word, ok := notifier.last("bob", "wordSubmitted")
		require.True(t, ok)
		assert.Len(t, word.(event.WordSubmitted).Word, 2)

		board, ok := notifier.last("bob", "boardUpdate")
		require.True(t, ok)
		assert.Equal(t, 2, boardCount(board.(event.BoardUpdate).Board))

		assert.Equal(t, "bob", currentTurn(t, notifier, "alice"))
		assert.Len(t, stateOf(t, manager, notifier, roomID, "alice").Rack, scrabble.DefaultRackSize)
	})

	t.Run("Rejected word leaves the game untouched", func(t *testing.T) {
		reject := dictionary.ValidatorFunc(func(context.Context, string) bool { return false })
		manager, notifier, _ := newTestManager(t, Options{}, reject)
		roomID := startedRoom(t, manager, "alice", "bob")
		before := stateOf(t, manager, notifier, roomID, "alice")

		err := manager.SubmitMove(ctx, roomID, "alice", openingMove(before.Rack))

		require.ErrorIs(t, err, apperror.ErrInvalidWord)
		after := stateOf(t, manager, notifier, roomID, "alice")
		assert.Equal(t, 0, boardCount(after.Board))
		assert.Equal(t, "alice", after.CurrentPlayer)
		assert.Equal(t, before.Rack, after.Rack)
		assert.Equal(t, 0, notifier.count("bob", "wordSubmitted"))
	})

	t.Run("Out of turn submission is refused", func(t *testing.T) {
		manager, notifier, _ := newTestManager(t, Options{}, allowAll())
		roomID := startedRoom(t, manager, "alice", "bob")
		rack := stateOf(t, manager, notifier, roomID, "bob").Rack

		err := manager.SubmitMove(ctx, roomID, "bob", openingMove(rack))

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("Double submit commits once", func(t *testing.T) {
		// Given: a slow dictionary
		slow := dictionary.ValidatorFunc(func(context.Context, string) bool {
			time.Sleep(20 * time.Millisecond)
			return true
		})
		manager, notifier, _ := newTestManager(t, Options{}, slow)
		roomID := startedRoom(t, manager, "alice", "bob")
		move := openingMove(stateOf(t, manager, notifier, roomID, "alice").Rack)

		// When: the same move arrives twice at once
		errs := make([]error, 2)
		var wg sync.WaitGroup
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = manager.SubmitMove(ctx, roomID, "alice", move)
			}()
		}
		wg.Wait()

		// Then: exactly one is accepted
		accepted := 0
		for _, err := range errs {
			if err == nil {
				accepted++
				continue
			}
			require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		}
		assert.Equal(t, 1, accepted)
		assert.Equal(t, 2, boardCount(stateOf(t, manager, notifier, roomID, "bob").Board))
	})

	t.Run("Room stays responsive while the dictionary is asked", func(t *testing.T) {
		// Given: a dictionary that waits for a signal
		entered := make(chan struct{})
		release := make(chan struct{})
		var once sync.Once
		blocking := dictionary.ValidatorFunc(func(context.Context, string) bool {
			once.Do(func() { close(entered) })
			<-release
			return true
		})
		manager, notifier, _ := newTestManager(t, Options{}, blocking)
		roomID := startedRoom(t, manager, "alice", "bob")
		otherRoom := startedRoom(t, manager, "carol", "dave")
		move := openingMove(stateOf(t, manager, notifier, roomID, "alice").Rack)

		done := make(chan error, 1)
		go func() {
			done <- manager.SubmitMove(ctx, roomID, "alice", move)
		}()
		<-entered

		// When: other commands arrive during the lookup
		// Then: they are served at once
		require.NoError(t, manager.SendChat(roomID, "bob", "take your time"))
		require.NoError(t, manager.RequestState(roomID, "bob"))
		require.NoError(t, manager.PassTurn(otherRoom, "carol"))

		close(release)
		require.NoError(t, <-done)
	})

	t.Run("Staged tiles are submitted", func(t *testing.T) {
		manager, notifier, _ := newTestManager(t, Options{}, allowAll())
		roomID := startedRoom(t, manager, "alice", "bob")

		require.NoError(t, manager.PlaceTile(roomID, "alice", entity.Position{Row: 7, Col: 7}, 0, "E"))
		require.NoError(t, manager.PlaceTile(roomID, "alice", entity.Position{Row: 7, Col: 8}, 1, "E"))

		placed, ok := notifier.last("bob", "tilePlaced")
		require.True(t, ok)
		assert.Equal(t, 8, placed.(event.TilePlaced).Col)

		require.NoError(t, manager.SubmitMove(ctx, roomID, "alice", nil))
		assert.Equal(t, "bob", currentTurn(t, notifier, "bob"))
	})
}

func TestRoomManager_TurnExclusivity(t *testing.T) {
	manager, notifier, _ := newTestManager(t, Options{}, allowAll())
	roomID := startedRoom(t, manager, "alice", "bob")
	before := stateOf(t, manager, notifier, roomID, "bob")

	require.ErrorIs(t, manager.PlaceTile(roomID, "bob", entity.Position{Row: 7, Col: 7}, 0, "E"), apperror.ErrNotYourTurn)
	require.ErrorIs(t, manager.ResetBoard(roomID, "bob"), apperror.ErrNotYourTurn)
	require.ErrorIs(t, manager.ShuffleTiles(roomID, "bob"), apperror.ErrNotYourTurn)
	require.ErrorIs(t, manager.ExchangeTiles(roomID, "bob", []int{0}), apperror.ErrNotYourTurn)
	require.ErrorIs(t, manager.PassTurn(roomID, "bob"), apperror.ErrNotYourTurn)
	require.ErrorIs(t, manager.RecallTiles(roomID, "bob"), apperror.ErrNotYourTurn)

	after := stateOf(t, manager, notifier, roomID, "bob")
	assert.Equal(t, before.Rack, after.Rack)
	assert.Equal(t, "alice", after.CurrentPlayer)
	assert.Equal(t, before.TilesLeft, after.TilesLeft)
}

func TestRoomManager_TurnRotation(t *testing.T) {
	// Given: three players and a long reconnect grace
	manager, notifier, _ := newTestManager(t, Options{ReconnectGrace: time.Hour}, allowAll())
	roomID := startedRoom(t, manager, "p1", "p2", "p3")
	rack := stateOf(t, manager, notifier, roomID, "p1").Rack

	// When: p1 plays
	require.NoError(t, manager.SubmitMove(context.Background(), roomID, "p1", openingMove(rack)))

	// Then: p2 is up
	assert.Equal(t, "p2", currentTurn(t, notifier, "p3"))

	// When: p2 drops before moving
	manager.Disconnect("p2")

	// Then: p3 is up without waiting for p2
	assert.Equal(t, "p3", currentTurn(t, notifier, "p3"))
}

func TestRoomManager_Reconnect(t *testing.T) {
	t.Run("Bots wait for the only human to come back", func(t *testing.T) {
		// Given: alice alone against a bot
		manager, notifier, _ := newTestManager(t, Options{MinPlayers: 2, ReconnectGrace: time.Hour}, allowAll())
		roomID := startedRoom(t, manager, "alice")

		// When: alice drops on her turn
		manager.Disconnect("alice")

		// Then: the bot holds the turn and the match is still on
		summary, err := manager.GetRoom(roomID)
		require.NoError(t, err)
		assert.Equal(t, scrabble.PhasePlaying, summary.Phase)
		assert.Equal(t, summary.Players[1].ID, currentTurn(t, notifier, "alice"))
		assert.Zero(t, notifier.count("alice", "gameEnd"))

		// When: she comes back
		require.NoError(t, manager.JoinRoom(roomID, "alice", "alice"))

		// Then: the bot moves and hands the turn back
		assert.Equal(t, "alice", currentTurn(t, notifier, "alice"))
		summary, err = manager.GetRoom(roomID)
		require.NoError(t, err)
		assert.Equal(t, scrabble.PhasePlaying, summary.Phase)
	})

	t.Run("Rejoining takes a turn stuck on an offline seat", func(t *testing.T) {
		// Given: both players offline with the turn left on bob
		manager, notifier, _ := newTestManager(t, Options{ReconnectGrace: time.Hour}, allowAll())
		roomID := startedRoom(t, manager, "alice", "bob")
		manager.Disconnect("bob")
		manager.Disconnect("alice")
		require.Equal(t, "bob", currentTurn(t, notifier, "alice"))

		// When: alice rejoins
		require.NoError(t, manager.JoinRoom(roomID, "alice", "alice"))

		// Then: the turn is hers
		assert.Equal(t, "alice", currentTurn(t, notifier, "alice"))
		assert.Equal(t, "alice", stateOf(t, manager, notifier, roomID, "alice").CurrentPlayer)
	})
}

func TestRoomManager_RackCommands(t *testing.T) {
	t.Run("Shuffle waits for a recall", func(t *testing.T) {
		manager, notifier, _ := newTestManager(t, Options{}, allowAll())
		roomID := startedRoom(t, manager, "alice", "bob")

		require.NoError(t, manager.PlaceTile(roomID, "alice", entity.Position{Row: 7, Col: 7}, 0, "E"))
		require.ErrorIs(t, manager.ShuffleTiles(roomID, "alice"), apperror.ErrPendingPlacements)

		require.NoError(t, manager.RecallTiles(roomID, "alice"))
		_, ok := notifier.last("bob", "tilesRecalled")
		assert.True(t, ok)

		require.NoError(t, manager.ShuffleTiles(roomID, "alice"))
		assert.Equal(t, 2, notifier.count("alice", "tileUpdate"))
		assert.Equal(t, 1, notifier.count("bob", "tileUpdate"))
	})

	t.Run("Exchange swaps tiles and ends the turn", func(t *testing.T) {
		manager, notifier, _ := newTestManager(t, Options{}, allowAll())
		roomID := startedRoom(t, manager, "alice", "bob")

		require.NoError(t, manager.ExchangeTiles(roomID, "alice", []int{0, 1, 2}))

		evt, ok := notifier.last("alice", "tileUpdate")
		require.True(t, ok)
		assert.Len(t, evt.(event.TileUpdate).NewTiles, scrabble.DefaultRackSize)
		assert.Equal(t, "bob", currentTurn(t, notifier, "alice"))
	})

	t.Run("Reset board returns its tiles to the bag", func(t *testing.T) {
		manager, notifier, _ := newTestManager(t, Options{}, allowAll())
		roomID := startedRoom(t, manager, "alice", "bob")
		rack := stateOf(t, manager, notifier, roomID, "alice").Rack
		require.NoError(t, manager.SubmitMove(context.Background(), roomID, "alice", openingMove(rack)))
		left := stateOf(t, manager, notifier, roomID, "bob").TilesLeft

		require.NoError(t, manager.ResetBoard(roomID, "bob"))

		board, ok := notifier.last("alice", "boardUpdate")
		require.True(t, ok)
		assert.Equal(t, 0, boardCount(board.(event.BoardUpdate).Board))
		assert.Equal(t, left+2, board.(event.BoardUpdate).TilesLeft)
	})
}

func TestRoomManager_Spectator(t *testing.T) {
	// Given: a running game
	manager, notifier, _ := newTestManager(t, Options{}, allowAll())
	roomID := startedRoom(t, manager, "alice", "bob")

	// When: carol joins late
	require.NoError(t, manager.JoinRoom(roomID, "carol", "Carol"))

	// Then: she receives the state but cannot play
	state, ok := notifier.last("carol", "gameState")
	require.True(t, ok)
	assert.Equal(t, scrabble.PhasePlaying, state.(event.GameState).Phase)
	assert.Empty(t, state.(event.GameState).Rack)
	assert.True(t, state.(event.GameState).Players[2].Spectator)

	require.ErrorIs(t, manager.PassTurn(roomID, "carol"), apperror.ErrSpectator)
}

func TestRoomManager_ResetGame(t *testing.T) {
	// Given: a timed game in progress
	manager, notifier, _ := newTestManager(t, Options{DefaultDuration: time.Hour, TickInterval: 5 * time.Millisecond}, allowAll())
	roomID := startedRoom(t, manager, "alice", "bob")
	require.NoError(t, manager.PassTurn(roomID, "alice"))

	room, err := manager.getRoom(roomID)
	require.NoError(t, err)
	room.mu.Lock()
	ticking := room.clock
	room.mu.Unlock()
	require.NotNil(t, ticking)

	// When: bob tries and alice resets
	require.ErrorIs(t, manager.ResetGame(roomID, "bob"), apperror.ErrNotCreator)
	require.NoError(t, manager.ResetGame(roomID, "alice"))

	// Then: the clock is released and the room is back in the lobby
	select {
	case <-ticking.done:
	case <-time.After(time.Second):
		t.Fatal("match clock still running after reset")
	}

	_, ok := notifier.last("bob", "gameReset")
	assert.True(t, ok)

	state := stateOf(t, manager, notifier, roomID, "alice")
	assert.Equal(t, scrabble.PhaseWaiting, state.Phase)
	for _, player := range state.Players {
		assert.Zero(t, player.Score)
	}

	require.NoError(t, manager.StartGame(roomID, "alice", 0))
}

func TestRoomManager_TimedMatch(t *testing.T) {
	t.Run("Expiry ends and archives the match", func(t *testing.T) {
		manager, notifier, archive := newTestManager(t, Options{DefaultDuration: 30 * time.Millisecond, TickInterval: 5 * time.Millisecond}, allowAll())
		roomID := startedRoom(t, manager, "alice", "bob")

		assert.Eventually(t, func() bool {
			_, ok := notifier.last("bob", "gameEnd")
			return ok
		}, time.Second, 5*time.Millisecond)

		evt, _ := notifier.last("bob", "gameEnd")
		end := evt.(event.GameEnd)
		assert.Equal(t, scrabble.EndReasonTimeUp, end.Reason)
		assert.True(t, end.Tie)
		assert.Equal(t, "alice", end.Winner)

		assert.Eventually(t, func() bool {
			return len(archive.saved()) == 1
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, roomID, archive.saved()[0].RoomID)

		require.ErrorIs(t, manager.PassTurn(roomID, "alice"), apperror.ErrGameFinished)
	})

	t.Run("Destroying the room stops the clock", func(t *testing.T) {
		manager, _, _ := newTestManager(t, Options{DefaultDuration: time.Hour, TickInterval: 5 * time.Millisecond}, allowAll())
		roomID := startedRoom(t, manager, "alice")

		room, err := manager.getRoom(roomID)
		require.NoError(t, err)
		room.mu.Lock()
		ticking := room.clock
		room.mu.Unlock()

		require.NoError(t, manager.LeaveRoom(roomID, "alice"))

		select {
		case <-ticking.done:
		case <-time.After(time.Second):
			t.Fatal("match clock still running after the room was destroyed")
		}
	})
}
