package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
	"github.com/rocketscienceinc/scrabble-backend/internal/repository"
	"github.com/rocketscienceinc/scrabble-backend/internal/usecase"
)

type mockRooms struct {
	mock.Mock
}

func (that *mockRooms) GetRoom(roomID string) (usecase.RoomSummary, error) {
	args := that.Called(roomID)
	return args.Get(0).(usecase.RoomSummary), args.Error(1)
}

func (that *mockRooms) RoomCount() int {
	return that.Called().Int(0)
}

type mockMatches struct {
	mock.Mock
}

func (that *mockMatches) GetByID(ctx context.Context, id string) (*entity.MatchResult, error) {
	args := that.Called(ctx, id)
	return args.Get(0).(*entity.MatchResult), args.Error(1)
}

func serve(t *testing.T, server *Server, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	return rec
}

func newServer(rooms roomReader, matches matchReader) *Server {
	return New(slog.New(slog.NewJSONHandler(io.Discard, nil)), rooms, matches)
}

func TestServer_Ping(t *testing.T) {
	rec := serve(t, newServer(&mockRooms{}, nil), "/ping")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestServer_Health(t *testing.T) {
	rooms := &mockRooms{}
	rooms.On("RoomCount").Return(3)

	rec := serve(t, newServer(rooms, nil), "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"rooms":3}`, rec.Body.String())
}

func TestServer_GetRoom(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		rooms := &mockRooms{}
		rooms.On("GetRoom", "ABC123").Return(usecase.RoomSummary{ID: "ABC123", Name: "Room ABC123", CreatorID: "alice"}, nil)

		rec := serve(t, newServer(rooms, nil), "/rooms/ABC123")

		require.Equal(t, http.StatusOK, rec.Code)

		var summary usecase.RoomSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		assert.Equal(t, "alice", summary.CreatorID)
		rooms.AssertExpectations(t)
	})

	t.Run("Missing", func(t *testing.T) {
		rooms := &mockRooms{}
		rooms.On("GetRoom", "NOPE00").Return(usecase.RoomSummary{}, apperror.ErrRoomNotFound)

		rec := serve(t, newServer(rooms, nil), "/rooms/NOPE00")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestServer_GetMatch(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		matches := &mockMatches{}
		matches.On("GetByID", mock.Anything, "m-1").Return(&entity.MatchResult{MatchID: "m-1", Winner: "alice"}, nil)

		rec := serve(t, newServer(&mockRooms{}, matches), "/matches/m-1")

		require.Equal(t, http.StatusOK, rec.Code)

		var result entity.MatchResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, "alice", result.Winner)
	})

	t.Run("Missing", func(t *testing.T) {
		matches := &mockMatches{}
		matches.On("GetByID", mock.Anything, "m-2").Return(&entity.MatchResult{}, repository.ErrMatchNotFound)

		rec := serve(t, newServer(&mockRooms{}, matches), "/matches/m-2")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Storage failure", func(t *testing.T) {
		matches := &mockMatches{}
		matches.On("GetByID", mock.Anything, "m-3").Return(&entity.MatchResult{}, errors.New("connection refused"))

		rec := serve(t, newServer(&mockRooms{}, matches), "/matches/m-3")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("Archive disabled", func(t *testing.T) {
		rec := serve(t, newServer(&mockRooms{}, nil), "/matches/m-1")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
