package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/scrabble-backend/internal/apperror"
	"github.com/rocketscienceinc/scrabble-backend/internal/repository"
)

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	OK    bool `json:"ok"`
	Rooms int  `json:"rooms"`
}

func (that *Server) ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Error("failed to write response", "method", "ping", "error", err)
	}
}

func (that *Server) health(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, healthResponse{OK: true, Rooms: that.rooms.RoomCount()})
}

func (that *Server) getRoom(w http.ResponseWriter, r *http.Request) {
	summary, err := that.rooms.GetRoom(chi.URLParam(r, "roomID"))
	if errors.Is(err, apperror.ErrRoomNotFound) {
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: "room not found"})
		return
	}

	if err != nil {
		that.logger.Error("failed to get room", "method", "getRoom", "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	that.writeJSON(w, http.StatusOK, summary)
}

func (that *Server) getMatch(w http.ResponseWriter, r *http.Request) {
	if that.matches == nil {
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: "match archive is disabled"})
		return
	}

	result, err := that.matches.GetByID(r.Context(), chi.URLParam(r, "matchID"))
	if errors.Is(err, repository.ErrMatchNotFound) {
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: "match not found"})
		return
	}

	if err != nil {
		that.logger.Error("failed to get match", "method", "getMatch", "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	that.writeJSON(w, http.StatusOK, result)
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to encode response", "method", "writeJSON", "error", err)
	}
}
