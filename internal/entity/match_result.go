package entity

import "time"

// MatchResult is the archived outcome of a finished match.
type MatchResult struct {
	MatchID   string         `json:"match_id"`
	RoomID    string         `json:"room_id"`
	RoomName  string         `json:"room_name"`
	Players   []ResultPlayer `json:"players"`
	Winner    string         `json:"winner"`
	Tie       bool           `json:"tie"`
	Reason    string         `json:"reason"`
	StartedAt time.Time      `json:"started_at"`
	EndedAt   time.Time      `json:"ended_at"`
}

type ResultPlayer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	IsBot bool   `json:"is_bot"`
}
