package usecase

import (
	"context"
	"time"

	"github.com/rocketscienceinc/scrabble-backend/internal/event"
)

// clock ticks a timed match. It is owned by one room and stopped on every way out
// of a match: natural end, expiry, reset and room destruction.
type clock struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (that *RoomManager) startClock(room *Room) *clock {
	ctx, cancel := context.WithCancel(context.Background())
	c := &clock{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(c.done)

		ticker := time.NewTicker(that.opts.TickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !that.tick(room, c) {
					return
				}
			}
		}
	}()

	return c
}

// tick broadcasts the time left or ends the match at expiry. It reports whether
// the clock should keep running.
func (that *RoomManager) tick(room *Room, c *clock) bool {
	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed || room.clock != c || room.match == nil || !room.match.IsPlaying() {
		return false
	}

	left := room.timeLeft()
	if left <= 0 {
		room.match.Expire()
		that.finishMatch(room)
		return false
	}

	that.notifier.Broadcast(room.humanIDs(), event.TimeUpdate{TimeLeft: left})

	return true
}

// stopClock releases the room's clock. Caller holds room.mu.
func (that *RoomManager) stopClock(room *Room) {
	if room.clock == nil {
		return
	}

	room.clock.cancel()
	room.clock = nil
}
