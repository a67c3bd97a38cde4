package service

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
)

func TestBotService_NextAction(t *testing.T) {
	rack := []entity.Tile{{Letter: "A", Score: 1}, {Letter: "B", Score: 3}, {Letter: "C", Score: 3}}

	t.Run("Passes when the bag is empty", func(t *testing.T) {
		// Given: a bot and an empty bag
		bot := NewBotService(rand.New(rand.NewSource(1)))

		// When: asking for actions repeatedly
		for range 20 {
			action := bot.NextAction(rack, 0)

			// Then: it always passes
			assert.Equal(t, BotPass, action.Kind)
		}
	})

	t.Run("Exchange indices are distinct and fit the bag", func(t *testing.T) {
		bot := NewBotService(rand.New(rand.NewSource(7)))

		for range 50 {
			action := bot.NextAction(rack, 2)
			if action.Kind != BotExchange {
				continue
			}

			assert.NotEmpty(t, action.Indices)
			assert.LessOrEqual(t, len(action.Indices), 2)

			seen := make(map[int]bool)
			for _, idx := range action.Indices {
				assert.False(t, seen[idx])
				assert.Less(t, idx, len(rack))
				seen[idx] = true
			}
		}
	})
}
