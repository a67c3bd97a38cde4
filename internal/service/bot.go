package service

import (
	"math/rand"
	"sync"

	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
)

type BotActionKind string

const (
	BotPass     BotActionKind = "pass"
	BotExchange BotActionKind = "exchange"
)

// BotAction is what a bot seat does on its turn.
type BotAction struct {
	Kind    BotActionKind
	Indices []int
}

type BotService interface {
	NextAction(rack []entity.Tile, tilesLeft int) BotAction
}

type botService struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewBotService returns a bot that never plays words: it swaps part of its rack
// while the bag allows it and passes otherwise.
func NewBotService(rng *rand.Rand) BotService {
	return &botService{rng: rng}
}

func (that *botService) NextAction(rack []entity.Tile, tilesLeft int) BotAction {
	that.mu.Lock()
	defer that.mu.Unlock()

	limit := min(len(rack), tilesLeft)
	if limit == 0 || that.rng.Intn(2) == 0 {
		return BotAction{Kind: BotPass}
	}

	count := 1 + that.rng.Intn(limit)

	return BotAction{Kind: BotExchange, Indices: that.rng.Perm(len(rack))[:count]}
}
