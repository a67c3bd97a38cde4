package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	wordValid   = "1"
	wordInvalid = "0"
)

// WordCache remembers dictionary answers under word:<word>.
type WordCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewWordCache(client *redis.Client, ttl time.Duration) *WordCache {
	return &WordCache{
		client: client,
		ttl:    ttl,
	}
}

func (that *WordCache) Get(ctx context.Context, word string) (bool, bool, error) {
	response, err := that.client.Get(ctx, "word:"+word).Result()

	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}

	if err != nil {
		return false, false, fmt.Errorf("failed to get word: %w", err)
	}

	return response == wordValid, true, nil
}

func (that *WordCache) Set(ctx context.Context, word string, valid bool) error {
	value := wordInvalid
	if valid {
		value = wordValid
	}

	if err := that.client.Set(ctx, "word:"+word, value, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set word: %w", err)
	}

	return nil
}
