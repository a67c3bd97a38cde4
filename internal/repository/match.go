package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/scrabble-backend/internal/entity"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	Save(ctx context.Context, result *entity.MatchResult) error
	GetByID(ctx context.Context, id string) (*entity.MatchResult, error)
}

type dbMatch struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMatchRepository stores finished matches. ttl 0 keeps them forever.
func NewMatchRepository(client *redis.Client, ttl time.Duration) MatchRepository {
	return &dbMatch{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbMatch) Save(ctx context.Context, result *entity.MatchResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("could not marshal match: %w", err)
	}

	matchKey := "match:" + result.MatchID
	err = that.client.Set(ctx, matchKey, resultJSON, that.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set match: %w", err)
	}

	return nil
}

func (that *dbMatch) GetByID(ctx context.Context, id string) (*entity.MatchResult, error) {
	matchKey := "match:" + id

	response, err := that.client.Get(ctx, matchKey).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.MatchResult{}, ErrMatchNotFound
	}

	if err != nil {
		return &entity.MatchResult{}, fmt.Errorf("failed to get match by id: %w", err)
	}

	var result entity.MatchResult
	if err = json.Unmarshal([]byte(response), &result); err != nil {
		return &entity.MatchResult{}, fmt.Errorf("failed to unmarshal match: %w", err)
	}

	return &result, nil
}
