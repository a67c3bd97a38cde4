package dictionary

import (
	"context"
	"log/slog"
	"strings"
)

// WordValidator answers whether a word may be played. Lookup failures are
// reported as false.
type WordValidator interface {
	IsValidWord(ctx context.Context, word string) bool
}

// ValidatorFunc adapts a plain function to WordValidator.
type ValidatorFunc func(ctx context.Context, word string) bool

func (that ValidatorFunc) IsValidWord(ctx context.Context, word string) bool {
	return that(ctx, word)
}

// Source is a word lookup backend. Words are passed lower-cased.
type Source interface {
	Lookup(ctx context.Context, word string) (bool, error)
}

// Cache remembers lookup results.
type Cache interface {
	Get(ctx context.Context, word string) (valid bool, found bool, err error)
	Set(ctx context.Context, word string, valid bool) error
}

type Validator struct {
	logger *slog.Logger
	source Source
	cache  Cache
}

// New builds a validator over source. cache may be nil.
func New(logger *slog.Logger, source Source, cache Cache) *Validator {
	return &Validator{
		logger: logger,
		source: source,
		cache:  cache,
	}
}

func (that *Validator) IsValidWord(ctx context.Context, word string) bool {
	log := that.logger.With("method", "IsValidWord", "word", word)

	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return false
	}

	if that.cache != nil {
		valid, found, err := that.cache.Get(ctx, word)
		if err != nil {
			log.Warn("failed to read word cache", "error", err)
		} else if found {
			return valid
		}
	}

	valid, err := that.source.Lookup(ctx, word)
	if err != nil {
		log.Warn("word lookup failed", "error", err)
		return false
	}

	if that.cache != nil {
		if err = that.cache.Set(ctx, word, valid); err != nil {
			log.Warn("failed to write word cache", "error", err)
		}
	}

	return valid
}

type allowAll struct{}

// AllowAll accepts every word. Meant for local development.
func AllowAll() Source {
	return allowAll{}
}

func (allowAll) Lookup(context.Context, string) (bool, error) {
	return true, nil
}
