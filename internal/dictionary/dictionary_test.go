package dictionary

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var errLookupDown = errors.New("lookup down")

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Lookup(ctx context.Context, word string) (bool, error) {
	args := m.Called(ctx, word)
	return args.Bool(0), args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, word string) (bool, bool, error) {
	args := m.Called(ctx, word)
	return args.Bool(0), args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, word string, valid bool) error {
	args := m.Called(ctx, word, valid)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestValidator_IsValidWord(t *testing.T) {
	ctx := context.Background()

	t.Run("Word is lower-cased before lookup", func(t *testing.T) {
		// Given: a source that knows "cat"
		source := new(mockSource)
		source.On("Lookup", mock.Anything, "cat").Return(true, nil).Once()
		validator := New(discardLogger(), source, nil)

		// When: validating an upper-case word
		valid := validator.IsValidWord(ctx, " CAT ")

		// Then: the lookup sees "cat" and the word is accepted
		assert.True(t, valid)
		source.AssertExpectations(t)
	})

	t.Run("Lookup failure counts as invalid and is not cached", func(t *testing.T) {
		source := new(mockSource)
		source.On("Lookup", mock.Anything, "cat").Return(false, errLookupDown).Once()
		cache := new(mockCache)
		cache.On("Get", mock.Anything, "cat").Return(false, false, nil).Once()
		validator := New(discardLogger(), source, cache)

		valid := validator.IsValidWord(ctx, "cat")

		assert.False(t, valid)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Cached answer skips the source", func(t *testing.T) {
		source := new(mockSource)
		cache := new(mockCache)
		cache.On("Get", mock.Anything, "xq").Return(false, true, nil).Once()
		validator := New(discardLogger(), source, cache)

		valid := validator.IsValidWord(ctx, "XQ")

		assert.False(t, valid)
		source.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
	})

	t.Run("Fresh answer is written to the cache", func(t *testing.T) {
		source := new(mockSource)
		source.On("Lookup", mock.Anything, "dog").Return(true, nil).Once()
		cache := new(mockCache)
		cache.On("Get", mock.Anything, "dog").Return(false, false, nil).Once()
		cache.On("Set", mock.Anything, "dog", true).Return(nil).Once()
		validator := New(discardLogger(), source, cache)

		assert.True(t, validator.IsValidWord(ctx, "dog"))
		cache.AssertExpectations(t)
	})

	t.Run("Broken cache falls through to the source", func(t *testing.T) {
		source := new(mockSource)
		source.On("Lookup", mock.Anything, "dog").Return(true, nil).Once()
		cache := new(mockCache)
		cache.On("Get", mock.Anything, "dog").Return(false, false, errLookupDown).Once()
		cache.On("Set", mock.Anything, "dog", true).Return(errLookupDown).Once()
		validator := New(discardLogger(), source, cache)

		assert.True(t, validator.IsValidWord(ctx, "dog"))
	})

	t.Run("Empty word is invalid", func(t *testing.T) {
		validator := New(discardLogger(), AllowAll(), nil)

		assert.False(t, validator.IsValidWord(ctx, "  "))
	})
}

func TestValidatorFunc(t *testing.T) {
	var validator WordValidator = ValidatorFunc(func(_ context.Context, word string) bool {
		return word == "QI"
	})

	assert.True(t, validator.IsValidWord(context.Background(), "QI"))
	assert.False(t, validator.IsValidWord(context.Background(), "QX"))
}
