package dictionary

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWordList(t *testing.T) {
	t.Run("Embedded list is used by default", func(t *testing.T) {
		list, err := NewWordList("")

		require.NoError(t, err)
		assert.Positive(t, list.Len())

		valid, err := list.Lookup(context.Background(), "cat")
		require.NoError(t, err)
		assert.True(t, valid)
	})

	t.Run("File list skips junk lines", func(t *testing.T) {
		// Given: a word list with mixed case, blanks and non-letters
		path := filepath.Join(t.TempDir(), "words.txt")
		content := strings.Join([]string{"Cat", "", "a", "d0g", "  zebra  "}, "\n")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		// When: loading it
		list, err := NewWordList(path)

		// Then: only real words of two letters or more are kept
		require.NoError(t, err)
		assert.Equal(t, 2, list.Len())

		valid, _ := list.Lookup(context.Background(), "zebra")
		assert.True(t, valid)
		valid, _ = list.Lookup(context.Background(), "d0g")
		assert.False(t, valid)
	})

	t.Run("Empty file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.txt")
		require.NoError(t, os.WriteFile(path, nil, 0o600))

		_, err := NewWordList(path)

		require.ErrorIs(t, err, ErrEmptyWordList)
	})

	t.Run("Missing file is an error", func(t *testing.T) {
		_, err := NewWordList(filepath.Join(t.TempDir(), "nope.txt"))

		require.Error(t, err)
	})
}
