package pkg

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoomCode(t *testing.T) {
	// When: generating a room code
	code := GenerateRoomCode()

	// Then: it is six upper-case hex characters
	assert.Regexp(t, `^[0-9A-F]{6}$`, code)
}

func TestGenerateNewSessionID(t *testing.T) {
	id := GenerateNewSessionID()

	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, GenerateNewSessionID())
}
