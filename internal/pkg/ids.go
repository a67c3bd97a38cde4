package pkg

import (
	"strings"

	"github.com/google/uuid"
)

const roomCodeLength = 6

// GenerateNewSessionID - generates a new unique sessionID.
func GenerateNewSessionID() string {
	return uuid.NewString()
}

// GenerateMatchID - generates an id for an archived match.
func GenerateMatchID() string {
	return uuid.NewString()
}

// GenerateRoomCode - short upper-case code players can type. Callers check for collisions.
func GenerateRoomCode() string {
	code := strings.ReplaceAll(uuid.NewString(), "-", "")

	return strings.ToUpper(code[:roomCodeLength])
}
