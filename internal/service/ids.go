package service

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// shareTokenBytes is the amount of entropy in a share token (256 bits).
const shareTokenBytes = 32

func newID() string {
	return uuid.NewString()
}

func newShareToken() (string, error) {
	buf := make([]byte, shareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func isWellFormedShareToken(token string) bool {
	if len(token) != shareTokenBytes*2 {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}
