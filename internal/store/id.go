package store

import (
	"math/rand"

	"connectorsync/internal/models"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// generateID returns a 9-character base36 identifier.
func generateID() string {
	b := make([]byte, 9)
	for i := range b {
		b[i] = idAlphabet[rand.Intn(len(idAlphabet))]
	}
	return string(b)
}

func randomColor() string {
	return models.AvatarColors[rand.Intn(len(models.AvatarColors))]
}
