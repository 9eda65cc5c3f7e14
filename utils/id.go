package utils

import "github.com/google/uuid"

// GenerateUniqueID returns a random identifier suitable for naming a
// training run and its artifacts.
func GenerateUniqueID() string {
	return uuid.NewString()
}
