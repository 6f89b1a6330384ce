package model

import "github.com/google/uuid"

// GenerateUUID creates a new node ID for stores that do not assign their own.
func GenerateUUID() string {
	return uuid.New().String()
}
