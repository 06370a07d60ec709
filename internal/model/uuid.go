package model

import "github.com/google/uuid"

// GenerateID creates a new node ID.
func GenerateID() string {
	return uuid.New().String()
}
