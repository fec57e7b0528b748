package models

import (
	"time"
)

// Message is a plaintext note between two accounts. Content is stored
// as-is; there is no encryption at rest.
type Message struct {
	ID        string    `json:"id" bson:"_id"`
	FromID    string    `json:"from_id" bson:"from_id"`
	ToID      string    `json:"to_id" bson:"to_id"`
	Content   string    `json:"content" bson:"content"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

type SendMessageRequest struct {
	ToID    string `json:"to_id" validate:"required"`
	Content string `json:"content" validate:"required"`
}
