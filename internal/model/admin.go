package model

import "time"

// Admin is the single operator identity allowed into the moderation panel.
// PasswordHash is a bcrypt hash and is never serialized.
type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
