package models

import (
	"time"
)

type RecoveryToken struct {
	ID        string    `bson:"_id" json:"id"`
	Email     string    `bson:"email" json:"email"`
	Token     string    `bson:"token" json:"token"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	IsUsed    bool      `bson:"is_used" json:"is_used"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

func (t *RecoveryToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
