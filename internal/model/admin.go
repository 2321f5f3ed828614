package model

import "time"

// Admin is a back-office account. The password is stored as an argon2id
// PHC string, never in plaintext.
type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	CreatedAt    time.Time `json:"created_at"`
}
